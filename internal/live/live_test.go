package live

import (
	"sync"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/uvify/apiserver/types"
)

func TestSlotEmptyUntilFirstSet(t *testing.T) {
	slot := NewSlot()
	if _, ok := slot.Latest(); ok {
		t.Fatalf("new slot should be empty")
	}
}

func TestSlotLastWriteWins(t *testing.T) {
	slot := NewSlot()
	slot.Set(types.LiveEntry{Date: "2026-08-01", Time: "10:00:00", UVI: decimal.NewFromInt(3), Level: "Moderate"})
	slot.Set(types.LiveEntry{Date: "2026-08-01", Time: "12:00:00", UVI: decimal.NewFromInt(8), Level: "Very High"})

	entry, ok := slot.Latest()
	if !ok {
		t.Fatalf("slot should hold an entry")
	}
	if entry.Time != "12:00:00" || !entry.UVI.Equal(decimal.NewFromInt(8)) {
		t.Errorf("entry = %+v, want the second write", entry)
	}
}

func TestSlotConcurrentWrites(t *testing.T) {
	slot := NewSlot()

	var wg sync.WaitGroup
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func(n int64) {
			defer wg.Done()
			slot.Set(types.LiveEntry{Date: "2026-08-01", Time: "12:00:00", UVI: decimal.NewFromInt(n), Level: "Moderate"})
		}(int64(i))
	}
	wg.Wait()

	entry, ok := slot.Latest()
	if !ok {
		t.Fatalf("slot should hold an entry")
	}
	// Any single write may win, but the entry must be intact.
	if entry.Date != "2026-08-01" || entry.Level != "Moderate" {
		t.Errorf("entry = %+v, want a complete write", entry)
	}
}
