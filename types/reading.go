package types

import (
	"time"

	"github.com/shopspring/decimal"
)

// Reading represents a single UV-index observation reported by a sensor.
type Reading struct {
	// ID is the unique identifier of the reading.
	ID int `json:"reading_id" db:"reading_id"`

	// UserID identifies the user who owns the reading. Readings
	// outlive their user; deleting a user does not cascade here.
	UserID *int `json:"user_id" db:"user_id"`

	// Date is the calendar date of the observation, formatted
	// as YYYY-MM-DD.
	Date string `json:"date" db:"date"`

	// Time is the time of day of the observation, formatted
	// as HH:MM:SS.
	Time string `json:"time" db:"time"`

	// UVI is the measured UV index. Stored as NUMERIC(5,2) so the
	// value survives round trips without floating-point drift.
	UVI decimal.Decimal `json:"uvi" db:"uvi"`

	// Level is the qualitative label for the index, e.g. "Low" or
	// "Extreme".
	Level string `json:"level" db:"level"`

	// CreatedAt is the timestamp assigned by the database at insert.
	CreatedAt time.Time `json:"created_at" db:"created_at"`
}

// LiveEntry is the in-memory form of the most recent ingested reading.
// It mirrors the device payload and is independent of persistence.
type LiveEntry struct {
	Date  string          `json:"date"`
	Time  string          `json:"time"`
	UVI   decimal.Decimal `json:"uvi"`
	Level string          `json:"level"`
}
