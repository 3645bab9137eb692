package handlers

import (
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"github.com/uvify/apiserver/internal/events"
	"github.com/uvify/apiserver/internal/live"
	"github.com/uvify/apiserver/internal/services"
	"github.com/uvify/apiserver/types"
)

// ReadingHandler provides reading ingestion and history endpoints.
type ReadingHandler struct {
	readingService *services.ReadingService
	slot           *live.Slot
	publisher      *events.Publisher
	defaultUserID  int
}

// NewReadingHandler constructs a ReadingHandler with the provided dependencies.
func NewReadingHandler(
	readingService *services.ReadingService,
	slot *live.Slot,
	publisher *events.Publisher,
	defaultUserID int,
) *ReadingHandler {
	return &ReadingHandler{
		readingService: readingService,
		slot:           slot,
		publisher:      publisher,
		defaultUserID:  defaultUserID,
	}
}

// ReadingRequest is the payload for both ingestion endpoints. UVI is
// a pointer so presence is what counts: an index of 0.00 is a valid
// night reading.
type ReadingRequest struct {
	Date  string           `json:"date"`
	Time  string           `json:"time"`
	UVI   *decimal.Decimal `json:"uvi"`
	Level string           `json:"level"`
}

func (req *ReadingRequest) validate() bool {
	return strings.TrimSpace(req.Date) != "" &&
		strings.TrimSpace(req.Time) != "" &&
		req.UVI != nil &&
		strings.TrimSpace(req.Level) != ""
}

// EntryResponse is the envelope wrapping a persisted reading.
type EntryResponse struct {
	Success bool          `json:"success"`
	Entry   types.Reading `json:"entry"`
}

// ReceiveDataResponse is the envelope for the device ingestion path.
// Entry echoes the device payload, not the database row, because the
// row may not exist in degraded mode.
type ReceiveDataResponse struct {
	Success bool            `json:"success"`
	Message string          `json:"message"`
	Entry   types.LiveEntry `json:"entry"`
}

// NoDataResponse is returned by /latest before any ingestion.
type NoDataResponse struct {
	Message string `json:"message"`
}

// CreateForUser answers POST /history/{userID}.
func (h *ReadingHandler) CreateForUser(w http.ResponseWriter, r *http.Request) {
	userID, err := parseUserID(r)
	if err != nil {
		writeFailure(w, http.StatusBadRequest, "Invalid user id")
		return
	}

	var req ReadingRequest
	if err := decodeJSON(r, &req); err != nil {
		writeFailure(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if !req.validate() {
		writeFailure(w, http.StatusBadRequest, "Missing required fields")
		return
	}

	entry, err := h.readingService.Create(r.Context(), types.Reading{
		UserID: &userID,
		Date:   req.Date,
		Time:   req.Time,
		UVI:    *req.UVI,
		Level:  req.Level,
	})
	if err != nil {
		slog.Error("save reading failed", "user_id", userID, "error", err)
		writeFailure(w, http.StatusInternalServerError, "Failed to save UV reading")
		return
	}

	h.publishIngested(r, entry, true)
	writeJSON(w, http.StatusOK, EntryResponse{Success: true, Entry: entry})
}

// ListForUser answers GET /history/{userID} with a bare array, newest
// first.
func (h *ReadingHandler) ListForUser(w http.ResponseWriter, r *http.Request) {
	userID, err := parseUserID(r)
	if err != nil {
		writeFailure(w, http.StatusBadRequest, "Invalid user id")
		return
	}

	readings, err := h.readingService.ListForUser(r.Context(), userID)
	if err != nil {
		slog.Error("fetch user history failed", "user_id", userID, "error", err)
		writeFailure(w, http.StatusInternalServerError, "Failed to fetch history")
		return
	}

	writeJSON(w, http.StatusOK, readings)
}

// DeleteForUser answers DELETE /history/{userID}. Deleting an empty
// history succeeds with zero rows removed.
func (h *ReadingHandler) DeleteForUser(w http.ResponseWriter, r *http.Request) {
	userID, err := parseUserID(r)
	if err != nil {
		writeFailure(w, http.StatusBadRequest, "Invalid user id")
		return
	}

	deleted, err := h.readingService.DeleteForUser(r.Context(), userID)
	if err != nil {
		slog.Error("delete readings failed", "user_id", userID, "error", err)
		writeFailure(w, http.StatusInternalServerError, "Failed to delete readings")
		return
	}

	slog.Info("readings deleted", "user_id", userID, "count", deleted)
	writeMessage(w, "All readings deleted for user")
}

// ListAll answers GET /history with an optional userId query filter.
func (h *ReadingHandler) ListAll(w http.ResponseWriter, r *http.Request) {
	var userID *int
	if raw := strings.TrimSpace(r.URL.Query().Get("userId")); raw != "" {
		id, err := strconv.Atoi(raw)
		if err != nil || id < 1 {
			writeFailure(w, http.StatusBadRequest, "Invalid userId filter")
			return
		}
		userID = &id
	}

	readings, err := h.readingService.ListAll(r.Context(), userID)
	if err != nil {
		slog.Error("fetch history failed", "error", err)
		writeFailure(w, http.StatusInternalServerError, "Failed to fetch UV history from database")
		return
	}

	writeJSON(w, http.StatusOK, readings)
}

// ReceiveData answers POST /receive-data, the single-device ingestion
// path. The live slot is updated before the database write, so the
// dashboard sees the reading even when persistence is down, and the
// device always gets a success.
func (h *ReadingHandler) ReceiveData(w http.ResponseWriter, r *http.Request) {
	var req ReadingRequest
	if err := decodeJSON(r, &req); err != nil {
		writeFailure(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if !req.validate() {
		writeFailure(w, http.StatusBadRequest, "Missing required fields")
		return
	}

	liveEntry := types.LiveEntry{
		Date:  req.Date,
		Time:  req.Time,
		UVI:   *req.UVI,
		Level: req.Level,
	}
	h.slot.Set(liveEntry)
	slog.Info("reading received", "date", req.Date, "time", req.Time, "uvi", req.UVI)

	userID := h.defaultUserID
	entry, err := h.readingService.Create(r.Context(), types.Reading{
		UserID: &userID,
		Date:   req.Date,
		Time:   req.Time,
		UVI:    *req.UVI,
		Level:  req.Level,
	})
	if err != nil {
		slog.Error("reading persisted locally only", "user_id", userID, "error", err)
		h.publishIngested(r, types.Reading{UserID: &userID, Date: req.Date, Time: req.Time, UVI: *req.UVI, Level: req.Level}, false)
		writeJSON(w, http.StatusOK, ReceiveDataResponse{
			Success: true,
			Message: "Saved locally only",
			Entry:   liveEntry,
		})
		return
	}

	h.publishIngested(r, entry, true)
	writeJSON(w, http.StatusOK, ReceiveDataResponse{
		Success: true,
		Message: "Data saved to DB",
		Entry:   liveEntry,
	})
}

// Latest answers GET /latest from the in-memory slot.
func (h *ReadingHandler) Latest(w http.ResponseWriter, r *http.Request) {
	entry, ok := h.slot.Latest()
	if !ok {
		writeJSON(w, http.StatusOK, NoDataResponse{Message: "No data yet"})
		return
	}
	writeJSON(w, http.StatusOK, entry)
}

// publishIngested notifies downstream consumers. A broker outage must
// never fail the request, so errors only reach the log.
func (h *ReadingHandler) publishIngested(r *http.Request, reading types.Reading, persisted bool) {
	event := events.ReadingEvent{
		ReadingID:  reading.ID,
		UserID:     reading.UserID,
		Date:       reading.Date,
		Time:       reading.Time,
		UVI:        reading.UVI,
		Level:      reading.Level,
		Persisted:  persisted,
		ReceivedAt: time.Now().UTC(),
	}
	if err := h.publisher.ReadingIngested(r.Context(), event); err != nil {
		slog.Warn("publish reading event failed", "reading_id", reading.ID, "error", err)
	}
}
