package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"
)

// FailureResponse is the envelope for every error reported to a caller.
type FailureResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
}

// MessageResponse is the envelope for successes with no payload.
type MessageResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
}

func writeJSON(w http.ResponseWriter, status int, value any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(value)
}

func writeFailure(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, FailureResponse{Success: false, Message: message})
}

func writeMessage(w http.ResponseWriter, message string) {
	writeJSON(w, http.StatusOK, MessageResponse{Success: true, Message: message})
}

// decodeJSON parses a request body into dst, rejecting unknown fields
// so typos surface as 400s instead of silently dropped data.
func decodeJSON(r *http.Request, dst any) error {
	decoder := json.NewDecoder(r.Body)
	decoder.DisallowUnknownFields()
	return decoder.Decode(dst)
}

func parseUserID(r *http.Request) (int, error) {
	raw := chi.URLParam(r, "userID")
	id, err := strconv.Atoi(strings.TrimSpace(raw))
	if err != nil || id < 1 {
		return 0, errors.New("invalid user id")
	}
	return id, nil
}
