package handlers

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"

	"github.com/uvify/apiserver/internal/services"
	"github.com/uvify/apiserver/internal/storage"
	"github.com/uvify/apiserver/internal/store"
	"github.com/uvify/apiserver/types"
)

const (
	maxProfileImageBytes = 8 << 20
	imageFormField       = "image"
)

// ProfileHandler provides profile read/update endpoints, plus image
// upload/fetch when an object storage backend is configured.
type ProfileHandler struct {
	userService *services.UserService
	images      *storage.Storage
}

// NewProfileHandler constructs a ProfileHandler with the provided dependencies.
func NewProfileHandler(userService *services.UserService, images *storage.Storage) *ProfileHandler {
	return &ProfileHandler{
		userService: userService,
		images:      images,
	}
}

// GetProfile answers GET /profile/{userID}.
func (h *ProfileHandler) GetProfile(w http.ResponseWriter, r *http.Request) {
	id, err := parseUserID(r)
	if err != nil {
		writeFailure(w, http.StatusBadRequest, "Invalid user id")
		return
	}

	user, err := h.userService.GetByID(r.Context(), id)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			writeFailure(w, http.StatusNotFound, "User not found")
			return
		}
		slog.Error("fetch profile failed", "user_id", id, "error", err)
		writeFailure(w, http.StatusInternalServerError, "Server error fetching profile")
		return
	}

	writeJSON(w, http.StatusOK, UserResponse{Success: true, User: user})
}

// UpdateProfile answers PUT /profile/{userID}. Only the provided
// fields change; username, password, and created_at are untouchable
// through this endpoint.
func (h *ProfileHandler) UpdateProfile(w http.ResponseWriter, r *http.Request) {
	id, err := parseUserID(r)
	if err != nil {
		writeFailure(w, http.StatusBadRequest, "Invalid user id")
		return
	}

	var patch types.UserProfilePatch
	if err := decodeJSON(r, &patch); err != nil {
		writeFailure(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	user, err := h.userService.UpdateProfile(r.Context(), id, patch)
	if err != nil {
		switch {
		case errors.Is(err, store.ErrNotFound):
			writeFailure(w, http.StatusNotFound, "User not found")
		case errors.Is(err, store.ErrDuplicate):
			writeFailure(w, http.StatusConflict, "Email already in use")
		default:
			slog.Error("update profile failed", "user_id", id, "error", err)
			writeFailure(w, http.StatusInternalServerError, "Server error updating profile")
		}
		return
	}

	slog.Info("profile updated", "user_id", id)
	writeJSON(w, http.StatusOK, UserResponse{Success: true, User: user})
}

// UploadProfileImage answers POST /profile/{userID}/image. The image
// bytes go to object storage; the users row records only the key.
func (h *ProfileHandler) UploadProfileImage(w http.ResponseWriter, r *http.Request) {
	id, err := parseUserID(r)
	if err != nil {
		writeFailure(w, http.StatusBadRequest, "Invalid user id")
		return
	}

	if _, err := h.userService.GetByID(r.Context(), id); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			writeFailure(w, http.StatusNotFound, "User not found")
			return
		}
		slog.Error("fetch user for image upload failed", "user_id", id, "error", err)
		writeFailure(w, http.StatusInternalServerError, "Server error uploading image")
		return
	}

	if err := r.ParseMultipartForm(maxProfileImageBytes); err != nil {
		writeFailure(w, http.StatusBadRequest, "Invalid multipart form")
		return
	}

	file, header, err := r.FormFile(imageFormField)
	if err != nil {
		writeFailure(w, http.StatusBadRequest, "Missing image file")
		return
	}
	defer file.Close()

	if header.Size > maxProfileImageBytes {
		writeFailure(w, http.StatusBadRequest, "Image too large")
		return
	}

	contentType := header.Header.Get("Content-Type")
	if contentType == "" {
		contentType = "application/octet-stream"
	}

	// One key per user, so replacing an image overwrites in place and
	// leaves no orphaned objects.
	key := fmt.Sprintf("profile-images/%d", id)
	if err := h.images.Put(r.Context(), key, file, header.Size, contentType); err != nil {
		slog.Error("store profile image failed", "user_id", id, "key", key, "error", err)
		writeFailure(w, http.StatusInternalServerError, "Failed to store image")
		return
	}

	if err := h.userService.SetProfileImage(r.Context(), id, key); err != nil {
		slog.Error("record profile image key failed", "user_id", id, "key", key, "error", err)
		writeFailure(w, http.StatusInternalServerError, "Failed to store image")
		return
	}

	slog.Info("profile image updated", "user_id", id, "bytes", header.Size)
	writeMessage(w, "Profile image updated")
}

// GetProfileImage answers GET /profile/{userID}/image, streaming the
// stored object back to the client.
func (h *ProfileHandler) GetProfileImage(w http.ResponseWriter, r *http.Request) {
	id, err := parseUserID(r)
	if err != nil {
		writeFailure(w, http.StatusBadRequest, "Invalid user id")
		return
	}

	user, err := h.userService.GetByID(r.Context(), id)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			writeFailure(w, http.StatusNotFound, "User not found")
			return
		}
		slog.Error("fetch user for image failed", "user_id", id, "error", err)
		writeFailure(w, http.StatusInternalServerError, "Server error fetching image")
		return
	}

	if user.ProfileImage == nil {
		writeFailure(w, http.StatusNotFound, "No profile image")
		return
	}

	reader, contentType, err := h.images.Get(r.Context(), *user.ProfileImage)
	if err != nil {
		slog.Error("read profile image failed", "user_id", id, "key", *user.ProfileImage, "error", err)
		writeFailure(w, http.StatusInternalServerError, "Failed to read image")
		return
	}
	defer reader.Close()

	if contentType == "" {
		contentType = "application/octet-stream"
	}
	w.Header().Set("Content-Type", contentType)
	w.WriteHeader(http.StatusOK)
	if _, err := io.Copy(w, reader); err != nil {
		slog.Error("stream profile image failed", "user_id", id, "error", err)
	}
}
