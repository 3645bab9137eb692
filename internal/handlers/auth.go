package handlers

import (
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/uvify/apiserver/internal/services"
	"github.com/uvify/apiserver/internal/store"
	"github.com/uvify/apiserver/types"
)

// AuthHandler provides registration and login endpoints.
type AuthHandler struct {
	userService *services.UserService
}

// NewAuthHandler constructs an AuthHandler with the provided dependencies.
func NewAuthHandler(userService *services.UserService) *AuthHandler {
	return &AuthHandler{userService: userService}
}

type RegisterRequest struct {
	Username  string  `json:"username"`
	Password  string  `json:"password"`
	Email     *string `json:"email"`
	FirstName *string `json:"first_name"`
	LastName  *string `json:"last_name"`
	Phone     *string `json:"phone"`
}

type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// UserResponse is the envelope wrapping a single user record.
type UserResponse struct {
	Success bool       `json:"success"`
	User    types.User `json:"user"`
}

// Register creates a new user account.
func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	var req RegisterRequest
	if err := decodeJSON(r, &req); err != nil {
		writeFailure(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	req.Username = strings.TrimSpace(req.Username)
	if req.Username == "" || req.Password == "" {
		writeFailure(w, http.StatusBadRequest, "Missing username or password")
		return
	}

	user, err := h.userService.Register(r.Context(), types.User{
		Username:  req.Username,
		Email:     req.Email,
		FirstName: req.FirstName,
		LastName:  req.LastName,
		Phone:     req.Phone,
	}, req.Password)
	if err != nil {
		if errors.Is(err, store.ErrDuplicate) {
			writeFailure(w, http.StatusConflict, "Username or email already taken")
			return
		}
		slog.Error("register user failed", "username", req.Username, "error", err)
		writeFailure(w, http.StatusInternalServerError, "Failed to register user")
		return
	}

	slog.Info("user registered", "user_id", user.ID, "username", user.Username)
	writeJSON(w, http.StatusOK, UserResponse{Success: true, User: user})
}

// Login verifies credentials against the stored password hash.
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req LoginRequest
	if err := decodeJSON(r, &req); err != nil {
		writeFailure(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	req.Email = strings.TrimSpace(req.Email)
	if req.Email == "" || req.Password == "" {
		writeFailure(w, http.StatusBadRequest, "Missing email or password")
		return
	}

	user, err := h.userService.Login(r.Context(), req.Email, req.Password)
	if err != nil {
		switch {
		case errors.Is(err, services.ErrUserNotFound):
			slog.Info("login rejected: unknown email", "email", req.Email)
			writeFailure(w, http.StatusUnauthorized, "User not found")
		case errors.Is(err, services.ErrInvalidCredential):
			slog.Info("login rejected: wrong password", "email", req.Email)
			writeFailure(w, http.StatusUnauthorized, "Invalid password")
		default:
			slog.Error("login failed", "email", req.Email, "error", err)
			writeFailure(w, http.StatusInternalServerError, "Server error during login")
		}
		return
	}

	slog.Info("user logged in", "user_id", user.ID)
	writeJSON(w, http.StatusOK, UserResponse{Success: true, User: user})
}
