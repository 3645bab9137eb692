package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/uvify/apiserver/internal/services"
	"github.com/uvify/apiserver/internal/store"
	"github.com/uvify/apiserver/types"
	"golang.org/x/crypto/bcrypt"
)

type mockUserRepo struct {
	users  map[int]types.User
	nextID int

	createErr error
}

func newMockUserRepo() *mockUserRepo {
	return &mockUserRepo{users: make(map[int]types.User), nextID: 1}
}

func (m *mockUserRepo) GetByID(ctx context.Context, id int) (types.User, error) {
	user, ok := m.users[id]
	if !ok {
		return types.User{}, store.ErrNotFound
	}
	return user, nil
}

func (m *mockUserRepo) GetByEmail(ctx context.Context, email string) (types.User, error) {
	for _, user := range m.users {
		if user.Email != nil && *user.Email == email {
			return user, nil
		}
	}
	return types.User{}, store.ErrNotFound
}

func (m *mockUserRepo) Create(ctx context.Context, user types.User) (types.User, error) {
	if m.createErr != nil {
		return types.User{}, m.createErr
	}
	for _, existing := range m.users {
		if existing.Username == user.Username {
			return types.User{}, store.ErrDuplicate
		}
	}
	user.ID = m.nextID
	m.nextID++
	m.users[user.ID] = user
	return user, nil
}

func (m *mockUserRepo) UpdateProfile(ctx context.Context, id int, patch types.UserProfilePatch) (types.User, error) {
	user, ok := m.users[id]
	if !ok {
		return types.User{}, store.ErrNotFound
	}
	if patch.FirstName != nil {
		user.FirstName = patch.FirstName
	}
	if patch.LastName != nil {
		user.LastName = patch.LastName
	}
	if patch.Email != nil {
		user.Email = patch.Email
	}
	if patch.Phone != nil {
		user.Phone = patch.Phone
	}
	m.users[id] = user
	return user, nil
}

func (m *mockUserRepo) SetProfileImage(ctx context.Context, id int, key string) error {
	user, ok := m.users[id]
	if !ok {
		return store.ErrNotFound
	}
	user.ProfileImage = &key
	m.users[id] = user
	return nil
}

func strPtr(s string) *string { return &s }

func postJSON(t *testing.T, handler http.HandlerFunc, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	handler(rec, req)
	return rec
}

func decodeFailure(t *testing.T, rec *httptest.ResponseRecorder) FailureResponse {
	t.Helper()
	var resp FailureResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode failure response: %v", err)
	}
	return resp
}

func TestRegister(t *testing.T) {
	t.Run("missing username returns 400", func(t *testing.T) {
		handler := NewAuthHandler(services.NewUserService(newMockUserRepo()))
		rec := postJSON(t, handler.Register, `{"password":"p1"}`)

		if rec.Code != http.StatusBadRequest {
			t.Fatalf("status = %d, want %d", rec.Code, http.StatusBadRequest)
		}
		resp := decodeFailure(t, rec)
		if resp.Success {
			t.Errorf("success = true, want false")
		}
	})

	t.Run("missing password returns 400", func(t *testing.T) {
		handler := NewAuthHandler(services.NewUserService(newMockUserRepo()))
		rec := postJSON(t, handler.Register, `{"username":"alice"}`)

		if rec.Code != http.StatusBadRequest {
			t.Fatalf("status = %d, want %d", rec.Code, http.StatusBadRequest)
		}
	})

	t.Run("unknown field returns 400", func(t *testing.T) {
		handler := NewAuthHandler(services.NewUserService(newMockUserRepo()))
		rec := postJSON(t, handler.Register, `{"username":"alice","password":"p1","admin":true}`)

		if rec.Code != http.StatusBadRequest {
			t.Fatalf("status = %d, want %d", rec.Code, http.StatusBadRequest)
		}
	})

	t.Run("valid payload creates user", func(t *testing.T) {
		repo := newMockUserRepo()
		handler := NewAuthHandler(services.NewUserService(repo))
		rec := postJSON(t, handler.Register, `{"username":"alice","password":"p1","email":"alice@example.com"}`)

		if rec.Code != http.StatusOK {
			t.Fatalf("status = %d, want %d; body %s", rec.Code, http.StatusOK, rec.Body.String())
		}

		var resp UserResponse
		if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
			t.Fatalf("decode response: %v", err)
		}
		if !resp.Success {
			t.Errorf("success = false, want true")
		}
		if resp.User.ID != 1 {
			t.Errorf("user_id = %d, want 1", resp.User.ID)
		}
		if resp.User.Username != "alice" {
			t.Errorf("username = %q, want alice", resp.User.Username)
		}
		if strings.Contains(rec.Body.String(), "p1") || strings.Contains(rec.Body.String(), "password") {
			t.Errorf("response leaks the password: %s", rec.Body.String())
		}
	})

	t.Run("identifiers are never reused", func(t *testing.T) {
		repo := newMockUserRepo()
		handler := NewAuthHandler(services.NewUserService(repo))

		seen := make(map[int]bool)
		for _, name := range []string{"a", "b", "c"} {
			rec := postJSON(t, handler.Register, `{"username":"`+name+`","password":"p"}`)
			var resp UserResponse
			if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
				t.Fatalf("decode response: %v", err)
			}
			if seen[resp.User.ID] {
				t.Fatalf("user id %d returned twice", resp.User.ID)
			}
			seen[resp.User.ID] = true
		}
	})

	t.Run("password is stored hashed", func(t *testing.T) {
		repo := newMockUserRepo()
		handler := NewAuthHandler(services.NewUserService(repo))
		postJSON(t, handler.Register, `{"username":"alice","password":"p1"}`)

		stored := repo.users[1].PasswordHash
		if stored == "p1" {
			t.Fatalf("password stored in plaintext")
		}
		if err := bcrypt.CompareHashAndPassword([]byte(stored), []byte("p1")); err != nil {
			t.Errorf("stored value is not a hash of the password: %v", err)
		}
	})

	t.Run("duplicate username returns 409", func(t *testing.T) {
		repo := newMockUserRepo()
		handler := NewAuthHandler(services.NewUserService(repo))
		postJSON(t, handler.Register, `{"username":"alice","password":"p1"}`)
		rec := postJSON(t, handler.Register, `{"username":"alice","password":"p2"}`)

		if rec.Code != http.StatusConflict {
			t.Fatalf("status = %d, want %d", rec.Code, http.StatusConflict)
		}
	})
}

func TestLogin(t *testing.T) {
	setup := func(t *testing.T) (*AuthHandler, *mockUserRepo) {
		t.Helper()
		repo := newMockUserRepo()
		hash, err := bcrypt.GenerateFromPassword([]byte("correct-horse"), bcrypt.MinCost)
		if err != nil {
			t.Fatalf("hash password: %v", err)
		}
		repo.users[1] = types.User{
			ID:           1,
			Username:     "alice",
			Email:        strPtr("alice@example.com"),
			PasswordHash: string(hash),
		}
		repo.nextID = 2
		return NewAuthHandler(services.NewUserService(repo)), repo
	}

	t.Run("missing credentials returns 400", func(t *testing.T) {
		handler, _ := setup(t)
		rec := postJSON(t, handler.Login, `{"email":"alice@example.com"}`)

		if rec.Code != http.StatusBadRequest {
			t.Fatalf("status = %d, want %d", rec.Code, http.StatusBadRequest)
		}
	})

	t.Run("unknown email returns 401 user not found", func(t *testing.T) {
		handler, _ := setup(t)
		rec := postJSON(t, handler.Login, `{"email":"bob@example.com","password":"whatever"}`)

		if rec.Code != http.StatusUnauthorized {
			t.Fatalf("status = %d, want %d", rec.Code, http.StatusUnauthorized)
		}
		if resp := decodeFailure(t, rec); resp.Message != "User not found" {
			t.Errorf("message = %q, want %q", resp.Message, "User not found")
		}
	})

	t.Run("wrong password returns 401 invalid password", func(t *testing.T) {
		handler, _ := setup(t)
		rec := postJSON(t, handler.Login, `{"email":"alice@example.com","password":"wrong"}`)

		if rec.Code != http.StatusUnauthorized {
			t.Fatalf("status = %d, want %d", rec.Code, http.StatusUnauthorized)
		}
		if resp := decodeFailure(t, rec); resp.Message != "Invalid password" {
			t.Errorf("message = %q, want %q", resp.Message, "Invalid password")
		}
	})

	t.Run("correct password returns the user", func(t *testing.T) {
		handler, _ := setup(t)
		rec := postJSON(t, handler.Login, `{"email":"alice@example.com","password":"correct-horse"}`)

		if rec.Code != http.StatusOK {
			t.Fatalf("status = %d, want %d; body %s", rec.Code, http.StatusOK, rec.Body.String())
		}
		var resp UserResponse
		if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
			t.Fatalf("decode response: %v", err)
		}
		if !resp.Success || resp.User.ID != 1 {
			t.Errorf("unexpected response: %+v", resp)
		}
	})

	t.Run("user registered without email cannot log in", func(t *testing.T) {
		repo := newMockUserRepo()
		handler := NewAuthHandler(services.NewUserService(repo))
		postJSON(t, handler.Register, `{"username":"alice","password":"p1"}`)

		rec := postJSON(t, handler.Login, `{"email":"alice@example.com","password":"p1"}`)
		if rec.Code != http.StatusUnauthorized {
			t.Fatalf("status = %d, want %d", rec.Code, http.StatusUnauthorized)
		}
		if resp := decodeFailure(t, rec); resp.Message != "User not found" {
			t.Errorf("message = %q, want %q", resp.Message, "User not found")
		}
	})
}
