package services

import (
	"context"
	"errors"

	"github.com/uvify/apiserver/internal/store"
	"github.com/uvify/apiserver/types"
	"golang.org/x/crypto/bcrypt"
)

// Login failure reasons. They stay distinct so operators can tell a
// missing account from a wrong password in the logs.
var (
	ErrUserNotFound      = errors.New("user not found")
	ErrInvalidCredential = errors.New("invalid credential")
)

// UserRepository defines persistence operations for users.
type UserRepository interface {
	GetByID(ctx context.Context, id int) (types.User, error)
	GetByEmail(ctx context.Context, email string) (types.User, error)
	Create(ctx context.Context, user types.User) (types.User, error)
	UpdateProfile(ctx context.Context, id int, patch types.UserProfilePatch) (types.User, error)
	SetProfileImage(ctx context.Context, id int, key string) error
}

// UserService encapsulates user use-cases.
type UserService struct {
	repo UserRepository
}

func NewUserService(repo UserRepository) *UserService {
	return &UserService{repo: repo}
}

// Register hashes the password and creates the account. The plaintext
// password never reaches the store.
func (s *UserService) Register(ctx context.Context, user types.User, password string) (types.User, error) {
	hashed, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return types.User{}, err
	}
	user.PasswordHash = string(hashed)
	return s.repo.Create(ctx, user)
}

// Login verifies the password against the stored bcrypt hash.
// bcrypt's comparison is constant-time for a given hash.
func (s *UserService) Login(ctx context.Context, email, password string) (types.User, error) {
	user, err := s.repo.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return types.User{}, ErrUserNotFound
		}
		return types.User{}, err
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return types.User{}, ErrInvalidCredential
	}
	return user, nil
}

func (s *UserService) GetByID(ctx context.Context, id int) (types.User, error) {
	return s.repo.GetByID(ctx, id)
}

func (s *UserService) UpdateProfile(ctx context.Context, id int, patch types.UserProfilePatch) (types.User, error) {
	return s.repo.UpdateProfile(ctx, id, patch)
}

func (s *UserService) SetProfileImage(ctx context.Context, id int, key string) error {
	return s.repo.SetProfileImage(ctx, id, key)
}
