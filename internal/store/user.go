package store

import (
	"context"
	"database/sql"
	"errors"

	"github.com/lib/pq"
	"github.com/uvify/apiserver/types"
)

const pqUniqueViolation = "23505"

// UserRepository handles persistence for users.
type UserRepository struct {
	db *sql.DB
}

func NewUserRepository(db *sql.DB) *UserRepository {
	return &UserRepository{db: db}
}

const userColumns = `user_id, username, password, email, first_name, last_name, phone, profile_image, created_at`

func (r *UserRepository) GetByID(ctx context.Context, id int) (types.User, error) {
	const query = `
		SELECT ` + userColumns + `
		FROM users
		WHERE user_id = $1`
	return r.scanUser(r.db.QueryRowContext(ctx, query, id))
}

func (r *UserRepository) GetByEmail(ctx context.Context, email string) (types.User, error) {
	const query = `
		SELECT ` + userColumns + `
		FROM users
		WHERE email = $1`
	return r.scanUser(r.db.QueryRowContext(ctx, query, email))
}

func (r *UserRepository) Create(ctx context.Context, user types.User) (types.User, error) {
	const query = `
		INSERT INTO users (username, password, email, first_name, last_name, phone)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING user_id, created_at`
	err := r.db.QueryRowContext(
		ctx,
		query,
		user.Username,
		user.PasswordHash,
		user.Email,
		user.FirstName,
		user.LastName,
		user.Phone,
	).Scan(&user.ID, &user.CreatedAt)
	if err != nil {
		return types.User{}, translateUniqueViolation(err)
	}
	return user, nil
}

// UpdateProfile merges the provided fields into the user row. Fields
// left nil in the patch keep their stored value.
func (r *UserRepository) UpdateProfile(ctx context.Context, id int, patch types.UserProfilePatch) (types.User, error) {
	const query = `
		UPDATE users
		SET first_name = COALESCE($2, first_name),
			last_name = COALESCE($3, last_name),
			email = COALESCE($4, email),
			phone = COALESCE($5, phone)
		WHERE user_id = $1
		RETURNING ` + userColumns
	user, err := r.scanUserErr(r.db.QueryRowContext(
		ctx,
		query,
		id,
		patch.FirstName,
		patch.LastName,
		patch.Email,
		patch.Phone,
	))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return types.User{}, ErrNotFound
		}
		return types.User{}, translateUniqueViolation(err)
	}
	return user, nil
}

// SetProfileImage records the object storage key of the user's
// profile image.
func (r *UserRepository) SetProfileImage(ctx context.Context, id int, key string) error {
	const query = `UPDATE users SET profile_image = $2 WHERE user_id = $1`
	result, err := r.db.ExecContext(ctx, query, id, key)
	if err != nil {
		return err
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *UserRepository) scanUser(row *sql.Row) (types.User, error) {
	user, err := r.scanUserErr(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return types.User{}, ErrNotFound
		}
		return types.User{}, err
	}
	return user, nil
}

func (r *UserRepository) scanUserErr(row *sql.Row) (types.User, error) {
	var user types.User
	err := row.Scan(
		&user.ID,
		&user.Username,
		&user.PasswordHash,
		&user.Email,
		&user.FirstName,
		&user.LastName,
		&user.Phone,
		&user.ProfileImage,
		&user.CreatedAt,
	)
	return user, err
}

func translateUniqueViolation(err error) error {
	var pqErr *pq.Error
	if errors.As(err, &pqErr) && string(pqErr.Code) == pqUniqueViolation {
		return ErrDuplicate
	}
	return err
}
