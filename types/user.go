package types

import "time"

// User represents an account in the system.
// It contains identity, contact details, and audit metadata.
type User struct {
	// ID is the unique identifier of the user. It is assigned at
	// creation and never reused.
	ID int `json:"user_id" db:"user_id"`

	// Username is the login name chosen by the user.
	Username string `json:"username" db:"username"`

	// PasswordHash stores the bcrypt hash of the user's password.
	// This field is never exposed in API responses.
	PasswordHash string `json:"-" db:"password"`

	// Email is the user's email address. It is optional at
	// registration but required to log in.
	Email *string `json:"email" db:"email"`

	// FirstName is the user's given name.
	FirstName *string `json:"first_name" db:"first_name"`

	// LastName is the user's family name.
	LastName *string `json:"last_name" db:"last_name"`

	// Phone is the user's phone number.
	Phone *string `json:"phone" db:"phone"`

	// ProfileImage is the object storage key of the user's profile
	// image, when one has been uploaded.
	ProfileImage *string `json:"profile_image" db:"profile_image"`

	// CreatedAt is the timestamp when the account was created.
	CreatedAt time.Time `json:"created_at" db:"created_at"`
}

// UserProfilePatch carries the profile fields a client may change.
// Nil fields are left untouched by an update.
type UserProfilePatch struct {
	FirstName *string `json:"first_name"`
	LastName  *string `json:"last_name"`
	Email     *string `json:"email"`
	Phone     *string `json:"phone"`
}
