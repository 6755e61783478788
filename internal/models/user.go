package models

import "github.com/google/uuid"

// User represents a registered user account.
type User struct {
	// ID is the unique identifier for the user (UUID format).
	ID string `db:"id" json:"id"`

	// Name is the display name of the user.
	Name string `db:"name" json:"name"`

	// Email is the user's email address (unique).
	// Used for login and for adding the user to groups.
	Email string `db:"email" json:"email"`

	// PasswordHash is the bcrypt hash of the user's password.
	PasswordHash string `db:"password_hash" json:"-"`

	Role UserRole `db:"role" json:"role"`

	Audit
}

// NewUser creates a self-registered user with a fresh ID.
func NewUser(email, name, passwordHash string) *User {
	id := uuid.New().String()
	return &User{
		ID:           id,
		Name:         name,
		Email:        email,
		PasswordHash: passwordHash,
		Role:         RoleUser,
		Audit:        NewAudit(id),
	}
}

// UserRef is the public projection of a user embedded in other responses.
type UserRef struct {
	ID    string `db:"id" json:"id"`
	Name  string `db:"name" json:"name"`
	Email string `db:"email" json:"email"`
}

// Ref returns the public projection of u.
func (u *User) Ref() UserRef {
	return UserRef{ID: u.ID, Name: u.Name, Email: u.Email}
}
