package auth

import (
	"context"
	"fmt"
	"net/mail"
	"strings"

	"golang.org/x/crypto/bcrypt"

	"github.com/Sanket3107/Rupaya/internal/apperr"
	"github.com/Sanket3107/Rupaya/internal/models"
	"github.com/Sanket3107/Rupaya/internal/storage"
)

var (
	ErrInvalidCredentials = apperr.Unauthorized("invalid email or password")
	ErrWeakPassword       = apperr.Validation("password must be at least 8 characters")
	ErrEmailExists        = apperr.Conflict("email already registered")
)

// PasswordAuthenticator implements password-based authentication using bcrypt.
type PasswordAuthenticator struct {
	store storage.Store
}

var _ Authenticator = (*PasswordAuthenticator)(nil)

// NewPasswordAuthenticator creates a new password-based authenticator.
func NewPasswordAuthenticator(store storage.Store) *PasswordAuthenticator {
	return &PasswordAuthenticator{
		store: store,
	}
}

// NormalizeEmail trims and lowercases an email address.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// ValidateCredential checks if the password meets minimum requirements.
func (a *PasswordAuthenticator) ValidateCredential(credential string) error {
	if len(credential) < 8 {
		return ErrWeakPassword
	}
	return nil
}

// Register creates a new user account with a hashed password.
func (a *PasswordAuthenticator) Register(ctx context.Context, email, name, credential string) (*models.User, error) {
	email = NormalizeEmail(email)
	name = strings.TrimSpace(name)
	if _, err := mail.ParseAddress(email); err != nil {
		return nil, apperr.Validation("invalid email address %q", email)
	}
	if name == "" {
		return nil, apperr.Validation("name is required")
	}

	// Validate password strength
	if err := a.ValidateCredential(credential); err != nil {
		return nil, err
	}

	// Hash the password
	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(credential), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	user := models.NewUser(email, name, string(hashedPassword))

	err = a.store.Update(ctx, func(tx storage.Tx) error {
		// Check if email already exists
		if _, err := tx.GetUserByEmail(ctx, email); err == nil {
			return ErrEmailExists
		} else if !apperr.Is(err, apperr.KindNotFound) {
			return err
		}
		return tx.CreateUser(ctx, user)
	})
	if apperr.Is(err, apperr.KindConflict) {
		return nil, ErrEmailExists
	}
	if err != nil {
		return nil, err
	}

	return user, nil
}

// Authenticate verifies the email and password, returning the user if valid.
func (a *PasswordAuthenticator) Authenticate(ctx context.Context, email, credential string) (*models.User, error) {
	var user *models.User
	err := a.store.View(ctx, func(tx storage.Tx) error {
		var err error
		user, err = tx.GetUserByEmail(ctx, NormalizeEmail(email))
		return err
	})
	if apperr.Is(err, apperr.KindNotFound) {
		return nil, ErrInvalidCredentials
	}
	if err != nil {
		return nil, err
	}

	// Compare password hash
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(credential)); err != nil {
		return nil, ErrInvalidCredentials
	}

	return user, nil
}
