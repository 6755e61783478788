package sqlstore

import (
	"context"
	"fmt"

	"github.com/Sanket3107/Rupaya/internal/models"
)

const userColumns = `id, name, email, password_hash, role,
	created_by, updated_by, deleted_by, created_at, updated_at, deleted_at`

// CreateUser inserts a new user into the database.
func (t *tx) CreateUser(ctx context.Context, user *models.User) error {
	query := `
		INSERT INTO users (id, name, email, password_hash, role, created_by, created_at)
		VALUES (:id, :name, :email, :password_hash, :role, :created_by, :created_at)
	`
	if err := t.insert(ctx, query, user); err != nil {
		return insertErr(err, "user")
	}
	return nil
}

// GetUserByID retrieves an active user by their ID.
func (t *tx) GetUserByID(ctx context.Context, id string) (*models.User, error) {
	user := &models.User{}
	query := `SELECT ` + userColumns + ` FROM users WHERE id = ? AND ` + active("")
	if err := t.get(ctx, user, query, id); err != nil {
		return nil, getErr(err, "user", id)
	}
	return user, nil
}

// GetUserByEmail retrieves an active user by their email address.
// Emails are stored lowercased.
func (t *tx) GetUserByEmail(ctx context.Context, email string) (*models.User, error) {
	user := &models.User{}
	query := `SELECT ` + userColumns + ` FROM users WHERE email = ? AND ` + active("")
	if err := t.get(ctx, user, query, email); err != nil {
		return nil, getErr(err, "user with email", email)
	}
	return user, nil
}

// GetUsersByIDs retrieves multiple active users by their IDs.
func (t *tx) GetUsersByIDs(ctx context.Context, ids []string) (map[string]*models.User, error) {
	users := make(map[string]*models.User, len(ids))
	if len(ids) == 0 {
		return users, nil
	}

	var rows []*models.User
	query := `SELECT ` + userColumns + ` FROM users WHERE id IN (?) AND ` + active("")
	if err := t.listIn(ctx, &rows, query, ids); err != nil {
		return nil, fmt.Errorf("failed to get users by IDs: %w", err)
	}
	for _, u := range rows {
		users[u.ID] = u
	}
	return users, nil
}
