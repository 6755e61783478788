package sqlstore

import (
	"context"
	"fmt"

	"github.com/Sanket3107/Rupaya/internal/models"
)

// "groups" is quoted throughout; GROUPS is a keyword in both dialects.
const groupColumns = `g.id, g.name, g.description,
	g.created_by, g.updated_by, g.deleted_by, g.created_at, g.updated_at, g.deleted_at`

// CreateGroup inserts a new group.
func (t *tx) CreateGroup(ctx context.Context, group *models.Group) error {
	query := `
		INSERT INTO "groups" (id, name, description, created_by, created_at)
		VALUES (:id, :name, :description, :created_by, :created_at)
	`
	if err := t.insert(ctx, query, group); err != nil {
		return insertErr(err, "group")
	}
	return nil
}

// GetGroup retrieves an active group by ID.
func (t *tx) GetGroup(ctx context.Context, groupID string) (*models.Group, error) {
	group := &models.Group{}
	query := `SELECT ` + groupColumns + ` FROM "groups" g WHERE g.id = ? AND ` + active("g")
	if err := t.get(ctx, group, query, groupID); err != nil {
		return nil, getErr(err, "group", groupID)
	}
	return group, nil
}

// UpdateGroup writes the group's name, description and update stamps.
func (t *tx) UpdateGroup(ctx context.Context, group *models.Group) error {
	res, err := t.exec(ctx,
		`UPDATE "groups" SET name = ?, description = ?, updated_by = ?, updated_at = ?
		 WHERE id = ? AND `+active(""),
		group.Name, group.Description, group.UpdatedBy, group.UpdatedAt, group.ID,
	)
	if err != nil {
		return fmt.Errorf("failed to update group: %w", err)
	}
	n, err := res.RowsAffected()
	return mustAffect(n, err, "group", group.ID)
}

// DeleteGroup tombstones the group row only.
func (t *tx) DeleteGroup(ctx context.Context, groupID, actorID string) error {
	n, err := t.tombstone(ctx, `"groups"`, "id", groupID, actorID)
	return mustAffect(n, err, "group", groupID)
}

// ListGroupsForUser returns the active groups userID is an active member of,
// newest first.
func (t *tx) ListGroupsForUser(ctx context.Context, userID, search string) ([]*models.Group, error) {
	query := `
		SELECT ` + groupColumns + `
		FROM "groups" g
		JOIN group_members m ON m.group_id = g.id
		WHERE m.user_id = ? AND ` + active("m") + ` AND ` + active("g")
	args := []any{userID}
	if search != "" {
		query += ` AND (` + t.contains("g.name") + ` OR ` + t.contains("g.description") + `)`
		args = append(args, likePattern(search), likePattern(search))
	}
	query += ` ORDER BY g.created_at DESC, g.id`

	groups := []*models.Group{}
	if err := t.list(ctx, &groups, query, args...); err != nil {
		return nil, fmt.Errorf("failed to list groups: %w", err)
	}
	return groups, nil
}
