package sqlstore

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/Sanket3107/Rupaya/internal/models"
)

const memberColumns = `m.id, m.user_id, m.group_id, m.role,
	m.created_by, m.updated_by, m.deleted_by, m.created_at, m.updated_at, m.deleted_at`

// memberRow is a membership joined with its user.
type memberRow struct {
	models.GroupMember
	UserName  string `db:"user_name"`
	UserEmail string `db:"user_email"`
}

func (r *memberRow) member() *models.GroupMember {
	m := r.GroupMember
	m.User = &models.UserRef{ID: m.UserID, Name: r.UserName, Email: r.UserEmail}
	return &m
}

// CreateMember inserts a new membership row.
func (t *tx) CreateMember(ctx context.Context, member *models.GroupMember) error {
	query := `
		INSERT INTO group_members (id, user_id, group_id, role, created_by, created_at)
		VALUES (:id, :user_id, :group_id, :role, :created_by, :created_at)
	`
	if err := t.insert(ctx, query, member); err != nil {
		return insertErr(err, "group member")
	}
	return nil
}

// GetMember returns the active membership of userID in groupID.
func (t *tx) GetMember(ctx context.Context, userID, groupID string) (*models.GroupMember, error) {
	member := &models.GroupMember{}
	query := `SELECT ` + memberColumns + ` FROM group_members m
		WHERE m.user_id = ? AND m.group_id = ? AND ` + active("m")
	if err := t.get(ctx, member, query, userID, groupID); err != nil {
		return nil, getErr(err, "membership of user", userID)
	}
	return member, nil
}

// FindMember returns the membership row for (userID, groupID), tombstoned or
// not. It returns nil, nil if the pair never existed.
func (t *tx) FindMember(ctx context.Context, userID, groupID string) (*models.GroupMember, error) {
	member := &models.GroupMember{}
	query := `SELECT ` + memberColumns + ` FROM group_members m WHERE m.user_id = ? AND m.group_id = ?`
	err := t.get(ctx, member, query, userID, groupID)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to find group member: %w", err)
	}
	return member, nil
}

// UpdateMember writes role, update stamps and tombstone fields.
func (t *tx) UpdateMember(ctx context.Context, member *models.GroupMember) error {
	res, err := t.exec(ctx,
		`UPDATE group_members
		 SET role = ?, updated_by = ?, updated_at = ?, deleted_by = ?, deleted_at = ?
		 WHERE id = ?`,
		member.Role, member.UpdatedBy, member.UpdatedAt, member.DeletedBy, member.DeletedAt, member.ID,
	)
	if err != nil {
		return fmt.Errorf("failed to update group member: %w", err)
	}
	n, err := res.RowsAffected()
	return mustAffect(n, err, "group member", member.ID)
}

// ListMembers returns the group's active members with their users, oldest first.
func (t *tx) ListMembers(ctx context.Context, groupID string) ([]*models.GroupMember, error) {
	query := `
		SELECT ` + memberColumns + `, u.name AS user_name, u.email AS user_email
		FROM group_members m
		JOIN users u ON u.id = m.user_id
		WHERE m.group_id = ? AND ` + active("m") + `
		ORDER BY m.created_at, m.id`

	var rows []memberRow
	if err := t.list(ctx, &rows, query, groupID); err != nil {
		return nil, fmt.Errorf("failed to list group members: %w", err)
	}

	members := make([]*models.GroupMember, len(rows))
	for i := range rows {
		members[i] = rows[i].member()
	}
	return members, nil
}

// DeleteMember tombstones one active membership.
func (t *tx) DeleteMember(ctx context.Context, memberID, actorID string) error {
	n, err := t.tombstone(ctx, "group_members", "id", memberID, actorID)
	return mustAffect(n, err, "group member", memberID)
}

// DeleteMembersByGroup tombstones every active membership of a group.
func (t *tx) DeleteMembersByGroup(ctx context.Context, groupID, actorID string) (int64, error) {
	n, err := t.tombstone(ctx, "group_members", "group_id", groupID, actorID)
	if err != nil {
		return 0, fmt.Errorf("failed to delete group members: %w", err)
	}
	return n, nil
}

// CountMembers returns active member counts keyed by group ID.
func (t *tx) CountMembers(ctx context.Context, groupIDs []string) (map[string]int, error) {
	counts := make(map[string]int, len(groupIDs))
	if len(groupIDs) == 0 {
		return counts, nil
	}

	var rows []struct {
		GroupID string `db:"group_id"`
		N       int    `db:"n"`
	}
	query := `SELECT group_id, COUNT(*) AS n FROM group_members
		WHERE group_id IN (?) AND ` + active("") + ` GROUP BY group_id`
	if err := t.listIn(ctx, &rows, query, groupIDs); err != nil {
		return nil, fmt.Errorf("failed to count group members: %w", err)
	}
	for _, r := range rows {
		counts[r.GroupID] = r.N
	}
	return counts, nil
}

// CountMemberships returns how many active groups userID belongs to.
func (t *tx) CountMemberships(ctx context.Context, userID string) (int, error) {
	var n int
	query := `SELECT COUNT(*) FROM group_members m
		JOIN "groups" g ON g.id = m.group_id
		WHERE m.user_id = ? AND ` + active("m") + ` AND ` + active("g")
	if err := t.get(ctx, &n, query, userID); err != nil {
		return 0, fmt.Errorf("failed to count memberships: %w", err)
	}
	return n, nil
}

// ListCoMembers returns up to limit distinct users who share an active group
// with userID, ordered by name.
func (t *tx) ListCoMembers(ctx context.Context, userID string, limit int) ([]models.UserRef, error) {
	query := `
		SELECT DISTINCT u.id, u.name, u.email
		FROM group_members mine
		JOIN "groups" g ON g.id = mine.group_id
		JOIN group_members other ON other.group_id = mine.group_id
		JOIN users u ON u.id = other.user_id
		WHERE mine.user_id = ? AND other.user_id <> ?
		  AND ` + active("mine") + ` AND ` + active("other") + `
		  AND ` + active("g") + ` AND ` + active("u") + `
		ORDER BY u.name, u.id
		LIMIT ?`

	refs := []models.UserRef{}
	if err := t.list(ctx, &refs, query, userID, userID, limit); err != nil {
		return nil, fmt.Errorf("failed to list co-members: %w", err)
	}
	return refs, nil
}
