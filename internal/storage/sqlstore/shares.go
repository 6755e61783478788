package sqlstore

import (
	"context"
	"fmt"

	"github.com/Sanket3107/Rupaya/internal/calculator"
	"github.com/Sanket3107/Rupaya/internal/models"
	"github.com/Sanket3107/Rupaya/internal/storage"
)

const shareColumns = `s.id, s.bill_id, s.user_id, s.amount, s.paid,
	s.created_by, s.updated_by, s.deleted_by, s.created_at, s.updated_at, s.deleted_at`

// shareRow is a share joined with its user.
type shareRow struct {
	models.BillShare
	UserName  string `db:"user_name"`
	UserEmail string `db:"user_email"`
}

// CreateShare inserts a share. A second active share for the same
// (bill, user) is a conflict.
func (t *tx) CreateShare(ctx context.Context, share *models.BillShare) error {
	query := `
		INSERT INTO bill_shares (id, bill_id, user_id, amount, paid, created_by, created_at)
		VALUES (:id, :bill_id, :user_id, :amount, :paid, :created_by, :created_at)
	`
	if err := t.insert(ctx, query, share); err != nil {
		return insertErr(err, "bill share")
	}
	return nil
}

// GetShare retrieves an active share.
func (t *tx) GetShare(ctx context.Context, shareID string) (*models.BillShare, error) {
	share := &models.BillShare{}
	query := `SELECT ` + shareColumns + ` FROM bill_shares s WHERE s.id = ? AND ` + active("s")
	if err := t.get(ctx, share, query, shareID); err != nil {
		return nil, getErr(err, "bill share", shareID)
	}
	return share, nil
}

// ListSharesByBills returns the active shares of the given bills with their
// users, grouped by bill in creation order.
func (t *tx) ListSharesByBills(ctx context.Context, billIDs []string) ([]*models.BillShare, error) {
	if len(billIDs) == 0 {
		return []*models.BillShare{}, nil
	}

	query := `
		SELECT ` + shareColumns + `, u.name AS user_name, u.email AS user_email
		FROM bill_shares s
		JOIN users u ON u.id = s.user_id
		WHERE s.bill_id IN (?) AND ` + active("s") + `
		ORDER BY s.bill_id, s.created_at, s.id`

	var rows []shareRow
	if err := t.listIn(ctx, &rows, query, billIDs); err != nil {
		return nil, fmt.Errorf("failed to list bill shares: %w", err)
	}

	shares := make([]*models.BillShare, len(rows))
	for i := range rows {
		s := rows[i].BillShare
		s.User = &models.UserRef{ID: s.UserID, Name: rows[i].UserName, Email: rows[i].UserEmail}
		shares[i] = &s
	}
	return shares, nil
}

// UpdateShare writes amount, paid and update stamps.
func (t *tx) UpdateShare(ctx context.Context, share *models.BillShare) error {
	res, err := t.exec(ctx,
		`UPDATE bill_shares SET amount = ?, paid = ?, updated_by = ?, updated_at = ?
		 WHERE id = ? AND `+active(""),
		share.Amount, share.Paid, share.UpdatedBy, share.UpdatedAt, share.ID,
	)
	if err != nil {
		return fmt.Errorf("failed to update bill share: %w", err)
	}
	n, err := res.RowsAffected()
	return mustAffect(n, err, "bill share", share.ID)
}

// DeleteShare tombstones one active share.
func (t *tx) DeleteShare(ctx context.Context, shareID, actorID string) error {
	n, err := t.tombstone(ctx, "bill_shares", "id", shareID, actorID)
	return mustAffect(n, err, "bill share", shareID)
}

// SetSharePaid flips paid only if it currently holds !paid.
func (t *tx) SetSharePaid(ctx context.Context, shareID string, paid bool, actorID string) (bool, error) {
	res, err := t.exec(ctx,
		`UPDATE bill_shares SET paid = ?, updated_by = ?, updated_at = ?
		 WHERE id = ? AND paid = ? AND `+active(""),
		paid, actorID, nowMillis(), shareID, !paid,
	)
	if err != nil {
		return false, fmt.Errorf("failed to update bill share: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("failed to update bill share: %w", err)
	}
	return n > 0, nil
}

// ListOpenShares returns active unpaid shares on active bills in active
// groups, excluding payers' own shares.
func (t *tx) ListOpenShares(ctx context.Context, q storage.OpenShareQuery) ([]calculator.OpenShare, error) {
	query := `
		SELECT b.group_id, b.id AS bill_id, b.paid_by, s.user_id, s.amount
		FROM bill_shares s
		JOIN bills b ON b.id = s.bill_id
		JOIN "groups" g ON g.id = b.group_id
		WHERE ` + active("s") + ` AND ` + active("b") + ` AND ` + active("g") + `
		  AND s.paid = ? AND s.user_id <> b.paid_by`
	args := []any{false}
	if q.UserID != "" {
		query += ` AND (b.paid_by = ? OR s.user_id = ?)`
		args = append(args, q.UserID, q.UserID)
	}
	if q.GroupID != "" {
		query += ` AND b.group_id = ?`
		args = append(args, q.GroupID)
	}
	query += ` ORDER BY b.created_at, s.id`

	shares := []calculator.OpenShare{}
	if err := t.list(ctx, &shares, query, args...); err != nil {
		return nil, fmt.Errorf("failed to list open shares: %w", err)
	}
	return shares, nil
}
