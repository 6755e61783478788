package sqlstore

import (
	"context"
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/Sanket3107/Rupaya/internal/models"
	"github.com/Sanket3107/Rupaya/internal/storage"
)

const billColumns = `b.id, b.group_id, b.description, b.total_amount, b.paid_by, b.split_type,
	b.created_by, b.updated_by, b.deleted_by, b.created_at, b.updated_at, b.deleted_at`

// billRow is a bill joined with its payer and group names.
type billRow struct {
	models.Bill
	PayerName  string `db:"payer_name"`
	PayerEmail string `db:"payer_email"`
	GroupTitle string `db:"group_name"`
}

func (r *billRow) bill() *models.Bill {
	b := r.Bill
	b.Payer = &models.UserRef{ID: b.PaidBy, Name: r.PayerName, Email: r.PayerEmail}
	b.GroupName = r.GroupTitle
	return &b
}

const billSelect = `
	SELECT ` + billColumns + `,
		p.name AS payer_name, p.email AS payer_email, g.name AS group_name
	FROM bills b
	JOIN users p ON p.id = b.paid_by
	JOIN "groups" g ON g.id = b.group_id`

// CreateBill inserts the bill row. Shares are created separately.
func (t *tx) CreateBill(ctx context.Context, bill *models.Bill) error {
	query := `
		INSERT INTO bills (id, group_id, description, total_amount, paid_by, split_type, created_by, created_at)
		VALUES (:id, :group_id, :description, :total_amount, :paid_by, :split_type, :created_by, :created_at)
	`
	if err := t.insert(ctx, query, bill); err != nil {
		return insertErr(err, "bill")
	}
	return nil
}

// GetBill retrieves an active bill with its payer and group name.
func (t *tx) GetBill(ctx context.Context, billID string) (*models.Bill, error) {
	var row billRow
	if err := t.get(ctx, &row, billSelect+` WHERE b.id = ? AND `+active("b"), billID); err != nil {
		return nil, getErr(err, "bill", billID)
	}
	return row.bill(), nil
}

// LockBill confirms the bill is active and, where the backend supports it,
// holds a row lock on it until the transaction ends.
func (t *tx) LockBill(ctx context.Context, billID string) error {
	var id string
	query := `SELECT id FROM bills WHERE id = ? AND ` + active("") + t.dialect.forUpdate
	if err := t.get(ctx, &id, query, billID); err != nil {
		return getErr(err, "bill", billID)
	}
	return nil
}

// UpdateBill writes the bill's editable fields and update stamps.
func (t *tx) UpdateBill(ctx context.Context, bill *models.Bill) error {
	res, err := t.exec(ctx,
		`UPDATE bills
		 SET description = ?, total_amount = ?, paid_by = ?, split_type = ?, updated_by = ?, updated_at = ?
		 WHERE id = ? AND `+active(""),
		bill.Description, bill.TotalAmount, bill.PaidBy, bill.SplitType, bill.UpdatedBy, bill.UpdatedAt, bill.ID,
	)
	if err != nil {
		return fmt.Errorf("failed to update bill: %w", err)
	}
	n, err := res.RowsAffected()
	return mustAffect(n, err, "bill", bill.ID)
}

// DeleteBill tombstones the bill row. Its shares stay as they are; every
// read joins through the bill.
func (t *tx) DeleteBill(ctx context.Context, billID, actorID string) error {
	n, err := t.tombstone(ctx, "bills", "id", billID, actorID)
	return mustAffect(n, err, "bill", billID)
}

// DeleteBillsByGroup tombstones every active bill in a group.
func (t *tx) DeleteBillsByGroup(ctx context.Context, groupID, actorID string) (int64, error) {
	n, err := t.tombstone(ctx, "bills", "group_id", groupID, actorID)
	if err != nil {
		return 0, fmt.Errorf("failed to delete group bills: %w", err)
	}
	return n, nil
}

// ListBillsByGroup returns one page of a group's active bills, newest first.
func (t *tx) ListBillsByGroup(ctx context.Context, groupID, search string, page storage.Page) ([]*models.Bill, int, error) {
	where := ` WHERE b.group_id = ? AND ` + active("b")
	args := []any{groupID}
	if search != "" {
		where += ` AND ` + t.contains("b.description")
		args = append(args, likePattern(search))
	}

	return t.pageBills(ctx, where, args, page)
}

// ListBillsForUser returns one page of active bills the user paid or holds an
// active share of, in groups where the user is still an active member.
func (t *tx) ListBillsForUser(ctx context.Context, userID string, page storage.Page) ([]*models.Bill, int, error) {
	where := `
		JOIN group_members m ON m.group_id = b.group_id AND m.user_id = ? AND ` + active("m") + `
		WHERE ` + active("b") + ` AND ` + active("g") + `
		  AND (b.paid_by = ? OR EXISTS (
			SELECT 1 FROM bill_shares s
			WHERE s.bill_id = b.id AND s.user_id = ? AND ` + active("s") + `
		  ))`

	return t.pageBills(ctx, where, []any{userID, userID, userID}, page)
}

// pageBills counts and fetches one page of billSelect narrowed by where.
func (t *tx) pageBills(ctx context.Context, where string, args []any, page storage.Page) ([]*models.Bill, int, error) {
	var total int
	countQuery := `SELECT COUNT(*) FROM bills b
	JOIN users p ON p.id = b.paid_by
	JOIN "groups" g ON g.id = b.group_id` + where
	if err := t.get(ctx, &total, countQuery, args...); err != nil {
		return nil, 0, fmt.Errorf("failed to count bills: %w", err)
	}

	var rows []billRow
	query := billSelect + where + ` ORDER BY b.created_at DESC, b.id LIMIT ? OFFSET ?`
	if err := t.list(ctx, &rows, query, append(args, page.Limit, page.Skip)...); err != nil {
		return nil, 0, fmt.Errorf("failed to list bills: %w", err)
	}

	bills := make([]*models.Bill, len(rows))
	for i := range rows {
		bills[i] = rows[i].bill()
	}
	return bills, total, nil
}

// SumBillTotals adds up the group's active bill totals.
// Summed in Go; SQLite would add TEXT amounts as floats.
func (t *tx) SumBillTotals(ctx context.Context, groupID string) (decimal.Decimal, error) {
	var totals []decimal.Decimal
	query := `SELECT total_amount FROM bills WHERE group_id = ? AND ` + active("")
	if err := t.list(ctx, &totals, query, groupID); err != nil {
		return decimal.Zero, fmt.Errorf("failed to sum bill totals: %w", err)
	}
	return decimal.Sum(decimal.Zero, totals...), nil
}
