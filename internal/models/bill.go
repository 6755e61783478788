package models

import "github.com/shopspring/decimal"

// Bill is one expense event inside a group.
type Bill struct {
	// ID is the unique identifier for the bill (UUID format).
	ID string `db:"id" json:"id"`

	GroupID string `db:"group_id" json:"group_id"`

	// Description is the human-readable label (e.g., "Dinner", "Cab to airport").
	Description string `db:"description" json:"description"`

	// TotalAmount is the full amount paid; always positive.
	TotalAmount decimal.Decimal `db:"total_amount" json:"total_amount"`

	// PaidBy is the user who paid the full amount.
	PaidBy string `db:"paid_by" json:"paid_by"`

	SplitType SplitType `db:"split_type" json:"split_type"`

	Audit

	// Hydrated fields, filled in for responses.
	Payer     *UserRef    `db:"-" json:"payer,omitempty"`
	GroupName string      `db:"-" json:"group_name,omitempty"`
	Shares    []BillShare `db:"-" json:"shares,omitempty"`
}

// BillShare is the amount one user owes against one bill.
// Paid means the debt is settled, not that the user paid the bill.
type BillShare struct {
	ID     string          `db:"id" json:"id"`
	BillID string          `db:"bill_id" json:"bill_id"`
	UserID string          `db:"user_id" json:"user_id"`
	Amount decimal.Decimal `db:"amount" json:"amount"`
	Paid   bool            `db:"paid" json:"paid"`

	Audit

	User *UserRef `db:"-" json:"user,omitempty"`
}
