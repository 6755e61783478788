package service

import (
	"context"
	"log/slog"
	"strings"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/Sanket3107/Rupaya/internal/apperr"
	"github.com/Sanket3107/Rupaya/internal/calculator"
	"github.com/Sanket3107/Rupaya/internal/models"
	"github.com/Sanket3107/Rupaya/internal/storage"
)

// ShareInput is one requested participant of a split.
// Amount is ignored for EQUAL splits.
type ShareInput struct {
	UserID string          `json:"user_id"`
	Amount decimal.Decimal `json:"amount"`
}

// CreateBillInput describes a new bill. PaidBy defaults to the caller.
type CreateBillInput struct {
	GroupID     string           `json:"group_id"`
	Description string           `json:"description"`
	TotalAmount decimal.Decimal  `json:"total_amount"`
	SplitType   models.SplitType `json:"split_type"`
	PaidBy      string           `json:"paid_by"`
	Shares      []ShareInput     `json:"shares"`
}

// UpdateBillInput is a partial change to a bill. Nil fields are left as
// they are; a nil Shares keeps the current participant set.
type UpdateBillInput struct {
	Description *string           `json:"description"`
	TotalAmount *decimal.Decimal  `json:"total_amount"`
	SplitType   *models.SplitType `json:"split_type"`
	PaidBy      *string           `json:"paid_by"`
	Shares      []ShareInput      `json:"shares"`
}

// BillLedger records bills and their shares and tracks settlement.
type BillLedger struct {
	store  storage.Store
	logger *slog.Logger
}

// NewBillLedger creates a BillLedger over store.
func NewBillLedger(store storage.Store, logger *slog.Logger) *BillLedger {
	return &BillLedger{store: store, logger: logger}
}

// Create records a bill and its shares in one transaction and returns the
// hydrated bill.
func (l *BillLedger) Create(ctx context.Context, actorID string, in CreateBillInput) (*models.Bill, error) {
	l.logger.Info("CreateBill request received",
		"actor_id", actorID,
		"group_id", in.GroupID,
		"split_type", in.SplitType.String(),
		"shares_count", len(in.Shares),
	)

	description := strings.TrimSpace(in.Description)
	if description == "" {
		return nil, apperr.Validation("description is required")
	}
	if in.SplitType.IsZero() {
		return nil, apperr.Validation("split type is required")
	}
	payerID := in.PaidBy
	if payerID == "" {
		payerID = actorID
	}

	var bill *models.Bill
	err := l.store.Update(ctx, func(tx storage.Tx) error {
		if err := requireGroupMember(ctx, tx, actorID, in.GroupID); err != nil {
			return err
		}

		participants := toParticipants(in.Shares)
		shares, err := calculator.CalculateShares(in.SplitType, in.TotalAmount, participants, payerID)
		if err != nil {
			return err
		}
		if err := requireParticipants(ctx, tx, in.GroupID, append(participantIDs(participants), payerID)...); err != nil {
			return err
		}

		b := &models.Bill{
			ID:          uuid.NewString(),
			GroupID:     in.GroupID,
			Description: description,
			TotalAmount: in.TotalAmount,
			PaidBy:      payerID,
			SplitType:   in.SplitType,
			Audit:       models.NewAudit(actorID),
		}
		if err := tx.CreateBill(ctx, b); err != nil {
			return err
		}
		for _, s := range shares {
			if err := tx.CreateShare(ctx, newShare(b.ID, actorID, s)); err != nil {
				return err
			}
		}

		bill, err = loadBill(ctx, tx, b.ID)
		return err
	})
	if err != nil {
		l.logger.Error("CreateBill failed", "group_id", in.GroupID, "error", err)
		return nil, err
	}

	l.logger.Info("Bill created",
		"bill_id", bill.ID,
		"total", bill.TotalAmount.StringFixed(2),
		"shares_count", len(bill.Shares),
	)
	return bill, nil
}

// Update applies a partial change to a bill and reconciles its shares.
//
// Explicit shares are recomputed against the effective total, policy and
// payer. Without them, a change to any of those recomputes EQUAL bills over
// the existing participants and re-checks EXACT bills' existing amounts
// against the new total.
func (l *BillLedger) Update(ctx context.Context, actorID, billID string, in UpdateBillInput) (*models.Bill, error) {
	l.logger.Info("UpdateBill request received", "actor_id", actorID, "bill_id", billID)

	var bill *models.Bill
	err := l.store.Update(ctx, func(tx storage.Tx) error {
		// Lock before reading shares so a concurrent edit cannot reconcile
		// against a stale share set.
		if err := tx.LockBill(ctx, billID); err != nil {
			return err
		}
		current, err := tx.GetBill(ctx, billID)
		if err != nil {
			return err
		}
		if _, err := NewMembershipGuard(tx).RequireMember(ctx, actorID, current.GroupID); err != nil {
			return err
		}
		existing, err := tx.ListSharesByBills(ctx, []string{billID})
		if err != nil {
			return err
		}

		total, policy, payerID := current.TotalAmount, current.SplitType, current.PaidBy
		if in.TotalAmount != nil {
			total = *in.TotalAmount
		}
		if in.SplitType != nil {
			policy = *in.SplitType
		}
		if in.PaidBy != nil {
			payerID = *in.PaidBy
			if err := requireParticipants(ctx, tx, current.GroupID, payerID); err != nil {
				return err
			}
		}
		changed := !total.Equal(current.TotalAmount) || policy != current.SplitType || payerID != current.PaidBy

		var participants []calculator.Participant
		switch {
		case in.Shares != nil:
			participants = toParticipants(in.Shares)
		case changed:
			participants = make([]calculator.Participant, len(existing))
			for i, s := range existing {
				participants[i] = calculator.Participant{UserID: s.UserID, Amount: s.Amount}
			}
		}

		if participants != nil {
			shares, err := calculator.CalculateShares(policy, total, participants, payerID)
			if err != nil {
				return err
			}
			if in.Shares != nil {
				if err := requireParticipants(ctx, tx, current.GroupID, participantIDs(participants)...); err != nil {
					return err
				}
			}
			if err := reconcileShares(ctx, tx, billID, actorID, existing, shares); err != nil {
				return err
			}
		}

		if in.Description != nil {
			description := strings.TrimSpace(*in.Description)
			if description == "" {
				return apperr.Validation("description cannot be empty")
			}
			current.Description = description
		}
		current.TotalAmount, current.SplitType, current.PaidBy = total, policy, payerID
		current.Touch(actorID)
		if err := tx.UpdateBill(ctx, current); err != nil {
			return err
		}

		bill, err = loadBill(ctx, tx, billID)
		return err
	})
	if err != nil {
		l.logger.Error("UpdateBill failed", "bill_id", billID, "error", err)
		return nil, err
	}

	l.logger.Info("Bill updated", "bill_id", bill.ID, "shares_count", len(bill.Shares))
	return bill, nil
}

// reconcileShares makes the bill's active shares match next: surviving users
// are updated in place, missing ones tombstoned and new ones inserted. Every
// surviving row's paid flag is reset from the payer comparison.
func reconcileShares(ctx context.Context, tx storage.ShareStore, billID, actorID string, existing []*models.BillShare, next []calculator.Share) error {
	wanted := make(map[string]calculator.Share, len(next))
	for _, s := range next {
		wanted[s.UserID] = s
	}

	kept := make(map[string]bool, len(existing))
	for _, old := range existing {
		s, ok := wanted[old.UserID]
		if !ok {
			if err := tx.DeleteShare(ctx, old.ID, actorID); err != nil {
				return err
			}
			continue
		}
		kept[old.UserID] = true
		old.Amount = s.Amount
		old.Paid = s.Paid
		old.Touch(actorID)
		if err := tx.UpdateShare(ctx, old); err != nil {
			return err
		}
	}

	for _, s := range next {
		if kept[s.UserID] {
			continue
		}
		if err := tx.CreateShare(ctx, newShare(billID, actorID, s)); err != nil {
			return err
		}
	}
	return nil
}

// MarkPaid settles the caller's own share.
func (l *BillLedger) MarkPaid(ctx context.Context, actorID, shareID string) (*models.BillShare, error) {
	return l.setPaid(ctx, "MarkPaid", actorID, shareID, true)
}

// MarkUnpaid reopens the caller's own share.
func (l *BillLedger) MarkUnpaid(ctx context.Context, actorID, shareID string) (*models.BillShare, error) {
	return l.setPaid(ctx, "MarkUnpaid", actorID, shareID, false)
}

func (l *BillLedger) setPaid(ctx context.Context, op, actorID, shareID string, paid bool) (*models.BillShare, error) {
	l.logger.Info(op+" request received", "actor_id", actorID, "share_id", shareID)

	var share *models.BillShare
	err := l.store.Update(ctx, func(tx storage.Tx) error {
		current, err := tx.GetShare(ctx, shareID)
		if err != nil {
			return err
		}
		bill, err := tx.GetBill(ctx, current.BillID)
		if err != nil {
			return err
		}
		if _, err := NewMembershipGuard(tx).RequireMember(ctx, actorID, bill.GroupID); err != nil {
			return err
		}
		if current.UserID != actorID {
			return apperr.Forbidden("you can only settle your own share")
		}

		ok, err := tx.SetSharePaid(ctx, shareID, paid, actorID)
		if err != nil {
			return err
		}
		if !ok {
			if paid {
				return apperr.Validation("share is already marked as paid")
			}
			return apperr.Validation("share is already marked as unpaid")
		}

		share, err = tx.GetShare(ctx, shareID)
		return err
	})
	if err != nil {
		l.logger.Error(op+" failed", "share_id", shareID, "error", err)
		return nil, err
	}

	l.logger.Info("Share settlement changed", "share_id", shareID, "paid", share.Paid)
	return share, nil
}

// GetDetails returns a hydrated bill the caller can see.
func (l *BillLedger) GetDetails(ctx context.Context, actorID, billID string) (*models.Bill, error) {
	var bill *models.Bill
	err := l.store.View(ctx, func(tx storage.Tx) error {
		b, err := tx.GetBill(ctx, billID)
		if err != nil {
			return err
		}
		if _, err := NewMembershipGuard(tx).RequireMember(ctx, actorID, b.GroupID); err != nil {
			return err
		}
		bill, err = loadBill(ctx, tx, billID)
		return err
	})
	if err != nil {
		l.logger.Warn("GetBill failed", "bill_id", billID, "error", err)
		return nil, err
	}
	return bill, nil
}

// ListForGroup returns one page of a group's bills, optionally narrowed by a
// case-insensitive match on description.
func (l *BillLedger) ListForGroup(ctx context.Context, actorID, groupID, search string, page storage.Page) (storage.Paginated[*models.Bill], error) {
	var result storage.Paginated[*models.Bill]
	err := l.store.View(ctx, func(tx storage.Tx) error {
		if err := requireGroupMember(ctx, tx, actorID, groupID); err != nil {
			return err
		}
		bills, total, err := tx.ListBillsByGroup(ctx, groupID, strings.TrimSpace(search), page)
		if err != nil {
			return err
		}
		if err := attachShares(ctx, tx, bills); err != nil {
			return err
		}
		result = storage.NewPaginated(bills, total, page)
		return nil
	})
	if err != nil {
		l.logger.Warn("ListGroupBills failed", "group_id", groupID, "error", err)
		return result, err
	}
	return result, nil
}

// ListForUser returns one page of the caller's activity: bills they paid or
// hold a share of, in groups they still belong to.
func (l *BillLedger) ListForUser(ctx context.Context, actorID string, page storage.Page) (storage.Paginated[*models.Bill], error) {
	var result storage.Paginated[*models.Bill]
	err := l.store.View(ctx, func(tx storage.Tx) error {
		bills, total, err := tx.ListBillsForUser(ctx, actorID, page)
		if err != nil {
			return err
		}
		if err := attachShares(ctx, tx, bills); err != nil {
			return err
		}
		result = storage.NewPaginated(bills, total, page)
		return nil
	})
	if err != nil {
		l.logger.Warn("ListUserActivity failed", "user_id", actorID, "error", err)
		return result, err
	}
	return result, nil
}

// Delete tombstones a bill. The bill's creator and group admins may delete it.
func (l *BillLedger) Delete(ctx context.Context, actorID, billID string) error {
	l.logger.Info("DeleteBill request received", "actor_id", actorID, "bill_id", billID)

	err := l.store.Update(ctx, func(tx storage.Tx) error {
		bill, err := tx.GetBill(ctx, billID)
		if err != nil {
			return err
		}
		member, err := NewMembershipGuard(tx).RequireMember(ctx, actorID, bill.GroupID)
		if err != nil {
			return err
		}
		creator := bill.CreatedBy != nil && *bill.CreatedBy == actorID
		if !creator && !member.IsAdmin() {
			return apperr.Forbidden("only the bill creator or a group admin can delete this bill")
		}
		return tx.DeleteBill(ctx, billID, actorID)
	})
	if err != nil {
		l.logger.Error("DeleteBill failed", "bill_id", billID, "error", err)
		return err
	}

	l.logger.Info("Bill deleted", "bill_id", billID)
	return nil
}

// loadBill reads a bill with its shares.
func loadBill(ctx context.Context, tx storage.Tx, billID string) (*models.Bill, error) {
	bill, err := tx.GetBill(ctx, billID)
	if err != nil {
		return nil, err
	}
	if err := attachShares(ctx, tx, []*models.Bill{bill}); err != nil {
		return nil, err
	}
	return bill, nil
}

// attachShares fills in Shares on each bill with one query.
func attachShares(ctx context.Context, tx storage.ShareStore, bills []*models.Bill) error {
	if len(bills) == 0 {
		return nil
	}
	ids := make([]string, len(bills))
	byID := make(map[string]*models.Bill, len(bills))
	for i, b := range bills {
		ids[i] = b.ID
		byID[b.ID] = b
		b.Shares = []models.BillShare{}
	}

	shares, err := tx.ListSharesByBills(ctx, ids)
	if err != nil {
		return err
	}
	for _, s := range shares {
		b := byID[s.BillID]
		b.Shares = append(b.Shares, *s)
	}
	return nil
}

func newShare(billID, actorID string, s calculator.Share) *models.BillShare {
	return &models.BillShare{
		ID:     uuid.NewString(),
		BillID: billID,
		UserID: s.UserID,
		Amount: s.Amount,
		Paid:   s.Paid,
		Audit:  models.NewAudit(actorID),
	}
}

func toParticipants(in []ShareInput) []calculator.Participant {
	out := make([]calculator.Participant, len(in))
	for i, s := range in {
		out[i] = calculator.Participant{UserID: s.UserID, Amount: s.Amount}
	}
	return out
}

func participantIDs(participants []calculator.Participant) []string {
	ids := make([]string, len(participants))
	for i, p := range participants {
		ids[i] = p.UserID
	}
	return ids
}
