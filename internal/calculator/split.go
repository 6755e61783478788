// Package calculator holds the pure ledger math: deriving shares from a bill
// and folding open shares into balances. Nothing here performs I/O.
package calculator

import (
	"github.com/shopspring/decimal"

	"github.com/Sanket3107/Rupaya/internal/apperr"
	"github.com/Sanket3107/Rupaya/internal/models"
)

// tolerance is the smallest rejected gap between an exact split and its
// total. A gap must be strictly smaller than one cent to be accepted.
func tolerance() decimal.Decimal { return decimal.New(1, -2) }

// Participant is one input row of a split.
// Amount is only read for EXACT splits.
type Participant struct {
	UserID string
	Amount decimal.Decimal
}

// Share is one computed output row of a split.
type Share struct {
	UserID string
	Amount decimal.Decimal
	Paid   bool
}

// CalculateShares derives per-participant shares for a bill.
//
// EQUAL: every participant gets the total divided by the participant count,
// truncated to cents; the last participant absorbs the remainder so the shares
// sum to the total exactly.
//
// EXACT: the supplied amounts are kept as-is and must sum to the total to
// within one cent, exclusive.
//
// A share is pre-settled (Paid) iff it belongs to the payer.
func CalculateShares(policy models.SplitType, total decimal.Decimal, participants []Participant, payerID string) ([]Share, error) {
	if !total.IsPositive() {
		return nil, apperr.Validation("total amount must be greater than zero")
	}
	if err := validateParticipants(participants); err != nil {
		return nil, err
	}

	switch policy {
	case models.SplitEqual:
		return equalShares(total, participants, payerID)
	case models.SplitExact:
		return exactShares(total, participants, payerID)
	}
	return nil, apperr.Validation("split type %q not implemented", policy.String())
}

func validateParticipants(participants []Participant) error {
	seen := make(map[string]bool, len(participants))
	for _, p := range participants {
		if p.UserID == "" {
			return apperr.Validation("participant user id is required")
		}
		if seen[p.UserID] {
			return apperr.Validation("participant %s is listed more than once", p.UserID)
		}
		seen[p.UserID] = true
	}
	return nil
}

func equalShares(total decimal.Decimal, participants []Participant, payerID string) ([]Share, error) {
	count := int64(len(participants))
	if count == 0 {
		return nil, apperr.Validation("at least one person must be involved in the split")
	}

	each := total.Div(decimal.NewFromInt(count)).Truncate(2)
	last := total.Sub(each.Mul(decimal.NewFromInt(count - 1)))

	shares := make([]Share, len(participants))
	for i, p := range participants {
		amount := each
		if i == len(participants)-1 {
			amount = last
		}
		shares[i] = Share{UserID: p.UserID, Amount: amount, Paid: p.UserID == payerID}
	}
	return shares, nil
}

func exactShares(total decimal.Decimal, participants []Participant, payerID string) ([]Share, error) {
	if len(participants) == 0 {
		return nil, apperr.Validation("at least one person must be involved in the split")
	}

	sum := decimal.Zero
	shares := make([]Share, len(participants))
	for i, p := range participants {
		if p.Amount.IsNegative() {
			return nil, apperr.Validation("share amount for %s cannot be negative", p.UserID)
		}
		sum = sum.Add(p.Amount)
		shares[i] = Share{UserID: p.UserID, Amount: p.Amount, Paid: p.UserID == payerID}
	}

	if sum.Sub(total).Abs().GreaterThanOrEqual(tolerance()) {
		return nil, apperr.Validation("sum of shares (%s) must equal total amount (%s)",
			sum.StringFixed(2), total.StringFixed(2))
	}
	return shares, nil
}
