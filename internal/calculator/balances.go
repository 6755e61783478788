package calculator

import (
	"sort"

	"github.com/shopspring/decimal"

	"github.com/Sanket3107/Rupaya/internal/models"
)

// OpenShare is an active, unsettled share on an active bill, with just the
// information balance calculations need.
type OpenShare struct {
	GroupID  string          `db:"group_id"`
	BillID   string          `db:"bill_id"`
	PayerID  string          `db:"paid_by"`
	DebtorID string          `db:"user_id"`
	Amount   decimal.Decimal `db:"amount"`
}

// Balance is one user's position: what others owe them and what they owe.
type Balance struct {
	OwedToMe decimal.Decimal `json:"owed_to_me"`
	IOwe     decimal.Decimal `json:"i_owe"`
}

// Net is OwedToMe minus IOwe. Positive means the user is owed money.
func (b Balance) Net() decimal.Decimal {
	return b.OwedToMe.Sub(b.IOwe)
}

func (b *Balance) add(userID string, s OpenShare) {
	if s.DebtorID == s.PayerID {
		return
	}
	switch userID {
	case s.PayerID:
		b.OwedToMe = b.OwedToMe.Add(s.Amount)
	case s.DebtorID:
		b.IOwe = b.IOwe.Add(s.Amount)
	}
}

// NetBalance folds open shares into userID's balance.
// Shares the user is not party to are ignored, as is the payer's own share.
func NetBalance(userID string, shares []OpenShare) Balance {
	var b Balance
	for _, s := range shares {
		b.add(userID, s)
	}
	return b
}

// BalancesByGroup is NetBalance computed separately for every group that
// appears in shares.
func BalancesByGroup(userID string, shares []OpenShare) map[string]Balance {
	out := make(map[string]Balance)
	for _, s := range shares {
		b := out[s.GroupID]
		b.add(userID, s)
		out[s.GroupID] = b
	}
	return out
}

// MemberBalance is one member's position inside a group.
type MemberBalance struct {
	UserID     string          `json:"user_id"`
	NetBalance decimal.Decimal `json:"net_balance"` // Positive = owed money, Negative = owes money
	TotalOwed  decimal.Decimal `json:"total_owed"`  // Others owe this member
	TotalOwe   decimal.Decimal `json:"total_owe"`   // This member owes others

	User *models.UserRef `json:"user,omitempty"`
}

// DebtEdge is a suggested payment from one member to another.
type DebtEdge struct {
	From   string          `json:"from"` // Member who owes
	To     string          `json:"to"`   // Member who is owed
	Amount decimal.Decimal `json:"amount"`

	FromUser *models.UserRef `json:"from_user,omitempty"`
	ToUser   *models.UserRef `json:"to_user,omitempty"`
}

// GroupBalances computes every member's balance across a group's open shares
// and a simplified list of payments that would settle the group.
//
// Algorithm:
//   - each open share moves its amount from the debtor to the payer
//   - net_balance = total_owed - total_owe
//   - debts are simplified greedily, largest debtor against largest creditor
func GroupBalances(shares []OpenShare) ([]MemberBalance, []DebtEdge) {
	balances := make(map[string]*MemberBalance)
	get := func(id string) *MemberBalance {
		if _, ok := balances[id]; !ok {
			balances[id] = &MemberBalance{UserID: id}
		}
		return balances[id]
	}

	for _, s := range shares {
		if s.DebtorID == s.PayerID {
			continue
		}
		creditor := get(s.PayerID)
		creditor.TotalOwed = creditor.TotalOwed.Add(s.Amount)
		debtor := get(s.DebtorID)
		debtor.TotalOwe = debtor.TotalOwe.Add(s.Amount)
	}

	members := make([]MemberBalance, 0, len(balances))
	for _, b := range balances {
		b.NetBalance = b.TotalOwed.Sub(b.TotalOwe)
		members = append(members, *b)
	}
	sort.Slice(members, func(i, j int) bool {
		if c := members[i].NetBalance.Cmp(members[j].NetBalance); c != 0 {
			return c > 0
		}
		return members[i].UserID < members[j].UserID
	})

	return members, simplifyDebts(members)
}

// simplifyDebts expects members sorted by net balance, largest first.
func simplifyDebts(members []MemberBalance) []DebtEdge {
	var creditors, debtors []MemberBalance
	for _, m := range members {
		switch m.NetBalance.Sign() {
		case 1:
			creditors = append(creditors, m)
		case -1:
			debtors = append(debtors, m)
		}
	}
	// Largest debt first.
	sort.SliceStable(debtors, func(i, j int) bool {
		return debtors[i].NetBalance.LessThan(debtors[j].NetBalance)
	})

	remainingDebt := make([]decimal.Decimal, len(debtors))
	for i, d := range debtors {
		remainingDebt[i] = d.NetBalance.Neg()
	}
	remainingCredit := make([]decimal.Decimal, len(creditors))
	for j, c := range creditors {
		remainingCredit[j] = c.NetBalance
	}

	var edges []DebtEdge
	i, j := 0, 0
	for i < len(debtors) && j < len(creditors) {
		amount := decimal.Min(remainingDebt[i], remainingCredit[j])
		if amount.GreaterThanOrEqual(tolerance()) {
			edges = append(edges, DebtEdge{
				From:   debtors[i].UserID,
				To:     creditors[j].UserID,
				Amount: amount,
			})
		}

		remainingDebt[i] = remainingDebt[i].Sub(amount)
		remainingCredit[j] = remainingCredit[j].Sub(amount)

		if remainingDebt[i].LessThan(tolerance()) {
			i++
		}
		if remainingCredit[j].LessThan(tolerance()) {
			j++
		}
	}
	return edges
}
