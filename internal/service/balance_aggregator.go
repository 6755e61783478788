package service

import (
	"context"
	"log/slog"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/Sanket3107/Rupaya/internal/calculator"
	"github.com/Sanket3107/Rupaya/internal/models"
	"github.com/Sanket3107/Rupaya/internal/storage"
)

// friendsLimit caps Summary.Friends.
const friendsLimit = 5

// GroupListQuery shapes a user's group list.
type GroupListQuery struct {
	Search string
	Filter calculator.GroupFilter
	SortBy calculator.GroupSortKey
	Order  calculator.SortOrder
	Page   storage.Page
}

// Summary is a user's overall position, or their position in one group.
type Summary struct {
	TotalOwed  decimal.Decimal  `json:"total_owed"`
	TotalOwe   decimal.Decimal  `json:"total_owe"`
	NetBalance decimal.Decimal  `json:"net_balance"`
	GroupCount int              `json:"group_count"`
	Friends    []models.UserRef `json:"friends"`
}

// GroupBalanceSheet is every member's position in one group and the payments
// that would settle it.
type GroupBalanceSheet struct {
	Members []calculator.MemberBalance `json:"members"`
	Debts   []calculator.DebtEdge      `json:"debts"`
}

// BalanceAggregator answers who owes whom. It only reads.
type BalanceAggregator struct {
	store  storage.Store
	logger *slog.Logger
}

// NewBalanceAggregator creates a BalanceAggregator over store.
func NewBalanceAggregator(store storage.Store, logger *slog.Logger) *BalanceAggregator {
	return &BalanceAggregator{store: store, logger: logger}
}

// NetBalance returns userID's balance across all groups, or inside groupID
// when it is set.
func (a *BalanceAggregator) NetBalance(ctx context.Context, userID, groupID string) (calculator.Balance, error) {
	var balance calculator.Balance
	err := a.store.View(ctx, func(tx storage.Tx) error {
		if groupID != "" {
			if err := requireGroupMember(ctx, tx, userID, groupID); err != nil {
				return err
			}
		}
		shares, err := tx.ListOpenShares(ctx, storage.OpenShareQuery{UserID: userID, GroupID: groupID})
		if err != nil {
			return err
		}
		balance = calculator.NetBalance(userID, shares)
		return nil
	})
	if err != nil {
		a.logger.Warn("NetBalance failed", "user_id", userID, "group_id", groupID, "error", err)
		return calculator.Balance{}, err
	}
	return balance, nil
}

// TotalSpent sums the active bill totals of a group the caller belongs to.
func (a *BalanceAggregator) TotalSpent(ctx context.Context, actorID, groupID string) (decimal.Decimal, error) {
	var total decimal.Decimal
	err := a.store.View(ctx, func(tx storage.Tx) error {
		if err := requireGroupMember(ctx, tx, actorID, groupID); err != nil {
			return err
		}
		var err error
		total, err = tx.SumBillTotals(ctx, groupID)
		return err
	})
	if err != nil {
		a.logger.Warn("TotalSpent failed", "group_id", groupID, "error", err)
		return decimal.Zero, err
	}
	return total, nil
}

// ListUserGroups returns one page of the user's groups with member counts and
// the user's position in each. Filtering and sorting run over the computed
// metrics before the page is cut.
func (a *BalanceAggregator) ListUserGroups(ctx context.Context, userID string, q GroupListQuery) (storage.Paginated[calculator.GroupMetrics], error) {
	a.logger.Info("ListUserGroups request received",
		"user_id", userID,
		"search", q.Search,
		"filter", string(q.Filter),
		"sort_by", string(q.SortBy),
		"order", string(q.Order),
	)

	var all []calculator.GroupMetrics
	err := a.store.View(ctx, func(tx storage.Tx) error {
		groups, err := tx.ListGroupsForUser(ctx, userID, strings.TrimSpace(q.Search))
		if err != nil {
			return err
		}
		ids := make([]string, len(groups))
		for i, g := range groups {
			ids[i] = g.ID
		}
		counts, err := tx.CountMembers(ctx, ids)
		if err != nil {
			return err
		}
		shares, err := tx.ListOpenShares(ctx, storage.OpenShareQuery{UserID: userID})
		if err != nil {
			return err
		}
		balances := calculator.BalancesByGroup(userID, shares)

		all = make([]calculator.GroupMetrics, len(groups))
		for i, g := range groups {
			b := balances[g.ID]
			all[i] = calculator.GroupMetrics{
				Group:       *g,
				MemberCount: counts[g.ID],
				TotalOwed:   b.OwedToMe,
				TotalOwe:    b.IOwe,
			}
		}
		return nil
	})
	if err != nil {
		a.logger.Error("ListUserGroups failed", "user_id", userID, "error", err)
		return storage.Paginated[calculator.GroupMetrics]{}, err
	}

	sortBy, order := q.SortBy, q.Order
	if sortBy == "" {
		sortBy = calculator.SortByCreatedAt
	}
	if order == "" {
		order = calculator.OrderDesc
	}
	all = calculator.FilterGroups(all, q.Filter)
	calculator.SortGroups(all, sortBy, order)

	result := storage.PaginateSlice(all, q.Page)
	a.logger.Info("ListUserGroups successful", "user_id", userID, "total", result.Total)
	return result, nil
}

// UserSummary returns the user's totals. Scoped to a group it counts just
// that group and lists no friends.
func (a *BalanceAggregator) UserSummary(ctx context.Context, userID, groupID string) (*Summary, error) {
	summary := &Summary{Friends: []models.UserRef{}}
	err := a.store.View(ctx, func(tx storage.Tx) error {
		if groupID != "" {
			if err := requireGroupMember(ctx, tx, userID, groupID); err != nil {
				return err
			}
			summary.GroupCount = 1
		} else {
			n, err := tx.CountMemberships(ctx, userID)
			if err != nil {
				return err
			}
			summary.GroupCount = n
			if summary.Friends, err = tx.ListCoMembers(ctx, userID, friendsLimit); err != nil {
				return err
			}
		}

		shares, err := tx.ListOpenShares(ctx, storage.OpenShareQuery{UserID: userID, GroupID: groupID})
		if err != nil {
			return err
		}
		b := calculator.NetBalance(userID, shares)
		summary.TotalOwed, summary.TotalOwe, summary.NetBalance = b.OwedToMe, b.IOwe, b.Net()
		return nil
	})
	if err != nil {
		a.logger.Warn("UserSummary failed", "user_id", userID, "group_id", groupID, "error", err)
		return nil, err
	}
	return summary, nil
}

// GroupBalances returns every member's position in a group the caller
// belongs to, with simplified settling payments.
func (a *BalanceAggregator) GroupBalances(ctx context.Context, actorID, groupID string) (*GroupBalanceSheet, error) {
	var sheet *GroupBalanceSheet
	err := a.store.View(ctx, func(tx storage.Tx) error {
		if err := requireGroupMember(ctx, tx, actorID, groupID); err != nil {
			return err
		}
		var err error
		sheet, err = groupBalanceSheet(ctx, tx, groupID)
		return err
	})
	if err != nil {
		a.logger.Warn("GroupBalances failed", "group_id", groupID, "error", err)
		return nil, err
	}
	return sheet, nil
}

func groupBalanceSheet(ctx context.Context, tx storage.Tx, groupID string) (*GroupBalanceSheet, error) {
	shares, err := tx.ListOpenShares(ctx, storage.OpenShareQuery{GroupID: groupID})
	if err != nil {
		return nil, err
	}
	members, debts := calculator.GroupBalances(shares)
	if members == nil {
		members = []calculator.MemberBalance{}
	}
	if debts == nil {
		debts = []calculator.DebtEdge{}
	}

	ids := make([]string, len(members))
	for i, m := range members {
		ids[i] = m.UserID
	}
	users, err := tx.GetUsersByIDs(ctx, ids)
	if err != nil {
		return nil, err
	}
	ref := func(id string) *models.UserRef {
		if u, ok := users[id]; ok {
			r := u.Ref()
			return &r
		}
		return nil
	}
	for i := range members {
		members[i].User = ref(members[i].UserID)
	}
	for i := range debts {
		debts[i].FromUser, debts[i].ToUser = ref(debts[i].From), ref(debts[i].To)
	}
	return &GroupBalanceSheet{Members: members, Debts: debts}, nil
}

// requireGroupMember resolves the group (NotFound) and the caller's
// membership in it (Forbidden).
func requireGroupMember(ctx context.Context, tx storage.Tx, userID, groupID string) error {
	if _, err := tx.GetGroup(ctx, groupID); err != nil {
		return err
	}
	_, err := NewMembershipGuard(tx).RequireMember(ctx, userID, groupID)
	return err
}
