package calculator

import (
	"sort"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/Sanket3107/Rupaya/internal/apperr"
	"github.com/Sanket3107/Rupaya/internal/models"
)

// GroupMetrics is a group as seen from one user's group list.
type GroupMetrics struct {
	models.Group
	MemberCount int             `json:"member_count"`
	TotalOwed   decimal.Decimal `json:"total_owed"` // Others owe the user in this group
	TotalOwe    decimal.Decimal `json:"total_owe"`  // The user owes others in this group
}

// GroupFilter keeps only groups where the user has an open position.
type GroupFilter string

const (
	FilterNone GroupFilter = ""
	FilterOwe  GroupFilter = "owe"
	FilterOwed GroupFilter = "owed"
)

// GroupSortKey selects the metric a group list is ordered by.
type GroupSortKey string

const (
	SortByCreatedAt GroupSortKey = "created_at"
	SortByName      GroupSortKey = "name"
	SortByOwed      GroupSortKey = "owed"
	SortByOwe       GroupSortKey = "owe"
)

// SortOrder is ascending or descending.
type SortOrder string

const (
	OrderAsc  SortOrder = "asc"
	OrderDesc SortOrder = "desc"
)

func ParseGroupFilter(s string) (GroupFilter, error) {
	switch f := GroupFilter(strings.ToLower(strings.TrimSpace(s))); f {
	case FilterNone, FilterOwe, FilterOwed:
		return f, nil
	}
	return "", apperr.Validation("unknown filter %q", s)
}

// ParseGroupSortKey defaults to created_at.
func ParseGroupSortKey(s string) (GroupSortKey, error) {
	switch k := GroupSortKey(strings.ToLower(strings.TrimSpace(s))); k {
	case "":
		return SortByCreatedAt, nil
	case SortByCreatedAt, SortByName, SortByOwed, SortByOwe:
		return k, nil
	}
	return "", apperr.Validation("unknown sort key %q", s)
}

// ParseSortOrder defaults to descending.
func ParseSortOrder(s string) (SortOrder, error) {
	switch o := SortOrder(strings.ToLower(strings.TrimSpace(s))); o {
	case "":
		return OrderDesc, nil
	case OrderAsc, OrderDesc:
		return o, nil
	}
	return "", apperr.Validation("unknown sort order %q", s)
}

// FilterGroups drops groups without a strictly positive position of the
// requested kind. FilterNone keeps everything.
func FilterGroups(groups []GroupMetrics, filter GroupFilter) []GroupMetrics {
	if filter == FilterNone {
		return groups
	}
	kept := groups[:0:0]
	for _, g := range groups {
		switch filter {
		case FilterOwe:
			if g.TotalOwe.IsPositive() {
				kept = append(kept, g)
			}
		case FilterOwed:
			if g.TotalOwed.IsPositive() {
				kept = append(kept, g)
			}
		}
	}
	return kept
}

// SortGroups orders groups in place. Equal keys keep their input order.
func SortGroups(groups []GroupMetrics, key GroupSortKey, order SortOrder) {
	compare := func(a, b GroupMetrics) int {
		switch key {
		case SortByName:
			return strings.Compare(strings.ToLower(a.Name), strings.ToLower(b.Name))
		case SortByOwed:
			return a.TotalOwed.Cmp(b.TotalOwed)
		case SortByOwe:
			return a.TotalOwe.Cmp(b.TotalOwe)
		}
		switch {
		case a.CreatedAt < b.CreatedAt:
			return -1
		case a.CreatedAt > b.CreatedAt:
			return 1
		}
		return 0
	}

	sort.SliceStable(groups, func(i, j int) bool {
		c := compare(groups[i], groups[j])
		if order == OrderDesc {
			return c > 0
		}
		return c < 0
	})
}
