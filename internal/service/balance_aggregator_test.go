package service

import (
	"testing"

	"github.com/shopspring/decimal"

	"github.com/Sanket3107/Rupaya/internal/apperr"
	"github.com/Sanket3107/Rupaya/internal/calculator"
	"github.com/Sanket3107/Rupaya/internal/storage"
)

func TestBalancesAreAntisymmetric(t *testing.T) {
	f := setup(t)
	alice, bob, carol := f.user(t, "alice"), f.user(t, "bob"), f.user(t, "carol")
	g := f.group(t, "Flat", alice, bob, carol)

	f.equalBill(t, g, alice, "30", alice, bob, carol)
	f.equalBill(t, g, bob, "12", alice, bob)
	f.equalBill(t, g, carol, "7.50", alice, bob, carol)

	sum := decimal.Zero
	for _, u := range []string{alice.ID, bob.ID, carol.ID} {
		b, err := f.balances.NetBalance(f.ctx, u, g.ID)
		if err != nil {
			t.Fatalf("NetBalance failed: %v", err)
		}
		sum = sum.Add(b.Net())
	}
	if !sum.IsZero() {
		t.Errorf("net balances sum to %s, want 0", sum)
	}

	sheet, err := f.balances.GroupBalances(f.ctx, bob.ID, g.ID)
	if err != nil {
		t.Fatalf("GroupBalances failed: %v", err)
	}
	names := map[string]string{alice.ID: "alice", bob.ID: "bob", carol.ID: "carol"}
	for _, m := range sheet.Members {
		b, err := f.balances.NetBalance(f.ctx, m.UserID, g.ID)
		if err != nil {
			t.Fatalf("NetBalance failed: %v", err)
		}
		if !b.Net().Equal(m.NetBalance) {
			t.Errorf("member %s: sheet says %s, NetBalance says %s", m.UserID, m.NetBalance, b.Net())
		}
		if m.User == nil || m.User.Name != names[m.UserID] {
			t.Errorf("member %s: user = %+v, want %s", m.UserID, m.User, names[m.UserID])
		}
	}
	if len(sheet.Debts) == 0 {
		t.Error("expected settling payments")
	}
	for _, d := range sheet.Debts {
		if d.FromUser == nil || d.FromUser.Name != names[d.From] || d.ToUser == nil || d.ToUser.Name != names[d.To] {
			t.Errorf("debt %s -> %s not hydrated: %+v %+v", d.From, d.To, d.FromUser, d.ToUser)
		}
	}
}

func TestTotalSpent(t *testing.T) {
	f := setup(t)
	alice, bob := f.user(t, "alice"), f.user(t, "bob")
	stranger := f.user(t, "eve")
	g := f.group(t, "Flat", alice, bob)

	f.equalBill(t, g, alice, "30", alice, bob)
	f.equalBill(t, g, bob, "12.25", alice, bob)

	total, err := f.balances.TotalSpent(f.ctx, bob.ID, g.ID)
	if err != nil {
		t.Fatalf("TotalSpent failed: %v", err)
	}
	wantDecimal(t, "total spent", total, "42.25")

	_, err = f.balances.TotalSpent(f.ctx, stranger.ID, g.ID)
	wantKind(t, err, apperr.KindForbidden)
}

func TestListUserGroups(t *testing.T) {
	f := setup(t)
	alice, bob, carol := f.user(t, "alice"), f.user(t, "bob"), f.user(t, "carol")

	// alice is owed in "beach", owes in "cabin", is square in "attic".
	beach := f.group(t, "beach", alice, bob)
	cabin := f.group(t, "Cabin", alice, bob, carol)
	f.group(t, "attic", alice, carol)
	f.equalBill(t, beach, alice, "20", alice, bob)
	f.equalBill(t, cabin, carol, "30", alice, bob, carol)

	list := func(q GroupListQuery) []calculator.GroupMetrics {
		t.Helper()
		q.Page = storage.Page{Limit: 20}
		page, err := f.balances.ListUserGroups(f.ctx, alice.ID, q)
		if err != nil {
			t.Fatalf("ListUserGroups failed: %v", err)
		}
		return page.Items
	}
	names := func(groups []calculator.GroupMetrics) []string {
		out := make([]string, len(groups))
		for i, g := range groups {
			out[i] = g.Name
		}
		return out
	}

	t.Run("metrics", func(t *testing.T) {
		for _, g := range list(GroupListQuery{}) {
			switch g.ID {
			case beach.ID:
				wantDecimal(t, "beach owed", g.TotalOwed, "10")
				if g.MemberCount != 2 {
					t.Errorf("beach members = %d, want 2", g.MemberCount)
				}
			case cabin.ID:
				wantDecimal(t, "cabin owe", g.TotalOwe, "10")
				if g.MemberCount != 3 {
					t.Errorf("cabin members = %d, want 3", g.MemberCount)
				}
			}
		}
	})

	tests := []struct {
		name string
		q    GroupListQuery
		want []string
	}{
		{"name ascending", GroupListQuery{SortBy: calculator.SortByName, Order: calculator.OrderAsc}, []string{"attic", "beach", "Cabin"}},
		{"name descending", GroupListQuery{SortBy: calculator.SortByName, Order: calculator.OrderDesc}, []string{"Cabin", "beach", "attic"}},
		{"filter owe", GroupListQuery{Filter: calculator.FilterOwe}, []string{"Cabin"}},
		{"filter owed", GroupListQuery{Filter: calculator.FilterOwed}, []string{"beach"}},
		{"search", GroupListQuery{Search: "CAB"}, []string{"Cabin"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := names(list(tt.q))
			if len(got) != len(tt.want) {
				t.Fatalf("got %v, want %v", got, tt.want)
			}
			for i := range got {
				if got[i] != tt.want[i] {
					t.Errorf("got %v, want %v", got, tt.want)
					break
				}
			}
		})
	}

	t.Run("pagination after filtering", func(t *testing.T) {
		page, err := f.balances.ListUserGroups(f.ctx, alice.ID, GroupListQuery{
			SortBy: calculator.SortByName,
			Order:  calculator.OrderAsc,
			Page:   storage.Page{Skip: 1, Limit: 1},
		})
		if err != nil {
			t.Fatalf("ListUserGroups failed: %v", err)
		}
		if page.Total != 3 || len(page.Items) != 1 || page.Items[0].Name != "beach" || !page.HasMore {
			t.Errorf("unexpected page %+v", page)
		}
	})
}

func TestUserSummary(t *testing.T) {
	f := setup(t)
	alice, bob, carol := f.user(t, "alice"), f.user(t, "bob"), f.user(t, "carol")
	flat := f.group(t, "Flat", alice, bob)
	f.group(t, "Office", alice, carol)
	f.equalBill(t, flat, bob, "40", alice, bob)

	global, err := f.balances.UserSummary(f.ctx, alice.ID, "")
	if err != nil {
		t.Fatalf("UserSummary failed: %v", err)
	}
	if global.GroupCount != 2 {
		t.Errorf("group count = %d, want 2", global.GroupCount)
	}
	if len(global.Friends) != 2 {
		t.Errorf("friends = %v, want bob and carol", global.Friends)
	}
	wantDecimal(t, "total owe", global.TotalOwe, "20")
	wantDecimal(t, "net", global.NetBalance, "-20")

	scoped, err := f.balances.UserSummary(f.ctx, bob.ID, flat.ID)
	if err != nil {
		t.Fatalf("scoped UserSummary failed: %v", err)
	}
	if scoped.GroupCount != 1 || len(scoped.Friends) != 0 {
		t.Errorf("scoped summary = %+v", scoped)
	}
	wantDecimal(t, "bob owed", scoped.TotalOwed, "20")

	_, err = f.balances.UserSummary(f.ctx, carol.ID, flat.ID)
	wantKind(t, err, apperr.KindForbidden)
}
