package service

import (
	"testing"

	"github.com/Sanket3107/Rupaya/internal/apperr"
	"github.com/Sanket3107/Rupaya/internal/models"
	"github.com/Sanket3107/Rupaya/internal/storage"
)

func TestCreateBill_EqualSplitAndSettlement(t *testing.T) {
	f := setup(t)
	alice, bob, carol := f.user(t, "alice"), f.user(t, "bob"), f.user(t, "carol")
	g := f.group(t, "Flat", alice, bob, carol)

	bill := f.equalBill(t, g, alice, "30.00", alice, bob, carol)

	if len(bill.Shares) != 3 {
		t.Fatalf("expected 3 shares, got %d", len(bill.Shares))
	}
	for _, s := range bill.Shares {
		wantDecimal(t, "share", s.Amount, "10")
		if s.Paid != (s.UserID == alice.ID) {
			t.Errorf("share of %s: paid = %v", s.UserID, s.Paid)
		}
	}
	if bill.Payer == nil || bill.Payer.ID != alice.ID || bill.GroupName != "Flat" {
		t.Errorf("bill not hydrated: payer=%+v group=%q", bill.Payer, bill.GroupName)
	}

	balance, err := f.balances.NetBalance(f.ctx, alice.ID, "")
	if err != nil {
		t.Fatalf("NetBalance failed: %v", err)
	}
	wantDecimal(t, "alice owed", balance.OwedToMe, "20")
	wantDecimal(t, "alice owes", balance.IOwe, "0")

	bobShare := shareOf(bill, bob.ID)

	t.Run("payer cannot settle someone else's share", func(t *testing.T) {
		_, err := f.bills.MarkPaid(f.ctx, alice.ID, bobShare.ID)
		wantKind(t, err, apperr.KindForbidden)
	})

	t.Run("debtor settles and balances move", func(t *testing.T) {
		share, err := f.bills.MarkPaid(f.ctx, bob.ID, bobShare.ID)
		if err != nil {
			t.Fatalf("MarkPaid failed: %v", err)
		}
		if !share.Paid {
			t.Error("expected share to be paid")
		}

		balance, _ := f.balances.NetBalance(f.ctx, alice.ID, g.ID)
		wantDecimal(t, "alice owed", balance.OwedToMe, "10")
		bobBalance, _ := f.balances.NetBalance(f.ctx, bob.ID, g.ID)
		wantDecimal(t, "bob owes", bobBalance.IOwe, "0")
	})

	t.Run("settling twice is rejected", func(t *testing.T) {
		_, err := f.bills.MarkPaid(f.ctx, bob.ID, bobShare.ID)
		wantKind(t, err, apperr.KindValidation)
	})

	t.Run("unpaid round trip", func(t *testing.T) {
		share, err := f.bills.MarkUnpaid(f.ctx, bob.ID, bobShare.ID)
		if err != nil {
			t.Fatalf("MarkUnpaid failed: %v", err)
		}
		if share.Paid {
			t.Error("expected share to be unpaid")
		}
		_, err = f.bills.MarkUnpaid(f.ctx, bob.ID, bobShare.ID)
		wantKind(t, err, apperr.KindValidation)

		balance, _ := f.balances.NetBalance(f.ctx, alice.ID, "")
		wantDecimal(t, "alice owed", balance.OwedToMe, "20")
	})

	t.Run("outsider cannot settle", func(t *testing.T) {
		dave := f.user(t, "dave")
		_, err := f.bills.MarkPaid(f.ctx, dave.ID, bobShare.ID)
		wantKind(t, err, apperr.KindForbidden)
	})
}

func TestCreateBill_EqualRemainderGoesToLast(t *testing.T) {
	f := setup(t)
	alice, bob, carol := f.user(t, "alice"), f.user(t, "bob"), f.user(t, "carol")
	g := f.group(t, "Trip", alice, bob, carol)

	bill := f.equalBill(t, g, alice, "100", alice, bob, carol)

	wantDecimal(t, "alice", shareOf(bill, alice.ID).Amount, "33.33")
	wantDecimal(t, "bob", shareOf(bill, bob.ID).Amount, "33.33")
	wantDecimal(t, "carol", shareOf(bill, carol.ID).Amount, "33.34")
}

func TestCreateBill_ExactTolerance(t *testing.T) {
	f := setup(t)
	alice, bob, carol := f.user(t, "alice"), f.user(t, "bob"), f.user(t, "carol")
	g := f.group(t, "Flat", alice, bob, carol)

	tests := []struct {
		name    string
		last    string
		wantErr bool
	}{
		{"off by one cent", "9.99", true},
		{"off by more than a cent", "9.989", true},
		{"within half a cent", "9.995", false},
	}

	created := 0
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := f.bills.Create(f.ctx, alice.ID, CreateBillInput{
				GroupID:     g.ID,
				Description: "Groceries",
				TotalAmount: dec("30"),
				SplitType:   models.SplitExact,
				Shares: []ShareInput{
					{UserID: alice.ID, Amount: dec("10")},
					{UserID: bob.ID, Amount: dec("10")},
					{UserID: carol.ID, Amount: dec(tt.last)},
				},
			})
			if tt.wantErr {
				wantKind(t, err, apperr.KindValidation)
				return
			}
			if err != nil {
				t.Fatalf("Create failed: %v", err)
			}
			created++
		})
	}

	// Rejected bills leave nothing behind.
	page, err := f.bills.ListForGroup(f.ctx, alice.ID, g.ID, "", storage.Page{Limit: 20})
	if err != nil {
		t.Fatalf("ListForGroup failed: %v", err)
	}
	if page.Total != created {
		t.Errorf("group has %d bills, want %d", page.Total, created)
	}
}

func TestCreateBill_Rejections(t *testing.T) {
	f := setup(t)
	alice, bob, carol := f.user(t, "alice"), f.user(t, "bob"), f.user(t, "carol")
	outsider := f.user(t, "mallory")
	g := f.group(t, "Flat", alice, bob, carol)

	base := func() CreateBillInput {
		return CreateBillInput{
			GroupID:     g.ID,
			Description: "Cab",
			TotalAmount: dec("12"),
			SplitType:   models.SplitEqual,
			Shares:      []ShareInput{{UserID: alice.ID}, {UserID: bob.ID}},
		}
	}

	tests := []struct {
		name   string
		actor  *models.User
		mutate func(*CreateBillInput)
		want   apperr.Kind
	}{
		{"non-member actor", outsider, func(*CreateBillInput) {}, apperr.KindForbidden},
		{"non-member participant", alice, func(in *CreateBillInput) {
			in.Shares = append(in.Shares, ShareInput{UserID: outsider.ID})
		}, apperr.KindValidation},
		{"non-member payer", alice, func(in *CreateBillInput) { in.PaidBy = outsider.ID }, apperr.KindValidation},
		{"no participants", alice, func(in *CreateBillInput) { in.Shares = nil }, apperr.KindValidation},
		{"duplicate participant", alice, func(in *CreateBillInput) {
			in.Shares = append(in.Shares, ShareInput{UserID: bob.ID})
		}, apperr.KindValidation},
		{"zero total", alice, func(in *CreateBillInput) { in.TotalAmount = dec("0") }, apperr.KindValidation},
		{"missing description", alice, func(in *CreateBillInput) { in.Description = "  " }, apperr.KindValidation},
		{"missing split type", alice, func(in *CreateBillInput) { in.SplitType = models.SplitType{} }, apperr.KindValidation},
		{"unknown group", alice, func(in *CreateBillInput) { in.GroupID = "no-such-group" }, apperr.KindNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			in := base()
			tt.mutate(&in)
			_, err := f.bills.Create(f.ctx, tt.actor.ID, in)
			wantKind(t, err, tt.want)
		})
	}
}

func TestUpdateBill(t *testing.T) {
	f := setup(t)
	alice, bob, carol := f.user(t, "alice"), f.user(t, "bob"), f.user(t, "carol")
	g := f.group(t, "Flat", alice, bob, carol)

	t.Run("new total re-splits an equal bill and resets settlement", func(t *testing.T) {
		bill := f.equalBill(t, g, alice, "30", alice, bob, carol)
		if _, err := f.bills.MarkPaid(f.ctx, bob.ID, shareOf(bill, bob.ID).ID); err != nil {
			t.Fatalf("MarkPaid failed: %v", err)
		}

		total := dec("45")
		updated, err := f.bills.Update(f.ctx, carol.ID, bill.ID, UpdateBillInput{TotalAmount: &total})
		if err != nil {
			t.Fatalf("Update failed: %v", err)
		}
		wantDecimal(t, "total", updated.TotalAmount, "45")
		if len(updated.Shares) != 3 {
			t.Fatalf("expected 3 shares, got %d", len(updated.Shares))
		}
		for _, s := range updated.Shares {
			wantDecimal(t, "share", s.Amount, "15")
			if s.Paid != (s.UserID == alice.ID) {
				t.Errorf("share of %s: paid = %v", s.UserID, s.Paid)
			}
		}
		// Rows survive in place.
		if shareOf(updated, bob.ID).ID != shareOf(bill, bob.ID).ID {
			t.Error("bob's share was replaced instead of updated")
		}
	})

	t.Run("explicit shares drop and add participants", func(t *testing.T) {
		bill := f.equalBill(t, g, alice, "20", alice, bob)

		updated, err := f.bills.Update(f.ctx, alice.ID, bill.ID, UpdateBillInput{
			Shares: []ShareInput{{UserID: alice.ID}, {UserID: carol.ID}},
		})
		if err != nil {
			t.Fatalf("Update failed: %v", err)
		}
		if shareOf(updated, bob.ID) != nil {
			t.Error("bob's share should be gone")
		}
		if s := shareOf(updated, carol.ID); s == nil || !s.Amount.Equal(dec("10")) {
			t.Errorf("carol's share = %+v, want 10", s)
		}
	})

	t.Run("changing the payer moves the settled share", func(t *testing.T) {
		bill := f.equalBill(t, g, alice, "20", alice, bob)

		updated, err := f.bills.Update(f.ctx, alice.ID, bill.ID, UpdateBillInput{PaidBy: &bob.ID})
		if err != nil {
			t.Fatalf("Update failed: %v", err)
		}
		if shareOf(updated, alice.ID).Paid || !shareOf(updated, bob.ID).Paid {
			t.Error("expected only bob's share to be settled")
		}
	})

	t.Run("exact bill cannot take a new total alone", func(t *testing.T) {
		bill, err := f.bills.Create(f.ctx, alice.ID, CreateBillInput{
			GroupID:     g.ID,
			Description: "Tickets",
			TotalAmount: dec("25"),
			SplitType:   models.SplitExact,
			Shares: []ShareInput{
				{UserID: alice.ID, Amount: dec("5")},
				{UserID: bob.ID, Amount: dec("20")},
			},
		})
		if err != nil {
			t.Fatalf("Create failed: %v", err)
		}

		total := dec("30")
		_, err = f.bills.Update(f.ctx, alice.ID, bill.ID, UpdateBillInput{TotalAmount: &total})
		wantKind(t, err, apperr.KindValidation)

		desc := "Concert tickets"
		updated, err := f.bills.Update(f.ctx, alice.ID, bill.ID, UpdateBillInput{Description: &desc})
		if err != nil {
			t.Fatalf("Update description failed: %v", err)
		}
		if updated.Description != desc {
			t.Errorf("description = %q, want %q", updated.Description, desc)
		}
		wantDecimal(t, "total", updated.TotalAmount, "25")
	})
}

func TestDeleteBill(t *testing.T) {
	f := setup(t)
	alice, bob, carol := f.user(t, "alice"), f.user(t, "bob"), f.user(t, "carol")
	g := f.group(t, "Flat", alice, bob, carol)

	byBob := f.equalBill(t, g, bob, "30", alice, bob, carol)

	err := f.bills.Delete(f.ctx, carol.ID, byBob.ID)
	wantKind(t, err, apperr.KindForbidden)

	// Admins may delete any bill.
	if err := f.bills.Delete(f.ctx, alice.ID, byBob.ID); err != nil {
		t.Fatalf("Delete failed: %v", err)
	}
	_, err = f.bills.GetDetails(f.ctx, bob.ID, byBob.ID)
	wantKind(t, err, apperr.KindNotFound)

	balance, _ := f.balances.NetBalance(f.ctx, bob.ID, "")
	wantDecimal(t, "bob owed", balance.OwedToMe, "0")

	// Creators may delete their own.
	byCarol := f.equalBill(t, g, carol, "10", bob, carol)
	if err := f.bills.Delete(f.ctx, carol.ID, byCarol.ID); err != nil {
		t.Fatalf("Delete by creator failed: %v", err)
	}
}

func TestListBills(t *testing.T) {
	f := setup(t)
	alice, bob, carol := f.user(t, "alice"), f.user(t, "bob"), f.user(t, "carol")
	g := f.group(t, "Flat", alice, bob, carol)
	other := f.group(t, "Office", carol, alice)

	for _, desc := range []string{"Pizza night", "Electricity", "pizza lunch"} {
		_, err := f.bills.Create(f.ctx, alice.ID, CreateBillInput{
			GroupID:     g.ID,
			Description: desc,
			TotalAmount: dec("9"),
			SplitType:   models.SplitEqual,
			Shares:      []ShareInput{{UserID: alice.ID}, {UserID: bob.ID}, {UserID: carol.ID}},
		})
		if err != nil {
			t.Fatalf("Create failed: %v", err)
		}
	}
	f.equalBill(t, other, carol, "4", carol, alice)

	t.Run("pages", func(t *testing.T) {
		first, err := f.bills.ListForGroup(f.ctx, bob.ID, g.ID, "", storage.Page{Skip: 0, Limit: 2})
		if err != nil {
			t.Fatalf("ListForGroup failed: %v", err)
		}
		if len(first.Items) != 2 || first.Total != 3 || !first.HasMore {
			t.Errorf("first page = %d items of %d, hasMore %v", len(first.Items), first.Total, first.HasMore)
		}
		if len(first.Items[0].Shares) != 3 {
			t.Errorf("listed bill has %d shares, want 3", len(first.Items[0].Shares))
		}

		second, _ := f.bills.ListForGroup(f.ctx, bob.ID, g.ID, "", storage.Page{Skip: 2, Limit: 2})
		if len(second.Items) != 1 || second.HasMore {
			t.Errorf("second page = %d items, hasMore %v", len(second.Items), second.HasMore)
		}
	})

	t.Run("search is case-insensitive", func(t *testing.T) {
		page, err := f.bills.ListForGroup(f.ctx, bob.ID, g.ID, "PIZZA", storage.Page{Limit: 20})
		if err != nil {
			t.Fatalf("ListForGroup failed: %v", err)
		}
		if page.Total != 2 {
			t.Errorf("found %d pizza bills, want 2", page.Total)
		}
	})

	t.Run("non-member cannot list", func(t *testing.T) {
		_, err := f.bills.ListForGroup(f.ctx, bob.ID, other.ID, "", storage.Page{Limit: 20})
		wantKind(t, err, apperr.KindForbidden)
	})

	t.Run("user activity spans groups and drops groups left", func(t *testing.T) {
		page, err := f.bills.ListForUser(f.ctx, alice.ID, storage.Page{Limit: 20})
		if err != nil {
			t.Fatalf("ListForUser failed: %v", err)
		}
		if page.Total != 4 {
			t.Errorf("alice sees %d bills, want 4", page.Total)
		}

		if err := f.groups.RemoveMember(f.ctx, alice.ID, other.ID, alice.ID); err != nil {
			t.Fatalf("RemoveMember failed: %v", err)
		}
		page, _ = f.bills.ListForUser(f.ctx, alice.ID, storage.Page{Limit: 20})
		if page.Total != 3 {
			t.Errorf("after leaving, alice sees %d bills, want 3", page.Total)
		}
	})
}
