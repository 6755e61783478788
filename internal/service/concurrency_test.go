package service

import (
	"sync"
	"testing"

	"github.com/shopspring/decimal"

	"github.com/Sanket3107/Rupaya/internal/apperr"
	"github.com/Sanket3107/Rupaya/internal/storage"
)

func TestMarkPaid_RacingTogglesSucceedOnce(t *testing.T) {
	f := setup(t)
	alice, bob := f.user(t, "alice"), f.user(t, "bob")
	g := f.group(t, "Flat", alice, bob)
	bill := f.equalBill(t, g, alice, "20", alice, bob)
	share := shareOf(bill, bob.ID)

	const workers = 8
	errs := make(chan error, workers)
	var wg sync.WaitGroup
	for n := 0; n < workers; n++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := f.bills.MarkPaid(f.ctx, bob.ID, share.ID)
			errs <- err
		}()
	}
	wg.Wait()
	close(errs)

	succeeded := 0
	for err := range errs {
		switch {
		case err == nil:
			succeeded++
		case apperr.Is(err, apperr.KindValidation):
		default:
			t.Errorf("unexpected error: %v", err)
		}
	}
	if succeeded != 1 {
		t.Errorf("%d toggles succeeded, want exactly 1", succeeded)
	}

	got, err := f.bills.GetDetails(f.ctx, bob.ID, bill.ID)
	if err != nil {
		t.Fatalf("GetDetails failed: %v", err)
	}
	if !shareOf(got, bob.ID).Paid {
		t.Error("share should end up paid")
	}
}

func TestUpdateBill_ConcurrentEditsKeepSharesSummed(t *testing.T) {
	f := setup(t)
	alice, bob, carol := f.user(t, "alice"), f.user(t, "bob"), f.user(t, "carol")
	g := f.group(t, "Flat", alice, bob, carol)
	bill := f.equalBill(t, g, alice, "30", alice, bob, carol)

	var wg sync.WaitGroup
	for _, total := range []string{"45", "60", "90.10", "12.34"} {
		total := total
		wg.Add(1)
		go func() {
			defer wg.Done()
			amount := dec(total)
			if _, err := f.bills.Update(f.ctx, alice.ID, bill.ID, UpdateBillInput{TotalAmount: &amount}); err != nil {
				t.Errorf("Update to %s failed: %v", total, err)
			}
		}()
	}
	wg.Wait()

	got, err := f.bills.GetDetails(f.ctx, alice.ID, bill.ID)
	if err != nil {
		t.Fatalf("GetDetails failed: %v", err)
	}
	if len(got.Shares) != 3 {
		t.Fatalf("got %d active shares, want 3", len(got.Shares))
	}
	sum := decimal.Zero
	for _, s := range got.Shares {
		sum = sum.Add(s.Amount)
	}
	wantDecimal(t, "share sum", sum, got.TotalAmount.String())
}

func TestDeleteGroup_ConcurrentReadsDoNotFail(t *testing.T) {
	f := setup(t)
	alice, bob := f.user(t, "alice"), f.user(t, "bob")
	g := f.group(t, "Flat", alice, bob)
	for n := 0; n < 5; n++ {
		f.equalBill(t, g, alice, "10", alice, bob)
	}

	done := make(chan struct{})
	errs := make(chan error, 64)
	report := func(err error) {
		select {
		case errs <- err:
		default:
		}
	}
	var wg sync.WaitGroup
	for n := 0; n < 4; n++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for {
				select {
				case <-done:
					return
				default:
				}
				_, err := f.bills.ListForGroup(f.ctx, bob.ID, g.ID, "", storage.Page{Limit: 20})
				// Once the group is gone it is simply not found.
				if err != nil && !apperr.Is(err, apperr.KindNotFound) {
					report(err)
				}
				if _, err := f.balances.ListUserGroups(f.ctx, bob.ID, GroupListQuery{Page: storage.Page{Limit: 20}}); err != nil {
					report(err)
				}
			}
		}()
	}

	if err := f.groups.Delete(f.ctx, alice.ID, g.ID); err != nil {
		t.Fatalf("Delete failed: %v", err)
	}
	close(done)
	wg.Wait()
	close(errs)

	for err := range errs {
		t.Errorf("read during delete failed: %v", err)
	}

	groups, err := f.balances.ListUserGroups(f.ctx, bob.ID, GroupListQuery{Page: storage.Page{Limit: 20}})
	if err != nil {
		t.Fatalf("ListUserGroups failed: %v", err)
	}
	if groups.Total != 0 {
		t.Errorf("bob still lists %d groups", groups.Total)
	}
}
