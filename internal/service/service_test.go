package service

import (
	"context"
	"os"
	"testing"

	"github.com/shopspring/decimal"

	"github.com/Sanket3107/Rupaya/internal/apperr"
	"github.com/Sanket3107/Rupaya/internal/models"
	"github.com/Sanket3107/Rupaya/internal/storage"
	"github.com/Sanket3107/Rupaya/internal/storage/sqlstore"
	"github.com/Sanket3107/Rupaya/pkg/logging"
)

// fixture wires every service to one temp SQLite database.
type fixture struct {
	ctx      context.Context
	store    *sqlstore.Store
	bills    *BillLedger
	groups   *GroupLifecycle
	balances *BalanceAggregator
}

func setup(t *testing.T) *fixture {
	t.Helper()

	// Create temp database
	tmpFile, err := os.CreateTemp("", "rupaya-test-*.db")
	if err != nil {
		t.Fatalf("failed to create temp file: %v", err)
	}
	tmpFile.Close()

	store, err := sqlstore.New(tmpFile.Name())
	if err != nil {
		os.Remove(tmpFile.Name())
		t.Fatalf("failed to create store: %v", err)
	}
	t.Cleanup(func() {
		store.Close()
		os.Remove(tmpFile.Name())
	})

	logger := logging.Discard()
	return &fixture{
		ctx:      context.Background(),
		store:    store,
		bills:    NewBillLedger(store, logger),
		groups:   NewGroupLifecycle(store, logger),
		balances: NewBalanceAggregator(store, logger),
	}
}

// user registers a user named name with email name@example.com.
func (f *fixture) user(t *testing.T, name string) *models.User {
	t.Helper()
	u := models.NewUser(name+"@example.com", name, "hash")
	err := f.store.Update(f.ctx, func(tx storage.Tx) error { return tx.CreateUser(f.ctx, u) })
	if err != nil {
		t.Fatalf("failed to create user %s: %v", name, err)
	}
	return u
}

// group creates a group administered by owner with members as MEMBERs.
func (f *fixture) group(t *testing.T, name string, owner *models.User, members ...*models.User) *GroupDetail {
	t.Helper()
	emails := make([]string, len(members))
	for i, m := range members {
		emails[i] = m.Email
	}
	g, err := f.groups.Create(f.ctx, owner.ID, name, "", emails)
	if err != nil {
		t.Fatalf("failed to create group %s: %v", name, err)
	}
	return g
}

// equalBill creates an EQUAL bill in g paid by payer.
func (f *fixture) equalBill(t *testing.T, g *GroupDetail, payer *models.User, total string, participants ...*models.User) *models.Bill {
	t.Helper()
	shares := make([]ShareInput, len(participants))
	for i, p := range participants {
		shares[i] = ShareInput{UserID: p.ID}
	}
	b, err := f.bills.Create(f.ctx, payer.ID, CreateBillInput{
		GroupID:     g.ID,
		Description: "Dinner",
		TotalAmount: dec(total),
		SplitType:   models.SplitEqual,
		Shares:      shares,
	})
	if err != nil {
		t.Fatalf("failed to create bill: %v", err)
	}
	return b
}

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func shareOf(b *models.Bill, userID string) *models.BillShare {
	for i := range b.Shares {
		if b.Shares[i].UserID == userID {
			return &b.Shares[i]
		}
	}
	return nil
}

func wantKind(t *testing.T, err error, kind apperr.Kind) {
	t.Helper()
	if !apperr.Is(err, kind) {
		t.Fatalf("expected %s error, got %v", kind, err)
	}
}

func wantDecimal(t *testing.T, what string, got decimal.Decimal, want string) {
	t.Helper()
	if !got.Equal(dec(want)) {
		t.Errorf("%s = %s, want %s", what, got, want)
	}
}
