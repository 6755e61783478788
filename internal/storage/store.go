// Package storage provides abstractions for persistent data storage.
package storage

import (
	"context"

	"github.com/shopspring/decimal"

	"github.com/Sanket3107/Rupaya/internal/calculator"
	"github.com/Sanket3107/Rupaya/internal/models"
)

// Store is a unit-of-work factory.
// This abstraction allows swapping storage backends (SQLite, PostgreSQL, etc.)
// without changing the service layer.
//
// Every ledger operation runs inside exactly one View or Update call. A
// non-nil error from fn, a panic, or a cancelled context rolls the
// transaction back; nothing is partially committed.
type Store interface {
	// View runs fn in a read transaction.
	View(ctx context.Context, fn func(tx Tx) error) error

	// Update runs fn in a read-write transaction and commits iff fn returns nil.
	Update(ctx context.Context, fn func(tx Tx) error) error

	// Ping checks database connectivity.
	Ping(ctx context.Context) error

	// Close releases any resources held by the store.
	Close() error
}

// Tx is the set of repository operations available inside one transaction.
// Reads exclude tombstoned rows unless the method says otherwise; lookups of
// missing or tombstoned rows fail with an apperr NotFound error.
type Tx interface {
	UserStore
	TokenStore
	GroupStore
	MemberStore
	BillStore
	ShareStore
}

// UserStore persists user accounts.
type UserStore interface {
	CreateUser(ctx context.Context, user *models.User) error
	GetUserByID(ctx context.Context, id string) (*models.User, error)
	GetUserByEmail(ctx context.Context, email string) (*models.User, error)

	// GetUsersByIDs returns a map of user ID to User.
	// Users that don't exist are omitted from the result.
	GetUsersByIDs(ctx context.Context, ids []string) (map[string]*models.User, error)
}

// TokenStore keeps the revocation list for issued access tokens.
type TokenStore interface {
	RevokeToken(ctx context.Context, tokenID string, expiresAt int64) error
	IsTokenRevoked(ctx context.Context, tokenID string) (bool, error)
}

// GroupStore persists groups.
type GroupStore interface {
	CreateGroup(ctx context.Context, group *models.Group) error
	GetGroup(ctx context.Context, groupID string) (*models.Group, error)
	UpdateGroup(ctx context.Context, group *models.Group) error
	DeleteGroup(ctx context.Context, groupID, actorID string) error

	// ListGroupsForUser returns active groups the user is an active member of,
	// optionally narrowed by a case-insensitive match on name or description.
	ListGroupsForUser(ctx context.Context, userID, search string) ([]*models.Group, error)
}

// MemberStore persists group memberships.
type MemberStore interface {
	CreateMember(ctx context.Context, member *models.GroupMember) error

	// GetMember returns the active membership of userID in groupID.
	GetMember(ctx context.Context, userID, groupID string) (*models.GroupMember, error)

	// FindMember returns the membership row for (userID, groupID) even when it
	// is tombstoned, or nil if the pair never existed.
	FindMember(ctx context.Context, userID, groupID string) (*models.GroupMember, error)

	// UpdateMember writes role, update stamps and tombstone fields.
	UpdateMember(ctx context.Context, member *models.GroupMember) error

	ListMembers(ctx context.Context, groupID string) ([]*models.GroupMember, error)
	DeleteMember(ctx context.Context, memberID, actorID string) error
	DeleteMembersByGroup(ctx context.Context, groupID, actorID string) (int64, error)

	// CountMembers returns active member counts keyed by group ID.
	CountMembers(ctx context.Context, groupIDs []string) (map[string]int, error)

	// CountMemberships returns how many active groups userID belongs to.
	CountMemberships(ctx context.Context, userID string) (int, error)

	// ListCoMembers returns up to limit distinct users sharing an active group
	// with userID.
	ListCoMembers(ctx context.Context, userID string, limit int) ([]models.UserRef, error)
}

// BillStore persists bills.
type BillStore interface {
	CreateBill(ctx context.Context, bill *models.Bill) error
	GetBill(ctx context.Context, billID string) (*models.Bill, error)

	// LockBill serializes concurrent edits of one bill for the rest of the
	// transaction. It fails with NotFound for unknown or deleted bills.
	LockBill(ctx context.Context, billID string) error
	UpdateBill(ctx context.Context, bill *models.Bill) error
	DeleteBill(ctx context.Context, billID, actorID string) error
	DeleteBillsByGroup(ctx context.Context, groupID, actorID string) (int64, error)

	// ListBillsByGroup returns one page of a group's bills, newest first, and
	// the total number of matches.
	ListBillsByGroup(ctx context.Context, groupID, search string, page Page) ([]*models.Bill, int, error)

	// ListBillsForUser returns one page of bills the user paid or owes a share
	// of, restricted to groups the user is still an active member of.
	ListBillsForUser(ctx context.Context, userID string, page Page) ([]*models.Bill, int, error)

	// SumBillTotals returns the sum of active bill totals in a group.
	SumBillTotals(ctx context.Context, groupID string) (decimal.Decimal, error)
}

// ShareStore persists bill shares.
type ShareStore interface {
	CreateShare(ctx context.Context, share *models.BillShare) error
	GetShare(ctx context.Context, shareID string) (*models.BillShare, error)
	ListSharesByBills(ctx context.Context, billIDs []string) ([]*models.BillShare, error)
	UpdateShare(ctx context.Context, share *models.BillShare) error
	DeleteShare(ctx context.Context, shareID, actorID string) error

	// SetSharePaid flips paid to the given value only if it currently holds the
	// opposite value. It reports whether a row changed.
	SetSharePaid(ctx context.Context, shareID string, paid bool, actorID string) (bool, error)

	// ListOpenShares returns active unpaid shares on active bills, excluding
	// payers' own shares.
	ListOpenShares(ctx context.Context, q OpenShareQuery) ([]calculator.OpenShare, error)
}

// OpenShareQuery narrows ListOpenShares. Empty fields do not filter.
type OpenShareQuery struct {
	// UserID keeps shares where the user is either the payer or the debtor.
	UserID  string
	GroupID string
}
