// Package models defines the core domain models for Rupaya.
//
// # Entities
//
//   - User: a registered account. Referenced, never owned, by other entities.
//   - Group: a shared-expense context owning memberships and bills.
//   - GroupMember: binds one User to one Group with a GroupRole.
//   - Bill: one expense event inside a Group, paid by one User.
//   - BillShare: the amount one User owes against one Bill.
//
// # Soft delete
//
// Every entity embeds Audit. A non-nil Audit.DeletedAt marks a tombstoned row;
// the storage layer excludes tombstoned rows from all normal reads.
//
// # Closed variants
//
// SplitType, GroupRole and UserRole are struct types with an unexported name.
// Outside this package a value can only come from the exported variables or
// from the Parse functions, so an unknown policy or role never reaches the
// ledger core.
//
// # Relationships
//
// Relationships are modelled as ID strings, not pointers. Hydrated views
// (BillShare.User, Bill.Payer, GroupMember.User) are filled in by the service
// layer for responses only.
package models
