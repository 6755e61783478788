package models

// Group is a shared-expense context.
// Groups own memberships and bills; deleting a group tombstones both.
type Group struct {
	// ID is the unique identifier for the group (UUID format).
	ID string `db:"id" json:"id"`

	// Name is the display name of the group (e.g., "Roommates", "Goa Trip").
	Name string `db:"name" json:"name"`

	Description string `db:"description" json:"description"`

	Audit
}

// GroupMember binds one user to one group.
// At most one row exists per (UserID, GroupID); removing a member tombstones
// the row and re-adding them reactivates it.
type GroupMember struct {
	ID      string    `db:"id" json:"id"`
	UserID  string    `db:"user_id" json:"user_id"`
	GroupID string    `db:"group_id" json:"group_id"`
	Role    GroupRole `db:"role" json:"role"`

	Audit

	// User is filled in for responses.
	User *UserRef `db:"-" json:"user,omitempty"`
}

// IsAdmin reports whether the member administers the group.
func (m *GroupMember) IsAdmin() bool {
	return m.Role == RoleGroupAdmin
}
