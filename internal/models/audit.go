package models

import "time"

// Audit carries the actor stamps and timestamps shared by every entity.
// Actor references are nullable user IDs; deleting a user sets them to NULL.
// Timestamps are Unix milliseconds.
type Audit struct {
	CreatedBy *string `db:"created_by" json:"created_by,omitempty"`
	UpdatedBy *string `db:"updated_by" json:"updated_by,omitempty"`
	DeletedBy *string `db:"deleted_by" json:"-"`

	CreatedAt int64  `db:"created_at" json:"created_at"`
	UpdatedAt *int64 `db:"updated_at" json:"updated_at,omitempty"`
	DeletedAt *int64 `db:"deleted_at" json:"-"`
}

// NewAudit returns creation stamps for a row created by actorID now.
func NewAudit(actorID string) Audit {
	return Audit{
		CreatedBy: &actorID,
		CreatedAt: time.Now().UnixMilli(),
	}
}

// Touch stamps an update by actorID.
func (a *Audit) Touch(actorID string) {
	now := time.Now().UnixMilli()
	a.UpdatedBy = &actorID
	a.UpdatedAt = &now
}

// IsDeleted reports whether the row is tombstoned.
func (a Audit) IsDeleted() bool {
	return a.DeletedAt != nil
}
