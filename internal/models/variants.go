package models

import (
	"database/sql/driver"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
)

// SplitType is the policy used to derive shares from a bill total.
type SplitType struct{ name string }

var (
	// SplitEqual divides the total evenly between participants.
	SplitEqual = SplitType{"EQUAL"}
	// SplitExact takes caller-specified amounts per participant.
	SplitExact = SplitType{"EXACT"}
)

// ErrSplitTypeNotImplemented is returned for reserved policies such as PERCENTAGE.
var ErrSplitTypeNotImplemented = errors.New("split type not implemented")

// ParseSplitType converts a wire or database value into a SplitType.
func ParseSplitType(s string) (SplitType, error) {
	switch strings.ToUpper(strings.TrimSpace(s)) {
	case SplitEqual.name:
		return SplitEqual, nil
	case SplitExact.name:
		return SplitExact, nil
	case "PERCENTAGE":
		return SplitType{}, fmt.Errorf("%w: PERCENTAGE", ErrSplitTypeNotImplemented)
	}
	return SplitType{}, fmt.Errorf("unknown split type %q", s)
}

func (t SplitType) String() string { return t.name }

// IsZero reports whether t was never set.
func (t SplitType) IsZero() bool { return t.name == "" }

func (t SplitType) Value() (driver.Value, error) {
	if t.IsZero() {
		return nil, fmt.Errorf("split type not set")
	}
	return t.name, nil
}

func (t *SplitType) Scan(src any) error {
	s, err := scanString(src)
	if err != nil {
		return err
	}
	parsed, err := ParseSplitType(s)
	if err != nil {
		return err
	}
	*t = parsed
	return nil
}

func (t SplitType) MarshalJSON() ([]byte, error) { return json.Marshal(t.name) }

func (t *SplitType) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	parsed, err := ParseSplitType(s)
	if err != nil {
		return err
	}
	*t = parsed
	return nil
}

// GroupRole is a member's role inside one group.
type GroupRole struct{ name string }

var (
	RoleGroupAdmin  = GroupRole{"ADMIN"}
	RoleGroupMember = GroupRole{"MEMBER"}
)

func ParseGroupRole(s string) (GroupRole, error) {
	switch strings.ToUpper(strings.TrimSpace(s)) {
	case RoleGroupAdmin.name:
		return RoleGroupAdmin, nil
	case RoleGroupMember.name:
		return RoleGroupMember, nil
	}
	return GroupRole{}, fmt.Errorf("unknown group role %q", s)
}

func (r GroupRole) String() string { return r.name }
func (r GroupRole) IsZero() bool   { return r.name == "" }

func (r GroupRole) Value() (driver.Value, error) {
	if r.IsZero() {
		return nil, fmt.Errorf("group role not set")
	}
	return r.name, nil
}

func (r *GroupRole) Scan(src any) error {
	s, err := scanString(src)
	if err != nil {
		return err
	}
	parsed, err := ParseGroupRole(s)
	if err != nil {
		return err
	}
	*r = parsed
	return nil
}

func (r GroupRole) MarshalJSON() ([]byte, error) { return json.Marshal(r.name) }

func (r *GroupRole) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	parsed, err := ParseGroupRole(s)
	if err != nil {
		return err
	}
	*r = parsed
	return nil
}

// UserRole is the account-wide role of a user.
type UserRole struct{ name string }

var (
	RoleUser       = UserRole{"USER"}
	RoleAdmin      = UserRole{"ADMIN"}
	RoleSuperAdmin = UserRole{"SUPER_ADMIN"}
)

func ParseUserRole(s string) (UserRole, error) {
	switch strings.ToUpper(strings.TrimSpace(s)) {
	case RoleUser.name:
		return RoleUser, nil
	case RoleAdmin.name:
		return RoleAdmin, nil
	case RoleSuperAdmin.name:
		return RoleSuperAdmin, nil
	}
	return UserRole{}, fmt.Errorf("unknown user role %q", s)
}

func (r UserRole) String() string { return r.name }

func (r UserRole) Value() (driver.Value, error) {
	if r.name == "" {
		return RoleUser.name, nil
	}
	return r.name, nil
}

func (r *UserRole) Scan(src any) error {
	s, err := scanString(src)
	if err != nil {
		return err
	}
	parsed, err := ParseUserRole(s)
	if err != nil {
		return err
	}
	*r = parsed
	return nil
}

func (r UserRole) MarshalJSON() ([]byte, error) { return json.Marshal(r.name) }

func (r *UserRole) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	parsed, err := ParseUserRole(s)
	if err != nil {
		return err
	}
	*r = parsed
	return nil
}

func scanString(src any) (string, error) {
	switch v := src.(type) {
	case string:
		return v, nil
	case []byte:
		return string(v), nil
	}
	return "", fmt.Errorf("cannot scan %T into string variant", src)
}
