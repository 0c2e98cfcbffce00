package rbac

import (
	"time"

	"github.com/Ikki-Group/erp-sub001/internal/shared"
)

// Role represents a named grouping of permission codes.
type Role struct {
	ID              int64
	Code            string
	Name            string
	PermissionCodes []string
	IsSystem        bool
	CreatedAt       time.Time
	UpdatedAt       time.Time
}

// RoleAssignment ties a user to a role, optionally scoped to a location.
// A nil LocationID is a global grant and applies everywhere.
type RoleAssignment struct {
	UserID     int64
	RoleID     int64
	LocationID *int64
	CreatedAt  time.Time
}

// PermissionSet is the flattened union of all permission codes a principal
// holds. Derived per request, never stored.
type PermissionSet struct {
	Codes        map[string]struct{}
	IsSuperAdmin bool
}

// NewPermissionSet builds a set from the given codes. IsSuperAdmin is true
// iff the wildcard is among them.
func NewPermissionSet(codes ...string) PermissionSet {
	set := PermissionSet{Codes: make(map[string]struct{}, len(codes))}
	for _, code := range codes {
		set.Codes[code] = struct{}{}
	}
	set.IsSuperAdmin = set.Has(shared.PermWildcard)
	return set
}

// Has reports whether the exact code is present.
func (s PermissionSet) Has(code string) bool {
	_, ok := s.Codes[code]
	return ok
}

// List returns the codes in unspecified order.
func (s PermissionSet) List() []string {
	out := make([]string, 0, len(s.Codes))
	for code := range s.Codes {
		out = append(out, code)
	}
	return out
}
