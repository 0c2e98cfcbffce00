package rbac

import "github.com/Ikki-Group/erp-sub001/internal/shared"

// Mode selects AND/OR semantics for multi-permission checks.
type Mode int

const (
	// ModeAll requires every listed permission (AND).
	ModeAll Mode = iota
	// ModeAny requires at least one listed permission (OR).
	ModeAny
)

// Decision is the outcome of a permission check. Missing preserves the
// original order of the required list.
type Decision struct {
	Allowed bool
	Missing []string
}

// Check evaluates required permissions against a resolved set.
//
// The wildcard is honored both through IsSuperAdmin and through direct set
// membership, since callers may construct a PermissionSet without going
// through the resolver.
func Check(set PermissionSet, required []string, mode Mode) Decision {
	if set.IsSuperAdmin {
		return Decision{Allowed: true}
	}
	if len(required) == 0 {
		return Decision{Allowed: true}
	}

	satisfied := func(code string) bool {
		return set.Has(code) || set.Has(shared.PermWildcard)
	}

	switch mode {
	case ModeAny:
		for _, code := range required {
			if satisfied(code) {
				return Decision{Allowed: true}
			}
		}
		missing := make([]string, len(required))
		copy(missing, required)
		return Decision{Allowed: false, Missing: missing}
	default:
		var missing []string
		for _, code := range required {
			if !satisfied(code) {
				missing = append(missing, code)
			}
		}
		return Decision{Allowed: len(missing) == 0, Missing: missing}
	}
}
