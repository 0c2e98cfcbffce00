package roles

import "errors"

// Errors surfaced by the roles module.
var (
	// ErrSystemRole blocks mutation of seeded system roles.
	ErrSystemRole = errors.New("roles: system roles are immutable")
	// ErrUnknownPermission indicates a code missing from the registry.
	ErrUnknownPermission = errors.New("roles: unknown permission code")
	// ErrCodeTaken indicates a unique violation on the role code.
	ErrCodeTaken = errors.New("roles: code already in use")
	// ErrAlreadyAssigned indicates the user already holds the role at that scope.
	ErrAlreadyAssigned = errors.New("roles: role already assigned")
)
