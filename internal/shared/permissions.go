package shared

// Permission codes follow the fixed MODULE.RESOURCE.ACTION convention.
// They are opaque strings to the checker; only PermWildcard is special.
const (
	// PermWildcard satisfies every permission and marks a superadmin role.
	PermWildcard = "*"

	PermUsersRead   = "iam.users.read"
	PermUsersCreate = "iam.users.create"
	PermUsersUpdate = "iam.users.update"
	PermUsersDelete = "iam.users.delete"

	PermRolesRead   = "iam.roles.read"
	PermRolesCreate = "iam.roles.create"
	PermRolesUpdate = "iam.roles.update"
	PermRolesDelete = "iam.roles.delete"
	PermRolesAssign = "iam.roles.assign"

	PermLocationsRead   = "iam.locations.read"
	PermLocationsCreate = "iam.locations.create"
	PermLocationsUpdate = "iam.locations.update"

	PermInventoryRead   = "inventory.items.read"
	PermInventoryUpdate = "inventory.items.update"

	PermMaterialsRead   = "materials.items.read"
	PermMaterialsUpdate = "materials.items.update"

	PermDashboardView = "dashboard.stats.view"
)

var knownPermissions = map[string]struct{}{
	PermWildcard:        {},
	PermUsersRead:       {},
	PermUsersCreate:     {},
	PermUsersUpdate:     {},
	PermUsersDelete:     {},
	PermRolesRead:       {},
	PermRolesCreate:     {},
	PermRolesUpdate:     {},
	PermRolesDelete:     {},
	PermRolesAssign:     {},
	PermLocationsRead:   {},
	PermLocationsCreate: {},
	PermLocationsUpdate: {},
	PermInventoryRead:   {},
	PermInventoryUpdate: {},
	PermMaterialsRead:   {},
	PermMaterialsUpdate: {},
	PermDashboardView:   {},
}

// KnownPermissions lists every registered permission code, wildcard excluded.
func KnownPermissions() []string {
	out := make([]string, 0, len(knownPermissions)-1)
	for code := range knownPermissions {
		if code == PermWildcard {
			continue
		}
		out = append(out, code)
	}
	return out
}

// IsKnownPermission reports whether a code is registered. Unknown codes are
// rejected at role creation time, not at check time.
func IsKnownPermission(code string) bool {
	_, ok := knownPermissions[code]
	return ok
}
