package dashboard

import "time"

// Summary aggregates headline counts for the admin landing page.
type Summary struct {
	Users           int       `json:"users"`
	ActiveUsers     int       `json:"active_users"`
	Roles           int       `json:"roles"`
	Locations       int       `json:"locations"`
	RoleAssignments int       `json:"role_assignments"`
	GeneratedAt     time.Time `json:"generated_at"`
}
