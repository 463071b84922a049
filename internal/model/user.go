// Package model defines the data structures used throughout the application.
package model

import "time"

// GlobalRole is a user's role across the whole installation.
type GlobalRole string

const (
	GlobalRoleUser       GlobalRole = "user"
	GlobalRoleSuperadmin GlobalRole = "superadmin"
)

// Valid reports whether r is a known global role.
func (r GlobalRole) Valid() bool {
	return r == GlobalRoleUser || r == GlobalRoleSuperadmin
}

// User represents a person who can punch in and out.
//
// The identity provider issues ExternalID (e.g. "github:1234567"). We still
// generate our own internal ID (xid) and every other table references that
// internal ID. When the provider re-issues a new external ID for the same
// person, only ExternalID on this row changes; memberships and punches keep
// pointing at the same user.
//
// Users invited by email before they ever sign in get a placeholder
// ExternalID ("invite:<email>") that is replaced on first sign-in.
type User struct {
	ID         string     `json:"id"         db:"id"`
	ExternalID string     `json:"externalId" db:"external_id"`
	Email      string     `json:"email"      db:"email"`
	Name       string     `json:"name"       db:"name"`
	GlobalRole GlobalRole `json:"globalRole" db:"global_role"`
	CreatedAt  time.Time  `json:"createdAt"  db:"created_at"`
	UpdatedAt  time.Time  `json:"updatedAt"  db:"updated_at"`
}

// IsSuperadmin reports whether the user may create organizations.
func (u *User) IsSuperadmin() bool {
	return u != nil && u.GlobalRole == GlobalRoleSuperadmin
}
