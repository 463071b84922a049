package model

import "time"

// OrgRole is a user's role inside one organization.
type OrgRole string

const (
	OrgRoleAdmin  OrgRole = "admin"
	OrgRoleMember OrgRole = "member"

	// OrgRoleNone means the user has no relationship with the organization.
	OrgRoleNone OrgRole = ""
)

// Valid reports whether r is admin or member.
func (r OrgRole) Valid() bool {
	return r == OrgRoleAdmin || r == OrgRoleMember
}

// Organization is the tenant boundary. Only superadmins create them.
type Organization struct {
	ID        string    `json:"id"        db:"id"`
	Name      string    `json:"name"      db:"name"`
	Slug      string    `json:"slug"      db:"slug"`
	CreatedAt time.Time `json:"createdAt" db:"created_at"`
}

// Board is a time-tracking channel scoped to exactly one organization.
// Slugs are unique within the organization, not globally.
type Board struct {
	ID             string    `json:"id"             db:"id"`
	OrganizationID string    `json:"organizationId" db:"organization_id"`
	Name           string    `json:"name"           db:"name"`
	Slug           string    `json:"slug"           db:"slug"`
	CreatedAt      time.Time `json:"createdAt"      db:"created_at"`
	UpdatedAt      time.Time `json:"updatedAt"      db:"updated_at"`
}

// OrganizationMembership joins a user to an organization with a role.
// Admins implicitly reach every board of the organization.
type OrganizationMembership struct {
	UserID         string    `json:"userId"         db:"user_id"`
	OrganizationID string    `json:"organizationId" db:"organization_id"`
	Role           OrgRole   `json:"role"           db:"role"`
	CreatedAt      time.Time `json:"createdAt"      db:"created_at"`
}

// BoardMembership records that a member-role user was explicitly granted a
// board. Implicit is set on values returned for admins, for whom no row is
// ever stored.
type BoardMembership struct {
	UserID    string    `json:"userId"    db:"user_id"`
	BoardID   string    `json:"boardId"   db:"board_id"`
	CreatedAt time.Time `json:"createdAt" db:"created_at"`
	Implicit  bool      `json:"implicit"  db:"-"`
}

// UserOrganization is an organization as seen by one of its members.
type UserOrganization struct {
	Organization
	Role OrgRole `json:"role" db:"role"`
}

// OrganizationMember is a member row joined with the user's profile.
type OrganizationMember struct {
	UserID string  `json:"userId" db:"user_id"`
	Email  string  `json:"email"  db:"email"`
	Name   string  `json:"name"   db:"name"`
	Role   OrgRole `json:"role"   db:"role"`
}

// BoardMember is an organization member annotated with board access.
type BoardMember struct {
	UserID         string  `json:"userId"`
	Email          string  `json:"email"`
	Name           string  `json:"name"`
	OrgRole        OrgRole `json:"orgRole"`
	HasBoardAccess bool    `json:"hasBoardAccess"`
}
