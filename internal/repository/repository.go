// Package repository declares the storage contracts the service layer
// depends on. The sqldb package implements all of them against SQLite or
// PostgreSQL; services only ever see these interfaces.
//
// Lookups of a single row return an apperror.ErrNotFound kind when the row
// does not exist. Unique-key violations come back as apperror.ErrConflict.
package repository

import (
	"context"
	"time"

	"github.com/sakif/punchclock/internal/model"
)

type UserRepository interface {
	CreateUser(ctx context.Context, user *model.User) error
	GetUserByID(ctx context.Context, id string) (*model.User, error)
	GetUserByExternalID(ctx context.Context, externalID string) (*model.User, error)
	// GetUserByEmail matches case-insensitively.
	GetUserByEmail(ctx context.Context, email string) (*model.User, error)
	// UpdateUser rewrites external_id, email, name and global_role.
	UpdateUser(ctx context.Context, user *model.User) error
}

type OrganizationRepository interface {
	// CreateOrganizationWithAdmin inserts the organization and an admin
	// membership for adminUserID in one transaction.
	CreateOrganizationWithAdmin(ctx context.Context, org *model.Organization, adminUserID string) error
	GetOrganizationByID(ctx context.Context, id string) (*model.Organization, error)
	GetOrganizationBySlug(ctx context.Context, slug string) (*model.Organization, error)
}

type BoardRepository interface {
	CreateBoard(ctx context.Context, board *model.Board) error
	GetBoardByID(ctx context.Context, id string) (*model.Board, error)
	GetBoardBySlug(ctx context.Context, orgID, slug string) (*model.Board, error)
	ListBoardsByOrganization(ctx context.Context, orgID string) ([]model.Board, error)
	// ListBoardsForMember returns the boards of orgID the user holds an
	// explicit board membership for.
	ListBoardsForMember(ctx context.Context, userID, orgID string) ([]model.Board, error)
	UpdateBoard(ctx context.Context, board *model.Board) error
	// DeleteBoard removes the board with its memberships and punches.
	DeleteBoard(ctx context.Context, id string) error
}

type MembershipRepository interface {
	GetOrganizationMembership(ctx context.Context, userID, orgID string) (*model.OrganizationMembership, error)
	// UpsertOrganizationMembership inserts the membership or overwrites the
	// role of an existing one.
	UpsertOrganizationMembership(ctx context.Context, m *model.OrganizationMembership) error
	ListUserOrganizations(ctx context.Context, userID string) ([]model.UserOrganization, error)
	ListOrganizationMembers(ctx context.Context, orgID string) ([]model.OrganizationMember, error)

	HasBoardMembership(ctx context.Context, userID, boardID string) (bool, error)
	// GrantBoardAccess makes sure the user belongs to orgID (as a member if
	// they had no role yet) and records the board membership. Granting an
	// existing membership is a no-op.
	GrantBoardAccess(ctx context.Context, userID, boardID, orgID string) (*model.BoardMembership, error)
	// RemoveBoardMembership succeeds whether or not the row existed.
	RemoveBoardMembership(ctx context.Context, userID, boardID string) error
	ListBoardMemberIDs(ctx context.Context, boardID string) ([]string, error)
}

// SortOrder controls the timestamp ordering of ListPunches.
type SortOrder int

const (
	Ascending SortOrder = iota
	Descending
)

// PunchFilter narrows ListPunches. Empty fields don't filter. From is
// inclusive and To is exclusive.
type PunchFilter struct {
	BoardID string
	UserID  string
	From    time.Time
	To      time.Time
	Order   SortOrder
}

type PunchRepository interface {
	CreatePunch(ctx context.Context, punch *model.Punch) error
	GetPunchByID(ctx context.Context, id string) (*model.Punch, error)
	ListPunchesByIDs(ctx context.Context, ids []string) ([]model.Punch, error)
	// UpdatePunch rewrites type, timestamp and note.
	UpdatePunch(ctx context.Context, punch *model.Punch) error
	DeletePunch(ctx context.Context, id string) error
	// DeletePunches removes every id or none of them. A missing id is
	// reported as not found and nothing is deleted.
	DeletePunches(ctx context.Context, ids []string) error
	ListPunches(ctx context.Context, filter PunchFilter) ([]model.Punch, error)
	// LatestPunch returns the most recent punch of a user on a board.
	LatestPunch(ctx context.Context, userID, boardID string) (*model.Punch, error)
}

// Store is everything the application persists, plus a health probe.
type Store interface {
	UserRepository
	OrganizationRepository
	BoardRepository
	MembershipRepository
	PunchRepository
	Ping(ctx context.Context) error
}
