package service

import (
	"context"
	"fmt"
	"log/slog"
	"regexp"
	"strings"
	"unicode/utf8"

	"github.com/sakif/punchclock/internal/apperror"
	"github.com/sakif/punchclock/internal/model"
	"github.com/sakif/punchclock/internal/repository"
)

const MaxNameLength = 100

// slugPattern is lowercase words joined by single hyphens: "front-desk".
var slugPattern = regexp.MustCompile(`^[a-z0-9]+(?:-[a-z0-9]+)*$`)

// OrganizationService manages organizations, boards and who belongs to
// them. All mutations are authorized through AccessService.
type OrganizationService struct {
	store  repository.Store
	access *AccessService
	users  *UserService
	logger *slog.Logger
}

func NewOrganizationService(store repository.Store, access *AccessService, users *UserService, logger *slog.Logger) *OrganizationService {
	return &OrganizationService{store: store, access: access, users: users, logger: logger}
}

// NameSlug is the input for creating or renaming an organization or board.
type NameSlug struct {
	Name string
	Slug string
}

func (in *NameSlug) normalize(kind string) error {
	in.Name = strings.TrimSpace(in.Name)
	in.Slug = strings.ToLower(strings.TrimSpace(in.Slug))

	if in.Name == "" {
		return apperror.ValidationFailed("name", kind+" name is required")
	}
	if utf8.RuneCountInString(in.Name) > MaxNameLength {
		return apperror.ValidationFailed("name", fmt.Sprintf("%s name must be %d characters or less", kind, MaxNameLength))
	}
	if in.Slug == "" {
		return apperror.ValidationFailed("slug", kind+" slug is required")
	}
	if len(in.Slug) > MaxNameLength || !slugPattern.MatchString(in.Slug) {
		return apperror.ValidationFailed("slug", "slug may only contain lowercase letters, digits and single hyphens")
	}
	return nil
}

// =========================================================================
// ORGANIZATIONS
// =========================================================================

// CreateOrganization is superadmin only. The creator becomes its first
// admin in the same transaction.
func (s *OrganizationService) CreateOrganization(ctx context.Context, actorID string, in NameSlug) (*model.Organization, error) {
	if err := s.access.RequireSuperadmin(ctx, actorID, "create organizations"); err != nil {
		return nil, err
	}
	if err := in.normalize("organization"); err != nil {
		return nil, err
	}

	org := &model.Organization{Name: in.Name, Slug: in.Slug}
	if err := s.store.CreateOrganizationWithAdmin(ctx, org, actorID); err != nil {
		return nil, fmt.Errorf("service/organization: creating %s: %w", in.Slug, err)
	}

	s.logger.Info("organization created", slog.String("orgID", org.ID), slog.String("slug", org.Slug), slog.String("by", actorID))
	return org, nil
}

// GetOrganizationBySlug requires membership in the organization.
func (s *OrganizationService) GetOrganizationBySlug(ctx context.Context, actorID, slug string) (*model.UserOrganization, error) {
	org, err := s.store.GetOrganizationBySlug(ctx, strings.ToLower(slug))
	if err != nil {
		return nil, fmt.Errorf("service/organization: %w", err)
	}
	role, err := s.access.RequireOrgMember(ctx, actorID, org.ID)
	if err != nil {
		return nil, err
	}
	return &model.UserOrganization{Organization: *org, Role: role}, nil
}

// ListMembers returns every member of the organization with their role.
func (s *OrganizationService) ListMembers(ctx context.Context, actorID, orgID string) ([]model.OrganizationMember, error) {
	if _, err := s.getOrganization(ctx, orgID); err != nil {
		return nil, err
	}
	if _, err := s.access.RequireOrgMember(ctx, actorID, orgID); err != nil {
		return nil, err
	}

	members, err := s.store.ListOrganizationMembers(ctx, orgID)
	if err != nil {
		return nil, fmt.Errorf("service/organization: members of %s: %w", orgID, err)
	}
	return members, nil
}

// Invitee names the target of an invite either by user id or by email.
// An email nobody has signed in with yet creates a placeholder user.
type Invitee struct {
	UserID string
	Email  string
}

func (s *OrganizationService) resolveInvitee(ctx context.Context, in Invitee) (*model.User, error) {
	switch {
	case in.UserID != "":
		u, err := s.store.GetUserByID(ctx, in.UserID)
		if err != nil {
			return nil, fmt.Errorf("service/organization: invitee: %w", err)
		}
		return u, nil
	case strings.TrimSpace(in.Email) != "":
		return s.users.EnsureInvitee(ctx, in.Email)
	default:
		return nil, apperror.ValidationFailed("email", "either userId or email is required")
	}
}

// InviteToOrganization adds the target with role, or changes the role of
// an existing member. Admin only.
func (s *OrganizationService) InviteToOrganization(ctx context.Context, actorID, orgID string, target Invitee, role model.OrgRole) (*model.OrganizationMembership, error) {
	if role == model.OrgRoleNone {
		role = model.OrgRoleMember
	}
	if !role.Valid() {
		return nil, apperror.ValidationFailed("role", "role must be admin or member")
	}
	if _, err := s.getOrganization(ctx, orgID); err != nil {
		return nil, err
	}
	if err := s.access.RequireOrgAdmin(ctx, actorID, orgID, "invite members"); err != nil {
		return nil, err
	}

	u, err := s.resolveInvitee(ctx, target)
	if err != nil {
		return nil, err
	}

	m := &model.OrganizationMembership{UserID: u.ID, OrganizationID: orgID, Role: role}
	if err := s.store.UpsertOrganizationMembership(ctx, m); err != nil {
		return nil, fmt.Errorf("service/organization: inviting %s to %s: %w", u.ID, orgID, err)
	}

	s.logger.Info("organization member invited",
		slog.String("orgID", orgID),
		slog.String("userID", u.ID),
		slog.String("role", string(role)),
		slog.String("by", actorID),
	)
	return m, nil
}

func (s *OrganizationService) getOrganization(ctx context.Context, orgID string) (*model.Organization, error) {
	org, err := s.store.GetOrganizationByID(ctx, orgID)
	if err != nil {
		return nil, fmt.Errorf("service/organization: %w", err)
	}
	return org, nil
}

// =========================================================================
// BOARDS
// =========================================================================

// ListBoards is every board for an admin and the granted ones for a member.
func (s *OrganizationService) ListBoards(ctx context.Context, actorID, orgID string) ([]model.Board, error) {
	return s.access.ListAccessibleBoards(ctx, actorID, orgID)
}

func (s *OrganizationService) CreateBoard(ctx context.Context, actorID, orgID string, in NameSlug) (*model.Board, error) {
	if _, err := s.getOrganization(ctx, orgID); err != nil {
		return nil, err
	}
	if err := s.access.RequireOrgAdmin(ctx, actorID, orgID, "create boards"); err != nil {
		return nil, err
	}
	if err := in.normalize("board"); err != nil {
		return nil, err
	}

	board := &model.Board{OrganizationID: orgID, Name: in.Name, Slug: in.Slug}
	if err := s.store.CreateBoard(ctx, board); err != nil {
		return nil, fmt.Errorf("service/organization: creating board %s: %w", in.Slug, err)
	}

	s.logger.Info("board created", slog.String("boardID", board.ID), slog.String("orgID", orgID), slog.String("by", actorID))
	return board, nil
}

// GetBoardBySlug requires access to that board.
func (s *OrganizationService) GetBoardBySlug(ctx context.Context, actorID, orgID, slug string) (*model.Board, error) {
	board, err := s.store.GetBoardBySlug(ctx, orgID, strings.ToLower(slug))
	if err != nil {
		return nil, fmt.Errorf("service/organization: %w", err)
	}
	if _, _, err := s.access.BoardForMember(ctx, actorID, board.ID); err != nil {
		return nil, err
	}
	return board, nil
}

func (s *OrganizationService) UpdateBoard(ctx context.Context, actorID, boardID string, in NameSlug) (*model.Board, error) {
	board, err := s.access.BoardForAdmin(ctx, actorID, boardID, "edit boards")
	if err != nil {
		return nil, err
	}
	if err := in.normalize("board"); err != nil {
		return nil, err
	}

	board.Name = in.Name
	board.Slug = in.Slug
	if err := s.store.UpdateBoard(ctx, board); err != nil {
		return nil, fmt.Errorf("service/organization: updating board %s: %w", boardID, err)
	}

	s.logger.Info("board updated", slog.String("boardID", boardID), slog.String("by", actorID))
	return board, nil
}

// DeleteBoard also removes the board's memberships and punches.
func (s *OrganizationService) DeleteBoard(ctx context.Context, actorID, boardID string) error {
	if _, err := s.access.BoardForAdmin(ctx, actorID, boardID, "delete boards"); err != nil {
		return err
	}
	if err := s.store.DeleteBoard(ctx, boardID); err != nil {
		return fmt.Errorf("service/organization: deleting board %s: %w", boardID, err)
	}

	s.logger.Info("board deleted", slog.String("boardID", boardID), slog.String("by", actorID))
	return nil
}

// =========================================================================
// BOARD MEMBERS
// =========================================================================

// InviteToBoard grants a member explicit access to one board, making them
// an organization member first if needed. Organization admins already see
// every board, so for them no row is written and the returned membership
// is marked Implicit.
func (s *OrganizationService) InviteToBoard(ctx context.Context, actorID, boardID string, target Invitee) (*model.BoardMembership, error) {
	board, err := s.access.BoardForAdmin(ctx, actorID, boardID, "invite board members")
	if err != nil {
		return nil, err
	}

	u, err := s.resolveInvitee(ctx, target)
	if err != nil {
		return nil, err
	}

	role, err := s.access.OrganizationRole(ctx, u.ID, board.OrganizationID)
	if err != nil {
		return nil, err
	}
	if role == model.OrgRoleAdmin {
		return &model.BoardMembership{UserID: u.ID, BoardID: board.ID, Implicit: true}, nil
	}

	m, err := s.store.GrantBoardAccess(ctx, u.ID, board.ID, board.OrganizationID)
	if err != nil {
		return nil, fmt.Errorf("service/organization: granting %s to %s: %w", boardID, u.ID, err)
	}

	s.logger.Info("board member invited",
		slog.String("boardID", boardID),
		slog.String("userID", u.ID),
		slog.String("by", actorID),
	)
	return m, nil
}

// RemoveFromBoard revokes an explicit grant. It cannot take access away
// from an organization admin, whose access is implied.
func (s *OrganizationService) RemoveFromBoard(ctx context.Context, actorID, boardID, targetUserID string) error {
	if _, err := s.access.BoardForAdmin(ctx, actorID, boardID, "remove board members"); err != nil {
		return err
	}
	if err := s.store.RemoveBoardMembership(ctx, targetUserID, boardID); err != nil {
		return fmt.Errorf("service/organization: removing %s from %s: %w", targetUserID, boardID, err)
	}

	s.logger.Info("board member removed", slog.String("boardID", boardID), slog.String("userID", targetUserID), slog.String("by", actorID))
	return nil
}

// ListBoardMembers lists every organization member and whether each can
// reach this board. Admin only.
func (s *OrganizationService) ListBoardMembers(ctx context.Context, actorID, boardID string) ([]model.BoardMember, error) {
	board, err := s.access.BoardForAdmin(ctx, actorID, boardID, "view board members")
	if err != nil {
		return nil, err
	}

	members, err := s.store.ListOrganizationMembers(ctx, board.OrganizationID)
	if err != nil {
		return nil, fmt.Errorf("service/organization: members of %s: %w", board.OrganizationID, err)
	}
	granted, err := s.store.ListBoardMemberIDs(ctx, boardID)
	if err != nil {
		return nil, fmt.Errorf("service/organization: members of board %s: %w", boardID, err)
	}

	explicit := make(map[string]bool, len(granted))
	for _, id := range granted {
		explicit[id] = true
	}

	out := make([]model.BoardMember, 0, len(members))
	for _, m := range members {
		out = append(out, model.BoardMember{
			UserID:         m.UserID,
			Email:          m.Email,
			Name:           m.Name,
			OrgRole:        m.Role,
			HasBoardAccess: m.Role == model.OrgRoleAdmin || explicit[m.UserID],
		})
	}
	return out, nil
}
