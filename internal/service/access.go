// Package service holds the business rules. Handlers call services;
// services call the repository interfaces and never see HTTP.
//
//	Handler (HTTP) → Service (rules, authorization) → repository.Store (SQL)
//
// Every operation takes the acting user's internal id and authorizes it
// through AccessService before touching data.
package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/sakif/punchclock/internal/apperror"
	"github.com/sakif/punchclock/internal/model"
	"github.com/sakif/punchclock/internal/repository"
)

// AccessService resolves roles in three layers:
//
//	global role        user | superadmin          (users.global_role)
//	organization role  admin | member | none      (organization_memberships)
//	board access       admin of the board's org OR a board_memberships row
//
// The query methods (GlobalRole, OrganizationRole, BoardAccess) never fail
// for ids that don't exist; a missing org or board simply means no access.
// The Require* and *For* methods turn a missing permission into an
// apperror.Forbidden and are what the other services call.
type AccessService struct {
	store  repository.Store
	logger *slog.Logger
}

func NewAccessService(store repository.Store, logger *slog.Logger) *AccessService {
	return &AccessService{store: store, logger: logger}
}

// GlobalRole defaults to user when the user has no record yet.
func (s *AccessService) GlobalRole(ctx context.Context, userID string) (model.GlobalRole, error) {
	u, err := s.store.GetUserByID(ctx, userID)
	if err != nil {
		if errors.Is(err, apperror.ErrNotFound) {
			return model.GlobalRoleUser, nil
		}
		return "", fmt.Errorf("service/access: global role of %s: %w", userID, err)
	}
	if !u.GlobalRole.Valid() {
		return model.GlobalRoleUser, nil
	}
	return u.GlobalRole, nil
}

// OrganizationRole returns OrgRoleNone when the user has no membership.
func (s *AccessService) OrganizationRole(ctx context.Context, userID, orgID string) (model.OrgRole, error) {
	m, err := s.store.GetOrganizationMembership(ctx, userID, orgID)
	if err != nil {
		if errors.Is(err, apperror.ErrNotFound) {
			return model.OrgRoleNone, nil
		}
		return model.OrgRoleNone, fmt.Errorf("service/access: role of %s in %s: %w", userID, orgID, err)
	}
	return m.Role, nil
}

func (s *AccessService) BoardAccess(ctx context.Context, userID, boardID string) (bool, error) {
	board, err := s.store.GetBoardByID(ctx, boardID)
	if err != nil {
		if errors.Is(err, apperror.ErrNotFound) {
			return false, nil
		}
		return false, fmt.Errorf("service/access: loading board %s: %w", boardID, err)
	}
	_, ok, err := s.boardAccess(ctx, userID, board)
	return ok, err
}

// boardAccess also returns the org role so callers can tell admins apart.
func (s *AccessService) boardAccess(ctx context.Context, userID string, board *model.Board) (model.OrgRole, bool, error) {
	role, err := s.OrganizationRole(ctx, userID, board.OrganizationID)
	if err != nil {
		return role, false, err
	}
	if role == model.OrgRoleAdmin {
		return role, true, nil
	}

	ok, err := s.store.HasBoardMembership(ctx, userID, board.ID)
	if err != nil {
		return role, false, fmt.Errorf("service/access: board membership %s@%s: %w", userID, board.ID, err)
	}
	return role, ok, nil
}

// ListAccessibleBoards returns every board of the org for admins and only
// the explicitly granted ones for members.
func (s *AccessService) ListAccessibleBoards(ctx context.Context, userID, orgID string) ([]model.Board, error) {
	role, err := s.OrganizationRole(ctx, userID, orgID)
	if err != nil {
		return nil, err
	}

	var boards []model.Board
	if role == model.OrgRoleAdmin {
		boards, err = s.store.ListBoardsByOrganization(ctx, orgID)
	} else {
		boards, err = s.store.ListBoardsForMember(ctx, userID, orgID)
	}
	if err != nil {
		return nil, fmt.Errorf("service/access: listing boards of %s for %s: %w", orgID, userID, err)
	}
	return boards, nil
}

// =========================================================================
// GUARDS
// =========================================================================

func (s *AccessService) RequireSuperadmin(ctx context.Context, userID, action string) error {
	role, err := s.GlobalRole(ctx, userID)
	if err != nil {
		return err
	}
	if role != model.GlobalRoleSuperadmin {
		s.logger.Warn("superadmin required", slog.String("userID", userID), slog.String("action", action))
		return apperror.Forbidden("only superadmins can " + action)
	}
	return nil
}

// RequireOrgAdmin expects the organization to exist; callers look it up
// first so a bad id is reported as not found.
func (s *AccessService) RequireOrgAdmin(ctx context.Context, userID, orgID, action string) error {
	role, err := s.OrganizationRole(ctx, userID, orgID)
	if err != nil {
		return err
	}
	if role != model.OrgRoleAdmin {
		s.logger.Warn("organization admin required",
			slog.String("userID", userID),
			slog.String("orgID", orgID),
			slog.String("action", action),
		)
		return apperror.Forbidden("only organization admins can " + action)
	}
	return nil
}

// RequireOrgMember accepts either role and returns it.
func (s *AccessService) RequireOrgMember(ctx context.Context, userID, orgID string) (model.OrgRole, error) {
	role, err := s.OrganizationRole(ctx, userID, orgID)
	if err != nil {
		return role, err
	}
	if !role.Valid() {
		return role, apperror.Forbidden("you are not a member of this organization")
	}
	return role, nil
}

// BoardForAdmin loads the board (not found first) and then requires the
// actor to administer its organization.
func (s *AccessService) BoardForAdmin(ctx context.Context, userID, boardID, action string) (*model.Board, error) {
	board, err := s.store.GetBoardByID(ctx, boardID)
	if err != nil {
		return nil, fmt.Errorf("service/access: %w", err)
	}
	if err := s.RequireOrgAdmin(ctx, userID, board.OrganizationID, action); err != nil {
		return nil, err
	}
	return board, nil
}

// BoardForMember loads the board and requires board access. The returned
// role lets callers grant admins more than plain members.
func (s *AccessService) BoardForMember(ctx context.Context, userID, boardID string) (*model.Board, model.OrgRole, error) {
	board, err := s.store.GetBoardByID(ctx, boardID)
	if err != nil {
		return nil, model.OrgRoleNone, fmt.Errorf("service/access: %w", err)
	}

	role, ok, err := s.boardAccess(ctx, userID, board)
	if err != nil {
		return nil, role, err
	}
	if !ok {
		return nil, role, apperror.Forbidden("you do not have access to this board")
	}
	return board, role, nil
}
