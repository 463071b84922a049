package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/sakif/punchclock/internal/apperror"
	"github.com/sakif/punchclock/internal/model"
	"github.com/sakif/punchclock/internal/repository"
)

// invitePrefix marks users created by an email invite who have not signed
// in yet. Their external id is replaced on first sign-in.
const invitePrefix = "invite:"

// Identity is a verified identity from the provider.
type Identity struct {
	ExternalID string
	Email      string
	Name       string
}

// UserService owns user records: sign-in upserts, invitee placeholders and
// global role changes.
type UserService struct {
	store  repository.Store
	logger *slog.Logger
}

func NewUserService(store repository.Store, logger *slog.Logger) *UserService {
	return &UserService{store: store, logger: logger}
}

// EnsureUser finds or creates the user for a verified identity.
//
// LOOKUP ORDER:
//  1. by external id      → refresh email/name if they changed
//  2. by email (any case) → the provider re-issued the id, or this is an
//     invited placeholder: move the new external id onto that row
//  3. otherwise create a new user with global role "user"
//
// Step 2 is a recovery path, not a failure. Because memberships and punches
// reference the internal id, moving the external id re-points all of them.
func (s *UserService) EnsureUser(ctx context.Context, id Identity) (*model.User, error) {
	id.ExternalID = strings.TrimSpace(id.ExternalID)
	id.Email = strings.TrimSpace(id.Email)
	id.Name = strings.TrimSpace(id.Name)
	if id.ExternalID == "" {
		return nil, apperror.ValidationFailed("externalId", "external user id is required")
	}
	if id.Email == "" {
		return nil, apperror.ValidationFailed("email", "email is required")
	}

	u, err := s.store.GetUserByExternalID(ctx, id.ExternalID)
	switch {
	case err == nil:
		return s.refreshProfile(ctx, u, id)
	case !errors.Is(err, apperror.ErrNotFound):
		return nil, fmt.Errorf("service/user: looking up %s: %w", id.ExternalID, err)
	}

	u, err = s.store.GetUserByEmail(ctx, id.Email)
	switch {
	case err == nil:
		return s.mergeByEmail(ctx, u, id)
	case !errors.Is(err, apperror.ErrNotFound):
		return nil, fmt.Errorf("service/user: looking up %s: %w", id.Email, err)
	}

	u = &model.User{
		ExternalID: id.ExternalID,
		Email:      id.Email,
		Name:       id.Name,
		GlobalRole: model.GlobalRoleUser,
	}
	if err := s.store.CreateUser(ctx, u); err != nil {
		if errors.Is(err, apperror.ErrConflict) {
			// A concurrent sign-in created it first.
			return s.store.GetUserByExternalID(ctx, id.ExternalID)
		}
		return nil, fmt.Errorf("service/user: creating %s: %w", id.ExternalID, err)
	}

	s.logger.Info("user created", slog.String("userID", u.ID), slog.String("externalID", u.ExternalID))
	return u, nil
}

func (s *UserService) refreshProfile(ctx context.Context, u *model.User, id Identity) (*model.User, error) {
	changed := false
	if id.Email != "" && id.Email != u.Email {
		u.Email = id.Email
		changed = true
	}
	if id.Name != "" && id.Name != u.Name {
		u.Name = id.Name
		changed = true
	}
	if !changed {
		return u, nil
	}

	if err := s.store.UpdateUser(ctx, u); err != nil {
		return nil, fmt.Errorf("service/user: refreshing profile of %s: %w", u.ID, err)
	}
	return u, nil
}

func (s *UserService) mergeByEmail(ctx context.Context, u *model.User, id Identity) (*model.User, error) {
	previous := u.ExternalID

	u.ExternalID = id.ExternalID
	u.Email = id.Email
	if id.Name != "" {
		u.Name = id.Name
	}
	if err := s.store.UpdateUser(ctx, u); err != nil {
		return nil, fmt.Errorf("service/user: merging %s into %s: %w", id.ExternalID, u.ID, err)
	}

	s.logger.Info("user merged by email",
		slog.String("userID", u.ID),
		slog.String("previousExternalID", previous),
		slog.String("externalID", u.ExternalID),
	)
	return u, nil
}

// EnsureInvitee returns the user with this email, creating a placeholder
// if nobody has it yet.
func (s *UserService) EnsureInvitee(ctx context.Context, email string) (*model.User, error) {
	email = strings.TrimSpace(email)
	if email == "" {
		return nil, apperror.ValidationFailed("email", "email is required")
	}
	if !strings.Contains(email, "@") {
		return nil, apperror.ValidationFailed("email", "email is not a valid address")
	}

	u, err := s.store.GetUserByEmail(ctx, email)
	if err == nil {
		return u, nil
	}
	if !errors.Is(err, apperror.ErrNotFound) {
		return nil, fmt.Errorf("service/user: looking up invitee %s: %w", email, err)
	}

	placeholder := invitePrefix + strings.ToLower(email)
	u = &model.User{ExternalID: placeholder, Email: email, GlobalRole: model.GlobalRoleUser}
	if err := s.store.CreateUser(ctx, u); err != nil {
		if errors.Is(err, apperror.ErrConflict) {
			return s.store.GetUserByExternalID(ctx, placeholder)
		}
		return nil, fmt.Errorf("service/user: creating invitee %s: %w", email, err)
	}

	s.logger.Info("invited user created", slog.String("userID", u.ID))
	return u, nil
}

func (s *UserService) GetUser(ctx context.Context, id string) (*model.User, error) {
	if id == "" {
		return nil, apperror.ValidationFailed("userId", "user id is required")
	}
	u, err := s.store.GetUserByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("service/user: fetching %s: %w", id, err)
	}
	return u, nil
}

// GetUserOrganizations lists the organizations the user belongs to with
// their role in each.
func (s *UserService) GetUserOrganizations(ctx context.Context, userID string) ([]model.UserOrganization, error) {
	orgs, err := s.store.ListUserOrganizations(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("service/user: organizations of %s: %w", userID, err)
	}
	return orgs, nil
}

// SetGlobalRoleByEmail is the operator path for granting or revoking
// superadmin (see cmd/punchctl).
func (s *UserService) SetGlobalRoleByEmail(ctx context.Context, email string, role model.GlobalRole) (*model.User, error) {
	if !role.Valid() {
		return nil, apperror.ValidationFailed("role", fmt.Sprintf("unknown global role %q", role))
	}

	u, err := s.store.GetUserByEmail(ctx, strings.TrimSpace(email))
	if err != nil {
		return nil, fmt.Errorf("service/user: finding %s: %w", email, err)
	}
	if u.GlobalRole == role {
		return u, nil
	}

	u.GlobalRole = role
	if err := s.store.UpdateUser(ctx, u); err != nil {
		return nil, fmt.Errorf("service/user: setting role of %s: %w", u.ID, err)
	}

	s.logger.Info("global role changed", slog.String("userID", u.ID), slog.String("role", string(role)))
	return u, nil
}
