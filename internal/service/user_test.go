package service

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sakif/punchclock/internal/apperror"
	"github.com/sakif/punchclock/internal/model"
)

// =========================================================================
// ENSURE USER
// =========================================================================

func TestEnsureUser_CreatesThenReuses(t *testing.T) {
	env := newTestEnv(t)

	first, err := env.users.EnsureUser(env.ctx, Identity{ExternalID: "github:1", Email: "ada@example.com", Name: "Ada"})
	require.NoError(t, err)
	assert.Equal(t, model.GlobalRoleUser, first.GlobalRole)

	again, err := env.users.EnsureUser(env.ctx, Identity{ExternalID: "github:1", Email: "ada@example.com", Name: "Ada L."})
	require.NoError(t, err)
	assert.Equal(t, first.ID, again.ID)
	assert.Equal(t, "Ada L.", again.Name, "profile changes are picked up")
}

func TestEnsureUser_EmptyNameKeepsStoredName(t *testing.T) {
	env := newTestEnv(t)
	_, err := env.users.EnsureUser(env.ctx, Identity{ExternalID: "github:1", Email: "ada@example.com", Name: "Ada"})
	require.NoError(t, err)

	u, err := env.users.EnsureUser(env.ctx, Identity{ExternalID: "github:1", Email: "ada@example.com"})
	require.NoError(t, err)

	assert.Equal(t, "Ada", u.Name)
}

func TestEnsureUser_RequiresExternalID(t *testing.T) {
	env := newTestEnv(t)

	_, err := env.users.EnsureUser(env.ctx, Identity{Email: "ada@example.com"})

	assert.True(t, errors.Is(err, apperror.ErrValidation))
}

func TestEnsureUser_RequiresEmail(t *testing.T) {
	env := newTestEnv(t)

	for _, email := range []string{"", "   "} {
		_, err := env.users.EnsureUser(env.ctx, Identity{ExternalID: "github:9", Email: email})

		require.True(t, errors.Is(err, apperror.ErrValidation), "email %q: got %v", email, err)
		assert.Equal(t, "email", apperror.FieldOf(err))
	}

	_, err := env.store.GetUserByExternalID(env.ctx, "github:9")
	assert.True(t, errors.Is(err, apperror.ErrNotFound), "no row is created")
}

func TestEnsureUser_MergesByEmailKeepingMemberships(t *testing.T) {
	env := newTestEnv(t)
	org, admin := env.org(t, "acme")
	board := env.board(t, admin, org, "main")

	old, err := env.users.EnsureUser(env.ctx, Identity{ExternalID: "github:old", Email: "Bob@Example.com", Name: "Bob"})
	require.NoError(t, err)
	_, err = env.orgs.InviteToBoard(env.ctx, admin.ID, board.ID, Invitee{UserID: old.ID})
	require.NoError(t, err)
	p := env.addPunch(t, admin, board, old, model.PunchIn, fixedNow.Add(-time.Hour))

	// Same person, provider re-issued the id, email differs only in case.
	merged, err := env.users.EnsureUser(env.ctx, Identity{ExternalID: "github:new", Email: "bob@example.com", Name: "Bob"})
	require.NoError(t, err)

	assert.Equal(t, old.ID, merged.ID)
	assert.Equal(t, "github:new", merged.ExternalID)

	ok, err := env.access.BoardAccess(env.ctx, merged.ID, board.ID)
	require.NoError(t, err)
	assert.True(t, ok, "board access follows the merged identity")

	history, err := env.punches.History(env.ctx, merged.ID, board.ID, HistoryQuery{})
	require.NoError(t, err)
	require.Len(t, history, 1)
	assert.Equal(t, p.ID, history[0].ID)
}

// =========================================================================
// INVITEES
// =========================================================================

func TestEnsureInvitee_PlaceholderThenSignIn(t *testing.T) {
	env := newTestEnv(t)

	invited, err := env.users.EnsureInvitee(env.ctx, "Carol@Example.com")
	require.NoError(t, err)
	assert.Equal(t, "invite:carol@example.com", invited.ExternalID)

	same, err := env.users.EnsureInvitee(env.ctx, "carol@example.com")
	require.NoError(t, err)
	assert.Equal(t, invited.ID, same.ID, "inviting twice reuses the placeholder")

	signedIn, err := env.users.EnsureUser(env.ctx, Identity{ExternalID: "github:3", Email: "carol@example.com", Name: "Carol"})
	require.NoError(t, err)
	assert.Equal(t, invited.ID, signedIn.ID)
	assert.Equal(t, "github:3", signedIn.ExternalID)
}

func TestEnsureInvitee_Validation(t *testing.T) {
	env := newTestEnv(t)

	for _, email := range []string{"", "   ", "not-an-email"} {
		_, err := env.users.EnsureInvitee(env.ctx, email)
		assert.True(t, errors.Is(err, apperror.ErrValidation), "email %q", email)
	}
}

// =========================================================================
// ROLES / ORGANIZATIONS
// =========================================================================

func TestSetGlobalRoleByEmail(t *testing.T) {
	env := newTestEnv(t)
	u := env.user(t, "dana")

	promoted, err := env.users.SetGlobalRoleByEmail(env.ctx, "DANA@example.com", model.GlobalRoleSuperadmin)
	require.NoError(t, err)
	assert.Equal(t, u.ID, promoted.ID)
	assert.True(t, promoted.IsSuperadmin())

	_, err = env.users.SetGlobalRoleByEmail(env.ctx, u.Email, "god")
	assert.True(t, errors.Is(err, apperror.ErrValidation))

	_, err = env.users.SetGlobalRoleByEmail(env.ctx, "nobody@example.com", model.GlobalRoleUser)
	assert.True(t, errors.Is(err, apperror.ErrNotFound))
}

func TestGetUserOrganizations(t *testing.T) {
	env := newTestEnv(t)
	org, admin := env.org(t, "acme")

	orgs, err := env.users.GetUserOrganizations(env.ctx, admin.ID)
	require.NoError(t, err)
	require.Len(t, orgs, 1)
	assert.Equal(t, org.ID, orgs[0].ID)
	assert.Equal(t, model.OrgRoleAdmin, orgs[0].Role)

	none, err := env.users.GetUserOrganizations(env.ctx, env.user(t, "loner").ID)
	require.NoError(t, err)
	assert.Empty(t, none)
}
