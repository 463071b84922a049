package service

import (
	"context"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/sakif/punchclock/internal/hours"
	"github.com/sakif/punchclock/internal/model"
	"github.com/sakif/punchclock/internal/repository/sqldb"
)

// =========================================================================
// TEST ENVIRONMENT
// =========================================================================
//
// Service tests run against the real sqldb store on an in-memory SQLite
// database, so transactions and constraints are exercised too. The clock
// is pinned to fixedNow.

var fixedNow = time.Date(2026, 3, 20, 12, 0, 0, 0, time.UTC)

type countingRecorder struct {
	counts map[string]int
}

func (r *countingRecorder) PunchRecorded(t model.PunchType, source string) {
	r.counts[string(t)+"/"+source]++
}

type testEnv struct {
	ctx      context.Context
	store    *sqldb.DB
	access   *AccessService
	users    *UserService
	orgs     *OrganizationService
	punches  *PunchService
	reports  *ReportService
	recorder *countingRecorder
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	store, err := sqldb.New(sqldb.DriverSQLite, ":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	cal := hours.DefaultCalendar()
	rec := &countingRecorder{counts: map[string]int{}}

	access := NewAccessService(store, logger)
	users := NewUserService(store, logger)
	env := &testEnv{
		ctx:      context.Background(),
		store:    store,
		access:   access,
		users:    users,
		orgs:     NewOrganizationService(store, access, users, logger),
		punches:  NewPunchService(store, access, cal, rec, logger),
		reports:  NewReportService(store, access, cal, logger),
		recorder: rec,
	}
	env.punches.now = func() time.Time { return fixedNow }
	env.reports.now = func() time.Time { return fixedNow }
	return env
}

func (e *testEnv) user(t *testing.T, name string) *model.User {
	t.Helper()
	u, err := e.users.EnsureUser(e.ctx, Identity{
		ExternalID: "github:" + name,
		Email:      name + "@example.com",
		Name:       name,
	})
	require.NoError(t, err)
	return u
}

func (e *testEnv) superadmin(t *testing.T, name string) *model.User {
	t.Helper()
	u := e.user(t, name)
	u, err := e.users.SetGlobalRoleByEmail(e.ctx, u.Email, model.GlobalRoleSuperadmin)
	require.NoError(t, err)
	return u
}

// org is created by a fresh superadmin, who becomes its admin.
func (e *testEnv) org(t *testing.T, slug string) (*model.Organization, *model.User) {
	t.Helper()
	admin := e.superadmin(t, slug+"-admin")
	org, err := e.orgs.CreateOrganization(e.ctx, admin.ID, NameSlug{Name: slug, Slug: slug})
	require.NoError(t, err)
	return org, admin
}

func (e *testEnv) board(t *testing.T, admin *model.User, org *model.Organization, slug string) *model.Board {
	t.Helper()
	b, err := e.orgs.CreateBoard(e.ctx, admin.ID, org.ID, NameSlug{Name: slug, Slug: slug})
	require.NoError(t, err)
	return b
}

// boardMember creates a user with explicit access to board.
func (e *testEnv) boardMember(t *testing.T, admin *model.User, board *model.Board, name string) *model.User {
	t.Helper()
	u := e.user(t, name)
	_, err := e.orgs.InviteToBoard(e.ctx, admin.ID, board.ID, Invitee{UserID: u.ID})
	require.NoError(t, err)
	return u
}

func (e *testEnv) addPunch(t *testing.T, admin *model.User, board *model.Board, u *model.User, typ model.PunchType, at time.Time) *model.Punch {
	t.Helper()
	p, err := e.punches.AddPunch(e.ctx, admin.ID, board.ID, AddPunchInput{UserID: u.ID, Type: typ, Timestamp: at})
	require.NoError(t, err)
	return p
}

func ptr[T any](v T) *T { return &v }
