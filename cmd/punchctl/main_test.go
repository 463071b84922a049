package main

import (
	"bytes"
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sakif/punchclock/internal/apperror"
	"github.com/sakif/punchclock/internal/model"
	"github.com/sakif/punchclock/internal/repository/sqldb"
)

func TestRun_Usage(t *testing.T) {
	var out bytes.Buffer

	assert.Error(t, run(nil, &out))
	assert.Error(t, run([]string{"delete"}, &out))
	assert.Error(t, run([]string{"promote"}, &out), "email is required")
}

func TestSetRole(t *testing.T) {
	db, err := sqldb.New(sqldb.DriverSQLite, ":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	ctx := context.Background()
	u := &model.User{ExternalID: "github:1", Email: "ada@example.com", Name: "Ada", GlobalRole: model.GlobalRoleUser}
	require.NoError(t, db.CreateUser(ctx, u))

	var out bytes.Buffer
	require.NoError(t, setRole(db, "Ada@Example.com", model.GlobalRoleSuperadmin, &out))
	assert.Contains(t, out.String(), "is now superadmin")

	got, err := db.GetUserByID(ctx, u.ID)
	require.NoError(t, err)
	assert.True(t, got.IsSuperadmin())

	err = setRole(db, "nobody@example.com", model.GlobalRoleSuperadmin, &out)
	assert.True(t, errors.Is(err, apperror.ErrNotFound))
}
