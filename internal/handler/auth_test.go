package handler

import (
	"context"
	"encoding/base64"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sakif/punchclock/internal/auth"
)

type redirectOnlyProvider struct{}

func (redirectOnlyProvider) AuthURL(state string) string {
	return "https://github.example/authorize?state=" + url.QueryEscape(state)
}

func (redirectOnlyProvider) Exchange(context.Context, string) (*auth.GitHubUser, error) {
	panic("not used")
}

func TestNewState(t *testing.T) {
	seen := map[string]bool{}
	for i := 0; i < 100; i++ {
		s, err := newState()
		require.NoError(t, err)

		raw, err := base64.RawURLEncoding.DecodeString(s)
		require.NoError(t, err, "state %q is base64url", s)
		assert.Len(t, raw, 16)

		assert.False(t, seen[s], "state repeated: %s", s)
		seen[s] = true
	}
}

func TestHandleGitHubLogin_StateCookieMatchesRedirect(t *testing.T) {
	h := NewAuthHandler(redirectOnlyProvider{}, nil, true, discard)
	rr := httptest.NewRecorder()

	h.HandleGitHubLogin(rr, httptest.NewRequest(http.MethodGet, "/auth/github/login", nil))

	require.Equal(t, http.StatusTemporaryRedirect, rr.Code)

	var state *http.Cookie
	for _, c := range rr.Result().Cookies() {
		if c.Name == stateCookie {
			state = c
		}
	}
	require.NotNil(t, state)
	assert.True(t, state.HttpOnly)
	assert.True(t, state.Secure)

	loc, err := url.Parse(rr.Header().Get("Location"))
	require.NoError(t, err)
	assert.Equal(t, state.Value, loc.Query().Get("state"))
}
