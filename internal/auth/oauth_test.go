package auth

import (
	"context"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/oauth2"
)

const verifiedEmails = `[
	{"email":"old@example.com","primary":false,"verified":true},
	{"email":"ada@example.com","primary":true,"verified":true}
]`

// fakeGitHub serves the token endpoint and the two API calls Exchange makes.
func fakeGitHub(t *testing.T, userJSON, emailsJSON string) *httptest.Server {
	t.Helper()
	mux := http.NewServeMux()
	mux.HandleFunc("/login/oauth/access_token", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"access_token":"gho_test","token_type":"bearer"}`))
	})
	mux.HandleFunc("/user", func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "Bearer gho_test", r.Header.Get("Authorization"))
		w.Write([]byte(userJSON))
	})
	mux.HandleFunc("/user/emails", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(emailsJSON))
	})
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return srv
}

func testProvider(srv *httptest.Server) *GitHubProvider {
	return &GitHubProvider{
		config: &oauth2.Config{
			ClientID:     "client",
			ClientSecret: "secret",
			Endpoint:     oauth2.Endpoint{TokenURL: srv.URL + "/login/oauth/access_token"},
		},
		apiBase: srv.URL,
	}
}

func TestExchange_FetchesPrivateEmail(t *testing.T) {
	srv := fakeGitHub(t, `{"id":42,"login":"ada","name":"Ada Lovelace","email":null}`, verifiedEmails)

	u, err := testProvider(srv).Exchange(context.Background(), "code")
	require.NoError(t, err)

	assert.Equal(t, "github:42", u.ExternalID())
	assert.Equal(t, "Ada Lovelace", u.DisplayName())
	assert.Equal(t, "ada@example.com", u.Email)
}

func TestExchange_RejectsZeroID(t *testing.T) {
	srv := fakeGitHub(t, `{"id":0,"login":"ghost"}`, verifiedEmails)

	_, err := testProvider(srv).Exchange(context.Background(), "code")

	assert.Error(t, err)
}

func TestExchange_RequiresVerifiedPrimaryEmail(t *testing.T) {
	srv := fakeGitHub(t, `{"id":42,"login":"ada","email":null}`, `[
		{"email":"ada@example.com","primary":true,"verified":false},
		{"email":"old@example.com","primary":false,"verified":true}
	]`)

	_, err := testProvider(srv).Exchange(context.Background(), "code")

	assert.Error(t, err)
}

func TestGitHubUser_DisplayNameFallsBackToLogin(t *testing.T) {
	u := &GitHubUser{ID: 7, Login: "octocat"}

	assert.Equal(t, "octocat", u.DisplayName())
}

func TestAuthURL_CarriesState(t *testing.T) {
	p := NewGitHubProvider("client", "secret", "http://localhost:8080/auth/github/callback")

	parsed, err := url.Parse(p.AuthURL("state-123"))
	require.NoError(t, err)

	assert.Equal(t, "github.com", parsed.Host)
	assert.Equal(t, "state-123", parsed.Query().Get("state"))
	assert.Equal(t, "client", parsed.Query().Get("client_id"))
}
