package service

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/sakif/punchclock/internal/auth"
	"github.com/sakif/punchclock/internal/model"
)

// AuthService turns a verified identity into a session:
//
//	AuthHandler → AuthService.SignIn → UserService.EnsureUser → store
//	                                 ↘ TokenService.Generate
//
// Cookies and redirects stay in the handler.
type AuthService struct {
	users  *UserService
	tokens *auth.TokenService
	logger *slog.Logger
}

func NewAuthService(users *UserService, tokens *auth.TokenService, logger *slog.Logger) *AuthService {
	return &AuthService{users: users, tokens: tokens, logger: logger}
}

// AuthResult bundles the user and the session token for the handler.
type AuthResult struct {
	User  *model.User
	Token string
}

// SignIn ensures the user record and issues a token for it.
func (s *AuthService) SignIn(ctx context.Context, id Identity) (*AuthResult, error) {
	user, err := s.users.EnsureUser(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("service/auth: %w", err)
	}

	token, err := s.tokens.Generate(user.ID)
	if err != nil {
		return nil, fmt.Errorf("service/auth: generating token for %s: %w", user.ID, err)
	}

	s.logger.Info("user signed in", slog.String("userID", user.ID), slog.String("externalID", user.ExternalID))
	return &AuthResult{User: user, Token: token}, nil
}

// SignInGitHub maps a GitHub profile onto an Identity.
func (s *AuthService) SignInGitHub(ctx context.Context, gh *auth.GitHubUser) (*AuthResult, error) {
	if gh == nil {
		return nil, fmt.Errorf("service/auth: GitHub user must not be nil")
	}
	return s.SignIn(ctx, Identity{
		ExternalID: gh.ExternalID(),
		Email:      gh.Email,
		Name:       gh.DisplayName(),
	})
}

// TokenTTL is how long issued tokens stay valid.
func (s *AuthService) TokenTTL() time.Duration {
	return s.tokens.TTL()
}
