package service

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/sakif/snippet-api/internal/apperror"
	"github.com/sakif/snippet-api/internal/auth"
)

// AuthService completes sign ins and manages session tokens.
//
// The auth configuration is passed per call rather than held here: the
// handlers read it from the request context, where the gate attached it.
//
// WHAT THIS SERVICE DOES NOT DO:
//   - It does NOT set cookies (HTTP concern, handler's job)
//   - It does NOT persist users; sessions are self-contained tokens
type AuthService struct {
	logger *slog.Logger
}

func NewAuthService(logger *slog.Logger) *AuthService {
	return &AuthService{logger: logger}
}

// Session is a freshly issued token and the identity it encodes.
type Session struct {
	Token    string
	Identity *auth.Identity
}

// SignInURL returns the provider URL the browser should be sent to.
func (s *AuthService) SignInURL(cfg *auth.Config, providerName, state string) (string, error) {
	provider, ok := cfg.Provider(providerName)
	if !ok {
		return "", fmt.Errorf("service/auth: %w", apperror.NotFound("provider", providerName))
	}
	return provider.AuthURL(state), nil
}

// CompleteSignIn handles the OAuth callback:
//  1. exchange the code with the named provider for a profile
//  2. issue a session token for that profile
func (s *AuthService) CompleteSignIn(ctx context.Context, cfg *auth.Config, providerName, code string) (*Session, error) {
	provider, ok := cfg.Provider(providerName)
	if !ok {
		return nil, fmt.Errorf("service/auth: %w", apperror.NotFound("provider", providerName))
	}

	profile, err := provider.Exchange(ctx, code)
	if err != nil {
		s.logger.Warn("sign in exchange failed",
			slog.String("provider", providerName),
			slog.String("error", err.Error()),
		)
		return nil, fmt.Errorf("service/auth: %w", apperror.Unauthorized("sign in with "+providerName+" failed"))
	}

	session, err := s.issue(cfg, providerName, *profile)
	if err != nil {
		return nil, err
	}

	s.logger.Info("user signed in",
		slog.String("provider", providerName),
		slog.String("subject", profile.ID),
	)
	return session, nil
}

// Resume verifies a raw session token. Any failure is ErrUnauthorized.
func (s *AuthService) Resume(cfg *auth.Config, token string) (*auth.Identity, error) {
	identity, err := cfg.Sessions.Verify(token)
	if err != nil {
		return nil, fmt.Errorf("service/auth: %w", apperror.Unauthorized("session is invalid or expired"))
	}
	return identity, nil
}

// Refresh issues a new token for an already verified identity, pushing the
// expiry out by a full session lifetime.
func (s *AuthService) Refresh(cfg *auth.Config, identity *auth.Identity) (*Session, error) {
	return s.issue(cfg, identity.Provider, identity.User)
}

func (s *AuthService) issue(cfg *auth.Config, provider string, profile auth.Profile) (*Session, error) {
	token, identity, err := cfg.Sessions.Issue(provider, profile)
	if err != nil {
		s.logger.Error("issuing session failed", slog.String("error", err.Error()))
		return nil, fmt.Errorf("service/auth: issuing session: %w", err)
	}
	return &Session{Token: token, Identity: identity}, nil
}
