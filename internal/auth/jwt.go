// Package auth is the session gate in front of the API.
//
// AUTHENTICATION FLOW OVERVIEW:
//  1. Client visits /api/auth/signin/github → redirected to GitHub
//  2. GitHub calls back /api/auth/callback/github with a code
//  3. Server exchanges the code for the GitHub profile
//  4. Server issues a signed session token and stores it in an HttpOnly cookie
//  5. Every other /api/* request must carry that token, either as the cookie
//     or as an "Authorization: Bearer" header
//
// Sessions are stateless. The token is an HS256 JWT holding the profile and
// expiry, so verifying it needs only the secret and no store lookup.
package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

const (
	issuer = "snippet-api"

	// MinSecretLength is the shortest signing secret accepted.
	MinSecretLength = 16

	// DefaultSessionTTL matches the 30 day session lifetime browsers expect
	// from a "remember me" login.
	DefaultSessionTTL = 30 * 24 * time.Hour
)

// Profile is the user information a provider returns after sign in.
type Profile struct {
	ID    string `json:"id"`
	Name  string `json:"name,omitempty"`
	Email string `json:"email,omitempty"`
	Image string `json:"image,omitempty"`
}

// Identity is the verified content of a session token. It is what the gate
// stores in the request context and what /api/protected echoes back.
type Identity struct {
	User      Profile   `json:"user"`
	Provider  string    `json:"provider"`
	ExpiresAt time.Time `json:"expires"`
}

// SessionManager signs and verifies session tokens.
type SessionManager struct {
	secret []byte
	ttl    time.Duration
	now    func() time.Time
}

// NewSessionManager creates a SessionManager. The secret must be at least
// MinSecretLength characters; a non-positive ttl falls back to
// DefaultSessionTTL.
func NewSessionManager(secret string, ttl time.Duration) (*SessionManager, error) {
	if len(secret) < MinSecretLength {
		return nil, fmt.Errorf("auth: session secret must be at least %d characters", MinSecretLength)
	}
	if ttl <= 0 {
		ttl = DefaultSessionTTL
	}
	return &SessionManager{secret: []byte(secret), ttl: ttl, now: time.Now}, nil
}

// TTL is the lifetime of a freshly issued token.
func (m *SessionManager) TTL() time.Duration { return m.ttl }

// sessionClaims is the JWT payload. "sub" carries the provider's user id.
type sessionClaims struct {
	Provider string `json:"provider"`
	Name     string `json:"name,omitempty"`
	Email    string `json:"email,omitempty"`
	Image    string `json:"image,omitempty"`
	jwt.RegisteredClaims
}

// Issue signs a new token for the profile. Every token gets a unique jti, so
// re-issuing for the same profile within one second still yields a new token.
func (m *SessionManager) Issue(provider string, p Profile) (string, *Identity, error) {
	if p.ID == "" {
		return "", nil, errors.New("auth: profile has no id")
	}

	now := m.now()
	expires := now.Add(m.ttl)

	c := sessionClaims{
		Provider: provider,
		Name:     p.Name,
		Email:    p.Email,
		Image:    p.Image,
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        uuid.NewString(),
			Subject:   p.ID,
			Issuer:    issuer,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(expires),
		},
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, c).SignedString(m.secret)
	if err != nil {
		return "", nil, fmt.Errorf("auth: signing token: %w", err)
	}

	return signed, &Identity{
		User:      p,
		Provider:  provider,
		ExpiresAt: c.ExpiresAt.Time,
	}, nil
}

// Verify parses a token and returns the identity it carries.
//
// The parser pins HS256 so a token declaring "none" or an asymmetric
// algorithm is rejected before the key is used.
func (m *SessionManager) Verify(tokenStr string) (*Identity, error) {
	var c sessionClaims
	token, err := jwt.ParseWithClaims(
		tokenStr,
		&c,
		func(*jwt.Token) (any, error) { return m.secret, nil },
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithIssuer(issuer),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(m.now),
	)
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, errors.New("auth: token expired")
		}
		return nil, fmt.Errorf("auth: invalid token: %w", err)
	}
	if !token.Valid || c.Subject == "" {
		return nil, errors.New("auth: token has no subject")
	}

	return &Identity{
		User: Profile{
			ID:    c.Subject,
			Name:  c.Name,
			Email: c.Email,
			Image: c.Image,
		},
		Provider:  c.Provider,
		ExpiresAt: c.ExpiresAt.Time,
	}, nil
}
