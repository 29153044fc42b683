package auth

import (
	"errors"
	"fmt"
	"net/http"
	"sort"
	"strings"
	"time"
)

// DefaultCookieName is the session cookie set on sign in.
const DefaultCookieName = "token"

// Config is everything the gate and the /api/auth endpoints need. It is built
// once at startup and never mutated, so it is safe to share between requests.
type Config struct {
	Sessions   *SessionManager
	CookieName string
	// Secure marks cookies Secure. Set when the public base URL is https.
	Secure bool

	providers map[string]Provider
}

// NewConfig builds a Config from the signing secret and the enabled providers.
//
// baseURL is the public origin of the API, e.g. "https://snippets.example".
// Provider names must be unique.
func NewConfig(secret string, ttl time.Duration, baseURL string, providers ...Provider) (*Config, error) {
	sessions, err := NewSessionManager(secret, ttl)
	if err != nil {
		return nil, err
	}

	cfg := &Config{
		Sessions:   sessions,
		CookieName: DefaultCookieName,
		Secure:     strings.HasPrefix(baseURL, "https://"),
		providers:  make(map[string]Provider, len(providers)),
	}
	for _, p := range providers {
		if p == nil {
			return nil, errors.New("auth: nil provider")
		}
		if _, dup := cfg.providers[p.Name()]; dup {
			return nil, fmt.Errorf("auth: provider %q registered twice", p.Name())
		}
		cfg.providers[p.Name()] = p
	}

	return cfg, nil
}

// Provider looks up a provider by name.
func (c *Config) Provider(name string) (Provider, bool) {
	p, ok := c.providers[name]
	return p, ok
}

// ProviderNames returns the registered provider names in sorted order.
func (c *Config) ProviderNames() []string {
	names := make([]string, 0, len(c.providers))
	for name := range c.providers {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// SessionToken extracts the raw session token from the request: the session
// cookie first, then an "Authorization: Bearer" header.
func (c *Config) SessionToken(r *http.Request) (string, bool) {
	if cookie, err := r.Cookie(c.CookieName); err == nil && cookie.Value != "" {
		return cookie.Value, true
	}

	scheme, token, found := strings.Cut(r.Header.Get("Authorization"), " ")
	if found && strings.EqualFold(scheme, "Bearer") && token != "" {
		return strings.TrimSpace(token), true
	}

	return "", false
}

// SessionCookie returns the cookie that stores token until expires.
//
// HttpOnly keeps the token away from page scripts; SameSite=Lax still sends
// it on top-level navigations such as the OAuth redirect back to "/".
func (c *Config) SessionCookie(token string, expires time.Time) *http.Cookie {
	return &http.Cookie{
		Name:     c.CookieName,
		Value:    token,
		Path:     "/",
		Expires:  expires,
		MaxAge:   int(time.Until(expires).Seconds()),
		HttpOnly: true,
		Secure:   c.Secure,
		SameSite: http.SameSiteLaxMode,
	}
}

// ClearedSessionCookie deletes the session cookie in the browser.
func (c *Config) ClearedSessionCookie() *http.Cookie {
	return &http.Cookie{
		Name:     c.CookieName,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   c.Secure,
		SameSite: http.SameSiteLaxMode,
	}
}
