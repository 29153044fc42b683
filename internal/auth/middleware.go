package auth

import (
	"context"
	"log/slog"
	"net/http"
)

// contextKey is unexported so only this package can set or read the values
// it stores in a request context.
type contextKey string

const (
	configKey   contextKey = "authConfig"
	identityKey contextKey = "identity"
)

const unauthorizedBody = `{"error":"unauthorized","message":"valid authentication required"}` + "\n"

// Gate is the authentication middleware pair mounted in front of the API.
type Gate struct {
	cfg    *Config
	logger *slog.Logger
}

// NewGate creates a Gate for the given configuration.
func NewGate(cfg *Config, logger *slog.Logger) *Gate {
	return &Gate{cfg: cfg, logger: logger}
}

// Attach makes the auth configuration available to every downstream handler
// through ConfigFromContext. It never rejects a request.
func (g *Gate) Attach(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ctx := context.WithValue(r.Context(), configKey, g.cfg)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// RequireSession rejects requests without a valid, unexpired session token
// with 401 and stops the chain; the wrapped handler never runs. On success
// the verified Identity is stored in the request context.
//
// Chi applies middlewares in a chain: req → M1 → M2 → Handler → M2 → M1 → resp
func (g *Gate) RequireSession(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		identity, err := g.identify(r)
		if err != nil {
			g.logger.Debug("session rejected",
				slog.String("path", r.URL.Path),
				slog.String("reason", err.Error()),
			)
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusUnauthorized)
			_, _ = w.Write([]byte(unauthorizedBody))
			return
		}

		ctx := context.WithValue(r.Context(), identityKey, identity)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func (g *Gate) identify(r *http.Request) (*Identity, error) {
	token, ok := g.cfg.SessionToken(r)
	if !ok {
		return nil, http.ErrNoCookie
	}
	return g.cfg.Sessions.Verify(token)
}

// IdentityFromContext returns the identity set by RequireSession.
// ok is false on routes the gate does not protect.
func IdentityFromContext(ctx context.Context) (*Identity, bool) {
	identity, ok := ctx.Value(identityKey).(*Identity)
	return identity, ok && identity != nil
}

// ConfigFromContext returns the configuration set by Attach.
func ConfigFromContext(ctx context.Context) (*Config, bool) {
	cfg, ok := ctx.Value(configKey).(*Config)
	return cfg, ok && cfg != nil
}
