package handler

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/rs/xid"

	"github.com/sakif/snippet-api/internal/apperror"
	"github.com/sakif/snippet-api/internal/auth"
	"github.com/sakif/snippet-api/internal/service"
)

const stateCookie = "oauth_state"

var errAuthNotAttached = errors.New("auth config not attached to request")

// AuthService is the subset of service.AuthService the handler calls.
type AuthService interface {
	SignInURL(cfg *auth.Config, providerName, state string) (string, error)
	CompleteSignIn(ctx context.Context, cfg *auth.Config, providerName, code string) (*service.Session, error)
	Resume(cfg *auth.Config, token string) (*auth.Identity, error)
	Refresh(cfg *auth.Config, identity *auth.Identity) (*service.Session, error)
}

// AuthHandler serves /api/auth/* and /api/protected.
//
// The auth configuration is not a field: it is read from the request
// context, where auth.Gate.Attach put it.
type AuthHandler struct {
	auth   AuthService
	logger *slog.Logger
}

func NewAuthHandler(svc AuthService, logger *slog.Logger) *AuthHandler {
	return &AuthHandler{auth: svc, logger: logger}
}

// ProviderInfo describes one sign-in option.
type ProviderInfo struct {
	ID          string `json:"id"`
	SignInURL   string `json:"signinUrl"`
	CallbackURL string `json:"callbackUrl"`
}

// config fetches the request's auth configuration, answering 500 if the
// route was mounted outside the gate.
func (h *AuthHandler) config(w http.ResponseWriter, r *http.Request) (*auth.Config, bool) {
	cfg, ok := auth.ConfigFromContext(r.Context())
	if !ok {
		h.logger.Error("auth config missing from request context", slog.String("path", r.URL.Path))
		writeError(w, errAuthNotAttached)
		return nil, false
	}
	return cfg, true
}

// HandleProviders lists the configured providers, keyed by id.
//
// HTTP: GET /api/auth/providers
func (h *AuthHandler) HandleProviders(w http.ResponseWriter, r *http.Request) {
	cfg, ok := h.config(w, r)
	if !ok {
		return
	}

	out := make(map[string]ProviderInfo)
	for _, name := range cfg.ProviderNames() {
		out[name] = ProviderInfo{
			ID:          name,
			SignInURL:   "/api/auth/signin/" + name,
			CallbackURL: "/api/auth/callback/" + name,
		}
	}
	writeJSON(w, http.StatusOK, out)
}

// HandleSignIn redirects the browser to the provider.
//
// HTTP: GET /api/auth/signin/{provider}
//
// CSRF PROTECTION VIA STATE:
// A random state goes into a short-lived cookie and into the provider URL.
// HandleCallback only accepts a callback whose state matches the cookie, which
// proves this server started the flow.
func (h *AuthHandler) HandleSignIn(w http.ResponseWriter, r *http.Request) {
	cfg, ok := h.config(w, r)
	if !ok {
		return
	}

	state := xid.New().String()
	target, err := h.auth.SignInURL(cfg, chi.URLParam(r, "provider"), state)
	if err != nil {
		writeError(w, err)
		return
	}

	http.SetCookie(w, &http.Cookie{
		Name:     stateCookie,
		Value:    state,
		Path:     "/",
		MaxAge:   600,
		HttpOnly: true,
		Secure:   cfg.Secure,
		SameSite: http.SameSiteLaxMode,
	})
	http.Redirect(w, r, target, http.StatusTemporaryRedirect)
}

// HandleCallback completes the sign in.
//
// HTTP: GET /api/auth/callback/{provider}?code=xxx&state=yyy
//
// FLOW:
//  1. Check the state parameter against the cookie
//  2. Exchange the code for a profile and issue a session
//  3. Store the session token in an HttpOnly cookie
//  4. Redirect to the app home page
func (h *AuthHandler) HandleCallback(w http.ResponseWriter, r *http.Request) {
	cfg, ok := h.config(w, r)
	if !ok {
		return
	}
	provider := chi.URLParam(r, "provider")
	query := r.URL.Query()

	cookie, err := r.Cookie(stateCookie)
	if err != nil || cookie.Value == "" || query.Get("state") != cookie.Value {
		h.logger.Warn("auth callback: state mismatch", slog.String("provider", provider))
		writeError(w, apperror.ValidationFailed("state", "invalid OAuth state"))
		return
	}

	// single use
	http.SetCookie(w, &http.Cookie{
		Name:   stateCookie,
		Value:  "",
		Path:   "/",
		MaxAge: -1,
	})

	if errParam := query.Get("error"); errParam != "" {
		h.logger.Info("auth callback: user denied authorization",
			slog.String("provider", provider),
			slog.String("error", errParam),
		)
		http.Redirect(w, r, "/?auth=denied", http.StatusSeeOther)
		return
	}

	code := query.Get("code")
	if code == "" {
		writeError(w, apperror.ValidationFailed("code", "missing OAuth code"))
		return
	}

	session, err := h.auth.CompleteSignIn(r.Context(), cfg, provider, code)
	if err != nil {
		writeError(w, err)
		return
	}

	http.SetCookie(w, cfg.SessionCookie(session.Token, session.Identity.ExpiresAt))
	http.Redirect(w, r, "/", http.StatusSeeOther)
}

// HandleSignOut clears the session cookie.
//
// HTTP: POST /api/auth/signout
//
// Sessions are stateless, so the token stays valid until it expires; without
// the cookie the browser just stops sending it.
func (h *AuthHandler) HandleSignOut(w http.ResponseWriter, r *http.Request) {
	cfg, ok := h.config(w, r)
	if !ok {
		return
	}
	http.SetCookie(w, cfg.ClearedSessionCookie())
	writeMessage(w, "Signed out successfully")
}

// HandleSession returns the current session and slides its expiry forward.
// With no valid session the body is {} and the status still 200, so clients
// can poll it without tripping error handling.
//
// HTTP: GET /api/auth/session
func (h *AuthHandler) HandleSession(w http.ResponseWriter, r *http.Request) {
	cfg, ok := h.config(w, r)
	if !ok {
		return
	}

	token, ok := cfg.SessionToken(r)
	if !ok {
		writeJSON(w, http.StatusOK, struct{}{})
		return
	}

	identity, err := h.auth.Resume(cfg, token)
	if err != nil {
		http.SetCookie(w, cfg.ClearedSessionCookie())
		writeJSON(w, http.StatusOK, struct{}{})
		return
	}

	session, err := h.auth.Refresh(cfg, identity)
	if err != nil {
		writeError(w, err)
		return
	}

	http.SetCookie(w, cfg.SessionCookie(session.Token, session.Identity.ExpiresAt))
	writeJSON(w, http.StatusOK, session.Identity)
}

// HandleProtected echoes the caller's verified identity.
//
// HTTP: GET /api/protected
// Auth: required (auth.Gate.RequireSession)
func (h *AuthHandler) HandleProtected(w http.ResponseWriter, r *http.Request) {
	identity, ok := auth.IdentityFromContext(r.Context())
	if !ok {
		writeError(w, apperror.Unauthorized("valid authentication required"))
		return
	}
	writeJSON(w, http.StatusOK, identity)
}
