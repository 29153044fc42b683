// Package server sets up the HTTP server, router, and all route definitions.
//
// This is the composition root: the database, services, handlers, auth gate
// and middleware are all built in New and nowhere else. Keeping it out of
// main lets tests stand up the full stack against an in-memory database.
//
// DEPENDENCY FLOW:
//
//	config.Config → sqlite.DB → UserDB/SnippetDB/TagDB/SnippetTagDB
//	             → UserService/SnippetService/TagService → handlers
//	config.Auth   → auth.Config → auth.Gate, AuthService → AuthHandler
package server

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"

	"github.com/sakif/snippet-api/internal/auth"
	"github.com/sakif/snippet-api/internal/config"
	"github.com/sakif/snippet-api/internal/handler"
	"github.com/sakif/snippet-api/internal/middleware"
	sqliteRepo "github.com/sakif/snippet-api/internal/repository/sqlite"
	"github.com/sakif/snippet-api/internal/service"
)

// Server owns the router and the database connection. The database is
// closed when Start returns.
type Server struct {
	router  *chi.Mux
	config  *config.Config
	logger  *slog.Logger
	db      *sqliteRepo.DB
	auth    *auth.Config
	metrics *middleware.Metrics
}

// New opens the database and wires every route.
//
// The GitHub provider is registered only when both its client id and secret
// are configured; without it the gate still verifies session tokens, there
// is just no way to obtain one through the API.
func New(cfg *config.Config, logger *slog.Logger) (*Server, error) {
	db, err := sqliteRepo.New(cfg.DBPath)
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	var providers []auth.Provider
	if cfg.GitHubEnabled() {
		providers = append(providers, auth.NewGitHubProvider(
			cfg.Auth.GitHubID,
			cfg.Auth.GitHubSecret,
			cfg.Auth.URL+"/api/auth/callback/github",
		))
	} else {
		logger.Warn("no OAuth provider configured, sign in is unavailable")
	}

	authCfg, err := auth.NewConfig(cfg.Auth.Secret, cfg.Auth.SessionTTL, cfg.Auth.URL, providers...)
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("configuring auth: %w", err)
	}

	s := &Server{
		router:  chi.NewRouter(),
		config:  cfg,
		logger:  logger,
		db:      db,
		auth:    authCfg,
		metrics: middleware.NewMetrics(db.StatsCollector()),
	}
	s.setupRoutes()

	return s, nil
}

// setupRoutes configures middleware and handlers.
//
// ROUTE STRUCTURE:
//
//	GET    /healthz                                  → DB ping
//	GET    /metrics                                  → Prometheus
//	       /api/auth/*                               → sign in flow (no session needed)
//	GET    /api/protected                            → caller identity
//	GET    /api/users                                → list users
//	POST   /api/users                                → create user
//	GET    /api/users/{id}                           → get user
//	PUT    /api/users/{id}                           → update user
//	DELETE /api/users/{id}                           → delete user
//	POST   /api/snippets                             → create snippet
//	GET    /api/snippets/{id}                        → get snippet
//	PUT    /api/snippets/{id}                        → update snippet
//	DELETE /api/snippets/{id}                        → delete snippet
//	GET    /api/snippets/{id}/tags                   → tags on a snippet
//	POST   /api/snippets/{snippetId}/tags/{tagId}    → attach tag
//	DELETE /api/snippets/{snippetId}/tags/{tagId}    → detach tag
//	POST   /api/tags                                 → create tag
//	GET    /api/tags/{id}                            → get tag
//	PUT    /api/tags/{id}                            → update tag
//	DELETE /api/tags/{id}                            → delete tag
//
// MIDDLEWARE ORDER:
// RequestID before Logger so every log line carries the id. Recoverer sits
// inside Logger and Metrics so a panic is still counted as a 500.
func (s *Server) setupRoutes() {
	gate := auth.NewGate(s.auth, s.logger)

	s.router.Use(chimiddleware.RequestID)
	s.router.Use(chimiddleware.RealIP)
	s.router.Use(middleware.Logger(s.logger))
	s.router.Use(s.metrics.Instrument)
	s.router.Use(chimiddleware.Recoverer)
	s.router.Use(chimiddleware.Timeout(s.config.RequestTimeout))
	s.router.Use(gate.Attach)

	healthHandler := handler.NewHealthHandler(s.db, s.logger)
	s.router.Get("/healthz", healthHandler.HandleHealth)
	s.router.Handle("/metrics", s.metrics.Handler())

	userHandler := handler.NewUserHandler(
		service.NewUserService(s.db.Users(), s.logger), s.logger)
	snippetHandler := handler.NewSnippetHandler(
		service.NewSnippetService(s.db.Snippets(), s.db.SnippetTags(), s.logger), s.logger)
	tagHandler := handler.NewTagHandler(
		service.NewTagService(s.db.Tags(), s.logger), s.logger)
	authHandler := handler.NewAuthHandler(service.NewAuthService(s.logger), s.logger)

	s.router.Route("/api", func(r chi.Router) {
		r.Route("/auth", func(r chi.Router) {
			r.Get("/providers", authHandler.HandleProviders)
			r.Get("/signin/{provider}", authHandler.HandleSignIn)
			r.Get("/callback/{provider}", authHandler.HandleCallback)
			r.Post("/signout", authHandler.HandleSignOut)
			r.Get("/session", authHandler.HandleSession)
		})

		r.Group(func(r chi.Router) {
			r.Use(gate.RequireSession)

			r.Get("/protected", authHandler.HandleProtected)

			r.Route("/users", func(r chi.Router) {
				r.Get("/", userHandler.HandleList)
				r.Post("/", userHandler.HandleCreate)
				r.Get("/{id}", userHandler.HandleGet)
				r.Put("/{id}", userHandler.HandleUpdate)
				r.Delete("/{id}", userHandler.HandleDelete)
			})

			r.Route("/snippets", func(r chi.Router) {
				r.Post("/", snippetHandler.HandleCreate)
				r.Get("/{id}", snippetHandler.HandleGet)
				r.Put("/{id}", snippetHandler.HandleUpdate)
				r.Delete("/{id}", snippetHandler.HandleDelete)
				r.Get("/{id}/tags", snippetHandler.HandleListTags)
				r.Post("/{snippetId}/tags/{tagId}", snippetHandler.HandleAddTag)
				r.Delete("/{snippetId}/tags/{tagId}", snippetHandler.HandleRemoveTag)
			})

			r.Route("/tags", func(r chi.Router) {
				r.Post("/", tagHandler.HandleCreate)
				r.Get("/{id}", tagHandler.HandleGet)
				r.Put("/{id}", tagHandler.HandleUpdate)
				r.Delete("/{id}", tagHandler.HandleDelete)
			})
		})
	})
}

// Handler exposes the fully wired router, for tests and embedding.
func (s *Server) Handler() http.Handler {
	return s.router
}

// Close releases the database. Start calls it on the way out; callers that
// only use Handler must call it themselves.
func (s *Server) Close() error {
	return s.db.Close()
}

// Start serves until SIGINT or SIGTERM, then drains in-flight requests for
// up to ShutdownTimeout and closes the database.
func (s *Server) Start() error {
	defer s.Close()

	srv := &http.Server{
		Addr:              s.config.Addr(),
		Handler:           s.router,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      s.config.RequestTimeout + 5*time.Second,
		IdleTimeout:       60 * time.Second,
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	serverErrors := make(chan error, 1)
	go func() {
		s.logger.Info("server starting",
			slog.String("addr", srv.Addr),
			slog.String("url", s.config.Auth.URL),
			slog.String("database", s.config.DBPath),
			slog.Any("providers", s.auth.ProviderNames()),
		)
		serverErrors <- srv.ListenAndServe()
	}()

	select {
	case err := <-serverErrors:
		if !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("server error: %w", err)
		}

	case <-ctx.Done():
		s.logger.Info("shutdown signal received")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), s.config.ShutdownTimeout)
		defer cancel()

		if err := srv.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("graceful shutdown failed: %w", err)
		}
		s.logger.Info("server stopped gracefully")
	}

	return nil
}
