// Package server is the composition root: it builds every service and
// handler from the configuration, mounts them on a chi router, and runs
// the HTTP server with graceful shutdown.
//
// DEPENDENCY FLOW:
//
//	config.Config ─┬─> sqldb.DB (repository.Store)
//	               ├─> auth.TokenService, auth.GitHubProvider
//	               └─> hours.Calendar
//	Store ─> AccessService ─> Organization/Punch/Report services ─> handlers
//
// Handlers only ever see services; services only ever see the
// repository.Store interface.
package server

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"

	"github.com/sakif/punchclock/internal/auth"
	"github.com/sakif/punchclock/internal/config"
	"github.com/sakif/punchclock/internal/handler"
	"github.com/sakif/punchclock/internal/middleware"
	"github.com/sakif/punchclock/internal/repository"
	"github.com/sakif/punchclock/internal/repository/sqldb"
	"github.com/sakif/punchclock/internal/service"
)

// Options are the inputs to NewRouter. Provider overrides the GitHub
// client built from Config; when both are absent the /auth/github routes
// are not mounted.
type Options struct {
	Config   *config.Config
	Store    repository.Store
	Logger   *slog.Logger
	Provider handler.IdentityProvider
}

// NewRouter wires services and handlers onto a chi router.
//
// ROUTES:
//
//	GET  /healthz, /metrics
//	GET  /auth/github/login, /auth/github/callback, POST /auth/logout
//	/api/...  everything else, behind auth.RequireAuth and the rate limit
func NewRouter(opts Options) (http.Handler, error) {
	cfg, logger := opts.Config, opts.Logger

	tokens, err := auth.NewTokenService(cfg.Auth.JWTSecret, cfg.Auth.TokenTTL)
	if err != nil {
		return nil, fmt.Errorf("server: %w", err)
	}
	cal, err := cfg.Calendar()
	if err != nil {
		return nil, fmt.Errorf("server: %w", err)
	}
	limit, err := middleware.RateLimit(cfg.Server.RateLimit)
	if err != nil {
		return nil, fmt.Errorf("server: %w", err)
	}
	metrics := middleware.NewMetrics()

	// === Services ===
	access := service.NewAccessService(opts.Store, logger)
	users := service.NewUserService(opts.Store, logger)
	orgs := service.NewOrganizationService(opts.Store, access, users, logger)
	punches := service.NewPunchService(opts.Store, access, cal, metrics, logger)
	reports := service.NewReportService(opts.Store, access, cal, logger)
	authService := service.NewAuthService(users, tokens, logger)

	// === Handlers ===
	health := handler.NewHealthHandler(opts.Store, logger)
	me := handler.NewUserHandler(users, logger)
	orgH := handler.NewOrganizationHandler(orgs, logger)
	boardH := handler.NewBoardHandler(orgs, logger)
	punchH := handler.NewPunchHandler(punches, logger)
	reportH := handler.NewReportHandler(reports, logger)

	provider := opts.Provider
	if provider == nil && cfg.GitHubEnabled() {
		provider = auth.NewGitHubProvider(cfg.Auth.GitHubClientID, cfg.Auth.GitHubClientSecret, cfg.Auth.GitHubCallbackURL)
	}

	r := chi.NewRouter()

	// Order matters: the request id must exist before Logger reads it, and
	// Recoverer must sit inside Logger so a panic still logs as a 500.
	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(middleware.Logger(logger))
	r.Use(metrics.Middleware)
	r.Use(chimiddleware.Recoverer)
	r.Use(middleware.Secure(cfg.Server.Development))
	r.Use(middleware.CORS(cfg.Server.AllowedOrigins))

	r.Get("/healthz", health.HandleHealth)
	r.Handle("/metrics", metrics.Handler())

	authH := handler.NewAuthHandler(provider, authService, !cfg.Server.Development, logger)
	r.Post("/auth/logout", authH.HandleLogout)
	if provider != nil {
		r.Get("/auth/github/login", authH.HandleGitHubLogin)
		r.Get("/auth/github/callback", authH.HandleGitHubCallback)
	} else {
		logger.Warn("GitHub OAuth not configured, sign-in routes disabled")
	}

	r.Route("/api", func(r chi.Router) {
		r.Use(limit)
		r.Use(auth.RequireAuth(tokens))

		r.Get("/me", me.HandleMe)
		r.Get("/me/organizations", me.HandleMyOrganizations)

		r.Route("/organizations", func(r chi.Router) {
			r.Post("/", orgH.HandleCreate)
			r.Get("/by-slug/{slug}", orgH.HandleGetBySlug)

			r.Route("/{orgID}", func(r chi.Router) {
				r.Get("/boards", orgH.HandleListBoards)
				r.Post("/boards", orgH.HandleCreateBoard)
				r.Get("/boards/by-slug/{slug}", orgH.HandleGetBoardBySlug)
				r.Get("/members", orgH.HandleListMembers)
				r.Post("/members", orgH.HandleInviteMember)
			})
		})

		r.Route("/boards/{boardID}", func(r chi.Router) {
			r.Put("/", boardH.HandleUpdate)
			r.Delete("/", boardH.HandleDelete)

			r.Get("/members", boardH.HandleListMembers)
			r.Post("/members", boardH.HandleInvite)
			r.Delete("/members/{userID}", boardH.HandleRemoveMember)

			r.Get("/status", punchH.HandleStatus)
			r.Get("/punches", punchH.HandleHistory)
			r.Post("/punches", punchH.HandlePunch)
			r.Post("/punches/manual", punchH.HandleAddManual)

			r.Get("/reports/status", reportH.HandleStatus)
			r.Get("/reports/monthly", reportH.HandleMonthlyStats)
			r.Get("/users/{userID}/monthly", reportH.HandleUserMonthly)
			r.Get("/users/{userID}/weekly", reportH.HandleUserWeekly)
		})

		r.Post("/punches/bulk-delete", punchH.HandleBulkDelete)
		r.Put("/punches/{punchID}", punchH.HandleUpdate)
		r.Delete("/punches/{punchID}", punchH.HandleDelete)
	})

	return r, nil
}

// Server owns the database connection and the HTTP listener.
type Server struct {
	handler http.Handler
	config  *config.Config
	logger  *slog.Logger
	db      *sqldb.DB
}

// New opens the database (creating the schema if needed) and builds the
// router.
func New(cfg *config.Config, logger *slog.Logger) (*Server, error) {
	db, err := sqldb.New(cfg.Database.Driver, cfg.Database.DSN)
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	h, err := NewRouter(Options{Config: cfg, Store: db, Logger: logger})
	if err != nil {
		db.Close()
		return nil, err
	}

	return &Server{handler: h, config: cfg, logger: logger, db: db}, nil
}

// Start serves until SIGINT/SIGTERM, then drains in-flight requests for
// up to 30 seconds and closes the database.
func (s *Server) Start() error {
	defer s.db.Close()

	srv := &http.Server{
		Addr:              s.config.Addr(),
		Handler:           s.handler,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      15 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	serverErrors := make(chan error, 1)
	go func() {
		s.logger.Info("server starting",
			slog.String("addr", srv.Addr),
			slog.String("driver", s.db.Driver()),
		)
		serverErrors <- srv.ListenAndServe()
	}()

	select {
	case err := <-serverErrors:
		if !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("server error: %w", err)
		}

	case sig := <-quit:
		s.logger.Info("shutdown signal received", slog.String("signal", sig.String()))

		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()

		if err := srv.Shutdown(ctx); err != nil {
			return fmt.Errorf("graceful shutdown failed: %w", err)
		}
		s.logger.Info("server stopped gracefully")
	}

	return nil
}
