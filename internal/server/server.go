// Package server is the composition root: it opens the database, builds the
// services and handlers, mounts them on a chi router and runs the HTTP server
// until it is told to stop.
package server

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/hashicorp/go-multierror"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/sakif/code-translator/internal/auth"
	"github.com/sakif/code-translator/internal/config"
	"github.com/sakif/code-translator/internal/executor"
	"github.com/sakif/code-translator/internal/generator"
	"github.com/sakif/code-translator/internal/handler"
	"github.com/sakif/code-translator/internal/middleware"
	sqliteRepo "github.com/sakif/code-translator/internal/repository/sqlite"
	"github.com/sakif/code-translator/internal/service"
)

// WriteTimeout has to outlast the slowest generation call (LLM_TIMEOUT
// defaults to 60s) so the handler can still write its error body.
const (
	readTimeout     = 15 * time.Second
	writeTimeout    = 90 * time.Second
	idleTimeout     = 60 * time.Second
	shutdownTimeout = 30 * time.Second
)

// Deps are the collaborators built outside the server. Either may be nil:
// a nil Executor makes /api/run-python answer 503, a nil Generator makes the
// AI endpoints report the missing API key.
type Deps struct {
	Executor  executor.Executor
	Generator generator.Generator
}

// Server owns the router and the database handle.
type Server struct {
	router *chi.Mux
	config *config.Config
	logger *slog.Logger
	db     *sqliteRepo.DB
	deps   Deps
	tokens *auth.TokenService // nil when authentication is disabled
}

// New opens the database and wires every route.
func New(cfg *config.Config, logger *slog.Logger, deps Deps) (*Server, error) {
	if cfg.DBPath != ":memory:" {
		if err := os.MkdirAll(filepath.Dir(cfg.DBPath), 0o755); err != nil {
			return nil, fmt.Errorf("creating database directory: %w", err)
		}
	}

	db, err := sqliteRepo.New(cfg.DBPath)
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	s := &Server{
		router: chi.NewRouter(),
		config: cfg,
		logger: logger,
		db:     db,
		deps:   deps,
	}

	if cfg.Auth.Enabled() {
		s.tokens, err = auth.NewTokenService(cfg.Auth.JWTSecret)
		if err != nil {
			db.Close()
			return nil, fmt.Errorf("creating token service: %w", err)
		}
	}

	s.setupRoutes()

	return s, nil
}

// Handler exposes the router, mainly for tests.
func (s *Server) Handler() http.Handler {
	return s.router
}

// setupRoutes mounts:
//
//	POST /api/translate          translation
//	POST /api/chat               assistant chat
//	POST /api/run-python         script execution (signed in when auth is on)
//	GET  /api/executions         caller's execution history (auth only)
//	GET  /api/me                 current user (auth only)
//	GET  /auth/github/login      GitHub redirect (when configured)
//	GET  /auth/github/callback
//	POST /auth/register|login|logout
//	GET  /healthz, /metrics
func (s *Server) setupRoutes() {
	s.router.Use(chimiddleware.RequestID)
	s.router.Use(chimiddleware.RealIP)
	s.router.Use(middleware.Logger(s.logger))
	s.router.Use(chimiddleware.Recoverer)
	s.router.Use(middleware.Security(s.config.IsDevelopment()))
	s.router.Use(middleware.CORS(s.config.CORSAllowedOrigins))

	translationService := service.NewTranslationService(s.deps.Generator, s.config.LLM.Timeout, s.logger)
	chatService := service.NewChatService(s.deps.Generator, s.config.LLM.Timeout, s.logger)
	executionService := service.NewExecutionService(s.deps.Executor, s.db, s.logger)

	translateHandler := handler.NewTranslateHandler(translationService, s.logger)
	chatHandler := handler.NewChatHandler(chatService, s.logger)
	executeHandler := handler.NewExecuteHandler(executionService, s.logger)

	generatorName := "unconfigured"
	if s.deps.Generator != nil {
		generatorName = string(s.config.LLM.Provider)
	}
	executorName := s.config.Executor.Mode
	if s.deps.Executor == nil {
		executorName = config.ExecutorDisabled
	}
	healthHandler := handler.NewHealthHandler(executorName, generatorName, s.db.Ping)

	s.router.Get("/healthz", healthHandler.HandleHealth)
	s.router.Handle("/metrics", promhttp.Handler())

	var authHandler *handler.AuthHandler
	if s.tokens != nil {
		authService := service.NewAuthService(s.db, s.tokens, auth.NewPasswordService(), s.logger)

		var github handler.OAuthProvider
		if s.config.Auth.GitHubEnabled() {
			github = auth.NewGitHubProvider(
				s.config.Auth.GitHubClientID,
				s.config.Auth.GitHubClientSecret,
				s.config.Auth.GitHubCallbackURL,
			)
		}
		authHandler = handler.NewAuthHandler(authService, github, s.logger)

		s.router.Route("/auth", func(r chi.Router) {
			if github != nil {
				r.Get("/github/login", authHandler.HandleGitHubLogin)
				r.Get("/github/callback", authHandler.HandleGitHubCallback)
			}
			r.Post("/register", authHandler.HandleRegister)
			r.Post("/login", authHandler.HandleLogin)
			r.Post("/logout", authHandler.HandleLogout)
		})
	}

	s.router.Route("/api", func(r chi.Router) {
		r.Post("/translate", translateHandler.HandleTranslate)
		r.Post("/chat", chatHandler.HandleChat)

		if s.tokens == nil {
			r.Post("/run-python", executeHandler.HandleRun)
			return
		}

		r.Group(func(r chi.Router) {
			r.Use(auth.RequireAuth(s.tokens))
			r.Post("/run-python", executeHandler.HandleRun)
			r.Get("/executions", executeHandler.HandleHistory)
			r.Get("/me", authHandler.HandleMe)
		})
	})
}

// Start serves until SIGINT/SIGTERM or until ctx is cancelled, then drains
// in-flight requests and releases the database and the executor.
func (s *Server) Start(ctx context.Context) error {
	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", s.config.Port),
		Handler:      s.router,
		ReadTimeout:  readTimeout,
		WriteTimeout: writeTimeout,
		IdleTimeout:  idleTimeout,
	}

	ctx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	serverErrors := make(chan error, 1)
	go func() {
		s.logger.Info("server starting",
			slog.Int("port", s.config.Port),
			slog.String("env", s.config.Env),
			slog.String("database", s.config.DBPath),
			slog.Bool("auth", s.tokens != nil),
		)
		serverErrors <- srv.ListenAndServe()
	}()

	var result *multierror.Error

	select {
	case err := <-serverErrors:
		if !errors.Is(err, http.ErrServerClosed) {
			result = multierror.Append(result, fmt.Errorf("server error: %w", err))
		}
	case <-ctx.Done():
		s.logger.Info("shutdown signal received")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()

		if err := srv.Shutdown(shutdownCtx); err != nil {
			result = multierror.Append(result, fmt.Errorf("graceful shutdown failed: %w", err))
		}
	}

	if err := s.Close(); err != nil {
		result = multierror.Append(result, err)
	}

	if err := result.ErrorOrNil(); err != nil {
		return err
	}
	s.logger.Info("server stopped gracefully")
	return nil
}

// Close releases the executor (if it holds resources) and the database.
func (s *Server) Close() error {
	var result *multierror.Error

	if closer, ok := s.deps.Executor.(interface{ Close() error }); ok {
		if err := closer.Close(); err != nil {
			result = multierror.Append(result, fmt.Errorf("closing executor: %w", err))
		}
	}
	if err := s.db.Close(); err != nil {
		result = multierror.Append(result, fmt.Errorf("closing database: %w", err))
	}

	return result.ErrorOrNil()
}
