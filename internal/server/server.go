// Package server wires the router, middleware, and handlers together and
// owns the process lifecycle: it opens the database, serves until a shutdown
// signal arrives, drains in-flight requests, and closes the database last.
package server

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"github.com/sakif/devfolio/internal/auth"
	"github.com/sakif/devfolio/internal/github"
	"github.com/sakif/devfolio/internal/handler"
	"github.com/sakif/devfolio/internal/metadata"
	"github.com/sakif/devfolio/internal/middleware"
	"github.com/sakif/devfolio/internal/repository/gormdb"
	"github.com/sakif/devfolio/internal/service"
)

// Config holds everything the server needs from the environment.
type Config struct {
	Port int

	// DatabaseURL is a Postgres DSN. Empty means a local SQLite file —
	// development fallback, never production.
	DatabaseURL string
	SQLitePath  string

	SessionSecret string

	GitHubClientID     string
	GitHubClientSecret string
	GitHubCallbackURL  string

	// AppBaseURL is where the dashboard frontend lives; it is both the
	// post-login redirect target and the allowed CORS origin.
	AppBaseURL string
}

// Server is the composed application: router plus the resources it owns.
type Server struct {
	router *chi.Mux
	config Config
	logger *slog.Logger
	db     *gormdb.DB
}

// New opens the database and assembles the full dependency chain:
// store → service → handlers → routes.
func New(cfg Config, logger *slog.Logger) (*Server, error) {
	var (
		db  *gormdb.DB
		err error
	)
	if cfg.DatabaseURL != "" {
		db, err = gormdb.NewPostgres(cfg.DatabaseURL)
	} else {
		logger.Warn("DATABASE_URL not set — using local SQLite", slog.String("path", cfg.SQLitePath))
		db, err = gormdb.NewSQLite(cfg.SQLitePath)
	}
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	s := &Server{
		router: chi.NewRouter(),
		config: cfg,
		logger: logger,
		db:     db,
	}

	if err := s.setupRoutes(); err != nil {
		db.Close()
		return nil, fmt.Errorf("setting up routes: %w", err)
	}
	return s, nil
}

// setupRoutes configures middleware and binds every route.
//
// Middleware order: RequestID → RealIP → Recoverer → request logger → CORS.
// CORS allows the configured frontend origin with credentials, since the
// session rides in a cookie.
func (s *Server) setupRoutes() error {
	s.router.Use(chimiddleware.RequestID)
	s.router.Use(chimiddleware.RealIP)
	s.router.Use(chimiddleware.Recoverer)
	s.router.Use(middleware.Logger(s.logger))
	s.router.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{s.config.AppBaseURL},
		AllowedMethods:   []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Content-Type"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	sessions, err := auth.NewSessionService(s.config.SessionSecret)
	if err != nil {
		return fmt.Errorf("creating session service: %w", err)
	}
	provider := auth.NewGitHubProvider(
		s.config.GitHubClientID,
		s.config.GitHubClientSecret,
		s.config.GitHubCallbackURL,
	)
	githubClient := github.NewClient()
	secureCookies := strings.HasPrefix(s.config.AppBaseURL, "https://")

	portfolioService := service.NewPortfolioService(s.db, s.logger)

	authHandler := handler.NewAuthHandler(provider, githubClient, sessions, s.config.AppBaseURL, secureCookies)
	githubHandler := handler.NewGitHubHandler(githubClient)
	metadataHandler := handler.NewMetadataHandler(metadata.NewExtractor())
	portfolioHandler := handler.NewPortfolioHandler(portfolioService, s.logger)

	s.router.Get("/auth/github", authHandler.Login)
	s.router.Post("/auth/logout", authHandler.Logout)

	s.router.Route("/api", func(r chi.Router) {
		// Session-protected dashboard routes.
		r.Group(func(r chi.Router) {
			r.Use(auth.RequireSession(sessions))
			r.Get("/me", authHandler.Me)
			r.Get("/github/profile", githubHandler.Profile)
			r.Get("/github/repos", githubHandler.Repos)
		})

		r.Post("/extract-metadata", metadataHandler.Extract)

		r.Route("/portfolio", func(r chi.Router) {
			r.Post("/home", portfolioHandler.SaveHome)
			r.Post("/skills", portfolioHandler.SaveSkills)
			r.Post("/socials", portfolioHandler.SaveSocials)
			r.Get("/socials", portfolioHandler.GetSocials)
			r.Post("/repos", portfolioHandler.SaveRepos)
			r.Post("/publish", portfolioHandler.Publish)
			r.Post("/publish-all", portfolioHandler.PublishAll)
			// Public read with ?username=, owner read with ?userId=.
			r.Get("/publish", portfolioHandler.GetPortfolio)
		})
	})

	return nil
}

// Start serves HTTP until SIGINT/SIGTERM, then drains in-flight requests
// for up to 30 seconds before closing the database.
func (s *Server) Start() error {
	defer s.db.Close()

	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", s.config.Port),
		Handler:      s.router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	serverErrors := make(chan error, 1)
	go func() {
		s.logger.Info("server starting",
			slog.Int("port", s.config.Port),
			slog.String("url", fmt.Sprintf("http://localhost:%d", s.config.Port)),
		)
		serverErrors <- srv.ListenAndServe()
	}()

	select {
	case err := <-serverErrors:
		if err != http.ErrServerClosed {
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
