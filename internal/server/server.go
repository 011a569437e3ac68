// Package server is the composition root: it opens the database, builds
// the service and handler layers, wires the routes, and owns startup and
// graceful shutdown.
package server

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"

	"github.com/glutton-su/DevSpace-sub002/internal/auth"
	"github.com/glutton-su/DevSpace-sub002/internal/config"
	"github.com/glutton-su/DevSpace-sub002/internal/handler"
	"github.com/glutton-su/DevSpace-sub002/internal/middleware"
	sqliteRepo "github.com/glutton-su/DevSpace-sub002/internal/repository/sqlite"
	"github.com/glutton-su/DevSpace-sub002/internal/service"
)

// Server owns the router and the database connection; the connection is
// closed during shutdown so the WAL flushes and the file lock releases.
type Server struct {
	router *chi.Mux
	config *config.Config
	logger *slog.Logger
	db     *sqliteRepo.DB
}

// New assembles the full dependency chain: sqlite.DB → services →
// handlers → routes. Each layer only sees the one below it through
// interfaces; handlers never touch the database.
func New(cfg *config.Config, logger *slog.Logger) (*Server, error) {
	tokens, err := auth.NewTokenService(cfg.JWTSecret, cfg.AccessTokenTTL, cfg.RefreshTokenTTL)
	if err != nil {
		return nil, err
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
	}
	s.setupRoutes(tokens)
	return s, nil
}

func (s *Server) setupRoutes(tokens *auth.TokenService) {
	// Global middleware, in execution order.
	s.router.Use(chimiddleware.RequestID)
	s.router.Use(chimiddleware.RealIP)
	s.router.Use(chimiddleware.Recoverer)
	s.router.Use(middleware.Logger(s.logger))

	passwords := auth.NewPasswordService()

	var github *auth.GitHubProvider
	if s.config.GitHubClientID != "" {
		github = auth.NewGitHubProvider(s.config.GitHubClientID, s.config.GitHubClientSecret, s.config.GitHubCallbackURL)
	}

	// Services. s.db implements every repository interface.
	notificationService := service.NewNotificationService(s.db, s.logger)
	authService := service.NewAuthService(s.db, tokens, passwords, s.config.Password, s.logger)
	snippetService := service.NewSnippetService(s.db, s.db, s.db, s.db, s.db, s.db, notificationService, s.logger)
	collaboratorService := service.NewCollaboratorService(s.db, s.db, s.db, notificationService, s.logger)
	projectService := service.NewProjectService(s.db, s.db, s.logger)
	moderationService := service.NewModerationService(s.db, s.db, s.logger)
	accountService := service.NewAccountService(s.db, s.db, s.db, passwords, s.logger)

	// Handlers.
	authHandler := handler.NewAuthHandler(authService, github, s.logger)
	snippetHandler := handler.NewSnippetHandler(snippetService, s.logger)
	collaboratorHandler := handler.NewCollaboratorHandler(collaboratorService, s.logger)
	projectHandler := handler.NewProjectHandler(projectService, s.logger)
	moderationHandler := handler.NewModerationHandler(moderationService, s.logger)
	notificationHandler := handler.NewNotificationHandler(notificationService, s.logger)
	accountHandler := handler.NewAccountHandler(accountService, s.logger)
	uploadHandler := handler.NewUploadHandler(authService, snippetService, s.config.Uploads, s.logger)

	requireAuth := auth.RequireAuth(tokens)
	optionalAuth := auth.OptionalAuth(tokens)

	// Uploaded avatars are served straight from disk.
	avatarServer := http.FileServer(http.Dir(s.config.Uploads.AvatarDir))
	s.router.Handle("/avatars/*", http.StripPrefix("/avatars/", avatarServer))

	s.router.Route("/api", func(r chi.Router) {
		r.Route("/auth", func(r chi.Router) {
			r.Post("/register", authHandler.HandleRegister)
			r.Post("/login", authHandler.HandleLogin)
			r.Post("/refresh", authHandler.HandleRefresh)
			r.Get("/github/login", authHandler.HandleGitHubLogin)
			r.Get("/github/callback", authHandler.HandleGitHubCallback)

			r.Group(func(r chi.Router) {
				r.Use(requireAuth)
				r.Get("/profile", authHandler.HandleMe)
				r.Put("/profile", authHandler.HandleUpdateProfile)
				r.Put("/change-password", authHandler.HandleChangePassword)
			})
		})

		r.Route("/code", func(r chi.Router) {
			// Public listings and detail run with OptionalAuth so
			// isStarred/isLiked resolve for logged-in viewers.
			r.Group(func(r chi.Router) {
				r.Use(optionalAuth)
				r.Get("/public", snippetHandler.HandleListPublic)
				r.Get("/public/all", snippetHandler.HandleListPublic)
				r.Get("/collaborative", snippetHandler.HandleListCollaborative)
				r.Get("/{id}", snippetHandler.HandleGet)
				r.Get("/{id}/collaborators", collaboratorHandler.HandleList)
			})

			r.Group(func(r chi.Router) {
				r.Use(requireAuth)
				r.Post("/", snippetHandler.HandleCreate)
				r.Post("/upload", uploadHandler.HandleCodeFiles)
				r.Get("/user/owned", snippetHandler.HandleListMine)
				r.Get("/user/forked", snippetHandler.HandleListForked)
				r.Put("/{id}", snippetHandler.HandleUpdate)
				r.Delete("/{id}", snippetHandler.HandleDelete)
				r.Post("/{id}/fork", snippetHandler.HandleFork)
				r.Post("/{id}/star", snippetHandler.HandleToggleStar)
				r.Post("/{id}/like", snippetHandler.HandleToggleLike)
				r.Post("/{id}/comments", snippetHandler.HandleAddComment)
				r.Delete("/{id}/comments/{commentID}", snippetHandler.HandleDeleteComment)
				r.Post("/{id}/collaborators", collaboratorHandler.HandleAdd)
				r.Put("/{id}/collaborators/{userID}", collaboratorHandler.HandleUpdate)
				r.Delete("/{id}/collaborators/{userID}", collaboratorHandler.HandleRemove)
			})
		})

		r.With(optionalAuth).Get("/tags", snippetHandler.HandleListTags)
		r.Get("/announcements", moderationHandler.HandleActiveAnnouncements)

		r.Route("/projects", func(r chi.Router) {
			r.With(optionalAuth).Get("/{id}", projectHandler.HandleGet)

			r.Group(func(r chi.Router) {
				r.Use(requireAuth)
				r.Get("/", projectHandler.HandleListMine)
				r.Post("/", projectHandler.HandleCreate)
				r.Put("/{id}", projectHandler.HandleUpdate)
				r.Delete("/{id}", projectHandler.HandleDelete)
			})
		})

		r.Route("/notifications", func(r chi.Router) {
			r.Use(requireAuth)
			r.Get("/", notificationHandler.HandleList)
			r.Put("/read-all", notificationHandler.HandleMarkAllRead)
			r.Put("/{id}/read", notificationHandler.HandleMarkRead)
		})

		r.Route("/moderation", func(r chi.Router) {
			r.Use(requireAuth)
			r.Get("/users", moderationHandler.HandleListUsers)
			r.Put("/users/{id}/suspend", moderationHandler.HandleSuspend)
			r.Put("/users/{id}/unsuspend", moderationHandler.HandleUnsuspend)
			r.Put("/users/{id}/role", moderationHandler.HandleChangeRole)
			r.Delete("/users/{id}", moderationHandler.HandleDeleteUser)
			r.Get("/announcements", moderationHandler.HandleListAnnouncements)
			r.Post("/announcements", moderationHandler.HandleCreateAnnouncement)
			r.Put("/announcements/{id}", moderationHandler.HandleUpdateAnnouncement)
		})

		r.Route("/users", func(r chi.Router) {
			r.Use(requireAuth)
			r.Delete("/account", accountHandler.HandleDelete)
			r.Get("/export-data", accountHandler.HandleExport)
			r.Post("/avatar", uploadHandler.HandleAvatar)
		})
	})
}

// Start runs the HTTP server until SIGINT/SIGTERM, then drains in-flight
// requests and closes the database.
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
			slog.String("database", s.config.DBPath),
			slog.String("environment", s.config.Environment),
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
