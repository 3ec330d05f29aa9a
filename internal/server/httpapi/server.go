// Package httpapi exposes the authentication service over HTTP. Public
// routes cover the credential flows; the /api group requires a bearer
// access token. Refresh tokens travel only in an HTTP-only cookie.
package httpapi

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/dsavelev/authkeeper/internal/logging"
	"github.com/dsavelev/authkeeper/internal/server/services"
)

type Server struct {
	address   string
	logger    logging.Logger
	auth      *services.AuthService
	jwtSecret []byte
}

func NewServer(address string, l logging.Logger, auth *services.AuthService, secretKey string) *Server {
	return &Server{
		address:   address,
		logger:    l.With("module", "http_server"),
		auth:      auth,
		jwtSecret: []byte(secretKey),
	}
}

func (s *Server) routes() http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)

	r.Post("/register", s.register)
	r.Post("/login", s.login)
	r.Post("/verify", s.verify)
	r.Post("/refresh", s.refresh)
	r.Post("/forgot-password", s.forgotPassword)
	r.Post("/reset-password", s.resetPassword)

	r.Group(func(r chi.Router) {
		r.Use(s.authMiddleware)
		r.Get("/api/users", s.listAccounts)
		r.Get("/api/users/{id}", s.getAccount)
		r.Get("/api/me", s.me)
		r.Put("/api/users", s.editAccount)
		r.Delete("/api/users/{id}", s.deleteAccount)
	})

	return r
}

func (s *Server) Run(ctx context.Context) error {
	srv := &http.Server{
		Addr:         s.address,
		Handler:      s.routes(),
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	go func() {
		<-ctx.Done()
		s.logger.Info(ctx, "Stopping HTTP server...")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			s.logger.Error(ctx, "server shutdown error", "error", err.Error())
		}
	}()

	s.logger.Info(ctx, "Starting HTTP server", "address", s.address)

	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}
