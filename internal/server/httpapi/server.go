// Package httpapi exposes the auth service over HTTP/JSON with the routes
// the API gateway forwards to.
package httpapi

import (
	"context"
	"errors"
	"net"
	"net/http"
	"time"

	"github.com/dmitrijs2005/noteauth/internal/logging"
	"github.com/dmitrijs2005/noteauth/internal/server/auth"
	"github.com/dmitrijs2005/noteauth/internal/server/models"
	"github.com/dmitrijs2005/noteauth/internal/server/services"
)

const shutdownTimeout = 10 * time.Second

// AuthService is the subset of services.AuthService the handlers need.
type AuthService interface {
	Register(ctx context.Context, email, password string) (*services.TokenPair, error)
	Login(ctx context.Context, email, password string) (*services.TokenPair, error)
	RefreshToken(ctx context.Context, token string) (*services.TokenPair, error)
	Logout(ctx context.Context, token string) error
	ValidateToken(ctx context.Context, token string) (*auth.Claims, error)
	GetProfile(ctx context.Context, credentialID string) (*models.Credential, error)
	DeleteAccount(ctx context.Context, credentialID string) error
}

type HTTPServer struct {
	address string
	auth    AuthService
	logger  logging.Logger
}

func NewHTTPServer(a string, l logging.Logger, svc AuthService) *HTTPServer {
	return &HTTPServer{
		address: a,
		auth:    svc,
		logger:  l.With("module", "http_server"),
	}
}

func (s *HTTPServer) Run(ctx context.Context) error {
	lis, err := net.Listen("tcp", s.address)
	if err != nil {
		return err
	}
	return s.Serve(ctx, lis)
}

// Serve serves on lis until ctx is done, then shuts down gracefully.
func (s *HTTPServer) Serve(ctx context.Context, lis net.Listener) error {
	srv := &http.Server{
		Handler:           s.Router(),
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       10 * time.Second,
		WriteTimeout:      15 * time.Second,
	}

	go func() {
		<-ctx.Done()
		s.logger.Info(ctx, "Stopping HTTP server...")
		shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), shutdownTimeout)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
	}()

	s.logger.Info(ctx, "Starting HTTP server", "address", lis.Addr().String())

	if err := srv.Serve(lis); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}
