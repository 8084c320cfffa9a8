package httpapi

import (
	"context"
	"time"

	"github.com/dmitrijs2005/noteauth/internal/common"
	"github.com/dmitrijs2005/noteauth/internal/logging"
	"github.com/dmitrijs2005/noteauth/internal/server/auth"
	"github.com/dmitrijs2005/noteauth/internal/server/models"
	"github.com/dmitrijs2005/noteauth/internal/server/services"
	"github.com/golang-jwt/jwt/v5"
)

type nopLogger struct{}

func (n nopLogger) Debug(context.Context, string, ...any) {}
func (n nopLogger) Info(context.Context, string, ...any)  {}
func (n nopLogger) Warn(context.Context, string, ...any)  {}
func (n nopLogger) Error(context.Context, string, ...any) {}
func (n nopLogger) With(...any) logging.Logger            { return n }

// fakeAuth knows one valid access token, "good", belonging to "u1".
type fakeAuth struct {
	registerErr error
	deleted     []string
	lastEmail   string
}

var created = time.Date(2025, 1, 2, 3, 4, 5, 0, time.UTC)

func (f *fakeAuth) Register(ctx context.Context, email, password string) (*services.TokenPair, error) {
	f.lastEmail = email
	if f.registerErr != nil {
		return nil, f.registerErr
	}
	return &services.TokenPair{AccessToken: "a1", RefreshToken: "r1"}, nil
}

func (f *fakeAuth) Login(ctx context.Context, email, password string) (*services.TokenPair, error) {
	if password != "pw" {
		return nil, common.NewUnauthorized("Invalid email or password", nil)
	}
	return &services.TokenPair{AccessToken: "a2", RefreshToken: "r1"}, nil
}

func (f *fakeAuth) RefreshToken(ctx context.Context, token string) (*services.TokenPair, error) {
	if token != "r1" {
		return nil, common.NewUnauthorized("Invalid or expired refresh token", nil)
	}
	return &services.TokenPair{AccessToken: "a3", RefreshToken: "r2"}, nil
}

func (f *fakeAuth) Logout(ctx context.Context, token string) error { return nil }

func (f *fakeAuth) ValidateToken(ctx context.Context, token string) (*auth.Claims, error) {
	switch token {
	case "good":
		return &auth.Claims{
			UserID: "u1",
			Email:  "a@x.com",
			RegisteredClaims: jwt.RegisteredClaims{
				IssuedAt:  jwt.NewNumericDate(created),
				ExpiresAt: jwt.NewNumericDate(created.Add(15 * time.Minute)),
			},
		}, nil
	case "orphan":
		return nil, common.NewNotFound("User not found", common.ErrorNotFound)
	case "broken":
		return nil, common.NewInternal("Token validation failed", context.DeadlineExceeded)
	default:
		return nil, common.NewUnauthorized("Invalid token", common.ErrTokenMalformed)
	}
}

func (f *fakeAuth) GetProfile(ctx context.Context, id string) (*models.Credential, error) {
	return &models.Credential{ID: id, Email: "a@x.com", CreatedAt: created, UpdatedAt: created}, nil
}

func (f *fakeAuth) DeleteAccount(ctx context.Context, id string) error {
	f.deleted = append(f.deleted, id)
	return nil
}
