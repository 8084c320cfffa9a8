package client

import (
	"context"

	pb "github.com/dmitrijs2005/noteauth/internal/proto"
)

// Tokens is the pair a successful register, login or refresh returns.
type Tokens struct {
	AccessToken  string
	RefreshToken string
}

func (t Tokens) Empty() bool {
	return t.AccessToken == "" && t.RefreshToken == ""
}

type Client interface {
	Close() error
	Register(ctx context.Context, email, password string) (Tokens, error)
	Login(ctx context.Context, email, password string) (Tokens, error)
	Refresh(ctx context.Context) (Tokens, error)
	Logout(ctx context.Context) error
	Validate(ctx context.Context) (*pb.ValidateTokenResponse, error)
	Profile(ctx context.Context) (*pb.ProfileResponse, error)
	DeleteAccount(ctx context.Context) error
	Tokens() Tokens
	SetTokens(Tokens)
}
