package grpc

import (
	"context"

	pb "github.com/dmitrijs2005/noteauth/internal/proto"
	"github.com/dmitrijs2005/noteauth/internal/server/requests"
	"github.com/dmitrijs2005/noteauth/internal/server/services"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

func (s *GRPCServer) Register(ctx context.Context, req *pb.RegisterRequest) (*pb.TokenPairResponse, error) {
	r := requests.Register{Email: req.Email, Password: req.Password}
	if err := r.Validate(); err != nil {
		return nil, invalidArgument(err)
	}

	tokens, err := s.auth.Register(ctx, r.Email, r.Password)
	if err != nil {
		return nil, toStatus(err)
	}
	return tokenPair(tokens), nil
}

func (s *GRPCServer) Login(ctx context.Context, req *pb.LoginRequest) (*pb.TokenPairResponse, error) {
	r := requests.Login{Email: req.Email, Password: req.Password}
	if err := r.Validate(); err != nil {
		return nil, invalidArgument(err)
	}

	tokens, err := s.auth.Login(ctx, r.Email, r.Password)
	if err != nil {
		return nil, toStatus(err)
	}
	return tokenPair(tokens), nil
}

func (s *GRPCServer) RefreshToken(ctx context.Context, req *pb.RefreshTokenRequest) (*pb.TokenPairResponse, error) {
	r := requests.RefreshToken{RefreshToken: req.RefreshToken}
	if err := r.Validate(); err != nil {
		return nil, invalidArgument(err)
	}

	tokens, err := s.auth.RefreshToken(ctx, r.RefreshToken)
	if err != nil {
		return nil, toStatus(err)
	}
	return tokenPair(tokens), nil
}

func (s *GRPCServer) Logout(ctx context.Context, req *pb.LogoutRequest) (*pb.LogoutResponse, error) {
	r := requests.RefreshToken{RefreshToken: req.RefreshToken}
	if err := r.Validate(); err != nil {
		return nil, invalidArgument(err)
	}

	if err := s.auth.Logout(ctx, r.RefreshToken); err != nil {
		return nil, toStatus(err)
	}
	return &pb.LogoutResponse{}, nil
}

// ValidateToken checks the token in the request, or the caller's bearer
// token when the request field is empty.
func (s *GRPCServer) ValidateToken(ctx context.Context, req *pb.ValidateTokenRequest) (*pb.ValidateTokenResponse, error) {
	token := req.Token
	if token == "" {
		token = tokenFromMetadata(ctx)
	}
	if token == "" {
		return nil, status.Error(codes.Unauthenticated, "No token provided")
	}

	claims, err := s.auth.ValidateToken(ctx, token)
	if err != nil {
		return nil, toStatus(err)
	}

	resp := &pb.ValidateTokenResponse{UserID: claims.UserID, Email: claims.Email}
	if claims.IssuedAt != nil {
		resp.IssuedAt = claims.IssuedAt.Unix()
	}
	if claims.ExpiresAt != nil {
		resp.ExpiresAt = claims.ExpiresAt.Unix()
	}
	return resp, nil
}

func (s *GRPCServer) GetProfile(ctx context.Context, _ *pb.GetProfileRequest) (*pb.ProfileResponse, error) {
	claims, ok := claimsFromContext(ctx)
	if !ok {
		return nil, status.Error(codes.Unauthenticated, "Unauthorized")
	}

	cred, err := s.auth.GetProfile(ctx, claims.UserID)
	if err != nil {
		return nil, toStatus(err)
	}
	return &pb.ProfileResponse{ID: cred.ID, Email: cred.Email, CreatedAt: cred.CreatedAt, UpdatedAt: cred.UpdatedAt}, nil
}

func (s *GRPCServer) DeleteAccount(ctx context.Context, _ *pb.DeleteAccountRequest) (*pb.DeleteAccountResponse, error) {
	claims, ok := claimsFromContext(ctx)
	if !ok {
		return nil, status.Error(codes.Unauthenticated, "Unauthorized")
	}

	if err := s.auth.DeleteAccount(ctx, claims.UserID); err != nil {
		return nil, toStatus(err)
	}
	return &pb.DeleteAccountResponse{}, nil
}

func tokenPair(p *services.TokenPair) *pb.TokenPairResponse {
	return &pb.TokenPairResponse{AccessToken: p.AccessToken, RefreshToken: p.RefreshToken}
}
