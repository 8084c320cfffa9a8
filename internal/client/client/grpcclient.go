package client

import (
	"context"
	"fmt"
	"sync"

	"github.com/dmitrijs2005/noteauth/internal/common"
	pb "github.com/dmitrijs2005/noteauth/internal/proto"
	"go.opentelemetry.io/contrib/instrumentation/google.golang.org/grpc/otelgrpc"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/credentials/insecure"
	"google.golang.org/grpc/metadata"
	"google.golang.org/grpc/status"
)

var authenticatedMethods = map[string]bool{
	pb.MethodValidateToken: true,
	pb.MethodGetProfile:    true,
	pb.MethodDeleteAccount: true,
}

type GRPCClient struct {
	conn   *grpc.ClientConn
	client pb.AuthServiceClient

	mu     sync.Mutex
	tokens Tokens
}

func withAccessToken(ctx context.Context, token string) context.Context {
	md, _ := metadata.FromOutgoingContext(ctx)
	md = md.Copy()
	if md == nil {
		md = metadata.MD{}
	}
	md.Set(common.AuthorizationHeaderName, common.BearerPrefix+token)

	return metadata.NewOutgoingContext(ctx, md)
}

func (s *GRPCClient) accessTokenInterceptor(
	ctx context.Context,
	method string,
	req, reply any,
	cc *grpc.ClientConn,
	invoker grpc.UnaryInvoker,
	opts ...grpc.CallOption,
) error {
	if !authenticatedMethods[method] {
		return invoker(ctx, method, req, reply, cc, opts...)
	}

	tokens := s.Tokens()
	if tokens.AccessToken == "" {
		return ErrNotLoggedIn
	}

	err := invoker(withAccessToken(ctx, tokens.AccessToken), method, req, reply, cc, opts...)
	if status.Code(err) != codes.Unauthenticated || tokens.RefreshToken == "" {
		return err
	}

	refreshed, rerr := s.refresh(ctx, tokens.RefreshToken)
	if rerr != nil {
		return err
	}

	return invoker(withAccessToken(ctx, refreshed.AccessToken), method, req, reply, cc, opts...)
}

// NewGRPCClient creates a client for the auth service at addr. Extra dial
// options are appended after the defaults.
func NewGRPCClient(addr string, opts ...grpc.DialOption) (*GRPCClient, error) {
	c := &GRPCClient{}

	dialOpts := append([]grpc.DialOption{
		grpc.WithTransportCredentials(insecure.NewCredentials()),
		grpc.WithStatsHandler(otelgrpc.NewClientHandler()),
		grpc.WithUnaryInterceptor(c.accessTokenInterceptor),
	}, opts...)

	conn, err := grpc.NewClient(addr, dialOpts...)
	if err != nil {
		return nil, err
	}
	c.conn = conn
	c.client = pb.NewAuthServiceClient(conn)
	return c, nil
}

func (s *GRPCClient) Close() error {
	return s.conn.Close()
}

func (s *GRPCClient) Tokens() Tokens {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.tokens
}

func (s *GRPCClient) SetTokens(t Tokens) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.tokens = t
}

func (s *GRPCClient) keep(resp *pb.TokenPairResponse) Tokens {
	t := Tokens{AccessToken: resp.AccessToken, RefreshToken: resp.RefreshToken}
	s.SetTokens(t)
	return t
}

func (s *GRPCClient) Register(ctx context.Context, email, password string) (Tokens, error) {
	resp, err := s.client.Register(ctx, &pb.RegisterRequest{Email: email, Password: password})
	if err != nil {
		return Tokens{}, mapError(err)
	}
	return s.keep(resp), nil
}

func (s *GRPCClient) Login(ctx context.Context, email, password string) (Tokens, error) {
	resp, err := s.client.Login(ctx, &pb.LoginRequest{Email: email, Password: password})
	if err != nil {
		return Tokens{}, mapError(err)
	}
	return s.keep(resp), nil
}

func (s *GRPCClient) refresh(ctx context.Context, refreshToken string) (Tokens, error) {
	resp, err := s.client.RefreshToken(ctx, &pb.RefreshTokenRequest{RefreshToken: refreshToken})
	if err != nil {
		return Tokens{}, err
	}
	return s.keep(resp), nil
}

// Refresh redeems the held refresh token for a new pair.
func (s *GRPCClient) Refresh(ctx context.Context) (Tokens, error) {
	rt := s.Tokens().RefreshToken
	if rt == "" {
		return Tokens{}, ErrNotLoggedIn
	}
	t, err := s.refresh(ctx, rt)
	if err != nil {
		return Tokens{}, mapError(err)
	}
	return t, nil
}

// Logout revokes the held refresh token and forgets both tokens. Local
// state is cleared even when the server cannot be reached.
func (s *GRPCClient) Logout(ctx context.Context) error {
	rt := s.Tokens().RefreshToken
	s.SetTokens(Tokens{})
	if rt == "" {
		return nil
	}
	if _, err := s.client.Logout(ctx, &pb.LogoutRequest{RefreshToken: rt}); err != nil {
		return mapError(err)
	}
	return nil
}

func (s *GRPCClient) Validate(ctx context.Context) (*pb.ValidateTokenResponse, error) {
	resp, err := s.client.ValidateToken(ctx, &pb.ValidateTokenRequest{})
	if err != nil {
		return nil, mapError(err)
	}
	return resp, nil
}

func (s *GRPCClient) Profile(ctx context.Context) (*pb.ProfileResponse, error) {
	resp, err := s.client.GetProfile(ctx, &pb.GetProfileRequest{})
	if err != nil {
		return nil, mapError(err)
	}
	return resp, nil
}

func (s *GRPCClient) DeleteAccount(ctx context.Context) error {
	if _, err := s.client.DeleteAccount(ctx, &pb.DeleteAccountRequest{}); err != nil {
		return mapError(err)
	}
	s.SetTokens(Tokens{})
	return nil
}

func mapError(err error) error {
	if err == nil {
		return nil
	}
	st, ok := status.FromError(err)
	if !ok {
		return err
	}
	switch st.Code() {
	case codes.Unauthenticated, codes.PermissionDenied:
		return fmt.Errorf("%w: %s", ErrUnauthorized, st.Message())
	case codes.Unavailable, codes.DeadlineExceeded:
		return ErrUnavailable
	case codes.AlreadyExists:
		return fmt.Errorf("%w: %s", ErrAlreadyExists, st.Message())
	case codes.NotFound:
		return fmt.Errorf("%w: %s", ErrNotFound, st.Message())
	case codes.InvalidArgument:
		return fmt.Errorf("%w: %s", ErrInvalidArgument, st.Message())
	default:
		return fmt.Errorf("rpc error: %s", st.Message())
	}
}
