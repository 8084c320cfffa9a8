// Package proto defines the auth.v1.AuthService gRPC contract: request and
// response messages, the service descriptor, a client, and the JSON codec
// the messages travel with.
package proto

import "time"

type RegisterRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type TokenPairResponse struct {
	AccessToken  string `json:"accessToken"`
	RefreshToken string `json:"refreshToken"`
}

type RefreshTokenRequest struct {
	RefreshToken string `json:"refreshToken"`
}

type LogoutRequest struct {
	RefreshToken string `json:"refreshToken"`
}

type LogoutResponse struct{}

type ValidateTokenRequest struct {
	Token string `json:"token"`
}

// ValidateTokenResponse carries the decoded payload. Times are Unix seconds.
type ValidateTokenResponse struct {
	UserID    string `json:"userId"`
	Email     string `json:"email"`
	IssuedAt  int64  `json:"iat"`
	ExpiresAt int64  `json:"exp"`
}

type GetProfileRequest struct{}

type ProfileResponse struct {
	ID        string    `json:"id"`
	Email     string    `json:"email"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

type DeleteAccountRequest struct{}

type DeleteAccountResponse struct{}
