// Package auth holds the token codec and password hasher used by the auth
// service. Access and refresh tokens are two Codec values with independent
// secrets and lifetimes.
package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/dmitrijs2005/noteauth/internal/common"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// Claims is the signed payload. JSON names match what the other services'
// middleware reads.
type Claims struct {
	UserID string `json:"userId"`
	Email  string `json:"email"`
	jwt.RegisteredClaims
}

// Codec signs and verifies HS256 tokens for one signing domain.
type Codec struct {
	secret []byte
	ttl    time.Duration
	now    func() time.Time
}

type CodecOption func(*Codec)

// WithClock replaces time.Now. Verification uses the same clock.
func WithClock(now func() time.Time) CodecOption {
	return func(c *Codec) { c.now = now }
}

func NewCodec(secret []byte, ttl time.Duration, opts ...CodecOption) *Codec {
	c := &Codec{secret: secret, ttl: ttl, now: time.Now}
	for _, o := range opts {
		o(c)
	}
	return c
}

// TTL returns the lifetime of tokens signed by c.
func (c *Codec) TTL() time.Duration { return c.ttl }

// Sign issues a token for the subject at the codec's current time and
// returns it with its expiry.
func (c *Codec) Sign(subjectID, email string) (string, time.Time, error) {
	return c.SignAt(subjectID, email, c.now())
}

// SignAt issues a token as of now. Callers that persist the expiry pass the
// same instant they store so both agree.
func (c *Codec) SignAt(subjectID, email string, now time.Time) (string, time.Time, error) {
	// JWT times have second precision; truncate so the stored expiry equals exp.
	now = now.Truncate(time.Second)
	expiresAt := now.Add(c.ttl)

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, Claims{
		UserID: subjectID,
		Email:  email,
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        uuid.NewString(),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(expiresAt),
		},
	})

	s, err := token.SignedString(c.secret)
	if err != nil {
		return "", time.Time{}, err
	}
	return s, expiresAt, nil
}

// Verify parses tokenString and checks signature and expiry.
//
// Failures wrap one of common.ErrTokenMalformed (bad encoding, bad signature,
// missing subject) or common.ErrTokenExpired; anything else is returned
// unclassified.
func (c *Codec) Verify(tokenString string) (*Claims, error) {
	claims := &Claims{}

	token, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (any, error) {
		return c.secret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithTimeFunc(c.now),
		jwt.WithExpirationRequired(),
	)
	if err != nil {
		return nil, classify(err)
	}

	if !token.Valid {
		return nil, common.ErrInvalidToken
	}
	if claims.UserID == "" {
		return nil, fmt.Errorf("%w: no subject", common.ErrTokenMalformed)
	}

	return claims, nil
}

func classify(err error) error {
	switch {
	case errors.Is(err, jwt.ErrTokenExpired):
		return fmt.Errorf("%w: %w", common.ErrTokenExpired, err)
	case errors.Is(err, jwt.ErrTokenMalformed),
		errors.Is(err, jwt.ErrTokenSignatureInvalid),
		errors.Is(err, jwt.ErrTokenUnverifiable),
		errors.Is(err, jwt.ErrTokenNotValidYet),
		errors.Is(err, jwt.ErrTokenRequiredClaimMissing):
		return fmt.Errorf("%w: %w", common.ErrTokenMalformed, err)
	default:
		return err
	}
}
