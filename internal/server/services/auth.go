// Package services contains server-side business logic. AuthService owns the
// credential and token lifecycle: registration with remote profile creation,
// login, refresh-token rotation, logout, access-token validation and account
// deletion.
package services

import (
	"context"
	"database/sql"
	"errors"
	"sync"
	"time"

	"github.com/dmitrijs2005/noteauth/internal/common"
	"github.com/dmitrijs2005/noteauth/internal/dbx"
	"github.com/dmitrijs2005/noteauth/internal/logging"
	"github.com/dmitrijs2005/noteauth/internal/server/auth"
	"github.com/dmitrijs2005/noteauth/internal/server/config"
	"github.com/dmitrijs2005/noteauth/internal/server/models"
	"github.com/dmitrijs2005/noteauth/internal/server/profiles"
	"github.com/dmitrijs2005/noteauth/internal/server/repositories/repomanager"
	"github.com/google/uuid"
)

const (
	msgUserExists          = "User already exists"
	msgInvalidCredentials  = "Invalid email or password"
	msgInvalidRefresh      = "Invalid refresh token"
	msgInvalidOrExpired    = "Invalid or expired refresh token"
	msgInvalidToken        = "Invalid token"
	msgValidationFailed    = "Token validation failed"
	msgUserNotFound        = "User not found"
	msgPasswordTooLong     = "Password must be at most 72 bytes long"
	msgProfileUnavailable  = "User profile service unavailable"
	msgProfileFailed       = "Failed to create user profile"
	defaultCompensationTTL = 5 * time.Second
)

// TokenPair bundles a short-lived access token and a long-lived refresh token.
type TokenPair struct {
	AccessToken  string `json:"accessToken"`
	RefreshToken string `json:"refreshToken"`
}

type PasswordHasher interface {
	Hash(password string) (string, error)
	Verify(hash, password string) (bool, error)
}

type TokenCodec interface {
	SignAt(subjectID, email string, now time.Time) (string, time.Time, error)
	Verify(token string) (*auth.Claims, error)
}

type AuthService struct {
	db          *sql.DB
	repomanager repomanager.RepositoryManager
	profiles    profiles.Client
	log         logging.Logger

	access  TokenCodec
	refresh TokenCodec
	hasher  PasswordHasher

	now                 func() time.Time
	compensationTimeout time.Duration

	dummyOnce sync.Once
	dummyHash string
}

type Option func(*AuthService)

// WithClock replaces time.Now for token issuance, expiry checks and
// verification.
func WithClock(now func() time.Time) Option {
	return func(s *AuthService) { s.now = now }
}

// WithCompensationTimeout bounds the credential rollback after a failed
// profile call.
func WithCompensationTimeout(d time.Duration) Option {
	return func(s *AuthService) { s.compensationTimeout = d }
}

// NewAuthService wires the service from cfg. cfg must have passed Validate.
func NewAuthService(db *sql.DB, m repomanager.RepositoryManager, cfg *config.Config, pc profiles.Client, log logging.Logger, opts ...Option) *AuthService {
	s := &AuthService{
		db:                  db,
		repomanager:         m,
		profiles:            pc,
		log:                 log.With("module", "auth_service"),
		hasher:              auth.NewBcryptHasher(cfg.BcryptCost),
		now:                 time.Now,
		compensationTimeout: defaultCompensationTTL,
	}
	for _, o := range opts {
		o(s)
	}
	s.access = auth.NewCodec([]byte(cfg.AccessTokenSecret), cfg.AccessTokenValidityDuration, auth.WithClock(s.now))
	s.refresh = auth.NewCodec([]byte(cfg.RefreshTokenSecret), cfg.RefreshTokenValidityDuration, auth.WithClock(s.now))
	return s
}

// Register creates a credential, mirrors it as a remote profile and issues
// tokens. If the profile call fails the credential is deleted again.
func (s *AuthService) Register(ctx context.Context, email, password string) (*TokenPair, error) {
	repo := s.repomanager.Credentials(s.db)

	_, err := repo.GetByEmail(ctx, email)
	if err == nil {
		return nil, common.NewConflict(msgUserExists, nil)
	}
	if !errors.Is(err, common.ErrorNotFound) {
		return nil, common.NewInternal("Registration failed", err)
	}

	hash, err := s.hasher.Hash(password)
	if err != nil {
		if errors.Is(err, common.ErrPasswordTooLong) {
			return nil, common.NewInvalidArgument(msgPasswordTooLong, err)
		}
		return nil, common.NewInternal("Registration failed", err)
	}

	cred, err := repo.Create(ctx, &models.Credential{ID: uuid.NewString(), Email: email, PasswordHash: hash})
	if err != nil {
		if errors.Is(err, common.ErrorAlreadyExists) {
			return nil, common.NewConflict(msgUserExists, err)
		}
		return nil, common.NewInternal("Registration failed", err)
	}

	if err := s.profiles.CreateProfile(ctx, profiles.Profile{ID: cred.ID, Email: cred.Email}); err != nil {
		s.log.Warn(ctx, "profile creation failed, rolling back credential", "credential_id", cred.ID, "error", err)
		s.rollbackCredential(ctx, cred.ID)
		return nil, profileFailure(err)
	}

	s.log.Info(ctx, "credential registered", "credential_id", cred.ID)
	return s.issueTokens(ctx, s.db, cred)
}

// rollbackCredential runs even when ctx is already cancelled.
func (s *AuthService) rollbackCredential(ctx context.Context, id string) {
	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), s.compensationTimeout)
	defer cancel()

	err := s.repomanager.Credentials(s.db).Delete(ctx, id)
	if err != nil && !errors.Is(err, common.ErrorNotFound) {
		s.log.Error(ctx, "credential rollback failed", "credential_id", id, "error", err)
	}
}

func profileFailure(err error) *common.ServiceError {
	re, ok := profiles.AsRemoteError(err)
	switch {
	case !ok:
		return common.NewUnauthorized(msgProfileFailed, err)
	case re.Unreachable:
		return common.NewUnauthorized(msgProfileUnavailable, err)
	default:
		return common.NewUnauthorized(re.Message, err)
	}
}

func (s *AuthService) Login(ctx context.Context, email, password string) (*TokenPair, error) {
	cred, err := s.repomanager.Credentials(s.db).GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			s.burnHash(password)
			return nil, common.NewUnauthorized(msgInvalidCredentials, nil)
		}
		return nil, common.NewInternal("Login failed", err)
	}

	ok, err := s.hasher.Verify(cred.PasswordHash, password)
	if err != nil {
		return nil, common.NewInternal("Login failed", err)
	}
	if !ok {
		return nil, common.NewUnauthorized(msgInvalidCredentials, nil)
	}

	return s.issueTokens(ctx, s.db, cred)
}

// burnHash spends one hash comparison so unknown emails take as long as
// wrong passwords.
func (s *AuthService) burnHash(password string) {
	s.dummyOnce.Do(func() {
		s.dummyHash, _ = s.hasher.Hash(uuid.NewString())
	})
	if s.dummyHash != "" {
		_, _ = s.hasher.Verify(s.dummyHash, password)
	}
}

// issueTokens mints a fresh access token and returns the credential's
// current refresh token if it is still valid, otherwise a new one stored in
// place of the expired record.
func (s *AuthService) issueTokens(ctx context.Context, db dbx.DBTX, cred *models.Credential) (*TokenPair, error) {
	now := s.now()

	access, _, err := s.access.SignAt(cred.ID, cred.Email, now)
	if err != nil {
		return nil, common.NewInternal("Token generation failed", err)
	}

	repo := s.repomanager.RefreshTokens(db)

	latest, err := repo.FindLatestByCredential(ctx, cred.ID)
	if err != nil && !errors.Is(err, common.ErrorNotFound) {
		return nil, common.NewInternal("Token generation failed", err)
	}
	if latest != nil && !latest.Expired(now) {
		return &TokenPair{AccessToken: access, RefreshToken: latest.Token}, nil
	}

	refresh, expiresAt, err := s.refresh.SignAt(cred.ID, cred.Email, now)
	if err != nil {
		return nil, common.NewInternal("Token generation failed", err)
	}

	if latest != nil {
		err = repo.Update(ctx, latest.ID, refresh, expiresAt)
	}
	if latest == nil || errors.Is(err, common.ErrorNotFound) {
		_, err = repo.Create(ctx, &models.RefreshToken{
			ID:           uuid.NewString(),
			CredentialID: cred.ID,
			Token:        refresh,
			ExpiresAt:    expiresAt,
		})
	}
	if err != nil {
		return nil, common.NewInternal("Token generation failed", err)
	}

	return &TokenPair{AccessToken: access, RefreshToken: refresh}, nil
}

// RefreshToken redeems a refresh token once. The redeemed record is deleted
// and the new pair issued in one transaction; a concurrent redemption of the
// same token loses on the delete. Other records of the credential, left by
// concurrent first logins, go too, so rotation always mints a fresh token
// and leaves a single active one.
func (s *AuthService) RefreshToken(ctx context.Context, token string) (*TokenPair, error) {
	claims, err := s.refresh.Verify(token)
	if err != nil {
		return nil, common.NewUnauthorized(msgInvalidRefresh, err)
	}

	record, err := s.repomanager.RefreshTokens(s.db).Find(ctx, token)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return nil, common.NewUnauthorized(msgInvalidOrExpired, err)
		}
		return nil, common.NewInternal("Token refresh failed", err)
	}
	if record.Expired(s.now()) || record.CredentialID != claims.UserID {
		return nil, common.NewUnauthorized(msgInvalidOrExpired, nil)
	}

	cred, err := s.repomanager.Credentials(s.db).GetByID(ctx, record.CredentialID)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return nil, common.NewUnauthorized(msgInvalidOrExpired, err)
		}
		return nil, common.NewInternal("Token refresh failed", err)
	}

	var pair *TokenPair
	err = dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		if err := s.repomanager.RefreshTokens(tx).Delete(ctx, record.ID); err != nil {
			if errors.Is(err, common.ErrorNotFound) {
				return common.NewUnauthorized(msgInvalidOrExpired, err)
			}
			return err
		}
		if _, err := s.repomanager.RefreshTokens(tx).DeleteByCredential(ctx, cred.ID); err != nil {
			return err
		}
		var genErr error
		pair, genErr = s.issueTokens(ctx, tx, cred)
		return genErr
	})
	if err != nil {
		var se *common.ServiceError
		if errors.As(err, &se) {
			return nil, se
		}
		return nil, common.NewInternal("Token refresh failed", err)
	}

	s.log.Debug(ctx, "refresh token rotated", "credential_id", cred.ID)
	return pair, nil
}

// Logout revokes every record carrying token. Unknown tokens are not an
// error.
func (s *AuthService) Logout(ctx context.Context, token string) error {
	n, err := s.repomanager.RefreshTokens(s.db).DeleteByToken(ctx, token)
	if err != nil {
		return common.NewInternal("Logout failed", err)
	}
	s.log.Debug(ctx, "logout", "revoked", n)
	return nil
}

// ValidateToken verifies an access token and checks that its subject still
// exists.
func (s *AuthService) ValidateToken(ctx context.Context, token string) (*auth.Claims, error) {
	claims, err := s.access.Verify(token)
	if err != nil {
		if errors.Is(err, common.ErrTokenMalformed) ||
			errors.Is(err, common.ErrTokenExpired) ||
			errors.Is(err, common.ErrInvalidToken) {
			return nil, common.NewUnauthorized(msgInvalidToken, err)
		}
		return nil, common.NewInternal(msgValidationFailed, err)
	}

	if _, err := s.repomanager.Credentials(s.db).GetByID(ctx, claims.UserID); err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return nil, common.NewNotFound(msgUserNotFound, err)
		}
		return nil, common.NewInternal(msgValidationFailed, err)
	}

	return claims, nil
}

// GetProfile returns the credential without its password hash.
func (s *AuthService) GetProfile(ctx context.Context, credentialID string) (*models.Credential, error) {
	cred, err := s.repomanager.Credentials(s.db).GetByID(ctx, credentialID)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return nil, common.NewNotFound(msgUserNotFound, err)
		}
		return nil, common.NewInternal("Failed to load profile", err)
	}
	cred.PasswordHash = ""
	return cred, nil
}

// DeleteAccount removes the credential. Refresh tokens are removed by the
// storage cascade and outstanding access tokens stop validating. Deleting a
// credential that is already gone succeeds.
func (s *AuthService) DeleteAccount(ctx context.Context, credentialID string) error {
	if err := s.repomanager.Credentials(s.db).Delete(ctx, credentialID); err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			s.log.Debug(ctx, "account already deleted", "credential_id", credentialID)
			return nil
		}
		return common.NewInternal("Failed to delete account", err)
	}
	s.log.Info(ctx, "account deleted", "credential_id", credentialID)
	return nil
}
