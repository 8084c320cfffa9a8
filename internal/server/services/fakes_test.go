package services

import (
	"context"
	"database/sql"
	"sync"
	"time"

	"github.com/dmitrijs2005/noteauth/internal/common"
	"github.com/dmitrijs2005/noteauth/internal/dbx"
	"github.com/dmitrijs2005/noteauth/internal/server/models"
	"github.com/dmitrijs2005/noteauth/internal/server/profiles"
	"github.com/dmitrijs2005/noteauth/internal/server/repositories/credentials"
	"github.com/dmitrijs2005/noteauth/internal/server/repositories/refreshtokens"
)

// store is an in-memory stand-in for both tables, cascade included.
type store struct {
	mu     sync.Mutex
	clock  func() time.Time
	creds  map[string]*models.Credential
	tokens []*models.RefreshToken

	// injected failures
	credErr   error
	findErr   error
	deleteErr error
	deletes   []string
}

func newStore(clock func() time.Time) *store {
	return &store{clock: clock, creds: map[string]*models.Credential{}}
}

func (s *store) credentialCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.creds)
}

func (s *store) tokenCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.tokens)
}

type fakeCreds struct{ s *store }

func (f fakeCreds) Create(ctx context.Context, c *models.Credential) (*models.Credential, error) {
	f.s.mu.Lock()
	defer f.s.mu.Unlock()
	if f.s.credErr != nil {
		return nil, f.s.credErr
	}
	for _, ex := range f.s.creds {
		if ex.Email == c.Email {
			return nil, common.ErrorAlreadyExists
		}
	}
	cp := *c
	cp.CreatedAt, cp.UpdatedAt = f.s.clock(), f.s.clock()
	f.s.creds[c.ID] = &cp
	out := cp
	return &out, nil
}

func (f fakeCreds) GetByEmail(ctx context.Context, email string) (*models.Credential, error) {
	f.s.mu.Lock()
	defer f.s.mu.Unlock()
	if f.s.credErr != nil {
		return nil, f.s.credErr
	}
	for _, c := range f.s.creds {
		if c.Email == email {
			out := *c
			return &out, nil
		}
	}
	return nil, common.ErrorNotFound
}

func (f fakeCreds) GetByID(ctx context.Context, id string) (*models.Credential, error) {
	f.s.mu.Lock()
	defer f.s.mu.Unlock()
	if f.s.credErr != nil {
		return nil, f.s.credErr
	}
	c, ok := f.s.creds[id]
	if !ok {
		return nil, common.ErrorNotFound
	}
	out := *c
	return &out, nil
}

func (f fakeCreds) Delete(ctx context.Context, id string) error {
	f.s.mu.Lock()
	defer f.s.mu.Unlock()
	f.s.deletes = append(f.s.deletes, id)
	if f.s.deleteErr != nil {
		return f.s.deleteErr
	}
	if _, ok := f.s.creds[id]; !ok {
		return common.ErrorNotFound
	}
	delete(f.s.creds, id)
	kept := f.s.tokens[:0]
	for _, t := range f.s.tokens {
		if t.CredentialID != id {
			kept = append(kept, t)
		}
	}
	f.s.tokens = kept
	return nil
}

type fakeTokens struct{ s *store }

func (f fakeTokens) Create(ctx context.Context, t *models.RefreshToken) (*models.RefreshToken, error) {
	f.s.mu.Lock()
	defer f.s.mu.Unlock()
	for _, ex := range f.s.tokens {
		if ex.Token == t.Token {
			return nil, common.ErrorAlreadyExists
		}
	}
	cp := *t
	cp.CreatedAt = f.s.clock()
	f.s.tokens = append(f.s.tokens, &cp)
	out := cp
	return &out, nil
}

func (f fakeTokens) Find(ctx context.Context, token string) (*models.RefreshToken, error) {
	f.s.mu.Lock()
	defer f.s.mu.Unlock()
	if f.s.findErr != nil {
		return nil, f.s.findErr
	}
	for _, t := range f.s.tokens {
		if t.Token == token {
			out := *t
			return &out, nil
		}
	}
	return nil, common.ErrorNotFound
}

func (f fakeTokens) FindLatestByCredential(ctx context.Context, credentialID string) (*models.RefreshToken, error) {
	f.s.mu.Lock()
	defer f.s.mu.Unlock()
	var latest *models.RefreshToken
	for _, t := range f.s.tokens {
		if t.CredentialID == credentialID && (latest == nil || !t.CreatedAt.Before(latest.CreatedAt)) {
			latest = t
		}
	}
	if latest == nil {
		return nil, common.ErrorNotFound
	}
	out := *latest
	return &out, nil
}

func (f fakeTokens) Update(ctx context.Context, id, token string, expiresAt time.Time) error {
	f.s.mu.Lock()
	defer f.s.mu.Unlock()
	for _, t := range f.s.tokens {
		if t.ID == id {
			t.Token, t.ExpiresAt = token, expiresAt
			return nil
		}
	}
	return common.ErrorNotFound
}

func (f fakeTokens) Delete(ctx context.Context, id string) error {
	f.s.mu.Lock()
	defer f.s.mu.Unlock()
	for i, t := range f.s.tokens {
		if t.ID == id {
			f.s.tokens = append(f.s.tokens[:i], f.s.tokens[i+1:]...)
			return nil
		}
	}
	return common.ErrorNotFound
}

func (f fakeTokens) DeleteByToken(ctx context.Context, token string) (int64, error) {
	f.s.mu.Lock()
	defer f.s.mu.Unlock()
	var n int64
	kept := f.s.tokens[:0]
	for _, t := range f.s.tokens {
		if t.Token == token {
			n++
			continue
		}
		kept = append(kept, t)
	}
	f.s.tokens = kept
	return n, nil
}

type fakeRepoManager struct {
	s *store
	// tokensOverride replaces the refresh token repository when set.
	tokensOverride refreshtokens.Repository
}

func (m *fakeRepoManager) RunMigrations(context.Context, *sql.DB) error { return nil }
func (m *fakeRepoManager) Credentials(db dbx.DBTX) credentials.Repository {
	return fakeCreds{s: m.s}
}
func (m *fakeRepoManager) RefreshTokens(db dbx.DBTX) refreshtokens.Repository {
	if m.tokensOverride != nil {
		return m.tokensOverride
	}
	return fakeTokens{s: m.s}
}

type fakeProfiles struct {
	mu    sync.Mutex
	err   error
	calls []profiles.Profile
	// onCall runs before returning, e.g. to cancel the caller's context.
	onCall func()
}

func (f *fakeProfiles) CreateProfile(ctx context.Context, p profiles.Profile) error {
	f.mu.Lock()
	f.calls = append(f.calls, p)
	f.mu.Unlock()
	if f.onCall != nil {
		f.onCall()
	}
	return f.err
}

func (f fakeTokens) DeleteByCredential(ctx context.Context, credentialID string) (int64, error) {
	f.s.mu.Lock()
	defer f.s.mu.Unlock()
	var n int64
	kept := f.s.tokens[:0]
	for _, t := range f.s.tokens {
		if t.CredentialID == credentialID {
			n++
			continue
		}
		kept = append(kept, t)
	}
	f.s.tokens = kept
	return n, nil
}

// raceLosingTokens finds the record but loses the delete, as a concurrent
// redemption would.
type raceLosingTokens struct {
	fakeTokens
}

func (r raceLosingTokens) Delete(ctx context.Context, id string) error {
	return common.ErrorNotFound
}

type clock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *clock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *clock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}
