package cli

import (
	"bufio"
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"testing"
	"time"

	"github.com/dmitrijs2005/noteauth/internal/client/client"
	"github.com/dmitrijs2005/noteauth/internal/client/session"
	pb "github.com/dmitrijs2005/noteauth/internal/proto"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeAPI struct {
	tokens client.Tokens

	gotEmail, gotPassword string
	err                   error
	rotateOnCall          bool
	deleted               bool
	closed                bool
}

func (f *fakeAPI) Close() error { f.closed = true; return nil }

func (f *fakeAPI) Register(_ context.Context, email, password string) (client.Tokens, error) {
	f.gotEmail, f.gotPassword = email, password
	if f.err != nil {
		return client.Tokens{}, f.err
	}
	f.tokens = client.Tokens{AccessToken: "A1", RefreshToken: "R1"}
	return f.tokens, nil
}

func (f *fakeAPI) Login(ctx context.Context, email, password string) (client.Tokens, error) {
	return f.Register(ctx, email, password)
}

func (f *fakeAPI) Refresh(context.Context) (client.Tokens, error) {
	if f.err != nil {
		return client.Tokens{}, f.err
	}
	f.tokens = client.Tokens{AccessToken: "A2", RefreshToken: "R2"}
	return f.tokens, nil
}

func (f *fakeAPI) Logout(context.Context) error {
	f.tokens = client.Tokens{}
	return f.err
}

func (f *fakeAPI) rotate() {
	if f.rotateOnCall {
		f.tokens = client.Tokens{AccessToken: "A9", RefreshToken: "R9"}
	}
}

func (f *fakeAPI) Validate(context.Context) (*pb.ValidateTokenResponse, error) {
	if f.err != nil {
		return nil, f.err
	}
	f.rotate()
	return &pb.ValidateTokenResponse{UserID: "u1", Email: "a@x.com", ExpiresAt: 1735787945}, nil
}

func (f *fakeAPI) Profile(context.Context) (*pb.ProfileResponse, error) {
	if f.err != nil {
		return nil, f.err
	}
	f.rotate()
	ts := time.Date(2025, 1, 2, 3, 4, 5, 0, time.UTC)
	return &pb.ProfileResponse{ID: "u1", Email: "a@x.com", CreatedAt: ts, UpdatedAt: ts}, nil
}

func (f *fakeAPI) DeleteAccount(context.Context) error {
	if f.err != nil {
		return f.err
	}
	f.deleted = true
	f.tokens = client.Tokens{}
	return nil
}

func (f *fakeAPI) Tokens() client.Tokens     { return f.tokens }
func (f *fakeAPI) SetTokens(t client.Tokens) { f.tokens = t }

type memStore struct {
	saved   session.Session
	saves   int
	saveErr error
	closed  bool
}

func (m *memStore) Load(context.Context) (session.Session, error) { return m.saved, nil }
func (m *memStore) Save(_ context.Context, s session.Session) error {
	m.saves++
	if m.saveErr != nil {
		return m.saveErr
	}
	m.saved = s
	return nil
}
func (m *memStore) Close() error { m.closed = true; return nil }

func stubInputs(t *testing.T, email, password string, yes bool) {
	t.Helper()
	origST, origGP, origC := getSimpleText, getPassword, confirm
	getSimpleText = func(*bufio.Reader, string, io.Writer) (string, error) { return email, nil }
	getPassword = func(io.Writer) ([]byte, error) { return []byte(password), nil }
	confirm = func(*bufio.Reader, string, io.Writer) (bool, error) { return yes, nil }
	t.Cleanup(func() {
		getSimpleText, getPassword, confirm = origST, origGP, origC
	})
}

func newTestApp(api *fakeAPI, store *memStore) (*App, *bytes.Buffer) {
	out := &bytes.Buffer{}
	return &App{api: api, store: store, out: out, timeout: time.Second}, out
}

func TestRestore(t *testing.T) {
	api := &fakeAPI{}
	store := &memStore{saved: session.Session{Email: "a@x.com", AccessToken: "A1", RefreshToken: "R1"}}
	a, _ := newTestApp(api, store)

	require.NoError(t, a.restore(context.Background()))
	assert.Equal(t, client.Tokens{AccessToken: "A1", RefreshToken: "R1"}, api.tokens)
	assert.True(t, a.isLoggedIn())
	assert.Equal(t, "(a@x.com)", a.status())
}

func TestRegister_SavesSession(t *testing.T) {
	stubInputs(t, "a@x.com", "secret1", false)
	api, store := &fakeAPI{}, &memStore{}
	a, out := newTestApp(api, store)

	require.NoError(t, a.Register(context.Background()))
	assert.Equal(t, "a@x.com", api.gotEmail)
	assert.Equal(t, "secret1", api.gotPassword)
	assert.Equal(t, session.Session{Email: "a@x.com", AccessToken: "A1", RefreshToken: "R1"}, store.saved)
	assert.Contains(t, out.String(), "Registered and signed in as a@x.com")
}

func TestLogin_FailureSavesNothing(t *testing.T) {
	stubInputs(t, "a@x.com", "wrong", false)
	api := &fakeAPI{err: fmt.Errorf("%w: Invalid email or password", client.ErrUnauthorized)}
	store := &memStore{}
	a, _ := newTestApp(api, store)

	err := a.Login(context.Background())
	require.ErrorIs(t, err, client.ErrUnauthorized)
	assert.Zero(t, store.saves)
	assert.Equal(t, "(signed out)", a.status())
}

func TestRefresh(t *testing.T) {
	api := &fakeAPI{tokens: client.Tokens{AccessToken: "A1", RefreshToken: "R1"}}
	store := &memStore{}
	a, _ := newTestApp(api, store)
	a.email = "a@x.com"

	require.NoError(t, a.Refresh(context.Background()))
	assert.Equal(t, "R2", store.saved.RefreshToken)
	assert.Equal(t, "a@x.com", store.saved.Email)
}

func TestRefresh_RejectedDropsSession(t *testing.T) {
	api := &fakeAPI{
		tokens: client.Tokens{AccessToken: "A1", RefreshToken: "R1"},
		err:    fmt.Errorf("%w: Invalid or expired refresh token", client.ErrUnauthorized),
	}
	store := &memStore{saved: session.Session{Email: "a@x.com", AccessToken: "A1", RefreshToken: "R1"}}
	a, _ := newTestApp(api, store)
	a.email = "a@x.com"

	require.ErrorIs(t, a.Refresh(context.Background()), client.ErrUnauthorized)
	assert.True(t, store.saved.Empty())
	assert.Empty(t, store.saved.Email)
	assert.False(t, a.isLoggedIn())
}

func TestRefresh_UnavailableKeepsSession(t *testing.T) {
	api := &fakeAPI{tokens: client.Tokens{AccessToken: "A1", RefreshToken: "R1"}, err: client.ErrUnavailable}
	store := &memStore{}
	a, _ := newTestApp(api, store)

	require.ErrorIs(t, a.Refresh(context.Background()), client.ErrUnavailable)
	assert.Zero(t, store.saves)
	assert.True(t, a.isLoggedIn())
}

func TestLogout_ClearsEvenWhenServerFails(t *testing.T) {
	api := &fakeAPI{tokens: client.Tokens{AccessToken: "A1", RefreshToken: "R1"}, err: client.ErrUnavailable}
	store := &memStore{saved: session.Session{Email: "a@x.com", AccessToken: "A1", RefreshToken: "R1"}}
	a, _ := newTestApp(api, store)
	a.email = "a@x.com"

	require.ErrorIs(t, a.Logout(context.Background()), client.ErrUnavailable)
	assert.True(t, store.saved.Empty())
	assert.False(t, a.isLoggedIn())
}

func TestLogout_SaveErrorWins(t *testing.T) {
	boom := errors.New("disk full")
	api := &fakeAPI{tokens: client.Tokens{AccessToken: "A1", RefreshToken: "R1"}}
	a, _ := newTestApp(api, &memStore{saveErr: boom})

	require.ErrorIs(t, a.Logout(context.Background()), boom)
}

func TestProtectedCommands_PersistRotatedTokens(t *testing.T) {
	api := &fakeAPI{tokens: client.Tokens{AccessToken: "A1", RefreshToken: "R1"}, rotateOnCall: true}
	store := &memStore{}
	a, out := newTestApp(api, store)
	a.email = "a@x.com"

	require.NoError(t, a.Profile(context.Background()))
	assert.Equal(t, "R9", store.saved.RefreshToken)
	assert.Contains(t, out.String(), "2025-01-02T03:04:05Z")

	require.NoError(t, a.Validate(context.Background()))
	assert.Contains(t, out.String(), "Token is valid")
	assert.Contains(t, out.String(), "u1")
}

func TestDeleteAccount(t *testing.T) {
	t.Run("cancelled", func(t *testing.T) {
		stubInputs(t, "", "", false)
		api := &fakeAPI{tokens: client.Tokens{AccessToken: "A1", RefreshToken: "R1"}}
		a, out := newTestApp(api, &memStore{})

		require.NoError(t, a.DeleteAccount(context.Background()))
		assert.False(t, api.deleted)
		assert.Contains(t, out.String(), "Cancelled")
	})

	t.Run("confirmed", func(t *testing.T) {
		stubInputs(t, "", "", true)
		api := &fakeAPI{tokens: client.Tokens{AccessToken: "A1", RefreshToken: "R1"}}
		store := &memStore{}
		a, out := newTestApp(api, store)
		a.email = "a@x.com"

		require.NoError(t, a.DeleteAccount(context.Background()))
		assert.True(t, api.deleted)
		assert.True(t, store.saved.Empty())
		assert.Contains(t, out.String(), "Account deleted")
	})
}

func TestClose(t *testing.T) {
	api, store := &fakeAPI{}, &memStore{}
	a, _ := newTestApp(api, store)

	require.NoError(t, a.Close())
	assert.True(t, api.closed)
	assert.True(t, store.closed)
}
