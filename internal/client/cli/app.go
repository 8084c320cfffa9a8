package cli

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/dmitrijs2005/noteauth/internal/client/client"
	"github.com/dmitrijs2005/noteauth/internal/client/config"
	"github.com/dmitrijs2005/noteauth/internal/client/session"
)

type sessionStore interface {
	Load(ctx context.Context) (session.Session, error)
	Save(ctx context.Context, s session.Session) error
	Close() error
}

type App struct {
	config  *config.Config
	api     client.Client
	store   sessionStore
	email   string
	reader  *bufio.Reader
	out     io.Writer
	timeout time.Duration
}

// NewApp connects to the server and restores the previous session, if any.
func NewApp(ctx context.Context, c *config.Config) (*App, error) {
	store, err := session.Open(ctx, c.SessionFile)
	if err != nil {
		return nil, fmt.Errorf("open session: %w", err)
	}

	api, err := client.NewGRPCClient(c.ServerEndpointAddr)
	if err != nil {
		_ = store.Close()
		return nil, err
	}

	a := &App{
		config:  c,
		api:     api,
		store:   store,
		reader:  bufio.NewReader(os.Stdin),
		out:     os.Stdout,
		timeout: c.RequestTimeout,
	}
	if err := a.restore(ctx); err != nil {
		_ = a.Close()
		return nil, err
	}
	return a, nil
}

func (a *App) restore(ctx context.Context) error {
	s, err := a.store.Load(ctx)
	if err != nil {
		return fmt.Errorf("load session: %w", err)
	}
	a.email = s.Email
	a.api.SetTokens(client.Tokens{AccessToken: s.AccessToken, RefreshToken: s.RefreshToken})
	return nil
}

// persist writes the client's current tokens to the session store. The
// interceptor may have rotated them behind a protected call.
func (a *App) persist(ctx context.Context) error {
	t := a.api.Tokens()
	if t.Empty() {
		a.email = ""
	}
	return a.store.Save(ctx, session.Session{
		Email:        a.email,
		AccessToken:  t.AccessToken,
		RefreshToken: t.RefreshToken,
	})
}

func (a *App) isLoggedIn() bool {
	return !a.api.Tokens().Empty()
}

func (a *App) status() string {
	if !a.isLoggedIn() {
		return "(signed out)"
	}
	return fmt.Sprintf("(%s)", a.email)
}

func (a *App) withTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	if a.timeout <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, a.timeout)
}

func (a *App) Run(ctx context.Context) {
	defer a.Close()

	printlnFn("Auth CLI (type 'help' for commands)")
	runREPL(ctx, a, a.status, bufio.NewScanner(a.reader))
}

func (a *App) Close() error {
	_ = a.api.Close()
	return a.store.Close()
}
