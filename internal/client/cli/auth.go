package cli

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/dmitrijs2005/noteauth/internal/client/client"
	"github.com/dmitrijs2005/noteauth/internal/common"
)

// getSimpleText, getPassword and confirm point to the interactive input
// helpers and can be swapped in tests.
var (
	getSimpleText = GetSimpleText
	getPassword   = GetPassword
	confirm       = Confirm
)

func (a *App) credentials() (string, string, error) {
	email, err := getSimpleText(a.reader, "Enter email", a.out)
	if err != nil {
		return "", "", err
	}
	pw, err := getPassword(a.out)
	if err != nil {
		return "", "", err
	}
	defer common.WipeByteArray(pw)
	return email, string(pw), nil
}

func (a *App) Register(ctx context.Context) error {
	email, password, err := a.credentials()
	if err != nil {
		return err
	}

	rctx, cancel := a.withTimeout(ctx)
	defer cancel()

	if _, err := a.api.Register(rctx, email, password); err != nil {
		return err
	}
	a.email = email
	fmt.Fprintln(a.out, "Registered and signed in as", email)
	return a.persist(ctx)
}

func (a *App) Login(ctx context.Context) error {
	email, password, err := a.credentials()
	if err != nil {
		return err
	}

	rctx, cancel := a.withTimeout(ctx)
	defer cancel()

	if _, err := a.api.Login(rctx, email, password); err != nil {
		return err
	}
	a.email = email
	fmt.Fprintln(a.out, "Signed in as", email)
	return a.persist(ctx)
}

func (a *App) Refresh(ctx context.Context) error {
	rctx, cancel := a.withTimeout(ctx)
	defer cancel()

	_, err := a.api.Refresh(rctx)
	if errors.Is(err, client.ErrUnauthorized) {
		// the refresh token is gone server-side, nothing left to keep
		a.api.SetTokens(client.Tokens{})
		_ = a.persist(ctx)
		return err
	}
	if err != nil {
		return err
	}
	fmt.Fprintln(a.out, "Tokens refreshed")
	return a.persist(ctx)
}

// Logout always forgets the local session, even when the server could not
// be told.
func (a *App) Logout(ctx context.Context) error {
	rctx, cancel := a.withTimeout(ctx)
	defer cancel()

	err := a.api.Logout(rctx)
	if perr := a.persist(ctx); perr != nil {
		return perr
	}
	if err != nil {
		return err
	}
	fmt.Fprintln(a.out, "Signed out")
	return nil
}

func (a *App) Validate(ctx context.Context) error {
	rctx, cancel := a.withTimeout(ctx)
	defer cancel()

	v, err := a.api.Validate(rctx)
	if err != nil {
		return err
	}
	fmt.Fprintf(a.out, "Token is valid\n  user:    %s\n  email:   %s\n  expires: %s\n",
		v.UserID, v.Email, time.Unix(v.ExpiresAt, 0).Format(time.RFC3339))
	return a.persist(ctx)
}

func (a *App) Profile(ctx context.Context) error {
	rctx, cancel := a.withTimeout(ctx)
	defer cancel()

	p, err := a.api.Profile(rctx)
	if err != nil {
		return err
	}
	fmt.Fprintf(a.out, "  id:      %s\n  email:   %s\n  created: %s\n  updated: %s\n",
		p.ID, p.Email, p.CreatedAt.Format(time.RFC3339), p.UpdatedAt.Format(time.RFC3339))
	return a.persist(ctx)
}

func (a *App) DeleteAccount(ctx context.Context) error {
	ok, err := confirm(a.reader, "Delete the account permanently?", a.out)
	if err != nil {
		return err
	}
	if !ok {
		fmt.Fprintln(a.out, "Cancelled")
		return nil
	}

	rctx, cancel := a.withTimeout(ctx)
	defer cancel()

	if err := a.api.DeleteAccount(rctx); err != nil {
		return err
	}
	fmt.Fprintln(a.out, "Account deleted")
	return a.persist(ctx)
}
