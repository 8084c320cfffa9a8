// Package session keeps the CLI's signed-in state in a local SQLite file so
// that a refresh token outlives the process.
package session

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/dmitrijs2005/noteauth/internal/client/session/migrations"
	"github.com/dmitrijs2005/noteauth/internal/dbx"
	"github.com/pressly/goose/v3"

	_ "modernc.org/sqlite"
)

const (
	keyEmail        = "email"
	keyAccessToken  = "access_token"
	keyRefreshToken = "refresh_token"
)

type Session struct {
	Email        string
	AccessToken  string
	RefreshToken string
}

func (s Session) Empty() bool {
	return s.AccessToken == "" && s.RefreshToken == ""
}

type Store struct {
	db *sql.DB
}

// Open opens (creating if needed) the session file at path and migrates it.
func Open(ctx context.Context, path string) (*Store, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}
	if err := runMigrations(ctx, db); err != nil {
		_ = db.Close()
		return nil, err
	}
	return &Store{db: db}, nil
}

func runMigrations(ctx context.Context, db *sql.DB) error {
	goose.SetBaseFS(migrations.Migrations)
	if err := goose.SetDialect("sqlite3"); err != nil {
		return fmt.Errorf("goose dialect: %w", err)
	}
	return goose.UpContext(ctx, db, ".")
}

func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) Load(ctx context.Context) (Session, error) {
	repo := NewSQLiteRepository(s.db)

	var out Session
	var err error
	if out.Email, err = repo.Get(ctx, keyEmail); err != nil {
		return Session{}, err
	}
	if out.AccessToken, err = repo.Get(ctx, keyAccessToken); err != nil {
		return Session{}, err
	}
	if out.RefreshToken, err = repo.Get(ctx, keyRefreshToken); err != nil {
		return Session{}, err
	}
	return out, nil
}

// Save replaces the stored session atomically. An empty session clears it.
func (s *Store) Save(ctx context.Context, sess Session) error {
	return dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		repo := NewSQLiteRepository(tx)
		if err := repo.Clear(ctx); err != nil {
			return err
		}
		if sess.Empty() {
			return nil
		}
		for k, v := range map[string]string{
			keyEmail:        sess.Email,
			keyAccessToken:  sess.AccessToken,
			keyRefreshToken: sess.RefreshToken,
		} {
			if err := repo.Set(ctx, k, v); err != nil {
				return err
			}
		}
		return nil
	})
}

func (s *Store) Clear(ctx context.Context) error {
	return NewSQLiteRepository(s.db).Clear(ctx)
}
