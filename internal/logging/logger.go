// Package logging defines the context-aware structured logger used across
// the auth service. The only implementation wraps log/slog.
package logging

import "context"

// Logger is a context-aware, structured logger. Args are key–value pairs:
//
//	log.Info(ctx, "credential created", "credential_id", id)
type Logger interface {
	Debug(ctx context.Context, msg string, args ...any)
	Info(ctx context.Context, msg string, args ...any)
	Warn(ctx context.Context, msg string, args ...any)
	Error(ctx context.Context, msg string, args ...any)

	// With returns a child logger that always includes the given pairs.
	With(args ...any) Logger
}
