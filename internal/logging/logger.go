// Package logging provides the structured logger passed to every shareme
// component, backed by log/slog.
package logging

import "context"

// Logger writes leveled, structured records. Trailing args are alternating
// keys and values:
//
//	logger.Info(ctx, "file uploaded", "id", id, "bytes", n)
//
// The context is forwarded to the handler so request-scoped attributes can
// be picked up.
type Logger interface {
	Debug(ctx context.Context, msg string, args ...any)
	Info(ctx context.Context, msg string, args ...any)
	Warn(ctx context.Context, msg string, args ...any)
	Error(ctx context.Context, msg string, args ...any)

	// With returns a logger that adds args to every record, typically
	// "module" for the emitting component.
	With(args ...any) Logger
}
