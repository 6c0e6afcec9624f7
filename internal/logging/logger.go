// Package logging defines the structured, context-aware logger used across
// doccoon, and its log/slog implementation.
package logging

import "context"

// Logger takes a message followed by key/value pairs:
//
//	log.Info(ctx, "book shared", "book_id", bookID, "user_id", userID)
type Logger interface {
	Debug(ctx context.Context, msg string, args ...any)
	Info(ctx context.Context, msg string, args ...any)
	Warn(ctx context.Context, msg string, args ...any)
	Error(ctx context.Context, msg string, args ...any)

	// With returns a child logger that adds args to every record.
	With(args ...any) Logger
}
