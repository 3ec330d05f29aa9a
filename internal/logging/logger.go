// Package logging defines the structured-logging interface the server
// components log through, keeping them independent of a concrete backend.
package logging

import "context"

// Logger is a context-aware structured logger. The variadic args are
// alternating key-value pairs:
//
//	log.Info(ctx, "login rejected", "username", name)
type Logger interface {
	Info(ctx context.Context, msg string, args ...any)
	Warn(ctx context.Context, msg string, args ...any)
	Error(ctx context.Context, msg string, args ...any)

	// With returns a child logger that stamps the given pairs on every record.
	With(args ...any) Logger
}
