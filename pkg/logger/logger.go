package logger

import (
	"context"
	"log/slog"
	"os"
)

// New returns the process-wide JSON logger. Local and dev environments log
// at debug, everything else at info. Every line carries the service name so
// multiplexed log streams stay attributable.
func New(appEnv string) *slog.Logger {
	level := slog.LevelInfo
	if appEnv == "local" || appEnv == "dev" {
		level = slog.LevelDebug
	}

	h := slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: level})
	return slog.New(h).With("service", "receptionist")
}

type ctxKey struct{}

// With stores a logger in context so lower layers log with the request's
// and call's attributes already attached.
func With(ctx context.Context, l *slog.Logger) context.Context {
	return context.WithValue(ctx, ctxKey{}, l)
}

// From gets a logger from context, falling back to slog.Default().
func From(ctx context.Context) *slog.Logger {
	if v := ctx.Value(ctxKey{}); v != nil {
		if l, ok := v.(*slog.Logger); ok && l != nil {
			return l
		}
	}
	return slog.Default()
}
