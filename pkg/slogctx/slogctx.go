// Package slogctx carries a *slog.Logger in a context.Context so decoders
// and batch workers log through whatever the caller installed.
package slogctx

import (
	"context"
	"log/slog"
)

type _loggerKey struct{}

// ContextWithLogger returns ctx carrying logger.
func ContextWithLogger(ctx context.Context, logger *slog.Logger) context.Context {
	return context.WithValue(ctx, _loggerKey{}, logger)
}

// FromContext returns the logger in ctx, falling back to slog.Default().
func FromContext(ctx context.Context) *slog.Logger {
	if ctx == nil {
		return slog.Default()
	}
	if l, ok := ctx.Value(_loggerKey{}).(*slog.Logger); ok && l != nil {
		return l
	}
	return slog.Default()
}

// With returns ctx carrying its logger extended with args, e.g. the file a
// worker is processing.
func With(ctx context.Context, args ...any) context.Context {
	return ContextWithLogger(ctx, FromContext(ctx).With(args...))
}
