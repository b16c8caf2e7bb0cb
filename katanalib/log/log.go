// Package log wraps log/slog to match erigon-lib/log/v3's call shape
// (log.New(ctx), .Info/Warn/Error/Debug with alternating key-value pairs) so
// call sites across the storage engine, trie, pool, producer and sync
// stages read the same as the teacher's.
package log

import (
	"context"
	"log/slog"
	"os"
)

// Logger is the structured logger handed to every subsystem.
type Logger struct {
	base *slog.Logger
	ctx  context.Context
}

var root = slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelInfo}))

// New returns a Logger bound to ctx, mirroring erigon-lib/log/v3.New(ctx).
func New(ctx context.Context) *Logger {
	return &Logger{base: root, ctx: ctx}
}

// With returns a child logger with the given key-value pairs attached to
// every subsequent call, the way erigon's "component" loggers are derived.
func (l *Logger) With(kv ...any) *Logger {
	return &Logger{base: l.base.With(kv...), ctx: l.ctx}
}

func (l *Logger) Debug(msg string, kv ...any) { l.base.DebugContext(l.ctx, msg, kv...) }
func (l *Logger) Info(msg string, kv ...any)   { l.base.InfoContext(l.ctx, msg, kv...) }
func (l *Logger) Warn(msg string, kv ...any)   { l.base.WarnContext(l.ctx, msg, kv...) }
func (l *Logger) Error(msg string, kv ...any)  { l.base.ErrorContext(l.ctx, msg, kv...) }

// SetHandler swaps the process-wide handler, used by cmd/katana to route
// logs to zap-formatted JSON in production mode.
func SetHandler(h slog.Handler) {
	root = slog.New(h)
}
