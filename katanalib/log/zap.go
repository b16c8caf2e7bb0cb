package log

import (
	"context"
	"log/slog"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// zapHandler adapts a zap.Logger to slog.Handler so production deployments
// (cmd/katana) can route every subsystem's structured logs through zap's
// JSON encoder and sampling, while package code keeps calling the plain
// slog-shaped Logger.
type zapHandler struct {
	z     *zap.Logger
	attrs []zap.Field
}

// NewZapHandler builds a production JSON handler backed by zap, used by
// cmd/katana's non-dev-mode startup path.
func NewZapHandler() (slog.Handler, error) {
	z, err := zap.NewProduction()
	if err != nil {
		return nil, err
	}
	return &zapHandler{z: z}, nil
}

func (h *zapHandler) Enabled(_ context.Context, level slog.Level) bool {
	return h.z.Core().Enabled(toZapLevel(level))
}

func (h *zapHandler) Handle(_ context.Context, r slog.Record) error {
	fields := make([]zap.Field, 0, r.NumAttrs()+len(h.attrs))
	fields = append(fields, h.attrs...)
	r.Attrs(func(a slog.Attr) bool {
		fields = append(fields, zap.Any(a.Key, a.Value.Any()))
		return true
	})
	ce := h.z.Check(toZapLevel(r.Level), r.Message)
	if ce == nil {
		return nil
	}
	ce.Write(fields...)
	return nil
}

func (h *zapHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	fields := make([]zap.Field, 0, len(attrs))
	for _, a := range attrs {
		fields = append(fields, zap.Any(a.Key, a.Value.Any()))
	}
	return &zapHandler{z: h.z, attrs: append(append([]zap.Field{}, h.attrs...), fields...)}
}

func (h *zapHandler) WithGroup(name string) slog.Handler {
	return &zapHandler{z: h.z.Named(name), attrs: h.attrs}
}

func toZapLevel(l slog.Level) zapcore.Level {
	switch {
	case l >= slog.LevelError:
		return zapcore.ErrorLevel
	case l >= slog.LevelWarn:
		return zapcore.WarnLevel
	case l >= slog.LevelInfo:
		return zapcore.InfoLevel
	default:
		return zapcore.DebugLevel
	}
}
