package inkwell

import (
	"context"
	"log/slog"
)

// slogAdapter bridges a caller-supplied Logger into the slog.Handler the
// internals log through. Groups flatten into dotted key prefixes.
type slogAdapter struct {
	logger Logger
	attrs  []slog.Attr
	group  string
}

// Enabled implements slog.Handler.
func (a slogAdapter) Enabled(context.Context, slog.Level) bool {
	return true
}

// Handle implements slog.Handler.
func (a slogAdapter) Handle(_ context.Context, r slog.Record) error {
	args := make([]any, 0, (len(a.attrs)+r.NumAttrs())*2)
	for _, attr := range a.attrs {
		// Stored attrs were prefixed when added; only record attrs take
		// the current group prefix.
		args = append(args, attr.Key, attr.Value.Any())
	}
	r.Attrs(func(attr slog.Attr) bool {
		args = append(args, a.key(attr.Key), attr.Value.Any())
		return true
	})

	switch {
	case r.Level >= slog.LevelError:
		a.logger.Error(r.Message, args...)
	case r.Level >= slog.LevelWarn:
		a.logger.Warn(r.Message, args...)
	case r.Level >= slog.LevelInfo:
		a.logger.Info(r.Message, args...)
	default:
		a.logger.Debug(r.Message, args...)
	}
	return nil
}

// WithAttrs implements slog.Handler.
func (a slogAdapter) WithAttrs(attrs []slog.Attr) slog.Handler {
	merged := make([]slog.Attr, len(a.attrs), len(a.attrs)+len(attrs))
	copy(merged, a.attrs)
	for _, attr := range attrs {
		merged = append(merged, slog.Attr{Key: a.key(attr.Key), Value: attr.Value})
	}
	return slogAdapter{logger: a.logger, attrs: merged, group: a.group}
}

// WithGroup implements slog.Handler.
func (a slogAdapter) WithGroup(name string) slog.Handler {
	if a.group != "" {
		name = a.group + "." + name
	}
	return slogAdapter{logger: a.logger, attrs: a.attrs, group: name}
}

func (a slogAdapter) key(k string) string {
	if a.group == "" {
		return k
	}
	return a.group + "." + k
}
