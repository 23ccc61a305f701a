package inkwell

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"testing"
)

type loggedLine struct {
	level string
	msg   string
	args  []any
}

// recordingLogger is a Logger capturing every line for assertions.
type recordingLogger struct {
	mu    sync.Mutex
	lines []loggedLine
}

func (l *recordingLogger) record(level, msg string, args []any) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.lines = append(l.lines, loggedLine{level: level, msg: msg, args: args})
}

func (l *recordingLogger) Debug(msg string, args ...any) { l.record("debug", msg, args) }
func (l *recordingLogger) Info(msg string, args ...any)  { l.record("info", msg, args) }
func (l *recordingLogger) Warn(msg string, args ...any)  { l.record("warn", msg, args) }
func (l *recordingLogger) Error(msg string, args ...any) { l.record("error", msg, args) }

func (l *recordingLogger) snapshot() []loggedLine {
	l.mu.Lock()
	defer l.mu.Unlock()
	return append([]loggedLine(nil), l.lines...)
}

func TestSlogAdapterLevels(t *testing.T) {
	rec := &recordingLogger{}
	logger := slog.New(slogAdapter{logger: rec})

	logger.Debug("d")
	logger.Info("i")
	logger.Warn("w")
	logger.Error("e")

	lines := rec.snapshot()
	if len(lines) != 4 {
		t.Fatalf("captured %d lines, want 4", len(lines))
	}
	want := []string{"debug", "info", "warn", "error"}
	for i, lvl := range want {
		if lines[i].level != lvl {
			t.Errorf("line %d level = %q, want %q", i, lines[i].level, lvl)
		}
	}
}

func TestSlogAdapterAttrsAndGroups(t *testing.T) {
	rec := &recordingLogger{}
	logger := slog.New(slogAdapter{logger: rec}).
		With("component", "pipeline").
		WithGroup("req")

	logger.Info("processed", "id", 7)

	lines := rec.snapshot()
	if len(lines) != 1 {
		t.Fatalf("captured %d lines, want 1", len(lines))
	}
	args := lines[0].args
	if len(args) != 4 {
		t.Fatalf("args = %v, want 4 elements", args)
	}
	if args[0] != "component" || args[1] != "pipeline" {
		t.Errorf("pre-group attr = %v=%v, want component=pipeline", args[0], args[1])
	}
	if args[2] != "req.id" {
		t.Errorf("grouped key = %v, want req.id", args[2])
	}
}

func TestWithLoggerReceivesInternalLogs(t *testing.T) {
	rec := &recordingLogger{}

	failing := LLMClientFunc(func(ctx context.Context, req *Request) ([]byte, error) {
		return nil, MarkPermanent(errors.New("bad input"))
	})

	proc, err := NewFromConfig(TestConfig(), failing, WithLogger(rec))
	if err != nil {
		t.Fatalf("NewFromConfig: %v", err)
	}
	defer proc.Close()

	// Enough failures to open the breaker, which logs a state change
	// through the injected logger.
	ctx := context.Background()
	for i := 0; i < 10; i++ {
		proc.Process(ctx, NewRequest(OpSummarize, "doc"))
	}

	if len(rec.snapshot()) == 0 {
		t.Error("injected logger captured nothing")
	}
}
