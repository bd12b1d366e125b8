package notify

import (
	"context"
	"fmt"
	"io"
	"log/slog"
)

// LogSender records every toast in the log, so nothing the user was told
// is lost once the toast disappears.
type LogSender struct {
	Logger *slog.Logger
}

func (s LogSender) Name() string { return "log" }

func (s LogSender) Send(ctx context.Context, toast *Toast) error {
	logger := s.Logger
	if logger == nil {
		logger = slog.Default()
	}

	level := slog.LevelInfo
	if toast.Severity == SeverityError {
		level = slog.LevelWarn
	}

	logger.Log(ctx, level, "notification",
		slog.String("id", toast.ID),
		slog.String("severity", string(toast.Severity)),
		slog.String("message", toast.Message),
	)

	return nil
}

// WriterSender prints toasts as lines, for non-interactive commands.
type WriterSender struct {
	W io.Writer
}

func (s WriterSender) Name() string { return "writer" }

func (s WriterSender) Send(_ context.Context, toast *Toast) error {
	_, err := fmt.Fprintf(s.W, "%s %s\n", Symbol(toast.Severity), toast.Message)
	return err
}

// Symbol is the single-character marker for a severity.
func Symbol(sev Severity) string {
	switch sev {
	case SeveritySuccess:
		return "✓"
	case SeverityError:
		return "✗"
	default:
		return "•"
	}
}
