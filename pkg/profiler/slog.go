package profiler

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/sandrolain/goxmatch/pkg/types"
)

// Slog writes events as structured records at a fixed level.
type Slog struct {
	logger *slog.Logger
	level  slog.Level
	timers timers
}

// NewSlog creates a profiler writing to logger at debug level.
// A nil logger selects slog.Default().
func NewSlog(logger *slog.Logger) *Slog {
	if logger == nil {
		logger = slog.Default()
	}
	return &Slog{logger: logger, level: slog.LevelDebug}
}

// WithLevel sets the level records are written at.
func (s *Slog) WithLevel(level slog.Level) *Slog {
	s.level = level
	return s
}

// Enabled reports whether the logger accepts records at the profiler level.
func (s *Slog) Enabled() bool {
	return s.logger.Enabled(context.Background(), s.level)
}

// Start implements Profiler.
func (s *Slog) Start(expr fmt.Stringer) {
	s.timers.start(expr)
	s.logger.Log(context.Background(), s.level, "eval start", slog.String("expr", expr.String()))
}

// Message implements Profiler.
func (s *Slog) Message(expr fmt.Stringer, cat Category, title string, value any) {
	s.logger.Log(context.Background(), s.level, title,
		slog.String("expr", expr.String()),
		slog.String("category", cat.String()),
		slog.Any("value", value),
	)
}

// End implements Profiler.
func (s *Slog) End(expr fmt.Stringer, message string, result types.Sequence) {
	attrs := []any{
		slog.String("expr", expr.String()),
		slog.String("message", message),
	}
	if result != nil {
		attrs = append(attrs, slog.Int("items", result.Len()))
	}
	if d, ok := s.timers.stop(expr); ok {
		attrs = append(attrs, slog.Duration("elapsed", d))
	}
	s.logger.Log(context.Background(), s.level, "eval end", attrs...)
}
