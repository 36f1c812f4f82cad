package telemetry

import (
	"time"

	"go.uber.org/zap"
)

// Logger exposes the logging capabilities required by service components.
type Logger interface {
	Printf(format string, args ...any)
}

// LoggerFunc adapts functions into the Logger interface.
type LoggerFunc func(format string, args ...any)

// Printf implements Logger for LoggerFunc.
func (f LoggerFunc) Printf(format string, args ...any) {
	if f == nil {
		return
	}
	f(format, args...)
}

// WrapLogger adapts a zap logger to the Logger interface. Messages are logged
// at info level.
func WrapLogger(logger *zap.Logger) Logger {
	if logger == nil {
		return &loggerAdapter{}
	}
	return &loggerAdapter{logger: logger.Sugar()}
}

type loggerAdapter struct {
	logger *zap.SugaredLogger
}

func (l *loggerAdapter) Printf(format string, args ...any) {
	if l == nil || l.logger == nil {
		return
	}
	l.logger.Infof(format, args...)
}

// Metrics records planner and service outcomes.
type Metrics interface {
	// RecordQuery is called once per planning query that passed validation.
	RecordQuery(status string, expansions int, duration time.Duration)
	// RecordRejected counts queries refused before planning, by reason.
	RecordRejected(reason string)
}

// NopMetrics discards everything.
type NopMetrics struct{}

func (NopMetrics) RecordQuery(string, int, time.Duration) {}

func (NopMetrics) RecordRejected(string) {}
