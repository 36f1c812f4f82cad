package sinks

import (
	"context"
	"errors"
	"syscall"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"beta-than-ever/planner/logging"
)

// Console writes events through a zap logger.
type Console struct {
	logger *zap.Logger
}

// NewConsole wraps logger. A nil logger yields a sink that discards events.
func NewConsole(logger *zap.Logger) *Console {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Console{logger: logger.Named("events")}
}

// NewConsoleLogger builds the zap logger used for the console sink from cfg.
func NewConsoleLogger(cfg logging.ConsoleConfig) (*zap.Logger, error) {
	zcfg := zap.NewProductionConfig()
	if cfg.Development {
		zcfg = zap.NewDevelopmentConfig()
	}
	zcfg.Level = zap.NewAtomicLevelAt(zapcore.DebugLevel)
	zcfg.OutputPaths = []string{"stdout"}
	return zcfg.Build()
}

func (s *Console) Write(event logging.Event) error {
	fields := []zap.Field{
		zap.String("type", string(event.Type)),
		zap.Uint64("tick", event.Tick),
		zap.String("actor", formatEntity(event.Actor)),
	}
	if event.Category != "" {
		fields = append(fields, zap.String("category", event.Category))
	}
	if len(event.Targets) > 0 {
		targets := make([]string, 0, len(event.Targets))
		for _, target := range event.Targets {
			targets = append(targets, formatEntity(target))
		}
		fields = append(fields, zap.Strings("targets", targets))
	}
	if event.TraceID != "" {
		fields = append(fields, zap.String("trace_id", event.TraceID))
	}
	if event.Payload != nil {
		fields = append(fields, zap.Any("payload", event.Payload))
	}
	if len(event.Extra) > 0 {
		fields = append(fields, zap.Any("extra", event.Extra))
	}
	if ce := s.logger.Check(level(event.Severity), string(event.Type)); ce != nil {
		ce.Write(fields...)
	}
	return nil
}

// Close syncs the logger. Syncing a terminal returns EINVAL or ENOTTY on some
// platforms, which is not a failure.
func (s *Console) Close(context.Context) error {
	err := s.logger.Sync()
	if errors.Is(err, syscall.EINVAL) || errors.Is(err, syscall.ENOTTY) {
		return nil
	}
	return err
}

func level(sev logging.Severity) zapcore.Level {
	switch sev {
	case logging.SeverityDebug:
		return zapcore.DebugLevel
	case logging.SeverityWarn:
		return zapcore.WarnLevel
	case logging.SeverityError:
		return zapcore.ErrorLevel
	default:
		return zapcore.InfoLevel
	}
}

func formatEntity(ref logging.EntityRef) string {
	if ref.ID == "" {
		return string(ref.Kind)
	}
	if ref.Kind == "" {
		return ref.ID
	}
	return string(ref.Kind) + ":" + ref.ID
}
