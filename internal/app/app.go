package app

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"os"
	"strconv"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	servernet "beta-than-ever/planner/internal/net"
	"beta-than-ever/planner/internal/observability"
	"beta-than-ever/planner/internal/planner"
	"beta-than-ever/planner/internal/telemetry"
	"beta-than-ever/planner/logging"
	"beta-than-ever/planner/logging/lifecycle"
	loggingSinks "beta-than-ever/planner/logging/sinks"
)

const (
	DefaultAddr     = ":8080"
	serviceName     = "betaplan"
	shutdownTimeout = 5 * time.Second

	EnvAddr          = "BETAPLAN_ADDR"
	EnvMaxExpansions = "BETAPLAN_MAX_EXPANSIONS"
	EnvPlanTimeout   = "BETAPLAN_PLAN_TIMEOUT"
	EnvLogJSON       = "BETAPLAN_LOG_JSON"
)

type Config struct {
	Addr string
	// MaxExpansions caps every request's expansion budget; zero leaves
	// request budgets as sent.
	MaxExpansions int
	PlanTimeout   time.Duration
	// LogJSONPath enables the JSON event sink, appending to the named file.
	LogJSONPath   string
	Logging       logging.Config
	Observability observability.Config
	Logger        *zap.Logger
	// Ready is called with the bound address once the listener is open.
	Ready func(addr string)
}

// DefaultConfig returns the configuration used when nothing is overridden.
func DefaultConfig() Config {
	return Config{
		Addr:          DefaultAddr,
		Logging:       logging.DefaultConfig(),
		Observability: observability.Default(),
	}
}

// ConfigFromEnv overlays environment overrides on base. lookup follows
// os.LookupEnv. Invalid values are collected and leave the field unchanged.
func ConfigFromEnv(base Config, lookup func(string) (string, bool)) (Config, []error) {
	var errs []error
	if raw, ok := lookup(EnvAddr); ok && raw != "" {
		base.Addr = raw
	}
	if raw, ok := lookup(EnvMaxExpansions); ok && raw != "" {
		if value, err := strconv.Atoi(raw); err == nil && value >= 0 {
			base.MaxExpansions = value
		} else {
			errs = append(errs, fmt.Errorf("invalid %s=%q", EnvMaxExpansions, raw))
		}
	}
	if raw, ok := lookup(EnvPlanTimeout); ok && raw != "" {
		if value, err := time.ParseDuration(raw); err == nil && value > 0 {
			base.PlanTimeout = value
		} else {
			errs = append(errs, fmt.Errorf("invalid %s=%q", EnvPlanTimeout, raw))
		}
	}
	if raw, ok := lookup(EnvLogJSON); ok && raw != "" {
		base.LogJSONPath = raw
	}
	obs, obsErrs := observability.FromEnv(base.Observability, lookup)
	base.Observability = obs
	errs = append(errs, obsErrs...)
	return base, errs
}

// Run serves the planning API until ctx is cancelled, then shuts down
// gracefully. It returns nil after a clean shutdown.
func Run(ctx context.Context, cfg Config) error {
	logger := cfg.Logger
	if logger == nil {
		var err error
		logger, err = loggingSinks.NewConsoleLogger(cfg.Logging.Console)
		if err != nil {
			return fmt.Errorf("failed to construct logger: %w", err)
		}
		defer logger.Sync()
	}
	telemetryLogger := telemetry.WrapLogger(logger)
	if cfg.Addr == "" {
		cfg.Addr = DefaultAddr
	}

	logConfig := cfg.Logging
	if len(logConfig.EnabledSinks) == 0 {
		logConfig.EnabledSinks = logging.DefaultConfig().EnabledSinks
	}
	if cfg.LogJSONPath != "" && !logConfig.HasSink(logging.SinkJSON) {
		logConfig.EnabledSinks = append(logConfig.EnabledSinks, logging.SinkJSON)
		logConfig.JSON.FilePath = cfg.LogJSONPath
	}
	sinks, closeFiles, err := buildSinks(logConfig, logger)
	if err != nil {
		return err
	}
	defer closeFiles()

	router, err := logging.NewRouter(logConfig, logging.SystemClock{}, logger, sinks)
	if err != nil {
		return fmt.Errorf("failed to construct logging router: %w", err)
	}
	defer func() {
		closeCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if cerr := router.Close(closeCtx); cerr != nil {
			telemetryLogger.Printf("failed to close logging router: %v", cerr)
		}
	}()

	metrics := telemetry.NewPrometheusMetrics()
	p := planner.New(planner.Deps{Publisher: router, Metrics: metrics})

	handler := servernet.NewHTTPHandler(servernet.HTTPHandlerConfig{
		Planner:       p,
		Logger:        telemetryLogger,
		Publisher:     router,
		Metrics:       metrics.Handler(),
		Recorder:      metrics,
		Observability: cfg.Observability,
		MaxExpansions: cfg.MaxExpansions,
		PlanTimeout:   cfg.PlanTimeout,
	})

	listener, err := net.Listen("tcp", cfg.Addr)
	if err != nil {
		return fmt.Errorf("failed to listen on %s: %w", cfg.Addr, err)
	}
	srv := &http.Server{
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
		BaseContext: func(net.Listener) context.Context {
			return ctx
		},
	}

	addr := listener.Addr().String()
	telemetryLogger.Printf("server listening on %s", addr)
	lifecycle.ServiceStarted(ctx, router, serviceName, lifecycle.ServiceStartedPayload{
		Addr:          addr,
		MaxExpansions: cfg.MaxExpansions,
		Metrics:       cfg.Observability.EnableMetrics,
		Pprof:         cfg.Observability.EnablePprof,
	})
	if cfg.Ready != nil {
		cfg.Ready(addr)
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		if err := srv.Serve(listener); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("server failed: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})
	err = g.Wait()

	reason := "context cancelled"
	if err != nil {
		reason = err.Error()
	}
	lifecycle.ServiceStopped(context.Background(), router, serviceName, lifecycle.ServiceStoppedPayload{Reason: reason})
	return err
}

// buildSinks constructs the enabled sinks. The returned func closes any files
// opened for them and must run after the router is closed.
func buildSinks(cfg logging.Config, logger *zap.Logger) (map[string]logging.Sink, func(), error) {
	sinks := make(map[string]logging.Sink)
	var files []*os.File
	closeFiles := func() {
		for _, f := range files {
			f.Close()
		}
	}

	if cfg.HasSink(logging.SinkConsole) {
		sinks[logging.SinkConsole] = loggingSinks.NewConsole(logger)
	}
	if cfg.HasSink(logging.SinkJSON) {
		w := os.Stdout
		if cfg.JSON.FilePath != "" {
			f, err := os.OpenFile(cfg.JSON.FilePath, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
			if err != nil {
				return nil, closeFiles, fmt.Errorf("failed to open event log %s: %w", cfg.JSON.FilePath, err)
			}
			files = append(files, f)
			w = f
		}
		sinks[logging.SinkJSON] = loggingSinks.NewJSON(w, cfg.JSON.FlushInterval)
	}
	if cfg.HasSink(logging.SinkMemory) {
		sinks[logging.SinkMemory] = loggingSinks.NewMemory()
	}
	return sinks, closeFiles, nil
}
