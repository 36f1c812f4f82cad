package net

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	nethttp "net/http"
	"net/http/pprof"
	"strings"
	"time"

	"beta-than-ever/planner/internal/net/intake"
	"beta-than-ever/planner/internal/net/proto"
	"beta-than-ever/planner/internal/net/ws"
	"beta-than-ever/planner/internal/observability"
	"beta-than-ever/planner/internal/planner"
	"beta-than-ever/planner/internal/problem"
	"beta-than-ever/planner/internal/telemetry"
	"beta-than-ever/planner/logging"
	"beta-than-ever/planner/logging/network"
)

const DefaultMaxBodyBytes = 1 << 20

type HTTPHandlerConfig struct {
	Planner   ws.Planner
	Logger    telemetry.Logger
	Publisher logging.Publisher
	// Metrics serves /metrics when Observability.EnableMetrics is set.
	Metrics nethttp.Handler
	// Recorder counts requests refused before they reach the planner.
	Recorder      telemetry.Metrics
	Observability observability.Config
	MaxExpansions int
	PlanTimeout   time.Duration
	MaxBodyBytes  int64
	// WS configures /ws sessions. Its Logger, Publisher, Recorder,
	// MaxExpansions and PlanTimeout default to the values above.
	WS ws.HandlerConfig
}

func NewHTTPHandler(cfg HTTPHandlerConfig) nethttp.Handler {
	if cfg.Planner == nil {
		cfg.Planner = planner.New(planner.Deps{})
	}
	if cfg.Logger == nil {
		cfg.Logger = telemetry.LoggerFunc(nil)
	}
	if cfg.Publisher == nil {
		cfg.Publisher = logging.NopPublisher()
	}
	if cfg.Recorder == nil {
		cfg.Recorder = telemetry.NopMetrics{}
	}
	if cfg.PlanTimeout <= 0 {
		cfg.PlanTimeout = ws.DefaultPlanTimeout
	}
	if cfg.MaxBodyBytes <= 0 {
		cfg.MaxBodyBytes = DefaultMaxBodyBytes
	}
	logger := cfg.Logger

	mux := nethttp.NewServeMux()

	mux.HandleFunc("/health", func(w nethttp.ResponseWriter, r *nethttp.Request) {
		w.Header().Set("Content-Type", "text/plain")
		w.Write([]byte("ok"))
	})

	mux.HandleFunc("/plan", func(w nethttp.ResponseWriter, r *nethttp.Request) {
		if r.Method != nethttp.MethodPost {
			w.Header().Set("Allow", nethttp.MethodPost)
			writeError(w, "method not allowed", "method", nethttp.StatusMethodNotAllowed)
			return
		}

		refuse := func(reason, msg string, code int) {
			network.RequestRejected(r.Context(), cfg.Publisher, network.SessionRef(r.RemoteAddr), network.RejectPayload{Reason: reason}, map[string]any{"detail": msg})
			writeError(w, msg, reason, code)
		}
		rejected := func(reason, msg string, code int) {
			cfg.Recorder.RecordRejected(reason)
			refuse(reason, msg, code)
		}

		body, err := io.ReadAll(nethttp.MaxBytesReader(w, r.Body, cfg.MaxBodyBytes))
		if err != nil {
			var tooLarge *nethttp.MaxBytesError
			if errors.As(err, &tooLarge) {
				rejected(proto.RejectMalformed, "request body too large", nethttp.StatusRequestEntityTooLarge)
				return
			}
			rejected(proto.RejectMalformed, "failed to read body", nethttp.StatusBadRequest)
			return
		}

		req, err := intake.Stage(body, requestFormat(r), cfg.MaxExpansions)
		if err != nil {
			rejected(proto.RejectInvalid, err.Error(), nethttp.StatusBadRequest)
			return
		}
		if req.Name == "" {
			req.Name = r.URL.Query().Get("name")
		}

		ctx, cancel := context.WithTimeout(r.Context(), cfg.PlanTimeout)
		defer cancel()
		result, err := cfg.Planner.Plan(ctx, req.Query)
		if err != nil {
			if errors.Is(err, context.Canceled) && r.Context().Err() != nil {
				return
			}
			if errors.Is(err, planner.ErrInvalidInput) {
				refuse(proto.RejectInvalid, err.Error(), nethttp.StatusBadRequest)
				return
			}
			logger.Printf("plan %s failed: %v", req.Name, err)
			writeError(w, "planning failed", proto.RejectInternal, nethttp.StatusInternalServerError)
			return
		}

		writeJSON(w, nethttp.StatusOK, proto.FromResult(req.Name, result), logger)
	})

	wsCfg := cfg.WS
	if wsCfg.Logger == nil {
		wsCfg.Logger = cfg.Logger
	}
	if wsCfg.Publisher == nil {
		wsCfg.Publisher = cfg.Publisher
	}
	if wsCfg.Recorder == nil {
		wsCfg.Recorder = cfg.Recorder
	}
	if wsCfg.MaxExpansions == 0 {
		wsCfg.MaxExpansions = cfg.MaxExpansions
	}
	if wsCfg.PlanTimeout == 0 {
		wsCfg.PlanTimeout = cfg.PlanTimeout
	}
	mux.HandleFunc("/ws", ws.NewHandler(cfg.Planner, wsCfg).Handle)

	if cfg.Observability.EnableMetrics && cfg.Metrics != nil {
		mux.Handle("/metrics", cfg.Metrics)
	}

	if cfg.Observability.EnablePprof {
		mux.HandleFunc("/debug/pprof/", pprof.Index)
		mux.HandleFunc("/debug/pprof/cmdline", pprof.Cmdline)
		mux.HandleFunc("/debug/pprof/profile", pprof.Profile)
		mux.HandleFunc("/debug/pprof/symbol", pprof.Symbol)
		mux.HandleFunc("/debug/pprof/trace", pprof.Trace)
	}

	return mux
}

// requestFormat picks the problem encoding from Content-Type. Anything that
// does not name YAML is read as JSON.
func requestFormat(r *nethttp.Request) problem.Format {
	if strings.Contains(r.Header.Get("Content-Type"), "yaml") {
		return problem.FormatYAML
	}
	return problem.FormatJSON
}

func writeJSON(w nethttp.ResponseWriter, code int, payload any, logger telemetry.Logger) {
	data, err := json.Marshal(payload)
	if err != nil {
		logger.Printf("failed to encode response: %v", err)
		nethttp.Error(w, "failed to encode", nethttp.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	w.Write(data)
}

func writeError(w nethttp.ResponseWriter, msg, reason string, code int) {
	data, _ := json.Marshal(proto.ErrorResponse{Error: msg, Reason: reason})
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	w.Write(data)
}
