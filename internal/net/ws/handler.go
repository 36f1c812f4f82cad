package ws

import (
	"context"
	nethttp "net/http"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"golang.org/x/time/rate"

	"beta-than-ever/planner/internal/planner"
	"beta-than-ever/planner/internal/telemetry"
	"beta-than-ever/planner/logging"
)

const (
	DefaultRateLimit   = rate.Limit(5)
	DefaultBurst       = 5
	DefaultPlanTimeout = 10 * time.Second

	writeWait       = 10 * time.Second
	maxMessageBytes = 1 << 20
)

// Planner runs one query. *planner.Planner satisfies it.
type Planner interface {
	Plan(ctx context.Context, q planner.Query) (planner.Result, error)
}

type HandlerConfig struct {
	Logger    telemetry.Logger
	Publisher logging.Publisher
	// Recorder counts requests refused before they reach the planner.
	Recorder telemetry.Metrics
	// RateLimit and Burst size the per-connection token bucket for plan
	// requests.
	RateLimit rate.Limit
	Burst     int
	// PlanTimeout bounds each request; an expired deadline is reported as a
	// budget_exceeded result.
	PlanTimeout time.Duration
	// MaxExpansions caps every query's expansion budget.
	MaxExpansions int
	Clock         func() time.Time
}

func (c HandlerConfig) normalized() HandlerConfig {
	if c.Logger == nil {
		c.Logger = telemetry.LoggerFunc(nil)
	}
	if c.Publisher == nil {
		c.Publisher = logging.NopPublisher()
	}
	if c.Recorder == nil {
		c.Recorder = telemetry.NopMetrics{}
	}
	if c.RateLimit <= 0 {
		c.RateLimit = DefaultRateLimit
	}
	if c.Burst <= 0 {
		c.Burst = DefaultBurst
	}
	if c.PlanTimeout <= 0 {
		c.PlanTimeout = DefaultPlanTimeout
	}
	if c.Clock == nil {
		c.Clock = time.Now
	}
	return c
}

// Handler upgrades requests to websocket planning sessions.
type Handler struct {
	planner  Planner
	cfg      HandlerConfig
	upgrader websocket.Upgrader
}

func NewHandler(p Planner, cfg HandlerConfig) *Handler {
	return &Handler{
		planner: p,
		cfg:     cfg.normalized(),
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin: func(r *nethttp.Request) bool {
				return true
			},
		},
	}
}

func (h *Handler) Handle(w nethttp.ResponseWriter, r *nethttp.Request) {
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.cfg.Logger.Printf("upgrade failed for %s: %v", r.RemoteAddr, err)
		return
	}
	h.Serve(r.Context(), conn)
}

// Serve runs a session on conn until the client disconnects or ctx ends. It
// closes conn before returning.
func (h *Handler) Serve(ctx context.Context, conn *websocket.Conn) {
	if h == nil || conn == nil {
		return
	}
	s := &session{
		id:      uuid.NewString(),
		handler: h,
		conn:    conn,
		limiter: rate.NewLimiter(h.cfg.RateLimit, h.cfg.Burst),
	}
	s.run(ctx)
}
