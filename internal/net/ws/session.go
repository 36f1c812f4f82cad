package ws

import (
	"context"
	"errors"
	"time"

	"github.com/gorilla/websocket"
	"golang.org/x/time/rate"

	"beta-than-ever/planner/internal/net/intake"
	"beta-than-ever/planner/internal/net/proto"
	"beta-than-ever/planner/internal/planner"
	"beta-than-ever/planner/internal/problem"
	"beta-than-ever/planner/logging/network"
)

type session struct {
	id       string
	handler  *Handler
	conn     *websocket.Conn
	limiter  *rate.Limiter
	requests int
}

func (s *session) run(ctx context.Context) {
	cfg := s.handler.cfg
	actor := network.SessionRef(s.id)
	network.SessionOpened(ctx, cfg.Publisher, actor, network.SessionPayload{RemoteAddr: s.conn.RemoteAddr().String()})

	s.conn.SetReadLimit(maxMessageBytes)
	stop := context.AfterFunc(ctx, func() {
		s.conn.Close()
	})
	defer stop()

	reason := s.loop(ctx)
	s.conn.Close()
	network.SessionClosed(ctx, cfg.Publisher, actor, network.SessionPayload{Requests: s.requests, Reason: reason})
}

// loop reads messages until the connection fails and returns why it ended.
func (s *session) loop(ctx context.Context) string {
	cfg := s.handler.cfg
	for {
		_, payload, err := s.conn.ReadMessage()
		if err != nil {
			if ctx.Err() != nil {
				return "shutdown"
			}
			if websocket.IsCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				return "closed"
			}
			return "read_error"
		}

		msg, err := proto.DecodeClientMessage(payload)
		if err != nil {
			reason := proto.RejectMalformed
			if errors.Is(err, proto.ErrUnsupportedVersion) {
				reason = proto.RejectUnsupported
			}
			cfg.Logger.Printf("discarding malformed message from %s: %v", s.id, err)
			if !s.reject(ctx, msg.Seq, reason, err.Error()) {
				return "write_error"
			}
			continue
		}

		switch msg.Type {
		case proto.TypePlan:
			if !s.plan(ctx, msg) {
				return "write_error"
			}
		case proto.TypeHeartbeat:
			now := cfg.Clock()
			ack := proto.HeartbeatV1{
				Ver:        proto.Version,
				Type:       proto.TypeHeartbeat,
				ServerTime: now.UnixMilli(),
				ClientTime: msg.SentAt,
			}
			if msg.SentAt > 0 {
				ack.RTTMillis = max(now.UnixMilli()-msg.SentAt, 0)
			}
			if !s.write(ack) {
				return "write_error"
			}
		default:
			cfg.Logger.Printf("unknown message type %q from %s", msg.Type, s.id)
		}
	}
}

func (s *session) plan(ctx context.Context, msg proto.ClientMessage) bool {
	cfg := s.handler.cfg
	s.requests++
	if !s.limiter.Allow() {
		return s.reject(ctx, msg.Seq, proto.RejectRateLimited, "")
	}

	req, err := intake.Stage(msg.Problem, problem.FormatJSON, cfg.MaxExpansions)
	if err != nil {
		return s.reject(ctx, msg.Seq, proto.RejectInvalid, err.Error())
	}

	planCtx, cancel := context.WithTimeout(ctx, cfg.PlanTimeout)
	result, err := s.handler.planner.Plan(planCtx, req.Query)
	cancel()
	if err != nil {
		// The planner already counted its own validation failures.
		reason := proto.RejectInternal
		if errors.Is(err, planner.ErrInvalidInput) {
			reason = proto.RejectInvalid
		}
		return s.reply(ctx, msg.Seq, reason, err.Error())
	}
	return s.write(proto.NewPlanResult(msg.Seq, proto.FromResult(req.Name, result)))
}

// reject counts a refused request and answers it.
func (s *session) reject(ctx context.Context, seq uint64, reason, detail string) bool {
	s.handler.cfg.Recorder.RecordRejected(reason)
	return s.reply(ctx, seq, reason, detail)
}

func (s *session) reply(ctx context.Context, seq uint64, reason, detail string) bool {
	reject := proto.NewPlanReject(seq, reason, detail)
	network.RequestRejected(ctx, s.handler.cfg.Publisher, network.SessionRef(s.id), network.RejectPayload{
		Seq:    seq,
		Reason: reason,
		Retry:  reject.Retry,
	}, nil)
	return s.write(reject)
}

func (s *session) write(payload any) bool {
	s.conn.SetWriteDeadline(time.Now().Add(writeWait))
	if err := s.conn.WriteJSON(payload); err != nil {
		s.handler.cfg.Logger.Printf("write to %s failed: %v", s.id, err)
		return false
	}
	return true
}
