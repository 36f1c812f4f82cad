package network

import (
	"context"

	"beta-than-ever/planner/logging"
)

const (
	// EventSessionOpened is emitted when a websocket planning session starts.
	EventSessionOpened logging.EventType = "network.session_opened"
	// EventSessionClosed is emitted when a websocket planning session ends.
	EventSessionClosed logging.EventType = "network.session_closed"
	// EventRequestRejected is emitted when a plan request is refused before
	// the planner runs.
	EventRequestRejected logging.EventType = "network.request_rejected"
)

const category = "network"

// SessionPayload describes a websocket session.
type SessionPayload struct {
	RemoteAddr string `json:"remoteAddr,omitempty"`
	Requests   int    `json:"requests,omitempty"`
	Reason     string `json:"reason,omitempty"`
}

// RejectPayload captures why a request was refused.
type RejectPayload struct {
	Seq    uint64 `json:"seq,omitempty"`
	Reason string `json:"reason"`
	Retry  bool   `json:"retry,omitempty"`
}

// SessionRef identifies a connection in events.
func SessionRef(id string) logging.EntityRef {
	return logging.EntityRef{ID: id, Kind: logging.EntityKindConnection}
}

// SessionOpened publishes an info event for a new session.
func SessionOpened(ctx context.Context, pub logging.Publisher, actor logging.EntityRef, payload SessionPayload) {
	if pub == nil {
		return
	}
	pub.Publish(ctx, logging.Event{
		Type:     EventSessionOpened,
		Actor:    actor,
		Severity: logging.SeverityInfo,
		Category: category,
		Payload:  payload,
	})
}

// SessionClosed publishes an info event when a session ends.
func SessionClosed(ctx context.Context, pub logging.Publisher, actor logging.EntityRef, payload SessionPayload) {
	if pub == nil {
		return
	}
	pub.Publish(ctx, logging.Event{
		Type:     EventSessionClosed,
		Actor:    actor,
		Severity: logging.SeverityInfo,
		Category: category,
		Payload:  payload,
	})
}

// RequestRejected publishes a warning for a refused request. Rate-limited
// requests are logged at debug since clients are told to retry.
func RequestRejected(ctx context.Context, pub logging.Publisher, actor logging.EntityRef, payload RejectPayload, extra map[string]any) {
	if pub == nil {
		return
	}
	severity := logging.SeverityWarn
	if payload.Retry {
		severity = logging.SeverityDebug
	}
	pub.Publish(ctx, logging.Event{
		Type:     EventRequestRejected,
		Actor:    actor,
		Severity: severity,
		Category: category,
		Payload:  payload,
		Extra:    extra,
	})
}
