package proto

import (
	"encoding/json"
	"errors"
	"fmt"

	"beta-than-ever/planner/internal/planner"
)

const (
	// Version tracks the wire-protocol revision expected by clients.
	Version = 1
)

// Client message type identifiers.
const (
	TypePlan      = "plan"
	TypeHeartbeat = "heartbeat"
)

// Server message type identifiers.
const (
	TypePlanResult = "planResult"
	TypePlanReject = "planReject"
)

// Reject reasons.
const (
	RejectMalformed   = "malformed"
	RejectInvalid     = "invalid_input"
	RejectRateLimited = "rate_limited"
	RejectInternal    = "internal"
	RejectUnsupported = "unsupported_version"
)

var ErrUnsupportedVersion = errors.New("proto: unsupported protocol version")

// ClientMessage captures an inbound websocket message.
type ClientMessage struct {
	Ver     int             `json:"ver,omitempty"`
	Type    string          `json:"type"`
	Seq     uint64          `json:"seq,omitempty"`
	Problem json.RawMessage `json:"problem,omitempty"`
	SentAt  int64           `json:"sentAt,omitempty"`
}

// DecodeClientMessage parses data and checks the protocol version. A zero
// version is treated as the current one.
func DecodeClientMessage(data []byte) (ClientMessage, error) {
	var msg ClientMessage
	if err := json.Unmarshal(data, &msg); err != nil {
		return ClientMessage{}, err
	}
	if msg.Ver != 0 && msg.Ver != Version {
		return msg, fmt.Errorf("%w: %d", ErrUnsupportedVersion, msg.Ver)
	}
	return msg, nil
}

// ResultV1 is the wire form of planner.Result, shared by the HTTP API, the
// websocket session and the CLI's JSON output.
type ResultV1 struct {
	QueryID        string               `json:"queryId"`
	Name           string               `json:"name,omitempty"`
	Status         planner.Status       `json:"status"`
	Goal           int                  `json:"goal"`
	Cost           float64              `json:"cost"`
	Expansions     int                  `json:"expansions"`
	Generated      int                  `json:"generated"`
	BudgetReason   string               `json:"budgetReason,omitempty"`
	DurationMillis int64                `json:"durationMillis"`
	Path           []planner.Assignment `json:"path,omitempty"`
	Moves          []planner.Move       `json:"moves,omitempty"`
	Steps          []string             `json:"steps,omitempty"`
}

// FromResult converts a planner result. Steps are rendered for solved
// results only.
func FromResult(name string, result planner.Result) ResultV1 {
	wire := ResultV1{
		QueryID:        result.QueryID,
		Name:           name,
		Status:         result.Status,
		Goal:           result.Goal,
		Cost:           result.Cost,
		Expansions:     result.Expansions,
		Generated:      result.Generated,
		BudgetReason:   result.BudgetReason,
		DurationMillis: result.Duration.Milliseconds(),
		Path:           result.Path,
		Moves:          result.Moves,
	}
	if result.Solved() {
		if steps, err := planner.Describe(result.Path); err == nil {
			wire.Steps = steps
		}
	}
	return wire
}

// PlanResultV1 answers a plan request.
type PlanResultV1 struct {
	Ver    int      `json:"ver"`
	Type   string   `json:"type"`
	Seq    uint64   `json:"seq,omitempty"`
	Result ResultV1 `json:"result"`
}

func NewPlanResult(seq uint64, result ResultV1) PlanResultV1 {
	return PlanResultV1{Ver: Version, Type: TypePlanResult, Seq: seq, Result: result}
}

// PlanRejectV1 refuses a plan request without running the planner to
// completion.
type PlanRejectV1 struct {
	Ver    int    `json:"ver"`
	Type   string `json:"type"`
	Seq    uint64 `json:"seq,omitempty"`
	Reason string `json:"reason"`
	Detail string `json:"detail,omitempty"`
	Retry  bool   `json:"retry,omitempty"`
}

func NewPlanReject(seq uint64, reason, detail string) PlanRejectV1 {
	return PlanRejectV1{
		Ver:    Version,
		Type:   TypePlanReject,
		Seq:    seq,
		Reason: reason,
		Detail: detail,
		Retry:  reason == RejectRateLimited,
	}
}

// HeartbeatV1 echoes a client heartbeat.
type HeartbeatV1 struct {
	Ver        int    `json:"ver"`
	Type       string `json:"type"`
	ServerTime int64  `json:"serverTime"`
	ClientTime int64  `json:"clientTime"`
	RTTMillis  int64  `json:"rtt"`
}

// ErrorResponse is the HTTP error body.
type ErrorResponse struct {
	Error  string `json:"error"`
	Reason string `json:"reason"`
}
