package planning

import (
	"context"
	"strconv"

	"beta-than-ever/planner/logging"
)

const (
	// EventSearchStarted is emitted once input validation passes and the
	// frontier is seeded.
	EventSearchStarted logging.EventType = "planning.search_started"
	// EventSolved is emitted when a hand reaches the goal hold.
	EventSolved logging.EventType = "planning.solved"
	// EventUnreachable is emitted when the frontier empties.
	EventUnreachable logging.EventType = "planning.unreachable"
	// EventBudgetExceeded is emitted when the expansion or time budget runs out.
	EventBudgetExceeded logging.EventType = "planning.budget_exceeded"
	// EventInvalidInput is emitted when a query is rejected before search.
	EventInvalidInput logging.EventType = "planning.invalid_input"
	// EventInvariantViolation is emitted when a reconstructed path is malformed.
	EventInvariantViolation logging.EventType = "planning.invariant_violation"
)

func queryRef(queryID string) logging.EntityRef {
	return logging.EntityRef{ID: queryID, Kind: logging.EntityKindQuery}
}

func holdRef(id int) logging.EntityRef {
	return logging.EntityRef{ID: strconv.Itoa(id), Kind: logging.EntityKindHold}
}

func publish(ctx context.Context, pub logging.Publisher, event logging.Event) {
	if pub == nil {
		return
	}
	event.Category = logging.CategoryPlanning
	pub.Publish(ctx, event)
}

// SearchStartedPayload describes the seeded query.
type SearchStartedPayload struct {
	Holds     int     `json:"holds"`
	FootOnly  int     `json:"footOnly"`
	Height    float64 `json:"height"`
	Heuristic float64 `json:"heuristic"`
}

// SearchStarted publishes a debug event when the search loop begins.
func SearchStarted(ctx context.Context, pub logging.Publisher, queryID string, goal int, payload SearchStartedPayload) {
	publish(ctx, pub, logging.Event{
		Type:     EventSearchStarted,
		Actor:    queryRef(queryID),
		Targets:  []logging.EntityRef{holdRef(goal)},
		Severity: logging.SeverityDebug,
		Payload:  payload,
		TraceID:  queryID,
	})
}

// OutcomePayload summarises a finished search.
type OutcomePayload struct {
	Moves          int     `json:"moves"`
	Cost           float64 `json:"cost"`
	Generated      int     `json:"generated"`
	DurationMillis int64   `json:"durationMillis"`
	Reason         string  `json:"reason,omitempty"`
}

// Solved publishes an info event for a found path.
func Solved(ctx context.Context, pub logging.Publisher, queryID string, expansions uint64, goal int, payload OutcomePayload) {
	publish(ctx, pub, logging.Event{
		Type:     EventSolved,
		Tick:     expansions,
		Actor:    queryRef(queryID),
		Targets:  []logging.EntityRef{holdRef(goal)},
		Severity: logging.SeverityInfo,
		Payload:  payload,
		TraceID:  queryID,
	})
}

// Unreachable publishes an info event; an unclimbable wall is an expected
// outcome, not a fault.
func Unreachable(ctx context.Context, pub logging.Publisher, queryID string, expansions uint64, goal int, payload OutcomePayload) {
	publish(ctx, pub, logging.Event{
		Type:     EventUnreachable,
		Tick:     expansions,
		Actor:    queryRef(queryID),
		Targets:  []logging.EntityRef{holdRef(goal)},
		Severity: logging.SeverityInfo,
		Payload:  payload,
		TraceID:  queryID,
	})
}

// BudgetExceeded publishes a warning so truncated searches can be told apart
// from genuinely unreachable goals.
func BudgetExceeded(ctx context.Context, pub logging.Publisher, queryID string, expansions uint64, goal int, payload OutcomePayload) {
	publish(ctx, pub, logging.Event{
		Type:     EventBudgetExceeded,
		Tick:     expansions,
		Actor:    queryRef(queryID),
		Targets:  []logging.EntityRef{holdRef(goal)},
		Severity: logging.SeverityWarn,
		Payload:  payload,
		TraceID:  queryID,
	})
}

// InvalidInput publishes a warning for a rejected query.
func InvalidInput(ctx context.Context, pub logging.Publisher, queryID string, err error) {
	if err == nil {
		return
	}
	publish(ctx, pub, logging.Event{
		Type:     EventInvalidInput,
		Actor:    queryRef(queryID),
		Severity: logging.SeverityWarn,
		Extra:    map[string]any{"error": err.Error()},
		TraceID:  queryID,
	})
}

// InvariantViolation publishes an error event for an internal fault.
func InvariantViolation(ctx context.Context, pub logging.Publisher, queryID string, expansions uint64, err error) {
	if err == nil {
		return
	}
	publish(ctx, pub, logging.Event{
		Type:     EventInvariantViolation,
		Tick:     expansions,
		Actor:    queryRef(queryID),
		Severity: logging.SeverityError,
		Extra:    map[string]any{"error": err.Error()},
		TraceID:  queryID,
	})
}
