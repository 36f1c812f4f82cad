// Package planner finds the cheapest sequence of single-limb moves that brings
// a hand onto the goal hold.
//
// The search is best-first over limb assignments, ordered by f = g + h with
// ties broken by g and then insertion order. The foot heuristic is not
// admissible, so a returned path is optimal under this ordering only.
package planner

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"beta-than-ever/planner/internal/telemetry"
	"beta-than-ever/planner/logging"
	"beta-than-ever/planner/logging/planning"
)

// Status is the outcome class of a search that ran.
type Status string

const (
	StatusSolved         Status = "solved"
	StatusUnreachable    Status = "unreachable"
	StatusBudgetExceeded Status = "budget_exceeded"
)

const (
	BudgetExpansions = "expansions"
	BudgetDeadline   = "deadline"
)

// Result describes a finished search. Path and Moves are only set when
// Status is StatusSolved.
type Result struct {
	QueryID string       `json:"queryId"`
	Status  Status       `json:"status"`
	Goal    int          `json:"goal"`
	Path    []Assignment `json:"path,omitempty"`
	Moves   []Move       `json:"moves,omitempty"`
	Cost    float64      `json:"cost"`
	// Expansions counts nodes popped and expanded; Generated counts children
	// pushed onto the frontier.
	Expansions   int           `json:"expansions"`
	Generated    int           `json:"generated"`
	BudgetReason string        `json:"budgetReason,omitempty"`
	Duration     time.Duration `json:"duration"`
}

// Solved reports whether a path was found.
func (r Result) Solved() bool {
	return r.Status == StatusSolved
}

// Deps carries the ambient services a Planner reports to. Zero values are
// replaced by no-op implementations.
type Deps struct {
	Publisher logging.Publisher
	Metrics   telemetry.Metrics
	Tracer    trace.Tracer
	Clock     logging.Clock
	NewID     func() string
}

// Planner runs queries. It keeps no per-query state and is safe for
// concurrent use.
type Planner struct {
	pub     logging.Publisher
	metrics telemetry.Metrics
	tracer  trace.Tracer
	clock   logging.Clock
	newID   func() string
}

func New(deps Deps) *Planner {
	p := &Planner{
		pub:     deps.Publisher,
		metrics: deps.Metrics,
		tracer:  deps.Tracer,
		clock:   deps.Clock,
		newID:   deps.NewID,
	}
	if p.pub == nil {
		p.pub = logging.NopPublisher()
	}
	if p.metrics == nil {
		p.metrics = telemetry.NopMetrics{}
	}
	if p.tracer == nil {
		p.tracer = otel.Tracer("beta-than-ever/planner")
	}
	if p.clock == nil {
		p.clock = logging.SystemClock{}
	}
	if p.newID == nil {
		p.newID = uuid.NewString
	}
	return p
}

// Plan runs q with no event, metric or trace reporting beyond the global
// OpenTelemetry provider.
func Plan(ctx context.Context, q Query) (Result, error) {
	return New(Deps{}).Plan(ctx, q)
}

// Plan validates q and searches it. Invalid input and invariant violations are
// returned as errors; unreachable goals and exhausted budgets are reported
// through Result.Status with a nil error. A cancelled context without a
// deadline returns the context error.
func (p *Planner) Plan(ctx context.Context, q Query) (Result, error) {
	if q.ID == "" {
		q.ID = p.newID()
	}
	ctx, span := p.tracer.Start(ctx, "planner.Plan", trace.WithAttributes(
		attribute.String("query_id", q.ID),
		attribute.Int("holds", q.Holds.Len()),
	))
	defer span.End()

	if err := q.Validate(); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "invalid input")
		planning.InvalidInput(ctx, p.pub, q.ID, err)
		p.metrics.RecordRejected("invalid_input")
		return Result{}, err
	}

	goalID := q.GoalID()
	goal, _ := q.Holds.Lookup(goalID)
	rules := q.rules()
	gen := newGenerator(q.Holds, q.Profile, rules, q.FootOnly, goal)
	start := newNode(q.Start, 0, gen.startHeuristic(q.Start), nil)
	span.SetAttributes(attribute.Int("goal", goalID))

	planning.SearchStarted(ctx, p.pub, q.ID, goalID, planning.SearchStartedPayload{
		Holds:     q.Holds.Len(),
		FootOnly:  len(gen.footOnly),
		Height:    q.Profile.Height,
		Heuristic: start.H,
	})

	began := p.clock.Now()
	out, err := search(ctx, gen, start, rules.MaxExpansions)
	elapsed := p.clock.Now().Sub(began)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "search aborted")
		return Result{}, err
	}

	result := Result{
		QueryID:      q.ID,
		Status:       out.status,
		Goal:         goalID,
		Expansions:   out.expansions,
		Generated:    out.generated,
		BudgetReason: out.budgetReason,
		Duration:     elapsed,
	}
	payload := planning.OutcomePayload{
		Generated:      out.generated,
		DurationMillis: elapsed.Milliseconds(),
		Reason:         out.budgetReason,
	}
	ticks := uint64(out.expansions)

	switch out.status {
	case StatusSolved:
		moves, err := DiffMoves(out.path)
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, "invariant violation")
			planning.InvariantViolation(ctx, p.pub, q.ID, ticks, err)
			return Result{}, err
		}
		result.Path = out.path
		result.Moves = moves
		result.Cost = out.cost
		payload.Moves = len(moves)
		payload.Cost = out.cost
		planning.Solved(ctx, p.pub, q.ID, ticks, goalID, payload)
	case StatusUnreachable:
		planning.Unreachable(ctx, p.pub, q.ID, ticks, goalID, payload)
	case StatusBudgetExceeded:
		planning.BudgetExceeded(ctx, p.pub, q.ID, ticks, goalID, payload)
	}

	span.SetAttributes(
		attribute.String("status", string(result.Status)),
		attribute.Int("expansions", result.Expansions),
		attribute.Int("moves", len(result.Moves)),
	)
	p.metrics.RecordQuery(string(result.Status), result.Expansions, elapsed)
	return result, nil
}

type outcome struct {
	status       Status
	path         []Assignment
	cost         float64
	expansions   int
	generated    int
	budgetReason string
}

// search is the best-first loop. Every assignment is expanded at most once;
// duplicates left on the frontier are skipped when popped.
func search(ctx context.Context, gen *generator, start *Node, maxExpansions int) (outcome, error) {
	open := &frontier{}
	open.push(start)
	visited := make(map[Assignment]struct{})
	var out outcome

	for open.Len() > 0 {
		if err := ctx.Err(); err != nil {
			if errors.Is(err, context.DeadlineExceeded) {
				out.status = StatusBudgetExceeded
				out.budgetReason = BudgetDeadline
				return out, nil
			}
			return out, err
		}

		current := open.pop()
		if _, seen := visited[current.Assignment]; seen {
			continue
		}
		if current.Assignment.HasHandOn(gen.goal.ID) {
			out.status = StatusSolved
			out.path = current.finish()
			out.cost = current.G
			return out, nil
		}
		if maxExpansions > 0 && out.expansions >= maxExpansions {
			out.status = StatusBudgetExceeded
			out.budgetReason = BudgetExpansions
			return out, nil
		}

		visited[current.Assignment] = struct{}{}
		out.expansions++
		for _, child := range gen.successors(current) {
			if _, seen := visited[child.Assignment]; seen {
				continue
			}
			open.push(child)
			out.generated++
		}
	}

	out.status = StatusUnreachable
	return out, nil
}
