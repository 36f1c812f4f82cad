package planner

import (
	"fmt"

	"beta-than-ever/planner/internal/climber"
	"beta-than-ever/planner/internal/wall"
)

// Query is the full input of one planning run.
type Query struct {
	// ID correlates events and spans; one is generated when empty.
	ID      string
	Holds   wall.HoldSet
	Profile climber.Profile
	Start   Assignment
	// FootOnly lists holds reserved for feet, in addition to holds tagged
	// wall.TagFootOnly.
	FootOnly []int
	// Goal overrides the conventional goal (the maximum hold id).
	Goal *int
	// Constraints overrides DefaultConstraints.
	Constraints *Constraints
}

// GoalID returns the hold the query plans towards.
func (q Query) GoalID() int {
	if q.Goal != nil {
		return *q.Goal
	}
	return q.Holds.Goal()
}

func (q Query) rules() Constraints {
	if q.Constraints != nil {
		return *q.Constraints
	}
	return DefaultConstraints()
}

// WithExpansionCap bounds the query's expansion budget by limit. A
// non-positive limit leaves the query unchanged.
func (q Query) WithExpansionCap(limit int) Query {
	if limit <= 0 {
		return q
	}
	rules := q.rules()
	if rules.MaxExpansions == 0 || rules.MaxExpansions > limit {
		rules.MaxExpansions = limit
	}
	q.Constraints = &rules
	return q
}

// Validate checks the query before any search work. Every error wraps
// ErrInvalidInput.
func (q Query) Validate() error {
	if q.Holds.Len() == 0 {
		return fmt.Errorf("%w: %v", ErrInvalidInput, wall.ErrEmpty)
	}
	if err := q.Profile.Validate(); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidInput, err)
	}
	for _, limb := range Limbs {
		if id := q.Start.Hold(limb); !q.Holds.Contains(id) {
			return fmt.Errorf("%w: start %s references unknown hold %d", ErrInvalidInput, limb, id)
		}
	}
	for _, id := range q.FootOnly {
		if !q.Holds.Contains(id) {
			return fmt.Errorf("%w: foot-only hold %d does not exist", ErrInvalidInput, id)
		}
	}
	if goal := q.GoalID(); !q.Holds.Contains(goal) {
		return fmt.Errorf("%w: goal hold %d does not exist", ErrInvalidInput, goal)
	}
	if err := q.rules().Validate(); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidInput, err)
	}
	return nil
}
