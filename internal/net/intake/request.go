package intake

import (
	"beta-than-ever/planner/internal/planner"
	"beta-than-ever/planner/internal/problem"
)

// Request is a decoded problem ready for the planner.
type Request struct {
	Name  string
	Query planner.Query
}

// Stage decodes raw in the given format and builds the planner query, applying
// the service-wide expansion cap. Every error wraps planner.ErrInvalidInput.
func Stage(raw []byte, format problem.Format, maxExpansions int) (Request, error) {
	doc, err := problem.Parse(raw, format)
	if err != nil {
		return Request{}, err
	}
	q, err := doc.Query()
	if err != nil {
		return Request{}, err
	}
	return Request{Name: doc.Name, Query: q.WithExpansionCap(maxExpansions)}, nil
}
