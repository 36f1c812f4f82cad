package planner

import "fmt"

// Move is one single-limb transition of a path.
type Move struct {
	// Step is 1-based.
	Step int  `json:"step"`
	Limb Limb `json:"limb"`
	From int  `json:"from"`
	To   int  `json:"to"`
}

func (m Move) String() string {
	return fmt.Sprintf("%s moves to hold %d", m.Limb.Label(), m.To)
}

// DiffMoves turns a path of assignments into the moves between them. Every
// consecutive pair must differ in exactly one limb.
func DiffMoves(path []Assignment) ([]Move, error) {
	if len(path) < 2 {
		return nil, nil
	}
	moves := make([]Move, 0, len(path)-1)
	for i := 1; i < len(path); i++ {
		prev, next := path[i-1], path[i]
		changed := prev.changed(next)
		if len(changed) != 1 {
			return nil, fmt.Errorf("%w: step %d changes %d limbs (%v -> %v)", ErrInvariantViolation, i, len(changed), prev, next)
		}
		limb := changed[0]
		moves = append(moves, Move{
			Step: i,
			Limb: limb,
			From: prev.Hold(limb),
			To:   next.Hold(limb),
		})
	}
	return moves, nil
}

// Describe renders a path as a starting-state line followed by one line per
// move.
func Describe(path []Assignment) ([]string, error) {
	if len(path) == 0 {
		return nil, nil
	}
	moves, err := DiffMoves(path)
	if err != nil {
		return nil, err
	}
	lines := make([]string, 0, len(moves)+1)
	lines = append(lines, "Starting state: "+path[0].String())
	for _, move := range moves {
		lines = append(lines, move.String())
	}
	return lines, nil
}
