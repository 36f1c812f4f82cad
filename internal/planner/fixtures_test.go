package planner

import (
	"testing"

	"beta-than-ever/planner/internal/climber"
	"beta-than-ever/planner/internal/wall"
)

func mustHoldSet(t testing.TB, holds ...wall.Hold) wall.HoldSet {
	t.Helper()
	set, err := wall.NewHoldSet(holds)
	if err != nil {
		t.Fatalf("hold set: %v", err)
	}
	return set
}

func mustProfile(t testing.TB, height float64) climber.Profile {
	t.Helper()
	profile, err := climber.NewProfile(height)
	if err != nil {
		t.Fatalf("profile: %v", err)
	}
	return profile
}

func hold(id int, x, y float64) wall.Hold {
	return wall.Hold{ID: id, Center: wall.Vec2{X: x, Y: y}}
}

// verticalLine is three holds 50 units apart, goal on top.
func verticalLine(t testing.TB) wall.HoldSet {
	return mustHoldSet(t, hold(0, 0, 100), hold(1, 0, 50), hold(2, 0, 0))
}

// gridWall is a 3x6 grid spaced 40 units with the goal centred above it.
// Ids grow from the bottom-left corner, row by row.
func gridWall(t testing.TB, goalY float64) wall.HoldSet {
	var holds []wall.Hold
	id := 0
	for _, y := range []float64{240, 200, 160, 120, 80, 40} {
		for _, x := range []float64{0, 40, 80} {
			holds = append(holds, hold(id, x, y))
			id++
		}
	}
	holds = append(holds, hold(id, 40, goalY))
	return mustHoldSet(t, holds...)
}

var gridStart = Assignment{RightHand: 8, LeftHand: 6, RightFoot: 2, LeftFoot: 0}

func gridQuery(t testing.TB) Query {
	return Query{
		ID:      "grid",
		Holds:   gridWall(t, 0),
		Profile: mustProfile(t, 100),
		Start:   gridStart,
	}
}

func testGenerator(t testing.TB, holds wall.HoldSet, height float64, rules Constraints, footOnly ...int) *generator {
	t.Helper()
	goal, ok := holds.Lookup(holds.Goal())
	if !ok {
		t.Fatalf("goal %d missing", holds.Goal())
	}
	return newGenerator(holds, mustProfile(t, height), rules, footOnly, goal)
}
