package planner

import (
	"beta-than-ever/planner/internal/climber"
	"beta-than-ever/planner/internal/wall"
)

// rejection names the rule that blocked a candidate move. The empty value
// means the move is legal.
type rejection string

const (
	accepted              rejection = ""
	rejectFootOnly        rejection = "foot_only_hold"
	rejectArmCross        rejection = "arms_cross"
	rejectVerticalReach   rejection = "vertical_reach"
	rejectHorizontalReach rejection = "horizontal_reach"
	rejectFootOnlyTaken   rejection = "foot_hold_taken"
	rejectHandHold        rejection = "hand_on_hold"
	rejectLegCross        rejection = "legs_cross"
	rejectFootCeiling     rejection = "foot_too_high"
	rejectFootSpread      rejection = "feet_too_far_apart"
	rejectOccupied        rejection = "hold_occupied"
)

// body resolves the current assignment to hold positions once per expansion.
type body struct {
	assignment Assignment
	holds      [4]wall.Hold
}

func (b body) at(limb Limb) wall.Hold {
	return b.holds[limb]
}

// lowestFoot is the foot with the smaller y; ties resolve to the left foot.
func (b body) lowestFoot() wall.Hold {
	right, left := b.at(RightFoot), b.at(LeftFoot)
	if right.Center.Y < left.Center.Y {
		return right
	}
	return left
}

// lowerHandY is the larger y of the two hands.
func (b body) lowerHandY() float64 {
	return max(b.at(RightHand).Center.Y, b.at(LeftHand).Center.Y)
}

func (b body) centroid() wall.Vec2 {
	return wall.Centroid(b.holds[0].Center, b.holds[1].Center, b.holds[2].Center, b.holds[3].Center)
}

// generator produces the legal single-limb moves out of a node. It holds only
// immutable query data and may be shared by concurrent readers.
type generator struct {
	holds    wall.HoldSet
	profile  climber.Profile
	rules    Constraints
	footOnly map[int]struct{}
	goal     wall.Hold
}

func newGenerator(holds wall.HoldSet, profile climber.Profile, rules Constraints, footOnly []int, goal wall.Hold) *generator {
	reserved := make(map[int]struct{}, len(footOnly))
	for _, id := range footOnly {
		reserved[id] = struct{}{}
	}
	for _, id := range holds.FootOnly() {
		reserved[id] = struct{}{}
	}
	return &generator{
		holds:    holds,
		profile:  profile,
		rules:    rules,
		footOnly: reserved,
		goal:     goal,
	}
}

func (g *generator) isFootOnly(id int) bool {
	_, ok := g.footOnly[id]
	return ok
}

// resolve looks up the four holds of a. Assignments reaching the generator
// have been validated, so a miss is a programming error.
func (g *generator) resolve(a Assignment) body {
	b := body{assignment: a}
	for _, limb := range Limbs {
		hold, ok := g.holds.Lookup(a.Hold(limb))
		if !ok {
			panic("planner: assignment references unknown hold")
		}
		b.holds[limb] = hold
	}
	return b
}

// successors returns one child per legal move, limbs in role order and
// targets in hold-set order. The parent is left untouched.
func (g *generator) successors(parent *Node) []*Node {
	b := g.resolve(parent.Assignment)
	var children []*Node
	for _, limb := range Limbs {
		current := parent.Assignment.Hold(limb)
		for i := 0; i < g.holds.Len(); i++ {
			target := g.holds.At(i)
			if target.ID == current {
				continue
			}
			if g.check(b, limb, target) != accepted {
				continue
			}
			children = append(children, g.child(parent, b, limb, target))
		}
	}
	return children
}

func (g *generator) check(b body, limb Limb, target wall.Hold) rejection {
	var reason rejection
	if limb.IsHand() {
		reason = g.checkHand(b, limb, target)
	} else {
		reason = g.checkFoot(b, limb, target)
	}
	if reason != accepted {
		return reason
	}
	if !g.rules.AllowSharedHolds && b.assignment.OccupiedByOther(limb, target.ID) {
		return rejectOccupied
	}
	return accepted
}

func (g *generator) checkHand(b body, limb Limb, target wall.Hold) rejection {
	if g.isFootOnly(target.ID) {
		return rejectFootOnly
	}
	other := b.at(limb.Opposite())
	if limb == RightHand && target.Center.X < other.Center.X {
		return rejectArmCross
	}
	if limb == LeftHand && target.Center.X > other.Center.X {
		return rejectArmCross
	}
	if wall.Distance(target.Center, b.lowestFoot().Center) > g.profile.VerticalReach*g.rules.VerticalReachScale {
		return rejectVerticalReach
	}
	if wall.Distance(target.Center, other.Center) > g.profile.HorizontalReach*g.rules.HorizontalReachScale {
		return rejectHorizontalReach
	}
	return accepted
}

func (g *generator) checkFoot(b body, limb Limb, target wall.Hold) rejection {
	other := b.at(limb.Opposite())
	if g.isFootOnly(target.ID) && other.ID == target.ID {
		return rejectFootOnlyTaken
	}
	if b.assignment.HasHandOn(target.ID) {
		return rejectHandHold
	}
	if limb == RightFoot && target.Center.X < other.Center.X {
		return rejectLegCross
	}
	if limb == LeftFoot && target.Center.X > other.Center.X {
		return rejectLegCross
	}
	if target.Center.Y < g.footCeiling(b) {
		return rejectFootCeiling
	}
	if wall.Distance(target.Center, other.Center) > g.profile.VerticalReach*g.rules.FootSpreadScale {
		return rejectFootSpread
	}
	return accepted
}

// footCeiling is the smallest y a foot may be placed at.
func (g *generator) footCeiling(b body) float64 {
	if g.rules.FootCeiling == CeilingCentroid {
		return b.centroid().Y + g.profile.TorsoLength
	}
	return b.lowerHandY() + g.rules.FootCeilingBuffer*g.profile.Height
}

func (g *generator) child(parent *Node, b body, limb Limb, target wall.Hold) *Node {
	cost, h := g.score(b, limb, target)
	return newNode(
		parent.Assignment.With(limb, target.ID),
		parent.G+cost,
		h,
		parent.childAncestry(),
	)
}
