package planner

import "beta-than-ever/planner/internal/wall"

// score returns the step cost and heuristic for moving limb onto target.
// Hands are scored by distance to the goal; feet by distance to the nearer
// hand, since feet never travel to the goal themselves. The foot estimate can
// exceed the true remaining cost, so the search is not strictly admissible.
func (g *generator) score(b body, limb Limb, target wall.Hold) (cost, h float64) {
	if limb.IsHand() {
		return g.rules.HandCost, wall.Distance(target.Center, g.goal.Center)
	}
	toRight := wall.Distance(target.Center, b.at(RightHand).Center)
	toLeft := wall.Distance(target.Center, b.at(LeftHand).Center)
	return g.rules.FootCost, min(toRight, toLeft)
}

// startHeuristic estimates the start node by the distance from the centroid
// of its four holds to the goal.
func (g *generator) startHeuristic(a Assignment) float64 {
	return wall.Distance(g.resolve(a).centroid(), g.goal.Center)
}
