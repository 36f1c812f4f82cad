package planner

import (
	"fmt"
	"math"
)

// FootCeilingRule selects how high a foot may be placed relative to the body.
type FootCeilingRule string

const (
	// CeilingLowestHand keeps a foot at least FootCeilingBuffer·height below
	// the lower of the two hands.
	CeilingLowestHand FootCeilingRule = "lowest-hand"
	// CeilingCentroid keeps a foot at least one torso length below the
	// centroid of the current assignment.
	CeilingCentroid FootCeilingRule = "centroid"
)

const (
	DefaultVerticalReachScale   = 1.0
	DefaultHorizontalReachScale = 0.8
	DefaultFootCeilingBuffer    = 0.4
	DefaultFootSpreadScale      = 0.5
	DefaultHandCost             = 1.0
	DefaultFootCost             = 3.0
)

// Constraints carries the biomechanical thresholds and costs. None of the
// thresholds are calibrated, so every one of them is overridable;
// DefaultConstraints is the canonical set.
type Constraints struct {
	// VerticalReachScale multiplies Profile.VerticalReach for the
	// hand-to-lowest-foot bound.
	VerticalReachScale float64 `json:"verticalReachScale" yaml:"vertical_reach_scale"`
	// HorizontalReachScale multiplies Profile.HorizontalReach for the
	// hand-to-hand bound.
	HorizontalReachScale float64         `json:"horizontalReachScale" yaml:"horizontal_reach_scale"`
	FootCeiling          FootCeilingRule `json:"footCeiling" yaml:"foot_ceiling"`
	// FootCeilingBuffer is a fraction of the climber height, used by
	// CeilingLowestHand.
	FootCeilingBuffer float64 `json:"footCeilingBuffer" yaml:"foot_ceiling_buffer"`
	// FootSpreadScale multiplies Profile.VerticalReach for the foot-to-foot
	// bound.
	FootSpreadScale float64 `json:"footSpreadScale" yaml:"foot_spread_scale"`
	HandCost        float64 `json:"handCost" yaml:"hand_cost"`
	FootCost        float64 `json:"footCost" yaml:"foot_cost"`
	// AllowSharedHolds restores the legacy rules where hands may land on a
	// hold another limb already uses.
	AllowSharedHolds bool `json:"allowSharedHolds" yaml:"allow_shared_holds"`
	// MaxExpansions bounds the search; zero means unlimited.
	MaxExpansions int `json:"maxExpansions" yaml:"max_expansions"`
}

// DefaultConstraints returns the canonical rule set.
func DefaultConstraints() Constraints {
	return Constraints{
		VerticalReachScale:   DefaultVerticalReachScale,
		HorizontalReachScale: DefaultHorizontalReachScale,
		FootCeiling:          CeilingLowestHand,
		FootCeilingBuffer:    DefaultFootCeilingBuffer,
		FootSpreadScale:      DefaultFootSpreadScale,
		HandCost:             DefaultHandCost,
		FootCost:             DefaultFootCost,
	}
}

// Validate rejects negative or non-finite values and unknown rules.
func (c Constraints) Validate() error {
	fields := []struct {
		name  string
		value float64
	}{
		{"vertical reach scale", c.VerticalReachScale},
		{"horizontal reach scale", c.HorizontalReachScale},
		{"foot ceiling buffer", c.FootCeilingBuffer},
		{"foot spread scale", c.FootSpreadScale},
		{"hand cost", c.HandCost},
		{"foot cost", c.FootCost},
	}
	for _, f := range fields {
		if math.IsNaN(f.value) || math.IsInf(f.value, 0) || f.value < 0 {
			return fmt.Errorf("%s must be a non-negative finite number, got %v", f.name, f.value)
		}
	}
	switch c.FootCeiling {
	case CeilingLowestHand, CeilingCentroid:
	default:
		return fmt.Errorf("unknown foot ceiling rule %q", c.FootCeiling)
	}
	if c.MaxExpansions < 0 {
		return fmt.Errorf("max expansions must not be negative, got %d", c.MaxExpansions)
	}
	return nil
}
