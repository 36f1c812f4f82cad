// Package climber derives the anthropometric reach model used by the planner.
package climber

import (
	"errors"
	"fmt"
	"math"
)

const (
	LegRatio               = 0.45
	ArmRatio               = 0.35
	TorsoRatio             = 0.35
	VerticalReachRatio     = 1.35
	DefaultHorizontalScale = 1.0

	// DefaultWallHeightCM is the nominal wall height used to convert a
	// climber's real height into image units.
	DefaultWallHeightCM = 500.0
)

// ErrBadHeight is returned for non-positive or non-finite heights.
var ErrBadHeight = errors.New("climber: height must be a positive finite number")

// ErrBadReach is returned when a profile's reach radii are not positive
// finite numbers.
var ErrBadReach = errors.New("climber: reach must be a positive finite number")

// Profile holds the reach radii derived from a single height. Values are in
// the same units as hold centers.
type Profile struct {
	Height          float64 `json:"height"`
	LegLength       float64 `json:"legLength"`
	ArmLength       float64 `json:"armLength"`
	TorsoLength     float64 `json:"torsoLength"`
	HorizontalReach float64 `json:"horizontalReach"`
	VerticalReach   float64 `json:"verticalReach"`
}

// NewProfile derives a profile using DefaultHorizontalScale.
func NewProfile(height float64) (Profile, error) {
	return NewProfileWithScale(height, DefaultHorizontalScale)
}

// NewProfileWithScale derives a profile with a custom horizontal reach factor.
// A non-positive scale falls back to DefaultHorizontalScale.
func NewProfileWithScale(height, horizontalScale float64) (Profile, error) {
	if !positive(height) {
		return Profile{}, fmt.Errorf("%w: %v", ErrBadHeight, height)
	}
	if !positive(horizontalScale) {
		horizontalScale = DefaultHorizontalScale
	}
	return Profile{
		Height:          height,
		LegLength:       height * LegRatio,
		ArmLength:       height * ArmRatio,
		TorsoLength:     height * TorsoRatio,
		HorizontalReach: height * horizontalScale,
		VerticalReach:   height * VerticalReachRatio,
	}, nil
}

// Validate reports whether every radius the planner compares against is a
// positive finite number. Profiles built by NewProfile always pass.
func (p Profile) Validate() error {
	if !positive(p.Height) {
		return fmt.Errorf("%w: %v", ErrBadHeight, p.Height)
	}
	for _, field := range []struct {
		name  string
		value float64
	}{
		{"torso length", p.TorsoLength},
		{"horizontal reach", p.HorizontalReach},
		{"vertical reach", p.VerticalReach},
	} {
		if !positive(field.value) {
			return fmt.Errorf("%w: %s %v", ErrBadReach, field.name, field.value)
		}
	}
	return nil
}

// ScaleHeight converts a height in centimetres into wall units, assuming the
// route's vertical span on the image corresponds to wallCM of real wall.
func ScaleHeight(userCM, wallCM, wallSpan float64) (float64, error) {
	if !positive(userCM) {
		return 0, fmt.Errorf("%w: %v cm", ErrBadHeight, userCM)
	}
	if !positive(wallCM) {
		wallCM = DefaultWallHeightCM
	}
	if !positive(wallSpan) {
		return 0, fmt.Errorf("climber: wall span must be positive, got %v", wallSpan)
	}
	return userCM / wallCM * wallSpan, nil
}

func positive(v float64) bool {
	return v > 0 && !math.IsInf(v, 0) && !math.IsNaN(v)
}
