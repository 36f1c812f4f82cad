package planner

import (
	"fmt"
	"strings"
)

// Limb identifies one of the four contact roles.
type Limb uint8

const (
	RightHand Limb = iota
	LeftHand
	RightFoot
	LeftFoot
)

// Limbs lists the roles in the fixed order used for generation and display.
var Limbs = [...]Limb{RightHand, LeftHand, RightFoot, LeftFoot}

var limbNames = [...]string{
	RightHand: "right_hand",
	LeftHand:  "left_hand",
	RightFoot: "right_foot",
	LeftFoot:  "left_foot",
}

func (l Limb) String() string {
	if int(l) < len(limbNames) {
		return limbNames[l]
	}
	return fmt.Sprintf("limb(%d)", uint8(l))
}

// Label is the human readable form, e.g. "right hand".
func (l Limb) Label() string {
	return strings.ReplaceAll(l.String(), "_", " ")
}

// IsHand reports whether the limb is a hand.
func (l Limb) IsHand() bool {
	return l == RightHand || l == LeftHand
}

// Opposite returns the limb of the same kind on the other side.
func (l Limb) Opposite() Limb {
	switch l {
	case RightHand:
		return LeftHand
	case LeftHand:
		return RightHand
	case RightFoot:
		return LeftFoot
	default:
		return RightFoot
	}
}

// ParseLimb accepts the snake_case names produced by String.
func ParseLimb(name string) (Limb, bool) {
	normalized := strings.ReplaceAll(strings.ToLower(strings.TrimSpace(name)), " ", "_")
	for i, candidate := range limbNames {
		if candidate == normalized {
			return Limb(i), true
		}
	}
	return 0, false
}

// MarshalText encodes the limb by name.
func (l Limb) MarshalText() ([]byte, error) {
	if int(l) >= len(limbNames) {
		return nil, fmt.Errorf("planner: unknown limb %d", uint8(l))
	}
	return []byte(l.String()), nil
}

// UnmarshalText accepts any name ParseLimb does.
func (l *Limb) UnmarshalText(text []byte) error {
	parsed, ok := ParseLimb(string(text))
	if !ok {
		return fmt.Errorf("planner: unknown limb %q", text)
	}
	*l = parsed
	return nil
}

// Assignment maps every limb to the hold it occupies. It is comparable and is
// used directly as the visited-set key.
type Assignment struct {
	RightHand int `json:"right_hand" yaml:"right_hand"`
	LeftHand  int `json:"left_hand" yaml:"left_hand"`
	RightFoot int `json:"right_foot" yaml:"right_foot"`
	LeftFoot  int `json:"left_foot" yaml:"left_foot"`
}

// Hold returns the hold occupied by limb.
func (a Assignment) Hold(limb Limb) int {
	switch limb {
	case RightHand:
		return a.RightHand
	case LeftHand:
		return a.LeftHand
	case RightFoot:
		return a.RightFoot
	default:
		return a.LeftFoot
	}
}

// With returns a copy of a with limb moved to hold.
func (a Assignment) With(limb Limb, hold int) Assignment {
	switch limb {
	case RightHand:
		a.RightHand = hold
	case LeftHand:
		a.LeftHand = hold
	case RightFoot:
		a.RightFoot = hold
	default:
		a.LeftFoot = hold
	}
	return a
}

// Holds returns the four hold ids in role order.
func (a Assignment) Holds() [4]int {
	return [4]int{a.RightHand, a.LeftHand, a.RightFoot, a.LeftFoot}
}

// OccupiedByOther reports whether any limb other than limb sits on hold.
func (a Assignment) OccupiedByOther(limb Limb, hold int) bool {
	for _, other := range Limbs {
		if other != limb && a.Hold(other) == hold {
			return true
		}
	}
	return false
}

// HasHandOn reports whether either hand occupies hold.
func (a Assignment) HasHandOn(hold int) bool {
	return a.RightHand == hold || a.LeftHand == hold
}

func (a Assignment) String() string {
	return fmt.Sprintf("{right_hand: %d, left_hand: %d, right_foot: %d, left_foot: %d}",
		a.RightHand, a.LeftHand, a.RightFoot, a.LeftFoot)
}

// changed lists the limbs whose hold differs between a and b.
func (a Assignment) changed(b Assignment) []Limb {
	var limbs []Limb
	for _, limb := range Limbs {
		if a.Hold(limb) != b.Hold(limb) {
			limbs = append(limbs, limb)
		}
	}
	return limbs
}
