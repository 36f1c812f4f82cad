// Package wall models the static hold layout a route is planned over.
package wall

import (
	"errors"
	"fmt"
)

// HoldTag restricts which limbs may use a hold.
type HoldTag string

const (
	// TagNone marks a hold usable by any limb.
	TagNone HoldTag = ""
	// TagFootOnly marks a hold reserved for feet.
	TagFootOnly HoldTag = "foot-only"
)

// Hold is a single point of contact reported by the detector.
type Hold struct {
	ID     int     `json:"id" yaml:"id"`
	Center Vec2    `json:"center" yaml:"center"`
	Tag    HoldTag `json:"tag,omitempty" yaml:"tag,omitempty"`
}

// FootOnly reports whether the hold carries the foot-only tag.
func (h Hold) FootOnly() bool {
	return h.Tag == TagFootOnly
}

var (
	// ErrEmpty is returned when a hold set is built from no holds.
	ErrEmpty = errors.New("wall: hold list is empty")
	// ErrDuplicateID is returned when two holds share an identifier.
	ErrDuplicateID = errors.New("wall: duplicate hold id")
	// ErrBadCenter is returned for NaN or infinite coordinates.
	ErrBadCenter = errors.New("wall: hold center is not finite")
	// ErrBadTag is returned for tags other than TagNone and TagFootOnly.
	ErrBadTag = errors.New("wall: unknown hold tag")
)

// HoldSet is an immutable, id-indexed view of the holds for one query.
type HoldSet struct {
	holds []Hold
	index map[int]int
	goal  int
}

// NewHoldSet validates the holds and freezes them into a HoldSet. The caller's
// order is preserved because successor generation iterates it.
func NewHoldSet(holds []Hold) (HoldSet, error) {
	if len(holds) == 0 {
		return HoldSet{}, ErrEmpty
	}
	set := HoldSet{
		holds: make([]Hold, len(holds)),
		index: make(map[int]int, len(holds)),
	}
	copy(set.holds, holds)
	for i, hold := range set.holds {
		if _, exists := set.index[hold.ID]; exists {
			return HoldSet{}, fmt.Errorf("%w: %d", ErrDuplicateID, hold.ID)
		}
		if !finite(hold.Center) {
			return HoldSet{}, fmt.Errorf("%w: hold %d", ErrBadCenter, hold.ID)
		}
		if hold.Tag != TagNone && hold.Tag != TagFootOnly {
			return HoldSet{}, fmt.Errorf("%w: hold %d tag %q", ErrBadTag, hold.ID, hold.Tag)
		}
		set.index[hold.ID] = i
		if i == 0 || hold.ID > set.goal {
			set.goal = hold.ID
		}
	}
	return set, nil
}

// Len returns the number of holds.
func (s HoldSet) Len() int {
	return len(s.holds)
}

// At returns the i-th hold in input order.
func (s HoldSet) At(i int) Hold {
	return s.holds[i]
}

// Holds returns a copy of the holds in input order.
func (s HoldSet) Holds() []Hold {
	if len(s.holds) == 0 {
		return nil
	}
	cloned := make([]Hold, len(s.holds))
	copy(cloned, s.holds)
	return cloned
}

// Lookup finds a hold by id.
func (s HoldSet) Lookup(id int) (Hold, bool) {
	i, ok := s.index[id]
	if !ok {
		return Hold{}, false
	}
	return s.holds[i], true
}

// Contains reports whether id names a hold in the set.
func (s HoldSet) Contains(id int) bool {
	_, ok := s.index[id]
	return ok
}

// Goal returns the conventional goal hold: the maximum identifier.
func (s HoldSet) Goal() int {
	return s.goal
}

// FootOnly returns the ids of holds tagged foot-only, in input order.
func (s HoldSet) FootOnly() []int {
	var ids []int
	for _, hold := range s.holds {
		if hold.FootOnly() {
			ids = append(ids, hold.ID)
		}
	}
	return ids
}

// Span returns the largest Y over all holds, i.e. the image height the route
// occupies measured from the top edge.
func (s HoldSet) Span() float64 {
	span := 0.0
	for i, hold := range s.holds {
		if i == 0 || hold.Center.Y > span {
			span = hold.Center.Y
		}
	}
	return span
}
