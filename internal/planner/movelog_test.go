package planner

import (
	"encoding/json"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDiffMoves(t *testing.T) {
	start := Assignment{RightHand: 1, LeftHand: 2, RightFoot: 3, LeftFoot: 4}
	path := []Assignment{
		start,
		start.With(LeftFoot, 5),
		start.With(LeftFoot, 5).With(RightHand, 9),
	}

	moves, err := DiffMoves(path)
	require.NoError(t, err)
	assert.Equal(t, []Move{
		{Step: 1, Limb: LeftFoot, From: 4, To: 5},
		{Step: 2, Limb: RightHand, From: 1, To: 9},
	}, moves)
}

func TestDiffMovesShortPaths(t *testing.T) {
	moves, err := DiffMoves(nil)
	assert.NoError(t, err)
	assert.Nil(t, moves)

	moves, err = DiffMoves([]Assignment{{}})
	assert.NoError(t, err)
	assert.Nil(t, moves)
}

func TestDiffMovesInvariantViolation(t *testing.T) {
	start := Assignment{RightHand: 1, LeftHand: 2, RightFoot: 3, LeftFoot: 4}
	for name, next := range map[string]Assignment{
		"two limbs": start.With(RightHand, 7).With(LeftHand, 8),
		"no change": start,
	} {
		t.Run(name, func(t *testing.T) {
			_, err := DiffMoves([]Assignment{start, next})
			require.Error(t, err)
			assert.True(t, errors.Is(err, ErrInvariantViolation))
		})
	}
}

func TestDescribe(t *testing.T) {
	start := Assignment{RightHand: 1, LeftHand: 2, RightFoot: 3, LeftFoot: 4}
	lines, err := Describe([]Assignment{start, start.With(LeftHand, 6)})
	require.NoError(t, err)
	assert.Equal(t, []string{
		"Starting state: {right_hand: 1, left_hand: 2, right_foot: 3, left_foot: 4}",
		"left hand moves to hold 6",
	}, lines)

	lines, err = Describe(nil)
	assert.NoError(t, err)
	assert.Nil(t, lines)
}

func TestMoveJSONUsesLimbNames(t *testing.T) {
	raw, err := json.Marshal(Move{Step: 1, Limb: RightFoot, From: 2, To: 3})
	require.NoError(t, err)
	assert.JSONEq(t, `{"step":1,"limb":"right_foot","from":2,"to":3}`, string(raw))

	var decoded Move
	require.NoError(t, json.Unmarshal(raw, &decoded))
	assert.Equal(t, RightFoot, decoded.Limb)
}
