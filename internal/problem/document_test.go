package problem

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"beta-than-ever/planner/internal/planner"
)

func TestLoadYAMLGrid(t *testing.T) {
	doc, err := Load(filepath.Join("testdata", "grid.yaml"))
	require.NoError(t, err)
	assert.Equal(t, "grid", doc.Name)
	assert.Len(t, doc.Holds, 19)

	q, err := doc.Query()
	require.NoError(t, err)
	assert.Equal(t, 18, q.GoalID())
	assert.Equal(t, planner.Assignment{RightHand: 8, LeftHand: 6, RightFoot: 2, LeftFoot: 0}, q.Start)
	assert.Equal(t, planner.DefaultConstraints(), *q.Constraints)

	result, err := planner.Plan(context.Background(), q)
	require.NoError(t, err)
	assert.Equal(t, planner.StatusSolved, result.Status)
	assert.Len(t, result.Moves, 7)
}

func TestLoadJSONNamesFromFile(t *testing.T) {
	dir := t.TempDir()
	data, err := os.ReadFile(filepath.Join("testdata", "vertical.json"))
	require.NoError(t, err)
	path := filepath.Join(dir, "line.JSON")
	require.NoError(t, os.WriteFile(path, []byte(`{"holds":[{"id":0,"x":0,"y":1}],"start":{"right_hand":0,"left_hand":0,"right_foot":0,"left_foot":0},"climber":{"height":1}}`), 0o644))

	doc, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "line", doc.Name)

	doc, err = Parse(data, FormatJSON)
	require.NoError(t, err)
	q, err := doc.Query()
	require.NoError(t, err)
	result, err := planner.Plan(context.Background(), q)
	require.NoError(t, err)
	assert.Equal(t, []planner.Move{{Step: 1, Limb: planner.RightHand, From: 1, To: 2}}, result.Moves)
}

func TestFormatFromPath(t *testing.T) {
	assert.Equal(t, FormatJSON, FormatFromPath("a/b.json"))
	assert.Equal(t, FormatYAML, FormatFromPath("a/b.yml"))
	assert.Equal(t, FormatYAML, FormatFromPath("a/b"))
}

func TestHeightInCentimetresIsScaled(t *testing.T) {
	doc, err := Parse([]byte(`
holds:
  - {id: 0, x: 0, y: 240}
  - {id: 1, x: 0, y: 0}
start: {right_hand: 0, left_hand: 0, right_foot: 0, left_foot: 0}
climber: {height_cm: 180}
`), FormatYAML)
	require.NoError(t, err)

	q, err := doc.Query()
	require.NoError(t, err)
	// 180 cm of a 500 cm wall spanning 240 units.
	assert.InDelta(t, 86.4, q.Profile.Height, 1e-9)
	assert.InDelta(t, 86.4*1.35, q.Profile.VerticalReach, 1e-9)
}

func TestConstraintOverrides(t *testing.T) {
	doc, err := Parse([]byte(`
holds: [{id: 0, x: 0, y: 10}, {id: 1, x: 0, y: 0, tag: foot-only}]
start: {right_hand: 0, left_hand: 0, right_foot: 0, left_foot: 0}
foot_holds: [0]
goal: 0
climber: {height: 50, horizontal_scale: 0.75}
constraints:
  foot_ceiling: centroid
  horizontal_reach_scale: 1
  allow_shared_holds: true
  max_expansions: 10
`), FormatYAML)
	require.NoError(t, err)

	q, err := doc.Query()
	require.NoError(t, err)
	want := planner.DefaultConstraints()
	want.FootCeiling = planner.CeilingCentroid
	want.HorizontalReachScale = 1
	want.AllowSharedHolds = true
	want.MaxExpansions = 10
	assert.Equal(t, want, *q.Constraints)
	assert.Equal(t, []int{0}, q.FootOnly)
	assert.Equal(t, 0, q.GoalID())
	assert.Equal(t, 37.5, q.Profile.HorizontalReach)
	assert.Equal(t, []int{1}, q.Holds.FootOnly())
}

func TestParseRejectsBadDocuments(t *testing.T) {
	cases := map[string]string{
		"no holds":        `{start: {right_hand: 0, left_hand: 0, right_foot: 0, left_foot: 0}, climber: {height: 1}}`,
		"missing limb":    `{holds: [{id: 0, x: 0, y: 0}], start: {right_hand: 0, left_hand: 0, right_foot: 0}, climber: {height: 1}}`,
		"bad tag":         `{holds: [{id: 0, x: 0, y: 0, tag: hands}], start: {right_hand: 0, left_hand: 0, right_foot: 0, left_foot: 0}, climber: {height: 1}}`,
		"no height":       `{holds: [{id: 0, x: 0, y: 0}], start: {right_hand: 0, left_hand: 0, right_foot: 0, left_foot: 0}}`,
		"both heights":    `{holds: [{id: 0, x: 0, y: 0}], start: {right_hand: 0, left_hand: 0, right_foot: 0, left_foot: 0}, climber: {height: 1, height_cm: 170}}`,
		"negative height": `{holds: [{id: 0, x: 0, y: 0}], start: {right_hand: 0, left_hand: 0, right_foot: 0, left_foot: 0}, climber: {height: -1}}`,
		"unknown field":   `{holds: [{id: 0, x: 0, y: 0}], start: {right_hand: 0, left_hand: 0, right_foot: 0, left_foot: 0}, climber: {height: 1}, colour: red}`,
		"bad rule":        `{holds: [{id: 0, x: 0, y: 0}], start: {right_hand: 0, left_hand: 0, right_foot: 0, left_foot: 0}, climber: {height: 1}, constraints: {foot_ceiling: knees}}`,
		"empty":           ``,
	}
	for name, body := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := Parse([]byte(body), FormatYAML)
			require.Error(t, err)
			assert.True(t, errors.Is(err, planner.ErrInvalidInput), "got %v", err)
		})
	}
}

func TestValidationMessagesUseDocumentNames(t *testing.T) {
	_, err := Parse([]byte(`{"holds":[],"start":{},"climber":{"height":1}}`), FormatJSON)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "holds needs at least 1 entries")
	assert.Contains(t, err.Error(), "start.right_hand is required")
}

func TestQueryRejectsDuplicateHolds(t *testing.T) {
	doc, err := Parse([]byte(`{holds: [{id: 0, x: 0, y: 0}, {id: 0, x: 1, y: 1}], start: {right_hand: 0, left_hand: 0, right_foot: 0, left_foot: 0}, climber: {height: 1}}`), FormatYAML)
	require.NoError(t, err)
	_, err = doc.Query()
	assert.ErrorIs(t, err, planner.ErrInvalidInput)
}
