package main

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"beta-than-ever/planner/internal/planner"
)

var (
	gridFile     = filepath.Join("..", "..", "internal", "problem", "testdata", "grid.yaml")
	verticalFile = filepath.Join("..", "..", "internal", "problem", "testdata", "vertical.json")
)

func runCLI(t *testing.T, args ...string) (int, string, string) {
	t.Helper()
	var stdout, stderr bytes.Buffer
	code := run(args, &stdout, &stderr, false)
	return code, stdout.String(), stderr.String()
}

func TestPlanPrintsMoves(t *testing.T) {
	code, out, _ := runCLI(t, "plan", verticalFile)
	require.Equal(t, 0, code)
	assert.Contains(t, out, "vertical")
	assert.Contains(t, out, "solved in 1 moves, cost 1")
	assert.Contains(t, out, "start {right_hand: 1, left_hand: 1, right_foot: 0, left_foot: 0}")
	assert.Contains(t, out, "1. right hand moves to hold 2")
}

func TestPlanJSONKeepsArgumentOrder(t *testing.T) {
	code, out, _ := runCLI(t, "plan", "--format", "json", "-j", "2", gridFile, verticalFile)
	require.Equal(t, 0, code)

	var records []fileRecord
	scanner := bufio.NewScanner(strings.NewReader(out))
	for scanner.Scan() {
		var record fileRecord
		require.NoError(t, json.Unmarshal(scanner.Bytes(), &record))
		records = append(records, record)
	}
	require.Len(t, records, 2)

	assert.Equal(t, gridFile, records[0].File)
	require.NotNil(t, records[0].Result)
	assert.Equal(t, "grid", records[0].Result.Name)
	assert.Equal(t, planner.StatusSolved, records[0].Result.Status)
	assert.Len(t, records[0].Result.Moves, 7)
	assert.Equal(t, 13.0, records[0].Result.Cost)

	assert.Equal(t, verticalFile, records[1].File)
	require.NotNil(t, records[1].Result)
	assert.Equal(t, 1.0, records[1].Result.Cost)
}

func TestPlanReportsBudgetAsOutcome(t *testing.T) {
	code, out, _ := runCLI(t, "plan", "--max-expansions", "3", gridFile)
	require.Equal(t, 0, code)
	assert.Contains(t, out, "budget exceeded: expansions budget spent before reaching hold 18")
	assert.Contains(t, out, "(3 expansions")
}

func TestPlanInvalidFileExitsTwo(t *testing.T) {
	bad := filepath.Join(t.TempDir(), "bad.yaml")
	require.NoError(t, os.WriteFile(bad, []byte("holds: []\n"), 0o644))

	code, out, errOut := runCLI(t, "plan", verticalFile, bad)
	assert.Equal(t, exitInvalid, code)
	assert.Contains(t, out, "solved in 1 moves")
	assert.Contains(t, out, "error:")
	assert.Contains(t, errOut, "1 of 2 problems could not be planned")
}

func TestPlanRejectsUnknownFormatAndFlags(t *testing.T) {
	code, _, errOut := runCLI(t, "plan", "--format", "xml", verticalFile)
	assert.Equal(t, exitInvalid, code)
	assert.Contains(t, errOut, `unknown format "xml"`)

	code, _, _ = runCLI(t, "plan", "--no-such-flag", verticalFile)
	assert.Equal(t, exitInvalid, code)

	code, _, _ = runCLI(t, "plan")
	assert.Equal(t, exitFailure, code)
}

// syncBuffer lets the watch loop write while the test reads.
type syncBuffer struct {
	mu  sync.Mutex
	buf bytes.Buffer
}

func (b *syncBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.Write(p)
}

func (b *syncBuffer) String() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.String()
}

func TestWatchReplansOnChange(t *testing.T) {
	src, err := os.ReadFile(verticalFile)
	require.NoError(t, err)
	path := filepath.Join(t.TempDir(), "wall.json")
	require.NoError(t, os.WriteFile(path, src, 0o644))

	out := &syncBuffer{}
	c := &cli{stdout: out, stderr: out, logger: zap.NewNop()}
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() {
		done <- c.watch(ctx, []string{path}, planOptions{format: formatText, concurrency: 1})
	}()

	require.Eventually(t, func() bool {
		return strings.Contains(out.String(), "solved in 1 moves")
	}, 5*time.Second, 20*time.Millisecond)

	far := strings.Replace(string(src), `"y": 100`, `"y": 1000`, 1)
	far = strings.Replace(far, `"y": 50`, `"y": 900`, 1)
	require.NoError(t, os.WriteFile(path, []byte(far), 0o644))

	require.Eventually(t, func() bool {
		return strings.Contains(out.String(), "unreachable: goal hold 2 cannot be reached")
	}, 5*time.Second, 20*time.Millisecond)

	cancel()
	select {
	case err := <-done:
		require.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("watch did not stop")
	}
}

func TestSchemaWritesFile(t *testing.T) {
	out := filepath.Join(t.TempDir(), "schemas", "problem.json")
	code, _, _ := runCLI(t, "schema", "--out", out)
	require.Equal(t, 0, code)

	raw, err := os.ReadFile(out)
	require.NoError(t, err)
	var schema map[string]any
	require.NoError(t, json.Unmarshal(raw, &schema))
	assert.Equal(t, "Route problem", schema["title"])
}
