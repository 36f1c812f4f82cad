package sinks

import (
	"bytes"
	"context"
	"encoding/json"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"beta-than-ever/planner/logging"
)

func sampleEvent() logging.Event {
	return logging.Event{
		Type:     "planning.solved",
		Tick:     12,
		Time:     time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC),
		Actor:    logging.EntityRef{ID: "q-7", Kind: logging.EntityKindQuery},
		Targets:  []logging.EntityRef{{ID: "18", Kind: logging.EntityKindHold}},
		Severity: logging.SeverityWarn,
		Category: logging.CategoryPlanning,
		Payload:  map[string]int{"moves": 7},
		TraceID:  "q-7",
	}
}

func TestJSONWritesOneRecordPerLine(t *testing.T) {
	var buf bytes.Buffer
	sink := NewJSON(&buf, 0)

	require.NoError(t, sink.Write(sampleEvent()))
	require.NoError(t, sink.Write(sampleEvent()))
	require.NoError(t, sink.Close(context.Background()))

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	require.Len(t, lines, 2)

	var record map[string]any
	require.NoError(t, json.Unmarshal([]byte(lines[0]), &record))
	assert.Equal(t, "planning.solved", record["type"])
	assert.Equal(t, "warn", record["severity"])
	assert.Equal(t, "2024-01-02T03:04:05Z", record["time"])
	assert.Equal(t, map[string]any{"id": "q-7", "kind": "query"}, record["actor"])
	assert.Equal(t, map[string]any{"moves": float64(7)}, record["payload"])
}

func TestJSONPeriodicFlushStopsOnClose(t *testing.T) {
	var buf bytes.Buffer
	sink := NewJSON(&buf, time.Hour)

	require.NoError(t, sink.Write(sampleEvent()))
	assert.Zero(t, buf.Len(), "buffered until flush")
	require.NoError(t, sink.Close(context.Background()))
	assert.NotZero(t, buf.Len())
}

func TestConsoleMapsSeverityToLevel(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	sink := NewConsole(zap.New(core))

	require.NoError(t, sink.Write(sampleEvent()))
	debug := sampleEvent()
	debug.Severity = logging.SeverityDebug
	require.NoError(t, sink.Write(debug))

	entries := logs.AllUntimed()
	require.Len(t, entries, 2)
	assert.Equal(t, zapcore.WarnLevel, entries[0].Level)
	assert.Equal(t, zapcore.DebugLevel, entries[1].Level)
	assert.Equal(t, "events", entries[0].LoggerName)

	fields := entries[0].ContextMap()
	assert.Equal(t, "query:q-7", fields["actor"])
	assert.Equal(t, "q-7", fields["trace_id"])
	assert.Equal(t, "planning", fields["category"])
}

func TestMemoryAndRecorder(t *testing.T) {
	recorder := NewRecorder()
	recorder.Publish(context.Background(), sampleEvent())
	recorder.Publish(context.Background(), logging.Event{Type: "planning.unreachable"})

	assert.Len(t, recorder.Events(), 2)
	assert.Len(t, recorder.OfType("planning.unreachable"), 1)

	recorder.Reset()
	assert.Empty(t, recorder.Events())
	assert.NoError(t, recorder.Close(context.Background()))
}
