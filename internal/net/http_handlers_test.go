package net

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"beta-than-ever/planner/internal/net/proto"
	"beta-than-ever/planner/internal/observability"
	"beta-than-ever/planner/internal/planner"
	"beta-than-ever/planner/internal/telemetry"
	"beta-than-ever/planner/logging/network"
	"beta-than-ever/planner/logging/sinks"
)

const verticalJSON = `{
	"name": "vertical",
	"holds": [{"id": 0, "x": 0, "y": 100}, {"id": 1, "x": 0, "y": 50}, {"id": 2, "x": 0, "y": 0}],
	"start": {"right_hand": 1, "left_hand": 1, "right_foot": 0, "left_foot": 0},
	"climber": {"height": 100}
}`

const verticalYAML = `holds:
  - {id: 0, x: 0, y: 100}
  - {id: 1, x: 0, y: 50}
  - {id: 2, x: 0, y: 0}
start: {right_hand: 1, left_hand: 1, right_foot: 0, left_foot: 0}
climber: {height: 100}
`

func serve(handler http.Handler, method, path, contentType, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	resp := httptest.NewRecorder()
	handler.ServeHTTP(resp, req)
	return resp
}

func decodeResult(t *testing.T, resp *httptest.ResponseRecorder) proto.ResultV1 {
	t.Helper()
	if contentType := resp.Header().Get("Content-Type"); contentType != "application/json" {
		t.Fatalf("expected Content-Type application/json, got %q", contentType)
	}
	var result proto.ResultV1
	if err := json.Unmarshal(resp.Body.Bytes(), &result); err != nil {
		t.Fatalf("failed to decode result: %v (body=%s)", err, resp.Body.String())
	}
	return result
}

func TestHTTPHealth(t *testing.T) {
	resp := serve(NewHTTPHandler(HTTPHandlerConfig{}), http.MethodGet, "/health", "", "")
	if resp.Code != http.StatusOK || resp.Body.String() != "ok" {
		t.Fatalf("unexpected health response %d %q", resp.Code, resp.Body.String())
	}
}

func TestHTTPPlanSolvesJSONProblem(t *testing.T) {
	resp := serve(NewHTTPHandler(HTTPHandlerConfig{}), http.MethodPost, "/plan", "application/json", verticalJSON)
	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", resp.Code, resp.Body.String())
	}
	result := decodeResult(t, resp)
	if result.Status != planner.StatusSolved {
		t.Fatalf("expected solved, got %s", result.Status)
	}
	if result.Name != "vertical" || result.Cost != 1 || result.Expansions != 1 {
		t.Fatalf("unexpected result %+v", result)
	}
	if len(result.Steps) != 2 || result.Steps[1] != "right hand moves to hold 2" {
		t.Fatalf("unexpected steps %q", result.Steps)
	}
}

func TestHTTPPlanReadsYAMLByContentType(t *testing.T) {
	resp := serve(NewHTTPHandler(HTTPHandlerConfig{}), http.MethodPost, "/plan?name=line", "application/yaml", verticalYAML)
	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", resp.Code, resp.Body.String())
	}
	result := decodeResult(t, resp)
	if result.Name != "line" || result.Status != planner.StatusSolved {
		t.Fatalf("unexpected result %+v", result)
	}
}

func TestHTTPPlanUnreachableIsNotAnError(t *testing.T) {
	far := `{"holds":[{"id":0,"x":0,"y":1000},{"id":1,"x":0,"y":900},{"id":2,"x":0,"y":0}],` +
		`"start":{"right_hand":1,"left_hand":1,"right_foot":0,"left_foot":0},"climber":{"height":100}}`
	resp := serve(NewHTTPHandler(HTTPHandlerConfig{}), http.MethodPost, "/plan", "", far)
	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.Code)
	}
	if result := decodeResult(t, resp); result.Status != planner.StatusUnreachable || len(result.Moves) != 0 {
		t.Fatalf("unexpected result %+v", result)
	}
}

func TestHTTPPlanRejectsInvalidProblem(t *testing.T) {
	recorder := sinks.NewRecorder()
	handler := NewHTTPHandler(HTTPHandlerConfig{Publisher: recorder})

	cases := []string{
		`{"holds":[]}`,
		`{"holds":[{"id":0,"x":0,"y":0}],"start":{"right_hand":0,"left_hand":0,"right_foot":0,"left_foot":3},"climber":{"height":1}}`,
		`{"holds":[{"id":0,"x":0,"y":0}],"surprise":true}`,
	}
	for _, body := range cases {
		resp := serve(handler, http.MethodPost, "/plan", "application/json", body)
		if resp.Code != http.StatusBadRequest {
			t.Fatalf("expected 400 for %s, got %d", body, resp.Code)
		}
		var payload proto.ErrorResponse
		if err := json.Unmarshal(resp.Body.Bytes(), &payload); err != nil {
			t.Fatalf("failed to decode error: %v", err)
		}
		if payload.Reason != proto.RejectInvalid || payload.Error == "" {
			t.Fatalf("unexpected error payload %+v", payload)
		}
	}
	if got := len(recorder.OfType(network.EventRequestRejected)); got != len(cases) {
		t.Fatalf("expected %d rejection events, got %d", len(cases), got)
	}
}

type rejectionCounter struct {
	reasons []string
}

func (c *rejectionCounter) RecordQuery(string, int, time.Duration) {}

func (c *rejectionCounter) RecordRejected(reason string) {
	c.reasons = append(c.reasons, reason)
}

func TestHTTPPlanCountsRejections(t *testing.T) {
	counter := &rejectionCounter{}
	handler := NewHTTPHandler(HTTPHandlerConfig{
		Planner:      planner.New(planner.Deps{Metrics: counter}),
		Recorder:     counter,
		MaxBodyBytes: 64,
	})

	serve(handler, http.MethodPost, "/plan", "application/json", `{"holds":[]}`)
	serve(handler, http.MethodPost, "/plan", "application/json", verticalJSON)

	want := []string{proto.RejectInvalid, proto.RejectMalformed}
	if fmt.Sprint(counter.reasons) != fmt.Sprint(want) {
		t.Fatalf("expected rejections %v, got %v", want, counter.reasons)
	}
}

type plannerFunc func(ctx context.Context, q planner.Query) (planner.Result, error)

func (f plannerFunc) Plan(ctx context.Context, q planner.Query) (planner.Result, error) {
	return f(ctx, q)
}

func TestHTTPPlanIgnoresDisconnectedClient(t *testing.T) {
	var logged []string
	handler := NewHTTPHandler(HTTPHandlerConfig{
		Planner: plannerFunc(func(ctx context.Context, q planner.Query) (planner.Result, error) {
			<-ctx.Done()
			return planner.Result{}, ctx.Err()
		}),
		Logger: telemetry.LoggerFunc(func(format string, args ...any) {
			logged = append(logged, fmt.Sprintf(format, args...))
		}),
	})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	req := httptest.NewRequest(http.MethodPost, "/plan", strings.NewReader(verticalJSON)).WithContext(ctx)
	resp := httptest.NewRecorder()
	handler.ServeHTTP(resp, req)

	if resp.Body.Len() != 0 {
		t.Fatalf("expected no response body for a gone client, got %q", resp.Body.String())
	}
	if len(logged) != 0 {
		t.Fatalf("expected nothing logged, got %v", logged)
	}
}

func TestHTTPPlanRequiresPost(t *testing.T) {
	resp := serve(NewHTTPHandler(HTTPHandlerConfig{}), http.MethodGet, "/plan", "", "")
	if resp.Code != http.StatusMethodNotAllowed {
		t.Fatalf("expected 405, got %d", resp.Code)
	}
	if allow := resp.Header().Get("Allow"); allow != http.MethodPost {
		t.Fatalf("expected Allow POST, got %q", allow)
	}
}

func TestHTTPPlanLimitsBodySize(t *testing.T) {
	handler := NewHTTPHandler(HTTPHandlerConfig{MaxBodyBytes: 16})
	resp := serve(handler, http.MethodPost, "/plan", "", verticalJSON)
	if resp.Code != http.StatusRequestEntityTooLarge {
		t.Fatalf("expected 413, got %d", resp.Code)
	}
}

func TestHTTPPlanCapsExpansions(t *testing.T) {
	grid := `{"holds":[` +
		`{"id":0,"x":0,"y":240},{"id":1,"x":40,"y":240},{"id":2,"x":80,"y":240},` +
		`{"id":3,"x":0,"y":200},{"id":4,"x":40,"y":200},{"id":5,"x":80,"y":200},` +
		`{"id":6,"x":0,"y":160},{"id":7,"x":40,"y":160},{"id":8,"x":80,"y":160},` +
		`{"id":9,"x":0,"y":120},{"id":10,"x":40,"y":120},{"id":11,"x":80,"y":120},` +
		`{"id":12,"x":0,"y":80},{"id":13,"x":40,"y":80},{"id":14,"x":80,"y":80},` +
		`{"id":15,"x":0,"y":40},{"id":16,"x":40,"y":40},{"id":17,"x":80,"y":40},` +
		`{"id":18,"x":40,"y":0}],` +
		`"start":{"right_hand":8,"left_hand":6,"right_foot":2,"left_foot":0},"climber":{"height":100}}`

	resp := serve(NewHTTPHandler(HTTPHandlerConfig{MaxExpansions: 3}), http.MethodPost, "/plan", "", grid)
	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", resp.Code, resp.Body.String())
	}
	result := decodeResult(t, resp)
	if result.Status != planner.StatusBudgetExceeded || result.Expansions != 3 || result.BudgetReason != planner.BudgetExpansions {
		t.Fatalf("unexpected result %+v", result)
	}
}

func TestHTTPObservabilityRoutesAreOptIn(t *testing.T) {
	metrics := telemetry.NewPrometheusMetrics()
	off := NewHTTPHandler(HTTPHandlerConfig{Metrics: metrics.Handler()})
	if resp := serve(off, http.MethodGet, "/metrics", "", ""); resp.Code != http.StatusNotFound {
		t.Fatalf("expected /metrics to be absent, got %d", resp.Code)
	}
	if resp := serve(off, http.MethodGet, "/debug/pprof/", "", ""); resp.Code != http.StatusNotFound {
		t.Fatalf("expected pprof to be absent, got %d", resp.Code)
	}

	on := NewHTTPHandler(HTTPHandlerConfig{
		Planner:       planner.New(planner.Deps{Metrics: metrics}),
		Metrics:       metrics.Handler(),
		Observability: observability.Config{EnableMetrics: true, EnablePprof: true},
	})
	serve(on, http.MethodPost, "/plan", "", verticalJSON)
	resp := serve(on, http.MethodGet, "/metrics", "", "")
	if resp.Code != http.StatusOK {
		t.Fatalf("expected metrics 200, got %d", resp.Code)
	}
	if !strings.Contains(resp.Body.String(), "betaplan_planner_queries_total") {
		t.Fatalf("expected planner series in exposition, got %s", resp.Body.String())
	}
	if resp := serve(on, http.MethodGet, "/debug/pprof/", "", ""); resp.Code != http.StatusOK {
		t.Fatalf("expected pprof index, got %d", resp.Code)
	}
}
