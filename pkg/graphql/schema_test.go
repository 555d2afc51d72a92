package graphql

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/dd0wney/cluso-netviz/pkg/config"
	"github.com/dd0wney/cluso-netviz/pkg/engine"
	"github.com/dd0wney/cluso-netviz/pkg/telemetry"
)

// runningEngine starts an engine loop with the default 4-[4,2]-1 topology drawn.
func runningEngine(t *testing.T) *engine.Engine {
	t.Helper()
	e := engine.New(config.Default())
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- e.Run(ctx, nil) }()
	t.Cleanup(func() {
		cancel()
		<-done
	})

	deadline := time.Now().Add(2 * time.Second)
	for !e.Running() {
		if time.Now().After(deadline) {
			t.Fatal("engine loop did not start")
		}
		time.Sleep(time.Millisecond)
	}

	err := e.Do(context.Background(), func(e *engine.Engine) error {
		return e.Draw(telemetry.TopologyFromLayers([]int{4, 4, 2, 1}), nil)
	})
	if err != nil {
		t.Fatalf("Draw() error = %v", err)
	}
	waitFor(t, func() bool { return e.Latest().Drawn })
	return e
}

func waitFor(t *testing.T, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for !cond() {
		if time.Now().After(deadline) {
			t.Fatal("condition not met before deadline")
		}
		time.Sleep(2 * time.Millisecond)
	}
}

func mustSchema(t *testing.T, eng Engine) *GraphQLHandler {
	t.Helper()
	schema, err := GenerateSchema(eng)
	if err != nil {
		t.Fatalf("GenerateSchema() error = %v", err)
	}
	return NewGraphQLHandler(schema, 0)
}

func exec(t *testing.T, h *GraphQLHandler, query string, vars map[string]any) map[string]any {
	t.Helper()
	result := ExecuteWithDepthLimit(context.Background(), h.schema, query, h.maxDepth, vars)
	if result.HasErrors() {
		t.Fatalf("query %q failed: %v", query, result.Errors)
	}
	data, ok := result.Data.(map[string]any)
	if !ok {
		t.Fatalf("unexpected data %T", result.Data)
	}
	return data
}

func TestGraphQuery(t *testing.T) {
	h := mustSchema(t, runningEngine(t))

	data := exec(t, h, `{ graph { drawn layers epoch nodes { kind } links { weight { available } } scheduler { state stopped } } }`, nil)
	graph := data["graph"].(map[string]any)

	if graph["drawn"] != true {
		t.Errorf("drawn = %v, want true", graph["drawn"])
	}
	if got := len(graph["nodes"].([]any)); got != 11 {
		t.Errorf("nodes = %d, want 11", got)
	}
	if got := len(graph["links"].([]any)); got != 26 {
		t.Errorf("links = %d, want 26", got)
	}
	link := graph["links"].([]any)[0].(map[string]any)
	if link["weight"].(map[string]any)["available"] != false {
		t.Errorf("weight should be unavailable before any record")
	}
	if state := graph["scheduler"].(map[string]any)["state"]; state != "idle" {
		t.Errorf("scheduler state = %v, want idle", state)
	}
}

func TestNodesByLayer(t *testing.T) {
	h := mustSchema(t, runningEngine(t))

	data := exec(t, h, `{ nodes(layer: 2) { layer index label } }`, nil)
	nodes := data["nodes"].([]any)
	if len(nodes) != 2 {
		t.Fatalf("nodes(layer: 2) = %d, want 2", len(nodes))
	}
	for _, raw := range nodes {
		n := raw.(map[string]any)
		if n["layer"] != 2 {
			t.Errorf("layer = %v, want 2", n["layer"])
		}
		if n["label"] != "Hidden Layer 2" {
			t.Errorf("label = %v, want Hidden Layer 2", n["label"])
		}
	}
}

func TestNodeLookup(t *testing.T) {
	h := mustSchema(t, runningEngine(t))

	data := exec(t, h, `query($l: Int!, $i: Int!) { node(layer: $l, index: $i) { kind x y activation { available text } } }`,
		map[string]any{"l": 3, "i": 0})
	node := data["node"].(map[string]any)
	if node["kind"] != "output" {
		t.Errorf("kind = %v, want output", node["kind"])
	}
	if node["activation"].(map[string]any)["text"] != "N/A" {
		t.Errorf("activation text = %v, want N/A", node["activation"])
	}

	result := ExecuteQuery(context.Background(), h.schema, `{ node(layer: 9, index: 0) { kind } }`, nil)
	if !result.HasErrors() || !strings.Contains(result.Errors[0].Message, "not found") {
		t.Errorf("expected not found error, got %v", result.Errors)
	}
}

func TestMutations(t *testing.T) {
	e := runningEngine(t)
	h := mustSchema(t, e)

	data := exec(t, h, `mutation { control(action: "stop") { stopped } }`, nil)
	if data["control"].(map[string]any)["stopped"] != true {
		t.Errorf("control(stop) did not set stopped")
	}
	if !e.Stopped() {
		t.Errorf("engine not stopped")
	}

	data = exec(t, h, `mutation { moveNode(layer: 1, index: 0, x: 100, y: 50) { x y } }`, nil)
	moved := data["moveNode"].(map[string]any)
	if moved["x"] != 100.0 || moved["y"] != 50.0 {
		t.Errorf("moveNode = %v, want (100, 50)", moved)
	}

	data = exec(t, h, `mutation { draw(layers: [2, 3, 1]) { layers } }`, nil)
	if got := data["draw"].(map[string]any)["layers"].([]any); len(got) != 3 {
		t.Errorf("draw layers = %v", got)
	}

	result := ExecuteQuery(context.Background(), h.schema, `mutation { draw(layers: [2]) { layers } }`, nil)
	if !result.HasErrors() {
		t.Errorf("draw with one layer should fail")
	}

	result = ExecuteQuery(context.Background(), h.schema, `mutation { control(action: "pause") { stopped } }`, nil)
	if !result.HasErrors() {
		t.Errorf("unknown control action should fail")
	}

	data = exec(t, h, `mutation { clear { drawn } }`, nil)
	if data["clear"].(map[string]any)["drawn"] != false {
		t.Errorf("clear left graph drawn")
	}
}

type emptyEngine struct{}

func (emptyEngine) Latest() *engine.Snapshot { return nil }
func (emptyEngine) Do(ctx context.Context, fn func(*engine.Engine) error) error {
	return engine.ErrNotRunning
}

func TestNoSnapshot(t *testing.T) {
	h := mustSchema(t, emptyEngine{})

	result := ExecuteQuery(context.Background(), h.schema, `{ graph { drawn } }`, nil)
	if !result.HasErrors() {
		t.Fatal("expected error without a snapshot")
	}

	result = ExecuteQuery(context.Background(), h.schema, `mutation { clear { drawn } }`, nil)
	if !result.HasErrors() || !strings.Contains(result.Errors[0].Message, "not running") {
		t.Errorf("expected not running error, got %v", result.Errors)
	}
}
