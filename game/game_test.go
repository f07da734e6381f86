package game

import (
	"bytes"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"github.com/pthm-cable/cspace/components"
	"github.com/pthm-cable/cspace/config"
	"github.com/pthm-cable/cspace/telemetry"
)

// lushConfig keeps the seed watered and lit so growth never stalls.
func lushConfig(maxNodes int) *config.Config {
	cfg := config.Defaults()
	cfg.Engine.MaxNodes = maxNodes
	cfg.Telemetry.StatsWindow = 10
	cfg.Scenario.Resources = []config.ResourceConfig{
		{X: 400, Y: 540, Intensity: 1, Kind: "water"},
		{X: 400, Y: 450, Intensity: 1, Kind: "light"},
	}
	return cfg
}

func newTestGame(t *testing.T, cfg *config.Config, opts Options) *Game {
	t.Helper()
	if opts.Seed == 0 {
		opts.Seed = 1
	}
	g, err := NewGameWithConfig(cfg, opts)
	if err != nil {
		t.Fatalf("NewGameWithConfig: %v", err)
	}
	t.Cleanup(g.Unload)
	return g
}

// countingRecorder counts events by type.
type countingRecorder struct {
	mu     sync.Mutex
	counts map[telemetry.EventType]int
}

func (r *countingRecorder) Record(ev telemetry.Event) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.counts == nil {
		r.counts = make(map[telemetry.EventType]int)
	}
	r.counts[ev.Type]++
}

func (r *countingRecorder) count(typ telemetry.EventType) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.counts[typ]
}

func TestNewGame_AppliesScenario(t *testing.T) {
	cfg := lushConfig(100)
	g := newTestGame(t, cfg, Options{})

	st := g.State()
	if len(st.Nodes) != 1 {
		t.Fatalf("nodes = %d, want the seed only", len(st.Nodes))
	}
	if want := components.Vec(cfg.Derived.SeedX, cfg.Derived.SeedY); st.Nodes[0].Position != want {
		t.Errorf("seed at %+v, want %+v", st.Nodes[0].Position, want)
	}
	if len(st.Resources) != 2 {
		t.Errorf("resources = %d, want 2", len(st.Resources))
	}
	if g.StepsPerUpdate() != cfg.Simulation.StepsPerUpdate {
		t.Errorf("speed = %d, want config value %d", g.StepsPerUpdate(), cfg.Simulation.StepsPerUpdate)
	}
}

func TestNewGame_BadScenario(t *testing.T) {
	cfg := lushConfig(100)
	cfg.Scenario.Resources[0].Kind = "lava"
	if _, err := NewGameWithConfig(cfg, Options{Seed: 1}); err == nil {
		t.Error("expected an error for an unknown resource kind")
	}
}

func TestUpdateHeadless_RunsToCapacity(t *testing.T) {
	const maxNodes = 40
	g := newTestGame(t, lushConfig(maxNodes), Options{StepsPerUpdate: 5})

	for i := 0; i < 2000; i++ {
		if !g.UpdateHeadless() {
			break
		}
	}

	if !g.Done() {
		t.Fatalf("expected capacity within 10000 ticks, have %d nodes", len(g.State().Nodes))
	}
	if !g.Paused() {
		t.Error("capacity should pause the session")
	}
	if got := len(g.State().Nodes); got != maxNodes {
		t.Errorf("nodes = %d, want %d", got, maxNodes)
	}

	// Done sessions stay paused and do not tick.
	tick := g.Tick()
	g.Submit(Intent{Kind: IntentTogglePause})
	if g.UpdateHeadless() {
		t.Error("UpdateHeadless should keep reporting false once done")
	}
	if !g.Paused() || g.Tick() != tick {
		t.Error("a done session should ignore unpause")
	}
}

func TestIntents_PauseAndSpeed(t *testing.T) {
	cfg := lushConfig(100)
	g := newTestGame(t, cfg, Options{})

	g.Submit(Intent{Kind: IntentTogglePause})
	g.UpdateHeadless()
	if !g.Paused() || g.Tick() != 0 {
		t.Fatalf("paused=%v tick=%d, want paused at 0", g.Paused(), g.Tick())
	}

	tests := []struct {
		in   Intent
		want int
	}{
		{Intent{Kind: IntentSetSpeed, Speed: 100}, cfg.Simulation.MaxSpeed},
		{Intent{Kind: IntentSpeedUp}, cfg.Simulation.MaxSpeed},
		{Intent{Kind: IntentSlowDown}, cfg.Simulation.MaxSpeed - 1},
		{Intent{Kind: IntentSetSpeed, Speed: 0}, 1},
		{Intent{Kind: IntentSlowDown}, 1},
		{Intent{Kind: IntentSpeedUp}, 2},
	}
	for _, tt := range tests {
		g.Submit(tt.in)
		g.UpdateHeadless()
		if got := g.StepsPerUpdate(); got != tt.want {
			t.Errorf("after intent %d: speed = %d, want %d", tt.in.Kind, got, tt.want)
		}
	}

	g.Submit(Intent{Kind: IntentTogglePause})
	g.UpdateHeadless()
	if g.Paused() || g.Tick() != 2 {
		t.Errorf("paused=%v tick=%d, want running at tick 2", g.Paused(), g.Tick())
	}
}

func TestIntents_AddResource(t *testing.T) {
	g := newTestGame(t, lushConfig(100), Options{})
	light := AddResourceIntent(components.Vec(100, 100), components.ResourceLight)

	g.Submit(Intent{Kind: IntentTogglePause})
	g.Submit(light)
	g.UpdateHeadless()
	if got := len(g.State().Resources); got != 2 {
		t.Errorf("resource added while paused: have %d", got)
	}

	// Unpause first, then add in the same update.
	g.Submit(Intent{Kind: IntentTogglePause})
	g.Submit(light)
	g.Submit(AddResourceIntent(components.Vec(200, 100), components.ResourceObstacle))
	g.UpdateHeadless()

	res := g.State().Resources
	if len(res) != 4 {
		t.Fatalf("resources = %d, want 4", len(res))
	}
	if res[3].Kind != components.ResourceObstacle || res[3].Intensity != ObstacleIntensity {
		t.Errorf("unexpected obstacle %+v", res[3])
	}
}

func TestIntents_ForceGrowAndReset(t *testing.T) {
	g := newTestGame(t, lushConfig(100), Options{})
	rec := &countingRecorder{}
	g.AddRecorder(rec)

	g.Submit(Intent{Kind: IntentForceGrow})
	g.UpdateHeadless()
	if rec.count(telemetry.EventGrowth) == 0 {
		t.Fatal("forced growth should reach the added recorder")
	}
	if len(g.State().Nodes) < 2 {
		t.Errorf("forced growth did not add a node")
	}

	for i := 0; i < 20; i++ {
		g.UpdateHeadless()
	}
	g.Submit(Intent{Kind: IntentReset})
	g.UpdateHeadless()

	st := g.State()
	if st.Tick != 1 {
		t.Errorf("tick after reset and one update = %d, want 1", st.Tick)
	}
	if len(st.Resources) != 2 {
		t.Errorf("reset should restore the scenario resources, have %d", len(st.Resources))
	}

	before := rec.count(telemetry.EventGrowth) + rec.count(telemetry.EventBranch)
	g.Submit(Intent{Kind: IntentForceGrow})
	g.UpdateHeadless()
	if after := rec.count(telemetry.EventGrowth) + rec.count(telemetry.EventBranch); after <= before {
		t.Error("recorder should stay attached across reset")
	}
}

func TestStatsCallback(t *testing.T) {
	var windows []telemetry.WindowStats
	g := newTestGame(t, lushConfig(500), Options{
		StatsCallback: func(s telemetry.WindowStats) { windows = append(windows, s) },
	})

	for i := 0; i < 30; i++ {
		g.UpdateHeadless()
	}

	if len(windows) != 3 {
		t.Fatalf("windows = %d, want 3", len(windows))
	}
	for i, w := range windows {
		if want := int64(10 * (i + 1)); w.WindowEndTick != want {
			t.Errorf("window %d ends at %d, want %d", i, w.WindowEndTick, want)
		}
	}
	if last := windows[2]; last.Nodes != len(g.State().Nodes) {
		t.Errorf("last window nodes = %d, want %d", last.Nodes, len(g.State().Nodes))
	}
}

func TestOutputDir(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "run")
	g, err := NewGameWithConfig(lushConfig(500), Options{Seed: 3, OutputDir: dir})
	if err != nil {
		t.Fatal(err)
	}
	for i := 0; i < 25; i++ {
		g.UpdateHeadless()
	}
	g.Unload()

	for _, name := range []string{
		telemetry.ConfigFile, telemetry.WindowsFile, telemetry.PerfFile,
		telemetry.BookmarksFile, telemetry.HierarchyFile,
	} {
		if _, err := os.Stat(filepath.Join(dir, name)); err != nil {
			t.Errorf("missing %s: %v", name, err)
		}
	}
	data, err := os.ReadFile(filepath.Join(dir, "telemetry.csv"))
	if err != nil {
		t.Fatal(err)
	}
	if len(data) == 0 {
		t.Error("telemetry.csv should have rows after two windows")
	}

	hier, err := os.ReadFile(filepath.Join(dir, telemetry.HierarchyFile))
	if err != nil {
		t.Fatal(err)
	}
	// Two windows, root level only unless a collapse happened.
	if rows := strings.Count(strings.TrimSpace(string(hier)), "\n"); rows < 2 {
		t.Errorf("%s has %d rows, want at least one per window", telemetry.HierarchyFile, rows)
	}

	loaded, err := config.Load(filepath.Join(dir, telemetry.ConfigFile))
	if err != nil {
		t.Fatalf("written config does not load: %v", err)
	}
	if loaded.Engine.MaxNodes != 500 {
		t.Errorf("written max_nodes = %d, want 500", loaded.Engine.MaxNodes)
	}
}

func TestStatusLog_NumericAttrs(t *testing.T) {
	var buf bytes.Buffer
	prev := slog.Default()
	slog.SetDefault(slog.New(slog.NewJSONHandler(&buf, nil)))
	t.Cleanup(func() { slog.SetDefault(prev) })

	cfg := lushConfig(500)
	cfg.Simulation.StatusInterval = 5
	g := newTestGame(t, cfg, Options{StepsPerUpdate: 1})
	for i := 0; i < 10; i++ {
		g.UpdateHeadless()
	}

	var ticks []float64
	dec := json.NewDecoder(&buf)
	for {
		var rec map[string]any
		if err := dec.Decode(&rec); errors.Is(err, io.EOF) {
			break
		} else if err != nil {
			t.Fatalf("decoding log: %v", err)
		}
		if rec["msg"] != "status" {
			continue
		}
		for _, key := range []string{"tick", "nodes", "hierarchy", "engines"} {
			if _, ok := rec[key].(float64); !ok {
				t.Errorf("%s = %#v, want a JSON number", key, rec[key])
			}
		}
		if tick, ok := rec["tick"].(float64); ok {
			ticks = append(ticks, tick)
		}
	}

	if len(ticks) != 2 || ticks[0] != 5 || ticks[1] != 10 {
		t.Errorf("status ticks = %v, want [5 10]", ticks)
	}
}
