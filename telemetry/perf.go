package telemetry

import (
	"log/slog"
	"maps"
	"slices"
	"strconv"
	"sync"
	"time"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"
)

// Phase names for one engine tick.
const (
	PhaseDynamics = "dynamics"
	PhaseGrowth   = "growth"
	PhasePaths    = "paths"
	PhaseChildren = "children"
)

// tickTiming is what one root tick cost. Levels holds the self time of
// nested engines, summed per depth; with parallel children it is CPU time
// and can exceed the children phase.
type tickTiming struct {
	total  time.Duration
	phases map[string]time.Duration
	levels map[int]time.Duration
}

// PerfCollector times root engine ticks by phase and nested engines by
// depth over a rolling window of ticks. Only the root engine drives
// StartTick, StartPhase and EndTick; engines at any depth may call
// ObserveLevel concurrently while the tick is open.
type PerfCollector struct {
	mu  sync.Mutex
	now func() time.Time

	ring []tickTiming
	head int
	full bool

	open       tickTiming
	tickStart  time.Time
	phase      string
	phaseStart time.Time

	lastFrame time.Time
	frame     time.Duration
}

// NewPerfCollector keeps the last window ticks. A window below 1 falls back
// to 60.
func NewPerfCollector(window int) *PerfCollector {
	if window < 1 {
		window = 60
	}
	return &PerfCollector{
		now:  time.Now,
		ring: make([]tickTiming, window),
	}
}

// StartTick opens a root tick.
func (p *PerfCollector) StartTick() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.tickStart = p.now()
	p.open = tickTiming{
		phases: make(map[string]time.Duration, 4),
		levels: make(map[int]time.Duration),
	}
	p.phase = ""
}

// StartPhase closes the running phase, if any, and starts timing name.
func (p *PerfCollector) StartPhase(name string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.switchPhase(p.now(), name)
}

func (p *PerfCollector) switchPhase(at time.Time, name string) {
	if p.phase != "" {
		p.open.phases[p.phase] += at.Sub(p.phaseStart)
	}
	p.phase = name
	p.phaseStart = at
}

// ObserveLevel adds d to the self time of engines at depth.
func (p *PerfCollector) ObserveLevel(depth int, d time.Duration) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.open.levels == nil {
		return
	}
	p.open.levels[depth] += d
}

// EndTick closes the tick and pushes it into the window.
func (p *PerfCollector) EndTick() {
	p.mu.Lock()
	defer p.mu.Unlock()
	at := p.now()
	p.switchPhase(at, "")
	p.open.total = at.Sub(p.tickStart)

	p.ring[p.head] = p.open
	p.head = (p.head + 1) % len(p.ring)
	if p.head == 0 {
		p.full = true
	}
	p.open = tickTiming{}
}

// RecordFrame marks a rendered frame. The gap to the previous call is the
// frame time.
func (p *PerfCollector) RecordFrame() {
	p.mu.Lock()
	defer p.mu.Unlock()
	at := p.now()
	if !p.lastFrame.IsZero() {
		p.frame = at.Sub(p.lastFrame)
	}
	p.lastFrame = at
}

// PerfStats aggregates the window.
type PerfStats struct {
	Ticks           int // Ticks in the window
	AvgTickDuration time.Duration
	MinTickDuration time.Duration
	MaxTickDuration time.Duration
	TicksPerSecond  float64

	PhaseAvg map[string]time.Duration
	PhasePct map[string]float64 // Share of the average tick, 0-100

	// LevelAvg is the mean per-tick self time of nested engines by depth.
	LevelAvg map[int]time.Duration

	FrameDuration time.Duration
	FPS           float64
}

// Nested returns the summed per-tick self time of every nested level.
func (s PerfStats) Nested() time.Duration {
	var total time.Duration
	for _, d := range s.LevelAvg {
		total += d
	}
	return total
}

// Levels returns the timed depths in ascending order.
func (s PerfStats) Levels() []int {
	return slices.Sorted(maps.Keys(s.LevelAvg))
}

// Stats computes means and extremes over the window.
func (p *PerfCollector) Stats() PerfStats {
	p.mu.Lock()
	defer p.mu.Unlock()

	s := PerfStats{
		PhaseAvg:      make(map[string]time.Duration),
		PhasePct:      make(map[string]float64),
		LevelAvg:      make(map[int]time.Duration),
		FrameDuration: p.frame,
	}
	if p.frame > 0 {
		s.FPS = float64(time.Second) / float64(p.frame)
	}

	window := p.ring[:p.head]
	if p.full {
		window = p.ring
	}
	if len(window) == 0 {
		return s
	}
	s.Ticks = len(window)

	totals := make([]float64, len(window))
	phaseSum := make(map[string]float64)
	levelSum := make(map[int]float64)
	for i, t := range window {
		totals[i] = float64(t.total)
		for name, d := range t.phases {
			phaseSum[name] += float64(d)
		}
		for depth, d := range t.levels {
			levelSum[depth] += float64(d)
		}
	}

	n := float64(len(window))
	mean := stat.Mean(totals, nil)
	s.AvgTickDuration = time.Duration(mean)
	s.MinTickDuration = time.Duration(floats.Min(totals))
	s.MaxTickDuration = time.Duration(floats.Max(totals))
	if mean > 0 {
		s.TicksPerSecond = float64(time.Second) / mean
	}
	for name, sum := range phaseSum {
		avg := sum / n
		s.PhaseAvg[name] = time.Duration(avg)
		if mean > 0 {
			s.PhasePct[name] = avg / mean * 100
		}
	}
	for depth, sum := range levelSum {
		s.LevelAvg[depth] = time.Duration(sum / n)
	}
	return s
}

// LogStats logs the window at info level.
func (s PerfStats) LogStats() {
	slog.Info("perf", "timing", s)
}

// LogValue implements slog.LogValuer. Phases follow tick order; nested
// levels are logged as depth_N_us.
func (s PerfStats) LogValue() slog.Value {
	attrs := []slog.Attr{
		slog.Int("ticks", s.Ticks),
		slog.Int64("avg_tick_us", s.AvgTickDuration.Microseconds()),
		slog.Int64("max_tick_us", s.MaxTickDuration.Microseconds()),
		slog.Float64("ticks_per_sec", s.TicksPerSecond),
	}
	if s.FPS > 0 {
		attrs = append(attrs, slog.Float64("fps", s.FPS))
	}
	for _, id := range phases.IDs() {
		if pct, ok := s.PhasePct[id]; ok {
			attrs = append(attrs, slog.Float64(id+"_pct", pct))
		}
	}
	for _, depth := range s.Levels() {
		attrs = append(attrs, slog.Int64(levelKey(depth), s.LevelAvg[depth].Microseconds()))
	}
	return slog.GroupValue(attrs...)
}

func levelKey(depth int) string {
	return "depth_" + strconv.Itoa(depth) + "_us"
}

// PerfRecord is one perf.csv row.
type PerfRecord struct {
	WindowEnd    int64   `csv:"window_end"`
	AvgTickUS    int64   `csv:"avg_tick_us"`
	MinTickUS    int64   `csv:"min_tick_us"`
	MaxTickUS    int64   `csv:"max_tick_us"`
	TicksPerSec  float64 `csv:"ticks_per_sec"`
	FPS          float64 `csv:"fps"`
	DynamicsPct  float64 `csv:"dynamics_pct"`
	GrowthPct    float64 `csv:"growth_pct"`
	PathsPct     float64 `csv:"paths_pct"`
	ChildrenPct  float64 `csv:"children_pct"`
	NestedUS     int64   `csv:"nested_us"`
	DeepestLevel int     `csv:"deepest_timed"` // Deepest level with recorded time
}

// Record flattens s for perf.csv.
func (s PerfStats) Record(windowEnd int64) PerfRecord {
	r := PerfRecord{
		WindowEnd:   windowEnd,
		AvgTickUS:   s.AvgTickDuration.Microseconds(),
		MinTickUS:   s.MinTickDuration.Microseconds(),
		MaxTickUS:   s.MaxTickDuration.Microseconds(),
		TicksPerSec: s.TicksPerSecond,
		FPS:         s.FPS,
		DynamicsPct: s.PhasePct[PhaseDynamics],
		GrowthPct:   s.PhasePct[PhaseGrowth],
		PathsPct:    s.PhasePct[PhasePaths],
		ChildrenPct: s.PhasePct[PhaseChildren],
		NestedUS:    s.Nested().Microseconds(),
	}
	if levels := s.Levels(); len(levels) > 0 {
		r.DeepestLevel = levels[len(levels)-1]
	}
	return r
}
