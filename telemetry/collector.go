package telemetry

import (
	"sync"

	"github.com/pthm-cable/cspace/components"
)

// Collector accumulates growth events within tick windows and produces
// WindowStats. Record is safe for concurrent use so parallel child engines
// can share one collector.
type Collector struct {
	windowDurationTicks int64

	mu sync.Mutex

	// Current window tracking
	windowStartTick int64

	// Event counters for current window, all hierarchy levels
	growths   int
	branches  int
	collapses int
	leaves    int
	flowers   int

	// Root-level counters
	rootCollapses int
	firstCollapse int64 // Tick of the first root collapse, 0 = none yet
}

// NewCollector creates a stats collector flushing every windowTicks ticks.
func NewCollector(windowTicks int) *Collector {
	if windowTicks < 1 {
		windowTicks = 1
	}
	return &Collector{windowDurationTicks: int64(windowTicks)}
}

// Record counts one event.
func (c *Collector) Record(ev Event) {
	c.mu.Lock()
	defer c.mu.Unlock()

	switch ev.Type {
	case EventGrowth:
		c.growths++
	case EventBranch:
		c.branches++
	case EventCollapse:
		c.collapses++
		if ev.Depth == 0 {
			c.rootCollapses++
			if c.firstCollapse == 0 {
				c.firstCollapse = ev.Tick
			}
		}
	case EventLeaf:
		c.leaves++
	case EventFlower:
		c.flowers++
	}
}

// ShouldFlush returns true if enough ticks have passed to flush the window.
func (c *Collector) ShouldFlush(currentTick int64) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return currentTick-c.windowStartTick >= c.windowDurationTicks
}

// FirstCollapseTick returns the tick of the first root-level singularity.
func (c *Collector) FirstCollapseTick() (int64, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.firstCollapse, c.firstCollapse != 0
}

// Snapshot is the hierarchy state sampled at window end.
type Snapshot struct {
	Nodes         []components.GrowthNode // Root engine nodes
	Engines       int                     // Engines in the hierarchy, including the root
	HierarchySize int                     // Live nodes across all engines
	MaxDepth      int
	MaxNodes      int
	TotalLeaves   int
	TotalFlowers  int
}

// Flush produces a WindowStats and resets counters for the next window.
func (c *Collector) Flush(currentTick int64, snap Snapshot) WindowStats {
	c.mu.Lock()
	defer c.mu.Unlock()

	energies := make([]float64, len(snap.Nodes))
	coherences := make([]float64, len(snap.Nodes))
	distortions := make([]float64, len(snap.Nodes))
	var collapsed int
	for i, n := range snap.Nodes {
		energies[i] = n.Energy
		coherences[i] = n.Coherence
		distortions[i] = n.Distortion
		if n.PureTime() {
			collapsed++
		}
	}

	eMean, eP10, eP50, eP90 := ComputeStats(energies)
	hMean, hP10, hP50, hP90 := ComputeStats(coherences)
	dMean, _, dP50, dP90 := ComputeStats(distortions)

	var fill float64
	if snap.MaxNodes > 0 {
		fill = float64(len(snap.Nodes)) / float64(snap.MaxNodes)
	}

	stats := WindowStats{
		WindowStartTick: c.windowStartTick,
		WindowEndTick:   currentTick,

		Nodes:         len(snap.Nodes),
		Fill:          fill,
		Engines:       snap.Engines,
		HierarchySize: snap.HierarchySize,
		MaxDepth:      snap.MaxDepth,
		PureTimeNodes: collapsed,

		Growths:       c.growths,
		Branches:      c.branches,
		Collapses:     c.collapses,
		RootCollapses: c.rootCollapses,
		Leaves:        c.leaves,
		Flowers:       c.flowers,
		TotalLeaves:   snap.TotalLeaves,
		TotalFlowers:  snap.TotalFlowers,

		EnergyMean: eMean,
		EnergyP10:  eP10,
		EnergyP50:  eP50,
		EnergyP90:  eP90,

		CoherenceMean: hMean,
		CoherenceP10:  hP10,
		CoherenceP50:  hP50,
		CoherenceP90:  hP90,

		DistortionMean: dMean,
		DistortionP50:  dP50,
		DistortionP90:  dP90,
	}

	// Reset for next window
	c.windowStartTick = currentTick
	c.growths = 0
	c.branches = 0
	c.collapses = 0
	c.rootCollapses = 0
	c.leaves = 0
	c.flowers = 0

	return stats
}

// WindowDurationTicks returns the number of ticks per window.
func (c *Collector) WindowDurationTicks() int64 {
	return c.windowDurationTicks
}
