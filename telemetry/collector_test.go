package telemetry

import (
	"math"
	"sync"
	"testing"

	"github.com/pthm-cable/cspace/components"
)

func TestCollector_FlushCountsAndResets(t *testing.T) {
	c := NewCollector(10)
	pos := components.Vec(1, 2)

	c.Record(NewGrowthEvent(1, 0, 2, 1, pos))
	c.Record(NewGrowthEvent(2, 1, 3, 1, pos))
	c.Record(NewBranchEvent(3, 0, 4, 2, pos))
	c.Record(NewLeafEvent(3, 0, 4, pos))
	c.Record(NewFlowerEvent(4, 0, 2, pos))
	c.Record(NewCollapseEvent(5, 1, 3, pos))

	if c.ShouldFlush(9) {
		t.Error("ShouldFlush(9) = true before the window ends")
	}
	if !c.ShouldFlush(10) {
		t.Error("ShouldFlush(10) = false at the window end")
	}

	nodes := []components.GrowthNode{
		{Energy: 0.5, Coherence: 1, Distortion: 2},
		{Energy: 1.0, Coherence: 0, Distortion: 0},
	}
	stats := c.Flush(10, Snapshot{
		Nodes:         nodes,
		Engines:       2,
		HierarchySize: 5,
		MaxDepth:      1,
		MaxNodes:      4,
		TotalLeaves:   1,
		TotalFlowers:  1,
	})

	if stats.Growths != 2 || stats.Branches != 1 || stats.Leaves != 1 || stats.Flowers != 1 {
		t.Errorf("event counts = %d/%d/%d/%d, want 2/1/1/1", stats.Growths, stats.Branches, stats.Leaves, stats.Flowers)
	}
	if stats.Collapses != 1 || stats.RootCollapses != 0 {
		t.Errorf("collapses = %d root = %d, want 1 and 0", stats.Collapses, stats.RootCollapses)
	}
	if stats.Nodes != 2 || math.Abs(stats.Fill-0.5) > 1e-9 {
		t.Errorf("nodes = %d fill = %v, want 2 and 0.5", stats.Nodes, stats.Fill)
	}
	if stats.PureTimeNodes != 1 {
		t.Errorf("PureTimeNodes = %d, want 1", stats.PureTimeNodes)
	}
	if math.Abs(stats.EnergyMean-0.75) > 1e-9 {
		t.Errorf("EnergyMean = %v, want 0.75", stats.EnergyMean)
	}
	if stats.WindowStartTick != 0 || stats.WindowEndTick != 10 {
		t.Errorf("window = [%d, %d], want [0, 10]", stats.WindowStartTick, stats.WindowEndTick)
	}

	next := c.Flush(20, Snapshot{})
	if next.Growths != 0 || next.Collapses != 0 || next.WindowStartTick != 10 {
		t.Errorf("counters not reset: %+v", next)
	}
}

func TestCollector_FirstCollapseTick(t *testing.T) {
	c := NewCollector(10)
	if _, ok := c.FirstCollapseTick(); ok {
		t.Fatal("FirstCollapseTick reported a collapse before any")
	}

	c.Record(NewCollapseEvent(7, 2, 1, components.Vector2D{})) // Nested: ignored
	if _, ok := c.FirstCollapseTick(); ok {
		t.Fatal("nested collapse counted as root")
	}

	c.Record(NewCollapseEvent(12, 0, 1, components.Vector2D{}))
	c.Record(NewCollapseEvent(30, 0, 2, components.Vector2D{}))
	tick, ok := c.FirstCollapseTick()
	if !ok || tick != 12 {
		t.Errorf("FirstCollapseTick = (%d, %v), want (12, true)", tick, ok)
	}
}

func TestCollector_ConcurrentRecord(t *testing.T) {
	c := NewCollector(1)
	var wg sync.WaitGroup
	for w := 0; w < 8; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := 0; i < 100; i++ {
				c.Record(NewGrowthEvent(int64(i), 1, uint64(i), 0, components.Vector2D{}))
			}
		}()
	}
	wg.Wait()

	if got := c.Flush(1, Snapshot{}).Growths; got != 800 {
		t.Errorf("Growths = %d, want 800", got)
	}
}

func TestNewCollector_MinimumWindow(t *testing.T) {
	if got := NewCollector(0).WindowDurationTicks(); got != 1 {
		t.Errorf("WindowDurationTicks = %d, want 1", got)
	}
}
