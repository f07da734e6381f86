// Package telemetry provides growth statistics, bookmarking, performance
// timing and CSV output.
package telemetry

import "github.com/pthm-cable/cspace/components"

// EventType identifies telemetry events.
type EventType uint8

const (
	EventGrowth EventType = iota
	EventBranch
	EventCollapse
	EventLeaf
	EventFlower
)

// String returns the event name.
func (t EventType) String() string {
	switch t {
	case EventGrowth:
		return "growth"
	case EventBranch:
		return "branch"
	case EventCollapse:
		return "collapse"
	case EventLeaf:
		return "leaf"
	case EventFlower:
		return "flower"
	}
	return "unknown"
}

// Event represents a single telemetry event.
type Event struct {
	Type     EventType
	Tick     int64
	Depth    int    // Engine depth in the hierarchy, 0 = root
	NodeID   uint64 // New node for growth/branch/leaf, affected node otherwise
	ParentID uint64 // for growth/branch events
	Position components.Vector2D
}

// NewGrowthEvent creates a growth event.
func NewGrowthEvent(tick int64, depth int, child, parent uint64, pos components.Vector2D) Event {
	return Event{Type: EventGrowth, Tick: tick, Depth: depth, NodeID: child, ParentID: parent, Position: pos}
}

// NewBranchEvent creates a branch event.
func NewBranchEvent(tick int64, depth int, child, parent uint64, pos components.Vector2D) Event {
	return Event{Type: EventBranch, Tick: tick, Depth: depth, NodeID: child, ParentID: parent, Position: pos}
}

// NewCollapseEvent creates a singularity collapse event.
func NewCollapseEvent(tick int64, depth int, node uint64, pos components.Vector2D) Event {
	return Event{Type: EventCollapse, Tick: tick, Depth: depth, NodeID: node, Position: pos}
}

// NewLeafEvent creates a leaf event at the new node's position.
func NewLeafEvent(tick int64, depth int, node uint64, pos components.Vector2D) Event {
	return Event{Type: EventLeaf, Tick: tick, Depth: depth, NodeID: node, Position: pos}
}

// NewFlowerEvent creates a flowering event at the parent's position.
func NewFlowerEvent(tick int64, depth int, node uint64, pos components.Vector2D) Event {
	return Event{Type: EventFlower, Tick: tick, Depth: depth, NodeID: node, Position: pos}
}
