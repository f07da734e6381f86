package engine

import (
	"slices"

	"github.com/pthm-cable/cspace/components"
)

// State is a deep-copied, read-only view of an engine and its descendants.
// Mutating a State never affects the engine.
type State struct {
	Tick      int64
	Depth     int
	Nodes     []components.GrowthNode
	Resources []components.ResourcePoint
	Paths     map[uint64][]uint64
	Children  []State
	Leaves    []components.Vector2D
	Flowers   []components.Vector2D
}

// State exports the engine hierarchy.
func (e *Engine) State() State {
	paths := make(map[uint64][]uint64, len(e.paths))
	for parent, ids := range e.paths {
		paths[parent] = slices.Clone(ids)
	}

	s := State{
		Tick:      e.tick,
		Depth:     e.depth,
		Nodes:     slices.Clone(e.nodes),
		Resources: slices.Clone(e.field.Resources),
		Paths:     paths,
		Leaves:    slices.Clone(e.leaves),
		Flowers:   slices.Clone(e.flowers),
	}
	if len(e.children) > 0 {
		s.Children = make([]State, len(e.children))
		for i, c := range e.children {
			s.Children[i] = c.State()
		}
	}
	return s
}

// Node looks up a node by ID.
func (s *State) Node(id uint64) (components.GrowthNode, bool) {
	for _, n := range s.Nodes {
		if n.ID == id {
			return n, true
		}
	}
	return components.GrowthNode{}, false
}

// Walk visits s and every descendant state depth-first.
func (s *State) Walk(fn func(*State)) {
	fn(s)
	for i := range s.Children {
		s.Children[i].Walk(fn)
	}
}

// EngineCount returns the number of engines in the hierarchy, including s.
func (s *State) EngineCount() int {
	count := 0
	s.Walk(func(*State) { count++ })
	return count
}

// HierarchySize returns the total live node count across the hierarchy.
func (s *State) HierarchySize() int {
	total := 0
	s.Walk(func(st *State) { total += len(st.Nodes) })
	return total
}

// MaxDepth returns the deepest engine level in the hierarchy.
func (s *State) MaxDepth() int {
	deepest := s.Depth
	s.Walk(func(st *State) { deepest = max(deepest, st.Depth) })
	return deepest
}
