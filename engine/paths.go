package engine

// rebuildPaths derives the parent -> children index from the node list. A
// parent that has been evicted by truncation still keys its surviving
// children.
func (e *Engine) rebuildPaths() {
	paths := make(map[uint64][]uint64, len(e.nodes))
	for i := range e.nodes {
		n := &e.nodes[i]
		if parent, ok := n.Parent(); ok {
			paths[parent] = append(paths[parent], n.ID)
		}
	}
	e.paths = paths
}

// Children returns the IDs of the live children of parent in node order.
func (e *Engine) Children(parent uint64) []uint64 {
	ids := e.paths[parent]
	if len(ids) == 0 {
		return nil
	}
	out := make([]uint64, len(ids))
	copy(out, ids)
	return out
}
