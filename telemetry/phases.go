package telemetry

// PhaseInfo describes one timed phase of an engine tick for display.
type PhaseInfo struct {
	ID          string // Key in PerfStats maps
	Name        string // Display name
	Description string
}

// PhaseRegistry holds phase metadata in tick order. It keeps the perf panel,
// perf logging and CSV export naming the same phases.
type PhaseRegistry struct {
	phases []PhaseInfo
	byID   map[string]PhaseInfo
}

// NewPhaseRegistry creates a registry with every engine tick phase.
func NewPhaseRegistry() *PhaseRegistry {
	reg := &PhaseRegistry{byID: make(map[string]PhaseInfo)}
	reg.Register(PhaseInfo{ID: PhaseDynamics, Name: "Dynamics", Description: "Coherence, distortion and complexity updates"})
	reg.Register(PhaseInfo{ID: PhaseGrowth, Name: "Growth", Description: "Growth, branching, leaves and flowers"})
	reg.Register(PhaseInfo{ID: PhasePaths, Name: "Paths", Description: "Rebuilds the parent to child index"})
	reg.Register(PhaseInfo{ID: PhaseChildren, Name: "Children", Description: "Ticks nested engines"})
	return reg
}

// Register appends a phase.
func (r *PhaseRegistry) Register(info PhaseInfo) {
	r.phases = append(r.phases, info)
	r.byID[info.ID] = info
}

// Name returns the display name for a phase ID, or the ID itself.
func (r *PhaseRegistry) Name(id string) string {
	if info, ok := r.byID[id]; ok {
		return info.Name
	}
	return id
}

// All returns every phase in tick order.
func (r *PhaseRegistry) All() []PhaseInfo {
	return r.phases
}

// IDs returns every phase ID in tick order.
func (r *PhaseRegistry) IDs() []string {
	ids := make([]string, len(r.phases))
	for i, info := range r.phases {
		ids[i] = info.ID
	}
	return ids
}

// phases is the shared registry used by logging and export.
var phases = NewPhaseRegistry()

// Phases returns the engine tick phase registry.
func Phases() *PhaseRegistry {
	return phases
}
