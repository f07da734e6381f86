package telemetry

import (
	"log/slog"
	"sort"

	"gonum.org/v1/gonum/stat"
)

// WindowStats holds aggregated statistics for a tick window.
type WindowStats struct {
	WindowStartTick int64 `csv:"-"`
	WindowEndTick   int64 `csv:"window_end"`

	// Hierarchy shape at window end
	Nodes         int     `csv:"nodes"`
	Fill          float64 `csv:"fill"` // Root nodes / max_nodes
	Engines       int     `csv:"engines"`
	HierarchySize int     `csv:"hierarchy_size"`
	MaxDepth      int     `csv:"max_depth"`
	PureTimeNodes int     `csv:"pure_time_nodes"`

	// Events during window
	Growths       int `csv:"growths"`
	Branches      int `csv:"branches"`
	Collapses     int `csv:"collapses"`
	RootCollapses int `csv:"root_collapses"`
	Leaves        int `csv:"leaves"`
	Flowers       int `csv:"flowers"`

	// Cumulative records at window end
	TotalLeaves  int `csv:"total_leaves"`
	TotalFlowers int `csv:"total_flowers"`

	// Root node distributions (sampled at window end)
	EnergyMean float64 `csv:"energy_mean"`
	EnergyP10  float64 `csv:"energy_p10"`
	EnergyP50  float64 `csv:"energy_p50"`
	EnergyP90  float64 `csv:"energy_p90"`

	CoherenceMean float64 `csv:"coherence_mean"`
	CoherenceP10  float64 `csv:"coherence_p10"`
	CoherenceP50  float64 `csv:"coherence_p50"`
	CoherenceP90  float64 `csv:"coherence_p90"`

	DistortionMean float64 `csv:"distortion_mean"`
	DistortionP50  float64 `csv:"distortion_p50"`
	DistortionP90  float64 `csv:"distortion_p90"`
}

// Percentile calculates the p-th percentile of a sorted slice.
// p should be in [0, 1]. Returns 0 if slice is empty.
func Percentile(sorted []float64, p float64) float64 {
	n := len(sorted)
	if n == 0 {
		return 0
	}
	if p <= 0 {
		return sorted[0]
	}
	if p >= 1 {
		return sorted[n-1]
	}

	// Linear interpolation
	idx := p * float64(n-1)
	lo := int(idx)
	hi := lo + 1
	if hi >= n {
		return sorted[n-1]
	}

	frac := idx - float64(lo)
	return sorted[lo]*(1-frac) + sorted[hi]*frac
}

// ComputeStats calculates mean and percentiles of values.
func ComputeStats(values []float64) (mean, p10, p50, p90 float64) {
	if len(values) == 0 {
		return 0, 0, 0, 0
	}

	mean = stat.Mean(values, nil)

	sorted := make([]float64, len(values))
	copy(sorted, values)
	sort.Float64s(sorted)

	p10 = Percentile(sorted, 0.10)
	p50 = Percentile(sorted, 0.50)
	p90 = Percentile(sorted, 0.90)

	return mean, p10, p50, p90
}

// Spread returns the mean and sample standard deviation of values. A single
// value has zero spread.
func Spread(values []float64) (mean, std float64) {
	switch len(values) {
	case 0:
		return 0, 0
	case 1:
		return values[0], 0
	}
	return stat.MeanStdDev(values, nil)
}

// LogValue implements slog.LogValuer for structured logging.
func (s WindowStats) LogValue() slog.Value {
	return slog.GroupValue(
		slog.Int64("window_start", s.WindowStartTick),
		slog.Int64("window_end", s.WindowEndTick),
		slog.Int("nodes", s.Nodes),
		slog.Float64("fill", s.Fill),
		slog.Int("engines", s.Engines),
		slog.Int("hierarchy_size", s.HierarchySize),
		slog.Int("max_depth", s.MaxDepth),
		slog.Int("pure_time_nodes", s.PureTimeNodes),
		slog.Int("growths", s.Growths),
		slog.Int("branches", s.Branches),
		slog.Int("collapses", s.Collapses),
		slog.Int("root_collapses", s.RootCollapses),
		slog.Int("leaves", s.Leaves),
		slog.Int("flowers", s.Flowers),
		slog.Float64("energy_mean", s.EnergyMean),
		slog.Float64("energy_p50", s.EnergyP50),
		slog.Float64("coherence_mean", s.CoherenceMean),
		slog.Float64("distortion_mean", s.DistortionMean),
	)
}

// LogStats logs the window stats using slog.
func (s WindowStats) LogStats() {
	slog.Info("stats",
		"window_end", s.WindowEndTick,
		"nodes", s.Nodes,
		"fill", s.Fill,
		"engines", s.Engines,
		"hierarchy_size", s.HierarchySize,
		"max_depth", s.MaxDepth,
		"pure_time_nodes", s.PureTimeNodes,
		"growths", s.Growths,
		"branches", s.Branches,
		"collapses", s.Collapses,
		"root_collapses", s.RootCollapses,
		"leaves", s.Leaves,
		"flowers", s.Flowers,
		"total_leaves", s.TotalLeaves,
		"total_flowers", s.TotalFlowers,
		"energy_mean", s.EnergyMean,
		"energy_p10", s.EnergyP10,
		"energy_p50", s.EnergyP50,
		"energy_p90", s.EnergyP90,
		"coherence_mean", s.CoherenceMean,
		"coherence_p10", s.CoherenceP10,
		"coherence_p50", s.CoherenceP50,
		"coherence_p90", s.CoherenceP90,
		"distortion_mean", s.DistortionMean,
		"distortion_p50", s.DistortionP50,
		"distortion_p90", s.DistortionP90,
	)
}
