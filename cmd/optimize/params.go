package main

import (
	"github.com/pthm-cable/cspace/config"
)

// ParamDef defines a single optimizable parameter.
type ParamDef struct {
	Name    string  // Human-readable name
	Path    string  // Config key, printed with the best values
	Min     float64 // Lower bound
	Max     float64 // Upper bound
	Default float64 // Default value
}

// ParamVector holds the set of all optimizable parameters.
type ParamVector struct {
	Defs []ParamDef
}

// NewParamVector creates the standard set of optimizable parameters.
func NewParamVector() *ParamVector {
	return &ParamVector{
		Defs: []ParamDef{
			// Growth
			{Name: "growth_prob", Path: "engine.growth_prob", Min: 0.05, Max: 0.9, Default: 0.3},
			{Name: "branch_prob", Path: "engine.branch_prob", Min: 0.0, Max: 0.5, Default: 0.1},
			{Name: "growth_rate", Path: "engine.growth_rate", Min: 1.0, Max: 20.0, Default: 5.0},
			{Name: "max_energy_distance", Path: "engine.max_energy_distance", Min: 50, Max: 500, Default: 200},
			// Dynamics
			{Name: "alpha", Path: "engine.alpha", Min: 0.02, Max: 1.0, Default: 0.2},
			{Name: "beta", Path: "engine.beta", Min: 0.02, Max: 1.0, Default: 0.3},
			{Name: "d_critical", Path: "engine.d_critical", Min: 2.0, Max: 40.0, Default: 15.0},
			// Tropisms
			{Name: "phototropism", Path: "engine.plant.phototropism_factor", Min: 0.0, Max: 3.0, Default: 1.2},
			{Name: "gravitropism", Path: "engine.plant.gravitropism_factor", Min: 0.0, Max: 2.0, Default: 0.8},
			{Name: "leaf_prob", Path: "engine.plant.leaf_generation_probability", Min: 0.0, Max: 0.5, Default: 0.1},
		},
	}
}

// Dim returns the number of parameters.
func (pv *ParamVector) Dim() int {
	return len(pv.Defs)
}

// Normalize converts raw parameter values to [0,1] range.
func (pv *ParamVector) Normalize(raw []float64) []float64 {
	normalized := make([]float64, len(pv.Defs))
	for i, def := range pv.Defs {
		normalized[i] = (raw[i] - def.Min) / (def.Max - def.Min)
	}
	return normalized
}

// Denormalize converts [0,1] values back to raw parameter values.
func (pv *ParamVector) Denormalize(normalized []float64) []float64 {
	raw := make([]float64, len(pv.Defs))
	for i, def := range pv.Defs {
		raw[i] = def.Min + normalized[i]*(def.Max-def.Min)
	}
	return raw
}

// Clamp ensures all values are within bounds.
func (pv *ParamVector) Clamp(v []float64) []float64 {
	clamped := make([]float64, len(pv.Defs))
	for i, def := range pv.Defs {
		clamped[i] = min(def.Max, max(def.Min, v[i]))
	}
	return clamped
}

// ApplyToConfig writes clamped parameter values into cfg. Order must match
// Defs.
func (pv *ParamVector) ApplyToConfig(cfg *config.Config, values []float64) {
	c := pv.Clamp(values)
	e := &cfg.Engine

	e.GrowthProb = c[0]
	e.BranchProb = c[1]
	e.GrowthRate = c[2]
	e.MaxEnergyDistance = c[3]

	e.Alpha = c[4]
	e.Beta = c[5]
	e.DCritical = c[6]

	e.Plant.PhototropismFactor = c[7]
	e.Plant.GravitropismFactor = c[8]
	e.Plant.LeafGenerationProbability = c[9]
}

// ExtractFromConfig reads current parameter values from cfg.
func (pv *ParamVector) ExtractFromConfig(cfg *config.Config) []float64 {
	e := cfg.Engine
	return []float64{
		e.GrowthProb,
		e.BranchProb,
		e.GrowthRate,
		e.MaxEnergyDistance,
		e.Alpha,
		e.Beta,
		e.DCritical,
		e.Plant.PhototropismFactor,
		e.Plant.GravitropismFactor,
		e.Plant.LeafGenerationProbability,
	}
}
