// Package config provides configuration loading and access for the simulation.
package config

import (
	_ "embed"
	"errors"
	"fmt"
	"os"
	"slices"

	"gopkg.in/yaml.v3"

	"github.com/pthm-cable/cspace/components"
)

//go:embed defaults.yaml
var defaultsYAML []byte

// ErrInvalidConfig is wrapped by every validation failure.
var ErrInvalidConfig = errors.New("invalid config")

// Model names accepted by EngineConfig.Model.
const (
	ModelBase  = "base"
	ModelPlant = "plant"
)

// Config holds all simulation configuration parameters.
type Config struct {
	Screen     ScreenConfig     `yaml:"screen"`
	World      WorldConfig      `yaml:"world"`
	Engine     EngineConfig     `yaml:"engine"`
	Simulation SimulationConfig `yaml:"simulation"`
	Scenario   ScenarioConfig   `yaml:"scenario"`
	Telemetry  TelemetryConfig  `yaml:"telemetry"`

	// Derived values computed after loading
	Derived DerivedConfig `yaml:"-"`
}

// ScreenConfig holds display settings.
type ScreenConfig struct {
	Width     int `yaml:"width"`
	Height    int `yaml:"height"`
	TargetFPS int `yaml:"target_fps"`
}

// WorldConfig holds the growth field dimensions.
type WorldConfig struct {
	Width  int `yaml:"width"`  // Field width (0 = use screen width)
	Height int `yaml:"height"` // Field height (0 = use screen height)
}

// EngineConfig holds the growth engine parameters. Child engines spawned by a
// singularity reuse their parent's EngineConfig unchanged.
type EngineConfig struct {
	Model string `yaml:"model"` // "base" (manifold attention) or "plant" (tropisms)

	Alpha             float64 `yaml:"alpha"`               // Coherence decay rate
	Beta              float64 `yaml:"beta"`                // Distortion/temporal growth rate
	Epsilon           float64 `yaml:"epsilon"`             // Division guard
	DCritical         float64 `yaml:"d_critical"`          // Singularity threshold
	GrowthRate        float64 `yaml:"growth_rate"`         // Base step length
	MaxEnergyDistance float64 `yaml:"max_energy_distance"` // Light falloff radius
	MaxNodes          int     `yaml:"max_nodes"`           // Live node cap per engine
	GrowthProb        float64 `yaml:"growth_prob"`
	BranchProb        float64 `yaml:"branch_prob"`
	Lambda            float64 `yaml:"lambda"` // Attention decay

	ParallelChildren bool `yaml:"parallel_children"` // Tick child engines concurrently
	MaxDepth         int  `yaml:"max_depth"`         // Hierarchy depth cap (0 = unlimited)

	Plant PlantConfig `yaml:"plant"`
}

// PlantConfig holds the plant-model extras.
type PlantConfig struct {
	TropismStrength           float64 `yaml:"tropism_strength"`    // Scales direction jitter
	PhototropismFactor        float64 `yaml:"phototropism_factor"` // Light-seeking weight
	GravitropismFactor        float64 `yaml:"gravitropism_factor"` // Upward bias of main stems
	WaterConsumption          float64 `yaml:"water_consumption"`
	WaterThreshold            float64 `yaml:"water_threshold"` // Minimum water to grow
	LeafEnergyContribution    float64 `yaml:"leaf_energy_contribution"`
	FlowerEnergyThreshold     float64 `yaml:"flower_energy_threshold"`
	BranchAngleVariance       float64 `yaml:"branch_angle_variance"` // Radians
	LeafGenerationProbability float64 `yaml:"leaf_generation_probability"`
}

// SimulationConfig holds driver-level run settings.
type SimulationConfig struct {
	StepsPerUpdate int `yaml:"steps_per_update"` // Ticks per frame (speed)
	MaxSpeed       int `yaml:"max_speed"`        // Upper bound for the speed control
	StatusInterval int `yaml:"status_interval"`  // Ticks between status log lines
}

// ScenarioConfig describes the initial environment.
type ScenarioConfig struct {
	SeedX         float64          `yaml:"seed_x"` // Seed position (negative = derived)
	SeedY         float64          `yaml:"seed_y"`
	InitialEnergy float64          `yaml:"initial_energy"`
	Resources     []ResourceConfig `yaml:"resources"`
}

// ResourceConfig places one resource point.
type ResourceConfig struct {
	X         float64 `yaml:"x"`
	Y         float64 `yaml:"y"`
	Intensity float64 `yaml:"intensity"`
	Kind      string  `yaml:"kind"`
}

// TelemetryConfig holds telemetry parameters.
type TelemetryConfig struct {
	StatsWindow         int `yaml:"stats_window"` // Ticks per stats window
	BookmarkHistorySize int `yaml:"bookmark_history_size"`
	PerfCollectorWindow int `yaml:"perf_collector_window"`
}

// DerivedConfig holds computed values derived from the loaded config.
type DerivedConfig struct {
	WorldW int     // Effective field width
	WorldH int     // Effective field height
	SeedX  float64 // Effective seed position
	SeedY  float64
}

// global holds the loaded configuration.
var global *Config

// Init loads configuration from the given path, or uses embedded defaults if path is empty.
// Must be called before Cfg().
func Init(path string) error {
	cfg, err := Load(path)
	if err != nil {
		return err
	}
	global = cfg
	return nil
}

// MustInit is like Init but panics on error.
func MustInit(path string) {
	if err := Init(path); err != nil {
		panic(fmt.Sprintf("config: failed to initialize: %v", err))
	}
}

// Cfg returns the global configuration. Panics if Init was not called.
func Cfg() *Config {
	if global == nil {
		panic("config: Cfg() called before Init()")
	}
	return global
}

// Defaults returns a fresh copy of the embedded defaults.
func Defaults() *Config {
	cfg, err := Load("")
	if err != nil {
		panic(fmt.Sprintf("config: embedded defaults are invalid: %v", err))
	}
	return cfg
}

// Clone returns a deep copy of c.
func (c *Config) Clone() *Config {
	out := *c
	out.Scenario.Resources = slices.Clone(c.Scenario.Resources)
	return &out
}

// Refresh recomputes derived values and validates c after fields were
// changed in place.
func (c *Config) Refresh() error {
	c.computeDerived()
	return c.Validate()
}

// Load loads configuration from a YAML file, merging with embedded defaults.
// If path is empty, only embedded defaults are used.
func Load(path string) (*Config, error) {
	cfg := &Config{}
	if err := yaml.Unmarshal(defaultsYAML, cfg); err != nil {
		return nil, fmt.Errorf("parsing embedded defaults: %w", err)
	}

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("reading config file: %w", err)
		}
		// Unmarshal into same struct - only overwrites fields present in file
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parsing config file: %w", err)
		}
	}

	cfg.computeDerived()

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// computeDerived calculates values derived from loaded config.
func (c *Config) computeDerived() {
	// Field dimensions default to screen size if not specified
	c.Derived.WorldW = c.World.Width
	if c.Derived.WorldW == 0 {
		c.Derived.WorldW = c.Screen.Width
	}
	c.Derived.WorldH = c.World.Height
	if c.Derived.WorldH == 0 {
		c.Derived.WorldH = c.Screen.Height
	}

	// Seed defaults to bottom center
	c.Derived.SeedX = c.Scenario.SeedX
	if c.Derived.SeedX < 0 {
		c.Derived.SeedX = float64(c.Derived.WorldW / 2)
	}
	c.Derived.SeedY = c.Scenario.SeedY
	if c.Derived.SeedY < 0 {
		c.Derived.SeedY = float64(c.Derived.WorldH - 50)
	}
}

// Validate checks the whole configuration.
func (c *Config) Validate() error {
	if c.Derived.WorldW <= 0 || c.Derived.WorldH <= 0 {
		return fmt.Errorf("%w: world size %dx%d must be positive", ErrInvalidConfig, c.Derived.WorldW, c.Derived.WorldH)
	}
	if err := c.Engine.Validate(); err != nil {
		return err
	}
	if c.Simulation.StepsPerUpdate < 1 {
		return fmt.Errorf("%w: simulation.steps_per_update must be >= 1", ErrInvalidConfig)
	}
	if c.Telemetry.StatsWindow < 1 {
		return fmt.Errorf("%w: telemetry.stats_window must be >= 1", ErrInvalidConfig)
	}
	for i, r := range c.Scenario.Resources {
		if _, err := components.ParseResourceKind(r.Kind); err != nil {
			return fmt.Errorf("%w: scenario.resources[%d]: %v", ErrInvalidConfig, i, err)
		}
		if r.Intensity <= 0 || r.Intensity > 1 {
			return fmt.Errorf("%w: scenario.resources[%d] intensity %v outside (0, 1]", ErrInvalidConfig, i, r.Intensity)
		}
	}
	return nil
}

// Validate checks engine parameters. Mid-run changes are not supported, so
// this is the only place parameters are checked.
func (e EngineConfig) Validate() error {
	if e.Model != ModelBase && e.Model != ModelPlant {
		return fmt.Errorf("%w: engine.model %q (want %q or %q)", ErrInvalidConfig, e.Model, ModelBase, ModelPlant)
	}
	if e.MaxNodes < 1 {
		return fmt.Errorf("%w: engine.max_nodes must be >= 1, got %d", ErrInvalidConfig, e.MaxNodes)
	}
	if e.MaxDepth < 0 {
		return fmt.Errorf("%w: engine.max_depth must be >= 0, got %d", ErrInvalidConfig, e.MaxDepth)
	}

	positive := []struct {
		name string
		v    float64
	}{
		{"alpha", e.Alpha},
		{"beta", e.Beta},
		{"epsilon", e.Epsilon},
		{"d_critical", e.DCritical},
		{"growth_rate", e.GrowthRate},
		{"max_energy_distance", e.MaxEnergyDistance},
		{"lambda", e.Lambda},
	}
	for _, p := range positive {
		if !(p.v > 0) {
			return fmt.Errorf("%w: engine.%s must be positive, got %v", ErrInvalidConfig, p.name, p.v)
		}
	}

	probs := []struct {
		name string
		v    float64
	}{
		{"growth_prob", e.GrowthProb},
		{"branch_prob", e.BranchProb},
		{"plant.leaf_generation_probability", e.Plant.LeafGenerationProbability},
		{"plant.water_threshold", e.Plant.WaterThreshold},
	}
	for _, p := range probs {
		if p.v < 0 || p.v > 1 {
			return fmt.Errorf("%w: engine.%s must be in [0, 1], got %v", ErrInvalidConfig, p.name, p.v)
		}
	}

	nonNegative := []struct {
		name string
		v    float64
	}{
		{"plant.tropism_strength", e.Plant.TropismStrength},
		{"plant.phototropism_factor", e.Plant.PhototropismFactor},
		{"plant.gravitropism_factor", e.Plant.GravitropismFactor},
		{"plant.water_consumption", e.Plant.WaterConsumption},
		{"plant.leaf_energy_contribution", e.Plant.LeafEnergyContribution},
		{"plant.flower_energy_threshold", e.Plant.FlowerEnergyThreshold},
		{"plant.branch_angle_variance", e.Plant.BranchAngleVariance},
	}
	for _, p := range nonNegative {
		if p.v < 0 {
			return fmt.Errorf("%w: engine.%s must be >= 0, got %v", ErrInvalidConfig, p.name, p.v)
		}
	}
	return nil
}

// WriteYAML writes the configuration to a YAML file.
func (c *Config) WriteYAML(path string) error {
	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("marshaling config: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("writing config file: %w", err)
	}
	return nil
}
