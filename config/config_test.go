package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
)

func TestDefaults(t *testing.T) {
	cfg := Defaults()

	if cfg.Engine.Model != ModelPlant {
		t.Errorf("default model = %q, want plant", cfg.Engine.Model)
	}
	if cfg.Derived.WorldW != cfg.Screen.Width || cfg.Derived.WorldH != cfg.Screen.Height {
		t.Errorf("world %dx%d should default to the screen size", cfg.Derived.WorldW, cfg.Derived.WorldH)
	}
	if cfg.Derived.SeedX != float64(cfg.Derived.WorldW/2) || cfg.Derived.SeedY != float64(cfg.Derived.WorldH-50) {
		t.Errorf("seed at (%v, %v), want bottom center", cfg.Derived.SeedX, cfg.Derived.SeedY)
	}
	if len(cfg.Scenario.Resources) == 0 {
		t.Error("default scenario should place resources")
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"unknown model", func(c *Config) { c.Engine.Model = "fern" }},
		{"zero max nodes", func(c *Config) { c.Engine.MaxNodes = 0 }},
		{"negative max depth", func(c *Config) { c.Engine.MaxDepth = -1 }},
		{"zero alpha", func(c *Config) { c.Engine.Alpha = 0 }},
		{"zero d_critical", func(c *Config) { c.Engine.DCritical = 0 }},
		{"growth prob above 1", func(c *Config) { c.Engine.GrowthProb = 1.5 }},
		{"negative branch prob", func(c *Config) { c.Engine.BranchProb = -0.1 }},
		{"negative water use", func(c *Config) { c.Engine.Plant.WaterConsumption = -1 }},
		{"zero speed", func(c *Config) { c.Simulation.StepsPerUpdate = 0 }},
		{"zero stats window", func(c *Config) { c.Telemetry.StatsWindow = 0 }},
		{"unknown resource kind", func(c *Config) { c.Scenario.Resources[0].Kind = "nutrient" }},
		{"zero intensity", func(c *Config) { c.Scenario.Resources[0].Intensity = 0 }},
		{"intensity above 1", func(c *Config) { c.Scenario.Resources[0].Intensity = 1.2 }},
		{"zero world", func(c *Config) { c.Screen.Width = 0 }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Defaults()
			tt.mutate(cfg)
			if err := cfg.Refresh(); !errors.Is(err, ErrInvalidConfig) {
				t.Errorf("expected ErrInvalidConfig, got %v", err)
			}
		})
	}

	if err := Defaults().Validate(); err != nil {
		t.Errorf("defaults should validate: %v", err)
	}
}

func TestClone(t *testing.T) {
	cfg := Defaults()
	c := cfg.Clone()

	c.Engine.MaxNodes = 7
	c.Scenario.Resources[0].X = -100
	c.Scenario.Resources = append(c.Scenario.Resources, ResourceConfig{Kind: "light", Intensity: 1})

	if cfg.Engine.MaxNodes == 7 {
		t.Error("clone shares engine config")
	}
	if cfg.Scenario.Resources[0].X == -100 {
		t.Error("clone shares the resource slice")
	}
	if len(cfg.Scenario.Resources) == len(c.Scenario.Resources) {
		t.Error("append on the clone grew the original")
	}
}

func TestRefresh(t *testing.T) {
	cfg := Defaults()
	cfg.World.Width = 1000
	cfg.World.Height = 400
	cfg.Scenario.SeedX = 123

	if err := cfg.Refresh(); err != nil {
		t.Fatal(err)
	}
	if cfg.Derived.WorldW != 1000 || cfg.Derived.WorldH != 400 {
		t.Errorf("world = %dx%d, want 1000x400", cfg.Derived.WorldW, cfg.Derived.WorldH)
	}
	if cfg.Derived.SeedX != 123 || cfg.Derived.SeedY != 350 {
		t.Errorf("seed = (%v, %v), want (123, 350)", cfg.Derived.SeedX, cfg.Derived.SeedY)
	}
}

func TestLoad_FileOverridesDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	data := []byte(`
engine:
  model: base
  max_nodes: 250
scenario:
  resources:
    - {x: 10, y: 20, intensity: 0.5, kind: water}
`)
	if err := os.WriteFile(path, data, 0644); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Engine.Model != ModelBase || cfg.Engine.MaxNodes != 250 {
		t.Errorf("overrides not applied: model=%q max_nodes=%d", cfg.Engine.Model, cfg.Engine.MaxNodes)
	}
	if cfg.Engine.Alpha != Defaults().Engine.Alpha {
		t.Errorf("unset alpha should keep the default, got %v", cfg.Engine.Alpha)
	}
	if len(cfg.Scenario.Resources) != 1 || cfg.Scenario.Resources[0].Kind != "water" {
		t.Errorf("resources should be replaced, got %+v", cfg.Scenario.Resources)
	}
}

func TestLoad_Errors(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "missing.yaml")); err == nil {
		t.Error("expected an error for a missing file")
	}

	path := filepath.Join(t.TempDir(), "bad.yaml")
	if err := os.WriteFile(path, []byte("engine:\n  model: oak\n"), 0644); err != nil {
		t.Fatal(err)
	}
	if _, err := Load(path); !errors.Is(err, ErrInvalidConfig) {
		t.Errorf("expected ErrInvalidConfig, got %v", err)
	}
}

func TestWriteYAML_RoundTrip(t *testing.T) {
	cfg := Defaults()
	cfg.Engine.DCritical = 4.5
	cfg.Engine.ParallelChildren = true

	path := filepath.Join(t.TempDir(), "out.yaml")
	if err := cfg.WriteYAML(path); err != nil {
		t.Fatal(err)
	}
	loaded, err := Load(path)
	if err != nil {
		t.Fatal(err)
	}
	if loaded.Engine != cfg.Engine {
		t.Errorf("engine config changed on round trip:\n got %+v\nwant %+v", loaded.Engine, cfg.Engine)
	}
	if len(loaded.Scenario.Resources) != len(cfg.Scenario.Resources) {
		t.Errorf("resources = %d, want %d", len(loaded.Scenario.Resources), len(cfg.Scenario.Resources))
	}
}
