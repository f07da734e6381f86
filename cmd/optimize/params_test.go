package main

import (
	"math"
	"testing"

	"github.com/pthm-cable/cspace/config"
	"github.com/pthm-cable/cspace/telemetry"
)

func TestParamVector_DefaultsMatchConfig(t *testing.T) {
	pv := NewParamVector()
	got := pv.ExtractFromConfig(config.Defaults())
	for i, def := range pv.Defs {
		if math.Abs(got[i]-def.Default) > 1e-9 {
			t.Errorf("%s: config default %v, table default %v", def.Name, got[i], def.Default)
		}
		if def.Default < def.Min || def.Default > def.Max {
			t.Errorf("%s: default %v outside [%v, %v]", def.Name, def.Default, def.Min, def.Max)
		}
	}
}

func TestParamVector_ApplyRoundTrip(t *testing.T) {
	pv := NewParamVector()
	cfg := config.Defaults()

	want := pv.Denormalize([]float64{0.1, 0.2, 0.3, 0.4, 0.5, 0.6, 0.7, 0.8, 0.9, 1.0})
	pv.ApplyToConfig(cfg, want)
	if err := cfg.Refresh(); err != nil {
		t.Fatalf("applied params fail validation: %v", err)
	}

	got := pv.ExtractFromConfig(cfg)
	for i := range want {
		if math.Abs(got[i]-want[i]) > 1e-9 {
			t.Errorf("%s = %v, want %v", pv.Defs[i].Name, got[i], want[i])
		}
	}
}

func TestParamVector_ClampOutOfRange(t *testing.T) {
	pv := NewParamVector()
	low := make([]float64, pv.Dim())
	high := make([]float64, pv.Dim())
	for i := range low {
		low[i] = -1000
		high[i] = 1000
	}

	cfg := config.Defaults()
	pv.ApplyToConfig(cfg, low)
	if err := cfg.Refresh(); err != nil {
		t.Errorf("lower bounds fail validation: %v", err)
	}
	pv.ApplyToConfig(cfg, high)
	if err := cfg.Refresh(); err != nil {
		t.Errorf("upper bounds fail validation: %v", err)
	}
}

func TestComputeQuality(t *testing.T) {
	if q := computeQuality(nil); q != 0 {
		t.Errorf("no windows: quality = %v, want 0", q)
	}

	healthy := []telemetry.WindowStats{
		{Growths: 10},
		{Growths: 6, Branches: 2, CoherenceP50: 0.5, TotalLeaves: 10, TotalFlowers: 2},
		{Growths: 6, Branches: 2, CoherenceP50: 0.5, TotalLeaves: 30, TotalFlowers: 8},
	}
	q := computeQuality(healthy)
	if q <= 0.5 || q > 1 {
		t.Errorf("healthy quality = %v, want in (0.5, 1]", q)
	}

	// Same plant with many root singularities scores lower
	collapsing := make([]telemetry.WindowStats, len(healthy))
	copy(collapsing, healthy)
	collapsing[2].RootCollapses = 20
	if qc := computeQuality(collapsing); qc >= q {
		t.Errorf("collapsing quality %v not below healthy %v", qc, q)
	}
}
