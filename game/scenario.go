package game

import (
	"fmt"

	"github.com/pthm-cable/cspace/components"
	"github.com/pthm-cable/cspace/config"
	"github.com/pthm-cable/cspace/engine"
)

// applyScenario adds the configured resources and plants the seed.
func applyScenario(e *engine.Engine, cfg *config.Config) error {
	for i, r := range cfg.Scenario.Resources {
		kind, err := components.ParseResourceKind(r.Kind)
		if err != nil {
			return fmt.Errorf("scenario resource %d: %w", i, err)
		}
		if err := e.AddResource(components.Vec(r.X, r.Y), r.Intensity, kind); err != nil {
			return fmt.Errorf("scenario resource %d: %w", i, err)
		}
	}
	e.Initialize(seedPosition(cfg), cfg.Scenario.InitialEnergy)
	return nil
}
