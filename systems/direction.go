package systems

import (
	"github.com/pthm-cable/cspace/components"
	"github.com/pthm-cable/cspace/config"
)

// DirectionModel picks the direction a node grows toward.
type DirectionModel interface {
	Direction(n *components.GrowthNode, f Field, rng RNG) components.Vector2D
}

// NewDirectionModel returns the direction model for the configured growth model.
func NewDirectionModel(cfg config.EngineConfig) DirectionModel {
	if cfg.Model == config.ModelBase {
		return Attention{Lambda: cfg.Lambda, Epsilon: cfg.Epsilon}
	}
	return Tropism{
		MaxEnergyDistance: cfg.MaxEnergyDistance,
		Phototropism:      cfg.Plant.PhototropismFactor,
		Gravitropism:      cfg.Plant.GravitropismFactor,
		Strength:          cfg.Plant.TropismStrength,
	}
}
