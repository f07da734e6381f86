package game

import (
	"errors"
	"log/slog"

	"github.com/pthm-cable/cspace/components"
	"github.com/pthm-cable/cspace/engine"
)

// IntentKind identifies a driver request.
type IntentKind uint8

const (
	IntentAddResource IntentKind = iota
	IntentForceGrow
	IntentForceBranch
	IntentTogglePause
	IntentReset
	IntentSpeedUp
	IntentSlowDown
	IntentSetSpeed
)

// Intent is a driver request applied between ticks.
type Intent struct {
	Kind      IntentKind
	Position  components.Vector2D     // IntentAddResource
	Resource  components.ResourceKind // IntentAddResource
	Intensity float64                 // IntentAddResource
	Speed     int                     // IntentSetSpeed
}

// Click intensities for resources placed by the driver.
const (
	LightIntensity    = 1.0
	WaterIntensity    = 1.0
	ObstacleIntensity = 0.9
	SupportIntensity  = 0.8
)

// AddResourceIntent places a resource at pos with the driver's default
// intensity for its kind.
func AddResourceIntent(pos components.Vector2D, kind components.ResourceKind) Intent {
	intensity := LightIntensity
	switch kind {
	case components.ResourceWater:
		intensity = WaterIntensity
	case components.ResourceObstacle:
		intensity = ObstacleIntensity
	case components.ResourceSupport:
		intensity = SupportIntensity
	}
	return Intent{Kind: IntentAddResource, Position: pos, Resource: kind, Intensity: intensity}
}

// Submit queues an intent for the next update.
func (g *Game) Submit(in Intent) {
	g.intents = append(g.intents, in)
}

// applyIntents drains the intent queue in submission order. Growth and
// resource intents are ignored while paused.
func (g *Game) applyIntents() {
	queued := g.intents
	g.intents = nil
	for _, in := range queued {
		g.apply(in)
	}
}

func (g *Game) apply(in Intent) {
	switch in.Kind {
	case IntentTogglePause:
		if g.done {
			return
		}
		g.paused = !g.paused
		slog.Info("pause toggled", "paused", g.paused)

	case IntentReset:
		if err := g.reset(); err != nil {
			slog.Error("reset failed", "error", err)
			return
		}
		g.paused = false
		slog.Info("reset", "seed_x", g.cfg.Derived.SeedX, "seed_y", g.cfg.Derived.SeedY)

	case IntentSpeedUp:
		g.setSpeed(g.stepsPerUpdate + 1)
	case IntentSlowDown:
		g.setSpeed(g.stepsPerUpdate - 1)
	case IntentSetSpeed:
		g.setSpeed(in.Speed)

	case IntentAddResource:
		if g.paused {
			return
		}
		if err := g.engine.AddResource(in.Position, in.Intensity, in.Resource); err != nil {
			slog.Warn("add resource rejected", "error", err)
			return
		}
		slog.Debug("resource added", "kind", in.Resource.String(), "x", in.Position.X, "y", in.Position.Y)

	case IntentForceGrow:
		if g.paused {
			return
		}
		g.logForced("grow", g.engine.ForceGrowStrongest)

	case IntentForceBranch:
		if g.paused {
			return
		}
		g.logForced("branch", g.engine.ForceBranchEligible)
	}
}

func (g *Game) setSpeed(steps int) {
	g.stepsPerUpdate = max(1, min(steps, g.cfg.Simulation.MaxSpeed))
}

func (g *Game) logForced(op string, fn func() (components.GrowthNode, error)) {
	n, err := fn()
	switch {
	case err == nil:
		slog.Info("forced "+op, "node", n.ID, "x", n.Position.X, "y", n.Position.Y)
		if g.engine.NodeCount() >= g.cfg.Engine.MaxNodes {
			g.done = true
			g.paused = true
		}
	case errors.Is(err, engine.ErrAtCapacity), errors.Is(err, engine.ErrNoGrowth):
		slog.Debug("forced "+op+" skipped", "reason", err)
	default:
		slog.Warn("forced "+op+" failed", "error", err)
	}
}
