// Package effects animates leaves, flowers and singularity ripples as ECS
// entities. It consumes telemetry events, so it can be attached to an engine
// as a recorder alongside the stats collector.
package effects

import (
	"sync"

	"github.com/mlange-42/ark/ecs"
	"github.com/tanema/gween"
	"github.com/tanema/gween/ease"

	"github.com/pthm-cable/cspace/telemetry"
)

// Kind identifies an effect.
type Kind uint8

const (
	KindLeaf Kind = iota
	KindFlower
	KindRipple
	numKinds
)

// Position is an effect's location in field coordinates.
type Position struct {
	X, Y float32
}

// Bloom is an effect's animation state.
type Bloom struct {
	Kind     Kind
	Depth    int // Hierarchy depth of the engine that produced it
	Size     float32
	Elapsed  float32
	Duration float32
	Done     bool
	tween    *gween.Tween
}

// Alpha is the effect's opacity in [0, 1]. Ripples fade out as they expand;
// leaves and flowers stay opaque.
func (b *Bloom) Alpha() float32 {
	if b.Kind != KindRipple || b.Duration <= 0 {
		return 1
	}
	a := 1 - b.Elapsed/b.Duration
	if a < 0 {
		return 0
	}
	return a
}

// style describes how each kind animates.
type style struct {
	from, to float32
	duration float32
	fn       ease.TweenFunc
	persist  bool // Keep the entity once the tween finishes
}

var styles = [numKinds]style{
	KindLeaf:   {from: 0, to: 4, duration: 0.5, fn: ease.OutBack, persist: true},
	KindFlower: {from: 0, to: 6, duration: 0.8, fn: ease.OutElastic, persist: true},
	KindRipple: {from: 2, to: 30, duration: 1.0, fn: ease.OutQuad},
}

// Effect is a read-only view of one live effect.
type Effect struct {
	Kind  Kind
	Depth int
	X, Y  float32
	Size  float32
	Alpha float32
}

// System owns the effect world. Record may be called from engine goroutines;
// every other method must be called from the render loop.
type System struct {
	world  *ecs.World
	mapper *ecs.Map2[Position, Bloom]
	filter *ecs.Filter2[Position, Bloom]

	mu      sync.Mutex
	pending []telemetry.Event
}

// New creates an empty effect system.
func New() *System {
	world := ecs.NewWorld()
	return &System{
		world:  world,
		mapper: ecs.NewMap2[Position, Bloom](world),
		filter: ecs.NewFilter2[Position, Bloom](world),
	}
}

// Record queues leaf, flower and collapse events for spawning on the next
// Update. Other events are ignored.
func (s *System) Record(ev telemetry.Event) {
	switch ev.Type {
	case telemetry.EventLeaf, telemetry.EventFlower, telemetry.EventCollapse:
	default:
		return
	}
	s.mu.Lock()
	s.pending = append(s.pending, ev)
	s.mu.Unlock()
}

// Update spawns queued effects, advances every animation by dt seconds and
// removes finished ripples.
func (s *System) Update(dt float32) {
	s.spawnPending()

	var finished []ecs.Entity
	query := s.filter.Query()
	for query.Next() {
		_, bloom := query.Get()
		if bloom.Done {
			continue
		}
		bloom.Elapsed += dt
		size, done := bloom.tween.Update(dt)
		bloom.Size = size
		if done {
			bloom.Done = true
			if !styles[bloom.Kind].persist {
				finished = append(finished, query.Entity())
			}
		}
	}

	// Remove after the query completes
	for _, e := range finished {
		s.world.RemoveEntity(e)
	}
}

func (s *System) spawnPending() {
	s.mu.Lock()
	pending := s.pending
	s.pending = nil
	s.mu.Unlock()

	for _, ev := range pending {
		kind := kindOf(ev.Type)
		sp := styles[kind]
		pos := Position{X: float32(ev.Position.X), Y: float32(ev.Position.Y)}
		bloom := Bloom{
			Kind:     kind,
			Depth:    ev.Depth,
			Size:     sp.from,
			Duration: sp.duration,
			tween:    gween.New(sp.from, sp.to, sp.duration, sp.fn),
		}
		s.mapper.NewEntity(&pos, &bloom)
	}
}

func kindOf(t telemetry.EventType) Kind {
	switch t {
	case telemetry.EventFlower:
		return KindFlower
	case telemetry.EventCollapse:
		return KindRipple
	default:
		return KindLeaf
	}
}

// Each calls fn for every live effect. fn must not call back into s.
func (s *System) Each(fn func(Effect)) {
	query := s.filter.Query()
	for query.Next() {
		pos, bloom := query.Get()
		fn(Effect{
			Kind:  bloom.Kind,
			Depth: bloom.Depth,
			X:     pos.X,
			Y:     pos.Y,
			Size:  bloom.Size,
			Alpha: bloom.Alpha(),
		})
	}
}

// Count returns the number of live effects of a kind.
func (s *System) Count(kind Kind) int {
	n := 0
	query := s.filter.Query()
	for query.Next() {
		_, bloom := query.Get()
		if bloom.Kind == kind {
			n++
		}
	}
	return n
}

// Clear removes every effect and drops queued events.
func (s *System) Clear() {
	s.mu.Lock()
	s.pending = nil
	s.mu.Unlock()

	var all []ecs.Entity
	query := s.filter.Query()
	for query.Next() {
		all = append(all, query.Entity())
	}
	for _, e := range all {
		s.world.RemoveEntity(e)
	}
}
