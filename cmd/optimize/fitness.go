package main

import (
	"log/slog"
	"math"
	"sync"

	"github.com/pthm-cable/cspace/config"
	"github.com/pthm-cable/cspace/game"
	"github.com/pthm-cable/cspace/telemetry"
)

// FitnessEvaluator runs headless growth sessions, scores them, keeps the
// best evaluation and, when it has a log, records every evaluation.
type FitnessEvaluator struct {
	params     *ParamVector
	maxTicks   int64
	seeds      []int64
	baseConfig *config.Config
	log        *evalLog // nil = silent

	mu          sync.Mutex
	evals       int
	bestFitness float64
	bestParams  []float64
	bestWindows []telemetry.WindowStats
}

// NewFitnessEvaluator creates an evaluator. log may be nil.
func NewFitnessEvaluator(params *ParamVector, maxTicks int64, seeds []int64, baseCfg *config.Config, log *evalLog) *FitnessEvaluator {
	return &FitnessEvaluator{
		params:      params,
		maxTicks:    maxTicks,
		seeds:       seeds,
		baseConfig:  baseCfg,
		log:         log,
		bestFitness: math.Inf(1),
	}
}

// Best returns the best mean fitness so far, the clamped parameters that
// produced it and the window stats of its best seed. params is nil before
// the first evaluation.
func (fe *FitnessEvaluator) Best() (fitness float64, params []float64, windows []telemetry.WindowStats) {
	fe.mu.Lock()
	defer fe.mu.Unlock()
	return fe.bestFitness, fe.bestParams, fe.bestWindows
}

// Evals returns the number of completed evaluations.
func (fe *FitnessEvaluator) Evals() int {
	fe.mu.Lock()
	defer fe.mu.Unlock()
	return fe.evals
}

// runResult holds the results from a single growth run.
type runResult struct {
	ticks       int64   // ticks until capacity (or maxTicks)
	fill        float64 // final root nodes / max_nodes
	windowStats []telemetry.WindowStats
	failed      bool
}

// evalResult averages one evaluation over its seeds.
type evalResult struct {
	fitness   float64
	quality   float64
	fill      float64
	meanTicks float64
	ticks     int64 // Total across seeds
	windows   []telemetry.WindowStats
}

// Evaluate computes fitness for raw parameter values (lower = better).
// Values are clamped before use.
func (fe *FitnessEvaluator) Evaluate(x []float64) float64 {
	clamped := fe.params.Clamp(x)
	cfg := fe.baseConfig.Clone()
	fe.params.ApplyToConfig(cfg, clamped)

	res := fe.runSeeds(cfg)

	fe.mu.Lock()
	fe.evals++
	eval := fe.evals
	if res.fitness < fe.bestFitness {
		fe.bestFitness = res.fitness
		fe.bestParams = clamped
		fe.bestWindows = res.windows
	}
	fe.mu.Unlock()

	if fe.log != nil {
		if err := fe.log.observe(newEvalRecord(eval, res, cfg.Engine), res.ticks); err != nil {
			slog.Warn("eval log", "error", err)
		}
	}
	return res.fitness
}

// runSeeds grows one plant per seed in parallel and averages the scores.
func (fe *FitnessEvaluator) runSeeds(cfg *config.Config) evalResult {
	type seedResult struct {
		fitness, quality float64
		run              *runResult
	}
	results := make([]seedResult, len(fe.seeds))

	var wg sync.WaitGroup
	for i, seed := range fe.seeds {
		wg.Add(1)
		go func(idx int, s int64) {
			defer wg.Done()
			run := fe.runSimulation(cfg.Clone(), s)
			quality := computeQuality(run.windowStats)
			results[idx] = seedResult{
				fitness: fe.computeFitness(run, quality),
				quality: quality,
				run:     run,
			}
		}(i, seed)
	}
	wg.Wait()

	var res evalResult
	bestSeed := math.Inf(1)
	for _, r := range results {
		res.fitness += r.fitness
		res.quality += r.quality
		res.fill += r.run.fill
		res.ticks += r.run.ticks
		if r.fitness < bestSeed {
			bestSeed = r.fitness
			res.windows = r.run.windowStats
		}
	}

	n := float64(len(results))
	res.fitness /= n
	res.quality /= n
	res.fill /= n
	res.meanTicks = float64(res.ticks) / n
	return res
}

// runSimulation grows one plant until capacity or maxTicks.
func (fe *FitnessEvaluator) runSimulation(cfg *config.Config, seed int64) *runResult {
	result := &runResult{}
	g, err := game.NewGameWithConfig(cfg, game.Options{
		Seed:           seed,
		StepsPerUpdate: 1,
		StatsCallback: func(stats telemetry.WindowStats) {
			result.windowStats = append(result.windowStats, stats)
		},
	})
	if err != nil {
		result.failed = true
		return result
	}
	defer g.Unload()

	for g.Tick() < fe.maxTicks && g.UpdateHeadless() {
	}

	result.ticks = g.Tick()
	result.fill = float64(g.Engine().NodeCount()) / float64(cfg.Engine.MaxNodes)
	return result
}

// computeFitness calculates the scalar fitness (lower = better).
// Formula: -(fill × (0.5 + 0.5×speed) × (1 + 0.2×quality))
// Filling the engine dominates; reaching capacity early and growing a
// well-formed plant differentiate runs that both fill up.
func (fe *FitnessEvaluator) computeFitness(r *runResult, quality float64) float64 {
	if r.failed {
		return 0
	}
	speed := 0.0
	if r.fill >= 1 {
		speed = 1 - float64(r.ticks)/float64(fe.maxTicks)
	}
	return -(r.fill * (0.5 + 0.5*speed) * (1.0 + 0.2*quality))
}

// Quality component weights.
const (
	qualityWeightFlowers   = 0.25
	qualityWeightLeaves    = 0.20
	qualityWeightCoherence = 0.20
	qualityWeightBranching = 0.20
	qualityWeightSteady    = 0.15

	qualityWarmupWindows = 1 // skip the seedling window
	targetBranchShare    = 0.25
)

// computeQuality scores plant form in [0, 1] from window stats.
func computeQuality(windows []telemetry.WindowStats) float64 {
	if len(windows) <= qualityWarmupWindows {
		return 0
	}
	valid := windows[qualityWarmupWindows:]
	last := windows[len(windows)-1]

	var coherenceSum, branchSum float64
	var branchCount, rootCollapses int
	added := make([]float64, 0, len(valid))

	for _, w := range valid {
		coherenceSum += gaussian(w.CoherenceP50, 0.5, 0.3)
		rootCollapses += w.RootCollapses

		total := w.Growths + w.Branches
		added = append(added, float64(total))
		if total > 0 {
			share := float64(w.Branches) / float64(total)
			branchSum += gaussian(share, targetBranchShare, 0.15)
			branchCount++
		}
	}

	flowerScore := 1 - math.Exp(-float64(last.TotalFlowers)/5)
	leafScore := 1 - math.Exp(-float64(last.TotalLeaves)/20)
	coherenceScore := coherenceSum / float64(len(valid))

	branchScore := 0.0
	if branchCount > 0 {
		branchScore = branchSum / float64(branchCount)
	}

	// Steady growth: low coefficient of variation in nodes added per window
	steadyScore := 0.0
	if mean, std := telemetry.Spread(added); mean > 0 {
		cv := std / mean
		steadyScore = math.Exp(-cv * cv)
	}

	quality := qualityWeightFlowers*flowerScore +
		qualityWeightLeaves*leafScore +
		qualityWeightCoherence*coherenceScore +
		qualityWeightBranching*branchScore +
		qualityWeightSteady*steadyScore

	// Root singularities stunt the visible plant
	quality *= math.Exp(-float64(rootCollapses) / 10)

	return clamp01(quality)
}

func gaussian(x, center, width float64) float64 {
	d := (x - center) / width
	return math.Exp(-d * d)
}

// clamp01 clamps x to [0, 1].
func clamp01(x float64) float64 {
	if x < 0 {
		return 0
	}
	if x > 1 {
		return 1
	}
	return x
}
