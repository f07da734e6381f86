// Package main tunes growth parameters with CMA-ES: it searches for settings
// that fill the engine quickly with a well-formed, flowering plant.
package main

import (
	"flag"
	"fmt"
	"log"
	"log/slog"
	"math"
	"os"
	"path/filepath"

	"github.com/gocarina/gocsv"
	"gonum.org/v1/gonum/optimize"

	"github.com/pthm-cable/cspace/config"
	"github.com/pthm-cable/cspace/telemetry"
)

// Files written to the output directory.
const (
	evalLogFile     = "optimize_log.csv"
	bestConfigFile  = "best_config.yaml"
	bestWindowsFile = "best_windows.csv"
)

func main() {
	configPath := flag.String("config", "", "Base config YAML file (empty = use defaults)")
	maxTicks := flag.Int("max-ticks", 2000, "Maximum growth duration in ticks (cap)")
	seeds := flag.Int("seeds", 3, "Number of seeds per evaluation")
	maxEvals := flag.Int("max-evals", 200, "Maximum number of evaluations")
	population := flag.Int("population", 0, "CMA-ES population size (0 = 4 + 3 ln n)")
	outputDir := flag.String("output", "", "Output directory for results")
	flag.Parse()

	// Per-run status lines would drown the progress output
	slog.SetDefault(slog.New(slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelWarn})))

	if *outputDir == "" {
		log.Fatal("--output is required")
	}
	if err := os.MkdirAll(*outputDir, 0755); err != nil {
		log.Fatalf("failed to create output directory: %v", err)
	}
	if err := config.Init(*configPath); err != nil {
		log.Fatalf("failed to load config: %v", err)
	}
	baseCfg := config.Cfg()

	progress, err := newEvalLog(filepath.Join(*outputDir, evalLogFile), *maxEvals, os.Stdout)
	if err != nil {
		log.Fatal(err)
	}
	defer progress.Close()

	params := NewParamVector()
	evalSeeds := make([]int64, *seeds)
	for i := range evalSeeds {
		evalSeeds[i] = int64(i*1000 + 42)
	}
	evaluator := NewFitnessEvaluator(params, int64(*maxTicks), evalSeeds, baseCfg, progress)

	// CMA-ES searches the unit cube; the evaluator sees raw values.
	problem := optimize.Problem{
		Func: func(x []float64) float64 {
			return evaluator.Evaluate(params.Denormalize(x))
		},
	}
	initX := params.Normalize(params.Clamp(params.ExtractFromConfig(baseCfg)))

	popSize := *population
	if popSize == 0 {
		popSize = 4 + int(3*math.Log(float64(params.Dim())))
	}
	method := &optimize.CmaEsChol{InitStepSize: 0.3, Population: popSize}
	settings := &optimize.Settings{FuncEvaluations: *maxEvals}

	fmt.Printf("Starting CMA-ES: %d parameters, population=%d, max_evals=%d, seeds=%d, max_ticks=%d\n",
		params.Dim(), popSize, *maxEvals, *seeds, *maxTicks)

	result, err := optimize.Minimize(problem, initX, settings, method)
	if err != nil {
		log.Printf("optimization ended: %v", err)
	}

	fitness, best, windows := evaluator.Best()
	if best == nil && result != nil {
		best = params.Clamp(params.Denormalize(result.X))
	}
	if best == nil {
		log.Fatal("no evaluation completed")
	}

	fmt.Printf("\n%d evaluations, best fitness %.3f\n", evaluator.Evals(), fitness)
	for i, def := range params.Defs {
		fmt.Printf("  %-40s %.6f\n", def.Path, best[i])
	}

	bestCfg := baseCfg.Clone()
	params.ApplyToConfig(bestCfg, best)
	configOut := filepath.Join(*outputDir, bestConfigFile)
	if err := bestCfg.WriteYAML(configOut); err != nil {
		log.Printf("failed to write best config: %v", err)
	} else {
		fmt.Printf("\nBest config saved to: %s\n", configOut)
	}

	if len(windows) > 0 {
		windowsOut := filepath.Join(*outputDir, bestWindowsFile)
		if err := writeWindows(windowsOut, windows); err != nil {
			log.Printf("failed to write best windows: %v", err)
		} else {
			fmt.Printf("Best run windows saved to: %s\n", windowsOut)
		}
	}
}

func writeWindows(path string, windows []telemetry.WindowStats) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := gocsv.MarshalFile(&windows, f); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}
