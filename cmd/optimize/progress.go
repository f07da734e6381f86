package main

import (
	"fmt"
	"io"
	"math"
	"os"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/gocarina/gocsv"

	"github.com/pthm-cable/cspace/config"
)

// EvalRecord is one optimize_log.csv row. Parameter columns are read back
// from the engine config the runs used, so they are already clamped.
type EvalRecord struct {
	Eval      int     `csv:"eval"`
	Fitness   float64 `csv:"fitness"`
	Quality   float64 `csv:"quality"`
	Fill      float64 `csv:"fill"`
	MeanTicks float64 `csv:"mean_ticks"`

	GrowthProb        float64 `csv:"growth_prob"`
	BranchProb        float64 `csv:"branch_prob"`
	GrowthRate        float64 `csv:"growth_rate"`
	MaxEnergyDistance float64 `csv:"max_energy_distance"`
	Alpha             float64 `csv:"alpha"`
	Beta              float64 `csv:"beta"`
	DCritical         float64 `csv:"d_critical"`
	Phototropism      float64 `csv:"phototropism"`
	Gravitropism      float64 `csv:"gravitropism"`
	LeafProb          float64 `csv:"leaf_prob"`
}

func newEvalRecord(eval int, r evalResult, e config.EngineConfig) EvalRecord {
	return EvalRecord{
		Eval:      eval,
		Fitness:   r.fitness,
		Quality:   r.quality,
		Fill:      r.fill,
		MeanTicks: r.meanTicks,

		GrowthProb:        e.GrowthProb,
		BranchProb:        e.BranchProb,
		GrowthRate:        e.GrowthRate,
		MaxEnergyDistance: e.MaxEnergyDistance,
		Alpha:             e.Alpha,
		Beta:              e.Beta,
		DCritical:         e.DCritical,
		Phototropism:      e.Plant.PhototropismFactor,
		Gravitropism:      e.Plant.GravitropismFactor,
		LeafProb:          e.Plant.LeafGenerationProbability,
	}
}

// evalLog appends one row per evaluation and prints a progress line with an
// ETA extrapolated from the mean evaluation time.
type evalLog struct {
	f        *os.File
	started  bool
	out      io.Writer
	maxEvals int
	now      func() time.Time
	start    time.Time

	best     float64
	simTicks int64
}

func newEvalLog(path string, maxEvals int, out io.Writer) (*evalLog, error) {
	f, err := os.Create(path)
	if err != nil {
		return nil, fmt.Errorf("creating eval log: %w", err)
	}
	return &evalLog{
		f:        f,
		out:      out,
		maxEvals: maxEvals,
		now:      time.Now,
		start:    time.Now(),
		best:     math.Inf(1),
	}, nil
}

// observe records one evaluation. ticks is the total simulated across its
// seeds.
func (l *evalLog) observe(rec EvalRecord, ticks int64) error {
	rows := []EvalRecord{rec}
	var err error
	if l.started {
		err = gocsv.MarshalWithoutHeaders(rows, l.f)
	} else {
		err = gocsv.Marshal(rows, l.f)
		l.started = true
	}
	if err != nil {
		return fmt.Errorf("writing eval %d: %w", rec.Eval, err)
	}

	l.best = min(l.best, rec.Fitness)
	l.simTicks += ticks

	elapsed := l.now().Sub(l.start)
	remaining := time.Duration(l.maxEvals-rec.Eval) * (elapsed / time.Duration(rec.Eval))
	fmt.Fprintf(l.out, "Eval %d/%d: fitness=%.3f quality=%.2f fill=%.2f (best=%.3f) | %s ticks | elapsed: %s, ETA: %s\n",
		rec.Eval, l.maxEvals, rec.Fitness, rec.Quality, rec.Fill, l.best,
		humanize.Comma(l.simTicks), formatDuration(elapsed), formatDuration(max(remaining, 0)))
	return nil
}

// Close closes the log file.
func (l *evalLog) Close() error {
	return l.f.Close()
}

// formatDuration formats d as 1h02m03s, or 2m03s under an hour.
func formatDuration(d time.Duration) string {
	d = d.Round(time.Second)
	h := d / time.Hour
	d -= h * time.Hour
	m := d / time.Minute
	d -= m * time.Minute
	s := d / time.Second

	if h > 0 {
		return fmt.Sprintf("%dh%02dm%02ds", h, m, s)
	}
	return fmt.Sprintf("%dm%02ds", m, s)
}
