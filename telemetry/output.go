package telemetry

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/gocarina/gocsv"

	"github.com/pthm-cable/cspace/config"
)

// Files in a run directory.
const (
	ConfigFile    = "config.yaml"
	WindowsFile   = "telemetry.csv"
	PerfFile      = "perf.csv"
	BookmarksFile = "bookmarks.csv"
	HierarchyFile = "hierarchy.csv"
)

// LevelRecord is one hierarchy.csv row: the shape of one depth of the engine
// tree at the end of a stats window.
type LevelRecord struct {
	WindowEnd  int64   `csv:"window_end"`
	Depth      int     `csv:"depth"`
	Engines    int     `csv:"engines"`
	Nodes      int     `csv:"nodes"`
	PureTime   int     `csv:"pure_time"` // Collapsed nodes (H = D = 0)
	Leaves     int     `csv:"leaves"`
	Flowers    int     `csv:"flowers"`
	MeanEnergy float64 `csv:"mean_energy"`
}

// csvLog appends rows to one CSV file. The header goes out with the first
// batch.
type csvLog struct {
	f       *os.File
	started bool
}

func appendRows[T any](l *csvLog, rows []T) error {
	if len(rows) == 0 {
		return nil
	}
	if l.started {
		return gocsv.MarshalWithoutHeaders(rows, l.f)
	}
	l.started = true
	return gocsv.Marshal(rows, l.f)
}

// OutputManager writes a run directory. A nil manager is valid and drops
// everything, so callers need no output-enabled checks.
type OutputManager struct {
	dir       string
	windows   csvLog
	perf      csvLog
	bookmarks csvLog
	levels    csvLog
}

// NewOutputManager creates dir and its CSV files. An empty dir disables
// output and returns a nil manager.
func NewOutputManager(dir string) (*OutputManager, error) {
	if dir == "" {
		return nil, nil
	}
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("creating output directory: %w", err)
	}

	om := &OutputManager{dir: dir}
	files := []struct {
		name string
		log  *csvLog
	}{
		{WindowsFile, &om.windows},
		{PerfFile, &om.perf},
		{BookmarksFile, &om.bookmarks},
		{HierarchyFile, &om.levels},
	}
	for _, file := range files {
		f, err := os.Create(filepath.Join(dir, file.name))
		if err != nil {
			om.Close()
			return nil, fmt.Errorf("creating %s: %w", file.name, err)
		}
		file.log.f = f
	}
	return om, nil
}

// WriteConfig saves the run's configuration.
func (om *OutputManager) WriteConfig(cfg *config.Config) error {
	if om == nil {
		return nil
	}
	return cfg.WriteYAML(filepath.Join(om.dir, ConfigFile))
}

// WriteWindow appends one stats window.
func (om *OutputManager) WriteWindow(stats WindowStats) error {
	if om == nil {
		return nil
	}
	if err := appendRows(&om.windows, []WindowStats{stats}); err != nil {
		return fmt.Errorf("writing %s: %w", WindowsFile, err)
	}
	return nil
}

// WritePerf appends the timing of the window ending at windowEnd.
func (om *OutputManager) WritePerf(stats PerfStats, windowEnd int64) error {
	if om == nil {
		return nil
	}
	if err := appendRows(&om.perf, []PerfRecord{stats.Record(windowEnd)}); err != nil {
		return fmt.Errorf("writing %s: %w", PerfFile, err)
	}
	return nil
}

// WriteBookmarks appends the bookmarks detected for one window.
func (om *OutputManager) WriteBookmarks(bms []Bookmark) error {
	if om == nil {
		return nil
	}
	if err := appendRows(&om.bookmarks, bms); err != nil {
		return fmt.Errorf("writing %s: %w", BookmarksFile, err)
	}
	return nil
}

// WriteLevels appends one row per hierarchy depth.
func (om *OutputManager) WriteLevels(levels []LevelRecord) error {
	if om == nil {
		return nil
	}
	if err := appendRows(&om.levels, levels); err != nil {
		return fmt.Errorf("writing %s: %w", HierarchyFile, err)
	}
	return nil
}

// Close closes every open file.
func (om *OutputManager) Close() error {
	if om == nil {
		return nil
	}
	var errs []error
	for _, l := range []*csvLog{&om.windows, &om.perf, &om.bookmarks, &om.levels} {
		if l.f == nil {
			continue
		}
		errs = append(errs, l.f.Close())
		l.f = nil
	}
	return errors.Join(errs...)
}
