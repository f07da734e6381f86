package telemetry

import (
	"fmt"
	"log/slog"
)

// BookmarkType identifies the type of bookmark.
type BookmarkType string

const (
	BookmarkFirstSingularity BookmarkType = "first_singularity"
	BookmarkCapacityReached  BookmarkType = "capacity_reached"
	BookmarkGrowthStall      BookmarkType = "growth_stall"
	BookmarkBranchingBurst   BookmarkType = "branching_burst"
	BookmarkNewDepth         BookmarkType = "new_depth"
)

// Bookmark represents an automatically triggered bookmark.
type Bookmark struct {
	Type        BookmarkType `csv:"type"`
	Tick        int64        `csv:"tick"`
	Description string       `csv:"description"`
}

// LogBookmark logs the bookmark using slog.
func (b Bookmark) LogBookmark() {
	slog.Info("bookmark",
		"type", string(b.Type),
		"tick", b.Tick,
		"description", b.Description,
	)
}

// BookmarkDetector detects interesting moments in the growth run.
type BookmarkDetector struct {
	// Rolling history (circular buffer)
	history     []WindowStats
	historySize int
	historyIdx  int
	historyFull bool

	// State tracking
	sawSingularity bool
	sawCapacity    bool
	stalled        bool
	deepest        int
}

// NewBookmarkDetector creates a detector with the given history size.
func NewBookmarkDetector(historySize int) *BookmarkDetector {
	if historySize < 3 {
		historySize = 3 // minimum for rolling averages
	}
	return &BookmarkDetector{
		history:     make([]WindowStats, historySize),
		historySize: historySize,
	}
}

// Check analyzes the latest stats and returns any triggered bookmarks.
func (bd *BookmarkDetector) Check(stats WindowStats) []Bookmark {
	var bookmarks []Bookmark

	if b := bd.checkFirstSingularity(stats); b != nil {
		bookmarks = append(bookmarks, *b)
	}
	if b := bd.checkCapacity(stats); b != nil {
		bookmarks = append(bookmarks, *b)
	}
	if b := bd.checkNewDepth(stats); b != nil {
		bookmarks = append(bookmarks, *b)
	}

	if bd.historyFull || bd.historyIdx > 0 {
		// Growth stall: nothing added after steady growth, below capacity
		if b := bd.checkGrowthStall(stats); b != nil {
			bookmarks = append(bookmarks, *b)
		}

		// Branching burst: branches > 2x rolling average
		if b := bd.checkBranchingBurst(stats); b != nil {
			bookmarks = append(bookmarks, *b)
		}
	}

	bd.addToHistory(stats)
	return bookmarks
}

func (bd *BookmarkDetector) addToHistory(stats WindowStats) {
	bd.history[bd.historyIdx] = stats
	bd.historyIdx = (bd.historyIdx + 1) % bd.historySize
	if bd.historyIdx == 0 {
		bd.historyFull = true
	}
}

func (bd *BookmarkDetector) getHistory() []WindowStats {
	if bd.historyFull {
		return bd.history
	}
	return bd.history[:bd.historyIdx]
}

func (bd *BookmarkDetector) checkFirstSingularity(stats WindowStats) *Bookmark {
	if bd.sawSingularity || stats.RootCollapses == 0 {
		return nil
	}
	bd.sawSingularity = true
	return &Bookmark{
		Type:        BookmarkFirstSingularity,
		Tick:        stats.WindowEndTick,
		Description: fmt.Sprintf("First singularity, %d engines in hierarchy", stats.Engines),
	}
}

func (bd *BookmarkDetector) checkCapacity(stats WindowStats) *Bookmark {
	if bd.sawCapacity || stats.Fill < 1 {
		return nil
	}
	bd.sawCapacity = true
	return &Bookmark{
		Type:        BookmarkCapacityReached,
		Tick:        stats.WindowEndTick,
		Description: fmt.Sprintf("Root engine reached capacity with %d nodes", stats.Nodes),
	}
}

func (bd *BookmarkDetector) checkNewDepth(stats WindowStats) *Bookmark {
	if stats.MaxDepth <= bd.deepest {
		return nil
	}
	bd.deepest = stats.MaxDepth
	return &Bookmark{
		Type:        BookmarkNewDepth,
		Tick:        stats.WindowEndTick,
		Description: fmt.Sprintf("Hierarchy reached depth %d", stats.MaxDepth),
	}
}

func (bd *BookmarkDetector) checkGrowthStall(stats WindowStats) *Bookmark {
	added := stats.Growths + stats.Branches
	if added > 0 || stats.Fill >= 1 {
		bd.stalled = false
		return nil
	}
	if bd.stalled {
		return nil
	}

	history := bd.getHistory()
	if len(history) < 3 {
		return nil
	}
	for _, h := range history {
		if h.Growths+h.Branches == 0 {
			return nil
		}
	}

	bd.stalled = true
	return &Bookmark{
		Type:        BookmarkGrowthStall,
		Tick:        stats.WindowEndTick,
		Description: fmt.Sprintf("Growth stalled at %d nodes (%.0f%% of capacity)", stats.Nodes, stats.Fill*100),
	}
}

func (bd *BookmarkDetector) checkBranchingBurst(stats WindowStats) *Bookmark {
	history := bd.getHistory()
	if len(history) < 3 {
		return nil
	}

	var total int
	for _, h := range history {
		total += h.Branches
	}
	avg := float64(total) / float64(len(history))
	if avg == 0 {
		return nil
	}

	if float64(stats.Branches) > avg*2.0 && stats.Branches >= 3 {
		return &Bookmark{
			Type:        BookmarkBranchingBurst,
			Tick:        stats.WindowEndTick,
			Description: fmt.Sprintf("%d branches is %.1fx average (%.2f)", stats.Branches, float64(stats.Branches)/avg, avg),
		}
	}
	return nil
}
