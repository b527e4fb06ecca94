package telemetry

import (
	"fmt"
	"log/slog"
)

// BookmarkType identifies the type of bookmark.
type BookmarkType string

const (
	BookmarkExtinction      BookmarkType = "extinction"
	BookmarkDominance       BookmarkType = "dominance"
	BookmarkStagnation      BookmarkType = "stagnation"
	BookmarkPopulationCrash BookmarkType = "population_crash"
)

// Detection thresholds.
const (
	dominanceShare = 0.5
	crashFraction  = 0.30
	crashMinDrop   = 10
)

// Bookmark represents an automatically triggered bookmark.
type Bookmark struct {
	Type        BookmarkType `csv:"type"`
	Generation  int          `csv:"generation"`
	Species     int          `csv:"species"` // -1 when not species-specific
	Description string       `csv:"description"`
}

// LogBookmark logs the bookmark using slog.
func (b Bookmark) LogBookmark() {
	slog.Info("bookmark",
		"type", string(b.Type),
		"generation", b.Generation,
		"species", b.Species,
		"description", b.Description,
	)
}

// BookmarkDetector detects interesting moments in the simulation.
type BookmarkDetector struct {
	// Rolling history (circular buffer)
	history     []WindowStats
	historySize int
	historyIdx  int
	historyFull bool

	// State tracking
	recentLivePeak int  // peak live count since the last crash
	stagnant       bool // true while windows have no transitions
}

// NewBookmarkDetector creates a detector with the given history size.
func NewBookmarkDetector(historySize int) *BookmarkDetector {
	if historySize < 2 {
		historySize = 2
	}
	return &BookmarkDetector{
		history:     make([]WindowStats, historySize),
		historySize: historySize,
	}
}

// Check analyzes the latest stats and returns any triggered bookmarks.
func (bd *BookmarkDetector) Check(stats WindowStats) []Bookmark {
	var bookmarks []Bookmark

	if prev, ok := bd.previous(); ok {
		bookmarks = append(bookmarks, bd.checkExtinctions(prev, stats)...)

		if b := bd.checkDominance(prev, stats); b != nil {
			bookmarks = append(bookmarks, *b)
		}
	}

	if b := bd.checkPopulationCrash(stats); b != nil {
		bookmarks = append(bookmarks, *b)
	}

	if b := bd.checkStagnation(stats); b != nil {
		bookmarks = append(bookmarks, *b)
	}

	// Update history
	bd.addToHistory(stats)

	if stats.Live > bd.recentLivePeak {
		bd.recentLivePeak = stats.Live
	}

	return bookmarks
}

func (bd *BookmarkDetector) addToHistory(stats WindowStats) {
	bd.history[bd.historyIdx] = stats
	bd.historyIdx = (bd.historyIdx + 1) % bd.historySize
	if bd.historyIdx == 0 {
		bd.historyFull = true
	}
}

// previous returns the most recently added window.
func (bd *BookmarkDetector) previous() (WindowStats, bool) {
	if !bd.historyFull && bd.historyIdx == 0 {
		return WindowStats{}, false
	}
	idx := (bd.historyIdx - 1 + bd.historySize) % bd.historySize
	return bd.history[idx], true
}

func (bd *BookmarkDetector) checkExtinctions(prev, stats WindowStats) []Bookmark {
	var bookmarks []Bookmark
	for s, pop := range stats.Populations {
		if pop != 0 || s >= len(prev.Populations) || prev.Populations[s] == 0 {
			continue
		}
		bookmarks = append(bookmarks, Bookmark{
			Type:        BookmarkExtinction,
			Generation:  stats.WindowEndGen,
			Species:     s,
			Description: fmt.Sprintf("Species %d went extinct (was %d cells)", s, prev.Populations[s]),
		})
	}
	return bookmarks
}

func (bd *BookmarkDetector) checkDominance(prev, stats WindowStats) *Bookmark {
	if stats.Dominant < 0 || stats.DominantShare < dominanceShare {
		return nil
	}
	if prev.Dominant == stats.Dominant && prev.DominantShare >= dominanceShare {
		return nil
	}
	return &Bookmark{
		Type:        BookmarkDominance,
		Generation:  stats.WindowEndGen,
		Species:     stats.Dominant,
		Description: fmt.Sprintf("Species %d holds %.0f%% of live cells", stats.Dominant, stats.DominantShare*100),
	}
}

func (bd *BookmarkDetector) checkPopulationCrash(stats WindowStats) *Bookmark {
	if bd.recentLivePeak == 0 {
		return nil
	}

	dropFraction := 1.0 - float64(stats.Live)/float64(bd.recentLivePeak)
	if dropFraction > crashFraction && stats.Live < bd.recentLivePeak-crashMinDrop {
		// Reset peak after crash
		oldPeak := bd.recentLivePeak
		bd.recentLivePeak = stats.Live

		return &Bookmark{
			Type:        BookmarkPopulationCrash,
			Generation:  stats.WindowEndGen,
			Species:     -1,
			Description: fmt.Sprintf("Live cells crashed %.0f%% from peak %d to %d", dropFraction*100, oldPeak, stats.Live),
		}
	}

	return nil
}

func (bd *BookmarkDetector) checkStagnation(stats WindowStats) *Bookmark {
	if stats.Births > 0 || stats.Deaths > 0 || stats.Generations == 0 {
		bd.stagnant = false
		return nil
	}
	if bd.stagnant {
		return nil
	}
	bd.stagnant = true
	return &Bookmark{
		Type:        BookmarkStagnation,
		Generation:  stats.WindowEndGen,
		Species:     -1,
		Description: fmt.Sprintf("No births or deaths over %d generations (%d live cells)", stats.Generations, stats.Live),
	}
}
