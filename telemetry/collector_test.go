package telemetry

import (
	"math"
	"testing"

	"github.com/pthm-cable/multilife/life"
)

func TestCollectorWindow(t *testing.T) {
	c := NewCollector(2, 3)

	if c.ShouldFlush(1) {
		t.Error("ShouldFlush(1) = true before window is full")
	}

	c.RecordGeneration(life.Counts{Births: 4, Deaths: 2}, 10)
	c.RecordGeneration(life.Counts{Births: 1, Deaths: 1}, 12)

	if !c.ShouldFlush(2) {
		t.Fatal("ShouldFlush(2) = false, want true")
	}

	var census life.Census
	census.Species[0] = 6
	census.Species[1] = 6
	census.Dead = 88

	stats := c.Flush(2, census)
	if stats.WindowStartGen != 0 || stats.WindowEndGen != 2 || stats.Generations != 2 {
		t.Errorf("window = [%d,%d] over %d generations, want [0,2] over 2",
			stats.WindowStartGen, stats.WindowEndGen, stats.Generations)
	}
	if stats.Live != 12 || stats.Dead != 88 || stats.Species != 2 {
		t.Errorf("live/dead/species = %d/%d/%d, want 12/88/2", stats.Live, stats.Dead, stats.Species)
	}
	if stats.Births != 5 || stats.Deaths != 3 {
		t.Errorf("births/deaths = %d/%d, want 5/3", stats.Births, stats.Deaths)
	}
	if math.Abs(stats.BirthRate-5.0/22.0) > 1e-9 {
		t.Errorf("BirthRate = %v, want %v", stats.BirthRate, 5.0/22.0)
	}
	if len(stats.Populations) != 3 || stats.Populations[2] != 0 {
		t.Errorf("Populations = %v, want [6 6 0]", stats.Populations)
	}

	// Counters reset
	if c.ShouldFlush(3) {
		t.Error("ShouldFlush(3) = true right after flush")
	}
	next := c.Flush(4, census)
	if next.Births != 0 || next.Generations != 0 || next.BirthRate != 0 {
		t.Errorf("counters not reset: %+v", next)
	}
}
