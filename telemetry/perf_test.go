package telemetry

import (
	"math"
	"testing"
	"time"
)

func TestPerfCollector_BasicTiming(t *testing.T) {
	pc := NewPerfCollector(10, 100)

	// Simulate a few generations
	for i := 0; i < 5; i++ {
		pc.StartGeneration()
		pc.StartPhase(PhaseUpdate)
		time.Sleep(100 * time.Microsecond)
		pc.StartPhase(PhaseColorize)
		time.Sleep(200 * time.Microsecond)
		pc.EndGeneration()
	}

	stats := pc.Stats()

	// Verify we got timing data
	if stats.AvgGeneration <= 0 {
		t.Error("expected positive average generation duration")
	}

	// Verify phases are tracked
	if len(stats.PhaseAvg) == 0 {
		t.Error("expected phase averages to be populated")
	}

	if _, ok := stats.PhaseAvg[PhaseUpdate]; !ok {
		t.Error("expected update phase to be tracked")
	}

	if _, ok := stats.PhaseAvg[PhaseColorize]; !ok {
		t.Error("expected colorize phase to be tracked")
	}
}

func TestPerfCollector_RollingWindow(t *testing.T) {
	pc := NewPerfCollector(5, 100) // Small window

	// Fill window completely
	for i := 0; i < 10; i++ {
		pc.StartGeneration()
		pc.StartPhase(PhaseUpdate)
		pc.EndGeneration()
	}

	stats := pc.Stats()

	// Should have data
	if stats.AvgGeneration <= 0 {
		t.Error("expected positive average generation duration after window filled")
	}

	if stats.GenerationsPerSec <= 0 {
		t.Error("expected positive generations per second")
	}
}

func TestPerfCollector_PhasePercentages(t *testing.T) {
	pc := NewPerfCollector(10, 100)

	// Simulate with uneven phase durations
	for i := 0; i < 5; i++ {
		pc.StartGeneration()
		pc.StartPhase("fast")
		time.Sleep(10 * time.Microsecond)
		pc.StartPhase("slow")
		time.Sleep(100 * time.Microsecond)
		pc.EndGeneration()
	}

	stats := pc.Stats()

	fastPct := stats.PhasePct["fast"]
	slowPct := stats.PhasePct["slow"]

	// Slow phase should take more % than fast
	if slowPct <= fastPct {
		t.Errorf("expected slow phase (%v%%) > fast phase (%v%%)", slowPct, fastPct)
	}
}

func TestPerfCollector_EmptyStats(t *testing.T) {
	pc := NewPerfCollector(10, 100)

	stats := pc.Stats()

	// Empty collector should return zero values without panicking
	if stats.AvgGeneration != 0 {
		t.Error("expected zero avg generation duration for empty collector")
	}

	if stats.PhaseAvg == nil {
		t.Error("expected non-nil PhaseAvg map")
	}

	if stats.PhasePct == nil {
		t.Error("expected non-nil PhasePct map")
	}
}

func TestPerfCollector_FrameTiming(t *testing.T) {
	pc := NewPerfCollector(10, 100)

	// First call establishes baseline
	pc.RecordFrame()
	time.Sleep(16 * time.Millisecond) // ~60fps frame time
	// Second call measures duration
	pc.RecordFrame()

	stats := pc.Stats()

	if stats.FrameDuration < 15*time.Millisecond {
		t.Errorf("expected frame duration >= 15ms, got %v", stats.FrameDuration)
	}

	if stats.FPS <= 0 {
		t.Error("expected positive FPS")
	}

	// With 16ms frames, expect ~60 FPS (allow range 40-80)
	if stats.FPS < 40 || stats.FPS > 80 {
		t.Errorf("expected FPS between 40-80 with 16ms frame time, got %v", stats.FPS)
	}
}

func TestImbalance(t *testing.T) {
	us := time.Microsecond
	tests := []struct {
		name  string
		spans []time.Duration
		want  float64
	}{
		{"empty", nil, 0},
		{"all zero", []time.Duration{0, 0}, 0},
		{"even", []time.Duration{10 * us, 10 * us, 10 * us, 10 * us}, 1},
		{"one slow partition", []time.Duration{30 * us, 10 * us, 10 * us, 10 * us}, 2},
		{"two partitions", []time.Duration{20 * us, 10 * us}, 4.0 / 3},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Imbalance(tt.spans); math.Abs(got-tt.want) > 1e-9 {
				t.Errorf("Imbalance(%v) = %v, want %v", tt.spans, got, tt.want)
			}
		})
	}
}

func TestPerfCollector_PartitionImbalance(t *testing.T) {
	pc := NewPerfCollector(10, 100)

	uneven := []time.Duration{30 * time.Microsecond, 10 * time.Microsecond, 10 * time.Microsecond, 10 * time.Microsecond}
	even := []time.Duration{10 * time.Microsecond, 10 * time.Microsecond}
	for i := 0; i < 3; i++ {
		pc.StartGeneration()
		pc.StartPhase(PhaseUpdate)
		pc.RecordPartitions(PhaseUpdate, uneven)
		pc.StartPhase(PhaseColorize)
		pc.RecordPartitions(PhaseColorize, even)
		pc.RecordPartitions(PhaseSwap, even[:1]) // single partition, ignored
		pc.EndGeneration()
	}

	stats := pc.Stats()
	if got := stats.PhaseImbalance[PhaseUpdate]; math.Abs(got-2) > 1e-9 {
		t.Errorf("update imbalance = %v, want 2", got)
	}
	if got := stats.PhaseImbalance[PhaseColorize]; math.Abs(got-1) > 1e-9 {
		t.Errorf("colorize imbalance = %v, want 1", got)
	}
	if _, ok := stats.PhaseImbalance[PhaseSwap]; ok {
		t.Error("single-partition phase should not report imbalance")
	}

	row := stats.ToCSV(30)
	if row.UpdateImbalance != stats.PhaseImbalance[PhaseUpdate] || row.ColorizeImbalance != stats.PhaseImbalance[PhaseColorize] {
		t.Errorf("csv imbalance = %v/%v, want %v/%v", row.UpdateImbalance, row.ColorizeImbalance,
			stats.PhaseImbalance[PhaseUpdate], stats.PhaseImbalance[PhaseColorize])
	}
}

func TestPerfCollector_CellsPerSec(t *testing.T) {
	pc := NewPerfCollector(10, 768*1024)
	for i := 0; i < 3; i++ {
		pc.StartGeneration()
		pc.StartPhase(PhaseUpdate)
		time.Sleep(50 * time.Microsecond)
		pc.EndGeneration()
	}

	stats := pc.Stats()
	if stats.GenerationsPerSec <= 0 {
		t.Fatal("expected positive generations per second")
	}
	if want := stats.GenerationsPerSec * float64(768*1024); stats.CellsPerSec != want {
		t.Errorf("CellsPerSec = %v, want %v", stats.CellsPerSec, want)
	}
	if stats.ToCSV(0).CellsPerSec != stats.CellsPerSec {
		t.Error("csv row should carry cells per second")
	}
}
