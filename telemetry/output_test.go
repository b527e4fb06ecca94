package telemetry

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/pthm-cable/multilife/config"
)

func readLines(t *testing.T, path string) []string {
	t.Helper()
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("reading %s: %v", path, err)
	}
	return strings.Split(strings.TrimSpace(string(data)), "\n")
}

func TestOutputManagerDisabled(t *testing.T) {
	om, err := NewOutputManager("")
	if err != nil || om != nil {
		t.Fatalf("NewOutputManager(\"\") = %v, %v; want nil, nil", om, err)
	}
	if err := om.WriteStats(WindowStats{}); err != nil {
		t.Errorf("nil WriteStats: %v", err)
	}
	if err := om.Close(); err != nil {
		t.Errorf("nil Close: %v", err)
	}
}

func TestOutputManagerWritesCSV(t *testing.T) {
	dir := t.TempDir()
	om, err := NewOutputManager(dir)
	if err != nil {
		t.Fatalf("NewOutputManager: %v", err)
	}

	for gen := 60; gen <= 120; gen += 60 {
		if err := om.WriteStats(WindowStats{WindowEndGen: gen, Live: 3, Populations: []int{1, 2}}); err != nil {
			t.Fatalf("WriteStats: %v", err)
		}
		if err := om.WritePerf(PerfStats{}, gen); err != nil {
			t.Fatalf("WritePerf: %v", err)
		}
	}
	if err := om.WriteBookmark(Bookmark{Type: BookmarkStagnation, Generation: 120, Species: -1}); err != nil {
		t.Fatalf("WriteBookmark: %v", err)
	}
	if err := om.WriteConfig(config.Default()); err != nil {
		t.Fatalf("WriteConfig: %v", err)
	}
	if err := om.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}

	tests := []struct {
		file   string
		lines  int
		header string
	}{
		{"stats.csv", 3, "window_end,"},
		{"census.csv", 5, "window_end,species,population,share"},
		{"perf.csv", 3, "window_end,avg_generation_us"},
		{"bookmarks.csv", 2, "type,generation,species,description"},
	}
	for _, tt := range tests {
		t.Run(tt.file, func(t *testing.T) {
			lines := readLines(t, filepath.Join(dir, tt.file))
			if len(lines) != tt.lines {
				t.Errorf("%s has %d lines, want %d", tt.file, len(lines), tt.lines)
			}
			if !strings.HasPrefix(lines[0], tt.header) {
				t.Errorf("%s header = %q, want prefix %q", tt.file, lines[0], tt.header)
			}
		})
	}

	if _, err := config.Load(filepath.Join(dir, "config.yaml")); err != nil {
		t.Errorf("reloading written config: %v", err)
	}
}
