package life

import "testing"

// checkCoverage verifies that parts cover a rows x cols grid exactly once.
func checkCoverage(t *testing.T, rows, cols int, parts []Partition) {
	t.Helper()
	hits := make([]int, rows*cols)
	for _, p := range parts {
		if !p.Within(rows, cols) {
			t.Fatalf("%dx%d: partition %v outside grid", rows, cols, p)
		}
		for r := p.Row0; r < p.Row1; r++ {
			for c := p.Col0; c < p.Col1; c++ {
				hits[r*cols+c]++
			}
		}
	}
	for i, n := range hits {
		if n != 1 {
			t.Fatalf("%dx%d: cell (%d,%d) covered %d times", rows, cols, i/cols, i%cols, n)
		}
	}
}

func TestRowBandsCoverage(t *testing.T) {
	for _, rows := range []int{1, 2, 7, 64, 100} {
		for _, cols := range []int{1, 3, 50} {
			for _, w := range []int{0, 1, 2, 3, 8, 13, 200} {
				parts := RowBands(rows, cols, w)
				want := w
				if want < 1 {
					want = 1
				}
				if len(parts) != want {
					t.Fatalf("RowBands(%d,%d,%d) returned %d bands, want %d", rows, cols, w, len(parts), want)
				}
				checkCoverage(t, rows, cols, parts)
			}
		}
	}
}

func TestRowBandsRemainderGoesLast(t *testing.T) {
	parts := RowBands(10, 4, 3)
	sizes := []int{parts[0].Row1 - parts[0].Row0, parts[1].Row1 - parts[1].Row0, parts[2].Row1 - parts[2].Row0}
	if sizes[0] != 3 || sizes[1] != 3 || sizes[2] != 4 {
		t.Errorf("band sizes = %v, want [3 3 4]", sizes)
	}
}

func TestTilesCoverage(t *testing.T) {
	for _, rows := range []int{1, 5, 64, 65, 130} {
		for _, cols := range []int{1, 63, 64, 129} {
			for _, edge := range []int{1, 8, 64, 100} {
				checkCoverage(t, rows, cols, Tiles(rows, cols, edge))
			}
		}
	}
}

func TestTilesClipBorders(t *testing.T) {
	parts := Tiles(70, 130, 64)
	if len(parts) != 6 {
		t.Fatalf("got %d tiles, want 6", len(parts))
	}
	last := parts[len(parts)-1]
	if last != (Partition{Row0: 64, Row1: 70, Col0: 128, Col1: 130}) {
		t.Errorf("last tile = %v", last)
	}
}

func TestWorkGroupsCoverage(t *testing.T) {
	for _, rows := range []int{1, 4, 9} {
		for _, cols := range []int{1, 255, 256, 257} {
			parts := WorkGroups(rows, cols, 256)
			checkCoverage(t, rows, cols, parts)
			for _, p := range parts {
				if p.Row1-p.Row0 != 1 {
					t.Fatalf("work group %v spans more than one row", p)
				}
			}
		}
	}
}

func TestLayoutPartitions(t *testing.T) {
	tests := []struct {
		name    string
		layout  Layout
		wantLen int
		wantErr bool
	}{
		{"bands", Layout{Policy: PolicyBands, Workers: 4}, 4, false},
		{"tiles", Layout{Policy: PolicyTiles, TileSize: 64}, 4, false},
		{"kernel", Layout{Policy: PolicyKernel, WorkGroupSize: 64}, 256, false},
		{"bad tile", Layout{Policy: PolicyTiles}, 0, true},
		{"bad group", Layout{Policy: PolicyKernel, WorkGroupSize: -1}, 0, true},
		{"unknown", Layout{Policy: "gpu"}, 0, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			parts, err := tt.layout.Partitions(128, 128)
			if tt.wantErr {
				if err == nil {
					t.Fatal("expected error")
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if len(parts) != tt.wantLen {
				t.Errorf("got %d partitions, want %d", len(parts), tt.wantLen)
			}
			checkCoverage(t, 128, 128, parts)
		})
	}
}
