package sim

import (
	"image/color"
	"math/rand/v2"
	"testing"

	"github.com/pthm-cable/multilife/life"
)

func TestKernelMatchesTileUpdate(t *testing.T) {
	src := rand.New(rand.NewPCG(17, 17))
	cur := life.MustGrid(19, 23)
	life.Populate(cur, 3, 0.6, src)
	ch := life.CellHash{Seed: 42}

	want := life.MustGrid(19, 23)
	wantCounts := life.Update(cur, want, life.Whole(19, 23), ch)

	got := life.MustGrid(19, 23)
	var gotCounts life.Counts
	for _, p := range life.WorkGroups(19, 23, 5) {
		gotCounts.Add(kernelUpdate(cur, got, p, ch))
	}

	if !got.Equal(want) {
		t.Error("work-item update differs from partition update")
	}
	if gotCounts != wantCounts {
		t.Errorf("counts = %+v, want %+v", gotCounts, wantCounts)
	}
}

func TestKernelColorizeMatches(t *testing.T) {
	src := rand.New(rand.NewPCG(3, 4))
	g := life.MustGrid(9, 14)
	life.Populate(g, 5, 0.5, src)
	table, err := life.NewColorTable(5, life.DefaultPalette)
	if err != nil {
		t.Fatal(err)
	}

	want := make([]color.RGBA, len(g.Cells))
	wantCensus := life.Colorize(g, want, life.Whole(9, 14), table)

	got := make([]color.RGBA, len(g.Cells))
	var gotCensus life.Census
	for _, p := range life.WorkGroups(9, 14, 4) {
		gotCensus.Add(kernelColorize(g, got, p, table))
	}

	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("pixel %d = %v, want %v", i, got[i], want[i])
		}
	}
	if gotCensus != wantCensus {
		t.Errorf("census = %+v, want %+v", gotCensus, wantCensus)
	}
}
