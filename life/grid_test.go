package life

import (
	"errors"
	"testing"
)

func TestNewGridRejectsBadDimensions(t *testing.T) {
	for _, dims := range [][2]int{{0, 4}, {4, 0}, {-1, 3}} {
		if _, err := NewGrid(dims[0], dims[1]); !errors.Is(err, ErrInvalidDimensions) {
			t.Errorf("NewGrid(%d, %d) error = %v, want ErrInvalidDimensions", dims[0], dims[1], err)
		}
	}
}

func TestInBounds(t *testing.T) {
	g := MustGrid(3, 5)
	tests := []struct {
		row, col int
		want     bool
	}{
		{0, 0, true},
		{2, 4, true},
		{-1, 0, false},
		{0, -1, false},
		{3, 0, false},
		{0, 5, false},
	}
	for _, tt := range tests {
		if got := g.InBounds(tt.row, tt.col); got != tt.want {
			t.Errorf("InBounds(%d, %d) = %v, want %v", tt.row, tt.col, got, tt.want)
		}
	}
}
