package camera

import (
	"math"
	"testing"
)

func near(a, b float32) bool {
	return math.Abs(float64(a-b)) < 0.01
}

func TestNew(t *testing.T) {
	cam := New(1024, 768, 1024, 768)

	// Should be centered on world
	if cam.X != 512 || cam.Y != 384 {
		t.Errorf("expected camera at (512, 384), got (%f, %f)", cam.X, cam.Y)
	}
	if cam.Zoom != 1.0 {
		t.Errorf("expected zoom 1.0, got %f", cam.Zoom)
	}
}

func TestFitZoom(t *testing.T) {
	tests := []struct {
		name           string
		vw, vh, ww, wh float32
		want           float32
	}{
		{"exact", 1024, 768, 1024, 768, 1},
		{"small grid", 800, 600, 100, 100, 6},
		{"wide grid", 800, 600, 1600, 100, 0.5},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cam := New(tt.vw, tt.vh, tt.ww, tt.wh)
			if !near(cam.MinZoom, tt.want) || !near(cam.Zoom, tt.want) {
				t.Errorf("MinZoom/Zoom = %f/%f, want %f", cam.MinZoom, cam.Zoom, tt.want)
			}
		})
	}
}

func TestWorldToScreenCentered(t *testing.T) {
	cam := New(1280, 720, 2560, 1440)

	// Camera center should map to screen center
	sx, sy := cam.WorldToScreen(1280, 720)
	if !near(sx, 640) || !near(sy, 360) {
		t.Errorf("expected screen center (640, 360), got (%f, %f)", sx, sy)
	}
}

func TestScreenToWorldRoundtrip(t *testing.T) {
	cam := New(1280, 720, 2560, 1440)
	cam.SetZoom(2)
	cam.Pan(100, -50)

	testCases := []struct{ sx, sy float32 }{
		{640, 360},  // center
		{100, 100},  // top-left
		{1200, 600}, // near bottom-right
	}

	for _, tc := range testCases {
		wx, wy := cam.ScreenToWorld(tc.sx, tc.sy)
		sx, sy := cam.WorldToScreen(wx, wy)
		if !near(sx, tc.sx) || !near(sy, tc.sy) {
			t.Errorf("roundtrip failed: (%f,%f) -> (%f,%f) -> (%f,%f)",
				tc.sx, tc.sy, wx, wy, sx, sy)
		}
	}
}

func TestScreenToCell(t *testing.T) {
	cam := New(100, 100, 10, 10) // 10 px per cell

	row, col, ok := cam.ScreenToCell(25, 95)
	if !ok || row != 9 || col != 2 {
		t.Errorf("ScreenToCell(25, 95) = %d, %d, %v; want 9, 2, true", row, col, ok)
	}

	cam = New(200, 100, 10, 10) // letterboxed horizontally
	if _, _, ok := cam.ScreenToCell(10, 50); ok {
		t.Error("point left of the grid should be outside")
	}
}

func TestPanStopsAtEdges(t *testing.T) {
	cam := New(1280, 720, 2560, 1440)
	cam.SetZoom(1)

	cam.Pan(-10000, 0)
	if !near(cam.X, 640) {
		t.Errorf("expected X clamped to 640, got %f", cam.X)
	}

	cam.Pan(0, 10000)
	if !near(cam.Y, 1080) {
		t.Errorf("expected Y clamped to 1080, got %f", cam.Y)
	}
}

func TestPanIgnoredWhenGridFits(t *testing.T) {
	cam := New(1024, 768, 1024, 768)
	cam.Pan(300, 300)
	if cam.X != 512 || cam.Y != 384 {
		t.Errorf("expected camera to stay centered, got (%f, %f)", cam.X, cam.Y)
	}
}

func TestZoomClamp(t *testing.T) {
	cam := New(1280, 720, 2560, 1440)

	// MinZoom should be min(1280/2560, 720/1440) = 0.5
	if cam.MinZoom != 0.5 {
		t.Errorf("expected MinZoom 0.5, got %f", cam.MinZoom)
	}

	cam.SetZoom(0.1) // Below min
	if cam.Zoom != 0.5 {
		t.Errorf("expected zoom clamped to 0.5, got %f", cam.Zoom)
	}

	cam.SetZoom(100.0) // Above max
	if cam.Zoom != cam.MaxZoom {
		t.Errorf("expected zoom clamped to %f, got %f", cam.MaxZoom, cam.Zoom)
	}
}

func TestVisibleWorldBoundsClipped(t *testing.T) {
	cam := New(1280, 720, 2560, 1440) // fits at 0.5, whole world visible
	minX, minY, maxX, maxY := cam.VisibleWorldBounds()
	if minX != 0 || minY != 0 || maxX != 2560 || maxY != 1440 {
		t.Errorf("bounds = (%f,%f)-(%f,%f), want whole world", minX, minY, maxX, maxY)
	}

	cam.SetZoom(2)
	minX, minY, maxX, maxY = cam.VisibleWorldBounds()
	if !near(maxX-minX, 640) || !near(maxY-minY, 360) {
		t.Errorf("visible extent = %fx%f, want 640x360", maxX-minX, maxY-minY)
	}
}

func TestIsVisible(t *testing.T) {
	cam := New(1280, 720, 2560, 1440)
	cam.SetZoom(1)

	// Visible range: (640, 360) to (1920, 1080)
	tests := []struct {
		name     string
		row, col int
		want     bool
	}{
		{"center", 720, 1280, true},
		{"far corner", 1300, 2400, false},
		{"left of view", 500, 639, false},
		{"left edge", 500, 640, true},
		{"above view", 359, 1000, false},
		{"top edge", 360, 1000, true},
		{"outside grid", -1, 1000, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := cam.IsVisible(tt.row, tt.col); got != tt.want {
				t.Errorf("IsVisible(%d, %d) = %v, want %v", tt.row, tt.col, got, tt.want)
			}
		})
	}

	// Zoomed out, every cell of the grid is on screen
	cam.Reset()
	if !cam.IsVisible(0, 0) || !cam.IsVisible(1439, 2559) {
		t.Error("grid corners should be visible when fitted")
	}
}

func TestReset(t *testing.T) {
	cam := New(1280, 720, 2560, 1440)
	cam.SetZoom(2.5)
	cam.Pan(300, 200)

	cam.Reset()

	if cam.X != 1280 || cam.Y != 720 {
		t.Errorf("expected position (1280, 720), got (%f, %f)", cam.X, cam.Y)
	}
	if cam.Zoom != cam.MinZoom {
		t.Errorf("expected zoom %f, got %f", cam.MinZoom, cam.Zoom)
	}
}

func TestResizeKeepsZoomValid(t *testing.T) {
	cam := New(1024, 768, 1024, 768)
	cam.Resize(2048, 1536)
	if cam.MinZoom != 2 || cam.Zoom != 2 {
		t.Errorf("MinZoom/Zoom = %f/%f after resize, want 2/2", cam.MinZoom, cam.Zoom)
	}
}
