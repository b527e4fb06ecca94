// Package renderer draws the automaton with raylib.
package renderer

import (
	"image/color"

	rl "github.com/gen2brain/raylib-go/raylib"

	"github.com/pthm-cable/multilife/camera"
)

// gridLineZoom is the zoom above which cell borders are drawn.
const gridLineZoom = 8

// GridRenderer uploads the display buffer to a texture with one texel per
// cell and draws it through the camera.
type GridRenderer struct {
	tex        rl.Texture2D
	cols, rows int

	showGridLines bool
	initialized   bool
}

// NewGridRenderer creates a renderer for a rows x cols grid.
func NewGridRenderer(rows, cols int) *GridRenderer {
	return &GridRenderer{rows: rows, cols: cols, showGridLines: true}
}

// Init creates the texture (must be called after raylib window is created).
func (r *GridRenderer) Init() {
	if r.initialized {
		return
	}

	img := rl.GenImageColor(r.cols, r.rows, rl.Black)
	r.tex = rl.LoadTextureFromImage(img)
	rl.SetTextureFilter(r.tex, rl.FilterPoint)
	rl.SetTextureWrap(r.tex, rl.WrapClamp)
	rl.UnloadImage(img)

	r.initialized = true
}

// Update uploads a row-major display buffer to the GPU texture. Buffers of
// the wrong size are ignored.
func (r *GridRenderer) Update(display []color.RGBA) {
	if !r.initialized {
		r.Init()
	}
	if len(display) != r.cols*r.rows {
		return
	}
	rl.UpdateTexture(r.tex, display)
}

// ToggleGridLines switches cell borders at high zoom.
func (r *GridRenderer) ToggleGridLines() {
	r.showGridLines = !r.showGridLines
}

// Draw renders the grid texture scaled to the camera view.
func (r *GridRenderer) Draw(cam *camera.Camera) {
	if !r.initialized {
		return
	}

	x, y, w, h := cam.WorldRect()
	srcRect := rl.Rectangle{X: 0, Y: 0, Width: float32(r.cols), Height: float32(r.rows)}
	dstRect := rl.Rectangle{X: x, Y: y, Width: w, Height: h}
	rl.DrawTexturePro(r.tex, srcRect, dstRect, rl.Vector2{}, 0, rl.White)

	if r.showGridLines && cam.Zoom >= gridLineZoom {
		r.drawGridLines(cam)
	}
}

// drawGridLines draws borders for the visible cells only.
func (r *GridRenderer) drawGridLines(cam *camera.Camera) {
	lineColor := rl.Color{R: 40, G: 40, B: 40, A: 255}
	minX, minY, maxX, maxY := cam.VisibleWorldBounds()

	for col := int(minX); col <= int(maxX); col++ {
		x0, y0 := cam.WorldToScreen(float32(col), minY)
		_, y1 := cam.WorldToScreen(float32(col), maxY)
		rl.DrawLineV(rl.Vector2{X: x0, Y: y0}, rl.Vector2{X: x0, Y: y1}, lineColor)
	}
	for row := int(minY); row <= int(maxY); row++ {
		x0, y0 := cam.WorldToScreen(minX, float32(row))
		x1, _ := cam.WorldToScreen(maxX, float32(row))
		rl.DrawLineV(rl.Vector2{X: x0, Y: y0}, rl.Vector2{X: x1, Y: y0}, lineColor)
	}
}

// DrawCellHighlight outlines one cell.
func (r *GridRenderer) DrawCellHighlight(cam *camera.Camera, row, col int) {
	if !cam.IsVisible(row, col) {
		return
	}
	x, y := cam.WorldToScreen(float32(col), float32(row))
	rl.DrawRectangleLinesEx(rl.Rectangle{X: x, Y: y, Width: cam.Zoom, Height: cam.Zoom}, 1, rl.White)
}

// Unload frees GPU resources.
func (r *GridRenderer) Unload() {
	if !r.initialized {
		return
	}
	rl.UnloadTexture(r.tex)
	r.initialized = false
}
