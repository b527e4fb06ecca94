package ui

import (
	"fmt"

	gui "github.com/gen2brain/raylib-go/raygui"
	rl "github.com/gen2brain/raylib-go/raylib"
)

// MaxSpeed is the largest generations-per-frame setting offered.
const MaxSpeed = 20

// ControlsState is the run state the controls panel reflects.
type ControlsState struct {
	Paused    bool
	Speed     int
	GridLines bool
}

// ControlsAction reports what the user changed this frame.
type ControlsAction struct {
	TogglePause     bool
	Step            bool
	ResetCamera     bool
	ToggleGridLines bool
	Speed           int // new speed, equal to the input when unchanged
}

// ControlsPanel renders the raygui run controls.
type ControlsPanel struct {
	renderer *Renderer
	x, y     int32
	width    int32
	visible  bool
}

// NewControlsPanel creates a new controls panel.
func NewControlsPanel(x, y, width int32) *ControlsPanel {
	return &ControlsPanel{
		renderer: NewRenderer(),
		x:        x,
		y:        y,
		width:    width,
		visible:  true,
	}
}

// SetPosition updates the panel position.
func (c *ControlsPanel) SetPosition(x, y int32) {
	c.x = x
	c.y = y
}

// Toggle switches panel visibility.
func (c *ControlsPanel) Toggle() bool {
	c.visible = !c.visible
	return c.visible
}

// Contains reports whether a screen point is over the panel, so clicks on
// it are not treated as grid input.
func (c *ControlsPanel) Contains(x, y float32) bool {
	if !c.visible {
		return false
	}
	return x >= float32(c.x) && x < float32(c.x+c.width) && y >= float32(c.y) && y < float32(c.y+c.height())
}

func (c *ControlsPanel) height() int32 {
	return c.renderer.Theme.Padding*2 + 20 + 35 + 35 + 40
}

// Draw renders the panel and returns the user's actions.
func (c *ControlsPanel) Draw(state ControlsState) ControlsAction {
	action := ControlsAction{Speed: state.Speed}
	if !c.visible {
		return action
	}

	r := c.renderer
	padding := r.Theme.Padding
	r.DrawPanel(c.x, c.y, c.width, c.height())

	x := float32(c.x + padding)
	y := float32(c.y + padding)
	inner := float32(c.width - padding*2)
	half := (inner - 10) / 2

	rl.DrawText("Controls", int32(x), int32(y), 16, rl.White)
	y += 20

	pauseText := "Pause"
	if state.Paused {
		pauseText = "Resume"
	}
	if gui.Button(rl.Rectangle{X: x, Y: y, Width: half, Height: 28}, pauseText) {
		action.TogglePause = true
	}
	if gui.Button(rl.Rectangle{X: x + half + 10, Y: y, Width: half, Height: 28}, "Step") {
		action.Step = true
	}
	y += 35

	gridText := "Grid: off"
	if state.GridLines {
		gridText = "Grid: on"
	}
	if gui.Button(rl.Rectangle{X: x, Y: y, Width: half, Height: 28}, gridText) {
		action.ToggleGridLines = true
	}
	if gui.Button(rl.Rectangle{X: x + half + 10, Y: y, Width: half, Height: 28}, "Fit View") {
		action.ResetCamera = true
	}
	y += 35

	rl.DrawText(fmt.Sprintf("Speed: %dx", state.Speed), int32(x), int32(y), r.Theme.FontSize, r.Theme.LabelColor)
	y += 14
	newSpeed := gui.SliderBar(
		rl.Rectangle{X: x + 10, Y: y, Width: inner - 30, Height: 16},
		"1", fmt.Sprint(MaxSpeed),
		float32(state.Speed), 1, MaxSpeed,
	)
	if s := int(newSpeed + 0.5); s != state.Speed {
		action.Speed = min(max(s, 1), MaxSpeed)
	}

	return action
}
