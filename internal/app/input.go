package app

import (
	rl "github.com/gen2brain/raylib-go/raylib"
	"github.com/philipparndt/printview/internal/model"
	"github.com/philipparndt/printview/pkg/geometry"
)

const (
	scaleStep  = 1.1
	rotateStep = 90.0
)

// Camera presets as (azimuth, elevation); negative elevation looks down
var presets = map[int32][2]float64{
	rl.KeyOne:   {0, 0},   // Front
	rl.KeyTwo:   {180, 0}, // Back
	rl.KeyThree: {90, 0},  // Left
	rl.KeyFour:  {270, 0}, // Right
	rl.KeyT:     {0, -90}, // Top
	rl.KeyB:     {0, 90},  // Bottom
}

// handleInput processes user input. It returns true when the user asked to quit.
func (app *App) handleInput() bool {
	ctrl := rl.IsKeyDown(rl.KeyLeftControl) || rl.IsKeyDown(rl.KeyRightControl) ||
		rl.IsKeyDown(rl.KeyLeftSuper) || rl.IsKeyDown(rl.KeyRightSuper)
	shift := rl.IsKeyDown(rl.KeyLeftShift) || rl.IsKeyDown(rl.KeyRightShift)

	if rl.IsKeyPressed(rl.KeyEscape) || (ctrl && (rl.IsKeyPressed(rl.KeyQ) || rl.IsKeyPressed(rl.KeyC))) {
		return true
	}

	app.handleMouse(shift)

	if ctrl {
		if rl.IsKeyPressed(rl.KeyS) {
			app.save()
		}
		if rl.IsKeyPressed(rl.KeyR) {
			app.FileWatch.needsReload = true
		}
		return false
	}

	app.handleKeys(shift)
	return false
}

// handleMouse maps drags and the wheel onto scene gestures.
// Shift + left drag pans, like the right button.
func (app *App) handleMouse(shift bool) {
	s := app.doc.Scene()
	pos := rl.GetMousePosition()
	x, y := float64(pos.X), float64(pos.Y)

	left := rl.IsMouseButtonDown(rl.MouseLeftButton)
	middle := rl.IsMouseButtonDown(rl.MouseMiddleButton)
	right := rl.IsMouseButtonDown(rl.MouseRightButton)

	if rl.IsMouseButtonPressed(rl.MouseLeftButton) ||
		rl.IsMouseButtonPressed(rl.MouseMiddleButton) ||
		rl.IsMouseButtonPressed(rl.MouseRightButton) {
		s.ButtonPress(x, y)
		app.Interaction.dragging = true
		app.Interaction.panning = shift && rl.IsMouseButtonPressed(rl.MouseLeftButton)
		app.Interaction.lastX, app.Interaction.lastY = x, y
	}

	if !left && !middle && !right {
		app.Interaction.dragging = false
		app.Interaction.panning = false
	}

	if app.Interaction.dragging && (x != app.Interaction.lastX || y != app.Interaction.lastY) {
		if app.Interaction.panning {
			s.ButtonMotion(x, y, false, false, true)
		} else {
			s.ButtonMotion(x, y, left, middle, right)
		}
		app.Interaction.lastX, app.Interaction.lastY = x, y
	}

	if wheel := rl.GetMouseWheelMove(); wheel != 0 {
		s.WheelScroll(float64(wheel))
	}
}

func (app *App) handleKeys(shift bool) {
	s := app.doc.Scene()

	for key, angles := range presets {
		if rl.IsKeyPressed(key) {
			s.RotateView(angles[0], angles[1])
		}
	}

	switch {
	case rl.IsKeyPressed(rl.KeyHome), rl.IsKeyPressed(rl.KeyR):
		s.ResetView(shift)
	case rl.IsKeyPressed(rl.KeyTab), rl.IsKeyPressed(rl.KeyV):
		s.SetMode2D(!s.Mode2D())
	case rl.IsKeyPressed(rl.KeyO):
		s.SetModeOrtho(!s.ModeOrtho())
	case rl.IsKeyPressed(rl.KeyG):
		s.ShowAxes = !s.ShowAxes
		s.Invalidate()
	case rl.IsKeyPressed(rl.KeyH), rl.IsKeyPressed(rl.KeyF1):
		app.UI.showHelp = !app.UI.showHelp
	case rl.IsKeyPressed(rl.KeyA):
		app.toggleArrows()
	case rl.IsKeyPressed(rl.KeyC):
		app.modify("center", s.CenterModel())
	case rl.IsKeyPressed(rl.KeyEqual), rl.IsKeyPressed(rl.KeyKpAdd):
		app.modify("scale", s.ScaleModel(scaleStep))
	case rl.IsKeyPressed(rl.KeyMinus), rl.IsKeyPressed(rl.KeyKpSubtract):
		app.modify("scale", s.ScaleModel(1/scaleStep))
	case rl.IsKeyPressed(rl.KeyX):
		app.rotate(geometry.AxisX, shift)
	case rl.IsKeyPressed(rl.KeyY):
		app.rotate(geometry.AxisY, shift)
	case rl.IsKeyPressed(rl.KeyZ):
		app.rotate(geometry.AxisZ, shift)
	case rl.IsKeyPressed(rl.KeyUp), rl.IsKeyPressed(rl.KeyPageUp):
		app.changeLayers(1)
	case rl.IsKeyPressed(rl.KeyDown), rl.IsKeyPressed(rl.KeyPageDown):
		app.changeLayers(-1)
	}
}

// modify reports err or refreshes the title after a model change
func (app *App) modify(action string, err error) {
	if err != nil {
		app.reportError(action, err)
		return
	}
	app.analyze()
	rl.SetWindowTitle(app.doc.Title(windowTitle))
}

func (app *App) toggleArrows() {
	m, ok := app.doc.Scene().Model().(*model.Mesh)
	if !ok {
		app.setStatus("Normals are only available for meshes")
		return
	}
	if err := app.doc.Scene().ShowArrows(!m.ArrowsEnabled()); err != nil {
		app.reportError("arrows", err)
	}
}

// rotate turns the mesh a quarter around axis, backwards with shift
func (app *App) rotate(axis geometry.Axis, reverse bool) {
	if _, ok := app.doc.Scene().Model().(*model.Mesh); !ok {
		app.setStatus("Rotation is only available for meshes")
		return
	}
	step := rotateStep
	if reverse {
		step = -step
	}
	app.modify("rotate", app.doc.Scene().RotateModelBy(step, axis.String()))
}

func (app *App) changeLayers(delta int) {
	tp, ok := app.doc.Scene().Model().(*model.Toolpath)
	if !ok {
		return
	}
	if err := app.doc.Scene().ChangeNumLayers(tp.NumLayersToDraw() + delta); err != nil {
		app.reportError("layers", err)
	}
}

func (app *App) save() {
	if err := app.doc.Save(); err != nil {
		app.reportError("save", err)
		return
	}
	app.setStatus("Saved %s", app.doc.Path())
	rl.SetWindowTitle(app.doc.Title(windowTitle))
}
