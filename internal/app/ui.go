package app

import (
	"fmt"
	"image/color"
	"time"

	rl "github.com/gen2brain/raylib-go/raylib"
	"github.com/philipparndt/printview/internal/model"
	"github.com/philipparndt/printview/version"
)

const (
	fontSize   = 16
	smallSize  = 14
	lineHeight = 20
	statusTTL  = 4 * time.Second
)

var (
	defaultBackground = color.RGBA{30, 30, 38, 255}
	headingColor      = rl.Yellow
	textColor         = rl.White
	hintColor         = rl.NewColor(160, 160, 170, 255)
)

var helpLines = []string{
	"Left drag: rotate   Right drag / Shift+drag: pan   Middle drag: distance",
	"Wheel: zoom   1-4/T/B: front, back, left, right, top, bottom",
	"R/Home: reset view (Shift: both views)   Tab: 2D/3D   O: ortho   G: axes",
	"C: center   +/-: scale   X/Y/Z: rotate 90 (Shift: back)   A: normals",
	"Up/Down: layers   Ctrl+S: save   Ctrl+R: reload   Esc: quit",
}

func toRaylib(c color.RGBA) rl.Color {
	return rl.NewColor(c.R, c.G, c.B, c.A)
}

func (app *App) text(s string, x, y int32, size int32, c rl.Color) {
	rl.DrawText(s, x, y, size, c)
}

// drawUI draws the model information, view state and status overlays
func (app *App) drawUI() {
	y := int32(10)
	s := app.doc.Scene()

	app.text(app.doc.Title(windowTitle), 10, y, fontSize, headingColor)
	y += lineHeight

	switch m := s.Model().(type) {
	case *model.Mesh:
		size := m.BoundingBox().Size()
		app.text(fmt.Sprintf("  Size: %.2f x %.2f x %.2f mm", size.X, size.Y, size.Z), 10, y, smallSize, textColor)
		y += lineHeight
		app.text(fmt.Sprintf("  Scale: %.3f", m.ScalingFactor()), 10, y, smallSize, textColor)
		y += lineHeight
		if info := app.UI.meshInfo; info != nil {
			app.text(fmt.Sprintf("  Facets: %d", info.FacetCount), 10, y, smallSize, textColor)
			y += lineHeight
			app.text(fmt.Sprintf("  Surface Area: %.2f mm2", info.SurfaceArea), 10, y, smallSize, textColor)
			y += lineHeight
		}
	case *model.Toolpath:
		app.text(fmt.Sprintf("  Layers: %d / %d", m.NumLayersToDraw(), m.LayerCount()), 10, y, smallSize, textColor)
		y += lineHeight
		if info := app.UI.layerInfo; info != nil {
			app.text(fmt.Sprintf("  Height: %.2f mm (%.2f mm layers)", info.MaxZ, info.AvgLayerHeight), 10, y, smallSize, textColor)
			y += lineHeight
			app.text(fmt.Sprintf("  Filament path: %.1f mm", info.ExtrudeLength), 10, y, smallSize, textColor)
			y += lineHeight
		}
	}

	y += lineHeight / 2
	st := s.CurrentView().State()
	mode := "3D perspective"
	switch {
	case s.Mode2D():
		mode = "2D"
	case s.ModeOrtho():
		mode = "3D ortho"
	}
	app.text(fmt.Sprintf("View: %s  az %.0f  el %.0f  zoom %.2f", mode, st.Azimuth, st.Elevation, st.ZoomFactor), 10, y, smallSize, hintColor)

	screenWidth := int32(rl.GetScreenWidth())
	screenHeight := int32(rl.GetScreenHeight())

	if app.FileWatch.isLoading {
		elapsed := time.Since(app.FileWatch.loadingStartTime).Seconds()
		loading := fmt.Sprintf("Loading... (%.1fs)", elapsed)
		width := rl.MeasureText(loading, fontSize)
		rl.DrawRectangle(screenWidth-width-40, 20, width+20, 30, rl.NewColor(0, 0, 0, 180))
		app.text(loading, screenWidth-width-30, 27, fontSize, headingColor)
	}

	if app.UI.showHelp {
		hy := screenHeight - int32(len(helpLines)+2)*lineHeight
		for _, line := range helpLines {
			app.text(line, 10, hy, smallSize, hintColor)
			hy += lineHeight
		}
	} else {
		app.text("H: help", 10, screenHeight-2*lineHeight, smallSize, hintColor)
	}

	if app.UI.status != "" && time.Since(app.UI.statusAt) < statusTTL {
		app.text(app.UI.status, 10, screenHeight-lineHeight, smallSize, headingColor)
	}

	v := version.Version
	app.text(v, screenWidth-rl.MeasureText(v, smallSize)-10, screenHeight-lineHeight, smallSize, hintColor)
}
