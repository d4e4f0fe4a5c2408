// Package scene composes the model, supporting actors and the two cameras,
// routes input gestures and drives per-frame drawing.
package scene

import (
	"errors"
	"fmt"
	"image/color"
	"math"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/philipparndt/printview/internal/logger"
	"github.com/philipparndt/printview/internal/model"
	"github.com/philipparndt/printview/internal/render"
	"github.com/philipparndt/printview/internal/view"
	"github.com/philipparndt/printview/pkg/geometry"
	"go.uber.org/zap"
)

const (
	PanSpeed    = 25.0
	RotateSpeed = 25.0
	WheelDelta  = 30.0
	AxesLength  = 50.0
)

var (
	// ErrNoModel is returned by model operations before a model was added
	ErrNoModel = errors.New("scene has no model")
	// ErrUnsupported is returned when the model lacks the requested operation
	ErrUnsupported = errors.New("operation not supported by model")
)

// Exporter persists mesh data, see storage.ModelFile
type Exporter interface {
	WriteSTL(m model.MeshData) error
}

// transformable is the mesh manipulation surface
type transformable interface {
	model.Model
	Scale(factor float64) error
	ScalingFactor() float64
	Dimension(d model.Dimension) float64
	RotateAbs(angle float64, axis geometry.Axis)
	RotateRel(angle float64, axis geometry.Axis)
	SetArrowsEnabled(enabled bool)
}

// layered is implemented by toolpath models
type layered interface {
	SetNumLayersToDraw(n int)
}

type axis struct {
	end   mgl64.Vec3
	color color.RGBA
	label string
}

var axes = []axis{
	{mgl64.Vec3{-AxesLength, 0, 0}, color.RGBA{255, 0, 0, 255}, "x"},
	{mgl64.Vec3{0, -AxesLength, 0}, color.RGBA{0, 255, 0, 255}, "y"},
	{mgl64.Vec3{0, 0, AxesLength}, color.RGBA{0, 138, 255, 255}, "z"},
}

// Scene owns the actors and cameras. It is not safe for concurrent use; all
// calls belong on the render thread.
type Scene struct {
	r render.Renderer

	model  model.Model
	actors []model.Actor

	viewOrtho       *view.View2D
	viewPerspective *view.View3D
	current         view.View

	cursorX, cursorY float64
	initialized      bool
	dirty            bool

	// ShowAxes draws the orientation indicator in the lower left corner
	ShowAxes bool
	// OnInvalidate is called whenever the scene needs a redraw
	OnInvalidate func()

	log *zap.Logger
}

// New creates a scene drawing through r with the perspective view active
func New(r render.Renderer, opts view.Options) *Scene {
	s := &Scene{
		r:               r,
		viewOrtho:       view.NewView2D(r, opts),
		viewPerspective: view.NewView3D(r, opts),
		ShowAxes:        true,
		dirty:           true,
		log:             logger.Named("scene"),
	}
	s.current = s.viewPerspective
	return s
}

// Model returns the primary model or nil
func (s *Scene) Model() model.Model {
	return s.model
}

// Actors returns the actors in paint order
func (s *Scene) Actors() []model.Actor {
	return s.actors
}

// CurrentView returns the active camera
func (s *Scene) CurrentView() view.View {
	return s.current
}

// View2D returns the 2D camera
func (s *Scene) View2D() *view.View2D {
	return s.viewOrtho
}

// View3D returns the 3D camera
func (s *Scene) View3D() *view.View3D {
	return s.viewPerspective
}

// AddModel sets the primary model and appends it to the actors
func (s *Scene) AddModel(m model.Model) {
	s.model = m
	s.actors = append(s.actors, m)
	s.Invalidate()
}

// AddSupportingActor appends a secondary actor such as the platform grid
func (s *Scene) AddSupportingActor(a model.Actor) {
	s.actors = append(s.actors, a)
	s.Invalidate()
}

// Clear removes all actors. The model reference is kept; callers re-add it.
func (s *Scene) Clear() {
	s.actors = nil
	s.Invalidate()
}

// Init sets the baseline pipeline state and initializes pending actors
func (s *Scene) Init() {
	s.r.SetState(render.DefaultState())
	s.InitActors()
	s.initialized = true
}

// Initialized reports whether Init has run
func (s *Scene) Initialized() bool {
	return s.initialized
}

// InitActors initializes every actor that has not been initialized yet
func (s *Scene) InitActors() {
	for _, a := range s.actors {
		if !a.Initialized() {
			a.Init()
		}
	}
}

// Display draws one frame of the given size
func (s *Scene) Display(width, height int) {
	if !s.initialized {
		s.Init()
	} else {
		s.InitActors()
	}

	if s.ShowAxes {
		s.drawAxes(width, height)
	}

	s.current.Begin(width, height)
	defer s.current.End()
	s.current.DisplayTransform()

	ctx := model.DisplayContext{
		ModeOrtho: s.ModeOrtho(),
		Mode2D:    s.Mode2D(),
	}
	if ctx.ModeOrtho {
		ctx.Elevation = -s.current.State().Elevation
	} else {
		ctx.EyeHeight = s.EyeHeight()
	}

	for _, a := range s.actors {
		a.Display(s.r, ctx)
	}
}

// EyeHeight is the height of the line of sight at the model's depth for the
// current view
func (s *Scene) EyeHeight() float64 {
	st := s.current.State()
	y := st.Y / st.ZoomFactor
	z := st.Z
	angle := -mgl64.RadToDeg(math.Atan2(z, y)) - st.Elevation
	return math.Sqrt(y*y+z*z) * math.Sin(mgl64.DegToRad(angle))
}

func (s *Scene) drawAxes(width, height int) {
	s.viewOrtho.Begin(width, height)
	defer s.viewOrtho.End()

	s.r.PushMatrix()
	defer s.r.PopMatrix()
	s.current.UITransform(AxesLength)

	for _, a := range axes {
		s.r.DrawLines([]float32{0, 0, 0, float32(a.end[0]), float32(a.end[1]), float32(a.end[2])}, a.color)
	}
	for _, a := range axes {
		s.r.DrawLabel(a.end.Add(mgl64.Vec3{2, 2, 2}), a.label, a.color)
	}
}

// ButtonPress records the cursor position at the start of a drag
func (s *Scene) ButtonPress(x, y float64) {
	s.cursorX = x
	s.cursorY = y
}

// ButtonMotion turns a cursor move into a camera gesture: left rotates,
// middle offsets when the view supports it, right pans.
func (s *Scene) ButtonMotion(x, y float64, left, middle, right bool) {
	dx := x - s.cursorX
	dy := y - s.cursorY

	switch {
	case left:
		s.current.Rotate(dx*RotateSpeed/100, dy*RotateSpeed/100)
	case middle:
		if s.current.Capabilities().Offset {
			s.current.Offset(dx*PanSpeed/100, dy*PanSpeed/100)
		}
	case right:
		s.current.Pan(dx*PanSpeed/100, dy*PanSpeed/100)
	}

	s.cursorX = x
	s.cursorY = y
	s.Invalidate()
}

// WheelScroll zooms by a fixed step; positive direction zooms in
func (s *Scene) WheelScroll(direction float64) {
	d := 1.0
	if direction < 0 {
		d = -1
	}
	s.current.Zoom(0, d*WheelDelta)
	s.Invalidate()
}

// ResetView restores the current camera, or both cameras when both is set
func (s *Scene) ResetView(both bool) {
	if both {
		s.viewOrtho.ResetState()
		s.viewPerspective.ResetState()
	} else {
		s.current.ResetState()
	}
	s.Invalidate()
}

// Mode2D reports whether the 2D view is active
func (s *Scene) Mode2D() bool {
	return s.current == view.View(s.viewOrtho)
}

// SetMode2D switches between the 2D and the 3D view
func (s *Scene) SetMode2D(enabled bool) {
	if enabled {
		s.current = s.viewOrtho
	} else {
		s.current = s.viewPerspective
	}
	s.Invalidate()
}

// ModeOrtho reports whether the current view renders orthographically
func (s *Scene) ModeOrtho() bool {
	return s.current.Capabilities().Ortho && s.current.Ortho()
}

// SetModeOrtho toggles orthographic projection when the view supports it
func (s *Scene) SetModeOrtho(enabled bool) {
	if s.current.Capabilities().Ortho {
		s.current.SetOrtho(enabled)
		s.Invalidate()
	}
}

// RotateView sets absolute camera angles outside of 2D mode
func (s *Scene) RotateView(azimuth, elevation float64) {
	if !s.Mode2D() {
		s.current.SetAngles(azimuth, elevation)
		s.Invalidate()
	}
}

// centerOffset is the translation that centers box on X/Y and puts its
// lowest point on z=0
func centerOffset(box geometry.BoundingBox) geometry.Vector3 {
	return geometry.NewVector3(
		-(box.Max.X+box.Min.X)/2,
		-(box.Max.Y+box.Min.Y)/2,
		-box.Min.Z,
	)
}

// ViewModelCenter displays the model centered on the platform without
// marking it modified
func (s *Scene) ViewModelCenter() error {
	if s.model == nil {
		return ErrNoModel
	}
	o := centerOffset(s.model.LocalBoundingBox())
	s.model.SetOffset(o.X, o.Y, o.Z)
	s.Invalidate()
	return nil
}

// CenterModel moves the model data to the platform center with its lowest
// point at z=0. The display offset is cleared since the data is centered now.
func (s *Scene) CenterModel() error {
	if s.model == nil {
		return ErrNoModel
	}
	o := centerOffset(s.model.LocalBoundingBox())
	s.model.Translate(o.X, o.Y, o.Z)
	s.model.SetOffset(0, 0, 0)
	s.model.Init()
	s.log.Debug("model centered", zap.Stringer("translation", o))
	s.Invalidate()
	return nil
}

// ChangeNumLayers sets the visible layer count of a toolpath model
func (s *Scene) ChangeNumLayers(n int) error {
	if s.model == nil {
		return ErrNoModel
	}
	l, ok := s.model.(layered)
	if !ok {
		return fmt.Errorf("%w: layers", ErrUnsupported)
	}
	l.SetNumLayersToDraw(n)
	s.Invalidate()
	return nil
}

func (s *Scene) mesh(op string) (transformable, error) {
	if s.model == nil {
		return nil, ErrNoModel
	}
	m, ok := s.model.(transformable)
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnsupported, op)
	}
	return m, nil
}

// ScaleModel multiplies the model scale by factor
func (s *Scene) ScaleModel(factor float64) error {
	m, err := s.mesh("scale")
	if err != nil {
		return err
	}
	if err := m.Scale(factor); err != nil {
		return err
	}
	m.Init()
	s.log.Debug("model scaled", zap.Float64("factor", factor), zap.Float64("scaling", m.ScalingFactor()))
	s.Invalidate()
	return nil
}

// ChangeModelDimension scales the model uniformly so that dimension d
// becomes value
func (s *Scene) ChangeModelDimension(d model.Dimension, value float64) error {
	m, err := s.mesh("dimension")
	if err != nil {
		return err
	}
	current := m.Dimension(d)
	if current == 0 {
		return fmt.Errorf("%w: model %s is zero", model.ErrGeometry, d)
	}

	// Target absolute scaling factor, applied relative to the current one
	scaling := m.ScalingFactor()
	target := (value / current) * scaling
	return s.ScaleModel(target / scaling)
}

// RotateModel sets the model rotation around the axis named by letter
func (s *Scene) RotateModel(angle float64, axisLetter string) error {
	m, err := s.mesh("rotate")
	if err != nil {
		return err
	}
	a, err := geometry.ParseAxis(axisLetter)
	if err != nil {
		return err
	}
	m.RotateAbs(angle, a)
	m.Init()
	s.log.Debug("model rotated", zap.Float64("angle", angle), zap.Stringer("axis", a))
	s.Invalidate()
	return nil
}

// RotateModelBy turns the model further by angle around the axis named by
// letter
func (s *Scene) RotateModelBy(angle float64, axisLetter string) error {
	m, err := s.mesh("rotate")
	if err != nil {
		return err
	}
	a, err := geometry.ParseAxis(axisLetter)
	if err != nil {
		return err
	}
	m.RotateRel(angle, a)
	m.Init()
	s.log.Debug("model rotated by", zap.Float64("angle", angle), zap.Stringer("axis", a))
	s.Invalidate()
	return nil
}

// ShowArrows toggles the facet normal arrows
func (s *Scene) ShowArrows(show bool) error {
	m, err := s.mesh("arrows")
	if err != nil {
		return err
	}
	m.SetArrowsEnabled(show)
	m.Init()
	s.Invalidate()
	return nil
}

// ModelModified reports unsaved model changes
func (s *Scene) ModelModified() bool {
	return s.model != nil && s.model.Modified()
}

// ExportToFile writes the model and clears the modified flag on success
func (s *Scene) ExportToFile(e Exporter) error {
	if s.model == nil {
		return ErrNoModel
	}
	data, ok := s.model.(model.MeshData)
	if !ok {
		return fmt.Errorf("%w: export", ErrUnsupported)
	}
	if err := e.WriteSTL(data); err != nil {
		return err
	}
	s.model.ClearModified()
	s.log.Info("model exported")
	return nil
}

// Invalidate requests a redraw
func (s *Scene) Invalidate() {
	s.dirty = true
	if s.OnInvalidate != nil {
		s.OnInvalidate()
	}
}

// Dirty reports whether a redraw is pending
func (s *Scene) Dirty() bool {
	return s.dirty
}

// ClearDirty acknowledges a redraw
func (s *Scene) ClearDirty() {
	s.dirty = false
}
