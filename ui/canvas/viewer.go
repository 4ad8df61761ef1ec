// Package canvas implements the interactive drafting viewport: pan and
// zoom over the survey plane, mode-driven drawing input and the raster
// scene renderer.
package canvas

import (
	"fyne.io/fyne/v2"
	fynecanvas "fyne.io/fyne/v2/canvas"
	"fyne.io/fyne/v2/driver/desktop"
	"fyne.io/fyne/v2/widget"

	"github.com/Nukpro/DeedRecreator/internal/app"
	"github.com/Nukpro/DeedRecreator/internal/pick"
	"github.com/Nukpro/DeedRecreator/internal/viewport"
	"github.com/Nukpro/DeedRecreator/pkg/geometry"
)

// fitPadding is the pixel border kept clear when framing the document.
const fitPadding = 20

// GeometryViewer is the drafting canvas widget. It owns the viewport
// transform and the active drawing mode; document, selection and hover
// live in the shared state and reach the viewer through its events.
type GeometryViewer struct {
	widget.BaseWidget

	state *app.State

	transform viewport.Transform
	machine   modeMachine

	cursor    geometry.Point2D // canvas space
	hasCursor bool
	viewW     float64
	viewH     float64

	raster *fynecanvas.Raster

	onPointPlaced   func(world geometry.Point2D)
	onSegmentPlaced func(start, end geometry.Point2D)
	onPolygonSelect func(vertices []geometry.Point2D, refs []pick.Ref)
	onObjectClick   func(hit *pick.Hit)
}

var _ fyne.Tappable = (*GeometryViewer)(nil)
var _ fyne.SecondaryTappable = (*GeometryViewer)(nil)
var _ fyne.DoubleTappable = (*GeometryViewer)(nil)
var _ fyne.Draggable = (*GeometryViewer)(nil)
var _ fyne.Scrollable = (*GeometryViewer)(nil)
var _ fyne.Focusable = (*GeometryViewer)(nil)
var _ desktop.Hoverable = (*GeometryViewer)(nil)

// NewGeometryViewer creates the viewer bound to the shared state.
func NewGeometryViewer(state *app.State) *GeometryViewer {
	v := &GeometryViewer{
		state:     state,
		transform: viewport.NewTransform(),
	}
	v.ExtendBaseWidget(v)

	v.raster = fynecanvas.NewRaster(v.draw)
	v.raster.ScaleMode = fynecanvas.ImageScalePixels

	redraw := func(interface{}) { v.Refresh() }
	state.On(app.EventDocumentLoaded, func(data interface{}) {
		v.machine.reset()
		v.Refresh()
	})
	state.On(app.EventDocumentChanged, redraw)
	state.On(app.EventSelectionChanged, redraw)
	state.On(app.EventHoverChanged, redraw)
	state.On(app.EventUnderlayChanged, redraw)

	return v
}

// OnPointPlaced sets the callback for a point placed in points mode.
func (v *GeometryViewer) OnPointPlaced(fn func(world geometry.Point2D)) {
	v.onPointPlaced = fn
}

// OnSegmentPlaced sets the callback for a completed two-click segment.
func (v *GeometryViewer) OnSegmentPlaced(fn func(start, end geometry.Point2D)) {
	v.onSegmentPlaced = fn
}

// OnPolygonSelect sets the callback for a committed lasso selection.
// It receives the world-space polygon vertices and the refs they
// enclosed.
func (v *GeometryViewer) OnPolygonSelect(fn func(vertices []geometry.Point2D, refs []pick.Ref)) {
	v.onPolygonSelect = fn
}

// OnObjectClick sets the callback for a cursor-mode click. The hit is
// nil when the click landed on empty canvas.
func (v *GeometryViewer) OnObjectClick(fn func(hit *pick.Hit)) {
	v.onObjectClick = fn
}

// Mode returns the active drawing mode.
func (v *GeometryViewer) Mode() Mode {
	return v.machine.mode
}

// SetMode switches the drawing mode, dropping any half-finished
// gesture of the previous mode.
func (v *GeometryViewer) SetMode(mode Mode) {
	if !v.machine.Set(mode) {
		return
	}
	v.state.Emit(app.EventModeChanged, mode)
	v.Refresh()
}

// Transform returns the current world-to-canvas mapping.
func (v *GeometryViewer) Transform() viewport.Transform {
	return v.transform
}

// FitToView recenters and rescales so the whole document, including
// the raster underlay, fills the widget with a margin.
func (v *GeometryViewer) FitToView() {
	var rasterBounds *geometry.BBox
	if u := v.state.Underlay(); u != nil {
		b := u.Bounds
		rasterBounds = &b
	}

	bounds := v.state.Document().CalculateBounds(rasterBounds)
	if bounds == nil {
		// Nothing to frame: center the origin at identity scale.
		v.transform = viewport.Transform{Scale: 1, OffsetX: v.viewW / 2, OffsetY: v.viewH / 2}
	} else {
		v.transform = viewport.FitToView(*bounds, v.viewW, v.viewH, fitPadding)
	}
	v.Refresh()
}

// Tapped dispatches a primary click according to the active mode.
func (v *GeometryViewer) Tapped(e *fyne.PointEvent) {
	v.focusSelf()
	at := eventPos(e)

	switch v.machine.mode {
	case ModeCursor:
		hit := pick.FindObjectAt(v.state.Document(), v.transform, at)
		if hit != nil {
			v.state.Select([]pick.Ref{hit.Ref})
		} else {
			v.state.ClearSelection()
		}
		if v.onObjectClick != nil {
			v.onObjectClick(hit)
		}
	case ModePoints:
		if v.onPointPlaced != nil {
			v.onPointPlaced(v.transform.CanvasToWorld(at))
		}
	case ModeSegments:
		start, end, done := v.machine.SegmentClick(v.transform.CanvasToWorld(at))
		if done && v.onSegmentPlaced != nil {
			v.onSegmentPlaced(start, end)
		}
		v.Refresh()
	case ModePolygonSelect:
		v.machine.LassoAdd(v.transform.CanvasToWorld(at))
		v.Refresh()
	}
}

// TappedSecondary cancels the pending gesture.
func (v *GeometryViewer) TappedSecondary(*fyne.PointEvent) {
	v.cancelGesture()
}

// DoubleTapped commits the lasso in polygon-select mode.
func (v *GeometryViewer) DoubleTapped(*fyne.PointEvent) {
	v.commitLasso()
}

// Dragged pans the viewport.
func (v *GeometryViewer) Dragged(e *fyne.DragEvent) {
	v.transform = v.transform.Pan(float64(e.Dragged.DX), float64(e.Dragged.DY))
	v.Refresh()
}

func (v *GeometryViewer) DragEnd() {}

// Scrolled zooms around the cursor. Wheel up zooms in.
func (v *GeometryViewer) Scrolled(e *fyne.ScrollEvent) {
	v.transform = v.transform.WheelZoom(float64(-e.Scrolled.DY), eventPos(&e.PointEvent))
	v.Refresh()
}

func (v *GeometryViewer) MouseIn(e *desktop.MouseEvent) {
	v.MouseMoved(e)
}

// MouseMoved tracks the cursor for previews and resolves hover in
// cursor mode. The hover listener refreshes only on actual change.
func (v *GeometryViewer) MouseMoved(e *desktop.MouseEvent) {
	v.cursor = eventPos(&e.PointEvent)
	v.hasCursor = true

	switch v.machine.mode {
	case ModeCursor:
		var ref *pick.Ref
		if hit := pick.FindObjectAt(v.state.Document(), v.transform, v.cursor); hit != nil {
			r := hit.Ref
			ref = &r
		}
		v.state.SetHovered(ref)
	default:
		if v.machine.Pending() {
			v.Refresh()
		}
	}
}

func (v *GeometryViewer) MouseOut() {
	v.hasCursor = false
	v.state.SetHovered(nil)
	if v.machine.Pending() {
		v.Refresh()
	}
}

func (v *GeometryViewer) FocusGained() {}
func (v *GeometryViewer) FocusLost()   {}

func (v *GeometryViewer) TypedRune(rune) {}

// TypedKey handles Escape (cancel gesture, else clear selection) and
// Return (commit lasso).
func (v *GeometryViewer) TypedKey(e *fyne.KeyEvent) {
	switch e.Name {
	case fyne.KeyEscape:
		if v.machine.Pending() {
			v.cancelGesture()
		} else {
			v.state.ClearSelection()
		}
	case fyne.KeyReturn, fyne.KeyEnter:
		v.commitLasso()
	}
}

func (v *GeometryViewer) cancelGesture() {
	if !v.machine.Pending() {
		return
	}
	v.machine.reset()
	v.Refresh()
}

func (v *GeometryViewer) commitLasso() {
	if v.machine.mode != ModePolygonSelect {
		return
	}
	verts, ok := v.machine.LassoCommit()
	if !ok {
		v.Refresh()
		return
	}

	lasso := make([]geometry.Point2D, len(verts))
	for i, w := range verts {
		lasso[i] = v.transform.WorldToCanvas(w)
	}
	refs := pick.ObjectsWithin(v.state.Document(), v.transform, lasso)
	v.state.Select(refs)
	if v.onPolygonSelect != nil {
		v.onPolygonSelect(verts, refs)
	}
	v.Refresh()
}

func (v *GeometryViewer) focusSelf() {
	if c := fyne.CurrentApp().Driver().CanvasForObject(v); c != nil {
		c.Focus(v)
	}
}

func eventPos(e *fyne.PointEvent) geometry.Point2D {
	return geometry.Point2D{X: float64(e.Position.X), Y: float64(e.Position.Y)}
}

// CreateRenderer builds the widget renderer around the raster.
func (v *GeometryViewer) CreateRenderer() fyne.WidgetRenderer {
	return &viewerRenderer{viewer: v}
}

type viewerRenderer struct {
	viewer *GeometryViewer
}

func (r *viewerRenderer) Layout(size fyne.Size) {
	r.viewer.viewW = float64(size.Width)
	r.viewer.viewH = float64(size.Height)
	r.viewer.raster.Resize(size)
}

func (r *viewerRenderer) MinSize() fyne.Size {
	return fyne.NewSize(320, 240)
}

func (r *viewerRenderer) Refresh() {
	r.viewer.raster.Refresh()
}

func (r *viewerRenderer) Objects() []fyne.CanvasObject {
	return []fyne.CanvasObject{r.viewer.raster}
}

func (r *viewerRenderer) Destroy() {}
