package canvas

import (
	"image"
	"math"

	"github.com/fogleman/gg"
	xdraw "golang.org/x/image/draw"

	"github.com/Nukpro/DeedRecreator/internal/geom"
	"github.com/Nukpro/DeedRecreator/internal/pick"
	"github.com/Nukpro/DeedRecreator/pkg/colorutil"
	"github.com/Nukpro/DeedRecreator/pkg/geometry"
)

// draw renders the full scene for the raster. Called by fyne whenever
// the widget refreshes or resizes.
func (v *GeometryViewer) draw(w, h int) image.Image {
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	dc := gg.NewContextForRGBA(img)

	dc.SetColor(colorutil.Paper)
	dc.Clear()

	v.drawUnderlay(img)

	doc := v.state.Document()
	model := doc.Normalize()

	for _, f := range model.Features {
		v.drawFeature(dc, f)
	}
	for _, p := range model.Points {
		v.drawPoint(dc, p)
	}

	v.drawSegmentPreview(dc)
	v.drawLassoPreview(dc)

	return img
}

func (v *GeometryViewer) drawUnderlay(img *image.RGBA) {
	u := v.state.Underlay()
	if u == nil || u.Image == nil {
		return
	}

	// World bounds flip vertically on the canvas: max Y is the top edge.
	tl := v.transform.WorldToCanvas(geometry.Point2D{X: u.Bounds.MinX, Y: u.Bounds.MaxY})
	br := v.transform.WorldToCanvas(geometry.Point2D{X: u.Bounds.MaxX, Y: u.Bounds.MinY})
	rect := image.Rect(int(tl.X), int(tl.Y), int(br.X), int(br.Y))
	if rect.Empty() {
		return
	}

	xdraw.ApproxBiLinear.Scale(img, rect, u.Image, u.Image.Bounds(), xdraw.Over, nil)
}

// pathGapTolerance is the world-unit slack under which consecutive
// feature segments are treated as one continuous path.
const pathGapTolerance = 0.1

func (v *GeometryViewer) drawFeature(dc *gg.Context, f geom.RenderFeature) {
	style := featureStroke(v.featureState(f), f.Style)

	dc.NewSubPath()
	var prevEnd *geometry.Point2D
	for _, s := range f.Segments {
		start, end := s.Endpoints()
		if prevEnd == nil || prevEnd.Distance(start) > pathGapTolerance {
			p := v.transform.WorldToCanvas(start)
			dc.MoveTo(p.X, p.Y)
		}
		switch seg := s.(type) {
		case *geom.LineSegment:
			p := v.transform.WorldToCanvas(seg.End)
			dc.LineTo(p.X, p.Y)
		case *geom.ArcSegment:
			v.arcPath(dc, seg)
		}
		e := end
		prevEnd = &e
	}
	if f.IsClosed {
		dc.ClosePath()
	}

	if f.IsClosed && style.fill != nil {
		dc.SetColor(style.fill)
		dc.FillPreserve()
	}
	if style.halo != nil {
		dc.SetColor(style.halo)
		dc.SetLineWidth(style.haloWidth)
		dc.StrokePreserve()
	}
	dc.SetColor(style.color)
	dc.SetLineWidth(style.width)
	dc.Stroke()
}

// arcPath appends an arc in canvas space. The Y flip reverses angular
// orientation, so a world-clockwise sweep runs with increasing canvas
// angle.
func (v *GeometryViewer) arcPath(dc *gg.Context, seg *geom.ArcSegment) {
	center := v.transform.WorldToCanvas(seg.Center)
	start := v.transform.WorldToCanvas(seg.Start)
	end := v.transform.WorldToCanvas(seg.End)
	radius := seg.Radius * v.transform.Scale

	a1 := math.Atan2(start.Y-center.Y, start.X-center.X)
	a2 := math.Atan2(end.Y-center.Y, end.X-center.X)
	if seg.Clockwise() {
		for a2 <= a1 {
			a2 += 2 * math.Pi
		}
	} else {
		for a2 >= a1 {
			a2 -= 2 * math.Pi
		}
	}

	dc.DrawArc(center.X, center.Y, radius, a1, a2)
}

func (v *GeometryViewer) drawPoint(dc *gg.Context, p *geom.Point) {
	style := pointMarker(v.refState(pick.Ref{Type: pick.TypePoint, ID: p.ID}))
	pos := v.transform.WorldToCanvas(p.Position())

	dc.DrawCircle(pos.X, pos.Y, style.radius)
	dc.SetColor(style.fill)
	dc.FillPreserve()
	dc.SetColor(style.outline)
	dc.SetLineWidth(1)
	dc.Stroke()
}

func (v *GeometryViewer) drawSegmentPreview(dc *gg.Context) {
	if v.machine.mode != ModeSegments || v.machine.segmentStart == nil || !v.hasCursor {
		return
	}

	start := v.transform.WorldToCanvas(*v.machine.segmentStart)
	dc.SetDash(6, 4)
	dc.SetColor(colorutil.Preview)
	dc.SetLineWidth(1.5)
	dc.DrawLine(start.X, start.Y, v.cursor.X, v.cursor.Y)
	dc.Stroke()
	dc.SetDash()

	dc.DrawCircle(start.X, start.Y, 3)
	dc.SetColor(colorutil.Preview)
	dc.Fill()
}

func (v *GeometryViewer) drawLassoPreview(dc *gg.Context) {
	if v.machine.mode != ModePolygonSelect || len(v.machine.lasso) == 0 {
		return
	}

	verts := make([]geometry.Point2D, 0, len(v.machine.lasso)+1)
	for _, w := range v.machine.lasso {
		verts = append(verts, v.transform.WorldToCanvas(w))
	}
	if v.hasCursor {
		verts = append(verts, v.cursor)
	}

	dc.MoveTo(verts[0].X, verts[0].Y)
	for _, p := range verts[1:] {
		dc.LineTo(p.X, p.Y)
	}
	// Closed and filled once there is an area to show.
	if len(verts) > 2 {
		dc.ClosePath()
		dc.SetColor(colorutil.PreviewFill)
		dc.FillPreserve()
	}
	dc.SetDash(6, 4)
	dc.SetColor(colorutil.Preview)
	dc.SetLineWidth(1.5)
	dc.Stroke()
	dc.SetDash()

	for _, p := range verts[:len(v.machine.lasso)] {
		dc.DrawRectangle(p.X-2, p.Y-2, 4, 4)
		dc.SetColor(colorutil.Preview)
		dc.Fill()
	}
}

// featureState resolves the display state of a feature from the hover
// and selection of its member segments.
func (v *GeometryViewer) featureState(f geom.RenderFeature) objectState {
	state := stateInactive
	for _, s := range f.Segments {
		switch v.refState(pick.Ref{Type: pick.TypeLine, ID: s.SegmentID()}) {
		case stateSelected:
			return stateSelected
		case stateHovered:
			state = stateHovered
		}
	}
	return state
}

func (v *GeometryViewer) refState(r pick.Ref) objectState {
	if v.state.Selection().Contains(r) {
		return stateSelected
	}
	if hov := v.state.Hovered(); hov != nil && *hov == r {
		return stateHovered
	}
	return stateInactive
}
