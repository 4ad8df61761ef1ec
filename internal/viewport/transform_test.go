package viewport

import (
	"math"
	"testing"

	"gonum.org/v1/gonum/floats/scalar"

	"github.com/Nukpro/DeedRecreator/pkg/geometry"
)

func TestWorldCanvasRoundTrip(t *testing.T) {
	tr := Transform{Scale: 2.5, OffsetX: 100, OffsetY: 300}

	world := geometry.Point2D{X: 37.2, Y: -18.9}
	canvas := tr.WorldToCanvas(world)
	back := tr.CanvasToWorld(canvas)

	if !scalar.EqualWithinAbs(back.X, world.X, 1e-9) || !scalar.EqualWithinAbs(back.Y, world.Y, 1e-9) {
		t.Errorf("round trip: got %+v, want %+v", back, world)
	}

	// Y axis flips: increasing world Y moves up on screen.
	up := tr.WorldToCanvas(geometry.Point2D{X: world.X, Y: world.Y + 1})
	if up.Y >= canvas.Y {
		t.Errorf("world Y+1 moved canvas Y from %v to %v, expected decrease", canvas.Y, up.Y)
	}
}

func TestZoomAtKeepsAnchorFixed(t *testing.T) {
	tr := Transform{Scale: 1, OffsetX: 50, OffsetY: 50}
	anchor := geometry.Point2D{X: 320, Y: 240}
	worldBefore := tr.CanvasToWorld(anchor)

	tr = tr.ZoomAt(1.8, anchor)

	worldAfter := tr.CanvasToWorld(anchor)
	if !scalar.EqualWithinAbs(worldAfter.X, worldBefore.X, 1e-9) ||
		!scalar.EqualWithinAbs(worldAfter.Y, worldBefore.Y, 1e-9) {
		t.Errorf("anchor drifted: %+v -> %+v", worldBefore, worldAfter)
	}
	if !scalar.EqualWithinAbs(tr.Scale, 1.8, 1e-9) {
		t.Errorf("scale = %v, want 1.8", tr.Scale)
	}
}

func TestZoomClamp(t *testing.T) {
	tr := Transform{Scale: MaxScale}
	anchor := geometry.Point2D{X: 10, Y: 10}
	if out := tr.ZoomAt(2, anchor); out.Scale != MaxScale {
		t.Errorf("scale escaped max clamp: %v", out.Scale)
	}

	tr = Transform{Scale: MinScale}
	if out := tr.ZoomAt(0.1, anchor); out.Scale != MinScale {
		t.Errorf("scale escaped min clamp: %v", out.Scale)
	}
}

func TestWheelZoomDirection(t *testing.T) {
	tr := Transform{Scale: 1}
	at := geometry.Point2D{X: 0, Y: 0}

	in := tr.WheelZoom(-120, at)
	if in.Scale <= 1 {
		t.Errorf("wheel up should zoom in, scale = %v", in.Scale)
	}
	out := tr.WheelZoom(120, at)
	if out.Scale >= 1 {
		t.Errorf("wheel down should zoom out, scale = %v", out.Scale)
	}
}

func TestFitToView(t *testing.T) {
	bounds := geometry.BBox{MinX: 0, MinY: 0, MaxX: 100, MaxY: 50}
	tr := FitToView(bounds, 800, 600, 0)

	// Width is the limiting axis: 800/100*0.9 = 7.2.
	if !scalar.EqualWithinAbs(tr.Scale, 7.2, 1e-9) {
		t.Errorf("scale = %v, want 7.2", tr.Scale)
	}

	center := tr.WorldToCanvas(bounds.Center())
	if !scalar.EqualWithinAbs(center.X, 400, 1e-9) || !scalar.EqualWithinAbs(center.Y, 300, 1e-9) {
		t.Errorf("bounds center landed at %+v, want canvas center", center)
	}
}

func TestFitToViewDegenerate(t *testing.T) {
	// A single point has zero extent on both axes.
	point := geometry.BBox{MinX: 5, MinY: 5, MaxX: 5, MaxY: 5}
	tr := FitToView(point, 800, 600, 0)
	if math.IsInf(tr.Scale, 0) || math.IsNaN(tr.Scale) {
		t.Fatalf("non-finite scale %v for point bounds", tr.Scale)
	}
	if tr.Scale != 1 {
		t.Errorf("scale = %v, want fallback 1", tr.Scale)
	}

	// A horizontal line: only the X extent constrains the fit.
	line := geometry.BBox{MinX: 0, MinY: 10, MaxX: 200, MaxY: 10}
	tr = FitToView(line, 800, 600, 0)
	if !scalar.EqualWithinAbs(tr.Scale, 3.6, 1e-9) {
		t.Errorf("scale = %v, want 3.6", tr.Scale)
	}
	at := tr.WorldToCanvas(geometry.Point2D{X: 100, Y: 10})
	if !scalar.EqualWithinAbs(at.Y, 300, 1e-9) {
		t.Errorf("line centered at canvas Y %v, want 300", at.Y)
	}
}

func TestFitToViewPadding(t *testing.T) {
	bounds := geometry.BBox{MinX: 0, MinY: 0, MaxX: 100, MaxY: 50}
	tr := FitToView(bounds, 800, 600, 50)

	// Width still limits the fit inside the padded area: (800-100)/100*0.9.
	if !scalar.EqualWithinAbs(tr.Scale, 6.3, 1e-9) {
		t.Errorf("scale = %v, want 6.3", tr.Scale)
	}
	center := tr.WorldToCanvas(bounds.Center())
	if !scalar.EqualWithinAbs(center.X, 400, 1e-9) || !scalar.EqualWithinAbs(center.Y, 300, 1e-9) {
		t.Errorf("bounds center landed at %+v, want canvas center", center)
	}

	// Padding wider than the canvas must not poison the scale.
	tr = FitToView(bounds, 800, 600, 500)
	if math.IsInf(tr.Scale, 0) || math.IsNaN(tr.Scale) || tr.Scale <= 0 {
		t.Errorf("scale = %v, want finite positive fallback", tr.Scale)
	}
}

func TestFitToViewClampsHugeScale(t *testing.T) {
	tiny := geometry.BBox{MinX: 0, MinY: 0, MaxX: 0.001, MaxY: 0.001}
	tr := FitToView(tiny, 800, 600, 0)
	if tr.Scale != MaxScale {
		t.Errorf("scale = %v, want MaxScale", tr.Scale)
	}
}
