// Package viewport maps world coordinates (Y up, survey convention) to
// canvas coordinates (Y down) through a scale and offset pair.
package viewport

import (
	"math"

	"github.com/Nukpro/DeedRecreator/pkg/geometry"
)

const (
	MinScale = 0.05
	MaxScale = 20.0

	// fitMargin leaves breathing room around fitted content.
	fitMargin = 0.9

	// wheelSensitivity converts scroll delta to an exponential zoom step.
	wheelSensitivity = 0.0015
)

// Transform is the world-to-canvas mapping. The zero value is unusable;
// start from NewTransform or FitToView.
type Transform struct {
	Scale   float64
	OffsetX float64
	OffsetY float64
}

// NewTransform returns the identity-scale mapping with no offset.
func NewTransform() Transform {
	return Transform{Scale: 1}
}

// WorldToCanvas projects a world point onto the canvas. The Y axis flips
// so that north is up on screen.
func (t Transform) WorldToCanvas(p geometry.Point2D) geometry.Point2D {
	return geometry.Point2D{
		X: p.X*t.Scale + t.OffsetX,
		Y: -p.Y*t.Scale + t.OffsetY,
	}
}

// CanvasToWorld inverts WorldToCanvas.
func (t Transform) CanvasToWorld(p geometry.Point2D) geometry.Point2D {
	return geometry.Point2D{
		X: (p.X - t.OffsetX) / t.Scale,
		Y: -(p.Y - t.OffsetY) / t.Scale,
	}
}

// Pan shifts the view by a canvas-space delta.
func (t Transform) Pan(dx, dy float64) Transform {
	t.OffsetX += dx
	t.OffsetY += dy
	return t
}

// ZoomAt rescales by factor while keeping the world point under the
// given canvas position stationary. The resulting scale is clamped to
// [MinScale, MaxScale].
func (t Transform) ZoomAt(factor float64, at geometry.Point2D) Transform {
	newScale := clampScale(t.Scale * factor)
	if newScale == t.Scale {
		return t
	}
	world := t.CanvasToWorld(at)
	t.Scale = newScale
	t.OffsetX = at.X - world.X*t.Scale
	t.OffsetY = at.Y + world.Y*t.Scale
	return t
}

// WheelZoom converts a scroll wheel delta into a zoom anchored at the
// cursor. Negative delta (wheel up) zooms in.
func (t Transform) WheelZoom(deltaY float64, at geometry.Point2D) Transform {
	return t.ZoomAt(math.Exp(-deltaY*wheelSensitivity), at)
}

// FitToView computes the transform that centers the bounds in a canvas
// of the given size, fitting the content inside the canvas minus the
// padding on each edge, with a margin. Degenerate bounds (a single point
// or a purely horizontal/vertical extent) still produce a finite, usable
// transform, as does padding that swallows an axis.
func FitToView(bounds geometry.BBox, canvasW, canvasH, padding float64) Transform {
	effW := canvasW - 2*padding
	effH := canvasH - 2*padding

	scaleX := math.Inf(1)
	scaleY := math.Inf(1)
	if w := bounds.Width(); w > 0 && effW > 0 {
		scaleX = effW / w * fitMargin
	}
	if h := bounds.Height(); h > 0 && effH > 0 {
		scaleY = effH / h * fitMargin
	}
	scale := math.Min(scaleX, scaleY)
	if math.IsInf(scale, 1) {
		scale = 1
	}
	scale = clampScale(scale)

	center := bounds.Center()
	return Transform{
		Scale:   scale,
		OffsetX: canvasW/2 - center.X*scale,
		OffsetY: canvasH/2 + center.Y*scale,
	}
}

func clampScale(s float64) float64 {
	if s < MinScale {
		return MinScale
	}
	if s > MaxScale {
		return MaxScale
	}
	return s
}
