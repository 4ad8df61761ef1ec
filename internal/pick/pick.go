// Package pick resolves cursor positions and lasso polygons to document
// objects. All tests run in canvas space so the tolerance stays a fixed
// number of pixels at any zoom level.
package pick

import (
	"github.com/Nukpro/DeedRecreator/internal/geom"
	"github.com/Nukpro/DeedRecreator/internal/viewport"
	"github.com/Nukpro/DeedRecreator/pkg/geometry"
)

// Tolerance is the pick radius in canvas pixels.
const Tolerance = 8.0

// ObjectType distinguishes the selectable object kinds.
type ObjectType string

const (
	TypePoint ObjectType = "point"
	TypeLine  ObjectType = "line"
)

// Ref identifies a selectable object without holding it.
type Ref struct {
	Type ObjectType `json:"type"`
	ID   string     `json:"id"`
}

// Hit is a resolved pick: the ref plus the live object.
type Hit struct {
	Ref
	Point   *geom.Point
	Segment geom.Segment
}

// FindObjectAt returns the first object within Tolerance of the canvas
// position, or nil. Points are tried before segments so a vertex stays
// pickable on top of the lines meeting at it. Iteration follows document
// order and stops at the first match. Arc segments are not pickable;
// their properties are reachable through the adjacent points.
func FindObjectAt(doc *geom.Document, tr viewport.Transform, at geometry.Point2D) *Hit {
	if doc == nil {
		return nil
	}

	for _, p := range doc.AllPoints() {
		if tr.WorldToCanvas(p.Position()).Distance(at) <= Tolerance {
			return &Hit{Ref: Ref{Type: TypePoint, ID: p.ID}, Point: p}
		}
	}

	for _, s := range doc.AllSegments() {
		if s.Kind() != geom.KindLine {
			continue
		}
		start, end := s.Endpoints()
		d := geometry.DistancePointToSegment(at, tr.WorldToCanvas(start), tr.WorldToCanvas(end))
		if d <= Tolerance {
			return &Hit{Ref: Ref{Type: TypeLine, ID: s.SegmentID()}, Segment: s}
		}
	}

	return nil
}

// ObjectsWithin returns the refs of every point and line segment fully
// inside the lasso polygon, in document order. The polygon vertices are
// canvas coordinates; a segment counts as inside when both endpoints do.
func ObjectsWithin(doc *geom.Document, tr viewport.Transform, lasso []geometry.Point2D) []Ref {
	if doc == nil || len(lasso) < 3 {
		return nil
	}

	var refs []Ref
	for _, p := range doc.AllPoints() {
		if geometry.ContainsPoint(lasso, tr.WorldToCanvas(p.Position())) {
			refs = append(refs, Ref{Type: TypePoint, ID: p.ID})
		}
	}
	for _, s := range doc.AllSegments() {
		if s.Kind() != geom.KindLine {
			continue
		}
		start, end := s.Endpoints()
		if geometry.ContainsPoint(lasso, tr.WorldToCanvas(start)) &&
			geometry.ContainsPoint(lasso, tr.WorldToCanvas(end)) {
			refs = append(refs, Ref{Type: TypeLine, ID: s.SegmentID()})
		}
	}
	return refs
}
