// Package geom holds the in-memory geometric document: points, line and
// arc segments, and the two wire formats (session points+segments and
// legacy feature collections) normalized into one render model.
package geom

import (
	"encoding/json"
	"fmt"
	"math"

	"github.com/google/uuid"

	"github.com/Nukpro/DeedRecreator/internal/survey"
	"github.com/Nukpro/DeedRecreator/pkg/geometry"
)

// SegmentKind tags the segment variants on the wire.
type SegmentKind string

const (
	KindLine SegmentKind = "line"
	KindArc  SegmentKind = "arc"
)

// Segment is the closed sum of line and arc segments. Implementations are
// *LineSegment and *ArcSegment.
type Segment interface {
	SegmentID() string
	Kind() SegmentKind
	Endpoints() (start, end geometry.Point2D)
	SegmentLayer() string
	Bounds() geometry.BBox

	marshalWire() wireSegment
}

// LineSegment is a straight segment. Length and Azimuth are derived from
// the endpoints and recomputed on every construction or move; wire values
// are never trusted.
type LineSegment struct {
	ID         string
	Start      geometry.Point2D
	End        geometry.Point2D
	Length     float64
	Azimuth    float64 // degrees from north, clockwise
	Layer      string
	Attributes map[string]any
}

// NewLineSegment builds a line between two points, deriving length and
// azimuth.
func NewLineSegment(start, end geometry.Point2D) *LineSegment {
	s := &LineSegment{ID: uuid.NewString(), Start: start, End: end}
	s.Recompute()
	return s
}

// Recompute refreshes the derived length and azimuth from the endpoints.
func (s *LineSegment) Recompute() {
	dx := s.End.X - s.Start.X
	dy := s.End.Y - s.Start.Y
	s.Length = survey.Distance(dx, dy)
	s.Azimuth = survey.AzimuthFromDelta(dx, dy)
}

// RecalculateByBearing repositions the free endpoint from polar
// parameters, holding the blocked endpoint fixed. blockedPoint is
// "start_pt" (default) or "end_pt".
func (s *LineSegment) RecalculateByBearing(quadrant survey.Quadrant, bearing, distance float64, blockedPoint string) error {
	if distance <= 0 {
		return fmt.Errorf("distance must be greater than 0, got %v", distance)
	}
	if blockedPoint == "" {
		blockedPoint = "start_pt"
	}
	if blockedPoint != "start_pt" && blockedPoint != "end_pt" {
		return fmt.Errorf("blocked point must be start_pt or end_pt, got %q", blockedPoint)
	}

	azimuth, err := survey.BearingToAzimuth(quadrant, bearing)
	if err != nil {
		return err
	}

	rad := azimuth * math.Pi / 180
	dx := distance * math.Sin(rad) // east component
	dy := distance * math.Cos(rad) // north component

	if blockedPoint == "start_pt" {
		end := geometry.Point2D{X: s.Start.X + dx, Y: s.Start.Y + dy}
		if !finite(end) {
			return fmt.Errorf("computed end point is not finite: %+v", end)
		}
		s.End = end
	} else {
		start := geometry.Point2D{X: s.End.X - dx, Y: s.End.Y - dy}
		if !finite(start) {
			return fmt.Errorf("computed start point is not finite: %+v", start)
		}
		s.Start = start
	}

	s.Recompute()
	return nil
}

func finite(p geometry.Point2D) bool {
	return !math.IsInf(p.X, 0) && !math.IsNaN(p.X) && !math.IsInf(p.Y, 0) && !math.IsNaN(p.Y)
}

func (s *LineSegment) SegmentID() string    { return s.ID }
func (s *LineSegment) Kind() SegmentKind    { return KindLine }
func (s *LineSegment) SegmentLayer() string { return s.Layer }

func (s *LineSegment) Endpoints() (geometry.Point2D, geometry.Point2D) {
	return s.Start, s.End
}

func (s *LineSegment) Bounds() geometry.BBox {
	return geometry.NewBBox(s.Start).Extend(s.End)
}

// ArcSegment is a circular arc between two points. The radius/center
// consistency invariant is not enforced here; malformed arcs render
// best-effort.
type ArcSegment struct {
	ID         string
	Start      geometry.Point2D
	End        geometry.Point2D
	Center     geometry.Point2D
	Radius     float64
	Rotation   string // "cw" or "ccw"; empty means derive from Delta
	Delta      float64
	Length     float64
	Layer      string
	Attributes map[string]any
}

func (s *ArcSegment) SegmentID() string    { return s.ID }
func (s *ArcSegment) Kind() SegmentKind    { return KindArc }
func (s *ArcSegment) SegmentLayer() string { return s.Layer }

func (s *ArcSegment) Endpoints() (geometry.Point2D, geometry.Point2D) {
	return s.Start, s.End
}

// Clockwise resolves the sweep direction, preferring the explicit
// rotation field over the sign of delta.
func (s *ArcSegment) Clockwise() bool {
	if s.Rotation != "" {
		return s.Rotation == "cw"
	}
	return s.Delta >= 0
}

// Bounds conservatively covers the full circle so partial sweeps never
// escape the computed box.
func (s *ArcSegment) Bounds() geometry.BBox {
	box := geometry.NewBBox(s.Start).Extend(s.End)
	box = box.Extend(geometry.Point2D{X: s.Center.X - s.Radius, Y: s.Center.Y - s.Radius})
	box = box.Extend(geometry.Point2D{X: s.Center.X + s.Radius, Y: s.Center.Y + s.Radius})
	return box
}

// wireSegment is the JSON shape shared by both variants. The angular
// field is named "bearing" on the wire but carries an azimuth, a naming
// wart inherited from the stored documents.
type wireSegment struct {
	ID          string           `json:"id"`
	SegmentType SegmentKind      `json:"segmentType"`
	Start       geometry.Point2D `json:"start"`
	End         geometry.Point2D `json:"end"`
	Length      float64          `json:"length"`
	Bearing     *float64         `json:"bearing,omitempty"`
	Center      *geometry.Point2D `json:"center,omitempty"`
	Radius      *float64         `json:"radius,omitempty"`
	Rotation    string           `json:"rotation,omitempty"`
	Delta       *float64         `json:"delta,omitempty"`
	Layer       string           `json:"layer,omitempty"`
	Attributes  map[string]any   `json:"attributes,omitempty"`
}

func (s *LineSegment) marshalWire() wireSegment {
	azimuth := s.Azimuth
	return wireSegment{
		ID:          s.ID,
		SegmentType: KindLine,
		Start:       s.Start,
		End:         s.End,
		Length:      s.Length,
		Bearing:     &azimuth,
		Layer:       s.Layer,
		Attributes:  s.Attributes,
	}
}

func (s *ArcSegment) marshalWire() wireSegment {
	center := s.Center
	radius := s.Radius
	delta := s.Delta
	return wireSegment{
		ID:          s.ID,
		SegmentType: KindArc,
		Start:       s.Start,
		End:         s.End,
		Length:      s.Length,
		Center:      &center,
		Radius:      &radius,
		Rotation:    s.Rotation,
		Delta:       &delta,
		Layer:       s.Layer,
		Attributes:  s.Attributes,
	}
}

// MarshalSegment encodes a segment into its wire JSON.
func MarshalSegment(s Segment) ([]byte, error) {
	return json.Marshal(s.marshalWire())
}

// UnmarshalSegment decodes one wire segment into the matching variant.
// Line lengths and azimuths are rederived from the endpoints rather than
// taken from the payload.
func UnmarshalSegment(data []byte) (Segment, error) {
	var w wireSegment
	if err := json.Unmarshal(data, &w); err != nil {
		return nil, fmt.Errorf("decode segment: %w", err)
	}
	return segmentFromWire(w)
}

func segmentFromWire(w wireSegment) (Segment, error) {
	id := w.ID
	if id == "" {
		id = uuid.NewString()
	}

	switch w.SegmentType {
	case KindLine, "":
		s := &LineSegment{
			ID:         id,
			Start:      w.Start,
			End:        w.End,
			Layer:      w.Layer,
			Attributes: w.Attributes,
		}
		s.Recompute()
		return s, nil
	case KindArc:
		s := &ArcSegment{
			ID:         id,
			Start:      w.Start,
			End:        w.End,
			Length:     w.Length,
			Rotation:   w.Rotation,
			Layer:      w.Layer,
			Attributes: w.Attributes,
		}
		if w.Center != nil {
			s.Center = *w.Center
		}
		if w.Radius != nil {
			s.Radius = *w.Radius
		}
		if w.Delta != nil {
			s.Delta = *w.Delta
		}
		return s, nil
	default:
		return nil, fmt.Errorf("unknown segment type %q", w.SegmentType)
	}
}
