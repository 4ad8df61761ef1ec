package server

import (
	"errors"
	"fmt"

	"github.com/Nukpro/DeedRecreator/internal/geom"
	"github.com/Nukpro/DeedRecreator/internal/store"
	"github.com/Nukpro/DeedRecreator/internal/survey"
	"github.com/Nukpro/DeedRecreator/pkg/geometry"
)

var (
	// ErrObjectNotFound is returned when a point or segment id is unknown.
	ErrObjectNotFound = errors.New("object not found")
	// ErrNotLineSegment is returned for line-only operations applied to
	// other segment kinds.
	ErrNotLineSegment = errors.New("not a line segment")
	// ErrBadObjectType is returned for unknown delete targets.
	ErrBadObjectType = errors.New("unknown object type")
)

// GeometryService applies editing operations to session documents and
// persists each one as a new store version.
type GeometryService struct {
	store *store.Store
}

// NewGeometryService wraps a versioned store.
func NewGeometryService(st *store.Store) *GeometryService {
	return &GeometryService{store: st}
}

// Load returns the current document of a session.
func (g *GeometryService) Load(sessionID int) (*geom.Document, error) {
	return g.store.Load(sessionID)
}

// SaveFull replaces the whole document with a client-provided state.
func (g *GeometryService) SaveFull(sessionID int, doc *geom.Document) (*geom.Document, error) {
	if err := g.store.Save(sessionID, doc); err != nil {
		return nil, err
	}
	return doc, nil
}

// AddPoint appends a point and saves. A legacy document is promoted to
// the editable shape first so its geometry carries forward. Returns the
// updated document and the created point.
func (g *GeometryService) AddPoint(sessionID int, x, y float64, attributes map[string]any) (*geom.Document, *geom.Point, error) {
	doc, err := g.store.Load(sessionID)
	if err != nil {
		return nil, nil, err
	}

	doc.ConvertToSession()
	p := geom.NewPoint(x, y)
	p.Attributes = attributes
	doc.Points = append(doc.Points, p)

	if err := g.store.Save(sessionID, doc); err != nil {
		return nil, nil, err
	}
	return doc, p, nil
}

// UpdatePoint patches a point's coordinates, layer and attributes.
// Attribute maps merge key by key rather than replacing wholesale.
func (g *GeometryService) UpdatePoint(sessionID int, pointID string, x, y *float64, layer *string, attributes map[string]any) (*geom.Document, error) {
	doc, err := g.store.Load(sessionID)
	if err != nil {
		return nil, err
	}

	p := doc.PointByID(pointID)
	if p == nil {
		return nil, fmt.Errorf("%w: point %s", ErrObjectNotFound, pointID)
	}

	if x != nil {
		p.X = *x
	}
	if y != nil {
		p.Y = *y
	}
	if layer != nil {
		p.Layer = *layer
	}
	if attributes != nil {
		if p.Attributes == nil {
			p.Attributes = make(map[string]any)
		}
		for k, v := range attributes {
			p.Attributes[k] = v
		}
	}

	if err := g.store.Save(sessionID, doc); err != nil {
		return nil, err
	}
	return doc, nil
}

// AddSegment appends a line segment between the given coordinates.
func (g *GeometryService) AddSegment(sessionID int, startX, startY, endX, endY float64, attributes map[string]any) (*geom.Document, geom.Segment, error) {
	doc, err := g.store.Load(sessionID)
	if err != nil {
		return nil, nil, err
	}

	doc.ConvertToSession()
	s := geom.NewLineSegment(
		geometry.Point2D{X: startX, Y: startY},
		geometry.Point2D{X: endX, Y: endY},
	)
	s.Attributes = attributes
	doc.Segments = append(doc.Segments, s)

	if err := g.store.Save(sessionID, doc); err != nil {
		return nil, nil, err
	}
	return doc, s, nil
}

// UpdateSegment moves both endpoints of a line segment and rederives
// its length and azimuth.
func (g *GeometryService) UpdateSegment(sessionID int, segmentID string, startX, startY, endX, endY float64, layer *string, attributes map[string]any) (*geom.Document, error) {
	doc, err := g.store.Load(sessionID)
	if err != nil {
		return nil, err
	}

	seg := doc.SegmentByID(segmentID)
	if seg == nil {
		return nil, fmt.Errorf("%w: segment %s", ErrObjectNotFound, segmentID)
	}
	line, ok := seg.(*geom.LineSegment)
	if !ok {
		return nil, fmt.Errorf("segment %s: %w", segmentID, ErrNotLineSegment)
	}

	line.Start = geometry.Point2D{X: startX, Y: startY}
	line.End = geometry.Point2D{X: endX, Y: endY}
	line.Recompute()
	if layer != nil {
		line.Layer = *layer
	}
	if attributes != nil {
		if line.Attributes == nil {
			line.Attributes = make(map[string]any)
		}
		for k, v := range attributes {
			line.Attributes[k] = v
		}
	}

	if err := g.store.Save(sessionID, doc); err != nil {
		return nil, err
	}
	return doc, nil
}

// RecalculateSegment repositions one endpoint of a line segment from
// quadrant, bearing and distance.
func (g *GeometryService) RecalculateSegment(sessionID int, segmentID string, quadrant survey.Quadrant, bearing, distance float64, blockedPoint string) (*geom.Document, error) {
	doc, err := g.store.Load(sessionID)
	if err != nil {
		return nil, err
	}

	seg := doc.SegmentByID(segmentID)
	if seg == nil {
		return nil, fmt.Errorf("%w: segment %s", ErrObjectNotFound, segmentID)
	}
	line, ok := seg.(*geom.LineSegment)
	if !ok {
		return nil, fmt.Errorf("segment %s: %w", segmentID, ErrNotLineSegment)
	}

	if err := line.RecalculateByBearing(quadrant, bearing, distance, blockedPoint); err != nil {
		return nil, err
	}

	if err := g.store.Save(sessionID, doc); err != nil {
		return nil, err
	}
	return doc, nil
}

// DeleteObject removes a point or segment by type and id.
func (g *GeometryService) DeleteObject(sessionID int, objectType, objectID string) (*geom.Document, error) {
	doc, err := g.store.Load(sessionID)
	if err != nil {
		return nil, err
	}
	doc.ConvertToSession()

	switch objectType {
	case "point":
		found := false
		kept := doc.Points[:0]
		for _, p := range doc.Points {
			if p.ID == objectID {
				found = true
				continue
			}
			kept = append(kept, p)
		}
		if !found {
			return nil, fmt.Errorf("%w: point %s", ErrObjectNotFound, objectID)
		}
		doc.Points = kept
	case "segment":
		found := false
		kept := doc.Segments[:0]
		for _, s := range doc.Segments {
			if s.SegmentID() == objectID {
				found = true
				continue
			}
			kept = append(kept, s)
		}
		if !found {
			return nil, fmt.Errorf("%w: segment %s", ErrObjectNotFound, objectID)
		}
		doc.Segments = kept
	default:
		return nil, fmt.Errorf("%w: %q", ErrBadObjectType, objectType)
	}

	if err := g.store.Save(sessionID, doc); err != nil {
		return nil, err
	}
	return doc, nil
}

// Undo rolls the session back one version.
func (g *GeometryService) Undo(sessionID int) (*geom.Document, error) {
	return g.store.Undo(sessionID)
}
