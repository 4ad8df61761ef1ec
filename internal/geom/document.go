package geom

import (
	"encoding/json"
	"fmt"

	"github.com/google/uuid"

	"github.com/Nukpro/DeedRecreator/pkg/geometry"
)

// Point is a named survey point.
type Point struct {
	ID         string         `json:"id"`
	X          float64        `json:"x"`
	Y          float64        `json:"y"`
	Layer      string         `json:"layer,omitempty"`
	Attributes map[string]any `json:"attributes,omitempty"`
}

// NewPoint creates a point with a fresh id.
func NewPoint(x, y float64) *Point {
	return &Point{ID: uuid.NewString(), X: x, Y: y}
}

// Position returns the point's world coordinates.
func (p *Point) Position() geometry.Point2D {
	return geometry.Point2D{X: p.X, Y: p.Y}
}

// Style carries the display hints attached to legacy features.
type Style struct {
	Stroke string  `json:"stroke,omitempty"`
	Width  float64 `json:"width,omitempty"`
	Fill   string  `json:"fill,omitempty"`
}

// FeatureGeometry is the ordered segment list of a legacy feature.
type FeatureGeometry struct {
	Type     string    `json:"type"` // "Polygon" or "LineString"
	IsClosed bool      `json:"isClosed"`
	Segments []Segment `json:"-"`
}

// Feature is a named geometric entity (parcel, centerline) in the legacy
// render-only format.
type Feature struct {
	ID          string          `json:"id"`
	Name        string          `json:"name,omitempty"`
	FeatureType string          `json:"featureType,omitempty"`
	Geometry    FeatureGeometry `json:"geometry"`
	Attributes  map[string]any  `json:"attributes,omitempty"`
	Style       Style           `json:"style,omitempty"`
}

// Collection groups legacy features, and optionally standalone points,
// under a title.
type Collection struct {
	ID       string    `json:"id"`
	Title    string    `json:"title,omitempty"`
	Points   []*Point  `json:"points,omitempty"`
	Features []Feature `json:"features"`
}

// History links a document revision to the version file it replaced.
type History struct {
	CurrentVersion      int     `json:"currentVersion"`
	PreviousVersionFile *string `json:"previousVersionFile"`
}

// Format tags the two wire shapes a document can arrive in.
type Format int

const (
	// FormatSession is the editable points+segments shape.
	FormatSession Format = iota
	// FormatLegacy is the render-only collections shape.
	FormatLegacy
)

// Document is the loaded geometric document. Exactly one of the two
// shapes is populated, decided once at decode time rather than sniffed
// per render call.
type Document struct {
	Format      Format
	Version     int
	History     *History
	Metadata    map[string]any
	Points      []*Point
	Segments    []Segment
	Collections []Collection
}

// wireDocument covers both wire shapes; decode picks the variant.
type wireDocument struct {
	Version     int               `json:"version,omitempty"`
	History     *History          `json:"history,omitempty"`
	Metadata    map[string]any    `json:"metadata,omitempty"`
	Points      []json.RawMessage `json:"points,omitempty"`
	Segments    []json.RawMessage `json:"segments,omitempty"`
	Collections []wireCollection  `json:"collections,omitempty"`
}

type wireCollection struct {
	ID       string        `json:"id"`
	Title    string        `json:"title,omitempty"`
	Points   []*Point      `json:"points,omitempty"`
	Features []wireFeature `json:"features"`
}

type wireFeature struct {
	ID          string         `json:"id"`
	Name        string         `json:"name,omitempty"`
	FeatureType string         `json:"featureType,omitempty"`
	Geometry    wireGeometry   `json:"geometry"`
	Attributes  map[string]any `json:"attributes,omitempty"`
	Style       Style          `json:"style,omitempty"`
}

type wireGeometry struct {
	Type     string            `json:"type"`
	IsClosed bool              `json:"isClosed"`
	Segments []json.RawMessage `json:"segments"`
}

// UnmarshalDocument decodes either wire shape into a tagged Document.
// A payload with top-level points or segments is a session document even
// when collections are also present; the collections are dropped so the
// same geometry is never drawn twice.
func UnmarshalDocument(data []byte) (*Document, error) {
	var w wireDocument
	if err := json.Unmarshal(data, &w); err != nil {
		return nil, fmt.Errorf("decode document: %w", err)
	}

	doc := &Document{Version: w.Version, History: w.History, Metadata: w.Metadata}

	// A present-but-empty points or segments array still marks a session
	// document; only absent (or null) keys fall through to legacy.
	if w.Points != nil || w.Segments != nil {
		doc.Format = FormatSession
		for _, raw := range w.Points {
			var p Point
			if err := json.Unmarshal(raw, &p); err != nil {
				return nil, fmt.Errorf("decode point: %w", err)
			}
			if p.ID == "" {
				p.ID = uuid.NewString()
			}
			doc.Points = append(doc.Points, &p)
		}
		for _, raw := range w.Segments {
			seg, err := UnmarshalSegment(raw)
			if err != nil {
				return nil, err
			}
			doc.Segments = append(doc.Segments, seg)
		}
		return doc, nil
	}

	doc.Format = FormatLegacy
	for _, wc := range w.Collections {
		col := Collection{ID: wc.ID, Title: wc.Title, Points: wc.Points}
		for _, p := range col.Points {
			if p.ID == "" {
				p.ID = uuid.NewString()
			}
		}
		for _, wf := range wc.Features {
			f := Feature{
				ID:          wf.ID,
				Name:        wf.Name,
				FeatureType: wf.FeatureType,
				Attributes:  wf.Attributes,
				Style:       wf.Style,
				Geometry: FeatureGeometry{
					Type:     wf.Geometry.Type,
					IsClosed: wf.Geometry.IsClosed,
				},
			}
			for _, raw := range wf.Geometry.Segments {
				seg, err := UnmarshalSegment(raw)
				if err != nil {
					return nil, err
				}
				f.Geometry.Segments = append(f.Geometry.Segments, seg)
			}
			col.Features = append(col.Features, f)
		}
		doc.Collections = append(doc.Collections, col)
	}
	return doc, nil
}

// MarshalDocument encodes the document back into its wire shape.
// Session documents always emit points and segments arrays, even when
// empty, so a round-tripped document keeps its format tag.
func MarshalDocument(d *Document) ([]byte, error) {
	if d.Format == FormatLegacy {
		out := struct {
			Version     int              `json:"version,omitempty"`
			History     *History         `json:"history,omitempty"`
			Metadata    map[string]any   `json:"metadata,omitempty"`
			Collections []wireCollection `json:"collections"`
		}{Version: d.Version, History: d.History, Metadata: d.Metadata}

		for _, col := range d.Collections {
			wc := wireCollection{ID: col.ID, Title: col.Title, Points: col.Points}
			for _, f := range col.Features {
				wf := wireFeature{
					ID:          f.ID,
					Name:        f.Name,
					FeatureType: f.FeatureType,
					Attributes:  f.Attributes,
					Style:       f.Style,
					Geometry: wireGeometry{
						Type:     f.Geometry.Type,
						IsClosed: f.Geometry.IsClosed,
					},
				}
				for _, s := range f.Geometry.Segments {
					raw, err := MarshalSegment(s)
					if err != nil {
						return nil, fmt.Errorf("encode segment %s: %w", s.SegmentID(), err)
					}
					wf.Geometry.Segments = append(wf.Geometry.Segments, raw)
				}
				wc.Features = append(wc.Features, wf)
			}
			out.Collections = append(out.Collections, wc)
		}
		return json.MarshalIndent(out, "", "  ")
	}

	out := struct {
		Version  int               `json:"version"`
		History  *History          `json:"history,omitempty"`
		Metadata map[string]any    `json:"metadata,omitempty"`
		Points   []json.RawMessage `json:"points"`
		Segments []json.RawMessage `json:"segments"`
	}{
		Version:  d.Version,
		History:  d.History,
		Metadata: d.Metadata,
		Points:   make([]json.RawMessage, 0, len(d.Points)),
		Segments: make([]json.RawMessage, 0, len(d.Segments)),
	}

	for _, p := range d.Points {
		raw, err := json.Marshal(p)
		if err != nil {
			return nil, fmt.Errorf("encode point %s: %w", p.ID, err)
		}
		out.Points = append(out.Points, raw)
	}
	for _, s := range d.Segments {
		raw, err := MarshalSegment(s)
		if err != nil {
			return nil, fmt.Errorf("encode segment %s: %w", s.SegmentID(), err)
		}
		out.Segments = append(out.Segments, raw)
	}
	return json.MarshalIndent(out, "", "  ")
}

// RenderFeature is one stroke/fill unit of the normalized render model.
type RenderFeature struct {
	ID       string
	Segments []Segment
	IsClosed bool
	Style    Style
}

// RenderModel is the single internal shape the viewer draws, regardless
// of which wire format the document arrived in.
type RenderModel struct {
	Features []RenderFeature
	Points   []*Point
}

// Normalize flattens the document into the render model. Session
// segments become one feature each (no path continuity is implied
// between them); legacy features keep their grouping, closure and style.
func (d *Document) Normalize() RenderModel {
	var m RenderModel

	switch d.Format {
	case FormatSession:
		m.Points = d.Points
		for _, seg := range d.Segments {
			m.Features = append(m.Features, RenderFeature{
				ID:       seg.SegmentID(),
				Segments: []Segment{seg},
			})
		}
	case FormatLegacy:
		m.Points = d.AllPoints()
		for _, col := range d.Collections {
			for _, f := range col.Features {
				m.Features = append(m.Features, RenderFeature{
					ID:       f.ID,
					Segments: f.Geometry.Segments,
					IsClosed: f.Geometry.IsClosed,
					Style:    f.Style,
				})
			}
		}
	}
	return m
}

// AllPoints returns every point in the document in draw order.
func (d *Document) AllPoints() []*Point {
	if d.Format == FormatSession {
		return d.Points
	}
	var pts []*Point
	for _, col := range d.Collections {
		pts = append(pts, col.Points...)
	}
	return pts
}

// ConvertToSession flattens a legacy document into the editable
// points+segments shape, hoisting collection points and feature segments
// in document order. Feature grouping, closure and style have no session
// representation and are dropped. Session documents are unchanged.
func (d *Document) ConvertToSession() {
	if d.Format == FormatSession {
		return
	}
	d.Points = d.AllPoints()
	d.Segments = d.AllSegments()
	d.Collections = nil
	d.Format = FormatSession
}

// AllSegments returns every segment in the document in draw order.
func (d *Document) AllSegments() []Segment {
	if d.Format == FormatSession {
		return d.Segments
	}
	var segs []Segment
	for _, col := range d.Collections {
		for _, f := range col.Features {
			segs = append(segs, f.Geometry.Segments...)
		}
	}
	return segs
}

// PointByID finds a point by id across both formats, or nil.
func (d *Document) PointByID(id string) *Point {
	for _, p := range d.AllPoints() {
		if p.ID == id {
			return p
		}
	}
	return nil
}

// SegmentByID finds a segment by id across both formats, or nil.
func (d *Document) SegmentByID(id string) Segment {
	for _, s := range d.AllSegments() {
		if s.SegmentID() == id {
			return s
		}
	}
	return nil
}

// CalculateBounds folds every point and segment into a bounding box,
// including the optional raster-underlay bounds. Arcs contribute the
// full circle around their center. Returns nil when the document holds
// no geometry and no raster is present.
func (d *Document) CalculateBounds(raster *geometry.BBox) *geometry.BBox {
	var box *geometry.BBox

	extend := func(b geometry.BBox) {
		if box == nil {
			box = &b
			return
		}
		u := box.Union(b)
		box = &u
	}

	for _, p := range d.AllPoints() {
		extend(geometry.NewBBox(p.Position()))
	}
	for _, s := range d.AllSegments() {
		extend(s.Bounds())
	}
	if raster != nil {
		extend(*raster)
	}
	return box
}
