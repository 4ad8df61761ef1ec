package geom

import (
	"testing"

	"gonum.org/v1/gonum/floats/scalar"

	"github.com/Nukpro/DeedRecreator/internal/survey"
	"github.com/Nukpro/DeedRecreator/pkg/geometry"
)

const sessionDoc = `{
	"points": [{"id": "p1", "x": 10, "y": 20, "layer": "control"}],
	"segments": [
		{"id": "s1", "segmentType": "line", "start": {"x": 0, "y": 0}, "end": {"x": 3, "y": 4}, "length": 999, "bearing": 123},
		{"id": "s2", "segmentType": "arc", "start": {"x": 0, "y": 0}, "end": {"x": 2, "y": 0}, "center": {"x": 1, "y": 0}, "radius": 1, "rotation": "cw", "delta": 180}
	],
	"geometryLayers": []
}`

const legacyDoc = `{
	"metadata": {"project": "survey 12"},
	"collections": [{
		"id": "c1",
		"title": "Boundary",
		"points": [{"id": "lp1", "x": 5, "y": 5, "layer": "monuments"}],
		"features": [{
			"id": "f1",
			"name": "Lot 1",
			"featureType": "parcel",
			"style": {"stroke": "#2266cc", "width": 2, "fill": "#2266cc22"},
			"geometry": {
				"type": "Polygon",
				"isClosed": true,
				"segments": [
					{"id": "fs1", "segmentType": "line", "start": {"x": 0, "y": 0}, "end": {"x": 10, "y": 0}},
					{"id": "fs2", "segmentType": "line", "start": {"x": 10, "y": 0}, "end": {"x": 10, "y": 10}}
				]
			}
		}]
	}]
}`

func TestUnmarshalSessionDocument(t *testing.T) {
	doc, err := UnmarshalDocument([]byte(sessionDoc))
	if err != nil {
		t.Fatal(err)
	}
	if doc.Format != FormatSession {
		t.Fatalf("format = %v, want FormatSession", doc.Format)
	}
	if len(doc.Points) != 1 || len(doc.Segments) != 2 {
		t.Fatalf("got %d points, %d segments", len(doc.Points), len(doc.Segments))
	}

	line, ok := doc.Segments[0].(*LineSegment)
	if !ok {
		t.Fatalf("segment s1 is %T, want *LineSegment", doc.Segments[0])
	}
	// Wire length (999) and bearing (123) are garbage; both must be
	// rederived from the endpoints.
	if !scalar.EqualWithinAbs(line.Length, 5, 1e-9) {
		t.Errorf("length = %v, want 5", line.Length)
	}
	if !scalar.EqualWithinAbs(line.Azimuth, 36.87, 0.01) {
		t.Errorf("azimuth = %v, want ~36.87", line.Azimuth)
	}
	q, b := survey.AzimuthToBearing(line.Azimuth)
	if q != survey.QuadrantNE || !scalar.EqualWithinAbs(b, 36.87, 0.01) {
		t.Errorf("bearing = %v %v, want NE ~36.87", q, b)
	}

	arc, ok := doc.Segments[1].(*ArcSegment)
	if !ok {
		t.Fatalf("segment s2 is %T, want *ArcSegment", doc.Segments[1])
	}
	if !arc.Clockwise() {
		t.Error("arc with rotation cw reported ccw")
	}
}

func TestUnmarshalLegacyDocument(t *testing.T) {
	doc, err := UnmarshalDocument([]byte(legacyDoc))
	if err != nil {
		t.Fatal(err)
	}
	if doc.Format != FormatLegacy {
		t.Fatalf("format = %v, want FormatLegacy", doc.Format)
	}

	m := doc.Normalize()
	if len(m.Features) != 1 {
		t.Fatalf("got %d render features, want 1", len(m.Features))
	}
	f := m.Features[0]
	if !f.IsClosed || len(f.Segments) != 2 || f.Style.Stroke != "#2266cc" {
		t.Errorf("feature not preserved: %+v", f)
	}
	if len(m.Points) != 1 || m.Points[0].ID != "lp1" {
		t.Errorf("collection points missing from render model: %+v", m.Points)
	}
	if doc.PointByID("lp1") == nil {
		t.Error("collection point not reachable by id")
	}
}

func TestConvertToSessionCarriesLegacyGeometry(t *testing.T) {
	doc, err := UnmarshalDocument([]byte(legacyDoc))
	if err != nil {
		t.Fatal(err)
	}

	doc.ConvertToSession()
	if doc.Format != FormatSession {
		t.Fatalf("format = %v, want FormatSession", doc.Format)
	}
	doc.Points = append(doc.Points, NewPoint(99, 99))

	// The persisted shape must still hold everything the legacy
	// collections carried.
	data, err := MarshalDocument(doc)
	if err != nil {
		t.Fatal(err)
	}
	back, err := UnmarshalDocument(data)
	if err != nil {
		t.Fatal(err)
	}
	if back.PointByID("lp1") == nil {
		t.Error("legacy point lost across conversion")
	}
	if back.SegmentByID("fs1") == nil || back.SegmentByID("fs2") == nil {
		t.Error("legacy segments lost across conversion")
	}
	if len(back.Points) != 2 {
		t.Errorf("got %d points, want the hoisted and the new one", len(back.Points))
	}

	// Converting a session document is a no-op.
	before := len(back.Segments)
	back.ConvertToSession()
	if len(back.Segments) != before {
		t.Error("session conversion changed the document")
	}
}

func TestSessionShapeWinsOverCollections(t *testing.T) {
	// A migration-window payload carrying both shapes must only render
	// the session segments.
	mixed := `{
		"segments": [{"id": "s1", "segmentType": "line", "start": {"x": 0, "y": 0}, "end": {"x": 1, "y": 0}}],
		"collections": [{"id": "c1", "features": [{"id": "f1", "geometry": {"type": "LineString", "isClosed": false,
			"segments": [{"id": "dup", "segmentType": "line", "start": {"x": 0, "y": 0}, "end": {"x": 1, "y": 0}}]}}]}]
	}`
	doc, err := UnmarshalDocument([]byte(mixed))
	if err != nil {
		t.Fatal(err)
	}
	if doc.Format != FormatSession {
		t.Fatalf("format = %v, want FormatSession", doc.Format)
	}
	m := doc.Normalize()
	if len(m.Features) != 1 || m.Features[0].Segments[0].SegmentID() != "s1" {
		t.Errorf("collections leaked into render model: %+v", m.Features)
	}
}

func TestCalculateBounds(t *testing.T) {
	doc, err := UnmarshalDocument([]byte(sessionDoc))
	if err != nil {
		t.Fatal(err)
	}

	box := doc.CalculateBounds(nil)
	if box == nil {
		t.Fatal("bounds nil for non-empty document")
	}
	// Arc contributes the full circle: center (1,0) radius 1 reaches y=-1.
	if box.MinY != -1 {
		t.Errorf("minY = %v, want -1 (arc circle)", box.MinY)
	}
	if box.MaxX != 10 || box.MaxY != 20 {
		t.Errorf("max = (%v,%v), want (10,20) from point p1", box.MaxX, box.MaxY)
	}

	raster := &geometry.BBox{MinX: -5, MinY: -5, MaxX: 30, MaxY: 30}
	box = doc.CalculateBounds(raster)
	if box.MinX != -5 || box.MaxX != 30 {
		t.Errorf("raster bounds not folded in: %+v", box)
	}

	empty := &Document{Format: FormatSession}
	if empty.CalculateBounds(nil) != nil {
		t.Error("empty document should have nil bounds")
	}
	if b := empty.CalculateBounds(raster); b == nil || b.MinX != -5 {
		t.Error("raster-only bounds lost")
	}
}

func TestSegmentLookup(t *testing.T) {
	doc, err := UnmarshalDocument([]byte(legacyDoc))
	if err != nil {
		t.Fatal(err)
	}
	if doc.SegmentByID("fs2") == nil {
		t.Error("segment fs2 not found in legacy collections")
	}
	if doc.SegmentByID("missing") != nil {
		t.Error("lookup invented a segment")
	}
}
