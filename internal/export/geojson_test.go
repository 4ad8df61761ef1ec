package export

import (
	"encoding/json"
	"testing"

	"github.com/Nukpro/DeedRecreator/internal/geom"
	"github.com/Nukpro/DeedRecreator/pkg/geometry"
)

func TestToGeoJSON(t *testing.T) {
	doc := &geom.Document{Format: geom.FormatSession}
	doc.Points = append(doc.Points, &geom.Point{ID: "p1", X: 1, Y: 2, Layer: "control"})

	line := geom.NewLineSegment(geometry.Point2D{X: 0, Y: 0}, geometry.Point2D{X: 3, Y: 4})
	line.ID = "l1"
	doc.Segments = append(doc.Segments, line)

	fc := ToGeoJSON(doc)
	if len(fc.Features) != 2 {
		t.Fatalf("got %d features, want 2", len(fc.Features))
	}

	pt := fc.Features[0]
	if pt.ID != "p1" || !pt.Geometry.IsPoint() {
		t.Errorf("point feature: %+v", pt)
	}
	if pt.Geometry.Point[0] != 1 || pt.Geometry.Point[1] != 2 {
		t.Errorf("point coords: %v", pt.Geometry.Point)
	}
	if layer, _ := pt.PropertyString("layer"); layer != "control" {
		t.Errorf("layer = %q", layer)
	}

	ls := fc.Features[1]
	if ls.ID != "l1" || !ls.Geometry.IsLineString() {
		t.Errorf("line feature: %+v", ls)
	}
	if length, _ := ls.PropertyFloat64("length"); length != 5 {
		t.Errorf("length = %v, want 5", length)
	}
	if q, _ := ls.PropertyString("quadrant"); q != "NE" {
		t.Errorf("quadrant = %q, want NE", q)
	}
	if b, _ := ls.PropertyString("bearing"); b != `36*52'11.63"` {
		t.Errorf("bearing = %q", b)
	}

	// The collection must serialize to valid GeoJSON.
	data, err := json.Marshal(fc)
	if err != nil {
		t.Fatal(err)
	}
	var probe map[string]any
	if err := json.Unmarshal(data, &probe); err != nil {
		t.Fatal(err)
	}
	if probe["type"] != "FeatureCollection" {
		t.Errorf("type = %v", probe["type"])
	}
}
