// Package export encodes geometry documents into interchange formats.
package export

import (
	"github.com/paulmach/go.geojson"

	"github.com/Nukpro/DeedRecreator/internal/geom"
	"github.com/Nukpro/DeedRecreator/internal/survey"
)

// ToGeoJSON converts a document into a GeoJSON feature collection.
// Points become Point features; every segment becomes a two-vertex
// LineString carrying length, azimuth and (for lines) the surveyor's
// bearing as properties. Arc curvature parameters travel as properties
// since GeoJSON has no native arc type.
func ToGeoJSON(doc *geom.Document) *geojson.FeatureCollection {
	fc := geojson.NewFeatureCollection()

	for _, p := range doc.AllPoints() {
		f := geojson.NewPointFeature([]float64{p.X, p.Y})
		f.ID = p.ID
		f.SetProperty("kind", "point")
		if p.Layer != "" {
			f.SetProperty("layer", p.Layer)
		}
		for k, v := range p.Attributes {
			f.SetProperty(k, v)
		}
		fc.AddFeature(f)
	}

	for _, s := range doc.AllSegments() {
		start, end := s.Endpoints()
		f := geojson.NewLineStringFeature([][]float64{
			{start.X, start.Y},
			{end.X, end.Y},
		})
		f.ID = s.SegmentID()
		f.SetProperty("kind", string(s.Kind()))
		if s.SegmentLayer() != "" {
			f.SetProperty("layer", s.SegmentLayer())
		}

		switch seg := s.(type) {
		case *geom.LineSegment:
			f.SetProperty("length", survey.RoundDisplay(seg.Length))
			f.SetProperty("azimuth", survey.RoundDisplay(seg.Azimuth))
			q, b := survey.AzimuthToBearing(seg.Azimuth)
			f.SetProperty("quadrant", string(q))
			f.SetProperty("bearing", survey.DecimalToDMS(b))
		case *geom.ArcSegment:
			f.SetProperty("center", []float64{seg.Center.X, seg.Center.Y})
			f.SetProperty("radius", seg.Radius)
			f.SetProperty("clockwise", seg.Clockwise())
			if seg.Delta != 0 {
				f.SetProperty("delta", seg.Delta)
			}
		}
		fc.AddFeature(f)
	}

	return fc
}
