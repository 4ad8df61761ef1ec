package canvas

import (
	"image"
	"image/color"
	"testing"

	"github.com/Nukpro/DeedRecreator/internal/app"
	"github.com/Nukpro/DeedRecreator/internal/geom"
	"github.com/Nukpro/DeedRecreator/internal/viewport"
	"github.com/Nukpro/DeedRecreator/pkg/colorutil"
	"github.com/Nukpro/DeedRecreator/pkg/geometry"
)

func paperAt(img image.Image, x, y int) bool {
	got := color.NRGBAModel.Convert(img.At(x, y))
	return got == color.NRGBAModel.Convert(colorutil.Paper)
}

func TestDrawStartsNewSubpathAcrossGaps(t *testing.T) {
	segA := geom.NewLineSegment(geometry.Point2D{X: 0, Y: 0}, geometry.Point2D{X: 20, Y: 0})
	segB := geom.NewLineSegment(geometry.Point2D{X: 40, Y: 60}, geometry.Point2D{X: 60, Y: 60})
	doc := &geom.Document{
		Format: geom.FormatLegacy,
		Collections: []geom.Collection{{
			ID: "c1",
			Features: []geom.Feature{{
				ID: "f1",
				Geometry: geom.FeatureGeometry{
					Type:     "LineString",
					Segments: []geom.Segment{segA, segB},
				},
			}},
		}},
	}

	state := app.NewState()
	state.SetDocument(doc)
	v := &GeometryViewer{
		state:     state,
		transform: viewport.Transform{Scale: 1, OffsetX: 10, OffsetY: 90},
	}

	img := v.draw(100, 100)

	// Both segments stroke over their own extents.
	if paperAt(img, 20, 90) {
		t.Error("first segment not drawn at (20,90)")
	}
	if paperAt(img, 60, 30) {
		t.Error("second segment not drawn at (60,30)")
	}
	// The ends do not coincide, so no stroke may bridge them.
	if !paperAt(img, 50, 60) {
		t.Errorf("disconnected segments bridged at (50,60): %v", img.At(50, 60))
	}
}

func TestDrawKeepsContiguousSegmentsJoined(t *testing.T) {
	segA := geom.NewLineSegment(geometry.Point2D{X: 0, Y: 0}, geometry.Point2D{X: 40, Y: 0})
	segB := geom.NewLineSegment(geometry.Point2D{X: 40.05, Y: 0}, geometry.Point2D{X: 80, Y: 40})
	doc := &geom.Document{
		Format: geom.FormatLegacy,
		Collections: []geom.Collection{{
			ID: "c1",
			Features: []geom.Feature{{
				ID: "f1",
				Geometry: geom.FeatureGeometry{
					Type:     "LineString",
					Segments: []geom.Segment{segA, segB},
				},
			}},
		}},
	}

	state := app.NewState()
	state.SetDocument(doc)
	v := &GeometryViewer{
		state:     state,
		transform: viewport.Transform{Scale: 1, OffsetX: 10, OffsetY: 90},
	}

	img := v.draw(100, 100)

	// A sub-tolerance gap continues the path: the second leg runs from
	// canvas (50,90) to (90,50) and must be stroked at its midpoint.
	if paperAt(img, 70, 70) {
		t.Error("contiguous segments not stroked as one path")
	}
}

func TestLassoPreviewFillsInterior(t *testing.T) {
	state := app.NewState()
	v := &GeometryViewer{
		state:     state,
		transform: viewport.Transform{Scale: 1, OffsetX: 0, OffsetY: 100},
	}
	v.machine.mode = ModePolygonSelect
	v.machine.lasso = []geometry.Point2D{
		{X: 10, Y: 10}, {X: 90, Y: 10}, {X: 90, Y: 90}, {X: 10, Y: 90},
	}

	img := v.draw(100, 100)

	if paperAt(img, 50, 50) {
		t.Error("lasso interior not filled")
	}

	// Two vertices bound no area yet; nothing to fill.
	v.machine.lasso = v.machine.lasso[:2]
	img = v.draw(100, 100)
	if !paperAt(img, 50, 50) {
		t.Error("open lasso leaked a fill")
	}
}
