package canvas

import (
	"testing"

	"github.com/Nukpro/DeedRecreator/internal/app"
	"github.com/Nukpro/DeedRecreator/internal/geom"
	"github.com/Nukpro/DeedRecreator/internal/pick"
	"github.com/Nukpro/DeedRecreator/internal/viewport"
	"github.com/Nukpro/DeedRecreator/pkg/geometry"
)

func TestCommitLassoDeliversVerticesAndSelection(t *testing.T) {
	state := app.NewState()
	state.SetDocument(&geom.Document{
		Format: geom.FormatSession,
		Points: []*geom.Point{{ID: "p1", X: 5, Y: 5}, {ID: "far", X: 50, Y: 50}},
	})

	v := &GeometryViewer{state: state, transform: viewport.NewTransform()}
	v.machine.mode = ModePolygonSelect
	v.machine.lasso = []geometry.Point2D{
		{X: 0, Y: 0}, {X: 10, Y: 0}, {X: 10, Y: 10}, {X: 0, Y: 10},
	}

	var gotVerts []geometry.Point2D
	var gotRefs []pick.Ref
	v.OnPolygonSelect(func(vertices []geometry.Point2D, refs []pick.Ref) {
		gotVerts = vertices
		gotRefs = refs
	})

	v.commitLasso()

	if len(gotVerts) != 4 {
		t.Fatalf("got %d vertices, want the 4 lasso corners", len(gotVerts))
	}
	if gotVerts[2] != (geometry.Point2D{X: 10, Y: 10}) {
		t.Errorf("vertices not delivered in world space: %+v", gotVerts)
	}
	if len(gotRefs) != 1 || gotRefs[0].ID != "p1" {
		t.Errorf("refs = %+v, want just p1", gotRefs)
	}
	if !state.Selection().Contains(pick.Ref{Type: pick.TypePoint, ID: "p1"}) {
		t.Error("selection not updated from the lasso")
	}
	if v.machine.Pending() {
		t.Error("lasso buffer survived the commit")
	}
}

func TestCommitLassoNeedsThreeVertices(t *testing.T) {
	state := app.NewState()
	v := &GeometryViewer{state: state, transform: viewport.NewTransform()}
	v.machine.mode = ModePolygonSelect
	v.machine.lasso = []geometry.Point2D{{X: 0, Y: 0}, {X: 10, Y: 0}}

	fired := false
	v.OnPolygonSelect(func([]geometry.Point2D, []pick.Ref) { fired = true })

	v.commitLasso()
	if fired {
		t.Error("degenerate lasso fired the callback")
	}
	if v.machine.Pending() {
		t.Error("degenerate lasso not cleared")
	}
}
