package server

import (
	"errors"
	"testing"

	"gonum.org/v1/gonum/floats/scalar"

	"github.com/Nukpro/DeedRecreator/internal/geom"
	"github.com/Nukpro/DeedRecreator/internal/store"
	"github.com/Nukpro/DeedRecreator/internal/survey"
)

func newTestService(t *testing.T) *GeometryService {
	t.Helper()
	st, err := store.New(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	return NewGeometryService(st)
}

func TestAddPointAndUndo(t *testing.T) {
	svc := newTestService(t)

	doc, p, err := svc.AddPoint(1, 12.5, -3.25, nil)
	if err != nil {
		t.Fatal(err)
	}
	if doc.Version != 1 || p.ID == "" {
		t.Errorf("version %d point %+v", doc.Version, p)
	}

	if _, _, err := svc.AddPoint(1, 99, 99, nil); err != nil {
		t.Fatal(err)
	}

	doc, err = svc.Undo(1)
	if err != nil {
		t.Fatal(err)
	}
	if len(doc.Points) != 1 || doc.Points[0].X != 12.5 {
		t.Errorf("undo state: %+v", doc.Points)
	}
}

func TestAddSegmentDerivesGeometry(t *testing.T) {
	svc := newTestService(t)

	_, seg, err := svc.AddSegment(2, 0, 0, 3, 4, map[string]any{"source": "deed"})
	if err != nil {
		t.Fatal(err)
	}

	doc, err := svc.Load(2)
	if err != nil {
		t.Fatal(err)
	}
	line := mustLine(t, doc, seg.SegmentID())
	if !scalar.EqualWithinAbs(line.Length, 5, 1e-9) {
		t.Errorf("length = %v, want 5", line.Length)
	}
	if !scalar.EqualWithinAbs(line.Azimuth, 36.8699, 1e-4) {
		t.Errorf("azimuth = %v", line.Azimuth)
	}
	if line.Attributes["source"] != "deed" {
		t.Errorf("attributes lost: %+v", line.Attributes)
	}
}

func mustLine(t *testing.T, doc *geom.Document, id string) *geom.LineSegment {
	t.Helper()
	seg := doc.SegmentByID(id)
	if seg == nil {
		t.Fatalf("segment %s not found", id)
	}
	line, ok := seg.(*geom.LineSegment)
	if !ok {
		t.Fatalf("segment %s is %T", id, seg)
	}
	return line
}

func TestUpdateSegmentRecomputes(t *testing.T) {
	svc := newTestService(t)

	_, seg, err := svc.AddSegment(3, 0, 0, 1, 0, nil)
	if err != nil {
		t.Fatal(err)
	}

	layer := "boundary"
	doc, err := svc.UpdateSegment(3, seg.SegmentID(), 0, 0, 3, 4, &layer, nil)
	if err != nil {
		t.Fatal(err)
	}

	line := mustLine(t, doc, seg.SegmentID())
	if !scalar.EqualWithinAbs(line.Length, 5, 1e-9) {
		t.Errorf("length = %v, want 5", line.Length)
	}
	if line.Layer != "boundary" {
		t.Errorf("layer = %q", line.Layer)
	}
}

func TestRecalculateSegment(t *testing.T) {
	svc := newTestService(t)

	_, seg, err := svc.AddSegment(4, 0, 0, 1, 1, nil)
	if err != nil {
		t.Fatal(err)
	}

	doc, err := svc.RecalculateSegment(4, seg.SegmentID(), survey.QuadrantSE, 45, 10, "start_pt")
	if err != nil {
		t.Fatal(err)
	}
	line := mustLine(t, doc, seg.SegmentID())
	// SE 45 is azimuth 135: east and south of the held start.
	if line.End.X <= 0 || line.End.Y >= 0 {
		t.Errorf("end = %+v, want +x -y", line.End)
	}
	if !scalar.EqualWithinAbs(line.Length, 10, 1e-9) {
		t.Errorf("length = %v, want 10", line.Length)
	}

	if _, err := svc.RecalculateSegment(4, "nope", survey.QuadrantNE, 45, 10, "start_pt"); !errors.Is(err, ErrObjectNotFound) {
		t.Errorf("err = %v, want ErrObjectNotFound", err)
	}
}

func TestDeleteObject(t *testing.T) {
	svc := newTestService(t)

	_, p, err := svc.AddPoint(5, 1, 1, nil)
	if err != nil {
		t.Fatal(err)
	}
	_, seg, err := svc.AddSegment(5, 0, 0, 1, 0, nil)
	if err != nil {
		t.Fatal(err)
	}

	doc, err := svc.DeleteObject(5, "point", p.ID)
	if err != nil {
		t.Fatal(err)
	}
	if len(doc.Points) != 0 {
		t.Error("point survived deletion")
	}

	doc, err = svc.DeleteObject(5, "segment", seg.SegmentID())
	if err != nil {
		t.Fatal(err)
	}
	if len(doc.Segments) != 0 {
		t.Error("segment survived deletion")
	}

	if _, err := svc.DeleteObject(5, "point", "missing"); !errors.Is(err, ErrObjectNotFound) {
		t.Errorf("err = %v, want ErrObjectNotFound", err)
	}
	if _, err := svc.DeleteObject(5, "parcel", "x"); !errors.Is(err, ErrBadObjectType) {
		t.Errorf("err = %v, want ErrBadObjectType", err)
	}
}

func TestMutatingLegacySessionKeepsGeometry(t *testing.T) {
	svc := newTestService(t)

	legacy := `{
		"collections": [{
			"id": "c1",
			"points": [{"id": "lp1", "x": 5, "y": 5}],
			"features": [{"id": "f1", "geometry": {"type": "LineString", "isClosed": false,
				"segments": [{"id": "fs1", "segmentType": "line", "start": {"x": 0, "y": 0}, "end": {"x": 10, "y": 0}}]}}]
		}]
	}`
	doc, err := geom.UnmarshalDocument([]byte(legacy))
	if err != nil {
		t.Fatal(err)
	}
	if _, err := svc.SaveFull(7, doc); err != nil {
		t.Fatal(err)
	}

	if _, _, err := svc.AddPoint(7, 1, 2, nil); err != nil {
		t.Fatal(err)
	}

	after, err := svc.Load(7)
	if err != nil {
		t.Fatal(err)
	}
	if after.PointByID("lp1") == nil {
		t.Error("legacy point dropped by mutation")
	}
	if after.SegmentByID("fs1") == nil {
		t.Error("legacy segment dropped by mutation")
	}
	if len(after.Points) != 2 {
		t.Errorf("got %d points, want hoisted lp1 plus the new point", len(after.Points))
	}
}

func TestFailedRecalculateLeavesStateUntouched(t *testing.T) {
	svc := newTestService(t)

	_, seg, err := svc.AddSegment(6, 0, 0, 3, 4, nil)
	if err != nil {
		t.Fatal(err)
	}
	before, err := svc.Load(6)
	if err != nil {
		t.Fatal(err)
	}

	if _, err := svc.RecalculateSegment(6, seg.SegmentID(), survey.QuadrantNE, 95, 10, "start_pt"); err == nil {
		t.Fatal("invalid bearing accepted")
	}

	after, err := svc.Load(6)
	if err != nil {
		t.Fatal(err)
	}
	if after.Version != before.Version {
		t.Errorf("version moved %d -> %d on failed mutation", before.Version, after.Version)
	}
	line := mustLine(t, after, seg.SegmentID())
	if line.End.X != 3 || line.End.Y != 4 {
		t.Errorf("geometry changed on failed mutation: %+v", line.End)
	}
}
