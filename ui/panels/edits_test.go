package panels

import (
	"testing"

	"fyne.io/fyne/v2"
	"gonum.org/v1/gonum/floats/scalar"

	"github.com/Nukpro/DeedRecreator/internal/survey"
)

func TestParsePointEdit(t *testing.T) {
	e, err := parsePointEdit(" 10.5 ", "-3", "boundary")
	if err != nil {
		t.Fatal(err)
	}
	if e.X != 10.5 || e.Y != -3 || e.Layer != "boundary" {
		t.Errorf("edit = %+v", e)
	}

	if _, err := parsePointEdit("abc", "1", ""); err == nil {
		t.Error("non-numeric X accepted")
	}
	if _, err := parsePointEdit("1", "", ""); err == nil {
		t.Error("empty Y accepted")
	}
}

func TestParseBearingEditAcceptsDMSAndDecimal(t *testing.T) {
	e, err := parseBearingEdit("NE", `36*52'11.63"`, "100", "start_pt")
	if err != nil {
		t.Fatal(err)
	}
	if !scalar.EqualWithinAbs(e.Bearing, 36.8699, 1e-3) {
		t.Errorf("DMS bearing = %v", e.Bearing)
	}

	e, err = parseBearingEdit("sw", "45.25", "12.5", "")
	if err != nil {
		t.Fatal(err)
	}
	if e.Quadrant != survey.QuadrantSW || e.Bearing != 45.25 {
		t.Errorf("edit = %+v", e)
	}
	if e.BlockedPoint != "start_pt" {
		t.Errorf("default blocked point = %q", e.BlockedPoint)
	}
}

func TestParseBearingEditRejections(t *testing.T) {
	cases := []struct {
		name                                 string
		quadrant, bearing, distance, blocked string
	}{
		{"bad quadrant", "NORTH", "45", "10", "start_pt"},
		{"bearing over 90", "NE", "91", "10", "start_pt"},
		{"negative bearing", "NE", "-1", "10", "start_pt"},
		{"garbage bearing", "NE", "abc", "10", "start_pt"},
		{"zero distance", "NE", "45", "0", "start_pt"},
		{"negative distance", "NE", "45", "-5", "start_pt"},
		{"bad blocked point", "NE", "45", "10", "middle"},
	}
	for _, c := range cases {
		if _, err := parseBearingEdit(c.quadrant, c.bearing, c.distance, c.blocked); err == nil {
			t.Errorf("%s: accepted", c.name)
		}
	}
}

func TestParseEndpointEdit(t *testing.T) {
	e, err := parseEndpointEdit("0", "0", "3", "4", "")
	if err != nil {
		t.Fatal(err)
	}
	if e.EndX != 3 || e.EndY != 4 {
		t.Errorf("edit = %+v", e)
	}

	if _, err := parseEndpointEdit("0", "0", "x", "4", ""); err == nil {
		t.Error("non-numeric end X accepted")
	}
}

func TestClampPositionKeepsEditorInside(t *testing.T) {
	bounds := fyne.NewSize(800, 600)
	size := fyne.NewSize(280, 200)

	// Near the bottom-right corner the editor shifts up and left.
	pos := clampPosition(fyne.NewPos(700, 500), size, bounds)
	if pos.X+size.Width+editorPadding > bounds.Width ||
		pos.Y+size.Height+editorPadding > bounds.Height {
		t.Errorf("editor escapes container: %+v", pos)
	}

	// Near the origin it respects the padding.
	pos = clampPosition(fyne.NewPos(0, 0), size, bounds)
	if pos.X < editorPadding || pos.Y < editorPadding {
		t.Errorf("editor ignores padding: %+v", pos)
	}
}

func TestBlockedFromLabel(t *testing.T) {
	if blockedFromLabel("End point") != "end_pt" {
		t.Error("end label not mapped")
	}
	if blockedFromLabel("Start point") != "start_pt" || blockedFromLabel("") != "start_pt" {
		t.Error("start default not mapped")
	}
}
