package canvas

import (
	"testing"

	"github.com/Nukpro/DeedRecreator/internal/geom"
	"github.com/Nukpro/DeedRecreator/pkg/colorutil"
)

func TestFeatureStrokeHonorsStoredStyle(t *testing.T) {
	s := featureStroke(stateInactive, geom.Style{Stroke: "#FF0000", Width: 3})
	if s.width != 3 {
		t.Errorf("width = %v, want 3", s.width)
	}
	r, _, _, _ := s.color.RGBA()
	if r != 0xFFFF {
		t.Errorf("stroke red channel = %#x", r)
	}
	if s.halo != nil {
		t.Error("inactive stroke got a halo")
	}
}

func TestFeatureStrokeFallsBackOnBadColor(t *testing.T) {
	s := featureStroke(stateInactive, geom.Style{Stroke: "chartreuse"})
	if s.color != colorutil.Ink {
		t.Errorf("unparsable stroke = %v, want ink fallback", s.color)
	}
	if s.width != 1.5 {
		t.Errorf("zero width not defaulted: %v", s.width)
	}
}

func TestSelectedStrokeGetsHalo(t *testing.T) {
	s := featureStroke(stateSelected, geom.Style{Width: 2})
	if s.halo == nil {
		t.Fatal("selected stroke missing halo")
	}
	if s.haloWidth <= s.width {
		t.Errorf("halo width %v not wider than stroke %v", s.haloWidth, s.width)
	}
	if s.color != colorutil.Selected {
		t.Errorf("selected color = %v", s.color)
	}
}

func TestHoverOverridesStoredColor(t *testing.T) {
	s := featureStroke(stateHovered, geom.Style{Stroke: "#00FF00"})
	if s.color != colorutil.Hover {
		t.Errorf("hovered color = %v", s.color)
	}
}

func TestPointMarkerStates(t *testing.T) {
	inactive := pointMarker(stateInactive)
	hovered := pointMarker(stateHovered)
	selected := pointMarker(stateSelected)

	if inactive.fill != colorutil.SurveyBlue {
		t.Errorf("inactive fill = %v", inactive.fill)
	}
	if hovered.fill != colorutil.Hover || selected.fill != colorutil.Selected {
		t.Errorf("state fills = %v / %v", hovered.fill, selected.fill)
	}
	if hovered.radius <= inactive.radius {
		t.Error("hovered marker not enlarged")
	}
}
