package canvas

import (
	"image/color"

	"github.com/Nukpro/DeedRecreator/internal/geom"
	"github.com/Nukpro/DeedRecreator/pkg/colorutil"
)

// objectState is the display state of a drawn object.
type objectState int

const (
	stateInactive objectState = iota
	stateHovered
	stateSelected
)

// strokeStyle is the resolved stroke for one feature. A non-nil halo is
// drawn first as a wide under-stroke so the selection reads at any zoom.
type strokeStyle struct {
	color     color.Color
	width     float64
	halo      color.Color
	haloWidth float64
	fill      color.Color
}

// pointStyle is the resolved marker for one survey point.
type pointStyle struct {
	fill    color.Color
	outline color.Color
	radius  float64
}

// featureStroke resolves the stroke for a feature, honoring the stored
// style of legacy documents and overriding it for hover and selection.
func featureStroke(state objectState, style geom.Style) strokeStyle {
	width := style.Width
	if width <= 0 {
		width = 1.5
	}

	out := strokeStyle{
		color: colorutil.ParseHexOr(style.Stroke, colorutil.Ink),
		width: width,
	}
	if style.Fill != "" {
		out.fill = colorutil.ParseHexOr(style.Fill, color.NRGBA{})
	}

	switch state {
	case stateHovered:
		out.color = colorutil.Hover
		out.width = width + 1
	case stateSelected:
		out.color = colorutil.Selected
		out.width = width + 1
		out.halo = colorutil.Halo
		out.haloWidth = width + 6
	}
	return out
}

// pointMarker resolves the marker style for a survey point.
func pointMarker(state objectState) pointStyle {
	switch state {
	case stateHovered:
		return pointStyle{fill: colorutil.Hover, outline: colorutil.Ink, radius: 5}
	case stateSelected:
		return pointStyle{fill: colorutil.Selected, outline: colorutil.Ink, radius: 5.5}
	}
	return pointStyle{fill: colorutil.SurveyBlue, outline: colorutil.Ink, radius: 4}
}
