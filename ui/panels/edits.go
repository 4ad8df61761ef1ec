// Package panels provides the floating property editor shown next to a
// selected object on the drafting canvas.
package panels

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/Nukpro/DeedRecreator/internal/survey"
)

// PointEdit is a validated point update.
type PointEdit struct {
	X     float64
	Y     float64
	Layer string
}

// BearingEdit is a validated bearing-driven segment update. Bearing is
// decimal degrees within the quadrant, already converted from DMS.
type BearingEdit struct {
	Quadrant     survey.Quadrant
	Bearing      float64
	Distance     float64
	BlockedPoint string
}

// EndpointEdit is a validated endpoint-driven segment update.
type EndpointEdit struct {
	StartX float64
	StartY float64
	EndX   float64
	EndY   float64
	Layer  string
}

func parseCoord(field, text string) (float64, error) {
	v, err := strconv.ParseFloat(strings.TrimSpace(text), 64)
	if err != nil {
		return 0, fmt.Errorf("%s must be a number", field)
	}
	return v, nil
}

// parsePointEdit validates the point form fields.
func parsePointEdit(xText, yText, layer string) (PointEdit, error) {
	x, err := parseCoord("X", xText)
	if err != nil {
		return PointEdit{}, err
	}
	y, err := parseCoord("Y", yText)
	if err != nil {
		return PointEdit{}, err
	}
	return PointEdit{X: x, Y: y, Layer: strings.TrimSpace(layer)}, nil
}

// parseBearingEdit validates the bearings block. The bearing entry
// accepts DMS ("36*52'11.63\"") or plain decimal degrees; either way the
// result must stay within [0, 90].
func parseBearingEdit(quadrant, bearingText, distanceText, blockedPoint string) (BearingEdit, error) {
	q := survey.Quadrant(strings.ToUpper(strings.TrimSpace(quadrant)))
	if !q.Valid() {
		return BearingEdit{}, fmt.Errorf("quadrant must be NE, SE, SW or NW")
	}

	bearingText = strings.TrimSpace(bearingText)
	bearing, err := survey.DMSToDecimal(bearingText)
	if err != nil {
		bearing, err = strconv.ParseFloat(bearingText, 64)
		if err != nil {
			return BearingEdit{}, fmt.Errorf("bearing must be DMS or decimal degrees")
		}
	}
	if bearing < 0 || bearing > 90 {
		return BearingEdit{}, fmt.Errorf("bearing must be between 0 and 90 degrees")
	}

	distance, err := strconv.ParseFloat(strings.TrimSpace(distanceText), 64)
	if err != nil {
		return BearingEdit{}, fmt.Errorf("distance must be a number")
	}
	if distance <= 0 {
		return BearingEdit{}, fmt.Errorf("distance must be greater than 0")
	}

	if blockedPoint == "" {
		blockedPoint = "start_pt"
	}
	if blockedPoint != "start_pt" && blockedPoint != "end_pt" {
		return BearingEdit{}, fmt.Errorf("blocked point must be start_pt or end_pt")
	}

	return BearingEdit{Quadrant: q, Bearing: bearing, Distance: distance, BlockedPoint: blockedPoint}, nil
}

// parseEndpointEdit validates the points block.
func parseEndpointEdit(startX, startY, endX, endY, layer string) (EndpointEdit, error) {
	var e EndpointEdit
	var err error
	if e.StartX, err = parseCoord("start X", startX); err != nil {
		return EndpointEdit{}, err
	}
	if e.StartY, err = parseCoord("start Y", startY); err != nil {
		return EndpointEdit{}, err
	}
	if e.EndX, err = parseCoord("end X", endX); err != nil {
		return EndpointEdit{}, err
	}
	if e.EndY, err = parseCoord("end Y", endY); err != nil {
		return EndpointEdit{}, err
	}
	e.Layer = strings.TrimSpace(layer)
	return e, nil
}
