// Package survey provides angular conversions used in land-survey drafting:
// azimuths (decimal degrees from north, clockwise), surveyor's bearings
// (quadrant plus 0-90 degree angle) and DMS (degrees-minutes-seconds)
// display strings.
package survey

import (
	"errors"
	"fmt"
	"math"
	"regexp"
	"strconv"
)

// ErrInvalidFormat is returned when an angle string cannot be parsed or
// its components are out of range.
var ErrInvalidFormat = errors.New("invalid angle format")

// Quadrant identifies which compass quarter a bearing is measured in.
type Quadrant string

const (
	QuadrantNE Quadrant = "NE"
	QuadrantNW Quadrant = "NW"
	QuadrantSE Quadrant = "SE"
	QuadrantSW Quadrant = "SW"
)

// Valid reports whether q is one of the four compass quadrants.
func (q Quadrant) Valid() bool {
	switch q {
	case QuadrantNE, QuadrantNW, QuadrantSE, QuadrantSW:
		return true
	}
	return false
}

// AzimuthToBearing converts an azimuth (0-360 degrees, north=0, clockwise)
// to a surveyor's bearing. Exact multiples of 90 map to the lower quadrant
// boundary: 90 is SE 90, 180 is SW 0, 270 is NW 90.
func AzimuthToBearing(azimuth float64) (Quadrant, float64) {
	azimuth = math.Mod(azimuth, 360)
	if azimuth < 0 {
		azimuth += 360
	}

	switch {
	case azimuth < 90:
		return QuadrantNE, azimuth
	case azimuth < 180:
		return QuadrantSE, 180 - azimuth
	case azimuth < 270:
		return QuadrantSW, azimuth - 180
	default:
		return QuadrantNW, 360 - azimuth
	}
}

// BearingToAzimuth converts a surveyor's bearing back to an azimuth in
// [0,360). It is the total inverse of AzimuthToBearing for every valid
// quadrant and bearing in [0,90].
func BearingToAzimuth(quadrant Quadrant, bearing float64) (float64, error) {
	if bearing < 0 || bearing > 90 {
		return 0, fmt.Errorf("bearing %v out of range [0,90]: %w", bearing, ErrInvalidFormat)
	}

	var azimuth float64
	switch quadrant {
	case QuadrantNE:
		azimuth = bearing
	case QuadrantSE:
		azimuth = 180 - bearing
	case QuadrantSW:
		azimuth = 180 + bearing
	case QuadrantNW:
		azimuth = 360 - bearing
	default:
		return 0, fmt.Errorf("unknown quadrant %q: %w", string(quadrant), ErrInvalidFormat)
	}

	return math.Mod(azimuth, 360), nil
}

// QuadrantFromDelta picks the quadrant for a world-space displacement.
// Boundary ties (dx or dy exactly zero) resolve north: NE or NW.
func QuadrantFromDelta(dx, dy float64) Quadrant {
	switch {
	case dx >= 0 && dy >= 0:
		return QuadrantNE
	case dx < 0 && dy >= 0:
		return QuadrantNW
	case dx < 0 && dy < 0:
		return QuadrantSW
	default:
		return QuadrantSE
	}
}

// AzimuthFromDelta computes the azimuth of a displacement vector.
// atan2 measures from east counter-clockwise; azimuths run from north
// clockwise, hence (90 - angle) mod 360.
func AzimuthFromDelta(dx, dy float64) float64 {
	angle := math.Atan2(dy, dx) * 180 / math.Pi
	azimuth := math.Mod(90-angle, 360)
	if azimuth < 0 {
		azimuth += 360
	}
	return azimuth
}

// Distance returns the Euclidean length of a displacement.
func Distance(dx, dy float64) float64 {
	return math.Sqrt(dx*dx + dy*dy)
}

// RoundDisplay rounds a value to the 4 decimal places used for distance
// display. Internal computation keeps full precision.
func RoundDisplay(v float64) float64 {
	return math.Round(v*10000) / 10000
}

// DecimalToDMS formats decimal degrees in [0,90] as a DMS string of the
// form `36*52'12.00"`. Minutes are zero-padded to 2 digits and seconds
// to 5 characters with 2 decimals. Second rounding carries into minutes
// and degrees so `60.00"` never appears.
func DecimalToDMS(decimal float64) string {
	degrees := int(decimal)
	fractional := decimal - float64(degrees)
	minutes := int(fractional * 60)
	seconds := (fractional*60 - float64(minutes)) * 60

	// Round to display precision before formatting so the carry is exact.
	seconds = math.Round(seconds*100) / 100
	if seconds >= 60 {
		seconds -= 60
		minutes++
	}
	if minutes >= 60 {
		minutes -= 60
		degrees++
	}

	return fmt.Sprintf("%d*%02d'%05.2f\"", degrees, minutes, seconds)
}

// dmsPattern accepts `*` or `°` for degrees, `'` or `′` for minutes and
// `"` or `″` for seconds; the second mark is optional.
var dmsPattern = regexp.MustCompile(`^\s*(\d{1,3})\s*[*°]\s*(\d{1,2})\s*['′]\s*(\d{1,2}(?:\.\d+)?)\s*["″]?\s*$`)

// DMSToDecimal parses a DMS string into decimal degrees. Strings that do
// not match the DMS pattern fall back to plain decimal parsing. Degrees
// above 90, minutes >= 60 or seconds >= 60 fail with ErrInvalidFormat.
func DMSToDecimal(s string) (float64, error) {
	m := dmsPattern.FindStringSubmatch(s)
	if m == nil {
		v, err := strconv.ParseFloat(s, 64)
		if err != nil {
			return 0, fmt.Errorf("%q: %w", s, ErrInvalidFormat)
		}
		return v, nil
	}

	degrees, _ := strconv.ParseFloat(m[1], 64)
	minutes, _ := strconv.ParseFloat(m[2], 64)
	seconds, _ := strconv.ParseFloat(m[3], 64)

	if degrees > 90 {
		return 0, fmt.Errorf("degrees %v out of range: %w", degrees, ErrInvalidFormat)
	}
	if minutes >= 60 {
		return 0, fmt.Errorf("minutes %v out of range: %w", minutes, ErrInvalidFormat)
	}
	if seconds >= 60 {
		return 0, fmt.Errorf("seconds %v out of range: %w", seconds, ErrInvalidFormat)
	}

	return degrees + minutes/60 + seconds/3600, nil
}
