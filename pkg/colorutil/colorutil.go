// Package colorutil provides shared color utilities for the drafting
// application.
package colorutil

import (
	"fmt"
	"image/color"
	"strings"
)

// Drafting palette shared by the canvas and the panels.
var (
	Ink         = color.NRGBA{R: 0x22, G: 0x28, B: 0x30, A: 0xFF}
	Paper       = color.NRGBA{R: 0xFA, G: 0xFA, B: 0xF7, A: 0xFF}
	SurveyBlue  = color.NRGBA{R: 0x1E, G: 0x56, B: 0x8C, A: 0xFF}
	Hover       = color.NRGBA{R: 0xE8, G: 0x71, B: 0x1A, A: 0xFF}
	Selected    = color.NRGBA{R: 0xC7, G: 0x92, B: 0x00, A: 0xFF}
	Halo        = color.NRGBA{R: 0xFF, G: 0xD5, B: 0x00, A: 0x66}
	Preview     = color.NRGBA{R: 0x6B, G: 0x7B, B: 0x8C, A: 0xFF}
	PreviewFill = color.NRGBA{R: 0x6B, G: 0x7B, B: 0x8C, A: 0x30}
)

// ParseHex parses "#RGB", "#RRGGBB" or "#RRGGBBAA" (leading '#'
// optional). Unparsable input returns an error so callers can fall back
// to a palette default.
func ParseHex(s string) (color.NRGBA, error) {
	s = strings.TrimPrefix(strings.TrimSpace(s), "#")

	var c color.NRGBA
	c.A = 0xFF
	switch len(s) {
	case 3:
		_, err := fmt.Sscanf(s, "%1x%1x%1x", &c.R, &c.G, &c.B)
		if err != nil {
			return color.NRGBA{}, fmt.Errorf("parse color %q: %w", s, err)
		}
		c.R *= 0x11
		c.G *= 0x11
		c.B *= 0x11
	case 6:
		_, err := fmt.Sscanf(s, "%02x%02x%02x", &c.R, &c.G, &c.B)
		if err != nil {
			return color.NRGBA{}, fmt.Errorf("parse color %q: %w", s, err)
		}
	case 8:
		_, err := fmt.Sscanf(s, "%02x%02x%02x%02x", &c.R, &c.G, &c.B, &c.A)
		if err != nil {
			return color.NRGBA{}, fmt.Errorf("parse color %q: %w", s, err)
		}
	default:
		return color.NRGBA{}, fmt.Errorf("parse color %q: bad length", s)
	}
	return c, nil
}

// ParseHexOr parses a hex color, substituting fallback when the input
// is empty or malformed.
func ParseHexOr(s string, fallback color.NRGBA) color.NRGBA {
	if s == "" {
		return fallback
	}
	c, err := ParseHex(s)
	if err != nil {
		return fallback
	}
	return c
}
