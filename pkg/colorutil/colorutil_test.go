package colorutil

import (
	"image/color"
	"testing"
)

func TestParseHex(t *testing.T) {
	cases := []struct {
		in   string
		want color.NRGBA
	}{
		{"#1E568C", color.NRGBA{R: 0x1E, G: 0x56, B: 0x8C, A: 0xFF}},
		{"1e568c", color.NRGBA{R: 0x1E, G: 0x56, B: 0x8C, A: 0xFF}},
		{"#F00", color.NRGBA{R: 0xFF, G: 0x00, B: 0x00, A: 0xFF}},
		{"#11223344", color.NRGBA{R: 0x11, G: 0x22, B: 0x33, A: 0x44}},
	}
	for _, c := range cases {
		got, err := ParseHex(c.in)
		if err != nil {
			t.Errorf("ParseHex(%q): %v", c.in, err)
			continue
		}
		if got != c.want {
			t.Errorf("ParseHex(%q) = %+v, want %+v", c.in, got, c.want)
		}
	}
}

func TestParseHexRejectsGarbage(t *testing.T) {
	for _, in := range []string{"", "#12", "#GGGGGG", "not-a-color"} {
		if _, err := ParseHex(in); err == nil {
			t.Errorf("ParseHex(%q) accepted garbage", in)
		}
	}
}

func TestParseHexOrFallback(t *testing.T) {
	if got := ParseHexOr("", Ink); got != Ink {
		t.Errorf("empty input = %+v, want fallback", got)
	}
	if got := ParseHexOr("#zz0000", Hover); got != Hover {
		t.Errorf("bad input = %+v, want fallback", got)
	}
	if got := ParseHexOr("#FF0000", Ink); got != (color.NRGBA{R: 0xFF, A: 0xFF}) {
		t.Errorf("valid input = %+v", got)
	}
}
