package colors

import (
	"image/color"
	"testing"
)

func TestFromHex(t *testing.T) {
	cases := []struct {
		hex     uint32
		r, g, b uint8
	}{
		{0x86cdfa, 0x86, 0xcd, 0xfa},
		{0xaaaaaa, 0xaa, 0xaa, 0xaa},
		{0xffffff, 0xff, 0xff, 0xff},
		{0x000000, 0, 0, 0},
	}
	for _, c := range cases {
		col := FromHex(c.hex)
		got := col.ToNRGBA()
		want := color.NRGBA{R: c.r, G: c.g, B: c.b, A: 0xff}
		if got != want {
			t.Errorf("FromHex(%06x) = %v, want %v", c.hex, got, want)
		}
		if col.Hex() != c.hex {
			t.Errorf("Hex() = %06x, want %06x", col.Hex(), c.hex)
		}
	}
}

func TestString(t *testing.T) {
	if s := FromHex(0x86cdfa).String(); s != "#86cdfa" {
		t.Errorf("String() = %q", s)
	}
}

func TestFromStandardColor(t *testing.T) {
	// half transparent red, premultiplied by the stdlib
	c := FromStandardColor(color.NRGBA{R: 255, A: 128})
	if c.R < 0.99 || c.G != 0 || c.A < 0.5 || c.A > 0.51 {
		t.Errorf("FromStandardColor = %+v", c)
	}
	if c := FromStandardColor(color.NRGBA{}); c != (Color4{}) {
		t.Errorf("transparent = %+v, want zero", c)
	}
}

func TestScaleKeepsAlpha(t *testing.T) {
	c := White().Scale(0.5)
	if c.R != 0.5 || c.A != 1 {
		t.Errorf("Scale = %+v", c)
	}
	if got := New(2, -1, 0.5, 1).Clamp01(); got != New(1, 0, 0.5, 1) {
		t.Errorf("Clamp01 = %+v", got)
	}
}
