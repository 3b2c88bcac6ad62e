package color

import (
	"math"
	"testing"
)

func absDiffUint8(a, b uint8) uint8 {
	if a > b {
		return a - b
	}
	return b - a
}

func TestRGBToOKLCH_KnownColors(t *testing.T) {
	tests := []struct {
		name  string
		color Color
		wantL float64
		wantC float64
	}{
		{"black", Color{0, 0, 0}, 0.0, 0.0},
		{"white", Color{255, 255, 255}, 1.0, 0.0},
		{"red", Color{255, 0, 0}, 0.628, 0.258},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			l, c, _ := RGBToOKLCH(tt.color)
			if math.Abs(l-tt.wantL) > 0.01 {
				t.Errorf("L = %f, want %f", l, tt.wantL)
			}
			if math.Abs(c-tt.wantC) > 0.01 {
				t.Errorf("C = %f, want %f", c, tt.wantC)
			}
		})
	}
}

func TestRGBToOKLCH_Roundtrip(t *testing.T) {
	colors := []Color{
		{255, 0, 0},
		{0, 255, 0},
		{0, 0, 255},
		{128, 128, 128},
		{68, 114, 196},
		{237, 125, 49},
		{165, 165, 165},
	}

	for _, c := range colors {
		t.Run(c.Hex(), func(t *testing.T) {
			l, ch, h := RGBToOKLCH(c)
			got := OKLCHToRGB(l, ch, h)

			if absDiffUint8(got.R, c.R) > 1 {
				t.Errorf("R = %d, want %d", got.R, c.R)
			}
			if absDiffUint8(got.G, c.G) > 1 {
				t.Errorf("G = %d, want %d", got.G, c.G)
			}
			if absDiffUint8(got.B, c.B) > 1 {
				t.Errorf("B = %d, want %d", got.B, c.B)
			}
		})
	}
}

func TestStepLightness(t *testing.T) {
	gray := Color{165, 165, 165}

	lighter := StepLightness(gray, 0.85)
	darker := StepLightness(gray, 0.3)

	l1, _, _ := RGBToOKLCH(lighter)
	l2, _, _ := RGBToOKLCH(darker)
	if math.Abs(l1-0.85) > 0.02 {
		t.Errorf("lighter L = %f, want ~0.85", l1)
	}
	if math.Abs(l2-0.3) > 0.02 {
		t.Errorf("darker L = %f, want ~0.3", l2)
	}

	if got := StepLightness(gray, 1.5); got != (Color{255, 255, 255}) {
		t.Errorf("StepLightness above 1 = %v, want white", got)
	}
}
