package color

import "math"

// RGBToOKLCH converts an sRGB Color to OKLCH: lightness in [0, 1], chroma in
// [0, ~0.37] and hue in degrees [0, 360).
func RGBToOKLCH(c Color) (l, chroma, hue float64) {
	lab := linearToOKLab(
		decodeGamma(float64(c.R)/255.0),
		decodeGamma(float64(c.G)/255.0),
		decodeGamma(float64(c.B)/255.0),
	)

	chroma = math.Hypot(lab.a, lab.b)
	hue = math.Atan2(lab.b, lab.a) * 180.0 / math.Pi
	if hue < 0 {
		hue += 360.0
	}
	return lab.l, chroma, hue
}

// OKLCHToRGB converts OKLCH components back to sRGB, clamping out-of-gamut
// channels.
func OKLCHToRGB(l, chroma, hue float64) Color {
	rad := hue * math.Pi / 180.0
	r, g, b := oklab{l: l, a: chroma * math.Cos(rad), b: chroma * math.Sin(rad)}.linear()

	channel := func(v float64) uint8 {
		return uint8(math.Round(encodeGamma(clamp01(v)) * 255.0))
	}
	return Color{R: channel(r), G: channel(g), B: channel(b)}
}

// StepLightness returns c with the given absolute OKLCH lightness, keeping
// its hue and chroma.
func StepLightness(c Color, lightness float64) Color {
	_, chroma, hue := RGBToOKLCH(c)
	return OKLCHToRGB(clamp01(lightness), chroma, hue)
}

type oklab struct {
	l, a, b float64
}

func linearToOKLab(r, g, b float64) oklab {
	lp := math.Cbrt(0.4122214708*r + 0.5363325363*g + 0.0514459929*b)
	mp := math.Cbrt(0.2119034982*r + 0.6806995451*g + 0.1073969566*b)
	sp := math.Cbrt(0.0883024619*r + 0.2817188376*g + 0.6299787005*b)

	return oklab{
		l: 0.2104542553*lp + 0.7936177850*mp - 0.0040720468*sp,
		a: 1.9779984951*lp - 2.4285922050*mp + 0.4505937099*sp,
		b: 0.0259040371*lp + 0.7827717662*mp - 0.8086757660*sp,
	}
}

func (o oklab) linear() (r, g, b float64) {
	lp := o.l + 0.3963377774*o.a + 0.2158037573*o.b
	mp := o.l - 0.1055613458*o.a - 0.0638541728*o.b
	sp := o.l - 0.0894841775*o.a - 1.2914855480*o.b

	l, m, s := lp*lp*lp, mp*mp*mp, sp*sp*sp

	r = 4.0767416621*l - 3.3077115913*m + 0.2309699292*s
	g = -1.2684380046*l + 2.6097574011*m - 0.3413193965*s
	b = -0.0041960863*l - 0.7034186147*m + 1.7076147010*s
	return r, g, b
}

func decodeGamma(v float64) float64 {
	if v <= 0.04045 {
		return v / 12.92
	}
	return math.Pow((v+0.055)/1.055, 2.4)
}

func encodeGamma(v float64) float64 {
	if v <= 0.0031308 {
		return v * 12.92
	}
	return 1.055*math.Pow(v, 1.0/2.4) - 0.055
}

func clamp01(v float64) float64 {
	return math.Max(0, math.Min(1, v))
}
