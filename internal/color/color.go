package color

import (
	"errors"
	"fmt"
	"strings"
)

// ErrInvalidHex is returned when a string is not a 6-digit RGB hex value.
var ErrInvalidHex = errors.New("invalid hex color")

// Color represents an RGB color. The R, G, B fields are the source of truth;
// every textual form is derived from them.
type Color struct {
	R, G, B uint8
}

// ParseHex parses "#4472C4", "4472c4" and friends into a Color.
func ParseHex(s string) (Color, error) {
	bare := strings.TrimPrefix(s, "#")
	if len(bare) != 6 {
		return Color{}, fmt.Errorf("%w %q: must be 6 hex digits", ErrInvalidHex, s)
	}
	var rgb [3]uint8
	for i := range rgb {
		hi, ok1 := hexNibble(bare[2*i])
		lo, ok2 := hexNibble(bare[2*i+1])
		if !ok1 || !ok2 {
			return Color{}, fmt.Errorf("%w %q: non-hex character", ErrInvalidHex, s)
		}
		rgb[i] = hi<<4 | lo
	}
	return Color{R: rgb[0], G: rgb[1], B: rgb[2]}, nil
}

func hexNibble(c byte) (uint8, bool) {
	switch {
	case c >= '0' && c <= '9':
		return c - '0', true
	case c >= 'a' && c <= 'f':
		return c - 'a' + 10, true
	case c >= 'A' && c <= 'F':
		return c - 'A' + 10, true
	}
	return 0, false
}

// Hex returns the color with a leading #, e.g. "#4472c4". This is the form
// browser color inputs produce and accept.
func (c Color) Hex() string {
	return fmt.Sprintf("#%02x%02x%02x", c.R, c.G, c.B)
}

// HexBare returns the color without a leading #, e.g. "4472c4".
func (c Color) HexBare() string {
	return fmt.Sprintf("%02x%02x%02x", c.R, c.G, c.B)
}

// OOXML returns the color the way DrawingML stores it in a val attribute:
// six upper-case digits without a marker, e.g. "4472C4".
func (c Color) OOXML() string {
	return fmt.Sprintf("%02X%02X%02X", c.R, c.G, c.B)
}

// RGB returns the color as an rgb() string, e.g. "rgb(68, 114, 196)".
func (c Color) RGB() string {
	return fmt.Sprintf("rgb(%d, %d, %d)", c.R, c.G, c.B)
}
