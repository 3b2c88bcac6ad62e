package lsp

import (
	"testing"

	protocol "github.com/tliron/glsp/protocol_3_16"

	"github.com/jsvensson/pptxpalette/internal/color"
)

func TestColorToLSP(t *testing.T) {
	tests := []struct {
		name  string
		input color.Color
		want  protocol.Color
	}{
		{"pure red", color.Color{R: 255}, protocol.Color{Red: 1.0, Alpha: 1.0}},
		{"pure blue", color.Color{B: 255}, protocol.Color{Blue: 1.0, Alpha: 1.0}},
		{"black", color.Color{}, protocol.Color{Alpha: 1.0}},
		{"white", color.Color{R: 255, G: 255, B: 255}, protocol.Color{Red: 1.0, Green: 1.0, Blue: 1.0, Alpha: 1.0}},
		{"mid gray", color.Color{R: 128, G: 128, B: 128}, protocol.Color{Red: float32(128) / 255.0, Green: float32(128) / 255.0, Blue: float32(128) / 255.0, Alpha: 1.0}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := colorToLSP(tt.input); got != tt.want {
				t.Errorf("colorToLSP() = %+v, want %+v", got, tt.want)
			}
		})
	}
}

func TestLSPToColorRoundTrip(t *testing.T) {
	for _, c := range []color.Color{{}, {R: 255, G: 255, B: 255}, {R: 0x44, G: 0x72, B: 0xC4}, {R: 1, G: 128, B: 254}} {
		if got := lspToColor(colorToLSP(c)); got != c {
			t.Errorf("round trip of %s = %s", c.Hex(), got.Hex())
		}
	}
	if got := lspToColor(protocol.Color{Red: -1, Green: 2, Blue: 0.5}); got != (color.Color{R: 0, G: 255, B: 128}) {
		t.Errorf("clamped = %+v", got)
	}
}

func TestDocumentColors(t *testing.T) {
	if got := documentColors(nil); got == nil || len(got) != 0 {
		t.Errorf("documentColors(nil) = %v, want empty slice", got)
	}

	result := mustAnalyze(t, sampleScript)
	infos := documentColors(result)
	if len(infos) != 4 {
		t.Fatalf("got %d colors, want 4", len(infos))
	}
	first := infos[0]
	if first.Range.Start != pos(1, 12) || first.Range.End != pos(1, 21) {
		t.Errorf("first range = %+v", first.Range)
	}
	if first.Color != colorToLSP(color.Color{R: 0x44, G: 0x72, B: 0xC4}) {
		t.Errorf("first color = %+v", first.Color)
	}
}

func TestColorPresentation(t *testing.T) {
	picked := colorToLSP(color.Color{R: 0x12, G: 0xAB, B: 0xEF})

	tests := []struct {
		name    string
		rng     protocol.Range
		want    int
		newText string
	}{
		{
			name:    "quoted hex literal",
			rng:     protocol.Range{Start: pos(1, 12), End: pos(1, 21)},
			want:    1,
			newText: `"#12ABEF"`,
		},
		{
			name:    "bare hash",
			rng:     protocol.Range{Start: pos(1, 13), End: pos(1, 20)},
			want:    1,
			newText: `#12ABEF`,
		},
		{
			name: "scheme reference",
			rng:  protocol.Range{Start: pos(3, 12), End: pos(3, 26)},
			want: 0,
		},
		{
			name: "function call",
			rng:  protocol.Range{Start: pos(2, 12), End: pos(2, 39)},
			want: 0,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := colorPresentation(sampleScript, &protocol.ColorPresentationParams{Color: picked, Range: tt.rng})
			if len(got) != tt.want {
				t.Fatalf("got %d presentations, want %d", len(got), tt.want)
			}
			if tt.want == 0 {
				return
			}
			if got[0].Label != "#12ABEF" {
				t.Errorf("label = %q", got[0].Label)
			}
			if got[0].TextEdit == nil || got[0].TextEdit.NewText != tt.newText || got[0].TextEdit.Range != tt.rng {
				t.Errorf("edit = %+v", got[0].TextEdit)
			}
		})
	}
}
