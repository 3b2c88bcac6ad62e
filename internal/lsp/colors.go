package lsp

import (
	"strings"

	"github.com/tliron/glsp"
	protocol "github.com/tliron/glsp/protocol_3_16"

	"github.com/jsvensson/pptxpalette/internal/color"
)

// colorToLSP maps 8-bit channels onto the protocol's 0..1 floats.
func colorToLSP(c color.Color) protocol.Color {
	unit := func(v uint8) float32 { return float32(v) / 255 }
	return protocol.Color{Red: unit(c.R), Green: unit(c.G), Blue: unit(c.B), Alpha: 1}
}

// lspToColor is the inverse of colorToLSP, rounding and clamping each channel.
func lspToColor(c protocol.Color) color.Color {
	channel := func(v float32) uint8 {
		return uint8(min(max(v, 0), 1)*255 + 0.5)
	}
	return color.Color{R: channel(c.Red), G: channel(c.Green), B: channel(c.Blue)}
}

func documentColors(result *AnalysisResult) []protocol.ColorInformation {
	infos := []protocol.ColorInformation{}
	if result == nil {
		return infos
	}
	for _, cl := range result.Colors {
		infos = append(infos, protocol.ColorInformation{Range: cl.Range, Color: colorToLSP(cl.Color)})
	}
	return infos
}

// colorPresentation offers a replacement only when the range holds a color
// literal, quoted or not. The new value uses the upper-case form themes store.
// References and function calls compute their color and are never rewritten.
func colorPresentation(content string, params *protocol.ColorPresentationParams) []protocol.ColorPresentation {
	text := extractText(content, params.Range)
	quoted := len(text) >= 2 && strings.HasPrefix(text, `"`) && strings.HasSuffix(text, `"`)
	literal := text
	if quoted {
		literal = text[1 : len(text)-1]
	}
	if !strings.HasPrefix(literal, "#") {
		return []protocol.ColorPresentation{}
	}
	if _, err := color.ParseHex(literal); err != nil {
		return []protocol.ColorPresentation{}
	}

	label := "#" + lspToColor(params.Color).OOXML()
	newText := label
	if quoted {
		newText = `"` + label + `"`
	}
	return []protocol.ColorPresentation{{
		Label:    label,
		TextEdit: &protocol.TextEdit{Range: params.Range, NewText: newText},
	}}
}

// textDocumentColor handles textDocument/documentColor requests.
func (s *Server) textDocumentColor(_ *glsp.Context, params *protocol.DocumentColorParams) ([]protocol.ColorInformation, error) {
	return documentColors(s.getResult(string(params.TextDocument.URI))), nil
}

// textDocumentColorPresentation handles textDocument/colorPresentation requests.
func (s *Server) textDocumentColorPresentation(_ *glsp.Context, params *protocol.ColorPresentationParams) ([]protocol.ColorPresentation, error) {
	content, ok := s.docs.Get(string(params.TextDocument.URI))
	if !ok {
		return []protocol.ColorPresentation{}, nil
	}
	return colorPresentation(content, params), nil
}
