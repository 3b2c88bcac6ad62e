package lsp

import (
	"fmt"
	"strings"

	"github.com/tliron/glsp"
	protocol "github.com/tliron/glsp/protocol_3_16"

	"github.com/jsvensson/pptxpalette/internal/theme"
)

// posInRange reports whether pos lies in r. The end is exclusive.
func posInRange(pos protocol.Position, r protocol.Range) bool {
	return !before(pos, r.Start) && before(pos, r.End)
}

// offsetOf converts pos to a byte offset into content. Positions past the
// end of a line or of the document are clamped.
func offsetOf(content string, pos protocol.Position) int {
	off := 0
	for line := protocol.UInteger(0); line < pos.Line; line++ {
		nl := strings.IndexByte(content[off:], '\n')
		if nl < 0 {
			return len(content)
		}
		off += nl + 1
	}
	lineEnd := strings.IndexByte(content[off:], '\n')
	if lineEnd < 0 {
		lineEnd = len(content) - off
	}
	return off + min(int(pos.Character), lineEnd)
}

// extractText returns the source text covered by r.
func extractText(content string, r protocol.Range) string {
	start, end := offsetOf(content, r.Start), offsetOf(content, r.End)
	if start >= end {
		return ""
	}
	return content[start:end]
}

// hover produces a Hover response for the color under the cursor: the label
// of the slot being assigned, the resolved hex and its RGB form. References
// also show their source text.
func hover(result *AnalysisResult, content string, pos protocol.Position) *protocol.Hover {
	if result == nil {
		return nil
	}

	for _, cl := range result.Colors {
		if !posInRange(pos, cl.Range) {
			continue
		}

		title := fmt.Sprintf("**%s** (`%s`)", theme.Label(cl.Kind), cl.Kind)
		if cl.IsRef {
			title += " = `" + extractText(content, cl.Range) + "`"
		}
		md := fmt.Sprintf("%s\n\n`%s` \u00b7 `%s`", title, cl.Color.Hex(), cl.Color.RGB())

		return &protocol.Hover{
			Contents: protocol.MarkupContent{
				Kind:  protocol.MarkupKindMarkdown,
				Value: md,
			},
			Range: &cl.Range,
		}
	}

	return nil
}

// textDocumentHover handles textDocument/hover requests.
func (s *Server) textDocumentHover(_ *glsp.Context, params *protocol.HoverParams) (*protocol.Hover, error) {
	uri := string(params.TextDocument.URI)

	result := s.getResult(uri)
	if result == nil {
		return nil, nil
	}

	content, ok := s.docs.Get(uri)
	if !ok {
		return nil, nil
	}

	return hover(result, content, params.Position), nil
}
