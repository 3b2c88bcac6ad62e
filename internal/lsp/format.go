package lsp

import (
	"strings"

	"github.com/tliron/glsp"
	protocol "github.com/tliron/glsp/protocol_3_16"

	"github.com/jsvensson/pptxpalette/internal/script"
)

// formatEdits returns a single whole-document edit, or none when content is
// already formatted. Formatting works on partial scripts, so it is safe while
// the user is still typing.
func formatEdits(content string) []protocol.TextEdit {
	formatted := script.Format(content)
	if formatted == content {
		return []protocol.TextEdit{}
	}

	lines := strings.Split(content, "\n")
	last := lines[len(lines)-1]
	return []protocol.TextEdit{{
		Range: protocol.Range{
			Start: protocol.Position{Line: 0, Character: 0},
			End:   protocol.Position{Line: uint32(len(lines) - 1), Character: uint32(len(last))},
		},
		NewText: formatted,
	}}
}

// textDocumentFormatting handles textDocument/formatting requests.
func (s *Server) textDocumentFormatting(_ *glsp.Context, params *protocol.DocumentFormattingParams) ([]protocol.TextEdit, error) {
	content, ok := s.docs.Get(string(params.TextDocument.URI))
	if !ok {
		return nil, nil
	}
	return formatEdits(content), nil
}
