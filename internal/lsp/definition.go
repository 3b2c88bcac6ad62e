package lsp

import (
	"regexp"
	"strings"

	"github.com/tliron/glsp"
	protocol "github.com/tliron/glsp/protocol_3_16"

	"github.com/jsvensson/pptxpalette/internal/script"
)

var slotRef = regexp.MustCompile(`\b` + script.SchemeVariable + `\.(\w+)`)

// slotRefAtCursor returns the slot kind of the scheme.<kind> reference under
// the cursor, or "" if the cursor is not on one.
func slotRefAtCursor(line string, character uint32) string {
	col := int(character)
	for _, m := range slotRef.FindAllStringSubmatchIndex(line, -1) {
		if m[0] > 0 && line[m[0]-1] == '.' {
			continue
		}
		if m[0] <= col && col < m[1] {
			return line[m[2]:m[3]]
		}
	}
	return ""
}

// definition returns the assignment a scheme.<kind> reference resolves to
// within the enclosing block. References to slots the block does not assign
// come from the deck and have no definition in the script.
func definition(result *AnalysisResult, content string, uri string, pos protocol.Position) *protocol.Location {
	block, ok := result.blockAt(pos)
	if !ok {
		return nil
	}

	lines := strings.Split(content, "\n")
	lineIdx := int(pos.Line)
	if lineIdx >= len(lines) {
		return nil
	}

	kind := slotRefAtCursor(lines[lineIdx], pos.Character)
	if kind == "" {
		return nil
	}

	symRange, ok := block.Symbols[kind]
	if !ok || !before(symRange.Start, pos) {
		return nil
	}

	return &protocol.Location{
		URI:   protocol.DocumentUri(uri),
		Range: symRange,
	}
}

func before(a, b protocol.Position) bool {
	return a.Line < b.Line || (a.Line == b.Line && a.Character < b.Character)
}

// textDocumentDefinition handles textDocument/definition requests.
func (s *Server) textDocumentDefinition(_ *glsp.Context, params *protocol.DefinitionParams) (any, error) {
	uri := string(params.TextDocument.URI)

	result := s.getResult(uri)
	if result == nil {
		return nil, nil
	}

	content, ok := s.docs.Get(uri)
	if !ok {
		return nil, nil
	}

	return definition(result, content, uri, params.Position), nil
}
