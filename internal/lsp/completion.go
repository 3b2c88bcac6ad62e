package lsp

import (
	"regexp"
	"strings"

	"github.com/tliron/glsp"
	protocol "github.com/tliron/glsp/protocol_3_16"

	"github.com/jsvensson/pptxpalette/internal/script"
	"github.com/jsvensson/pptxpalette/internal/theme"
)

// blockContext represents the kind of block the cursor is in.
type blockContext int

const (
	contextRoot   blockContext = iota
	contextScheme              // directly inside a scheme block
	contextOther
)

// scope is the block enclosing a cursor, found by scanning braces.
type scope struct {
	context blockContext
	// body is the text from the outermost enclosing brace to the cursor.
	body string
}

// scopeAt scans content up to offset. Braces in strings and comments are
// not skipped.
func scopeAt(content string, offset int) scope {
	text := content[:min(offset, len(content))]
	depth, open := 0, -1
	for i := 0; i < len(text); i++ {
		switch text[i] {
		case '{':
			if depth == 0 {
				open = i
			}
			depth++
		case '}':
			if depth > 0 {
				depth--
			}
		}
	}
	if depth == 0 {
		return scope{context: contextRoot}
	}

	header := text[strings.LastIndexByte(text[:open], '\n')+1 : open]
	fields := strings.Fields(header)
	sc := scope{context: contextOther, body: text[open+1:]}
	if depth == 1 && len(fields) > 0 && fields[0] == script.BlockType {
		sc.context = contextScheme
	}
	return sc
}

var assignmentLine = regexp.MustCompile(`(?m)^\s*([A-Za-z_][A-Za-z0-9_]*)\s*=`)

// assigned returns the attribute names already assigned in the scope.
func (sc scope) assigned() map[string]bool {
	names := make(map[string]bool)
	for _, m := range assignmentLine.FindAllStringSubmatch(sc.body, -1) {
		names[m[1]] = true
	}
	return names
}

// complete produces completion items for the cursor position.
func complete(result *AnalysisResult, content string, pos protocol.Position) []protocol.CompletionItem {
	offset := offsetOf(content, pos)
	lineStart := strings.LastIndexByte(content[:offset], '\n') + 1
	textBeforeCursor := content[lineStart:offset]

	if items := trySchemeCompletion(result, pos, textBeforeCursor); items != nil {
		return items
	}
	if isValuePosition(textBeforeCursor) {
		return valueCompletions()
	}

	sc := scopeAt(content, offset)
	switch sc.context {
	case contextScheme:
		return slotCompletions(sc.assigned())
	case contextRoot:
		return topLevelCompletions()
	}
	return nil
}

// trySchemeCompletion offers every slot kind after "scheme.". Kinds with a
// value known earlier in the block show it; the rest come from the deck.
func trySchemeCompletion(result *AnalysisResult, pos protocol.Position, textBeforeCursor string) []protocol.CompletionItem {
	prefix := script.SchemeVariable + "."
	idx := strings.LastIndex(textBeforeCursor, prefix)
	if idx == -1 {
		return nil
	}
	if strings.ContainsAny(textBeforeCursor[idx+len(prefix):], " .,()") {
		return nil
	}
	if idx > 0 && isIdentChar(textBeforeCursor[idx-1]) {
		return nil
	}

	block, _ := result.blockAt(pos)
	kind := protocol.CompletionItemKindColor

	items := make([]protocol.CompletionItem, 0, len(theme.Kinds))
	for _, name := range theme.Kinds {
		detail := theme.Label(name) + " (from deck)"
		if block != nil {
			if c, ok := block.Values[name]; ok {
				detail = theme.Label(name) + " " + c.Hex()
			}
		}
		items = append(items, protocol.CompletionItem{
			Label:  name,
			Kind:   &kind,
			Detail: strPtr(detail),
		})
	}
	return items
}

// isValuePosition returns true if the text before the cursor indicates we are
// at a value position (after an "=" sign with nothing meaningful following it).
func isValuePosition(textBeforeCursor string) bool {
	trimmed := strings.TrimSpace(textBeforeCursor)
	eqIdx := strings.LastIndex(trimmed, "=")
	if eqIdx == -1 {
		return false
	}
	afterEq := strings.TrimSpace(trimmed[eqIdx+1:])
	return afterEq == ""
}

// valueCompletions returns completion items for a value position, including
// function snippets and a scheme reference trigger.
func valueCompletions() []protocol.CompletionItem {
	snippetFormat := protocol.InsertTextFormatSnippet

	brightenSnippet := "brighten(${1:color}, ${2:0.1})"
	darkenSnippet := "darken(${1:color}, ${2:0.1})"
	lightnessSnippet := "lightness(${1:color}, ${2:0.5})"
	hexSnippet := "\"#${1:000000}\""
	schemeSnippet := script.SchemeVariable + "."

	return []protocol.CompletionItem{
		{
			Label:            "brighten",
			Kind:             completionKindPtr(protocol.CompletionItemKindFunction),
			Detail:           strPtr("brighten(color, percentage)"),
			InsertText:       &brightenSnippet,
			InsertTextFormat: &snippetFormat,
		},
		{
			Label:            "darken",
			Kind:             completionKindPtr(protocol.CompletionItemKindFunction),
			Detail:           strPtr("darken(color, percentage)"),
			InsertText:       &darkenSnippet,
			InsertTextFormat: &snippetFormat,
		},
		{
			Label:            "lightness",
			Kind:             completionKindPtr(protocol.CompletionItemKindFunction),
			Detail:           strPtr("lightness(color, lightness)"),
			InsertText:       &lightnessSnippet,
			InsertTextFormat: &snippetFormat,
		},
		{
			Label:            "hex color",
			Kind:             completionKindPtr(protocol.CompletionItemKindColor),
			InsertText:       &hexSnippet,
			InsertTextFormat: &snippetFormat,
		},
		{
			Label:      script.SchemeVariable,
			Kind:       completionKindPtr(protocol.CompletionItemKindVariable),
			Detail:     strPtr("current slot values"),
			InsertText: &schemeSnippet,
		},
	}
}

// slotCompletions offers the slot kinds not yet assigned.
func slotCompletions(assigned map[string]bool) []protocol.CompletionItem {
	var items []protocol.CompletionItem
	for _, name := range theme.Kinds {
		if assigned[name] {
			continue
		}
		items = append(items, protocol.CompletionItem{
			Label:  name,
			Kind:   completionKindPtr(protocol.CompletionItemKindProperty),
			Detail: strPtr(theme.Label(name)),
		})
	}
	return items
}

// topLevelCompletions offers a labeled and an unlabeled scheme block.
func topLevelCompletions() []protocol.CompletionItem {
	snippetFormat := protocol.InsertTextFormatSnippet
	kind := protocol.CompletionItemKindSnippet

	labeled := script.BlockType + " \"${1:Office}\" {\n  $0\n}"
	every := script.BlockType + " {\n  $0\n}"

	return []protocol.CompletionItem{
		{
			Label:            script.BlockType,
			Kind:             &kind,
			Detail:           strPtr("edits to one named color scheme"),
			InsertText:       &labeled,
			InsertTextFormat: &snippetFormat,
		},
		{
			Label:            script.BlockType + " (all)",
			Kind:             &kind,
			Detail:           strPtr("edits to every color scheme"),
			InsertText:       &every,
			InsertTextFormat: &snippetFormat,
		},
	}
}

func isIdentChar(b byte) bool {
	return b == '_' || b == '.' || ('0' <= b && b <= '9') || ('a' <= b|0x20 && b|0x20 <= 'z')
}

// completionKindPtr returns a pointer to a CompletionItemKind.
func completionKindPtr(k protocol.CompletionItemKind) *protocol.CompletionItemKind {
	return &k
}

// textDocumentCompletion is the LSP handler for textDocument/completion requests.
func (s *Server) textDocumentCompletion(_ *glsp.Context, params *protocol.CompletionParams) (any, error) {
	uri := string(params.TextDocument.URI)

	content, ok := s.docs.Get(uri)
	if !ok {
		return nil, nil
	}

	return complete(s.getResult(uri), content, params.Position), nil
}
