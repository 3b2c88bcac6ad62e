package lsp

import (
	"slices"

	"github.com/hashicorp/hcl/v2"
	"github.com/hashicorp/hcl/v2/hclsyntax"
	"github.com/tliron/glsp"
	protocol "github.com/tliron/glsp/protocol_3_16"
	"github.com/zclconf/go-cty/cty"

	"github.com/jsvensson/pptxpalette/internal/script"
)

// Semantic token types, by legend index.
var semanticTokenTypes = []string{
	"keyword",   // 0: the scheme block type
	"property",  // 1: slot names
	"variable",  // 2: unused, kept so indices stay stable
	"namespace", // 3: the "scheme" reference root
	"string",    // 4: hex color literals and scheme labels
	"function",  // 5: brighten(), darken(), lightness()
	"number",    // 6: numeric literals
	"comment",   // 7: comments
}

var semanticTokenModifiers = []string{
	"declaration", // bit 0
}

const modDeclaration = 1 << 0

var tokenTypeIndices = func() map[string]uint32 {
	m := make(map[string]uint32, len(semanticTokenTypes))
	for i, t := range semanticTokenTypes {
		m[t] = uint32(i)
	}
	return m
}()

// SemanticToken is one token in absolute, 0-based coordinates.
type SemanticToken struct {
	Line      uint32
	StartChar uint32
	Length    uint32
	Type      uint32
	Modifiers uint32
}

// encodeTokens sorts tokens by position and emits the relative five-integer
// form the protocol uses.
func encodeTokens(tokens []SemanticToken) []uint32 {
	slices.SortFunc(tokens, func(a, b SemanticToken) int {
		if a.Line != b.Line {
			return int(a.Line) - int(b.Line)
		}
		return int(a.StartChar) - int(b.StartChar)
	})

	data := make([]uint32, 0, len(tokens)*5)
	var prev SemanticToken
	for _, tok := range tokens {
		start := tok.StartChar
		if tok.Line == prev.Line {
			start -= prev.StartChar
		}
		data = append(data, tok.Line-prev.Line, start, tok.Length, tok.Type, tok.Modifiers)
		prev = tok
	}
	return data
}

// tokenCollector gathers tokens while walking a syntax tree.
type tokenCollector []SemanticToken

// add records a single-line token covering rng.
func (c *tokenCollector) add(rng hcl.Range, typ string, mods uint32) {
	if rng.Start.Line != rng.End.Line || rng.End.Column <= rng.Start.Column {
		return
	}
	*c = append(*c, SemanticToken{
		Line:      uint32(rng.Start.Line - 1),
		StartChar: uint32(rng.Start.Column - 1),
		Length:    uint32(rng.End.Column - rng.Start.Column),
		Type:      tokenTypeIndices[typ],
		Modifiers: mods,
	})
}

func (c *tokenCollector) visit(node hclsyntax.Node) hcl.Diagnostics {
	switch n := node.(type) {
	case *hclsyntax.Block:
		c.add(n.TypeRange, "keyword", 0)
		for _, lr := range n.LabelRanges {
			c.add(lr, "string", 0)
		}
	case *hclsyntax.Attribute:
		c.add(n.NameRange, "property", modDeclaration)
	case *hclsyntax.FunctionCallExpr:
		c.add(n.NameRange, "function", 0)
	case *hclsyntax.ScopeTraversalExpr:
		c.traversal(n.Traversal)
	case *hclsyntax.TemplateExpr:
		// A quoted string is a template with one literal part.
		if len(n.Parts) == 1 {
			if lit, ok := n.Parts[0].(*hclsyntax.LiteralValueExpr); ok && lit.Val.Type() == cty.String {
				c.add(n.SrcRange, "string", 0)
			}
		}
	case *hclsyntax.LiteralValueExpr:
		if n.Val.Type() == cty.Number {
			c.add(n.SrcRange, "number", 0)
		}
	}
	return nil
}

func (c *tokenCollector) traversal(tr hcl.Traversal) {
	if len(tr) == 0 {
		return
	}
	root, ok := tr[0].(hcl.TraverseRoot)
	if !ok || root.Name != script.SchemeVariable {
		return
	}
	c.add(root.SrcRange, "namespace", 0)
	for _, step := range tr[1:] {
		if attr, ok := step.(hcl.TraverseAttr); ok {
			// The step's range includes the leading dot.
			rng := attr.SrcRange
			rng.Start.Column++
			c.add(rng, "property", 0)
		}
	}
}

// semanticTokensFull tokenizes a whole document. Unparseable input yields
// no tokens.
func semanticTokensFull(content string) []uint32 {
	file, diags := hclsyntax.ParseConfig([]byte(content), "", hcl.Pos{Line: 1, Column: 1})
	if diags.HasErrors() {
		return []uint32{}
	}
	body, ok := file.Body.(*hclsyntax.Body)
	if !ok {
		return []uint32{}
	}

	var c tokenCollector
	hclsyntax.VisitAll(body, c.visit)
	return encodeTokens(c)
}

// semanticTokensLegend describes the token encoding to the client.
func semanticTokensLegend() protocol.SemanticTokensLegend {
	return protocol.SemanticTokensLegend{
		TokenTypes:     semanticTokenTypes,
		TokenModifiers: semanticTokenModifiers,
	}
}

// textDocumentSemanticTokensFull handles textDocument/semanticTokens/full requests.
func (s *Server) textDocumentSemanticTokensFull(_ *glsp.Context, params *protocol.SemanticTokensParams) (*protocol.SemanticTokens, error) {
	content, ok := s.docs.Get(string(params.TextDocument.URI))
	if !ok {
		return nil, nil
	}
	return &protocol.SemanticTokens{Data: semanticTokensFull(content)}, nil
}
