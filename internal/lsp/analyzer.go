package lsp

import (
	"fmt"

	"github.com/hashicorp/hcl/v2"
	"github.com/hashicorp/hcl/v2/hclsyntax"
	protocol "github.com/tliron/glsp/protocol_3_16"

	"github.com/jsvensson/pptxpalette/internal/color"
	"github.com/jsvensson/pptxpalette/internal/script"
	"github.com/jsvensson/pptxpalette/internal/theme"
)

const diagSource = "pptxpalette"

var (
	DiagError   = protocol.DiagnosticSeverityError
	DiagWarning = protocol.DiagnosticSeverityWarning
	DiagInfo    = protocol.DiagnosticSeverityInformation
)

// AnalysisResult holds all information produced by analyzing a palette script.
type AnalysisResult struct {
	Diagnostics []protocol.Diagnostic
	Blocks      []BlockInfo
	Colors      []ColorLocation
}

// BlockInfo describes one scheme block.
type BlockInfo struct {
	Label string
	Range protocol.Range
	// Symbols maps slot kinds assigned in the block to their attribute range.
	Symbols map[string]protocol.Range
	// Values holds the kinds whose value is known without a deck.
	Values map[string]color.Color
}

// ColorLocation records a resolved color at a specific source position.
type ColorLocation struct {
	Range protocol.Range
	Color color.Color
	Kind  string // slot kind the value is assigned to
	IsRef bool   // true if this is a scheme reference (not a hex literal)
}

// hclPosToLSP converts an HCL position to an LSP position.
// HCL positions are 1-based; LSP positions are 0-based.
func hclPosToLSP(pos hcl.Pos) protocol.Position {
	return protocol.Position{
		Line:      uint32(pos.Line - 1),
		Character: uint32(pos.Column - 1),
	}
}

// hclRangeToLSP converts an HCL range to an LSP range.
func hclRangeToLSP(r hcl.Range) protocol.Range {
	return protocol.Range{
		Start: hclPosToLSP(r.Start),
		End:   hclPosToLSP(r.End),
	}
}

// Analyze parses script content from memory and produces diagnostics, block
// symbol tables and color locations. It collects every problem rather than
// stopping at the first.
func Analyze(filename, content string) *AnalysisResult {
	result := &AnalysisResult{}

	file, diags := hclsyntax.ParseConfig([]byte(content), filename, hcl.Pos{Line: 1, Column: 1})
	if diags.HasErrors() {
		for _, d := range diags {
			result.Diagnostics = append(result.Diagnostics, hclDiagToLSP(d))
		}
		return result
	}

	body, ok := file.Body.(*hclsyntax.Body)
	if !ok {
		result.addError(hcl.Range{}, "internal error: parsed body is not *hclsyntax.Body")
		return result
	}

	for _, attr := range script.SortedAttributes(body) {
		result.addError(attr.SrcRange, fmt.Sprintf("attribute %q must be inside a scheme block", attr.Name))
	}

	for _, block := range body.Blocks {
		if block.Type != script.BlockType {
			result.addError(block.TypeRange, fmt.Sprintf("unsupported block type %q (want %q)", block.Type, script.BlockType))
			continue
		}
		if len(block.Labels) > 1 {
			result.addError(block.LabelRanges[1], "scheme block takes at most one label")
		}
		for _, nested := range block.Body.Blocks {
			result.addError(nested.DefRange(), "scheme blocks cannot be nested")
		}
		result.analyzeSchemeBlock(block)
	}

	return result
}

// analyzeSchemeBlock evaluates the assignments of one block in source order,
// so later entries can reference earlier ones.
func (r *AnalysisResult) analyzeSchemeBlock(block *hclsyntax.Block) {
	info := BlockInfo{
		Range:   hclRangeToLSP(block.Range()),
		Symbols: make(map[string]protocol.Range),
		Values:  make(map[string]color.Color),
	}
	if len(block.Labels) > 0 {
		info.Label = block.Labels[0]
	}
	assigned := make(map[string]bool)

	for _, attr := range script.SortedAttributes(block.Body) {
		name := attr.Name
		if !theme.IsKnownKind(name) {
			r.addWarning(attr.NameRange, fmt.Sprintf("%q is not a standard color slot; the target scheme must define it", name))
		}

		if r.checkReferences(attr, info.Values, assigned) {
			val, diags := attr.Expr.Value(script.NewEvalContext(info.Values))
			if diags.HasErrors() {
				r.addError(attr.SrcRange, fmt.Sprintf("evaluating %s: %s", name, diags.Error()))
			} else if c, err := script.ResolveColor(val); err != nil {
				r.addError(attr.Expr.Range(), fmt.Sprintf("%s: %s", name, err.Error()))
			} else {
				r.Colors = append(r.Colors, ColorLocation{
					Range: hclRangeToLSP(attr.Expr.Range()),
					Color: c,
					Kind:  name,
					IsRef: isReferenceExpr(attr.Expr),
				})
				info.Values[name] = c
			}
		}

		assigned[name] = true
		info.Symbols[name] = hclRangeToLSP(attr.SrcRange)
	}

	r.Blocks = append(r.Blocks, info)
}

// checkReferences reports whether every variable in attr can be resolved from
// values. References to slots not assigned earlier are resolved from the deck
// when the script is applied; they get an information diagnostic.
func (r *AnalysisResult) checkReferences(attr *hclsyntax.Attribute, values map[string]color.Color, assigned map[string]bool) bool {
	ok := true
	for _, traversal := range attr.Expr.Variables() {
		if traversal.RootName() != script.SchemeVariable {
			r.addError(traversal.SourceRange(), fmt.Sprintf("unknown variable %q; only %s.<slot> is available", traversal.RootName(), script.SchemeVariable))
			ok = false
			continue
		}
		if len(traversal) < 2 {
			r.addError(traversal.SourceRange(), fmt.Sprintf("%s must be followed by a slot name", script.SchemeVariable))
			ok = false
			continue
		}
		step, isAttr := traversal[1].(hcl.TraverseAttr)
		if !isAttr {
			r.addError(traversal.SourceRange(), fmt.Sprintf("use %s.<slot> to reference a slot", script.SchemeVariable))
			ok = false
			continue
		}
		if _, known := values[step.Name]; known {
			continue
		}
		ok = false
		if !assigned[step.Name] {
			r.addInfo(traversal.SourceRange(), fmt.Sprintf("%s.%s is not assigned earlier in this block; it is resolved from the deck at apply time", script.SchemeVariable, step.Name))
		}
	}
	return ok
}

// hclDiagToLSP converts an HCL diagnostic to an LSP diagnostic.
func hclDiagToLSP(d *hcl.Diagnostic) protocol.Diagnostic {
	sev := DiagError
	if d.Severity == hcl.DiagWarning {
		sev = DiagWarning
	}

	diag := protocol.Diagnostic{
		Severity: &sev,
		Message:  d.Summary,
		Source:   strPtr(diagSource),
	}

	if d.Detail != "" {
		diag.Message = d.Summary + ": " + d.Detail
	}

	if d.Subject != nil {
		diag.Range = hclRangeToLSP(*d.Subject)
	}

	return diag
}

func (r *AnalysisResult) add(rng hcl.Range, sev protocol.DiagnosticSeverity, msg string) {
	r.Diagnostics = append(r.Diagnostics, protocol.Diagnostic{
		Range:    hclRangeToLSP(rng),
		Severity: &sev,
		Source:   strPtr(diagSource),
		Message:  msg,
	})
}

func (r *AnalysisResult) addError(rng hcl.Range, msg string)   { r.add(rng, DiagError, msg) }
func (r *AnalysisResult) addWarning(rng hcl.Range, msg string) { r.add(rng, DiagWarning, msg) }
func (r *AnalysisResult) addInfo(rng hcl.Range, msg string)    { r.add(rng, DiagInfo, msg) }

func strPtr(s string) *string {
	return &s
}

// isReferenceExpr returns true if the expression is a scope traversal
// (e.g. scheme.accent1) rather than a literal value.
func isReferenceExpr(expr hclsyntax.Expression) bool {
	switch expr.(type) {
	case *hclsyntax.ScopeTraversalExpr:
		return true
	case *hclsyntax.RelativeTraversalExpr:
		return true
	default:
		return false
	}
}

// blockAt returns the scheme block containing pos, if any.
func (r *AnalysisResult) blockAt(pos protocol.Position) (*BlockInfo, bool) {
	if r == nil {
		return nil, false
	}
	for i := range r.Blocks {
		b := &r.Blocks[i]
		if posInRange(pos, b.Range) || pos == b.Range.End {
			return b, true
		}
	}
	return nil, false
}
