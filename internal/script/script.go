// Package script reads palette scripts: HCL files that assign colors to the
// slots of a presentation's color schemes.
//
//	scheme "Office" {
//	  accent1 = "#4472C4"
//	  accent2 = darken(scheme.accent1, 0.1)
//	}
//
// A block without a label applies to every scheme. Inside a block,
// scheme.<kind> refers to the slot's current value, including assignments
// made earlier in the script.
package script

import (
	"fmt"
	"sort"

	"github.com/hashicorp/hcl/v2"
	"github.com/hashicorp/hcl/v2/hclsyntax"

	"github.com/jsvensson/pptxpalette/internal/color"
	"github.com/jsvensson/pptxpalette/internal/theme"
)

// BlockType is the only block type a script may contain.
const BlockType = "scheme"

// Script is a parsed palette script.
type Script struct {
	filename string
	blocks   []*hclsyntax.Block
}

// Edit is one slot assignment produced by applying a script.
type Edit struct {
	Scheme string
	Kind   string
	Color  color.Color
}

// Parse reads a palette script.
func Parse(filename string, src []byte) (*Script, error) {
	file, diags := hclsyntax.ParseConfig(src, filename, hcl.Pos{Line: 1, Column: 1})
	if diags.HasErrors() {
		return nil, fmt.Errorf("parsing HCL: %s", diags.Error())
	}

	body, ok := file.Body.(*hclsyntax.Body)
	if !ok {
		return nil, fmt.Errorf("parsing %s: unexpected body type %T", filename, file.Body)
	}
	if attrs := SortedAttributes(body); len(attrs) > 0 {
		a := attrs[0]
		return nil, fmt.Errorf("%s: attribute %q must be inside a scheme block", a.SrcRange, a.Name)
	}

	s := &Script{filename: filename}
	for _, block := range body.Blocks {
		if block.Type != BlockType {
			return nil, fmt.Errorf("%s: unsupported block type %q (want %q)", block.DefRange(), block.Type, BlockType)
		}
		if len(block.Labels) > 1 {
			return nil, fmt.Errorf("%s: scheme block takes at most one label", block.DefRange())
		}
		if len(block.Body.Blocks) > 0 {
			return nil, fmt.Errorf("%s: scheme blocks cannot be nested", block.Body.Blocks[0].DefRange())
		}
		s.blocks = append(s.blocks, block)
	}
	return s, nil
}

// SortedAttributes returns the attributes of body in source order.
func SortedAttributes(body *hclsyntax.Body) []*hclsyntax.Attribute {
	attrs := make([]*hclsyntax.Attribute, 0, len(body.Attributes))
	for _, a := range body.Attributes {
		attrs = append(attrs, a)
	}
	sort.Slice(attrs, func(i, j int) bool {
		return attrs[i].SrcRange.Start.Byte < attrs[j].SrcRange.Start.Byte
	})
	return attrs
}

// Apply evaluates the script against schemes and, if every assignment
// resolves, writes the results onto the slots. Nothing is written when any
// assignment fails.
func (s *Script) Apply(schemes []*theme.Scheme) ([]Edit, error) {
	planned := make(map[*theme.Scheme]map[string]color.Color)
	var edits []Edit
	type write struct {
		slot *theme.Slot
		c    color.Color
	}
	var writes []write

	for _, block := range s.blocks {
		targets, err := s.targets(block, schemes)
		if err != nil {
			return nil, err
		}

		for _, scheme := range targets {
			values := currentValues(scheme)
			for k, v := range planned[scheme] {
				values[k] = v
			}

			for _, attr := range SortedAttributes(block.Body) {
				slot, ok := scheme.Slot(attr.Name)
				if !ok {
					return nil, fmt.Errorf("%s: scheme %q has no %s slot", attr.SrcRange, scheme.Name, attr.Name)
				}
				if !slot.Writable() {
					return nil, fmt.Errorf("%s: %s in scheme %q: %w", attr.SrcRange, attr.Name, scheme.Name, theme.ErrNoColorElement)
				}

				val, diags := attr.Expr.Value(NewEvalContext(values))
				if diags.HasErrors() {
					return nil, fmt.Errorf("evaluating %s in scheme %q: %s", attr.Name, scheme.Name, diags.Error())
				}
				c, err := ResolveColor(val)
				if err != nil {
					return nil, fmt.Errorf("%s: %s: %w", attr.SrcRange, attr.Name, err)
				}

				values[attr.Name] = c
				if planned[scheme] == nil {
					planned[scheme] = make(map[string]color.Color)
				}
				planned[scheme][attr.Name] = c
				writes = append(writes, write{slot: slot, c: c})
				edits = append(edits, Edit{Scheme: scheme.Name, Kind: attr.Name, Color: c})
			}
		}
	}

	for _, w := range writes {
		if err := w.slot.SetValue(w.c); err != nil {
			return nil, err
		}
	}
	return edits, nil
}

func (s *Script) targets(block *hclsyntax.Block, schemes []*theme.Scheme) ([]*theme.Scheme, error) {
	if len(block.Labels) == 0 {
		return schemes, nil
	}
	var out []*theme.Scheme
	for _, scheme := range schemes {
		if scheme.Name == block.Labels[0] {
			out = append(out, scheme)
		}
	}
	if len(out) == 0 {
		return nil, fmt.Errorf("%s: no color scheme named %q", block.DefRange(), block.Labels[0])
	}
	return out, nil
}

func currentValues(scheme *theme.Scheme) map[string]color.Color {
	values := make(map[string]color.Color, len(scheme.Slots))
	for _, slot := range scheme.Slots {
		if c, err := slot.Color(); err == nil {
			values[slot.Kind()] = c
		}
	}
	return values
}
