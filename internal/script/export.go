package script

import (
	"github.com/hashicorp/hcl/v2/hclsyntax"
	"github.com/hashicorp/hcl/v2/hclwrite"
	"github.com/zclconf/go-cty/cty"

	"github.com/jsvensson/pptxpalette/internal/theme"
)

// Export renders the current values of schemes as a palette script. Slots
// whose value is not an RGB color, or whose kind is not a valid HCL
// identifier, are left out.
func Export(schemes []*theme.Scheme) []byte {
	f := hclwrite.NewEmptyFile()
	body := f.Body()

	for i, s := range schemes {
		if i > 0 {
			body.AppendNewline()
		}
		block := body.AppendNewBlock(BlockType, []string{s.Name})
		for _, slot := range s.Slots {
			if !hclsyntax.ValidIdentifier(slot.Kind()) {
				continue
			}
			c, err := slot.Color()
			if err != nil {
				continue
			}
			block.Body().SetAttributeValue(slot.Kind(), cty.StringVal("#"+c.OOXML()))
		}
	}
	return hclwrite.Format(f.Bytes())
}
