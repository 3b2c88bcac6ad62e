package script

import (
	"fmt"
	"sort"

	"github.com/hashicorp/hcl/v2"
	"github.com/zclconf/go-cty/cty"
	"github.com/zclconf/go-cty/cty/function"

	"github.com/jsvensson/pptxpalette/internal/color"
)

// SchemeVariable is the name under which slot values are visible to scripts.
const SchemeVariable = "scheme"

// colorFunc builds an HCL function taking a color and a number and
// returning a color.
func colorFunc(description, amount string, fn func(color.Color, float64) color.Color) function.Function {
	return function.New(&function.Spec{
		Description: description,
		Params: []function.Parameter{
			{Name: "color", Type: cty.String},
			{Name: amount, Type: cty.Number},
		},
		Type: function.StaticReturnType(cty.String),
		Impl: func(args []cty.Value, retType cty.Type) (cty.Value, error) {
			c, err := color.ParseHex(args[0].AsString())
			if err != nil {
				return cty.NilVal, err
			}
			n, _ := args[1].AsBigFloat().Float64()
			return cty.StringVal(fn(c, n).Hex()), nil
		},
	})
}

// Functions returns the functions available to palette scripts.
func Functions() map[string]function.Function {
	return map[string]function.Function{
		"brighten":  colorFunc("Raises HSL lightness by the given fraction (0.0 to 1.0)", "percentage", color.Brighten),
		"darken":    colorFunc("Lowers HSL lightness by the given fraction (0.0 to 1.0)", "percentage", color.Darken),
		"lightness": colorFunc("Sets OKLCH lightness (0.0 to 1.0), keeping hue and chroma", "lightness", color.StepLightness),
	}
}

// NewEvalContext exposes values as scheme.<kind> alongside the script functions.
func NewEvalContext(values map[string]color.Color) *hcl.EvalContext {
	keys := make([]string, 0, len(values))
	for k := range values {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	vals := make(map[string]cty.Value, len(values))
	for _, k := range keys {
		vals[k] = cty.StringVal(values[k].Hex())
	}

	return &hcl.EvalContext{
		Variables: map[string]cty.Value{
			SchemeVariable: cty.ObjectVal(vals),
		},
		Functions: Functions(),
	}
}

// ResolveColor converts an evaluated attribute value into a Color.
func ResolveColor(val cty.Value) (color.Color, error) {
	if val.IsNull() || !val.IsKnown() {
		return color.Color{}, fmt.Errorf("expected a color string, got an unknown value")
	}
	if val.Type() != cty.String {
		return color.Color{}, fmt.Errorf("expected a color string, got %s", val.Type().FriendlyName())
	}
	return color.ParseHex(val.AsString())
}
