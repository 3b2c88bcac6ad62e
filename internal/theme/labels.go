package theme

// Kinds lists the color slots of a DrawingML color scheme in schema order.
var Kinds = []string{
	"dk1", "lt1", "dk2", "lt2",
	"accent1", "accent2", "accent3", "accent4", "accent5", "accent6",
	"hlink", "folHlink",
}

var kindLabels = map[string]string{
	"dk1":      "Dark Color 1",
	"dk2":      "Dark Color 2",
	"lt1":      "Light Color 1",
	"lt2":      "Light Color 2",
	"accent1":  "Accent Color 1",
	"accent2":  "Accent Color 2",
	"accent3":  "Accent Color 3",
	"accent4":  "Accent Color 4",
	"accent5":  "Accent Color 5",
	"accent6":  "Accent Color 6",
	"hlink":    "Hyperlink Color",
	"folHlink": "Followed Hyperlink Color",
}

// Label returns the human-readable name of a slot kind. Kinds outside the
// table are returned unchanged.
func Label(kind string) string {
	if label, ok := kindLabels[kind]; ok {
		return label
	}
	return kind
}

// IsKnownKind reports whether kind is one of the standard slots.
func IsKnownKind(kind string) bool {
	_, ok := kindLabels[kind]
	return ok
}
