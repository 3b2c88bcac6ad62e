package script

import (
	"strings"
	"testing"
)

func TestFormat(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{
			name:     "already formatted stays same",
			input:    "scheme \"Office\" {\n  accent1 = \"#4472C4\"\n}\n",
			expected: "scheme \"Office\" {\n  accent1 = \"#4472C4\"\n}\n",
		},
		{
			name:     "empty content",
			input:    "",
			expected: "",
		},
		{
			name:     "equals signs aligned",
			input:    "scheme {\n  dk1 = \"#000000\"\n  folHlink = \"#954F72\"\n}\n",
			expected: "scheme {\n  dk1      = \"#000000\"\n  folHlink = \"#954F72\"\n}\n",
		},
		{
			name:     "multiple blank lines collapsed to one",
			input:    "scheme \"A\" {\n  dk1 = \"#000000\"\n}\n\n\n\nscheme \"B\" {\n  dk1 = \"#111111\"\n}\n",
			expected: "scheme \"A\" {\n  dk1 = \"#000000\"\n}\n\nscheme \"B\" {\n  dk1 = \"#111111\"\n}\n",
		},
		{
			name:     "blank line after opening brace removed",
			input:    "scheme {\n\n  dk1 = \"#000000\"\n}",
			expected: "scheme {\n  dk1 = \"#000000\"\n}",
		},
		{
			name:     "blank line before closing brace removed",
			input:    "scheme {\n  dk1 = \"#000000\"\n\n}",
			expected: "scheme {\n  dk1 = \"#000000\"\n}",
		},
		{
			name:     "indentation normalized",
			input:    "scheme {\n        accent2 = darken(scheme.accent1, 0.1)\n}\n",
			expected: "scheme {\n  accent2 = darken(scheme.accent1, 0.1)\n}\n",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := strings.TrimSuffix(Format(tt.input), "\n")
			expected := strings.TrimSuffix(tt.expected, "\n")

			if result != expected {
				t.Errorf("Format() = %q, want %q", result, expected)
			}
		})
	}
}

func TestFormatIncompleteInput(t *testing.T) {
	// Partial input must not panic and keeps its content.
	got := Format(`scheme "Office" { accent1 = "#4472C4"`)
	if !strings.Contains(got, "accent1") {
		t.Errorf("Format() dropped content: %q", got)
	}
}
