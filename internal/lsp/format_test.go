package lsp

import (
	"testing"
)

func TestFormatEdits(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{
			name:     "aligns assignments",
			input:    "scheme \"Office\" {\naccent1=\"#4472C4\"\nhlink = scheme.accent1\n}\n",
			expected: "scheme \"Office\" {\n  accent1 = \"#4472C4\"\n  hlink   = scheme.accent1\n}\n",
		},
		{
			name:     "collapses blank lines",
			input:    "scheme {\n\n  dk1 = \"#000000\"\n\n\n\n  lt1 = \"#FFFFFF\"\n\n}\n",
			expected: "scheme {\n  dk1 = \"#000000\"\n\n  lt1 = \"#FFFFFF\"\n}\n",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			edits := formatEdits(tt.input)
			if len(edits) != 1 {
				t.Fatalf("got %d edits, want 1", len(edits))
			}
			if edits[0].NewText != tt.expected {
				t.Errorf("NewText =\n%s\nwant\n%s", edits[0].NewText, tt.expected)
			}
			if edits[0].Range.Start != pos(0, 0) {
				t.Errorf("edit should start at the top, got %+v", edits[0].Range.Start)
			}
		})
	}
}

func TestFormatEditsAlreadyFormatted(t *testing.T) {
	input := "scheme {\n  dk1 = \"#000000\"\n}\n"
	if edits := formatEdits(input); len(edits) != 0 {
		t.Errorf("got %d edits for formatted input", len(edits))
	}
}

func TestFormatEditsRange(t *testing.T) {
	input := "scheme {\ndk1=\"#000000\"\n}"
	edits := formatEdits(input)
	if len(edits) != 1 {
		t.Fatalf("got %d edits", len(edits))
	}
	if end := edits[0].Range.End; end != pos(2, 1) {
		t.Errorf("end = %+v, want the last character of the document", end)
	}
}
