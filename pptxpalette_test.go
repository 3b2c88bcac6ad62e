package pptxpalette

import (
	"archive/zip"
	"bytes"
	"context"
	"errors"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/jsvensson/pptxpalette/internal/color"
	"github.com/jsvensson/pptxpalette/internal/pipeline"
	"github.com/jsvensson/pptxpalette/internal/theme"
)

// writeDeck writes a presentation holding the Office theme into dir.
func writeDeck(t *testing.T, dir string) string {
	t.Helper()
	themeXML, err := os.ReadFile(filepath.Join("internal", "theme", "testdata", "theme1.xml"))
	if err != nil {
		t.Fatal(err)
	}
	return writeDeckXML(t, dir, string(themeXML))
}

// writeDeckXML writes a presentation whose only theme part is themeXML.
func writeDeckXML(t *testing.T, dir, themeXML string) string {
	t.Helper()
	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)
	for _, p := range []struct{ name, body string }{
		{"[Content_Types].xml", `<Types xmlns="http://schemas.openxmlformats.org/package/2006/content-types"/>`},
		{"ppt/theme/theme1.xml", themeXML},
	} {
		w, err := zw.Create(p.name)
		if err != nil {
			t.Fatal(err)
		}
		if _, err := io.WriteString(w, p.body); err != nil {
			t.Fatal(err)
		}
	}
	if err := zw.Close(); err != nil {
		t.Fatal(err)
	}

	path := filepath.Join(dir, "deck.pptx")
	if err := os.WriteFile(path, buf.Bytes(), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestOutputPath(t *testing.T) {
	tests := []struct {
		input, output, want string
	}{
		{"deck.pptx", "", "deck-edited.pptx"},
		{"slides/q3.pptx", "", "slides/q3-edited.pptx"},
		{"noext", "", "noext-edited"},
		{"deck.pptx", "out.pptx", "out.pptx"},
	}
	for _, tt := range tests {
		t.Run(tt.input+"|"+tt.output, func(t *testing.T) {
			if got := OutputPath(tt.input, tt.output); got != tt.want {
				t.Errorf("OutputPath(%q, %q) = %q, want %q", tt.input, tt.output, got, tt.want)
			}
		})
	}
}

func TestParseAssignments(t *testing.T) {
	got, err := ParseAssignments([]string{"accent1=#112233", " hlink = abcdef "})
	if err != nil {
		t.Fatalf("ParseAssignments() error: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("got %d assignments, want 2", len(got))
	}
	if got[0].Kind != "accent1" || got[0].Color.OOXML() != "112233" {
		t.Errorf("first = %+v", got[0])
	}
	if got[1].Kind != "hlink" || got[1].Color.OOXML() != "ABCDEF" {
		t.Errorf("second = %+v", got[1])
	}

	for _, bad := range []string{"accent1", "=#112233", "accent1=#12345", "accent1=blue"} {
		t.Run(bad, func(t *testing.T) {
			if _, err := ParseAssignments([]string{bad}); err == nil {
				t.Errorf("ParseAssignments(%q) succeeded", bad)
			}
		})
	}
}

func TestOpenAssignSave(t *testing.T) {
	dir := t.TempDir()
	in := writeDeck(t, dir)

	deck, err := Open(context.Background(), in)
	if err != nil {
		t.Fatalf("Open() error: %v", err)
	}
	if deck.Name() != "deck.pptx" {
		t.Errorf("Name() = %q", deck.Name())
	}

	n, err := Assign(deck, "Office", []Assignment{
		{Kind: "accent1", Color: mustColor(t, "#112233")},
		{Kind: "dk1", Color: mustColor(t, "#010203")},
	})
	if err != nil {
		t.Fatalf("Assign() error: %v", err)
	}
	if n != 2 {
		t.Errorf("Assign() = %d, want 2", n)
	}

	out := OutputPath(in, "")
	if err := Save(deck, out); err != nil {
		t.Fatalf("Save() error: %v", err)
	}

	reopened, err := Open(context.Background(), out)
	if err != nil {
		t.Fatalf("reopening output: %v", err)
	}
	slots := reopened.Sections()[0].Slots
	if slots[4].Value != "112233" {
		t.Errorf("accent1 = %q, want 112233", slots[4].Value)
	}
	if slots[0].Value != "010203" {
		t.Errorf("dk1 = %q, want 010203", slots[0].Value)
	}
}

func TestAssignErrorsLeaveDeckUnchanged(t *testing.T) {
	in := writeDeck(t, t.TempDir())

	tests := []struct {
		name   string
		scheme string
		kind   string
		want   error
	}{
		{"unknown scheme", "Nope", "accent1", ErrNoSuchScheme},
		{"unknown slot", "", "accent9", pipeline.ErrNoSuchSlot},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			deck, err := Open(context.Background(), in)
			if err != nil {
				t.Fatal(err)
			}
			_, err = Assign(deck, tt.scheme, []Assignment{
				{Kind: "accent1", Color: mustColor(t, "#000000")},
				{Kind: tt.kind, Color: mustColor(t, "#000000")},
			})
			if !errors.Is(err, tt.want) {
				t.Fatalf("Assign() error = %v, want %v", err, tt.want)
			}
			if got := deck.Sections()[0].Slots[4].Value; got != "4472C4" {
				t.Errorf("accent1 = %q after failed Assign, want 4472C4", got)
			}
		})
	}
}

func TestAssignSlotWithoutColorElement(t *testing.T) {
	in := writeDeckXML(t, t.TempDir(), `<a:theme xmlns:a="http://schemas.openxmlformats.org/drawingml/2006/main"><a:themeElements><a:clrScheme name="Office">`+
		`<a:accent1><a:srgbClr val="4472C4"/></a:accent1><a:customSlot/>`+
		`</a:clrScheme></a:themeElements></a:theme>`)
	deck, err := Open(context.Background(), in)
	if err != nil {
		t.Fatal(err)
	}

	_, err = Assign(deck, "", []Assignment{
		{Kind: "accent1", Color: mustColor(t, "#111111")},
		{Kind: "customSlot", Color: mustColor(t, "#222222")},
	})
	if !errors.Is(err, theme.ErrNoColorElement) {
		t.Fatalf("Assign() error = %v, want ErrNoColorElement", err)
	}
	if got := deck.Sections()[0].Slots[0].Value; got != "4472C4" {
		t.Errorf("accent1 = %q after failed Assign, want 4472C4", got)
	}
}

func TestOpenMissingFile(t *testing.T) {
	_, err := Open(context.Background(), filepath.Join(t.TempDir(), "missing.pptx"))
	if err == nil || !strings.Contains(err.Error(), "reading presentation") {
		t.Errorf("Open() error = %v", err)
	}
}

func mustColor(t *testing.T, hex string) color.Color {
	t.Helper()
	c, err := color.ParseHex(hex)
	if err != nil {
		t.Fatal(err)
	}
	return c
}
