package theme

import (
	"archive/zip"
	"bytes"
	"io"
	"os"
	"testing"

	"github.com/jsvensson/pptxpalette/internal/archive"
)

func deckBytes(t *testing.T, members map[string]string, order []string) []byte {
	t.Helper()
	var buf bytes.Buffer
	w := zip.NewWriter(&buf)
	for _, name := range order {
		fw, err := w.Create(name)
		if err != nil {
			t.Fatal(err)
		}
		if _, err := io.WriteString(fw, members[name]); err != nil {
			t.Fatal(err)
		}
	}
	if err := w.Close(); err != nil {
		t.Fatal(err)
	}
	return buf.Bytes()
}

func TestBuildEditThenOutput(t *testing.T) {
	src, err := os.ReadFile("testdata/theme1.xml")
	if err != nil {
		t.Fatal(err)
	}
	members := map[string]string{
		"[Content_Types].xml":   "<Types/>",
		"ppt/theme/theme1.xml":  string(src),
		"ppt/slides/slide1.xml": "<p:sld/>",
	}
	data := deckBytes(t, members, []string{"[Content_Types].xml", "ppt/theme/theme1.xml", "ppt/slides/slide1.xml"})

	c, err := archive.Load("deck.pptx", data)
	if err != nil {
		t.Fatal(err)
	}
	doc := loadFixture(t)
	accent3, _ := doc.ColorSchemes()[0].Slot("accent3")
	if err := accent3.SetColor("#abcdef"); err != nil {
		t.Fatal(err)
	}

	out, err := Build(c, []*Document{doc})
	if err != nil {
		t.Fatalf("Build() error: %v", err)
	}

	reopened, err := archive.Load("deck.pptx", out)
	if err != nil {
		t.Fatalf("output is not a valid container: %v", err)
	}
	m, ok := reopened.Member("ppt/theme/theme1.xml")
	if !ok {
		t.Fatal("theme member missing from output")
	}
	text, err := reopened.ReadText(m)
	if err != nil {
		t.Fatal(err)
	}
	parsed, err := Extract(m.Name(), text)
	if err != nil {
		t.Fatal(err)
	}
	got, _ := parsed.ColorSchemes()[0].Slot("accent3")
	if got.Value() != "ABCDEF" {
		t.Errorf("accent3 = %q, want ABCDEF", got.Value())
	}
	other, _ := parsed.ColorSchemes()[0].Slot("accent1")
	if other.Value() != "4472C4" {
		t.Errorf("accent1 = %q, want unchanged 4472C4", other.Value())
	}

	slide, _ := reopened.Member("ppt/slides/slide1.xml")
	if text, _ := reopened.ReadText(slide); text != "<p:sld/>" {
		t.Errorf("slide changed: %q", text)
	}
}

func TestBuildUnknownPathAborts(t *testing.T) {
	data := deckBytes(t, map[string]string{"a.xml": "<a/>"}, []string{"a.xml"})
	c, err := archive.Load("deck.pptx", data)
	if err != nil {
		t.Fatal(err)
	}
	doc, err := Extract("ppt/theme/theme1.xml", "<a/>")
	if err != nil {
		t.Fatal(err)
	}
	if _, err := Build(c, []*Document{doc}); err == nil {
		t.Error("Build() should fail when a document has no member to replace")
	}
}
