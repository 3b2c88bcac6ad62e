package pipeline

import (
	"archive/zip"
	"bytes"
	"fmt"
	"io"
	"strings"
	"testing"
)

const contentTypes = `<?xml version="1.0" encoding="UTF-8" standalone="yes"?><Types xmlns="http://schemas.openxmlformats.org/package/2006/content-types"/>`

// themeXML renders a theme part with one color scheme per entry of schemes.
// Each scheme is a list of kind=value pairs.
func themeXML(schemes map[string][]string, order ...string) string {
	var b strings.Builder
	b.WriteString(`<?xml version="1.0" encoding="UTF-8" standalone="yes"?>`)
	b.WriteString(`<a:theme xmlns:a="http://schemas.openxmlformats.org/drawingml/2006/main" name="Office Theme"><a:themeElements>`)
	for _, name := range order {
		fmt.Fprintf(&b, `<a:clrScheme name="%s">`, name)
		for _, pair := range schemes[name] {
			kind, val, _ := strings.Cut(pair, "=")
			fmt.Fprintf(&b, `<a:%s><a:srgbClr val="%s"/></a:%s>`, kind, val, kind)
		}
		b.WriteString(`</a:clrScheme>`)
	}
	b.WriteString(`</a:themeElements></a:theme>`)
	return b.String()
}

func officeTheme() string {
	return themeXML(map[string][]string{
		"Office": {
			"dk1=000000", "lt1=FFFFFF", "dk2=44546A", "lt2=E7E6E6",
			"accent1=4472C4", "accent2=ED7D31", "accent3=A5A5A5",
			"accent4=FFC000", "accent5=5B9BD5", "accent6=70AD47",
			"hlink=0563C1", "folHlink=954F72",
		},
	}, "Office")
}

type part struct {
	name string
	data string
}

func pptx(t *testing.T, parts ...part) []byte {
	t.Helper()
	var buf bytes.Buffer
	w := zip.NewWriter(&buf)
	for _, p := range parts {
		fw, err := w.CreateHeader(&zip.FileHeader{Name: p.name, Method: zip.Deflate})
		if err != nil {
			t.Fatal(err)
		}
		if _, err := io.WriteString(fw, p.data); err != nil {
			t.Fatal(err)
		}
	}
	if err := w.Close(); err != nil {
		t.Fatal(err)
	}
	return buf.Bytes()
}

func unzip(t *testing.T, data []byte) map[string][]byte {
	t.Helper()
	r, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		t.Fatalf("output is not a zip: %v", err)
	}
	out := make(map[string][]byte)
	for _, f := range r.File {
		rc, err := f.Open()
		if err != nil {
			t.Fatal(err)
		}
		b, err := io.ReadAll(rc)
		rc.Close()
		if err != nil {
			t.Fatal(err)
		}
		out[f.Name] = b
	}
	return out
}
