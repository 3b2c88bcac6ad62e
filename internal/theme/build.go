package theme

import (
	"fmt"

	"github.com/jsvensson/pptxpalette/internal/archive"
)

// Build serializes every document and writes the container with each
// document stored back at its original path. Nothing is staged on the
// container unless all documents serialize.
func Build(c *archive.Container, docs []*Document) ([]byte, error) {
	texts := make([]string, len(docs))
	for i, d := range docs {
		text, err := d.Serialize()
		if err != nil {
			return nil, err
		}
		texts[i] = text
	}

	for i, d := range docs {
		if err := c.Replace(d.Path(), texts[i]); err != nil {
			return nil, fmt.Errorf("staging %s: %w", d.Path(), err)
		}
	}

	out, err := c.Bytes()
	if err != nil {
		return nil, fmt.Errorf("building %s: %w", c.Name(), err)
	}
	return out, nil
}
