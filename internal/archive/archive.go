// Package archive holds a presentation package (a ZIP container) in memory,
// exposes member lookup and text extraction, and re-emits the container with
// selected members replaced.
package archive

import (
	"archive/zip"
	"bytes"
	"errors"
	"fmt"
	"io"
	"regexp"
	"unicode/utf8"
)

// ThemePattern matches the numbered theme parts of a presentation package.
var ThemePattern = regexp.MustCompile(`^ppt/theme/theme\d+\.xml$`)

// ErrInvalidArchive is returned when the input cannot be opened as a ZIP container.
var ErrInvalidArchive = errors.New("not a readable zip container")

// ErrDecode is matched by every *DecodeError.
var ErrDecode = errors.New("member is not valid text")

// DecodeError reports a member whose bytes are not UTF-8 text.
type DecodeError struct {
	Member string
}

func (e *DecodeError) Error() string {
	return fmt.Sprintf("decoding %s: %s", e.Member, ErrDecode)
}

func (e *DecodeError) Is(target error) bool { return target == ErrDecode }

// Member is a handle to one file inside a Container.
type Member struct {
	file *zip.File
}

// Name returns the member path, e.g. "ppt/theme/theme1.xml".
func (m *Member) Name() string { return m.file.Name }

// Container is an opened archive plus the replacements staged for output.
type Container struct {
	name     string
	reader   *zip.Reader
	replaced map[string][]byte
}

// Load opens data as a ZIP container. name is the original file name and is
// reused when the container is written back out.
func Load(name string, data []byte) (*Container, error) {
	r, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return nil, fmt.Errorf("opening %s: %w: %v", name, ErrInvalidArchive, err)
	}
	return &Container{
		name:     name,
		reader:   r,
		replaced: make(map[string][]byte),
	}, nil
}

// Name returns the original file name of the container.
func (c *Container) Name() string { return c.name }

// FindMembers returns every member whose path matches pattern, in archive order.
func (c *Container) FindMembers(pattern *regexp.Regexp) []*Member {
	var members []*Member
	for _, f := range c.reader.File {
		if pattern.MatchString(f.Name) {
			members = append(members, &Member{file: f})
		}
	}
	return members
}

// Member looks up a single member by exact path.
func (c *Container) Member(path string) (*Member, bool) {
	for _, f := range c.reader.File {
		if f.Name == path {
			return &Member{file: f}, true
		}
	}
	return nil, false
}

// ReadText decompresses m and returns its content as a string.
func (c *Container) ReadText(m *Member) (string, error) {
	rc, err := m.file.Open()
	if err != nil {
		return "", fmt.Errorf("opening %s: %w", m.Name(), err)
	}
	defer rc.Close()

	data, err := io.ReadAll(rc)
	if err != nil {
		return "", fmt.Errorf("reading %s: %w", m.Name(), err)
	}
	if !utf8.Valid(data) {
		return "", &DecodeError{Member: m.Name()}
	}
	return string(data), nil
}

// Replace stages new content for an existing member. The staged text is only
// used by Bytes; the opened archive itself is never modified.
func (c *Container) Replace(path, text string) error {
	if _, ok := c.Member(path); !ok {
		return fmt.Errorf("replacing %s: no such member", path)
	}
	c.replaced[path] = []byte(text)
	return nil
}

// Bytes writes the whole container. Replaced members are recompressed; all
// other members are copied without decompressing, so their stored bytes are
// preserved exactly.
func (c *Container) Bytes() ([]byte, error) {
	var buf bytes.Buffer
	w := zip.NewWriter(&buf)

	for _, f := range c.reader.File {
		text, ok := c.replaced[f.Name]
		if !ok {
			if err := w.Copy(f); err != nil {
				return nil, fmt.Errorf("copying %s: %w", f.Name, err)
			}
			continue
		}

		header := f.FileHeader
		header.Method = zip.Deflate
		fw, err := w.CreateHeader(&header)
		if err != nil {
			return nil, fmt.Errorf("writing header for %s: %w", f.Name, err)
		}
		if _, err := fw.Write(text); err != nil {
			return nil, fmt.Errorf("writing %s: %w", f.Name, err)
		}
	}

	if err := w.Close(); err != nil {
		return nil, fmt.Errorf("finalizing %s: %w", c.name, err)
	}
	return buf.Bytes(), nil
}
