// Package theme parses the DrawingML theme parts of a presentation and
// exposes their color schemes as live views over the XML tree.
//
// A Slot holds no copy of its value: reading it reads the underlying
// attribute and writing it writes that attribute, so the document is always
// the single source of truth.
package theme

import (
	"errors"
	"fmt"

	"github.com/beevik/etree"

	"github.com/jsvensson/pptxpalette/internal/color"
)

// ErrMalformedXML is matched by every *MalformedXMLError.
var ErrMalformedXML = errors.New("malformed xml")

// ErrInvalidColor is returned by SetColor for values that are not 6 hex digits.
var ErrInvalidColor = errors.New("invalid color value")

// ErrNoColorElement is returned when writing to a slot without a nested
// color element.
var ErrNoColorElement = errors.New("slot has no color element")

// MalformedXMLError reports a theme member that does not parse as XML.
type MalformedXMLError struct {
	Member string
	Err    error
}

func (e *MalformedXMLError) Error() string {
	return fmt.Sprintf("parsing %s: %s: %v", e.Member, ErrMalformedXML, e.Err)
}

func (e *MalformedXMLError) Is(target error) bool { return target == ErrMalformedXML }

func (e *MalformedXMLError) Unwrap() error { return e.Err }

const (
	schemeTag = "clrScheme"
	srgbTag   = "srgbClr"
	valAttr   = "val"
)

// Document is a parsed theme part tied to the container path it came from.
type Document struct {
	path string
	doc  *etree.Document
}

// Extract parses xmlText, the content of the container member at path.
func Extract(path, xmlText string) (*Document, error) {
	doc := etree.NewDocument()
	if err := doc.ReadFromString(xmlText); err != nil {
		return nil, &MalformedXMLError{Member: path, Err: err}
	}
	if doc.Root() == nil {
		return nil, &MalformedXMLError{Member: path, Err: errors.New("no root element")}
	}
	return &Document{path: path, doc: doc}, nil
}

// Path returns the container member path the document was read from.
func (d *Document) Path() string { return d.path }

// Serialize renders the current state of the tree.
func (d *Document) Serialize() (string, error) {
	s, err := d.doc.WriteToString()
	if err != nil {
		return "", fmt.Errorf("serializing %s: %w", d.path, err)
	}
	return s, nil
}

// ColorSchemes returns every clrScheme element in document order.
func (d *Document) ColorSchemes() []*Scheme {
	var schemes []*Scheme
	walk(d.doc.Root(), func(el *etree.Element) {
		if el.Tag != schemeTag {
			return
		}
		s := &Scheme{Name: el.SelectAttrValue("name", "")}
		for _, child := range el.ChildElements() {
			s.Slots = append(s.Slots, &Slot{el: child})
		}
		schemes = append(schemes, s)
	})
	return schemes
}

// walk visits el and its descendants depth-first, parents before children.
func walk(el *etree.Element, fn func(*etree.Element)) {
	fn(el)
	for _, child := range el.ChildElements() {
		walk(child, fn)
	}
}

// Scheme is a named group of color slots.
type Scheme struct {
	Name  string
	Slots []*Slot
}

// Slot returns the first slot of the given kind.
func (s *Scheme) Slot(kind string) (*Slot, bool) {
	for _, slot := range s.Slots {
		if slot.Kind() == kind {
			return slot, true
		}
	}
	return nil, false
}

// Slot is one entry of a color scheme, e.g. <a:accent1><a:srgbClr val="4472C4"/></a:accent1>.
type Slot struct {
	el *etree.Element
}

// Kind is the slot's tag name without its namespace prefix.
func (s *Slot) Kind() string { return s.el.Tag }

// Label is the display name for the slot.
func (s *Slot) Label() string { return Label(s.Kind()) }

// valueElement is the single nested color element (srgbClr, sysClr, ...).
func (s *Slot) valueElement() *etree.Element {
	children := s.el.ChildElements()
	if len(children) == 0 {
		return nil
	}
	return children[0]
}

// Value returns the raw val attribute of the nested color element.
func (s *Slot) Value() string {
	v := s.valueElement()
	if v == nil {
		return ""
	}
	return v.SelectAttrValue(valAttr, "")
}

// Color resolves the slot to an RGB color. System colors such as windowText
// fall back to their lastClr attribute.
func (s *Slot) Color() (color.Color, error) {
	if c, err := color.ParseHex(s.Value()); err == nil {
		return c, nil
	}
	if v := s.valueElement(); v != nil {
		if last := v.SelectAttrValue("lastClr", ""); last != "" {
			return color.ParseHex(last)
		}
	}
	return color.Color{}, fmt.Errorf("slot %s: %w %q", s.Kind(), ErrInvalidColor, s.Value())
}

// SetColor writes a value coming from a color control, "#rrggbb" or
// "rrggbb", onto the node as six upper-case digits.
func (s *Slot) SetColor(hex string) error {
	c, err := color.ParseHex(hex)
	if err != nil {
		return fmt.Errorf("slot %s: %w: %v", s.Kind(), ErrInvalidColor, err)
	}
	return s.SetValue(c)
}

// Writable reports whether SetValue can write to the slot.
func (s *Slot) Writable() bool { return s.valueElement() != nil }

// SetValue writes c onto the node. Any other color element (sysClr, prstClr,
// schemeClr, scrgbClr, hslClr) becomes an srgbClr and loses its attributes,
// since only srgbClr takes a hex val. Color transform children are kept.
func (s *Slot) SetValue(c color.Color) error {
	v := s.valueElement()
	if v == nil {
		return fmt.Errorf("slot %s: %w", s.Kind(), ErrNoColorElement)
	}
	if v.Tag != srgbTag {
		v.Tag = srgbTag
		v.Attr = nil
	}
	v.CreateAttr(valAttr, c.OOXML())
	return nil
}
