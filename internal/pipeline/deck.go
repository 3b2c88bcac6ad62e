// Package pipeline drives a presentation through load, edit and build.
package pipeline

import (
	"context"
	"errors"
	"fmt"

	"github.com/tliron/commonlog"
	"golang.org/x/sync/errgroup"

	"github.com/jsvensson/pptxpalette/internal/archive"
	"github.com/jsvensson/pptxpalette/internal/theme"
)

var log = commonlog.GetLogger("pptxpalette.pipeline")

var (
	// ErrNoThemeMembers means the archive opened but holds no ppt/theme/themeN.xml
	// part, which usually means it is not a presentation.
	ErrNoThemeMembers = errors.New("no theme files found, may not be a valid .pptx file")

	// ErrNoSuchSlot is returned for out-of-range document, scheme or slot indexes.
	ErrNoSuchSlot = errors.New("no such color slot")
)

// Deck is a loaded presentation: the container plus one parsed document per
// theme member, in the order the members were matched.
type Deck struct {
	container *archive.Container
	documents []*theme.Document
}

// Load opens data as a presentation and parses every theme member. Members are
// decoded concurrently; the resulting documents keep match order. Any failure
// abandons the whole load.
func Load(ctx context.Context, name string, data []byte) (*Deck, error) {
	container, err := archive.Load(name, data)
	if err != nil {
		return nil, err
	}

	members := container.FindMembers(archive.ThemePattern)
	if len(members) == 0 {
		return nil, fmt.Errorf("%s: %w", name, ErrNoThemeMembers)
	}

	documents := make([]*theme.Document, len(members))
	g, ctx := errgroup.WithContext(ctx)
	for i, m := range members {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			text, err := container.ReadText(m)
			if err != nil {
				return err
			}
			doc, err := theme.Extract(m.Name(), text)
			if err != nil {
				return err
			}
			documents[i] = doc
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	log.Debugf("loaded %s with %d theme members", name, len(documents))
	return &Deck{container: container, documents: documents}, nil
}

// Name returns the file name the deck was loaded from.
func (d *Deck) Name() string { return d.container.Name() }

// Documents returns the parsed theme documents in match order.
func (d *Deck) Documents() []*theme.Document { return d.documents }

// Schemes returns every color scheme of every document, in display order.
func (d *Deck) Schemes() []*theme.Scheme {
	var schemes []*theme.Scheme
	for _, doc := range d.documents {
		schemes = append(schemes, doc.ColorSchemes()...)
	}
	return schemes
}

// Slot resolves a slot by document, scheme and slot index.
func (d *Deck) Slot(document, scheme, slot int) (*theme.Slot, error) {
	if document < 0 || document >= len(d.documents) {
		return nil, fmt.Errorf("document %d: %w", document, ErrNoSuchSlot)
	}
	schemes := d.documents[document].ColorSchemes()
	if scheme < 0 || scheme >= len(schemes) {
		return nil, fmt.Errorf("scheme %d of %s: %w", scheme, d.documents[document].Path(), ErrNoSuchSlot)
	}
	slots := schemes[scheme].Slots
	if slot < 0 || slot >= len(slots) {
		return nil, fmt.Errorf("slot %d of scheme %q: %w", slot, schemes[scheme].Name, ErrNoSuchSlot)
	}
	return slots[slot], nil
}

// Build writes every document back into the container and returns the new
// package bytes.
func (d *Deck) Build() ([]byte, error) {
	return theme.Build(d.container, d.documents)
}

// Section is one color scheme as presented to a user: a header plus a list of
// color controls.
type Section struct {
	Document int        `json:"document"`
	Path     string     `json:"path"`
	Scheme   int        `json:"scheme"`
	Name     string     `json:"name"`
	Slots    []SlotView `json:"slots"`
}

// SlotView is a read-only rendering of a slot.
type SlotView struct {
	Index int    `json:"index"`
	Kind  string `json:"kind"`
	Label string `json:"label"`
	Value string `json:"value"`
	// Input is the value in the "#rrggbb" form a color input expects.
	Input string `json:"input"`
}

// Sections renders every scheme of the deck, one section per scheme.
func (d *Deck) Sections() []Section {
	var sections []Section
	for di, doc := range d.documents {
		for si, s := range doc.ColorSchemes() {
			sec := Section{Document: di, Path: doc.Path(), Scheme: si, Name: s.Name}
			for i, slot := range s.Slots {
				view := SlotView{Index: i, Kind: slot.Kind(), Label: slot.Label(), Value: slot.Value()}
				if c, err := slot.Color(); err == nil {
					view.Input = c.Hex()
				}
				sec.Slots = append(sec.Slots, view)
			}
			sections = append(sections, sec)
		}
	}
	return sections
}
