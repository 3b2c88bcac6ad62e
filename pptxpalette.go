// Package pptxpalette edits the theme colors of PowerPoint presentations.
//
// A presentation is a ZIP package whose ppt/theme/themeN.xml parts hold
// DrawingML color schemes. Open parses those parts, the returned deck exposes
// every scheme slot for editing, and Save writes a copy of the package with
// only the theme parts replaced.
package pptxpalette

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/jsvensson/pptxpalette/internal/color"
	"github.com/jsvensson/pptxpalette/internal/pipeline"
	"github.com/jsvensson/pptxpalette/internal/theme"
)

// ErrNoSuchScheme is returned when an edit names a scheme the deck lacks.
var ErrNoSuchScheme = errors.New("no such color scheme")

// Open reads and parses the presentation at path.
func Open(ctx context.Context, path string) (*pipeline.Deck, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading presentation: %w", err)
	}
	return pipeline.Load(ctx, filepath.Base(path), data)
}

// Save builds deck and writes the package to path.
func Save(deck *pipeline.Deck, path string) error {
	data, err := deck.Build()
	if err != nil {
		return fmt.Errorf("building %s: %w", deck.Name(), err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("writing output: %w", err)
	}
	return nil
}

// OutputPath returns output when set, otherwise "<name>-edited<ext>" next
// to input.
func OutputPath(input, output string) string {
	if output != "" {
		return output
	}
	ext := filepath.Ext(input)
	return strings.TrimSuffix(input, ext) + "-edited" + ext
}

// Assignment sets one slot kind to a color.
type Assignment struct {
	Kind  string
	Color color.Color
}

// ParseAssignments reads "kind=#rrggbb" arguments.
func ParseAssignments(args []string) ([]Assignment, error) {
	out := make([]Assignment, 0, len(args))
	for _, arg := range args {
		kind, value, ok := strings.Cut(arg, "=")
		kind = strings.TrimSpace(kind)
		if !ok || kind == "" {
			return nil, fmt.Errorf("%q: expected kind=#rrggbb", arg)
		}
		c, err := color.ParseHex(strings.TrimSpace(value))
		if err != nil {
			return nil, fmt.Errorf("%s: %w", kind, err)
		}
		out = append(out, Assignment{Kind: kind, Color: c})
	}
	return out, nil
}

// Assign applies assignments to every scheme of deck named scheme, or to all
// schemes when scheme is empty. Every assignment is resolved before any slot
// is written, so a failure leaves the deck unchanged. It returns the number
// of slots written.
func Assign(deck *pipeline.Deck, scheme string, assignments []Assignment) (int, error) {
	var targets []*theme.Scheme
	for _, s := range deck.Schemes() {
		if scheme == "" || s.Name == scheme {
			targets = append(targets, s)
		}
	}
	if len(targets) == 0 {
		if scheme == "" {
			return 0, fmt.Errorf("%s has no color schemes", deck.Name())
		}
		return 0, fmt.Errorf("%q: %w", scheme, ErrNoSuchScheme)
	}

	type write struct {
		slot *theme.Slot
		c    color.Color
	}
	var writes []write
	for _, a := range assignments {
		found := false
		for _, s := range targets {
			if slot, ok := s.Slot(a.Kind); ok {
				if !slot.Writable() {
					return 0, fmt.Errorf("%s in scheme %q: %w", a.Kind, s.Name, theme.ErrNoColorElement)
				}
				writes = append(writes, write{slot: slot, c: a.Color})
				found = true
			}
		}
		if !found {
			return 0, fmt.Errorf("no %s slot in the selected schemes: %w", a.Kind, pipeline.ErrNoSuchSlot)
		}
	}

	for _, w := range writes {
		if err := w.slot.SetValue(w.c); err != nil {
			return 0, err
		}
	}
	return len(writes), nil
}
