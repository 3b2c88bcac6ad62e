package pipeline

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/google/uuid"
)

var (
	// ErrSuperseded is returned by a load or build whose result was discarded
	// because another file was selected (or the selection cleared) meanwhile.
	ErrSuperseded = errors.New("superseded by a newer selection")

	// ErrNotReady is returned when an operation needs a loaded deck and the
	// controller is idle, loading or building.
	ErrNotReady = errors.New("no file ready")
)

// State is the phase of a Controller.
type State int

const (
	Idle State = iota
	Loading
	Ready
	Building
	Error
)

func (s State) String() string {
	switch s {
	case Idle:
		return "idle"
	case Loading:
		return "loading"
	case Ready:
		return "ready"
	case Building:
		return "building"
	case Error:
		return "error"
	}
	return fmt.Sprintf("State(%d)", int(s))
}

// Event describes a state transition.
type Event struct {
	State State  `json:"-"`
	Name  string `json:"name,omitempty"`
	Token string `json:"token,omitempty"`
	Err   error  `json:"-"`
}

// Snapshot is the presentable state of a controller.
type Snapshot struct {
	State    string    `json:"state"`
	Name     string    `json:"name,omitempty"`
	Token    string    `json:"token,omitempty"`
	CanBuild bool      `json:"canBuild"`
	Sections []Section `json:"sections"`
}

// Controller owns the single active deck of one user. Every new selection
// replaces the deck wholesale and gets a fresh token; results of earlier
// selections that complete late are discarded.
type Controller struct {
	mu          sync.Mutex
	state       State
	token       string
	name        string
	deck        *Deck
	subscribers []func(Event)
}

// NewController returns an idle controller.
func NewController() *Controller {
	return &Controller{}
}

// Subscribe registers fn to be called after every state transition. fn runs
// outside the controller lock and may call back into the controller.
func (c *Controller) Subscribe(fn func(Event)) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.subscribers = append(c.subscribers, fn)
}

// State returns the current phase.
func (c *Controller) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// CanBuild reports whether the output action should be enabled.
func (c *Controller) CanBuild() bool {
	return c.State() == Ready
}

// Load replaces the active deck with the file in data.
func (c *Controller) Load(ctx context.Context, name string, data []byte) (*Snapshot, error) {
	c.mu.Lock()
	token := uuid.NewString()
	c.token, c.name, c.deck = token, name, nil
	events := []Event{c.transition(Loading, nil)}
	c.mu.Unlock()
	c.publish(events)

	log.Infof("loading %s (token %s)", name, token)
	deck, err := Load(ctx, name, data)

	c.mu.Lock()
	if c.token != token {
		c.mu.Unlock()
		log.Noticef("discarding stale load of %s", name)
		return nil, ErrSuperseded
	}
	if err != nil {
		events = []Event{c.transition(Error, err)}
		c.reset()
		events = append(events, c.transition(Idle, nil))
		c.mu.Unlock()
		c.publish(events)
		log.Errorf("loading %s: %s", name, err.Error())
		return nil, err
	}
	c.deck = deck
	events = []Event{c.transition(Ready, nil)}
	snap := c.snapshot()
	c.mu.Unlock()
	c.publish(events)
	return snap, nil
}

// Clear drops the active deck and invalidates any load in flight.
func (c *Controller) Clear() {
	c.mu.Lock()
	c.reset()
	events := []Event{c.transition(Idle, nil)}
	c.mu.Unlock()
	c.publish(events)
}

// Snapshot renders the current state.
func (c *Controller) Snapshot() *Snapshot {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.snapshot()
}

// SetColor applies a color control change to the addressed slot.
func (c *Controller) SetColor(document, scheme, slot int, hex string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.state != Ready {
		return fmt.Errorf("setting color: %w", ErrNotReady)
	}
	s, err := c.deck.Slot(document, scheme, slot)
	if err != nil {
		return err
	}
	return s.SetColor(hex)
}

// Edit runs fn against the active deck with edits allowed.
func (c *Controller) Edit(fn func(*Deck) error) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.state != Ready {
		return fmt.Errorf("editing: %w", ErrNotReady)
	}
	return fn(c.deck)
}

// Build serializes the active deck. Edits are refused while it runs. The
// controller returns to Ready afterwards whether or not the build succeeded.
func (c *Controller) Build() (string, []byte, error) {
	c.mu.Lock()
	if c.state != Ready {
		c.mu.Unlock()
		return "", nil, fmt.Errorf("building: %w", ErrNotReady)
	}
	token, deck := c.token, c.deck
	events := []Event{c.transition(Building, nil)}
	c.mu.Unlock()
	c.publish(events)

	data, err := deck.Build()

	c.mu.Lock()
	if c.token != token {
		c.mu.Unlock()
		return "", nil, ErrSuperseded
	}
	events = []Event{c.transition(Ready, nil)}
	c.mu.Unlock()
	c.publish(events)

	if err != nil {
		log.Errorf("building %s: %s", deck.Name(), err.Error())
		return "", nil, err
	}
	log.Infof("built %s (%d bytes)", deck.Name(), len(data))
	return deck.Name(), data, nil
}

// transition must be called with c.mu held.
func (c *Controller) transition(s State, err error) Event {
	c.state = s
	return Event{State: s, Name: c.name, Token: c.token, Err: err}
}

// reset must be called with c.mu held.
func (c *Controller) reset() {
	c.token, c.name, c.deck = "", "", nil
}

// snapshot must be called with c.mu held.
func (c *Controller) snapshot() *Snapshot {
	snap := &Snapshot{
		State:    c.state.String(),
		Name:     c.name,
		Token:    c.token,
		CanBuild: c.state == Ready,
		Sections: []Section{},
	}
	if c.deck != nil {
		snap.Sections = c.deck.Sections()
	}
	return snap
}

func (c *Controller) publish(events []Event) {
	c.mu.Lock()
	subs := make([]func(Event), len(c.subscribers))
	copy(subs, c.subscribers)
	c.mu.Unlock()

	for _, ev := range events {
		for _, fn := range subs {
			fn(ev)
		}
	}
}
