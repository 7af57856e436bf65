// Package autocomplete drives one live search box: it debounces keystrokes,
// fetches suggestions for the settled query, discards stale fetches and
// handles keyboard navigation.
package autocomplete

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/NoviyantoPutraR/cms-pemkot/content-service/internal/domain"
	"github.com/NoviyantoPutraR/cms-pemkot/content-service/internal/lexicon"
	"github.com/NoviyantoPutraR/cms-pemkot/pkg/log"
)

// State is the dropdown state.
type State string

const (
	StateIdle       State = "idle"
	StateDebouncing State = "debouncing"
	StateFetching   State = "fetching"
	StateShowing    State = "showing"
)

// Keys understood by KeyDown.
const (
	KeyArrowUp   = "ArrowUp"
	KeyArrowDown = "ArrowDown"
	KeyEnter     = "Enter"
	KeyEscape    = "Escape"
)

// Event types emitted to the listener.
const (
	EventState    = "state"
	EventNavigate = "navigate"
	EventSearch   = "search"
)

var ErrUnknownKey = errors.New("unknown key")

// Source supplies suggestions and spell correction.
type Source interface {
	GetSuggestions(ctx context.Context, query string, limit int) ([]domain.Suggestion, error)
	CorrectSpelling(query string) domain.CorrectionResult
}

// Config tunes a controller.
type Config struct {
	Debounce time.Duration
	Limit    int
	MinChars int
}

func (c Config) withDefaults() Config {
	if c.Debounce <= 0 {
		c.Debounce = 300 * time.Millisecond
	}
	if c.Limit <= 0 {
		c.Limit = 8
	}
	if c.MinChars <= 0 {
		c.MinChars = 2
	}
	return c
}

// Entry is a suggestion with its highlighted text.
type Entry struct {
	domain.Suggestion
	Segments []Segment `json:"segments"`
}

// Snapshot is the visible dropdown state.
type Snapshot struct {
	State       State   `json:"state"`
	Query       string  `json:"query"`
	Suggestions []Entry `json:"suggestions"`
	Selected    int     `json:"selected"`
}

// Event is sent to the listener on every visible change.
type Event struct {
	Type       string                   `json:"type"`
	Snapshot   *Snapshot                `json:"snapshot,omitempty"`
	URL        string                   `json:"url,omitempty"`
	Query      string                   `json:"query,omitempty"`
	Correction *domain.CorrectionResult `json:"correction,omitempty"`
}

// Controller is safe for concurrent use. The emit callback runs with the
// controller locked and must not call back into it.
type Controller struct {
	ctx  context.Context
	src  Source
	cfg  Config
	emit func(Event)

	mu          sync.Mutex
	input       string
	state       State
	query       string
	suggestions []Entry
	selected    int
	seq         uint64
	timer       *time.Timer
	cancel      context.CancelFunc
	closed      bool
}

// New creates a controller. Fetches run under ctx.
func New(ctx context.Context, src Source, cfg Config, emit func(Event)) *Controller {
	return &Controller{
		ctx:      ctx,
		src:      src,
		cfg:      cfg.withDefaults(),
		emit:     emit,
		state:    StateIdle,
		selected: -1,
	}
}

// Input records a keystroke and restarts the debounce timer.
func (c *Controller) Input(value string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return
	}

	c.input = value
	seq := c.supersede()
	c.state = StateDebouncing
	c.timer = time.AfterFunc(c.cfg.Debounce, func() { c.settle(seq) })
	c.publish()
}

// supersede invalidates the pending timer and any in-flight fetch.
func (c *Controller) supersede() uint64 {
	c.seq++
	if c.timer != nil {
		c.timer.Stop()
		c.timer = nil
	}
	if c.cancel != nil {
		c.cancel()
		c.cancel = nil
	}
	return c.seq
}

func (c *Controller) settle(seq uint64) {
	c.mu.Lock()
	if seq != c.seq || c.closed {
		c.mu.Unlock()
		return
	}

	query := lexicon.NormalizeQuery(c.input)
	if len([]rune(query)) < c.cfg.MinChars {
		c.reset()
		c.publish()
		c.mu.Unlock()
		return
	}

	ctx, cancel := context.WithCancel(c.ctx)
	c.cancel = cancel
	c.state = StateFetching
	c.publish()
	c.mu.Unlock()

	suggestions, err := c.src.GetSuggestions(ctx, query, c.cfg.Limit)
	cancel()

	l := log.Ctx(c.ctx)
	c.mu.Lock()
	defer c.mu.Unlock()
	if seq != c.seq || c.closed || lexicon.NormalizeQuery(c.input) != query {
		l.Debug().Str(log.FieldQuery, query).Msg("stale suggestions discarded")
		return
	}
	c.cancel = nil

	if err != nil {
		l.Warn().Err(err).Str(log.FieldQuery, query).Msg("suggestion fetch failed")
		suggestions = nil
	}
	if len(suggestions) == 0 {
		c.reset()
		c.publish()
		return
	}

	entries := make([]Entry, len(suggestions))
	for i, s := range suggestions {
		entries[i] = Entry{Suggestion: s, Segments: Highlight(s.Text, query)}
	}
	c.state = StateShowing
	c.query = query
	c.suggestions = entries
	c.selected = -1
	c.publish()
}

// KeyDown handles a navigation key.
func (c *Controller) KeyDown(key string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return nil
	}

	switch key {
	case KeyArrowDown:
		if c.state == StateShowing {
			c.selected = min(c.selected+1, len(c.suggestions)-1)
			c.publish()
		}
	case KeyArrowUp:
		if c.state == StateShowing {
			c.selected = max(c.selected-1, -1)
			c.publish()
		}
	case KeyEnter:
		c.submit()
	case KeyEscape:
		c.supersede()
		c.reset()
		c.publish()
	default:
		return ErrUnknownKey
	}
	return nil
}

func (c *Controller) submit() {
	if c.state == StateShowing && c.selected >= 0 {
		url := c.suggestions[c.selected].URL
		c.supersede()
		c.reset()
		c.emit(Event{Type: EventNavigate, URL: url})
		c.publish()
		return
	}

	query := lexicon.NormalizeQuery(c.input)
	if query == "" {
		return
	}
	c.supersede()
	c.reset()

	ev := Event{Type: EventSearch, Query: query}
	if corr := c.src.CorrectSpelling(query); corr.HasCorrection {
		ev.Query = corr.Corrected
		ev.Correction = &corr
	}
	c.emit(ev)
	c.publish()
}

func (c *Controller) reset() {
	c.state = StateIdle
	c.query = ""
	c.suggestions = nil
	c.selected = -1
}

func (c *Controller) snapshot() *Snapshot {
	return &Snapshot{
		State:       c.state,
		Query:       c.query,
		Suggestions: c.suggestions,
		Selected:    c.selected,
	}
}

func (c *Controller) publish() {
	c.emit(Event{Type: EventState, Snapshot: c.snapshot()})
}

// Snapshot returns the current dropdown state.
func (c *Controller) Snapshot() Snapshot {
	c.mu.Lock()
	defer c.mu.Unlock()
	return *c.snapshot()
}

// Close stops the timer and abandons any in-flight fetch. Close is
// idempotent.
func (c *Controller) Close() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.supersede()
	c.closed = true
}
