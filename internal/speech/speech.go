// Package speech controls reading text aloud. At most one utterance is in
// flight, and toggling while speaking cancels it.
package speech

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"go.uber.org/zap"

	"codeberg.org/snonux/describeit/internal/announce"
	"codeberg.org/snonux/describeit/internal/logging"
)

var (
	// ErrNoContent is returned when there is nothing to read.
	ErrNoContent = errors.New("no content to speak")
	// ErrNotSupported is returned when no synthesis engine is usable.
	ErrNotSupported = errors.New("text-to-speech is not supported on this system")
)

const (
	NoContentNotice    = "No description available to read."
	UnsupportedNotice  = "Text-to-speech is not supported on this system."
	playbackFailNotice = "Speech playback failed."
)

// Utterance is one piece of text being spoken.
type Utterance interface {
	// Done receives exactly one value when the utterance finishes: nil on
	// success, the cancellation or playback error otherwise.
	Done() <-chan error
	Cancel()
}

// Synthesizer is a text-to-speech engine.
type Synthesizer interface {
	Name() string
	IsAvailable() error
	// Speak starts speaking text and returns without waiting for playback.
	Speak(ctx context.Context, text, lang string) (Utterance, error)
}

// State is the playback state.
type State int

const (
	Idle State = iota
	Speaking
)

func (s State) String() string {
	if s == Speaking {
		return "speaking"
	}
	return "idle"
}

// Controller owns the synthesis engine and the in-flight utterance.
type Controller struct {
	synth     Synthesizer
	announcer announce.Announcer
	log       *zap.Logger

	mu         sync.Mutex
	lang       string
	state      State
	current    Utterance
	generation uint64
	idle       chan struct{}
	listeners  []func(State)
}

// NewController returns a controller for synth, which may be nil.
func NewController(synth Synthesizer, lang string, a announce.Announcer, log *zap.Logger) *Controller {
	if a == nil {
		a = announce.Func(func(string) {})
	}
	if lang == "" {
		lang = "en-US"
	}
	idle := make(chan struct{})
	close(idle)
	return &Controller{
		synth:     synth,
		announcer: a,
		log:       logging.OrNop(log),
		lang:      lang,
		idle:      idle,
	}
}

// SetLanguage sets the language of later utterances.
func (c *Controller) SetLanguage(lang string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.lang = lang
}

// State returns the current playback state.
func (c *Controller) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// OnStateChange registers fn to be called after every state change.
func (c *Controller) OnStateChange(fn func(State)) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.listeners = append(c.listeners, fn)
}

// Toggle stops playback when speaking, otherwise starts reading text.
func (c *Controller) Toggle(ctx context.Context, text string) error {
	c.mu.Lock()
	if c.state == Speaking {
		c.cancelLocked()
		c.mu.Unlock()
		c.log.Debug("speech cancelled")
		c.notify(Idle)
		return nil
	}
	c.mu.Unlock()
	return c.start(ctx, text)
}

// Speak cancels any utterance in flight and reads text.
func (c *Controller) Speak(ctx context.Context, text string) error {
	c.Stop()
	return c.start(ctx, text)
}

// Stop cancels the current utterance, if any.
func (c *Controller) Stop() {
	c.mu.Lock()
	if c.state != Speaking {
		c.mu.Unlock()
		return
	}
	c.cancelLocked()
	c.mu.Unlock()
	c.notify(Idle)
}

// Wait blocks until playback is idle or ctx is done.
func (c *Controller) Wait(ctx context.Context) error {
	c.mu.Lock()
	idle := c.idle
	c.mu.Unlock()

	select {
	case <-idle:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (c *Controller) start(ctx context.Context, text string) error {
	if text == "" {
		c.announcer.Announce(NoContentNotice)
		return ErrNoContent
	}
	if c.synth == nil {
		c.announcer.Announce(UnsupportedNotice)
		return ErrNotSupported
	}
	if err := c.synth.IsAvailable(); err != nil {
		c.log.Info("text-to-speech unavailable", zap.Error(err))
		c.announcer.Announce(UnsupportedNotice)
		return fmt.Errorf("%w: %v", ErrNotSupported, err)
	}

	c.mu.Lock()
	interrupted := c.state == Speaking
	if interrupted {
		c.cancelLocked()
	}
	utt, err := c.synth.Speak(ctx, text, c.lang)
	if err != nil {
		c.mu.Unlock()
		if interrupted {
			c.notify(Idle)
		}
		c.log.Warn("failed to start speech", zap.String("engine", c.synth.Name()), zap.Error(err))
		c.announcer.Announce(playbackFailNotice)
		return fmt.Errorf("failed to speak: %w", err)
	}
	c.generation++
	gen := c.generation
	c.current = utt
	c.state = Speaking
	c.idle = make(chan struct{})
	c.mu.Unlock()

	c.log.Debug("speaking", zap.String("engine", c.synth.Name()), zap.Int("chars", len(text)))
	c.notify(Speaking)

	go c.wait(gen, utt)
	return nil
}

func (c *Controller) wait(gen uint64, utt Utterance) {
	err := <-utt.Done()

	c.mu.Lock()
	if c.generation != gen {
		// Superseded or cancelled; the newer state stands.
		c.mu.Unlock()
		return
	}
	c.setIdleLocked()
	c.mu.Unlock()

	if err != nil && !errors.Is(err, context.Canceled) {
		c.log.Warn("speech playback failed", zap.Error(err))
		c.announcer.Announce(playbackFailNotice)
	}
	c.notify(Idle)
}

// cancelLocked cancels the current utterance and invalidates its
// completion. c.mu must be held.
func (c *Controller) cancelLocked() {
	if c.current != nil {
		c.current.Cancel()
	}
	c.generation++
	c.setIdleLocked()
}

func (c *Controller) setIdleLocked() {
	c.current = nil
	if c.state == Speaking {
		close(c.idle)
	}
	c.state = Idle
}

func (c *Controller) notify(st State) {
	c.mu.Lock()
	listeners := make([]func(State), len(c.listeners))
	copy(listeners, c.listeners)
	c.mu.Unlock()

	for _, fn := range listeners {
		fn(st)
	}
}
