package voice

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"

	"go.uber.org/zap"

	"codeberg.org/snonux/describeit/internal/announce"
	"codeberg.org/snonux/describeit/internal/logging"
	"codeberg.org/snonux/describeit/internal/stt"
)

// ErrRecognitionUnavailable is returned by Start when no usable engine exists.
var ErrRecognitionUnavailable = errors.New("speech recognition is not supported on this system")

// UnsupportedNotice is announced when recognition cannot start.
const UnsupportedNotice = "Speech recognition is not supported on this system."

// Handler runs the effect of a recognised command.
type Handler func(ctx context.Context) error

// State is a snapshot of the dispatcher.
type State struct {
	Listening      bool
	Language       string
	LastTranscript string
}

// Config holds the dispatcher settings.
type Config struct {
	Table          Table
	Language       string
	Continuous     bool
	InterimResults bool
}

// Dispatcher owns a recognition session and runs the handler of each
// command it hears.
type Dispatcher struct {
	recognizer stt.Recognizer
	announcer  announce.Announcer
	log        *zap.Logger

	mu             sync.Mutex
	table          Table
	handlers       map[Action]Handler
	language       string
	continuous     bool
	interim        bool
	listening      bool
	session        uint64
	lastTranscript string
	listeners      []func(State)
}

// NewDispatcher wires a recognizer to a command table. A nil recognizer is
// allowed and makes Start report that recognition is unsupported.
func NewDispatcher(r stt.Recognizer, cfg Config, a announce.Announcer, log *zap.Logger) *Dispatcher {
	if cfg.Table == nil {
		cfg.Table = DefaultTable()
	}
	if cfg.Language == "" {
		cfg.Language = "en-US"
	}
	if a == nil {
		a = announce.Func(func(string) {})
	}
	return &Dispatcher{
		recognizer: r,
		announcer:  a,
		log:        logging.OrNop(log),
		table:      cfg.Table,
		handlers:   make(map[Action]Handler),
		language:   cfg.Language,
		continuous: cfg.Continuous,
		interim:    cfg.InterimResults,
	}
}

// Handle registers h for action a, replacing any previous handler.
func (d *Dispatcher) Handle(a Action, h Handler) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.handlers[a] = h
}

// OnStateChange registers fn to be called after every state change.
func (d *Dispatcher) OnStateChange(fn func(State)) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.listeners = append(d.listeners, fn)
}

// State returns the current state.
func (d *Dispatcher) State() State {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.stateLocked()
}

// Listening reports whether a session is active.
func (d *Dispatcher) Listening() bool {
	return d.State().Listening
}

// LastTranscript returns the most recent transcript, lower-cased.
func (d *Dispatcher) LastTranscript() string {
	return d.State().LastTranscript
}

// Table returns the active command table.
func (d *Dispatcher) Table() Table {
	d.mu.Lock()
	defer d.mu.Unlock()
	out := make(Table, len(d.table))
	copy(out, d.table)
	return out
}

// SetLanguage changes the language used by the next session.
func (d *Dispatcher) SetLanguage(lang string) {
	d.mu.Lock()
	d.language = lang
	d.mu.Unlock()

	d.announcer.Announce(fmt.Sprintf("Voice command language changed to %s", lang))
	d.notify()
}

// Start begins listening. Starting while already listening does nothing.
func (d *Dispatcher) Start(ctx context.Context) error {
	d.mu.Lock()
	if d.listening {
		d.mu.Unlock()
		return nil
	}
	if d.recognizer == nil {
		d.mu.Unlock()
		d.announcer.Announce(UnsupportedNotice)
		return ErrRecognitionUnavailable
	}
	if err := d.recognizer.IsAvailable(); err != nil {
		d.mu.Unlock()
		d.log.Info("speech recognition unavailable", zap.Error(err))
		d.announcer.Announce(UnsupportedNotice)
		return fmt.Errorf("%w: %v", ErrRecognitionUnavailable, err)
	}

	opts := stt.Options{
		Language:       d.language,
		Continuous:     d.continuous,
		InterimResults: d.interim,
	}
	events, err := d.recognizer.Start(ctx, opts)
	if err != nil {
		d.mu.Unlock()
		d.log.Warn("failed to start speech recognition", zap.Error(err))
		d.announcer.Announce("Voice commands could not be started")
		return fmt.Errorf("failed to start recognition: %w", err)
	}
	d.listening = true
	d.session++
	id := d.session
	d.mu.Unlock()

	d.log.Info("listening for voice commands",
		zap.String("engine", d.recognizer.Name()),
		zap.String("language", opts.Language))
	d.notify()

	go d.consume(ctx, id, events)
	return nil
}

// Stop ends the current session.
func (d *Dispatcher) Stop() error {
	d.mu.Lock()
	if !d.listening {
		d.mu.Unlock()
		return nil
	}
	d.listening = false
	d.session++
	r := d.recognizer
	d.mu.Unlock()

	d.notify()
	return r.Stop()
}

// Toggle starts or stops listening and reports whether a session is now
// active.
func (d *Dispatcher) Toggle(ctx context.Context) (bool, error) {
	if d.Listening() {
		return false, d.Stop()
	}
	if err := d.Start(ctx); err != nil {
		return false, err
	}
	return true, nil
}

func (d *Dispatcher) consume(ctx context.Context, id uint64, events <-chan stt.Event) {
	for ev := range events {
		if ev.Err != nil {
			d.log.Warn("speech recognition error", zap.Error(ev.Err))
			// A stale session must not stop the engine under a newer one
			if d.current(id) {
				if err := d.recognizer.Stop(); err != nil {
					d.log.Debug("failed to stop recognition", zap.Error(err))
				}
			}
			continue
		}
		if !d.current(id) {
			continue
		}
		if !ev.Final {
			d.setTranscript(ev.Transcript)
			continue
		}
		if _, _, err := d.Dispatch(ctx, ev.Transcript); err != nil {
			d.log.Warn("voice command failed", zap.String("transcript", ev.Transcript), zap.Error(err))
		}
	}
	d.ended(id)
}

func (d *Dispatcher) current(id uint64) bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.listening && d.session == id
}

func (d *Dispatcher) ended(id uint64) {
	d.mu.Lock()
	if d.session != id || !d.listening {
		d.mu.Unlock()
		return
	}
	d.listening = false
	d.mu.Unlock()

	d.log.Debug("recognition session ended")
	d.notify()
}

func (d *Dispatcher) setTranscript(text string) string {
	text = strings.ToLower(strings.TrimSpace(text))
	d.mu.Lock()
	d.lastTranscript = text
	d.mu.Unlock()
	d.notify()
	return text
}

// Dispatch records transcript and runs the handler of the first matching
// command. It reports the matched action and whether anything matched.
func (d *Dispatcher) Dispatch(ctx context.Context, transcript string) (Action, bool, error) {
	text := d.setTranscript(transcript)

	d.mu.Lock()
	cmd, ok := d.table.Match(text)
	h := d.handlers[cmd.Action]
	d.mu.Unlock()

	if !ok {
		d.log.Debug("no voice command matched", zap.String("transcript", text))
		return "", false, nil
	}
	d.log.Info("voice command", zap.String("action", string(cmd.Action)), zap.String("transcript", text))
	if h == nil {
		return cmd.Action, true, nil
	}
	return cmd.Action, true, h(ctx)
}

func (d *Dispatcher) stateLocked() State {
	return State{
		Listening:      d.listening,
		Language:       d.language,
		LastTranscript: d.lastTranscript,
	}
}

func (d *Dispatcher) notify() {
	d.mu.Lock()
	st := d.stateLocked()
	listeners := make([]func(State), len(d.listeners))
	copy(listeners, d.listeners)
	d.mu.Unlock()

	for _, fn := range listeners {
		fn(st)
	}
}
