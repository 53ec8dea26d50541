package testutil

import (
	"context"
	"sync"

	"codeberg.org/snonux/describeit/internal/speech"
	"codeberg.org/snonux/describeit/internal/stt"
)

// MockRecognizer is a recognition engine driven by the test.
type MockRecognizer struct {
	AvailableErr error
	StartErr     error

	mu          sync.Mutex
	events      chan stt.Event
	starts      int
	stops       int
	lastOptions stt.Options
}

// NewMockRecognizer returns an available mock engine.
func NewMockRecognizer() *MockRecognizer {
	return &MockRecognizer{}
}

func (m *MockRecognizer) Name() string { return "mock" }

func (m *MockRecognizer) IsAvailable() error { return m.AvailableErr }

// Start opens a session with room for a few pending events.
func (m *MockRecognizer) Start(ctx context.Context, opts stt.Options) (<-chan stt.Event, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.StartErr != nil {
		return nil, m.StartErr
	}
	if m.events != nil {
		return nil, stt.ErrBusy
	}
	m.starts++
	m.lastOptions = opts
	m.events = make(chan stt.Event, 16)
	return m.events, nil
}

// Stop closes the active session.
func (m *MockRecognizer) Stop() error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.stops++
	m.closeLocked()
	return nil
}

// Say delivers a final transcript. It reports false when no session is open.
func (m *MockRecognizer) Say(transcript string) bool {
	return m.send(stt.Event{Transcript: transcript, Final: true})
}

// Interim delivers a partial transcript.
func (m *MockRecognizer) Interim(transcript string) bool {
	return m.send(stt.Event{Transcript: transcript})
}

// Fail delivers an engine error.
func (m *MockRecognizer) Fail(err error) bool {
	return m.send(stt.Event{Err: err})
}

// End closes the session as if the speaker had finished.
func (m *MockRecognizer) End() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.closeLocked()
}

// Active reports whether a session is open.
func (m *MockRecognizer) Active() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.events != nil
}

// Starts returns how many sessions were opened.
func (m *MockRecognizer) Starts() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.starts
}

// Stops returns how many times Stop was called.
func (m *MockRecognizer) Stops() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.stops
}

// LastOptions returns the options of the most recent session.
func (m *MockRecognizer) LastOptions() stt.Options {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.lastOptions
}

func (m *MockRecognizer) send(ev stt.Event) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.events == nil {
		return false
	}
	m.events <- ev
	return true
}

func (m *MockRecognizer) closeLocked() {
	if m.events != nil {
		close(m.events)
		m.events = nil
	}
}

// MockSynthesizer records what it was asked to speak. Utterances stay in
// flight until the test finishes or cancels them.
type MockSynthesizer struct {
	AvailableErr error
	SpeakErr     error

	mu         sync.Mutex
	texts      []string
	langs      []string
	utterances []*MockUtterance
}

// NewMockSynthesizer returns an available mock engine.
func NewMockSynthesizer() *MockSynthesizer {
	return &MockSynthesizer{}
}

func (m *MockSynthesizer) Name() string { return "mock" }

func (m *MockSynthesizer) IsAvailable() error { return m.AvailableErr }

func (m *MockSynthesizer) Speak(ctx context.Context, text, lang string) (speech.Utterance, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.SpeakErr != nil {
		return nil, m.SpeakErr
	}
	u := NewMockUtterance()
	m.texts = append(m.texts, text)
	m.langs = append(m.langs, lang)
	m.utterances = append(m.utterances, u)
	return u, nil
}

// Texts returns everything spoken so far.
func (m *MockSynthesizer) Texts() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]string(nil), m.texts...)
}

// Languages returns the language of every utterance.
func (m *MockSynthesizer) Languages() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]string(nil), m.langs...)
}

// Utterance returns the i-th utterance, or nil.
func (m *MockSynthesizer) Utterance(i int) *MockUtterance {
	m.mu.Lock()
	defer m.mu.Unlock()
	if i < 0 || i >= len(m.utterances) {
		return nil
	}
	return m.utterances[i]
}

// Last returns the most recent utterance, or nil.
func (m *MockSynthesizer) Last() *MockUtterance {
	m.mu.Lock()
	n := len(m.utterances)
	m.mu.Unlock()
	return m.Utterance(n - 1)
}

// MockUtterance completes when the test calls Finish or the owner cancels.
type MockUtterance struct {
	done chan error
	once sync.Once

	mu        sync.Mutex
	cancelled bool
}

// NewMockUtterance returns an utterance in flight.
func NewMockUtterance() *MockUtterance {
	return &MockUtterance{done: make(chan error, 1)}
}

func (u *MockUtterance) Done() <-chan error { return u.done }

func (u *MockUtterance) Cancel() {
	u.mu.Lock()
	u.cancelled = true
	u.mu.Unlock()
	u.Finish(context.Canceled)
}

// Finish completes the utterance with err.
func (u *MockUtterance) Finish(err error) {
	u.once.Do(func() { u.done <- err })
}

// Cancelled reports whether Cancel was called.
func (u *MockUtterance) Cancelled() bool {
	u.mu.Lock()
	defer u.mu.Unlock()
	return u.cancelled
}

// Announcements records announced messages in order.
type Announcements struct {
	mu       sync.Mutex
	messages []string
}

func (a *Announcements) Announce(message string) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.messages = append(a.messages, message)
}

// All returns every message announced so far.
func (a *Announcements) All() []string {
	a.mu.Lock()
	defer a.mu.Unlock()
	return append([]string(nil), a.messages...)
}

// Last returns the latest message, or "".
func (a *Announcements) Last() string {
	a.mu.Lock()
	defer a.mu.Unlock()
	if len(a.messages) == 0 {
		return ""
	}
	return a.messages[len(a.messages)-1]
}
