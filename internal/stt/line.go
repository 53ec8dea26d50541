package stt

import (
	"bufio"
	"context"
	"io"
	"strings"
	"sync"
)

// LineRecognizer treats each line read from an io.Reader as one spoken
// utterance. It drives voice commands in the CLI and in tests.
type LineRecognizer struct {
	in io.Reader

	once  sync.Once
	lines chan string

	mu      sync.Mutex
	session *lineSession
}

type lineSession struct {
	stop     chan struct{}
	done     chan struct{}
	stopOnce sync.Once
}

func (s *lineSession) end() {
	s.stopOnce.Do(func() { close(s.stop) })
}

// NewLineRecognizer returns a recognizer reading utterances from in.
func NewLineRecognizer(in io.Reader) *LineRecognizer {
	return &LineRecognizer{in: in}
}

func (r *LineRecognizer) Name() string { return "text" }

func (r *LineRecognizer) IsAvailable() error {
	if r.in == nil {
		return Unavailable{Reason: "no input stream"}.IsAvailable()
	}
	return nil
}

// Start begins a session. Lines are read lazily by a single background
// reader shared across sessions, so no input is lost between them.
func (r *LineRecognizer) Start(ctx context.Context, opts Options) (<-chan Event, error) {
	if err := r.IsAvailable(); err != nil {
		return nil, err
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if r.session != nil {
		return nil, ErrBusy
	}
	r.once.Do(r.startReader)

	sess := &lineSession{stop: make(chan struct{}), done: make(chan struct{})}
	r.session = sess
	events := make(chan Event)

	go func() {
		defer close(sess.done)
		defer close(events)
		defer r.finish(sess)

		for {
			select {
			case <-ctx.Done():
				return
			case <-sess.stop:
				return
			case line, ok := <-r.lines:
				if !ok {
					return
				}
				if opts.InterimResults {
					if !r.send(ctx, sess, events, Event{Transcript: line}) {
						return
					}
				}
				if !r.send(ctx, sess, events, Event{Transcript: line, Final: true}) {
					return
				}
				if !opts.Continuous {
					return
				}
			}
		}
	}()

	return events, nil
}

func (r *LineRecognizer) send(ctx context.Context, sess *lineSession, events chan<- Event, ev Event) bool {
	select {
	case events <- ev:
		return true
	case <-ctx.Done():
		return false
	case <-sess.stop:
		return false
	}
}

func (r *LineRecognizer) finish(sess *lineSession) {
	r.mu.Lock()
	if r.session == sess {
		r.session = nil
	}
	r.mu.Unlock()
}

// Stop ends the active session, if any, and returns once the engine is
// free for the next Start.
func (r *LineRecognizer) Stop() error {
	r.mu.Lock()
	sess := r.session
	r.mu.Unlock()
	if sess != nil {
		sess.end()
		<-sess.done
	}
	return nil
}

func (r *LineRecognizer) startReader() {
	r.lines = make(chan string)
	go func() {
		defer close(r.lines)
		scanner := bufio.NewScanner(r.in)
		for scanner.Scan() {
			line := strings.TrimSpace(scanner.Text())
			if line == "" {
				continue
			}
			r.lines <- line
		}
	}()
}
