package stt

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"go.uber.org/zap"

	"codeberg.org/snonux/describeit/internal/logging"
)

// DefaultClipLength is how long each recorded utterance lasts.
const DefaultClipLength = 4 * time.Second

// MicRecognizer records fixed-length microphone clips and sends each one
// to a Transcriber.
type MicRecognizer struct {
	recorder    Recorder
	transcriber Transcriber
	clip        time.Duration
	tempDir     string
	log         *zap.Logger

	mu      sync.Mutex
	session *micSession
}

type micSession struct {
	cancel context.CancelFunc
	done   chan struct{}
}

// NewMicRecognizer combines a recorder with a transcription backend.
func NewMicRecognizer(rec Recorder, tr Transcriber, clip time.Duration, log *zap.Logger) *MicRecognizer {
	if clip <= 0 {
		clip = DefaultClipLength
	}
	return &MicRecognizer{
		recorder:    rec,
		transcriber: tr,
		clip:        clip,
		tempDir:     os.TempDir(),
		log:         logging.OrNop(log),
	}
}

func (m *MicRecognizer) Name() string {
	if m.transcriber == nil {
		return "microphone"
	}
	return "microphone+" + m.transcriber.Name()
}

func (m *MicRecognizer) IsAvailable() error {
	if m.transcriber == nil {
		return fmt.Errorf("%w: no transcription backend configured", ErrUnavailable)
	}
	if m.recorder == nil {
		return fmt.Errorf("%w: no recorder configured", ErrUnavailable)
	}
	return m.recorder.IsAvailable()
}

// Start records and transcribes clips until Stop, ctx cancellation, an
// error, or the end of the first clip in non-continuous mode.
func (m *MicRecognizer) Start(ctx context.Context, opts Options) (<-chan Event, error) {
	if err := m.IsAvailable(); err != nil {
		return nil, err
	}

	m.mu.Lock()
	if m.session != nil {
		m.mu.Unlock()
		return nil, ErrBusy
	}
	sessCtx, cancel := context.WithCancel(ctx)
	sess := &micSession{cancel: cancel, done: make(chan struct{})}
	m.session = sess
	m.mu.Unlock()

	events := make(chan Event)
	go func() {
		defer close(sess.done)
		defer close(events)
		defer m.finish(sess)

		for n := 0; ; n++ {
			text, err := m.listenOnce(sessCtx, opts.Language, n)
			if sessCtx.Err() != nil {
				return
			}
			if err != nil {
				m.log.Warn("recognition failed", zap.Error(err))
				select {
				case events <- Event{Err: err}:
				case <-sessCtx.Done():
				}
				return
			}
			if text == "" {
				if !opts.Continuous {
					return
				}
				continue
			}
			select {
			case events <- Event{Transcript: text, Final: true}:
			case <-sessCtx.Done():
				return
			}
			if !opts.Continuous {
				return
			}
		}
	}()

	return events, nil
}

func (m *MicRecognizer) listenOnce(ctx context.Context, language string, n int) (string, error) {
	clipFile := filepath.Join(m.tempDir, fmt.Sprintf("describeit-clip-%d-%d.wav", os.Getpid(), n))
	defer os.Remove(clipFile)

	if err := m.recorder.Record(ctx, clipFile, m.clip); err != nil {
		if errors.Is(err, context.Canceled) {
			return "", err
		}
		return "", fmt.Errorf("failed to record clip: %w", err)
	}

	start := time.Now()
	text, err := m.transcriber.Transcribe(ctx, clipFile, language)
	if err != nil {
		return "", err
	}
	m.log.Debug("clip transcribed",
		zap.String("engine", m.transcriber.Name()),
		zap.Duration("took", time.Since(start)),
		zap.String("text", text))
	return text, nil
}

func (m *MicRecognizer) finish(sess *micSession) {
	sess.cancel()
	m.mu.Lock()
	if m.session == sess {
		m.session = nil
	}
	m.mu.Unlock()
}

// Stop cancels the running session and waits until the recorder and
// transcriber have let go of it.
func (m *MicRecognizer) Stop() error {
	m.mu.Lock()
	sess := m.session
	m.mu.Unlock()
	if sess != nil {
		sess.cancel()
		<-sess.done
	}
	return nil
}
