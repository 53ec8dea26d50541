package stt

import (
	"context"

	"github.com/sony/gobreaker"
	"go.uber.org/zap"

	"codeberg.org/snonux/describeit/internal/breaker"
)

// Transcriber turns a recorded audio file into text.
type Transcriber interface {
	Name() string
	Transcribe(ctx context.Context, audioFile, language string) (string, error)
}

// BreakerTranscriber stops calling a failing transcription service for a
// while after repeated errors.
type BreakerTranscriber struct {
	next Transcriber
	cb   *gobreaker.CircuitBreaker
}

// WithBreaker wraps t in a circuit breaker.
func WithBreaker(t Transcriber, log *zap.Logger) *BreakerTranscriber {
	return &BreakerTranscriber{
		next: t,
		cb:   breaker.New("stt-"+t.Name(), breaker.Settings{}, log),
	}
}

func (b *BreakerTranscriber) Name() string { return b.next.Name() }

func (b *BreakerTranscriber) Transcribe(ctx context.Context, audioFile, language string) (string, error) {
	return breaker.Call(b.cb, func() (string, error) {
		return b.next.Transcribe(ctx, audioFile, language)
	})
}
