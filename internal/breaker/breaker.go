// Package breaker configures the circuit breakers that guard remote speech
// APIs, so a failing OpenAI or Gemini endpoint is not hammered on every
// utterance.
package breaker

import (
	"errors"
	"time"

	"github.com/sony/gobreaker"
	"go.uber.org/zap"

	"codeberg.org/snonux/describeit/internal/logging"
)

// ErrOpen is returned while the breaker rejects calls.
var ErrOpen = errors.New("remote service temporarily disabled after repeated failures")

// Settings tunes a breaker. Zero values fall back to defaults.
type Settings struct {
	ConsecutiveFailures uint32        // failures that open the breaker (default 3)
	OpenTimeout         time.Duration // time spent open before a trial call (default 30s)
}

// New returns a breaker named after the service it protects.
func New(name string, s Settings, log *zap.Logger) *gobreaker.CircuitBreaker {
	log = logging.OrNop(log)
	if s.ConsecutiveFailures == 0 {
		s.ConsecutiveFailures = 3
	}
	if s.OpenTimeout == 0 {
		s.OpenTimeout = 30 * time.Second
	}
	threshold := s.ConsecutiveFailures

	return gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:        name,
		MaxRequests: 1,
		Timeout:     s.OpenTimeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= threshold
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			log.Warn("circuit breaker state changed",
				zap.String("breaker", name),
				zap.String("from", from.String()),
				zap.String("to", to.String()))
		},
	})
}

// Call runs fn through cb and translates breaker rejections into ErrOpen.
func Call[T any](cb *gobreaker.CircuitBreaker, fn func() (T, error)) (T, error) {
	out, err := cb.Execute(func() (interface{}, error) {
		return fn()
	})
	if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
		var zero T
		return zero, ErrOpen
	}
	if err != nil {
		var zero T
		return zero, err
	}
	v, _ := out.(T)
	return v, nil
}
