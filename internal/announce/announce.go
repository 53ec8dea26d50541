// Package announce implements the single polite live region. Every message
// overwrites the previous one; listeners (a status label, a console printer,
// a screen reader bridge) are told about each new message.
package announce

import (
	"sync"

	"go.uber.org/zap"

	"codeberg.org/snonux/describeit/internal/logging"
)

// Announcer publishes a message for assistive technology.
type Announcer interface {
	Announce(message string)
}

// Func adapts a plain function to the Announcer interface.
type Func func(message string)

// Announce calls f(message).
func (f Func) Announce(message string) { f(message) }

// Region is the live region. The zero value is not usable, use NewRegion.
type Region struct {
	mu        sync.Mutex
	message   string
	count     int
	listeners []func(string)
	log       *zap.Logger
}

// NewRegion creates an empty live region.
func NewRegion(log *zap.Logger) *Region {
	return &Region{log: logging.OrNop(log)}
}

// Announce replaces the region text and notifies listeners.
func (r *Region) Announce(message string) {
	r.mu.Lock()
	r.message = message
	r.count++
	listeners := append([]func(string){}, r.listeners...)
	r.mu.Unlock()

	r.log.Info("announce", zap.String("message", message))

	for _, fn := range listeners {
		fn(message)
	}
}

// Message returns the current region text.
func (r *Region) Message() string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.message
}

// Count returns how many announcements were made.
func (r *Region) Count() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.count
}

// Subscribe registers fn to receive every subsequent announcement.
func (r *Region) Subscribe(fn func(message string)) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.listeners = append(r.listeners, fn)
}
