package logging

import (
	"strings"
	"sync"
)

// Buffer keeps the most recent log lines and notifies subscribers of each
// new line. It is an io.Writer so it can be passed to New as a sink.
type Buffer struct {
	mu        sync.Mutex
	lines     []string
	max       int
	listeners []func(line string)
}

// NewBuffer keeps at most max lines.
func NewBuffer(max int) *Buffer {
	if max <= 0 {
		max = 1000
	}
	return &Buffer{max: max}
}

// Write stores each non-empty line in p.
func (b *Buffer) Write(p []byte) (int, error) {
	var added []string
	for _, line := range strings.Split(string(p), "\n") {
		if line = strings.TrimRight(line, "\r"); line != "" {
			added = append(added, line)
		}
	}
	if len(added) == 0 {
		return len(p), nil
	}

	b.mu.Lock()
	b.lines = append(b.lines, added...)
	if over := len(b.lines) - b.max; over > 0 {
		b.lines = append([]string(nil), b.lines[over:]...)
	}
	listeners := append([]func(string){}, b.listeners...)
	b.mu.Unlock()

	for _, line := range added {
		for _, fn := range listeners {
			fn(line)
		}
	}
	return len(p), nil
}

// Lines returns the buffered lines, oldest first.
func (b *Buffer) Lines() []string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return append([]string(nil), b.lines...)
}

// Subscribe registers fn for every line written after the call.
func (b *Buffer) Subscribe(fn func(line string)) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.listeners = append(b.listeners, fn)
}

// Clear drops all buffered lines.
func (b *Buffer) Clear() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.lines = nil
}
