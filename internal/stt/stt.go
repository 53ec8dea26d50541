// Package stt provides speech recognition engines for voice commands.
//
// A Recognizer runs one session at a time and reports transcripts on a
// channel that is closed when the session ends. Engines are created once
// and reused for every session.
package stt

import (
	"context"
	"errors"
	"strings"
)

var (
	// ErrUnavailable means the engine cannot run on this system.
	ErrUnavailable = errors.New("speech recognition unavailable")
	// ErrBusy is returned by Start while a session is already running.
	ErrBusy = errors.New("recognition session already active")
)

// Event is a single recognition result. A non-nil Err ends the session.
type Event struct {
	Transcript string
	Final      bool
	Err        error
}

// Options configure a recognition session.
type Options struct {
	Language       string // BCP 47 tag such as "en-US"
	Continuous     bool   // keep listening after the first final result
	InterimResults bool   // report partial transcripts
}

// Recognizer is a speech recognition engine.
type Recognizer interface {
	Name() string
	IsAvailable() error
	// Start begins a session. The returned channel is closed when the
	// session ends, whether by Stop, ctx, an error or end of utterance.
	Start(ctx context.Context, opts Options) (<-chan Event, error)
	Stop() error
}

// Languages lists the recognition languages offered to the user.
func Languages() []string {
	return []string{"en-US", "en-GB", "es-ES", "fr-FR", "de-DE"}
}

// LanguageName returns a human readable name for a language tag.
func LanguageName(tag string) string {
	switch tag {
	case "en-US":
		return "English (US)"
	case "en-GB":
		return "English (UK)"
	case "es-ES":
		return "Spanish"
	case "fr-FR":
		return "French"
	case "de-DE":
		return "German"
	default:
		return tag
	}
}

// baseLanguage reduces "en-US" to "en" for APIs that take ISO-639-1 codes.
func baseLanguage(tag string) string {
	base, _, _ := strings.Cut(tag, "-")
	return strings.ToLower(base)
}

// Unavailable is the engine used when no recognizer could be configured.
type Unavailable struct {
	Reason string
}

func (u Unavailable) Name() string { return "none" }

func (u Unavailable) IsAvailable() error {
	if u.Reason == "" {
		return ErrUnavailable
	}
	return errors.Join(ErrUnavailable, errors.New(u.Reason))
}

func (u Unavailable) Start(context.Context, Options) (<-chan Event, error) {
	return nil, u.IsAvailable()
}

func (u Unavailable) Stop() error { return nil }
