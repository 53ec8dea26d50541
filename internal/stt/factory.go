package stt

import (
	"context"
	"fmt"
	"io"
	"time"

	"go.uber.org/zap"
)

// Config selects and configures a recognition engine.
type Config struct {
	Provider    string // "openai", "gemini", "stdin" or "none"
	OpenAIKey   string
	GeminiKey   string
	GeminiModel string
	ClipLength  time.Duration
	Input       io.Reader // used by the "stdin" provider
}

// NewRecognizer builds the engine named by cfg.Provider. Remote
// transcribers are wrapped in a circuit breaker. A missing API key yields
// an Unavailable engine rather than an error so the application can still
// start and report the problem when voice control is used.
func NewRecognizer(ctx context.Context, cfg Config, log *zap.Logger) (Recognizer, error) {
	switch cfg.Provider {
	case "", "none":
		return Unavailable{Reason: "voice commands are disabled"}, nil
	case "stdin", "text":
		return NewLineRecognizer(cfg.Input), nil
	case "openai":
		if cfg.OpenAIKey == "" {
			return Unavailable{Reason: "OpenAI API key not configured"}, nil
		}
		tr, err := NewOpenAITranscriber(cfg.OpenAIKey, "")
		if err != nil {
			return nil, err
		}
		return NewMicRecognizer(NewCommandRecorder(), WithBreaker(tr, log), cfg.ClipLength, log), nil
	case "gemini":
		if cfg.GeminiKey == "" {
			return Unavailable{Reason: "Gemini API key not configured"}, nil
		}
		tr, err := NewGeminiTranscriber(ctx, cfg.GeminiKey, cfg.GeminiModel)
		if err != nil {
			return nil, err
		}
		return NewMicRecognizer(NewCommandRecorder(), WithBreaker(tr, log), cfg.ClipLength, log), nil
	default:
		return nil, fmt.Errorf("unknown voice provider: %s", cfg.Provider)
	}
}
