package audio

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"codeberg.org/snonux/describeit/internal/logging"
)

// Provider defines the interface for text-to-speech providers
type Provider interface {
	// GenerateAudio renders text spoken in language into outputFile
	GenerateAudio(ctx context.Context, text, language, outputFile string) error

	// Name returns the provider name
	Name() string

	// IsAvailable checks if the provider is properly configured and available
	IsAvailable() error
}

// Config holds common configuration for audio providers
type Config struct {
	Provider     string // Provider name: "openai" or "espeak"
	OutputFormat string // Output format: "mp3" or "wav"

	// OpenAI-specific settings
	OpenAIKey         string
	OpenAIModel       string  // "tts-1", "tts-1-hd", or "gpt-4o-mini-tts"
	OpenAIVoice       string  // "alloy", "ash", "ballad", "coral", "echo", "fable", "onyx", "nova", "sage", "shimmer", "verse"
	OpenAISpeed       float64 // 0.25 to 4.0
	OpenAIInstruction string  // Voice instructions for gpt-4o-mini-tts model

	// espeak-ng settings
	ESpeakSpeed int // words per minute

	// Speech cache
	CacheDir    string
	EnableCache bool
}

// DefaultProviderConfig returns default configuration
func DefaultProviderConfig() *Config {
	return &Config{
		Provider:          "openai",
		OutputFormat:      "mp3",
		OpenAIModel:       "gpt-4o-mini-tts",
		OpenAIVoice:       "alloy",
		OpenAISpeed:       1.0,
		OpenAIInstruction: "Read the text calmly and clearly for a listener using a screen reader. Keep a steady pace and pause briefly between sentences.",
		ESpeakSpeed:       160,
		EnableCache:       true,
	}
}

// NewProvider creates the appropriate audio provider based on configuration
func NewProvider(config *Config, log *zap.Logger) (Provider, error) {
	if config == nil {
		config = DefaultProviderConfig()
	}

	switch config.Provider {
	case "openai":
		if config.OpenAIKey == "" {
			return nil, fmt.Errorf("OpenAI API key is required")
		}
		return NewOpenAIProvider(config, log)

	case "espeak", "espeak-ng":
		return NewESpeakProvider(&ESpeakConfig{Speed: config.ESpeakSpeed})

	default:
		return nil, fmt.Errorf("unknown audio provider: %s", config.Provider)
	}
}

// ProviderWithFallback wraps a primary provider with a fallback option
type ProviderWithFallback struct {
	primary  Provider
	fallback Provider
	log      *zap.Logger
}

// NewProviderWithFallback creates a provider that falls back to secondary if primary fails
func NewProviderWithFallback(primary, fallback Provider, log *zap.Logger) Provider {
	return &ProviderWithFallback{
		primary:  primary,
		fallback: fallback,
		log:      logging.OrNop(log),
	}
}

// GenerateAudio tries primary provider first, falls back to secondary on error
func (p *ProviderWithFallback) GenerateAudio(ctx context.Context, text, language, outputFile string) error {
	err := p.primary.GenerateAudio(ctx, text, language, outputFile)
	if err != nil {
		if ctx.Err() != nil {
			return err
		}
		p.log.Warn("primary speech provider failed",
			zap.String("primary", p.primary.Name()),
			zap.String("fallback", p.fallback.Name()),
			zap.Error(err))

		return p.fallback.GenerateAudio(ctx, text, language, outputFile)
	}
	return nil
}

// Name returns the provider name
func (p *ProviderWithFallback) Name() string {
	return fmt.Sprintf("%s (fallback: %s)", p.primary.Name(), p.fallback.Name())
}

// IsAvailable checks if at least one provider is available
func (p *ProviderWithFallback) IsAvailable() error {
	primaryErr := p.primary.IsAvailable()
	if primaryErr == nil {
		return nil
	}

	fallbackErr := p.fallback.IsAvailable()
	if fallbackErr == nil {
		return nil
	}

	return fmt.Errorf("both providers unavailable: primary=%v, fallback=%v",
		primaryErr, fallbackErr)
}

// Signature identifies the primary provider's voice settings
func (p *ProviderWithFallback) Signature() string {
	if sg, ok := p.primary.(signer); ok {
		return sg.Signature()
	}
	return p.primary.Name()
}
