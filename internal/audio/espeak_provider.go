package audio

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"
)

// ESpeakProvider implements Provider interface for espeak-ng
type ESpeakProvider struct {
	espeak *ESpeak
}

// NewESpeakProvider creates a new espeak-ng provider
func NewESpeakProvider(config *ESpeakConfig) (Provider, error) {
	espeak, err := New(config)
	if err != nil {
		return nil, err
	}

	return &ESpeakProvider{espeak: espeak}, nil
}

// GenerateAudio generates audio using espeak-ng
func (p *ESpeakProvider) GenerateAudio(ctx context.Context, text, language, outputFile string) error {
	if err := ValidateText(text); err != nil {
		return err
	}
	text = PrepareText(text)

	switch strings.ToLower(filepath.Ext(outputFile)) {
	case ".wav":
		return p.espeak.GenerateWAV(ctx, text, language, outputFile)
	case ".mp3":
		return p.espeak.GenerateMP3(ctx, text, language, outputFile)
	default:
		return fmt.Errorf("espeak-ng cannot write %s files", filepath.Ext(outputFile))
	}
}

// Name returns the provider name
func (p *ESpeakProvider) Name() string {
	return "espeak-ng"
}

// IsAvailable checks if espeak-ng is installed
func (p *ESpeakProvider) IsAvailable() error {
	return checkESpeakInstalled()
}

// Signature identifies the voice settings for cache keys
func (p *ESpeakProvider) Signature() string {
	c := p.espeak.config
	return fmt.Sprintf("espeak-ng/%d/%d/%d/%d", c.Speed, c.Pitch, c.Amplitude, c.WordGap)
}
