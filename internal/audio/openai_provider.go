package audio

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/sashabaranov/go-openai"
	"github.com/sony/gobreaker"
	"go.uber.org/zap"

	"codeberg.org/snonux/describeit/internal/breaker"
	"codeberg.org/snonux/describeit/internal/logging"
)

// OpenAIProvider implements Provider interface for OpenAI TTS
type OpenAIProvider struct {
	client *openai.Client
	config *Config
	cb     *gobreaker.CircuitBreaker
	log    *zap.Logger
}

// NewOpenAIProvider creates a new OpenAI TTS provider
func NewOpenAIProvider(config *Config, log *zap.Logger) (Provider, error) {
	if config.OpenAIKey == "" {
		return nil, fmt.Errorf("OpenAI API key is required")
	}

	return &OpenAIProvider{
		client: openai.NewClient(config.OpenAIKey),
		config: config,
		cb:     breaker.New("tts-openai", breaker.Settings{}, log),
		log:    logging.OrNop(log),
	}, nil
}

// GenerateAudio generates audio using OpenAI TTS. The model detects the
// language from the text, so language only feeds the voice instruction.
func (p *OpenAIProvider) GenerateAudio(ctx context.Context, text, language, outputFile string) error {
	if err := ValidateText(text); err != nil {
		return err
	}

	req := openai.CreateSpeechRequest{
		Model:          openai.SpeechModel(p.config.OpenAIModel),
		Input:          PrepareText(text),
		Voice:          openai.SpeechVoice(p.config.OpenAIVoice),
		Speed:          p.config.OpenAISpeed,
		ResponseFormat: responseFormat(outputFile),
	}

	// Instructions are only honoured by the gpt-4o family
	if p.supportsInstructions() && p.config.OpenAIInstruction != "" {
		req.Instructions = p.instruction(language)
	}

	p.log.Debug("OpenAI TTS request",
		zap.String("model", p.config.OpenAIModel),
		zap.String("voice", p.config.OpenAIVoice),
		zap.Float64("speed", p.config.OpenAISpeed),
		zap.Int("chars", len(req.Input)))

	response, err := breaker.Call(p.cb, func() (io.ReadCloser, error) {
		resp, err := p.client.CreateSpeech(ctx, req)
		if err != nil {
			return nil, err
		}
		return resp, nil
	})
	if err != nil {
		// Check if it's a model access error
		if strings.Contains(err.Error(), "does not have access to model") && p.supportsInstructions() {
			return fmt.Errorf("OpenAI TTS API error: %w\nNote: The %s model requires access. Try using --openai-model tts-1-hd instead", err, p.config.OpenAIModel)
		}
		return fmt.Errorf("OpenAI TTS API error: %w", err)
	}
	defer response.Close()

	// Ensure output directory exists
	dir := filepath.Dir(outputFile)
	if dir != "" && dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("failed to create output directory: %w", err)
		}
	}

	out, err := os.Create(outputFile)
	if err != nil {
		return fmt.Errorf("failed to create output file: %w", err)
	}
	defer out.Close()

	written, err := io.Copy(out, response)
	if err != nil {
		return fmt.Errorf("failed to write audio file: %w", err)
	}

	if written == 0 {
		return fmt.Errorf("no audio data received from OpenAI")
	}

	return nil
}

// Name returns the provider name
func (p *OpenAIProvider) Name() string {
	return "openai"
}

// IsAvailable checks if the OpenAI API is accessible
func (p *OpenAIProvider) IsAvailable() error {
	if p.config.OpenAIKey == "" {
		return fmt.Errorf("OpenAI API key not configured")
	}

	// A test call would use credits, so only the key is checked
	return nil
}

// Signature identifies the voice settings for cache keys
func (p *OpenAIProvider) Signature() string {
	sig := fmt.Sprintf("openai/%s/%s/%.2f", p.config.OpenAIModel, p.config.OpenAIVoice, p.config.OpenAISpeed)
	if p.supportsInstructions() {
		sig += "/" + p.config.OpenAIInstruction
	}
	return sig
}

func (p *OpenAIProvider) supportsInstructions() bool {
	return p.config.OpenAIModel == "gpt-4o-mini-tts" || p.config.OpenAIModel == "gpt-4o-mini-audio-preview"
}

func (p *OpenAIProvider) instruction(language string) string {
	if language == "" {
		return p.config.OpenAIInstruction
	}
	return fmt.Sprintf("%s The text is in %s.", p.config.OpenAIInstruction, language)
}

// responseFormat picks the API format from the output file extension
func responseFormat(outputFile string) openai.SpeechResponseFormat {
	switch strings.ToLower(filepath.Ext(outputFile)) {
	case ".wav":
		return openai.SpeechResponseFormatWav
	case ".opus":
		return openai.SpeechResponseFormatOpus
	case ".aac":
		return openai.SpeechResponseFormatAac
	case ".flac":
		return openai.SpeechResponseFormatFlac
	default:
		return openai.SpeechResponseFormatMp3
	}
}
