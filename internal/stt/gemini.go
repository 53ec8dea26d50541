package stt

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"google.golang.org/genai"
)

// DefaultGeminiModel is used when no model is configured.
const DefaultGeminiModel = "gemini-2.0-flash"

// GeminiTranscriber sends recorded clips to a Gemini model for
// transcription.
type GeminiTranscriber struct {
	client *genai.Client
	model  string
}

// NewGeminiTranscriber creates a client for the Gemini API.
func NewGeminiTranscriber(ctx context.Context, apiKey, model string) (*GeminiTranscriber, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("Gemini API key is required")
	}
	if model == "" {
		model = DefaultGeminiModel
	}
	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create Gemini client: %w", err)
	}
	return &GeminiTranscriber{client: client, model: model}, nil
}

func (t *GeminiTranscriber) Name() string { return "gemini" }

func (t *GeminiTranscriber) Transcribe(ctx context.Context, audioFile, language string) (string, error) {
	data, err := os.ReadFile(audioFile)
	if err != nil {
		return "", fmt.Errorf("failed to read recording: %w", err)
	}

	parts := []*genai.Part{
		genai.NewPartFromText(transcriptionPrompt(language)),
		genai.NewPartFromBytes(data, audioMIMEType(audioFile)),
	}
	contents := []*genai.Content{genai.NewContentFromParts(parts, genai.RoleUser)}

	resp, err := t.client.Models.GenerateContent(ctx, t.model, contents, nil)
	if err != nil {
		return "", fmt.Errorf("Gemini transcription error: %w", err)
	}
	return strings.TrimSpace(resp.Text()), nil
}

func transcriptionPrompt(language string) string {
	return fmt.Sprintf("Transcribe the spoken %s in this recording verbatim. "+
		"Reply with the transcript only, without quotes or commentary. "+
		"Reply with an empty message if nothing was said.", LanguageName(language))
}

func audioMIMEType(file string) string {
	switch strings.ToLower(filepath.Ext(file)) {
	case ".mp3":
		return "audio/mp3"
	case ".flac":
		return "audio/flac"
	case ".ogg":
		return "audio/ogg"
	default:
		return "audio/wav"
	}
}
