package models

import (
	"context"
	"errors"
	"fmt"
	"io"
	"sort"
	"strings"

	"github.com/sashabaranov/go-openai"
)

// ErrNoAPIKey is returned when no OpenAI key is configured
var ErrNoAPIKey = errors.New("OpenAI API key not found. Set OPENAI_API_KEY environment variable or configure speech.openai_key in .describeit.yaml")

// Categories groups model IDs by what describeit can use them for
type Categories struct {
	Speech        []string
	Transcription []string
	Other         int
}

// Categorize sorts model IDs into speech and transcription models
func Categorize(ids []string) Categories {
	var c Categories
	for _, id := range ids {
		switch {
		case strings.Contains(id, "transcribe") || strings.Contains(id, "whisper"):
			c.Transcription = append(c.Transcription, id)
		case strings.Contains(id, "tts") || strings.Contains(id, "audio"):
			c.Speech = append(c.Speech, id)
		default:
			c.Other++
		}
	}
	sort.Strings(c.Speech)
	sort.Strings(c.Transcription)
	return c
}

// Lister handles listing available OpenAI models
type Lister struct {
	apiKey string
	client *openai.Client
}

// NewLister creates a new model lister
func NewLister(apiKey string) *Lister {
	return &Lister{
		apiKey: apiKey,
		client: openai.NewClient(apiKey),
	}
}

// ListAvailableModels writes the categorized model list to w
func (l *Lister) ListAvailableModels(ctx context.Context, w io.Writer) error {
	if l.apiKey == "" {
		return ErrNoAPIKey
	}

	models, err := l.client.ListModels(ctx)
	if err != nil {
		return fmt.Errorf("failed to list models: %w", err)
	}

	ids := make([]string, 0, len(models.Models))
	for _, model := range models.Models {
		ids = append(ids, model.ID)
	}

	Print(w, Categorize(ids))
	return nil
}

// Print writes the categories in a human readable form
func Print(w io.Writer, c Categories) {
	fmt.Fprintln(w, "Available OpenAI Models:")

	fmt.Fprintln(w, "\nText-to-Speech Models (--openai-model):")
	printList(w, c.Speech, "No TTS models found")

	fmt.Fprintln(w, "\nTranscription Models (voice commands):")
	printList(w, c.Transcription, "No transcription models found")

	if c.Other > 0 {
		fmt.Fprintf(w, "\n... and %d other models\n", c.Other)
	}
}

func printList(w io.Writer, ids []string, empty string) {
	if len(ids) == 0 {
		fmt.Fprintf(w, "  %s\n", empty)
		return
	}
	for _, id := range ids {
		fmt.Fprintf(w, "  %s\n", id)
	}
}
