package audio

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"go.uber.org/zap"

	"codeberg.org/snonux/describeit/internal/logging"
	"codeberg.org/snonux/describeit/internal/speech"
)

// AudioPlayer plays a rendered file
type AudioPlayer interface {
	Play(ctx context.Context, file string) error
	IsAvailable() error
}

type signer interface {
	Signature() string
}

// Synthesizer renders text with a Provider, caches the result and plays
// it back. It implements speech.Synthesizer.
type Synthesizer struct {
	provider Provider
	player   AudioPlayer
	cache    *Cache
	format   string
	tempDir  string
	log      *zap.Logger
}

// NewSynthesizer combines provider, player and an optional cache
func NewSynthesizer(provider Provider, player AudioPlayer, cache *Cache, format string, log *zap.Logger) *Synthesizer {
	if format == "" {
		format = "mp3"
	}
	return &Synthesizer{
		provider: provider,
		player:   player,
		cache:    cache,
		format:   format,
		tempDir:  os.TempDir(),
		log:      logging.OrNop(log),
	}
}

// Name returns the provider name
func (s *Synthesizer) Name() string {
	return s.provider.Name()
}

// IsAvailable checks both the provider and the player
func (s *Synthesizer) IsAvailable() error {
	if err := s.provider.IsAvailable(); err != nil {
		return err
	}
	return s.player.IsAvailable()
}

// Speak renders and plays text in the background
func (s *Synthesizer) Speak(ctx context.Context, text, lang string) (speech.Utterance, error) {
	if err := ValidateText(text); err != nil {
		return nil, err
	}

	ctx, cancel := context.WithCancel(ctx)
	u := &utterance{done: make(chan error, 1), cancel: cancel}

	go func() {
		defer cancel()
		u.finish(s.renderAndPlay(ctx, text, lang))
	}()

	return u, nil
}

func (s *Synthesizer) renderAndPlay(ctx context.Context, text, lang string) error {
	file, cleanup, err := s.Render(ctx, text, lang)
	if err != nil {
		return err
	}
	defer cleanup()

	return s.player.Play(ctx, file)
}

// Render produces an audio file for text, from the cache when possible.
// The returned cleanup removes temporary files and must always be called.
func (s *Synthesizer) Render(ctx context.Context, text, lang string) (string, func(), error) {
	noop := func() {}
	key := Key(s.signature(), lang, text)

	if s.cache != nil {
		path, ok, err := s.cache.Lookup(ctx, key)
		if err != nil {
			s.log.Warn("speech cache lookup failed", zap.Error(err))
		} else if ok {
			s.log.Debug("speech cache hit", zap.String("key", key))
			return path, noop, nil
		}
	}

	tmp := filepath.Join(s.tempDir, fmt.Sprintf("describeit-%s.%s", key, s.format))
	if err := s.provider.GenerateAudio(ctx, text, lang, tmp); err != nil {
		os.Remove(tmp)
		if ctx.Err() != nil {
			return "", noop, ctx.Err()
		}
		return "", noop, fmt.Errorf("failed to generate speech with %s: %w", s.provider.Name(), err)
	}
	removeTmp := func() { os.Remove(tmp) }

	if s.cache == nil {
		return tmp, removeTmp, nil
	}
	path, err := s.cache.Store(ctx, key, lang, text, tmp)
	if err != nil {
		s.log.Warn("failed to cache speech", zap.Error(err))
		return tmp, removeTmp, nil
	}
	removeTmp()
	return path, noop, nil
}

func (s *Synthesizer) signature() string {
	if sg, ok := s.provider.(signer); ok {
		return sg.Signature()
	}
	return s.provider.Name()
}

type utterance struct {
	done   chan error
	once   sync.Once
	cancel context.CancelFunc
}

func (u *utterance) Done() <-chan error { return u.done }

func (u *utterance) Cancel() { u.cancel() }

func (u *utterance) finish(err error) {
	u.once.Do(func() { u.done <- err })
}
