package processor

import (
	"context"
	"os"
	"time"

	"go.uber.org/zap"

	"codeberg.org/snonux/describeit/internal/audio"
	"codeberg.org/snonux/describeit/internal/cli"
	"codeberg.org/snonux/describeit/internal/logging"
	"codeberg.org/snonux/describeit/internal/stt"
	"codeberg.org/snonux/describeit/internal/upload"
)

// BuildEngines creates the recognition and synthesis engines selected by
// flags. Engines that cannot be set up on this system are left nil or
// unavailable so the application still starts; only configuration errors
// are returned.
func BuildEngines(ctx context.Context, flags *cli.Flags, log *zap.Logger) (Engines, error) {
	log = logging.OrNop(log)
	var e Engines

	voiceProvider := flags.VoiceProvider
	if flags.CommandsStdin {
		voiceProvider = "stdin"
	}
	rec, err := stt.NewRecognizer(ctx, stt.Config{
		Provider:    voiceProvider,
		OpenAIKey:   cli.GetOpenAIKey(),
		GeminiKey:   cli.GetGeminiKey(),
		GeminiModel: flags.GeminiModel,
		ClipLength:  time.Duration(flags.ClipSeconds) * time.Second,
		Input:       os.Stdin,
	}, log.Named("stt"))
	if err != nil {
		return e, err
	}
	e.Recognizer = rec
	log.Debug("speech recognition engine", zap.String("engine", rec.Name()))

	cfg := providerConfig(flags)
	if cfg.EnableCache && cfg.CacheDir != "" {
		cache, err := audio.OpenCache(cfg.CacheDir)
		if err != nil {
			log.Warn("speech cache disabled", zap.String("dir", cfg.CacheDir), zap.Error(err))
		} else {
			e.Cache = cache
		}
	}

	provider, err := speechProvider(cfg, log.Named("tts"))
	if err != nil {
		log.Warn("text-to-speech unavailable", zap.Error(err))
	} else {
		e.Synthesizer = audio.NewSynthesizer(provider, audio.NewPlayer(), e.Cache, cfg.OutputFormat, log.Named("tts"))
		log.Debug("speech synthesis engine", zap.String("engine", provider.Name()))
	}

	e.Describer = upload.StaticDescriber{}
	return e, nil
}

func providerConfig(flags *cli.Flags) *audio.Config {
	cfg := audio.DefaultProviderConfig()
	cfg.Provider = flags.SpeechProvider
	cfg.OutputFormat = flags.AudioFormat
	cfg.OpenAIKey = cli.GetOpenAIKey()
	cfg.OpenAIModel = flags.OpenAIModel
	cfg.OpenAIVoice = flags.OpenAIVoice
	cfg.OpenAISpeed = flags.OpenAISpeed
	if flags.OpenAIInstruction != "" {
		cfg.OpenAIInstruction = flags.OpenAIInstruction
	}
	cfg.ESpeakSpeed = flags.ESpeakSpeed
	cfg.CacheDir = flags.CacheDir
	cfg.EnableCache = !flags.NoCache
	return cfg
}

// speechProvider prefers OpenAI with espeak-ng as fallback. Without an API
// key espeak-ng is used on its own.
func speechProvider(cfg *audio.Config, log *zap.Logger) (audio.Provider, error) {
	if cfg.Provider != "openai" {
		return audio.NewProvider(cfg, log)
	}
	if cfg.OpenAIKey == "" {
		log.Info("no OpenAI API key configured, using espeak-ng")
		local := *cfg
		local.Provider = "espeak"
		return audio.NewProvider(&local, log)
	}

	primary, err := audio.NewProvider(cfg, log)
	if err != nil {
		return nil, err
	}
	fallback, err := audio.NewESpeakProvider(&audio.ESpeakConfig{Speed: cfg.ESpeakSpeed})
	if err != nil {
		log.Debug("espeak-ng fallback unavailable", zap.Error(err))
		return primary, nil
	}
	return audio.NewProviderWithFallback(primary, fallback, log), nil
}
