package cli

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"codeberg.org/snonux/describeit/internal"
)

// CreateRootCommand creates and configures the root cobra command
func CreateRootCommand(flags *Flags) *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "describeit [file...]",
		Short: "Accessible document and image descriptions",
		Long: `describeit describes documents and images and reads the description
aloud. Display theme, text size and font can be adjusted, and the whole
interface can be driven by voice commands.

Examples:
  describeit                              # Launch interactive GUI (default)
  describeit report.pdf photo.png         # Describe files via CLI
  describeit --speak report.pdf           # ... and read the description aloud
  describeit --batch files.txt            # Describe every file listed in a file
  describeit --commands-stdin report.pdf  # Type voice commands on stdin`,
		Args:    cobra.ArbitraryArgs,
		Version: internal.Version,
	}

	// Set up flags
	setupFlags(rootCmd, flags)

	return rootCmd
}

// DefaultCacheDir is where rendered speech is kept between runs
func DefaultCacheDir() string {
	if dir, err := os.UserCacheDir(); err == nil {
		return filepath.Join(dir, "describeit", "speech")
	}
	home, _ := os.UserHomeDir()
	return filepath.Join(home, ".cache", "describeit", "speech")
}

func setupFlags(cmd *cobra.Command, flags *Flags) {
	// Global flags
	cmd.PersistentFlags().StringVar(&flags.CfgFile, "config", "", "config file (default is $HOME/.describeit.yaml)")
	cmd.PersistentFlags().BoolVar(&flags.Debug, "debug", false, "Enable debug logging")

	// Local flags
	cmd.Flags().StringVar(&flags.BatchFile, "batch", "", "Describe files listed in a file (one path per line, optional 'image =' prefix)")
	cmd.Flags().BoolVar(&flags.Speak, "speak", false, "Read each description aloud in CLI mode")
	cmd.Flags().BoolVar(&flags.SpeakNotices, "speak-notices", false, "Also speak upload completion notices")
	cmd.Flags().BoolVar(&flags.CommandsStdin, "commands-stdin", false, "Read voice commands as lines of text from stdin")
	cmd.Flags().BoolVar(&flags.ListModels, "list-models", false, "List OpenAI speech models available for the current API key")
	cmd.Flags().BoolVar(&flags.ClearCache, "clear-cache", false, "Remove all cached speech audio")
	cmd.Flags().BoolVar(&flags.CacheStats, "cache-stats", false, "Show speech cache statistics")

	// Display flags
	cmd.Flags().StringVar(&flags.Theme, "theme", flags.Theme, "Colour theme: default, dark, high-contrast, yellow-black")
	cmd.Flags().IntVar(&flags.TextSize, "text-size", flags.TextSize, "Text size in pixels (12 to 32)")
	cmd.Flags().StringVar(&flags.Font, "font", flags.Font, "Font family: sans, serif, mono, dyslexic")
	cmd.Flags().StringVar(&flags.DyslexicFont, "dyslexic-font", "", "Path to a TTF file used for the dyslexic font family")

	// Voice command flags
	cmd.Flags().StringVar(&flags.VoiceProvider, "voice-provider", flags.VoiceProvider, "Speech recognition: openai, gemini, stdin, none")
	cmd.Flags().StringVar(&flags.VoiceLanguage, "language", flags.VoiceLanguage, "Voice language: en-US, en-GB, es-ES, fr-FR, de-DE")
	cmd.Flags().BoolVar(&flags.Continuous, "continuous", false, "Keep listening after each command")
	cmd.Flags().IntVar(&flags.ClipSeconds, "clip-seconds", flags.ClipSeconds, "Length of each recorded voice clip")
	cmd.Flags().StringVar(&flags.GeminiModel, "gemini-model", flags.GeminiModel, "Gemini model used for transcription")

	// Speech flags
	cmd.Flags().StringVar(&flags.SpeechProvider, "speech-provider", flags.SpeechProvider, "Text-to-speech: openai, espeak")
	cmd.Flags().StringVarP(&flags.AudioFormat, "format", "f", flags.AudioFormat, "Audio format (wav or mp3)")
	cmd.Flags().StringVar(&flags.OpenAIModel, "openai-model", flags.OpenAIModel, "OpenAI TTS model: tts-1, tts-1-hd, gpt-4o-mini-tts")
	cmd.Flags().StringVar(&flags.OpenAIVoice, "openai-voice", flags.OpenAIVoice, "OpenAI voice: alloy, ash, ballad, coral, echo, fable, onyx, nova, sage, shimmer, verse")
	cmd.Flags().Float64Var(&flags.OpenAISpeed, "openai-speed", flags.OpenAISpeed, "OpenAI speech speed (0.25 to 4.0, may be ignored by gpt-4o-mini-tts)")
	cmd.Flags().StringVar(&flags.OpenAIInstruction, "openai-instruction", "", "Voice instructions for gpt-4o-mini-tts model (e.g., 'speak slowly and warmly')")
	cmd.Flags().IntVar(&flags.ESpeakSpeed, "espeak-speed", flags.ESpeakSpeed, "espeak-ng speed in words per minute")
	cmd.Flags().StringVar(&flags.CacheDir, "cache-dir", DefaultCacheDir(), "Directory for cached speech audio")
	cmd.Flags().BoolVar(&flags.NoCache, "no-cache", false, "Do not cache rendered speech")

	// Upload simulation flags
	cmd.Flags().DurationVar(&flags.UploadTick, "upload-tick", flags.UploadTick, "Time between simulated progress steps")
	cmd.Flags().IntVar(&flags.UploadStep, "upload-step", flags.UploadStep, "Progress percentage per step")

	// Bind flags to viper
	bindFlagsToViper(cmd)
}

func bindFlagsToViper(cmd *cobra.Command) {
	viper.BindPFlag("debug", cmd.PersistentFlags().Lookup("debug"))
	viper.BindPFlag("ui.theme", cmd.Flags().Lookup("theme"))
	viper.BindPFlag("ui.text_size", cmd.Flags().Lookup("text-size"))
	viper.BindPFlag("ui.font", cmd.Flags().Lookup("font"))
	viper.BindPFlag("ui.dyslexic_font", cmd.Flags().Lookup("dyslexic-font"))
	viper.BindPFlag("voice.provider", cmd.Flags().Lookup("voice-provider"))
	viper.BindPFlag("voice.language", cmd.Flags().Lookup("language"))
	viper.BindPFlag("voice.continuous", cmd.Flags().Lookup("continuous"))
	viper.BindPFlag("voice.clip_seconds", cmd.Flags().Lookup("clip-seconds"))
	viper.BindPFlag("voice.gemini_model", cmd.Flags().Lookup("gemini-model"))
	viper.BindPFlag("speech.provider", cmd.Flags().Lookup("speech-provider"))
	viper.BindPFlag("speech.format", cmd.Flags().Lookup("format"))
	viper.BindPFlag("speech.openai_model", cmd.Flags().Lookup("openai-model"))
	viper.BindPFlag("speech.openai_voice", cmd.Flags().Lookup("openai-voice"))
	viper.BindPFlag("speech.openai_speed", cmd.Flags().Lookup("openai-speed"))
	viper.BindPFlag("speech.openai_instruction", cmd.Flags().Lookup("openai-instruction"))
	viper.BindPFlag("speech.espeak_speed", cmd.Flags().Lookup("espeak-speed"))
	viper.BindPFlag("speech.cache_dir", cmd.Flags().Lookup("cache-dir"))
	viper.BindPFlag("speech.no_cache", cmd.Flags().Lookup("no-cache"))
	viper.BindPFlag("speech.notices", cmd.Flags().Lookup("speak-notices"))
	viper.BindPFlag("upload.tick", cmd.Flags().Lookup("upload-tick"))
	viper.BindPFlag("upload.step", cmd.Flags().Lookup("upload-step"))
}

// InitConfig initializes viper configuration
func InitConfig(cfgFile string) {
	if cfgFile != "" {
		// Use config file from the flag
		viper.SetConfigFile(cfgFile)
	} else {
		// Find home directory
		home, err := os.UserHomeDir()
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error getting home directory: %v\n", err)
			return
		}

		// Search config in home directory with name ".describeit" (without extension)
		viper.AddConfigPath(home)
		viper.AddConfigPath(".")
		viper.SetConfigType("yaml")
		viper.SetConfigName(".describeit")
	}

	// Environment variables, e.g. DESCRIBEIT_UI_THEME for ui.theme
	viper.SetEnvPrefix("DESCRIBEIT")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()

	// Read config file
	if err := viper.ReadInConfig(); err == nil {
		fmt.Fprintln(os.Stderr, "Using config file:", viper.ConfigFileUsed())
	}
}

// GetOpenAIKey retrieves the OpenAI API key from environment or config
func GetOpenAIKey() string {
	// First check environment variable
	if key := os.Getenv("OPENAI_API_KEY"); key != "" {
		return key
	}

	// Then check config file
	return viper.GetString("speech.openai_key")
}

// GetGeminiKey retrieves the Gemini API key from environment or config
func GetGeminiKey() string {
	for _, env := range []string{"GEMINI_API_KEY", "GOOGLE_API_KEY"} {
		if key := os.Getenv(env); key != "" {
			return key
		}
	}

	return viper.GetString("voice.gemini_key")
}
