package cli

import (
	"time"

	"github.com/spf13/viper"
)

// Flags holds all command-line flag values
type Flags struct {
	// General flags
	CfgFile       string
	Debug         bool
	BatchFile     string
	Speak         bool
	SpeakNotices  bool
	CommandsStdin bool
	ListModels    bool
	ClearCache    bool
	CacheStats    bool

	// Display preferences
	Theme        string
	TextSize     int
	Font         string
	DyslexicFont string

	// Voice commands
	VoiceProvider string
	VoiceLanguage string
	Continuous    bool
	ClipSeconds   int
	GeminiModel   string
	Commands      map[string]string

	// Text-to-speech
	SpeechProvider    string
	AudioFormat       string
	OpenAIModel       string
	OpenAIVoice       string
	OpenAISpeed       float64
	OpenAIInstruction string
	ESpeakSpeed       int
	CacheDir          string
	NoCache           bool

	// Upload simulation
	UploadTick time.Duration
	UploadStep int
}

// NewFlags creates a new Flags instance with default values
func NewFlags() *Flags {
	return &Flags{
		Theme:          "default",
		TextSize:       16,
		Font:           "sans",
		VoiceProvider:  "openai",
		VoiceLanguage:  "en-US",
		ClipSeconds:    4,
		GeminiModel:    "gemini-2.0-flash",
		SpeechProvider: "openai",
		AudioFormat:    "mp3",
		OpenAIModel:    "gpt-4o-mini-tts",
		OpenAIVoice:    "alloy",
		OpenAISpeed:    1.0,
		ESpeakSpeed:    160,
		UploadTick:     200 * time.Millisecond,
		UploadStep:     10,
	}
}

// LoadConfig overlays values from the config file and environment for
// every flag the user did not set on the command line
func (f *Flags) LoadConfig(v *viper.Viper) {
	f.Debug = v.GetBool("debug")

	f.Theme = v.GetString("ui.theme")
	f.TextSize = v.GetInt("ui.text_size")
	f.Font = v.GetString("ui.font")
	f.DyslexicFont = v.GetString("ui.dyslexic_font")

	f.VoiceProvider = v.GetString("voice.provider")
	f.VoiceLanguage = v.GetString("voice.language")
	f.Continuous = v.GetBool("voice.continuous")
	f.ClipSeconds = v.GetInt("voice.clip_seconds")
	f.GeminiModel = v.GetString("voice.gemini_model")
	f.Commands = v.GetStringMapString("commands")

	f.SpeechProvider = v.GetString("speech.provider")
	f.AudioFormat = v.GetString("speech.format")
	f.OpenAIModel = v.GetString("speech.openai_model")
	f.OpenAIVoice = v.GetString("speech.openai_voice")
	f.OpenAISpeed = v.GetFloat64("speech.openai_speed")
	f.OpenAIInstruction = v.GetString("speech.openai_instruction")
	f.ESpeakSpeed = v.GetInt("speech.espeak_speed")
	f.CacheDir = v.GetString("speech.cache_dir")
	f.NoCache = v.GetBool("speech.no_cache")
	f.SpeakNotices = v.GetBool("speech.notices")

	f.UploadTick = v.GetDuration("upload.tick")
	f.UploadStep = v.GetInt("upload.step")
}
