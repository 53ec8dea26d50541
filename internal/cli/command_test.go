package cli

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

func TestCreateRootCommand(t *testing.T) {
	flags := NewFlags()
	cmd := CreateRootCommand(flags)

	// Test basic command properties
	if cmd.Use != "describeit [file...]" {
		t.Errorf("Expected Use to be 'describeit [file...]', got %s", cmd.Use)
	}

	if !strings.Contains(cmd.Short, "descriptions") {
		t.Errorf("Expected Short description to mention descriptions, got %q", cmd.Short)
	}

	flagNames := []string{
		"config", "debug", "batch", "speak", "speak-notices", "commands-stdin",
		"list-models", "clear-cache", "cache-stats", "theme", "text-size", "font",
		"dyslexic-font", "voice-provider", "language", "continuous", "clip-seconds",
		"gemini-model", "speech-provider", "format", "openai-model", "openai-voice",
		"openai-speed", "openai-instruction", "espeak-speed", "cache-dir", "no-cache",
		"upload-tick", "upload-step",
	}

	for _, name := range flagNames {
		t.Run("flag_"+name, func(t *testing.T) {
			var flag *pflag.Flag
			if name == "config" || name == "debug" {
				flag = cmd.PersistentFlags().Lookup(name)
			} else {
				flag = cmd.Flags().Lookup(name)
			}
			if flag == nil {
				t.Errorf("Expected flag %s to exist", name)
			}
		})
	}
}

func TestSetupFlags(t *testing.T) {
	resetViper(t)

	cmd := &cobra.Command{}
	flags := NewFlags()

	setupFlags(cmd, flags)

	defaults := map[string]string{
		"theme":           "default",
		"text-size":       "16",
		"font":            "sans",
		"language":        "en-US",
		"voice-provider":  "openai",
		"speech-provider": "openai",
		"format":          "mp3",
		"upload-tick":     "200ms",
		"upload-step":     "10",
		"cache-dir":       DefaultCacheDir(),
	}

	for name, want := range defaults {
		flag := cmd.Flags().Lookup(name)
		if flag == nil {
			t.Fatalf("%s flag not found", name)
		}
		if flag.DefValue != want {
			t.Errorf("Expected default %s to be %s, got %s", name, want, flag.DefValue)
		}
	}
}

func TestDefaultCacheDir(t *testing.T) {
	dir := DefaultCacheDir()
	if !strings.HasSuffix(dir, filepath.Join("describeit", "speech")) {
		t.Errorf("DefaultCacheDir() = %s, want suffix describeit/speech", dir)
	}
}

func TestInitConfig(t *testing.T) {
	tests := []struct {
		name      string
		setupFunc func(t *testing.T) string
		check     func(t *testing.T)
	}{
		{
			name: "with config file",
			setupFunc: func(t *testing.T) string {
				cfgPath := filepath.Join(t.TempDir(), "test-config.yaml")
				content := `ui:
  theme: high-contrast
  text_size: 24
speech:
  openai_key: test-key
commands:
  upload-document: open file`
				if err := os.WriteFile(cfgPath, []byte(content), 0644); err != nil {
					t.Fatalf("Failed to create test config: %v", err)
				}
				return cfgPath
			},
			check: func(t *testing.T) {
				if got := viper.GetString("ui.theme"); got != "high-contrast" {
					t.Errorf("ui.theme = %q, want high-contrast", got)
				}
				if got := viper.GetInt("ui.text_size"); got != 24 {
					t.Errorf("ui.text_size = %d, want 24", got)
				}
				if got := viper.GetStringMapString("commands")["upload-document"]; got != "open file" {
					t.Errorf("commands.upload-document = %q, want 'open file'", got)
				}
			},
		},
		{
			name: "without config file",
			setupFunc: func(t *testing.T) string {
				return ""
			},
			check: func(t *testing.T) {},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resetViper(t)

			InitConfig(tt.setupFunc(t))

			// Test environment variable prefix
			t.Setenv("DESCRIBEIT_TEST_VAR", "test-value")
			if viper.GetString("test_var") != "test-value" {
				t.Error("Environment variable not properly loaded")
			}

			// Nested keys map to underscores
			t.Setenv("DESCRIBEIT_VOICE_LANGUAGE", "de-DE")
			if viper.GetString("voice.language") != "de-DE" {
				t.Error("Nested environment variable not properly loaded")
			}

			tt.check(t)
		})
	}
}

func TestGetOpenAIKey(t *testing.T) {
	tests := []struct {
		name      string
		envKey    string
		configKey string
		expected  string
	}{
		{"from environment", "env-test-key", "config-test-key", "env-test-key"},
		{"from config when no env", "", "config-test-key", "config-test-key"},
		{"empty when neither set", "", "", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resetViper(t)
			t.Setenv("OPENAI_API_KEY", tt.envKey)

			if tt.configKey != "" {
				viper.Set("speech.openai_key", tt.configKey)
			}

			if got := GetOpenAIKey(); got != tt.expected {
				t.Errorf("GetOpenAIKey() = %v, want %v", got, tt.expected)
			}
		})
	}
}

func TestGetGeminiKey(t *testing.T) {
	tests := []struct {
		name      string
		gemini    string
		google    string
		configKey string
		expected  string
	}{
		{"gemini env wins", "gemini-key", "google-key", "config-key", "gemini-key"},
		{"google env fallback", "", "google-key", "config-key", "google-key"},
		{"from config", "", "", "config-key", "config-key"},
		{"empty", "", "", "", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resetViper(t)
			t.Setenv("GEMINI_API_KEY", tt.gemini)
			t.Setenv("GOOGLE_API_KEY", tt.google)

			if tt.configKey != "" {
				viper.Set("voice.gemini_key", tt.configKey)
			}

			if got := GetGeminiKey(); got != tt.expected {
				t.Errorf("GetGeminiKey() = %v, want %v", got, tt.expected)
			}
		})
	}
}

func TestBindFlagsToViper(t *testing.T) {
	resetViper(t)

	cmd := &cobra.Command{}
	flags := NewFlags()
	setupFlags(cmd, flags)

	// Set some flag values
	cmd.Flags().Set("theme", "dark")
	cmd.Flags().Set("format", "wav")
	cmd.Flags().Set("language", "es-ES")
	cmd.Flags().Set("upload-step", "25")

	tests := []struct {
		key  string
		want string
	}{
		{"ui.theme", "dark"},
		{"speech.format", "wav"},
		{"voice.language", "es-ES"},
		{"upload.step", "25"},
	}

	for _, tt := range tests {
		if got := viper.GetString(tt.key); got != tt.want {
			t.Errorf("Expected %s to be %s, got %s", tt.key, tt.want, got)
		}
	}
}

func resetViper(t *testing.T) {
	t.Helper()
	viper.Reset()
	t.Cleanup(viper.Reset)
}
