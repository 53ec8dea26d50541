package audio

import (
	"context"
	"fmt"
	"os/exec"
	"runtime"
)

// Player plays audio files with a platform-specific command
type Player struct {
	lookPath func(string) (string, error)
	goos     string
}

// NewPlayer returns a player for the current platform
func NewPlayer() *Player {
	return &Player{lookPath: exec.LookPath, goos: runtime.GOOS}
}

// IsAvailable reports whether a playback command exists
func (p *Player) IsAvailable() error {
	_, err := p.command(context.Background(), "probe.mp3")
	return err
}

// Play blocks until file has been played or ctx is done. Cancelling ctx
// kills the player process.
func (p *Player) Play(ctx context.Context, file string) error {
	cmd, err := p.command(ctx, file)
	if err != nil {
		return err
	}
	if err := cmd.Run(); err != nil {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		return fmt.Errorf("audio playback failed: %w", err)
	}
	return nil
}

func (p *Player) command(ctx context.Context, file string) (*exec.Cmd, error) {
	switch p.goos {
	case "darwin": // macOS
		return exec.CommandContext(ctx, "afplay", file), nil
	case "linux":
		// mpg123 first since it handles MP3 files best
		if _, err := p.lookPath("mpg123"); err == nil {
			return exec.CommandContext(ctx, "mpg123", "-q", file), nil
		} else if _, err := p.lookPath("ffplay"); err == nil {
			return exec.CommandContext(ctx, "ffplay", "-nodisp", "-autoexit", "-loglevel", "quiet", file), nil
		} else if _, err := p.lookPath("play"); err == nil {
			// SoX play command
			return exec.CommandContext(ctx, "play", "-q", file), nil
		} else if _, err := p.lookPath("paplay"); err == nil {
			return exec.CommandContext(ctx, "paplay", file), nil
		} else if _, err := p.lookPath("aplay"); err == nil {
			return exec.CommandContext(ctx, "aplay", "-q", file), nil
		}
		return nil, fmt.Errorf("no audio player found. Install mpg123, ffplay, sox, paplay, or aplay")
	case "windows":
		// PowerShell's media player blocks until playback ends
		script := fmt.Sprintf(`$p = New-Object System.Windows.Media.MediaPlayer; `+
			`$p.Open([uri]'%s'); $p.Play(); Start-Sleep -Milliseconds 500; `+
			`while ($p.Position -lt $p.NaturalDuration.TimeSpan) { Start-Sleep -Milliseconds 100 }`, file)
		return exec.CommandContext(ctx, "powershell", "-NoProfile", "-Command",
			"Add-Type -AssemblyName presentationCore; "+script), nil
	default:
		return nil, fmt.Errorf("unsupported platform: %s", p.goos)
	}
}
