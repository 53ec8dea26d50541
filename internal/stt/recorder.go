package stt

import (
	"context"
	"fmt"
	"os/exec"
	"runtime"
	"strconv"
	"time"
)

// Recorder captures a short microphone clip into a WAV file.
type Recorder interface {
	Record(ctx context.Context, outputFile string, d time.Duration) error
	IsAvailable() error
}

// CommandRecorder records with whichever command line recorder is
// installed: arecord or sox on Linux, ffmpeg elsewhere.
type CommandRecorder struct {
	lookPath func(string) (string, error)
	goos     string
}

// NewCommandRecorder returns a recorder that uses the system tools.
func NewCommandRecorder() *CommandRecorder {
	return &CommandRecorder{lookPath: exec.LookPath, goos: runtime.GOOS}
}

// IsAvailable reports whether a supported recording command is on PATH.
func (r *CommandRecorder) IsAvailable() error {
	_, err := r.command(context.Background(), "probe.wav", time.Second)
	return err
}

// Record blocks until the clip is captured or ctx is done.
func (r *CommandRecorder) Record(ctx context.Context, outputFile string, d time.Duration) error {
	cmd, err := r.command(ctx, outputFile, d)
	if err != nil {
		return err
	}
	if output, err := cmd.CombinedOutput(); err != nil {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		return fmt.Errorf("recording failed: %w\nOutput: %s", err, string(output))
	}
	return nil
}

func (r *CommandRecorder) command(ctx context.Context, outputFile string, d time.Duration) (*exec.Cmd, error) {
	secs := int(d.Round(time.Second) / time.Second)
	if secs < 1 {
		secs = 1
	}
	dur := strconv.Itoa(secs)

	switch r.goos {
	case "linux":
		if _, err := r.lookPath("arecord"); err == nil {
			return exec.CommandContext(ctx, "arecord", "-q", "-f", "S16_LE", "-r", "16000", "-c", "1", "-d", dur, outputFile), nil
		} else if _, err := r.lookPath("rec"); err == nil {
			return exec.CommandContext(ctx, "rec", "-q", "-r", "16000", "-c", "1", outputFile, "trim", "0", dur), nil
		} else if _, err := r.lookPath("ffmpeg"); err == nil {
			return exec.CommandContext(ctx, "ffmpeg", "-loglevel", "quiet", "-f", "pulse", "-i", "default",
				"-t", dur, "-ar", "16000", "-ac", "1", "-y", outputFile), nil
		}
		return nil, fmt.Errorf("%w: no recorder found. Install alsa-utils, sox, or ffmpeg", ErrUnavailable)
	case "darwin":
		if _, err := r.lookPath("rec"); err == nil {
			return exec.CommandContext(ctx, "rec", "-q", "-r", "16000", "-c", "1", outputFile, "trim", "0", dur), nil
		} else if _, err := r.lookPath("ffmpeg"); err == nil {
			return exec.CommandContext(ctx, "ffmpeg", "-loglevel", "quiet", "-f", "avfoundation", "-i", ":0",
				"-t", dur, "-ar", "16000", "-ac", "1", "-y", outputFile), nil
		}
		return nil, fmt.Errorf("%w: no recorder found. Install sox or ffmpeg", ErrUnavailable)
	case "windows":
		if _, err := r.lookPath("ffmpeg"); err == nil {
			return exec.CommandContext(ctx, "ffmpeg", "-loglevel", "quiet", "-f", "dshow", "-i", "audio=default",
				"-t", dur, "-ar", "16000", "-ac", "1", "-y", outputFile), nil
		}
		return nil, fmt.Errorf("%w: no recorder found. Install ffmpeg", ErrUnavailable)
	default:
		return nil, fmt.Errorf("%w: unsupported platform: %s", ErrUnavailable, r.goos)
	}
}
