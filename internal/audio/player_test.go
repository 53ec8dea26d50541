package audio

import (
	"context"
	"errors"
	"testing"
)

func fakeLookPath(installed ...string) func(string) (string, error) {
	return func(name string) (string, error) {
		for _, n := range installed {
			if n == name {
				return "/usr/bin/" + n, nil
			}
		}
		return "", errors.New("not found")
	}
}

func TestPlayerCommand(t *testing.T) {
	tests := []struct {
		name      string
		goos      string
		installed []string
		want      string
		wantErr   bool
	}{
		{name: "macOS", goos: "darwin", want: "afplay"},
		{name: "linux prefers mpg123", goos: "linux", installed: []string{"aplay", "mpg123"}, want: "mpg123"},
		{name: "linux ffplay", goos: "linux", installed: []string{"ffplay", "paplay"}, want: "ffplay"},
		{name: "linux sox", goos: "linux", installed: []string{"play"}, want: "play"},
		{name: "linux paplay", goos: "linux", installed: []string{"paplay"}, want: "paplay"},
		{name: "linux aplay", goos: "linux", installed: []string{"aplay"}, want: "aplay"},
		{name: "linux none", goos: "linux", wantErr: true},
		{name: "windows", goos: "windows", want: "powershell"},
		{name: "unsupported", goos: "js", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := &Player{lookPath: fakeLookPath(tt.installed...), goos: tt.goos}
			cmd, err := p.command(context.Background(), "speech.mp3")
			if (err != nil) != tt.wantErr {
				t.Fatalf("command() error = %v, wantErr %v", err, tt.wantErr)
			}
			if tt.wantErr {
				if p.IsAvailable() == nil {
					t.Error("IsAvailable() should fail without a player")
				}
				return
			}
			if cmd.Args[0] != tt.want {
				t.Errorf("command() = %s, want %s", cmd.Args[0], tt.want)
			}
		})
	}
}

func TestPlayerUnavailable(t *testing.T) {
	p := &Player{lookPath: fakeLookPath(), goos: "linux"}
	if err := p.Play(context.Background(), "speech.mp3"); err == nil {
		t.Error("Play() should fail without a player")
	}
}
