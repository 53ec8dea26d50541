package stt

import (
	"context"
	"errors"
	"io"
	"os"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func collect(t *testing.T, events <-chan Event) []Event {
	t.Helper()
	var got []Event
	timeout := time.After(2 * time.Second)
	for {
		select {
		case ev, ok := <-events:
			if !ok {
				return got
			}
			got = append(got, ev)
		case <-timeout:
			t.Fatal("session did not end")
		}
	}
}

func TestLineRecognizerSingleUtterance(t *testing.T) {
	r := NewLineRecognizer(strings.NewReader("upload document\nchange theme\n"))

	events, err := r.Start(context.Background(), Options{Language: "en-US"})
	require.NoError(t, err)
	got := collect(t, events)
	require.Len(t, got, 1)
	assert.Equal(t, Event{Transcript: "upload document", Final: true}, got[0])

	// The handle is reused and picks up where the last session stopped.
	events, err = r.Start(context.Background(), Options{})
	require.NoError(t, err)
	got = collect(t, events)
	require.Len(t, got, 1)
	assert.Equal(t, "change theme", got[0].Transcript)
}

func TestLineRecognizerContinuousUntilEOF(t *testing.T) {
	r := NewLineRecognizer(strings.NewReader("one\n\n two \nthree"))

	events, err := r.Start(context.Background(), Options{Continuous: true, InterimResults: true})
	require.NoError(t, err)
	got := collect(t, events)

	var finals []string
	interim := 0
	for _, ev := range got {
		if ev.Final {
			finals = append(finals, ev.Transcript)
		} else {
			interim++
		}
	}
	assert.Equal(t, []string{"one", "two", "three"}, finals)
	assert.Equal(t, 3, interim)
}

func TestLineRecognizerStopAndBusy(t *testing.T) {
	pr, pw := io.Pipe()
	defer pw.Close()
	r := NewLineRecognizer(pr)

	events, err := r.Start(context.Background(), Options{Continuous: true})
	require.NoError(t, err)

	_, err = r.Start(context.Background(), Options{})
	assert.ErrorIs(t, err, ErrBusy)

	require.NoError(t, r.Stop())
	assert.Empty(t, collect(t, events))

	// A new session may start once the old one has ended.
	events, err = r.Start(context.Background(), Options{})
	require.NoError(t, err)
	go func() { _, _ = pw.Write([]byte("zoom in\n")) }()
	got := collect(t, events)
	require.Len(t, got, 1)
	assert.Equal(t, "zoom in", got[0].Transcript)
}

func TestLineRecognizerRestartRightAfterStop(t *testing.T) {
	pr, pw := io.Pipe()
	defer pw.Close()
	r := NewLineRecognizer(pr)

	for i := 0; i < 50; i++ {
		events, err := r.Start(context.Background(), Options{Continuous: true})
		require.NoError(t, err, "iteration %d", i)
		require.NoError(t, r.Stop())
		assert.Empty(t, collect(t, events))
	}
}

func TestLineRecognizerContextCancel(t *testing.T) {
	pr, pw := io.Pipe()
	defer pw.Close()
	r := NewLineRecognizer(pr)

	ctx, cancel := context.WithCancel(context.Background())
	events, err := r.Start(ctx, Options{Continuous: true})
	require.NoError(t, err)
	cancel()
	assert.Empty(t, collect(t, events))
}

func TestUnavailable(t *testing.T) {
	var r Recognizer = Unavailable{Reason: "no key"}
	err := r.IsAvailable()
	assert.ErrorIs(t, err, ErrUnavailable)
	assert.Contains(t, err.Error(), "no key")

	_, err = r.Start(context.Background(), Options{})
	assert.ErrorIs(t, err, ErrUnavailable)
	assert.NoError(t, r.Stop())

	assert.ErrorIs(t, NewLineRecognizer(nil).IsAvailable(), ErrUnavailable)
}

func TestBaseLanguage(t *testing.T) {
	tests := map[string]string{
		"en-US": "en",
		"de-DE": "de",
		"fr":    "fr",
		"":      "",
	}
	for in, want := range tests {
		assert.Equal(t, want, baseLanguage(in), in)
	}
}

func TestLanguages(t *testing.T) {
	langs := Languages()
	assert.Equal(t, "en-US", langs[0])
	for _, l := range langs {
		assert.NotEqual(t, l, LanguageName(l), "missing display name for %s", l)
	}
	assert.Equal(t, "xx-YY", LanguageName("xx-YY"))
}

type fakeRecorder struct {
	err   error
	block bool // record until the session is cancelled
}

func (f *fakeRecorder) IsAvailable() error { return nil }

func (f *fakeRecorder) Record(ctx context.Context, outputFile string, d time.Duration) error {
	if f.block {
		<-ctx.Done()
		return ctx.Err()
	}
	if f.err != nil {
		return f.err
	}
	return os.WriteFile(outputFile, []byte("RIFF"), 0644)
}

type fakeTranscriber struct {
	mu      sync.Mutex
	results []string
	err     error
	calls   int
}

func (f *fakeTranscriber) Name() string { return "fake" }

func (f *fakeTranscriber) Transcribe(ctx context.Context, audioFile, language string) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	if _, err := os.Stat(audioFile); err != nil {
		return "", err
	}
	if f.err != nil {
		return "", f.err
	}
	if len(f.results) == 0 {
		return "", nil
	}
	text := f.results[0]
	f.results = f.results[1:]
	return text, nil
}

func newTestMic(rec Recorder, tr Transcriber) *MicRecognizer {
	m := NewMicRecognizer(rec, tr, time.Second, nil)
	return m
}

func TestMicRecognizerNonContinuous(t *testing.T) {
	tr := &fakeTranscriber{results: []string{"Read description", "ignored"}}
	m := newTestMic(&fakeRecorder{}, tr)
	m.tempDir = t.TempDir()

	events, err := m.Start(context.Background(), Options{Language: "en-GB"})
	require.NoError(t, err)
	got := collect(t, events)
	require.Len(t, got, 1)
	assert.Equal(t, Event{Transcript: "Read description", Final: true}, got[0])
	assert.Equal(t, 1, tr.calls)
}

func TestMicRecognizerContinuousStopsOnError(t *testing.T) {
	boom := errors.New("quota exceeded")
	tr := &fakeTranscriber{err: boom}
	m := newTestMic(&fakeRecorder{}, tr)
	m.tempDir = t.TempDir()

	events, err := m.Start(context.Background(), Options{Continuous: true})
	require.NoError(t, err)
	got := collect(t, events)
	require.Len(t, got, 1)
	assert.ErrorIs(t, got[0].Err, boom)

	// The handle can start again after an error.
	tr.err = nil
	tr.results = []string{"zoom out"}
	events, err = m.Start(context.Background(), Options{})
	require.NoError(t, err)
	got = collect(t, events)
	require.Len(t, got, 1)
	assert.Equal(t, "zoom out", got[0].Transcript)
}

func TestMicRecognizerRestartRightAfterStop(t *testing.T) {
	m := newTestMic(&fakeRecorder{block: true}, &fakeTranscriber{})
	m.tempDir = t.TempDir()

	for i := 0; i < 50; i++ {
		events, err := m.Start(context.Background(), Options{Continuous: true})
		require.NoError(t, err, "iteration %d", i)
		require.NoError(t, m.Stop())
		assert.Empty(t, collect(t, events))
	}
}

func TestMicRecognizerUnavailable(t *testing.T) {
	m := NewMicRecognizer(&fakeRecorder{}, nil, 0, nil)
	assert.ErrorIs(t, m.IsAvailable(), ErrUnavailable)
	assert.Equal(t, DefaultClipLength, m.clip)

	_, err := m.Start(context.Background(), Options{})
	assert.ErrorIs(t, err, ErrUnavailable)
}

func TestCommandRecorderSelection(t *testing.T) {
	tests := []struct {
		name      string
		goos      string
		installed []string
		wantCmd   string
		wantErr   bool
	}{
		{name: "linux arecord", goos: "linux", installed: []string{"arecord", "ffmpeg"}, wantCmd: "arecord"},
		{name: "linux sox", goos: "linux", installed: []string{"rec"}, wantCmd: "rec"},
		{name: "linux ffmpeg", goos: "linux", installed: []string{"ffmpeg"}, wantCmd: "ffmpeg"},
		{name: "linux nothing", goos: "linux", wantErr: true},
		{name: "darwin ffmpeg", goos: "darwin", installed: []string{"ffmpeg"}, wantCmd: "ffmpeg"},
		{name: "plan9", goos: "plan9", installed: []string{"ffmpeg"}, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := &CommandRecorder{
				goos: tt.goos,
				lookPath: func(name string) (string, error) {
					for _, n := range tt.installed {
						if n == name {
							return "/usr/bin/" + n, nil
						}
					}
					return "", errors.New("not found")
				},
			}
			cmd, err := r.command(context.Background(), "out.wav", 3*time.Second)
			if tt.wantErr {
				assert.ErrorIs(t, err, ErrUnavailable)
				assert.ErrorIs(t, r.IsAvailable(), ErrUnavailable)
				return
			}
			require.NoError(t, err)
			assert.Contains(t, cmd.Args[0], tt.wantCmd)
			assert.Contains(t, cmd.Args, "out.wav")
		})
	}
}

func TestNewRecognizer(t *testing.T) {
	ctx := context.Background()

	r, err := NewRecognizer(ctx, Config{Provider: "none"}, nil)
	require.NoError(t, err)
	assert.ErrorIs(t, r.IsAvailable(), ErrUnavailable)

	r, err = NewRecognizer(ctx, Config{Provider: "openai"}, nil)
	require.NoError(t, err)
	assert.ErrorIs(t, r.IsAvailable(), ErrUnavailable)

	r, err = NewRecognizer(ctx, Config{Provider: "stdin", Input: strings.NewReader("")}, nil)
	require.NoError(t, err)
	assert.Equal(t, "text", r.Name())

	r, err = NewRecognizer(ctx, Config{Provider: "openai", OpenAIKey: "test-key"}, nil)
	require.NoError(t, err)
	assert.Equal(t, "microphone+openai", r.Name())

	_, err = NewRecognizer(ctx, Config{Provider: "carrier-pigeon"}, nil)
	assert.Error(t, err)
}

func TestBreakerTranscriberPassesThrough(t *testing.T) {
	dir := t.TempDir()
	clip := dir + "/clip.wav"
	require.NoError(t, os.WriteFile(clip, []byte("RIFF"), 0644))

	tr := WithBreaker(&fakeTranscriber{results: []string{"scroll up"}}, nil)
	assert.Equal(t, "fake", tr.Name())
	text, err := tr.Transcribe(context.Background(), clip, "en-US")
	require.NoError(t, err)
	assert.Equal(t, "scroll up", text)
}
