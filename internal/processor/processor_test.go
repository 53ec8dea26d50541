package processor

import (
	"bytes"
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"codeberg.org/snonux/describeit/internal/cli"
	"codeberg.org/snonux/describeit/internal/prefs"
	"codeberg.org/snonux/describeit/internal/speech"
	"codeberg.org/snonux/describeit/internal/testutil"
	"codeberg.org/snonux/describeit/internal/upload"
)

const (
	waitFor = 2 * time.Second
	tick    = 5 * time.Millisecond
)

// syncBuffer is written by simulator goroutines while the test reads it.
type syncBuffer struct {
	mu  sync.Mutex
	buf bytes.Buffer
}

func (b *syncBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.Write(p)
}

func (b *syncBuffer) String() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.String()
}

type fixture struct {
	p     *Processor
	rec   *testutil.MockRecognizer
	synth *testutil.MockSynthesizer
	out   *syncBuffer
}

func testFlags() *cli.Flags {
	flags := cli.NewFlags()
	flags.UploadTick = time.Millisecond
	flags.UploadStep = 50
	return flags
}

func newFixture(t *testing.T, flags *cli.Flags) *fixture {
	t.Helper()

	f := &fixture{
		rec:   testutil.NewMockRecognizer(),
		synth: testutil.NewMockSynthesizer(),
		out:   &syncBuffer{},
	}
	p, err := New(flags, Engines{Recognizer: f.rec, Synthesizer: f.synth}, nil)
	require.NoError(t, err)
	p.SetOutput(f.out)
	t.Cleanup(func() { p.Close() })
	f.p = p
	return f
}

func (f *fixture) selectDocument(t *testing.T) *upload.FileRef {
	t.Helper()
	path := testutil.CreateTestDocument(t, t.TempDir(), "report.txt", 2048)
	file, err := upload.FileRefFromPath(path)
	require.NoError(t, err)
	f.p.Select(upload.Document, file)
	return file
}

func TestNewRejectsInvalidSettings(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*cli.Flags)
	}{
		{"theme", func(f *cli.Flags) { f.Theme = "neon" }},
		{"font", func(f *cli.Flags) { f.Font = "comic" }},
		{"command", func(f *cli.Flags) { f.Commands = map[string]string{"fly-away": "take off"} }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			flags := testFlags()
			tt.mutate(flags)
			_, err := New(flags, Engines{}, nil)
			assert.Error(t, err)
		})
	}
}

func TestNewAppliesConfiguredPreferences(t *testing.T) {
	flags := testFlags()
	flags.Theme = "dark"
	flags.Font = "mono"
	flags.TextSize = 40

	f := newFixture(t, flags)

	current := f.p.Preferences().Current()
	assert.Equal(t, prefs.ThemeDark, current.Theme)
	assert.Equal(t, prefs.FontMono, current.Font)
	assert.Equal(t, prefs.MaxTextSize, current.TextSize)
}

func TestVoiceUploadDocument(t *testing.T) {
	f := newFixture(t, testFlags())
	f.selectDocument(t)

	require.NoError(t, f.p.Voice().Start(context.Background()))
	require.True(t, f.rec.Say("Please upload document now"))

	assert.Eventually(t, func() bool {
		return f.p.Description() == upload.CannedDescription(upload.Document)
	}, waitFor, tick)
	assert.Equal(t, "Document description ready", f.p.Region().Message())
	assert.Equal(t, 0, f.p.Simulator(upload.Image).Result().Progress)
}

func TestVoiceUploadWithoutFile(t *testing.T) {
	f := newFixture(t, testFlags())

	action, ok, err := f.p.Voice().Dispatch(context.Background(), "upload image")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.EqualValues(t, "upload-image", action)
	assert.Equal(t, "No image selected", f.p.Region().Message())
	assert.Equal(t, "Please select an image first.", f.p.Simulator(upload.Image).Result().Error)
}

func TestTextSizeCommands(t *testing.T) {
	f := newFixture(t, testFlags())
	ctx := context.Background()

	for i := 0; i < 5; i++ {
		_, _, err := f.p.Voice().Dispatch(ctx, "increase text size")
		require.NoError(t, err)
	}
	assert.Equal(t, 26, f.p.Preferences().Current().TextSize)
	assert.Equal(t, "Text size changed to 26 pixels", f.p.Region().Message())

	_, _, err := f.p.Voice().Dispatch(ctx, "reset text size")
	require.NoError(t, err)
	assert.Equal(t, prefs.DefaultTextSize, f.p.Preferences().Current().TextSize)
}

func TestZoomIsSilent(t *testing.T) {
	f := newFixture(t, testFlags())
	ctx := context.Background()

	_, _, err := f.p.Voice().Dispatch(ctx, "zoom in")
	require.NoError(t, err)
	assert.Equal(t, 18, f.p.Preferences().Current().TextSize)
	assert.Zero(t, f.p.Region().Count())

	for i := 0; i < 20; i++ {
		f.p.Zoom(-prefs.TextSizeStep)
	}
	assert.Equal(t, prefs.MinTextSize, f.p.Preferences().Current().TextSize)
}

func TestChangeThemeCommand(t *testing.T) {
	f := newFixture(t, testFlags())

	_, _, err := f.p.Voice().Dispatch(context.Background(), "change theme")
	require.NoError(t, err)
	assert.Equal(t, prefs.ThemeDark, f.p.Preferences().Current().Theme)
	assert.Equal(t, "Theme changed to Dark", f.p.Region().Message())
}

func TestScrollCommands(t *testing.T) {
	f := newFixture(t, testFlags())
	ctx := context.Background()

	// Without a view the command is a no-op.
	_, ok, err := f.p.Voice().Dispatch(ctx, "scroll down")
	require.NoError(t, err)
	assert.True(t, ok)

	var moves []float32
	f.p.SetScroller(func(dy float32) { moves = append(moves, dy) })

	f.p.Voice().Dispatch(ctx, "scroll down")
	f.p.Voice().Dispatch(ctx, "scroll up")
	assert.Equal(t, []float32{ScrollStep, -ScrollStep}, moves)
}

func TestReadDescription(t *testing.T) {
	f := newFixture(t, testFlags())
	ctx := context.Background()

	err := f.p.ReadDescription(ctx)
	assert.ErrorIs(t, err, speech.ErrNoContent)
	assert.Equal(t, speech.NoContentNotice, f.p.Region().Message())

	f.selectDocument(t)
	job, err := f.p.Upload(ctx, upload.Document)
	require.NoError(t, err)
	_, err = job.Wait(ctx)
	require.NoError(t, err)

	_, _, err = f.p.Voice().Dispatch(ctx, "read description")
	require.NoError(t, err)
	assert.Equal(t, []string{upload.CannedDescription(upload.Document)}, f.synth.Texts())
	assert.Equal(t, speech.Speaking, f.p.Speech().State())

	// A second toggle stops playback.
	require.NoError(t, f.p.ReadDescription(ctx))
	assert.True(t, f.synth.Last().Cancelled())
	assert.Eventually(t, func() bool { return f.p.Speech().State() == speech.Idle }, waitFor, tick)
}

func TestUploadClearsDescription(t *testing.T) {
	f := newFixture(t, testFlags())
	ctx := context.Background()
	f.selectDocument(t)

	var seen []string
	var mu sync.Mutex
	f.p.OnDescription(func(text string) {
		mu.Lock()
		defer mu.Unlock()
		seen = append(seen, text)
	})

	job, err := f.p.Upload(ctx, upload.Document)
	require.NoError(t, err)
	_, err = job.Wait(ctx)
	require.NoError(t, err)

	_, err = f.p.Upload(ctx, upload.Image)
	assert.ErrorIs(t, err, upload.ErrNoFileSelected)
	assert.Empty(t, f.p.Description())

	mu.Lock()
	defer mu.Unlock()
	assert.Equal(t, []string{upload.CannedDescription(upload.Document), ""}, seen)
}

func TestCompletionNoticeSpoken(t *testing.T) {
	flags := testFlags()
	flags.SpeakNotices = true
	f := newFixture(t, flags)
	ctx := context.Background()
	f.selectDocument(t)

	job, err := f.p.Upload(ctx, upload.Document)
	require.NoError(t, err)
	_, err = job.Wait(ctx)
	require.NoError(t, err)

	assert.Equal(t, []string{"Document report.txt uploaded and analyzed successfully"}, f.synth.Texts())
}

func TestSetLanguage(t *testing.T) {
	f := newFixture(t, testFlags())
	f.p.SetLanguage("de-DE")

	assert.Equal(t, "de-DE", f.p.Voice().State().Language)
	assert.Equal(t, "Voice command language changed to de-DE", f.p.Region().Message())

	f.p.Speech().Toggle(context.Background(), "Hallo")
	assert.Equal(t, []string{"de-DE"}, f.synth.Languages())
}

func TestCloseStopsEverything(t *testing.T) {
	f := newFixture(t, testFlags())
	ctx := context.Background()

	require.NoError(t, f.p.Voice().Start(ctx))
	require.NoError(t, f.p.Speech().Toggle(ctx, "hello"))

	require.NoError(t, f.p.Close())
	assert.False(t, f.p.Voice().Listening())
	assert.True(t, f.synth.Last().Cancelled())
}
