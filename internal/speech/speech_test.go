package speech_test

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"codeberg.org/snonux/describeit/internal/speech"
	"codeberg.org/snonux/describeit/internal/testutil"
)

const waitFor = 2 * time.Second
const tick = 5 * time.Millisecond

func TestToggleTwiceCancels(t *testing.T) {
	synth := testutil.NewMockSynthesizer()
	c := speech.NewController(synth, "en-US", nil, nil)
	ctx := context.Background()

	require.NoError(t, c.Toggle(ctx, "A description"))
	assert.Equal(t, speech.Speaking, c.State())

	require.NoError(t, c.Toggle(ctx, "A description"))
	assert.Equal(t, speech.Idle, c.State())
	assert.True(t, synth.Last().Cancelled())
	assert.Equal(t, []string{"A description"}, synth.Texts())
}

func TestCompletionReturnsToIdle(t *testing.T) {
	synth := testutil.NewMockSynthesizer()
	c := speech.NewController(synth, "en-GB", nil, nil)

	require.NoError(t, c.Toggle(context.Background(), "hello"))
	synth.Last().Finish(nil)

	assert.Eventually(t, func() bool { return c.State() == speech.Idle }, waitFor, tick)
	assert.Equal(t, []string{"en-GB"}, synth.Languages())

	ctx, cancel := context.WithTimeout(context.Background(), waitFor)
	defer cancel()
	assert.NoError(t, c.Wait(ctx))
}

func TestStaleCompletionIgnored(t *testing.T) {
	synth := testutil.NewMockSynthesizer()
	c := speech.NewController(synth, "", nil, nil)
	ctx := context.Background()

	require.NoError(t, c.Speak(ctx, "first"))
	first := synth.Last()
	require.NoError(t, c.Speak(ctx, "second"))

	assert.True(t, first.Cancelled())
	// The first utterance's completion must not flip the state back.
	time.Sleep(20 * time.Millisecond)
	assert.Equal(t, speech.Speaking, c.State())

	synth.Last().Finish(nil)
	assert.Eventually(t, func() bool { return c.State() == speech.Idle }, waitFor, tick)
}

func TestEmptyText(t *testing.T) {
	ann := &testutil.Announcements{}
	synth := testutil.NewMockSynthesizer()
	c := speech.NewController(synth, "en-US", ann, nil)

	err := c.Toggle(context.Background(), "")
	assert.ErrorIs(t, err, speech.ErrNoContent)
	assert.Equal(t, speech.NoContentNotice, ann.Last())
	assert.Equal(t, speech.Idle, c.State())
	assert.Empty(t, synth.Texts())
}

func TestNotSupported(t *testing.T) {
	ann := &testutil.Announcements{}

	c := speech.NewController(nil, "en-US", ann, nil)
	assert.ErrorIs(t, c.Toggle(context.Background(), "text"), speech.ErrNotSupported)
	assert.Equal(t, speech.UnsupportedNotice, ann.Last())

	synth := testutil.NewMockSynthesizer()
	synth.AvailableErr = errors.New("no player")
	c = speech.NewController(synth, "en-US", ann, nil)
	assert.ErrorIs(t, c.Toggle(context.Background(), "text"), speech.ErrNotSupported)
	assert.Equal(t, speech.Idle, c.State())
}

func TestSpeakFailure(t *testing.T) {
	ann := &testutil.Announcements{}
	synth := testutil.NewMockSynthesizer()
	synth.SpeakErr = errors.New("quota")
	c := speech.NewController(synth, "en-US", ann, nil)

	assert.Error(t, c.Toggle(context.Background(), "text"))
	assert.Equal(t, speech.Idle, c.State())
	assert.Equal(t, "Speech playback failed.", ann.Last())
}

func TestPlaybackErrorAnnounced(t *testing.T) {
	ann := &testutil.Announcements{}
	synth := testutil.NewMockSynthesizer()
	c := speech.NewController(synth, "en-US", ann, nil)

	require.NoError(t, c.Toggle(context.Background(), "text"))
	synth.Last().Finish(errors.New("player crashed"))

	assert.Eventually(t, func() bool { return ann.Last() == "Speech playback failed." }, waitFor, tick)
	assert.Equal(t, speech.Idle, c.State())
}

func TestStateListeners(t *testing.T) {
	synth := testutil.NewMockSynthesizer()
	c := speech.NewController(synth, "en-US", nil, nil)

	var mu sync.Mutex
	var got []speech.State
	c.OnStateChange(func(s speech.State) {
		mu.Lock()
		defer mu.Unlock()
		got = append(got, s)
	})

	require.NoError(t, c.Toggle(context.Background(), "text"))
	c.Stop()
	c.Stop()

	mu.Lock()
	defer mu.Unlock()
	assert.Equal(t, []speech.State{speech.Speaking, speech.Idle}, got)
	assert.Equal(t, "idle", speech.Idle.String())
	assert.Equal(t, "speaking", speech.Speaking.String())
}

func TestWaitHonoursContext(t *testing.T) {
	synth := testutil.NewMockSynthesizer()
	c := speech.NewController(synth, "en-US", nil, nil)
	require.NoError(t, c.Toggle(context.Background(), "text"))

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()
	assert.ErrorIs(t, c.Wait(ctx), context.DeadlineExceeded)
}
