package breaker

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCallOpensAfterConsecutiveFailures(t *testing.T) {
	cb := New("test", Settings{ConsecutiveFailures: 2, OpenTimeout: time.Minute}, nil)
	boom := errors.New("boom")

	calls := 0
	fail := func() (string, error) {
		calls++
		return "", boom
	}

	_, err := Call(cb, fail)
	assert.ErrorIs(t, err, boom)
	_, err = Call(cb, fail)
	assert.ErrorIs(t, err, boom)

	_, err = Call(cb, fail)
	assert.ErrorIs(t, err, ErrOpen)
	assert.Equal(t, 2, calls)
}

func TestCallReturnsValue(t *testing.T) {
	cb := New("ok", Settings{}, nil)

	got, err := Call(cb, func() (int, error) { return 42, nil })
	require.NoError(t, err)
	assert.Equal(t, 42, got)
}
