package voice

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMatchFirstEntryWins(t *testing.T) {
	table := DefaultTable()

	tests := []struct {
		transcript string
		want       Action
		ok         bool
	}{
		{"please upload document now", UploadDocument, true},
		{"Upload Image", UploadImage, true},
		{"upload image and upload document", UploadDocument, true},
		{"could you change theme", ChangeTheme, true},
		{"increase text size", IncreaseTextSize, true},
		{"DECREASE TEXT SIZE", DecreaseTextSize, true},
		{"reset text size please", ResetTextSize, true},
		{"read description", ReadDescription, true},
		{"scroll down", ScrollDown, true},
		{"scroll up a bit", ScrollUp, true},
		{"zoom in", ZoomIn, true},
		{"zoom out", ZoomOut, true},
		{"change theme then zoom in", ChangeTheme, true},
		{"hello there", "", false},
		{"   ", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.transcript, func(t *testing.T) {
			cmd, ok := table.Match(tt.transcript)
			assert.Equal(t, tt.ok, ok)
			assert.Equal(t, tt.want, cmd.Action)
		})
	}
}

func TestTableOrderWinsOverPosition(t *testing.T) {
	// "upload image" comes later in the sentence but earlier in a custom table.
	table := Table{
		{UploadImage, "upload image"},
		{UploadDocument, "upload document"},
	}
	cmd, ok := table.Match("upload document or upload image")
	require.True(t, ok)
	assert.Equal(t, UploadImage, cmd.Action)
}

func TestWithPhrase(t *testing.T) {
	table, err := DefaultTable().WithPhrase(ReadDescription, "  Read It Aloud ")
	require.NoError(t, err)

	cmd, ok := table.Match("please read it aloud")
	require.True(t, ok)
	assert.Equal(t, ReadDescription, cmd.Action)

	_, ok = table.Match("read description")
	assert.False(t, ok)

	// The default table is untouched.
	cmd, ok = DefaultTable().Match("read description")
	require.True(t, ok)
	assert.Equal(t, ReadDescription, cmd.Action)

	same, err := DefaultTable().WithPhrase(ChangeTheme, "")
	require.NoError(t, err)
	assert.Equal(t, DefaultTable(), same)

	_, err = DefaultTable().WithPhrase(ScrollDown, "go down")
	assert.Error(t, err, "shortcuts are not configurable")
}

func TestWithPhrases(t *testing.T) {
	table, err := DefaultTable().WithPhrases(map[string]string{
		"change-theme":       "switch colours",
		"increase-text-size": "bigger",
	})
	require.NoError(t, err)

	cmd, _ := table.Match("switch colours")
	assert.Equal(t, ChangeTheme, cmd.Action)
	cmd, _ = table.Match("bigger please")
	assert.Equal(t, IncreaseTextSize, cmd.Action)

	_, err = DefaultTable().WithPhrases(map[string]string{"fly": "up and away"})
	assert.Error(t, err)
}

func TestActionsAndShortcuts(t *testing.T) {
	assert.Len(t, Actions(), 7)
	assert.Equal(t, UploadDocument, Actions()[0])

	sc := Shortcuts()
	require.Len(t, sc, 4)
	sc[0].Phrase = "mutated"
	assert.Equal(t, "scroll down", Shortcuts()[0].Phrase)
}
