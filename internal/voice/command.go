// Package voice maps recognised speech to application actions.
package voice

import (
	"fmt"
	"strings"
)

// Action identifies something a voice command can trigger.
type Action string

const (
	UploadDocument   Action = "upload-document"
	UploadImage      Action = "upload-image"
	ChangeTheme      Action = "change-theme"
	IncreaseTextSize Action = "increase-text-size"
	DecreaseTextSize Action = "decrease-text-size"
	ResetTextSize    Action = "reset-text-size"
	ReadDescription  Action = "read-description"
	ScrollDown       Action = "scroll-down"
	ScrollUp         Action = "scroll-up"
	ZoomIn           Action = "zoom-in"
	ZoomOut          Action = "zoom-out"
)

// Command binds a trigger phrase to an action.
type Command struct {
	Action Action
	Phrase string
}

// Table is the ordered list of configurable commands. Earlier entries win.
type Table []Command

// DefaultTable returns the built-in phrases in priority order.
func DefaultTable() Table {
	return Table{
		{UploadDocument, "upload document"},
		{UploadImage, "upload image"},
		{ChangeTheme, "change theme"},
		{IncreaseTextSize, "increase text size"},
		{DecreaseTextSize, "decrease text size"},
		{ResetTextSize, "reset text size"},
		{ReadDescription, "read description"},
	}
}

// shortcuts are matched after the table and cannot be reconfigured.
var shortcuts = []Command{
	{ScrollDown, "scroll down"},
	{ScrollUp, "scroll up"},
	{ZoomIn, "zoom in"},
	{ZoomOut, "zoom out"},
}

// Shortcuts returns the fixed phrases matched after the table.
func Shortcuts() []Command {
	out := make([]Command, len(shortcuts))
	copy(out, shortcuts)
	return out
}

// Actions returns every configurable action in table order.
func Actions() []Action {
	table := DefaultTable()
	out := make([]Action, len(table))
	for i, c := range table {
		out[i] = c.Action
	}
	return out
}

// WithPhrase returns a copy of t with the phrase for a replaced. Phrases
// are normalised to lower case; an empty phrase keeps the current one.
func (t Table) WithPhrase(a Action, phrase string) (Table, error) {
	out := make(Table, len(t))
	copy(out, t)

	phrase = normalize(phrase)
	for i := range out {
		if out[i].Action != a {
			continue
		}
		if phrase != "" {
			out[i].Phrase = phrase
		}
		return out, nil
	}
	return nil, fmt.Errorf("unknown voice command action: %s", a)
}

// WithPhrases applies a set of overrides keyed by action name.
func (t Table) WithPhrases(overrides map[string]string) (Table, error) {
	out := t
	for action, phrase := range overrides {
		var err error
		out, err = out.WithPhrase(Action(action), phrase)
		if err != nil {
			return nil, err
		}
	}
	return out, nil
}

// Match returns the first command whose phrase occurs in transcript,
// searching the table before the fixed shortcuts.
func (t Table) Match(transcript string) (Command, bool) {
	text := normalize(transcript)
	if text == "" {
		return Command{}, false
	}
	for _, c := range t {
		if c.Phrase != "" && strings.Contains(text, normalize(c.Phrase)) {
			return c, true
		}
	}
	for _, c := range shortcuts {
		if strings.Contains(text, c.Phrase) {
			return c, true
		}
	}
	return Command{}, false
}

func normalize(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}
