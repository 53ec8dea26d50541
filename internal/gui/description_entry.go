package gui

import (
	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/widget"
)

// DescriptionEntry is a read-only multi-line entry that keeps the text
// selectable for screen readers and copy, and gives up focus on Escape
type DescriptionEntry struct {
	widget.Entry
	onEscape func()
}

// NewDescriptionEntry creates a new description entry
func NewDescriptionEntry() *DescriptionEntry {
	entry := &DescriptionEntry{}
	entry.MultiLine = true
	entry.Wrapping = fyne.TextWrapWord
	entry.ExtendBaseWidget(entry)
	return entry
}

// TypedKey handles key events
func (e *DescriptionEntry) TypedKey(key *fyne.KeyEvent) {
	switch key.Name {
	case fyne.KeyEscape:
		if e.onEscape != nil {
			e.onEscape()
		}
		return
	case fyne.KeyBackspace, fyne.KeyDelete, fyne.KeyReturn, fyne.KeyEnter:
		return
	}
	e.Entry.TypedKey(key)
}

// TypedRune ignores typing so the description cannot be edited
func (e *DescriptionEntry) TypedRune(rune) {}

// TypedShortcut allows copy and select-all only
func (e *DescriptionEntry) TypedShortcut(s fyne.Shortcut) {
	switch s.(type) {
	case *fyne.ShortcutCopy, *fyne.ShortcutSelectAll:
		e.Entry.TypedShortcut(s)
	}
}

// SetOnEscape sets the callback for when Escape is pressed
func (e *DescriptionEntry) SetOnEscape(f func()) {
	e.onEscape = f
}
