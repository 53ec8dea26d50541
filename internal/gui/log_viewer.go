package gui

import (
	"strings"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/widget"

	"codeberg.org/snonux/describeit/internal/logging"
)

// LogViewer is a widget that displays the log lines collected by a
// logging.Buffer, newest first
type LogViewer struct {
	widget.BaseWidget

	buffer     *logging.Buffer
	container  *fyne.Container
	logEntry   *widget.Entry
	scrollView *container.Scroll
}

// NewLogViewer creates a log viewer following buffer
func NewLogViewer(buffer *logging.Buffer) *LogViewer {
	v := &LogViewer{buffer: buffer}

	// Create log entry (read-only multiline)
	v.logEntry = widget.NewMultiLineEntry()
	v.logEntry.Disable()
	v.logEntry.Wrapping = fyne.TextWrapWord

	v.scrollView = container.NewScroll(v.logEntry)
	v.scrollView.SetMinSize(fyne.NewSize(0, 120))
	v.scrollView.Direction = container.ScrollBoth

	clearButton := widget.NewButton("Clear", v.Clear)
	v.container = container.NewBorder(
		container.NewBorder(nil, nil, nil, clearButton, widget.NewLabel("Log messages (newest first):")),
		nil,
		nil,
		nil,
		v.scrollView,
	)

	if buffer != nil {
		v.logEntry.SetText(newestFirst(buffer.Lines()))
		buffer.Subscribe(func(string) {
			text := newestFirst(buffer.Lines())
			fyne.Do(func() {
				v.logEntry.SetText(text)
				v.scrollView.Offset = fyne.NewPos(0, 0)
				v.scrollView.Refresh()
			})
		})
	}

	v.ExtendBaseWidget(v)
	return v
}

// CreateRenderer implements fyne.Widget
func (v *LogViewer) CreateRenderer() fyne.WidgetRenderer {
	return widget.NewSimpleRenderer(v.container)
}

// Clear clears all log messages
func (v *LogViewer) Clear() {
	if v.buffer != nil {
		v.buffer.Clear()
	}
	v.logEntry.SetText("")
	v.scrollView.Offset = fyne.NewPos(0, 0)
	v.scrollView.Refresh()
}

func newestFirst(lines []string) string {
	for i, j := 0, len(lines)-1; i < j; i, j = i+1, j-1 {
		lines[i], lines[j] = lines[j], lines[i]
	}
	return strings.Join(lines, "\n")
}
