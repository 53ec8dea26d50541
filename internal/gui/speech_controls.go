package gui

import (
	"context"
	"fmt"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/layout"
	"fyne.io/fyne/v2/theme"
	"fyne.io/fyne/v2/widget"
	ttwidget "github.com/dweymouth/fyne-tooltip/widget"
	"go.uber.org/zap"

	"codeberg.org/snonux/describeit/internal/logging"
	"codeberg.org/snonux/describeit/internal/speech"
	"codeberg.org/snonux/describeit/internal/stt"
	"codeberg.org/snonux/describeit/internal/voice"
)

// SpeechControls holds the read-aloud and voice command toggles
type SpeechControls struct {
	widget.BaseWidget

	backend Backend
	ctx     context.Context
	log     *zap.Logger

	container       *fyne.Container
	speakButton     *ttwidget.Button
	listenButton    *ttwidget.Button
	languageSelect  *widget.Select
	transcriptLabel *widget.Label
}

// NewSpeechControls creates the controls and follows the speech and voice
// controllers of backend
func NewSpeechControls(ctx context.Context, backend Backend, log *zap.Logger) *SpeechControls {
	c := &SpeechControls{backend: backend, ctx: ctx, log: logging.OrNop(log)}

	c.speakButton = ttwidget.NewButtonWithIcon("Speak Description", theme.VolumeUpIcon(), c.onSpeak)
	c.speakButton.Importance = widget.HighImportance

	c.listenButton = ttwidget.NewButtonWithIcon("Start Listening", theme.MediaRecordIcon(), c.onListen)

	tags := stt.Languages()
	names := make([]string, len(tags))
	for i, tag := range tags {
		names[i] = stt.LanguageName(tag)
	}
	c.languageSelect = widget.NewSelect(names, func(name string) {
		for i, n := range names {
			if n == name && tags[i] != backend.Voice().State().Language {
				backend.SetLanguage(tags[i])
			}
		}
	})
	c.languageSelect.SetSelected(stt.LanguageName(backend.Voice().State().Language))

	c.transcriptLabel = widget.NewLabel("")
	c.transcriptLabel.TextStyle = fyne.TextStyle{Italic: true}
	c.transcriptLabel.Wrapping = fyne.TextWrapWord

	help := widget.NewLabel(commandHelp(backend.Voice().Table()))
	help.Wrapping = fyne.TextWrapWord

	c.container = container.NewVBox(
		widget.NewLabelWithStyle("Voice Commands", fyne.TextAlignLeading, fyne.TextStyle{Bold: true}),
		help,
		container.NewHBox(c.listenButton, layout.NewSpacer()),
		c.transcriptLabel,
		widget.NewLabelWithStyle("Voice Command Language", fyne.TextAlignLeading, fyne.TextStyle{Bold: true}),
		c.languageSelect,
		widget.NewSeparator(),
		widget.NewLabelWithStyle("Text-to-Speech", fyne.TextAlignLeading, fyne.TextStyle{Bold: true}),
		widget.NewLabel("Read out the description of the uploaded file."),
		container.NewHBox(c.speakButton, layout.NewSpacer()),
	)

	backend.Speech().OnStateChange(func(st speech.State) {
		fyne.Do(func() { c.setSpeaking(st == speech.Speaking) })
	})
	backend.Voice().OnStateChange(func(st voice.State) {
		fyne.Do(func() { c.setListening(st) })
	})
	backend.OnDescription(func(text string) {
		fyne.Do(func() { c.setDescriptionAvailable(text != "") })
	})
	c.setDescriptionAvailable(backend.Description() != "")

	c.ExtendBaseWidget(c)
	return c
}

// CreateRenderer implements fyne.Widget
func (c *SpeechControls) CreateRenderer() fyne.WidgetRenderer {
	return widget.NewSimpleRenderer(c.container)
}

// setupTooltips must run after the window tooltip layer exists
func (c *SpeechControls) setupTooltips() {
	c.speakButton.SetToolTip("Read the description aloud (s)")
	c.listenButton.SetToolTip("Start or stop voice commands (v)")
}

// onSpeak and onListen report failures on the live region themselves
func (c *SpeechControls) onSpeak() {
	if err := c.backend.ReadDescription(c.ctx); err != nil {
		c.log.Debug("read description failed", zap.Error(err))
	}
}

func (c *SpeechControls) onListen() {
	if _, err := c.backend.Voice().Toggle(c.ctx); err != nil {
		c.log.Debug("voice command toggle failed", zap.Error(err))
	}
}

func (c *SpeechControls) setSpeaking(speaking bool) {
	if speaking {
		c.speakButton.SetText("Stop Speaking")
		c.speakButton.SetIcon(theme.VolumeMuteIcon())
		c.speakButton.Enable()
		return
	}
	c.speakButton.SetText("Speak Description")
	c.speakButton.SetIcon(theme.VolumeUpIcon())
	c.setDescriptionAvailable(c.backend.Description() != "")
}

func (c *SpeechControls) setDescriptionAvailable(ok bool) {
	if ok || c.backend.Speech().State() == speech.Speaking {
		c.speakButton.Enable()
		return
	}
	c.speakButton.Disable()
}

func (c *SpeechControls) setListening(st voice.State) {
	if st.Listening {
		c.listenButton.SetText("Stop Listening")
		c.listenButton.SetIcon(theme.MediaStopIcon())
	} else {
		c.listenButton.SetText("Start Listening")
		c.listenButton.SetIcon(theme.MediaRecordIcon())
	}
	if st.LastTranscript != "" {
		c.transcriptLabel.SetText(fmt.Sprintf("Heard: %q", st.LastTranscript))
	}
}

func commandHelp(t voice.Table) string {
	text := "Say "
	for i, cmd := range t {
		if i > 0 {
			text += ", "
		}
		text += fmt.Sprintf("%q", cmd.Phrase)
	}
	return text + " to control the app. \"scroll up/down\" and \"zoom in/out\" also work."
}
