package gui

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/app"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/dialog"
	"fyne.io/fyne/v2/layout"
	"fyne.io/fyne/v2/theme"
	"fyne.io/fyne/v2/widget"
	fynetooltip "github.com/dweymouth/fyne-tooltip"
	ttwidget "github.com/dweymouth/fyne-tooltip/widget"
	"go.uber.org/zap"

	"codeberg.org/snonux/describeit/internal"
	"codeberg.org/snonux/describeit/internal/announce"
	"codeberg.org/snonux/describeit/internal/logging"
	"codeberg.org/snonux/describeit/internal/prefs"
	"codeberg.org/snonux/describeit/internal/speech"
	"codeberg.org/snonux/describeit/internal/upload"
	"codeberg.org/snonux/describeit/internal/voice"
)

// Backend is everything the window drives. The processor implements it.
type Backend interface {
	Region() *announce.Region
	Preferences() *prefs.Controller
	Voice() *voice.Dispatcher
	Speech() *speech.Controller
	Simulator(kind upload.Kind) *upload.Simulator

	Select(kind upload.Kind, file *upload.FileRef)
	Selected(kind upload.Kind) *upload.FileRef
	Upload(ctx context.Context, kind upload.Kind) (*upload.Job, error)

	Description() string
	OnDescription(fn func(string))
	ReadDescription(ctx context.Context) error

	SetLanguage(lang string)
	SetScroller(fn func(dy float32))
	Zoom(delta int) int
}

// Config holds GUI application configuration
type Config struct {
	// DyslexicFont is the path of a TTF file used for the dyslexic font
	// family. Without it that family renders with the default face.
	DyslexicFont string
}

// Application represents the main GUI application
type Application struct {
	// Fyne components
	app    fyne.App
	window fyne.Window

	backend  Backend
	logs     *logging.Buffer
	log      *zap.Logger
	dyslexic fyne.Resource

	// Accessibility options
	textSizeLabel  *widget.Label
	smallerButton  *ttwidget.Button
	largerButton   *ttwidget.Button
	resetButton    *ttwidget.Button
	themeButtons   map[prefs.Theme]*ttwidget.Button
	fontSelect     *widget.Select
	helpButton     *ttwidget.Button
	speechControls *SpeechControls

	// Uploads and results
	tabs          *container.AppTabs
	cards         map[upload.Kind]*UploadCard
	description   *DescriptionEntry
	detailsLabel  *widget.Label
	resultError   *widget.Label
	resultsCard   *widget.Card
	liveRegion    *widget.Label
	logViewer     *LogViewer
	scroll        *container.Scroll
	dialogShowing bool

	// Background processing
	ctx    context.Context
	cancel context.CancelFunc
	mu     sync.Mutex
}

// New creates the window for backend. logs may be nil, in which case the
// log viewer stays empty.
func New(cfg Config, backend Backend, logs *logging.Buffer, log *zap.Logger) *Application {
	ctx, cancel := context.WithCancel(context.Background())

	myApp := app.NewWithID("org.codeberg.snonux.describeit")
	myApp.SetIcon(GetAppIcon())

	a := &Application{
		app:          myApp,
		backend:      backend,
		logs:         logs,
		log:          logging.OrNop(log),
		themeButtons: make(map[prefs.Theme]*ttwidget.Button),
		cards:        make(map[upload.Kind]*UploadCard),
		ctx:          ctx,
		cancel:       cancel,
	}
	a.dyslexic = loadDyslexicFont(cfg.DyslexicFont, a.log)

	a.setupUI()
	return a
}

// setupUI creates the main user interface
func (a *Application) setupUI() {
	a.window = a.app.NewWindow(fmt.Sprintf("DescribeIt v%s - Accessible Descriptions", internal.Version))
	a.window.SetIcon(GetAppIcon())
	a.window.Resize(fyne.NewSize(900, 800))

	options := a.createOptionsCard()
	a.speechControls = NewSpeechControls(a.ctx, a.backend, a.log)

	a.tabs = container.NewAppTabs()
	for _, kind := range []upload.Kind{upload.Document, upload.Image} {
		card := NewUploadCard(a.ctx, kind, a.backend, a.window, a.log)
		a.cards[kind] = card
		a.tabs.Append(container.NewTabItem(kind.Title(), card))
	}

	results := a.createResultsCard()

	a.liveRegion = widget.NewLabel("")
	a.liveRegion.Wrapping = fyne.TextWrapWord
	a.liveRegion.TextStyle = fyne.TextStyle{Italic: true}

	a.logViewer = NewLogViewer(a.logs)

	body := container.NewVBox(
		options,
		widget.NewCard("", "", a.speechControls),
		a.tabs,
		results,
		a.logViewer,
	)
	a.scroll = container.NewVScroll(body)
	a.backend.SetScroller(func(dy float32) {
		fyne.Do(func() { a.scrollBy(dy) })
	})

	content := container.NewBorder(
		nil,
		container.NewVBox(widget.NewSeparator(), a.liveRegion),
		nil, nil,
		a.scroll,
	)

	// Add the tooltip layer to enable tooltips
	a.window.SetContent(fynetooltip.AddWindowToolTipLayer(content, a.window.Canvas()))
	a.setupTooltips()

	a.subscribe()

	a.window.SetOnClosed(func() {
		a.cancel()
	})

	a.setupKeyboardShortcuts()
}

func (a *Application) createOptionsCard() fyne.CanvasObject {
	prefsCtl := a.backend.Preferences()

	a.textSizeLabel = widget.NewLabel("")
	a.smallerButton = ttwidget.NewButtonWithIcon("A-", theme.ZoomOutIcon(), func() {
		prefsCtl.AdjustTextSize(prefs.Decrease)
	})
	a.largerButton = ttwidget.NewButtonWithIcon("A+", theme.ZoomInIcon(), func() {
		prefsCtl.AdjustTextSize(prefs.Increase)
	})
	a.resetButton = ttwidget.NewButtonWithIcon("Reset", theme.ViewRestoreIcon(), func() {
		prefsCtl.AdjustTextSize(prefs.Reset)
	})

	themeRow := container.NewHBox()
	for _, t := range prefs.Themes() {
		btn := ttwidget.NewButtonWithIcon(t.DisplayName(), theme.ColorPaletteIcon(), func() {
			if err := prefsCtl.SetTheme(string(t)); err != nil {
				a.log.Debug("theme not applied", zap.Error(err))
			}
		})
		a.themeButtons[t] = btn
		themeRow.Add(btn)
	}

	fonts := prefs.Fonts()
	names := make([]string, len(fonts))
	for i, f := range fonts {
		names[i] = f.DisplayName()
	}
	a.fontSelect = widget.NewSelect(names, func(name string) {
		if name != prefsCtl.Current().Font.DisplayName() {
			if err := prefsCtl.SetFontFamily(name); err != nil {
				a.log.Debug("font not applied", zap.Error(err))
			}
		}
	})

	a.helpButton = ttwidget.NewButtonWithIcon("", theme.HelpIcon(), a.onShowHotkeys)

	bold := fyne.TextStyle{Bold: true}
	return widget.NewCard("Accessibility Options", "", container.NewVBox(
		widget.NewLabelWithStyle("Text Size", fyne.TextAlignLeading, bold),
		container.NewHBox(a.smallerButton, a.textSizeLabel, a.largerButton, a.resetButton, layout.NewSpacer(), a.helpButton),
		widget.NewLabelWithStyle("Color Theme", fyne.TextAlignLeading, bold),
		container.NewHScroll(themeRow),
		widget.NewLabelWithStyle("Font Family", fyne.TextAlignLeading, bold),
		a.fontSelect,
	))
}

func (a *Application) createResultsCard() fyne.CanvasObject {
	a.description = NewDescriptionEntry()
	a.description.SetPlaceHolder("The description of the uploaded file will appear here...")
	a.description.SetMinRowsVisible(6)
	a.description.SetOnEscape(func() {
		a.window.Canvas().Unfocus()
	})

	a.detailsLabel = widget.NewLabel("")
	a.detailsLabel.Wrapping = fyne.TextWrapWord
	a.detailsLabel.TextStyle = fyne.TextStyle{Monospace: true}

	a.resultError = widget.NewLabel("")
	a.resultError.Importance = widget.DangerImportance
	a.resultError.Wrapping = fyne.TextWrapWord
	a.resultError.Hide()

	a.resultsCard = widget.NewCard("Results", "", container.NewVBox(
		a.resultError,
		a.description,
		a.detailsLabel,
	))
	a.resultsCard.Hide()
	return a.resultsCard
}

// subscribe connects the widgets to the backend controllers. Callbacks may
// arrive from any goroutine, so widget changes go through fyne.Do.
func (a *Application) subscribe() {
	first := true
	a.backend.Preferences().Subscribe(func(style prefs.Style) {
		// Subscribe applies the current style synchronously, before the
		// main loop runs.
		if first {
			first = false
			a.applyStyle(style)
			return
		}
		fyne.Do(func() { a.applyStyle(style) })
	})

	a.backend.Region().Subscribe(func(msg string) {
		fyne.Do(func() { a.liveRegion.SetText(msg) })
	})

	a.backend.OnDescription(func(text string) {
		fyne.Do(func() { a.showDescription(text) })
	})

	for _, kind := range []upload.Kind{upload.Document, upload.Image} {
		sim := a.backend.Simulator(kind)
		sim.Subscribe(func(r upload.Result) {
			fyne.Do(func() { a.showResult(r) })
		})
	}
}

func (a *Application) applyStyle(style prefs.Style) {
	a.app.Settings().SetTheme(newAccessibleTheme(style, a.dyslexic, a.log))

	a.textSizeLabel.SetText(fmt.Sprintf("%dpx", style.TextSize))
	setEnabled(a.smallerButton, style.TextSize > prefs.MinTextSize)
	setEnabled(a.largerButton, style.TextSize < prefs.MaxTextSize)

	for t, btn := range a.themeButtons {
		if t == style.Theme {
			btn.Importance = widget.HighImportance
		} else {
			btn.Importance = widget.MediumImportance
		}
		btn.Refresh()
	}

	if a.fontSelect.Selected != style.Font.DisplayName() {
		a.fontSelect.SetSelected(style.Font.DisplayName())
	}
}

func (a *Application) showDescription(text string) {
	a.description.SetText(text)
	if text == "" {
		a.detailsLabel.SetText("")
	}
	a.updateResultsVisibility()
}

func (a *Application) showResult(r upload.Result) {
	switch {
	case r.Running:
		a.resultError.Hide()
	case r.Error != "":
		a.resultError.SetText(r.Error)
		a.resultError.Show()
	case r.Analysis != nil:
		a.resultError.Hide()
		a.detailsLabel.SetText(formatAnalysis(r.Analysis))
	}
	a.updateResultsVisibility()
}

func (a *Application) updateResultsVisibility() {
	if a.description.Text != "" || a.resultError.Visible() {
		a.resultsCard.Show()
	} else {
		a.resultsCard.Hide()
	}
}

// scrollBy moves the window content by dy pixels, clamped to the content.
func (a *Application) scrollBy(dy float32) {
	viewport := a.scroll.Size().Height
	contentHeight := a.scroll.Content.MinSize().Height
	a.scroll.Offset = fyne.NewPos(a.scroll.Offset.X, clampOffset(a.scroll.Offset.Y+dy, contentHeight, viewport))
	a.scroll.Refresh()
}

// Run starts the GUI application and blocks until the window is closed or
// ctx is cancelled
func (a *Application) Run(ctx context.Context) error {
	stop := context.AfterFunc(ctx, func() {
		fyne.Do(func() { a.window.Close() })
	})
	defer stop()

	// Don't focus any widget on startup
	a.window.ShowAndRun()
	a.cancel()
	return nil
}

// setupTooltips sets up all tooltips after the tooltip layer has been created
func (a *Application) setupTooltips() {
	a.smallerButton.SetToolTip("Decrease text size (-)")
	a.largerButton.SetToolTip("Increase text size (+)")
	a.resetButton.SetToolTip("Reset text size (0)")
	for t, btn := range a.themeButtons {
		btn.SetToolTip(fmt.Sprintf("Use the %s theme (t cycles themes)", t.DisplayName()))
	}
	a.helpButton.SetToolTip("Show hotkeys (h)")
	a.speechControls.setupTooltips()
	a.cards[upload.Document].setupTooltips("o", "u")
	a.cards[upload.Image].setupTooltips("i", "m")
}

func (a *Application) setupKeyboardShortcuts() {
	a.window.Canvas().SetOnTypedRune(func(r rune) {
		if a.isDialogShowing() {
			return
		}
		a.handleShortcutRune(r)
	})

	a.window.Canvas().SetOnTypedKey(func(ev *fyne.KeyEvent) {
		switch ev.Name {
		case fyne.KeyEscape:
			a.window.Canvas().Unfocus()
		case fyne.KeyPageDown:
			a.scrollBy(a.scroll.Size().Height)
		case fyne.KeyPageUp:
			a.scrollBy(-a.scroll.Size().Height)
		}
	})
}

// handleShortcutRune handles the single key shortcuts. Runes are used
// instead of key names so that + and = work on every layout.
func (a *Application) handleShortcutRune(r rune) {
	prefsCtl := a.backend.Preferences()

	switch r {
	case '+', '=':
		prefsCtl.AdjustTextSize(prefs.Increase)
	case '-', '_':
		prefsCtl.AdjustTextSize(prefs.Decrease)
	case '0':
		prefsCtl.AdjustTextSize(prefs.Reset)
	case 't', 'T':
		prefsCtl.CycleTheme()
	case 'o', 'O':
		a.tabs.SelectIndex(0)
		a.cards[upload.Document].onChoose()
	case 'i', 'I':
		a.tabs.SelectIndex(1)
		a.cards[upload.Image].onChoose()
	case 'u', 'U':
		a.tabs.SelectIndex(0)
		a.cards[upload.Document].onUpload()
	case 'm', 'M':
		a.tabs.SelectIndex(1)
		a.cards[upload.Image].onUpload()
	case 's', 'S':
		a.speechControls.onSpeak()
	case 'v', 'V':
		a.speechControls.onListen()
	case 'h', 'H', '?':
		a.onShowHotkeys()
	case 'q', 'Q':
		a.window.Close()
	}
}

func (a *Application) isDialogShowing() bool {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.dialogShowing
}

func (a *Application) setDialogShowing(showing bool) {
	a.mu.Lock()
	a.dialogShowing = showing
	a.mu.Unlock()
}

func (a *Application) onShowHotkeys() {
	content := widget.NewRichTextFromMarkdown(hotkeyHelp(a.backend.Voice().Table()))
	content.Wrapping = fyne.TextWrapWord

	scroll := container.NewScroll(container.NewPadded(content))
	scroll.SetMinSize(fyne.NewSize(600, 480))

	d := dialog.NewCustom("Keyboard Shortcuts", "Close", scroll, a.window)
	a.setDialogShowing(true)

	// 'c' closes the dialog, every other shortcut is paused meanwhile
	a.window.Canvas().SetOnTypedRune(func(r rune) {
		if r == 'c' || r == 'C' {
			d.Hide()
		}
	})
	d.SetOnClosed(func() {
		a.setDialogShowing(false)
		a.setupKeyboardShortcuts()
	})
	d.Show()
}

func hotkeyHelp(table voice.Table) string {
	var b strings.Builder
	b.WriteString(`## Text and Theme
**+** Increase text size  
**-** Decrease text size  
**0** Reset text size  
**t** Next colour theme  

## Files
**o** Choose a document  
**u** Describe the document  
**i** Choose an image  
**m** Describe the image  

## Speech
**s** Read the description aloud  
**v** Start or stop voice commands  

## Window
**PgUp/PgDn** Scroll  
**Esc** Unfocus field  
**h** Show hotkeys  
**c** Close dialog  
**q** Quit application  

## Voice Commands
`)
	for _, cmd := range table {
		fmt.Fprintf(&b, "**%s** %s  \n", cmd.Phrase, actionHelp(cmd.Action))
	}
	return b.String()
}

func actionHelp(action voice.Action) string {
	switch action {
	case voice.UploadDocument:
		return "Describe the selected document"
	case voice.UploadImage:
		return "Describe the selected image"
	case voice.ChangeTheme:
		return "Next colour theme"
	case voice.IncreaseTextSize:
		return "Increase text size"
	case voice.DecreaseTextSize:
		return "Decrease text size"
	case voice.ResetTextSize:
		return "Reset text size"
	case voice.ReadDescription:
		return "Read the description aloud"
	case voice.ScrollDown:
		return "Scroll down"
	case voice.ScrollUp:
		return "Scroll up"
	case voice.ZoomIn:
		return "Zoom in"
	case voice.ZoomOut:
		return "Zoom out"
	}
	return string(action)
}

func formatAnalysis(an *upload.Analysis) string {
	if an == nil {
		return ""
	}
	return fmt.Sprintf("File: %s\nSize: %s\nContent type: %s\nUploaded: %s\nProcessing time: %s\nConfidence: %d%%",
		an.FileName,
		an.FileSize,
		an.ContentType,
		an.UploadedAt.Format(time.DateTime),
		an.ProcessingTime.Round(time.Millisecond),
		an.Confidence)
}

// clampOffset keeps a vertical scroll offset inside the content.
func clampOffset(offset, content, viewport float32) float32 {
	limit := content - viewport
	if offset > limit {
		offset = limit
	}
	if offset < 0 {
		offset = 0
	}
	return offset
}

type disableable interface {
	Enable()
	Disable()
}

func setEnabled(w disableable, enabled bool) {
	if enabled {
		w.Enable()
	} else {
		w.Disable()
	}
}
