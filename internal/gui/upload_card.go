package gui

import (
	"context"
	"fmt"
	"strings"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/dialog"
	"fyne.io/fyne/v2/storage"
	"fyne.io/fyne/v2/theme"
	"fyne.io/fyne/v2/widget"
	ttwidget "github.com/dweymouth/fyne-tooltip/widget"
	"go.uber.org/zap"

	"codeberg.org/snonux/describeit/internal/logging"
	"codeberg.org/snonux/describeit/internal/upload"
)

// UploadCard lets the user pick a file of one kind and run the simulated
// analysis on it
type UploadCard struct {
	widget.BaseWidget

	kind    upload.Kind
	backend Backend
	ctx     context.Context
	window  fyne.Window
	log     *zap.Logger

	container    *fyne.Container
	fileLabel    *widget.Label
	chooseButton *ttwidget.Button
	uploadButton *ttwidget.Button
	progress     *widget.ProgressBar
	errorLabel   *widget.Label
	preview      *ImageDisplay
}

// NewUploadCard creates the card for kind
func NewUploadCard(ctx context.Context, kind upload.Kind, backend Backend, window fyne.Window, log *zap.Logger) *UploadCard {
	c := &UploadCard{kind: kind, backend: backend, ctx: ctx, window: window, log: logging.OrNop(log)}

	c.fileLabel = widget.NewLabel(fmt.Sprintf("Select %s to describe (%s)", article(kind), strings.Join(kind.Extensions(), ", ")))
	c.fileLabel.Wrapping = fyne.TextWrapWord

	c.chooseButton = ttwidget.NewButtonWithIcon("Choose File", theme.FolderOpenIcon(), c.onChoose)

	icon := theme.DocumentIcon()
	if kind == upload.Image {
		icon = theme.FileImageIcon()
	}
	c.uploadButton = ttwidget.NewButtonWithIcon(fmt.Sprintf("Describe %s", kind.Title()), icon, c.onUpload)

	c.progress = widget.NewProgressBar()
	c.progress.Max = 100

	c.errorLabel = widget.NewLabel("")
	c.errorLabel.Importance = widget.DangerImportance
	c.errorLabel.Wrapping = fyne.TextWrapWord
	c.errorLabel.Hide()

	items := []fyne.CanvasObject{
		c.fileLabel,
		c.chooseButton,
		c.progress,
		c.uploadButton,
		c.errorLabel,
	}
	if kind == upload.Image {
		c.preview = NewImageDisplay()
		items = append(items, c.preview)
	}
	c.container = container.NewVBox(items...)

	backend.Simulator(kind).Subscribe(func(r upload.Result) {
		fyne.Do(func() { c.show(r) })
	})

	c.ExtendBaseWidget(c)
	return c
}

// CreateRenderer implements fyne.Widget
func (c *UploadCard) CreateRenderer() fyne.WidgetRenderer {
	return widget.NewSimpleRenderer(c.container)
}

func (c *UploadCard) setupTooltips(chooseKey, uploadKey string) {
	c.chooseButton.SetToolTip(fmt.Sprintf("Choose %s (%s)", article(c.kind), chooseKey))
	c.uploadButton.SetToolTip(fmt.Sprintf("Describe the selected %s (%s)", c.kind, uploadKey))
}

func (c *UploadCard) onChoose() {
	d := dialog.NewFileOpen(func(reader fyne.URIReadCloser, err error) {
		if err != nil {
			dialog.ShowError(err, c.window)
			return
		}
		if reader == nil {
			return
		}
		path := reader.URI().Path()
		reader.Close()

		file, err := upload.FileRefFromPath(path)
		if err != nil {
			dialog.ShowError(err, c.window)
			return
		}
		c.selectFile(file)
	}, c.window)
	d.SetFilter(storage.NewExtensionFileFilter(c.kind.Extensions()))
	d.Show()
}

func (c *UploadCard) selectFile(file *upload.FileRef) {
	c.backend.Select(c.kind, file)
	c.fileLabel.SetText(fmt.Sprintf("%s (%s)", file.Name, upload.HumanSize(file.Size)))
	if c.preview != nil {
		c.preview.SetFile(file)
	}
}

// onUpload leaves user-facing errors to the simulator result and the live
// region
func (c *UploadCard) onUpload() {
	if _, err := c.backend.Upload(c.ctx, c.kind); err != nil {
		c.log.Debug("upload not started", zap.String("kind", string(c.kind)), zap.Error(err))
	}
}

func (c *UploadCard) show(r upload.Result) {
	c.progress.SetValue(float64(r.Progress))
	if r.Error != "" {
		c.errorLabel.SetText(r.Error)
		c.errorLabel.Show()
	} else {
		c.errorLabel.Hide()
	}
	if r.Running {
		c.uploadButton.Disable()
		c.chooseButton.Disable()
	} else {
		c.uploadButton.Enable()
		c.chooseButton.Enable()
	}
}

func article(kind upload.Kind) string {
	if kind == upload.Image {
		return "an image"
	}
	return "a document"
}
