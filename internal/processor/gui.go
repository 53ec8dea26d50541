package processor

import (
	"context"

	"codeberg.org/snonux/describeit/internal/gui"
	"codeberg.org/snonux/describeit/internal/logging"
)

var _ gui.Backend = (*Processor)(nil)

// RunGUIMode launches the graphical interface and blocks until its window
// is closed. logs feeds the log viewer and may be nil.
func (p *Processor) RunGUIMode(ctx context.Context, logs *logging.Buffer) error {
	app := gui.New(gui.Config{DyslexicFont: p.flags.DyslexicFont}, p, logs, p.log.Named("gui"))
	return app.Run(ctx)
}
