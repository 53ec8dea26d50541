package prefs

import (
	"fmt"
	"sync"

	"go.uber.org/zap"

	"codeberg.org/snonux/describeit/internal/announce"
	"codeberg.org/snonux/describeit/internal/logging"
)

// Preferences is the user-adjustable display state. It is never persisted.
type Preferences struct {
	Theme    Theme
	TextSize int
	Font     Font
}

// Defaults returns the start-up preferences.
func Defaults() Preferences {
	return Preferences{
		Theme:    ThemeDefault,
		TextSize: DefaultTextSize,
		Font:     FontSans,
	}
}

// normalize repairs out-of-range values so a Controller never holds an invalid state.
func (p Preferences) normalize() Preferences {
	if _, ok := palettes[p.Theme]; !ok {
		p.Theme = ThemeDefault
	}
	if _, ok := fontNames[p.Font]; !ok {
		p.Font = FontSans
	}
	if p.TextSize == 0 {
		p.TextSize = DefaultTextSize
	}
	p.TextSize = ClampTextSize(p.TextSize)
	return p
}

// Style is the resolved presentation state handed to views.
type Style struct {
	Preferences
	Variables  map[Role]string
	FontFamily string
}

// Style resolves p into style variables.
func (p Preferences) Style() Style {
	return Style{
		Preferences: p,
		Variables:   p.Theme.Variables(),
		FontFamily:  p.Font.Stack(),
	}
}

// Controller is the single owner of the preferences. All methods are safe
// for concurrent use; subscribers are called outside the lock.
type Controller struct {
	mu        sync.Mutex
	prefs     Preferences
	listeners []func(Style)

	announcer announce.Announcer
	log       *zap.Logger
}

// NewController creates a controller starting from initial.
func NewController(initial Preferences, announcer announce.Announcer, log *zap.Logger) *Controller {
	if announcer == nil {
		announcer = announce.Func(func(string) {})
	}
	return &Controller{
		prefs:     initial.normalize(),
		announcer: announcer,
		log:       logging.OrNop(log),
	}
}

// Current returns a snapshot of the preferences.
func (c *Controller) Current() Preferences {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.prefs
}

// Subscribe registers fn and immediately applies the current style to it.
func (c *Controller) Subscribe(fn func(Style)) {
	c.mu.Lock()
	c.listeners = append(c.listeners, fn)
	style := c.prefs.Style()
	c.mu.Unlock()

	fn(style)
}

// SetTheme switches to the named theme.
func (c *Controller) SetTheme(name string) error {
	t, err := ParseTheme(name)
	if err != nil {
		return err
	}
	c.update(func(p *Preferences) { p.Theme = t })
	c.announcer.Announce(fmt.Sprintf("Theme changed to %s", t.DisplayName()))
	return nil
}

// CycleTheme advances to the next theme in the fixed order and returns it.
func (c *Controller) CycleTheme() Theme {
	var next Theme
	c.update(func(p *Preferences) {
		next = p.Theme.Next()
		p.Theme = next
	})
	c.announcer.Announce(fmt.Sprintf("Theme changed to %s", next.DisplayName()))
	return next
}

// AdjustTextSize applies d, announces the new size and returns it.
func (c *Controller) AdjustTextSize(d Direction) int {
	var size int
	c.update(func(p *Preferences) {
		size = NextTextSize(p.TextSize, d)
		p.TextSize = size
	})
	c.announcer.Announce(fmt.Sprintf("Text size changed to %d pixels", size))
	return size
}

// SetTextSize sets a clamped size without an announcement. Zoom shortcuts use it.
func (c *Controller) SetTextSize(px int) int {
	size := ClampTextSize(px)
	c.update(func(p *Preferences) { p.TextSize = size })
	return size
}

// SetFontFamily switches to the named font family.
func (c *Controller) SetFontFamily(name string) error {
	f, err := ParseFont(name)
	if err != nil {
		return err
	}
	c.update(func(p *Preferences) { p.Font = f })
	c.announcer.Announce(fmt.Sprintf("Font changed to %s", f.DisplayName()))
	return nil
}

func (c *Controller) update(mutate func(*Preferences)) {
	c.mu.Lock()
	mutate(&c.prefs)
	style := c.prefs.Style()
	listeners := append([]func(Style){}, c.listeners...)
	c.mu.Unlock()

	c.log.Debug("preferences applied",
		zap.String("theme", string(style.Theme)),
		zap.Int("text_size", style.TextSize),
		zap.String("font", string(style.Font)))

	for _, fn := range listeners {
		fn(style)
	}
}
