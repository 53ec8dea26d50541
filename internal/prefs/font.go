package prefs

import (
	"errors"
	"fmt"
	"strings"
)

// ErrUnknownFont is returned for font names outside the fixed list.
var ErrUnknownFont = errors.New("unknown font family")

// Font is a font family choice.
type Font string

const (
	FontSans     Font = "sans"
	FontSerif    Font = "serif"
	FontMono     Font = "mono"
	FontDyslexic Font = "dyslexic"
)

var fontOrder = []Font{FontSans, FontSerif, FontMono, FontDyslexic}

var fontNames = map[Font]string{
	FontSans:     "Sans-serif",
	FontSerif:    "Serif",
	FontMono:     "Monospace",
	FontDyslexic: "OpenDyslexic",
}

var fontStacks = map[Font]string{
	FontSans:     `ui-sans-serif, system-ui, -apple-system, BlinkMacSystemFont, "Segoe UI", Roboto, "Helvetica Neue", Arial, "Noto Sans", sans-serif`,
	FontSerif:    `ui-serif, Georgia, Cambria, "Times New Roman", Times, serif`,
	FontMono:     `ui-monospace, SFMono-Regular, Menlo, Monaco, Consolas, "Liberation Mono", "Courier New", monospace`,
	FontDyslexic: `"OpenDyslexic", sans-serif`,
}

// Fonts returns all font families in menu order.
func Fonts() []Font {
	return append([]Font(nil), fontOrder...)
}

// ParseFont accepts either the key ("mono") or the display name ("Monospace").
func ParseFont(name string) (Font, error) {
	n := strings.ToLower(strings.TrimSpace(name))
	for _, f := range fontOrder {
		if string(f) == n || strings.ToLower(fontNames[f]) == n {
			return f, nil
		}
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownFont, name)
}

// DisplayName returns the menu label of f.
func (f Font) DisplayName() string {
	if name, ok := fontNames[f]; ok {
		return name
	}
	return fontNames[FontSans]
}

// Stack returns the font-family fallback list for f. Unknown fonts get the sans stack.
func (f Font) Stack() string {
	if stack, ok := fontStacks[f]; ok {
		return stack
	}
	return fontStacks[FontSans]
}
