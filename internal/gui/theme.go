package gui

import (
	"image/color"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/theme"
	"go.uber.org/zap"

	"codeberg.org/snonux/describeit/internal/logging"
	"codeberg.org/snonux/describeit/internal/prefs"
)

// colorRoles maps fyne colour names onto the preference style roles.
var colorRoles = map[fyne.ThemeColorName]prefs.Role{
	theme.ColorNameBackground:          prefs.RoleBackground,
	theme.ColorNameForeground:          prefs.RoleForeground,
	theme.ColorNamePrimary:             prefs.RolePrimary,
	theme.ColorNameForegroundOnPrimary: prefs.RolePrimaryForeground,
	theme.ColorNameButton:              prefs.RoleSecondary,
	theme.ColorNameDisabledButton:      prefs.RoleMuted,
	theme.ColorNameDisabled:            prefs.RoleMutedForeground,
	theme.ColorNamePlaceHolder:         prefs.RoleMutedForeground,
	theme.ColorNameHover:               prefs.RoleAccent,
	theme.ColorNameFocus:               prefs.RolePrimary,
	theme.ColorNameSelection:           prefs.RoleAccent,
	theme.ColorNameInputBackground:     prefs.RoleCard,
	theme.ColorNameInputBorder:         prefs.RoleBorder,
	theme.ColorNameSeparator:           prefs.RoleBorder,
	theme.ColorNameHeaderBackground:    prefs.RoleCard,
	theme.ColorNameMenuBackground:      prefs.RoleCard,
	theme.ColorNameOverlayBackground:   prefs.RoleCard,
	theme.ColorNameScrollBar:           prefs.RoleMutedForeground,
}

// Palette is a resolved set of theme colours.
type Palette map[prefs.Role]color.Color

// NewPalette parses the style variables. Unparseable values are skipped so
// the default theme fills the gap.
func NewPalette(vars map[prefs.Role]string, log *zap.Logger) Palette {
	p := make(Palette, len(vars))
	for role, value := range vars {
		c, err := prefs.ParseHSL(value)
		if err != nil {
			logging.OrNop(log).Warn("invalid theme colour", zap.String("role", string(role)), zap.Error(err))
			continue
		}
		p[role] = c
	}
	return p
}

// accessibleTheme applies the user's preferences on top of the default fyne
// theme. A new value is built for every preference change.
type accessibleTheme struct {
	palette  Palette
	textSize float32
	font     prefs.Font
	dyslexic fyne.Resource
}

func newAccessibleTheme(style prefs.Style, dyslexic fyne.Resource, log *zap.Logger) *accessibleTheme {
	return &accessibleTheme{
		palette:  NewPalette(style.Variables, log),
		textSize: float32(style.TextSize),
		font:     style.Font,
		dyslexic: dyslexic,
	}
}

func (t *accessibleTheme) Color(name fyne.ThemeColorName, variant fyne.ThemeVariant) color.Color {
	if role, ok := colorRoles[name]; ok {
		if c, ok := t.palette[role]; ok {
			return c
		}
	}
	return theme.DefaultTheme().Color(name, variant)
}

func (t *accessibleTheme) Font(style fyne.TextStyle) fyne.Resource {
	switch t.font {
	case prefs.FontMono:
		style.Monospace = true
	case prefs.FontDyslexic:
		if t.dyslexic != nil && !style.Monospace && !style.Symbol {
			return t.dyslexic
		}
	}
	// fyne bundles no serif face, serif falls back to the default font
	return theme.DefaultTheme().Font(style)
}

func (t *accessibleTheme) Icon(name fyne.ThemeIconName) fyne.Resource {
	return theme.DefaultTheme().Icon(name)
}

func (t *accessibleTheme) Size(name fyne.ThemeSizeName) float32 {
	size := t.textSize

	// Headings scale with the body text
	def := theme.DefaultTheme()
	scale := size / def.Size(theme.SizeNameText)
	switch name {
	case theme.SizeNameText:
		return size
	case theme.SizeNameHeadingText, theme.SizeNameSubHeadingText, theme.SizeNameCaptionText:
		return def.Size(name) * scale
	default:
		return def.Size(name)
	}
}

// loadDyslexicFont reads a TTF font. An empty path disables the font.
func loadDyslexicFont(path string, log *zap.Logger) fyne.Resource {
	if path == "" {
		return nil
	}
	res, err := fyne.LoadResourceFromPath(path)
	if err != nil {
		logging.OrNop(log).Warn("failed to load dyslexic font", zap.String("path", path), zap.Error(err))
		return nil
	}
	return res
}
