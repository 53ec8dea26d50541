package prefs

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/lucasb-eyer/go-colorful"
)

// ErrUnknownTheme is returned for theme names outside the fixed list.
var ErrUnknownTheme = errors.New("unknown theme")

// Theme is a named colour scheme.
type Theme string

const (
	ThemeDefault      Theme = "default"
	ThemeDark         Theme = "dark"
	ThemeHighContrast Theme = "high-contrast"
	ThemeYellowBlack  Theme = "yellow-black"
)

// themeOrder is the cycle order used by the "change theme" command.
var themeOrder = []Theme{ThemeDefault, ThemeDark, ThemeHighContrast, ThemeYellowBlack}

// Role is the semantic slot a style variable fills.
type Role string

const (
	RoleBackground          Role = "background"
	RoleForeground          Role = "foreground"
	RolePrimary             Role = "primary"
	RolePrimaryForeground   Role = "primary-foreground"
	RoleSecondary           Role = "secondary"
	RoleSecondaryForeground Role = "secondary-foreground"
	RoleMuted               Role = "muted"
	RoleMutedForeground     Role = "muted-foreground"
	RoleAccent              Role = "accent"
	RoleBorder              Role = "border"
	RoleCard                Role = "card"
	RoleCardForeground      Role = "card-foreground"
)

var roleOrder = []Role{
	RoleBackground, RoleForeground,
	RolePrimary, RolePrimaryForeground,
	RoleSecondary, RoleSecondaryForeground,
	RoleMuted, RoleMutedForeground,
	RoleAccent, RoleBorder,
	RoleCard, RoleCardForeground,
}

// palettes maps each theme to HSL triples ("hue saturation% lightness%").
var palettes = map[Theme]map[Role]string{
	ThemeDefault: {
		RoleBackground:          "210 50% 95%",
		RoleForeground:          "222 47% 11%",
		RolePrimary:             "221 83% 53%",
		RolePrimaryForeground:   "210 40% 98%",
		RoleSecondary:           "210 40% 90%",
		RoleSecondaryForeground: "222 47% 11%",
		RoleMuted:               "210 40% 96%",
		RoleMutedForeground:     "215 16% 47%",
		RoleAccent:              "210 40% 96%",
		RoleBorder:              "214 32% 91%",
		RoleCard:                "0 0% 100%",
		RoleCardForeground:      "222 47% 11%",
	},
	ThemeDark: {
		RoleBackground:          "222 84% 4.9%",
		RoleForeground:          "210 40% 98%",
		RolePrimary:             "217 91.2% 59.8%",
		RolePrimaryForeground:   "222 47.4% 11.2%",
		RoleSecondary:           "217 32.6% 17.5%",
		RoleSecondaryForeground: "210 40% 98%",
		RoleMuted:               "217 32.6% 17.5%",
		RoleMutedForeground:     "215 20.2% 65.1%",
		RoleAccent:              "217 32.6% 17.5%",
		RoleBorder:              "217 32.6% 17.5%",
		RoleCard:                "222.2 84% 4.9%",
		RoleCardForeground:      "210 40% 98%",
	},
	ThemeHighContrast: {
		RoleBackground:          "0 0% 0%",
		RoleForeground:          "0 0% 100%",
		RolePrimary:             "0 0% 100%",
		RolePrimaryForeground:   "0 0% 0%",
		RoleSecondary:           "0 0% 20%",
		RoleSecondaryForeground: "0 0% 100%",
		RoleMuted:               "0 0% 20%",
		RoleMutedForeground:     "0 0% 80%",
		RoleAccent:              "0 0% 20%",
		RoleBorder:              "0 0% 40%",
		RoleCard:                "0 0% 0%",
		RoleCardForeground:      "0 0% 100%",
	},
	ThemeYellowBlack: {
		RoleBackground:          "60 100% 50%",
		RoleForeground:          "0 0% 0%",
		RolePrimary:             "0 0% 0%",
		RolePrimaryForeground:   "60 100% 50%",
		RoleSecondary:           "60 100% 40%",
		RoleSecondaryForeground: "0 0% 0%",
		RoleMuted:               "60 100% 40%",
		RoleMutedForeground:     "0 0% 20%",
		RoleAccent:              "60 100% 40%",
		RoleBorder:              "0 0% 0%",
		RoleCard:                "60 100% 50%",
		RoleCardForeground:      "0 0% 0%",
	},
}

// Themes returns all themes in cycle order.
func Themes() []Theme {
	return append([]Theme(nil), themeOrder...)
}

// Roles returns all style roles in a stable order.
func Roles() []Role {
	return append([]Role(nil), roleOrder...)
}

// ParseTheme converts a name such as "High Contrast" or "high-contrast" to a Theme.
func ParseTheme(name string) (Theme, error) {
	normalized := strings.ReplaceAll(strings.ToLower(strings.TrimSpace(name)), " ", "-")
	for _, t := range themeOrder {
		if string(t) == normalized {
			return t, nil
		}
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownTheme, name)
}

// Next returns the theme following t in cycle order, wrapping at the end.
// Unknown themes restart the cycle at the first theme.
func (t Theme) Next() Theme {
	for i, candidate := range themeOrder {
		if candidate == t {
			return themeOrder[(i+1)%len(themeOrder)]
		}
	}
	return themeOrder[0]
}

// DisplayName returns a title-cased label, e.g. "Yellow Black".
func (t Theme) DisplayName() string {
	words := strings.Split(string(t), "-")
	for i, w := range words {
		if w != "" {
			words[i] = strings.ToUpper(w[:1]) + w[1:]
		}
	}
	return strings.Join(words, " ")
}

// Variables returns a copy of the style variables of t.
func (t Theme) Variables() map[Role]string {
	palette, ok := palettes[t]
	if !ok {
		palette = palettes[ThemeDefault]
	}
	vars := make(map[Role]string, len(palette))
	for role, value := range palette {
		vars[role] = value
	}
	return vars
}

// ParseHSL parses a "210 50% 95%" style triple into a colour.
func ParseHSL(value string) (colorful.Color, error) {
	fields := strings.Fields(value)
	if len(fields) != 3 {
		return colorful.Color{}, fmt.Errorf("invalid HSL value %q", value)
	}

	h, err := strconv.ParseFloat(fields[0], 64)
	if err != nil {
		return colorful.Color{}, fmt.Errorf("invalid hue in %q: %w", value, err)
	}
	s, err := parsePercent(fields[1])
	if err != nil {
		return colorful.Color{}, fmt.Errorf("invalid saturation in %q: %w", value, err)
	}
	l, err := parsePercent(fields[2])
	if err != nil {
		return colorful.Color{}, fmt.Errorf("invalid lightness in %q: %w", value, err)
	}

	return colorful.Hsl(h, s, l).Clamped(), nil
}

func parsePercent(field string) (float64, error) {
	v, err := strconv.ParseFloat(strings.TrimSuffix(field, "%"), 64)
	if err != nil {
		return 0, err
	}
	return v / 100, nil
}
