package prefs

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"codeberg.org/snonux/describeit/internal/announce"
)

func TestNextTextSizeStaysInBounds(t *testing.T) {
	for size := MinTextSize - 10; size <= MaxTextSize+10; size++ {
		for _, d := range []Direction{Increase, Decrease, Reset} {
			got := NextTextSize(size, d)
			assert.GreaterOrEqual(t, got, MinTextSize, "size %d %s", size, d)
			assert.LessOrEqual(t, got, MaxTextSize, "size %d %s", size, d)
		}
	}

	assert.Equal(t, MinTextSize, NextTextSize(MinTextSize, Decrease))
	assert.Equal(t, MinTextSize, NextTextSize(13, Decrease))
	assert.Equal(t, MaxTextSize, NextTextSize(MaxTextSize, Increase))
	assert.Equal(t, DefaultTextSize, NextTextSize(30, Reset))
}

func TestAdjustTextSizeScenario(t *testing.T) {
	region := announce.NewRegion(nil)
	c := NewController(Defaults(), region, nil)

	var sizes []int
	for i := 0; i < 5; i++ {
		sizes = append(sizes, c.AdjustTextSize(Increase))
	}

	assert.Equal(t, []int{18, 20, 22, 24, 26}, sizes)
	assert.Equal(t, "Text size changed to 26 pixels", region.Message())

	for i := 0; i < 10; i++ {
		c.AdjustTextSize(Increase)
	}
	assert.Equal(t, MaxTextSize, c.Current().TextSize)
}

func TestCycleThemeVisitsEveryThemeOnce(t *testing.T) {
	c := NewController(Defaults(), nil, nil)

	seen := map[Theme]int{}
	var order []Theme
	for i := 0; i < len(Themes()); i++ {
		next := c.CycleTheme()
		seen[next]++
		order = append(order, next)
	}

	assert.Equal(t, []Theme{ThemeDark, ThemeHighContrast, ThemeYellowBlack, ThemeDefault}, order)
	for _, theme := range Themes() {
		assert.Equal(t, 1, seen[theme], "theme %s", theme)
	}
}

func TestSetThemeAndFont(t *testing.T) {
	region := announce.NewRegion(nil)
	c := NewController(Defaults(), region, nil)

	require.NoError(t, c.SetTheme("High Contrast"))
	assert.Equal(t, ThemeHighContrast, c.Current().Theme)
	assert.Equal(t, "Theme changed to High Contrast", region.Message())

	err := c.SetTheme("sepia")
	assert.True(t, errors.Is(err, ErrUnknownTheme))
	assert.Equal(t, ThemeHighContrast, c.Current().Theme)

	require.NoError(t, c.SetFontFamily("Monospace"))
	assert.Equal(t, FontMono, c.Current().Font)
	assert.Equal(t, "Font changed to Monospace", region.Message())

	assert.ErrorIs(t, c.SetFontFamily("comic"), ErrUnknownFont)
}

func TestSubscribeReceivesStyle(t *testing.T) {
	c := NewController(Preferences{Theme: ThemeDark, TextSize: 99, Font: "bogus"}, nil, nil)

	var styles []Style
	c.Subscribe(func(s Style) { styles = append(styles, s) })

	require.Len(t, styles, 1)
	assert.Equal(t, MaxTextSize, styles[0].TextSize)
	assert.Equal(t, FontSans, styles[0].Font)
	assert.Len(t, styles[0].Variables, len(Roles()))
	assert.Equal(t, "222 84% 4.9%", styles[0].Variables[RoleBackground])

	c.SetTextSize(20)
	require.Len(t, styles, 2)
	assert.Equal(t, 20, styles[1].TextSize)
}

func TestEveryThemeDefinesEveryRole(t *testing.T) {
	for _, theme := range Themes() {
		vars := theme.Variables()
		for _, role := range Roles() {
			value, ok := vars[role]
			require.True(t, ok, "theme %s missing role %s", theme, role)
			_, err := ParseHSL(value)
			assert.NoError(t, err, "theme %s role %s", theme, role)
		}
	}
}

func TestParseHSL(t *testing.T) {
	white, err := ParseHSL("0 0% 100%")
	require.NoError(t, err)
	r, g, b := white.RGB255()
	assert.Equal(t, [3]uint8{255, 255, 255}, [3]uint8{r, g, b})

	yellow, err := ParseHSL("60 100% 50%")
	require.NoError(t, err)
	r, g, b = yellow.RGB255()
	assert.Equal(t, [3]uint8{255, 255, 0}, [3]uint8{r, g, b})

	_, err = ParseHSL("60 100%")
	assert.Error(t, err)
	_, err = ParseHSL("x 1% 2%")
	assert.Error(t, err)
}

func TestThemeDisplayName(t *testing.T) {
	assert.Equal(t, "Yellow Black", ThemeYellowBlack.DisplayName())
	assert.Equal(t, "Default", ThemeDefault.DisplayName())
}

func TestParseDirection(t *testing.T) {
	d, err := ParseDirection(" Increase ")
	require.NoError(t, err)
	assert.Equal(t, Increase, d)

	_, err = ParseDirection("bigger")
	assert.Error(t, err)
}
