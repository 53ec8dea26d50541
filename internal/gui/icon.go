package gui

import (
	"bytes"
	"image"
	"image/color"
	"image/png"
	"sync"

	"fyne.io/fyne/v2"

	"codeberg.org/snonux/describeit/internal/prefs"
)

var (
	iconOnce sync.Once
	iconData []byte
)

// GetAppIcon returns the application icon: a page with text lines in the
// colours of the default theme
func GetAppIcon() fyne.Resource {
	iconOnce.Do(func() {
		iconData = renderIcon(256)
	})
	return &fyne.StaticResource{
		StaticName:    "describeit.png",
		StaticContent: iconData,
	}
}

func renderIcon(size int) []byte {
	vars := prefs.ThemeDefault.Variables()
	bg := hslColor(vars[prefs.RolePrimary])
	page := hslColor(vars[prefs.RoleCard])
	ink := hslColor(vars[prefs.RoleForeground])

	img := image.NewRGBA(image.Rect(0, 0, size, size))
	fill(img, img.Bounds(), bg)

	m := size / 8
	pageRect := image.Rect(m*2, m, size-m*2, size-m)
	fill(img, pageRect, page)
	for y := pageRect.Min.Y + m; y+m/3 < pageRect.Max.Y-m/2; y += m {
		fill(img, image.Rect(pageRect.Min.X+m/2, y, pageRect.Max.X-m/2, y+m/3), ink)
	}

	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return nil
	}
	return buf.Bytes()
}

func hslColor(value string) color.Color {
	c, err := prefs.ParseHSL(value)
	if err != nil {
		return color.Black
	}
	return c
}

func fill(img *image.RGBA, r image.Rectangle, c color.Color) {
	for y := r.Min.Y; y < r.Max.Y; y++ {
		for x := r.Min.X; x < r.Max.X; x++ {
			img.Set(x, y, c)
		}
	}
}
