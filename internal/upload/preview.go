package upload

import (
	"fmt"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"
	"os"
)

// LoadPreview decodes an image file for display.
func LoadPreview(file *FileRef) (image.Image, error) {
	if file == nil {
		return nil, ErrNoFileSelected
	}
	f, err := os.Open(file.Path)
	if err != nil {
		return nil, fmt.Errorf("failed to open image: %w", err)
	}
	defer f.Close()

	img, _, err := image.Decode(f)
	if err != nil {
		return nil, fmt.Errorf("failed to decode image: %w", err)
	}
	return img, nil
}
