// Package upload simulates the document and image analysis pipelines: a
// progress counter advances on a ticker and a Describer supplies the
// result.
package upload

import (
	"fmt"
	"mime"
	"os"
	"path/filepath"
	"strings"
)

// Kind is the type of file being described.
type Kind string

const (
	Document Kind = "document"
	Image    Kind = "image"
)

// Title returns the capitalised kind for messages.
func (k Kind) Title() string {
	switch k {
	case Document:
		return "Document"
	case Image:
		return "Image"
	default:
		return string(k)
	}
}

// ParseKind accepts "document" or "image" in any case.
func ParseKind(s string) (Kind, error) {
	switch Kind(strings.ToLower(strings.TrimSpace(s))) {
	case Document:
		return Document, nil
	case Image:
		return Image, nil
	default:
		return "", fmt.Errorf("unknown upload kind: %q", s)
	}
}

// Size limits per kind, in bytes.
const (
	MaxDocumentBytes int64 = 10 << 20
	MaxImageBytes    int64 = 5 << 20
)

// DocumentExtensions are the document types accepted by the file picker.
var DocumentExtensions = []string{".pdf", ".doc", ".docx", ".txt"}

// ImageExtensions are the image types offered by the file picker.
var ImageExtensions = []string{".png", ".jpg", ".jpeg", ".gif", ".bmp", ".webp", ".svg"}

// Extensions returns the picker filter for k.
func (k Kind) Extensions() []string {
	if k == Image {
		return append([]string(nil), ImageExtensions...)
	}
	return append([]string(nil), DocumentExtensions...)
}

// FileRef describes a selected file.
type FileRef struct {
	Name     string
	Path     string
	Size     int64
	MIMEType string
}

// FileRefFromPath stats path and guesses its MIME type from the extension.
func FileRefFromPath(path string) (*FileRef, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read file: %w", err)
	}
	if info.IsDir() {
		return nil, fmt.Errorf("%s is a directory", path)
	}

	return &FileRef{
		Name:     filepath.Base(path),
		Path:     path,
		Size:     info.Size(),
		MIMEType: mimeType(path),
	}, nil
}

func mimeType(path string) string {
	ext := strings.ToLower(filepath.Ext(path))
	switch ext {
	case ".doc":
		return "application/msword"
	case ".docx":
		return "application/vnd.openxmlformats-officedocument.wordprocessingml.document"
	}
	if t := mime.TypeByExtension(ext); t != "" {
		return t
	}
	return "application/octet-stream"
}

// DetectKind classifies a file by MIME type, then by extension. The
// second result is false when the file fits neither kind.
func DetectKind(name, mimeType string) (Kind, bool) {
	if strings.HasPrefix(mimeType, "image/") {
		return Image, true
	}
	ext := strings.ToLower(filepath.Ext(name))
	for _, e := range DocumentExtensions {
		if ext == e {
			return Document, true
		}
	}
	for _, e := range ImageExtensions {
		if ext == e {
			return Image, true
		}
	}
	return "", false
}

// Accepts reports whether f is a valid upload of kind k.
func (k Kind) Accepts(f *FileRef) bool {
	if f == nil {
		return false
	}
	got, ok := DetectKind(f.Name, f.MIMEType)
	return ok && got == k
}

// HumanSize formats a byte count in KB with two decimals.
func HumanSize(n int64) string {
	return fmt.Sprintf("%.2f KB", float64(n)/1024)
}
