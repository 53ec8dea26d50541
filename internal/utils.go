package internal

import (
	"fmt"
	"strings"

	"github.com/google/uuid"
)

// GenerateUploadID creates a unique ID for an upload job.
// Format: <kind>-<uuid>
func GenerateUploadID(kind string) string {
	return fmt.Sprintf("%s-%s", SanitizeFilename(kind), uuid.NewString())
}

// SanitizeFilename creates a safe filename from a string
func SanitizeFilename(s string) string {
	var b strings.Builder
	for _, r := range s {
		if isAlphaNumeric(r) || r == '-' || r == '_' {
			b.WriteRune(r)
		} else {
			b.WriteRune('_')
		}
	}
	return b.String()
}

// isAlphaNumeric checks if a rune is an ASCII letter or digit
func isAlphaNumeric(r rune) bool {
	return (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z') ||
		(r >= '0' && r <= '9')
}
