package batch

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"codeberg.org/snonux/describeit/internal/upload"
)

// Entry is one file listed in a batch file
type Entry struct {
	Path string
	// Kind forces the pipeline; empty means detect it from the file
	Kind upload.Kind
	Line int
}

// ReadBatchFile reads the files to describe from a batch file
// Supports formats:
// - Path only: "scans/letter.pdf" (kind detected from the file)
// - With kind: "image = scans/receipt.jpg" (pipeline chosen explicitly)
// - Comments: lines starting with "#" are ignored
// Relative paths are resolved against the batch file's directory.
func ReadBatchFile(filename string) ([]Entry, error) {
	content, err := os.ReadFile(filename)
	if err != nil {
		return nil, fmt.Errorf("failed to read batch file: %w", err)
	}

	base := filepath.Dir(filename)
	var entries []Entry

	for i, line := range strings.Split(string(content), "\n") {
		line = strings.TrimSpace(line)
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}

		entry := Entry{Line: i + 1}
		if kind, path, ok := strings.Cut(line, "="); ok {
			k, err := upload.ParseKind(kind)
			if err != nil {
				return nil, fmt.Errorf("%s:%d: %w", filename, i+1, err)
			}
			entry.Kind = k
			line = strings.TrimSpace(path)
			if line == "" {
				return nil, fmt.Errorf("%s:%d: missing path", filename, i+1)
			}
		}

		if !filepath.IsAbs(line) {
			line = filepath.Join(base, line)
		}
		entry.Path = line
		entries = append(entries, entry)
	}

	return entries, nil
}

// Resolve builds the file reference of e and picks its pipeline
func (e Entry) Resolve() (*upload.FileRef, upload.Kind, error) {
	ref, err := upload.FileRefFromPath(e.Path)
	if err != nil {
		return nil, "", err
	}

	if e.Kind != "" {
		return ref, e.Kind, nil
	}
	kind, ok := upload.DetectKind(ref.Name, ref.MIMEType)
	if !ok {
		return nil, "", fmt.Errorf("%s: %w", ref.Name, upload.ErrWrongKind)
	}
	return ref, kind, nil
}
