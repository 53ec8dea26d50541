package upload

import (
	"context"
	"fmt"
	"time"
)

// Analysis is the outcome of describing a file.
type Analysis struct {
	FileName       string
	FileSize       string
	UploadedAt     time.Time
	ProcessingTime time.Duration
	ContentType    string
	Confidence     int
	Description    string
}

// Describer produces a description of an uploaded file.
type Describer interface {
	Describe(ctx context.Context, kind Kind, file *FileRef) (Analysis, error)
}

// StaticDescriber returns a fixed description. It stands in for a real
// analysis service.
type StaticDescriber struct {
	// Now defaults to time.Now.
	Now func() time.Time
	// ProcessingTime is reported as the analysis duration.
	ProcessingTime time.Duration
}

// Describe returns the canned analysis for kind.
func (d StaticDescriber) Describe(ctx context.Context, kind Kind, file *FileRef) (Analysis, error) {
	if err := ctx.Err(); err != nil {
		return Analysis{}, err
	}
	now := time.Now
	if d.Now != nil {
		now = d.Now
	}

	a := Analysis{
		UploadedAt:     now(),
		ProcessingTime: d.ProcessingTime,
		Confidence:     confidence(kind),
		Description:    CannedDescription(kind),
	}
	if file != nil {
		a.FileName = file.Name
		a.FileSize = HumanSize(file.Size)
		a.ContentType = file.MIMEType
	}
	return a, nil
}

// CannedDescription is the placeholder text for kind.
func CannedDescription(kind Kind) string {
	return fmt.Sprintf("%s processed successfully! This %s appears to contain multiple paragraphs of text "+
		"describing various topics related to accessibility and inclusive design.", kind.Title(), kind)
}

func confidence(kind Kind) int {
	if kind == Image {
		return 92
	}
	return 85
}
