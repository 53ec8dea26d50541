package prefs

import (
	"fmt"
	"strings"
)

// Text sizes are in pixels. The numeric scheme is the only one supported.
const (
	MinTextSize     = 12
	MaxTextSize     = 32
	DefaultTextSize = 16
	TextSizeStep    = 2
)

// Direction is a text size adjustment.
type Direction string

const (
	Increase Direction = "increase"
	Decrease Direction = "decrease"
	Reset    Direction = "reset"
)

// ParseDirection converts "increase", "decrease" or "reset".
func ParseDirection(s string) (Direction, error) {
	switch d := Direction(strings.ToLower(strings.TrimSpace(s))); d {
	case Increase, Decrease, Reset:
		return d, nil
	default:
		return "", fmt.Errorf("unknown text size direction: %q", s)
	}
}

// ClampTextSize bounds px to [MinTextSize, MaxTextSize].
func ClampTextSize(px int) int {
	return min(max(px, MinTextSize), MaxTextSize)
}

// NextTextSize applies d to current and clamps the result.
func NextTextSize(current int, d Direction) int {
	switch d {
	case Increase:
		return ClampTextSize(current + TextSizeStep)
	case Decrease:
		return ClampTextSize(current - TextSizeStep)
	case Reset:
		return DefaultTextSize
	default:
		return ClampTextSize(current)
	}
}
