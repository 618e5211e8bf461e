package jigcrop

import (
	"strings"

	"github.com/menta2k/jigcrop/pkg/processing"
	"github.com/menta2k/jigcrop/pkg/types"
)

// Mode selects what ProcessImage renders once a crop rectangle is known
type Mode int

const (
	// ModeCrop emits the squared product crop
	ModeCrop Mode = iota
	// ModeOutline emits the full frame with the crop rectangle drawn on it
	ModeOutline
)

// ParseMode maps a caller-supplied mode name. Anything other than
// "outline" crops, so legacy names such as "auto" keep working.
func ParseMode(s string) Mode {
	if strings.EqualFold(strings.TrimSpace(s), "outline") {
		return ModeOutline
	}
	return ModeCrop
}

func (m Mode) String() string {
	if m == ModeOutline {
		return "outline"
	}
	return "crop"
}

// Status is the terminal state of one ProcessImage call
type Status int

const (
	// StatusCropped means Data holds the requested rendering
	StatusCropped Status = iota
	// StatusFallback means Data holds the whole image and Reason explains why
	StatusFallback
	// StatusFailed means the input was unusable and Data is nil
	StatusFailed
)

func (s Status) String() string {
	switch s {
	case StatusCropped:
		return "cropped"
	case StatusFallback:
		return "fallback"
	default:
		return "failed"
	}
}

// Result is the outcome of processing one image
type Result struct {
	Status Status
	Data   []byte
	Format processing.Format

	// Reason is the human-readable diagnostic; empty on StatusCropped
	Reason string
	// Err holds the typed cause for fallback and failure
	Err error

	Markers int
	Side    types.Side
	Rect    types.CropRect
}

// OK reports whether the result carries usable image bytes
func (r Result) OK() bool {
	return r.Status != StatusFailed && len(r.Data) > 0
}
