package vision

import (
	"image"

	"github.com/anthonynsimon/bild/adjust"
	"github.com/anthonynsimon/bild/effect"

	"github.com/menta2k/jigcrop/pkg/processing"
)

// DefaultFrameMaxDim bounds the detection frame's longer side
const DefaultFrameMaxDim = 1800

// FrameOptions controls how the detection frame is derived from the original
type FrameOptions struct {
	MaxDim    int
	Grayscale bool
	Contrast  float64 // relative change in (-1, 1); 0 leaves contrast alone
}

// Frame is a downscaled working copy used only for marker search.
// Ratio is frame size divided by original size, in (0, 1].
type Frame struct {
	Image image.Image
	Ratio float64
}

// Width returns the frame width in pixels
func (f Frame) Width() int {
	return f.Image.Bounds().Dx()
}

// Prepare scales img down for detection and applies optional preprocessing.
// Preprocessing never changes the frame size, so Ratio stays valid.
func Prepare(img image.Image, opts FrameOptions) Frame {
	if opts.MaxDim <= 0 {
		opts.MaxDim = DefaultFrameMaxDim
	}
	scaled, ratio := processing.ScaleToMax(img, opts.MaxDim)

	if opts.Contrast != 0 {
		scaled = adjust.Contrast(scaled, opts.Contrast)
	}
	if opts.Grayscale {
		scaled = effect.Grayscale(scaled)
	}
	return Frame{Image: scaled, Ratio: ratio}
}
