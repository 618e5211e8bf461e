package cropper

import (
	"image"
	"image/color"

	"github.com/disintegration/imaging"

	"github.com/menta2k/jigcrop/pkg/types"
)

// Cropper extracts the product rectangle and pads it to a square
type Cropper struct {
	config CropConfig
}

// CropConfig holds configuration for cropping
type CropConfig struct {
	Fill color.Color
}

// New creates a new Cropper with a white fill
func New() *Cropper {
	return &Cropper{config: CropConfig{Fill: color.White}}
}

// NewWithConfig creates a new Cropper with custom configuration
func NewWithConfig(config CropConfig) *Cropper {
	if config.Fill == nil {
		config.Fill = color.White
	}
	return &Cropper{config: config}
}

// Crop cuts rect out of img verbatim and squares the result
func (c *Cropper) Crop(img image.Image, rect types.CropRect) *image.NRGBA {
	r := image.Rect(rect.MinX, rect.MinY, rect.MaxX, rect.MaxY).Add(img.Bounds().Min)
	return MakeSquare(imaging.Crop(img, r), c.config.Fill)
}

// SquarePadding returns the padding placed before and after the shorter
// dimension of a w×h image. Any odd pixel goes to the trailing edge.
func SquarePadding(w, h int) (lead, trail int) {
	side := max(w, h)
	shorter := min(w, h)
	lead = (side - shorter) / 2
	return lead, side - shorter - lead
}

// MakeSquare pads the shorter dimension of img with fill so width equals height.
// Padding goes left/right for tall images and top/bottom for wide ones.
func MakeSquare(img image.Image, fill color.Color) *image.NRGBA {
	b := img.Bounds()
	w, h := b.Dx(), b.Dy()
	if w == h {
		return imaging.Clone(img)
	}

	side := max(w, h)
	lead, _ := SquarePadding(w, h)
	pos := image.Pt(0, lead)
	if h > w {
		pos = image.Pt(lead, 0)
	}

	bg := imaging.New(side, side, fill)
	return imaging.Paste(bg, img, pos)
}
