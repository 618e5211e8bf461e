package processing

import (
	"image"
	"math"

	"github.com/disintegration/imaging"
)

// FitDimensions computes the size of a w×h image scaled so its longer side
// is maxDim. Images already within maxDim keep their size and ratio 1.0.
// The longer side is set exactly; the shorter side is rounded and never below 1.
func FitDimensions(w, h, maxDim int) (int, int, float64) {
	longer := max(w, h)
	if maxDim <= 0 || longer <= maxDim {
		return w, h, 1.0
	}

	ratio := float64(maxDim) / float64(longer)
	nw, nh := maxDim, maxDim
	if w >= h {
		nh = int(math.Round(float64(h) * ratio))
	} else {
		nw = int(math.Round(float64(w) * ratio))
	}
	return max(nw, 1), max(nh, 1), ratio
}

// ScaleToMax resizes img proportionally when its longer side exceeds maxDim.
// It returns the (possibly unchanged) image and the applied ratio.
func ScaleToMax(img image.Image, maxDim int) (image.Image, float64) {
	b := img.Bounds()
	nw, nh, ratio := FitDimensions(b.Dx(), b.Dy(), maxDim)
	if ratio == 1.0 {
		return img, 1.0
	}
	return imaging.Resize(img, nw, nh, imaging.Lanczos), ratio
}

// Thumbnail scales img to fit within maxSize and reports whether it was scaled down
func Thumbnail(img image.Image, maxSize int) (image.Image, bool) {
	scaled, ratio := ScaleToMax(img, maxSize)
	return scaled, ratio != 1.0
}
