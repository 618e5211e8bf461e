//go:build !gocv

package vision

import (
	"errors"
	"image"

	"github.com/menta2k/jigcrop/pkg/types"
)

// ErrGoCVDisabled is returned when the binary was built without the gocv tag
var ErrGoCVDisabled = errors.New("gocv build tag is not enabled")

// GoCVDetector is a placeholder; build with -tags gocv for the OpenCV backend
type GoCVDetector struct{}

// NewGoCVDetector reports that OpenCV support was not compiled in
func NewGoCVDetector() (*GoCVDetector, error) {
	return nil, ErrGoCVDisabled
}

// Close is a no-op
func (d *GoCVDetector) Close() error { return nil }

// Detect always fails without the gocv tag
func (d *GoCVDetector) Detect(frame image.Image) ([]types.Marker, error) {
	_ = frame
	return nil, ErrGoCVDisabled
}
