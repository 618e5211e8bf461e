//go:build gocv

package vision

import (
	"errors"
	"fmt"
	"image"
	"sync"

	"gocv.io/x/gocv"

	"github.com/menta2k/jigcrop/pkg/types"
)

// ErrGoCVDisabled is returned when the binary was built without the gocv tag
var ErrGoCVDisabled = errors.New("gocv build tag is not enabled")

// GoCVDetector wraps OpenCV's multi-QR detector.
// The OpenCV handle is not re-entrant; every call goes through withDetector,
// which holds the lock for the detect call only.
type GoCVDetector struct {
	mu sync.Mutex
	qr gocv.QRCodeDetector
}

// NewGoCVDetector allocates the OpenCV detector. Call Close to release it.
func NewGoCVDetector() (*GoCVDetector, error) {
	return &GoCVDetector{qr: gocv.NewQRCodeDetector()}, nil
}

// Close releases the native detector
func (d *GoCVDetector) Close() error {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.qr.Close()
}

func (d *GoCVDetector) withDetector(fn func(qr *gocv.QRCodeDetector) bool) bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	return fn(&d.qr)
}

// Detect converts the frame to a Mat outside the lock and runs DetectMulti under it
func (d *GoCVDetector) Detect(frame image.Image) ([]types.Marker, error) {
	mat, err := gocv.ImageToMatRGB(frame)
	if err != nil {
		return nil, fmt.Errorf("failed to convert frame: %w", err)
	}
	defer mat.Close()

	points := gocv.NewMat()
	defer points.Close()

	found := d.withDetector(func(qr *gocv.QRCodeDetector) bool {
		return qr.DetectMulti(mat, &points)
	})
	if !found || points.Empty() {
		return nil, nil
	}

	data, err := points.DataPtrFloat32()
	if err != nil {
		return nil, fmt.Errorf("failed to read detected points: %w", err)
	}

	origin := frame.Bounds().Min
	markers := make([]types.Marker, 0, len(data)/8)
	for i := 0; i+8 <= len(data); i += 8 {
		var m types.Marker
		for j := 0; j < 4; j++ {
			m[j] = types.Point{
				X: float64(data[i+2*j]) + float64(origin.X),
				Y: float64(data[i+2*j+1]) + float64(origin.Y),
			}
		}
		markers = append(markers, m)
	}
	return markers, nil
}
