package vision

import (
	"errors"
	"fmt"
	"image"
	"math"
	"strings"

	"github.com/makiuchi-d/gozxing"
	multiqr "github.com/makiuchi-d/gozxing/multi/qrcode"

	"github.com/menta2k/jigcrop/pkg/types"
)

// Detector backends selectable by name
const (
	BackendZXing = "zxing"
	BackendGoCV  = "gocv"
)

// MarkerDetector locates QR fiducials in a detection frame.
// Returned markers carry 4 points in frame coordinates, in no particular order.
type MarkerDetector interface {
	Detect(frame image.Image) ([]types.Marker, error)
}

// NewDetector returns the detector registered under backend
func NewDetector(backend string) (MarkerDetector, error) {
	switch strings.ToLower(backend) {
	case "", BackendZXing:
		return NewQRDetector(), nil
	case BackendGoCV:
		d, err := NewGoCVDetector()
		if err != nil {
			return nil, err
		}
		return d, nil
	default:
		return nil, fmt.Errorf("unknown detector backend: %s (use %q or %q)", backend, BackendZXing, BackendGoCV)
	}
}

type multiReader interface {
	DecodeMultiple(image *gozxing.BinaryBitmap, hints map[gozxing.DecodeHintType]interface{}) ([]*gozxing.Result, error)
}

// QRDetector finds multiple QR codes with the zxing port.
// A reader is built for every call, so one QRDetector serves concurrent callers.
type QRDetector struct {
	tryHarder bool
}

// NewQRDetector creates a QRDetector that searches exhaustively
func NewQRDetector() *QRDetector {
	return &QRDetector{tryHarder: true}
}

// Detect returns one marker per decoded QR code. A frame without codes
// yields an empty slice and no error.
func (d *QRDetector) Detect(frame image.Image) ([]types.Marker, error) {
	bmp, err := gozxing.NewBinaryBitmapFromImage(frame)
	if err != nil {
		return nil, fmt.Errorf("failed to binarize frame: %w", err)
	}

	hints := map[gozxing.DecodeHintType]interface{}{}
	if d.tryHarder {
		hints[gozxing.DecodeHintType_TRY_HARDER] = true
	}

	var reader multiReader = multiqr.NewQRCodeMultiReader()
	results, err := reader.DecodeMultiple(bmp, hints)
	if err != nil {
		var notFound gozxing.NotFoundException
		if errors.As(err, &notFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("qr detection failed: %w", err)
	}

	origin := frame.Bounds().Min
	markers := make([]types.Marker, 0, len(results))
	for _, r := range results {
		if m, ok := markerFromFinderPoints(r.GetResultPoints(), origin); ok {
			markers = append(markers, m)
		}
	}
	return markers, nil
}

// finderHalfWidth is the distance in modules from a finder pattern centre
// to the symbol's outer edge
const finderHalfWidth = 3.5

type moduleSizer interface {
	GetEstimatedModuleSize() float64
}

// markerFromFinderPoints turns zxing's finder pattern centres
// (bottom-left, top-left, top-right, optional alignment) into the symbol's
// outer corners. Each centre is pushed out by half a finder pattern along the
// TL->TR and TL->BL axes; the fourth vertex completes the parallelogram.
func markerFromFinderPoints(pts []gozxing.ResultPoint, origin image.Point) (types.Marker, bool) {
	if len(pts) < 3 {
		return types.Marker{}, false
	}
	at := func(i int) types.Point {
		return types.Point{X: pts[i].GetX() + float64(origin.X), Y: pts[i].GetY() + float64(origin.Y)}
	}
	bl, tl, tr := at(0), at(1), at(2)

	ux, okX := unit(tl, tr)
	uy, okY := unit(tl, bl)
	if !okX || !okY {
		return types.Marker{}, false
	}

	d := finderHalfWidth * moduleSize(pts[:3])
	push := func(p types.Point, sx, sy float64) types.Point {
		return types.Point{
			X: p.X + d*(sx*ux.X+sy*uy.X),
			Y: p.Y + d*(sx*ux.Y+sy*uy.Y),
		}
	}
	tl = push(tl, -1, -1)
	tr = push(tr, 1, -1)
	bl = push(bl, -1, 1)
	br := types.Point{X: tr.X + bl.X - tl.X, Y: tr.Y + bl.Y - tl.Y}
	return types.Marker{tl, tr, br, bl}, true
}

// moduleSize averages the finder patterns' module estimates; plain result
// points carry none and yield 0
func moduleSize(pts []gozxing.ResultPoint) float64 {
	var sum float64
	var n int
	for _, p := range pts {
		if f, ok := p.(moduleSizer); ok && f.GetEstimatedModuleSize() > 0 {
			sum += f.GetEstimatedModuleSize()
			n++
		}
	}
	if n == 0 {
		return 0
	}
	return sum / float64(n)
}

func unit(from, to types.Point) (types.Point, bool) {
	dx, dy := to.X-from.X, to.Y-from.Y
	l := math.Hypot(dx, dy)
	if l == 0 {
		return types.Point{}, false
	}
	return types.Point{X: dx / l, Y: dy / l}, true
}
