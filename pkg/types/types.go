package types

import (
	"errors"
	"fmt"
)

// MarkerCount is the number of fiducials printed on the jig
const MarkerCount = 3

// Point is a 2D coordinate in pixel space
type Point struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// Marker is the quadrilateral outline of one detected QR fiducial.
// Vertex order is whatever the detector produced and must not be relied on.
type Marker [4]Point

// Scale divides every vertex by ratio, mapping detection-frame coordinates
// back to the original image.
func (m Marker) Scale(ratio float64) Marker {
	if ratio == 1.0 || ratio <= 0 {
		return m
	}
	var out Marker
	for i, p := range m {
		out[i] = Point{X: p.X / ratio, Y: p.Y / ratio}
	}
	return out
}

// Side identifies which half of the frame the jig occupies
type Side string

const (
	SideLeft  Side = "left"
	SideRight Side = "right"
)

// Opposite returns the other side
func (s Side) Opposite() Side {
	if s == SideRight {
		return SideLeft
	}
	return SideRight
}

// CropRect is an axis-aligned rectangle in original-image coordinates.
// Min is inclusive, Max is exclusive.
type CropRect struct {
	MinX int `json:"min_x"`
	MinY int `json:"min_y"`
	MaxX int `json:"max_x"`
	MaxY int `json:"max_y"`
}

// Valid reports whether the rectangle has positive area
func (r CropRect) Valid() bool {
	return r.MinX < r.MaxX && r.MinY < r.MaxY
}

// Width returns the horizontal extent
func (r CropRect) Width() int { return r.MaxX - r.MinX }

// Height returns the vertical extent
func (r CropRect) Height() int { return r.MaxY - r.MinY }

func (r CropRect) String() string {
	return fmt.Sprintf("(%d,%d)-(%d,%d)", r.MinX, r.MinY, r.MaxX, r.MaxY)
}

// Human-readable reasons surfaced to callers alongside results.
const (
	ReasonTooLarge        = "Image too large."
	ReasonInvalidFormat   = "Invalid image format or corrupted file."
	ReasonDecodeFailed    = "Failed to decode image or apply rotation."
	ReasonNoMarkers       = "No QR codes found."
	ReasonInvalidGeometry = "Invalid QR code geometry or offsets resulted in invalid crop area."
)

var (
	ErrTooLarge        = errors.New("image too large")
	ErrInvalidFormat   = errors.New("invalid image format")
	ErrNoMarkers       = errors.New("no markers found")
	ErrMarkerCount     = errors.New("unexpected marker count")
	ErrInvalidGeometry = errors.New("invalid crop geometry")
)

// ValidationError is returned for oversized or corrupt input. It is not recoverable.
type ValidationError struct {
	Reason string
	cause  error
}

// NewValidationError builds a ValidationError matching the given sentinel
func NewValidationError(cause error, reason string) *ValidationError {
	return &ValidationError{Reason: reason, cause: cause}
}

func (e *ValidationError) Error() string { return e.Reason }

func (e *ValidationError) Unwrap() error { return e.cause }

// DecodeError is returned when bytes pass validation but yield no usable image
type DecodeError struct {
	Err error
}

func (e *DecodeError) Error() string {
	if e.Err == nil {
		return ReasonDecodeFailed
	}
	return fmt.Sprintf("%s: %v", ReasonDecodeFailed, e.Err)
}

func (e *DecodeError) Unwrap() error { return e.Err }

// DetectionError reports a marker count other than MarkerCount
type DetectionError struct {
	Found int
}

func (e *DetectionError) Error() string {
	if e.Found == 0 {
		return ReasonNoMarkers
	}
	return fmt.Sprintf("Exactly %d QR codes required. Found %d", MarkerCount, e.Found)
}

func (e *DetectionError) Is(target error) bool {
	if e.Found == 0 {
		return target == ErrNoMarkers
	}
	return target == ErrMarkerCount
}

// GeometryError reports a crop rectangle that collapsed after clamping
type GeometryError struct {
	Rect CropRect
}

func (e *GeometryError) Error() string { return ReasonInvalidGeometry }

func (e *GeometryError) Is(target error) bool { return target == ErrInvalidGeometry }
