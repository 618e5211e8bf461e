package cropper

import (
	"math"

	"github.com/menta2k/jigcrop/pkg/types"
)

// ResolveSide decides which half of the frame holds the jig by counting
// marker vertices on each side of the vertical centre line. Vertices exactly
// on the line count for neither side. Ties resolve to the left.
func ResolveSide(markers []types.Marker, frameWidth float64) types.Side {
	centerX := frameWidth / 2
	var left, right int
	for _, m := range markers {
		for _, p := range m {
			switch {
			case p.X < centerX:
				left++
			case p.X > centerX:
				right++
			}
		}
	}
	if right > left {
		return types.SideRight
	}
	return types.SideLeft
}

// SelectCorner picks the top-right (corner == SideRight) or top-left vertex of m.
// The vertex nearest to the marker's synthetic extreme (maxX or minX, minY)
// wins; on equal distance the earlier vertex is kept.
func SelectCorner(m types.Marker, corner types.Side) types.Point {
	minX, maxX, minY := m[0].X, m[0].X, m[0].Y
	for _, p := range m[1:] {
		minX = math.Min(minX, p.X)
		maxX = math.Max(maxX, p.X)
		minY = math.Min(minY, p.Y)
	}

	target := types.Point{X: minX, Y: minY}
	if corner == types.SideRight {
		target.X = maxX
	}

	best, bestDist := m[0], math.Inf(1)
	for _, p := range m {
		if d := math.Hypot(target.X-p.X, target.Y-p.Y); d < bestDist {
			best, bestDist = p, d
		}
	}
	return best
}

// ResolveCrop maps markers back to original coordinates, takes the corner of
// each marker facing away from the jig, and returns the clamped bounding box
// shifted by the manual offsets. A box without area is a *types.GeometryError.
func ResolveCrop(markers []types.Marker, ratio float64, side types.Side, xOffset, yOffset, width, height int) (types.CropRect, error) {
	if len(markers) == 0 {
		return types.CropRect{}, &types.GeometryError{}
	}

	corner := side.Opposite()
	minX, minY := math.Inf(1), math.Inf(1)
	maxX, maxY := math.Inf(-1), math.Inf(-1)
	for _, m := range markers {
		p := SelectCorner(m.Scale(ratio), corner)
		minX = math.Min(minX, p.X)
		maxX = math.Max(maxX, p.X)
		minY = math.Min(minY, p.Y)
		maxY = math.Max(maxY, p.Y)
	}

	rect := types.CropRect{
		MinX: max(0, int(minX+float64(xOffset))),
		MinY: max(0, int(minY+float64(yOffset))),
		MaxX: min(width, int(maxX+float64(xOffset))),
		MaxY: min(height, int(maxY+float64(yOffset))),
	}
	if !rect.Valid() {
		return rect, &types.GeometryError{Rect: rect}
	}
	return rect, nil
}
