package processing

import (
	"image"
	"image/color"

	"github.com/disintegration/imaging"
)

// DefaultOutlineStroke is the rectangle line width in original-image pixels
const DefaultOutlineStroke = 10

// DrawRectangle returns a copy of img with rect outlined in c.
// The stroke is centred on the rectangle edges and clipped to the image.
func DrawRectangle(img image.Image, rect image.Rectangle, c color.NRGBA, stroke int) *image.NRGBA {
	nrgba := imaging.Clone(img)
	if stroke < 1 {
		stroke = 1
	}

	// Clone rebases to (0,0); shift the rectangle with it
	rect = rect.Sub(img.Bounds().Min)
	x0, y0, x1, y1 := rect.Min.X, rect.Min.Y, rect.Max.X, rect.Max.Y
	if x1 <= x0 || y1 <= y0 {
		return nrgba
	}

	h := stroke / 2
	for s := 0; s < stroke; s++ {
		d := s - h
		drawHLine(nrgba, y0+d, x0-h, x1+h, c)
		drawHLine(nrgba, y1-1-d, x0-h, x1+h, c)
		drawVLine(nrgba, x0+d, y0-h, y1+h, c)
		drawVLine(nrgba, x1-1-d, y0-h, y1+h, c)
	}
	return nrgba
}

func drawHLine(img *image.NRGBA, y, x0, x1 int, c color.NRGBA) {
	if y < 0 || y >= img.Bounds().Dy() {
		return
	}
	if x0 > x1 {
		x0, x1 = x1, x0
	}
	if x1 <= 0 || x0 >= img.Bounds().Dx() {
		return
	}
	x0 = max(x0, 0)
	x1 = min(x1, img.Bounds().Dx())

	i := y*img.Stride + x0*4
	for x := x0; x < x1; x++ {
		img.Pix[i+0] = c.R
		img.Pix[i+1] = c.G
		img.Pix[i+2] = c.B
		img.Pix[i+3] = c.A
		i += 4
	}
}

func drawVLine(img *image.NRGBA, x, y0, y1 int, c color.NRGBA) {
	if x < 0 || x >= img.Bounds().Dx() {
		return
	}
	if y0 > y1 {
		y0, y1 = y1, y0
	}
	if y1 <= 0 || y0 >= img.Bounds().Dy() {
		return
	}
	y0 = max(y0, 0)
	y1 = min(y1, img.Bounds().Dy())

	i := y0*img.Stride + x*4
	for y := y0; y < y1; y++ {
		img.Pix[i+0] = c.R
		img.Pix[i+1] = c.G
		img.Pix[i+2] = c.B
		img.Pix[i+3] = c.A
		i += img.Stride
	}
}
