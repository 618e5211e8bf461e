// Package placeholder produces per-user stand-in images for test uploads.
//
// The pure-white pixels of a template are replaced with a colour derived
// from the user's id, so each device gets a visibly different image.
package placeholder

import (
	"crypto/md5"
	"fmt"
	"image"

	"github.com/disintegration/imaging"
	"github.com/lucasb-eyer/go-colorful"
)

// Encoder serialises the recoloured image
type Encoder interface {
	Encode(img image.Image) ([]byte, error)
}

// ColorFor returns the colour assigned to id: the first three bytes of
// its MD5 digest as red, green and blue.
func ColorFor(id string) colorful.Color {
	sum := md5.Sum([]byte(id))
	return colorful.Color{
		R: float64(sum[0]) / 255.0,
		G: float64(sum[1]) / 255.0,
		B: float64(sum[2]) / 255.0,
	}
}

// Recolor returns an opaque copy of img with every pure-white pixel
// replaced by ColorFor(id)
func Recolor(img image.Image, id string) *image.NRGBA {
	out := imaging.Clone(img)
	r, g, b := ColorFor(id).RGB255()

	pix := out.Pix
	for i := 0; i+3 < len(pix); i += 4 {
		if pix[i] == 0xff && pix[i+1] == 0xff && pix[i+2] == 0xff {
			pix[i], pix[i+1], pix[i+2] = r, g, b
		}
		pix[i+3] = 0xff
	}
	return out
}

// Render recolours img for id and encodes it with enc
func Render(img image.Image, id string, enc Encoder) ([]byte, error) {
	if img == nil {
		return nil, fmt.Errorf("placeholder template is nil")
	}
	data, err := enc.Encode(Recolor(img, id))
	if err != nil {
		return nil, fmt.Errorf("failed to encode placeholder: %w", err)
	}
	return data, nil
}
