package placeholder

import (
	"bytes"
	"crypto/md5"
	"errors"
	"image"
	"image/color"
	"image/png"
	"testing"
)

type pngEncoder struct{}

func (pngEncoder) Encode(img image.Image) ([]byte, error) {
	var buf bytes.Buffer
	err := png.Encode(&buf, img)
	return buf.Bytes(), err
}

type failingEncoder struct{}

func (failingEncoder) Encode(image.Image) ([]byte, error) {
	return nil, errors.New("boom")
}

// createTemplate creates a white image with a black square in the middle
func createTemplate(width, height int) *image.NRGBA {
	img := image.NewNRGBA(image.Rect(0, 0, width, height))
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			c := color.NRGBA{255, 255, 255, 255}
			if x >= width/4 && x < 3*width/4 && y >= height/4 && y < 3*height/4 {
				c = color.NRGBA{0, 0, 0, 255}
			}
			img.SetNRGBA(x, y, c)
		}
	}
	return img
}

func TestColorFor(t *testing.T) {
	sum := md5.Sum([]byte("abcd1234"))
	r, g, b := ColorFor("abcd1234").RGB255()
	if r != sum[0] || g != sum[1] || b != sum[2] {
		t.Errorf("got (%d,%d,%d), want (%d,%d,%d)", r, g, b, sum[0], sum[1], sum[2])
	}

	if ColorFor("abcd1234") != ColorFor("abcd1234") {
		t.Error("colour is not deterministic")
	}
	if ColorFor("abcd1234") == ColorFor("efgh5678") {
		t.Error("different ids produced the same colour")
	}
}

func TestRecolor(t *testing.T) {
	tmpl := createTemplate(8, 8)
	out := Recolor(tmpl, "user-1")

	r, g, b := ColorFor("user-1").RGB255()
	want := color.NRGBA{r, g, b, 255}
	if got := out.NRGBAAt(0, 0); got != want {
		t.Errorf("white pixel: got %v, want %v", got, want)
	}
	if got := out.NRGBAAt(4, 4); got != (color.NRGBA{0, 0, 0, 255}) {
		t.Errorf("non-white pixel changed: %v", got)
	}
	if tmpl.NRGBAAt(0, 0) != (color.NRGBA{255, 255, 255, 255}) {
		t.Error("Recolor modified its input")
	}
}

func TestRecolor_NearWhiteUntouched(t *testing.T) {
	img := image.NewNRGBA(image.Rect(0, 0, 1, 1))
	img.SetNRGBA(0, 0, color.NRGBA{255, 255, 254, 255})
	if got := Recolor(img, "x").NRGBAAt(0, 0); got != (color.NRGBA{255, 255, 254, 255}) {
		t.Errorf("near-white pixel recoloured: %v", got)
	}
}

func TestRender(t *testing.T) {
	data, err := Render(createTemplate(16, 12), "user-1", pngEncoder{})
	if err != nil {
		t.Fatalf("Render failed: %v", err)
	}
	cfg, err := png.DecodeConfig(bytes.NewReader(data))
	if err != nil {
		t.Fatalf("output is not a png: %v", err)
	}
	if cfg.Width != 16 || cfg.Height != 12 {
		t.Errorf("dimensions: got %dx%d", cfg.Width, cfg.Height)
	}

	if _, err := Render(createTemplate(4, 4), "user-1", failingEncoder{}); err == nil {
		t.Error("expected encoder error to propagate")
	}
	if _, err := Render(nil, "user-1", pngEncoder{}); err == nil {
		t.Error("expected error for nil template")
	}
}
