package loader

import (
	"bytes"
	"errors"
	"image"
	"image/color"
	"image/jpeg"
	"image/png"
	"testing"

	"github.com/menta2k/jigcrop/pkg/types"
)

// createTestImage creates a solid image of the given size
func createTestImage(width, height int, c color.Color) image.Image {
	img := image.NewRGBA(image.Rect(0, 0, width, height))
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			img.Set(x, y, c)
		}
	}
	return img
}

func encodePNG(t *testing.T, img image.Image) []byte {
	t.Helper()
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		t.Fatalf("failed to encode png: %v", err)
	}
	return buf.Bytes()
}

// encodeJPEGWithOrientation encodes img as JPEG and inserts an EXIF APP1
// segment carrying the given orientation tag right after SOI.
func encodeJPEGWithOrientation(t *testing.T, img image.Image, orientation byte) []byte {
	t.Helper()
	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, img, &jpeg.Options{Quality: 90}); err != nil {
		t.Fatalf("failed to encode jpeg: %v", err)
	}
	raw := buf.Bytes()

	app1 := []byte{
		0xFF, 0xE1, 0x00, 0x22, // APP1, length 34
		'E', 'x', 'i', 'f', 0x00, 0x00,
		'M', 'M', 0x00, 0x2A, 0x00, 0x00, 0x00, 0x08, // TIFF header, IFD at 8
		0x00, 0x01, // one entry
		0x01, 0x12, 0x00, 0x03, 0x00, 0x00, 0x00, 0x01, 0x00, orientation, 0x00, 0x00,
		0x00, 0x00, 0x00, 0x00, // no next IFD
	}

	out := make([]byte, 0, len(raw)+len(app1))
	out = append(out, raw[:2]...)
	out = append(out, app1...)
	out = append(out, raw[2:]...)
	return out
}

func TestNew(t *testing.T) {
	l := New()
	if l == nil {
		t.Fatal("New() returned nil")
	}
	if l.config.MaxBytes != DefaultMaxBytes {
		t.Errorf("Expected MaxBytes %d, got %d", DefaultMaxBytes, l.config.MaxBytes)
	}
}

func TestLoad_PNG(t *testing.T) {
	data := encodePNG(t, createTestImage(64, 32, color.RGBA{255, 0, 0, 255}))

	img, err := New().Load(data)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if img.Bounds().Dx() != 64 || img.Bounds().Dy() != 32 {
		t.Errorf("unexpected dimensions: got %dx%d, want 64x32", img.Bounds().Dx(), img.Bounds().Dy())
	}
}

func TestLoad_TooLarge(t *testing.T) {
	data := encodePNG(t, createTestImage(64, 64, color.White))
	l := NewWithConfig(Config{MaxBytes: 10})

	_, err := l.Load(data)
	var verr *types.ValidationError
	if !errors.As(err, &verr) {
		t.Fatalf("expected ValidationError, got %v", err)
	}
	if verr.Reason != types.ReasonTooLarge {
		t.Errorf("reason: got %q, want %q", verr.Reason, types.ReasonTooLarge)
	}
	if !errors.Is(err, types.ErrTooLarge) {
		t.Error("expected errors.Is(err, ErrTooLarge)")
	}
}

func TestLoad_InvalidFormat(t *testing.T) {
	_, err := New().Load([]byte("not an image"))
	var verr *types.ValidationError
	if !errors.As(err, &verr) {
		t.Fatalf("expected ValidationError, got %v", err)
	}
	if !errors.Is(err, types.ErrInvalidFormat) {
		t.Error("expected errors.Is(err, ErrInvalidFormat)")
	}
}

func TestLoad_TruncatedBody(t *testing.T) {
	data := encodePNG(t, createTestImage(64, 64, color.RGBA{0, 0, 255, 255}))
	// Keep the header intact so DecodeConfig succeeds
	truncated := data[:len(data)/2]

	_, err := New().Load(truncated)
	var verr *types.ValidationError
	if !errors.As(err, &verr) {
		t.Fatalf("expected ValidationError, got %v", err)
	}
	if verr.Reason != types.ReasonInvalidFormat {
		t.Errorf("reason: got %q", verr.Reason)
	}
	if !errors.Is(err, types.ErrInvalidFormat) {
		t.Error("expected errors.Is(err, ErrInvalidFormat)")
	}
	if err := New().Validate(truncated); !errors.Is(err, types.ErrInvalidFormat) {
		t.Errorf("Validate: expected ErrInvalidFormat, got %v", err)
	}
}

func TestLoad_UnsupportedFormat(t *testing.T) {
	data := encodePNG(t, createTestImage(8, 8, color.White))
	l := NewWithConfig(Config{SupportedFormats: []string{"jpeg"}})

	if _, err := l.Load(data); !errors.Is(err, types.ErrInvalidFormat) {
		t.Errorf("expected ErrInvalidFormat, got %v", err)
	}
}

func TestLoad_AppliesOrientation(t *testing.T) {
	data := encodeJPEGWithOrientation(t, createTestImage(40, 20, color.Gray{128}), 6)

	img, err := New().Load(data)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if img.Bounds().Dx() != 20 || img.Bounds().Dy() != 40 {
		t.Errorf("orientation not applied: got %dx%d, want 20x40", img.Bounds().Dx(), img.Bounds().Dy())
	}
}

func TestLoad_NoOrientation(t *testing.T) {
	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, createTestImage(40, 20, color.Gray{128}), nil); err != nil {
		t.Fatalf("failed to encode jpeg: %v", err)
	}

	img, err := New().Load(buf.Bytes())
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if img.Bounds().Dx() != 40 || img.Bounds().Dy() != 20 {
		t.Errorf("unexpected dimensions: got %dx%d, want 40x20", img.Bounds().Dx(), img.Bounds().Dy())
	}
}

func TestValidate(t *testing.T) {
	good := encodePNG(t, createTestImage(16, 16, color.White))

	tests := []struct {
		name    string
		data    []byte
		wantErr error
	}{
		{"valid png", good, nil},
		{"garbage", []byte{0x00, 0x01, 0x02}, types.ErrInvalidFormat},
		{"truncated", good[:len(good)-20], types.ErrInvalidFormat},
		{"empty", nil, types.ErrInvalidFormat},
	}

	l := New()
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := l.Validate(tt.data)
			if tt.wantErr == nil {
				if err != nil {
					t.Errorf("unexpected error: %v", err)
				}
				return
			}
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("got %v, want %v", err, tt.wantErr)
			}
		})
	}
}

func TestInfo(t *testing.T) {
	info := Info(createTestImage(400, 300, color.White))

	if info.Width != 400 || info.Height != 300 {
		t.Errorf("dimensions: got %dx%d", info.Width, info.Height)
	}
	if info.Area != 120000 {
		t.Errorf("area: got %d", info.Area)
	}
	if info.AspectRatio < 1.333 || info.AspectRatio > 1.334 {
		t.Errorf("aspect ratio: got %f", info.AspectRatio)
	}
}
