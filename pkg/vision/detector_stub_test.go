//go:build !gocv

package vision

import (
	"errors"
	"testing"
)

func TestNewDetector_GoCVDisabled(t *testing.T) {
	if _, err := NewDetector(BackendGoCV); !errors.Is(err, ErrGoCVDisabled) {
		t.Errorf("expected ErrGoCVDisabled, got %v", err)
	}
}
