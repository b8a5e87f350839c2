package imageio

import (
	"image"
	"image/color"
	"math"
	"testing"
)

func TestCompare(t *testing.T) {
	a := gradientImage(4, 4)

	identical, err := Compare(a, gradientImage(4, 4))
	if err != nil {
		t.Fatalf("Compare failed: %v", err)
	}
	if !identical.Identical() || identical.Pixels != 16 || identical.MaxDelta != 0 {
		t.Errorf("Expected identical images, got %v", identical)
	}

	b := gradientImage(4, 4)
	b.SetRGBA(1, 1, color.RGBA{R: a.RGBAAt(1, 1).R + 12, G: a.RGBAAt(1, 1).G, B: a.RGBAAt(1, 1).B, A: 255})
	diff, err := Compare(a, b)
	if err != nil {
		t.Fatalf("Compare failed: %v", err)
	}
	if diff.DifferentPixels != 1 || diff.MaxDelta != 12 {
		t.Errorf("Expected one pixel with delta 12, got %v", diff)
	}
	if math.Abs(diff.MeanDelta-12.0/48.0) > 1e-12 {
		t.Errorf("Expected mean delta %f, got %f", 12.0/48.0, diff.MeanDelta)
	}
}

func TestCompare_IgnoresOriginAndAlpha(t *testing.T) {
	a := image.NewNRGBA(image.Rect(0, 0, 1, 1))
	a.SetNRGBA(0, 0, color.NRGBA{R: 10, G: 20, B: 30, A: 255})
	b := image.NewNRGBA(image.Rect(5, 5, 6, 6))
	b.SetNRGBA(5, 5, color.NRGBA{R: 10, G: 20, B: 30, A: 255})

	diff, err := Compare(a, b)
	if err != nil {
		t.Fatalf("Compare failed: %v", err)
	}
	if !diff.Identical() {
		t.Errorf("Expected identical images, got %v", diff)
	}
}

func TestCompare_SizeMismatch(t *testing.T) {
	if _, err := Compare(gradientImage(2, 2), gradientImage(2, 3)); err == nil {
		t.Error("Expected error for different sizes")
	}
}
