package imageio

import (
	"image"
	"image/color"
	"os"
	"path/filepath"
	"testing"
)

func TestNormalizeFormat(t *testing.T) {
	tests := []struct {
		input    string
		expected string
		wantErr  bool
	}{
		{"png", "png", false},
		{".PNG", "png", false},
		{"jpg", "jpeg", false},
		{"jpeg", "jpeg", false},
		{".tga", "tga", false},
		{"ppm", "ppm", false},
		{"bmp", "bmp", false},
		{"", "", true},
		{"exr", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, err := NormalizeFormat(tt.input)
			if (err != nil) != tt.wantErr {
				t.Fatalf("NormalizeFormat(%q) error = %v, wantErr %t", tt.input, err, tt.wantErr)
			}
			if got != tt.expected {
				t.Errorf("NormalizeFormat(%q) = %q, want %q", tt.input, got, tt.expected)
			}
		})
	}
}

func TestContentType(t *testing.T) {
	tests := map[string]string{
		"png":  "image/png",
		"jpeg": "image/jpeg",
		"ppm":  "image/x-portable-pixmap",
		"tga":  "image/x-tga",
	}
	for format, expected := range tests {
		if got := ContentType(format); got != expected {
			t.Errorf("ContentType(%q) = %q, want %q", format, got, expected)
		}
	}
}

func TestTransform_Flips(t *testing.T) {
	src := image.NewRGBA(image.Rect(0, 0, 2, 2))
	red := color.RGBA{R: 255, A: 255}
	src.SetRGBA(0, 0, red)

	tests := []struct {
		name     string
		opts     Options
		x, y     int
		expected color.RGBA
	}{
		{"no flip", Options{}, 0, 0, red},
		{"vertical", Options{FlipV: true}, 0, 1, red},
		{"horizontal", Options{FlipH: true}, 1, 0, red},
		{"both", Options{FlipV: true, FlipH: true}, 1, 1, red},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out := Transform(src, tt.opts)
			got := color.RGBAModel.Convert(out.At(tt.x, tt.y)).(color.RGBA)
			if got != tt.expected {
				t.Errorf("Expected %v at (%d,%d), got %v", tt.expected, tt.x, tt.y, got)
			}
		})
	}
}

func TestTransform_Scale(t *testing.T) {
	src := gradientImage(40, 30)

	tests := []struct {
		scale                 float64
		expectedW, expectedH int
	}{
		{0, 40, 30},
		{1, 40, 30},
		{0.5, 20, 15},
		{2, 80, 60},
		{0.01, 1, 1},
	}

	for _, tt := range tests {
		out := Transform(src, Options{Scale: tt.scale})
		if out.Bounds().Dx() != tt.expectedW || out.Bounds().Dy() != tt.expectedH {
			t.Errorf("Scale %g: expected %dx%d, got %dx%d", tt.scale, tt.expectedW, tt.expectedH, out.Bounds().Dx(), out.Bounds().Dy())
		}
	}
}

func TestSave_ByExtension(t *testing.T) {
	dir := t.TempDir()
	src := gradientImage(6, 4)

	for _, name := range []string{"out.png", "out.ppm", "out.tga", "nested/dir/out.bmp"} {
		t.Run(name, func(t *testing.T) {
			path := filepath.Join(dir, name)
			if err := Save(path, src, Options{}); err != nil {
				t.Fatalf("Save failed: %v", err)
			}

			f, err := os.Open(path)
			if err != nil {
				t.Fatalf("Failed to open saved file: %v", err)
			}
			defer f.Close()

			decoded, _, err := image.Decode(f)
			if err != nil {
				t.Fatalf("Failed to decode saved file: %v", err)
			}
			assertSameNRGBA(t, decoded, src)
		})
	}
}

func TestSave_ExplicitFormatAndErrors(t *testing.T) {
	dir := t.TempDir()
	src := gradientImage(2, 2)

	path := filepath.Join(dir, "render.out")
	if err := Save(path, src, Options{Format: "tga", RLE: true}); err != nil {
		t.Fatalf("Save with explicit format failed: %v", err)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("Failed to read saved file: %v", err)
	}
	if data[2] != tgaRLETrueColor {
		t.Errorf("Expected RLE TGA, got image type %d", data[2])
	}

	if err := Save(filepath.Join(dir, "render.xyz"), src, Options{}); err == nil {
		t.Error("Expected error for unknown extension")
	}
}

func TestEncodeBytes(t *testing.T) {
	data, format, err := EncodeBytes(gradientImage(3, 3), Options{Format: "PPM", FlipV: true})
	if err != nil {
		t.Fatalf("EncodeBytes failed: %v", err)
	}
	if format != "ppm" {
		t.Errorf("Expected ppm, got %q", format)
	}
	if len(data) != len("P6\n3 3\n255\n")+27 {
		t.Errorf("Unexpected encoded length %d", len(data))
	}
}
