package imageio

import (
	"bytes"
	"fmt"
	"image"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/disintegration/imaging"
	"github.com/nfnt/resize"
)

// Output formats handled outside of imaging
const (
	FormatPPM = "ppm"
	FormatTGA = "tga"
)

// Options controls how a rendered image is post-processed and encoded
type Options struct {
	Format string  // Output format; empty means derive from the file extension
	FlipV  bool    // Mirror top to bottom
	FlipH  bool    // Mirror left to right
	Scale  float64 // Resize factor; 0 or 1 keeps the rendered size
	RLE    bool    // Run length encode TGA output
}

// Transform applies scaling and flips to img
func Transform(img image.Image, opts Options) image.Image {
	if opts.Scale > 0 && opts.Scale != 1 {
		bounds := img.Bounds()
		width := uint(float64(bounds.Dx())*opts.Scale + 0.5)
		height := uint(float64(bounds.Dy())*opts.Scale + 0.5)
		img = resize.Resize(max(width, 1), max(height, 1), img, resize.Bilinear)
	}
	if opts.FlipV {
		img = imaging.FlipV(img)
	}
	if opts.FlipH {
		img = imaging.FlipH(img)
	}
	return img
}

// NormalizeFormat maps a format name or file extension to a canonical format name
func NormalizeFormat(format string) (string, error) {
	format = strings.ToLower(strings.TrimPrefix(format, "."))
	switch format {
	case FormatPPM, FormatTGA:
		return format, nil
	}
	f, err := imaging.FormatFromExtension(format)
	if err != nil {
		return "", fmt.Errorf("unsupported image format %q", format)
	}
	return strings.ToLower(f.String()), nil
}

// ContentType returns the MIME type for a canonical format name
func ContentType(format string) string {
	switch format {
	case FormatPPM:
		return "image/x-portable-pixmap"
	case FormatTGA:
		return "image/x-tga"
	case "jpeg":
		return "image/jpeg"
	default:
		return "image/" + format
	}
}

// Encode writes img in the given format
func Encode(w io.Writer, img image.Image, format string, rle bool) error {
	format, err := NormalizeFormat(format)
	if err != nil {
		return err
	}

	switch format {
	case FormatPPM:
		return EncodePPM(w, img)
	case FormatTGA:
		return EncodeTGA(w, img, &TGAOptions{RLE: rle})
	}

	f, err := imaging.FormatFromExtension(format)
	if err != nil {
		return err
	}
	return imaging.Encode(w, img, f)
}

// EncodeBytes transforms and encodes img into memory, returning the data and format name
func EncodeBytes(img image.Image, opts Options) ([]byte, string, error) {
	format, err := NormalizeFormat(opts.Format)
	if err != nil {
		return nil, "", err
	}

	var buf bytes.Buffer
	if err := Encode(&buf, Transform(img, opts), format, opts.RLE); err != nil {
		return nil, "", fmt.Errorf("failed to encode %s: %w", format, err)
	}
	return buf.Bytes(), format, nil
}

// Save transforms img and writes it to path, creating parent directories.
// The format comes from opts.Format or the path's extension.
func Save(path string, img image.Image, opts Options) error {
	if opts.Format == "" {
		opts.Format = filepath.Ext(path)
	}
	data, _, err := EncodeBytes(img, opts)
	if err != nil {
		return err
	}

	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("failed to create output directory: %w", err)
		}
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write %s: %w", path, err)
	}
	return nil
}
