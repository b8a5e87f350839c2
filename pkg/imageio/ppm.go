package imageio

import (
	"bufio"
	"fmt"
	"image"
	"image/color"
	"io"
)

// MaxDecodeSize bounds the width and height accepted from PPM and TGA headers
const MaxDecodeSize = 8192

func init() {
	image.RegisterFormat("ppm", "P6", DecodePPM, DecodePPMConfig)
}

// EncodePPM writes img as a binary (P6) PPM with 8 bits per channel, rows top
// to bottom. Alpha is discarded.
func EncodePPM(w io.Writer, img image.Image) error {
	bounds := img.Bounds()
	bw := bufio.NewWriter(w)
	if _, err := fmt.Fprintf(bw, "P6\n%d %d\n255\n", bounds.Dx(), bounds.Dy()); err != nil {
		return fmt.Errorf("ppm: failed to write header: %w", err)
	}

	row := make([]byte, 0, bounds.Dx()*3)
	for y := bounds.Min.Y; y < bounds.Max.Y; y++ {
		row = row[:0]
		for x := bounds.Min.X; x < bounds.Max.X; x++ {
			c := color.NRGBAModel.Convert(img.At(x, y)).(color.NRGBA)
			row = append(row, c.R, c.G, c.B)
		}
		if _, err := bw.Write(row); err != nil {
			return fmt.Errorf("ppm: failed to write pixels: %w", err)
		}
	}
	return bw.Flush()
}

type ppmHeader struct {
	width, height, maxVal int
}

func readPPMHeader(r *bufio.Reader) (ppmHeader, error) {
	var magic string
	var h ppmHeader
	if _, err := fmt.Fscan(r, &magic); err != nil {
		return h, fmt.Errorf("ppm: failed to read magic: %w", err)
	}
	if magic != "P6" {
		return h, fmt.Errorf("ppm: unsupported magic %q", magic)
	}

	fields := []*int{&h.width, &h.height, &h.maxVal}
	for _, field := range fields {
		if err := skipPPMComments(r); err != nil {
			return h, err
		}
		if _, err := fmt.Fscan(r, field); err != nil {
			return h, fmt.Errorf("ppm: failed to read header: %w", err)
		}
	}
	if h.width <= 0 || h.height <= 0 || h.width > MaxDecodeSize || h.height > MaxDecodeSize {
		return h, fmt.Errorf("ppm: bad size %dx%d", h.width, h.height)
	}
	if h.maxVal <= 0 || h.maxVal > 255 {
		return h, fmt.Errorf("ppm: unsupported max value %d", h.maxVal)
	}

	// Single whitespace byte separates the header from the raster
	if _, err := r.ReadByte(); err != nil {
		return h, fmt.Errorf("ppm: truncated header: %w", err)
	}
	return h, nil
}

func skipPPMComments(r *bufio.Reader) error {
	for {
		b, err := r.Peek(1)
		if err != nil {
			return fmt.Errorf("ppm: truncated header: %w", err)
		}
		switch b[0] {
		case ' ', '\t', '\n', '\r':
			r.ReadByte()
		case '#':
			if _, err := r.ReadString('\n'); err != nil {
				return fmt.Errorf("ppm: truncated comment: %w", err)
			}
		default:
			return nil
		}
	}
}

// DecodePPMConfig returns the dimensions of a P6 image
func DecodePPMConfig(r io.Reader) (image.Config, error) {
	h, err := readPPMHeader(bufio.NewReader(r))
	if err != nil {
		return image.Config{}, err
	}
	return image.Config{ColorModel: color.RGBAModel, Width: h.width, Height: h.height}, nil
}

// DecodePPM reads a P6 image, rescaling samples to 0..255 when the max value is lower
func DecodePPM(r io.Reader) (image.Image, error) {
	br := bufio.NewReader(r)
	h, err := readPPMHeader(br)
	if err != nil {
		return nil, err
	}

	img := image.NewRGBA(image.Rect(0, 0, h.width, h.height))
	raster := make([]byte, h.width*h.height*3)
	if _, err := io.ReadFull(br, raster); err != nil {
		return nil, fmt.Errorf("ppm: failed to read pixels: %w", err)
	}

	for i := 0; i < h.width*h.height; i++ {
		for c := 0; c < 3; c++ {
			v := int(raster[i*3+c])
			if h.maxVal != 255 {
				v = min((v*255+h.maxVal/2)/h.maxVal, 255)
			}
			img.Pix[i*4+c] = uint8(v)
		}
		img.Pix[i*4+3] = 255
	}
	return img, nil
}
