package imageio

import (
	"bufio"
	"encoding/binary"
	"errors"
	"fmt"
	"image"
	"image/color"
	"io"
)

// TGA image types
const (
	tgaTrueColor    = 2
	tgaGrayscale    = 3
	tgaRLETrueColor = 10
	tgaRLEGrayscale = 11
)

// Image descriptor bits
const (
	tgaOriginRight = 0x10
	tgaOriginTop   = 0x20
	tgaAlphaBits   = 0x0f
)

const (
	tgaHeaderSize = 18
	tgaMaxPacket  = 128
)

var tgaFooter = []byte("TRUEVISION-XFILE.\x00")

var errTGAFormat = errors.New("tga: invalid format")

func init() {
	// Uncompressed and RLE images without an ID field or color map
	for _, magic := range []string{"\x00\x00\x02", "\x00\x00\x03", "\x00\x00\x0a", "\x00\x00\x0b"} {
		image.RegisterFormat("tga", magic, DecodeTGA, DecodeTGAConfig)
	}
}

// TGAOptions controls TGA encoding
type TGAOptions struct {
	RLE      bool // Run length encode the pixel data
	BottomUp bool // Store rows bottom first with a bottom-left origin
}

type tgaHeader struct {
	IDLength        uint8
	ColorMapType    uint8
	ImageType       uint8
	ColorMapOrigin  uint16
	ColorMapLength  uint16
	ColorMapDepth   uint8
	XOrigin         uint16
	YOrigin         uint16
	Width           uint16
	Height          uint16
	BitsPerPixel    uint8
	ImageDescriptor uint8
}

// EncodeTGA writes img as a TGA file. Gray images are written with one byte per
// pixel, opaque images as BGR and the rest as BGRA.
func EncodeTGA(w io.Writer, img image.Image, opts *TGAOptions) error {
	if opts == nil {
		opts = &TGAOptions{}
	}

	bounds := img.Bounds()
	width, height := bounds.Dx(), bounds.Dy()
	if width <= 0 || height <= 0 || width > 0xffff || height > 0xffff {
		return fmt.Errorf("tga: cannot encode %dx%d image", width, height)
	}

	bpp := 3
	header := tgaHeader{ImageType: tgaTrueColor}
	switch {
	case isGray(img):
		bpp = 1
		header.ImageType = tgaGrayscale
	case !isOpaque(img):
		bpp = 4
		header.ImageDescriptor |= 8
	}
	if opts.RLE {
		header.ImageType += 8
	}
	if !opts.BottomUp {
		header.ImageDescriptor |= tgaOriginTop
	}
	header.Width = uint16(width)
	header.Height = uint16(height)
	header.BitsPerPixel = uint8(bpp * 8)

	data := make([]byte, 0, width*height*bpp)
	for row := 0; row < height; row++ {
		y := bounds.Min.Y + row
		if opts.BottomUp {
			y = bounds.Max.Y - 1 - row
		}
		for x := bounds.Min.X; x < bounds.Max.X; x++ {
			data = appendTGAPixel(data, img.At(x, y), bpp)
		}
	}

	bw := bufio.NewWriter(w)
	if err := binary.Write(bw, binary.LittleEndian, header); err != nil {
		return fmt.Errorf("tga: failed to write header: %w", err)
	}

	if opts.RLE {
		data = encodeRLE(data, bpp)
	}
	if _, err := bw.Write(data); err != nil {
		return fmt.Errorf("tga: failed to write pixel data: %w", err)
	}

	// Developer and extension area offsets, then the footer
	var offsets [8]byte
	bw.Write(offsets[:])
	bw.Write(tgaFooter)
	return bw.Flush()
}

func appendTGAPixel(data []byte, c color.Color, bpp int) []byte {
	if bpp == 1 {
		return append(data, color.GrayModel.Convert(c).(color.Gray).Y)
	}
	n := color.NRGBAModel.Convert(c).(color.NRGBA)
	data = append(data, n.B, n.G, n.R)
	if bpp == 4 {
		data = append(data, n.A)
	}
	return data
}

// encodeRLE packs pixels into run length and raw packets of at most 128 pixels
func encodeRLE(data []byte, bpp int) []byte {
	n := len(data) / bpp
	pixel := func(i int) []byte { return data[i*bpp : (i+1)*bpp] }
	same := func(i, j int) bool { return string(pixel(i)) == string(pixel(j)) }

	out := make([]byte, 0, len(data))
	for i := 0; i < n; {
		run := 1
		for i+run < n && run < tgaMaxPacket && same(i, i+run) {
			run++
		}
		if run > 1 {
			out = append(out, byte(0x80|(run-1)))
			out = append(out, pixel(i)...)
			i += run
			continue
		}

		// Raw packet up to the start of the next run
		raw := 1
		for i+raw < n && raw < tgaMaxPacket {
			if i+raw+1 < n && same(i+raw, i+raw+1) {
				break
			}
			raw++
		}
		out = append(out, byte(raw-1))
		out = append(out, data[i*bpp:(i+raw)*bpp]...)
		i += raw
	}
	return out
}

func readTGAHeader(r io.Reader) (tgaHeader, int, error) {
	var header tgaHeader
	if err := binary.Read(r, binary.LittleEndian, &header); err != nil {
		return header, 0, fmt.Errorf("tga: failed to read header: %w", err)
	}
	if header.ColorMapType != 0 {
		return header, 0, fmt.Errorf("%w: color mapped images are not supported", errTGAFormat)
	}
	if header.Width == 0 || header.Height == 0 || int(header.Width) > MaxDecodeSize || int(header.Height) > MaxDecodeSize {
		return header, 0, fmt.Errorf("%w: bad size %dx%d", errTGAFormat, header.Width, header.Height)
	}

	bpp := int(header.BitsPerPixel) >> 3
	switch header.ImageType {
	case tgaGrayscale, tgaRLEGrayscale:
		if bpp != 1 {
			return header, 0, fmt.Errorf("%w: grayscale image with %d bytes per pixel", errTGAFormat, bpp)
		}
	case tgaTrueColor, tgaRLETrueColor:
		if bpp != 3 && bpp != 4 {
			return header, 0, fmt.Errorf("%w: true color image with %d bytes per pixel", errTGAFormat, bpp)
		}
	default:
		return header, 0, fmt.Errorf("%w: unsupported image type %d", errTGAFormat, header.ImageType)
	}
	return header, bpp, nil
}

// DecodeTGAConfig returns the color model and dimensions of a TGA image
func DecodeTGAConfig(r io.Reader) (image.Config, error) {
	header, bpp, err := readTGAHeader(r)
	if err != nil {
		return image.Config{}, err
	}
	model := color.NRGBAModel
	if bpp == 1 {
		model = color.GrayModel
	}
	return image.Config{ColorModel: model, Width: int(header.Width), Height: int(header.Height)}, nil
}

// DecodeTGA reads a raw or RLE TGA image. The result always has its origin at
// the top left, whatever the stored orientation.
func DecodeTGA(r io.Reader) (image.Image, error) {
	br := bufio.NewReader(r)
	header, bpp, err := readTGAHeader(br)
	if err != nil {
		return nil, err
	}
	if _, err := br.Discard(int(header.IDLength)); err != nil {
		return nil, fmt.Errorf("tga: failed to skip image ID: %w", err)
	}

	width, height := int(header.Width), int(header.Height)
	data := make([]byte, width*height*bpp)
	if header.ImageType == tgaRLETrueColor || header.ImageType == tgaRLEGrayscale {
		err = decodeRLE(br, data, bpp)
	} else {
		_, err = io.ReadFull(br, data)
	}
	if err != nil {
		return nil, fmt.Errorf("tga: failed to read pixel data: %w", err)
	}

	topDown := header.ImageDescriptor&tgaOriginTop != 0
	rightToLeft := header.ImageDescriptor&tgaOriginRight != 0
	hasAlpha := bpp == 4 && header.ImageDescriptor&tgaAlphaBits != 0

	var gray *image.Gray
	var nrgba *image.NRGBA
	if bpp == 1 {
		gray = image.NewGray(image.Rect(0, 0, width, height))
	} else {
		nrgba = image.NewNRGBA(image.Rect(0, 0, width, height))
	}

	for row := 0; row < height; row++ {
		y := row
		if !topDown {
			y = height - 1 - row
		}
		for col := 0; col < width; col++ {
			x := col
			if rightToLeft {
				x = width - 1 - col
			}
			p := data[(row*width+col)*bpp:]
			if gray != nil {
				gray.SetGray(x, y, color.Gray{Y: p[0]})
				continue
			}
			c := color.NRGBA{R: p[2], G: p[1], B: p[0], A: 255}
			if hasAlpha {
				c.A = p[3]
			}
			nrgba.SetNRGBA(x, y, c)
		}
	}

	if gray != nil {
		return gray, nil
	}
	return nrgba, nil
}

func decodeRLE(r io.ByteReader, data []byte, bpp int) error {
	pixel := make([]byte, bpp)
	for offset := 0; offset < len(data); {
		packet, err := r.ReadByte()
		if err != nil {
			return err
		}
		count := int(packet&0x7f) + 1
		if offset+count*bpp > len(data) {
			return fmt.Errorf("%w: packet overruns image", errTGAFormat)
		}

		if packet&0x80 != 0 {
			for i := range pixel {
				if pixel[i], err = r.ReadByte(); err != nil {
					return err
				}
			}
			for i := 0; i < count; i++ {
				offset += copy(data[offset:], pixel)
			}
			continue
		}

		for i := 0; i < count*bpp; i++ {
			if data[offset], err = r.ReadByte(); err != nil {
				return err
			}
			offset++
		}
	}
	return nil
}

func isGray(img image.Image) bool {
	switch img.(type) {
	case *image.Gray, *image.Gray16:
		return true
	}
	return false
}

func isOpaque(img image.Image) bool {
	if o, ok := img.(interface{ Opaque() bool }); ok {
		return o.Opaque()
	}
	return false
}
