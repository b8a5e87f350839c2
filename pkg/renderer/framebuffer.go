package renderer

import (
	"image"
	"image/color"
	"math"

	"github.com/harrisjacob/3D-Renderer/pkg/core"
)

// Framebuffer holds linear radiance per pixel in row-major order.
// Values are unbounded; writers clamp them to [0, 1].
type Framebuffer struct {
	Width  int
	Height int
	Pixels []core.Vec3
}

// NewFramebuffer allocates a black framebuffer
func NewFramebuffer(width, height int) *Framebuffer {
	return &Framebuffer{
		Width:  width,
		Height: height,
		Pixels: make([]core.Vec3, width*height),
	}
}

// At returns the radiance at (x, y)
func (fb *Framebuffer) At(x, y int) core.Vec3 {
	return fb.Pixels[y*fb.Width+x]
}

// Set stores the radiance at (x, y)
func (fb *Framebuffer) Set(x, y int, c core.Vec3) {
	fb.Pixels[y*fb.Width+x] = c
}

// QuantizeChannel clamps v to [0, 1] and maps it to a byte with rounding
func QuantizeChannel(v float64) uint8 {
	return uint8(math.Round(max(0, min(1, v)) * 255))
}

// ToRGBA converts the framebuffer to an opaque 8-bit image
func (fb *Framebuffer) ToRGBA() *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, fb.Width, fb.Height))
	for y := 0; y < fb.Height; y++ {
		for x := 0; x < fb.Width; x++ {
			c := fb.At(x, y)
			img.SetRGBA(x, y, color.RGBA{
				R: QuantizeChannel(c.X),
				G: QuantizeChannel(c.Y),
				B: QuantizeChannel(c.Z),
				A: 255,
			})
		}
	}
	return img
}

// Equal reports whether two framebuffers hold bit-identical pixels
func (fb *Framebuffer) Equal(other *Framebuffer) bool {
	if fb.Width != other.Width || fb.Height != other.Height {
		return false
	}
	for i := range fb.Pixels {
		if fb.Pixels[i] != other.Pixels[i] {
			return false
		}
	}
	return true
}
