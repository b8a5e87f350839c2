package renderer

import (
	"image"
	"time"
)

// RenderStats contains statistics about the rendering process
type RenderStats struct {
	TotalPixels     int           // Total number of pixels rendered
	PrimaryRays     int           // One camera ray per pixel
	TotalRays       int           // Primary plus reflection and refraction rays
	ShadowRays      int           // Shadow rays cast toward lights
	MaxDepthReached int           // Deepest recursion level visited by any pixel
	Workers         int           // Number of goroutines used
	Tiles           int           // Number of tiles (0 for sequential renders)
	Elapsed         time.Duration // Wall clock time
}

func newRenderStats(fb *Framebuffer, trace TraceStats, workers, tiles int, elapsed time.Duration) RenderStats {
	pixels := fb.Width * fb.Height
	return RenderStats{
		TotalPixels:     pixels,
		PrimaryRays:     pixels,
		TotalRays:       trace.Rays,
		ShadowRays:      trace.ShadowRays,
		MaxDepthReached: trace.MaxDepthReached,
		Workers:         workers,
		Tiles:           tiles,
		Elapsed:         elapsed,
	}
}

// RaysPerPixel returns the average number of traced rays per pixel
func (s RenderStats) RaysPerPixel() float64 {
	if s.TotalPixels == 0 {
		return 0
	}
	return float64(s.TotalRays) / float64(s.TotalPixels)
}

// CalculateAverageLuminance computes the average luminance of an 8-bit image
// using Rec. 709 weights
func CalculateAverageLuminance(img image.Image) float64 {
	bounds := img.Bounds()
	pixels := bounds.Dx() * bounds.Dy()
	if pixels == 0 {
		return 0
	}

	var total float64
	for y := bounds.Min.Y; y < bounds.Max.Y; y++ {
		for x := bounds.Min.X; x < bounds.Max.X; x++ {
			r, g, b, _ := img.At(x, y).RGBA()
			total += 0.2126*float64(r)/65535 + 0.7152*float64(g)/65535 + 0.0722*float64(b)/65535
		}
	}
	return total / float64(pixels)
}
