package imageio

import (
	"fmt"
	"image"
	"image/color"
)

// Difference summarizes how two images of the same size differ
type Difference struct {
	Pixels          int     // Pixels compared
	DifferentPixels int     // Pixels where any channel differs
	MaxDelta        uint8   // Largest absolute per-channel difference
	MeanDelta       float64 // Mean absolute per-channel difference over RGB
}

// Identical reports whether the images matched exactly
func (d Difference) Identical() bool {
	return d.DifferentPixels == 0
}

// String formats the difference for logs
func (d Difference) String() string {
	return fmt.Sprintf("%d/%d pixels differ, max delta %d, mean delta %.4f",
		d.DifferentPixels, d.Pixels, d.MaxDelta, d.MeanDelta)
}

// Compare compares the RGB channels of two images at 8 bits per channel.
// Images must have the same dimensions; their origins may differ.
func Compare(a, b image.Image) (Difference, error) {
	ab, bb := a.Bounds(), b.Bounds()
	if ab.Dx() != bb.Dx() || ab.Dy() != bb.Dy() {
		return Difference{}, fmt.Errorf("image sizes differ: %dx%d vs %dx%d", ab.Dx(), ab.Dy(), bb.Dx(), bb.Dy())
	}

	var diff Difference
	var total float64
	for y := 0; y < ab.Dy(); y++ {
		for x := 0; x < ab.Dx(); x++ {
			ca := color.NRGBAModel.Convert(a.At(ab.Min.X+x, ab.Min.Y+y)).(color.NRGBA)
			cb := color.NRGBAModel.Convert(b.At(bb.Min.X+x, bb.Min.Y+y)).(color.NRGBA)

			differs := false
			for _, d := range [3]uint8{absDiff(ca.R, cb.R), absDiff(ca.G, cb.G), absDiff(ca.B, cb.B)} {
				if d > 0 {
					differs = true
				}
				diff.MaxDelta = max(diff.MaxDelta, d)
				total += float64(d)
			}
			if differs {
				diff.DifferentPixels++
			}
			diff.Pixels++
		}
	}

	if diff.Pixels > 0 {
		diff.MeanDelta = total / float64(diff.Pixels*3)
	}
	return diff, nil
}

func absDiff(a, b uint8) uint8 {
	if a > b {
		return a - b
	}
	return b - a
}
