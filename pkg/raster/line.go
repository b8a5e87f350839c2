package raster

import (
	"image/color"
	"image/draw"
)

// Line draws the segment from (x0, y0) to (x1, y1) inclusive using integer
// Bresenham stepping. Points outside img are clipped by img.Set.
func Line(img draw.Image, x0, y0, x1, y1 int, c color.Color) {
	steep := false
	if abs(x0-x1) < abs(y0-y1) {
		// Step along y instead, so each step advances at most one pixel
		x0, y0 = y0, x0
		x1, y1 = y1, x1
		steep = true
	}
	if x0 > x1 {
		x0, x1 = x1, x0
		y0, y1 = y1, y0
	}

	dx := x1 - x0
	derror2 := abs(y1-y0) * 2
	error2 := 0
	yStep := 1
	if y1 < y0 {
		yStep = -1
	}

	y := y0
	for x := x0; x <= x1; x++ {
		if steep {
			img.Set(y, x, c)
		} else {
			img.Set(x, y, c)
		}
		error2 += derror2
		if error2 > dx {
			y += yStep
			error2 -= dx * 2
		}
	}
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}
