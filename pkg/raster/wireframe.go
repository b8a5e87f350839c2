package raster

import (
	"image"
	"image/color"
	"image/draw"

	"github.com/harrisjacob/3D-Renderer/pkg/core"
	"github.com/harrisjacob/3D-Renderer/pkg/loaders"
)

// Project maps a vertex from the [-1, 1] cube onto a width x height pixel grid,
// dropping z. Row 0 is the bottom of the model.
func Project(v core.Vec3, width, height int) (int, int) {
	x := int((v.X + 1) * float64(width) / 2)
	y := int((v.Y + 1) * float64(height) / 2)
	return x, y
}

// Wireframe draws every face edge of model onto a black width x height image.
// The image is stored bottom row first; flip it vertically for display.
func Wireframe(model *loaders.OBJData, width, height int, c color.Color) *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, width, height))
	draw.Draw(img, img.Bounds(), image.NewUniform(color.Black), image.Point{}, draw.Src)

	model.Edges(func(a, b core.Vec3) {
		x0, y0 := Project(a, width, height)
		x1, y1 := Project(b, width, height)
		Line(img, x0, y0, x1, y1, c)
	})
	return img
}
