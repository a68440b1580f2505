package render

import (
	"image"
	"image/color"

	"github.com/rafaelfrans/soccer-ai/detect"
	"gocv.io/x/gocv"
)

// Default triangle marker dimensions
const (
	DefaultTriangleBase    = 25
	DefaultTriangleHeight  = 21
	DefaultTriangleOutline = 1
)

// TriangleStyle defines the parameters of the ball marker
type TriangleStyle struct {
	Color color.RGBA
	// Base is the pixel width of the triangle top edge
	Base int
	// Height is the pixel height of the triangle
	Height int
	// OutlineThickness is the black outline width, zero for none
	OutlineThickness int
}

// DefaultTriangleStyle returns the default ball marker style
func DefaultTriangleStyle(clr color.RGBA) TriangleStyle {
	return TriangleStyle{
		Color:            clr,
		Base:             DefaultTriangleBase,
		Height:           DefaultTriangleHeight,
		OutlineThickness: DefaultTriangleOutline,
	}
}

// Triangles draws a downward pointing marker above each detection, used to
// highlight the ball
func Triangles(img *gocv.Mat, results []detect.Result, style TriangleStyle) {

	for _, res := range results {

		tipX := (res.Box.Left + res.Box.Right) / 2
		tipY := res.Box.Top

		points := []image.Point{
			{X: tipX, Y: tipY},
			{X: tipX - style.Base/2, Y: tipY - style.Height},
			{X: tipX + style.Base/2, Y: tipY - style.Height},
		}

		pts := gocv.NewPointsVectorFromPoints([][]image.Point{points})

		gocv.FillPoly(img, pts, style.Color)

		if style.OutlineThickness > 0 {
			gocv.Polylines(img, pts, true, Black, style.OutlineThickness)
		}

		pts.Close()
	}
}
