package render

import (
	"image"

	"github.com/rafaelfrans/soccer-ai/tracker"
	"gocv.io/x/gocv"
)

// ellipse arc parameters matching the on-pitch marker look, drawn as a
// partial arc across the bottom edge of the bounding box
// DefaultEllipseThickness is the default ellipse line thickness
const DefaultEllipseThickness = 2

const (
	ellipseStartAngle = -45.0
	ellipseEndAngle   = 235.0
	ellipseHeightFrac = 0.35
)

// Ellipses draws an ellipse marker under each tracked object.  The color is
// keyed by the tracks class label so goalkeepers, players and referees are
// visually distinct.
func Ellipses(img *gocv.Mat, tracks []*tracker.Track, pal Palette,
	thickness int) {

	for _, track := range tracks {

		rect := track.Rect()

		width := int(rect.Width())
		centerX := int(rect.TLX() + rect.Width()/2)
		bottomY := int(rect.BRY())

		if width <= 0 {
			continue
		}

		clr := pal.ByIndex(track.Label())

		gocv.EllipseWithParams(img,
			image.Pt(centerX, bottomY),
			image.Pt(width, int(float64(width)*ellipseHeightFrac)),
			0, ellipseStartAngle, ellipseEndAngle,
			clr, thickness, gocv.Line4, 0)
	}
}
