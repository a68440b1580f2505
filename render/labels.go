package render

import (
	"fmt"
	"image"
	"image/color"
	"image/draw"

	"github.com/rafaelfrans/soccer-ai/tracker"
	"gocv.io/x/gocv"
	"golang.org/x/image/font"
	"golang.org/x/image/math/fixed"
)

// TrackLabels draws the track ID of each tracked object on a filled box
// beneath it, colored to match the objects ellipse marker.  When ttf is not
// nil the label text is drawn with the type face instead of the builtin
// Hershey font.
func TrackLabels(img *gocv.Mat, tracks []*tracker.Track, pal Palette,
	fnt Font, ttf font.Face) {

	for _, track := range tracks {

		rect := track.Rect()

		text := fmt.Sprintf("#%d", track.TrackID())
		textSize := gocv.GetTextSize(text, fnt.Face, fnt.Scale, fnt.Thickness)

		centerX := int(rect.TLX() + rect.Width()/2)
		topY := int(rect.BRY()) + fnt.TopPad

		// filled background box centered under the object
		bRect := image.Rect(
			centerX-textSize.X/2-fnt.LeftPad,
			topY,
			centerX+textSize.X/2+fnt.RightPad,
			topY+textSize.Y+fnt.TopPad+fnt.BottomPad)

		clr := pal.ByIndex(track.Label())
		gocv.Rectangle(img, bRect, clr, -1)

		textPos := image.Pt(centerX-textSize.X/2, topY+textSize.Y+fnt.TopPad)

		if ttf != nil {
			putTTFText(img, text, textPos.X, textPos.Y, ttf, fnt.Color)
			continue
		}

		gocv.PutTextWithParams(img, text, textPos,
			fnt.Face, fnt.Scale, fnt.Color, fnt.Thickness,
			fnt.LineType, false)
	}
}

// putTTFText renders text with a TTF type face by drawing onto an RGBA
// overlay and blending it onto the image
func putTTFText(img *gocv.Mat, text string, x, y int, face font.Face,
	clr color.RGBA) error {

	rgba := image.NewRGBA(image.Rect(0, 0, img.Cols(), img.Rows()))
	draw.Draw(rgba, rgba.Bounds(), image.NewUniform(color.RGBA{0, 0, 0, 0}),
		image.Point{}, draw.Src)

	dr := &font.Drawer{
		Dst:  rgba,
		Src:  image.NewUniform(clr),
		Face: face,
		Dot: fixed.Point26_6{
			X: fixed.Int26_6(x * 64),
			Y: fixed.Int26_6(y * 64),
		},
	}
	dr.DrawString(text)

	overlay, err := gocv.NewMatFromBytes(rgba.Bounds().Dy(), rgba.Bounds().Dx(),
		gocv.MatTypeCV8UC4, rgba.Pix)

	if overlay.Empty() || err != nil {
		return fmt.Errorf("error creating Mat from RGBA")
	}

	defer overlay.Close()

	gocv.CvtColor(overlay, &overlay, gocv.ColorRGBAToBGR)
	gocv.AddWeighted(*img, 1.0, overlay, 1.0, 0, img)

	return nil
}
