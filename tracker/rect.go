package tracker

import (
	"math"
)

// Rect is a bounding box in top-left x/y, width, height format
type Rect struct {
	X, Y, W, H float32
}

// NewRect creates a new Rect with the given coordinates
func NewRect(x, y, width, height float32) Rect {
	return Rect{X: x, Y: y, W: width, H: height}
}

// TLX returns the top-left x coordinate of the rectangle
func (r Rect) TLX() float32 {
	return r.X
}

// TLY returns the top-left y coordinate of the rectangle
func (r Rect) TLY() float32 {
	return r.Y
}

// BRX returns the bottom-right x coordinate of the rectangle
func (r Rect) BRX() float32 {
	return r.X + r.W
}

// BRY returns the bottom-right y coordinate of the rectangle
func (r Rect) BRY() float32 {
	return r.Y + r.H
}

// Width returns the width of the rectangle
func (r Rect) Width() float32 {
	return r.W
}

// Height returns the height of the rectangle
func (r Rect) Height() float32 {
	return r.H
}

// Xyah converts the rectangle to center x, center y, aspect ratio, height
// format used by the Kalman filter state
func (r Rect) Xyah() []float32 {
	return []float32{
		r.X + r.W/2,
		r.Y + r.H/2,
		r.W / r.H,
		r.H,
	}
}

// RectFromXyah creates a Rect from center x, center y, aspect ratio,
// height format
func RectFromXyah(xyah []float32) Rect {
	width := xyah[2] * xyah[3]
	return NewRect(xyah[0]-width/2, xyah[1]-xyah[3]/2, width, xyah[3])
}

// IoU calculates the Intersection over Union with another rectangle
func (r Rect) IoU(other Rect) float32 {

	boxArea := (other.W + 1) * (other.H + 1)

	iw := float32(math.Min(float64(r.X+r.W), float64(other.X+other.W)) -
		math.Max(float64(r.X), float64(other.X)) + 1)

	iou := float32(0)

	if iw > 0 {
		ih := float32(math.Min(float64(r.Y+r.H), float64(other.Y+other.H)) -
			math.Max(float64(r.Y), float64(other.Y)) + 1)

		if ih > 0 {
			ua := (r.W+1)*(r.H+1) + boxArea - iw*ih
			iou = iw * ih / ua
		}
	}

	return iou
}
