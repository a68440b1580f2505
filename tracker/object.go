package tracker

import "github.com/rafaelfrans/soccer-ai/detect"

// Object is a detection passed into the tracker for association
type Object struct {
	// Rect is the bounding box of the detected object
	Rect Rect
	// Label is the class label of the object detected
	Label int
	// Prob is the confidence of the object detected
	Prob float32
	// ID is the unique detection ID which can be used to match the input
	// detection and tracked object
	ID int64
}

// NewObject is a constructor function for the Object struct
func NewObject(rect Rect, label int, prob float32, id int64) Object {
	return Object{
		Rect:  rect,
		Label: label,
		Prob:  prob,
		ID:    id,
	}
}

// ResultsToObjects converts detection results into tracker objects
func ResultsToObjects(results []detect.Result) []Object {

	var objs []Object

	for _, res := range results {

		x := float32(res.Box.Left)
		y := float32(res.Box.Top)
		width := float32(res.Box.Right - res.Box.Left)
		height := float32(res.Box.Bottom - res.Box.Top)

		objs = append(objs, Object{
			Rect:  NewRect(x, y, width, height),
			Label: res.Class,
			Prob:  res.Probability,
			ID:    res.ID,
		})
	}

	return objs
}
