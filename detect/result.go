package detect

import "sync"

// BoxRect are the dimensions of the bounding box of a detected object in
// source image coordinates
type BoxRect struct {
	Left   int
	Right  int
	Top    int
	Bottom int
}

// Width returns the pixel width of the bounding box
func (b BoxRect) Width() int {
	return b.Right - b.Left
}

// Height returns the pixel height of the bounding box
func (b BoxRect) Height() int {
	return b.Bottom - b.Top
}

// Result defines the attributes of a single object detected
type Result struct {
	// Class is the label index the model was trained on defining the class
	// of the detected object
	Class int
	// Box are the bounding box dimensions of the object location
	Box BoxRect
	// Probability is the confidence score of the object detected
	Probability float32
	// ID is a unique ID assigned to the detection result
	ID int64
}

// IDGenerator holds a counter for generating the next incremental
// detection ID number
type IDGenerator struct {
	id int64
	sync.Mutex
}

// NewIDGenerator returns an IDGenerator starting at zero
func NewIDGenerator() *IDGenerator {
	return &IDGenerator{}
}

// GetNext returns the next incremental number
func (g *IDGenerator) GetNext() int64 {
	g.Lock()
	defer g.Unlock()
	g.id++
	return g.id
}

// FilterClass returns only the results belonging to the given class
func FilterClass(results []Result, class int) []Result {

	var out []Result

	for _, res := range results {
		if res.Class == class {
			out = append(out, res)
		}
	}

	return out
}

// ExcludeClass returns all results except those belonging to the given class
func ExcludeClass(results []Result, class int) []Result {

	var out []Result

	for _, res := range results {
		if res.Class != class {
			out = append(out, res)
		}
	}

	return out
}

// PadBoxes grows each results bounding box by px pixels on every side,
// clamped to the image bounds given by width and height
func PadBoxes(results []Result, px, width, height int) []Result {

	out := make([]Result, len(results))

	for i, res := range results {
		res.Box.Left = clampInt(res.Box.Left-px, 0, width)
		res.Box.Top = clampInt(res.Box.Top-px, 0, height)
		res.Box.Right = clampInt(res.Box.Right+px, 0, width)
		res.Box.Bottom = clampInt(res.Box.Bottom+px, 0, height)
		out[i] = res
	}

	return out
}

// clampInt restricts val to the range min and max
func clampInt(val, min, max int) int {

	if val < min {
		return min
	}

	if val > max {
		return max
	}

	return val
}
