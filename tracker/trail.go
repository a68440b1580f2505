package tracker

import "sync"

// DefaultTrailSize is the number of history points kept per track
const DefaultTrailSize = 90

// Point is the x,y center coordinate of a tracked bounding box
type Point struct {
	X, Y int
}

// history holds the recorded points of a single track
type history struct {
	points []Point
}

// Trail keeps a bounded history of track center points used for drawing
// movement trails
type Trail struct {
	// size is the maximum number of most recent points kept per track
	size int
	// history of tracked points keyed by track ID
	tracks map[int]*history
	sync.Mutex
}

// NewTrail returns a new trail history instance.  Size is the maximum trail
// length maintained per track.
func NewTrail(size int) *Trail {
	return &Trail{
		size:   size,
		tracks: make(map[int]*history),
	}
}

// Reset clears all history
func (t *Trail) Reset() {
	t.Lock()
	defer t.Unlock()

	t.tracks = make(map[int]*history)
}

// Add records the center point of the tracks current bounding box
func (t *Trail) Add(track *Track) {
	t.Lock()
	defer t.Unlock()

	if _, exists := t.tracks[track.TrackID()]; !exists {
		t.tracks[track.TrackID()] = &history{}
	}

	h := t.tracks[track.TrackID()]

	rect := track.Rect()
	x := rect.TLX() + rect.Width()/2
	y := rect.TLY() + rect.Height()/2

	h.points = append(h.points, Point{
		X: int(x),
		Y: int(y),
	})

	// drop the oldest point once the trail length is exceeded
	if len(h.points) > t.size {
		h.points = h.points[1:]
	}
}

// GetPoints gets the point history for a specific track ID
func (t *Trail) GetPoints(id int) []Point {
	t.Lock()
	defer t.Unlock()

	if h, exists := t.tracks[id]; exists {
		return h.points
	}

	return nil
}
