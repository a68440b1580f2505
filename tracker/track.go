package tracker

import (
	"fmt"

	"gonum.org/v1/gonum/mat"
)

// TrackState represents the state of a tracked object
type TrackState int

const (
	// New is an object that has just been detected
	New TrackState = 0
	// Tracked is an object currently being tracked
	Tracked TrackState = 1
	// Lost is an object that has dropped out of detection results
	Lost TrackState = 2
	// Removed is an object that has been lost longer than the track buffer
	Removed TrackState = 3
)

// Track is a single tracked object
type Track struct {
	// Kalman filter used for motion prediction
	kf *kalmanFilter
	// Mean state vector
	mean stateMean
	// Covariance matrix
	covariance stateCov
	// Bounding box of the tracked object
	rect Rect
	// Current state of the track
	state TrackState
	// Whether the track is activated
	activated bool
	// Detection score
	score float32
	// Unique ID for the track
	trackID int
	// Current frame ID
	frameID int
	// Frame ID when the track started
	startFrameID int
	// Length of the tracklet
	trackletLen int
	// Unique ID of the detection the track was last updated from
	detectionID int64
	// label is the object class from detection
	label int
}

// NewTrack creates a new Track from a detection
func NewTrack(rect Rect, score float32, detectionID int64, label int) *Track {
	return &Track{
		kf:          newKalmanFilter(1.0/20, 1.0/160),
		mean:        make(stateMean, 8),
		covariance:  stateCov{mat.NewDense(8, 8, nil)},
		rect:        rect,
		state:       New,
		score:       score,
		detectionID: detectionID,
		label:       label,
	}
}

// Rect returns the bounding box of the tracked object
func (t *Track) Rect() Rect {
	return t.rect
}

// State returns the current state of the track
func (t *Track) State() TrackState {
	return t.state
}

// IsActivated returns whether the track is activated
func (t *Track) IsActivated() bool {
	return t.activated
}

// Score returns the detection score
func (t *Track) Score() float32 {
	return t.score
}

// TrackID returns the unique ID for the track
func (t *Track) TrackID() int {
	return t.trackID
}

// FrameID returns the current frame ID
func (t *Track) FrameID() int {
	return t.frameID
}

// DetectionID returns the unique ID of the last associated detection
func (t *Track) DetectionID() int64 {
	return t.detectionID
}

// Label returns the object class from detection
func (t *Track) Label() int {
	return t.label
}

// StartFrameID returns the frame ID when the track started
func (t *Track) StartFrameID() int {
	return t.startFrameID
}

// TrackletLength returns the length of the tracklet
func (t *Track) TrackletLength() int {
	return t.trackletLen
}

// Activate initializes the track with the given frame ID and track ID
func (t *Track) Activate(frameID, trackID int) {

	t.kf.initiate(t.mean, &t.covariance, t.rect.Xyah())

	t.updateRect()

	t.state = Tracked

	if frameID == 1 {
		t.activated = true
	}

	t.trackID = trackID
	t.frameID = frameID
	t.startFrameID = frameID
	t.trackletLen = 0
}

// ReActivate reinitializes a lost track with a new detection
func (t *Track) ReActivate(det *Track, frameID, newTrackID int) {

	t.kf.update(t.mean, &t.covariance, det.Rect().Xyah())

	t.updateRect()

	t.state = Tracked
	t.activated = true
	t.score = det.Score()
	t.detectionID = det.DetectionID()

	if newTrackID >= 0 {
		t.trackID = newTrackID
	}

	t.frameID = frameID
	t.trackletLen = 0
}

// Predict advances the track state one frame using the motion model
func (t *Track) Predict() {

	if t.state != Tracked {
		t.mean[7] = 0
	}

	t.kf.predict(t.mean, &t.covariance)
}

// Update corrects the track with an associated detection
func (t *Track) Update(det *Track, frameID int) error {

	err := t.kf.update(t.mean, &t.covariance, det.Rect().Xyah())

	if err != nil {
		return fmt.Errorf("error updating track: %w", err)
	}

	t.updateRect()

	t.state = Tracked
	t.activated = true
	t.score = det.Score()
	t.detectionID = det.DetectionID()
	t.frameID = frameID
	t.trackletLen++

	return nil
}

// MarkAsLost marks the track as lost
func (t *Track) MarkAsLost() {
	t.state = Lost
}

// MarkAsRemoved marks the track as removed
func (t *Track) MarkAsRemoved() {
	t.state = Removed
}

// updateRect refreshes the bounding box from the state mean
func (t *Track) updateRect() {
	t.rect.W = t.mean[2] * t.mean[3]
	t.rect.H = t.mean[3]
	t.rect.X = t.mean[0] - t.rect.W/2
	t.rect.Y = t.mean[1] - t.rect.H/2
}
