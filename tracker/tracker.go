package tracker

import (
	"fmt"
	"math"
)

// Default tracker thresholds
const (
	// DefaultTrackThresh splits detections into high and low score groups
	DefaultTrackThresh = 0.5
	// DefaultHighThresh is the minimum score for starting a new track
	DefaultHighThresh = 0.6
	// DefaultMatchThresh is the IoU matching threshold of the first
	// association pass
	DefaultMatchThresh = 0.8
	// DefaultTrackBuffer is the number of frames a lost track is kept
	// before removal at 30 FPS
	DefaultTrackBuffer = 30
)

// Tracker associates object detections across video frames using the BYTE
// association strategy, matching high score detections first and rescuing
// low score detections against remaining tracks
type Tracker struct {
	// Threshold splitting detections into high/low score groups
	trackThresh float32
	// Minimum score for activating a brand new track
	highThresh float32
	// Matching threshold for the first association pass
	matchThresh float32
	// Maximum number of frames an object can be lost before removal
	maxTimeLost int
	// Current frame ID
	frameID int
	// Counter for assigning unique track IDs
	trackIDCount int
	// Currently tracked objects
	trackedTracks []*Track
	// Lost objects
	lostTracks []*Track
	// Removed objects
	removedTracks []*Track
}

// NewTracker initializes and returns a new Tracker.  The frame rate and
// track buffer control how long lost tracks are retained.
func NewTracker(frameRate, trackBuffer int, trackThresh, highThresh,
	matchThresh float32) *Tracker {

	return &Tracker{
		trackThresh: trackThresh,
		highThresh:  highThresh,
		matchThresh: matchThresh,
		maxTimeLost: int(float32(frameRate) / 30.0 * float32(trackBuffer)),
	}
}

// NewDefaultTracker returns a Tracker using the default thresholds for the
// given video frame rate
func NewDefaultTracker(frameRate int) *Tracker {
	return NewTracker(frameRate, DefaultTrackBuffer, DefaultTrackThresh,
		DefaultHighThresh, DefaultMatchThresh)
}

// Reset clears all track state and restarts frame and ID counters
func (tk *Tracker) Reset() {
	tk.frameID = 0
	tk.trackIDCount = 0
	tk.trackedTracks = make([]*Track, 0)
	tk.lostTracks = make([]*Track, 0)
	tk.removedTracks = make([]*Track, 0)
}

// Update runs one association step over the detections of the next frame
// and returns the activated tracks
func (tk *Tracker) Update(objects []Object) ([]*Track, error) {

	// Step 1: split detections into high and low score groups
	tk.frameID++

	var dets, detsLow []*Track

	for _, object := range objects {

		track := NewTrack(object.Rect, object.Prob, object.ID, object.Label)

		if object.Prob >= tk.trackThresh {
			dets = append(dets, track)
		} else {
			detsLow = append(detsLow, track)
		}
	}

	var activeTracks, unconfirmed, trackPool []*Track

	for _, tracked := range tk.trackedTracks {
		if !tracked.IsActivated() {
			unconfirmed = append(unconfirmed, tracked)
		} else {
			activeTracks = append(activeTracks, tracked)
		}
	}

	trackPool = joinTracks(activeTracks, tk.lostTracks)

	// predict current position of all pooled tracks
	for _, track := range trackPool {
		track.Predict()
	}

	// Step 2: first association using IoU of high score detections
	var currentTracked, remainTracked, remainDets, refound []*Track

	matches, unmatchedTracks, unmatchedDets, err := tk.linearAssignment(
		tk.iouDistance(trackPool, dets),
		len(trackPool), len(dets), tk.matchThresh,
	)

	if err != nil {
		return nil, fmt.Errorf("first association failed: %w", err)
	}

	for _, match := range matches {

		track := trackPool[match[0]]
		det := dets[match[1]]

		if track.State() == Tracked {
			err := track.Update(det, tk.frameID)
			if err != nil {
				return nil, fmt.Errorf("error updating track in first pass: %w", err)
			}
			currentTracked = append(currentTracked, track)
		} else {
			track.ReActivate(det, tk.frameID, -1)
			refound = append(refound, track)
		}
	}

	for _, idx := range unmatchedDets {
		remainDets = append(remainDets, dets[idx])
	}

	for _, idx := range unmatchedTracks {
		if trackPool[idx].State() == Tracked {
			remainTracked = append(remainTracked, trackPool[idx])
		}
	}

	// Step 3: second association rescuing low score detections
	var currentLost []*Track

	matches, unmatchedTracks, unmatchedDets, err = tk.linearAssignment(
		tk.iouDistance(remainTracked, detsLow),
		len(remainTracked), len(detsLow), 0.5,
	)

	if err != nil {
		return nil, fmt.Errorf("second association failed: %w", err)
	}

	for _, match := range matches {
		track := remainTracked[match[0]]
		det := detsLow[match[1]]
		if track.State() == Tracked {
			err := track.Update(det, tk.frameID)
			if err != nil {
				return nil, fmt.Errorf("error updating track in second pass: %w", err)
			}
			currentTracked = append(currentTracked, track)
		} else {
			track.ReActivate(det, tk.frameID, -1)
			refound = append(refound, track)
		}
	}

	for _, idx := range unmatchedTracks {
		track := remainTracked[idx]
		if track.State() != Lost {
			track.MarkAsLost()
			currentLost = append(currentLost, track)
		}
	}

	// Step 4: deal with unconfirmed tracks and start new ones
	var currentRemoved []*Track

	matches, unmatchedUnconfirmed, unmatchedDets, err := tk.linearAssignment(
		tk.iouDistance(unconfirmed, remainDets),
		len(unconfirmed), len(remainDets), 0.7,
	)

	if err != nil {
		return nil, fmt.Errorf("unconfirmed association failed: %w", err)
	}

	for _, match := range matches {
		err := unconfirmed[match[0]].Update(remainDets[match[1]], tk.frameID)
		if err != nil {
			return nil, fmt.Errorf("error updating unconfirmed track: %w", err)
		}
		currentTracked = append(currentTracked, unconfirmed[match[0]])
	}

	for _, idx := range unmatchedUnconfirmed {
		track := unconfirmed[idx]
		track.MarkAsRemoved()
		currentRemoved = append(currentRemoved, track)
	}

	for _, idx := range unmatchedDets {
		track := remainDets[idx]
		if track.Score() < tk.highThresh {
			continue
		}
		tk.trackIDCount++
		track.Activate(tk.frameID, tk.trackIDCount)
		currentTracked = append(currentTracked, track)
	}

	// Step 5: age out lost tracks and update state lists
	for _, lost := range tk.lostTracks {
		if tk.frameID-lost.FrameID() > tk.maxTimeLost {
			lost.MarkAsRemoved()
			currentRemoved = append(currentRemoved, lost)
		}
	}

	tk.trackedTracks = joinTracks(currentTracked, refound)
	tk.lostTracks = subTracks(
		joinTracks(subTracks(tk.lostTracks, tk.trackedTracks), currentLost),
		tk.removedTracks)
	tk.removedTracks = joinTracks(tk.removedTracks, currentRemoved)

	var trackedOut, lostOut []*Track
	tk.removeDuplicates(tk.trackedTracks, tk.lostTracks, &trackedOut, &lostOut)
	tk.trackedTracks = trackedOut
	tk.lostTracks = lostOut

	var output []*Track
	for _, track := range tk.trackedTracks {
		if track.IsActivated() {
			output = append(output, track)
		}
	}

	return output, nil
}

// joinTracks combines two lists of tracks, avoiding duplicate track IDs
func joinTracks(aList, bList []*Track) []*Track {

	exists := make(map[int]bool)
	var res []*Track

	for _, track := range aList {
		exists[track.TrackID()] = true
		res = append(res, track)
	}

	for _, track := range bList {
		tid := track.TrackID()

		if !exists[tid] {
			exists[tid] = true
			res = append(res, track)
		}
	}

	return res
}

// subTracks subtracts bList from aList and returns the result
func subTracks(aList, bList []*Track) []*Track {

	tracks := make(map[int]*Track)

	for _, track := range aList {
		tracks[track.TrackID()] = track
	}

	for _, track := range bList {
		delete(tracks, track.TrackID())
	}

	var res []*Track

	for _, track := range tracks {
		res = append(res, track)
	}

	return res
}

// removeDuplicates drops tracks appearing in both lists, keeping whichever
// has tracked the longest
func (tk *Tracker) removeDuplicates(aTracks, bTracks []*Track,
	aRes, bRes *[]*Track) {

	dists := tk.iouDistance(aTracks, bTracks)

	overlapping := [][2]int{}

	for i := range dists {
		for j := range dists[i] {
			if dists[i][j] < 0.15 {
				overlapping = append(overlapping, [2]int{i, j})
			}
		}
	}

	aOverlapping := make([]bool, len(aTracks))
	bOverlapping := make([]bool, len(bTracks))

	for _, combo := range overlapping {
		timep := aTracks[combo[0]].FrameID() - aTracks[combo[0]].StartFrameID()
		timeq := bTracks[combo[1]].FrameID() - bTracks[combo[1]].StartFrameID()
		if timep > timeq {
			bOverlapping[combo[1]] = true
		} else {
			aOverlapping[combo[0]] = true
		}
	}

	for i, overlap := range aOverlapping {
		if !overlap {
			*aRes = append(*aRes, aTracks[i])
		}
	}

	for i, overlap := range bOverlapping {
		if !overlap {
			*bRes = append(*bRes, bTracks[i])
		}
	}
}

// linearAssignment matches tracks to detections by solving the LAP over the
// cost matrix, returning matched index pairs and the unmatched leftovers
func (tk *Tracker) linearAssignment(costMatrix [][]float32, nRows, nCols int,
	thresh float32) (matches [][2]int, unmatchedTracks,
	unmatchedDets []int, err error) {

	if len(costMatrix) == 0 {
		for i := 0; i < nRows; i++ {
			unmatchedTracks = append(unmatchedTracks, i)
		}
		for i := 0; i < nCols; i++ {
			unmatchedDets = append(unmatchedDets, i)
		}
		return
	}

	rowSol, colSol, err := tk.execLAP(costMatrix, thresh)

	if err != nil {
		return
	}

	for i, sol := range rowSol {
		if sol >= 0 {
			matches = append(matches, [2]int{i, sol})
		} else {
			unmatchedTracks = append(unmatchedTracks, i)
		}
	}

	for i, sol := range colSol {
		if sol < 0 {
			unmatchedDets = append(unmatchedDets, i)
		}
	}

	return
}

// calcIous calculates the IoU between two sets of rectangles
func (tk *Tracker) calcIous(aRects, bRects []Rect) [][]float32 {

	var ious [][]float32
	if len(aRects)*len(bRects) == 0 {
		return ious
	}

	ious = make([][]float32, len(aRects))
	for i := range ious {
		ious[i] = make([]float32, len(bRects))
	}

	for bi := range bRects {
		for ai := range aRects {
			ious[ai][bi] = bRects[bi].IoU(aRects[ai])
		}
	}

	return ious
}

// iouDistance builds the cost matrix (1 - IoU) between two sets of tracks
func (tk *Tracker) iouDistance(aTracks, bTracks []*Track) [][]float32 {

	var aRects, bRects []Rect

	for _, track := range aTracks {
		aRects = append(aRects, track.Rect())
	}

	for _, track := range bTracks {
		bRects = append(bRects, track.Rect())
	}

	ious := tk.calcIous(aRects, bRects)

	var costMatrix [][]float32

	for _, iouRow := range ious {
		var row []float32

		for _, iouValue := range iouRow {
			row = append(row, 1-iouValue)
		}

		costMatrix = append(costMatrix, row)
	}

	return costMatrix
}

// execLAP extends the cost matrix to a square padded with the cost limit
// and solves the assignment problem
func (tk *Tracker) execLAP(cost [][]float32, costLimit float32) (rowSol,
	colSol []int, err error) {

	nRows := len(cost)
	nCols := len(cost[0])
	rowSol = make([]int, nRows)
	colSol = make([]int, nCols)

	// build the extended square matrix
	n := nRows + nCols
	extended := make([][]float64, n)

	for i := range extended {
		extended[i] = make([]float64, n)
	}

	if costLimit < float32(math.MaxFloat32) {
		for i := range extended {
			for j := range extended[i] {
				extended[i][j] = float64(costLimit) / 2.0
			}
		}
	} else {
		costMax := float32(-1)
		for i := range cost {
			for j := range cost[i] {
				if cost[i][j] > costMax {
					costMax = cost[i][j]
				}
			}
		}
		for i := range extended {
			for j := range extended[i] {
				extended[i][j] = float64(costMax) + 1
			}
		}
	}

	for i := nRows; i < n; i++ {
		for j := nCols; j < n; j++ {
			extended[i][j] = 0
		}
	}

	for i := 0; i < nRows; i++ {
		for j := 0; j < nCols; j++ {
			extended[i][j] = float64(cost[i][j])
		}
	}

	xSol := make([]int, n)
	ySol := make([]int, n)

	ret, err := solveLAP(n, extended, xSol, ySol)

	if ret != 0 || err != nil {
		return nil, nil, fmt.Errorf("invalid LAP solution: %w", err)
	}

	// map the extended solution back to the original matrix size
	for i := 0; i < n; i++ {
		if xSol[i] >= nCols {
			xSol[i] = -1
		}
		if ySol[i] >= nRows {
			ySol[i] = -1
		}
	}

	for i := 0; i < nRows; i++ {
		rowSol[i] = xSol[i]
	}

	for i := 0; i < nCols; i++ {
		colSol[i] = ySol[i]
	}

	return rowSol, colSol, nil
}
