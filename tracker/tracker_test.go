package tracker

import (
	"testing"
)

// frameObjects builds tracker input for two players moving right at a
// constant 5 pixels per frame
func frameObjects(frame int, includeSecond bool, firstProb float32) []Object {

	offset := float32(frame * 5)

	objs := []Object{
		NewObject(NewRect(100+offset, 100, 50, 100), 2, firstProb, int64(frame*10+1)),
	}

	if includeSecond {
		objs = append(objs,
			NewObject(NewRect(400+offset, 120, 50, 100), 2, 0.85, int64(frame*10+2)))
	}

	return objs
}

// TestTrackerAssignsStableIDs checks that two objects moving at constant
// velocity keep their track IDs across frames
func TestTrackerAssignsStableIDs(t *testing.T) {

	tk := NewDefaultTracker(30)

	var firstID, secondID int

	for frame := 0; frame < 5; frame++ {

		tracks, err := tk.Update(frameObjects(frame, true, 0.9))

		if err != nil {
			t.Fatalf("tracker update failed on frame %d: %v", frame, err)
		}

		if len(tracks) != 2 {
			t.Fatalf("frame %d: expected 2 tracks, got %d", frame, len(tracks))
		}

		if frame == 0 {
			firstID = tracks[0].TrackID()
			secondID = tracks[1].TrackID()

			if firstID == secondID {
				t.Fatalf("expected distinct track IDs, both are %d", firstID)
			}
			continue
		}

		ids := map[int]bool{}
		for _, track := range tracks {
			ids[track.TrackID()] = true
		}

		if !ids[firstID] || !ids[secondID] {
			t.Errorf("frame %d: track IDs changed, got %v", frame, ids)
		}
	}
}

// TestTrackerLowScoreRescue checks a temporarily low confidence detection
// keeps its existing track via the second association pass
func TestTrackerLowScoreRescue(t *testing.T) {

	tk := NewDefaultTracker(30)

	// establish both tracks
	for frame := 0; frame < 3; frame++ {
		if _, err := tk.Update(frameObjects(frame, true, 0.9)); err != nil {
			t.Fatalf("tracker update failed: %v", err)
		}
	}

	// first object drops below the track threshold but still overlaps
	tracks, err := tk.Update(frameObjects(3, true, 0.3))

	if err != nil {
		t.Fatalf("tracker update failed: %v", err)
	}

	if len(tracks) != 2 {
		t.Fatalf("expected low score detection to be rescued, got %d tracks",
			len(tracks))
	}
}

// TestTrackerLostTrack checks a track disappearing from detections drops
// out of the activated output
func TestTrackerLostTrack(t *testing.T) {

	tk := NewDefaultTracker(30)

	for frame := 0; frame < 3; frame++ {
		if _, err := tk.Update(frameObjects(frame, true, 0.9)); err != nil {
			t.Fatalf("tracker update failed: %v", err)
		}
	}

	// second object leaves the scene
	tracks, err := tk.Update(frameObjects(3, false, 0.9))

	if err != nil {
		t.Fatalf("tracker update failed: %v", err)
	}

	if len(tracks) != 1 {
		t.Fatalf("expected 1 remaining track, got %d", len(tracks))
	}
}

// TestTrackerReset checks state and ID counters restart after a reset
func TestTrackerReset(t *testing.T) {

	tk := NewDefaultTracker(30)

	if _, err := tk.Update(frameObjects(0, true, 0.9)); err != nil {
		t.Fatalf("tracker update failed: %v", err)
	}

	tk.Reset()

	tracks, err := tk.Update(frameObjects(0, true, 0.9))

	if err != nil {
		t.Fatalf("tracker update failed after reset: %v", err)
	}

	for _, track := range tracks {
		if track.TrackID() > 2 {
			t.Errorf("expected track IDs to restart from 1, got %d", track.TrackID())
		}
	}
}

// TestTrailHistory checks trail length stays bounded and points follow the
// track center
func TestTrailHistory(t *testing.T) {

	tk := NewDefaultTracker(30)
	trail := NewTrail(3)

	for frame := 0; frame < 6; frame++ {

		tracks, err := tk.Update(frameObjects(frame, false, 0.9))

		if err != nil {
			t.Fatalf("tracker update failed: %v", err)
		}

		for _, track := range tracks {
			trail.Add(track)
		}
	}

	tracks, _ := tk.Update(frameObjects(6, false, 0.9))

	if len(tracks) != 1 {
		t.Fatalf("expected 1 track, got %d", len(tracks))
	}

	points := trail.GetPoints(tracks[0].TrackID())

	if len(points) != 3 {
		t.Fatalf("expected trail capped at 3 points, got %d", len(points))
	}

	// trail points advance with the object
	if points[2].X <= points[0].X {
		t.Errorf("expected trail moving right, got %v", points)
	}
}
