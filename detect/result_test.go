package detect

import (
	"testing"
)

func TestFilterClass(t *testing.T) {

	results := []Result{
		{Class: ClassBall, Probability: 0.9},
		{Class: ClassPlayer, Probability: 0.8},
		{Class: ClassBall, Probability: 0.4},
		{Class: ClassReferee, Probability: 0.7},
	}

	balls := FilterClass(results, ClassBall)

	if len(balls) != 2 {
		t.Fatalf("expected 2 ball results, got %d", len(balls))
	}

	for _, res := range balls {
		if res.Class != ClassBall {
			t.Errorf("expected ball class, got %d", res.Class)
		}
	}

	others := ExcludeClass(results, ClassBall)

	if len(others) != 2 {
		t.Fatalf("expected 2 non-ball results, got %d", len(others))
	}

	for _, res := range others {
		if res.Class == ClassBall {
			t.Errorf("ball class should have been excluded")
		}
	}
}

func TestPadBoxes(t *testing.T) {

	results := []Result{
		{Class: ClassBall, Box: BoxRect{Left: 5, Top: 100, Right: 30, Bottom: 120}},
	}

	padded := PadBoxes(results, 10, 1920, 1080)

	box := padded[0].Box

	// left pad clamps at the image edge
	if box.Left != 0 {
		t.Errorf("expected left 0, got %d", box.Left)
	}

	if box.Top != 90 || box.Right != 40 || box.Bottom != 130 {
		t.Errorf("unexpected padded box %+v", box)
	}

	// source results are left untouched
	if results[0].Box.Left != 5 {
		t.Errorf("source results were mutated")
	}
}

func TestAgnosticNMS(t *testing.T) {

	// two heavily overlapping boxes of different classes and one distinct box
	results := []Result{
		{Class: ClassPlayer, Probability: 0.9,
			Box: BoxRect{Left: 100, Top: 100, Right: 200, Bottom: 300}},
		{Class: ClassGoalkeeper, Probability: 0.6,
			Box: BoxRect{Left: 105, Top: 102, Right: 205, Bottom: 302}},
		{Class: ClassPlayer, Probability: 0.8,
			Box: BoxRect{Left: 600, Top: 100, Right: 700, Bottom: 300}},
	}

	kept := AgnosticNMS(results, 0.5)

	if len(kept) != 2 {
		t.Fatalf("expected 2 results after NMS, got %d", len(kept))
	}

	// the highest scored of the overlapping pair survives
	if kept[0].Probability != 0.9 {
		t.Errorf("expected highest scored box kept first, got %f", kept[0].Probability)
	}

	for _, res := range kept {
		if res.Class == ClassGoalkeeper {
			t.Errorf("overlapping lower scored box should have been suppressed")
		}
	}
}

func TestIDGenerator(t *testing.T) {

	gen := NewIDGenerator()

	if id := gen.GetNext(); id != 1 {
		t.Errorf("expected first id 1, got %d", id)
	}

	if id := gen.GetNext(); id != 2 {
		t.Errorf("expected second id 2, got %d", id)
	}
}
