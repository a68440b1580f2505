package dataset

import (
	"fmt"
	"os"
	"path/filepath"
	"testing"
)

// makePrimary builds a primary dataset with the given number of
// annotated images per split
func makePrimary(t *testing.T, root string, perSplit int) {

	t.Helper()

	for _, split := range []string{"train", "val", "test"} {
		labels := make(map[string]string)

		for i := 0; i < perSplit; i++ {
			labels[fmt.Sprintf("%s_%d", split, i)] = "2 0.5 0.5 0.1 0.2\n"
		}

		writeSplit(t, filepath.Join(root, split), labels)
	}
}

// makeBallOnly builds a flat ball only dataset with n annotated images
func makeBallOnly(t *testing.T, root string, n int) {

	t.Helper()

	labels := make(map[string]string)

	for i := 0; i < n; i++ {
		labels[fmt.Sprintf("ball_%d", i)] = "0 0.5 0.5 0.02 0.03\n"
	}

	writeSplit(t, root, labels)
}

func countImages(t *testing.T, dir string) int {

	t.Helper()

	entries, err := os.ReadDir(dir)

	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	count := 0

	for _, entry := range entries {
		if isImageFile(entry.Name()) {
			count++
		}
	}

	return count
}

func TestMerge(t *testing.T) {

	root := t.TempDir()

	primary := filepath.Join(root, "primary")
	ballOnly := filepath.Join(root, "ball")
	output := filepath.Join(root, "merged")

	makePrimary(t, primary, 10)
	makeBallOnly(t, ballOnly, 6)

	cfg := DefaultMergeConfig()
	cfg.PrimaryDir = primary
	cfg.BallOnlyDir = ballOnly
	cfg.OutputDir = output

	stats, err := Merge(cfg)

	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if stats.PrimaryImages != 30 {
		t.Errorf("expected 30 primary images, got %d", stats.PrimaryImages)
	}

	if stats.BallOnlyImages != 6 {
		t.Errorf("expected 6 ball only images, got %d", stats.BallOnlyImages)
	}

	// every ball only image landed in exactly one split
	if stats.Train+stats.Val+stats.Test != stats.BallOnlyImages {
		t.Errorf("split counts %d+%d+%d do not sum to %d",
			stats.Train, stats.Val, stats.Test, stats.BallOnlyImages)
	}

	total := 0

	for _, split := range []string{"train", "val", "test"} {
		total += countImages(t, filepath.Join(output, split, "images"))
	}

	if total != stats.PrimaryImages+stats.BallOnlyImages {
		t.Errorf("expected %d output images, got %d",
			stats.PrimaryImages+stats.BallOnlyImages, total)
	}

	// primary images keep their split membership
	for _, split := range []string{"train", "val", "test"} {
		img := filepath.Join(output, split, "images", split+"_0.jpg")

		if _, err := os.Stat(img); err != nil {
			t.Errorf("expected primary image in %s split: %v", split, err)
		}

		label := filepath.Join(output, split, "labels", split+"_0.txt")

		anns, err := LoadLabelFile(label)

		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		if len(anns) != 1 || anns[0].Class != 2 {
			t.Errorf("primary annotations altered in %s split: %+v", split, anns)
		}
	}

	d, err := LoadDataYAML(filepath.Join(output, "data.yaml"))

	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if d.NC != 4 || len(d.Names) != 4 {
		t.Errorf("unexpected data.yaml classes: nc=%d names=%v", d.NC, d.Names)
	}
}

func TestMergeCapsBallImages(t *testing.T) {

	root := t.TempDir()

	primary := filepath.Join(root, "primary")
	ballOnly := filepath.Join(root, "ball")

	makePrimary(t, primary, 10)
	makeBallOnly(t, ballOnly, 50)

	cfg := DefaultMergeConfig()
	cfg.PrimaryDir = primary
	cfg.BallOnlyDir = ballOnly
	cfg.OutputDir = filepath.Join(root, "merged")

	stats, err := Merge(cfg)

	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	// 30 primary images at ratio 0.3 caps ball images at 9
	if stats.BallOnlyImages != 9 {
		t.Errorf("expected 9 ball only images, got %d", stats.BallOnlyImages)
	}
}

func TestMergeRemapsBallAnnotations(t *testing.T) {

	root := t.TempDir()

	primary := filepath.Join(root, "primary")
	ballOnly := filepath.Join(root, "ball")
	output := filepath.Join(root, "merged")

	makePrimary(t, primary, 5)

	// ball only annotations may carry arbitrary source class indexes
	writeSplit(t, ballOnly, map[string]string{
		"ball_a": "3 0.5 0.5 0.02 0.03\n7 0.1 0.1 0.02 0.03\n",
	})

	cfg := DefaultMergeConfig()
	cfg.PrimaryDir = primary
	cfg.BallOnlyDir = ballOnly
	cfg.OutputDir = output

	if _, err := Merge(cfg); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	var found []Annotation

	for _, split := range []string{"train", "val", "test"} {
		label := filepath.Join(output, split, "labels", "ball_a.txt")

		if _, err := os.Stat(label); err != nil {
			continue
		}

		anns, err := LoadLabelFile(label)

		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		found = anns
	}

	if len(found) != 2 {
		t.Fatalf("expected 2 ball annotations, got %d", len(found))
	}

	for i, ann := range found {
		if ann.Class != 0 {
			t.Errorf("annotation %d: expected ball class 0, got %d", i, ann.Class)
		}
	}
}

func TestMergeRejectsInvalidSplits(t *testing.T) {

	cfg := DefaultMergeConfig()
	cfg.TrainSplit = 0.8
	cfg.ValSplit = 0.3
	cfg.TestSplit = 0.1

	if _, err := Merge(cfg); err == nil {
		t.Error("expected error for split ratios not summing to 1.0")
	}
}
