package dataset

import (
	"os"
	"path/filepath"
	"testing"
)

// writeSplit creates a labels/images split pair with the given label
// files and a matching jpg for each
func writeSplit(t *testing.T, root string, labels map[string]string) (string, string) {

	t.Helper()

	labelDir := filepath.Join(root, "labels")
	imageDir := filepath.Join(root, "images")

	for _, dir := range []string{labelDir, imageDir} {
		if err := os.MkdirAll(dir, 0755); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
	}

	for name, content := range labels {
		file := filepath.Join(labelDir, name+".txt")

		if err := os.WriteFile(file, []byte(content), 0644); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		img := filepath.Join(imageDir, name+".jpg")

		if err := os.WriteFile(img, []byte("jpg"), 0644); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
	}

	return labelDir, imageDir
}

func TestRemapLabels(t *testing.T) {

	root := t.TempDir()

	labelDir, imageDir := writeSplit(t, root, map[string]string{
		"frame1": "4 0.5 0.5 0.02 0.03\n11 0.1 0.2 0.05 0.1\n",
		"frame2": "3 0.5 0.5 0.1 0.1\n9 0.2 0.2 0.1 0.1\n",
		"frame3": "16 0.3 0.3 0.04 0.08\n",
	})

	res, err := RemapLabels(labelDir, DetectionRemap)

	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if res.Remapped != 2 {
		t.Errorf("expected 2 remapped files, got %d", res.Remapped)
	}

	if res.Removed != 1 {
		t.Errorf("expected 1 removed file, got %d", res.Removed)
	}

	anns, err := LoadLabelFile(filepath.Join(labelDir, "frame1.txt"))

	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(anns) != 2 {
		t.Fatalf("expected 2 annotations, got %d", len(anns))
	}

	if anns[0].Class != 0 || anns[1].Class != 2 {
		t.Errorf("unexpected remapped classes: %d, %d", anns[0].Class, anns[1].Class)
	}

	// frame2 had no mappable rows so the label and image must be gone
	if _, err := os.Stat(filepath.Join(labelDir, "frame2.txt")); !os.IsNotExist(err) {
		t.Error("expected frame2 label to be removed")
	}

	if _, err := os.Stat(filepath.Join(imageDir, "frame2.jpg")); !os.IsNotExist(err) {
		t.Error("expected frame2 image to be removed")
	}

	anns, err = LoadLabelFile(filepath.Join(labelDir, "frame3.txt"))

	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(anns) != 1 || anns[0].Class != 3 {
		t.Errorf("unexpected frame3 annotations: %+v", anns)
	}
}

func TestFixDataYAML(t *testing.T) {

	dir := t.TempDir()
	file := filepath.Join(dir, "data.yaml")

	content := "train: train/images\nval: valid/images\nnc: 22\nnames: ['a', 'b']\nroboflow:\n  project: test\n"

	if err := os.WriteFile(file, []byte(content), 0644); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if err := FixDataYAML(file); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	d, err := LoadDataYAML(file)

	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if d.NC != 4 {
		t.Errorf("expected nc 4, got %d", d.NC)
	}

	want := []string{"ball", "goalkeeper", "player", "referee"}

	if len(d.Names) != len(want) {
		t.Fatalf("expected %d names, got %d", len(want), len(d.Names))
	}

	for i, name := range want {
		if d.Names[i] != name {
			t.Errorf("name %d: expected %s, got %s", i, name, d.Names[i])
		}
	}

	// keys outside nc and names must survive the rewrite
	if d.Train != "train/images" {
		t.Errorf("expected train path to be preserved, got %s", d.Train)
	}
}
