package train

import (
	"strings"
	"testing"
)

func TestDefaultOptions(t *testing.T) {

	opts := DefaultOptions()

	if opts.Model != "yolov8x.pt" {
		t.Errorf("expected model yolov8x.pt, got %s", opts.Model)
	}

	if opts.BatchSize != 10 || opts.Epochs != 35 || opts.ImageSize != 640 ||
		opts.Patience != 5 {
		t.Errorf("unexpected default hyperparameters: %+v", opts)
	}
}

func TestBuildArgs(t *testing.T) {

	opts := DefaultOptions()
	opts.Data = "dataset/data.yaml"
	opts.Name = "run1"
	opts.Device = "0"

	args := opts.BuildArgs()

	want := []string{
		"detect",
		"train",
		"data=dataset/data.yaml",
		"model=yolov8x.pt",
		"batch=10",
		"epochs=35",
		"imgsz=640",
		"patience=5",
		"project=football-training",
		"name=run1",
		"plots=True",
		"device=0",
	}

	if len(args) != len(want) {
		t.Fatalf("expected %d args, got %d: %v", len(want), len(args), args)
	}

	for i, arg := range want {
		if args[i] != arg {
			t.Errorf("arg %d: expected %s, got %s", i, arg, args[i])
		}
	}
}

func TestBuildArgsFineTune(t *testing.T) {

	opts := DefaultOptions()
	opts.Data = "data.yaml"
	opts.Name = "finetune"
	opts.Freeze = 10
	opts.LR0 = 0.001
	opts.LRF = 0.01

	joined := strings.Join(opts.BuildArgs(), " ")

	for _, part := range []string{"freeze=10", "lr0=0.001", "lrf=0.01"} {
		if !strings.Contains(joined, part) {
			t.Errorf("expected %s in args: %s", part, joined)
		}
	}
}
