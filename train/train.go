package train

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/exec"
	"path/filepath"
	"strconv"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/rafaelfrans/soccer-ai/logging"
)

// yolo CLI invocation constants
const (
	TrainerCommand = "yolo"
	TrainerTask    = "detect"
	TrainerMode    = "train"
)

// default training hyperparameters
const (
	DefaultModel     = "yolov8x.pt"
	DefaultBatchSize = 10
	DefaultEpochs    = 35
	DefaultImageSize = 640
	DefaultPatience  = 5
	DefaultRunsDir   = "football-training"
)

// Options defines a training run
type Options struct {
	// Data is the dataset configuration file to train on
	Data string
	// Model is the pretrained checkpoint to start from
	Model string
	// BatchSize, Epochs, ImageSize and Patience are the standard
	// training hyperparameters
	BatchSize int
	Epochs    int
	ImageSize int
	Patience  int
	// Device selects the compute device, empty lets the trainer decide
	Device string
	// RunsDir is the directory run outputs get written under
	RunsDir string
	// Name labels the run, a generated id when empty
	Name string
	// Freeze is the number of backbone layers to freeze, zero leaves
	// all layers trainable
	Freeze int
	// LR0 and LRF set the initial and final learning rates, zero keeps
	// the trainer defaults
	LR0 float64
	LRF float64
	// Output receives the trainer console output, os.Stdout when nil
	Output io.Writer
}

// DefaultOptions returns training Options with the standard
// hyperparameters
func DefaultOptions() Options {
	return Options{
		Model:     DefaultModel,
		BatchSize: DefaultBatchSize,
		Epochs:    DefaultEpochs,
		ImageSize: DefaultImageSize,
		Patience:  DefaultPatience,
		RunsDir:   DefaultRunsDir,
	}
}

// BuildArgs builds the yolo CLI argument list for the run
func (o *Options) BuildArgs() []string {

	args := []string{
		TrainerTask,
		TrainerMode,
		"data=" + o.Data,
		"model=" + o.Model,
		"batch=" + strconv.Itoa(o.BatchSize),
		"epochs=" + strconv.Itoa(o.Epochs),
		"imgsz=" + strconv.Itoa(o.ImageSize),
		"patience=" + strconv.Itoa(o.Patience),
		"project=" + o.RunsDir,
		"name=" + o.Name,
		"plots=True",
	}

	if o.Device != "" {
		args = append(args, "device="+o.Device)
	}

	if o.Freeze > 0 {
		args = append(args, "freeze="+strconv.Itoa(o.Freeze))
	}

	if o.LR0 > 0 {
		args = append(args, "lr0="+strconv.FormatFloat(o.LR0, 'g', -1, 64))
	}

	if o.LRF > 0 {
		args = append(args, "lrf="+strconv.FormatFloat(o.LRF, 'g', -1, 64))
	}

	return args
}

// Run launches a training run with the yolo CLI and waits for it to
// finish, streaming trainer output as it goes.  It returns the run
// output directory.
func Run(ctx context.Context, opts Options) (string, error) {

	log := logging.Get()

	if opts.Data == "" {
		return "", fmt.Errorf("dataset configuration file is required")
	}

	if opts.Name == "" {
		opts.Name = uuid.NewString()
	}

	out := opts.Output

	if out == nil {
		out = os.Stdout
	}

	args := opts.BuildArgs()

	log.Info("starting training run",
		zap.String("name", opts.Name),
		zap.String("model", opts.Model),
		zap.Int("epochs", opts.Epochs))

	cmd := exec.CommandContext(ctx, TrainerCommand, args...)
	cmd.Stdout = out
	cmd.Stderr = out

	if err := cmd.Run(); err != nil {
		return "", fmt.Errorf("training run failed: %w", err)
	}

	runDir := filepath.Join(opts.RunsDir, opts.Name)

	log.Info("training run complete", zap.String("dir", runDir))

	return runDir, nil
}
