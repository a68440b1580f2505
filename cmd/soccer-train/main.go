// soccer-train downloads the soccer detection dataset, remaps its
// labels and runs a training job with the ultralytics yolo CLI.
package main

import (
	"context"
	"flag"
	"log"
	"os"
	"os/signal"
	"syscall"

	"go.uber.org/zap"

	"github.com/rafaelfrans/soccer-ai/config"
	"github.com/rafaelfrans/soccer-ai/logging"
	"github.com/rafaelfrans/soccer-ai/train"
)

func main() {

	cfg, err := config.Load()

	if err != nil {
		log.Fatalf("Error loading configuration: %v", err)
	}

	apiKey := flag.String("api-key", os.Getenv("ROBOFLOW_API_KEY"), "Roboflow API key, defaults to the ROBOFLOW_API_KEY environment variable")
	workspace := flag.String("workspace", cfg.GetString("train.workspace"), "Roboflow workspace of the dataset")
	project := flag.String("project", cfg.GetString("train.project"), "Roboflow project of the dataset")
	version := flag.Int("version", cfg.GetInt("train.version"), "Roboflow dataset version")
	datasetDir := flag.String("dataset-path", "dataset", "Directory the dataset lives in or is downloaded to")
	skipDownload := flag.Bool("skip-download", false, "Reuse an existing dataset instead of downloading")
	model := flag.String("model", cfg.GetString("train.model"), "Pretrained checkpoint to start training from")
	batch := flag.Int("batch", cfg.GetInt("train.batch"), "Training batch size")
	epochs := flag.Int("epochs", cfg.GetInt("train.epochs"), "Number of training epochs")
	imgSize := flag.Int("imgsz", cfg.GetInt("train.imgsz"), "Training image size")
	device := flag.String("device", "", "Compute device, empty lets the trainer decide")
	patience := flag.Int("patience", cfg.GetInt("train.patience"), "Early stopping patience in epochs")
	freeze := flag.Int("freeze", 0, "Number of backbone layers to freeze")
	lr0 := flag.Float64("lr0", 0, "Initial learning rate, zero keeps the trainer default")
	lrf := flag.Float64("lrf", 0, "Final learning rate, zero keeps the trainer default")
	runsDir := flag.String("runs-dir", cfg.GetString("train.runs-dir"), "Directory run outputs are written under")
	name := flag.String("name", "", "Run name, a generated id when empty")
	debug := flag.Bool("debug", false, "Enable verbose logging")

	flag.Parse()

	if *debug {
		err = logging.InitDevelopment()
	} else {
		err = logging.InitProduction()
	}

	if err != nil {
		log.Fatalf("Error initialising logger: %v", err)
	}

	defer logging.Sync()

	logger := logging.Get()

	ctx, stop := signal.NotifyContext(context.Background(),
		os.Interrupt, syscall.SIGTERM)
	defer stop()

	prepCfg := train.PrepareConfig{
		APIKey:       *apiKey,
		Workspace:    *workspace,
		Project:      *project,
		Version:      *version,
		DatasetDir:   *datasetDir,
		SkipDownload: *skipDownload,
	}

	dataFile, err := train.Prepare(ctx, prepCfg)

	if err != nil {
		logger.Fatal("dataset preparation failed", zap.Error(err))
	}

	opts := train.Options{
		Data:      dataFile,
		Model:     *model,
		BatchSize: *batch,
		Epochs:    *epochs,
		ImageSize: *imgSize,
		Patience:  *patience,
		Device:    *device,
		RunsDir:   *runsDir,
		Name:      *name,
		Freeze:    *freeze,
		LR0:       *lr0,
		LRF:       *lrf,
	}

	runDir, err := train.Run(ctx, opts)

	if err != nil {
		logger.Fatal("training failed", zap.Error(err))
	}

	logger.Info("trained model weights available",
		zap.String("dir", runDir))
}
