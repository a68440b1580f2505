// soccer-merge combines a fully annotated soccer dataset with a ball
// only dataset into a single YOLO dataset ready for training.
package main

import (
	"flag"
	"log"

	"go.uber.org/zap"

	"github.com/rafaelfrans/soccer-ai/config"
	"github.com/rafaelfrans/soccer-ai/dataset"
	"github.com/rafaelfrans/soccer-ai/logging"
)

func main() {

	cfg, err := config.Load()

	if err != nil {
		log.Fatalf("Error loading configuration: %v", err)
	}

	primaryDir := flag.String("primary", "", "Root directory of the primary dataset with train/val/test splits")
	ballOnlyDir := flag.String("ball-only", "", "Root directory of the ball only dataset")
	outputDir := flag.String("output", "", "Root directory of the merged dataset to create")
	ballClassID := flag.Int("ball-class-id", 0, "Class index ball annotations are remapped to")
	trainSplit := flag.Float64("train-split", cfg.GetFloat64("merge.train-split"), "Fraction of ball only images added to the train split")
	valSplit := flag.Float64("val-split", cfg.GetFloat64("merge.val-split"), "Fraction of ball only images added to the val split")
	testSplit := flag.Float64("test-split", cfg.GetFloat64("merge.test-split"), "Fraction of ball only images added to the test split")
	maxBallRatio := flag.Float64("max-ball-ratio", cfg.GetFloat64("merge.max-ball-ratio"), "Cap on ball only images as a fraction of primary images")
	seed := flag.Int64("seed", cfg.GetInt64("merge.seed"), "Random seed for sampling and shuffling")
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

	if *primaryDir == "" || *ballOnlyDir == "" || *outputDir == "" {
		logger.Fatal("the -primary, -ball-only and -output flags are required")
	}

	mergeCfg := dataset.MergeConfig{
		PrimaryDir:   *primaryDir,
		BallOnlyDir:  *ballOnlyDir,
		OutputDir:    *outputDir,
		BallClassID:  *ballClassID,
		TrainSplit:   *trainSplit,
		ValSplit:     *valSplit,
		TestSplit:    *testSplit,
		MaxBallRatio: *maxBallRatio,
		Seed:         *seed,
	}

	stats, err := dataset.Merge(mergeCfg)

	if err != nil {
		logger.Fatal("merge failed", zap.Error(err))
	}

	logger.Info("merge complete",
		zap.Int("primary_images", stats.PrimaryImages),
		zap.Int("ball_only_images", stats.BallOnlyImages),
		zap.Int("train", stats.Train),
		zap.Int("val", stats.Val),
		zap.Int("test", stats.Test),
		zap.String("output", *outputDir))
}
