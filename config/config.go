// Package config loads optional settings from a soccer-ai.yaml file
// in the working directory.  Values from the file become the defaults
// for the command line flags of each binary, so flags always win.
package config

import (
	"errors"

	"github.com/spf13/viper"

	"github.com/rafaelfrans/soccer-ai/dataset"
	"github.com/rafaelfrans/soccer-ai/detect"
	"github.com/rafaelfrans/soccer-ai/render"
	"github.com/rafaelfrans/soccer-ai/train"
)

// ConfigName is the settings file name looked up in the working
// directory, without extension
const ConfigName = "soccer-ai"

// Load reads the optional settings file and returns a viper instance
// seeded with the pipeline defaults.  A missing file is not an error.
func Load() (*viper.Viper, error) {

	v := viper.New()

	v.SetConfigName(ConfigName)
	v.SetConfigType("yaml")
	v.AddConfigPath(".")

	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError

		if !errors.As(err, &notFound) {
			return nil, err
		}
	}

	return v, nil
}

func setDefaults(v *viper.Viper) {

	v.SetDefault("detect.conf-threshold", detect.DefaultConfThreshold)
	v.SetDefault("detect.nms-threshold", detect.DefaultNMSThreshold)
	v.SetDefault("detect.input-size", detect.DefaultInputSize)

	v.SetDefault("render.ellipse-colors", []string{
		render.DefaultEllipseHex[0],
		render.DefaultEllipseHex[1],
		render.DefaultEllipseHex[2],
	})
	v.SetDefault("render.triangle-color", render.DefaultTriangleHex)

	v.SetDefault("train.model", train.DefaultModel)
	v.SetDefault("train.batch", train.DefaultBatchSize)
	v.SetDefault("train.epochs", train.DefaultEpochs)
	v.SetDefault("train.imgsz", train.DefaultImageSize)
	v.SetDefault("train.patience", train.DefaultPatience)
	v.SetDefault("train.runs-dir", train.DefaultRunsDir)
	v.SetDefault("train.workspace", train.DefaultWorkspace)
	v.SetDefault("train.project", train.DefaultProject)
	v.SetDefault("train.version", train.DefaultVersion)

	v.SetDefault("merge.train-split", dataset.DefaultTrainSplit)
	v.SetDefault("merge.val-split", dataset.DefaultValSplit)
	v.SetDefault("merge.test-split", dataset.DefaultTestSplit)
	v.SetDefault("merge.max-ball-ratio", dataset.DefaultMaxBallRatio)
	v.SetDefault("merge.seed", dataset.DefaultSeed)
}
