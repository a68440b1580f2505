package train

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"go.uber.org/zap"

	"github.com/rafaelfrans/soccer-ai/dataset"
	"github.com/rafaelfrans/soccer-ai/logging"
	"github.com/rafaelfrans/soccer-ai/roboflow"
)

// default Roboflow dataset coordinates for the soccer player
// detection export
const (
	DefaultWorkspace = "roboflow-jvuqo"
	DefaultProject   = "football-players-detection-3zvbc"
	DefaultVersion   = 12
)

// PrepareConfig defines where the training dataset comes from
type PrepareConfig struct {
	// APIKey authenticates against the Roboflow API, unused when
	// SkipDownload is set
	APIKey string
	// Workspace, Project and Version identify the dataset export
	Workspace string
	Project   string
	Version   int
	// DatasetDir is where the dataset lives or gets downloaded to
	DatasetDir string
	// SkipDownload reuses an existing dataset in DatasetDir instead of
	// downloading
	SkipDownload bool
}

// DefaultPrepareConfig returns a PrepareConfig pointing at the
// standard soccer player detection export
func DefaultPrepareConfig() PrepareConfig {
	return PrepareConfig{
		Workspace: DefaultWorkspace,
		Project:   DefaultProject,
		Version:   DefaultVersion,
	}
}

// Prepare downloads the dataset if needed, rewrites its data.yaml to
// the compact detection classes, and remaps the label files of every
// split.  It returns the path of the dataset configuration file to
// train on.
func Prepare(ctx context.Context, cfg PrepareConfig) (string, error) {

	log := logging.Get()

	if !cfg.SkipDownload {
		if cfg.APIKey == "" {
			return "", fmt.Errorf("roboflow api key is required to download the dataset")
		}

		log.Info("downloading dataset",
			zap.String("workspace", cfg.Workspace),
			zap.String("project", cfg.Project),
			zap.Int("version", cfg.Version))

		client := roboflow.NewClient(cfg.APIKey)

		err := client.Download(ctx, cfg.Workspace, cfg.Project, cfg.Version,
			"", cfg.DatasetDir)

		if err != nil {
			return "", err
		}
	}

	dataFile := filepath.Join(cfg.DatasetDir, "data.yaml")

	if _, err := os.Stat(dataFile); err != nil {
		return "", fmt.Errorf("dataset configuration not found at %s: %w",
			dataFile, err)
	}

	if err := dataset.FixDataYAML(dataFile); err != nil {
		return "", err
	}

	for _, split := range []string{"train", "valid", "val", "test"} {
		labelDir := filepath.Join(cfg.DatasetDir, split, "labels")

		if info, err := os.Stat(labelDir); err != nil || !info.IsDir() {
			continue
		}

		res, err := dataset.RemapLabels(labelDir, dataset.DetectionRemap)

		if err != nil {
			return "", err
		}

		log.Info("remapped split labels",
			zap.String("split", split),
			zap.Int("remapped", res.Remapped),
			zap.Int("removed", res.Removed))
	}

	return dataFile, nil
}
