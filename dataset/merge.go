package dataset

import (
	"fmt"
	"io"
	"math"
	"math/rand"
	"os"
	"path/filepath"
	"strings"

	"github.com/rafaelfrans/soccer-ai/detect"
)

// default split ratios and sampling parameters used by Merge
const (
	DefaultTrainSplit   = 0.8
	DefaultValSplit     = 0.1
	DefaultTestSplit    = 0.1
	DefaultMaxBallRatio = 0.3
	DefaultSeed         = 42
)

var imageExts = []string{".jpg", ".jpeg", ".png"}

// MergeConfig defines how a primary detection dataset and a ball only
// dataset are combined into a single YOLO dataset
type MergeConfig struct {
	// PrimaryDir is the root of the dataset with full annotations split
	// into train/val/test subdirectories
	PrimaryDir string
	// BallOnlyDir is the root of the supplementary dataset whose
	// annotations all describe the ball
	BallOnlyDir string
	// OutputDir is the root of the merged dataset to create
	OutputDir string
	// BallClassID is the class index ball annotations are remapped to
	BallClassID int
	// TrainSplit, ValSplit and TestSplit are the ratios used to
	// distribute ball only images across splits, they must sum to 1.0
	TrainSplit float64
	ValSplit   float64
	TestSplit  float64
	// MaxBallRatio caps the number of ball only images at this fraction
	// of the primary image count
	MaxBallRatio float64
	// Seed drives the sampling and shuffling of ball only images
	Seed int64
}

// DefaultMergeConfig returns a MergeConfig with the standard split
// ratios and sampling settings
func DefaultMergeConfig() MergeConfig {
	return MergeConfig{
		BallClassID:  detect.ClassBall,
		TrainSplit:   DefaultTrainSplit,
		ValSplit:     DefaultValSplit,
		TestSplit:    DefaultTestSplit,
		MaxBallRatio: DefaultMaxBallRatio,
		Seed:         DefaultSeed,
	}
}

// MergeStats reports the composition of a merged dataset
type MergeStats struct {
	// PrimaryImages is the number of images copied from the primary
	// dataset across all splits
	PrimaryImages int
	// BallOnlyImages is the number of ball only images added after
	// capping and sampling
	BallOnlyImages int
	// Train, Val and Test are the ball only image counts added to each
	// split
	Train int
	Val   int
	Test  int
}

// ballImage is a ball only dataset image with its remapped annotations
type ballImage struct {
	imageFile string
	anns      []Annotation
}

// Merge combines the primary dataset and the ball only dataset into
// OutputDir.  Primary images keep their original split membership,
// ball only images are sampled, shuffled and distributed across splits
// by the configured ratios, and a data.yaml describing the result is
// written to the output root.
func Merge(cfg MergeConfig) (*MergeStats, error) {

	sum := cfg.TrainSplit + cfg.ValSplit + cfg.TestSplit

	if math.Abs(sum-1.0) > 0.01 {
		return nil, fmt.Errorf("split ratios must sum to 1.0, got %.3f", sum)
	}

	splits := []string{"train", "val", "test"}

	for _, split := range splits {
		for _, sub := range []string{"images", "labels"} {
			dir := filepath.Join(cfg.OutputDir, split, sub)

			if err := os.MkdirAll(dir, 0755); err != nil {
				return nil, fmt.Errorf("error creating output directory: %w", err)
			}
		}
	}

	stats := &MergeStats{}

	// copy the primary dataset keeping split membership
	for _, split := range splits {
		n, err := copyPrimarySplit(cfg.PrimaryDir, cfg.OutputDir, split)

		if err != nil {
			return nil, err
		}

		stats.PrimaryImages += n
	}

	ballImages, err := collectBallImages(cfg.BallOnlyDir, cfg.BallClassID)

	if err != nil {
		return nil, err
	}

	rng := rand.New(rand.NewSource(cfg.Seed))

	maxBall := int(float64(stats.PrimaryImages) * cfg.MaxBallRatio)

	if len(ballImages) > maxBall {
		rng.Shuffle(len(ballImages), func(i, j int) {
			ballImages[i], ballImages[j] = ballImages[j], ballImages[i]
		})

		ballImages = ballImages[:maxBall]
	}

	rng.Shuffle(len(ballImages), func(i, j int) {
		ballImages[i], ballImages[j] = ballImages[j], ballImages[i]
	})

	trainEnd := int(float64(len(ballImages)) * cfg.TrainSplit)
	valEnd := trainEnd + int(float64(len(ballImages))*cfg.ValSplit)

	for i, img := range ballImages {
		split := "test"

		switch {
		case i < trainEnd:
			split = "train"
			stats.Train++
		case i < valEnd:
			split = "val"
			stats.Val++
		default:
			stats.Test++
		}

		if err := writeBallImage(cfg.OutputDir, split, img); err != nil {
			return nil, err
		}
	}

	stats.BallOnlyImages = len(ballImages)

	outAbs, err := filepath.Abs(cfg.OutputDir)

	if err != nil {
		return nil, fmt.Errorf("error resolving output directory: %w", err)
	}

	d := &DataYAML{
		Path:  outAbs,
		Train: "train/images",
		Val:   "val/images",
		Test:  "test/images",
		NC:    len(detect.ClassNames),
		Names: append([]string{}, detect.ClassNames...),
	}

	if err := d.Save(filepath.Join(cfg.OutputDir, "data.yaml")); err != nil {
		return nil, err
	}

	return stats, nil
}

// copyPrimarySplit copies one split of the primary dataset into the
// output tree and returns the number of images copied
func copyPrimarySplit(primaryDir, outputDir, split string) (int, error) {

	srcImages := resolveSplitDir(primaryDir, split, "images")

	if srcImages == "" {
		return 0, nil
	}

	entries, err := os.ReadDir(srcImages)

	if err != nil {
		return 0, fmt.Errorf("error reading primary split: %w", err)
	}

	srcLabels := resolveSplitDir(primaryDir, split, "labels")
	count := 0

	for _, entry := range entries {
		if entry.IsDir() || !isImageFile(entry.Name()) {
			continue
		}

		src := filepath.Join(srcImages, entry.Name())
		dst := filepath.Join(outputDir, split, "images", entry.Name())

		if err := copyFile(src, dst); err != nil {
			return count, err
		}

		count++

		if srcLabels == "" {
			continue
		}

		stem := strings.TrimSuffix(entry.Name(), filepath.Ext(entry.Name()))
		labelSrc := filepath.Join(srcLabels, stem+".txt")

		if _, err := os.Stat(labelSrc); err != nil {
			continue
		}

		labelDst := filepath.Join(outputDir, split, "labels", stem+".txt")

		if err := copyFile(labelSrc, labelDst); err != nil {
			return count, err
		}
	}

	return count, nil
}

// resolveSplitDir returns the split subdirectory, accepting the
// "valid" naming used by some dataset exports for the val split
func resolveSplitDir(root, split, sub string) string {

	candidates := []string{split}

	if split == "val" {
		candidates = append(candidates, "valid")
	}

	for _, c := range candidates {
		dir := filepath.Join(root, c, sub)

		if info, err := os.Stat(dir); err == nil && info.IsDir() {
			return dir
		}
	}

	return ""
}

// collectBallImages finds annotated images in the ball only dataset
// and remaps every annotation row to the ball class.  Images without
// any annotation rows are skipped.
func collectBallImages(root string, ballClass int) ([]ballImage, error) {

	imagesDir, labelsDir := findBallDirs(root)

	if imagesDir == "" {
		return nil, fmt.Errorf("no images directory found under %s", root)
	}

	entries, err := os.ReadDir(imagesDir)

	if err != nil {
		return nil, fmt.Errorf("error reading ball dataset: %w", err)
	}

	var images []ballImage

	for _, entry := range entries {
		if entry.IsDir() || !isImageFile(entry.Name()) {
			continue
		}

		stem := strings.TrimSuffix(entry.Name(), filepath.Ext(entry.Name()))
		labelFile := filepath.Join(labelsDir, stem+".txt")

		if _, err := os.Stat(labelFile); err != nil {
			continue
		}

		anns, err := LoadLabelFile(labelFile)

		if err != nil {
			return nil, err
		}

		if len(anns) == 0 {
			continue
		}

		for i := range anns {
			anns[i].Class = ballClass
		}

		images = append(images, ballImage{
			imageFile: filepath.Join(imagesDir, entry.Name()),
			anns:      anns,
		})
	}

	return images, nil
}

// findBallDirs locates the images and labels directories of a ball
// only dataset which may be flat or have a train split
func findBallDirs(root string) (string, string) {

	layouts := [][2]string{
		{filepath.Join(root, "images"), filepath.Join(root, "labels")},
		{filepath.Join(root, "train", "images"), filepath.Join(root, "train", "labels")},
		{root, root},
	}

	for _, l := range layouts {
		if info, err := os.Stat(l[0]); err == nil && info.IsDir() {
			return l[0], l[1]
		}
	}

	return "", ""
}

// writeBallImage copies a ball only image into the given split and
// writes its remapped label file
func writeBallImage(outputDir, split string, img ballImage) error {

	name := filepath.Base(img.imageFile)
	stem := strings.TrimSuffix(name, filepath.Ext(name))

	dst := filepath.Join(outputDir, split, "images", name)

	if err := copyFile(img.imageFile, dst); err != nil {
		return err
	}

	labelDst := filepath.Join(outputDir, split, "labels", stem+".txt")

	return SaveLabelFile(labelDst, img.anns)
}

func isImageFile(name string) bool {

	ext := strings.ToLower(filepath.Ext(name))

	for _, e := range imageExts {
		if ext == e {
			return true
		}
	}

	return false
}

func copyFile(src, dst string) error {

	in, err := os.Open(src)

	if err != nil {
		return fmt.Errorf("error opening source file: %w", err)
	}

	defer in.Close()

	out, err := os.Create(dst)

	if err != nil {
		return fmt.Errorf("error creating destination file: %w", err)
	}

	defer out.Close()

	if _, err := io.Copy(out, in); err != nil {
		return fmt.Errorf("error copying file: %w", err)
	}

	return nil
}
