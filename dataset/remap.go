package dataset

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// DetectionRemap maps the class indexes of the public soccer dataset
// exports onto the compact set used for training.  Rows with classes
// outside the map are dropped.
var DetectionRemap = map[int]int{
	4:  0, // ball
	6:  1, // goalkeeper
	11: 2, // player
	16: 3, // referee
}

// RemapResult reports the outcome of a RemapLabels run
type RemapResult struct {
	// Remapped is the number of label files rewritten
	Remapped int
	// Removed is the number of label files that ended up empty and were
	// deleted along with their images
	Removed int
}

// RemapLabels rewrites every label file in labelDir applying the
// given class map.  Rows whose class is not in the map are discarded,
// and files left without any rows are deleted together with the
// matching image under the sibling images directory.
func RemapLabels(labelDir string, classMap map[int]int) (RemapResult, error) {

	var res RemapResult

	files, err := filepath.Glob(filepath.Join(labelDir, "*.txt"))

	if err != nil {
		return res, fmt.Errorf("error listing label files: %w", err)
	}

	for _, file := range files {
		anns, err := LoadLabelFile(file)

		if err != nil {
			return res, err
		}

		var kept []Annotation

		for _, ann := range anns {
			newClass, ok := classMap[ann.Class]

			if !ok {
				continue
			}

			ann.Class = newClass
			kept = append(kept, ann)
		}

		if len(kept) == 0 {
			if err := removeLabelAndImage(file); err != nil {
				return res, err
			}

			res.Removed++
			continue
		}

		if err := SaveLabelFile(file, kept); err != nil {
			return res, err
		}

		res.Remapped++
	}

	return res, nil
}

// removeLabelAndImage deletes a label file and any image with the same
// stem in the sibling images directory
func removeLabelAndImage(labelFile string) error {

	if err := os.Remove(labelFile); err != nil {
		return fmt.Errorf("error removing label file: %w", err)
	}

	stem := strings.TrimSuffix(filepath.Base(labelFile), ".txt")
	imgDir := filepath.Join(filepath.Dir(filepath.Dir(labelFile)), "images")

	for _, ext := range []string{".jpg", ".jpeg", ".png"} {
		imgFile := filepath.Join(imgDir, stem+ext)

		if _, err := os.Stat(imgFile); err == nil {
			if err := os.Remove(imgFile); err != nil {
				return fmt.Errorf("error removing image file: %w", err)
			}
		}
	}

	return nil
}
