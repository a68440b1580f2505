package dataset

import (
	"bufio"
	"fmt"
	"os"
	"strconv"
	"strings"
)

// Annotation is a single YOLO format label row with normalized center
// coordinates and box size
type Annotation struct {
	// Class is the object class index
	Class int
	// X and Y are the box center position normalized to the image size
	X, Y float64
	// W and H are the box dimensions normalized to the image size
	W, H float64
}

// ParseAnnotation parses a YOLO label line of the form
// "class x_center y_center width height"
func ParseAnnotation(line string) (Annotation, error) {

	fields := strings.Fields(line)

	if len(fields) < 5 {
		return Annotation{}, fmt.Errorf("invalid label line %q", line)
	}

	class, err := strconv.Atoi(fields[0])

	if err != nil {
		return Annotation{}, fmt.Errorf("invalid class in label line %q: %w", line, err)
	}

	vals := make([]float64, 4)

	for i := 0; i < 4; i++ {
		vals[i], err = strconv.ParseFloat(fields[i+1], 64)

		if err != nil {
			return Annotation{}, fmt.Errorf("invalid coordinate in label line %q: %w",
				line, err)
		}
	}

	return Annotation{
		Class: class,
		X:     vals[0],
		Y:     vals[1],
		W:     vals[2],
		H:     vals[3],
	}, nil
}

// String formats the annotation as a YOLO label line
func (a Annotation) String() string {
	return fmt.Sprintf("%d %s %s %s %s",
		a.Class,
		strconv.FormatFloat(a.X, 'f', 6, 64),
		strconv.FormatFloat(a.Y, 'f', 6, 64),
		strconv.FormatFloat(a.W, 'f', 6, 64),
		strconv.FormatFloat(a.H, 'f', 6, 64))
}

// LoadLabelFile reads all annotations from a YOLO label file, skipping
// blank lines
func LoadLabelFile(file string) ([]Annotation, error) {

	f, err := os.Open(file)

	if err != nil {
		return nil, fmt.Errorf("error opening label file: %w", err)
	}

	defer f.Close()

	var anns []Annotation

	scanner := bufio.NewScanner(f)

	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())

		if line == "" {
			continue
		}

		ann, err := ParseAnnotation(line)

		if err != nil {
			return nil, fmt.Errorf("error in %s: %w", file, err)
		}

		anns = append(anns, ann)
	}

	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("error reading label file: %w", err)
	}

	return anns, nil
}

// SaveLabelFile writes annotations to a YOLO label file, one per line
func SaveLabelFile(file string, anns []Annotation) error {

	var sb strings.Builder

	for _, ann := range anns {
		sb.WriteString(ann.String())
		sb.WriteString("\n")
	}

	if err := os.WriteFile(file, []byte(sb.String()), 0644); err != nil {
		return fmt.Errorf("error writing label file: %w", err)
	}

	return nil
}
