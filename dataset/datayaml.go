package dataset

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/rafaelfrans/soccer-ai/detect"
)

// DataYAML describes a YOLO dataset configuration file
type DataYAML struct {
	Path  string   `yaml:"path,omitempty"`
	Train string   `yaml:"train"`
	Val   string   `yaml:"val"`
	Test  string   `yaml:"test,omitempty"`
	NC    int      `yaml:"nc"`
	Names []string `yaml:"names"`
}

// LoadDataYAML reads a dataset configuration file
func LoadDataYAML(file string) (*DataYAML, error) {

	buf, err := os.ReadFile(file)

	if err != nil {
		return nil, fmt.Errorf("error reading data file: %w", err)
	}

	var d DataYAML

	if err := yaml.Unmarshal(buf, &d); err != nil {
		return nil, fmt.Errorf("error parsing data file: %w", err)
	}

	return &d, nil
}

// Save writes the dataset configuration to file
func (d *DataYAML) Save(file string) error {

	buf, err := yaml.Marshal(d)

	if err != nil {
		return fmt.Errorf("error encoding data file: %w", err)
	}

	if err := os.WriteFile(file, buf, 0644); err != nil {
		return fmt.Errorf("error writing data file: %w", err)
	}

	return nil
}

// FixDataYAML rewrites the class count and names in an exported
// data.yaml to the compact detection classes, keeping every other key
// in the file untouched
func FixDataYAML(file string) error {

	buf, err := os.ReadFile(file)

	if err != nil {
		return fmt.Errorf("error reading data file: %w", err)
	}

	var doc map[string]interface{}

	if err := yaml.Unmarshal(buf, &doc); err != nil {
		return fmt.Errorf("error parsing data file: %w", err)
	}

	if doc == nil {
		doc = make(map[string]interface{})
	}

	names := make([]interface{}, len(detect.ClassNames))

	for i, name := range detect.ClassNames {
		names[i] = name
	}

	doc["nc"] = len(detect.ClassNames)
	doc["names"] = names

	out, err := yaml.Marshal(doc)

	if err != nil {
		return fmt.Errorf("error encoding data file: %w", err)
	}

	if err := os.WriteFile(file, out, 0644); err != nil {
		return fmt.Errorf("error writing data file: %w", err)
	}

	return nil
}
