package detect

import (
	"fmt"
	"image"
	"image/color"

	"github.com/rafaelfrans/soccer-ai/preprocess"
	"gocv.io/x/gocv"
)

// Default detector parameters
const (
	// DefaultInputSize is the square input size of the detection model
	DefaultInputSize = 640
	// DefaultConfThreshold is the minimum confidence score a detection
	// must have to be kept
	DefaultConfThreshold = 0.3
	// DefaultNMSThreshold is the IoU threshold used during per class
	// Non-Maximum Suppression of the raw model output
	DefaultNMSThreshold = 0.5
)

// letterBoxColor is the gray used to pad the letterboxed model input
var letterBoxColor = color.RGBA{R: 114, G: 114, B: 114, A: 255}

// Config are the Detector parameters
type Config struct {
	// InputSize is the square size of the model input tensor
	InputSize int
	// ConfThreshold is the minimum confidence score of detections
	ConfThreshold float32
	// NMSThreshold is the IoU threshold used for per class NMS of the
	// raw model output
	NMSThreshold float32
}

// DefaultConfig returns the Config defaults
func DefaultConfig() Config {
	return Config{
		InputSize:     DefaultInputSize,
		ConfThreshold: DefaultConfThreshold,
		NMSThreshold:  DefaultNMSThreshold,
	}
}

// Detector runs a YOLO ONNX model over the OpenCV DNN backend to detect
// objects in video frames
type Detector struct {
	net   gocv.Net
	cfg   Config
	idGen *IDGenerator
}

// NewDetector loads the ONNX model file and returns a Detector
func NewDetector(modelFile string, cfg Config) (*Detector, error) {

	if cfg.InputSize <= 0 {
		cfg.InputSize = DefaultInputSize
	}

	if cfg.ConfThreshold <= 0 {
		cfg.ConfThreshold = DefaultConfThreshold
	}

	if cfg.NMSThreshold <= 0 {
		cfg.NMSThreshold = DefaultNMSThreshold
	}

	net := gocv.ReadNetFromONNX(modelFile)

	if net.Empty() {
		return nil, fmt.Errorf("error reading ONNX model from %s", modelFile)
	}

	return &Detector{
		net:   net,
		cfg:   cfg,
		idGen: NewIDGenerator(),
	}, nil
}

// Close frees the loaded network
func (d *Detector) Close() error {
	return d.net.Close()
}

// InputSize returns the square model input size
func (d *Detector) InputSize() int {
	return d.cfg.InputSize
}

// Detect runs inference on the given image and returns the detected objects
// with bounding boxes in source image coordinates
func (d *Detector) Detect(img gocv.Mat) ([]Result, error) {

	if img.Empty() {
		return nil, fmt.Errorf("error source Mat is empty")
	}

	resizer := preprocess.NewResizer(img.Cols(), img.Rows(),
		d.cfg.InputSize, d.cfg.InputSize)
	defer resizer.Close()

	input := gocv.NewMat()
	defer input.Close()

	resizer.LetterBoxResize(img, &input, letterBoxColor)

	blob := gocv.BlobFromImage(input, 1.0/255.0,
		image.Pt(d.cfg.InputSize, d.cfg.InputSize),
		gocv.NewScalar(0, 0, 0, 0), true, false)
	defer blob.Close()

	d.net.SetInput(blob, "")

	output := d.net.Forward("")
	defer output.Close()

	return d.decode(output, resizer)
}

// decode converts the raw model output tensor of shape
// [1, 4+classes, anchors] into detection results.  Each anchor column holds
// a center x/y, width, height and per class scores.
func (d *Detector) decode(output gocv.Mat, resizer *preprocess.Resizer) ([]Result, error) {

	dims := output.Size()

	if len(dims) != 3 || dims[1] < 5 {
		return nil, fmt.Errorf("unexpected model output shape %v", dims)
	}

	rows := dims[1]
	anchors := dims[2]
	numClasses := rows - 4

	// flatten [1, rows, anchors] into a rows x anchors 2D view
	view := output.Reshape(1, rows)
	defer view.Close()

	var results []Result

	for a := 0; a < anchors; a++ {

		// find the best scoring class for this anchor
		bestClass := 0
		bestScore := float32(0)

		for c := 0; c < numClasses; c++ {
			score := view.GetFloatAt(4+c, a)

			if score > bestScore {
				bestScore = score
				bestClass = c
			}
		}

		if bestScore < d.cfg.ConfThreshold {
			continue
		}

		// box is center x/y, width, height in model input coordinates
		cx := view.GetFloatAt(0, a)
		cy := view.GetFloatAt(1, a)
		w := view.GetFloatAt(2, a)
		h := view.GetFloatAt(3, a)

		left, top, right, bottom := resizer.TranslateBox(
			cx-w/2, cy-h/2, cx+w/2, cy+h/2)

		if right <= left || bottom <= top {
			continue
		}

		results = append(results, Result{
			Class: bestClass,
			Box: BoxRect{
				Left:   left,
				Top:    top,
				Right:  right,
				Bottom: bottom,
			},
			Probability: bestScore,
		})
	}

	// suppress overlapping boxes of the same class
	results = nms(results, d.cfg.NMSThreshold, false)

	for i := range results {
		results[i].ID = d.idGen.GetNext()
	}

	return results, nil
}
