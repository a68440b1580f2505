package video

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"go.uber.org/zap"
	"gocv.io/x/gocv"

	"github.com/rafaelfrans/soccer-ai/logging"
)

// videoCodec is the fourcc used for the output file
const videoCodec = "mp4v"

// progressInterval is how often frame progress gets logged
const progressInterval = 100

// Summary reports the outcome of a video run
type Summary struct {
	// Frames is the number of frames processed
	Frames int
	// Elapsed is the wall clock processing time
	Elapsed time.Duration
	// JSONPath is the sidecar file written, empty when disabled
	JSONPath string
}

// ProcessVideo annotates every frame of the source video and writes
// the result to targetPath at the same frame rate and size.  The
// tracker is reset and retuned to the source frame rate before the
// first frame.  Cancelling the context stops processing between
// frames.
func (p *Processor) ProcessVideo(ctx context.Context, sourcePath,
	targetPath string) (*Summary, error) {

	log := logging.Get()

	cap, err := gocv.VideoCaptureFile(sourcePath)

	if err != nil {
		return nil, fmt.Errorf("error opening video file: %w", err)
	}

	defer cap.Close()

	fps := cap.Get(gocv.VideoCaptureFPS)
	width := int(cap.Get(gocv.VideoCaptureFrameWidth))
	height := int(cap.Get(gocv.VideoCaptureFrameHeight))
	total := int(cap.Get(gocv.VideoCaptureFrameCount))

	if fps <= 0 {
		fps = 30
	}

	writer, err := gocv.VideoWriterFile(targetPath, videoCodec, fps,
		width, height, true)

	if err != nil {
		return nil, fmt.Errorf("error creating video writer: %w", err)
	}

	defer writer.Close()

	// fresh track state per video
	p.Reset(int(fps))

	log.Info("processing video",
		zap.String("source", sourcePath),
		zap.String("target", targetPath),
		zap.Float64("fps", fps),
		zap.Int("frames", total))

	img := gocv.NewMat()
	defer img.Close()

	var allDets []FrameDetections

	start := time.Now()
	frame := 0

	for {
		if err := ctx.Err(); err != nil {
			return nil, fmt.Errorf("processing cancelled: %w", err)
		}

		if ok := cap.Read(&img); !ok || img.Empty() {
			break
		}

		dets, err := p.ProcessFrame(&img, frame)

		if err != nil {
			return nil, fmt.Errorf("error on frame %d: %w", frame, err)
		}

		if p.cfg.WriteJSON {
			allDets = append(allDets, dets)
		}

		if err := writer.Write(img); err != nil {
			return nil, fmt.Errorf("error writing frame %d: %w", frame, err)
		}

		frame++

		if frame%progressInterval == 0 {
			log.Info("progress",
				zap.Int("frame", frame),
				zap.Int("total", total))
		}
	}

	summary := &Summary{
		Frames:  frame,
		Elapsed: time.Since(start),
	}

	if p.cfg.WriteJSON {
		jsonPath := p.cfg.JSONPath

		if jsonPath == "" {
			jsonPath = DeriveJSONPath(targetPath)
		}

		if err := writeDetectionsJSON(jsonPath, allDets); err != nil {
			return nil, err
		}

		summary.JSONPath = jsonPath
	}

	log.Info("video complete",
		zap.Int("frames", summary.Frames),
		zap.Duration("elapsed", summary.Elapsed))

	return summary, nil
}

// DeriveJSONPath returns the sidecar path for an output video file
func DeriveJSONPath(targetPath string) string {

	base := strings.TrimSuffix(targetPath, filepath.Ext(targetPath))

	return base + "_detections.json"
}

// writeDetectionsJSON writes the per frame detection records to file
func writeDetectionsJSON(file string, dets []FrameDetections) error {

	if dets == nil {
		dets = []FrameDetections{}
	}

	buf, err := json.MarshalIndent(dets, "", "  ")

	if err != nil {
		return fmt.Errorf("error encoding detections: %w", err)
	}

	if err := os.WriteFile(file, buf, 0644); err != nil {
		return fmt.Errorf("error writing detections file: %w", err)
	}

	return nil
}
