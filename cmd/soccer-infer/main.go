// soccer-infer annotates a soccer match video with tracked player,
// goalkeeper and referee markers and a ball pointer.
package main

import (
	"context"
	"flag"
	"log"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"go.uber.org/zap"

	"github.com/rafaelfrans/soccer-ai/config"
	"github.com/rafaelfrans/soccer-ai/detect"
	"github.com/rafaelfrans/soccer-ai/logging"
	"github.com/rafaelfrans/soccer-ai/video"
)

func main() {

	cfg, err := config.Load()

	if err != nil {
		log.Fatalf("Error loading configuration: %v", err)
	}

	modelFile := flag.String("model", "", "ONNX model file to run detection with")
	sourceFile := flag.String("source", "", "Video file to annotate")
	outputFile := flag.String("output", "", "Annotated video file to write")
	jsonOut := flag.Bool("json", false, "Write a per frame detections JSON file next to the output")
	jsonPath := flag.String("json-path", "", "Explicit detections JSON path, overrides the derived one")
	confThresh := flag.Float64("conf", cfg.GetFloat64("detect.conf-threshold"), "Detection confidence threshold")
	nmsThresh := flag.Float64("nms", cfg.GetFloat64("detect.nms-threshold"), "Non maximum suppression IoU threshold")
	ballClassID := flag.Int("ball-class-id", 0, "Class index of the ball")
	ellipseColors := flag.String("ellipse-colors", strings.Join(cfg.GetStringSlice("render.ellipse-colors"), ","), "Comma delimited hex colors for goalkeeper, player and referee markers")
	ellipseThickness := flag.Int("ellipse-thickness", 2, "Ellipse marker line thickness")
	triangleColor := flag.String("triangle-color", cfg.GetString("render.triangle-color"), "Hex color of the ball marker")
	trail := flag.Bool("trail", false, "Draw motion trails behind tracked objects")
	fontFile := flag.String("font", "", "Optional TTF font file for track labels")
	fontSize := flag.Float64("font-size", 14, "TTF font point size")
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

	if *modelFile == "" || *sourceFile == "" || *outputFile == "" {
		logger.Fatal("the -model, -source and -output flags are required")
	}

	detCfg := detect.DefaultConfig()
	detCfg.ConfThreshold = float32(*confThresh)
	detCfg.NMSThreshold = float32(*nmsThresh)

	detector, err := detect.NewDetector(*modelFile, detCfg)

	if err != nil {
		logger.Fatal("error loading model", zap.Error(err))
	}

	defer detector.Close()

	vidCfg := video.DefaultConfig()
	vidCfg.BallClassID = *ballClassID
	vidCfg.NMSThreshold = float32(*nmsThresh)
	vidCfg.EllipseColors = strings.Split(*ellipseColors, ",")
	vidCfg.EllipseThickness = *ellipseThickness
	vidCfg.TriangleColor = *triangleColor
	vidCfg.TrailEnabled = *trail
	vidCfg.FontFile = *fontFile
	vidCfg.FontSize = *fontSize
	vidCfg.WriteJSON = *jsonOut || *jsonPath != ""
	vidCfg.JSONPath = *jsonPath

	processor, err := video.NewProcessor(detector, vidCfg)

	if err != nil {
		logger.Fatal("error creating processor", zap.Error(err))
	}

	ctx, stop := signal.NotifyContext(context.Background(),
		os.Interrupt, syscall.SIGTERM)
	defer stop()

	summary, err := processor.ProcessVideo(ctx, *sourceFile, *outputFile)

	if err != nil {
		logger.Fatal("video processing failed", zap.Error(err))
	}

	logger.Info("annotation complete",
		zap.Int("frames", summary.Frames),
		zap.Duration("elapsed", summary.Elapsed),
		zap.String("output", *outputFile),
		zap.String("detections", summary.JSONPath))
}
