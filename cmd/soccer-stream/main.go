// soccer-stream loops a soccer match video through the annotation
// pipeline and serves the result as an MJPEG stream for previewing
// a model in the browser.
package main

import (
	"flag"
	"fmt"
	"log"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"gocv.io/x/gocv"

	"github.com/rafaelfrans/soccer-ai/config"
	"github.com/rafaelfrans/soccer-ai/detect"
	"github.com/rafaelfrans/soccer-ai/logging"
	"github.com/rafaelfrans/soccer-ai/video"
)

// streamer holds the buffered video frames shared by all clients
type streamer struct {
	frames    []gocv.Mat
	fps       float64
	modelFile string
	detCfg    detect.Config
	vidCfg    video.Config
}

// bufferVideo reads every frame of the video into memory so the
// stream can loop without re-decoding
func bufferVideo(vidFile string) ([]gocv.Mat, float64, error) {

	cap, err := gocv.VideoCaptureFile(vidFile)

	if err != nil {
		return nil, 0, fmt.Errorf("error opening video file: %w", err)
	}

	defer cap.Close()

	fps := cap.Get(gocv.VideoCaptureFPS)

	if fps <= 0 {
		fps = 30
	}

	var frames []gocv.Mat

	for {
		img := gocv.NewMat()

		if ok := cap.Read(&img); !ok {
			img.Close()
			break
		}

		if img.Empty() {
			img.Close()
			continue
		}

		frames = append(frames, img)
	}

	if len(frames) == 0 {
		return nil, 0, fmt.Errorf("no frames read from %s", vidFile)
	}

	return frames, fps, nil
}

// stream annotates buffered frames at the source frame rate and
// writes them to the client as an MJPEG stream.  Each client gets its
// own detector and track state.
func (s *streamer) stream(c *gin.Context) {

	logger := logging.Get()
	logger.Info("client connected", zap.String("remote", c.ClientIP()))

	detector, err := detect.NewDetector(s.modelFile, s.detCfg)

	if err != nil {
		logger.Error("error loading model", zap.Error(err))
		c.Status(http.StatusInternalServerError)
		return
	}

	defer detector.Close()

	processor, err := video.NewProcessor(detector, s.vidCfg)

	if err != nil {
		logger.Error("error creating processor", zap.Error(err))
		c.Status(http.StatusInternalServerError)
		return
	}

	processor.Reset(int(s.fps))

	c.Writer.Header().Set("Content-Type",
		"multipart/x-mixed-replace; boundary=frame")

	interval := time.Duration(float64(time.Second) / s.fps)
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	resImg := gocv.NewMat()
	defer resImg.Close()

	frameNum := -1

	for {
		select {
		case <-c.Request.Context().Done():
			logger.Info("client disconnected", zap.String("remote", c.ClientIP()))
			return

		case <-ticker.C:
			frameNum++

			if frameNum > len(s.frames)-1 {
				// video looped, start tracks over
				frameNum = 0
				processor.Reset(int(s.fps))
			}

			s.frames[frameNum].CopyTo(&resImg)

			if _, err := processor.ProcessFrame(&resImg, frameNum); err != nil {
				logger.Error("error processing frame", zap.Error(err))
				return
			}

			buf, err := gocv.IMEncode(".jpg", resImg)

			if err != nil {
				logger.Error("error encoding frame", zap.Error(err))
				return
			}

			c.Writer.Write([]byte("--frame\r\nContent-Type: image/jpeg\r\n\r\n"))
			c.Writer.Write(buf.GetBytes())
			c.Writer.Write([]byte("\r\n"))
			c.Writer.Flush()

			buf.Close()
		}
	}
}

func main() {

	cfg, err := config.Load()

	if err != nil {
		log.Fatalf("Error loading configuration: %v", err)
	}

	modelFile := flag.String("model", "", "ONNX model file to run detection with")
	vidFile := flag.String("video", "", "Video file to loop through the pipeline")
	httpAddr := flag.String("addr", "localhost:8080", "HTTP address to serve on, format address:port")
	confThresh := flag.Float64("conf", cfg.GetFloat64("detect.conf-threshold"), "Detection confidence threshold")
	nmsThresh := flag.Float64("nms", cfg.GetFloat64("detect.nms-threshold"), "Non maximum suppression IoU threshold")
	ballClassID := flag.Int("ball-class-id", 0, "Class index of the ball")
	trail := flag.Bool("trail", false, "Draw motion trails behind tracked objects")
	debug := flag.Bool("debug", false, "Enable verbose logging")

	flag.Parse()

	if *debug {
		err = logging.InitDevelopment()
	} else {
		err = logging.InitProduction()
		gin.SetMode(gin.ReleaseMode)
	}

	if err != nil {
		log.Fatalf("Error initialising logger: %v", err)
	}

	defer logging.Sync()

	logger := logging.Get()

	if *modelFile == "" || *vidFile == "" {
		logger.Fatal("the -model and -video flags are required")
	}

	frames, fps, err := bufferVideo(*vidFile)

	if err != nil {
		logger.Fatal("error buffering video", zap.Error(err))
	}

	vidCfg := video.DefaultConfig()
	vidCfg.BallClassID = *ballClassID
	vidCfg.NMSThreshold = float32(*nmsThresh)
	vidCfg.TrailEnabled = *trail

	detCfg := detect.DefaultConfig()
	detCfg.ConfThreshold = float32(*confThresh)
	detCfg.NMSThreshold = float32(*nmsThresh)

	s := &streamer{
		frames:    frames,
		fps:       fps,
		modelFile: *modelFile,
		detCfg:    detCfg,
		vidCfg:    vidCfg,
	}

	router := gin.New()
	router.Use(gin.Recovery())
	router.GET("/stream", s.stream)

	logger.Info("serving stream",
		zap.String("url", fmt.Sprintf("http://%s/stream", *httpAddr)))

	if err := router.Run(*httpAddr); err != nil {
		logger.Fatal("server failed", zap.Error(err))
	}
}
