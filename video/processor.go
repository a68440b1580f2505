package video

import (
	"fmt"

	"gocv.io/x/gocv"
	"golang.org/x/image/font"

	"github.com/rafaelfrans/soccer-ai/detect"
	"github.com/rafaelfrans/soccer-ai/render"
	"github.com/rafaelfrans/soccer-ai/tracker"
)

// DefaultBallPadding is the pixel margin added around detected ball
// boxes before drawing the marker
const DefaultBallPadding = 10

// Config defines how frames are annotated
type Config struct {
	// BallClassID is the class index of the ball
	BallClassID int
	// BallPadding is the pixel margin added around ball boxes
	BallPadding int
	// NMSThreshold is the IoU threshold of the class agnostic pass run
	// on non ball detections before tracking
	NMSThreshold float32
	// EllipseColors are hex colors keyed by tracked class
	EllipseColors []string
	// EllipseThickness is the ellipse line thickness
	EllipseThickness int
	// TriangleColor is the hex color of the ball marker
	TriangleColor string
	// TrailEnabled draws motion trails behind tracked objects
	TrailEnabled bool
	// TrailSize is the number of history points kept per track
	TrailSize int
	// FontFile is an optional TTF file for label text, the builtin
	// bitmap font is used when empty
	FontFile string
	// FontSize is the TTF face point size
	FontSize float64
	// WriteJSON enables the per frame detections sidecar file
	WriteJSON bool
	// JSONPath overrides the sidecar location, derived from the output
	// file when empty
	JSONPath string
}

// DefaultConfig returns the standard annotation settings
func DefaultConfig() Config {
	return Config{
		BallClassID:      detect.ClassBall,
		BallPadding:      DefaultBallPadding,
		NMSThreshold:     detect.DefaultNMSThreshold,
		EllipseColors:    render.DefaultEllipseHex,
		EllipseThickness: render.DefaultEllipseThickness,
		TriangleColor:    render.DefaultTriangleHex,
		TrailSize:        tracker.DefaultTrailSize,
		FontSize:         render.DefaultFontSize,
	}
}

// Processor runs detection, tracking and annotation over video frames
type Processor struct {
	detector *detect.Detector
	tracker  *tracker.Tracker
	trail    *tracker.Trail
	cfg      Config

	palette  render.Palette
	font     render.Font
	face     font.Face
	triangle render.TriangleStyle
	trailSty render.TrailStyle
}

// NewProcessor creates a Processor drawing with the given settings.
// The tracker is created for a nominal 30fps and retuned when a video
// is processed.
func NewProcessor(det *detect.Detector, cfg Config) (*Processor, error) {

	pal, err := render.ParsePalette(cfg.EllipseColors)

	if err != nil {
		return nil, err
	}

	triClr, err := render.ParseHex(cfg.TriangleColor)

	if err != nil {
		return nil, err
	}

	p := &Processor{
		detector: det,
		tracker:  tracker.NewDefaultTracker(30),
		cfg:      cfg,
		palette:  pal,
		font:     render.DefaultFont(),
		triangle: render.DefaultTriangleStyle(triClr),
		trailSty: render.DefaultTrailStyle(),
	}

	if cfg.TrailEnabled {
		p.trail = tracker.NewTrail(cfg.TrailSize)
	}

	if cfg.FontFile != "" {
		face, err := render.LoadFontFace(cfg.FontFile, cfg.FontSize)

		if err != nil {
			return nil, err
		}

		p.face = face
	}

	return p, nil
}

// Reset clears all tracking state and retunes the tracker to the
// given frame rate
func (p *Processor) Reset(frameRate int) {

	p.tracker = tracker.NewDefaultTracker(frameRate)

	if p.trail != nil {
		p.trail.Reset()
	}
}

// TrackRecord is one tracked object in a frame
type TrackRecord struct {
	TrackID    int     `json:"track_id"`
	Class      string  `json:"class"`
	Box        [4]int  `json:"box"`
	Confidence float32 `json:"confidence"`
}

// BallRecord is one ball detection in a frame
type BallRecord struct {
	Box        [4]int  `json:"box"`
	Confidence float32 `json:"confidence"`
}

// FrameDetections holds everything found in a single frame
type FrameDetections struct {
	Frame  int           `json:"frame"`
	Tracks []TrackRecord `json:"tracks"`
	Ball   []BallRecord  `json:"ball"`
}

// ProcessFrame detects and tracks objects in a frame and draws the
// annotations onto it in place
func (p *Processor) ProcessFrame(img *gocv.Mat, frameIdx int) (FrameDetections, error) {

	dets := FrameDetections{
		Frame:  frameIdx,
		Tracks: []TrackRecord{},
		Ball:   []BallRecord{},
	}

	results, err := p.detector.Detect(*img)

	if err != nil {
		return dets, err
	}

	// ball boxes get padded so the marker clears the ball itself
	balls := detect.FilterClass(results, p.cfg.BallClassID)
	balls = detect.PadBoxes(balls, p.cfg.BallPadding, img.Cols(), img.Rows())

	// everything else goes through a class agnostic merge, then the
	// labels shift down to close the gap left by the ball class
	others := detect.ExcludeClass(results, p.cfg.BallClassID)
	others = detect.AgnosticNMS(others, p.cfg.NMSThreshold)

	for i := range others {
		others[i].Class--
	}

	tracks, err := p.tracker.Update(tracker.ResultsToObjects(others))

	if err != nil {
		return dets, fmt.Errorf("error updating tracker: %w", err)
	}

	if p.trail != nil {
		for _, trk := range tracks {
			p.trail.Add(trk)
		}

		render.Trail(img, tracks, p.trail, p.trailSty)
	}

	render.Ellipses(img, tracks, p.palette, p.cfg.EllipseThickness)
	render.TrackLabels(img, tracks, p.palette, p.font, p.face)
	render.Triangles(img, balls, p.triangle)

	for _, trk := range tracks {
		rect := trk.Rect()

		dets.Tracks = append(dets.Tracks, TrackRecord{
			TrackID: trk.TrackID(),
			// track labels index the class space without the ball
			Class: detect.ClassNames[trk.Label()+1],
			Box: [4]int{int(rect.TLX()), int(rect.TLY()),
				int(rect.BRX()), int(rect.BRY())},
			Confidence: trk.Score(),
		})
	}

	for _, ball := range balls {
		dets.Ball = append(dets.Ball, BallRecord{
			Box: [4]int{ball.Box.Left, ball.Box.Top,
				ball.Box.Right, ball.Box.Bottom},
			Confidence: ball.Probability,
		})
	}

	return dets, nil
}
