package app

import (
	"context"
	"errors"
	"image"
	"time"

	"gocv.io/x/gocv"

	"github.com/ayusman/bhava/internal/capture"
	"github.com/ayusman/bhava/internal/emotion"
	"github.com/ayusman/bhava/internal/landmark"
	"github.com/ayusman/bhava/internal/logging"
	"github.com/ayusman/bhava/internal/overlay"
)

// FaceResult is the outcome for one detected face.
type FaceResult struct {
	Index    int              `json:"index"`
	Label    emotion.Label    `json:"label"`
	Display  string           `json:"display"`
	Features emotion.Features `json:"features"`
	Points   emotion.Points   `json:"points"`
	Bounds   image.Rectangle  `json:"bounds"`
	Score    float64          `json:"score"`

	// Face holds the raw landmarks for recording.
	Face landmark.Face `json:"-"`
}

// FrameResult is the outcome of one loop iteration.
type FrameResult struct {
	Sequence  uint64       `json:"sequence"`
	Timestamp time.Time    `json:"timestamp"`
	Width     int          `json:"width"`
	Height    int          `json:"height"`
	Faces     []FaceResult `json:"faces"`
}

// Observer receives every frame result together with the annotated frame.
// It runs on the loop goroutine and must not retain the frame.
type Observer func(res FrameResult, frame *gocv.Mat)

// Run opens the camera and processes frames until the stream ends, the quit
// key is pressed or ctx is cancelled. The camera and detector are closed on
// return. Reaching the end of the stream is not an error.
func (a *App) Run(ctx context.Context) error {
	a.mu.RLock()
	camera, display := a.camera, a.display
	a.mu.RUnlock()

	defer a.shutdown()
	if err := camera.Open(); err != nil {
		return err
	}

	log.Info("Capture loop started")

	for {
		select {
		case <-ctx.Done():
			log.Info("Capture loop cancelled")
			return nil
		default:
		}

		frame, err := camera.ReadFrame()
		if err != nil {
			if errors.Is(err, capture.ErrEndOfStream) {
				log.Info("End of stream")
			} else {
				log.WithError(err).Warn("Failed to read frame")
			}
			return nil
		}

		res := a.ProcessFrame(frame)
		a.notify(res, frame)
		display.Show(frame)

		key := display.WaitKey(1)
		quit := a.handleKey(key, frame, res)
		frame.Close()

		if quit {
			log.Info("Quit requested")
			return nil
		}
	}
}

// handleKey reacts to a key press and reports whether the loop should stop.
func (a *App) handleKey(key int, frame *gocv.Mat, res FrameResult) bool {
	if key < 0 {
		return false
	}

	switch key & 0xff {
	case KeyQuit:
		return true
	case KeyRecord:
		if f, err := a.Record(frame, res); err != nil {
			log.WithError(err).Warn("Failed to record fixture")
		} else {
			log.WithFields(logging.Fields{"id": f.ID, "label": f.Expected}).Info("Recorded fixture")
		}
	}
	return false
}

func (a *App) shutdown() {
	a.mu.RLock()
	camera, det := a.camera, a.detector
	a.mu.RUnlock()

	if err := camera.Close(); err != nil {
		log.WithError(err).Warn("Error closing camera")
	}
	if det != nil {
		if err := det.Close(); err != nil {
			log.WithError(err).Warn("Error closing detector")
		}
	}
	log.Info("Capture loop stopped")
}

// ProcessFrame detects faces in frame, labels each one and draws the
// annotations onto frame. Detection errors and degenerate faces are logged
// and leave the frame without the affected annotations.
func (a *App) ProcessFrame(frame *gocv.Mat) FrameResult {
	a.mu.Lock()
	a.sequence++
	res := FrameResult{
		Sequence:  a.sequence,
		Timestamp: time.Now(),
		Faces:     []FaceResult{},
	}
	det, enabled := a.detector, a.enabled
	a.mu.Unlock()

	if frame == nil || frame.Empty() {
		return res
	}
	res.Width, res.Height = frame.Cols(), frame.Rows()

	if !enabled || det == nil {
		return res
	}

	faces, err := det.Detect(frame)
	if err != nil {
		log.WithError(err).Warn("Face detection failed")
		return res
	}

	annotations := make([]overlay.Annotation, 0, len(faces))
	for i, face := range faces {
		analysis, err := emotion.Analyze(face, res.Width, res.Height)
		if err != nil {
			log.WithError(err).WithField("face", i).Warn("Skipping face")
			continue
		}

		res.Faces = append(res.Faces, FaceResult{
			Index:    i,
			Label:    analysis.Label,
			Display:  analysis.Label.Display(),
			Features: analysis.Features,
			Points:   analysis.Points,
			Bounds:   face.Bounds(res.Width, res.Height),
			Score:    face.Score,
			Face:     face,
		})
		annotations = append(annotations, overlay.Annotation{Face: face, Result: analysis})
	}

	a.renderer.Draw(frame, annotations)

	return res
}

func (a *App) notify(res FrameResult, frame *gocv.Mat) {
	a.mu.RLock()
	observers := a.observers
	a.mu.RUnlock()

	for _, o := range observers {
		o(res, frame)
	}
}
