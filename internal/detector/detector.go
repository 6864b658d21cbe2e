// Package detector finds faces in video frames and returns their face mesh
// landmarks.
package detector

import (
	"gocv.io/x/gocv"

	"github.com/ayusman/bhava/internal/landmark"
)

// Detector defines the interface for face mesh implementations.
type Detector interface {
	// Detect analyzes a video frame and returns the landmarks of each face.
	// Returns an empty slice if no face is detected.
	Detect(frame *gocv.Mat) ([]landmark.Face, error)

	// Close releases any resources held by the detector.
	Close() error
}

// Config holds configuration options for face detection.
type Config struct {
	// MaxFaces is the maximum number of faces to detect (default: 1).
	MaxFaces int

	// RefineLandmarks adds the iris points to the mesh.
	RefineLandmarks bool

	// MinConfidence is the minimum detection confidence threshold (0.0-1.0).
	MinConfidence float64

	// MinTrackingConf is the minimum tracking confidence threshold (0.0-1.0).
	MinTrackingConf float64

	// Python is the interpreter used for the helper process. When empty a
	// virtual environment is searched for before falling back to python3.
	Python string

	// Script is the path of the helper script. When empty the usual install
	// locations are searched.
	Script string
}

// DefaultConfig returns a Config with sensible default values.
func DefaultConfig() Config {
	return Config{
		MaxFaces:        1,
		RefineLandmarks: true,
		MinConfidence:   0.5,
		MinTrackingConf: 0.5,
	}
}
