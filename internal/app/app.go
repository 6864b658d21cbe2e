// Package app runs the capture, classify and display loop of bhava.
package app

import (
	"sync"

	"github.com/ayusman/bhava/internal/capture"
	"github.com/ayusman/bhava/internal/detector"
	"github.com/ayusman/bhava/internal/logging"
	"github.com/ayusman/bhava/internal/overlay"
	"github.com/ayusman/bhava/internal/store"
	"github.com/ayusman/bhava/internal/ui"
)

var log = logging.Component("app")

// Key codes handled by the loop.
const (
	KeyQuit   = 'q'
	KeyRecord = 'r'
)

// Config holds configuration options for the application.
type Config struct {
	Camera   capture.Options
	Detector detector.Config
	Overlay  overlay.Options

	// Store enables fixture recording. It may be nil.
	Store *store.Store
}

// App is the main application that reads frames, labels each face and shows
// the annotated result.
type App struct {
	config    Config
	camera    capture.Camera
	detector  detector.Detector
	renderer  *overlay.Renderer
	display   ui.Display
	observers []Observer
	enabled   bool
	sequence  uint64
	mu        sync.RWMutex
}

// New creates a new App instance with the given configuration. The display
// defaults to a headless one; use SetDisplay to show a window.
func New(config Config) *App {
	a := &App{
		config:   config,
		camera:   capture.NewCamera(config.Camera),
		renderer: overlay.NewRenderer(config.Overlay),
		display:  ui.NewHeadless(),
		enabled:  true,
	}

	// Try MediaPipe first, fall back to a detector that never finds a face
	if mp, err := detector.NewMediaPipeDetector(config.Detector); err == nil {
		a.detector = mp
		log.Info("Using MediaPipe face mesh")
	} else {
		log.WithError(err).Warn("MediaPipe not available, no faces will be detected")
		a.detector = detector.NewMockDetector()
	}

	return a
}

// SetEnabled enables or disables detection. Frames keep flowing while
// disabled.
func (a *App) SetEnabled(enabled bool) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.enabled = enabled
}

// IsEnabled returns whether detection is currently enabled.
func (a *App) IsEnabled() bool {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.enabled
}

// SetDetector sets the face detector implementation to use.
func (a *App) SetDetector(d detector.Detector) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.detector = d
}

// SetCamera sets the frame source.
func (a *App) SetCamera(c capture.Camera) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.camera = c
}

// SetDisplay sets where annotated frames are shown and keys are read.
func (a *App) SetDisplay(d ui.Display) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.display = d
}

// OnResult registers an observer called after every frame.
func (a *App) OnResult(o Observer) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.observers = append(a.observers, o)
}

// Camera returns the camera instance.
func (a *App) Camera() capture.Camera {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.camera
}

// Detector returns the face detector.
func (a *App) Detector() detector.Detector {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.detector
}

// Store returns the fixture store, or nil.
func (a *App) Store() *store.Store {
	return a.config.Store
}
