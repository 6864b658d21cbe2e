// Package capture provides video capture functionality using GoCV (OpenCV).
package capture

import (
	"errors"
	"fmt"
	"strconv"
	"sync"

	"gocv.io/x/gocv"
)

var (
	// ErrCameraNotOpen is returned when trying to read from a camera that is not open.
	ErrCameraNotOpen = errors.New("camera is not open")

	// ErrEndOfStream is returned when the source yields no more frames.
	ErrEndOfStream = errors.New("end of stream")
)

// Camera defines the interface for frame sources.
type Camera interface {
	Open() error
	Close() error
	ReadFrame() (*gocv.Mat, error)
	SetFPS(fps int)
	FPS() int
	IsOpen() bool
}

// Options selects the video source. Source is a device index such as "0",
// a file path or a stream URL. Zero width, height or fps keeps the device
// default.
type Options struct {
	Source string
	Width  int
	Height int
	FPS    int
}

// DefaultOptions opens the default system camera at its native settings.
func DefaultOptions() Options {
	return Options{Source: "0"}
}

// cameraImpl manages video capture from a device, file or URL using GoCV.
type cameraImpl struct {
	opts    Options
	capture *gocv.VideoCapture
	mu      sync.Mutex
	running bool
	fps     int
}

// NewCamera creates a new Camera for the given source. The camera is not
// opened until Open is called.
func NewCamera(opts Options) Camera {
	if opts.Source == "" {
		opts.Source = DefaultOptions().Source
	}
	return &cameraImpl{
		opts: opts,
		fps:  opts.FPS,
	}
}

// deviceOrPath returns the source as a device index when it is numeric.
func deviceOrPath(source string) interface{} {
	if id, err := strconv.Atoi(source); err == nil {
		return id
	}
	return source
}

// Open opens the source for capturing frames.
func (c *cameraImpl) Open() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.running {
		return nil
	}

	capture, err := gocv.OpenVideoCapture(deviceOrPath(c.opts.Source))
	if err != nil {
		return fmt.Errorf("open video source %q: %w", c.opts.Source, err)
	}
	if !capture.IsOpened() {
		capture.Close()
		return fmt.Errorf("open video source %q: %w", c.opts.Source, ErrCameraNotOpen)
	}

	if c.opts.Width > 0 {
		capture.Set(gocv.VideoCaptureFrameWidth, float64(c.opts.Width))
	}
	if c.opts.Height > 0 {
		capture.Set(gocv.VideoCaptureFrameHeight, float64(c.opts.Height))
	}
	if c.fps > 0 {
		capture.Set(gocv.VideoCaptureFPS, float64(c.fps))
	}

	c.capture = capture
	c.running = true

	return nil
}

// Close closes the camera and releases resources.
func (c *cameraImpl) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if !c.running || c.capture == nil {
		c.running = false
		return nil
	}

	err := c.capture.Close()
	c.capture = nil
	c.running = false

	return err
}

// ReadFrame reads a single frame. A failed or empty read is reported as
// ErrEndOfStream. The caller is responsible for closing the returned Mat.
func (c *cameraImpl) ReadFrame() (*gocv.Mat, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if !c.running || c.capture == nil {
		return nil, ErrCameraNotOpen
	}

	mat := gocv.NewMat()
	if ok := c.capture.Read(&mat); !ok || mat.Empty() {
		mat.Close()
		return nil, ErrEndOfStream
	}

	return &mat, nil
}

// SetFPS sets the frames per second for capture.
// Values less than or equal to 0 are ignored.
func (c *cameraImpl) SetFPS(fps int) {
	if fps <= 0 {
		return
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	c.fps = fps

	if c.capture != nil {
		c.capture.Set(gocv.VideoCaptureFPS, float64(fps))
	}
}

// FPS returns the requested frames per second, or the rate reported by the
// open device when none was requested.
func (c *cameraImpl) FPS() int {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.fps == 0 && c.capture != nil {
		return int(c.capture.Get(gocv.VideoCaptureFPS))
	}
	return c.fps
}

// IsOpen returns true if the camera is currently open and running.
func (c *cameraImpl) IsOpen() bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	return c.running
}
