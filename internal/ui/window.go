// Package ui shows annotated frames and reads key presses.
package ui

import (
	"time"

	"gocv.io/x/gocv"
)

// Display shows frames and reports key presses.
type Display interface {
	// Show displays a frame. It must not retain the frame.
	Show(frame *gocv.Mat)

	// WaitKey waits up to delayMs for a key press and returns its code,
	// or -1 when none was pressed.
	WaitKey(delayMs int) int

	Close() error
}

// Window manages the preview display. It must be used from the OS main
// thread.
type Window struct {
	window     *gocv.Window
	name       string
	lastFrame  time.Time
	frameCount int
	fps        float64
}

// NewWindow creates a new preview window
func NewWindow(name string) *Window {
	return &Window{
		window:    gocv.NewWindow(name),
		name:      name,
		lastFrame: time.Now(),
	}
}

// Show displays a frame and updates the FPS counter
func (w *Window) Show(frame *gocv.Mat) {
	w.frameCount++
	now := time.Now()

	// Calculate FPS every second
	elapsed := now.Sub(w.lastFrame)
	if elapsed >= time.Second {
		w.fps = float64(w.frameCount) / elapsed.Seconds()
		w.frameCount = 0
		w.lastFrame = now
	}

	w.window.IMShow(*frame)
}

// WaitKey waits for key press, returns key code or -1
func (w *Window) WaitKey(delayMs int) int {
	return w.window.WaitKey(delayMs)
}

// FPS returns current frames per second
func (w *Window) FPS() float64 {
	return w.fps
}

// Close closes the window
func (w *Window) Close() error {
	if w.window != nil {
		return w.window.Close()
	}
	return nil
}

// Headless is a Display with no window. Key presses come from Press.
type Headless struct {
	keys   chan int
	frames int
}

// NewHeadless creates a Headless display.
func NewHeadless() *Headless {
	return &Headless{keys: make(chan int, 8)}
}

// Show counts the frame and discards it.
func (h *Headless) Show(frame *gocv.Mat) {
	h.frames++
}

// Frames returns the number of frames shown.
func (h *Headless) Frames() int {
	return h.frames
}

// Press queues a key code for the next WaitKey. It does not block; keys
// beyond the queue size are dropped.
func (h *Headless) Press(key int) {
	select {
	case h.keys <- key:
	default:
	}
}

// WaitKey returns a queued key, or -1 when none arrives within delayMs.
func (h *Headless) WaitKey(delayMs int) int {
	if delayMs <= 0 {
		return <-h.keys
	}

	timer := time.NewTimer(time.Duration(delayMs) * time.Millisecond)
	defer timer.Stop()

	select {
	case k := <-h.keys:
		return k
	case <-timer.C:
		return -1
	}
}

func (h *Headless) Close() error {
	return nil
}
