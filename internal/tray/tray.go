// Package tray provides a system tray front end for headless bhava runs.
package tray

import (
	"strings"
	"sync"

	"github.com/getlantern/systray"
	"gocv.io/x/gocv"

	"github.com/ayusman/bhava/internal/app"
	"github.com/ayusman/bhava/internal/logging"
)

var log = logging.Component("tray")

// Tray represents the system tray application.
type Tray struct {
	onToggle func(enabled bool)
	onRecord func()
	onQuit   func()
	enabled  bool
	last     string
	mu       sync.RWMutex

	// Menu items stored for later updates
	menuToggle *systray.MenuItem
	menuLast   *systray.MenuItem
}

// New creates a new Tray instance with enabled state set to true by default.
func New() *Tray {
	return &Tray{
		enabled: true,
		last:    "none",
	}
}

// OnToggle sets the callback function to be called when detection is paused
// or resumed.
func (t *Tray) OnToggle(fn func(enabled bool)) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.onToggle = fn
}

// OnRecord sets the callback function to be called when the record menu item
// is clicked.
func (t *Tray) OnRecord(fn func()) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.onRecord = fn
}

// OnQuit sets the callback function to be called when the quit menu item is clicked.
func (t *Tray) OnQuit(fn func()) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.onQuit = fn
}

// Run starts the system tray application.
// This function blocks until Stop is called or Quit is clicked.
func (t *Tray) Run() {
	systray.Run(t.onReady, t.onExit)
}

// Stop closes the tray and makes Run return.
func (t *Tray) Stop() {
	systray.Quit()
}

// onReady is called when the system tray is ready.
// It sets up the menu structure.
func (t *Tray) onReady() {
	systray.SetTitle("bhava")
	systray.SetTooltip("bhava emotion detection")

	t.mu.Lock()
	t.menuToggle = systray.AddMenuItem(toggleTitle(t.enabled), "Pause or resume emotion detection")
	systray.AddSeparator()

	t.menuLast = systray.AddMenuItem("Last: "+t.last, "Last detected emotion")
	t.menuLast.Disable()
	t.mu.Unlock()
	systray.AddSeparator()

	menuRecord := systray.AddMenuItem("Record fixture", "Store the current face as a fixture")
	systray.AddSeparator()

	menuQuit := systray.AddMenuItem("Quit", "Quit bhava")

	// Handle menu item clicks in a separate goroutine
	go func() {
		for {
			select {
			case <-t.menuToggle.ClickedCh:
				t.handleToggle()
			case <-menuRecord.ClickedCh:
				t.handleRecord()
			case <-menuQuit.ClickedCh:
				t.handleQuit()
				return
			}
		}
	}()
}

func (t *Tray) onExit() {
	log.Debug("Tray closed")
}

func toggleTitle(enabled bool) string {
	if enabled {
		return "● Detecting"
	}
	return "○ Paused"
}

// handleToggle handles the toggle menu item click.
func (t *Tray) handleToggle() {
	t.mu.Lock()
	t.enabled = !t.enabled
	enabled := t.enabled

	if t.menuToggle != nil {
		t.menuToggle.SetTitle(toggleTitle(enabled))
	}

	callback := t.onToggle
	t.mu.Unlock()

	// Call the callback outside the lock to prevent deadlocks
	if callback != nil {
		callback(enabled)
	}
}

// handleRecord handles the record menu item click.
func (t *Tray) handleRecord() {
	t.mu.RLock()
	callback := t.onRecord
	t.mu.RUnlock()

	if callback != nil {
		callback()
	}
}

// handleQuit handles the quit menu item click.
func (t *Tray) handleQuit() {
	t.mu.RLock()
	callback := t.onQuit
	t.mu.RUnlock()

	if callback != nil {
		callback()
	}

	systray.Quit()
}

// Observe is an app.Observer that shows the labels of the latest frame.
func (t *Tray) Observe(res app.FrameResult, _ *gocv.Mat) {
	t.SetLast(summary(res))
}

func summary(res app.FrameResult) string {
	if len(res.Faces) == 0 {
		return "none"
	}
	labels := make([]string, 0, len(res.Faces))
	for _, f := range res.Faces {
		labels = append(labels, f.Display)
	}
	return strings.Join(labels, ", ")
}

// SetLast updates the last emotion display in the menu.
func (t *Tray) SetLast(text string) {
	if text == "" {
		text = "none"
	}

	t.mu.Lock()
	defer t.mu.Unlock()

	if text == t.last {
		return
	}
	t.last = text
	if t.menuLast != nil {
		t.menuLast.SetTitle("Last: " + text)
	}
}

// Last returns the text shown for the last frame.
func (t *Tray) Last() string {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.last
}

// IsEnabled returns the current enabled state.
func (t *Tray) IsEnabled() bool {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.enabled
}
