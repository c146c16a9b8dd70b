// Package listener coordinates start/stop state for microphone
// listeners, both the in-process loop and external companion
// processes signalled through a marker file.
package listener

import (
	"errors"
	"io/fs"
	"os"
	"sync/atomic"
)

// Controller tracks whether the in-process listener loop should keep
// running. Safe for concurrent use.
type Controller struct {
	running atomic.Bool
}

// NewController returns a controller in the running state.
func NewController() *Controller {
	c := &Controller{}
	c.running.Store(true)
	return c
}

// Running reports whether the listener should continue.
func (c *Controller) Running() bool { return c.running.Load() }

// Stop transitions running to stopped. It reports false when the
// listener was already stopped, so callers can distinguish the first
// stop from repeats.
func (c *Controller) Stop() bool { return c.running.CompareAndSwap(true, false) }

// Resume transitions stopped back to running. It reports false when the
// listener was already running.
func (c *Controller) Resume() bool { return c.running.CompareAndSwap(false, true) }

// WriteStopMarker asks an external listener process to shut down by
// dropping a marker file it polls for.
func WriteStopMarker(path string) error {
	return os.WriteFile(path, []byte("stop\n"), 0o644)
}

// StopRequested reports whether a stop marker exists at path.
func StopRequested(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}

// ClearStopMarker removes the marker so the next listener run starts
// clean. A missing marker is not an error.
func ClearStopMarker(path string) error {
	if err := os.Remove(path); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return err
	}
	return nil
}
