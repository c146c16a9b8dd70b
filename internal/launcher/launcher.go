// Package launcher opens URLs and local files with the desktop's default
// application.
package launcher

import (
	"fmt"
	"os/exec"
	"runtime"
)

// Opener starts the platform handler for a target (URL or file path).
// Launches are fire and forget: a nil error means the handler process
// started, not that it succeeded.
type Opener interface {
	Open(target string) error
}

// Desktop launches targets through the operating system's opener
// command, with xdg-open as the cross-platform fallback mechanism.
type Desktop struct{}

// New returns the default desktop opener.
func New() *Desktop { return &Desktop{} }

// Open tries the platform-specific opener first and falls back to
// xdg-open. It returns an error only when both attempts fail to start.
func (d *Desktop) Open(target string) error {
	argv := primaryArgv(target)
	if err := start(argv); err == nil {
		return nil
	}
	if argv[0] == "xdg-open" {
		// The fallback is the same command; don't retry it.
		return fmt.Errorf("launcher: opening %q failed", target)
	}
	if err := start([]string{"xdg-open", target}); err != nil {
		return fmt.Errorf("launcher: opening %q failed: %w", target, err)
	}
	return nil
}

func primaryArgv(target string) []string {
	switch runtime.GOOS {
	case "windows":
		return []string{"cmd", "/c", "start", "", target}
	case "darwin":
		return []string{"open", target}
	default:
		return []string{"xdg-open", target}
	}
}

func start(argv []string) error {
	cmd := exec.Command(argv[0], argv[1:]...)
	if err := cmd.Start(); err != nil {
		return err
	}
	go func() { _ = cmd.Wait() }()
	return nil
}
