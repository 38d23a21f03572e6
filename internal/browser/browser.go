// Package browser hands article links to the desktop's default browser.
package browser

import (
	"fmt"
	"net/url"
	"os/exec"
	"runtime"
)

// Validate rejects anything but absolute http and https URLs.
func Validate(rawURL string) error {
	u, err := url.Parse(rawURL)
	if err != nil {
		return fmt.Errorf("invalid URL: %w", err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return fmt.Errorf("refusing to open URL with scheme %q (only http/https allowed)", u.Scheme)
	}
	if u.Host == "" {
		return fmt.Errorf("refusing to open URL without a host: %q", rawURL)
	}
	return nil
}

// Launcher starts a process without waiting for it.
type Launcher func(name string, args ...string) error

func startProcess(name string, args ...string) error {
	return exec.Command(name, args...).Start()
}

// Opener opens URLs with the platform's handler.
type Opener struct {
	goos   string
	launch Launcher
}

func NewOpener() *Opener {
	return &Opener{goos: runtime.GOOS, launch: startProcess}
}

// WithLauncher returns an Opener for goos that runs launch instead of a real
// process.
func WithLauncher(goos string, launch Launcher) *Opener {
	return &Opener{goos: goos, launch: launch}
}

func (o *Opener) Open(rawURL string) error {
	if err := Validate(rawURL); err != nil {
		return err
	}
	switch o.goos {
	case "darwin":
		return o.launch("open", rawURL)
	case "windows":
		// rundll32 avoids cmd's shell interpretation of the URL
		return o.launch("rundll32", "url.dll,FileProtocolHandler", rawURL)
	default:
		return o.launch("xdg-open", rawURL)
	}
}

// Open uses the default Opener.
func Open(rawURL string) error {
	return NewOpener().Open(rawURL)
}
