package cli

import (
	"context"
	"io"
	"os"
	"time"

	"github.com/xolan/haven/internal/config"
	"github.com/xolan/haven/internal/service"
)

// Deps contains all dependencies for CLI operations
type Deps struct {
	Stdout io.Writer
	Stderr io.Writer
	Stdin  io.Reader
	Exit   func(code int)

	// Services is nil until Connect succeeds.
	Services *service.Services
	Config   config.Config
	Now      func() time.Time

	// Width reports the output width used for charts and markdown.
	Width func() int

	owned bool
}

// DefaultDeps creates a new Deps writing to the process streams. Services are
// opened on demand by Connect.
func DefaultDeps() *Deps {
	return &Deps{
		Stdout: os.Stdout,
		Stderr: os.Stderr,
		Stdin:  os.Stdin,
		Exit:   os.Exit,
		Config: config.DefaultConfig(),
		Now:    time.Now,
		Width:  func() int { return TerminalWidth(os.Stdout) },
	}
}

// NewDeps creates a new Deps with the given services
func NewDeps(services *service.Services, cfg config.Config) *Deps {
	d := DefaultDeps()
	d.Services = services
	d.Config = cfg
	if services != nil {
		d.Now = services.Now
	}
	return d
}

// Connect opens the services from the user's configuration unless they were
// injected already.
func (d *Deps) Connect(ctx context.Context) error {
	if d.Services != nil {
		return nil
	}
	services, err := service.NewServices(ctx)
	if err != nil {
		return err
	}
	d.Services = services
	d.Config = services.Config.Get()
	d.Now = services.Now
	d.owned = true
	return nil
}

// Close releases services opened by Connect. Injected services are left to
// their owner.
func (d *Deps) Close() error {
	if !d.owned || d.Services == nil {
		return nil
	}
	err := d.Services.Close()
	d.Services = nil
	d.owned = false
	return err
}

// OutputWidth returns the configured output width, or DefaultWidth.
func (d *Deps) OutputWidth() int {
	if d.Width == nil {
		return DefaultWidth
	}
	return d.Width()
}

// Today returns the current time, using the injected clock when set.
func (d *Deps) Today() time.Time {
	if d.Now == nil {
		return time.Now()
	}
	return d.Now()
}

// Global deps instance for CLI
var deps = DefaultDeps()

// SetDeps sets the global deps (for testing)
func SetDeps(d *Deps) {
	deps = d
}

// ResetDeps resets to default deps
func ResetDeps() {
	deps = DefaultDeps()
}

// GetDeps returns the current deps
func GetDeps() *Deps {
	return deps
}
