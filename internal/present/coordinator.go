// Package present owns the current presentation command and fans it out to
// every registered display surface.
package present

import (
	"fmt"
	"sync"

	"github.com/gridbanner/gridbanner/internal/types"
	"github.com/rs/zerolog"
)

// DisplaySurface is one independent rendering target, conceptually one per
// monitor. Implementations are owned by the windowing layer; the coordinator
// only pushes commands at them.
type DisplaySurface interface {
	ID() string
	Apply(cmd types.PresentationCommand) error
}

// Coordinator holds the single current PresentationCommand and the surface
// registry. All surfaces always receive the same command derived from the
// same decision; a surface registered mid-cycle receives the latest command
// immediately.
type Coordinator struct {
	log zerolog.Logger

	mu       sync.Mutex
	surfaces []DisplaySurface
	current  types.PresentationCommand
}

// NewCoordinator builds a Coordinator with no surfaces and a hidden command.
func NewCoordinator(log zerolog.Logger) *Coordinator {
	return &Coordinator{
		log:     log.With().Str("component", "coordinator").Logger(),
		current: types.Hidden(),
	}
}

// Show derives the command for alert and fans it out.
func (c *Coordinator) Show(alert *types.AlertMessage) {
	c.publish(types.CommandFor(alert))
}

// Hide blanks every surface.
func (c *Coordinator) Hide() {
	c.publish(types.Hidden())
}

// Current returns the command surfaces are currently holding.
func (c *Coordinator) Current() types.PresentationCommand {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.current
}

// Register adds a surface and immediately applies the current command so a
// hot-plugged monitor does not wait for the next poll tick.
func (c *Coordinator) Register(s DisplaySurface) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	for _, existing := range c.surfaces {
		if existing.ID() == s.ID() {
			return fmt.Errorf("surface %q already registered", s.ID())
		}
	}
	c.surfaces = append(c.surfaces, s)
	c.applyOne(s, c.current)
	return nil
}

// Unregister removes a surface by ID. Unknown IDs are a no-op.
func (c *Coordinator) Unregister(id string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	for i, s := range c.surfaces {
		if s.ID() == id {
			c.surfaces = append(c.surfaces[:i], c.surfaces[i+1:]...)
			return
		}
	}
}

// SurfaceCount returns the number of registered surfaces.
func (c *Coordinator) SurfaceCount() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.surfaces)
}

// publish replaces the current command and applies it to every surface under
// the lock, so no surface can observe a half-applied update and no competing
// publish can interleave.
func (c *Coordinator) publish(cmd types.PresentationCommand) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.current = cmd
	for _, s := range c.surfaces {
		c.applyOne(s, cmd)
	}
}

// applyOne pushes a command to one surface. A failing surface is logged and
// skipped; it must not block the others.
func (c *Coordinator) applyOne(s DisplaySurface, cmd types.PresentationCommand) {
	if err := s.Apply(cmd); err != nil {
		c.log.Error().Err(err).Str("surface", s.ID()).Msg("surface failed to apply command")
	}
}
