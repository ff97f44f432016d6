package world

import (
	"math"
	"time"

	"github.com/udisondev/idlecore/internal/fixed"
)

// CameraConfig holds the camera zoom range and follow speed.
type CameraConfig struct {
	Zoom      float64
	MinZoom   float64
	MaxZoom   float64
	Smoothing float64 // per second; higher follows tighter
}

// DefaultCameraConfig returns a camera that follows at a moderate pace.
func DefaultCameraConfig() CameraConfig {
	return CameraConfig{Zoom: 1, MinZoom: 0.5, MaxZoom: 3, Smoothing: 8}
}

// Camera is the view state read by the renderer (value type).
type Camera struct {
	Position fixed.Position
	Target   fixed.Position
	Zoom     float64

	MinZoom   float64
	MaxZoom   float64
	Smoothing float64
}

// NewCamera creates a camera at the origin with cfg's zoom clamped to its range.
func NewCamera(cfg CameraConfig) Camera {
	if cfg.MinZoom <= 0 {
		cfg.MinZoom = 0.1
	}
	if cfg.MaxZoom < cfg.MinZoom {
		cfg.MaxZoom = cfg.MinZoom
	}
	c := Camera{MinZoom: cfg.MinZoom, MaxZoom: cfg.MaxZoom, Smoothing: cfg.Smoothing}
	c.SetZoom(cfg.Zoom)
	return c
}

// SetZoom sets the zoom factor clamped to [MinZoom, MaxZoom].
func (c *Camera) SetZoom(z float64) {
	c.Zoom = min(max(z, c.MinZoom), c.MaxZoom)
}

// Follow sets the point the camera eases toward.
func (c *Camera) Follow(target fixed.Position) {
	c.Target = target
}

// Snap moves the camera onto p immediately.
func (c *Camera) Snap(p fixed.Position) {
	c.Position = p
	c.Target = p
}

// Advance eases Position toward Target by 1-exp(-Smoothing*dt), so the
// result does not depend on the tick rate.
func (c *Camera) Advance(dt time.Duration) {
	if dt <= 0 {
		return
	}
	if c.Smoothing <= 0 {
		c.Position = c.Target
		return
	}
	t := 1 - math.Exp(-c.Smoothing*dt.Seconds())
	c.Position = c.Position.Lerp(c.Target, t)
}
