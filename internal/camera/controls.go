package camera

import (
	"math"
	"time"

	"github.com/litescript/ls-globe/internal/geo"
)

const polarEpsilon = 1e-6

// OrbitControls rotates and zooms a camera around the origin.
type OrbitControls struct {
	Enabled         bool
	AutoRotate      bool
	AutoRotateSpeed float64
	EnableRotate    bool
	EnableZoom      bool
	EnablePan       bool
	MinDistance     float64
	MaxDistance     float64
	MinPolarAngle   float64
	MaxPolarAngle   float64
	RotateSpeed     float64
	ZoomSpeed       float64
	DampingFactor   float64

	dAzimuth float64
	dPolar   float64
	zoom     float64
}

// Rotate queues a user rotation. One unit turns RotateSpeed of a full turn.
func (c *OrbitControls) Rotate(dAzimuth, dPolar float64) {
	if !c.Enabled || !c.EnableRotate {
		return
	}
	c.dAzimuth += dAzimuth * c.RotateSpeed * 2 * math.Pi
	c.dPolar += dPolar * c.RotateSpeed * 2 * math.Pi
}

// Zoom queues a user zoom. Positive steps move the camera closer.
func (c *OrbitControls) Zoom(steps float64) {
	if !c.Enabled || !c.EnableZoom {
		return
	}
	if c.zoom == 0 {
		c.zoom = 1
	}
	c.zoom *= math.Pow(0.95, c.ZoomSpeed*steps)
}

func (c *OrbitControls) reset() {
	c.dAzimuth, c.dPolar, c.zoom = 0, 0, 0
}

// Update applies auto-rotation, damped user rotation, zoom and limits to cam.
// It does nothing while the controls are disabled.
func (c *OrbitControls) Update(dt time.Duration, cam *Camera) {
	if !c.Enabled {
		c.reset()
		return
	}

	r := cam.Position.Norm()
	if r == 0 {
		return
	}
	azimuth := math.Atan2(cam.Position.X, cam.Position.Z)
	polar := math.Acos(clamp(cam.Position.Y/r, -1, 1))

	if c.AutoRotate {
		azimuth -= 2 * math.Pi / 60 * c.AutoRotateSpeed * dt.Seconds()
	}

	damping := c.DampingFactor
	if damping <= 0 || damping > 1 {
		damping = 1
	}
	azimuth -= c.dAzimuth * damping
	polar -= c.dPolar * damping
	c.dAzimuth *= 1 - damping
	c.dPolar *= 1 - damping
	if math.Abs(c.dAzimuth) < 1e-9 {
		c.dAzimuth = 0
	}
	if math.Abs(c.dPolar) < 1e-9 {
		c.dPolar = 0
	}

	if c.zoom > 0 {
		r *= c.zoom
		c.zoom = 0
	}

	polar = clamp(polar, math.Max(c.MinPolarAngle, polarEpsilon), math.Min(c.MaxPolarAngle, math.Pi-polarEpsilon))
	if c.MinDistance > 0 {
		r = math.Max(r, c.MinDistance)
	}
	if c.MaxDistance > 0 {
		r = math.Min(r, c.MaxDistance)
	}

	sinPolar := math.Sin(polar)
	cam.Position = geo.Vec3{
		X: r * sinPolar * math.Sin(azimuth),
		Y: r * math.Cos(polar),
		Z: r * sinPolar * math.Cos(azimuth),
	}
}
