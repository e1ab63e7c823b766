package camera

import (
	"math"

	"github.com/litescript/ls-globe/internal/geo"
)

var worldUp = geo.Vec3{Y: 1}

// Camera is a perspective camera that always looks at the world origin.
type Camera struct {
	Position geo.Vec3
	FOV      float64 // vertical, degrees
	Near     float64
	Far      float64
	Aspect   float64 // width / height of the viewport
	Width    int
	Height   int
}

// NewCamera returns a camera with the default lens for a globe of radius r.
func NewCamera(radius float64) Camera {
	return Camera{
		FOV:    DefaultFOV,
		Near:   DefaultNear,
		Far:    radius * FarRadiusScale,
		Aspect: 1,
	}
}

// Basis returns the camera's forward, right and up unit vectors.
func (c Camera) Basis() (forward, right, up geo.Vec3) {
	forward = c.Position.Scale(-1).Normalized()
	right = forward.Cross(worldUp).Normalized()
	if right.Norm() == 0 {
		// Looking straight along Y; pick any horizontal right vector.
		right = geo.Vec3{X: 1}
	}
	up = right.Cross(forward)
	return forward, right, up
}

// ToNDC projects a world point into normalized device coordinates in
// [-1, 1] on both axes. depth is the distance along the view axis; ok is false
// for points behind the near plane or past the far plane.
func (c Camera) ToNDC(p geo.Vec3) (x, y, depth float64, ok bool) {
	forward, right, up := c.Basis()
	d := p.Sub(c.Position)
	depth = d.Dot(forward)
	if depth < c.Near || depth > c.Far {
		return 0, 0, depth, false
	}
	t := math.Tan(c.FOV * math.Pi / 360)
	aspect := c.Aspect
	if aspect <= 0 {
		aspect = 1
	}
	x = d.Dot(right) / (depth * t * aspect)
	y = d.Dot(up) / (depth * t)
	return x, y, depth, true
}

// Ray returns the unit direction through the given NDC point.
func (c Camera) Ray(x, y float64) geo.Vec3 {
	forward, right, up := c.Basis()
	t := math.Tan(c.FOV * math.Pi / 360)
	aspect := c.Aspect
	if aspect <= 0 {
		aspect = 1
	}
	return forward.Add(right.Scale(x * t * aspect)).Add(up.Scale(y * t)).Normalized()
}
