// Package geo maps geographic coordinates onto the globe sphere.
package geo

import (
	"math"
	"strconv"
)

// Coordinates is a geographic position in degrees.
type Coordinates struct {
	Lat float64 // Latitude in degrees (north positive)
	Lon float64 // Longitude in degrees (east positive)
}

// Vec3 is a point or direction in world space.
type Vec3 struct {
	X, Y, Z float64
}

// Norm returns the magnitude of the vector.
func (v Vec3) Norm() float64 {
	return math.Sqrt(v.X*v.X + v.Y*v.Y + v.Z*v.Z)
}

// Normalized returns a unit vector in the same direction.
func (v Vec3) Normalized() Vec3 {
	n := v.Norm()
	if n == 0 {
		return Vec3{}
	}
	return Vec3{X: v.X / n, Y: v.Y / n, Z: v.Z / n}
}

// Scale returns the vector scaled by a factor.
func (v Vec3) Scale(s float64) Vec3 {
	return Vec3{X: v.X * s, Y: v.Y * s, Z: v.Z * s}
}

// Add returns the sum of two vectors.
func (v Vec3) Add(u Vec3) Vec3 {
	return Vec3{X: v.X + u.X, Y: v.Y + u.Y, Z: v.Z + u.Z}
}

// Sub returns the difference of two vectors.
func (v Vec3) Sub(u Vec3) Vec3 {
	return Vec3{X: v.X - u.X, Y: v.Y - u.Y, Z: v.Z - u.Z}
}

// Dot returns the dot product.
func (v Vec3) Dot(u Vec3) float64 {
	return v.X*u.X + v.Y*u.Y + v.Z*u.Z
}

// Cross returns the cross product v × u.
func (v Vec3) Cross(u Vec3) Vec3 {
	return Vec3{
		X: v.Y*u.Z - v.Z*u.Y,
		Y: v.Z*u.X - v.X*u.Z,
		Z: v.X*u.Y - v.Y*u.X,
	}
}

// Lerp interpolates linearly from v to u; t=0 gives v and t=1 gives u.
func (v Vec3) Lerp(u Vec3, t float64) Vec3 {
	return v.Add(u.Sub(v).Scale(t))
}

// Slice returns the components as a fresh slice, for tweening.
func (v Vec3) Slice() []float64 {
	return []float64{v.X, v.Y, v.Z}
}

// VecFrom builds a Vec3 from the first three values of s.
func VecFrom(s []float64) Vec3 {
	if len(s) < 3 {
		return Vec3{}
	}
	return Vec3{X: s[0], Y: s[1], Z: s[2]}
}

// Project converts coordinates to a position on a sphere of the given radius.
//
// The globe texture is equirectangular with its seam at lon=-180, so the
// azimuth is measured from the antimeridian:
//
//	phi   = lat · π/180
//	theta = (lon - 180) · π/180
//	x = -r·cos(phi)·cos(theta), y = r·sin(phi), z = r·cos(phi)·sin(theta)
func Project(c Coordinates, radius float64) Vec3 {
	phi := degToRad(c.Lat)
	theta := degToRad(c.Lon - 180)
	return Vec3{
		X: -radius * math.Cos(phi) * math.Cos(theta),
		Y: radius * math.Sin(phi),
		Z: radius * math.Cos(phi) * math.Sin(theta),
	}
}

// Unproject is the inverse of Project. The radius is taken from the vector;
// longitude is normalized to [-180, 180).
func Unproject(v Vec3) Coordinates {
	r := v.Norm()
	if r == 0 {
		return Coordinates{}
	}
	lat := radToDeg(math.Asin(clamp(v.Y/r, -1, 1)))
	theta := math.Atan2(v.Z, -v.X)
	return Coordinates{Lat: lat, Lon: NormalizeLon(radToDeg(theta) + 180)}
}

// NormalizeLon wraps a longitude into [-180, 180).
func NormalizeLon(lon float64) float64 {
	lon = math.Mod(lon+180, 360)
	if lon < 0 {
		lon += 360
	}
	return lon - 180
}

// CoordinatesKey returns the identity key used for markers without an ID.
func CoordinatesKey(c Coordinates) string {
	return strconv.FormatFloat(c.Lat, 'g', -1, 64) + "," + strconv.FormatFloat(c.Lon, 'g', -1, 64)
}

// Equal reports whether two coordinates are identical.
func (c Coordinates) Equal(o Coordinates) bool {
	return c.Lat == o.Lat && c.Lon == o.Lon
}

func degToRad(deg float64) float64 {
	return deg * math.Pi / 180
}

func radToDeg(rad float64) float64 {
	return rad * 180 / math.Pi
}

func clamp(x, lo, hi float64) float64 {
	if x < lo {
		return lo
	}
	if x > hi {
		return hi
	}
	return x
}
