// Package camera implements the orbit camera and its focus state machine.
package camera

import (
	"math"
	"time"

	"github.com/litescript/ls-globe/internal/tween"
)

const (
	// DefaultFOV is the vertical field of view in degrees.
	DefaultFOV = 45
	// DefaultNear is the near clipping distance.
	DefaultNear = 1
	// FarRadiusScale sets the far plane as a multiple of the globe radius.
	FarRadiusScale = 100
	// DampingFactor is the fraction of pending user rotation applied per update.
	DampingFactor = 0.1
	// MinDistanceRadiusScale bounds how close the free camera may zoom.
	MinDistanceRadiusScale = 1.1
)

// Options configures the free-orbit camera. Start from DefaultOptions:
// bools are taken as given by Resolve.
type Options struct {
	AutoRotateSpeed        float64 `mapstructure:"auto_rotate_speed"`
	DistanceRadiusScale    float64 `mapstructure:"distance_radius_scale"`
	EnableAutoRotate       bool    `mapstructure:"enable_auto_rotate"`
	EnableRotate           bool    `mapstructure:"enable_rotate"`
	EnableZoom             bool    `mapstructure:"enable_zoom"`
	MaxDistanceRadiusScale float64 `mapstructure:"max_distance_radius_scale"`
	MaxPolarAngle          float64 `mapstructure:"max_polar_angle"`
	MinPolarAngle          float64 `mapstructure:"min_polar_angle"`
	RotateSpeed            float64 `mapstructure:"rotate_speed"`
	ZoomSpeed              float64 `mapstructure:"zoom_speed"`
}

// DefaultOptions returns the default orbit settings.
func DefaultOptions() Options {
	return Options{
		AutoRotateSpeed:        0.02,
		DistanceRadiusScale:    3,
		EnableAutoRotate:       true,
		EnableRotate:           true,
		EnableZoom:             true,
		MaxDistanceRadiusScale: 4,
		MaxPolarAngle:          math.Pi,
		MinPolarAngle:          0,
		RotateSpeed:            0.02,
		ZoomSpeed:              1,
	}
}

// Resolve replaces out-of-range values with defaults and orders the polar
// limits.
func (o Options) Resolve() Options {
	d := DefaultOptions()
	if o.DistanceRadiusScale <= MinDistanceRadiusScale {
		o.DistanceRadiusScale = d.DistanceRadiusScale
	}
	if o.MaxDistanceRadiusScale < o.DistanceRadiusScale {
		o.MaxDistanceRadiusScale = math.Max(d.MaxDistanceRadiusScale, o.DistanceRadiusScale)
	}
	o.MinPolarAngle = clamp(o.MinPolarAngle, 0, math.Pi)
	o.MaxPolarAngle = clamp(o.MaxPolarAngle, 0, math.Pi)
	if o.MinPolarAngle > o.MaxPolarAngle {
		o.MinPolarAngle, o.MaxPolarAngle = o.MaxPolarAngle, o.MinPolarAngle
	}
	if o.RotateSpeed < 0 {
		o.RotateSpeed = d.RotateSpeed
	}
	if o.ZoomSpeed < 0 {
		o.ZoomSpeed = d.ZoomSpeed
	}
	return o
}

// FocusOptions configures focus and defocus animations. Start from
// DefaultFocusOptions: Resolve keeps EnableDefocus and a zero
// AnimationDuration (an instant move) as given.
type FocusOptions struct {
	AnimationDuration   time.Duration `mapstructure:"animation_duration"`
	DistanceRadiusScale float64       `mapstructure:"distance_radius_scale"`
	Easing              tween.Easing  `mapstructure:"easing"`
	EnableDefocus       bool          `mapstructure:"enable_defocus"`
}

// DefaultFocusOptions returns the default focus animation settings.
func DefaultFocusOptions() FocusOptions {
	return FocusOptions{
		AnimationDuration:   1000 * time.Millisecond,
		DistanceRadiusScale: 1.5,
		Easing:              tween.CubicOut,
		EnableDefocus:       true,
	}
}

// Resolve fills unset or invalid fields from the defaults.
func (o FocusOptions) Resolve() FocusOptions {
	d := DefaultFocusOptions()
	if o.AnimationDuration < 0 {
		o.AnimationDuration = 0
	}
	if o.DistanceRadiusScale <= 1 {
		o.DistanceRadiusScale = d.DistanceRadiusScale
	}
	if o.Easing == "" {
		o.Easing = d.Easing
	}
	return o
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
