// Package markers reconciles marker data with animated scene objects.
package markers

import (
	"encoding/json"
	"time"

	"github.com/litescript/ls-globe/internal/geo"
	"github.com/litescript/ls-globe/internal/scene"
	"github.com/litescript/ls-globe/internal/tween"
)

const (
	// DefaultColor is used for markers without a color.
	DefaultColor = "#d1d1d1"
	// UnitRadiusScale sets the footprint of bar markers relative to the globe radius.
	UnitRadiusScale = 0.01
	// Segments is the sphere tessellation hint for dot markers.
	Segments = 10
	// AnimationDuration is the default enter and exit duration.
	AnimationDuration = 2000 * time.Millisecond
	// ActiveAnimationDuration is the hover scale animation duration.
	ActiveAnimationDuration = 100 * time.Millisecond
	// ActiveEasing is the hover scale animation easing.
	ActiveEasing = tween.CubicIn
)

// Type selects the built-in marker geometry.
type Type string

const (
	Dot Type = "dot"
	Bar Type = "bar"
)

// Marker is a data point at a geographic coordinate.
type Marker struct {
	ID          string
	Coordinates geo.Coordinates
	Value       float64
	Color       string
	Fields      map[string]any
}

// Key returns the reconciliation identity: the explicit ID when present,
// otherwise the coordinate key.
func (m Marker) Key() string {
	if m.ID != "" {
		return m.ID
	}
	return geo.CoordinatesKey(m.Coordinates)
}

// Options controls marker rendering and animation. Build it from
// DefaultOptions or DefaultBarOptions and override fields: Resolve cannot
// tell an unset bool or duration from an explicit false or zero, so those
// are taken as given.
type Options struct {
	Type                   Type          `mapstructure:"type"`
	ActiveScale            float64       `mapstructure:"active_scale"`
	EnableGlow             bool          `mapstructure:"enable_glow"`
	EnableTooltip          bool          `mapstructure:"enable_tooltip"`
	EnterAnimationDuration time.Duration `mapstructure:"enter_animation_duration"`
	EnterEasing            tween.Easing  `mapstructure:"enter_easing"`
	ExitAnimationDuration  time.Duration `mapstructure:"exit_animation_duration"`
	ExitEasing             tween.Easing  `mapstructure:"exit_easing"`
	GlowCoefficient        float64       `mapstructure:"glow_coefficient"`
	GlowPower              float64       `mapstructure:"glow_power"`
	GlowRadiusScale        float64       `mapstructure:"glow_radius_scale"`
	OffsetRadiusScale      *float64      `mapstructure:"offset_radius_scale"`
	RadiusScaleRange       [2]float64    `mapstructure:"radius_scale_range"`

	// TooltipContent formats the tooltip for a marker.
	TooltipContent func(Marker) string `mapstructure:"-"`
	// Renderer replaces the built-in geometry. The returned node is owned by
	// the engine and animates through its scale.
	Renderer func(*scene.Graph, Marker) *scene.Node `mapstructure:"-"`
}

// DefaultOptions returns the dot marker defaults.
func DefaultOptions() Options {
	return Options{
		Type:                   Dot,
		ActiveScale:            2,
		EnableGlow:             true,
		EnableTooltip:          true,
		EnterAnimationDuration: AnimationDuration,
		EnterEasing:            tween.LinearNone,
		ExitAnimationDuration:  AnimationDuration,
		ExitEasing:             tween.LinearNone,
		GlowCoefficient:        0,
		GlowPower:              4,
		GlowRadiusScale:        3,
		RadiusScaleRange:       [2]float64{0.005, 0.01},
		TooltipContent:         CoordinatesTooltip,
	}
}

// DefaultBarOptions returns the bar marker defaults.
func DefaultBarOptions() Options {
	o := DefaultOptions()
	o.Type = Bar
	o.ActiveScale = 1.1
	o.EnableGlow = false
	o.GlowRadiusScale = 0
	o.RadiusScaleRange = [2]float64{0.2, 0.5}
	return o
}

// Resolve fills unset or invalid fields from the defaults for the marker type.
func (o Options) Resolve() Options {
	if o.Type != Bar {
		o.Type = Dot
	}
	d := DefaultOptions()
	if o.Type == Bar {
		d = DefaultBarOptions()
	}
	if o.ActiveScale <= 0 {
		o.ActiveScale = d.ActiveScale
	}
	if o.RadiusScaleRange == [2]float64{} {
		o.RadiusScaleRange = d.RadiusScaleRange
	}
	if o.RadiusScaleRange[0] > o.RadiusScaleRange[1] {
		o.RadiusScaleRange[0], o.RadiusScaleRange[1] = o.RadiusScaleRange[1], o.RadiusScaleRange[0]
	}
	if o.EnterAnimationDuration < 0 {
		o.EnterAnimationDuration = 0
	}
	if o.ExitAnimationDuration < 0 {
		o.ExitAnimationDuration = 0
	}
	if o.EnterEasing == "" {
		o.EnterEasing = d.EnterEasing
	}
	if o.ExitEasing == "" {
		o.ExitEasing = d.ExitEasing
	}
	if o.GlowRadiusScale < 0 {
		o.GlowRadiusScale = 0
	}
	if o.TooltipContent == nil {
		o.TooltipContent = CoordinatesTooltip
	}
	return o
}

// CoordinatesTooltip renders the marker coordinates as a JSON pair.
func CoordinatesTooltip(m Marker) string {
	b, err := json.Marshal([2]float64{m.Coordinates.Lat, m.Coordinates.Lon})
	if err != nil {
		return geo.CoordinatesKey(m.Coordinates)
	}
	return string(b)
}
