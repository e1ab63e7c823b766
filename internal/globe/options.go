package globe

import (
	"github.com/litescript/ls-globe/internal/geo"
	"github.com/litescript/ls-globe/internal/interact"
	"github.com/litescript/ls-globe/internal/markers"
	"github.com/litescript/ls-globe/internal/scene"
)

const (
	// Radius is the default globe radius in world units.
	Radius = 300
	// BackgroundRadiusScale sizes the star background sphere.
	BackgroundRadiusScale = 10
	// CloudsRadiusOffset lifts the cloud layer above the surface.
	CloudsRadiusOffset = 1
	// GlobeSegments is the sphere tessellation hint for the globe.
	GlobeSegments = 50
	// TooltipOffset is the default tooltip offset from the pointer.
	TooltipOffset = 10
)

// GlobeOptions configures the globe surface, glow, clouds and background.
// Empty texture sources leave the surface untextured.
type GlobeOptions struct {
	BackgroundTexture string  `mapstructure:"background_texture"`
	CloudsSpeed       float64 `mapstructure:"clouds_speed"`
	CloudsOpacity     float64 `mapstructure:"clouds_opacity"`
	CloudsTexture     string  `mapstructure:"clouds_texture"`
	EnableBackground  bool    `mapstructure:"enable_background"`
	EnableClouds      bool    `mapstructure:"enable_clouds"`
	EnableGlow        bool    `mapstructure:"enable_glow"`
	GlowCoefficient   float64 `mapstructure:"glow_coefficient"`
	GlowColor         string  `mapstructure:"glow_color"`
	GlowPower         float64 `mapstructure:"glow_power"`
	GlowRadiusScale   float64 `mapstructure:"glow_radius_scale"`
	Texture           string  `mapstructure:"texture"`
}

// DefaultGlobeOptions returns the default globe settings.
func DefaultGlobeOptions() GlobeOptions {
	return GlobeOptions{
		CloudsSpeed:      0.5,
		CloudsOpacity:    0.3,
		EnableBackground: true,
		EnableClouds:     true,
		EnableGlow:       true,
		GlowCoefficient:  0.1,
		GlowColor:        "#d1d1d1",
		GlowPower:        3,
		GlowRadiusScale:  0.2,
	}
}

// Resolve clamps opacity and fills an empty glow color.
func (o GlobeOptions) Resolve() GlobeOptions {
	if o.CloudsOpacity < 0 {
		o.CloudsOpacity = 0
	}
	if o.CloudsOpacity > 1 {
		o.CloudsOpacity = 1
	}
	if o.GlowColor == "" {
		o.GlowColor = DefaultGlobeOptions().GlowColor
	}
	if o.GlowRadiusScale < 0 {
		o.GlowRadiusScale = 0
	}
	return o
}

// LightOptions configures the ambient and point lights, which travel with
// the camera.
type LightOptions struct {
	AmbientLightColor              string     `mapstructure:"ambient_light_color"`
	AmbientLightIntensity          float64    `mapstructure:"ambient_light_intensity"`
	PointLightColor                string     `mapstructure:"point_light_color"`
	PointLightIntensity            float64    `mapstructure:"point_light_intensity"`
	PointLightPositionRadiusScales [3]float64 `mapstructure:"point_light_position_radius_scales"`
}

// DefaultLightOptions returns the default lighting.
func DefaultLightOptions() LightOptions {
	return LightOptions{
		AmbientLightColor:              "#ffffff",
		AmbientLightIntensity:          1,
		PointLightColor:                "#ffffff",
		PointLightIntensity:            1.5,
		PointLightPositionRadiusScales: [3]float64{-2, 1, -1},
	}
}

// Resolve fills empty colors and clamps negative intensities.
func (o LightOptions) Resolve() LightOptions {
	d := DefaultLightOptions()
	if o.AmbientLightColor == "" {
		o.AmbientLightColor = d.AmbientLightColor
	}
	if o.PointLightColor == "" {
		o.PointLightColor = d.PointLightColor
	}
	if o.AmbientLightIntensity < 0 {
		o.AmbientLightIntensity = 0
	}
	if o.PointLightIntensity < 0 {
		o.PointLightIntensity = 0
	}
	return o
}

// Callbacks are the host notifications. Nil callbacks are skipped.
type Callbacks struct {
	OnClickMarker     func(markers.Marker, *scene.Node, interact.Event)
	OnMouseOverMarker func(markers.Marker, *scene.Node, interact.Event)
	OnMouseOutMarker  func(markers.Marker, *scene.Node, interact.Event)
	OnDefocus         func(previous geo.Coordinates, ev interact.Event)
	OnTextureLoaded   func()
}
