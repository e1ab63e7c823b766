// Package config loads ls-globe settings from defaults, an optional config
// file, LSGLOBE_* environment variables and command-line flags, in
// increasing order of precedence.
package config

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/go-viper/mapstructure/v2"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"github.com/litescript/ls-globe/internal/camera"
	"github.com/litescript/ls-globe/internal/geo"
	"github.com/litescript/ls-globe/internal/globe"
	"github.com/litescript/ls-globe/internal/logging"
	"github.com/litescript/ls-globe/internal/markers"
	"github.com/litescript/ls-globe/internal/script"
	"github.com/litescript/ls-globe/internal/tween"
)

// EnvPrefix prefixes environment overrides, e.g. LSGLOBE_FPS=20.
const EnvPrefix = "LSGLOBE"

var (
	// ErrInvalidEasing is returned for an easing name outside the catalog.
	ErrInvalidEasing = errors.New("invalid easing")
	// ErrInvalidConfig is returned for other out-of-range settings.
	ErrInvalidConfig = errors.New("invalid config")
)

// TourStep is one configured tour stop.
type TourStep struct {
	Coordinates         [2]float64    `mapstructure:"coordinates"`
	AnimationDuration   time.Duration `mapstructure:"animation_duration"`
	DistanceRadiusScale float64       `mapstructure:"distance_radius_scale"`
	Easing              string        `mapstructure:"easing"`
}

// Config is the full application configuration.
type Config struct {
	LogLevel      string        `mapstructure:"log_level"`
	LogFile       string        `mapstructure:"log_file"`
	FPS           int           `mapstructure:"fps"`
	Headless      bool          `mapstructure:"headless"`
	Frames        int           `mapstructure:"frames"`
	Width         int           `mapstructure:"width"`
	Height        int           `mapstructure:"height"`
	TooltipOffset int           `mapstructure:"tooltip_offset"`
	LookAt        string        `mapstructure:"look_at"`
	MarkersFile   string        `mapstructure:"markers_file"`
	FeedURL       string        `mapstructure:"feed_url"`
	FeedRefresh   time.Duration `mapstructure:"feed_refresh"`
	StreamURL     string        `mapstructure:"stream_url"`

	Camera camera.Options      `mapstructure:"camera"`
	Focus  camera.FocusOptions `mapstructure:"focus"`
	Marker markers.Options     `mapstructure:"marker"`
	Globe  globe.GlobeOptions  `mapstructure:"globe"`
	Lights globe.LightOptions  `mapstructure:"lights"`
	Tour   []TourStep          `mapstructure:"tour"`

	lookAt geo.Coordinates
}

// flagKeys maps command-line flag names to config keys.
var flagKeys = map[string]string{
	"log-level":    "log_level",
	"log-file":     "log_file",
	"fps":          "fps",
	"headless":     "headless",
	"frames":       "frames",
	"width":        "width",
	"height":       "height",
	"look-at":      "look_at",
	"markers":      "markers_file",
	"feed-url":     "feed_url",
	"feed-refresh": "feed_refresh",
	"stream-url":   "stream_url",
	"marker-type":  "marker.type",
	"auto-rotate":  "camera.enable_auto_rotate",
	"texture":      "globe.texture",
}

// RegisterFlags adds the configurable flags to fs.
func RegisterFlags(fs *pflag.FlagSet) {
	fs.String("log-level", "info", "Log level: debug, info, warn, error")
	fs.String("log-file", "", "Write logs to this file (TUI mode discards logs otherwise)")
	fs.Int("fps", 30, "Frames per second")
	fs.Bool("headless", false, "Render without a TTY and print the final frame")
	fs.Int("frames", 90, "Frames to render in headless mode")
	fs.Int("width", 100, "Headless frame width in cells")
	fs.Int("height", 36, "Headless frame height in cells")
	fs.String("look-at", "0,0", "Initial camera target as lat,lon")
	fs.String("markers", "", "Load markers from a JSON file")
	fs.String("feed-url", "", "Poll markers from an HTTP JSON endpoint")
	fs.Duration("feed-refresh", 30*time.Second, "Feed poll interval")
	fs.String("stream-url", "", "Receive markers from a websocket endpoint")
	fs.String("marker-type", "dot", "Marker geometry: dot or bar")
	fs.Bool("auto-rotate", true, "Rotate the globe while idle")
	fs.String("texture", "", "Globe surface texture (PNG/JPEG file or URL)")
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("log_level", "info")
	v.SetDefault("log_file", "")
	v.SetDefault("fps", 30)
	v.SetDefault("headless", false)
	v.SetDefault("frames", 90)
	v.SetDefault("width", 100)
	v.SetDefault("height", 36)
	// Cells are small; the pixel default would push the tooltip off screen.
	v.SetDefault("tooltip_offset", 2)
	v.SetDefault("look_at", "0,0")
	v.SetDefault("markers_file", "")
	v.SetDefault("feed_url", "")
	v.SetDefault("feed_refresh", 30*time.Second)
	v.SetDefault("stream_url", "")

	c := camera.DefaultOptions()
	v.SetDefault("camera.auto_rotate_speed", c.AutoRotateSpeed)
	v.SetDefault("camera.distance_radius_scale", c.DistanceRadiusScale)
	v.SetDefault("camera.enable_auto_rotate", c.EnableAutoRotate)
	v.SetDefault("camera.enable_rotate", c.EnableRotate)
	v.SetDefault("camera.enable_zoom", c.EnableZoom)
	v.SetDefault("camera.max_distance_radius_scale", c.MaxDistanceRadiusScale)
	v.SetDefault("camera.max_polar_angle", c.MaxPolarAngle)
	v.SetDefault("camera.min_polar_angle", c.MinPolarAngle)
	v.SetDefault("camera.rotate_speed", c.RotateSpeed)
	v.SetDefault("camera.zoom_speed", c.ZoomSpeed)

	f := camera.DefaultFocusOptions()
	v.SetDefault("focus.animation_duration", f.AnimationDuration)
	v.SetDefault("focus.distance_radius_scale", f.DistanceRadiusScale)
	v.SetDefault("focus.easing", string(f.Easing))
	v.SetDefault("focus.enable_defocus", f.EnableDefocus)

	m := markers.DefaultOptions()
	v.SetDefault("marker.type", string(m.Type))
	v.SetDefault("marker.enable_tooltip", m.EnableTooltip)
	v.SetDefault("marker.enter_animation_duration", m.EnterAnimationDuration)
	v.SetDefault("marker.enter_easing", string(m.EnterEasing))
	v.SetDefault("marker.exit_animation_duration", m.ExitAnimationDuration)
	v.SetDefault("marker.exit_easing", string(m.ExitEasing))
	v.SetDefault("marker.glow_coefficient", m.GlowCoefficient)
	v.SetDefault("marker.glow_power", m.GlowPower)

	g := globe.DefaultGlobeOptions()
	v.SetDefault("globe.background_texture", g.BackgroundTexture)
	v.SetDefault("globe.clouds_speed", g.CloudsSpeed)
	v.SetDefault("globe.clouds_opacity", g.CloudsOpacity)
	v.SetDefault("globe.clouds_texture", g.CloudsTexture)
	v.SetDefault("globe.enable_background", g.EnableBackground)
	v.SetDefault("globe.enable_clouds", g.EnableClouds)
	v.SetDefault("globe.enable_glow", g.EnableGlow)
	v.SetDefault("globe.glow_coefficient", g.GlowCoefficient)
	v.SetDefault("globe.glow_color", g.GlowColor)
	v.SetDefault("globe.glow_power", g.GlowPower)
	v.SetDefault("globe.glow_radius_scale", g.GlowRadiusScale)
	v.SetDefault("globe.texture", g.Texture)

	l := globe.DefaultLightOptions()
	v.SetDefault("lights.ambient_light_color", l.AmbientLightColor)
	v.SetDefault("lights.ambient_light_intensity", l.AmbientLightIntensity)
	v.SetDefault("lights.point_light_color", l.PointLightColor)
	v.SetDefault("lights.point_light_intensity", l.PointLightIntensity)
	v.SetDefault("lights.point_light_position_radius_scales", l.PointLightPositionRadiusScales[:])
}

// setMarkerTypeDefaults fills the keys whose defaults depend on the marker
// type. It runs after all sources are read so it sees the final type.
func setMarkerTypeDefaults(v *viper.Viper) {
	d := markers.DefaultOptions()
	if markers.Type(v.GetString("marker.type")) == markers.Bar {
		d = markers.DefaultBarOptions()
	}
	v.SetDefault("marker.active_scale", d.ActiveScale)
	v.SetDefault("marker.enable_glow", d.EnableGlow)
	v.SetDefault("marker.glow_radius_scale", d.GlowRadiusScale)
	v.SetDefault("marker.radius_scale_range", d.RadiusScaleRange[:])
}

// Load reads configuration. path may be empty to skip the config file; the
// format follows its extension. flags may be nil.
func Load(path string, flags *pflag.FlagSet) (*Config, error) {
	v := viper.New()
	setDefaults(v)

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("read config file: %w", err)
		}
	}

	if flags != nil {
		for name, key := range flagKeys {
			if f := flags.Lookup(name); f != nil {
				if err := v.BindPFlag(key, f); err != nil {
					return nil, fmt.Errorf("bind flag %s: %w", name, err)
				}
			}
		}
	}
	setMarkerTypeDefaults(v)

	var cfg Config
	hook := mapstructure.ComposeDecodeHookFunc(
		mapstructure.StringToTimeDurationHookFunc(),
		mapstructure.StringToSliceHookFunc(","),
	)
	if err := v.Unmarshal(&cfg, viper.DecodeHook(hook)); err != nil {
		return nil, fmt.Errorf("decode config: %w", err)
	}
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) validate() error {
	if c.FPS < 1 || c.FPS > 120 {
		return fmt.Errorf("%w: fps %d out of range [1, 120]", ErrInvalidConfig, c.FPS)
	}
	if c.Frames < 1 {
		return fmt.Errorf("%w: frames must be positive", ErrInvalidConfig)
	}
	if c.Width < 1 || c.Height < 1 {
		return fmt.Errorf("%w: frame size %dx%d", ErrInvalidConfig, c.Width, c.Height)
	}
	if _, err := logging.ParseLevelStrict(c.LogLevel); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidConfig, err)
	}
	if c.Marker.Type != markers.Dot && c.Marker.Type != markers.Bar {
		return fmt.Errorf("%w: marker.type %q (want dot or bar)", ErrInvalidConfig, c.Marker.Type)
	}
	if c.FeedRefresh <= 0 {
		return fmt.Errorf("%w: feed_refresh must be positive", ErrInvalidConfig)
	}

	lookAt, err := ParseCoordinates(c.LookAt)
	if err != nil {
		return fmt.Errorf("%w: look_at: %v", ErrInvalidConfig, err)
	}
	c.lookAt = lookAt

	easings := map[string]tween.Easing{
		"focus.easing":        c.Focus.Easing,
		"marker.enter_easing": c.Marker.EnterEasing,
		"marker.exit_easing":  c.Marker.ExitEasing,
	}
	for i, s := range c.Tour {
		easings[fmt.Sprintf("tour[%d].easing", i)] = tween.Easing(s.Easing)
	}
	for key, e := range easings {
		if e == "" {
			continue
		}
		if _, err := tween.ParseEasing(e); err != nil {
			return fmt.Errorf("%w: %s %q", ErrInvalidEasing, key, e)
		}
	}
	for i, s := range c.Tour {
		if s.Coordinates[0] < -90 || s.Coordinates[0] > 90 {
			return fmt.Errorf("%w: tour[%d] latitude %v", ErrInvalidConfig, i, s.Coordinates[0])
		}
		if s.AnimationDuration < 0 {
			return fmt.Errorf("%w: tour[%d] negative duration", ErrInvalidConfig, i)
		}
	}
	return nil
}

// LookAtCoordinates returns the parsed initial camera target.
func (c *Config) LookAtCoordinates() geo.Coordinates {
	return c.lookAt
}

// TourSteps converts the configured tour into script steps.
func (c *Config) TourSteps() []script.Step {
	steps := make([]script.Step, 0, len(c.Tour))
	for _, s := range c.Tour {
		steps = append(steps, script.Step{
			Coordinates:         geo.Coordinates{Lat: s.Coordinates[0], Lon: s.Coordinates[1]},
			AnimationDuration:   s.AnimationDuration,
			DistanceRadiusScale: s.DistanceRadiusScale,
			Easing:              tween.Easing(s.Easing),
		})
	}
	return steps
}

// ParseCoordinates parses "lat,lon".
func ParseCoordinates(s string) (geo.Coordinates, error) {
	parts := strings.Split(s, ",")
	if len(parts) != 2 {
		return geo.Coordinates{}, fmt.Errorf("want lat,lon, got %q", s)
	}
	lat, err := strconv.ParseFloat(strings.TrimSpace(parts[0]), 64)
	if err != nil {
		return geo.Coordinates{}, fmt.Errorf("latitude: %w", err)
	}
	lon, err := strconv.ParseFloat(strings.TrimSpace(parts[1]), 64)
	if err != nil {
		return geo.Coordinates{}, fmt.Errorf("longitude: %w", err)
	}
	if lat < -90 || lat > 90 {
		return geo.Coordinates{}, fmt.Errorf("latitude %v out of range", lat)
	}
	return geo.Coordinates{Lat: lat, Lon: lon}, nil
}
