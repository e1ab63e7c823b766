package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/spf13/pflag"

	"github.com/litescript/ls-globe/internal/camera"
	"github.com/litescript/ls-globe/internal/geo"
	"github.com/litescript/ls-globe/internal/markers"
	"github.com/litescript/ls-globe/internal/tween"
)

func writeConfig(t *testing.T, name, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func newFlags(t *testing.T, args ...string) *pflag.FlagSet {
	t.Helper()
	fs := pflag.NewFlagSet("test", pflag.ContinueOnError)
	RegisterFlags(fs)
	if err := fs.Parse(args); err != nil {
		t.Fatal(err)
	}
	return fs
}

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load("", nil)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.FPS != 30 {
		t.Errorf("FPS = %d, want 30", cfg.FPS)
	}
	if cfg.Camera != camera.DefaultOptions() {
		t.Errorf("Camera = %+v, want defaults", cfg.Camera)
	}
	if cfg.Focus != camera.DefaultFocusOptions() {
		t.Errorf("Focus = %+v, want defaults", cfg.Focus)
	}
	d := markers.DefaultOptions()
	if cfg.Marker.Type != markers.Dot || cfg.Marker.ActiveScale != d.ActiveScale || cfg.Marker.RadiusScaleRange != d.RadiusScaleRange {
		t.Errorf("Marker = %+v, want dot defaults", cfg.Marker)
	}
	if !cfg.Marker.EnableGlow {
		t.Error("Marker.EnableGlow = false, want true for dots")
	}
	if cfg.Lights.PointLightPositionRadiusScales != [3]float64{-2, 1, -1} {
		t.Errorf("PointLightPositionRadiusScales = %v", cfg.Lights.PointLightPositionRadiusScales)
	}
	if cfg.FeedRefresh != 30*time.Second {
		t.Errorf("FeedRefresh = %v, want 30s", cfg.FeedRefresh)
	}
	if cfg.LookAtCoordinates() != (geo.Coordinates{}) {
		t.Errorf("LookAt = %v, want origin", cfg.LookAtCoordinates())
	}
}

func TestLoadFile(t *testing.T) {
	path := writeConfig(t, "globe.yaml", `
fps: 20
look_at: "1.3521, 103.8198"
focus:
  animation_duration: 1500ms
  easing: Quadratic.InOut
marker:
  type: bar
globe:
  enable_clouds: false
  glow_color: "#ff8800"
tour:
  - coordinates: [1.3521, 103.8198]
    animation_duration: 2s
  - coordinates: [51.5, -0.12]
    animation_duration: 3s
    distance_radius_scale: 2
    easing: Back.Out
`)
	cfg, err := Load(path, nil)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.FPS != 20 {
		t.Errorf("FPS = %d, want 20", cfg.FPS)
	}
	if want := (geo.Coordinates{Lat: 1.3521, Lon: 103.8198}); cfg.LookAtCoordinates() != want {
		t.Errorf("LookAt = %v, want %v", cfg.LookAtCoordinates(), want)
	}
	if cfg.Focus.AnimationDuration != 1500*time.Millisecond || cfg.Focus.Easing != tween.QuadraticInOut {
		t.Errorf("Focus = %+v", cfg.Focus)
	}
	if !cfg.Focus.EnableDefocus {
		t.Error("Focus.EnableDefocus lost its default")
	}
	bar := markers.DefaultBarOptions()
	if cfg.Marker.Type != markers.Bar || cfg.Marker.RadiusScaleRange != bar.RadiusScaleRange || cfg.Marker.EnableGlow {
		t.Errorf("Marker = %+v, want bar defaults", cfg.Marker)
	}
	if cfg.Globe.EnableClouds || cfg.Globe.GlowColor != "#ff8800" || !cfg.Globe.EnableGlow {
		t.Errorf("Globe = %+v", cfg.Globe)
	}

	steps := cfg.TourSteps()
	if len(steps) != 2 {
		t.Fatalf("TourSteps = %d, want 2", len(steps))
	}
	if steps[1].Coordinates != (geo.Coordinates{Lat: 51.5, Lon: -0.12}) || steps[1].AnimationDuration != 3*time.Second {
		t.Errorf("step 1 = %+v", steps[1])
	}
	if steps[1].Easing != tween.BackOut || steps[1].DistanceRadiusScale != 2 {
		t.Errorf("step 1 options = %+v", steps[1])
	}
	if steps[0].Easing != "" {
		t.Errorf("step 0 easing = %q, want empty", steps[0].Easing)
	}
}

func TestLoadPrecedence(t *testing.T) {
	path := writeConfig(t, "globe.json", `{"fps": 10, "frames": 5, "stream_url": "ws://file"}`)
	t.Setenv("LSGLOBE_FPS", "15")
	t.Setenv("LSGLOBE_STREAM_URL", "ws://env")
	fs := newFlags(t, "--fps", "25")

	cfg, err := Load(path, fs)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.FPS != 25 {
		t.Errorf("FPS = %d, want flag value 25", cfg.FPS)
	}
	if cfg.StreamURL != "ws://env" {
		t.Errorf("StreamURL = %q, want env value", cfg.StreamURL)
	}
	if cfg.Frames != 5 {
		t.Errorf("Frames = %d, want file value 5", cfg.Frames)
	}
}

func TestLoadNestedEnv(t *testing.T) {
	t.Setenv("LSGLOBE_CAMERA_ENABLE_AUTO_ROTATE", "false")
	cfg, err := Load("", nil)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.Camera.EnableAutoRotate {
		t.Error("Camera.EnableAutoRotate = true, want env override false")
	}
}

func TestLoadFlagMarkerType(t *testing.T) {
	cfg, err := Load("", newFlags(t, "--marker-type", "bar", "--auto-rotate=false"))
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.Marker.Type != markers.Bar || cfg.Marker.ActiveScale != 1.1 {
		t.Errorf("Marker = %+v, want bar defaults", cfg.Marker)
	}
	if cfg.Camera.EnableAutoRotate {
		t.Error("Camera.EnableAutoRotate = true, want false")
	}
}

func TestLoadErrors(t *testing.T) {
	tests := []struct {
		name string
		body string
		want error
	}{
		{"focus easing", `{"focus": {"easing": "Wobbly.In"}}`, ErrInvalidEasing},
		{"tour easing", `{"tour": [{"coordinates": [0, 0], "easing": "nope"}]}`, ErrInvalidEasing},
		{"fps", `{"fps": 0}`, ErrInvalidConfig},
		{"marker type", `{"marker": {"type": "cone"}}`, ErrInvalidConfig},
		{"look at", `{"look_at": "north"}`, ErrInvalidConfig},
		{"log level", `{"log_level": "loud"}`, ErrInvalidConfig},
		{"tour latitude", `{"tour": [{"coordinates": [100, 0]}]}`, ErrInvalidConfig},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Load(writeConfig(t, "c.json", tt.body), nil)
			if !errors.Is(err, tt.want) {
				t.Errorf("Load() error = %v, want %v", err, tt.want)
			}
		})
	}
}

func TestLoadMissingFile(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "missing.yaml"), nil); err == nil {
		t.Error("Load(missing) error = nil")
	}
}

func TestParseCoordinates(t *testing.T) {
	tests := []struct {
		in      string
		want    geo.Coordinates
		wantErr bool
	}{
		{"0,0", geo.Coordinates{}, false},
		{" -33.86 , 151.21 ", geo.Coordinates{Lat: -33.86, Lon: 151.21}, false},
		{"91,0", geo.Coordinates{}, true},
		{"1", geo.Coordinates{}, true},
		{"a,b", geo.Coordinates{}, true},
	}
	for _, tt := range tests {
		got, err := ParseCoordinates(tt.in)
		if (err != nil) != tt.wantErr {
			t.Errorf("ParseCoordinates(%q) error = %v, wantErr %v", tt.in, err, tt.wantErr)
			continue
		}
		if !tt.wantErr && got != tt.want {
			t.Errorf("ParseCoordinates(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}
}
