package ui

import (
	"errors"
	"strings"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/litescript/ls-globe/internal/camera"
	"github.com/litescript/ls-globe/internal/geo"
	"github.com/litescript/ls-globe/internal/globe"
	"github.com/litescript/ls-globe/internal/markers"
	"github.com/litescript/ls-globe/internal/script"
	"github.com/litescript/ls-globe/internal/state"
)

var testMarkers = []markers.Marker{
	{ID: "origin", Coordinates: geo.Coordinates{}, Value: 1},
	{ID: "sg", Coordinates: geo.Coordinates{Lat: 1.3521, Lon: 103.8198}, Value: 4, Fields: map[string]any{"city": "Singapore"}},
}

type driver struct {
	t     *testing.T
	m     Model
	clock time.Time
}

func newDriver(t *testing.T, opts Options) *driver {
	t.Helper()
	cam := camera.DefaultOptions()
	cam.EnableAutoRotate = false
	opts.Camera = cam
	opts.Focus = camera.DefaultFocusOptions()
	opts.Marker = markers.DefaultOptions()
	opts.Globe = globe.DefaultGlobeOptions()
	opts.Lights = globe.DefaultLightOptions()
	d := &driver{t: t, m: New(state.NewManager(state.DefaultConfig()), opts), clock: time.Unix(1000, 0)}
	d.send(tea.WindowSizeMsg{Width: 80, Height: 28})
	return d
}

func (d *driver) send(msg tea.Msg) tea.Cmd {
	next, cmd := d.m.Update(msg)
	d.m = next.(Model)
	return cmd
}

func (d *driver) run(dur time.Duration) {
	for end := d.clock.Add(dur); d.clock.Before(end); {
		d.clock = d.clock.Add(50 * time.Millisecond)
		d.send(FrameMsg(d.clock))
	}
}

func (d *driver) key(s string) tea.Cmd {
	switch s {
	case "esc":
		return d.send(tea.KeyMsg{Type: tea.KeyEsc})
	default:
		return d.send(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)})
	}
}

func TestViewBeforeReady(t *testing.T) {
	m := New(nil, Options{})
	if got := m.View(); got != "Initializing..." {
		t.Errorf("View() = %q, want Initializing...", got)
	}
}

func TestMarkersMsgUpdatesGlobeAndState(t *testing.T) {
	d := newDriver(t, Options{})
	d.send(MarkersMsg{Source: "file", Markers: testMarkers})
	d.run(100 * time.Millisecond)

	if got := d.m.Controller().Status().Markers; got != 2 {
		t.Errorf("Markers = %d, want 2", got)
	}
	if n := len(d.m.state.RecentEvents(10)); n != 2 {
		t.Errorf("state events = %d, want 2", n)
	}

	d.send(MarkersMsg{Source: "http", Error: errors.New("boom")})
	if got := d.m.Controller().Status().Markers; got != 2 {
		t.Errorf("Markers after error = %d, want 2", got)
	}
	if !strings.Contains(d.m.View(), "boom") {
		t.Error("View() missing feed error")
	}
}

func TestKeyFocusCycle(t *testing.T) {
	d := newDriver(t, Options{})
	d.send(MarkersMsg{Source: "file", Markers: testMarkers})
	d.run(100 * time.Millisecond)

	d.key("n")
	st := d.m.Controller().Status()
	if st.Focus == nil || *st.Focus != testMarkers[0].Coordinates {
		t.Fatalf("Focus after n = %v, want origin", st.Focus)
	}
	d.key("n")
	if st := d.m.Controller().Status(); st.Focus == nil || *st.Focus != testMarkers[1].Coordinates {
		t.Errorf("Focus after n n = %v, want sg", st.Focus)
	}
	d.key("p")
	if st := d.m.Controller().Status(); st.Focus == nil || *st.Focus != testMarkers[0].Coordinates {
		t.Errorf("Focus after p = %v, want origin", st.Focus)
	}

	d.run(1100 * time.Millisecond)
	if st := d.m.Controller().Status(); st.State != camera.Focused {
		t.Errorf("State = %v, want focused", st.State)
	}
	d.key("esc")
	d.run(1100 * time.Millisecond)
	if st := d.m.Controller().Status(); st.State != camera.Free || st.Focus != nil {
		t.Errorf("after esc: State = %v Focus = %v, want free", st.State, st.Focus)
	}
}

func TestMouseClickFocusesMarker(t *testing.T) {
	d := newDriver(t, Options{})
	d.send(MarkersMsg{Source: "file", Markers: testMarkers[:1]})
	d.run(2100 * time.Millisecond)

	// The canvas is 80x24 below a two-row header; the origin marker sits at
	// its center.
	x, y := 40, 12+headerRows
	d.send(tea.MouseMsg{X: x, Y: y, Action: tea.MouseActionPress, Button: tea.MouseButtonLeft})
	d.send(tea.MouseMsg{X: x, Y: y, Action: tea.MouseActionRelease, Button: tea.MouseButtonLeft})

	st := d.m.Controller().Status()
	if st.Focus == nil || *st.Focus != testMarkers[0].Coordinates {
		t.Fatalf("Focus after click = %v, want origin", st.Focus)
	}
	if d.m.notices.clicked != "origin" {
		t.Errorf("clicked = %q, want origin", d.m.notices.clicked)
	}
}

func TestMouseHoverShowsDetail(t *testing.T) {
	d := newDriver(t, Options{})
	d.send(MarkersMsg{Source: "file", Markers: testMarkers[:1]})
	d.run(2100 * time.Millisecond)

	d.send(tea.MouseMsg{X: 40, Y: 12 + headerRows, Action: tea.MouseActionMotion, Button: tea.MouseButtonNone})
	d.run(200 * time.Millisecond)

	if got := d.m.Controller().Status().Active; got != "origin" {
		t.Errorf("Active = %q, want origin", got)
	}
	if !strings.Contains(d.m.View(), "value=1") {
		t.Error("View() missing hovered marker detail")
	}
}

func TestMouseDragOrbits(t *testing.T) {
	d := newDriver(t, Options{})
	d.run(100 * time.Millisecond)
	before := d.m.Controller().Status().CameraPosition

	d.send(tea.MouseMsg{X: 10, Y: 10, Action: tea.MouseActionPress, Button: tea.MouseButtonLeft})
	d.send(tea.MouseMsg{X: 20, Y: 10, Action: tea.MouseActionMotion, Button: tea.MouseButtonLeft})
	d.send(tea.MouseMsg{X: 20, Y: 10, Action: tea.MouseActionRelease, Button: tea.MouseButtonLeft})
	d.run(500 * time.Millisecond)

	after := d.m.Controller().Status().CameraPosition
	if before.Sub(after).Norm() < 1 {
		t.Errorf("camera did not orbit: before %v after %v", before, after)
	}
	if st := d.m.Controller().Status(); st.Focus != nil {
		t.Errorf("drag focused %v, want no click", st.Focus)
	}
}

func TestTourToggle(t *testing.T) {
	tour := []script.Step{
		{Coordinates: geo.Coordinates{Lat: 10}, AnimationDuration: time.Second},
		{Coordinates: geo.Coordinates{Lat: 20}, AnimationDuration: time.Second},
	}
	d := newDriver(t, Options{Tour: tour})
	d.run(100 * time.Millisecond)

	d.key("t")
	if !d.m.Controller().Status().TourRunning {
		t.Fatal("tour not running after t")
	}
	d.key("t")
	if d.m.Controller().Status().TourRunning {
		t.Error("tour still running after second t")
	}
}

func TestTourFromMarkers(t *testing.T) {
	d := newDriver(t, Options{})
	d.key("t")
	if d.m.Controller().Status().TourRunning {
		t.Error("tour started with no markers")
	}
	d.send(MarkersMsg{Source: "file", Markers: testMarkers})
	if got := len(d.m.tourSteps()); got != 2 {
		t.Errorf("tourSteps = %d, want 2", got)
	}
}

func TestFreezeToggle(t *testing.T) {
	d := newDriver(t, Options{})
	d.key("f")
	if !d.m.Controller().Status().Frozen {
		t.Fatal("not frozen after f")
	}
	d.key("f")
	if d.m.Controller().Status().Frozen {
		t.Error("still frozen after second f")
	}
}

func TestQuitDestroysController(t *testing.T) {
	d := newDriver(t, Options{})
	cmd := d.key("q")
	if cmd == nil {
		t.Fatal("q returned nil command")
	}
	if _, ok := cmd().(tea.QuitMsg); !ok {
		t.Errorf("q command = %T, want tea.QuitMsg", cmd())
	}
	if !d.m.Controller().Status().Destroyed {
		t.Error("controller not destroyed on quit")
	}
}

func TestViewLayout(t *testing.T) {
	d := newDriver(t, Options{})
	d.run(100 * time.Millisecond)
	lines := strings.Count(d.m.View(), "\n") + 1
	if lines != 28 {
		t.Errorf("View() lines = %d, want 28", lines)
	}
}

func TestGradientColor(t *testing.T) {
	if got := gradientColor(0, 10); got != "#3b82f6" {
		t.Errorf("gradientColor(0) = %s, want #3b82f6", got)
	}
	if got := gradientColor(9, 10); got != "#ec4899" {
		t.Errorf("gradientColor(9) = %s, want #ec4899", got)
	}
}

func TestMarkerDetail(t *testing.T) {
	got := markerDetail(markers.Marker{Value: 2.5, Fields: map[string]any{"b": 1, "a": "x"}})
	if want := "value=2.5 a=x b=1"; got != want {
		t.Errorf("markerDetail() = %q, want %q", got, want)
	}
}
