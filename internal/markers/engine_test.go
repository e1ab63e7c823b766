package markers

import (
	"math"
	"reflect"
	"testing"
	"time"

	"github.com/litescript/ls-globe/internal/geo"
	"github.com/litescript/ls-globe/internal/scene"
	"github.com/litescript/ls-globe/internal/tween"
)

const radius = 300

type fixture struct {
	graph   *scene.Graph
	root    *scene.Node
	tweens  *tween.Engine
	engine  *Engine
	created []string
	removed []string
}

func newFixture() *fixture {
	f := &fixture{graph: scene.NewGraph(), tweens: tween.NewEngine()}
	f.root = f.graph.NewNode(scene.KindGroup, scene.NameMarkerObjects)
	f.engine = NewEngine(f.graph, f.root, f.tweens, radius, nil)
	f.engine.OnCreate = func(o *Object) { f.created = append(f.created, o.Key) }
	f.engine.OnDestroy = func(o *Object) { f.removed = append(f.removed, o.Key) }
	return f
}

func TestKey(t *testing.T) {
	tests := []struct {
		m    Marker
		want string
	}{
		{Marker{ID: "a", Coordinates: geo.Coordinates{Lat: 1, Lon: 2}}, "a"},
		{Marker{Coordinates: geo.Coordinates{Lat: 1, Lon: 2}}, "1,2"},
	}
	for _, tt := range tests {
		if got := tt.m.Key(); got != tt.want {
			t.Errorf("Key() = %q, want %q", got, tt.want)
		}
	}
}

func TestSizeScale(t *testing.T) {
	batch := []Marker{{Value: 1}, {Value: 5}, {Value: 3}}
	s := SizeScale(batch, radius, [2]float64{0.01, 0.05})
	tests := []struct {
		v, want float64
	}{
		{1, 3}, {5, 15}, {3, 9},
	}
	for _, tt := range tests {
		if got := s.Map(tt.v); math.Abs(got-tt.want) > 1e-9 {
			t.Errorf("Map(%v) = %v, want %v", tt.v, got, tt.want)
		}
	}
}

func TestSizeScaleDegenerate(t *testing.T) {
	for _, batch := range [][]Marker{{{Value: 7}}, {{Value: 2}, {Value: 2}}, nil} {
		s := SizeScale(batch, radius, [2]float64{0.01, 0.03})
		got := s.Map(2)
		if math.IsNaN(got) || math.IsInf(got, 0) || math.Abs(got-6) > 1e-9 {
			t.Errorf("degenerate Map = %v, want 6", got)
		}
	}
}

func TestUpdateInPlaceAndEnter(t *testing.T) {
	f := newFixture()
	f.engine.Update([]Marker{{ID: "a", Coordinates: geo.Coordinates{}, Value: 1}}, DefaultOptions())
	f.tweens.Tick(3 * time.Second)
	a, _ := f.engine.Get("a")
	nodeA := a.Node

	diff := f.engine.Update([]Marker{
		{ID: "a", Coordinates: geo.Coordinates{}, Value: 5},
		{ID: "b", Coordinates: geo.Coordinates{Lat: 10, Lon: 10}, Value: 2},
	}, DefaultOptions())

	if !reflect.DeepEqual(diff.Added, []string{"b"}) || !reflect.DeepEqual(diff.Updated, []string{"a"}) || len(diff.Removed) != 0 {
		t.Fatalf("diff = %+v", diff)
	}
	a, _ = f.engine.Get("a")
	if a.Node != nodeA || a.Marker.Value != 5 {
		t.Errorf("marker a not updated in place: node changed=%v value=%v", a.Node != nodeA, a.Marker.Value)
	}
	if a.Entering() || a.Exiting() {
		t.Error("marker a restarted an animation")
	}
	b, ok := f.engine.Get("b")
	if !ok || !b.Entering() || b.Size() != 0 {
		t.Fatalf("marker b not entering: ok=%v", ok)
	}
	if !reflect.DeepEqual(f.created, []string{"a", "b"}) {
		t.Errorf("created = %v", f.created)
	}

	f.tweens.Tick(3*time.Second + AnimationDuration/2)
	if s := b.Size(); s <= 0 {
		t.Errorf("b size mid-enter = %v, want > 0", s)
	}
	f.tweens.Tick(3*time.Second + AnimationDuration)
	// The second batch's domain is [2, 5], so b sits at the range minimum.
	if want := radius * 0.005; math.Abs(b.Size()-want) > 1e-9 {
		t.Errorf("b final size = %v, want %v", b.Size(), want)
	}
}

func TestExitDestroysAfterAnimation(t *testing.T) {
	f := newFixture()
	f.engine.Update([]Marker{{ID: "a"}, {ID: "b", Coordinates: geo.Coordinates{Lat: 5}}}, DefaultOptions())
	f.tweens.Tick(3 * time.Second)

	diff := f.engine.Update([]Marker{{ID: "a"}}, DefaultOptions())
	if !reflect.DeepEqual(diff.Removed, []string{"b"}) {
		t.Fatalf("Removed = %v", diff.Removed)
	}
	b, _ := f.engine.Get("b")
	if !b.Exiting() {
		t.Fatal("b not exiting")
	}
	if f.engine.Len() != 2 {
		t.Errorf("Len() during exit = %d, want 2", f.engine.Len())
	}
	if got := f.engine.LiveKeys(); !reflect.DeepEqual(got, []string{"a"}) {
		t.Errorf("LiveKeys() = %v", got)
	}

	f.tweens.Tick(3*time.Second + AnimationDuration)
	if _, ok := f.engine.Get("b"); ok {
		t.Error("b still present after exit")
	}
	if len(f.root.Children()) != 1 {
		t.Errorf("scene children = %d, want 1", len(f.root.Children()))
	}
	if !reflect.DeepEqual(f.removed, []string{"b"}) {
		t.Errorf("removed = %v", f.removed)
	}
	if _, ok := f.graph.Lookup(b.Node.ID); ok {
		t.Error("destroyed node still registered")
	}
}

func TestExitingMarkerRevives(t *testing.T) {
	f := newFixture()
	f.engine.Update([]Marker{{ID: "a"}}, DefaultOptions())
	f.tweens.Tick(3 * time.Second)
	f.engine.Update(nil, DefaultOptions())
	f.tweens.Tick(3*time.Second + 500*time.Millisecond)

	diff := f.engine.Update([]Marker{{ID: "a"}}, DefaultOptions())
	if !reflect.DeepEqual(diff.Updated, []string{"a"}) {
		t.Fatalf("diff = %+v", diff)
	}
	f.tweens.Tick(10 * time.Second)
	a, ok := f.engine.Get("a")
	if !ok || a.Exiting() || math.Abs(a.Scale()-1) > 1e-9 {
		t.Errorf("revived marker: ok=%v exiting=%v scale=%v", ok, a != nil && a.Exiting(), a.Scale())
	}
	if len(f.removed) != 0 {
		t.Errorf("revived marker was destroyed: %v", f.removed)
	}
}

func TestConvergence(t *testing.T) {
	f := newFixture()
	batches := [][]Marker{
		{{ID: "a"}, {ID: "b"}, {ID: "c"}},
		{{ID: "b"}, {ID: "d"}},
		{{ID: "d"}, {ID: "e"}, {ID: "a"}},
	}
	now := time.Duration(0)
	for _, batch := range batches {
		f.engine.Update(batch, DefaultOptions())
		now += 300 * time.Millisecond
		f.tweens.Tick(now)
	}
	now += 10 * time.Second
	f.tweens.Tick(now)

	want := []string{"a", "d", "e"}
	if got := f.engine.LiveKeys(); !reflect.DeepEqual(got, want) {
		t.Errorf("LiveKeys() = %v, want %v", got, want)
	}
	if f.engine.Len() != len(want) {
		t.Errorf("Len() = %d, want %d", f.engine.Len(), len(want))
	}
}

func TestDuplicateKeysLastWriteWins(t *testing.T) {
	f := newFixture()
	c := geo.Coordinates{Lat: 1, Lon: 1}
	f.engine.Update([]Marker{{Coordinates: c, Value: 1, Color: "#ff0000"}, {Coordinates: c, Value: 9, Color: "#00ff00"}}, DefaultOptions())
	if f.engine.Len() != 1 {
		t.Fatalf("Len() = %d, want 1", f.engine.Len())
	}
	obj, _ := f.engine.Get("1,1")
	if obj.Marker.Value != 9 || obj.Node.Material.Color != "#00ff00" {
		t.Errorf("kept marker = %+v color %s", obj.Marker, obj.Node.Material.Color)
	}
}

func TestHeightOffset(t *testing.T) {
	explicit := 0.2
	tests := []struct {
		name string
		opts Options
		size float64
		want float64
	}{
		{"dot", DefaultOptions(), 2, 2 * (1 + 3) / 2.0},
		{"bar", DefaultBarOptions(), 50, 0},
		{"explicit", func() Options { o := DefaultBarOptions(); o.OffsetRadiusScale = &explicit; return o }(), 50, radius * 0.2},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := HeightOffset(tt.opts, radius, tt.size); math.Abs(got-tt.want) > 1e-9 {
				t.Errorf("HeightOffset = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestPlacement(t *testing.T) {
	f := newFixture()
	c := geo.Coordinates{Lat: 20, Lon: 30}
	f.engine.Update([]Marker{{ID: "x", Coordinates: c, Value: 1}}, DefaultBarOptions())
	obj, _ := f.engine.Get("x")
	if want := geo.Project(c, radius); obj.Node.Position.Sub(want).Norm() > 1e-9 {
		t.Errorf("bar position = %v, want %v", obj.Node.Position, want)
	}
	f.tweens.Tick(5 * time.Second)
	box, ok := obj.Node.Geometry.(scene.Box)
	if !ok {
		t.Fatalf("geometry = %T, want scene.Box", obj.Node.Geometry)
	}
	if want := radius * 0.35; math.Abs(box.Depth-want) > 1e-9 {
		t.Errorf("bar depth = %v, want %v", box.Depth, want)
	}
}

func TestDotGlowChild(t *testing.T) {
	f := newFixture()
	f.engine.Update([]Marker{{ID: "g"}}, DefaultOptions())
	f.tweens.Tick(5 * time.Second)
	obj, _ := f.engine.Get("g")
	glow := obj.Node.FindByName(NameGlow)
	if glow == nil || glow.Glow == nil {
		t.Fatal("dot marker has no glow child")
	}
	if glow.Glow.Color != DefaultColor {
		t.Errorf("glow color = %q, want %q", glow.Glow.Color, DefaultColor)
	}
}

func TestActivateDeactivate(t *testing.T) {
	f := newFixture()
	f.engine.Update([]Marker{{ID: "a"}, {ID: "b", Coordinates: geo.Coordinates{Lat: 3}}}, DefaultOptions())
	f.tweens.Tick(3 * time.Second)

	if !f.engine.Activate("a") {
		t.Fatal("Activate(a) = false")
	}
	if f.engine.Activate("a") {
		t.Error("second Activate(a) = true")
	}
	f.tweens.Tick(3*time.Second + ActiveAnimationDuration)
	a, _ := f.engine.Get("a")
	if math.Abs(a.Scale()-2) > 1e-9 {
		t.Errorf("active scale = %v, want 2", a.Scale())
	}

	f.engine.Activate("b")
	if m, ok := f.engine.Active(); !ok || m.ID != "b" {
		t.Errorf("Active() = %v, %v", m, ok)
	}
	f.tweens.Tick(4 * time.Second)
	if math.Abs(a.Scale()-1) > 1e-9 {
		t.Errorf("a scale after switching = %v, want 1", a.Scale())
	}

	if m, ok := f.engine.Deactivate(); !ok || m.ID != "b" {
		t.Errorf("Deactivate() = %v, %v", m, ok)
	}
	if _, ok := f.engine.Deactivate(); ok {
		t.Error("Deactivate with nothing active returned true")
	}
}

func TestCustomRenderer(t *testing.T) {
	f := newFixture()
	opts := DefaultOptions()
	opts.Renderer = func(g *scene.Graph, m Marker) *scene.Node {
		n := g.NewNode(scene.KindMesh, "CUSTOM")
		n.Geometry = scene.Box{Width: 1, Height: 1, Depth: 1}
		return n
	}
	f.engine.Update([]Marker{{ID: "c"}}, opts)
	obj, _ := f.engine.Get("c")
	if obj.Node.Name != "CUSTOM" {
		t.Fatalf("node name = %q", obj.Node.Name)
	}
	if obj.Scale() != 0 {
		t.Errorf("initial scale = %v, want 0", obj.Scale())
	}
	f.tweens.Tick(5 * time.Second)
	if obj.Scale() != 1 {
		t.Errorf("final scale = %v, want 1", obj.Scale())
	}
	if _, ok := obj.Node.Geometry.(scene.Box); !ok {
		t.Error("custom geometry replaced")
	}
	if got, ok := f.engine.ByNode(obj.Node.ID); !ok || got != obj {
		t.Error("ByNode did not resolve custom node")
	}
}

func TestClear(t *testing.T) {
	f := newFixture()
	f.engine.Update([]Marker{{ID: "a"}, {ID: "b"}}, DefaultOptions())
	f.engine.Clear()
	if f.engine.Len() != 0 || f.tweens.Active() != 0 || len(f.root.Children()) != 0 {
		t.Errorf("after Clear: len=%d tweens=%d children=%d", f.engine.Len(), f.tweens.Active(), len(f.root.Children()))
	}
}

func TestCoordinatesTooltip(t *testing.T) {
	got := CoordinatesTooltip(Marker{Coordinates: geo.Coordinates{Lat: 1.3521, Lon: 103.8198}})
	if got != "[1.3521,103.8198]" {
		t.Errorf("CoordinatesTooltip = %q", got)
	}
}

func TestOptionsResolve(t *testing.T) {
	got := Options{Type: Bar, RadiusScaleRange: [2]float64{0.5, 0.1}}.Resolve()
	if got.ActiveScale != 1.1 {
		t.Errorf("ActiveScale = %v, want 1.1", got.ActiveScale)
	}
	if got.RadiusScaleRange != [2]float64{0.1, 0.5} {
		t.Errorf("RadiusScaleRange = %v", got.RadiusScaleRange)
	}
	if got.EnterEasing != tween.LinearNone || got.TooltipContent == nil {
		t.Errorf("defaults not filled: %+v", got)
	}
	if (Options{Type: "hex"}).Resolve().Type != Dot {
		t.Error("unknown type did not resolve to dot")
	}
}
