package canvas

import (
	"image"
	"image/color"
	"image/png"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/litescript/ls-globe/internal/camera"
	"github.com/litescript/ls-globe/internal/geo"
	"github.com/litescript/ls-globe/internal/globe"
	"github.com/litescript/ls-globe/internal/interact"
	"github.com/litescript/ls-globe/internal/markers"
	"github.com/litescript/ls-globe/internal/scene"
)

const (
	testWidth  = 80
	testHeight = 24
)

func newGlobe(t *testing.T) (*globe.Controller, *Renderer) {
	t.Helper()
	r := NewRenderer(testWidth, testHeight)
	c := globe.New(globe.DefaultConfig(), globe.Deps{Renderer: r, Picker: r, Tooltip: r.Tooltip()})
	opts := camera.DefaultOptions()
	opts.EnableAutoRotate = false
	c.UpdateCamera(geo.Coordinates{}, opts)
	c.Resize(testWidth, testHeight)
	return c, r
}

func run(c *globe.Controller, from, to time.Duration) {
	for now := from; now <= to; now += 50 * time.Millisecond {
		c.Tick(now)
	}
}

func TestFrameDimensions(t *testing.T) {
	c, r := newGlobe(t)
	c.Tick(0)

	frame := r.Frame()
	if got := strings.Count(frame, "\n") + 1; got != testHeight {
		t.Errorf("frame lines = %d, want %d", got, testHeight)
	}
	w, h := r.Size()
	if w != testWidth || h != testHeight {
		t.Errorf("Size() = %dx%d, want %dx%d", w, h, testWidth, testHeight)
	}
}

func TestGlobeFillsCenter(t *testing.T) {
	c, r := newGlobe(t)
	c.Tick(0)

	mid := r.cells[(testHeight/2)*testWidth+testWidth/2]
	if !mid.colored || mid.ch == ' ' {
		t.Errorf("center cell = %q, want globe surface", mid.ch)
	}
	corner := r.cells[0]
	if corner.ch != ' ' && corner.ch != glyphStar {
		t.Errorf("corner cell = %q, want background", corner.ch)
	}
}

func TestPickFrontMarker(t *testing.T) {
	c, r := newGlobe(t)
	c.UpdateMarkers([]markers.Marker{{ID: "front", Coordinates: geo.Coordinates{}, Value: 1}}, markers.DefaultOptions())
	run(c, 0, 2100*time.Millisecond)

	id := r.Pick(testWidth/2, testHeight/2)
	if id == 0 {
		t.Fatal("Pick(center) = 0, want marker")
	}
	n, ok := c.Graph().Lookup(id)
	if !ok || n.Data != "front" {
		t.Errorf("picked node data = %v, want front", n.Data)
	}
	if !strings.ContainsRune(r.Frame(), glyphDot) {
		t.Error("frame missing marker glyph")
	}
	if got := r.Pick(0, 0); got != 0 {
		t.Errorf("Pick(0, 0) = %d, want 0", got)
	}
}

func TestOccludedMarkerNotPickable(t *testing.T) {
	c, r := newGlobe(t)
	c.UpdateMarkers([]markers.Marker{{ID: "back", Coordinates: geo.Coordinates{Lon: 180}, Value: 1}}, markers.DefaultOptions())
	run(c, 0, 2100*time.Millisecond)

	if id := r.Pick(testWidth/2, testHeight/2); id != 0 {
		t.Errorf("Pick(center) = %d, want 0 for marker behind the globe", id)
	}
}

func TestBarDrawsColumn(t *testing.T) {
	c, r := newGlobe(t)
	c.UpdateCamera(geo.Coordinates{Lat: 30}, func() camera.Options {
		o := camera.DefaultOptions()
		o.EnableAutoRotate = false
		return o
	}())
	c.UpdateMarkers([]markers.Marker{{ID: "bar", Coordinates: geo.Coordinates{}, Value: 1}}, markers.DefaultBarOptions())
	run(c, 0, 2100*time.Millisecond)

	n := 0
	for _, cl := range r.cells {
		if cl.ch == glyphBar {
			n++
		}
	}
	if n < 2 {
		t.Errorf("bar cells = %d, want a column of at least 2", n)
	}
}

func TestHoverDrawsTooltip(t *testing.T) {
	c, r := newGlobe(t)
	c.UpdateMarkers([]markers.Marker{{ID: "front", Coordinates: geo.Coordinates{}, Value: 1}}, markers.DefaultOptions())
	run(c, 0, 2100*time.Millisecond)

	c.HandlePointer(globe.PointerEvent{Type: interact.MouseMove, X: testWidth / 2, Y: testHeight / 2})
	run(c, 2150*time.Millisecond, 2300*time.Millisecond)

	content, ok := r.Tooltip().Visible()
	if !ok || content != "[0,0]" {
		t.Errorf("tooltip = %q visible=%v, want [0,0]", content, ok)
	}
	if !strings.Contains(r.Frame(), "[0,0]") {
		t.Error("frame missing tooltip content")
	}
}

func TestTooltipDestroy(t *testing.T) {
	var tt Tooltip
	tt.Show(1, 2, "hello")
	if _, ok := tt.Visible(); !ok {
		t.Fatal("tooltip not visible after Show")
	}
	tt.Destroy()
	tt.Show(1, 2, "again")
	if _, ok := tt.Visible(); ok {
		t.Error("tooltip visible after Destroy")
	}
}

func TestBoxRows(t *testing.T) {
	rows := boxRows("ab\nlonger")
	if len(rows) != 4 {
		t.Fatalf("rows = %d, want 4", len(rows))
	}
	for i, row := range rows {
		if len(row) != len(rows[0]) {
			t.Errorf("row %d width = %d, want %d", i, len(row), len(rows[0]))
		}
	}
}

func TestHitCircleAspect(t *testing.T) {
	h := hitCircle{CenterX: 10, CenterY: 10, Radius: 1.5}
	tests := []struct {
		x, y float64
		want bool
	}{
		{10, 10, true},
		{11.4, 10, true},
		{12, 10, false},
		{10, 10.7, true},
		{10, 11, false},
	}
	for _, tt := range tests {
		if got := h.contains(tt.x, tt.y); got != tt.want {
			t.Errorf("contains(%v, %v) = %v, want %v", tt.x, tt.y, got, tt.want)
		}
	}
}

func TestSampleTexture(t *testing.T) {
	img := image.NewRGBA(image.Rect(0, 0, 2, 1))
	img.Set(0, 0, color.RGBA{R: 255, A: 255})
	img.Set(1, 0, color.RGBA{B: 255, A: 255})

	west, ok := sampleTexture(img, geo.Coordinates{Lon: -90})
	if !ok || west.R < 0.99 {
		t.Errorf("west texel = %v, want red", west)
	}
	east, _ := sampleTexture(img, geo.Coordinates{Lon: 180})
	if east.B < 0.99 {
		t.Errorf("east texel = %v, want blue", east)
	}
	if _, ok := sampleTexture(nil, geo.Coordinates{}); ok {
		t.Error("sampleTexture(nil) ok = true, want false")
	}
}

func writePNG(t *testing.T, path string) {
	t.Helper()
	f, err := os.Create(path)
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()
	if err := png.Encode(f, image.NewRGBA(image.Rect(0, 0, 4, 2))); err != nil {
		t.Fatal(err)
	}
}

type loadResult struct {
	tex scene.Texture
	err error
}

func load(t *testing.T, l *Loader, src string) loadResult {
	t.Helper()
	ch := make(chan loadResult, 1)
	l.Load(src, func(tex scene.Texture, err error) { ch <- loadResult{tex, err} })
	select {
	case res := <-ch:
		return res
	case <-time.After(5 * time.Second):
		t.Fatalf("load %q timed out", src)
		return loadResult{}
	}
}

func TestLoaderFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "earth.png")
	writePNG(t, path)

	res := load(t, NewLoader(), path)
	if res.err != nil {
		t.Fatalf("Load() error = %v", res.err)
	}
	if res.tex.Image == nil || res.tex.Image.Bounds().Dx() != 4 {
		t.Errorf("Load() image = %v, want 4x2", res.tex.Image)
	}
	if res.tex.Source != path {
		t.Errorf("Source = %q, want %q", res.tex.Source, path)
	}
}

func TestLoaderHTTP(t *testing.T) {
	path := filepath.Join(t.TempDir(), "clouds.png")
	writePNG(t, path)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
		if req.URL.Path != "/clouds.png" {
			http.NotFound(w, req)
			return
		}
		http.ServeFile(w, req, path)
	}))
	defer srv.Close()

	l := NewLoader(WithLoaderHTTPClient(srv.Client()))
	if res := load(t, l, srv.URL+"/clouds.png"); res.err != nil {
		t.Errorf("Load() error = %v", res.err)
	}
	if res := load(t, l, srv.URL+"/missing.png"); res.err == nil {
		t.Error("Load(missing) error = nil, want status error")
	}
}

func TestLoaderErrors(t *testing.T) {
	l := NewLoader()
	if res := load(t, l, filepath.Join(t.TempDir(), "nope.png")); res.err == nil {
		t.Error("Load(missing file) error = nil")
	}
	if res := load(t, l, ""); res.err != ErrEmptySource {
		t.Errorf("Load(\"\") error = %v, want ErrEmptySource", res.err)
	}

	bad := filepath.Join(t.TempDir(), "bad.png")
	if err := os.WriteFile(bad, []byte("not an image"), 0o644); err != nil {
		t.Fatal(err)
	}
	if res := load(t, l, bad); res.err == nil {
		t.Error("Load(bad) error = nil, want decode error")
	}
}
