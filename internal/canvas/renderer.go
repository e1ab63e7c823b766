// Package canvas renders the globe scene to a grid of terminal cells and
// resolves pointer positions against what was drawn.
package canvas

import (
	"math"
	"math/rand/v2"
	"strings"
	"sync"

	"github.com/charmbracelet/lipgloss"
	"github.com/lucasb-eyer/go-colorful"

	"github.com/litescript/ls-globe/internal/camera"
	"github.com/litescript/ls-globe/internal/geo"
	"github.com/litescript/ls-globe/internal/markers"
	"github.com/litescript/ls-globe/internal/scene"
)

const (
	// CharAspect is the height of a terminal cell relative to its width.
	CharAspect = 2.0
	// StarCount is the number of background stars when no background
	// texture is loaded.
	StarCount = 160

	glyphDot       = '●'
	glyphDotActive = '◉'
	glyphDotSmall  = '·'
	glyphBar       = '┃'
	glyphCustom    = '◆'
	glyphGlow      = '░'
	glyphStar      = '.'
)

type cell struct {
	ch      rune
	fg      colorful.Color
	colored bool
}

// Renderer draws a scene into a character grid. It implements the globe
// renderer and picker interfaces. The frame is safe to read from another
// goroutine.
type Renderer struct {
	mu      sync.Mutex
	width   int
	height  int
	cells   []cell
	hits    []hitCircle
	frame   string
	tooltip *Tooltip
	stars   []geo.Vec3
}

// NewRenderer creates a renderer of the given size in cells.
func NewRenderer(width, height int) *Renderer {
	r := &Renderer{tooltip: &Tooltip{}}
	rng := rand.New(rand.NewPCG(7, 11))
	r.stars = make([]geo.Vec3, StarCount)
	for i := range r.stars {
		// Uniform on the unit sphere.
		z := rng.Float64()*2 - 1
		a := rng.Float64() * 2 * math.Pi
		s := math.Sqrt(1 - z*z)
		r.stars[i] = geo.Vec3{X: s * math.Cos(a), Y: z, Z: s * math.Sin(a)}
	}
	r.SetSize(width, height)
	return r
}

// Tooltip returns the tooltip overlaid on every frame.
func (r *Renderer) Tooltip() *Tooltip {
	return r.tooltip
}

// SetSize resizes the grid. The next Render redraws at the new size.
func (r *Renderer) SetSize(width, height int) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.width = max(width, 0)
	r.height = max(height, 0)
	r.cells = make([]cell, r.width*r.height)
	r.hits = nil
}

// Size returns the grid size in cells.
func (r *Renderer) Size() (width, height int) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.width, r.height
}

// Frame returns the last rendered frame.
func (r *Renderer) Frame() string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.frame
}

// sceneView collects what the renderer needs from one walk of the tree.
type sceneView struct {
	radius        float64
	surface       *scene.Node
	glow          *scene.Node
	clouds        *scene.Node
	background    *scene.Node
	markers       []*scene.Node
	ambient       scene.Light
	point         scene.Light
	pointLocalPos geo.Vec3
}

func collect(root *scene.Node) sceneView {
	var v sceneView
	root.Walk(func(n *scene.Node) bool {
		switch n.Name {
		case scene.NameGlobeSphere:
			v.surface = n
			if s, ok := n.Geometry.(scene.Sphere); ok {
				v.radius = s.Radius * n.WorldScale()
			}
		case scene.NameGlobeGlow:
			v.glow = n
		case scene.NameGlobeClouds:
			v.clouds = n
		case scene.NameGlobeBackground:
			v.background = n
		case scene.NameAmbientLight:
			if n.Light != nil {
				v.ambient = *n.Light
			}
		case scene.NamePointLight:
			if n.Light != nil {
				v.point = *n.Light
			}
			v.pointLocalPos = n.Position
		case scene.NameMarkerObjects:
			for _, m := range n.Children() {
				if m.Visible {
					v.markers = append(v.markers, m)
				}
			}
			return false
		}
		return true
	})
	return v
}

// Render draws root as seen from cam. A cell is twice as tall as it is wide,
// so the projection aspect is corrected accordingly.
func (r *Renderer) Render(root *scene.Node, cam camera.Camera) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.width == 0 || r.height == 0 || root == nil {
		r.frame = ""
		r.hits = nil
		return
	}
	cam.Aspect = float64(r.width) / (float64(r.height) * CharAspect)
	v := collect(root)
	for i := range r.cells {
		r.cells[i] = cell{ch: ' '}
	}

	r.drawBackground(v, cam)
	if v.surface != nil && v.radius > 0 {
		r.drawGlobe(v, cam)
	}
	r.hits = r.hits[:0]
	r.drawMarkers(v, cam)
	sortHits(r.hits)
	r.drawTooltip()
	r.frame = r.compose()
}

func (r *Renderer) set(x, y int, ch rune, fg colorful.Color) {
	if x < 0 || y < 0 || x >= r.width || y >= r.height {
		return
	}
	r.cells[y*r.width+x] = cell{ch: ch, fg: fg, colored: true}
}

// toCell converts normalized device coordinates to a cell position.
func (r *Renderer) toCell(nx, ny float64) (float64, float64) {
	return (nx + 1) / 2 * float64(r.width), (1 - ny) / 2 * float64(r.height)
}

// ndc returns the normalized device coordinates at the center of cell (x, y).
func (r *Renderer) ndc(x, y int) (float64, float64) {
	nx := (float64(x)+0.5)/float64(r.width)*2 - 1
	ny := 1 - (float64(y)+0.5)/float64(r.height)*2
	return nx, ny
}

func (r *Renderer) drawBackground(v sceneView, cam camera.Camera) {
	if v.background == nil {
		return
	}
	tex := v.background.Material.Texture
	if tex != nil && tex.Image != nil {
		for y := 0; y < r.height; y++ {
			for x := 0; x < r.width; x++ {
				nx, ny := r.ndc(x, y)
				dir := cam.Ray(nx, ny)
				c, ok := sampleTexture(tex.Image, geo.Unproject(dir))
				if !ok || luminance(c) < 0.15 {
					continue
				}
				r.set(x, y, glyphStar, c)
			}
		}
		return
	}
	// Stars sit on the background sphere so they turn with the camera.
	far := v.radius * 10
	if far <= 0 {
		far = cam.Far / 10
	}
	for _, s := range r.stars {
		nx, ny, _, ok := cam.ToNDC(s.Scale(far))
		if !ok || math.Abs(nx) > 1 || math.Abs(ny) > 1 {
			continue
		}
		cx, cy := r.toCell(nx, ny)
		r.set(int(cx), int(cy), glyphStar, starColor)
	}
}

// intersect returns the nearest positive distance along dir from origin to a
// sphere of radius at the world origin.
func intersect(origin, dir geo.Vec3, radius float64) (float64, bool) {
	b := origin.Dot(dir)
	c := origin.Dot(origin) - radius*radius
	disc := b*b - c
	if disc < 0 {
		return 0, false
	}
	t := -b - math.Sqrt(disc)
	if t <= 0 {
		t = -b + math.Sqrt(disc)
	}
	return t, t > 0
}

// lightPosition returns the point light in world space. The light node is a
// child of the camera, so its position is in camera-local axes with +Z
// pointing back toward the viewer.
func lightPosition(cam camera.Camera, local geo.Vec3) geo.Vec3 {
	forward, right, up := cam.Basis()
	return cam.Position.Add(right.Scale(local.X)).Add(up.Scale(local.Y)).Add(forward.Scale(-local.Z))
}

func (r *Renderer) drawGlobe(v sceneView, cam camera.Camera) {
	light := lightPosition(cam, v.pointLocalPos)
	ambient := parseHex(v.ambient.Color, colorful.Color{R: 1, G: 1, B: 1})
	point := parseHex(v.point.Color, colorful.Color{R: 1, G: 1, B: 1})
	tint := parseHex(v.surface.Material.Color, colorful.Color{R: 1, G: 1, B: 1})

	var glow *scene.Glow
	glowColor := black
	if v.glow != nil && v.glow.Glow != nil {
		glow = v.glow.Glow
		glowColor = parseHex(glow.Color, colorful.Color{R: 1, G: 1, B: 1})
	}

	for y := 0; y < r.height; y++ {
		for x := 0; x < r.width; x++ {
			nx, ny := r.ndc(x, y)
			dir := cam.Ray(nx, ny)
			t, hit := intersect(cam.Position, dir, v.radius)
			if !hit {
				if glow != nil {
					r.drawGlowCell(x, y, cam.Position, dir, v.radius, glow, glowColor)
				}
				continue
			}
			p := cam.Position.Add(dir.Scale(t))
			normal := p.Normalized()
			coords := geo.Unproject(p)

			base := surfaceColor(coords)
			if tex := v.surface.Material.Texture; tex != nil && tex.Image != nil {
				if c, ok := sampleTexture(tex.Image, coords); ok {
					base = c
				}
			}
			base = multiply(base, tint)
			base = r.applyClouds(v, base, p)

			lambert := math.Max(0, normal.Dot(light.Sub(p).Normalized()))
			lit := colorful.Color{
				R: 0.3*v.ambient.Intensity*ambient.R + 0.6*v.point.Intensity*lambert*point.R,
				G: 0.3*v.ambient.Intensity*ambient.G + 0.6*v.point.Intensity*lambert*point.G,
				B: 0.3*v.ambient.Intensity*ambient.B + 0.6*v.point.Intensity*lambert*point.B,
			}
			c := multiply(base, lit).Clamped()
			r.set(x, y, rampGlyph(0.35+luminance(lit)*0.65), c)
		}
	}
}

func (r *Renderer) drawGlowCell(x, y int, origin, dir geo.Vec3, radius float64, g *scene.Glow, color colorful.Color) {
	if g.RadiusScale <= 0 {
		return
	}
	b := origin.Dot(dir)
	if b > 0 {
		return
	}
	closest := math.Sqrt(math.Max(0, origin.Dot(origin)-b*b))
	frac := (closest - radius) / (radius * g.RadiusScale)
	if frac < 0 || frac >= 1 {
		return
	}
	power := g.Power
	if power <= 0 {
		power = 1
	}
	k := clamp01(math.Pow(1-frac, power) + g.Coefficient*(1-frac))
	if k < 0.08 {
		return
	}
	r.set(x, y, glyphGlow, scaleColor(color, k))
}

// applyClouds blends the cloud layer over a surface point. The layer rotates
// about the polar axis, so the lookup undoes that rotation.
func (r *Renderer) applyClouds(v sceneView, base colorful.Color, p geo.Vec3) colorful.Color {
	if v.clouds == nil {
		return base
	}
	tex := v.clouds.Material.Texture
	if tex == nil || tex.Image == nil {
		return base
	}
	a := -v.clouds.Rotation.Y
	rotated := geo.Vec3{
		X: p.X*math.Cos(a) + p.Z*math.Sin(a),
		Y: p.Y,
		Z: -p.X*math.Sin(a) + p.Z*math.Cos(a),
	}
	c, ok := sampleTexture(tex.Image, geo.Unproject(rotated))
	if !ok {
		return base
	}
	alpha := clamp01(luminance(c) * v.clouds.Material.Opacity)
	return base.BlendRgb(colorful.Color{R: 1, G: 1, B: 1}, alpha)
}

// visible reports whether p is in front of the globe as seen from the camera.
func visible(cam camera.Camera, p geo.Vec3, radius float64) bool {
	d := p.Sub(cam.Position)
	dist := d.Norm()
	if dist == 0 {
		return false
	}
	t, hit := intersect(cam.Position, d.Scale(1/dist), radius)
	return !hit || t >= dist-radius*1e-3
}

func (r *Renderer) drawMarkers(v sceneView, cam camera.Camera) {
	for _, n := range v.markers {
		if !visible(cam, n.Position, v.radius) {
			continue
		}
		nx, ny, depth, ok := cam.ToNDC(n.Position)
		if !ok || math.Abs(nx) > 1 || math.Abs(ny) > 1 {
			continue
		}
		cx, cy := r.toCell(nx, ny)
		color := parseHex(n.Material.Color, parseHex(markers.DefaultColor, black))

		switch g := n.Geometry.(type) {
		case scene.Box:
			r.drawBar(cam, n, g, cx, cy, color)
		case scene.Sphere:
			ch := rune(glyphDot)
			switch {
			case n.Scale > 1:
				ch = glyphDotActive
			case g.Radius*n.Scale < v.radius*0.002:
				ch = glyphDotSmall
			}
			r.set(int(cx), int(cy), ch, color)
		default:
			if n.Scale <= 0 {
				continue
			}
			r.set(int(cx), int(cy), glyphCustom, color)
		}
		r.hits = append(r.hits, hitCircle{ID: n.ID, CenterX: cx, CenterY: cy, Radius: PickRadius, Depth: depth})
	}
}

// drawBar draws a column from the marker base to its projected top.
func (r *Renderer) drawBar(cam camera.Camera, n *scene.Node, g scene.Box, x0, y0 float64, color colorful.Color) {
	top := n.Position.Add(n.Position.Normalized().Scale(g.Depth * n.Scale))
	nx, ny, _, ok := cam.ToNDC(top)
	if !ok {
		r.set(int(x0), int(y0), glyphBar, color)
		return
	}
	x1, y1 := r.toCell(nx, ny)
	steps := int(math.Max(math.Abs(x1-x0), math.Abs(y1-y0)))
	if steps == 0 {
		r.set(int(x0), int(y0), glyphBar, color)
		return
	}
	for i := 0; i <= steps; i++ {
		f := float64(i) / float64(steps)
		r.set(int(x0+(x1-x0)*f), int(y0+(y1-y0)*f), glyphBar, color)
	}
}

func (r *Renderer) drawTooltip() {
	rows, x0, y0 := r.tooltip.box()
	if rows == nil {
		return
	}
	// Keep the box on screen.
	if w := len(rows[0]); x0+w > r.width {
		x0 = r.width - w
	}
	if y0+len(rows) > r.height {
		y0 = r.height - len(rows)
	}
	x0, y0 = max(x0, 0), max(y0, 0)
	fg := colorful.Color{R: 1, G: 1, B: 1}
	for dy, row := range rows {
		for dx, ch := range row {
			r.set(x0+dx, y0+dy, ch, fg)
		}
	}
}

// compose renders the grid, styling each run of same-colored cells once.
func (r *Renderer) compose() string {
	var b strings.Builder
	var run []rune
	var runColor string
	flush := func() {
		if len(run) == 0 {
			return
		}
		if runColor == "" {
			b.WriteString(string(run))
		} else {
			b.WriteString(lipgloss.NewStyle().Foreground(lipgloss.Color(runColor)).Render(string(run)))
		}
		run = run[:0]
	}
	for y := 0; y < r.height; y++ {
		for x := 0; x < r.width; x++ {
			c := r.cells[y*r.width+x]
			color := ""
			if c.colored && c.ch != ' ' {
				color = c.fg.Clamped().Hex()
			}
			if color != runColor {
				flush()
				runColor = color
			}
			run = append(run, c.ch)
		}
		flush()
		runColor = ""
		if y < r.height-1 {
			b.WriteByte('\n')
		}
	}
	return b.String()
}
