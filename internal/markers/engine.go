package markers

import (
	"sort"
	"time"

	"github.com/litescript/ls-globe/internal/geo"
	"github.com/litescript/ls-globe/internal/logging"
	"github.com/litescript/ls-globe/internal/scene"
	"github.com/litescript/ls-globe/internal/tween"
)

// NameGlow names the glow child of a dot marker.
const NameGlow = "MARKER_GLOW"

// Object is the runtime state of one rendered marker.
type Object struct {
	Key     string
	Marker  Marker
	Node    *scene.Node
	size    float64 // current geometry size
	target  float64 // size computed when the marker appeared
	scale   float64 // object scale, driven by enter/hover/exit
	exiting bool

	sizeAnim  tween.Handle
	scaleAnim tween.Handle
}

// Size returns the current geometry size.
func (o *Object) Size() float64 { return o.size }

// Scale returns the current object scale.
func (o *Object) Scale() float64 { return o.scale }

// Exiting reports whether the exit animation is running.
func (o *Object) Exiting() bool { return o.exiting }

// Entering reports whether the enter animation is running.
func (o *Object) Entering() bool { return o.sizeAnim != 0 }

// Diff summarizes one reconciliation pass.
type Diff struct {
	Added   []string
	Updated []string
	Removed []string
}

// Engine owns the keyed collection of marker objects.
type Engine struct {
	graph  *scene.Graph
	root   *scene.Node
	tweens *tween.Engine
	radius float64
	log    *logging.Logger

	opts    Options
	objects map[string]*Object
	byNode  map[scene.ID]string
	active  string

	// OnCreate runs when a marker object is added to the scene.
	OnCreate func(*Object)
	// OnDestroy runs after a marker object leaves the scene.
	OnDestroy func(*Object)
	// OnDeactivate runs when the hovered marker starts its exit.
	OnDeactivate func(*Object)
}

// NewEngine creates an engine that parents marker nodes under root.
func NewEngine(graph *scene.Graph, root *scene.Node, tweens *tween.Engine, radius float64, log *logging.Logger) *Engine {
	if log == nil {
		log = logging.Discard()
	}
	return &Engine{
		graph:   graph,
		root:    root,
		tweens:  tweens,
		radius:  radius,
		log:     log,
		opts:    DefaultOptions(),
		objects: make(map[string]*Object),
		byNode:  make(map[scene.ID]string),
	}
}

// Options returns the options of the last update.
func (e *Engine) Options() Options {
	return e.opts
}

// Update reconciles the live objects with the next full marker list.
// Duplicate keys within one list resolve last-write-wins.
func (e *Engine) Update(next []Marker, opts Options) Diff {
	e.opts = opts.Resolve()

	incoming := make(map[string]Marker, len(next))
	order := make([]string, 0, len(next))
	for _, m := range next {
		k := m.Key()
		if _, dup := incoming[k]; dup {
			e.log.Debug("marker key %q repeated in update, keeping last", k)
		} else {
			order = append(order, k)
		}
		incoming[k] = m
	}

	batch := make([]Marker, 0, len(order))
	for _, k := range order {
		batch = append(batch, incoming[k])
	}
	sizes := SizeScale(batch, e.radius, e.opts.RadiusScaleRange)

	var diff Diff
	for _, k := range order {
		m := incoming[k]
		obj, live := e.objects[k]
		if !live {
			e.create(k, m, sizes.Map(m.Value))
			diff.Added = append(diff.Added, k)
			continue
		}
		obj.Marker = m
		if obj.exiting {
			e.revive(obj)
		}
		e.build(obj)
		e.place(obj)
		diff.Updated = append(diff.Updated, k)
	}

	for _, k := range e.sortedKeys() {
		obj := e.objects[k]
		if _, keep := incoming[k]; keep || obj.exiting {
			continue
		}
		e.exit(obj)
		diff.Removed = append(diff.Removed, k)
	}

	e.log.Debug("markers reconciled: +%d ~%d -%d", len(diff.Added), len(diff.Updated), len(diff.Removed))
	return diff
}

func (e *Engine) create(key string, m Marker, size float64) {
	obj := &Object{Key: key, Marker: m, target: size}
	if e.opts.Renderer != nil {
		obj.Node = e.opts.Renderer(e.graph, m)
	}
	if obj.Node == nil {
		obj.Node = e.graph.NewNode(scene.KindMesh, scene.NameMarker)
	}
	obj.Node.Data = key
	e.objects[key] = obj
	e.byNode[obj.Node.ID] = key
	e.root.Add(obj.Node)
	e.place(obj)

	if e.opts.Renderer != nil {
		obj.size = size
		e.animateScale(obj, 0, 1, e.opts.EnterAnimationDuration, e.opts.EnterEasing, nil)
	} else {
		obj.scale = 1
		obj.Node.Scale = 1
		e.build(obj)
		obj.sizeAnim = e.tweens.Start([]float64{0}, []float64{size}, e.opts.EnterAnimationDuration, e.opts.EnterEasing,
			func(v []float64) {
				obj.size = v[0]
				e.build(obj)
			},
			func() { obj.sizeAnim = 0 })
	}

	if e.OnCreate != nil {
		e.OnCreate(obj)
	}
}

// build applies geometry and material for the current size. Custom nodes
// only receive the color.
func (e *Engine) build(obj *Object) {
	color := obj.Marker.Color
	if color == "" {
		color = DefaultColor
	}
	n := obj.Node
	n.Material.Color = color
	if n.Material.Opacity == 0 {
		n.Material.Opacity = 1
	}
	if e.opts.Renderer != nil {
		return
	}

	switch e.opts.Type {
	case Bar:
		unit := e.radius * UnitRadiusScale
		n.Geometry = scene.Box{Width: unit, Height: unit, Depth: obj.size}
		e.setGlow(obj, false, color)
	default:
		n.Geometry = scene.Sphere{Radius: obj.size, Segments: Segments}
		e.setGlow(obj, e.opts.EnableGlow, color)
	}
}

func (e *Engine) setGlow(obj *Object, enabled bool, color string) {
	glow := obj.Node.FindByName(NameGlow)
	if !enabled {
		if glow != nil {
			glow.Destroy()
		}
		return
	}
	if glow == nil {
		glow = e.graph.NewNode(scene.KindMesh, NameGlow)
		obj.Node.Add(glow)
	}
	glow.Geometry = scene.Sphere{Radius: obj.size * (1 + e.opts.GlowRadiusScale), Segments: Segments}
	glow.Glow = &scene.Glow{
		Color:       color,
		Coefficient: e.opts.GlowCoefficient,
		Power:       e.opts.GlowPower,
		RadiusScale: e.opts.GlowRadiusScale,
	}
}

// HeightOffset returns how far above the surface a marker of the given size
// floats.
func HeightOffset(opts Options, radius, size float64) float64 {
	if opts.OffsetRadiusScale != nil {
		return radius * *opts.OffsetRadiusScale
	}
	if opts.Type == Bar {
		return 0
	}
	return size * (1 + opts.GlowRadiusScale) / 2
}

func (e *Engine) place(obj *Object) {
	h := HeightOffset(e.opts, e.radius, obj.target)
	obj.Node.Position = geo.Project(obj.Marker.Coordinates, e.radius+h)
}

func (e *Engine) animateScale(obj *Object, from, to float64, d time.Duration, easing tween.Easing, done func()) {
	if obj.scaleAnim != 0 {
		e.tweens.Cancel(obj.scaleAnim)
	}
	obj.scale = from
	obj.Node.Scale = from
	obj.scaleAnim = e.tweens.Start([]float64{from}, []float64{to}, d, easing,
		func(v []float64) {
			obj.scale = v[0]
			obj.Node.Scale = v[0]
		},
		func() {
			obj.scaleAnim = 0
			if done != nil {
				done()
			}
		})
}

func (e *Engine) exit(obj *Object) {
	obj.exiting = true
	if e.active == obj.Key {
		e.active = ""
		if e.OnDeactivate != nil {
			e.OnDeactivate(obj)
		}
	}
	e.animateScale(obj, obj.scale, 0, e.opts.ExitAnimationDuration, e.opts.ExitEasing, func() {
		e.destroy(obj)
	})
}

func (e *Engine) revive(obj *Object) {
	obj.exiting = false
	e.animateScale(obj, obj.scale, 1, e.opts.EnterAnimationDuration, e.opts.EnterEasing, nil)
}

func (e *Engine) destroy(obj *Object) {
	if obj.sizeAnim != 0 {
		e.tweens.Cancel(obj.sizeAnim)
		obj.sizeAnim = 0
	}
	if obj.scaleAnim != 0 {
		e.tweens.Cancel(obj.scaleAnim)
		obj.scaleAnim = 0
	}
	delete(e.objects, obj.Key)
	delete(e.byNode, obj.Node.ID)
	obj.Node.Destroy()
	if e.OnDestroy != nil {
		e.OnDestroy(obj)
	}
}

// Activate starts the hover animation on a live marker, deactivating any
// other. It reports whether the marker became active.
func (e *Engine) Activate(key string) bool {
	obj, ok := e.objects[key]
	if !ok || obj.exiting || e.active == key {
		return false
	}
	e.Deactivate()
	e.active = key
	e.animateScale(obj, obj.scale, e.opts.ActiveScale, ActiveAnimationDuration, ActiveEasing, nil)
	return true
}

// Deactivate returns the active marker to its resting scale.
func (e *Engine) Deactivate() (Marker, bool) {
	if e.active == "" {
		return Marker{}, false
	}
	obj, ok := e.objects[e.active]
	e.active = ""
	if !ok {
		return Marker{}, false
	}
	if !obj.exiting {
		e.animateScale(obj, obj.scale, 1, ActiveAnimationDuration, ActiveEasing, nil)
	}
	return obj.Marker, true
}

// Active returns the hovered marker, if any.
func (e *Engine) Active() (Marker, bool) {
	obj, ok := e.objects[e.active]
	if !ok {
		return Marker{}, false
	}
	return obj.Marker, true
}

// Get returns the object for a key, including exiting objects.
func (e *Engine) Get(key string) (*Object, bool) {
	obj, ok := e.objects[key]
	return obj, ok
}

// ByNode resolves a scene node to its marker object.
func (e *Engine) ByNode(id scene.ID) (*Object, bool) {
	k, ok := e.byNode[id]
	if !ok {
		return nil, false
	}
	return e.Get(k)
}

// LiveKeys returns the sorted keys of markers that are not exiting.
func (e *Engine) LiveKeys() []string {
	keys := make([]string, 0, len(e.objects))
	for k, obj := range e.objects {
		if !obj.exiting {
			keys = append(keys, k)
		}
	}
	sort.Strings(keys)
	return keys
}

// Markers returns the live markers ordered by key.
func (e *Engine) Markers() []Marker {
	keys := e.LiveKeys()
	out := make([]Marker, 0, len(keys))
	for _, k := range keys {
		out = append(out, e.objects[k].Marker)
	}
	return out
}

// Len returns the number of objects in the scene, including exiting ones.
func (e *Engine) Len() int {
	return len(e.objects)
}

// Clear cancels every marker animation and removes all objects immediately.
func (e *Engine) Clear() {
	for _, k := range e.sortedKeys() {
		e.destroy(e.objects[k])
	}
	e.active = ""
}

func (e *Engine) sortedKeys() []string {
	keys := make([]string, 0, len(e.objects))
	for k := range e.objects {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
