// Package globe composes the camera rig, marker engine, tour runner and
// interaction router into a frame-driven globe controller.
package globe

import (
	"sync"
	"time"

	"github.com/litescript/ls-globe/internal/camera"
	"github.com/litescript/ls-globe/internal/geo"
	"github.com/litescript/ls-globe/internal/interact"
	"github.com/litescript/ls-globe/internal/logging"
	"github.com/litescript/ls-globe/internal/markers"
	"github.com/litescript/ls-globe/internal/scene"
	"github.com/litescript/ls-globe/internal/script"
	"github.com/litescript/ls-globe/internal/tween"
)

// Config holds the fixed controller parameters.
type Config struct {
	Radius        float64
	TooltipOffset int
}

// DefaultConfig returns a reasonable default configuration.
func DefaultConfig() Config {
	return Config{
		Radius:        Radius,
		TooltipOffset: TooltipOffset,
	}
}

// Deps are the collaborators. Any of them may be nil.
type Deps struct {
	Renderer Renderer
	Picker   Picker
	Tooltip  Tooltip
	Loader   TextureLoader
	Logger   *logging.Logger
}

// Status is a read-only view of controller state.
type Status struct {
	State          camera.State
	Focus          *geo.Coordinates
	Locked         bool
	Frozen         bool
	Destroyed      bool
	Markers        int
	Active         string
	TourRunning    bool
	CameraPosition geo.Vec3
}

type focusRequest struct {
	target      *geo.Coordinates
	opts        camera.FocusOptions
	autoDefocus bool
}

type nodes struct {
	root       *scene.Node
	camera     *scene.Node
	ambient    *scene.Node
	point      *scene.Node
	globe      *scene.Node
	sphere     *scene.Node
	glow       *scene.Node
	background *scene.Node
	clouds     *scene.Node
	markers    *scene.Node
}

// Controller owns all globe state. Its methods must be called from a single
// goroutine, normally the frame loop. Texture callbacks may arrive from any
// goroutine and are applied at the start of the next Tick.
type Controller struct {
	cfg  Config
	deps Deps
	log  *logging.Logger

	graph *scene.Graph
	nodes nodes

	cameraTweens *tween.Engine
	markerTweens *tween.Engine
	timers       *tween.Timers

	rig     *camera.Rig
	markers *markers.Engine
	runner  *script.Runner
	router  *interact.Router

	callbacks Callbacks
	focus     *geo.Coordinates
	focusOpts camera.FocusOptions
	globeOpts GlobeOptions
	lightOpts LightOptions

	frozen       bool
	pendingFocus *focusRequest
	destroyed    bool

	mu      sync.Mutex
	inbox   []func()
	texGen  map[string]int
	started bool
	last    time.Duration // last external clock value
	paused  time.Duration // time spent frozen

	pointerX, pointerY int
	pointerValid       bool
	hovered            scene.ID
}

// New builds the scene tree and wires the components.
func New(cfg Config, deps Deps) *Controller {
	if cfg.Radius <= 0 {
		cfg.Radius = Radius
	}
	log := deps.Logger
	if log == nil {
		log = logging.Discard()
	}

	c := &Controller{
		cfg:          cfg,
		deps:         deps,
		log:          log,
		graph:        scene.NewGraph(),
		cameraTweens: tween.NewEngine(),
		markerTweens: tween.NewEngine(),
		timers:       tween.NewTimers(),
		focusOpts:    camera.DefaultFocusOptions(),
		globeOpts:    DefaultGlobeOptions(),
		lightOpts:    DefaultLightOptions(),
		texGen:       make(map[string]int),
	}
	c.buildScene()

	c.rig = camera.NewRig(c.cameraTweens, cfg.Radius, log.With("camera"))
	c.rig.OnSettle(func(s camera.State) {
		c.log.Debug("camera settled: %s", s)
	})
	c.markers = markers.NewEngine(c.graph, c.nodes.markers, c.markerTweens, cfg.Radius, log.With("markers"))
	c.markers.OnCreate = c.registerMarker
	c.markers.OnDestroy = c.unregisterMarker
	c.markers.OnDeactivate = c.markerRemovedWhileHovered
	c.runner = script.NewRunner(c.timers, c.rig.SetFocus, log.With("script"))
	c.router = interact.NewRouter(c.rig.Locked)
	c.router.SetBackground(interact.Handlers{
		Click:     c.backgroundClick,
		MouseMove: c.backgroundMove,
	})

	c.UpdateLights(c.lightOpts)
	return c
}

func (c *Controller) buildScene() {
	g := c.graph
	n := &c.nodes
	n.root = g.NewNode(scene.KindGroup, scene.NameScene)
	n.camera = g.NewNode(scene.KindCamera, scene.NameCamera)
	n.ambient = g.NewNode(scene.KindAmbientLight, scene.NameAmbientLight)
	n.point = g.NewNode(scene.KindPointLight, scene.NamePointLight)
	n.globe = g.NewNode(scene.KindGroup, scene.NameGlobe)
	n.sphere = g.NewNode(scene.KindMesh, scene.NameGlobeSphere)
	n.glow = g.NewNode(scene.KindMesh, scene.NameGlobeGlow)
	n.background = g.NewNode(scene.KindMesh, scene.NameGlobeBackground)
	n.clouds = g.NewNode(scene.KindMesh, scene.NameGlobeClouds)
	n.markers = g.NewNode(scene.KindGroup, scene.NameMarkerObjects)

	n.sphere.Geometry = scene.Sphere{Radius: c.cfg.Radius, Segments: GlobeSegments}
	n.sphere.Material = scene.Material{Color: "#ffffff", Opacity: 1}
	n.glow.Visible = false
	n.background.Visible = false
	n.clouds.Visible = false

	n.camera.Add(n.ambient, n.point)
	n.sphere.Add(n.glow)
	n.globe.Add(n.background, n.sphere, n.clouds, n.markers)
	n.root.Add(n.camera, n.globe)
}

// UpdateCallbacks replaces the host callbacks.
func (c *Controller) UpdateCallbacks(cb Callbacks) {
	c.callbacks = cb
}

// UpdateCamera applies orbit options and, when lookAt changed, repositions the
// free camera.
func (c *Controller) UpdateCamera(lookAt geo.Coordinates, opts camera.Options) {
	if c.destroyed {
		return
	}
	c.rig.Configure(lookAt, opts)
	c.syncCameraNode()
}

// UpdateFocus focuses the camera on target, or defocuses when target is nil.
// While frozen the request is recorded and applied on Unfreeze.
func (c *Controller) UpdateFocus(target *geo.Coordinates, opts camera.FocusOptions, autoDefocus bool) {
	if c.destroyed {
		return
	}
	opts = opts.Resolve()
	var t *geo.Coordinates
	if target != nil {
		v := *target
		t = &v
	}
	if c.frozen {
		c.pendingFocus = &focusRequest{target: t, opts: opts, autoDefocus: autoDefocus}
		return
	}
	if !autoDefocus {
		c.focus = t
	}
	c.focusOpts = opts
	if t != nil {
		c.clearHover(interact.Event{Type: interact.MouseMove})
	}
	c.rig.SetFocus(t, opts, autoDefocus)
}

// UpdateMarkers reconciles the rendered markers with the full list.
func (c *Controller) UpdateMarkers(list []markers.Marker, opts markers.Options) markers.Diff {
	if c.destroyed {
		return markers.Diff{}
	}
	return c.markers.Update(list, opts)
}

// ApplyAnimations replaces the running tour. The returned func cancels it and
// restores the configured focus.
func (c *Controller) ApplyAnimations(steps []script.Step) (cancel func()) {
	if c.destroyed {
		return func() {}
	}
	return c.runner.Start(steps, script.Resume{Target: c.focus, Options: c.focusOpts})
}

// Resize updates the viewport. Focus and marker state are untouched.
func (c *Controller) Resize(width, height int) {
	c.rig.Resize(width, height)
	if c.deps.Renderer != nil {
		c.deps.Renderer.SetSize(width, height)
	}
}

// Orbit rotates the free camera by user input. Ignored while locked or frozen.
func (c *Controller) Orbit(dAzimuth, dPolar float64) {
	if c.frozen || c.destroyed {
		return
	}
	c.rig.Orbit(dAzimuth, dPolar)
}

// Zoom moves the free camera by user input. Ignored while locked or frozen.
func (c *Controller) Zoom(steps float64) {
	if c.frozen || c.destroyed {
		return
	}
	c.rig.Zoom(steps)
}

// Freeze suspends animation, rendering and pointer input.
func (c *Controller) Freeze() {
	c.frozen = true
}

// Unfreeze resumes animation and applies any focus request made while frozen.
func (c *Controller) Unfreeze() {
	if !c.frozen {
		return
	}
	c.frozen = false
	if req := c.pendingFocus; req != nil {
		c.pendingFocus = nil
		c.UpdateFocus(req.target, req.opts, req.autoDefocus)
	}
}

// Tick advances one frame at the given clock value: queued texture results,
// tour timers, camera animation, marker animation, hover re-evaluation,
// clouds, then rendering.
func (c *Controller) Tick(now time.Duration) {
	if c.destroyed {
		return
	}
	c.drainInbox()

	if !c.started {
		c.started = true
		c.last = now
	}
	elapsed := now - c.last
	if elapsed < 0 {
		elapsed = 0
	}
	c.last = now
	if c.frozen {
		c.paused += elapsed
		return
	}
	local := now - c.paused

	c.timers.Tick(local)
	c.cameraTweens.Tick(local)
	c.rig.Tick(elapsed)
	c.syncCameraNode()
	c.markerTweens.Tick(local)
	c.refreshHover()
	c.animateClouds(elapsed)

	if c.deps.Renderer != nil {
		c.deps.Renderer.Render(c.nodes.root, c.rig.Camera())
	}
}

func (c *Controller) syncCameraNode() {
	c.nodes.camera.Position = c.rig.Position()
}

func (c *Controller) animateClouds(dt time.Duration) {
	if !c.nodes.clouds.Visible || c.globeOpts.CloudsSpeed == 0 {
		return
	}
	// About 0.03 rad/s per unit of speed around the polar axis.
	c.nodes.clouds.Rotation.Y += c.globeOpts.CloudsSpeed * 0.03 * dt.Seconds()
}

// Destroy cancels every tween and timer, drops handlers and releases the
// tooltip. Later calls on the controller are no-ops.
func (c *Controller) Destroy() {
	if c.destroyed {
		return
	}
	c.runner.Stop()
	c.timers.StopAll()
	c.cameraTweens.CancelAll()
	c.markers.Clear()
	c.markerTweens.CancelAll()
	c.router.Reset()
	if c.deps.Tooltip != nil {
		c.deps.Tooltip.Destroy()
	}
	c.mu.Lock()
	c.inbox = nil
	c.destroyed = true
	c.mu.Unlock()
	c.log.Debug("controller destroyed")
}

// Status returns a snapshot of controller state.
func (c *Controller) Status() Status {
	s := Status{
		State:          c.rig.State(),
		Locked:         c.rig.Locked(),
		Frozen:         c.frozen,
		Destroyed:      c.destroyed,
		Markers:        len(c.markers.LiveKeys()),
		TourRunning:    c.runner.Running(),
		CameraPosition: c.rig.Position(),
	}
	if t, ok := c.rig.Target(); ok {
		s.Focus = &t
	}
	if m, ok := c.markers.Active(); ok {
		s.Active = m.Key()
	}
	return s
}

// Markers returns the live markers ordered by key.
func (c *Controller) Markers() []markers.Marker {
	return c.markers.Markers()
}

// Camera returns a copy of the camera.
func (c *Controller) Camera() camera.Camera {
	return c.rig.Camera()
}

// Scene returns the root node. Callers must treat it as read-only.
func (c *Controller) Scene() *scene.Node {
	return c.nodes.root
}

// Graph returns the scene graph for node lookups.
func (c *Controller) Graph() *scene.Graph {
	return c.graph
}

// ActiveTweens returns the number of running camera and marker tweens.
func (c *Controller) ActiveTweens() int {
	return c.cameraTweens.Active() + c.markerTweens.Active()
}

// PendingTimers returns the number of scheduled tour timers.
func (c *Controller) PendingTimers() int {
	return c.timers.Pending()
}
