package camera

import (
	"math"
	"time"

	"github.com/litescript/ls-globe/internal/geo"
	"github.com/litescript/ls-globe/internal/logging"
	"github.com/litescript/ls-globe/internal/tween"
)

// State is the focus state of the camera rig.
type State int

const (
	Free State = iota
	Focusing
	Focused
	Defocusing
)

func (s State) String() string {
	switch s {
	case Free:
		return "free"
	case Focusing:
		return "focusing"
	case Focused:
		return "focused"
	case Defocusing:
		return "defocusing"
	default:
		return "unknown"
	}
}

// Rig owns the camera, its orbit controls and the focus state machine.
// Orbit controls are enabled exactly when the rig is Free.
type Rig struct {
	cam      Camera
	controls OrbitControls
	tweens   *tween.Engine
	radius   float64
	log      *logging.Logger

	opts   Options
	lookAt *geo.Coordinates

	state       State
	target      *geo.Coordinates
	focusOpts   FocusOptions
	autoDefocus bool
	preFocus    *geo.Vec3
	returnOpts  FocusOptions
	anim        tween.Handle

	onSettle func(State)
}

// NewRig creates a free camera orbiting a globe of the given radius. Focus
// animations run on tweens.
func NewRig(tweens *tween.Engine, radius float64, log *logging.Logger) *Rig {
	if log == nil {
		log = logging.Discard()
	}
	r := &Rig{
		cam:    NewCamera(radius),
		tweens: tweens,
		radius: radius,
		log:    log,
		opts:   DefaultOptions(),
	}
	r.controls.DampingFactor = DampingFactor
	r.cam.Position = geo.Vec3{Z: radius * r.opts.DistanceRadiusScale}
	r.applyControls()
	return r
}

// OnSettle registers a hook fired when the rig arrives in Focused or Free.
func (r *Rig) OnSettle(fn func(State)) {
	r.onSettle = fn
}

// Configure applies orbit options. The camera is repositioned only when
// lookAt differs from the last applied value; while a focus is active the new
// position becomes the defocus destination instead, and a defocus already
// under way is redirected there.
func (r *Rig) Configure(lookAt geo.Coordinates, opts Options) {
	r.opts = opts.Resolve()
	r.applyControls()

	if r.lookAt != nil && r.lookAt.Equal(lookAt) {
		return
	}
	la := lookAt
	r.lookAt = &la
	pos := geo.Project(lookAt, r.radius*r.opts.DistanceRadiusScale)
	if r.state == Free {
		r.cam.Position = pos
		return
	}
	r.preFocus = &pos
	if r.state == Defocusing {
		r.startReturn()
	}
}

func (r *Rig) applyControls() {
	c := &r.controls
	c.AutoRotateSpeed = r.opts.AutoRotateSpeed
	c.EnableRotate = r.opts.EnableRotate
	c.EnableZoom = r.opts.EnableZoom
	c.EnablePan = false
	c.MinDistance = r.radius * MinDistanceRadiusScale
	c.MaxDistance = r.radius * r.opts.MaxDistanceRadiusScale
	c.RotateSpeed = r.opts.RotateSpeed
	c.ZoomSpeed = r.opts.ZoomSpeed

	if r.state == Free {
		c.Enabled = true
		c.AutoRotate = r.opts.EnableAutoRotate
		c.MinPolarAngle = r.opts.MinPolarAngle
		c.MaxPolarAngle = r.opts.MaxPolarAngle
		return
	}
	c.Enabled = false
	c.AutoRotate = false
	c.MinPolarAngle = 0
	c.MaxPolarAngle = math.Pi
	c.reset()
}

// SetFocus requests a focus on target, or a defocus when target is nil.
// Repeating the active request is a no-op. With autoDefocus the rig returns
// to the pre-focus position as soon as it arrives.
func (r *Rig) SetFocus(target *geo.Coordinates, opts FocusOptions, autoDefocus bool) {
	opts = opts.Resolve()
	if target == nil {
		r.defocus(opts)
		return
	}
	if r.target != nil && r.target.Equal(*target) && r.focusOpts == opts && r.autoDefocus == autoDefocus &&
		(r.state == Focusing || r.state == Focused) {
		return
	}

	r.cancelAnim()
	if r.preFocus == nil {
		p := r.cam.Position
		r.preFocus = &p
	}
	t := *target
	r.target = &t
	r.focusOpts = opts
	r.autoDefocus = autoDefocus
	r.setState(Focusing)

	dest := geo.Project(t, r.radius*opts.DistanceRadiusScale)
	r.log.Debug("focus %v -> %.4f,%.4f over %v", r.cam.Position, t.Lat, t.Lon, opts.AnimationDuration)
	r.anim = r.tweens.Start(r.cam.Position.Slice(), dest.Slice(), opts.AnimationDuration, opts.Easing, r.moveTo, func() {
		r.anim = 0
		if r.autoDefocus {
			r.defocus(r.focusOpts)
			return
		}
		r.setState(Focused)
	})
}

func (r *Rig) defocus(opts FocusOptions) {
	if r.preFocus == nil || r.state == Defocusing {
		return
	}
	r.cancelAnim()
	r.target = nil
	r.autoDefocus = false
	r.returnOpts = opts
	r.setState(Defocusing)
	r.startReturn()
}

// startReturn tweens from the current position to the pre-focus position.
func (r *Rig) startReturn() {
	r.cancelAnim()
	opts := r.returnOpts
	dest := *r.preFocus
	r.log.Debug("defocus %v -> %v over %v", r.cam.Position, dest, opts.AnimationDuration)
	r.anim = r.tweens.Start(r.cam.Position.Slice(), dest.Slice(), opts.AnimationDuration, opts.Easing, r.moveTo, func() {
		r.anim = 0
		r.preFocus = nil
		r.setState(Free)
	})
}

func (r *Rig) moveTo(v []float64) {
	r.cam.Position = geo.VecFrom(v)
}

func (r *Rig) cancelAnim() {
	if r.anim != 0 {
		r.tweens.Cancel(r.anim)
		r.anim = 0
	}
}

func (r *Rig) setState(s State) {
	if r.state == s {
		return
	}
	r.log.Debug("camera %s -> %s", r.state, s)
	r.state = s
	r.applyControls()
	if (s == Focused || s == Free) && r.onSettle != nil {
		r.onSettle(s)
	}
}

// Tick advances the free-orbit controls. Focus animations advance with the
// tween engine.
func (r *Rig) Tick(dt time.Duration) {
	r.controls.Update(dt, &r.cam)
}

// Orbit queues a user rotation on the free camera.
func (r *Rig) Orbit(dAzimuth, dPolar float64) {
	r.controls.Rotate(dAzimuth, dPolar)
}

// Zoom queues a user zoom on the free camera.
func (r *Rig) Zoom(steps float64) {
	r.controls.Zoom(steps)
}

// Resize updates the viewport dimensions and aspect ratio.
func (r *Rig) Resize(width, height int) {
	r.cam.Width = width
	r.cam.Height = height
	if width > 0 && height > 0 {
		r.cam.Aspect = float64(width) / float64(height)
	}
}

// Stop cancels any running focus animation, leaving the state unchanged.
func (r *Rig) Stop() {
	r.cancelAnim()
}

// State returns the current focus state.
func (r *Rig) State() State { return r.state }

// Locked reports whether a focus is active or animating.
func (r *Rig) Locked() bool { return r.state != Free }

// Target returns the current focus target, if any.
func (r *Rig) Target() (geo.Coordinates, bool) {
	if r.target == nil {
		return geo.Coordinates{}, false
	}
	return *r.target, true
}

// FocusOptions returns the options of the current or last focus.
func (r *Rig) FocusOptions() FocusOptions { return r.focusOpts }

// PreFocusPosition returns the position the rig will return to on defocus.
func (r *Rig) PreFocusPosition() (geo.Vec3, bool) {
	if r.preFocus == nil {
		return geo.Vec3{}, false
	}
	return *r.preFocus, true
}

// Position returns the camera position.
func (r *Rig) Position() geo.Vec3 { return r.cam.Position }

// Camera returns a copy of the camera.
func (r *Rig) Camera() Camera { return r.cam }

// Controls returns a copy of the orbit controls.
func (r *Rig) Controls() OrbitControls { return r.controls }

// Options returns the applied orbit options.
func (r *Rig) Options() Options { return r.opts }
