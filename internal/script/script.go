// Package script plays scripted camera tours.
package script

import (
	"time"

	"github.com/litescript/ls-globe/internal/camera"
	"github.com/litescript/ls-globe/internal/geo"
	"github.com/litescript/ls-globe/internal/logging"
	"github.com/litescript/ls-globe/internal/tween"
)

// Step is one stop of a tour.
type Step struct {
	Coordinates         geo.Coordinates
	AnimationDuration   time.Duration
	DistanceRadiusScale float64
	Easing              tween.Easing
}

// Options returns base with the step's duration, distance and easing applied.
// Zero distance and empty easing keep the base values.
func (s Step) Options(base camera.FocusOptions) camera.FocusOptions {
	o := base
	o.AnimationDuration = s.AnimationDuration
	if s.DistanceRadiusScale > 0 {
		o.DistanceRadiusScale = s.DistanceRadiusScale
	}
	if s.Easing != "" {
		o.Easing = s.Easing
	}
	return o
}

// Resume is the focus restored when a tour ends or is cancelled.
type Resume struct {
	Target  *geo.Coordinates
	Options camera.FocusOptions
}

// FocusFunc requests a camera focus, or a defocus when target is nil.
type FocusFunc func(target *geo.Coordinates, opts camera.FocusOptions, autoDefocus bool)

// Runner schedules tour steps on a timer queue.
type Runner struct {
	timers  *tween.Timers
	focus   FocusFunc
	log     *logging.Logger
	pending []tween.TimerID
	resume  Resume
	running bool
	run     int
}

// NewRunner creates a runner that drives focus through fn.
func NewRunner(timers *tween.Timers, fn FocusFunc, log *logging.Logger) *Runner {
	if log == nil {
		log = logging.Discard()
	}
	return &Runner{timers: timers, focus: fn, log: log}
}

// Start replaces any running tour. Step i begins at the sum of the durations
// of steps before it. The last step returns to resume: it auto-defocuses
// when resume has no target, otherwise a final timer refocuses the resume
// target. The returned func cancels this tour only; once another tour has
// started it does nothing.
func (r *Runner) Start(steps []Step, resume Resume) (cancel func()) {
	r.Cancel()
	r.run++
	run := r.run
	if len(steps) == 0 {
		return func() {}
	}

	r.resume = resume
	if resume.Target != nil {
		t := *resume.Target
		r.resume.Target = &t
	}
	r.running = true
	r.log.Info("tour started: %d steps", len(steps))

	var offset time.Duration
	for i, step := range steps {
		target := step.Coordinates
		opts := step.Options(resume.Options)
		autoDefocus := i == len(steps)-1 && resume.Target == nil
		r.pending = append(r.pending, r.timers.After(offset, func() {
			r.focus(&target, opts, autoDefocus)
		}))
		offset += step.AnimationDuration
	}
	r.pending = append(r.pending, r.timers.After(offset, func() {
		if r.resume.Target != nil {
			r.focus(r.resume.Target, r.resume.Options, false)
		}
		r.pending = nil
		r.running = false
		r.log.Debug("tour finished")
	}))

	return func() {
		if r.run == run {
			r.Cancel()
		}
	}
}

// Cancel stops pending steps and restores the resume focus. It is a no-op
// when no tour is running.
func (r *Runner) Cancel() {
	if !r.running {
		return
	}
	r.Stop()
	r.log.Info("tour cancelled")
	r.focus(r.resume.Target, r.resume.Options, false)
}

// Stop drops pending steps without touching the camera. Used on teardown.
func (r *Runner) Stop() {
	for _, id := range r.pending {
		r.timers.Stop(id)
	}
	r.pending = nil
	r.running = false
}

// Running reports whether a tour has steps left.
func (r *Runner) Running() bool {
	return r.running
}
