package tween

import "time"

// Handle identifies a running tween. The zero Handle is never issued.
type Handle uint64

type tween struct {
	handle     Handle
	from, to   []float64
	cur        []float64
	start      time.Duration
	duration   time.Duration
	ease       Func
	onUpdate   func([]float64)
	onComplete func()
	done       bool
}

// Engine advances tweens on an externally supplied clock. It is not safe for
// concurrent use; all calls are expected from the frame loop goroutine.
type Engine struct {
	now    time.Duration
	next   Handle
	tweens []*tween
	byID   map[Handle]*tween
}

// NewEngine creates an empty engine at time zero.
func NewEngine() *Engine {
	return &Engine{byID: make(map[Handle]*tween)}
}

// Now returns the time of the last tick.
func (e *Engine) Now() time.Duration {
	return e.now
}

// Start begins interpolating from -> to. The tween starts at the engine's
// current time and is first evaluated on the next Tick. onUpdate receives the
// interpolated values and must not retain the slice. onComplete fires once,
// after the final onUpdate. Start panics if the easing name is unknown.
func (e *Engine) Start(from, to []float64, duration time.Duration, easing Easing, onUpdate func([]float64), onComplete func()) Handle {
	ease := MustEasing(easing)

	n := len(from)
	if len(to) < n {
		n = len(to)
	}
	e.next++
	tw := &tween{
		handle:     e.next,
		from:       append([]float64(nil), from[:n]...),
		to:         append([]float64(nil), to[:n]...),
		cur:        make([]float64, n),
		start:      e.now,
		duration:   duration,
		ease:       ease,
		onUpdate:   onUpdate,
		onComplete: onComplete,
	}
	e.tweens = append(e.tweens, tw)
	e.byID[tw.handle] = tw
	return tw.handle
}

// Cancel stops a tween without firing its completion. It reports whether the
// tween was still running.
func (e *Engine) Cancel(h Handle) bool {
	tw, ok := e.byID[h]
	if !ok {
		return false
	}
	tw.done = true
	delete(e.byID, h)
	return true
}

// Running reports whether h refers to an unfinished tween.
func (e *Engine) Running(h Handle) bool {
	_, ok := e.byID[h]
	return ok
}

// Active returns the number of unfinished tweens.
func (e *Engine) Active() int {
	return len(e.byID)
}

// CancelAll stops every tween without firing completions.
func (e *Engine) CancelAll() {
	for _, tw := range e.tweens {
		tw.done = true
	}
	e.tweens = nil
	e.byID = make(map[Handle]*tween)
}

// Tick advances every tween to now, in start order. Tweens started from a
// callback during Tick are first evaluated on the following Tick. Time never
// moves backwards.
func (e *Engine) Tick(now time.Duration) {
	if now > e.now {
		e.now = now
	}

	current := e.tweens
	for _, tw := range current {
		if tw.done {
			continue
		}
		k := 1.0
		if tw.duration > 0 {
			k = float64(e.now-tw.start) / float64(tw.duration)
			if k > 1 {
				k = 1
			}
			if k < 0 {
				k = 0
			}
		}
		v := tw.ease(k)
		if k == 1 {
			v = 1
		}
		for i := range tw.cur {
			tw.cur[i] = tw.from[i] + (tw.to[i]-tw.from[i])*v
		}
		if tw.onUpdate != nil {
			tw.onUpdate(tw.cur)
		}
		if k == 1 && !tw.done {
			tw.done = true
			delete(e.byID, tw.handle)
			if tw.onComplete != nil {
				tw.onComplete()
			}
		}
	}

	// Compact, keeping anything appended during callbacks.
	live := e.tweens[:0]
	for _, tw := range e.tweens {
		if !tw.done {
			live = append(live, tw)
		}
	}
	for i := len(live); i < len(e.tweens); i++ {
		e.tweens[i] = nil
	}
	e.tweens = live
}
