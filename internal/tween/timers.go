package tween

import (
	"sort"
	"time"
)

// TimerID identifies a scheduled callback. The zero TimerID is never issued.
type TimerID uint64

type timer struct {
	id  TimerID
	due time.Duration
	fn  func()
}

// Timers schedules one-shot callbacks against the same simulated clock as
// Engine. Not safe for concurrent use.
type Timers struct {
	now     time.Duration
	next    TimerID
	pending map[TimerID]*timer
}

// NewTimers creates an empty scheduler at time zero.
func NewTimers() *Timers {
	return &Timers{pending: make(map[TimerID]*timer)}
}

// After schedules fn to run on the first Tick at or past now+delay.
func (s *Timers) After(delay time.Duration, fn func()) TimerID {
	if delay < 0 {
		delay = 0
	}
	s.next++
	s.pending[s.next] = &timer{id: s.next, due: s.now + delay, fn: fn}
	return s.next
}

// Stop cancels a pending timer and reports whether it had not yet fired.
func (s *Timers) Stop(id TimerID) bool {
	if _, ok := s.pending[id]; !ok {
		return false
	}
	delete(s.pending, id)
	return true
}

// StopAll cancels every pending timer.
func (s *Timers) StopAll() {
	s.pending = make(map[TimerID]*timer)
}

// Pending returns the number of timers that have not fired.
func (s *Timers) Pending() int {
	return len(s.pending)
}

// Tick fires every timer due at or before now, ordered by due time and then
// by scheduling order. A timer stopped by an earlier callback in the same
// Tick does not fire. Timers scheduled from a callback wait for a later Tick.
func (s *Timers) Tick(now time.Duration) {
	if now > s.now {
		s.now = now
	}

	var due []*timer
	for _, t := range s.pending {
		if t.due <= s.now {
			due = append(due, t)
		}
	}
	sort.Slice(due, func(i, j int) bool {
		if due[i].due != due[j].due {
			return due[i].due < due[j].due
		}
		return due[i].id < due[j].id
	})

	for _, t := range due {
		if _, ok := s.pending[t.id]; !ok {
			continue
		}
		delete(s.pending, t.id)
		t.fn()
	}
}
