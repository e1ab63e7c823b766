// Package state provides thread-safe storage of the latest marker set from
// the configured feeds.
package state

import (
	"sort"
	"sync"
	"time"

	"github.com/litescript/ls-globe/internal/markers"
)

// EventType represents the type of marker set change.
type EventType string

const (
	EventMarkerAdded   EventType = "MARKER_ADDED"
	EventMarkerRemoved EventType = "MARKER_REMOVED"
	EventMarkerChanged EventType = "MARKER_CHANGED"
)

// Event represents one marker change between two updates.
type Event struct {
	Type      EventType `json:"type"`
	Timestamp time.Time `json:"timestamp"`
	Key       string    `json:"key"`
	OldValue  float64   `json:"old_value,omitempty"`
	NewValue  float64   `json:"new_value,omitempty"`
	Source    string    `json:"source,omitempty"`
}

// TimeSeries is a single data point with timestamp.
type TimeSeries struct {
	Timestamp time.Time
	Value     float64
}

// Manager holds the latest marker set with thread-safe access.
type Manager struct {
	mu sync.RWMutex

	current     []markers.Marker
	byKey       map[string]markers.Marker
	source      string
	lastUpdate  time.Time
	lastError   error
	duration    time.Duration
	updateCount int

	history    map[string][]TimeSeries
	maxHistory int

	// Event log (ring buffer)
	events       []Event
	maxEvents    int
	eventWriteAt int

	refreshInterval time.Duration
}

// Config holds configuration for the state manager.
type Config struct {
	MaxHistoryLen   int
	MaxEvents       int
	RefreshInterval time.Duration
}

// DefaultConfig returns sensible default configuration.
func DefaultConfig() Config {
	return Config{
		MaxHistoryLen:   60,
		MaxEvents:       50,
		RefreshInterval: 30 * time.Second,
	}
}

// NewManager creates a new state manager.
func NewManager(cfg Config) *Manager {
	maxEvents := cfg.MaxEvents
	if maxEvents <= 0 {
		maxEvents = 50
	}
	return &Manager{
		byKey:           make(map[string]markers.Marker),
		history:         make(map[string][]TimeSeries),
		maxHistory:      cfg.MaxHistoryLen,
		maxEvents:       maxEvents,
		events:          make([]Event, 0, maxEvents),
		refreshInterval: cfg.RefreshInterval,
	}
}

// Update replaces the marker set. A non-nil err records the failure and
// keeps the previous set.
func (m *Manager) Update(source string, list []markers.Marker, duration time.Duration, err error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	now := time.Now()
	m.lastUpdate = now
	m.lastError = err
	m.duration = duration
	if err != nil {
		return
	}

	next := make(map[string]markers.Marker, len(list))
	for _, mk := range list {
		next[mk.Key()] = mk
	}
	m.detectEvents(source, now, next)

	m.current = make([]markers.Marker, len(list))
	copy(m.current, list)
	m.byKey = next
	m.source = source
	m.updateCount++

	for key, mk := range next {
		h := append(m.history[key], TimeSeries{Timestamp: now, Value: mk.Value})
		if m.maxHistory > 0 && len(h) > m.maxHistory {
			h = h[1:]
		}
		m.history[key] = h
	}
	for key := range m.history {
		if _, ok := next[key]; !ok {
			delete(m.history, key)
		}
	}
}

// detectEvents compares the new set with the previous one. Events within one
// update are ordered by key.
func (m *Manager) detectEvents(source string, now time.Time, next map[string]markers.Marker) {
	keys := make([]string, 0, len(next)+len(m.byKey))
	for k := range next {
		keys = append(keys, k)
	}
	for k := range m.byKey {
		if _, ok := next[k]; !ok {
			keys = append(keys, k)
		}
	}
	sort.Strings(keys)

	for _, k := range keys {
		prev, had := m.byKey[k]
		cur, has := next[k]
		switch {
		case !had:
			m.addEvent(Event{Type: EventMarkerAdded, Timestamp: now, Key: k, NewValue: cur.Value, Source: source})
		case !has:
			m.addEvent(Event{Type: EventMarkerRemoved, Timestamp: now, Key: k, OldValue: prev.Value, Source: source})
		case prev.Value != cur.Value || prev.Color != cur.Color || prev.Coordinates != cur.Coordinates:
			m.addEvent(Event{Type: EventMarkerChanged, Timestamp: now, Key: k, OldValue: prev.Value, NewValue: cur.Value, Source: source})
		}
	}
}

// addEvent adds an event to the ring buffer.
func (m *Manager) addEvent(e Event) {
	if len(m.events) < m.maxEvents {
		m.events = append(m.events, e)
	} else {
		m.events[m.eventWriteAt] = e
		m.eventWriteAt = (m.eventWriteAt + 1) % m.maxEvents
	}
}

// Snapshot represents an immutable snapshot of current state.
type Snapshot struct {
	Markers     []markers.Marker
	Source      string
	LastUpdate  time.Time
	LastError   error
	Duration    time.Duration
	UpdateCount int
	Events      []Event
}

// Snapshot returns a consistent snapshot of current state.
func (m *Manager) Snapshot() Snapshot {
	m.mu.RLock()
	defer m.mu.RUnlock()

	list := make([]markers.Marker, len(m.current))
	copy(list, m.current)

	return Snapshot{
		Markers:     list,
		Source:      m.source,
		LastUpdate:  m.lastUpdate,
		LastError:   m.lastError,
		Duration:    m.duration,
		UpdateCount: m.updateCount,
		Events:      m.getEventsOrdered(),
	}
}

// getEventsOrdered returns events in chronological order.
func (m *Manager) getEventsOrdered() []Event {
	if len(m.events) == 0 {
		return nil
	}
	if len(m.events) < m.maxEvents {
		result := make([]Event, len(m.events))
		copy(result, m.events)
		return result
	}
	result := make([]Event, m.maxEvents)
	for i := 0; i < m.maxEvents; i++ {
		result[i] = m.events[(m.eventWriteAt+i)%m.maxEvents]
	}
	return result
}

// RecentEvents returns the last n events.
func (m *Manager) RecentEvents(n int) []Event {
	m.mu.RLock()
	defer m.mu.RUnlock()

	all := m.getEventsOrdered()
	if len(all) <= n {
		return all
	}
	return all[len(all)-n:]
}

// History returns a copy of the value history for a marker key.
func (m *Manager) History(key string) []TimeSeries {
	m.mu.RLock()
	defer m.mu.RUnlock()

	h, ok := m.history[key]
	if !ok {
		return nil
	}
	out := make([]TimeSeries, len(h))
	copy(out, h)
	return out
}

// Marker returns the current marker with the given key.
func (m *Manager) Marker(key string) (markers.Marker, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	mk, ok := m.byKey[key]
	return mk, ok
}

// RefreshInterval returns the configured refresh interval.
func (m *Manager) RefreshInterval() time.Duration {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.refreshInterval
}

// SetRefreshInterval updates the refresh interval.
func (m *Manager) SetRefreshInterval(d time.Duration) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.refreshInterval = d
}

// HasData returns true once a marker set has been stored.
func (m *Manager) HasData() bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.updateCount > 0
}
