// Package feed loads marker sets from JSON files, HTTP endpoints and
// websocket streams.
package feed

import (
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"strconv"

	"github.com/litescript/ls-globe/internal/geo"
	"github.com/litescript/ls-globe/internal/markers"
)

// ErrInvalidMarker is returned for a marker entry that cannot be used.
var ErrInvalidMarker = errors.New("invalid marker")

// jsonMarker is the wire form of a marker. Unknown keys are kept as fields.
type jsonMarker struct {
	Coordinates [2]float64 `json:"coordinates"`
	Value       float64    `json:"value"`
	Color       string     `json:"color"`
}

var reservedKeys = map[string]bool{"id": true, "coordinates": true, "value": true, "color": true}

// envelope accepts either a bare array or {"markers": [...]}.
type envelope struct {
	Markers []json.RawMessage `json:"markers"`
}

// Parse decodes a marker set. The input may be a JSON array of markers or an
// object with a "markers" array.
func Parse(data []byte) ([]markers.Marker, error) {
	var raw []json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		var env envelope
		if err2 := json.Unmarshal(data, &env); err2 != nil {
			return nil, fmt.Errorf("parse markers: %w", err)
		}
		raw = env.Markers
	}

	out := make([]markers.Marker, 0, len(raw))
	for i, r := range raw {
		m, err := parseMarker(r)
		if err != nil {
			return nil, fmt.Errorf("marker %d: %w", i, err)
		}
		out = append(out, m)
	}
	return out, nil
}

func parseMarker(data json.RawMessage) (markers.Marker, error) {
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(data, &fields); err != nil {
		return markers.Marker{}, fmt.Errorf("%w: %v", ErrInvalidMarker, err)
	}
	if _, ok := fields["coordinates"]; !ok {
		return markers.Marker{}, fmt.Errorf("%w: missing coordinates", ErrInvalidMarker)
	}

	var jm jsonMarker
	if err := json.Unmarshal(data, &jm); err != nil {
		return markers.Marker{}, fmt.Errorf("%w: %v", ErrInvalidMarker, err)
	}
	lat, lon := jm.Coordinates[0], jm.Coordinates[1]
	if math.IsNaN(lat) || math.IsNaN(lon) || lat < -90 || lat > 90 {
		return markers.Marker{}, fmt.Errorf("%w: latitude %v out of range", ErrInvalidMarker, lat)
	}

	id, err := parseID(fields["id"])
	if err != nil {
		return markers.Marker{}, err
	}
	m := markers.Marker{
		ID:          id,
		Coordinates: geo.Coordinates{Lat: lat, Lon: lon},
		Value:       jm.Value,
		Color:       jm.Color,
	}
	for k, v := range fields {
		if reservedKeys[k] {
			continue
		}
		var val any
		if err := json.Unmarshal(v, &val); err != nil {
			continue
		}
		if m.Fields == nil {
			m.Fields = make(map[string]any)
		}
		m.Fields[k] = val
	}
	return m, nil
}

// parseID accepts string or numeric ids.
func parseID(raw json.RawMessage) (string, error) {
	if len(raw) == 0 {
		return "", nil
	}
	var v any
	if err := json.Unmarshal(raw, &v); err != nil {
		return "", fmt.Errorf("%w: id: %v", ErrInvalidMarker, err)
	}
	switch id := v.(type) {
	case nil:
		return "", nil
	case string:
		return id, nil
	case float64:
		return strconv.FormatFloat(id, 'f', -1, 64), nil
	default:
		return "", fmt.Errorf("%w: id must be a string or number", ErrInvalidMarker)
	}
}
