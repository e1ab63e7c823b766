package ui

import (
	"fmt"
	"sort"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/lucasb-eyer/go-colorful"

	"github.com/litescript/ls-globe/internal/globe"
	"github.com/litescript/ls-globe/internal/markers"
)

// Title gradient stops: blue -> purple -> magenta -> pink.
var gradientStops = []colorful.Color{
	mustHex("#3B82F6"),
	mustHex("#8B5CF6"),
	mustHex("#D946EF"),
	mustHex("#EC4899"),
}

func mustHex(s string) colorful.Color {
	c, err := colorful.Hex(s)
	if err != nil {
		panic(err)
	}
	return c
}

// gradientColor returns the title color at position col of width.
func gradientColor(col, width int) string {
	if width <= 1 {
		return gradientStops[0].Hex()
	}
	t := float64(col) / float64(width-1) * float64(len(gradientStops)-1)
	i := int(t)
	if i >= len(gradientStops)-1 {
		return gradientStops[len(gradientStops)-1].Hex()
	}
	f := t - float64(i)
	if f == 0 {
		return gradientStops[i].Hex()
	}
	return gradientStops[i].BlendLab(gradientStops[i+1], f).Clamped().Hex()
}

func renderGradient(text string) string {
	runes := []rune(text)
	var b strings.Builder
	for i, r := range runes {
		style := lipgloss.NewStyle().Foreground(lipgloss.Color(gradientColor(i, len(runes)))).Bold(true)
		b.WriteString(style.Render(string(r)))
	}
	return b.String()
}

// renderHUD shows the hovered marker, or the latest feed events.
func (m Model) renderHUD(st globe.Status) string {
	dim := lipgloss.NewStyle().Foreground(lipgloss.Color("60"))
	accent := lipgloss.NewStyle().Foreground(lipgloss.Color("#9D4EDD")).Bold(true)

	camera := dim.Render(fmt.Sprintf(" %s", focusState(st.State)))
	if key := st.Active; key != "" {
		for _, mk := range m.ctrl.Markers() {
			if mk.Key() == key {
				return camera + "  " + accent.Render("▶ "+describe(mk)) + dim.Render(" "+markerDetail(mk))
			}
		}
	}
	if m.state != nil {
		if events := m.state.RecentEvents(3); len(events) > 0 {
			parts := make([]string, 0, len(events))
			for _, e := range events {
				parts = append(parts, fmt.Sprintf("%s %s", strings.TrimPrefix(string(e.Type), "MARKER_"), e.Key))
			}
			return camera + "  " + dim.Render(strings.Join(parts, " · "))
		}
	}
	return camera
}

// markerDetail formats value and extra fields in key order.
func markerDetail(mk markers.Marker) string {
	parts := []string{fmt.Sprintf("value=%g", mk.Value)}
	keys := make([]string, 0, len(mk.Fields))
	for k := range mk.Fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		parts = append(parts, fmt.Sprintf("%s=%v", k, mk.Fields[k]))
	}
	return strings.Join(parts, " ")
}
