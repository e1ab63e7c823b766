package ui

import (
	tea "github.com/charmbracelet/bubbletea"

	"github.com/litescript/ls-globe/internal/camera"
	"github.com/litescript/ls-globe/internal/globe"
	"github.com/litescript/ls-globe/internal/interact"
	"github.com/litescript/ls-globe/internal/script"
)

const (
	// keyOrbitStep is the orbit input per arrow key press.
	keyOrbitStep = 1.0
	// dragOrbitScale converts cells dragged into orbit input.
	dragOrbitScale = 0.25
)

// handleKey applies a key press. It returns a command only when the program
// should quit.
func (m *Model) handleKey(msg tea.KeyMsg) tea.Cmd {
	switch msg.String() {
	case "q", "ctrl+c":
		m.ctrl.Destroy()
		return tea.Quit
	case "left", "h":
		m.ctrl.Orbit(-keyOrbitStep, 0)
	case "right", "l":
		m.ctrl.Orbit(keyOrbitStep, 0)
	case "up", "k":
		m.ctrl.Orbit(0, -keyOrbitStep)
	case "down", "j":
		m.ctrl.Orbit(0, keyOrbitStep)
	case "+", "=":
		m.ctrl.Zoom(1)
	case "-", "_":
		m.ctrl.Zoom(-1)
	case "n", "tab":
		m.focusMarker(1)
	case "p", "shift+tab":
		m.focusMarker(-1)
	case "esc":
		m.stopTour()
		m.ctrl.UpdateFocus(nil, m.opts.Focus, false)
		m.notices.status = "Camera released"
	case "t":
		m.toggleTour()
	case "f":
		m.toggleFreeze()
	}
	return nil
}

// focusMarker steps the selection through the live markers and focuses it.
func (m *Model) focusMarker(delta int) {
	list := m.ctrl.Markers()
	if len(list) == 0 {
		return
	}
	m.stopTour()
	m.selected = ((m.selected+delta)%len(list) + len(list)) % len(list)
	mk := list[m.selected]
	target := mk.Coordinates
	m.ctrl.UpdateFocus(&target, m.opts.Focus, false)
	m.notices.status = "Focused " + describe(mk)
}

func (m *Model) tourSteps() []script.Step {
	if len(m.opts.Tour) > 0 {
		return m.opts.Tour
	}
	list := m.ctrl.Markers()
	steps := make([]script.Step, 0, len(list))
	for _, mk := range list {
		steps = append(steps, script.Step{
			Coordinates:       mk.Coordinates,
			AnimationDuration: TourStepDuration,
		})
	}
	return steps
}

func (m *Model) toggleTour() {
	if m.ctrl.Status().TourRunning {
		m.stopTour()
		m.notices.status = "Tour cancelled"
		return
	}
	steps := m.tourSteps()
	if len(steps) == 0 {
		m.notices.status = "Nothing to tour"
		return
	}
	m.cancelTour = m.ctrl.ApplyAnimations(steps)
	m.notices.status = "Tour started"
}

func (m *Model) stopTour() {
	if m.cancelTour != nil && m.ctrl.Status().TourRunning {
		m.cancelTour()
	}
	m.cancelTour = nil
}

func (m *Model) toggleFreeze() {
	m.frozen = !m.frozen
	if m.frozen {
		m.ctrl.Freeze()
		m.notices.status = "Frozen"
		return
	}
	m.ctrl.Unfreeze()
	m.notices.status = "Resumed"
}

// handleMouse converts terminal mouse events to globe pointer input. A left
// press and release without motion is a click; motion with the button held
// orbits the camera.
func (m *Model) handleMouse(msg tea.MouseMsg) {
	x, y := msg.X, msg.Y-headerRows
	_, ch := m.canvasSize()
	inside := y >= 0 && y < ch

	switch {
	case msg.Button == tea.MouseButtonWheelUp:
		m.ctrl.Zoom(1)
		return
	case msg.Button == tea.MouseButtonWheelDown:
		m.ctrl.Zoom(-1)
		return
	}

	switch msg.Action {
	case tea.MouseActionPress:
		if msg.Button == tea.MouseButtonLeft {
			m.drag, m.dragged = true, false
			m.dragX, m.dragY = msg.X, msg.Y
		}
	case tea.MouseActionRelease:
		wasClick := m.drag && !m.dragged
		m.drag = false
		if wasClick && inside {
			m.ctrl.HandlePointer(globe.PointerEvent{Type: interact.Click, X: x, Y: y, Raw: msg})
		}
	case tea.MouseActionMotion:
		if m.drag {
			dx, dy := msg.X-m.dragX, msg.Y-m.dragY
			if dx != 0 || dy != 0 {
				m.dragged = true
				m.dragX, m.dragY = msg.X, msg.Y
				// Cells are twice as tall as wide.
				m.ctrl.Orbit(-float64(dx)*dragOrbitScale, -float64(dy)*dragOrbitScale*2)
			}
			return
		}
		if !inside {
			m.ctrl.PointerLeave()
			return
		}
		m.ctrl.HandlePointer(globe.PointerEvent{Type: interact.MouseMove, X: x, Y: y, Raw: msg})
	}
}

// focusState reports whether the camera is held on a target.
func focusState(s camera.State) string {
	switch s {
	case camera.Focusing, camera.Focused:
		return "locked"
	case camera.Defocusing:
		return "returning"
	default:
		return "free"
	}
}
