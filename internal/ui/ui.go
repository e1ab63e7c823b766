// Package ui provides the terminal user interface using Bubble Tea.
package ui

import (
	"fmt"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/litescript/ls-globe/internal/camera"
	"github.com/litescript/ls-globe/internal/canvas"
	"github.com/litescript/ls-globe/internal/geo"
	"github.com/litescript/ls-globe/internal/globe"
	"github.com/litescript/ls-globe/internal/interact"
	"github.com/litescript/ls-globe/internal/logging"
	"github.com/litescript/ls-globe/internal/markers"
	"github.com/litescript/ls-globe/internal/scene"
	"github.com/litescript/ls-globe/internal/script"
	"github.com/litescript/ls-globe/internal/state"
	"github.com/litescript/ls-globe/internal/version"
)

const (
	// headerRows and footerRows frame the globe canvas.
	headerRows = 2
	footerRows = 2

	// TourStepDuration is the per-stop duration of the tour built from the
	// current markers when none is configured.
	TourStepDuration = 2500 * time.Millisecond
)

// Msg types for Bubble Tea
type (
	// FrameMsg advances the globe by one frame.
	FrameMsg time.Time

	// AnimTickMsg drives footer animation.
	AnimTickMsg time.Time

	// MarkersMsg delivers a marker set from a feed. A non-nil Error keeps
	// the current markers.
	MarkersMsg struct {
		Source   string
		Markers  []markers.Marker
		Duration time.Duration
		Error    error
	}
)

// Options configure the model.
type Options struct {
	FPS     int
	LookAt  geo.Coordinates
	Camera  camera.Options
	Focus   camera.FocusOptions
	Marker  markers.Options
	Globe   globe.GlobeOptions
	Lights  globe.LightOptions
	Tour    []script.Step
	Offset  int
	Loader  globe.TextureLoader
	Logger  *logging.Logger
	Initial []markers.Marker
}

// notices collects controller callbacks between Update calls. The model is
// copied by value, so callbacks write through this pointer.
type notices struct {
	status  string
	clicked string
	hovered string
}

// Model is the root Bubble Tea model.
type Model struct {
	ctrl     *globe.Controller
	renderer *canvas.Renderer
	state    *state.Manager
	log      *logging.Logger
	opts     Options
	notices  *notices

	width    int
	height   int
	ready    bool
	start    time.Time
	animTick int

	selected   int
	cancelTour func()
	frozen     bool

	drag    bool
	dragged bool
	dragX   int
	dragY   int

	lastUpdate time.Time
	lastError  error
}

// New creates a new root UI model.
func New(stateMgr *state.Manager, opts Options) Model {
	if opts.FPS <= 0 {
		opts.FPS = 30
	}
	if opts.Logger == nil {
		opts.Logger = logging.Discard()
	}
	r := canvas.NewRenderer(80, 24)
	cfg := globe.DefaultConfig()
	cfg.TooltipOffset = opts.Offset
	ctrl := globe.New(cfg, globe.Deps{
		Renderer: r,
		Picker:   r,
		Tooltip:  r.Tooltip(),
		Loader:   opts.Loader,
		Logger:   opts.Logger.With("globe"),
	})

	m := Model{
		ctrl:     ctrl,
		renderer: r,
		state:    stateMgr,
		log:      opts.Logger.With("ui"),
		opts:     opts,
		notices:  &notices{},
		selected: -1,
	}
	ctrl.UpdateCallbacks(m.callbacks())
	ctrl.UpdateCamera(opts.LookAt, opts.Camera)
	ctrl.UpdateGlobe(opts.Globe)
	ctrl.UpdateLights(opts.Lights)
	if len(opts.Initial) > 0 {
		ctrl.UpdateMarkers(opts.Initial, opts.Marker)
	}
	return m
}

func (m Model) callbacks() globe.Callbacks {
	n := m.notices
	return globe.Callbacks{
		OnClickMarker: func(mk markers.Marker, _ *scene.Node, _ interact.Event) {
			n.clicked = mk.Key()
			n.status = "Focused " + describe(mk)
		},
		OnMouseOverMarker: func(mk markers.Marker, _ *scene.Node, _ interact.Event) {
			n.hovered = mk.Key()
		},
		OnMouseOutMarker: func(markers.Marker, *scene.Node, interact.Event) {
			n.hovered = ""
		},
		OnDefocus: func(prev geo.Coordinates, _ interact.Event) {
			n.status = "Released " + geo.CoordinatesKey(prev)
		},
		OnTextureLoaded: func() {
			n.status = "Globe texture ready"
		},
	}
}

// Controller exposes the globe controller.
func (m Model) Controller() *globe.Controller {
	return m.ctrl
}

// Init implements tea.Model.
func (m Model) Init() tea.Cmd {
	return tea.Batch(
		frameCmd(m.opts.FPS),
		animTickCmd(),
	)
}

// Update implements tea.Model.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmds []tea.Cmd

	switch msg := msg.(type) {
	case tea.KeyMsg:
		if cmd := m.handleKey(msg); cmd != nil {
			return m, cmd
		}

	case tea.MouseMsg:
		m.handleMouse(msg)

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.ready = true
		m.ctrl.Resize(m.canvasSize())

	case FrameMsg:
		cmds = append(cmds, frameCmd(m.opts.FPS))
		t := time.Time(msg)
		if m.start.IsZero() {
			m.start = t
		}
		m.ctrl.Tick(t.Sub(m.start))

	case AnimTickMsg:
		cmds = append(cmds, animTickCmd())
		m.animTick++

	case MarkersMsg:
		m.applyMarkers(msg)
	}

	return m, tea.Batch(cmds...)
}

func (m *Model) applyMarkers(msg MarkersMsg) {
	if m.state != nil {
		m.state.Update(msg.Source, msg.Markers, msg.Duration, msg.Error)
	}
	m.lastUpdate = time.Now()
	m.lastError = msg.Error
	if msg.Error != nil {
		m.log.Error("%s markers: %v", msg.Source, msg.Error)
		return
	}
	d := m.ctrl.UpdateMarkers(msg.Markers, m.opts.Marker)
	if len(d.Added)+len(d.Removed) > 0 {
		m.notices.status = fmt.Sprintf("%s: +%d -%d markers", msg.Source, len(d.Added), len(d.Removed))
	}
}

// canvasSize is the globe area inside the header and footer.
func (m Model) canvasSize() (int, int) {
	return max(m.width, 1), max(m.height-headerRows-footerRows, 1)
}

// View implements tea.Model.
func (m Model) View() string {
	if !m.ready {
		return "Initializing..."
	}
	return m.renderHeader() + "\n" + m.renderer.Frame() + "\n" + m.renderFooter()
}

func (m Model) renderHeader() string {
	title := renderGradient(" ls-globe ")
	muted := lipgloss.NewStyle().Foreground(lipgloss.Color("60"))
	st := m.ctrl.Status()

	info := fmt.Sprintf(" v%s | %d markers | camera %s", version.Version, st.Markers, st.State)
	if st.Focus != nil {
		info += " @ " + geo.CoordinatesKey(*st.Focus)
	}
	if st.TourRunning {
		info += " | tour"
	}
	if st.Frozen {
		info += " | frozen"
	}
	return title + muted.Render(info) + "\n" + m.renderHUD(st)
}

func (m Model) renderFooter() string {
	dimStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("60"))
	errorStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("#E84A27"))
	accentStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("#7B2CBF"))

	spinnerFrames := []string{"⠋", "⠙", "⠹", "⠸", "⠼", "⠴", "⠦", "⠧", "⠇", "⠏"}
	spinner := spinnerFrames[m.animTick%len(spinnerFrames)]

	var status string
	switch {
	case m.lastError != nil:
		status = errorStyle.Render("ERROR: " + m.lastError.Error())
	case m.notices.status != "":
		status = accentStyle.Render(spinner) + " " + dimStyle.Render(m.notices.status)
	case m.ctrl.Status().Markers == 0:
		status = accentStyle.Render(spinner) + " " + m.renderShimmerText("Waiting for markers...")
	default:
		status = accentStyle.Render(spinner)
	}

	help := dimStyle.Render("drag/arrows: orbit | wheel/+-: zoom | n/p: marker | esc: release | t: tour | f: freeze | q: quit")
	return "  " + status + "\n  " + help
}

// renderShimmerText renders text with a subtle moving shine effect.
func (m Model) renderShimmerText(text string) string {
	runes := []rune(text)
	if len(runes) == 0 {
		return ""
	}
	pos := m.animTick % (len(runes) + 8)

	var result strings.Builder
	for i, r := range runes {
		dist := i - pos + 4
		if dist < 0 {
			dist = -dist
		}
		var hex string
		switch {
		case dist <= 1:
			hex = "#B4A0DC"
		case dist <= 3:
			hex = "#8C78B4"
		case dist <= 5:
			hex = "#6E5A96"
		default:
			hex = "#504678"
		}
		result.WriteString(lipgloss.NewStyle().Foreground(lipgloss.Color(hex)).Render(string(r)))
	}
	return result.String()
}

func frameCmd(fps int) tea.Cmd {
	return tea.Tick(time.Second/time.Duration(fps), func(t time.Time) tea.Msg {
		return FrameMsg(t)
	})
}

func animTickCmd() tea.Cmd {
	return tea.Tick(80*time.Millisecond, func(t time.Time) tea.Msg {
		return AnimTickMsg(t)
	})
}

// SendMarkers creates a command that delivers a marker set.
func SendMarkers(source string, list []markers.Marker) tea.Cmd {
	return func() tea.Msg {
		return MarkersMsg{Source: source, Markers: list}
	}
}

func describe(mk markers.Marker) string {
	if mk.ID != "" {
		return mk.ID
	}
	return geo.CoordinatesKey(mk.Coordinates)
}
