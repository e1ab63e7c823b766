// Command ls-globe renders an interactive data globe in the terminal.
package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/pflag"
	"golang.org/x/term"

	"github.com/litescript/ls-globe/internal/canvas"
	"github.com/litescript/ls-globe/internal/config"
	"github.com/litescript/ls-globe/internal/feed"
	"github.com/litescript/ls-globe/internal/globe"
	"github.com/litescript/ls-globe/internal/logging"
	"github.com/litescript/ls-globe/internal/markers"
	"github.com/litescript/ls-globe/internal/state"
	"github.com/litescript/ls-globe/internal/ui"
	"github.com/litescript/ls-globe/internal/version"
)

const (
	minRefresh = 1 * time.Second
	maxRefresh = 1 * time.Hour
)

func main() {
	fs := pflag.NewFlagSet("ls-globe", pflag.ContinueOnError)
	configPath := fs.String("config", "", "Config file (YAML, JSON or TOML)")
	showVersion := fs.Bool("version", false, "Print version and exit")
	config.RegisterFlags(fs)
	if err := fs.Parse(os.Args[1:]); err != nil {
		if errors.Is(err, pflag.ErrHelp) {
			return
		}
		os.Exit(2)
	}
	if *showVersion {
		fmt.Println(version.UserAgent())
		return
	}

	cfg, err := config.Load(*configPath, fs)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(2)
	}

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	headless := cfg.Headless || !term.IsTerminal(int(os.Stdout.Fd()))

	logger := logging.New(logging.ParseLevel(cfg.LogLevel))
	if cfg.LogFile != "" {
		f, err := os.OpenFile(cfg.LogFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: open log file: %v\n", err)
			os.Exit(1)
		}
		defer f.Close()
		logger.SetOutput(f)
	} else if !headless {
		// The alternate screen owns the terminal.
		logger.SetOutput(io.Discard)
	}

	loader := canvas.NewLoader(canvas.WithLoaderLogger(logger.With("loader")))

	var initial []markers.Marker
	if cfg.MarkersFile != "" {
		initial, err = feed.LoadFile(cfg.MarkersFile)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
		logger.Info("Loaded %d markers from %s", len(initial), cfg.MarkersFile)
	}

	if headless {
		if err := runHeadless(ctx, cfg, loader, initial, logger); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
		return
	}

	stateCfg := state.DefaultConfig()
	stateCfg.RefreshInterval = min(max(cfg.FeedRefresh, minRefresh), maxRefresh)
	stateMgr := state.NewManager(stateCfg)
	if len(initial) > 0 {
		stateMgr.Update("file", initial, 0, nil)
	}

	model := ui.New(stateMgr, ui.Options{
		FPS:     cfg.FPS,
		LookAt:  cfg.LookAtCoordinates(),
		Camera:  cfg.Camera,
		Focus:   cfg.Focus,
		Marker:  cfg.Marker,
		Globe:   cfg.Globe,
		Lights:  cfg.Lights,
		Tour:    cfg.TourSteps(),
		Offset:  cfg.TooltipOffset,
		Loader:  loader,
		Logger:  logger,
		Initial: initial,
	})

	p := tea.NewProgram(model, tea.WithAltScreen(), tea.WithMouseAllMotion(), tea.WithContext(ctx))

	if cfg.FeedURL != "" {
		fetcher := feed.NewFetcher(feed.WithURL(cfg.FeedURL))
		go runFetchLoop(ctx, fetcher, stateMgr.RefreshInterval(), p, logger)
	}
	if cfg.StreamURL != "" {
		stream := feed.NewStream(cfg.StreamURL, feed.WithLogger(logger.With("stream")))
		go runStream(ctx, stream, p, logger)
	}

	if _, err := p.Run(); err != nil && !errors.Is(err, tea.ErrProgramKilled) {
		fmt.Fprintf(os.Stderr, "Error running TUI: %v\n", err)
		os.Exit(1)
	}
}

func runFetchLoop(ctx context.Context, fetcher *feed.Fetcher, interval time.Duration, p *tea.Program, logger *logging.Logger) {
	doFetch(ctx, fetcher, p, logger)

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			logger.Debug("Fetch loop shutting down")
			return
		case <-ticker.C:
			doFetch(ctx, fetcher, p, logger)
		}
	}
}

func doFetch(ctx context.Context, fetcher *feed.Fetcher, p *tea.Program, logger *logging.Logger) {
	logger.Debug("Fetching markers from %s", fetcher.URL())

	result := fetcher.Fetch(ctx)
	if result.Error != nil {
		logger.Error("Fetch failed: %v", result.Error)
	} else {
		logger.Debug("Fetch complete: %d markers in %v", len(result.Markers), result.Duration)
	}
	p.Send(ui.MarkersMsg{
		Source:   "http",
		Markers:  result.Markers,
		Duration: result.Duration,
		Error:    result.Error,
	})
}

func runStream(ctx context.Context, stream *feed.Stream, p *tea.Program, logger *logging.Logger) {
	err := stream.Run(ctx, func(list []markers.Marker) {
		p.Send(ui.MarkersMsg{Source: "ws", Markers: list})
	})
	if err != nil && !errors.Is(err, context.Canceled) {
		logger.Error("Stream stopped: %v", err)
	}
}

// runHeadless steps the globe for cfg.Frames frames of simulated time and
// prints the last frame.
func runHeadless(ctx context.Context, cfg *config.Config, loader globe.TextureLoader, initial []markers.Marker, logger *logging.Logger) error {
	if cfg.FeedURL != "" {
		result := feed.NewFetcher(feed.WithURL(cfg.FeedURL)).Fetch(ctx)
		if result.Error != nil {
			return result.Error
		}
		initial = append(initial, result.Markers...)
	}

	r := canvas.NewRenderer(cfg.Width, cfg.Height)
	gcfg := globe.DefaultConfig()
	gcfg.TooltipOffset = cfg.TooltipOffset
	ctrl := globe.New(gcfg, globe.Deps{
		Renderer: r,
		Picker:   r,
		Tooltip:  r.Tooltip(),
		Loader:   loader,
		Logger:   logger.With("globe"),
	})
	defer ctrl.Destroy()

	ctrl.UpdateCamera(cfg.LookAtCoordinates(), cfg.Camera)
	ctrl.UpdateGlobe(cfg.Globe)
	ctrl.UpdateLights(cfg.Lights)
	diff := ctrl.UpdateMarkers(initial, cfg.Marker)
	if steps := cfg.TourSteps(); len(steps) > 0 {
		ctrl.ApplyAnimations(steps)
	}

	step := time.Second / time.Duration(cfg.FPS)
	var now time.Duration
	for i := 0; i < cfg.Frames; i++ {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		now += step
		ctrl.Tick(now)
	}

	st := ctrl.Status()
	fmt.Println(r.Frame())
	fmt.Printf("%s | %d markers (+%d) | camera %s | t=%v\n",
		version.UserAgent(), st.Markers, len(diff.Added), st.State, now)
	return nil
}
