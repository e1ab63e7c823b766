package canvas

import (
	"errors"
	"fmt"
	"image"
	_ "image/jpeg"
	_ "image/png"
	"io"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/litescript/ls-globe/internal/logging"
	"github.com/litescript/ls-globe/internal/scene"
)

// DefaultLoadTimeout bounds remote texture downloads.
const DefaultLoadTimeout = 30 * time.Second

// ErrEmptySource is returned when a load is requested without a source.
var ErrEmptySource = errors.New("empty texture source")

// Loader decodes PNG and JPEG textures from files or http(s) URLs on a
// background goroutine.
type Loader struct {
	client  *http.Client
	timeout time.Duration
	log     *logging.Logger
}

// LoaderOption configures a Loader.
type LoaderOption func(*Loader)

// WithLoadTimeout sets the download timeout.
func WithLoadTimeout(d time.Duration) LoaderOption {
	return func(l *Loader) {
		l.timeout = d
	}
}

// WithLoaderHTTPClient sets a custom HTTP client.
func WithLoaderHTTPClient(client *http.Client) LoaderOption {
	return func(l *Loader) {
		l.client = client
	}
}

// WithLoaderLogger sets the logger.
func WithLoaderLogger(log *logging.Logger) LoaderOption {
	return func(l *Loader) {
		l.log = log
	}
}

// NewLoader creates a texture loader.
func NewLoader(opts ...LoaderOption) *Loader {
	l := &Loader{timeout: DefaultLoadTimeout}
	for _, opt := range opts {
		opt(l)
	}
	if l.client == nil {
		l.client = &http.Client{Timeout: l.timeout}
	}
	if l.log == nil {
		l.log = logging.Discard()
	}
	return l
}

// Load decodes src asynchronously and reports through done.
func (l *Loader) Load(src string, done func(scene.Texture, error)) {
	go func() {
		start := time.Now()
		img, err := l.decode(src)
		if err != nil {
			done(scene.Texture{Source: src}, err)
			return
		}
		b := img.Bounds()
		l.log.Debug("texture %s decoded %dx%d in %v", src, b.Dx(), b.Dy(), time.Since(start))
		done(scene.Texture{Source: src, Image: img}, nil)
	}()
}

func (l *Loader) decode(src string) (image.Image, error) {
	if src == "" {
		return nil, ErrEmptySource
	}
	rc, err := l.open(src)
	if err != nil {
		return nil, err
	}
	defer rc.Close()
	img, _, err := image.Decode(rc)
	if err != nil {
		return nil, fmt.Errorf("decode %s: %w", src, err)
	}
	return img, nil
}

func (l *Loader) open(src string) (io.ReadCloser, error) {
	if !strings.HasPrefix(src, "http://") && !strings.HasPrefix(src, "https://") {
		f, err := os.Open(strings.TrimPrefix(src, "file://"))
		if err != nil {
			return nil, fmt.Errorf("open texture: %w", err)
		}
		return f, nil
	}
	resp, err := l.client.Get(src)
	if err != nil {
		return nil, fmt.Errorf("fetch texture: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		resp.Body.Close()
		return nil, fmt.Errorf("fetch texture: unexpected status code: %d", resp.StatusCode)
	}
	return resp.Body, nil
}
