package feed

import (
	"context"
	"fmt"
	"net/http"
	"time"

	ws "github.com/gorilla/websocket"

	"github.com/litescript/ls-globe/internal/logging"
	"github.com/litescript/ls-globe/internal/markers"
	"github.com/litescript/ls-globe/internal/version"
)

const (
	initialBackoff = time.Second
	maxBackoff     = 30 * time.Second
)

// Stream receives full marker sets from a websocket endpoint. Each text
// message replaces the previous set.
type Stream struct {
	url        string
	dialer     *ws.Dialer
	log        *logging.Logger
	minBackoff time.Duration
	maxBackoff time.Duration
}

// StreamOption configures a Stream.
type StreamOption func(*Stream)

// WithDialer sets a custom websocket dialer.
func WithDialer(d *ws.Dialer) StreamOption {
	return func(s *Stream) {
		s.dialer = d
	}
}

// WithBackoff sets the reconnect delay bounds.
func WithBackoff(minDelay, maxDelay time.Duration) StreamOption {
	return func(s *Stream) {
		s.minBackoff = minDelay
		s.maxBackoff = maxDelay
	}
}

// WithLogger sets the stream logger.
func WithLogger(log *logging.Logger) StreamOption {
	return func(s *Stream) {
		s.log = log
	}
}

// NewStream creates a stream for the ws:// or wss:// url.
func NewStream(url string, opts ...StreamOption) *Stream {
	s := &Stream{
		url:        url,
		dialer:     ws.DefaultDialer,
		minBackoff: initialBackoff,
		maxBackoff: maxBackoff,
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.log == nil {
		s.log = logging.Discard()
	}
	return s
}

// Run delivers every decoded marker set to fn until ctx is done,
// reconnecting with exponential backoff. Messages that fail to parse are
// logged and skipped.
func (s *Stream) Run(ctx context.Context, fn func([]markers.Marker)) error {
	backoff := s.minBackoff
	for attempt := 1; ; attempt++ {
		received, err := s.session(ctx, fn)
		if ctx.Err() != nil {
			return ctx.Err()
		}
		if received {
			backoff = s.minBackoff
		}
		s.log.Warn("marker stream %s: %v (attempt %d, retry in %v)", s.url, err, attempt, backoff)

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(backoff):
		}
		backoff *= 2
		if backoff > s.maxBackoff {
			backoff = s.maxBackoff
		}
	}
}

// session runs one connection. It reports whether any marker set arrived.
func (s *Stream) session(ctx context.Context, fn func([]markers.Marker)) (bool, error) {
	header := http.Header{}
	header.Set("User-Agent", version.UserAgent())
	conn, _, err := s.dialer.DialContext(ctx, s.url, header)
	if err != nil {
		return false, fmt.Errorf("websocket dial failed: %w", err)
	}
	defer conn.Close()
	s.log.Info("marker stream connected: %s", s.url)

	// Unblock ReadMessage on cancellation.
	stop := context.AfterFunc(ctx, func() { _ = conn.Close() })
	defer stop()

	received := false
	for {
		kind, data, err := conn.ReadMessage()
		if err != nil {
			return received, fmt.Errorf("websocket read: %w", err)
		}
		if kind != ws.TextMessage {
			continue
		}
		list, err := Parse(data)
		if err != nil {
			s.log.Debug("marker stream: skipping message: %v", err)
			continue
		}
		received = true
		fn(list)
	}
}
