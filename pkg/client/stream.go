package client

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/url"
	"strings"
	"time"

	"github.com/gorilla/websocket"

	"github.com/njnj03/homewatch/internal/eventbus"
	"github.com/njnj03/homewatch/pkg/models"
)

const streamReconnectDelay = 3 * time.Second

// StreamOptions configures StreamEvents.
type StreamOptions struct {
	// Bus receives every decoded event.
	Bus eventbus.Publisher
	Log *slog.Logger
	// ReconnectDelay is the pause between connection attempts.
	// Defaults to 3 seconds.
	ReconnectDelay time.Duration
}

// StreamEvents connects to the server's alert event stream and republishes
// every decoded event on the given bus. It reconnects after connection
// failures and returns only when ctx is cancelled. Malformed frames are
// logged and skipped.
func (c *Client) StreamEvents(ctx context.Context, opts StreamOptions) error {
	if opts.Bus == nil {
		return fmt.Errorf("event bus is required")
	}
	log := opts.Log
	if log == nil {
		log = slog.Default()
	}
	delay := opts.ReconnectDelay
	if delay <= 0 {
		delay = streamReconnectDelay
	}

	wsURL, err := c.streamURL()
	if err != nil {
		return err
	}

	for {
		if err := c.readStream(ctx, wsURL, opts.Bus, log); err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			log.Warn("event stream disconnected, retrying",
				slog.Any("error", err),
				slog.Duration("delay", delay),
			)
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(delay):
		}
	}
}

func (c *Client) streamURL() (string, error) {
	u, err := url.Parse(c.baseURL)
	if err != nil {
		return "", fmt.Errorf("invalid server URL: %w", err)
	}
	switch u.Scheme {
	case "http":
		u.Scheme = "ws"
	case "https":
		u.Scheme = "wss"
	default:
		return "", fmt.Errorf("unsupported URL scheme %q", u.Scheme)
	}
	u.Path = strings.TrimSuffix(u.Path, "/") + "/api/v1/alerts/stream"
	return u.String(), nil
}

func (c *Client) readStream(ctx context.Context, wsURL string, bus eventbus.Publisher, log *slog.Logger) error {
	dialer := websocket.Dialer{HandshakeTimeout: 10 * time.Second}
	conn, _, err := dialer.DialContext(ctx, wsURL, nil)
	if err != nil {
		return fmt.Errorf("failed to connect to event stream: %w", err)
	}
	defer conn.Close()

	// Unblock ReadMessage when the context is cancelled.
	done := make(chan struct{})
	defer close(done)
	go func() {
		select {
		case <-ctx.Done():
			conn.Close()
		case <-done:
		}
	}()

	log.Debug("connected to event stream", slog.String("url", wsURL))

	for {
		_, data, err := conn.ReadMessage()
		if err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			return fmt.Errorf("event stream read failed: %w", err)
		}

		var evt models.Event
		if err := json.Unmarshal(data, &evt); err != nil {
			log.Warn("skipping malformed stream frame", slog.Any("error", err))
			continue
		}
		bus.Publish(evt)
	}
}
