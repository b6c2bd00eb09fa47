package live

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"net"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/gorilla/websocket"

	"github.com/Lars147/mvg-cli/config"
)

// Client holds one realtime feed subscription.
type Client struct {
	conn *websocket.Conn
}

// Dial connects to the feed and performs the subscribe handshake: a full
// state request, a delta subscription, and the bounding box filter.
func Dial(ctx context.Context, cfg config.LiveConfig) (*Client, error) {
	endpoint := cfg.URL
	if cfg.APIKey != "" {
		sep := "?"
		if strings.Contains(endpoint, "?") {
			sep = "&"
		}
		endpoint += sep + "key=" + url.QueryEscape(cfg.APIKey)
	}
	header := http.Header{}
	if cfg.Origin != "" {
		header.Set("Origin", cfg.Origin)
	}

	conn, _, err := websocket.DefaultDialer.DialContext(ctx, endpoint, header)
	if err != nil {
		return nil, fmt.Errorf("connect %s: %w", cfg.URL, err)
	}
	c := &Client{conn: conn}

	for _, msg := range []string{"GET " + cfg.Channel, "SUB " + cfg.Channel, "BBOX " + cfg.BBox} {
		if err := conn.WriteMessage(websocket.TextMessage, []byte(msg)); err != nil {
			_ = conn.Close()
			return nil, fmt.Errorf("subscribe handshake: %w", err)
		}
	}
	return c, nil
}

// Collect reads frames for the given duration and feeds every trajectory
// to observe. A malformed frame is logged and skipped. Collection ends
// cleanly when the window elapses or ctx is cancelled; any other socket
// failure is fatal for the run.
func (c *Client) Collect(ctx context.Context, d time.Duration, observe func(Trajectory)) error {
	_ = c.conn.SetReadDeadline(time.Now().Add(d))

	done := make(chan struct{})
	defer close(done)
	go func() {
		select {
		case <-ctx.Done():
			_ = c.conn.Close()
		case <-done:
		}
	}()

	for {
		_, data, err := c.conn.ReadMessage()
		if err != nil {
			if ctx.Err() != nil {
				return nil
			}
			var ne net.Error
			if errors.As(err, &ne) && ne.Timeout() {
				return nil
			}
			return fmt.Errorf("realtime feed: %w", err)
		}

		var frame Frame
		if err := json.Unmarshal(data, &frame); err != nil {
			log.Printf("live: skipping frame: %v", &DecodeError{Err: err})
			continue
		}
		if frame.Source != FrameSourceTrajectory {
			continue
		}
		var tr Trajectory
		if err := json.Unmarshal(frame.Content, &tr); err != nil {
			log.Printf("live: skipping trajectory: %v", &DecodeError{Err: err})
			continue
		}
		observe(tr)
	}
}

// Close tears the subscription down.
func (c *Client) Close() error {
	return c.conn.Close()
}
