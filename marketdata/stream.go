package marketdata

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/gorilla/websocket"

	"stock-sentry/logger"
)

const reconnectDelay = 5 * time.Second

// Quote is one live price event from the websocket feed.
type Quote struct {
	Symbol    string
	Price     float64
	Timestamp time.Time
}

// Streamer consumes the Twelve Data websocket price feed.
type Streamer struct {
	url    string
	apiKey string
}

// NewStreamer creates a quote streamer against the given websocket URL.
func NewStreamer(url, apiKey string) *Streamer {
	return &Streamer{url: url, apiKey: apiKey}
}

type wsEvent struct {
	Event     string  `json:"event"`
	Symbol    string  `json:"symbol"`
	Price     float64 `json:"price"`
	Timestamp int64   `json:"timestamp"`
	Status    string  `json:"status"`
	Messages  []any   `json:"messages"`
}

// Run connects, subscribes to the symbols, and invokes fn for every price
// event until the context is cancelled. Dropped connections reconnect with
// a fixed delay.
func (s *Streamer) Run(ctx context.Context, symbols []string, fn func(Quote)) error {
	for {
		if err := s.runOnce(ctx, symbols, fn); err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			logger.Warnw("quote stream dropped, reconnecting", "error", err, "delay", reconnectDelay)
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(reconnectDelay):
		}
	}
}

func (s *Streamer) runOnce(ctx context.Context, symbols []string, fn func(Quote)) error {
	endpoint := fmt.Sprintf("%s?apikey=%s", s.url, s.apiKey)
	conn, _, err := websocket.DefaultDialer.DialContext(ctx, endpoint, nil)
	if err != nil {
		return fmt.Errorf("dial: %w", err)
	}
	defer conn.Close()

	sub := map[string]any{
		"action": "subscribe",
		"params": map[string]string{"symbols": strings.Join(symbols, ",")},
	}
	if err := conn.WriteJSON(sub); err != nil {
		return fmt.Errorf("subscribe: %w", err)
	}
	logger.Infow("quote stream subscribed", "symbols", len(symbols))

	// Close the connection when the context ends so ReadMessage unblocks.
	done := make(chan struct{})
	defer close(done)
	go func() {
		select {
		case <-ctx.Done():
			conn.Close()
		case <-done:
		}
	}()

	for {
		_, msg, err := conn.ReadMessage()
		if err != nil {
			return fmt.Errorf("read: %w", err)
		}
		var ev wsEvent
		if err := json.Unmarshal(msg, &ev); err != nil {
			logger.Warnw("unparseable stream event", "error", err)
			continue
		}
		switch ev.Event {
		case "price":
			fn(Quote{
				Symbol:    strings.ToUpper(ev.Symbol),
				Price:     ev.Price,
				Timestamp: time.Unix(ev.Timestamp, 0).UTC(),
			})
		case "subscribe-status":
			if ev.Status != "ok" {
				logger.Warnw("subscription rejected", "status", ev.Status, "messages", ev.Messages)
			}
		case "heartbeat":
			// keepalive, nothing to do
		}
	}
}
