package transport

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"sync"
	"time"

	"nhooyr.io/websocket"
)

// Event is one inbound notification from the node's websocket feed.
// Data carries the sender's encoded payload for message events.
type Event struct {
	Type        string `json:"type"`
	PublicKey   string `json:"publickey"`
	Name        string `json:"name"`
	Application string `json:"application"`
	Data        string `json:"data"`
	SentAt      string `json:"sent_at"`
}

// Feed is the websocket connection carrying inbound events.
type Feed struct {
	conn   *websocket.Conn
	ctx    context.Context
	cancel context.CancelFunc
	mu     sync.Mutex
	closed bool
}

// ConnectFeed opens the node's event feed.
func ConnectFeed(ctx context.Context, nodeURL, token string) (*Feed, error) {
	wsURL := strings.Replace(nodeURL, "https://", "wss://", 1)
	wsURL = strings.Replace(wsURL, "http://", "ws://", 1)
	wsURL = wsURL + "/events"
	if token != "" {
		wsURL += "?token=" + token
	}

	feedCtx, cancel := context.WithCancel(ctx)
	conn, _, err := websocket.Dial(feedCtx, wsURL, nil)
	if err != nil {
		cancel()
		return nil, fmt.Errorf("feed dial: %w", err)
	}

	return &Feed{conn: conn, ctx: feedCtx, cancel: cancel}, nil
}

// ReadLoop decodes events onto ch until the connection or context ends,
// then closes ch. Events for other applications are dropped.
func (f *Feed) ReadLoop(ch chan<- Event) {
	defer close(ch)
	for {
		_, data, err := f.conn.Read(f.ctx)
		if err != nil {
			return
		}
		var ev Event
		if err := json.Unmarshal(data, &ev); err != nil {
			continue
		}
		if ev.Application != "" && ev.Application != Application {
			continue
		}
		select {
		case ch <- ev:
		case <-f.ctx.Done():
			return
		}
	}
}

// ParseSentAt returns the event timestamp, falling back to now when the
// node omitted or mangled it.
func (e Event) ParseSentAt() time.Time {
	if t, err := time.Parse(time.RFC3339Nano, e.SentAt); err == nil {
		return t
	}
	return time.Now().UTC()
}

func (f *Feed) Close() {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.closed {
		return
	}
	f.closed = true
	f.cancel()
	_ = f.conn.Close(websocket.StatusNormalClosure, "bye")
}
