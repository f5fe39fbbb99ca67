package transport

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"nhooyr.io/websocket"
)

func TestFeedReadLoop(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/events" {
			t.Errorf("expected /events, got %s", r.URL.Path)
			return
		}
		if got := r.URL.Query().Get("token"); got != "node-token" {
			t.Errorf("expected token query, got %q", got)
			return
		}
		conn, err := websocket.Accept(w, r, nil)
		if err != nil {
			t.Errorf("accept: %v", err)
			return
		}
		defer conn.Close(websocket.StatusNormalClosure, "done")

		events := []Event{
			{Type: "message", PublicKey: "0xA", Name: "alice", Application: Application, Data: "0x41", SentAt: time.Now().UTC().Format(time.RFC3339Nano)},
			{Type: "message", PublicKey: "0xB", Application: "someoneelse", Data: "0x42"},
		}
		for _, ev := range events {
			data, _ := json.Marshal(ev)
			_ = conn.Write(context.Background(), websocket.MessageText, data)
		}
		_ = conn.Write(context.Background(), websocket.MessageText, []byte("not-json"))
	}))
	defer server.Close()

	feed, err := ConnectFeed(context.Background(), server.URL, "node-token")
	if err != nil {
		t.Fatalf("ConnectFeed: %v", err)
	}
	defer feed.Close()

	ch := make(chan Event, 4)
	go feed.ReadLoop(ch)

	select {
	case ev := <-ch:
		if ev.PublicKey != "0xA" || ev.Application != Application {
			t.Fatalf("unexpected event: %#v", ev)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("timeout waiting for event")
	}

	// The foreign-application event is filtered; the channel closes when
	// the server hangs up.
	select {
	case ev, ok := <-ch:
		if ok {
			t.Fatalf("unexpected second event: %#v", ev)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("timeout waiting for close")
	}
}

func TestFeedCloseIdempotent(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		conn, err := websocket.Accept(w, r, nil)
		if err != nil {
			return
		}
		defer conn.Close(websocket.StatusNormalClosure, "done")
	}))
	defer server.Close()

	feed, err := ConnectFeed(context.Background(), server.URL, "")
	if err != nil {
		t.Fatalf("ConnectFeed: %v", err)
	}
	feed.Close()
	feed.Close()
}

func TestEventParseSentAt(t *testing.T) {
	want := time.Date(2026, 2, 3, 10, 30, 0, 0, time.UTC)
	ev := Event{SentAt: want.Format(time.RFC3339Nano)}
	if got := ev.ParseSentAt(); !got.Equal(want) {
		t.Fatalf("ParseSentAt = %v, want %v", got, want)
	}

	before := time.Now().UTC()
	got := Event{SentAt: "garbage"}.ParseSentAt()
	if got.Before(before.Add(-time.Minute)) {
		t.Fatalf("fallback ParseSentAt = %v, want recent time", got)
	}
}
