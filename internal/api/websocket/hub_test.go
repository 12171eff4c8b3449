package websocket

import (
	"testing"
	"time"
)

func TestHubRegisterAndBroadcast(t *testing.T) {
	hub := NewHub()
	go hub.Run()

	client := &Client{hub: hub, send: make(chan []byte, 1)}
	hub.register <- client

	if count := hub.ClientCount(); count != 1 {
		t.Fatalf("expected 1 client, got %d", count)
	}

	hub.Broadcast([]byte(`{"type":"summary_refreshed"}`))

	select {
	case msg := <-client.send:
		if string(msg) != `{"type":"summary_refreshed"}` {
			t.Errorf("unexpected message: %s", msg)
		}
	case <-time.After(time.Second):
		t.Fatal("broadcast not delivered")
	}

	hub.unregister <- client
	if count := hub.ClientCount(); count != 0 {
		t.Fatalf("expected 0 clients after unregister, got %d", count)
	}
}

func TestHubDropsSlowClient(t *testing.T) {
	hub := NewHub()
	go hub.Run()

	// Full send buffer: the hub must drop the client rather than block.
	client := &Client{hub: hub, send: make(chan []byte)}
	hub.register <- client

	hub.Broadcast([]byte("update"))

	deadline := time.After(time.Second)
	for hub.ClientCount() != 0 {
		select {
		case <-deadline:
			t.Fatal("slow client was not dropped")
		case <-time.After(10 * time.Millisecond):
		}
	}
}
