package ws

import (
	"encoding/json"
	"testing"
	"time"
)

func TestNewEvent(t *testing.T) {
	event, err := NewEvent("cart.updated", map[string]int{"lines": 2})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if event.Type != "cart.updated" {
		t.Errorf("type: got %q, want cart.updated", event.Type)
	}
	if string(event.Payload) != `{"lines":2}` {
		t.Errorf("payload: got %s", event.Payload)
	}
}

func TestNewEvent_UnmarshalablePayload(t *testing.T) {
	if _, err := NewEvent("bad", make(chan int)); err == nil {
		t.Error("expected error for unmarshalable payload")
	}
}

func TestHub_BroadcastReachesAllClients(t *testing.T) {
	hub := NewHub()
	go hub.Run()

	a := &Client{hub: hub, send: make(chan []byte, 4)}
	b := &Client{hub: hub, send: make(chan []byte, 4)}
	hub.register <- a
	hub.register <- b

	event, err := NewEvent("holds.updated", []string{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	hub.Broadcast(event)

	for _, c := range []*Client{a, b} {
		select {
		case msg := <-c.send:
			var got Event
			if err := json.Unmarshal(msg, &got); err != nil {
				t.Fatalf("invalid broadcast frame: %v", err)
			}
			if got.Type != "holds.updated" {
				t.Errorf("type: got %q, want holds.updated", got.Type)
			}
		case <-time.After(time.Second):
			t.Fatal("timed out waiting for broadcast")
		}
	}
}

func TestHub_UnregisteredClientGetsNothing(t *testing.T) {
	hub := NewHub()
	go hub.Run()

	c := &Client{hub: hub, send: make(chan []byte, 4)}
	hub.register <- c
	hub.unregister <- c

	event, _ := NewEvent("cart.updated", nil)
	hub.Broadcast(event)

	// The send channel is closed on unregister; a receive yields a closed
	// channel, never a message.
	select {
	case msg, ok := <-c.send:
		if ok {
			t.Errorf("unexpected message after unregister: %s", msg)
		}
	case <-time.After(100 * time.Millisecond):
		t.Fatal("send channel was not closed on unregister")
	}
}

func TestHub_SlowClientDropped(t *testing.T) {
	hub := NewHub()
	go hub.Run()

	// Buffer of one: the second broadcast overflows and evicts the client.
	c := &Client{hub: hub, send: make(chan []byte, 1)}
	hub.register <- c

	event, _ := NewEvent("cart.updated", nil)
	hub.Broadcast(event)
	hub.Broadcast(event)

	deadline := time.After(time.Second)
	got := 0
	for {
		select {
		case _, ok := <-c.send:
			if !ok {
				if got != 1 {
					t.Errorf("delivered messages before eviction: got %d, want 1", got)
				}
				return
			}
			got++
		case <-deadline:
			t.Fatal("slow client was never evicted")
		}
	}
}
