package internal

import (
	"testing"
	"time"
)

func TestReconnectDelayTable(t *testing.T) {
	cases := []struct {
		attempt int
		want    time.Duration
	}{
		{1, 1000 * time.Millisecond},
		{2, 2000 * time.Millisecond},
		{3, 3000 * time.Millisecond},
		{4, 4000 * time.Millisecond},
		{5, 5000 * time.Millisecond},
		{30, 30000 * time.Millisecond},
		{40, 30000 * time.Millisecond},
	}
	for _, tc := range cases {
		if got := ReconnectDelay(tc.attempt); got != tc.want {
			t.Fatalf("ReconnectDelay(%d) = %v, want %v", tc.attempt, got, tc.want)
		}
	}
}

func TestReconnectDelayFloorsAtOne(t *testing.T) {
	if got := ReconnectDelay(0); got != 1000*time.Millisecond {
		t.Fatalf("ReconnectDelay(0) = %v", got)
	}
}

func TestTransportAttemptGrowsAndResets(t *testing.T) {
	transport := NewTransport("ws://127.0.0.1:1/ws", nil)
	// nothing listens there, so dials fail and the attempt counter climbs
	if err := transport.Dial(); err == nil {
		t.Fatalf("expected dial failure")
	}
	if err := transport.Dial(); err == nil {
		t.Fatalf("expected dial failure")
	}
	if transport.Attempt() != 2 {
		t.Fatalf("attempt = %d, want 2", transport.Attempt())
	}
	if transport.NextDelay() != 2000*time.Millisecond {
		t.Fatalf("delay = %v", transport.NextDelay())
	}
}

func TestSendWhileDisconnectedIsLocalFailure(t *testing.T) {
	transport := NewTransport("ws://127.0.0.1:1/ws", nil)
	if err := transport.SendFrame([]byte(`{"type":"EVENT"}`)); err != nil {
		t.Fatalf("send while disconnected must not surface an error: %v", err)
	}
	if transport.Connected() {
		t.Fatalf("transport should not report connected")
	}
}
