package internal

import (
	"errors"
	"path/filepath"
	"testing"
)

func TestParseRoomID(t *testing.T) {
	id, err := ParseRoomID("https://example.com/rooms/7b0e9a52-2f14-4e5b-9c3d-0a1b2c3d4e5f")
	if err != nil {
		t.Fatalf("ParseRoomID: %v", err)
	}
	if id != "7b0e9a52-2f14-4e5b-9c3d-0a1b2c3d4e5f" {
		t.Fatalf("unexpected id %q", id)
	}
}

func TestParseRoomIDRejectsNonRoomURL(t *testing.T) {
	if _, err := ParseRoomID("https://example.com/about"); !errors.Is(err, ErrNoRoomID) {
		t.Fatalf("expected ErrNoRoomID, got %v", err)
	}
}

func TestParseRoomIDRejectsNonUUID(t *testing.T) {
	if _, err := ParseRoomID("https://example.com/rooms/not-a-uuid"); err == nil {
		t.Fatalf("expected error for non-uuid id")
	}
}

func TestWebsocketURL(t *testing.T) {
	cases := []struct {
		in   string
		want string
	}{
		{"https://example.com/rooms/abc", "wss://example.com/ws"},
		{"http://localhost:8080/rooms/abc?x=1", "ws://localhost:8080/ws"},
	}
	for _, tc := range cases {
		got, err := WebsocketURL(tc.in)
		if err != nil {
			t.Fatalf("WebsocketURL(%q): %v", tc.in, err)
		}
		if got != tc.want {
			t.Fatalf("WebsocketURL(%q) = %q, want %q", tc.in, got, tc.want)
		}
	}
}

func TestHTTPBaseURL(t *testing.T) {
	got, err := HTTPBaseURL("wss://example.com/ws")
	if err != nil {
		t.Fatalf("HTTPBaseURL: %v", err)
	}
	if got != "https://example.com" {
		t.Fatalf("HTTPBaseURL = %q", got)
	}
}

func TestSessionFileRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "session.json")
	if session := LoadSession(path); session != nil {
		t.Fatalf("expected nil for missing file")
	}
	if err := SaveSession(path, "alice", "s-123"); err != nil {
		t.Fatalf("SaveSession: %v", err)
	}
	session := LoadSession(path)
	if session == nil || session.Username != "alice" || session.SessionID != "s-123" {
		t.Fatalf("unexpected session: %+v", session)
	}
}
