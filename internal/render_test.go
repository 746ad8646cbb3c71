package internal

import (
	"strings"
	"testing"
	"time"
)

func TestRenderRosterHostFirst(t *testing.T) {
	participants := []Participant{
		{UserID: "u3", Username: "host", IsHost: true},
		{UserID: "u1", Username: "alice"},
		{UserID: "u2", Username: "bob"},
	}
	out := RenderRoster(participants, 3, "u1")
	hostIdx := strings.Index(out, "host")
	aliceIdx := strings.Index(out, "alice")
	bobIdx := strings.Index(out, "bob")
	if hostIdx == -1 || aliceIdx == -1 || bobIdx == -1 {
		t.Fatalf("missing names in output:\n%s", out)
	}
	if hostIdx > aliceIdx || aliceIdx > bobIdx {
		t.Fatalf("order wrong: host=%d alice=%d bob=%d", hostIdx, aliceIdx, bobIdx)
	}
}

func TestRenderRosterShowsServerCount(t *testing.T) {
	out := RenderRoster([]Participant{{UserID: "u1", Username: "alice"}}, 7, "u1")
	if !strings.Contains(out, "(7)") {
		t.Fatalf("expected the server-supplied count 7:\n%s", out)
	}
}

func TestRenderRosterIdempotent(t *testing.T) {
	participants := []Participant{{UserID: "u1", Username: "alice", IsHost: true}}
	first := RenderRoster(participants, 1, "u1")
	second := RenderRoster(participants, 1, "u1")
	if first != second {
		t.Fatalf("renderer must be pure")
	}
}

func TestRenderChatEntryEscapesControlCharacters(t *testing.T) {
	entry := ChatEntry{
		SenderID:       "u2",
		SenderUsername: "bob\x1b[31m",
		Content:        "hi\x1b[0m there\x07",
		CreatedAt:      time.Date(2026, 1, 2, 15, 4, 5, 0, time.UTC),
	}
	out := RenderChatEntry(entry, "u1")
	if strings.Contains(out, "\x1b[31m") || strings.Contains(out, "\x07") {
		t.Fatalf("control characters leaked into output: %q", out)
	}
	if !strings.Contains(out, "hi") || !strings.Contains(out, "there") {
		t.Fatalf("content lost: %q", out)
	}
}

func TestRenderChatLogNewestFirst(t *testing.T) {
	entries := []ChatEntry{
		{SenderID: "u2", SenderUsername: "bob", Content: "newest", CreatedAt: time.Date(2026, 1, 2, 15, 1, 0, 0, time.UTC)},
		{SenderID: "u1", SenderUsername: "alice", Content: "oldest", CreatedAt: time.Date(2026, 1, 2, 15, 0, 0, 0, time.UTC)},
	}
	out := RenderChatLog(entries, "u1")
	if strings.Index(out, "newest") > strings.Index(out, "oldest") {
		t.Fatalf("newest must render first:\n%s", out)
	}
}

func TestRenderChatLogEmpty(t *testing.T) {
	out := RenderChatLog(nil, "u1")
	if out == "" {
		t.Fatalf("empty log still renders a placeholder")
	}
}

func TestRenderPlaybackBarGuestHasNoBar(t *testing.T) {
	hostView := RenderPlaybackBar(StatePlaying, 42, false)
	guestView := RenderPlaybackBar(StatePlaying, 42, true)
	if !strings.Contains(hostView, "━") && !strings.Contains(hostView, "─") {
		t.Fatalf("host view should contain a scrub bar: %q", hostView)
	}
	if strings.Contains(guestView, "━") || strings.Contains(guestView, "─") {
		t.Fatalf("guest view must not contain a scrub bar: %q", guestView)
	}
}

func TestFormatPosition(t *testing.T) {
	cases := []struct {
		seconds float64
		want    string
	}{
		{0, "00:00"},
		{42, "00:42"},
		{75, "01:15"},
		{3725, "1:02:05"},
		{-5, "00:00"},
	}
	for _, tc := range cases {
		if got := formatPosition(tc.seconds); got != tc.want {
			t.Fatalf("formatPosition(%f) = %q, want %q", tc.seconds, got, tc.want)
		}
	}
}
