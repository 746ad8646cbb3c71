package internal

import (
	"testing"
	"time"
)

func TestClockPlayerAdvancesWhilePlaying(t *testing.T) {
	player := NewClockPlayer()
	now := time.Date(2026, 1, 2, 15, 0, 0, 0, time.UTC)
	player.SetClock(func() time.Time { return now })

	player.Play()
	now = now.Add(5 * time.Second)
	if got := player.CurrentTimeSeconds(); got != 5.0 {
		t.Fatalf("position = %f, want 5", got)
	}

	player.Pause()
	now = now.Add(10 * time.Second)
	if got := player.CurrentTimeSeconds(); got != 5.0 {
		t.Fatalf("paused position must hold, got %f", got)
	}
}

func TestClockPlayerSeekFiresSeekedAfterFlagDrops(t *testing.T) {
	player := NewClockPlayer()
	var seekingDuringCallback bool
	player.OnSeeked(func() {
		seekingDuringCallback = player.IsSeeking()
	})
	player.SetCurrentTimeSeconds(42)
	if seekingDuringCallback {
		t.Fatalf("seeked callback must observe the flag already lowered")
	}
	if got := player.CurrentTimeSeconds(); got != 42.0 {
		t.Fatalf("position = %f, want 42", got)
	}
}

func TestClockPlayerNegativeSeekClamps(t *testing.T) {
	player := NewClockPlayer()
	player.SetCurrentTimeSeconds(-10)
	if got := player.CurrentTimeSeconds(); got != 0 {
		t.Fatalf("position = %f, want 0", got)
	}
}

func TestClockPlayerTransitionCallbacks(t *testing.T) {
	player := NewClockPlayer()
	var plays, pauses int
	player.OnPlay(func() { plays++ })
	player.OnPause(func() { pauses++ })

	player.Play()
	player.Play() // already playing, no second event
	player.Pause()
	player.Pause()

	if plays != 1 || pauses != 1 {
		t.Fatalf("plays = %d, pauses = %d, want 1 and 1", plays, pauses)
	}
}

func TestClockPlayerSetSourceRewinds(t *testing.T) {
	player := NewClockPlayer()
	player.Play()
	player.SetCurrentTimeSeconds(100)
	player.SetSource("http://x/video.mp4")
	if !player.IsPaused() || player.CurrentTimeSeconds() != 0 {
		t.Fatalf("rebinding the source must rewind and pause")
	}
	if player.Source() != "http://x/video.mp4" {
		t.Fatalf("source = %q", player.Source())
	}
}

func TestHideProgressBarSticks(t *testing.T) {
	player := NewClockPlayer()
	if player.ProgressHidden() {
		t.Fatalf("progress starts visible")
	}
	player.HideProgressBar()
	if !player.ProgressHidden() {
		t.Fatalf("progress should be hidden")
	}
}
