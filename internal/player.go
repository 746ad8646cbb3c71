package internal

import "time"

// PlaybackController is the capability surface the machine needs from a
// player widget. The machine never reaches past it.
type PlaybackController interface {
	IsSeeking() bool
	IsPaused() bool
	CurrentTimeSeconds() float64
	SetCurrentTimeSeconds(seconds float64)
	Play()
	Pause()
	SetSource(src string)
	HideProgressBar()
	OnPlay(fn func())
	OnPause(fn func())
	OnSeeked(fn func())
}

// ClockPlayer simulates a video widget in the terminal: while playing, the
// position advances with the wall clock. Transitions fire the registered
// callbacks the way a real player widget would, including programmatic ones;
// the machine's remote-apply guard is what keeps those from echoing back out.
type ClockPlayer struct {
	src            string
	paused         bool
	seeking        bool
	position       float64
	lastResume     time.Time
	progressHidden bool
	now            func() time.Time

	onPlay   []func()
	onPause  []func()
	onSeeked []func()
}

// NewClockPlayer returns a stopped player at position zero.
func NewClockPlayer() *ClockPlayer {
	return &ClockPlayer{paused: true, now: time.Now}
}

// SetClock swaps the time source, used by tests.
func (p *ClockPlayer) SetClock(now func() time.Time) { p.now = now }

func (p *ClockPlayer) IsSeeking() bool { return p.seeking }

func (p *ClockPlayer) IsPaused() bool { return p.paused }

// CurrentTimeSeconds folds in elapsed wall time when playing.
func (p *ClockPlayer) CurrentTimeSeconds() float64 {
	if p.paused {
		return p.position
	}
	return p.position + p.now().Sub(p.lastResume).Seconds()
}

// SetCurrentTimeSeconds jumps the position. The seeking flag stays raised for
// the duration of the mutation and the seeked callbacks fire after it drops,
// mirroring how a widget reports a finished seek.
func (p *ClockPlayer) SetCurrentTimeSeconds(seconds float64) {
	if seconds < 0 {
		seconds = 0
	}
	p.seeking = true
	p.position = seconds
	p.lastResume = p.now()
	p.seeking = false
	for _, fn := range p.onSeeked {
		fn()
	}
}

func (p *ClockPlayer) Play() {
	if !p.paused {
		return
	}
	p.paused = false
	p.lastResume = p.now()
	for _, fn := range p.onPlay {
		fn()
	}
}

func (p *ClockPlayer) Pause() {
	if p.paused {
		return
	}
	p.position = p.CurrentTimeSeconds()
	p.paused = true
	for _, fn := range p.onPause {
		fn()
	}
}

// SetSource rebinds the player and rewinds. Reconnects re-run the join
// handshake, so this has to be safe to call repeatedly.
func (p *ClockPlayer) SetSource(src string) {
	p.src = src
	p.position = 0
	p.paused = true
}

// Source reports the bound video URL for the view.
func (p *ClockPlayer) Source() string { return p.src }

// HideProgressBar marks the timeline as non-scrubbable; the view reads the
// flag, guests never get seek keys.
func (p *ClockPlayer) HideProgressBar() { p.progressHidden = true }

// ProgressHidden reports whether the timeline is scrubbable.
func (p *ClockPlayer) ProgressHidden() bool { return p.progressHidden }

func (p *ClockPlayer) OnPlay(fn func())   { p.onPlay = append(p.onPlay, fn) }
func (p *ClockPlayer) OnPause(fn func())  { p.onPause = append(p.onPause, fn) }
func (p *ClockPlayer) OnSeeked(fn func()) { p.onSeeked = append(p.onSeeked, fn) }
