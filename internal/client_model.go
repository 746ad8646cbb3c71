package internal

import (
	"time"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"cowatch/internal/storage"
)

const (
	joinGraceDelay   = 200 * time.Millisecond
	playbackTickRate = time.Second
	chatSendLimit    = 5
	chatSendWindow   = 10 * time.Second
	seekStepSeconds  = 10
)

// TUIModel drives one room visit: it owns the protocol machine, the
// transport, and the simulated player, and executes the machine's effects.
type TUIModel struct {
	textInput textinput.Model
	machine   *Machine
	transport *Transport
	player    *ClockPlayer
	store     *storage.Store
	metrics   *Metrics
	limiter   *RateLimiter

	roomURL string
	roomID  string

	isConnected     bool
	connectionError error
	notices         []string
	cachedHistory   []ChatEntry

	// generation guards pending timers: a tick scheduled before a reconnect
	// or teardown must not act on the fresh session
	generation int
	quitting   bool

	// effects produced by player callbacks during the current Update pass
	bridged []Effect
}

// these bubbletea messages represent the asynchronous transport and timer
// notifications feeding the machine.
type (
	connectedMsg struct{ generation int }
	frameMsg     struct {
		payload    []byte
		generation int
	}
	readFailedMsg struct {
		err        error
		generation int
	}
	connectFailedMsg struct {
		err        error
		generation int
	}
	reconnectMsg     struct{ generation int }
	graceMsg         struct{ generation int }
	playbackTickMsg  struct{}
	cachedHistoryMsg struct{ entries []ChatEntry }
)

// RunConfig carries everything the TUI needs for one room visit.
type RunConfig struct {
	RoomURL   string
	RoomID    string
	SessionID string
	Store     *storage.Store
	Metrics   *Metrics
}

// NewTUIModel wires the machine, transport, and player together. The player
// callbacks feed the local-intent bridge; effects they produce are collected
// and executed at the end of the Update pass that caused them.
func NewTUIModel(cfg RunConfig, transport *Transport) *TUIModel {
	input := textinput.New()
	input.Placeholder = "Say something…"
	input.CharLimit = 500
	input.Focus()
	input.Prompt = "> "

	metrics := cfg.Metrics
	if metrics == nil {
		metrics = NewMetrics()
	}

	model := &TUIModel{
		textInput: input,
		machine:   NewMachine(cfg.RoomID),
		transport: transport,
		player:    NewClockPlayer(),
		store:     cfg.Store,
		metrics:   metrics,
		limiter:   NewRateLimiter(chatSendLimit, chatSendWindow),
		roomURL:   cfg.RoomURL,
		roomID:    cfg.RoomID,
	}

	model.player.OnPlay(func() { model.bridge(TransitionPlay) })
	model.player.OnPause(func() { model.bridge(TransitionPause) })
	model.player.OnSeeked(func() { model.bridge(TransitionSeeked) })

	return model
}

func (model *TUIModel) bridge(kind PlayerTransitionKind) {
	effects := model.machine.PlayerTransition(model.player, kind)
	model.bridged = append(model.bridged, effects...)
}

// Init dials the server, starts the playback ticker, and loads the cached
// transcript for offline prefill.
func (model *TUIModel) Init() tea.Cmd {
	cmds := []tea.Cmd{model.connectCmd(), model.playbackTickCmd()}
	if model.store != nil && model.roomID != "" {
		cmds = append(cmds, model.loadCachedHistoryCmd())
	}
	return tea.Batch(cmds...)
}
