package internal

import (
	"errors"
	"fmt"
	"log"
	"time"
)

func logDropped(event string, err error) {
	log.Printf("dropped %s frame: %v", event, err)
}

// Effect is work the machine wants done but does not do itself: frames to
// send, player commands, rows to persist. The caller executes them in order,
// which keeps every transition testable without a live connection.
type Effect interface{ isEffect() }

// SendFrame queues an outbound envelope for the transport.
type SendFrame struct{ Msg WSMessage }

// PlayerSetSource binds the player to the room's video.
type PlayerSetSource struct{ Src string }

// PlayerPlay / PlayerPause / PlayerSeek drive the local player from a remote
// host transition. The executor must raise the remote-apply guard around
// them so the local-intent bridge stays quiet.
type PlayerPlay struct{}
type PlayerPause struct{}
type PlayerSeek struct{ Seconds float64 }

// PlayerHideProgress disables timeline scrubbing for guest sessions.
type PlayerHideProgress struct{}

// PersistChat asks for a chat entry to be written to the local transcript
// cache.
type PersistChat struct{ Entry ChatEntry }

// Notice surfaces a line in the system notice area of the view.
type Notice struct{ Text string }

func (SendFrame) isEffect()          {}
func (PlayerSetSource) isEffect()    {}
func (PlayerPlay) isEffect()         {}
func (PlayerPause) isEffect()        {}
func (PlayerSeek) isEffect()         {}
func (PlayerHideProgress) isEffect() {}
func (PersistChat) isEffect()        {}
func (Notice) isEffect()             {}

// PlayerTransitionKind names the local player events the bridge reacts to.
type PlayerTransitionKind int

const (
	TransitionPlay PlayerTransitionKind = iota
	TransitionPause
	TransitionSeeked
)

// Machine consumes parsed inbound messages and user intents, owns the
// RoomState aggregate, and emits effects. It is the only writer of the
// aggregate; everything else reads copies.
type Machine struct {
	state            *RoomState
	joinRequested    bool
	remoteApplyDepth int
}

// NewMachine starts a machine for one room visit. An empty room id means the
// page location had no /rooms/ segment; the machine then never emits a join
// request.
func NewMachine(roomID string) *Machine {
	return &Machine{state: NewRoomState(roomID)}
}

// State exposes the aggregate for the view layer. Callers must treat it as
// read-only.
func (m *Machine) State() *RoomState { return m.state }

// Connected handles a transport "opened" notification. Identity is not
// preserved across reconnects, so the session resets to a fresh CONNECTING
// state; the chat log survives because the history snapshot merge is
// idempotent. The join request itself waits for IDENTIFY (or the grace
// fallback).
func (m *Machine) Connected() []Effect {
	roomID := m.state.Session.RoomID
	chat := m.state.Chat
	m.state = NewRoomState(roomID)
	m.state.Chat = chat
	m.joinRequested = false
	m.remoteApplyDepth = 0
	return nil
}

// Disconnected handles transport close or error. The transport layer owns the
// retry; the machine just marks the session down.
func (m *Machine) Disconnected(err error) []Effect {
	m.state.Session.Phase = PhaseConnecting
	if err != nil {
		return []Effect{Notice{Text: fmt.Sprintf("connection lost: %v", err)}}
	}
	return []Effect{Notice{Text: "connection closed, retrying"}}
}

// GraceElapsed is the fallback when no IDENTIFY frame arrived within the
// grace window: the join request goes out with an empty socket id, which the
// server accepts.
func (m *Machine) GraceElapsed() []Effect {
	return m.requestJoin()
}

func (m *Machine) requestJoin() []Effect {
	if m.joinRequested || m.state.Session.RoomID == "" {
		return nil
	}
	if m.state.Session.Phase != PhaseConnecting {
		return nil
	}
	m.joinRequested = true
	m.state.Session.Phase = PhaseJoining
	return []Effect{SendFrame{Msg: NewJoinRequest(m.state.Session.SocketID, m.state.Session.RoomID)}}
}

// ErrDroppedFrame marks frames the machine logged and ignored.
var ErrDroppedFrame = errors.New("frame dropped")

// Apply dispatches one inbound envelope. Malformed payloads and unknown
// events are logged and dropped; they never desynchronize the aggregate or
// crash the loop.
func (m *Machine) Apply(msg WSMessage) []Effect {
	if msg.Type == TypeError {
		return []Effect{Notice{Text: "server reported an error"}}
	}

	switch msg.Event {
	case EventIdentify:
		return m.applyIdentify(msg)
	case EventUserJoinAnswer:
		return m.applyJoinAnswer(msg)
	case EventRoomMessagesAnswer:
		return m.applyRoomMessages(msg)
	case EventChatMessageReceived:
		return m.applyChatReceived(msg)
	case EventUserJoint:
		return m.applyUserJoint(msg)
	case EventUserLeft:
		return m.applyUserLeft(msg)
	case EventHostStateReceived:
		return m.applyHostState(msg)
	default:
		// includes USER_STATE_RECEIVED and the VIDEO_* telemetry events the
		// client has no use for
		logDropped(msg.Event, ErrDroppedFrame)
		return nil
	}
}

func (m *Machine) applyIdentify(msg WSMessage) []Effect {
	var data IdentifyData
	if err := decodeData(msg, &data); err != nil {
		logDropped(msg.Event, err)
		return nil
	}
	m.state.Session.SocketID = data.SocketID
	m.state.Session.AuthUserID = data.AuthID
	m.state.Session.AuthUsername = data.AuthUsername
	// identify confirmed, fire the join request without waiting for the
	// grace timer
	return m.requestJoin()
}

func (m *Machine) applyJoinAnswer(msg WSMessage) []Effect {
	if m.state.Session.Phase != PhaseConnecting && m.state.Session.Phase != PhaseJoining {
		logDropped(msg.Event, ErrDroppedFrame)
		return nil
	}
	var data JoinAnswerData
	if err := decodeData(msg, &data); err != nil {
		logDropped(msg.Event, err)
		return nil
	}

	if data.IsHost {
		m.state.Session.Host = HostYes
	} else {
		m.state.Session.Host = HostGuest
	}
	m.state.Session.RoomTitle = data.Title
	m.state.Session.HostUsername = data.Host
	m.state.Session.Phase = PhaseJoined
	m.state.Roster.ReplaceAll(data.Participants, data.CountedParticipants)
	m.state.VideoSource = data.Src

	effects := []Effect{PlayerSetSource{Src: data.Src}}
	if !data.IsHost {
		effects = append(effects, PlayerHideProgress{})
	}
	effects = append(effects, SendFrame{Msg: NewRoomMessagesRequest(m.state.Session.SocketID, m.state.Session.RoomID)})
	return effects
}

func (m *Machine) applyRoomMessages(msg WSMessage) []Effect {
	if m.state.Session.Phase != PhaseJoined {
		logDropped(msg.Event, ErrDroppedFrame)
		return nil
	}
	var data RoomMessagesData
	if err := decodeData(msg, &data); err != nil {
		logDropped(msg.Event, err)
		return nil
	}
	m.state.Chat.ReplaceSnapshot(data.Messages)
	return nil
}

func (m *Machine) applyChatReceived(msg WSMessage) []Effect {
	if m.state.Session.Phase != PhaseJoined {
		logDropped(msg.Event, ErrDroppedFrame)
		return nil
	}
	var data ChatMessageData
	if err := decodeData(msg, &data); err != nil {
		logDropped(msg.Event, err)
		return nil
	}
	entry, _ := m.state.Chat.Receive(data, m.state.Session.AuthUserID)
	return []Effect{PersistChat{Entry: entry}}
}

func (m *Machine) applyUserJoint(msg WSMessage) []Effect {
	if m.state.Session.Phase != PhaseJoined {
		logDropped(msg.Event, ErrDroppedFrame)
		return nil
	}
	var data UserJointData
	if err := decodeData(msg, &data); err != nil {
		logDropped(msg.Event, err)
		return nil
	}
	m.state.Roster.Insert(Participant{UserID: data.UserID, Username: data.Username, IsHost: data.IsHost})
	if data.CountedParticipants > 0 {
		m.state.Roster.DisplayCount = data.CountedParticipants
	}
	return nil
}

func (m *Machine) applyUserLeft(msg WSMessage) []Effect {
	if m.state.Session.Phase != PhaseJoined {
		logDropped(msg.Event, ErrDroppedFrame)
		return nil
	}
	var data UserLeftData
	if err := decodeData(msg, &data); err != nil {
		logDropped(msg.Event, err)
		return nil
	}
	m.state.Roster.Remove(data.UserID)
	m.state.Roster.DisplayCount = data.CountedParticipants
	if m.state.Roster.DisplayCount < 0 {
		m.state.Roster.DisplayCount = 0
	}
	return nil
}

func (m *Machine) applyHostState(msg WSMessage) []Effect {
	if m.state.Session.Phase != PhaseJoined || m.state.Session.IsHost() {
		logDropped(msg.Event, ErrDroppedFrame)
		return nil
	}
	var data HostStateData
	if err := decodeData(msg, &data); err != nil {
		logDropped(msg.Event, err)
		return nil
	}

	var effects []Effect
	switch data.State {
	case StatePlaying:
		effects = append(effects, PlayerPlay{})
	case StatePaused:
		effects = append(effects, PlayerPause{})
	}
	effects = append(effects, PlayerSeek{Seconds: data.CurrentTimeSeconds})

	// mirror so the view and the bridge agree on what the player should be
	// doing while the effects land
	if data.State != "" {
		m.state.PlaybackState = data.State
	}
	m.state.PositionSeconds = data.CurrentTimeSeconds
	return effects
}

// SubmitChat is the chat-form intent: optimistic prepend, then the outbound
// frame. Before the join answer lands the input is effectively disabled.
func (m *Machine) SubmitChat(content string, now time.Time) []Effect {
	if m.state.Session.Phase != PhaseJoined {
		return []Effect{Notice{Text: "still joining, hold on"}}
	}
	if content == "" {
		return nil
	}
	m.state.Chat.AppendLocal(&m.state.Session, content, now)
	return []Effect{SendFrame{Msg: NewChatSend(m.state.Session.SocketID, m.state.Session.RoomID, content)}}
}

// BeginRemoteApply raises the feedback guard while player effects from a
// remote transition are being executed. Balanced by EndRemoteApply.
func (m *Machine) BeginRemoteApply() { m.remoteApplyDepth++ }

// EndRemoteApply lowers the guard.
func (m *Machine) EndRemoteApply() {
	if m.remoteApplyDepth > 0 {
		m.remoteApplyDepth--
	}
}

// PlayerTransition is the local-intent bridge: a play, pause, or seeked event
// on the player becomes HOST_STATE_SEND or USER_STATE_SEND, unless it was
// caused by the machine itself applying a remote state, or by a seek still in
// flight.
func (m *Machine) PlayerTransition(player PlaybackController, kind PlayerTransitionKind) []Effect {
	if m.remoteApplyDepth > 0 {
		return nil
	}
	if m.state.Session.Phase != PhaseJoined {
		return nil
	}
	if kind != TransitionSeeked && player.IsSeeking() {
		// a seek momentarily mutates play state; don't report it
		return nil
	}

	var state string
	switch kind {
	case TransitionPlay:
		state = StatePlaying
	case TransitionPause:
		state = StatePaused
	case TransitionSeeked:
		if player.IsPaused() {
			state = StatePaused
		} else {
			state = StatePlaying
		}
	default:
		return nil
	}

	event := EventUserStateSend
	if m.state.Session.IsHost() {
		event = EventHostStateSend
	}

	position := player.CurrentTimeSeconds()
	m.state.PlaybackState = state
	m.state.PositionSeconds = position
	return []Effect{SendFrame{Msg: NewStateSend(event, state, m.state.Session.SocketID, m.state.Session.RoomID, position)}}
}
