package internal

import "encoding/json"

// envelope types used on the wire
const (
	TypeEvent = "EVENT"
	TypeError = "ERROR"
)

// playback states as the server spells them
const (
	StateStop    = "STOP"
	StatePaused  = "PAUSED"
	StatePlaying = "PLAYING"
	StateEnd     = "END"
)

// every event name the server knows about; the client only reacts to a
// subset and ignores the rest without failing.
const (
	EventHostStateSend       = "HOST_STATE_SEND"
	EventHostStateReceived   = "HOST_STATE_RECEIVED"
	EventUserStateSend       = "USER_STATE_SEND"
	EventUserStateReceived   = "USER_STATE_RECEIVED"
	EventVideoPaused         = "VIDEO_PAUSED"
	EventVideoPlaying        = "VIDEO_PLAYING"
	EventChatMessageSend     = "CHAT_MESSAGE_SEND"
	EventChatMessageReceived = "CHAT_MESSAGE_RECEIVED"
	EventUserJoinRequest     = "USER_JOIN_REQUEST"
	EventUserJoinAnswer      = "USER_JOIN_ANSWER"
	EventRoomMessagesRequest = "ROOM_MESSAGES_REQUEST"
	EventRoomMessagesAnswer  = "ROOM_MESSAGES_ANSWER"
	EventUserJoint           = "USER_JOINT"
	EventUserLeft            = "USER_LEFT"
	EventIdentify            = "IDENTIFY"
)

// handledInbound reports whether the client reacts to an inbound event; the
// rest is counted as dropped.
func handledInbound(event string) bool {
	switch event {
	case EventIdentify, EventUserJoinAnswer, EventRoomMessagesAnswer,
		EventChatMessageReceived, EventUserJoint, EventUserLeft, EventHostStateReceived:
		return true
	}
	return false
}

// WSMessage is the frame envelope in both directions. Data stays raw until a
// handler knows which payload shape to expect.
type WSMessage struct {
	Type  string          `json:"type"`
	Event string          `json:"event,omitempty"`
	Data  json.RawMessage `json:"data,omitempty"`
}

// IdentifyData arrives right after the socket opens.
type IdentifyData struct {
	SocketID     string `json:"socket_id"`
	AuthID       string `json:"auth_id"`
	AuthUsername string `json:"auth_username"`
}

// ParticipantData is one roster entry as the server sends it.
type ParticipantData struct {
	Username string `json:"username"`
	IsHost   bool   `json:"is_host"`
}

// JoinAnswerData is the authoritative room snapshot sent in reply to a join
// request.
type JoinAnswerData struct {
	IsHost              bool                       `json:"is_host"`
	Title               string                     `json:"title"`
	Participants        map[string]ParticipantData `json:"participants"`
	Host                string                     `json:"host"`
	Src                 string                     `json:"src"`
	CountedParticipants int                        `json:"counted_participants"`
}

// ChatMessageData is one chat message on the wire.
type ChatMessageData struct {
	SenderID       string `json:"sender_id"`
	SenderUsername string `json:"sender_username"`
	IsHost         bool   `json:"is_host"`
	Content        string `json:"content"`
	CreatedAt      string `json:"created_at"`
}

// RoomMessagesData is the bulk chat history snapshot.
type RoomMessagesData struct {
	Messages []ChatMessageData `json:"messages"`
}

// UserJointData announces a participant arriving.
type UserJointData struct {
	UserID              string `json:"user_id"`
	Username            string `json:"username"`
	IsHost              bool   `json:"is_host"`
	CountedParticipants int    `json:"counted_participants"`
}

// UserLeftData announces a participant leaving.
type UserLeftData struct {
	UserID              string `json:"user_id"`
	CountedParticipants int    `json:"counted_participants"`
}

// HostStateData carries the host's playback transition to guests.
type HostStateData struct {
	State              string  `json:"state"`
	CurrentTimeSeconds float64 `json:"current_time_seconds"`
}

// outbound payloads

type joinRequestData struct {
	SocketID string `json:"socket_id"`
	RoomID   string `json:"room_id"`
}

type roomMessagesRequestData struct {
	SocketID string `json:"socket_id"`
	RoomID   string `json:"room_id"`
}

type chatSendData struct {
	SocketID string `json:"socket_id"`
	RoomID   string `json:"room_id"`
	Content  string `json:"content"`
}

type stateSendData struct {
	State              string  `json:"state"`
	SocketID           string  `json:"socket_id"`
	RoomID             string  `json:"room_id"`
	CurrentTimeSeconds float64 `json:"current_time_seconds"`
}
