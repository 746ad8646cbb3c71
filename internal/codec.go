package internal

import (
	"encoding/json"
	"fmt"
)

// DecodeError wraps a malformed frame so callers can log and drop it without
// touching session state.
type DecodeError struct {
	Frame []byte
	Err   error
}

func (e *DecodeError) Error() string {
	return fmt.Sprintf("decode frame: %v", e.Err)
}

func (e *DecodeError) Unwrap() error { return e.Err }

// DecodeFrame parses one text frame into an envelope. A frame that is not a
// JSON object with a type field comes back as a DecodeError.
func DecodeFrame(frame []byte) (WSMessage, error) {
	var msg WSMessage
	if err := json.Unmarshal(frame, &msg); err != nil {
		return WSMessage{}, &DecodeError{Frame: frame, Err: err}
	}
	if msg.Type != TypeEvent && msg.Type != TypeError {
		return WSMessage{}, &DecodeError{Frame: frame, Err: fmt.Errorf("unknown envelope type %q", msg.Type)}
	}
	return msg, nil
}

// EncodeFrame serializes an envelope for the wire. It never fails for
// well-formed message values; the payload is already raw JSON.
func EncodeFrame(msg WSMessage) []byte {
	encoded, err := json.Marshal(msg)
	if err != nil {
		// only reachable with a hand-built invalid RawMessage
		return []byte(`{"type":"EVENT"}`)
	}
	return encoded
}

// eventMessage builds an EVENT envelope around an already typed payload.
func eventMessage(event string, data interface{}) WSMessage {
	raw, err := json.Marshal(data)
	if err != nil {
		raw = json.RawMessage(`{}`)
	}
	return WSMessage{Type: TypeEvent, Event: event, Data: raw}
}

// NewJoinRequest asks the server to add this socket to the room. The socket
// id may still be empty when the identify frame has not landed yet; the
// server tolerates that.
func NewJoinRequest(socketID, roomID string) WSMessage {
	return eventMessage(EventUserJoinRequest, joinRequestData{SocketID: socketID, RoomID: roomID})
}

// NewRoomMessagesRequest asks for the chat history snapshot.
func NewRoomMessagesRequest(socketID, roomID string) WSMessage {
	return eventMessage(EventRoomMessagesRequest, roomMessagesRequestData{SocketID: socketID, RoomID: roomID})
}

// NewChatSend carries one outbound chat message.
func NewChatSend(socketID, roomID, content string) WSMessage {
	return eventMessage(EventChatMessageSend, chatSendData{SocketID: socketID, RoomID: roomID, Content: content})
}

// NewStateSend carries a playback transition. The event name decides the
// authority: HOST_STATE_SEND drives guests, USER_STATE_SEND is informational.
func NewStateSend(event, state, socketID, roomID string, currentTimeSeconds float64) WSMessage {
	return eventMessage(event, stateSendData{
		State:              state,
		SocketID:           socketID,
		RoomID:             roomID,
		CurrentTimeSeconds: currentTimeSeconds,
	})
}

// decodeData unmarshals an event payload into its typed struct. Extra fields
// are ignored, missing fields zero out.
func decodeData(msg WSMessage, out interface{}) error {
	if len(msg.Data) == 0 {
		return nil
	}
	if err := json.Unmarshal(msg.Data, out); err != nil {
		return &DecodeError{Frame: msg.Data, Err: err}
	}
	return nil
}
