package internal

import (
	"encoding/json"
	"errors"
	"testing"
)

func TestDecodeFrameRoundTrip(t *testing.T) {
	frame := EncodeFrame(NewChatSend("s1", "room-1", "hello"))
	msg, err := DecodeFrame(frame)
	if err != nil {
		t.Fatalf("DecodeFrame: %v", err)
	}
	if msg.Type != TypeEvent || msg.Event != EventChatMessageSend {
		t.Fatalf("unexpected envelope: %+v", msg)
	}
	var data struct {
		SocketID string `json:"socket_id"`
		RoomID   string `json:"room_id"`
		Content  string `json:"content"`
	}
	if err := json.Unmarshal(msg.Data, &data); err != nil {
		t.Fatalf("unmarshal data: %v", err)
	}
	if data.SocketID != "s1" || data.RoomID != "room-1" || data.Content != "hello" {
		t.Fatalf("unexpected data: %+v", data)
	}
}

func TestDecodeFrameRejectsMalformed(t *testing.T) {
	cases := []struct {
		name  string
		frame string
	}{
		{"not json", `{{{`},
		{"wrong shape", `[1,2,3]`},
		{"unknown envelope type", `{"type":"NOPE","event":"IDENTIFY"}`},
		{"empty", ``},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := DecodeFrame([]byte(tc.frame))
			if err == nil {
				t.Fatalf("expected error for %q", tc.frame)
			}
			var decodeErr *DecodeError
			if !errors.As(err, &decodeErr) {
				t.Fatalf("expected DecodeError, got %T", err)
			}
		})
	}
}

func TestDecodeFrameToleratesExtraFields(t *testing.T) {
	frame := []byte(`{"type":"EVENT","event":"USER_JOINT","data":{"user_id":"u2","username":"bob","counted_participants":2,"surprise":"ignored"},"another":123}`)
	msg, err := DecodeFrame(frame)
	if err != nil {
		t.Fatalf("DecodeFrame: %v", err)
	}
	var data UserJointData
	if err := decodeData(msg, &data); err != nil {
		t.Fatalf("decodeData: %v", err)
	}
	if data.UserID != "u2" || data.CountedParticipants != 2 {
		t.Fatalf("unexpected data: %+v", data)
	}
}

func TestStateSendCarriesRequiredFields(t *testing.T) {
	msg := NewStateSend(EventHostStateSend, StatePlaying, "s1", "room-1", 42.5)
	var data map[string]interface{}
	if err := json.Unmarshal(msg.Data, &data); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	for _, field := range []string{"state", "socket_id", "room_id", "current_time_seconds"} {
		if _, ok := data[field]; !ok {
			t.Fatalf("missing field %s in %v", field, data)
		}
	}
	if data["current_time_seconds"].(float64) != 42.5 {
		t.Fatalf("position = %v", data["current_time_seconds"])
	}
}

func TestJoinRequestAllowsEmptySocketID(t *testing.T) {
	msg := NewJoinRequest("", "room-1")
	var data map[string]interface{}
	if err := json.Unmarshal(msg.Data, &data); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if _, ok := data["socket_id"]; !ok {
		t.Fatalf("socket_id must be present even when empty")
	}
}
