package internal

import (
	"encoding/json"
	"net/http"
	"sync/atomic"
)

// Metrics counts client-side protocol activity. Exposed as JSON on the
// optional debug listener.
type Metrics struct {
	reconnects      atomic.Uint64
	framesDecoded   atomic.Uint64
	decodeErrors    atomic.Uint64
	droppedFrames   atomic.Uint64
	chatSent        atomic.Uint64
	stateEventsSent atomic.Uint64
}

func NewMetrics() *Metrics {
	return &Metrics{}
}

func (m *Metrics) IncReconnect()      { m.reconnects.Add(1) }
func (m *Metrics) IncFrameDecoded()   { m.framesDecoded.Add(1) }
func (m *Metrics) IncDecodeError()    { m.decodeErrors.Add(1) }
func (m *Metrics) IncDroppedFrame()   { m.droppedFrames.Add(1) }
func (m *Metrics) IncChatSent()       { m.chatSent.Add(1) }
func (m *Metrics) IncStateEventSent() { m.stateEventsSent.Add(1) }

func (m *Metrics) ServeHTTP(w http.ResponseWriter, _ *http.Request) {
	payload := map[string]any{
		"reconnects_total":        m.reconnects.Load(),
		"frames_decoded_total":    m.framesDecoded.Load(),
		"decode_errors_total":     m.decodeErrors.Load(),
		"dropped_frames_total":    m.droppedFrames.Load(),
		"chat_sent_total":         m.chatSent.Load(),
		"state_events_sent_total": m.stateEventsSent.Load(),
	}
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(payload)
}
