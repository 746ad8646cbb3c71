package internal

import (
	"fmt"
	"log"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"
)

const (
	reconnectBaseDelay = 1000 * time.Millisecond
	reconnectMaxDelay  = 30000 * time.Millisecond
)

// ReconnectDelay implements the capped linear backoff: attempt one waits the
// base delay, each consecutive failure adds another base delay, capped.
func ReconnectDelay(attempt int) time.Duration {
	if attempt < 1 {
		attempt = 1
	}
	delay := time.Duration(attempt) * reconnectBaseDelay
	if delay > reconnectMaxDelay {
		return reconnectMaxDelay
	}
	return delay
}

// Transport wraps one websocket connection to the room server. There is no
// send buffering: a send while the connection is down fails locally and is
// logged, never surfaced as a crash.
type Transport struct {
	url        string
	header     http.Header
	conn       *websocket.Conn
	writeMutex sync.Mutex
	attempt    int
}

// NewTransport prepares a transport for the given websocket URL. The header
// carries the sessionId cookie the server's auth middleware expects.
func NewTransport(url string, header http.Header) *Transport {
	if header == nil {
		header = http.Header{}
	}
	return &Transport{url: url, header: header}
}

// Dial establishes the connection. On success the backoff attempt counter
// resets; on failure it grows so NextDelay climbs toward the cap.
func (t *Transport) Dial() error {
	conn, _, err := websocket.DefaultDialer.Dial(t.url, t.header)
	if err != nil {
		t.attempt++
		return fmt.Errorf("dial %s: %w", t.url, err)
	}
	t.conn = conn
	t.attempt = 0
	return nil
}

// NextDelay returns how long to wait before the next dial attempt.
func (t *Transport) NextDelay() time.Duration {
	return ReconnectDelay(t.attempt)
}

// Attempt exposes the consecutive-failure counter.
func (t *Transport) Attempt() int { return t.attempt }

// MarkBroken drops the connection after a read error so the next dial starts
// a new attempt sequence.
func (t *Transport) MarkBroken() {
	if t.conn != nil {
		_ = t.conn.Close()
		t.conn = nil
	}
	t.attempt++
}

// ReadFrame blocks for one text frame. Non-text frames come back empty with
// a nil error so the read loop just spins on.
func (t *Transport) ReadFrame() ([]byte, error) {
	if t.conn == nil {
		return nil, fmt.Errorf("websocket not connected")
	}
	messageType, payload, err := t.conn.ReadMessage()
	if err != nil {
		return nil, err
	}
	if messageType != websocket.TextMessage {
		return nil, nil
	}
	return payload, nil
}

// SendFrame writes one encoded envelope. Callers must not send before the
// transport reports open; a send on a down connection is logged and dropped.
func (t *Transport) SendFrame(frame []byte) error {
	if t.conn == nil {
		log.Printf("send while disconnected, dropping frame")
		return nil
	}
	t.writeMutex.Lock()
	defer t.writeMutex.Unlock()
	if err := t.conn.WriteMessage(websocket.TextMessage, frame); err != nil {
		return fmt.Errorf("write frame: %w", err)
	}
	return nil
}

// Close tears the connection down cleanly on user-initiated exit.
func (t *Transport) Close() {
	if t.conn == nil {
		return
	}
	_ = t.conn.WriteMessage(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
	_ = t.conn.Close()
	t.conn = nil
}

// Connected reports whether a dial has succeeded and not yet broken.
func (t *Transport) Connected() bool { return t.conn != nil }
