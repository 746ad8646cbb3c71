package internal

import (
	"time"

	"github.com/google/uuid"
)

// Phase tracks where the session is in the join lifecycle.
type Phase int

const (
	PhaseConnecting Phase = iota
	PhaseJoining
	PhaseJoined
	PhaseClosed
)

func (p Phase) String() string {
	switch p {
	case PhaseConnecting:
		return "connecting"
	case PhaseJoining:
		return "joining"
	case PhaseJoined:
		return "joined"
	default:
		return "closed"
	}
}

// HostUnknown/HostGuest/HostYes model the tri-state host flag: unknown until
// the join answer arrives.
type HostStatus int

const (
	HostUnknown HostStatus = iota
	HostGuest
	HostYes
)

// Session is the per-visit identity and phase. Only the Machine mutates it;
// the view reads snapshots.
type Session struct {
	SocketID     string
	AuthUserID   string
	AuthUsername string
	Host         HostStatus
	RoomID       string
	RoomTitle    string
	HostUsername string
	Phase        Phase
}

// IsHost reports whether the local session holds playback authority.
func (s *Session) IsHost() bool { return s.Host == HostYes }

// Participant is one roster entry.
type Participant struct {
	UserID   string
	Username string
	IsHost   bool
}

// Roster is the live participant set. Order is insertion order; the display
// count comes from the server rather than len(entries) because the local map
// can be transiently stale while an event is in flight.
type Roster struct {
	entries      []Participant
	DisplayCount int
}

// ReplaceAll installs the authoritative snapshot from a join answer. Host
// entries go first, guests keep map-iteration-independent order by sorting on
// user id so repeated snapshots render identically.
func (r *Roster) ReplaceAll(participants map[string]ParticipantData, count int) {
	r.entries = r.entries[:0]
	ids := make([]string, 0, len(participants))
	for id := range participants {
		ids = append(ids, id)
	}
	// small n, insertion sort keeps it dependency free
	for i := 1; i < len(ids); i++ {
		for j := i; j > 0 && ids[j] < ids[j-1]; j-- {
			ids[j], ids[j-1] = ids[j-1], ids[j]
		}
	}
	for _, id := range ids {
		p := participants[id]
		r.Insert(Participant{UserID: id, Username: p.Username, IsHost: p.IsHost})
	}
	if count > 0 {
		r.DisplayCount = count
	} else {
		r.DisplayCount = len(r.entries)
	}
}

// Insert adds a participant, host at the head, guests at the tail. Inserting
// an id that is already present replaces the old entry in place so replays
// stay idempotent.
func (r *Roster) Insert(p Participant) {
	for i := range r.entries {
		if r.entries[i].UserID == p.UserID {
			r.entries[i] = p
			return
		}
	}
	if p.IsHost {
		r.entries = append([]Participant{p}, r.entries...)
		return
	}
	r.entries = append(r.entries, p)
}

// Remove drops a participant by id; unknown ids are a no-op.
func (r *Roster) Remove(userID string) {
	for i := range r.entries {
		if r.entries[i].UserID == userID {
			r.entries = append(r.entries[:i], r.entries[i+1:]...)
			return
		}
	}
}

// Ordered returns the entries host first, guests in insertion order. The
// slice is a copy so the renderer never aliases live state.
func (r *Roster) Ordered() []Participant {
	out := make([]Participant, 0, len(r.entries))
	for _, p := range r.entries {
		if p.IsHost {
			out = append(out, p)
		}
	}
	for _, p := range r.entries {
		if !p.IsHost {
			out = append(out, p)
		}
	}
	return out
}

// Len reports the size of the local map, not the displayed count.
func (r *Roster) Len() int { return len(r.entries) }

// ChatEntry is one line of the visible log. LocalID identifies optimistic
// echoes so the server's broadcast of the same message confirms rather than
// duplicates them.
type ChatEntry struct {
	LocalID        string
	SenderID       string
	SenderUsername string
	IsHost         bool
	Content        string
	CreatedAt      time.Time
	Pending        bool
}

// ChatLog holds entries newest first, matching the rendered order.
type ChatLog struct {
	entries []ChatEntry
}

func parseChatTime(value string) time.Time {
	if ts, err := time.Parse(time.RFC3339, value); err == nil {
		return ts
	}
	if ts, err := time.Parse(time.RFC3339Nano, value); err == nil {
		return ts
	}
	return time.Time{}
}

func entryFromWire(m ChatMessageData) ChatEntry {
	return ChatEntry{
		LocalID:        uuid.NewString(),
		SenderID:       m.SenderID,
		SenderUsername: m.SenderUsername,
		IsHost:         m.IsHost,
		Content:        m.Content,
		CreatedAt:      parseChatTime(m.CreatedAt),
	}
}

// AppendLocal prepends an optimistic echo before server confirmation.
func (l *ChatLog) AppendLocal(s *Session, content string, now time.Time) ChatEntry {
	entry := ChatEntry{
		LocalID:        uuid.NewString(),
		SenderID:       s.AuthUserID,
		SenderUsername: s.AuthUsername,
		IsHost:         s.IsHost(),
		Content:        content,
		CreatedAt:      now,
		Pending:        true,
	}
	l.entries = append([]ChatEntry{entry}, l.entries...)
	return entry
}

// Receive applies an incremental broadcast. A message from the local user
// whose content matches the oldest pending echo confirms that echo in place,
// adopting the server timestamp; anything else is prepended.
func (l *ChatLog) Receive(m ChatMessageData, localUserID string) (ChatEntry, bool) {
	if m.SenderID != "" && m.SenderID == localUserID {
		for i := len(l.entries) - 1; i >= 0; i-- {
			if l.entries[i].Pending && l.entries[i].Content == m.Content {
				l.entries[i].Pending = false
				if ts := parseChatTime(m.CreatedAt); !ts.IsZero() {
					l.entries[i].CreatedAt = ts
				}
				return l.entries[i], false
			}
		}
	}
	entry := entryFromWire(m)
	l.entries = append([]ChatEntry{entry}, l.entries...)
	return entry, true
}

// ReplaceSnapshot installs the bulk history answer. Local entries that are
// still pending, or strictly newer than the snapshot's newest message and not
// contained in it, survive the replacement so the visible log never regresses
// when the snapshot races an incremental append.
func (l *ChatLog) ReplaceSnapshot(messages []ChatMessageData) {
	snapshot := make([]ChatEntry, 0, len(messages))
	var newest time.Time
	for _, m := range messages {
		entry := entryFromWire(m)
		if entry.CreatedAt.After(newest) {
			newest = entry.CreatedAt
		}
		snapshot = append(snapshot, entry)
	}

	var kept []ChatEntry
	for _, existing := range l.entries {
		if existing.Pending {
			kept = append(kept, existing)
			continue
		}
		if existing.CreatedAt.After(newest) && !containsEntry(snapshot, existing) {
			kept = append(kept, existing)
		}
	}
	l.entries = append(kept, snapshot...)
}

func containsEntry(entries []ChatEntry, candidate ChatEntry) bool {
	for _, e := range entries {
		if e.SenderID == candidate.SenderID && e.Content == candidate.Content && e.CreatedAt.Equal(candidate.CreatedAt) {
			return true
		}
	}
	return false
}

// Entries returns a copy, newest first.
func (l *ChatLog) Entries() []ChatEntry {
	out := make([]ChatEntry, len(l.entries))
	copy(out, l.entries)
	return out
}

func (l *ChatLog) Len() int { return len(l.entries) }

// RoomState is the aggregate the Machine owns: session identity, roster,
// chat log, and the mirrored playback state.
type RoomState struct {
	Session Session
	Roster  Roster
	Chat    ChatLog

	PlaybackState   string
	PositionSeconds float64
	VideoSource     string
}

// NewRoomState starts a fresh aggregate for one room visit.
func NewRoomState(roomID string) *RoomState {
	return &RoomState{
		Session:       Session{RoomID: roomID, Phase: PhaseConnecting},
		PlaybackState: StateStop,
	}
}
