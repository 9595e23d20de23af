// Package mirror keeps a client's local replica of the presence registry.
//
// The replica is driven only by protocol messages. Every message other than
// hello is idempotent and tolerates arriving out of order relative to
// messages caused by other participants.
package mirror

import (
	"sort"
	"sync"

	"github.com/vovakirdan/pulse-server/internal/presence"
	"github.com/vovakirdan/pulse-server/internal/proto"
)

// Entry is one mirrored participant.
type Entry struct {
	UserID    string
	Color     proto.Color
	Position  proto.Position
	Intensity float64
	IsSelf    bool
}

// Mirror is written by one message-handling goroutine and may be read
// concurrently by render and sampling code.
type Mirror struct {
	mu      sync.RWMutex
	entries map[string]*Entry
	selfID  string
}

// New returns an empty mirror that has not yet seen hello.
func New() *Mirror {
	return &Mirror{entries: make(map[string]*Entry)}
}

// ApplyHello replaces the whole mirror with the server snapshot.
func (m *Mirror) ApplyHello(h proto.Hello) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.entries = make(map[string]*Entry, len(h.Peers)+1)
	m.selfID = h.Self.UserID
	for _, peer := range h.Peers {
		m.entries[peer.UserID] = entryFrom(peer, false)
	}
	m.entries[h.Self.UserID] = entryFrom(h.Self, true)
}

// ApplyJoined inserts or overwrites a participant.
func (m *Mirror) ApplyJoined(r proto.Record) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if r.UserID == "" {
		return
	}
	if m.selfID != "" && r.UserID == m.selfID {
		// Our own intensity stays local; only refresh the fixed attributes.
		if self, ok := m.entries[r.UserID]; ok {
			self.Color = r.Color
			self.Position = r.Position
			return
		}
		m.entries[r.UserID] = entryFrom(r, true)
		return
	}
	m.entries[r.UserID] = entryFrom(r, false)
}

// ApplyLeft removes a participant if present.
func (m *Mirror) ApplyLeft(l proto.Left) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if l.UserID == m.selfID {
		return
	}
	delete(m.entries, l.UserID)
}

// ApplyStateUpdate stores another participant's intensity. Updates naming
// ourselves or an unknown participant are ignored.
func (m *Mirror) ApplyStateUpdate(u proto.StateUpdateOut) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if u.UserID == m.selfID {
		return
	}
	e, ok := m.entries[u.UserID]
	if !ok {
		return
	}
	e.Intensity = presence.Clamp(u.Intensity)
}

// SetSelfIntensity records the locally sampled intensity. It reports false
// before hello has been applied.
func (m *Mirror) SetSelfIntensity(v float64) bool {
	m.mu.Lock()
	defer m.mu.Unlock()

	self, ok := m.entries[m.selfID]
	if m.selfID == "" || !ok {
		return false
	}
	self.Intensity = presence.Clamp(v)
	return true
}

// SelfID returns our own user id, or "" before hello.
func (m *Mirror) SelfID() string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.selfID
}

// Get returns a copy of one entry.
func (m *Mirror) Get(userID string) (Entry, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	e, ok := m.entries[userID]
	if !ok {
		return Entry{}, false
	}
	return *e, true
}

// Len reports the number of present participants, including ourselves.
func (m *Mirror) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.entries)
}

// Records returns a copy of every present participant sorted by user id.
func (m *Mirror) Records() []Entry {
	m.mu.RLock()
	out := make([]Entry, 0, len(m.entries))
	for _, e := range m.entries {
		out = append(out, *e)
	}
	m.mu.RUnlock()

	sort.Slice(out, func(i, j int) bool { return out[i].UserID < out[j].UserID })
	return out
}

func entryFrom(r proto.Record, self bool) *Entry {
	return &Entry{
		UserID:    r.UserID,
		Color:     r.Color,
		Position:  r.Position,
		Intensity: presence.Clamp(r.Intensity),
		IsSelf:    self,
	}
}
