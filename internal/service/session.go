package service

import (
	"fmt"
	"sync"

	"github.com/maxwellyoung/cinesync/internal/models"
)

// SessionHistory tracks the (title, year) pairs already surfaced during one
// discovery session. It is advisory duplicate-avoidance, not correctness: a
// lost update under concurrent generations only risks a repeat suggestion.
type SessionHistory struct {
	mu    sync.Mutex
	seen  map[string]bool
	order []string
}

// NewSessionHistory creates an empty history.
func NewSessionHistory() *SessionHistory {
	return &SessionHistory{seen: make(map[string]bool)}
}

func historyKey(title string, year int) string {
	return fmt.Sprintf("%s|%d", models.TitleKey(title), year)
}

// IsDuplicate reports whether the pair was already surfaced this session.
func (h *SessionHistory) IsDuplicate(title string, year int) bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.seen[historyKey(title, year)]
}

// Record marks the pair as surfaced.
func (h *SessionHistory) Record(title string, year int) {
	h.mu.Lock()
	defer h.mu.Unlock()
	key := historyKey(title, year)
	if !h.seen[key] {
		h.seen[key] = true
		h.order = append(h.order, models.TitleKey(title))
	}
}

// Titles returns the surfaced titles in order, for the exclusion clause.
func (h *SessionHistory) Titles() []string {
	h.mu.Lock()
	defer h.mu.Unlock()
	out := make([]string, len(h.order))
	copy(out, h.order)
	return out
}

// SessionRegistry holds per-session histories. Sessions are process-scoped
// and ephemeral; a reset starts a fresh discovery session.
type SessionRegistry struct {
	mu       sync.Mutex
	sessions map[string]*SessionHistory
}

// NewSessionRegistry creates an empty registry.
func NewSessionRegistry() *SessionRegistry {
	return &SessionRegistry{sessions: make(map[string]*SessionHistory)}
}

// History returns the history for a session id, creating it on first use.
func (r *SessionRegistry) History(sessionID string) *SessionHistory {
	r.mu.Lock()
	defer r.mu.Unlock()
	h, ok := r.sessions[sessionID]
	if !ok {
		h = NewSessionHistory()
		r.sessions[sessionID] = h
	}
	return h
}

// Reset discards a session's history.
func (r *SessionRegistry) Reset(sessionID string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.sessions, sessionID)
}
