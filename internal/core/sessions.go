package core

import (
	"sync"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/dkeye/Signal/internal/domain"
)

// SessionTracker records call sessions and their status. It enforces no
// transition order itself; the signaling router decides which status each
// message kind applies, so out-of-order frames can regress a status.
// Sessions are retained for the process lifetime.
type SessionTracker struct {
	mu       sync.RWMutex
	sessions map[domain.SessionID]*domain.CallSession
}

func NewSessionTracker() *SessionTracker {
	return &SessionTracker{sessions: make(map[domain.SessionID]*domain.CallSession)}
}

// Create inserts a session with status calling, overwriting any existing
// entry under the same id.
func (t *SessionTracker) Create(id domain.SessionID, caller, callee domain.PeerID) {
	t.mu.Lock()
	t.sessions[id] = &domain.CallSession{
		SessionID: id,
		CallerID:  caller,
		CalleeID:  callee,
		StartedAt: time.Now(),
		Status:    domain.CallCalling,
	}
	t.mu.Unlock()
	log.Info().Str("module", "core.sessions").Str("session", string(id)).
		Str("caller", string(caller)).Str("callee", string(callee)).Msg("call session created")
}

// SetStatus updates in place when the session exists, no-op otherwise.
func (t *SessionTracker) SetStatus(id domain.SessionID, status domain.CallStatus) {
	t.mu.Lock()
	defer t.mu.Unlock()
	s, ok := t.sessions[id]
	if !ok {
		return
	}
	s.Status = status
	log.Info().Str("module", "core.sessions").Str("session", string(id)).
		Str("status", string(status)).Msg("call session status")
}

// Get returns a copy of the session record.
func (t *SessionTracker) Get(id domain.SessionID) (domain.CallSession, bool) {
	t.mu.RLock()
	defer t.mu.RUnlock()
	s, ok := t.sessions[id]
	if !ok {
		return domain.CallSession{}, false
	}
	return *s, true
}
