package chat

import (
	"sync"
	"time"

	"github.com/google/uuid"
)

// session tracks one conversation. Kept deliberately small; no message
// history is stored, only enough to give clients a stable identifier.
type session struct {
	ID        string
	CreatedAt time.Time
	LastSeen  time.Time
	Messages  int
}

type sessionRegistry struct {
	mu       sync.Mutex
	sessions map[string]*session
}

func newSessionRegistry() *sessionRegistry {
	return &sessionRegistry{sessions: make(map[string]*session)}
}

// touch records activity on the given session, creating it if unknown. A
// blank id gets a fresh UUID.
func (r *sessionRegistry) touch(id string) string {
	r.mu.Lock()
	defer r.mu.Unlock()

	if id == "" {
		id = uuid.NewString()
	}
	now := time.Now()
	s, ok := r.sessions[id]
	if !ok {
		s = &session{ID: id, CreatedAt: now}
		r.sessions[id] = s
	}
	s.LastSeen = now
	s.Messages++
	return id
}

func (r *sessionRegistry) len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.sessions)
}
