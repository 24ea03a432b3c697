package server

import (
	"sync"

	"github.com/coder/websocket"
)

// Registry is the set of live sessions. Sessions only ever add and remove
// themselves; the set is walked once, at shutdown, to close them.
type Registry struct {
	mu       sync.Mutex
	sessions map[*Session]struct{}
}

func NewRegistry() *Registry {
	return &Registry{sessions: make(map[*Session]struct{})}
}

func (r *Registry) Add(s *Session) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.sessions[s] = struct{}{}
}

// Remove reports whether s was registered. Removing an absent session is a no-op.
func (r *Registry) Remove(s *Session) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.sessions[s]; !ok {
		return false
	}
	delete(r.sessions, s)
	return true
}

func (r *Registry) Contains(s *Session) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	_, ok := r.sessions[s]
	return ok
}

func (r *Registry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.sessions)
}

// closeAll sends a close frame to every registered session. The closes run
// outside the lock because each one waits for the peer's answer.
func (r *Registry) closeAll(code websocket.StatusCode, reason string) {
	r.mu.Lock()
	live := make([]*Session, 0, len(r.sessions))
	for s := range r.sessions {
		live = append(live, s)
	}
	r.mu.Unlock()

	for _, s := range live {
		go s.close(code, reason)
	}
}
