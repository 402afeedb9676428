package runtime

import (
	"sort"
	"sync"

	"github.com/samber/lo"

	"drawboard/domain"
)

// SessionRegistry assigns identities and tracks every live session in the
// process. Identities are never reused for the lifetime of the process.
type SessionRegistry struct {
	mu     sync.Mutex
	nextID domain.SessionID
	active map[domain.SessionID]domain.Session
}

func NewSessionRegistry() *SessionRegistry {
	return &SessionRegistry{active: make(map[domain.SessionID]domain.Session)}
}

// Register assigns the next unused identity and a color from the fixed
// cyclic palette.
func (r *SessionRegistry) Register() domain.Session {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.nextID++
	s := domain.NewSession(r.nextID)
	r.active[s.ID] = s
	return s
}

// Unregister removes a session. Unknown identities are a no-op, not a
// failure: disconnects may race with prior cleanup.
func (r *SessionRegistry) Unregister(id domain.SessionID) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.active, id)
}

// ListActive returns every live session ordered by identity.
func (r *SessionRegistry) ListActive() []domain.Session {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := lo.Values(r.active)
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

func (r *SessionRegistry) Count() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.active)
}
