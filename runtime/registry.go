package runtime

import (
	"sync"

	"github.com/samber/lo"

	"drawboard/contract"
	"drawboard/domain"
)

type Set map[domain.SessionID]struct{}

// Registry maps sessions to their delivery sinks and rooms to their
// member sets.
//
// Registration and membership are two distinct steps: the transport
// registers a sink as soon as the socket opens, but the session only
// becomes a broadcast recipient when the fanout processes its init event.
// That ordering keeps a joiner's snapshot free of duplicates: an
// operation is either in the snapshot or delivered afterwards, never
// both.
type Registry struct {
	mu          sync.RWMutex
	sinks       map[domain.SessionID]contract.EventSink
	roomMembers map[domain.RoomID]Set
}

func NewRegistry() *Registry {
	return &Registry{
		sinks:       make(map[domain.SessionID]contract.EventSink),
		roomMembers: make(map[domain.RoomID]Set),
	}
}

// Register stores a session's sink without making it a recipient yet.
func (r *Registry) Register(id domain.SessionID, sink contract.EventSink) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.sinks[id] = sink
}

// Join adds the session to a room's recipient set. The room entry is
// initialized on first reference.
func (r *Registry) Join(id domain.SessionID, room domain.RoomID) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.roomMembers[room]; !ok {
		r.roomMembers[room] = make(Set)
	}
	r.roomMembers[room][id] = struct{}{}
}

// Leave removes the session from the room and drops its sink. An empty
// member set is removed entirely so no empty room lingers in the map.
func (r *Registry) Leave(id domain.SessionID, room domain.RoomID) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.sinks, id)
	if members, ok := r.roomMembers[room]; ok {
		delete(members, id)
		if len(members) == 0 {
			delete(r.roomMembers, room)
		}
	}
}

// Drop removes a sink that never completed its join.
func (r *Registry) Drop(id domain.SessionID) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.sinks, id)
}

func (r *Registry) SinkFor(id domain.SessionID) (contract.EventSink, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	sink, ok := r.sinks[id]
	return sink, ok
}

// SinksForRoom resolves the room's current members into their sinks.
// Returns a copy safe to iterate without the lock.
func (r *Registry) SinksForRoom(room domain.RoomID) map[domain.SessionID]contract.EventSink {
	r.mu.RLock()
	defer r.mu.RUnlock()
	members, ok := r.roomMembers[room]
	if !ok {
		return nil
	}
	out := make(map[domain.SessionID]contract.EventSink, len(members))
	for id := range members {
		if sink, exists := r.sinks[id]; exists {
			out[id] = sink
		}
	}
	return out
}

func (r *Registry) MembersOf(room domain.RoomID) []domain.SessionID {
	r.mu.RLock()
	defer r.mu.RUnlock()
	members, ok := r.roomMembers[room]
	if !ok {
		return nil
	}
	return lo.Keys(members)
}

func (r *Registry) RoomCount() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.roomMembers)
}
