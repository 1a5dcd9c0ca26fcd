package room

import (
	"sync"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

// Store manages the active rooms in memory with thread-safe access.
type Store struct {
	mu    sync.Mutex
	rooms map[uuid.UUID]*Room
}

// NewStore initializes an empty Store.
func NewStore() *Store {
	return &Store{
		rooms: make(map[uuid.UUID]*Room),
	}
}

// Add registers a room and wires its OnEmpty callback to self-cleanup.
func (s *Store) Add(r *Room) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.rooms[r.ID]; exists {
		logrus.Warnf("room store: room %s already exists", r.ID)
		return
	}
	if r.OnEmpty == nil {
		r.OnEmpty = s.Delete
	}
	s.rooms[r.ID] = r
	logrus.Infof("room store: added room %s", r.ID)
}

// Delete drops a room, typically via the room's OnEmpty callback.
func (s *Store) Delete(id uuid.UUID) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.rooms[id]; exists {
		delete(s.rooms, id)
		logrus.Infof("room store: deleted room %s", id)
	}
}

// Get retrieves a room by ID.
func (s *Store) Get(id uuid.UUID) (*Room, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	r, ok := s.rooms[id]
	return r, ok
}

// List returns a snapshot copy of the active rooms.
func (s *Store) List() map[uuid.UUID]*Room {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make(map[uuid.UUID]*Room, len(s.rooms))
	for k, v := range s.rooms {
		out[k] = v
	}
	return out
}
