package app

import (
	"sync"

	"spygame/internal/domain"
)

// Store holds the live rooms by code
type Store interface {
	Get(code string) (*domain.Room, bool)
	Set(code string, room *domain.Room)
	Delete(code string)
	Exists(code string) bool
	Len() int
	All() []*domain.Room
}

// MemoryStore is a process-local Store
type MemoryStore struct {
	rooms map[string]*domain.Room
	mu    sync.RWMutex
}

// NewMemoryStore creates a new empty store
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		rooms: make(map[string]*domain.Room),
	}
}

// Get retrieves a room by code
func (s *MemoryStore) Get(code string) (*domain.Room, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	room, exists := s.rooms[code]
	return room, exists
}

// Set stores a room
func (s *MemoryStore) Set(code string, room *domain.Room) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.rooms[code] = room
}

// Delete removes a room
func (s *MemoryStore) Delete(code string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.rooms, code)
}

// Exists checks if a room code is taken
func (s *MemoryStore) Exists(code string) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	_, exists := s.rooms[code]
	return exists
}

// Len returns the number of live rooms
func (s *MemoryStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.rooms)
}

// All returns a snapshot of the live rooms
func (s *MemoryStore) All() []*domain.Room {
	s.mu.RLock()
	defer s.mu.RUnlock()
	rooms := make([]*domain.Room, 0, len(s.rooms))
	for _, room := range s.rooms {
		rooms = append(rooms, room)
	}
	return rooms
}
