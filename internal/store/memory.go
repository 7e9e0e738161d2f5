package store

import (
	"context"
	"sync"
)

type memorySlot struct {
	doc  []byte
	free bool
}

// MemoryStore keeps games and sessions in process memory. Everything is lost
// on restart.
type MemoryStore struct {
	counters

	mu       sync.RWMutex
	slots    []*memorySlot
	sessions map[string]GameID
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{sessions: make(map[string]GameID)}
}

// live returns the slot for id if it is allocated. Callers hold mu.
func (m *MemoryStore) live(id GameID) (*memorySlot, bool) {
	if id < 1 || int(id) > len(m.slots) {
		return nil, false
	}
	s := m.slots[id-1]
	return s, !s.free
}

func (m *MemoryStore) Load(_ context.Context, id GameID) ([]byte, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	s, ok := m.live(id)
	if !ok || s.doc == nil {
		m.record(&m.loads, ErrGameNotFound)
		return nil, ErrGameNotFound
	}
	m.record(&m.loads, nil)
	return append([]byte(nil), s.doc...), nil
}

func (m *MemoryStore) Save(_ context.Context, id GameID, doc []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	s, ok := m.live(id)
	if !ok {
		m.recordSave(ErrGameNotFound)
		return ErrGameNotFound
	}
	s.doc = append([]byte(nil), doc...)
	m.recordSave(nil)
	return nil
}

func (m *MemoryStore) Allocate(_ context.Context) (GameID, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	defer m.record(&m.allocations, nil)
	for i, s := range m.slots {
		if s.free {
			s.free = false
			s.doc = nil
			return GameID(i + 1), nil
		}
	}
	m.slots = append(m.slots, &memorySlot{})
	return GameID(len(m.slots)), nil
}

func (m *MemoryStore) Free(_ context.Context, id GameID) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	s, ok := m.live(id)
	if !ok {
		m.record(&m.frees, ErrGameNotFound)
		return ErrGameNotFound
	}
	s.free = true
	m.record(&m.frees, nil)
	return nil
}

func (m *MemoryStore) CurrentGame(_ context.Context, userID string) (GameID, bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	id, ok := m.sessions[userID]
	return id, ok, nil
}

func (m *MemoryStore) SetCurrentGame(_ context.Context, userID string, id GameID) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sessions[userID] = id
	return nil
}

func (m *MemoryStore) ClearCurrentGame(_ context.Context, userID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.sessions, userID)
	return nil
}

func (m *MemoryStore) Close() error {
	return nil
}
