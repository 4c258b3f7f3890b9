package session

import (
	"context"
	"sync"

	"github.com/SAP-F-2025/thesis-review-portal/internal/models"
)

type memoryEntry struct {
	token string
	user  *models.User
}

// MemoryStore keeps credentials in process memory. They are lost on restart.
type MemoryStore struct {
	mu      sync.RWMutex
	entries map[string]memoryEntry
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{entries: make(map[string]memoryEntry)}
}

func (s *MemoryStore) GetToken(_ context.Context, sid string) (string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.entries[sid].token, nil
}

func (s *MemoryStore) SetToken(_ context.Context, sid, token string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	entry := s.entries[sid]
	entry.token = token
	s.entries[sid] = entry
	return nil
}

func (s *MemoryStore) RemoveToken(_ context.Context, sid string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	entry, ok := s.entries[sid]
	if !ok {
		return nil
	}
	entry.token = ""
	s.put(sid, entry)
	return nil
}

func (s *MemoryStore) GetUser(_ context.Context, sid string) (*models.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	user := s.entries[sid].user
	if user == nil {
		return nil, nil
	}
	copied := *user
	return &copied, nil
}

func (s *MemoryStore) SetUser(_ context.Context, sid string, user *models.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	entry := s.entries[sid]
	if user == nil {
		entry.user = nil
	} else {
		copied := *user
		entry.user = &copied
	}
	s.put(sid, entry)
	return nil
}

func (s *MemoryStore) RemoveUser(_ context.Context, sid string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	entry, ok := s.entries[sid]
	if !ok {
		return nil
	}
	entry.user = nil
	s.put(sid, entry)
	return nil
}

// put drops empty entries so logged-out browsers do not accumulate.
// Caller holds mu.
func (s *MemoryStore) put(sid string, entry memoryEntry) {
	if entry.token == "" && entry.user == nil {
		delete(s.entries, sid)
		return
	}
	s.entries[sid] = entry
}
