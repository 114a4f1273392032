package tenant

import (
	"context"
	"sync"

	"github.com/snowskye/lead-gateway/internal/model"
)

// MemoryStore is an in-memory tenant store for tests and single-process use.
type MemoryStore struct {
	mu    sync.RWMutex
	byID  map[string]model.Tenant
	byKey map[string]string // API key -> id
}

// NewMemoryStore creates an empty in-memory tenant store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		byID:  make(map[string]model.Tenant),
		byKey: make(map[string]string),
	}
}

// Create stores a new tenant.
func (s *MemoryStore) Create(ctx context.Context, t *model.Tenant) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.byID[t.ID] = *t
	s.byKey[t.APIKey] = t.ID
	return nil
}

// GetByID fetches a tenant by id.
func (s *MemoryStore) GetByID(ctx context.Context, id string) (*model.Tenant, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	t, ok := s.byID[id]
	if !ok {
		return nil, ErrNotFound
	}
	out := t
	return &out, nil
}

// GetByAPIKey fetches a tenant by credential.
func (s *MemoryStore) GetByAPIKey(ctx context.Context, apiKey string) (*model.Tenant, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	id, ok := s.byKey[apiKey]
	if !ok {
		return nil, ErrNotFound
	}
	t := s.byID[id]
	out := t
	return &out, nil
}

// Update replaces a stored tenant.
func (s *MemoryStore) Update(ctx context.Context, t *model.Tenant) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.byID[t.ID]; !ok {
		return ErrNotFound
	}
	s.byID[t.ID] = *t
	s.byKey[t.APIKey] = t.ID
	return nil
}
