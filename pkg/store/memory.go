package store

import (
	"context"
	"maps"
	"slices"
	"sync"

	"github.com/matzehuels/behave/pkg/observability"
	"github.com/matzehuels/behave/pkg/token"
)

// MemoryStore keeps encoded records in memory. Loads decode a fresh copy,
// so callers never share state with the store.
type MemoryStore struct {
	mu         sync.RWMutex
	containers map[string][]byte
	scripts    map[int]bool
	hooks      observability.StoreHooks
}

// NewMemoryStore returns an empty store.
func NewMemoryStore(hooks observability.StoreHooks) *MemoryStore {
	return &MemoryStore{
		containers: make(map[string][]byte),
		scripts:    make(map[int]bool),
		hooks:      hooksOrNoop(hooks),
	}
}

func (s *MemoryStore) LoadContainer(ctx context.Context, id string) (*token.BundleContainer, error) {
	s.mu.RLock()
	data, ok := s.containers[id]
	s.mu.RUnlock()
	startTimer(s.hooks, BackendMemory).load(ctx, id, ok, nil)
	if !ok {
		return nil, notFound(id)
	}
	return decode(id, data)
}

func (s *MemoryStore) SaveContainer(ctx context.Context, rec *token.BundleContainer) error {
	data, err := encode(rec)
	if err != nil {
		return err
	}
	s.mu.Lock()
	s.containers[rec.ID] = data
	s.mu.Unlock()
	startTimer(s.hooks, BackendMemory).save(ctx, rec.ID, len(data), nil)
	return nil
}

func (s *MemoryStore) DeleteContainer(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.containers, id)
	return nil
}

func (s *MemoryStore) ListContainers(context.Context) ([]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return slices.Sorted(maps.Keys(s.containers)), nil
}

func (s *MemoryStore) ProvisionScript(_ context.Context, shallowID int) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.scripts[shallowID] = true
	return nil
}

func (s *MemoryStore) DeleteScript(_ context.Context, shallowID int) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.scripts, shallowID)
	return nil
}

// HasScript reports whether a script record exists.
func (s *MemoryStore) HasScript(shallowID int) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.scripts[shallowID]
}

func (s *MemoryStore) Close() error { return nil }

var _ Store = (*MemoryStore)(nil)
