package memory

import (
	"context"
	"fmt"
	"slices"
	"sort"
	"sync"

	"github.com/custodia-labs/mapping-builder/internal/core/domain"
	"github.com/custodia-labs/mapping-builder/internal/core/ports/driven"
)

// Ensure SnapshotStore implements the interface.
var _ driven.SnapshotStore = (*SnapshotStore)(nil)

// SnapshotStore is an in-memory implementation of driven.SnapshotStore.
type SnapshotStore struct {
	mu        sync.RWMutex
	snapshots map[string]domain.Snapshot
}

// NewSnapshotStore creates a new in-memory snapshot store.
func NewSnapshotStore() *SnapshotStore {
	return &SnapshotStore{
		snapshots: make(map[string]domain.Snapshot),
	}
}

// Save stores a snapshot.
func (s *SnapshotStore) Save(_ context.Context, snapshot *domain.Snapshot) error {
	if snapshot == nil || snapshot.ID == "" {
		return fmt.Errorf("save snapshot without id: %w", domain.ErrInvalidInput)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.snapshots[snapshot.ID]; exists {
		return domain.ErrAlreadyExists
	}
	cp := *snapshot
	cp.Content = slices.Clone(snapshot.Content)
	s.snapshots[cp.ID] = cp
	return nil
}

// Get retrieves a snapshot by ID.
func (s *SnapshotStore) Get(_ context.Context, id string) (*domain.Snapshot, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	snapshot, ok := s.snapshots[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	snapshot.Content = slices.Clone(snapshot.Content)
	return &snapshot, nil
}

// List returns all snapshots, newest first.
func (s *SnapshotStore) List(_ context.Context) ([]domain.Snapshot, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	result := make([]domain.Snapshot, 0, len(s.snapshots))
	for _, snapshot := range s.snapshots {
		snapshot.Content = slices.Clone(snapshot.Content)
		result = append(result, snapshot)
	}
	sort.Slice(result, func(i, j int) bool {
		if result[i].CreatedAt.Equal(result[j].CreatedAt) {
			return result[i].ID < result[j].ID
		}
		return result[i].CreatedAt.After(result[j].CreatedAt)
	})
	return result, nil
}

// Delete removes a snapshot.
func (s *SnapshotStore) Delete(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.snapshots, id)
	return nil
}

// FindByChecksum returns the snapshot with the given content checksum.
func (s *SnapshotStore) FindByChecksum(_ context.Context, checksum uint64) (*domain.Snapshot, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, snapshot := range s.snapshots {
		if snapshot.Checksum == checksum {
			snapshot.Content = slices.Clone(snapshot.Content)
			return &snapshot, nil
		}
	}
	return nil, domain.ErrNotFound
}
