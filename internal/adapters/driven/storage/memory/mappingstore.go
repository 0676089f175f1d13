package memory

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/tiendc/go-deepcopy"

	"github.com/custodia-labs/mapping-builder/internal/core/domain"
	"github.com/custodia-labs/mapping-builder/internal/core/ports/driven"
)

// Ensure MappingStore implements the interface.
var _ driven.MappingStore = (*MappingStore)(nil)

// MappingStore is an in-memory implementation of driven.MappingStore.
// Trees are copied on the way in and out so callers never share nodes
// with the store.
type MappingStore struct {
	mu    sync.RWMutex
	roots map[int]*domain.NodeMapping
}

// NewMappingStore creates a new in-memory mapping store.
func NewMappingStore() *MappingStore {
	return &MappingStore{
		roots: make(map[int]*domain.NodeMapping),
	}
}

// Save stores or updates a root mapping tree.
func (s *MappingStore) Save(_ context.Context, root *domain.NodeMapping) error {
	if root == nil || root.ID == 0 {
		return fmt.Errorf("save mapping without id: %w", domain.ErrInvalidInput)
	}
	cp, err := clone(root)
	if err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.roots[cp.ID] = cp
	return nil
}

// Get retrieves a root mapping tree by id.
func (s *MappingStore) Get(_ context.Context, id int) (*domain.NodeMapping, error) {
	s.mu.RLock()
	root, ok := s.roots[id]
	s.mu.RUnlock()
	if !ok {
		return nil, domain.ErrNotFound
	}
	return clone(root)
}

// Delete removes a root mapping tree.
func (s *MappingStore) Delete(_ context.Context, id int) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.roots, id)
	return nil
}

// List returns all root mapping trees ordered by id.
func (s *MappingStore) List(_ context.Context) ([]*domain.NodeMapping, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	result := make([]*domain.NodeMapping, 0, len(s.roots))
	for _, root := range s.roots {
		cp, err := clone(root)
		if err != nil {
			return nil, err
		}
		result = append(result, cp)
	}
	sort.Slice(result, func(i, j int) bool {
		return result[i].ID < result[j].ID
	})
	return result, nil
}

// ReplaceAll drops every stored tree and stores roots instead.
func (s *MappingStore) ReplaceAll(_ context.Context, roots []*domain.NodeMapping) error {
	next := make(map[int]*domain.NodeMapping, len(roots))
	for _, root := range roots {
		if root == nil || root.ID == 0 {
			return fmt.Errorf("save mapping without id: %w", domain.ErrInvalidInput)
		}
		cp, err := clone(root)
		if err != nil {
			return err
		}
		next[cp.ID] = cp
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.roots = next
	return nil
}

func clone(m *domain.NodeMapping) (*domain.NodeMapping, error) {
	var cp domain.NodeMapping
	if err := deepcopy.Copy(&cp, m); err != nil {
		return nil, fmt.Errorf("failed to copy mapping %d: %w", m.ID, err)
	}
	return &cp, nil
}
