package services

import (
	"context"
	"fmt"
	"sync"

	"github.com/custodia-labs/mapping-builder/internal/codec/document"
	"github.com/custodia-labs/mapping-builder/internal/core/domain"
	"github.com/custodia-labs/mapping-builder/internal/core/ports/driven"
	"github.com/custodia-labs/mapping-builder/internal/core/ports/driving"
	"github.com/custodia-labs/mapping-builder/internal/core/tree"
	"github.com/custodia-labs/mapping-builder/internal/logger"
)

// Ensure MappingService implements the interface.
var _ driving.MappingService = (*MappingService)(nil)

// MappingService manages stored mapping trees. Ids are unique across
// every stored tree, not only within one.
type MappingService struct {
	store driven.MappingStore
	codec *document.Codec

	// mu serialises read-modify-write cycles on stored trees.
	mu sync.Mutex
}

// NewMappingService creates a new mapping service. A nil codec uses a
// lenient codec with its own allocator.
func NewMappingService(store driven.MappingStore, codec *document.Codec) *MappingService {
	if codec == nil {
		codec = document.New()
	}
	return &MappingService{
		store: store,
		codec: codec,
	}
}

// List returns one page of root mappings matching filter, or of the
// children of filter.ParentID when it is set.
func (s *MappingService) List(
	ctx context.Context,
	filter domain.NodeMappingFilter,
	pageNumber, pageSize int,
) (domain.DataPage[*domain.NodeMapping], error) {
	if s.store == nil {
		return domain.DataPage[*domain.NodeMapping]{}, domain.ErrNotImplemented
	}
	roots, err := s.store.List(ctx)
	if err != nil {
		return domain.DataPage[*domain.NodeMapping]{}, fmt.Errorf("list mappings: %w", err)
	}

	candidates := roots
	if filter.ParentID != 0 {
		candidates = nil
		if parent, _ := locate(roots, filter.ParentID); parent != nil {
			candidates = parent.Children
		}
	}

	matched := make([]*domain.NodeMapping, 0, len(candidates))
	for _, m := range candidates {
		if filter.Matches(m) {
			matched = append(matched, m)
		}
	}
	return domain.NewDataPage(matched, pageNumber, pageSize), nil
}

// Get retrieves any stored mapping by id.
func (s *MappingService) Get(ctx context.Context, id int) (*domain.NodeMapping, error) {
	if s.store == nil {
		return nil, domain.ErrNotImplemented
	}
	roots, err := s.store.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("get mapping %d: %w", id, err)
	}
	m, _ := locate(roots, id)
	if m == nil {
		return nil, fmt.Errorf("mapping %d: %w", id, domain.ErrNotFound)
	}
	return m, nil
}

// Tree retrieves the whole tree containing the mapping with id.
func (s *MappingService) Tree(ctx context.Context, id int) (*domain.NodeMapping, error) {
	if s.store == nil {
		return nil, domain.ErrNotImplemented
	}
	roots, err := s.store.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("get mapping tree %d: %w", id, err)
	}
	_, root := locate(roots, id)
	if root == nil {
		return nil, fmt.Errorf("mapping %d: %w", id, domain.ErrNotFound)
	}
	return root, nil
}

// Add stores a mapping. Roots are saved as whole trees: a root without
// id is given the highest stored id plus one, and a root with the id of
// a stored root replaces it, adopting its children when it has none of
// its own. A mapping with a parent is saved into the tree holding that
// parent, either as a new child or as a replacement for the mapping
// with the same id.
func (s *MappingService) Add(ctx context.Context, m *domain.NodeMapping) (*domain.NodeMapping, error) {
	if s.store == nil {
		return nil, domain.ErrNotImplemented
	}
	if m == nil {
		return nil, domain.ErrInvalidInput
	}
	if err := m.Validate(); err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	roots, err := s.store.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("add mapping: %w", err)
	}
	if m.IsRoot() {
		return s.addRoot(ctx, roots, m)
	}
	return s.addChild(ctx, roots, m)
}

func (s *MappingService) addRoot(ctx context.Context, roots []*domain.NodeMapping, m *domain.NodeMapping) (*domain.NodeMapping, error) {
	others := make([]*domain.NodeMapping, 0, len(roots))
	for _, r := range roots {
		if r.ID != m.ID || m.ID == 0 {
			others = append(others, r)
		}
	}
	if m.ID != 0 {
		if owner, root := locate(others, m.ID); owner != nil {
			return nil, fmt.Errorf("mapping %d belongs to tree %d: %w", m.ID, root.ID, domain.ErrAlreadyExists)
		}
	}

	visitor := s.visitorPast(roots)
	if existing, _ := locate(roots, m.ID); m.ID != 0 && existing != nil {
		tr, err := tree.New(existing, visitor)
		if err != nil {
			return nil, err
		}
		if err := tr.ReplaceRoot(m); err != nil {
			return nil, err
		}
	} else {
		if m.ID == 0 {
			m.ID = maxStoredID(roots) + 1
		}
		if err := visitor.Hydrate(m); err != nil {
			return nil, err
		}
	}
	if err := checkDisjoint(m, others); err != nil {
		return nil, err
	}
	if err := s.store.Save(ctx, m); err != nil {
		return nil, fmt.Errorf("save mapping %d: %w", m.ID, err)
	}
	logger.Debug("Saved root mapping %s with %d mappings", m.Label(), tree.Count(m))
	return m, nil
}

func (s *MappingService) addChild(ctx context.Context, roots []*domain.NodeMapping, m *domain.NodeMapping) (*domain.NodeMapping, error) {
	_, root := locate(roots, m.ParentID)
	if root == nil {
		return nil, fmt.Errorf("parent mapping %d: %w", m.ParentID, domain.ErrNotFound)
	}
	tr, err := tree.New(root, s.visitorPast(roots))
	if err != nil {
		return nil, err
	}
	if err := tr.Save(m); err != nil {
		return nil, err
	}

	others := make([]*domain.NodeMapping, 0, len(roots)-1)
	for _, r := range roots {
		if r.ID != root.ID {
			others = append(others, r)
		}
	}
	if err := checkDisjoint(tr.Root(), others); err != nil {
		return nil, err
	}
	if err := s.store.Save(ctx, tr.Root()); err != nil {
		return nil, fmt.Errorf("save mapping %d: %w", tr.Root().ID, err)
	}
	logger.Debug("Saved mapping %s under #%d", m.Label(), m.ParentID)
	return m, nil
}

// Delete removes a mapping and its descendants.
func (s *MappingService) Delete(ctx context.Context, id int) error {
	if s.store == nil {
		return domain.ErrNotImplemented
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	roots, err := s.store.List(ctx)
	if err != nil {
		return fmt.Errorf("delete mapping %d: %w", id, err)
	}
	m, root := locate(roots, id)
	if m == nil {
		return fmt.Errorf("mapping %d: %w", id, domain.ErrNotFound)
	}
	if m == root {
		if err := s.store.Delete(ctx, id); err != nil {
			return fmt.Errorf("delete mapping %d: %w", id, err)
		}
		logger.Debug("Deleted root mapping %s", m.Label())
		return nil
	}

	tr, err := tree.New(root, s.visitorPast(roots))
	if err != nil {
		return err
	}
	if err := tr.Delete(m); err != nil {
		return err
	}
	if err := s.store.Save(ctx, tr.Root()); err != nil {
		return fmt.Errorf("save mapping %d: %w", root.ID, err)
	}
	logger.Debug("Deleted mapping %s from tree #%d", m.Label(), root.ID)
	return nil
}

// Export encodes all stored mappings as a mappings document.
func (s *MappingService) Export(ctx context.Context, format domain.DocumentFormat, dropIDs bool) ([]byte, error) {
	if s.store == nil {
		return nil, domain.ErrNotImplemented
	}
	roots, err := s.store.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("export mappings: %w", err)
	}
	data, err := s.codec.Write(format, roots, nil, dropIDs)
	if err != nil {
		return nil, fmt.Errorf("export mappings: %w", err)
	}
	logger.Info("Exported %d root mappings as %s", len(roots), format)
	return data, nil
}

// Import replaces all stored mappings with the document mappings read
// from data. Nothing is stored unless the whole document is valid.
func (s *MappingService) Import(ctx context.Context, data []byte, format domain.DocumentFormat, resetIDs bool) (int, error) {
	if s.store == nil {
		return 0, domain.ErrNotImplemented
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	roots, err := s.codec.Read(data, format, resetIDs)
	if err != nil {
		return 0, fmt.Errorf("import mappings: %w", err)
	}
	seen := make(map[int]bool)
	for _, root := range roots {
		var invalid error
		tree.Walk(root, func(m *domain.NodeMapping) bool {
			if invalid != nil {
				return false
			}
			if seen[m.ID] {
				invalid = &domain.DuplicateIDError{ID: m.ID}
				return false
			}
			seen[m.ID] = true
			invalid = m.Validate()
			return invalid == nil
		})
		if invalid != nil {
			return 0, fmt.Errorf("import mappings: %w", invalid)
		}
	}
	if err := s.store.ReplaceAll(ctx, roots); err != nil {
		return 0, fmt.Errorf("import mappings: %w", err)
	}
	logger.Info("Imported %d root mappings", len(roots))
	return len(roots), nil
}

// visitorPast returns a visitor whose allocator starts after every
// stored id.
func (s *MappingService) visitorPast(roots []*domain.NodeMapping) *tree.Visitor {
	alloc := domain.NewIDAllocator()
	alloc.Advance(maxStoredID(roots))
	return tree.NewVisitor(alloc)
}

// locate finds the mapping with id among the trees, returning it with
// the root of its tree.
func locate(roots []*domain.NodeMapping, id int) (*domain.NodeMapping, *domain.NodeMapping) {
	for _, root := range roots {
		if m := tree.Find(root, id); m != nil {
			return m, root
		}
	}
	return nil, nil
}

func maxStoredID(roots []*domain.NodeMapping) int {
	maxID := 0
	for _, root := range roots {
		maxID = max(maxID, tree.MaxID(root))
	}
	return maxID
}

// checkDisjoint fails if any id in root is also used in others.
func checkDisjoint(root *domain.NodeMapping, others []*domain.NodeMapping) error {
	var dup error
	tree.Walk(root, func(m *domain.NodeMapping) bool {
		if owner, _ := locate(others, m.ID); owner != nil {
			dup = &domain.DuplicateIDError{ID: m.ID}
			return false
		}
		return true
	})
	return dup
}
