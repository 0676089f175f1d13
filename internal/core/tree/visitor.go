package tree

import "github.com/custodia-labs/mapping-builder/internal/core/domain"

// VisitFunc is called for each visited mapping. Returning false stops
// the visit of the mapping's subtree and of its remaining siblings.
type VisitFunc func(m *domain.NodeMapping) bool

// Visitor walks mapping trees depth-first, pre-order, optionally
// hydrating them with ids from its allocator.
type Visitor struct {
	alloc *domain.IDAllocator
}

// NewVisitor creates a visitor drawing ids from alloc.
// A nil allocator gets a fresh one starting at 1.
func NewVisitor(alloc *domain.IDAllocator) *Visitor {
	if alloc == nil {
		alloc = domain.NewIDAllocator()
	}
	return &Visitor{alloc: alloc}
}

// Allocator returns the allocator used for hydration.
func (v *Visitor) Allocator() *domain.IDAllocator {
	return v.alloc
}

// Visit walks root and its descendants. When hydrate is true, mappings
// with a zero id receive the next id and each child's ParentID is set
// to the visited mapping before the child itself is visited. When
// hydrate is false the tree is not modified.
func (v *Visitor) Visit(root *domain.NodeMapping, hydrate bool, fn VisitFunc) {
	if root == nil {
		return
	}
	if hydrate && root.ID == 0 {
		root.ID = v.alloc.Next()
	}
	if fn != nil && !fn(root) {
		return
	}
	v.visitChildren(root, hydrate, fn)
}

func (v *Visitor) visitChildren(m *domain.NodeMapping, hydrate bool, fn VisitFunc) {
	for _, child := range m.Children {
		if child == nil {
			continue
		}
		if hydrate {
			if child.ID == 0 {
				child.ID = v.alloc.Next()
			}
			child.ParentID = m.ID
		}
		if fn != nil && !fn(child) {
			return
		}
		v.visitChildren(child, hydrate, fn)
	}
}

// Hydrate assigns missing ids and parent ids across root's tree, then
// checks that no id is used twice. Existing ids are never reassigned.
func (v *Visitor) Hydrate(root *domain.NodeMapping) error {
	if root == nil {
		return nil
	}
	// ids already present must not be handed out again
	v.alloc.Advance(MaxID(root))
	v.Visit(root, true, nil)
	return CheckUnique(root)
}

// Walk visits root's tree read-only.
func Walk(root *domain.NodeMapping, fn VisitFunc) {
	(&Visitor{}).Visit(root, false, fn)
}

// Find returns the mapping with the given id, or nil.
func Find(root *domain.NodeMapping, id int) *domain.NodeMapping {
	var found *domain.NodeMapping
	Walk(root, func(m *domain.NodeMapping) bool {
		if found != nil {
			return false
		}
		if m.ID == id {
			found = m
			return false
		}
		return true
	})
	return found
}

// MaxID returns the highest id in root's tree, 0 for an empty tree.
func MaxID(root *domain.NodeMapping) int {
	maxID := 0
	Walk(root, func(m *domain.NodeMapping) bool {
		if m.ID > maxID {
			maxID = m.ID
		}
		return true
	})
	return maxID
}

// Count returns the number of mappings in root's tree.
func Count(root *domain.NodeMapping) int {
	n := 0
	Walk(root, func(*domain.NodeMapping) bool {
		n++
		return true
	})
	return n
}

// Contains reports whether the mapping with the given id is root
// or one of its descendants.
func Contains(root *domain.NodeMapping, id int) bool {
	return Find(root, id) != nil
}

// CheckUnique fails with a *domain.DuplicateIDError if two mappings
// in root's tree share a non-zero id.
func CheckUnique(root *domain.NodeMapping) error {
	_, err := buildIndex(root)
	return err
}

// CheckUniqueAll fails with a *domain.DuplicateIDError if two mappings
// anywhere in roots share a non-zero id.
func CheckUniqueAll(roots []*domain.NodeMapping) error {
	index := make(map[int]*domain.NodeMapping)
	for _, root := range roots {
		if err := indexInto(index, root); err != nil {
			return err
		}
	}
	return nil
}

func buildIndex(root *domain.NodeMapping) (map[int]*domain.NodeMapping, error) {
	index := make(map[int]*domain.NodeMapping)
	err := indexInto(index, root)
	return index, err
}

func indexInto(index map[int]*domain.NodeMapping, root *domain.NodeMapping) error {
	var err error
	Walk(root, func(m *domain.NodeMapping) bool {
		if err != nil {
			return false
		}
		if m.ID == 0 {
			return true
		}
		if _, ok := index[m.ID]; ok {
			err = &domain.DuplicateIDError{ID: m.ID}
			return false
		}
		index[m.ID] = m
		return true
	})
	return err
}
