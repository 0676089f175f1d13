package tree

import (
	"slices"

	"github.com/custodia-labs/mapping-builder/internal/core/domain"
)

// Option configures a Tree.
type Option func(*Tree)

// WithLenient makes edits that refer to missing mappings succeed
// without changing the tree, instead of failing.
func WithLenient() Option {
	return func(t *Tree) {
		t.lenient = true
	}
}

// Tree is a hydrated mapping tree with an id index used to resolve
// parents and to locate mappings for structural edits.
type Tree struct {
	root    *domain.NodeMapping
	visitor *Visitor
	index   map[int]*domain.NodeMapping
	lenient bool
}

// New hydrates root with ids from visitor's allocator and indexes it.
// A nil visitor gets its own allocator.
func New(root *domain.NodeMapping, visitor *Visitor, opts ...Option) (*Tree, error) {
	if root == nil {
		return nil, domain.ErrInvalidInput
	}
	if visitor == nil {
		visitor = NewVisitor(nil)
	}
	t := &Tree{root: root, visitor: visitor}
	for _, opt := range opts {
		opt(t)
	}
	if err := t.rehydrate(); err != nil {
		return nil, err
	}
	return t, nil
}

// Root returns the root mapping.
func (t *Tree) Root() *domain.NodeMapping {
	return t.root
}

// Len returns the number of mappings in the tree.
func (t *Tree) Len() int {
	return len(t.index)
}

// Find returns the mapping with the given id, or nil.
func (t *Tree) Find(id int) *domain.NodeMapping {
	return t.index[id]
}

// Parent returns the mapping containing m, or nil for the root and
// for mappings outside the tree.
func (t *Tree) Parent(m *domain.NodeMapping) *domain.NodeMapping {
	if m == nil || m.ParentID == 0 {
		return nil
	}
	return t.index[m.ParentID]
}

// Ancestors returns m's parents from the nearest up to the root.
func (t *Tree) Ancestors(m *domain.NodeMapping) []*domain.NodeMapping {
	var result []*domain.NodeMapping
	for p := t.Parent(m); p != nil; p = t.Parent(p) {
		result = append(result, p)
	}
	return result
}

// Save stores an edited mapping into the tree.
//
// A mapping with a zero id is inserted as a new child. So is a mapping
// carrying a provisional id from AddChildTemplate: its id is unknown to
// the tree, or belongs to a mapping under another parent, while its
// parent exists. A mapping without a parent replaces the root. Any other
// mapping replaces the tree node with the same id. Moving a mapping to
// another parent is not supported.
func (t *Tree) Save(m *domain.NodeMapping) error {
	if m == nil {
		return domain.ErrInvalidInput
	}
	existing := t.index[m.ID]
	switch {
	case m.ID == 0:
		return t.Insert(m)
	case m.ParentID != 0 && t.index[m.ParentID] != nil &&
		(existing == nil || existing.ParentID != m.ParentID):
		return t.Insert(m)
	case m.ParentID == 0:
		return t.ReplaceRoot(m)
	default:
		return t.Replace(m)
	}
}

// ReplaceRoot makes m the new root. It must keep the current root's id.
// If m has no children of its own it adopts the old root's children,
// which are then linked to m.
func (t *Tree) ReplaceRoot(m *domain.NodeMapping) error {
	if m.ID != t.root.ID {
		return t.fail(&domain.TreeIntegrityError{Op: "replace root", ID: m.ID})
	}
	prev, adopted := t.root, m.Children == nil
	if adopted {
		m.Children = prev.Children
	}
	m.ParentID = 0
	t.root = m
	return t.commit(func() {
		t.root = prev
		if adopted {
			m.Children = nil
		}
	})
}

// Replace swaps the tree node having m's id for m, keeping its place
// among its siblings. If m has no children of its own it adopts the
// replaced node's children, which are then linked to m.
func (t *Tree) Replace(m *domain.NodeMapping) error {
	old := t.index[m.ID]
	if old == nil {
		return t.fail(&domain.TreeIntegrityError{Op: "replace", ID: m.ID})
	}
	if old == t.root {
		return t.ReplaceRoot(m)
	}
	parent := t.index[old.ParentID]
	if parent == nil {
		return t.fail(&domain.TreeIntegrityError{Op: "replace", ID: m.ID, ParentID: old.ParentID})
	}

	prev := parent.Children
	siblings := make([]*domain.NodeMapping, 0, len(prev))
	for _, c := range prev {
		if c != nil && c.ID == m.ID {
			siblings = append(siblings, m)
			continue
		}
		siblings = append(siblings, c)
	}
	adopted := m.Children == nil
	if adopted {
		m.Children = old.Children
	}
	m.ParentID = parent.ID
	parent.Children = siblings
	return t.commit(func() {
		parent.Children = prev
		if adopted {
			m.Children = nil
		}
	})
}

// Insert appends m to the children of the mapping with id m.ParentID
// and allocates ids for m and its descendants. Any id already on m is
// provisional and is discarded: the allocator is the only source of
// ids for inserted mappings.
func (t *Tree) Insert(m *domain.NodeMapping) error {
	parent := t.index[m.ParentID]
	if m.ParentID == 0 || parent == nil {
		return t.fail(&domain.TreeIntegrityError{Op: "insert", ID: m.ID, ParentID: m.ParentID})
	}
	prev, provisional := parent.Children, m.ID
	m.ID = 0
	parent.Children = append(slices.Clip(prev), m)
	return t.commit(func() {
		parent.Children = prev
		m.ID = provisional
	})
}

// Delete removes m and its subtree from its parent's children.
// The root cannot be deleted.
func (t *Tree) Delete(m *domain.NodeMapping) error {
	parent := t.Parent(m)
	if parent == nil {
		return t.fail(&domain.TreeIntegrityError{Op: "delete", ID: m.ID, ParentID: m.ParentID})
	}
	n := len(parent.Children)
	parent.Children = slices.DeleteFunc(parent.Children, func(c *domain.NodeMapping) bool {
		return c != nil && c.ID == m.ID
	})
	if len(parent.Children) == n {
		return t.fail(&domain.TreeIntegrityError{Op: "delete", ID: m.ID})
	}
	return t.rehydrate()
}

// AddChildTemplate returns an unsaved prototype for a new child of target.
// Its id is provisional: one more than the highest id in target's subtree.
func (t *Tree) AddChildTemplate(target *domain.NodeMapping) *domain.NodeMapping {
	return NewChildTemplate(target)
}

// NewChildTemplate returns an unsaved prototype child of target with
// a provisional id and part source type.
func NewChildTemplate(target *domain.NodeMapping) *domain.NodeMapping {
	return &domain.NodeMapping{
		ID:         MaxID(target) + 1,
		ParentID:   target.ID,
		SourceType: domain.SourceTypePart,
	}
}

func (t *Tree) rehydrate() error {
	if err := t.visitor.Hydrate(t.root); err != nil {
		return err
	}
	index, err := buildIndex(t.root)
	if err != nil {
		return err
	}
	t.index = index
	return nil
}

// commit rehydrates the tree after an edit. If the edited tree is not
// valid, undo restores the previous structure, the allocator is rewound
// and the index is left as it was.
func (t *Tree) commit(undo func()) error {
	next := t.visitor.Allocator().Peek()
	if err := t.rehydrate(); err != nil {
		undo()
		t.visitor.Allocator().Reset(next)
		return err
	}
	return nil
}

func (t *Tree) fail(err *domain.TreeIntegrityError) error {
	if t.lenient {
		return nil
	}
	return err
}
