package tree

import (
	"fmt"

	"github.com/custodia-labs/mapping-builder/internal/core/domain"
)

// Editor is an editing session over a tree: it tracks which mapping
// has the edit focus and keeps the focus valid across edits.
type Editor struct {
	tree  *Tree
	focus *domain.NodeMapping
}

// NewEditor starts a session focused on the tree's root.
func NewEditor(t *Tree) *Editor {
	return &Editor{tree: t, focus: t.Root()}
}

// Tree returns the edited tree.
func (e *Editor) Tree() *Tree {
	return e.tree
}

// Focus returns the mapping being edited, nil if none.
func (e *Editor) Focus() *domain.NodeMapping {
	return e.focus
}

// Select moves the focus to the mapping with the given id.
func (e *Editor) Select(id int) error {
	m := e.tree.Find(id)
	if m == nil {
		return fmt.Errorf("mapping %d: %w", id, domain.ErrNotFound)
	}
	e.focus = m
	return nil
}

// Save stores m in the tree and focuses it.
func (e *Editor) Save(m *domain.NodeMapping) error {
	if err := e.tree.Save(m); err != nil {
		return err
	}
	if e.tree.Find(m.ID) == m {
		e.focus = m
	}
	return nil
}

// Delete removes m's subtree. If the focus was inside it, the focus
// is cleared.
func (e *Editor) Delete(m *domain.NodeMapping) error {
	node := e.tree.Find(m.ID)
	if node == nil {
		node = m
	}
	focusLost := e.focus != nil && Contains(node, e.focus.ID)
	if err := e.tree.Delete(m); err != nil {
		return err
	}
	if focusLost && e.tree.Find(e.focus.ID) != e.focus {
		e.focus = nil
	}
	return nil
}

// AddChild returns a new child prototype for the focused mapping.
func (e *Editor) AddChild() (*domain.NodeMapping, error) {
	if e.focus == nil {
		return nil, fmt.Errorf("no mapping selected: %w", domain.ErrInvalidInput)
	}
	return e.tree.AddChildTemplate(e.focus), nil
}
