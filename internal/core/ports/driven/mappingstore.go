package driven

import (
	"context"

	"github.com/custodia-labs/mapping-builder/internal/core/domain"
)

// MappingStore persists document mapping trees. Each tree is stored as
// a whole and addressed by its root id.
type MappingStore interface {
	// Save stores or updates a root mapping together with its descendants.
	Save(ctx context.Context, root *domain.NodeMapping) error

	// Get retrieves a root mapping tree by its id.
	Get(ctx context.Context, id int) (*domain.NodeMapping, error)

	// Delete removes a root mapping tree.
	Delete(ctx context.Context, id int) error

	// List returns all root mapping trees ordered by id.
	List(ctx context.Context) ([]*domain.NodeMapping, error)

	// ReplaceAll drops every stored tree and stores roots instead.
	ReplaceAll(ctx context.Context, roots []*domain.NodeMapping) error
}
