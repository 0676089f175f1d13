package driving

import (
	"context"

	"github.com/custodia-labs/mapping-builder/internal/core/domain"
)

// MappingService manages the stored set of document mappings.
type MappingService interface {
	// List returns one page of mappings matching filter. Without a
	// ParentID filter only root mappings are listed; with one, the
	// children of that mapping are.
	List(ctx context.Context, filter domain.NodeMappingFilter, pageNumber, pageSize int) (domain.DataPage[*domain.NodeMapping], error)

	// Get retrieves any stored mapping, root or descendant, by id.
	Get(ctx context.Context, id int) (*domain.NodeMapping, error)

	// Tree retrieves the whole tree containing the mapping with id.
	Tree(ctx context.Context, id int) (*domain.NodeMapping, error)

	// Add stores a mapping. A root without id gets the highest stored id
	// plus one; a mapping with a ParentID is saved into its parent's tree.
	Add(ctx context.Context, mapping *domain.NodeMapping) (*domain.NodeMapping, error)

	// Delete removes a mapping and its descendants.
	Delete(ctx context.Context, id int) error

	// Export encodes all stored mappings as a mappings document.
	Export(ctx context.Context, format domain.DocumentFormat, dropIDs bool) ([]byte, error)

	// Import replaces all stored mappings with those read from a
	// mappings document. Returns the number of root mappings imported.
	Import(ctx context.Context, data []byte, format domain.DocumentFormat, resetIDs bool) (int, error)
}
