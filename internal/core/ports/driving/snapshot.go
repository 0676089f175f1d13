package driving

import (
	"context"

	"github.com/custodia-labs/mapping-builder/internal/core/domain"
)

// SnapshotService keeps versioned copies of the stored mappings.
type SnapshotService interface {
	// Take exports the current mappings into a new snapshot. If a
	// snapshot with identical content exists it is returned instead and
	// created is false.
	Take(ctx context.Context, name string) (snapshot *domain.Snapshot, created bool, err error)

	// List returns all snapshots, newest first.
	List(ctx context.Context) ([]domain.Snapshot, error)

	// Get retrieves a snapshot by ID.
	Get(ctx context.Context, id string) (*domain.Snapshot, error)

	// Restore replaces the stored mappings with a snapshot's content.
	// Returns the number of root mappings restored.
	Restore(ctx context.Context, id string) (int, error)

	// Delete removes a snapshot.
	Delete(ctx context.Context, id string) error
}
