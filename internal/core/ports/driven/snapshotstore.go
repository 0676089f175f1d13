package driven

import (
	"context"

	"github.com/custodia-labs/mapping-builder/internal/core/domain"
)

// SnapshotStore persists exported mapping documents.
type SnapshotStore interface {
	// Save stores a snapshot. Snapshots are immutable once saved.
	Save(ctx context.Context, snapshot *domain.Snapshot) error

	// Get retrieves a snapshot by ID.
	Get(ctx context.Context, id string) (*domain.Snapshot, error)

	// List returns all snapshots, newest first.
	List(ctx context.Context) ([]domain.Snapshot, error)

	// Delete removes a snapshot.
	Delete(ctx context.Context, id string) error

	// FindByChecksum returns the snapshot with the given content checksum.
	// Returns domain.ErrNotFound if there is none.
	FindByChecksum(ctx context.Context, checksum uint64) (*domain.Snapshot, error)
}
