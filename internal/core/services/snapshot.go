package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/minio/highwayhash"

	"github.com/custodia-labs/mapping-builder/internal/core/domain"
	"github.com/custodia-labs/mapping-builder/internal/core/ports/driven"
	"github.com/custodia-labs/mapping-builder/internal/core/ports/driving"
	"github.com/custodia-labs/mapping-builder/internal/logger"
)

// Ensure SnapshotService implements the interface.
var _ driving.SnapshotService = (*SnapshotService)(nil)

// checksumKey keys the content hash. Changing it invalidates every
// stored checksum.
var checksumKey = []byte("mapbuilder.snapshot.checksum.key")

// SnapshotService stores exported mapping documents so that the stored
// mappings can be rolled back. Snapshots are always JSON with ids kept.
type SnapshotService struct {
	snapshots driven.SnapshotStore
	mappings  driving.MappingService
	now       func() time.Time
}

// NewSnapshotService creates a new snapshot service.
func NewSnapshotService(snapshots driven.SnapshotStore, mappings driving.MappingService) *SnapshotService {
	return &SnapshotService{
		snapshots: snapshots,
		mappings:  mappings,
		now:       time.Now,
	}
}

// Take exports the current mappings into a new snapshot, unless one
// with the same content already exists.
func (s *SnapshotService) Take(ctx context.Context, name string) (*domain.Snapshot, bool, error) {
	if s.snapshots == nil || s.mappings == nil {
		return nil, false, domain.ErrNotImplemented
	}
	content, err := s.mappings.Export(ctx, domain.DocumentFormatJSON, false)
	if err != nil {
		return nil, false, fmt.Errorf("take snapshot: %w", err)
	}
	sum, err := Checksum(content)
	if err != nil {
		return nil, false, fmt.Errorf("take snapshot: %w", err)
	}

	existing, err := s.snapshots.FindByChecksum(ctx, sum)
	switch {
	case err == nil:
		logger.Debug("Snapshot %s already holds this content", existing.ID)
		return existing, false, nil
	case !errors.Is(err, domain.ErrNotFound):
		return nil, false, fmt.Errorf("take snapshot: %w", err)
	}

	page, err := s.mappings.List(ctx, domain.NodeMappingFilter{}, 1, 0)
	if err != nil {
		return nil, false, fmt.Errorf("take snapshot: %w", err)
	}
	snapshot := &domain.Snapshot{
		ID:           uuid.New().String(),
		Name:         name,
		Checksum:     sum,
		MappingCount: page.Total,
		Content:      content,
		CreatedAt:    s.now().UTC(),
	}
	if err := s.snapshots.Save(ctx, snapshot); err != nil {
		return nil, false, fmt.Errorf("save snapshot: %w", err)
	}
	logger.Info("Took snapshot %s (%d root mappings)", snapshot.ID, snapshot.MappingCount)
	return snapshot, true, nil
}

// List returns all snapshots, newest first.
func (s *SnapshotService) List(ctx context.Context) ([]domain.Snapshot, error) {
	if s.snapshots == nil {
		return nil, domain.ErrNotImplemented
	}
	return s.snapshots.List(ctx)
}

// Get retrieves a snapshot by ID.
func (s *SnapshotService) Get(ctx context.Context, id string) (*domain.Snapshot, error) {
	if s.snapshots == nil {
		return nil, domain.ErrNotImplemented
	}
	if id == "" {
		return nil, domain.ErrInvalidInput
	}
	return s.snapshots.Get(ctx, id)
}

// Restore replaces the stored mappings with the snapshot's content.
// Stored ids are kept as they were when the snapshot was taken.
func (s *SnapshotService) Restore(ctx context.Context, id string) (int, error) {
	snapshot, err := s.Get(ctx, id)
	if err != nil {
		return 0, err
	}
	sum, err := Checksum(snapshot.Content)
	if err != nil {
		return 0, fmt.Errorf("restore snapshot %s: %w", id, err)
	}
	if sum != snapshot.Checksum {
		return 0, fmt.Errorf("restore snapshot %s: checksum mismatch: %w", id, domain.ErrInvalidInput)
	}
	n, err := s.mappings.Import(ctx, snapshot.Content, domain.DocumentFormatJSON, false)
	if err != nil {
		return 0, fmt.Errorf("restore snapshot %s: %w", id, err)
	}
	logger.Info("Restored snapshot %s", id)
	return n, nil
}

// Delete removes a snapshot.
func (s *SnapshotService) Delete(ctx context.Context, id string) error {
	if _, err := s.Get(ctx, id); err != nil {
		return err
	}
	return s.snapshots.Delete(ctx, id)
}

// Checksum hashes snapshot content.
func Checksum(content []byte) (uint64, error) {
	hash, err := highwayhash.New64(checksumKey)
	if err != nil {
		return 0, err
	}
	_, err = hash.Write(content)
	return hash.Sum64(), err
}
