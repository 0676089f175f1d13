package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/custodia-labs/mapping-builder/internal/core/domain"
	"github.com/custodia-labs/mapping-builder/internal/core/ports/driven"
)

// snapshotStore implements driven.SnapshotStore.
type snapshotStore struct {
	store *Store
}

var _ driven.SnapshotStore = (*snapshotStore)(nil)

const snapshotColumns = "id, name, checksum, mapping_count, content, created_at"

// Save stores a snapshot.
func (s *snapshotStore) Save(ctx context.Context, snapshot *domain.Snapshot) error {
	if snapshot == nil || snapshot.ID == "" {
		return fmt.Errorf("save snapshot without id: %w", domain.ErrInvalidInput)
	}
	createdAt := snapshot.CreatedAt
	if createdAt.IsZero() {
		createdAt = time.Now()
	}
	content := snapshot.Content
	if content == nil {
		content = []byte{}
	}

	_, err := s.store.db.ExecContext(ctx, `
		INSERT INTO snapshots (`+snapshotColumns+`)
		VALUES (?, ?, ?, ?, ?, ?)
	`, snapshot.ID, snapshot.Name, int64(snapshot.Checksum), snapshot.MappingCount, content, createdAt.UTC())
	if err != nil {
		if strings.Contains(err.Error(), "UNIQUE constraint failed") {
			return domain.ErrAlreadyExists
		}
		return fmt.Errorf("saving snapshot: %w", err)
	}
	return nil
}

// Get retrieves a snapshot by ID.
func (s *snapshotStore) Get(ctx context.Context, id string) (*domain.Snapshot, error) {
	row := s.store.db.QueryRowContext(ctx, "SELECT "+snapshotColumns+" FROM snapshots WHERE id = ?", id)
	return scanSnapshot(row)
}

// List returns all snapshots, newest first.
func (s *snapshotStore) List(ctx context.Context) ([]domain.Snapshot, error) {
	rows, err := s.store.db.QueryContext(ctx,
		"SELECT "+snapshotColumns+" FROM snapshots ORDER BY created_at DESC, id")
	if err != nil {
		return nil, fmt.Errorf("querying snapshots: %w", err)
	}
	defer rows.Close()

	snapshots := []domain.Snapshot{}
	for rows.Next() {
		snapshot, err := scanSnapshot(rows)
		if err != nil {
			return nil, err
		}
		snapshots = append(snapshots, *snapshot)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating snapshots: %w", err)
	}
	return snapshots, nil
}

// Delete removes a snapshot.
func (s *snapshotStore) Delete(ctx context.Context, id string) error {
	_, err := s.store.db.ExecContext(ctx, "DELETE FROM snapshots WHERE id = ?", id)
	if err != nil {
		return fmt.Errorf("deleting snapshot: %w", err)
	}
	return nil
}

// FindByChecksum returns the snapshot with the given content checksum.
func (s *snapshotStore) FindByChecksum(ctx context.Context, checksum uint64) (*domain.Snapshot, error) {
	row := s.store.db.QueryRowContext(ctx,
		"SELECT "+snapshotColumns+" FROM snapshots WHERE checksum = ? ORDER BY created_at LIMIT 1",
		int64(checksum))
	return scanSnapshot(row)
}

type rowScanner interface {
	Scan(dest ...any) error
}

// scanSnapshot reads a row selected with snapshotColumns. Checksums are
// stored as the signed bit pattern of the uint64.
func scanSnapshot(row rowScanner) (*domain.Snapshot, error) {
	var snapshot domain.Snapshot
	var checksum int64
	if err := row.Scan(&snapshot.ID, &snapshot.Name, &checksum, &snapshot.MappingCount,
		&snapshot.Content, &snapshot.CreatedAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("scanning snapshot: %w", err)
	}
	snapshot.Checksum = uint64(checksum)
	return &snapshot, nil
}
