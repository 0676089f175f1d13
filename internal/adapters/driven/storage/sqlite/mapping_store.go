package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/custodia-labs/mapping-builder/internal/core/domain"
	"github.com/custodia-labs/mapping-builder/internal/core/ports/driven"
	"github.com/custodia-labs/mapping-builder/internal/core/tree"
)

// mappingStore implements driven.MappingStore.
type mappingStore struct {
	store *Store
}

var _ driven.MappingStore = (*mappingStore)(nil)

// Save stores or updates a root mapping tree.
func (s *mappingStore) Save(ctx context.Context, root *domain.NodeMapping) error {
	tx, err := s.store.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	if err := saveTree(ctx, tx, root); err != nil {
		return err
	}
	return tx.Commit()
}

// Get retrieves a root mapping tree by id.
func (s *mappingStore) Get(ctx context.Context, id int) (*domain.NodeMapping, error) {
	row := s.store.db.QueryRowContext(ctx, "SELECT tree FROM mappings WHERE id = ?", id)

	var treeJSON string
	if err := row.Scan(&treeJSON); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("scanning mapping: %w", err)
	}
	return decodeTree(treeJSON)
}

// Delete removes a root mapping tree.
func (s *mappingStore) Delete(ctx context.Context, id int) error {
	_, err := s.store.db.ExecContext(ctx, "DELETE FROM mappings WHERE id = ?", id)
	if err != nil {
		return fmt.Errorf("deleting mapping: %w", err)
	}
	return nil
}

// List returns all root mapping trees ordered by id.
func (s *mappingStore) List(ctx context.Context) ([]*domain.NodeMapping, error) {
	rows, err := s.store.db.QueryContext(ctx, "SELECT tree FROM mappings ORDER BY id")
	if err != nil {
		return nil, fmt.Errorf("querying mappings: %w", err)
	}
	defer rows.Close()

	var roots []*domain.NodeMapping
	for rows.Next() {
		var treeJSON string
		if err := rows.Scan(&treeJSON); err != nil {
			return nil, fmt.Errorf("scanning mapping: %w", err)
		}
		root, err := decodeTree(treeJSON)
		if err != nil {
			return nil, err
		}
		roots = append(roots, root)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating mappings: %w", err)
	}
	if roots == nil {
		roots = []*domain.NodeMapping{}
	}
	return roots, nil
}

// ReplaceAll drops every stored tree and stores roots instead.
func (s *mappingStore) ReplaceAll(ctx context.Context, roots []*domain.NodeMapping) error {
	tx, err := s.store.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.ExecContext(ctx, "DELETE FROM mapping_ids"); err != nil {
		return fmt.Errorf("clearing mapping ids: %w", err)
	}
	if _, err := tx.ExecContext(ctx, "DELETE FROM mappings"); err != nil {
		return fmt.Errorf("clearing mappings: %w", err)
	}
	for _, root := range roots {
		if err := saveTree(ctx, tx, root); err != nil {
			return err
		}
	}
	return tx.Commit()
}

func saveTree(ctx context.Context, tx *sql.Tx, root *domain.NodeMapping) error {
	if root == nil || root.ID == 0 {
		return fmt.Errorf("save mapping without id: %w", domain.ErrInvalidInput)
	}
	treeJSON, err := json.Marshal(root)
	if err != nil {
		return fmt.Errorf("marshalling mapping %d: %w", root.ID, err)
	}

	_, err = tx.ExecContext(ctx, `
		INSERT INTO mappings (id, name, sid, source_type, mapping_count, tree, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			name = excluded.name,
			sid = excluded.sid,
			source_type = excluded.source_type,
			mapping_count = excluded.mapping_count,
			tree = excluded.tree,
			updated_at = excluded.updated_at
	`, root.ID, root.Name, root.SID, int(root.SourceType), tree.Count(root), string(treeJSON), time.Now().UTC())
	if err != nil {
		return fmt.Errorf("saving mapping %d: %w", root.ID, err)
	}

	if _, err := tx.ExecContext(ctx, "DELETE FROM mapping_ids WHERE root_id = ?", root.ID); err != nil {
		return fmt.Errorf("clearing mapping ids: %w", err)
	}

	var idErr error
	tree.Walk(root, func(m *domain.NodeMapping) bool {
		if idErr != nil {
			return false
		}
		_, err := tx.ExecContext(ctx, "INSERT INTO mapping_ids (id, root_id) VALUES (?, ?)", m.ID, root.ID)
		if err != nil {
			if strings.Contains(err.Error(), "UNIQUE constraint failed") {
				idErr = &domain.DuplicateIDError{ID: m.ID}
			} else {
				idErr = fmt.Errorf("indexing mapping %d: %w", m.ID, err)
			}
			return false
		}
		return true
	})
	return idErr
}

func decodeTree(treeJSON string) (*domain.NodeMapping, error) {
	var root domain.NodeMapping
	if err := json.Unmarshal([]byte(treeJSON), &root); err != nil {
		return nil, fmt.Errorf("unmarshalling mapping: %w", err)
	}
	return &root, nil
}
