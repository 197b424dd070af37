package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/adityahase/search/pkg/db"
)

// SQLiteStore persists entity documents in the entities table.
type SQLiteStore struct {
	db *db.DB
}

// NewSQLiteStore creates a sqlite-backed store.
func NewSQLiteStore(d *db.DB) *SQLiteStore {
	return &SQLiteStore{db: d}
}

// Has reports whether a document for id is present.
func (s *SQLiteStore) Has(ctx context.Context, id string) (bool, error) {
	var exists int
	err := s.db.QueryRowContext(ctx, "SELECT 1 FROM entities WHERE id = ?", id).Scan(&exists)
	if errors.Is(err, sql.ErrNoRows) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}

// Get returns one document per id, in input order.
func (s *SQLiteStore) Get(ctx context.Context, ids []string) ([]Document, error) {
	docs := make([]Document, 0, len(ids))
	for _, id := range ids {
		var data []byte
		err := s.db.QueryRowContext(ctx, "SELECT document FROM entities WHERE id = ?", id).Scan(&data)
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("%w: %s", ErrNotFound, id)
		}
		if err != nil {
			return nil, err
		}

		if !json.Valid(data) {
			return nil, fmt.Errorf("%w: %s", ErrCorrupt, id)
		}

		docs = append(docs, Document{ID: id, JSON: data})
	}
	return docs, nil
}

// Put writes each document keyed by its own identifier. An existing record is
// left untouched; documents are write-once.
func (s *SQLiteStore) Put(ctx context.Context, docs []Document) error {
	for _, doc := range docs {
		data, err := Normalize(doc.JSON)
		if err != nil {
			return fmt.Errorf("document %s: %w", doc.ID, err)
		}

		_, err = s.db.ExecContext(ctx,
			"INSERT OR IGNORE INTO entities (id, document) VALUES (?, ?)", doc.ID, data)
		if err != nil {
			return fmt.Errorf("failed to write document %s: %w", doc.ID, err)
		}
	}
	return nil
}
