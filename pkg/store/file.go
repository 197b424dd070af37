package store

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// FileStore persists one <id>.json file per entity under a directory.
type FileStore struct {
	dir string
}

// NewFileStore creates a file-backed store rooted at dir. The directory is
// created lazily on first write.
func NewFileStore(dir string) *FileStore {
	return &FileStore{dir: dir}
}

func (s *FileStore) path(id string) (string, error) {
	// Identifiers become file names; refuse anything that could escape dir.
	if id == "" || strings.ContainsAny(id, `/\.`) {
		return "", fmt.Errorf("invalid identifier %q", id)
	}
	return filepath.Join(s.dir, id+".json"), nil
}

// Has reports whether a document for id is present.
func (s *FileStore) Has(ctx context.Context, id string) (bool, error) {
	p, err := s.path(id)
	if err != nil {
		return false, err
	}

	if _, err := os.Stat(p); err != nil {
		if os.IsNotExist(err) {
			return false, nil
		}
		return false, err
	}
	return true, nil
}

// Get returns one document per id, in input order.
func (s *FileStore) Get(ctx context.Context, ids []string) ([]Document, error) {
	docs := make([]Document, 0, len(ids))
	for _, id := range ids {
		p, err := s.path(id)
		if err != nil {
			return nil, err
		}

		data, err := os.ReadFile(p)
		if err != nil {
			if os.IsNotExist(err) {
				return nil, fmt.Errorf("%w: %s", ErrNotFound, id)
			}
			return nil, fmt.Errorf("%w: %s: %v", ErrCorrupt, id, err)
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
func (s *FileStore) Put(ctx context.Context, docs []Document) error {
	if len(docs) == 0 {
		return nil
	}

	if err := os.MkdirAll(s.dir, 0o755); err != nil {
		return fmt.Errorf("failed to create store directory: %w", err)
	}

	for _, doc := range docs {
		p, err := s.path(doc.ID)
		if err != nil {
			return err
		}

		if _, err := os.Stat(p); err == nil {
			continue
		}

		data, err := Normalize(doc.JSON)
		if err != nil {
			return fmt.Errorf("document %s: %w", doc.ID, err)
		}

		if err := os.WriteFile(p, data, 0o644); err != nil {
			return fmt.Errorf("failed to write document %s: %w", doc.ID, err)
		}
	}
	return nil
}
