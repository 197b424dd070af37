// Package store persists raw entity documents keyed by their identifier.
// Records are write-once: a stored document is treated as complete and
// authoritative, and is never updated or expired.
package store

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
)

var (
	// ErrNotFound indicates a requested identifier has no stored document.
	ErrNotFound = errors.New("store: document not found")
	// ErrCorrupt indicates a stored document could not be read or parsed.
	ErrCorrupt = errors.New("store: corrupted document")
)

// Document is a raw entity document and the identifier it is keyed by.
type Document struct {
	ID   string
	JSON []byte
}

// CacheStore is the persistence contract for entity documents.
type CacheStore interface {
	// Has reports whether a document for id is present.
	Has(ctx context.Context, id string) (bool, error)

	// Get returns one document per id, in input order. It fails with
	// ErrNotFound if any id is absent; callers must ensure presence first.
	Get(ctx context.Context, ids []string) ([]Document, error)

	// Put writes each document keyed by its own identifier, creating the
	// backing storage location if absent.
	Put(ctx context.Context, docs []Document) error
}

// Normalize re-serializes a raw JSON document with sorted keys and two-space
// indentation, the canonical on-disk form. Both backends store this form, so
// a Get returns byte-for-byte what a Put of the same document produced.
func Normalize(raw []byte) ([]byte, error) {
	var v any
	if err := json.Unmarshal(raw, &v); err != nil {
		return nil, fmt.Errorf("invalid document: %w", err)
	}

	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	if err := enc.Encode(v); err != nil {
		return nil, err
	}

	// Encoder appends a trailing newline; keep it, files end with one.
	return buf.Bytes(), nil
}
