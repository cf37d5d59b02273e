// Package store persists the ordered note collection as a single JSON blob
// under one fixed key in the persistence collaborator.
package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/atarasov/NoteVault/internal/kv"
	"github.com/atarasov/NoteVault/internal/models"
)

// StorageKey is the single key the collection lives under.
const StorageKey = "encrypted_notes"

// ErrCorrupt reports that a persisted blob exists but cannot be parsed.
// Callers must surface it; it is not the same as an empty collection.
var ErrCorrupt = errors.New("corrupt note storage")

// NoteStore reads and writes the full collection through the persistence
// collaborator. Every mutation rewrites the whole blob, and serialization
// completes in memory before any byte reaches the backend, so a failed write
// cannot corrupt previously stored notes.
type NoteStore struct {
	kv kv.Store
}

// New returns a NoteStore backed by the given key-value store.
func New(store kv.Store) *NoteStore {
	return &NoteStore{kv: store}
}

// Load fetches and deserializes the collection. A missing key yields an
// empty collection; an unparseable blob yields ErrCorrupt.
func (s *NoteStore) Load(ctx context.Context) ([]models.EncryptedNote, error) {
	raw, ok, err := s.kv.Read(ctx, StorageKey)
	if err != nil {
		return nil, fmt.Errorf("load notes: %w", err)
	}
	if !ok {
		return []models.EncryptedNote{}, nil
	}
	var notes []models.EncryptedNote
	if err := json.Unmarshal([]byte(raw), &notes); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrCorrupt, err)
	}
	if notes == nil {
		notes = []models.EncryptedNote{}
	}
	return notes, nil
}

// Save serializes the collection and rewrites the blob. An empty collection
// persists as the literal empty JSON array.
func (s *NoteStore) Save(ctx context.Context, notes []models.EncryptedNote) error {
	if notes == nil {
		notes = []models.EncryptedNote{}
	}
	raw, err := json.Marshal(notes)
	if err != nil {
		return fmt.Errorf("serialize notes: %w", err)
	}
	if err := s.kv.Write(ctx, StorageKey, string(raw)); err != nil {
		return fmt.Errorf("persist notes: %w", err)
	}
	return nil
}
