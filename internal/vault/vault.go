// Package vault owns the application state: the session base key, the loaded
// note collection, and the mutation operations over them. All state changes
// fan out to subscribers so presentation layers can refresh.
package vault

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"go.uber.org/zap"

	"github.com/atarasov/NoteVault/internal/crypto"
	"github.com/atarasov/NoteVault/internal/models"
	"github.com/atarasov/NoteVault/internal/store"
	"github.com/atarasov/NoteVault/internal/worker"
)

// ErrNoKey is returned by operations that need a session key before any
// password has been set.
var ErrNoKey = errors.New("no password set")

// Op identifies the kind of state change in an Event.
type Op string

const (
	// OpAdd signals a note was added.
	OpAdd Op = "add"
	// OpDelete signals a note was deleted.
	OpDelete Op = "delete"
	// OpClear signals the whole collection was cleared.
	OpClear Op = "clear"
	// OpRekey signals the session key was replaced.
	OpRekey Op = "rekey"
)

// Event describes a state change delivered to subscribers.
type Event struct {
	Op Op
	// NoteID is set for OpAdd and OpDelete.
	NoteID string
}

// Note is a decrypted note as presented to callers.
type Note struct {
	ID   string `json:"id"`
	Text string `json:"text"`
}

type cached struct {
	keyFP string
	text  string
}

// Vault mediates every note operation. A single mutex serializes
// load-modify-persist, so concurrent callers cannot lose updates.
type Vault struct {
	store      *store.NoteStore
	pool       *worker.Pool
	log        *zap.Logger
	iterations int

	mu      sync.Mutex
	baseKey []byte
	keyFP   string
	notes   []models.EncryptedNote
	cache   map[string]cached
	subs    []chan Event
}

// New loads the stored collection and returns a vault over it. A corrupt
// blob fails construction (store.ErrCorrupt) rather than silently starting
// empty. No password is set yet; notes stay invisible until SetPassword.
func New(ctx context.Context, st *store.NoteStore, pool *worker.Pool, iterations int, log *zap.Logger) (*Vault, error) {
	if iterations < 1 {
		iterations = crypto.DefaultIterations
	}
	if log == nil {
		log = zap.NewNop()
	}
	notes, err := st.Load(ctx)
	if err != nil {
		return nil, fmt.Errorf("init vault: %w", err)
	}
	return &Vault{
		store:      st,
		pool:       pool,
		log:        log,
		iterations: iterations,
		notes:      notes,
		cache:      make(map[string]cached),
	}, nil
}

// SetPassword derives a new base key on the worker pool and swaps it in,
// dropping the old one. Stored notes are untouched: notes encrypted under a
// previous password stay persisted and reappear if that password is entered
// again.
func (v *Vault) SetPassword(password string) {
	fut := v.pool.Submit(func() (any, error) {
		return crypto.DeriveBaseKey(password, v.iterations), nil
	})
	key, _ := fut.Wait() // derivation is infallible

	v.mu.Lock()
	v.baseKey = key.([]byte)
	v.keyFP = crypto.KeyFingerprint(v.baseKey)
	v.mu.Unlock()

	v.notify(Event{Op: OpRekey})
}

// HasKey reports whether a password has been set this session.
func (v *Vault) HasKey() bool {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.baseKey != nil
}

// AddNote encrypts plaintext on the worker pool, appends the record, and
// rewrites the persisted blob. On persistence failure the append is rolled
// back so memory matches storage, and the error is returned.
func (v *Vault) AddNote(ctx context.Context, plaintext string) (string, error) {
	v.mu.Lock()
	key := v.baseKey
	fp := v.keyFP
	v.mu.Unlock()
	if key == nil {
		return "", ErrNoKey
	}

	fut := v.pool.Submit(func() (any, error) {
		return crypto.Encrypt(plaintext, key, v.iterations)
	})
	sealed, err := fut.Wait()
	if err != nil {
		return "", fmt.Errorf("encrypt note: %w", err)
	}
	note := sealed.(models.EncryptedNote)

	v.mu.Lock()
	v.notes = append(v.notes, note)
	v.cache[note.ID] = cached{keyFP: fp, text: plaintext}
	if err := v.store.Save(ctx, v.notes); err != nil {
		v.notes = v.notes[:len(v.notes)-1]
		delete(v.cache, note.ID)
		v.mu.Unlock()
		v.log.Error("failed to persist note", zap.Error(err))
		return "", err
	}
	v.mu.Unlock()

	v.notify(Event{Op: OpAdd, NoteID: note.ID})
	return note.ID, nil
}

// DeleteNote removes the note with the given ID and rewrites the blob.
// An unknown ID is a no-op, not an error; nothing is persisted in that case.
func (v *Vault) DeleteNote(ctx context.Context, id string) (bool, error) {
	v.mu.Lock()
	idx := -1
	for i, n := range v.notes {
		if n.ID == id {
			idx = i
			break
		}
	}
	if idx < 0 {
		v.mu.Unlock()
		return false, nil
	}

	removed := v.notes[idx]
	v.notes = append(v.notes[:idx], v.notes[idx+1:]...)
	delete(v.cache, id)
	if err := v.store.Save(ctx, v.notes); err != nil {
		// put it back where it was
		v.notes = append(v.notes[:idx], append([]models.EncryptedNote{removed}, v.notes[idx:]...)...)
		v.mu.Unlock()
		v.log.Error("failed to persist delete", zap.Error(err))
		return false, err
	}
	v.mu.Unlock()

	v.notify(Event{Op: OpDelete, NoteID: id})
	return true, nil
}

// RemoveAll clears the collection and persists the empty blob.
func (v *Vault) RemoveAll(ctx context.Context) error {
	v.mu.Lock()
	old := v.notes
	v.notes = []models.EncryptedNote{}
	if err := v.store.Save(ctx, v.notes); err != nil {
		v.notes = old
		v.mu.Unlock()
		v.log.Error("failed to persist clear", zap.Error(err))
		return err
	}
	v.cache = make(map[string]cached)
	v.mu.Unlock()

	v.notify(Event{Op: OpClear})
	return nil
}

// Notes returns the notes visible under the current base key, in insertion
// order. Notes that do not decrypt under this key are skipped by design:
// they belong to a different password and are not an error. Decrypted text
// is cached per note and key, so repeated calls do not repeat PBKDF2.
func (v *Vault) Notes() []Note {
	v.mu.Lock()
	defer v.mu.Unlock()

	out := make([]Note, 0, len(v.notes))
	if v.baseKey == nil {
		return out
	}
	for _, n := range v.notes {
		if c, ok := v.cache[n.ID]; ok && c.keyFP == v.keyFP {
			out = append(out, Note{ID: n.ID, Text: c.text})
			continue
		}
		text, ok := crypto.Decrypt(n, v.baseKey, v.iterations)
		if !ok {
			continue
		}
		v.cache[n.ID] = cached{keyFP: v.keyFP, text: text}
		out = append(out, Note{ID: n.ID, Text: text})
	}
	return out
}

// Note returns the note with the given ID, if it exists and decrypts under
// the current key. A stored note that belongs to a different password is
// reported as absent, same as an unknown ID.
func (v *Vault) Note(id string) (Note, bool) {
	v.mu.Lock()
	defer v.mu.Unlock()
	if v.baseKey == nil {
		return Note{}, false
	}
	for _, n := range v.notes {
		if n.ID != id {
			continue
		}
		if c, ok := v.cache[n.ID]; ok && c.keyFP == v.keyFP {
			return Note{ID: id, Text: c.text}, true
		}
		text, ok := crypto.Decrypt(n, v.baseKey, v.iterations)
		if !ok {
			return Note{}, false
		}
		v.cache[n.ID] = cached{keyFP: v.keyFP, text: text}
		return Note{ID: id, Text: text}, true
	}
	return Note{}, false
}

// Stored returns the total number of persisted notes, visible or not.
func (v *Vault) Stored() int {
	v.mu.Lock()
	defer v.mu.Unlock()
	return len(v.notes)
}

// Subscribe registers a listener for state-change events. Channels are
// buffered and events to a full channel are dropped, so a stalled subscriber
// cannot block mutations.
func (v *Vault) Subscribe() <-chan Event {
	ch := make(chan Event, 16)
	v.mu.Lock()
	v.subs = append(v.subs, ch)
	v.mu.Unlock()
	return ch
}

func (v *Vault) notify(e Event) {
	v.mu.Lock()
	subs := make([]chan Event, len(v.subs))
	copy(subs, v.subs)
	v.mu.Unlock()

	for _, ch := range subs {
		select {
		case ch <- e:
		default:
		}
	}
}
