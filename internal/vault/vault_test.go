package vault_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/atarasov/NoteVault/internal/kv"
	"github.com/atarasov/NoteVault/internal/store"
	"github.com/atarasov/NoteVault/internal/vault"
	"github.com/atarasov/NoteVault/internal/worker"
)

// test iteration count: keeps PBKDF2 cheap without changing semantics.
const testIterations = 10

func newTestVault(t *testing.T, mem *kv.MemoryStore) *vault.Vault {
	t.Helper()
	pool := worker.NewPool(2)
	t.Cleanup(pool.Close)
	v, err := vault.New(context.Background(), store.New(mem), pool, testIterations, nil)
	require.NoError(t, err)
	return v
}

func TestAddAndListRoundTrip(t *testing.T) {
	mem := kv.NewMemoryStore()
	v := newTestVault(t, mem)
	ctx := context.Background()

	v.SetPassword("correct")
	id, err := v.AddNote(ctx, "hello world")
	require.NoError(t, err)
	require.NotEmpty(t, id)

	notes := v.Notes()
	require.Len(t, notes, 1)
	require.Equal(t, id, notes[0].ID)
	require.Equal(t, "hello world", notes[0].Text)

	// A fresh vault over the same persisted bytes must see the same note
	// under the same password, and nothing under a wrong one.
	reloaded := newTestVault(t, mem)
	reloaded.SetPassword("correct")
	notes = reloaded.Notes()
	require.Len(t, notes, 1)
	require.Equal(t, "hello world", notes[0].Text)

	reloaded.SetPassword("wrong")
	require.Empty(t, reloaded.Notes())
	require.Equal(t, 1, reloaded.Stored())
}

func TestPasswordChangeHidesAndRestoresNotes(t *testing.T) {
	v := newTestVault(t, kv.NewMemoryStore())
	ctx := context.Background()

	v.SetPassword("first")
	_, err := v.AddNote(ctx, "written under first")
	require.NoError(t, err)

	v.SetPassword("second")
	require.Empty(t, v.Notes(), "notes under the old password must become invisible")
	require.Equal(t, 1, v.Stored(), "rekey must not delete stored notes")

	_, err = v.AddNote(ctx, "written under second")
	require.NoError(t, err)
	notes := v.Notes()
	require.Len(t, notes, 1)
	require.Equal(t, "written under second", notes[0].Text)

	v.SetPassword("first")
	notes = v.Notes()
	require.Len(t, notes, 1)
	require.Equal(t, "written under first", notes[0].Text)
	require.Equal(t, 2, v.Stored())
}

func TestAddWithoutPassword(t *testing.T) {
	v := newTestVault(t, kv.NewMemoryStore())
	_, err := v.AddNote(context.Background(), "orphan")
	require.ErrorIs(t, err, vault.ErrNoKey)
}

func TestDeleteNote(t *testing.T) {
	v := newTestVault(t, kv.NewMemoryStore())
	ctx := context.Background()
	v.SetPassword("pw")

	var ids []string
	for _, text := range []string{"one", "two", "three"} {
		id, err := v.AddNote(ctx, text)
		require.NoError(t, err)
		ids = append(ids, id)
	}

	deleted, err := v.DeleteNote(ctx, ids[1])
	require.NoError(t, err)
	require.True(t, deleted)

	notes := v.Notes()
	require.Len(t, notes, 2)
	require.Equal(t, "one", notes[0].Text, "order must be preserved after delete")
	require.Equal(t, "three", notes[1].Text)

	// Unknown ID: no-op, no error, collection unchanged.
	deleted, err = v.DeleteNote(ctx, "no-such-id")
	require.NoError(t, err)
	require.False(t, deleted)
	require.Equal(t, 2, v.Stored())
}

func TestNoteByID(t *testing.T) {
	v := newTestVault(t, kv.NewMemoryStore())
	ctx := context.Background()
	v.SetPassword("pw")

	id, err := v.AddNote(ctx, "findable")
	require.NoError(t, err)

	note, ok := v.Note(id)
	require.True(t, ok)
	require.Equal(t, "findable", note.Text)

	_, ok = v.Note("no-such-id")
	require.False(t, ok)

	// Under another password the same ID must look absent.
	v.SetPassword("other")
	_, ok = v.Note(id)
	require.False(t, ok)
}

func TestRemoveAllPersistsEmptyArray(t *testing.T) {
	mem := kv.NewMemoryStore()
	v := newTestVault(t, mem)
	ctx := context.Background()
	v.SetPassword("pw")

	_, err := v.AddNote(ctx, "a")
	require.NoError(t, err)
	_, err = v.AddNote(ctx, "b")
	require.NoError(t, err)

	require.NoError(t, v.RemoveAll(ctx))
	require.Equal(t, 0, v.Stored())

	raw, ok, err := mem.Read(ctx, store.StorageKey)
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, "[]", raw)

	reloaded := newTestVault(t, mem)
	require.Equal(t, 0, reloaded.Stored())
}

func TestRemoveAllOnEmptyCollection(t *testing.T) {
	mem := kv.NewMemoryStore()
	v := newTestVault(t, mem)
	ctx := context.Background()

	require.NoError(t, v.RemoveAll(ctx))
	raw, ok, _ := mem.Read(ctx, store.StorageKey)
	require.True(t, ok)
	require.Equal(t, "[]", raw)
}

func TestPersistFailureSurfacedAndRolledBack(t *testing.T) {
	mem := kv.NewMemoryStore()
	v := newTestVault(t, mem)
	ctx := context.Background()
	v.SetPassword("pw")

	mem.FailWrites = true
	_, err := v.AddNote(ctx, "doomed")
	require.Error(t, err)
	require.Equal(t, 0, v.Stored(), "failed add must not leave the note in memory")

	mem.FailWrites = false
	id, err := v.AddNote(ctx, "kept")
	require.NoError(t, err)

	mem.FailWrites = true
	_, err = v.DeleteNote(ctx, id)
	require.Error(t, err)
	require.Equal(t, 1, v.Stored(), "failed delete must keep the note in memory")

	require.Error(t, v.RemoveAll(ctx))
	require.Equal(t, 1, v.Stored(), "failed clear must keep the collection")
}

func TestCorruptStorageFailsConstruction(t *testing.T) {
	mem := kv.NewMemoryStore()
	ctx := context.Background()
	require.NoError(t, mem.Write(ctx, store.StorageKey, "{corrupt"))

	pool := worker.NewPool(1)
	defer pool.Close()
	_, err := vault.New(ctx, store.New(mem), pool, testIterations, nil)
	require.ErrorIs(t, err, store.ErrCorrupt)
}

func TestObserversNotified(t *testing.T) {
	v := newTestVault(t, kv.NewMemoryStore())
	ctx := context.Background()
	events := v.Subscribe()

	recv := func() vault.Event {
		t.Helper()
		select {
		case e := <-events:
			return e
		case <-time.After(time.Second):
			t.Fatalf("no event received")
			return vault.Event{}
		}
	}

	v.SetPassword("pw")
	require.Equal(t, vault.OpRekey, recv().Op)

	id, err := v.AddNote(ctx, "watched")
	require.NoError(t, err)
	e := recv()
	require.Equal(t, vault.OpAdd, e.Op)
	require.Equal(t, id, e.NoteID)

	_, err = v.DeleteNote(ctx, id)
	require.NoError(t, err)
	e = recv()
	require.Equal(t, vault.OpDelete, e.Op)
	require.Equal(t, id, e.NoteID)

	require.NoError(t, v.RemoveAll(ctx))
	require.Equal(t, vault.OpClear, recv().Op)
}

func TestDecryptCacheSurvivesRekeyRoundTrip(t *testing.T) {
	v := newTestVault(t, kv.NewMemoryStore())
	ctx := context.Background()

	v.SetPassword("alpha")
	_, err := v.AddNote(ctx, "cached text")
	require.NoError(t, err)
	require.Len(t, v.Notes(), 1)

	v.SetPassword("beta")
	require.Empty(t, v.Notes())

	v.SetPassword("alpha")
	notes := v.Notes()
	require.Len(t, notes, 1)
	require.Equal(t, "cached text", notes[0].Text)
}

func TestCorruptRecordHiddenNotFatal(t *testing.T) {
	mem := kv.NewMemoryStore()
	ctx := context.Background()
	// One well-formed-looking record with garbage base64 next to nothing else:
	// the vault must load it and simply never show it.
	require.NoError(t, mem.Write(ctx, store.StorageKey,
		`[{"id":"broken","encrypted":"!!!","salt":"!!!","iv":"!!!"}]`))

	v := newTestVault(t, mem)
	v.SetPassword("whatever")
	require.Empty(t, v.Notes())
	require.Equal(t, 1, v.Stored())
}
