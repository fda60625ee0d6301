package storage

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/electr1fy0/bluenote/crypto"
	"github.com/electr1fy0/bluenote/notes"
	"github.com/stretchr/testify/require"
)

func fixedClock(start time.Time) func() time.Time {
	cur := start
	return func() time.Time {
		cur = cur.Add(time.Second)
		return cur
	}
}

func TestNotebook_CRUD(t *testing.T) {
	ctx := context.Background()
	nb := NewNotebook()
	nb.now = fixedClock(time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC))

	a, err := nb.Create(ctx, "first", "one")
	require.NoError(t, err)
	require.NotEmpty(t, a.ID)
	b, err := nb.Create(ctx, "second", "two")
	require.NoError(t, err)
	require.True(t, b.CreatedAt.After(a.CreatedAt))

	list, err := nb.List(ctx)
	require.NoError(t, err)
	require.Len(t, list, 2)
	require.Equal(t, a.ID, list[0].ID)

	upd, err := nb.Update(ctx, a.ID, "first!", "uno")
	require.NoError(t, err)
	require.Equal(t, a.CreatedAt, upd.CreatedAt)
	require.Equal(t, "first!", upd.Title)

	require.NoError(t, nb.Delete(ctx, a.ID))
	_, err = nb.Get(ctx, a.ID)
	require.ErrorIs(t, err, notes.ErrNotFound)
	require.ErrorIs(t, nb.Delete(ctx, a.ID), notes.ErrNotFound)

	_, err = nb.Update(ctx, "missing", "t", "c")
	require.ErrorIs(t, err, notes.ErrNotFound)
}

func TestNotebook_RejectsBlankFields(t *testing.T) {
	nb := NewNotebook()
	_, err := nb.Create(context.Background(), " ", "x")
	require.ErrorIs(t, err, notes.ErrValidation)
	_, err = nb.Create(context.Background(), "x", "")
	require.ErrorIs(t, err, notes.ErrValidation)
}

func TestVault_PlainRoundTrip(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "notes.json")

	v, err := OpenVault(path, "")
	require.NoError(t, err)
	n, err := v.Create(ctx, "kept", "on disk")
	require.NoError(t, err)

	raw, err := os.ReadFile(path)
	require.NoError(t, err)
	require.Contains(t, string(raw), "on disk")

	again, err := OpenVault(path, "")
	require.NoError(t, err)
	got, err := again.Get(ctx, n.ID)
	require.NoError(t, err)
	require.Equal(t, n.Title, got.Title)
	require.True(t, n.CreatedAt.Equal(got.CreatedAt))
}

func TestVault_FailedMutationDoesNotSave(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "sub", "notes.vault")

	v, err := OpenVault(path, "pw")
	require.NoError(t, err)
	_, err = v.Create(ctx, "secret", "plans")
	require.NoError(t, err)

	before, err := os.ReadFile(path)
	require.NoError(t, err)

	require.ErrorIs(t, v.Delete(ctx, "missing"), notes.ErrNotFound)
	_, err = v.Update(ctx, "missing", "t", "c")
	require.ErrorIs(t, err, notes.ErrNotFound)

	after, err := os.ReadFile(path)
	require.NoError(t, err)
	require.Equal(t, before, after)
}

func TestVault_FailedWriteRollsBack(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "notes.json")

	v, err := OpenVault(path, "")
	require.NoError(t, err)
	kept, err := v.Create(ctx, "kept", "body")
	require.NoError(t, err)

	// a non-empty directory at path makes the rename fail
	require.NoError(t, os.Remove(path))
	require.NoError(t, os.MkdirAll(filepath.Join(path, "blocker"), 0o700))

	_, err = v.Create(ctx, "A", "B")
	require.Error(t, err)
	_, err = v.Update(ctx, kept.ID, "changed", "changed")
	require.Error(t, err)
	require.Error(t, v.Delete(ctx, kept.ID))

	list, err := v.List(ctx)
	require.NoError(t, err)
	require.Len(t, list, 1)
	require.Equal(t, kept, list[0])
}

func TestVault_WrongPassphrase(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "notes.vault")

	v, err := OpenVault(path, "pw")
	require.NoError(t, err)
	_, err = v.Create(ctx, "secret", "plans")
	require.NoError(t, err)

	raw, err := os.ReadFile(path)
	require.NoError(t, err)
	require.NotContains(t, string(raw), "plans")

	_, err = OpenVault(path, "other")
	require.ErrorIs(t, err, crypto.ErrDecrypt)

	again, err := OpenVault(path, "pw")
	require.NoError(t, err)
	list, err := again.List(ctx)
	require.NoError(t, err)
	require.Len(t, list, 1)
}
