package cooldown

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestIsAllowedWithoutRecord(t *testing.T) {
	store := NewStore(t.TempDir())

	allowed, remaining := store.IsAllowed(time.Now(), time.Hour)
	require.True(t, allowed)
	require.Zero(t, remaining)
}

func TestRecordSentBlocksUntilWindowPasses(t *testing.T) {
	store := NewStore(t.TempDir())
	sentAt := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

	require.NoError(t, store.RecordSent(sentAt))

	allowed, remaining := store.IsAllowed(sentAt.Add(30*time.Minute), time.Hour)
	require.False(t, allowed)
	require.Equal(t, 30*time.Minute, remaining)

	allowed, _ = store.IsAllowed(sentAt.Add(61*time.Minute), time.Hour)
	require.True(t, allowed)
}

func TestRecordSentOverwritesPriorMarker(t *testing.T) {
	store := NewStore(t.TempDir())
	first := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	second := first.Add(2 * time.Hour)

	require.NoError(t, store.RecordSent(first))
	require.NoError(t, store.RecordSent(second))

	last, ok := store.LastSent()
	require.True(t, ok)
	require.True(t, last.Equal(second))
}

func TestCorruptRecordFailsOpen(t *testing.T) {
	// Fail-open is the documented policy: a garbled marker must read as
	// "never sent", not block every future notification.
	dir := t.TempDir()
	store := NewStore(dir)
	require.NoError(t, os.WriteFile(store.Path(), []byte("{not json"), 0o644))

	allowed, remaining := store.IsAllowed(time.Now(), time.Hour)
	require.True(t, allowed)
	require.Zero(t, remaining)
}

func TestDeletedRecordResetsCooldown(t *testing.T) {
	store := NewStore(t.TempDir())
	sentAt := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	require.NoError(t, store.RecordSent(sentAt))

	require.NoError(t, os.Remove(store.Path()))

	allowed, _ := store.IsAllowed(sentAt.Add(time.Minute), time.Hour)
	require.True(t, allowed)
}

func TestRecordSentCreatesDataDir(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "nested", "data")
	store := NewStore(dir)

	require.NoError(t, store.RecordSent(time.Now()))

	_, err := os.Stat(store.Path())
	require.NoError(t, err)
}

func TestRecordSentUnwritableDirSurfacesError(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "blocked")
	// A regular file where the directory should be makes MkdirAll fail.
	require.NoError(t, os.WriteFile(dir, []byte("x"), 0o644))

	store := NewStore(filepath.Join(dir, "data"))
	err := store.RecordSent(time.Now())
	require.ErrorIs(t, err, ErrRecordUnavailable)
}
