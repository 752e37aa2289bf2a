package filestore

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xvierd/wellflow/internal/domain"
)

func TestStore_RoundTrip(t *testing.T) {
	dir := t.TempDir()
	store, err := New(dir)
	require.NoError(t, err)
	ctx := context.Background()

	key := "session:task:abc:25:pomodoro"
	_, ok, err := store.Get(ctx, key)
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, store.Set(ctx, key, `{"currentPhaseIndex":1}`))
	v, ok, err := store.Get(ctx, key)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, `{"currentPhaseIndex":1}`, v)

	_, err = os.Stat(filepath.Join(dir, "session:task:abc:25:pomodoro.json.tmp"))
	assert.True(t, os.IsNotExist(err), "temp file is renamed away")

	require.NoError(t, store.Remove(ctx, key))
	require.NoError(t, store.Remove(ctx, key))
	_, ok, _ = store.Get(ctx, key)
	assert.False(t, ok)
}

func TestStore_KeysDoNotEscapeDir(t *testing.T) {
	dir := t.TempDir()
	store, err := New(dir)
	require.NoError(t, err)

	require.NoError(t, store.Set(context.Background(), "../outside", "x"))

	_, err = os.Stat(filepath.Join(filepath.Dir(dir), "outside.json"))
	assert.True(t, os.IsNotExist(err))
}

func TestLocker_ExclusivePerKey(t *testing.T) {
	locker, err := NewLocker(t.TempDir())
	require.NoError(t, err)

	release, err := locker.Acquire("session:deep-work:25:pomodoro")
	require.NoError(t, err)

	_, err = locker.Acquire("session:deep-work:25:pomodoro")
	assert.ErrorIs(t, err, domain.ErrSessionLocked)

	other, err := locker.Acquire("session:reading:30:none")
	require.NoError(t, err)
	require.NoError(t, other())

	require.NoError(t, release())
	again, err := locker.Acquire("session:deep-work:25:pomodoro")
	require.NoError(t, err)
	require.NoError(t, again())
}
