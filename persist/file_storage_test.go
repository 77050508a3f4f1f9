package persist_test

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"
	"time"

	"github.com/jrsteele09/bell-client/persist"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"
)

func TestFileStoragePersistsAcrossInstances(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "nested")
	s, err := persist.NewFileStorage(dir)
	require.NoError(t, err)

	require.NoError(t, s.Set("token", "abc"))
	require.NoError(t, s.Set("user", `{"id":2}`))
	require.NoError(t, s.Delete("user"))

	reopened, err := persist.NewFileStorage(dir)
	require.NoError(t, err)
	v, ok, err := reopened.Get("token")
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, "abc", v)

	_, ok, err = reopened.Get("user")
	require.NoError(t, err)
	require.False(t, ok)
}

func TestFileStorageUnreadableFileIsEmpty(t *testing.T) {
	dir := t.TempDir()
	var logged bytes.Buffer
	s, err := persist.NewFileStorage(dir, persist.WithFileLogger(zerolog.New(&logged)))
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(s.Path(), []byte("garbage"), 0o600))

	_, ok, err := s.Get("token")
	require.NoError(t, err)
	require.False(t, ok)
	require.Contains(t, logged.String(), "Discarding unreadable session file")

	require.NoError(t, s.Set("token", "fresh"))
	v, ok, err := s.Get("token")
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, "fresh", v)
}

func TestFileStorageWatchSeesOtherWriters(t *testing.T) {
	dir := t.TempDir()
	s, err := persist.NewFileStorage(dir)
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	var changes atomic.Int32
	require.NoError(t, s.Watch(ctx, func() { changes.Add(1) }, zerolog.Nop()))

	other, err := persist.NewFileStorage(dir)
	require.NoError(t, err)
	require.NoError(t, other.Set("token", "from-another-process"))

	require.Eventually(t, func() bool { return changes.Load() > 0 }, 2*time.Second, 10*time.Millisecond)
}
