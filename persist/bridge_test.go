package persist_test

import (
	"testing"

	"github.com/jrsteele09/bell-client/model"
	"github.com/jrsteele09/bell-client/persist"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"
)

func newBridge(t *testing.T) (*persist.Bridge, *persist.MemoryStorage) {
	t.Helper()
	storage := persist.NewMemoryStorage()
	return persist.NewBridge(storage, persist.WithLogger(zerolog.Nop())), storage
}

func TestSaveAndRestore(t *testing.T) {
	bridge, storage := newBridge(t)
	user := &model.UserProfile{ID: 1, Username: "admin", Role: model.RoleAdmin, ForcePasswordChange: true}

	require.NoError(t, bridge.Save("jwt-token", user))

	raw, ok, err := storage.Get(persist.KeyUser)
	require.NoError(t, err)
	require.True(t, ok)
	require.Contains(t, raw, `"ForcePasswordChange":true`)

	token, restored, ok := bridge.Restore()
	require.True(t, ok)
	require.Equal(t, "jwt-token", token)
	require.Equal(t, user, restored)
}

func TestRestoreEmptyStorageIsLoggedOut(t *testing.T) {
	bridge, _ := newBridge(t)

	token, user, ok := bridge.Restore()
	require.False(t, ok)
	require.Empty(t, token)
	require.Nil(t, user)
}

func TestRestoreWithOneKeyMissingIsLoggedOutAndRemovesOrphan(t *testing.T) {
	tests := []struct {
		name string
		key  string
		val  string
	}{
		{"token only", persist.KeyToken, "jwt-token"},
		{"user only", persist.KeyUser, `{"id":1,"username":"admin"}`},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			bridge, storage := newBridge(t)
			require.NoError(t, storage.Set(tc.key, tc.val))

			_, _, ok := bridge.Restore()
			require.False(t, ok)

			_, present, err := storage.Get(tc.key)
			require.NoError(t, err)
			require.False(t, present)
		})
	}
}

func TestRestoreCorruptUser(t *testing.T) {
	bridge, storage := newBridge(t)
	require.NoError(t, storage.Set(persist.KeyToken, "jwt-token"))
	require.NoError(t, storage.Set(persist.KeyUser, "{not json"))

	_, _, ok := bridge.Restore()
	require.False(t, ok)

	_, present, err := storage.Get(persist.KeyToken)
	require.NoError(t, err)
	require.False(t, present)
}

func TestClearRemovesBothKeys(t *testing.T) {
	bridge, storage := newBridge(t)
	require.NoError(t, bridge.Save("jwt-token", &model.UserProfile{ID: 1}))

	require.NoError(t, bridge.Clear())

	for _, key := range []string{persist.KeyToken, persist.KeyUser} {
		_, present, err := storage.Get(key)
		require.NoError(t, err)
		require.False(t, present, key)
	}
}

// keyOnlyStorage hides MemoryStorage's Apply so the per-key path runs.
type keyOnlyStorage struct {
	inner *persist.MemoryStorage
}

func (s keyOnlyStorage) Get(key string) (string, bool, error) {
	return s.inner.Get(key)
}

func (s keyOnlyStorage) Set(key, value string) error {
	return s.inner.Set(key, value)
}

func (s keyOnlyStorage) Delete(key string) error {
	return s.inner.Delete(key)
}

func TestSaveWithoutBatchSupport(t *testing.T) {
	inner := persist.NewMemoryStorage()
	bridge := persist.NewBridge(keyOnlyStorage{inner: inner}, persist.WithLogger(zerolog.Nop()))

	require.NoError(t, bridge.Save("tok", &model.UserProfile{Username: "jo"}))
	token, user, ok := bridge.Restore()
	require.True(t, ok)
	require.Equal(t, "tok", token)
	require.Equal(t, "jo", user.Username)

	require.NoError(t, bridge.Clear())
	_, hasToken, _ := inner.Get(persist.KeyToken)
	require.False(t, hasToken)
}
