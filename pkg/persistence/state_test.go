package persistence

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fleetdash/fleetdash-go/pkg/model"
)

func TestSaveLoadRoundTrip(t *testing.T) {
	store := NewStore(filepath.Join(t.TempDir(), "state.json"))

	saved := &AgentState{
		DeviceID:     "device-abc",
		Registered:   true,
		RegisteredAt: time.Date(2026, 8, 30, 10, 0, 0, 0, time.UTC),
		APIKey:       "key-1",
		LastStatus:   model.StatusOnline,
	}
	require.NoError(t, store.Save(saved))

	loaded, err := store.Load()
	require.NoError(t, err)
	require.NotNil(t, loaded)

	assert.Equal(t, StateVersion, loaded.Version)
	assert.False(t, loaded.SavedAt.IsZero())
	assert.Equal(t, "device-abc", loaded.DeviceID)
	assert.True(t, loaded.Registered)
	assert.Equal(t, "key-1", loaded.APIKey)
	assert.Equal(t, model.StatusOnline, loaded.LastStatus)
}

func TestLoadMissingFile(t *testing.T) {
	store := NewStore(filepath.Join(t.TempDir(), "missing.json"))

	state, err := store.Load()
	require.NoError(t, err)
	assert.Nil(t, state)
}

func TestLoadCorruptFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "state.json")
	require.NoError(t, os.WriteFile(path, []byte("{not json"), 0o600))

	_, err := NewStore(path).Load()
	assert.Error(t, err)
}

func TestSaveCreatesDirectory(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "dir", "state.json")
	store := NewStore(path)

	require.NoError(t, store.Save(&AgentState{DeviceID: "device-abc"}))

	_, err := os.Stat(path)
	assert.NoError(t, err)
}

func TestSaveFileMode(t *testing.T) {
	path := filepath.Join(t.TempDir(), "state.json")
	require.NoError(t, NewStore(path).Save(&AgentState{DeviceID: "device-abc"}))

	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0o600), info.Mode().Perm())
}

func TestClear(t *testing.T) {
	path := filepath.Join(t.TempDir(), "state.json")
	store := NewStore(path)

	require.NoError(t, store.Save(&AgentState{DeviceID: "device-abc"}))
	require.NoError(t, store.Clear())

	state, err := store.Load()
	require.NoError(t, err)
	assert.Nil(t, state)

	// Clearing an already-missing file is fine.
	require.NoError(t, store.Clear())
}

func TestSaveOverwrites(t *testing.T) {
	store := NewStore(filepath.Join(t.TempDir(), "state.json"))

	require.NoError(t, store.Save(&AgentState{DeviceID: "device-abc"}))
	require.NoError(t, store.Save(&AgentState{DeviceID: "device-abc", Registered: true}))

	loaded, err := store.Load()
	require.NoError(t, err)
	assert.True(t, loaded.Registered)
}
