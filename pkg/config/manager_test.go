package config

import (
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeManagedConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "ropevo.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestNewManager(t *testing.T) {
	manager, err := NewManager()
	require.NoError(t, err)

	assert.False(t, manager.IsLoaded())
	assert.Nil(t, manager.Get())
	assert.NotNil(t, manager.discovery)
	assert.Len(t, manager.sources, 2)
}

func TestManagerLoadWithConfigPath(t *testing.T) {
	path := writeManagedConfig(t, "pop_size: 64\n")

	manager, err := NewManager(WithConfigPath(path))
	require.NoError(t, err)
	require.NoError(t, manager.Load())

	assert.True(t, manager.IsLoaded())
	assert.Equal(t, path, manager.GetConfigPath())

	config := manager.Get()
	require.NotNil(t, config)
	assert.Equal(t, 64, config.PopSize)
	assert.Equal(t, "roper", config.Job)
}

func TestManagerLoadEnvironmentOverridesFile(t *testing.T) {
	path := writeManagedConfig(t, "pop_size: 64\n")
	t.Setenv("ROPEVO_POP_SIZE", "4096")

	manager, err := NewManager(WithConfigPath(path))
	require.NoError(t, err)
	require.NoError(t, manager.Load())

	assert.Equal(t, 4096, manager.Get().PopSize)
}

func TestManagerLoadRejectsInvalidConfig(t *testing.T) {
	path := writeManagedConfig(t, "selection: metropolis\n")

	manager, err := NewManager(WithConfigPath(path))
	require.NoError(t, err)

	err = manager.Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "validation failed")
	assert.False(t, manager.IsLoaded())
}

func TestManagerSectionAccessors(t *testing.T) {
	manager, err := NewManager()
	require.NoError(t, err)

	// Nothing loaded yet.
	assert.Nil(t, manager.GetObserverConfig())
	assert.Nil(t, manager.GetTournamentConfig())
	assert.Nil(t, manager.GetRouletteConfig())
	assert.Nil(t, manager.GetFitnessConfig())
	assert.Nil(t, manager.GetRoperConfig())

	path := writeManagedConfig(t, "tournament:\n  tournament_size: 6\n")
	manager, err = NewManager(WithConfigPath(path))
	require.NoError(t, err)
	require.NoError(t, manager.Load())

	assert.Equal(t, 6, manager.GetTournamentConfig().TournamentSize)
	assert.Equal(t, 512, manager.GetObserverConfig().WindowSize)
	assert.Equal(t, 0.75, manager.GetRouletteConfig().WeightDecay)
	assert.Equal(t, "register_pattern", manager.GetFitnessConfig().Function)
	assert.Equal(t, "/bin/sh", manager.GetRoperConfig().BinaryPath)
}

func TestManagerUpdate(t *testing.T) {
	path := writeManagedConfig(t, "pop_size: 64\n")

	var notified int
	manager, err := NewManager(
		WithConfigPath(path),
		WithWatcher(func(c *Config) error {
			notified++
			return nil
		}),
	)
	require.NoError(t, err)
	require.NoError(t, manager.Load())

	require.NoError(t, manager.Update(func(c *Config) error {
		c.PopSize = 128
		return nil
	}))

	assert.Equal(t, 128, manager.Get().PopSize)
	assert.Equal(t, 1, notified)
}

func TestManagerUpdateRejectsInvalidChange(t *testing.T) {
	path := writeManagedConfig(t, "pop_size: 64\n")

	manager, err := NewManager(WithConfigPath(path))
	require.NoError(t, err)
	require.NoError(t, manager.Load())

	err = manager.Update(func(c *Config) error {
		c.PopSize = 1
		return nil
	})
	require.Error(t, err)

	// The stored configuration is untouched.
	assert.Equal(t, 64, manager.Get().PopSize)
}

func TestManagerUpdateRequiresLoad(t *testing.T) {
	manager, err := NewManager()
	require.NoError(t, err)

	err = manager.Update(func(c *Config) error { return nil })
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no configuration loaded")
}

func TestManagerReload(t *testing.T) {
	path := writeManagedConfig(t, "pop_size: 64\n")

	manager, err := NewManager(WithConfigPath(path))
	require.NoError(t, err)
	require.NoError(t, manager.Load())
	assert.Equal(t, 64, manager.Get().PopSize)

	require.NoError(t, os.WriteFile(path, []byte("pop_size: 256\n"), 0o644))
	require.NoError(t, manager.Reload())
	assert.Equal(t, 256, manager.Get().PopSize)
}

func TestManagerReloadRollsBackOnWatcherFailure(t *testing.T) {
	path := writeManagedConfig(t, "pop_size: 64\n")

	manager, err := NewManager(
		WithConfigPath(path),
		WithWatcher(func(c *Config) error {
			return fmt.Errorf("refusing the new configuration")
		}),
	)
	require.NoError(t, err)
	require.NoError(t, manager.Load())

	require.NoError(t, os.WriteFile(path, []byte("pop_size: 256\n"), 0o644))

	err = manager.Reload()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "rolled back")
	assert.Equal(t, 64, manager.Get().PopSize)
}

func TestManagerSaveToFile(t *testing.T) {
	path := writeManagedConfig(t, "pop_size: 64\n")

	manager, err := NewManager(WithConfigPath(path))
	require.NoError(t, err)
	require.NoError(t, manager.Load())

	savedPath := filepath.Join(t.TempDir(), "nested", "saved.yaml")
	require.NoError(t, manager.SaveToFile(savedPath))

	reloaded, err := NewManager(WithConfigPath(savedPath))
	require.NoError(t, err)
	require.NoError(t, reloaded.Load())
	assert.Equal(t, 64, reloaded.Get().PopSize)
}

func TestManagerSaveRequiresConfig(t *testing.T) {
	manager, err := NewManager()
	require.NoError(t, err)

	err = manager.Save()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no configuration to save")
}

func TestManagerClone(t *testing.T) {
	path := writeManagedConfig(t, "pop_size: 64\n")

	manager, err := NewManager(WithConfigPath(path))
	require.NoError(t, err)
	require.NoError(t, manager.Load())

	clone, err := manager.Clone()
	require.NoError(t, err)
	require.NotSame(t, manager.Get(), clone)

	clone.PopSize = 9999
	assert.Equal(t, 64, manager.Get().PopSize)
}

func TestManagerCloneRequiresLoad(t *testing.T) {
	manager, err := NewManager()
	require.NoError(t, err)

	_, err = manager.Clone()
	assert.Error(t, err)
}

func TestGlobalManager(t *testing.T) {
	previous := GetGlobalManager()
	t.Cleanup(func() { SetGlobalManager(previous) })

	manager, err := NewManager()
	require.NoError(t, err)

	SetGlobalManager(manager)
	assert.Same(t, manager, GetGlobalManager())
	assert.Nil(t, GetGlobalConfig())
}
