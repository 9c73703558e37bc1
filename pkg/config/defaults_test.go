package config

import (
	"runtime"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/XiaoConstantine/ropevo-go/pkg/selection"
)

func TestGetDefaultConfig(t *testing.T) {
	config := GetDefaultConfig()

	require.NotNil(t, config)
	assert.Equal(t, "roper", config.Job)
	assert.Equal(t, selection.Tournament, config.Selection)
	assert.Equal(t, 1.0, config.MutationRate)
	assert.Equal(t, 3.0, config.MutationExponent)
	assert.Equal(t, "alternating", config.CrossoverAlgorithm)
	assert.Equal(t, 0.5, config.CrossoverRate)
	assert.Equal(t, 1024, config.PopSize)
	assert.Equal(t, 32, config.MaxInitLen)
	assert.Equal(t, 256, config.MaxLength)
	assert.Equal(t, 4, config.MinInitLen)
	assert.Equal(t, 0, config.NumEpochs)
	assert.Zero(t, config.RandomSeed)

	assert.Equal(t, 512, config.Observer.WindowSize)
	assert.Equal(t, 1024, config.Observer.ReportEvery)
	assert.Equal(t, "~/logs/ropevo", config.Observer.DataDirectory)

	assert.Equal(t, 4, config.Tournament.TournamentSize)
	assert.Equal(t, 2, config.Tournament.NumOffspring)
	assert.Equal(t, 2, config.Tournament.NumParents)
	assert.Equal(t, 0, config.Tournament.GeographicRadius)

	assert.Equal(t, 0.75, config.Roulette.WeightDecay)

	assert.Equal(t, "register_pattern", config.Fitness.Function)
	assert.NotEmpty(t, config.Fitness.Weighting)

	assert.Equal(t, "x86", config.Roper.Arch)
	assert.Equal(t, "64", config.Roper.Mode)
	assert.Equal(t, runtime.NumCPU(), config.Roper.NumWorkers)
	assert.Equal(t, runtime.NumCPU()+1, config.Roper.NumEmulators)
	assert.Equal(t, 200, config.Roper.WaitLimit)
	assert.Equal(t, 0x1000, config.Roper.EmulatorStackSize)
	assert.Equal(t, "/bin/sh", config.Roper.BinaryPath)
}

func TestDefaultNumIslands(t *testing.T) {
	config := GetDefaultConfig()
	assert.GreaterOrEqual(t, config.NumIslands, 1)
}

func TestValidateDefaults(t *testing.T) {
	assert.NoError(t, ValidateDefaults())
}

func TestMergeWithDefaultsNil(t *testing.T) {
	merged := MergeWithDefaults(nil)
	assert.Equal(t, GetDefaultConfig(), merged)
}

func TestMergeWithDefaultsPartial(t *testing.T) {
	partial := &Config{
		PopSize:      64,
		MutationRate: 0.25,
	}

	merged := MergeWithDefaults(partial)

	assert.Equal(t, 64, merged.PopSize)
	assert.Equal(t, 0.25, merged.MutationRate)
	assert.Equal(t, "roper", merged.Job)
	assert.Equal(t, selection.Tournament, merged.Selection)
	assert.Equal(t, "alternating", merged.CrossoverAlgorithm)
	assert.Equal(t, GetDefaultConfig().Tournament, merged.Tournament)
	assert.Equal(t, GetDefaultConfig().Roper, merged.Roper)
}

func TestMergeWithDefaultsFillsSections(t *testing.T) {
	partial := &Config{
		Observer: ObserverConfig{
			DataDirectory: "/tmp/ropevo-test",
		},
		Tournament: TournamentConfig{
			TournamentSize: 8,
		},
		Roper: RoperConfig{
			BinaryPath: "/usr/bin/env",
		},
	}

	merged := MergeWithDefaults(partial)

	// Explicit fields stay put, the rest of the section fills in.
	assert.Equal(t, "/tmp/ropevo-test", merged.Observer.DataDirectory)
	assert.Equal(t, 512, merged.Observer.WindowSize)
	assert.Equal(t, 1024, merged.Observer.ReportEvery)

	assert.Equal(t, 8, merged.Tournament.TournamentSize)
	assert.Equal(t, 2, merged.Tournament.NumOffspring)
	assert.Equal(t, 2, merged.Tournament.NumParents)

	assert.Equal(t, "/usr/bin/env", merged.Roper.BinaryPath)
	assert.Equal(t, "x86", merged.Roper.Arch)
	assert.Equal(t, runtime.NumCPU(), merged.Roper.NumWorkers)
}

func TestMergeWithDefaultsReplacesEmptySections(t *testing.T) {
	partial := &Config{Job: "roper"}

	merged := MergeWithDefaults(partial)

	assert.Equal(t, GetDefaultConfig().Observer, merged.Observer)
	assert.Equal(t, GetDefaultConfig().Fitness, merged.Fitness)
	assert.Equal(t, GetDefaultConfig().Roulette, merged.Roulette)
}

func TestMergeWithDefaultsDoesNotMutateInput(t *testing.T) {
	partial := &Config{PopSize: 64}

	_ = MergeWithDefaults(partial)

	assert.Equal(t, "", partial.Job)
	assert.Equal(t, 0, partial.Tournament.TournamentSize)
}
