package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/XiaoConstantine/ropevo-go/pkg/selection"
)

func TestValidateConfigAcceptsDefaults(t *testing.T) {
	assert.NoError(t, ValidateConfiguration(GetDefaultConfig()))
}

func TestValidateConfigNil(t *testing.T) {
	err := ValidateConfiguration(nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "config")
}

func TestValidateConfigSelectionMethods(t *testing.T) {
	tests := []struct {
		name    string
		method  string
		wantErr bool
	}{
		{"tournament", "tournament", false},
		{"roulette", "roulette", false},
		{"lexicase", "lexicase", false},
		{"metropolis is not supported", "metropolis", true},
		{"unknown method", "darwin", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			config := GetDefaultConfig()
			config.Selection = selection.Method(tt.method)

			err := ValidateConfiguration(config)
			if tt.wantErr {
				require.Error(t, err)
				assert.Contains(t, err.Error(), "must be one of: tournament, roulette, lexicase")
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestValidateConfigCustomRules(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		message string
	}{
		{
			name: "tournament too small for offspring",
			mutate: func(c *Config) {
				c.Tournament.TournamentSize = 3
				c.Tournament.NumOffspring = 2
			},
			message: "tournament size must be at least num_offspring + 2 (4)",
		},
		{
			name: "as many parents as combatants",
			mutate: func(c *Config) {
				c.Tournament.TournamentSize = 4
				c.Tournament.NumParents = 4
			},
			message: "more combatants than it keeps as parents",
		},
		{
			name: "tournament swallows the population",
			mutate: func(c *Config) {
				c.PopSize = 4
				c.Tournament.TournamentSize = 4
			},
			message: "smaller than pop_size",
		},
		{
			name: "radius inside the tournament",
			mutate: func(c *Config) {
				c.Tournament.GeographicRadius = 3
			},
			message: "geographic radius must exceed the tournament size",
		},
		{
			name: "island id out of range",
			mutate: func(c *Config) {
				c.NumIslands = 2
				c.IslandID = 5
			},
			message: "island_id must be smaller than num_islands (2)",
		},
		{
			name: "min init len above max",
			mutate: func(c *Config) {
				c.MinInitLen = 64
				c.MaxInitLen = 32
			},
			message: "min_init_len cannot exceed max_init_len",
		},
		{
			name: "max init len above max length",
			mutate: func(c *Config) {
				c.MaxInitLen = 512
				c.MaxLength = 256
			},
			message: "max_init_len cannot exceed max_length",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			config := GetDefaultConfig()
			tt.mutate(config)

			err := ValidateConfiguration(config)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.message)
		})
	}
}

func TestValidateConfigAcceptsWideRadius(t *testing.T) {
	config := GetDefaultConfig()
	config.Tournament.GeographicRadius = 100
	assert.NoError(t, ValidateConfiguration(config))
}

func TestValidateConfigStructTags(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"missing job", func(c *Config) { c.Job = "" }},
		{"pop size too small", func(c *Config) { c.PopSize = 1 }},
		{"mutation rate above one", func(c *Config) { c.MutationRate = 1.5 }},
		{"bad crossover algorithm", func(c *Config) { c.CrossoverAlgorithm = "spiral" }},
		{"missing weighting", func(c *Config) { c.Fitness.Weighting = "" }},
		{"missing binary path", func(c *Config) { c.Roper.BinaryPath = "" }},
		{"bad arch", func(c *Config) { c.Roper.Arch = "sparc" }},
		{"bad mode", func(c *Config) { c.Roper.Mode = "16" }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			config := GetDefaultConfig()
			tt.mutate(config)
			assert.Error(t, ValidateConfiguration(config))
		})
	}
}

func TestValidationErrorFormats(t *testing.T) {
	withMessage := ValidationError{Field: "PopSize", Message: "must be at least 2"}
	assert.Equal(t, "field 'PopSize': must be at least 2", withMessage.Error())

	var empty ValidationErrors
	assert.Equal(t, "no validation errors", empty.Error())

	multiple := ValidationErrors{
		{Field: "Job", Message: "Job is required"},
		{Field: "PopSize", Message: "PopSize must be at least 2"},
	}
	assert.Contains(t, multiple.Error(), "validation failed:")
	assert.Contains(t, multiple.Error(), "; ")
}

func TestNewValidator(t *testing.T) {
	v, err := NewValidator()
	require.NoError(t, err)
	assert.NotNil(t, v)
}
