package config

import (
	"runtime"

	"github.com/XiaoConstantine/ropevo-go/pkg/selection"
)

// GetDefaultConfig returns the default configuration for an evolutionary
// run. The result validates cleanly on its own, so a config file only has
// to spell out what it wants to change.
func GetDefaultConfig() *Config {
	return &Config{
		Job:                "roper",
		Timeout:            0,
		Selection:          selection.Tournament,
		NumIslands:         defaultNumIslands(),
		IslandID:           0,
		CrossoverPeriod:    1.0,
		CrossoverAlgorithm: "alternating",
		CrossoverRate:      0.5,
		MaxInitLen:         32,
		MaxLength:          256,
		MinInitLen:         4,
		MutationRate:       1.0,
		MutationExponent:   3.0,
		Observer:           getDefaultObserverConfig(),
		PopSize:            1024,
		Roulette:           getDefaultRouletteConfig(),
		Tournament:         getDefaultTournamentConfig(),
		Fitness:            getDefaultFitnessConfig(),
		Roper:              getDefaultRoperConfig(),
		NumEpochs:          0,
		RandomSeed:         0,
	}
}

// defaultNumIslands gives each island a few cores to itself.
func defaultNumIslands() int {
	if n := runtime.NumCPU() / 4; n > 0 {
		return n
	}
	return 1
}

// getDefaultObserverConfig returns default observer configuration.
func getDefaultObserverConfig() ObserverConfig {
	return ObserverConfig{
		WindowSize:     512,
		ReportEvery:    1024,
		DumpPopulation: false,
		DumpSoup:       false,
		DataDirectory:  "~/logs/ropevo",
	}
}

// getDefaultTournamentConfig returns default tournament configuration.
func getDefaultTournamentConfig() TournamentConfig {
	return TournamentConfig{
		TournamentSize:   4,
		GeographicRadius: 0,
		MigrationRate:    0.0,
		NumOffspring:     2,
		NumParents:       2,
	}
}

// getDefaultRouletteConfig returns default roulette configuration.
func getDefaultRouletteConfig() RouletteConfig {
	return RouletteConfig{
		WeightDecay: 0.75,
	}
}

// getDefaultFitnessConfig returns default fitness configuration.
func getDefaultFitnessConfig() FitnessConfig {
	return FitnessConfig{
		Target:     0.0,
		EvalByCase: false,
		Dynamic:    false,
		Function:   "register_pattern",
		Weighting:  "mem_write_ratio + code_coverage",
	}
}

// getDefaultRoperConfig returns default configuration for the emulation
// job.
func getDefaultRoperConfig() RoperConfig {
	workers := runtime.NumCPU()
	return RoperConfig{
		RandomizeRegisters: false,
		SoupSize:           0x10000,
		Arch:               "x86",
		Mode:               "64",
		NumWorkers:         workers,
		NumEmulators:       workers + 1,
		WaitLimit:          200,
		MaxEmuSteps:        0x10000,
		MillisecondTimeout: 500,
		EmulatorStackSize:  0x1000,
		BinaryPath:         "/bin/sh",
	}
}

// MergeWithDefaults merges a partial configuration with the defaults.
// Zero-valued fields in the partial config take the default value; whole
// sections left empty are replaced wholesale.
func MergeWithDefaults(partial *Config) *Config {
	defaults := GetDefaultConfig()
	if partial == nil {
		return defaults
	}

	merged := *partial

	if merged.Job == "" {
		merged.Job = defaults.Job
	}
	if merged.Selection == "" {
		merged.Selection = defaults.Selection
	}
	if merged.NumIslands == 0 {
		merged.NumIslands = defaults.NumIslands
	}
	if merged.CrossoverPeriod == 0 {
		merged.CrossoverPeriod = defaults.CrossoverPeriod
	}
	if merged.CrossoverAlgorithm == "" {
		merged.CrossoverAlgorithm = defaults.CrossoverAlgorithm
	}
	if merged.CrossoverRate == 0 {
		merged.CrossoverRate = defaults.CrossoverRate
	}
	if merged.MaxInitLen == 0 {
		merged.MaxInitLen = defaults.MaxInitLen
	}
	if merged.MaxLength == 0 {
		merged.MaxLength = defaults.MaxLength
	}
	if merged.MinInitLen == 0 {
		merged.MinInitLen = defaults.MinInitLen
	}
	if merged.MutationRate == 0 {
		merged.MutationRate = defaults.MutationRate
	}
	if merged.MutationExponent == 0 {
		merged.MutationExponent = defaults.MutationExponent
	}
	if merged.PopSize == 0 {
		merged.PopSize = defaults.PopSize
	}

	if isEmptyObserverConfig(&merged.Observer) {
		merged.Observer = defaults.Observer
	} else {
		mergeObserverConfig(&merged.Observer, &defaults.Observer)
	}

	if isEmptyTournamentConfig(&merged.Tournament) {
		merged.Tournament = defaults.Tournament
	} else {
		mergeTournamentConfig(&merged.Tournament, &defaults.Tournament)
	}

	if isEmptyRouletteConfig(&merged.Roulette) {
		merged.Roulette = defaults.Roulette
	} else {
		mergeRouletteConfig(&merged.Roulette, &defaults.Roulette)
	}

	if isEmptyFitnessConfig(&merged.Fitness) {
		merged.Fitness = defaults.Fitness
	} else {
		mergeFitnessConfig(&merged.Fitness, &defaults.Fitness)
	}

	if isEmptyRoperConfig(&merged.Roper) {
		merged.Roper = defaults.Roper
	} else {
		mergeRoperConfig(&merged.Roper, &defaults.Roper)
	}

	return &merged
}

// isEmptyObserverConfig checks if the observer section was left out.
func isEmptyObserverConfig(o *ObserverConfig) bool {
	return o.WindowSize == 0 && o.ReportEvery == 0 && o.DataDirectory == "" &&
		o.PopulationName == "" && !o.DumpPopulation && !o.DumpSoup
}

// isEmptyTournamentConfig checks if the tournament section was left out.
func isEmptyTournamentConfig(t *TournamentConfig) bool {
	return t.TournamentSize == 0 && t.GeographicRadius == 0 &&
		t.MigrationRate == 0 && t.NumOffspring == 0 && t.NumParents == 0
}

// isEmptyRouletteConfig checks if the roulette section was left out.
func isEmptyRouletteConfig(r *RouletteConfig) bool {
	return r.WeightDecay == 0
}

// isEmptyFitnessConfig checks if the fitness section was left out.
func isEmptyFitnessConfig(f *FitnessConfig) bool {
	return f.Target == 0 && f.Priority == "" && f.Function == "" &&
		f.Weighting == "" && !f.EvalByCase && !f.Dynamic
}

// isEmptyRoperConfig checks if the roper section was left out.
func isEmptyRoperConfig(r *RoperConfig) bool {
	return r.GadgetFile == "" && len(r.OutputRegisters) == 0 &&
		len(r.InputRegisters) == 0 && r.RegisterPatternFile == "" &&
		len(r.Soup) == 0 && r.SoupSize == 0 && r.Arch == "" && r.Mode == "" &&
		r.NumWorkers == 0 && r.NumEmulators == 0 && r.BinaryPath == ""
}

// mergeObserverConfig fills zero-valued observer fields from the defaults.
func mergeObserverConfig(target, defaults *ObserverConfig) {
	if target.WindowSize == 0 {
		target.WindowSize = defaults.WindowSize
	}
	if target.ReportEvery == 0 {
		target.ReportEvery = defaults.ReportEvery
	}
	if target.DataDirectory == "" {
		target.DataDirectory = defaults.DataDirectory
	}
}

// mergeTournamentConfig fills zero-valued tournament fields from the
// defaults.
func mergeTournamentConfig(target, defaults *TournamentConfig) {
	if target.TournamentSize == 0 {
		target.TournamentSize = defaults.TournamentSize
	}
	if target.NumOffspring == 0 {
		target.NumOffspring = defaults.NumOffspring
	}
	if target.NumParents == 0 {
		target.NumParents = defaults.NumParents
	}
}

// mergeRouletteConfig fills zero-valued roulette fields from the defaults.
func mergeRouletteConfig(target, defaults *RouletteConfig) {
	if target.WeightDecay == 0 {
		target.WeightDecay = defaults.WeightDecay
	}
}

// mergeFitnessConfig fills zero-valued fitness fields from the defaults.
func mergeFitnessConfig(target, defaults *FitnessConfig) {
	if target.Function == "" {
		target.Function = defaults.Function
	}
	if target.Weighting == "" {
		target.Weighting = defaults.Weighting
	}
}

// mergeRoperConfig fills zero-valued roper fields from the defaults.
func mergeRoperConfig(target, defaults *RoperConfig) {
	if target.SoupSize == 0 {
		target.SoupSize = defaults.SoupSize
	}
	if target.Arch == "" {
		target.Arch = defaults.Arch
	}
	if target.Mode == "" {
		target.Mode = defaults.Mode
	}
	if target.NumWorkers == 0 {
		target.NumWorkers = defaults.NumWorkers
	}
	if target.NumEmulators == 0 {
		target.NumEmulators = defaults.NumEmulators
	}
	if target.WaitLimit == 0 {
		target.WaitLimit = defaults.WaitLimit
	}
	if target.MaxEmuSteps == 0 {
		target.MaxEmuSteps = defaults.MaxEmuSteps
	}
	if target.MillisecondTimeout == 0 {
		target.MillisecondTimeout = defaults.MillisecondTimeout
	}
	if target.EmulatorStackSize == 0 {
		target.EmulatorStackSize = defaults.EmulatorStackSize
	}
	if target.BinaryPath == "" {
		target.BinaryPath = defaults.BinaryPath
	}
}

// ValidateDefaults checks that the default configuration is valid. Guards
// against the defaults drifting out from under the validation rules.
func ValidateDefaults() error {
	return GetDefaultConfig().Validate()
}
