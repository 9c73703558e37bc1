package config

import (
	"fmt"
	"os"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/XiaoConstantine/ropevo-go/pkg/selection"
	"gopkg.in/yaml.v3"
)

// Source represents a configuration source.
type Source interface {
	// Load loads configuration from the source into the provided config
	Load(config *Config, paths []string) error

	// Name returns the name of the source
	Name() string

	// Priority returns the priority of the source (higher priority
	// overrides lower)
	Priority() int
}

// FileSource loads configuration from YAML files.
type FileSource struct {
	priority int
}

// NewFileSource creates a new file source.
func NewFileSource() *FileSource {
	return &FileSource{priority: 100}
}

// NewFileSourceWithPriority creates a new file source with custom priority.
func NewFileSourceWithPriority(priority int) *FileSource {
	return &FileSource{priority: priority}
}

// Name returns the name of the file source.
func (fs *FileSource) Name() string {
	return "file"
}

// Priority returns the priority of the file source.
func (fs *FileSource) Priority() int {
	return fs.priority
}

// Load loads configuration from YAML files. Later paths override earlier
// ones.
func (fs *FileSource) Load(config *Config, paths []string) error {
	for _, path := range paths {
		if !fileExists(path) {
			continue
		}

		data, err := os.ReadFile(path)
		if err != nil {
			return fmt.Errorf("failed to read config file %s: %w", path, err)
		}

		// Unmarshalling straight into the target only touches the keys
		// the file names, which is exactly the override behavior wanted.
		if err := yaml.Unmarshal(data, config); err != nil {
			return fmt.Errorf("failed to parse YAML from %s: %w", path, err)
		}
	}

	return nil
}

// EnvironmentSource loads configuration from environment variables.
type EnvironmentSource struct {
	priority int
	prefix   string
}

// NewEnvironmentSource creates a new environment source.
func NewEnvironmentSource() *EnvironmentSource {
	return &EnvironmentSource{
		priority: 200, // overrides the file source
		prefix:   "ROPEVO_",
	}
}

// NewEnvironmentSourceWithPrefix creates a new environment source with a
// custom prefix.
func NewEnvironmentSourceWithPrefix(prefix string) *EnvironmentSource {
	return &EnvironmentSource{
		priority: 200,
		prefix:   prefix,
	}
}

// Name returns the name of the environment source.
func (es *EnvironmentSource) Name() string {
	return "environment"
}

// Priority returns the priority of the environment source.
func (es *EnvironmentSource) Priority() int {
	return es.priority
}

// Load applies environment variable overrides, e.g. ROPEVO_POP_SIZE=4096
// or ROPEVO_TOURNAMENT_TOURNAMENT_SIZE=6.
func (es *EnvironmentSource) Load(config *Config, paths []string) error {
	envVars := es.environmentVariables()

	// Longer keys first, so that section-qualified forms win over any
	// shorter aliases; alphabetical within a length for a stable order.
	keys := make([]string, 0, len(envVars))
	for key := range envVars {
		keys = append(keys, key)
	}
	sort.Slice(keys, func(i, j int) bool {
		if len(keys[i]) != len(keys[j]) {
			return len(keys[i]) > len(keys[j])
		}
		return keys[i] < keys[j]
	})

	for _, key := range keys {
		value := envVars[key]
		if err := es.setConfigValue(config, key, value); err != nil {
			return fmt.Errorf("failed to set config value %s=%s: %w", key, value, err)
		}
	}

	return nil
}

// environmentVariables collects the prefixed environment variables,
// keyed by their dotted config path.
func (es *EnvironmentSource) environmentVariables() map[string]string {
	envVars := make(map[string]string)

	for _, env := range os.Environ() {
		parts := strings.SplitN(env, "=", 2)
		if len(parts) != 2 {
			continue
		}

		key, value := parts[0], parts[1]
		if !strings.HasPrefix(key, es.prefix) {
			continue
		}

		configKey := strings.ToLower(strings.TrimPrefix(key, es.prefix))
		configKey = strings.ReplaceAll(configKey, "_", ".")
		envVars[configKey] = value
	}

	return envVars
}

// setConfigValue routes a dotted key to its section.
func (es *EnvironmentSource) setConfigValue(config *Config, key, value string) error {
	switch {
	case strings.HasPrefix(key, "observer."):
		return es.setObserverValue(&config.Observer, strings.TrimPrefix(key, "observer."), value)
	case strings.HasPrefix(key, "tournament."):
		return es.setTournamentValue(&config.Tournament, strings.TrimPrefix(key, "tournament."), value)
	case strings.HasPrefix(key, "roulette."):
		return es.setRouletteValue(&config.Roulette, strings.TrimPrefix(key, "roulette."), value)
	case strings.HasPrefix(key, "fitness."):
		return es.setFitnessValue(&config.Fitness, strings.TrimPrefix(key, "fitness."), value)
	case strings.HasPrefix(key, "roper."):
		return es.setRoperValue(&config.Roper, strings.TrimPrefix(key, "roper."), value)
	default:
		return es.setTopLevelValue(config, key, value)
	}
}

// setTopLevelValue sets the unsectioned run parameters.
func (es *EnvironmentSource) setTopLevelValue(config *Config, key, value string) error {
	switch key {
	case "job":
		config.Job = value
	case "selection":
		config.Selection = selection.Method(value)
	case "timeout":
		timeout, err := es.parseDuration(value)
		if err != nil {
			return fmt.Errorf("invalid timeout duration: %s", value)
		}
		config.Timeout = Duration(timeout)
	case "num.islands", "numislands":
		n, err := strconv.Atoi(value)
		if err != nil {
			return fmt.Errorf("invalid num islands: %s", value)
		}
		config.NumIslands = n
	case "island.id", "islandid":
		n, err := strconv.Atoi(value)
		if err != nil {
			return fmt.Errorf("invalid island id: %s", value)
		}
		config.IslandID = n
	case "pop.size", "popsize":
		n, err := strconv.Atoi(value)
		if err != nil {
			return fmt.Errorf("invalid pop size: %s", value)
		}
		config.PopSize = n
	case "num.epochs", "numepochs":
		n, err := strconv.Atoi(value)
		if err != nil {
			return fmt.Errorf("invalid num epochs: %s", value)
		}
		config.NumEpochs = n
	case "random.seed", "randomseed":
		// base 0 so that hex seeds work too
		seed, err := strconv.ParseUint(value, 0, 64)
		if err != nil {
			return fmt.Errorf("invalid random seed: %s", value)
		}
		config.RandomSeed = seed
	case "crossover.period":
		f, err := strconv.ParseFloat(value, 64)
		if err != nil {
			return fmt.Errorf("invalid crossover period: %s", value)
		}
		config.CrossoverPeriod = f
	case "crossover.rate":
		f, err := strconv.ParseFloat(value, 64)
		if err != nil {
			return fmt.Errorf("invalid crossover rate: %s", value)
		}
		config.CrossoverRate = f
	case "crossover.algorithm":
		config.CrossoverAlgorithm = value
	case "mutation.rate":
		f, err := strconv.ParseFloat(value, 64)
		if err != nil {
			return fmt.Errorf("invalid mutation rate: %s", value)
		}
		config.MutationRate = f
	case "mutation.exponent":
		f, err := strconv.ParseFloat(value, 64)
		if err != nil {
			return fmt.Errorf("invalid mutation exponent: %s", value)
		}
		config.MutationExponent = f
	case "max.init.len":
		n, err := strconv.Atoi(value)
		if err != nil {
			return fmt.Errorf("invalid max init len: %s", value)
		}
		config.MaxInitLen = n
	case "max.length":
		n, err := strconv.Atoi(value)
		if err != nil {
			return fmt.Errorf("invalid max length: %s", value)
		}
		config.MaxLength = n
	case "min.init.len":
		n, err := strconv.Atoi(value)
		if err != nil {
			return fmt.Errorf("invalid min init len: %s", value)
		}
		config.MinInitLen = n
	default:
		// Unknown keys are ignored rather than failing, so unrelated
		// ROPEVO_ variables don't break a run.
		return nil
	}
	return nil
}

// setObserverValue sets observer configuration values.
func (es *EnvironmentSource) setObserverValue(observer *ObserverConfig, key, value string) error {
	switch key {
	case "window.size", "windowsize":
		n, err := strconv.Atoi(value)
		if err != nil {
			return fmt.Errorf("invalid window size: %s", value)
		}
		observer.WindowSize = n
	case "report.every", "reportevery":
		n, err := strconv.Atoi(value)
		if err != nil {
			return fmt.Errorf("invalid report every: %s", value)
		}
		observer.ReportEvery = n
	case "dump.population":
		b, err := strconv.ParseBool(value)
		if err != nil {
			return fmt.Errorf("invalid dump population flag: %s", value)
		}
		observer.DumpPopulation = b
	case "dump.soup":
		b, err := strconv.ParseBool(value)
		if err != nil {
			return fmt.Errorf("invalid dump soup flag: %s", value)
		}
		observer.DumpSoup = b
	case "data.directory", "datadirectory":
		observer.DataDirectory = value
	case "population.name", "populationname":
		observer.PopulationName = value
	default:
		return nil
	}
	return nil
}

// setTournamentValue sets tournament configuration values.
func (es *EnvironmentSource) setTournamentValue(tournament *TournamentConfig, key, value string) error {
	switch key {
	case "tournament.size", "size", "tournamentsize":
		n, err := strconv.Atoi(value)
		if err != nil {
			return fmt.Errorf("invalid tournament size: %s", value)
		}
		tournament.TournamentSize = n
	case "geographic.radius", "radius":
		n, err := strconv.Atoi(value)
		if err != nil {
			return fmt.Errorf("invalid geographic radius: %s", value)
		}
		tournament.GeographicRadius = n
	case "migration.rate":
		f, err := strconv.ParseFloat(value, 64)
		if err != nil {
			return fmt.Errorf("invalid migration rate: %s", value)
		}
		tournament.MigrationRate = f
	case "num.offspring", "numoffspring":
		n, err := strconv.Atoi(value)
		if err != nil {
			return fmt.Errorf("invalid num offspring: %s", value)
		}
		tournament.NumOffspring = n
	case "num.parents", "numparents":
		n, err := strconv.Atoi(value)
		if err != nil {
			return fmt.Errorf("invalid num parents: %s", value)
		}
		tournament.NumParents = n
	default:
		return nil
	}
	return nil
}

// setRouletteValue sets roulette configuration values.
func (es *EnvironmentSource) setRouletteValue(roulette *RouletteConfig, key, value string) error {
	switch key {
	case "weight.decay", "weightdecay":
		f, err := strconv.ParseFloat(value, 64)
		if err != nil {
			return fmt.Errorf("invalid weight decay: %s", value)
		}
		roulette.WeightDecay = f
	default:
		return nil
	}
	return nil
}

// setFitnessValue sets fitness configuration values.
func (es *EnvironmentSource) setFitnessValue(fitness *FitnessConfig, key, value string) error {
	switch key {
	case "target":
		f, err := strconv.ParseFloat(value, 64)
		if err != nil {
			return fmt.Errorf("invalid fitness target: %s", value)
		}
		fitness.Target = f
	case "eval.by.case":
		b, err := strconv.ParseBool(value)
		if err != nil {
			return fmt.Errorf("invalid eval by case flag: %s", value)
		}
		fitness.EvalByCase = b
	case "dynamic":
		b, err := strconv.ParseBool(value)
		if err != nil {
			return fmt.Errorf("invalid dynamic flag: %s", value)
		}
		fitness.Dynamic = b
	case "priority":
		fitness.Priority = value
	case "function":
		fitness.Function = value
	case "weighting":
		fitness.Weighting = value
	default:
		return nil
	}
	return nil
}

// setRoperValue sets emulation job configuration values.
func (es *EnvironmentSource) setRoperValue(roper *RoperConfig, key, value string) error {
	switch key {
	case "gadget.file":
		roper.GadgetFile = value
	case "output.registers":
		roper.OutputRegisters = splitRegisterList(value)
	case "input.registers":
		roper.InputRegisters = splitRegisterList(value)
	case "randomize.registers":
		b, err := strconv.ParseBool(value)
		if err != nil {
			return fmt.Errorf("invalid randomize registers flag: %s", value)
		}
		roper.RandomizeRegisters = b
	case "register.pattern.file":
		roper.RegisterPatternFile = value
	case "soup.size", "soupsize":
		n, err := strconv.Atoi(value)
		if err != nil {
			return fmt.Errorf("invalid soup size: %s", value)
		}
		roper.SoupSize = n
	case "arch":
		roper.Arch = value
	case "mode":
		roper.Mode = value
	case "num.workers", "numworkers":
		n, err := strconv.Atoi(value)
		if err != nil {
			return fmt.Errorf("invalid num workers: %s", value)
		}
		roper.NumWorkers = n
	case "num.emulators", "numemulators":
		n, err := strconv.Atoi(value)
		if err != nil {
			return fmt.Errorf("invalid num emulators: %s", value)
		}
		roper.NumEmulators = n
	case "wait.limit":
		n, err := strconv.Atoi(value)
		if err != nil {
			return fmt.Errorf("invalid wait limit: %s", value)
		}
		roper.WaitLimit = n
	case "max.emu.steps":
		n, err := strconv.Atoi(value)
		if err != nil {
			return fmt.Errorf("invalid max emu steps: %s", value)
		}
		roper.MaxEmuSteps = n
	case "millisecond.timeout":
		n, err := strconv.Atoi(value)
		if err != nil {
			return fmt.Errorf("invalid millisecond timeout: %s", value)
		}
		roper.MillisecondTimeout = n
	case "record.basic.blocks":
		b, err := strconv.ParseBool(value)
		if err != nil {
			return fmt.Errorf("invalid record basic blocks flag: %s", value)
		}
		roper.RecordBasicBlocks = b
	case "record.memory.writes":
		b, err := strconv.ParseBool(value)
		if err != nil {
			return fmt.Errorf("invalid record memory writes flag: %s", value)
		}
		roper.RecordMemoryWrites = b
	case "emulator.stack.size":
		n, err := strconv.Atoi(value)
		if err != nil {
			return fmt.Errorf("invalid emulator stack size: %s", value)
		}
		roper.EmulatorStackSize = n
	case "binary.path", "binarypath":
		roper.BinaryPath = value
	case "break.on.calls":
		b, err := strconv.ParseBool(value)
		if err != nil {
			return fmt.Errorf("invalid break on calls flag: %s", value)
		}
		roper.BreakOnCalls = b
	case "monitor.stack.writes":
		b, err := strconv.ParseBool(value)
		if err != nil {
			return fmt.Errorf("invalid monitor stack writes flag: %s", value)
		}
		roper.MonitorStackWrites = b
	default:
		return nil
	}
	return nil
}

// splitRegisterList parses a comma-separated register list.
func splitRegisterList(value string) []string {
	var regs []string
	for _, part := range strings.Split(value, ",") {
		if trimmed := strings.TrimSpace(part); trimmed != "" {
			regs = append(regs, trimmed)
		}
	}
	return regs
}

// parseDuration parses a duration from string, supporting both duration
// format and plain numbers of seconds.
func (es *EnvironmentSource) parseDuration(value string) (time.Duration, error) {
	if duration, err := time.ParseDuration(value); err == nil {
		return duration, nil
	}
	if seconds, err := strconv.Atoi(value); err == nil {
		return time.Duration(seconds) * time.Second, nil
	}
	if seconds, err := strconv.ParseFloat(value, 64); err == nil {
		return time.Duration(seconds * float64(time.Second)), nil
	}
	return 0, fmt.Errorf("invalid duration format: %s", value)
}

// MultiSource combines multiple configuration sources.
type MultiSource struct {
	sources []Source
}

// NewMultiSource creates a new multi-source configuration loader.
func NewMultiSource(sources ...Source) *MultiSource {
	return &MultiSource{sources: sources}
}

// Name returns the name of the multi-source.
func (ms *MultiSource) Name() string {
	return "multi_source"
}

// Priority returns the highest priority among all sources.
func (ms *MultiSource) Priority() int {
	maxPriority := 0
	for _, source := range ms.sources {
		if priority := source.Priority(); priority > maxPriority {
			maxPriority = priority
		}
	}
	return maxPriority
}

// Load loads configuration from all sources, lowest priority first, so
// that higher-priority sources override.
func (ms *MultiSource) Load(config *Config, paths []string) error {
	sources := make([]Source, len(ms.sources))
	copy(sources, ms.sources)
	sort.SliceStable(sources, func(i, j int) bool {
		return sources[i].Priority() < sources[j].Priority()
	})

	for _, source := range sources {
		if err := source.Load(config, paths); err != nil {
			return fmt.Errorf("failed to load from source %s: %w", source.Name(), err)
		}
	}

	return nil
}

// AddSource adds a source to the multi-source.
func (ms *MultiSource) AddSource(source Source) {
	ms.sources = append(ms.sources, source)
}

// GetSources returns all sources.
func (ms *MultiSource) GetSources() []Source {
	return ms.sources
}

// CreateDefaultSources creates the default set of configuration sources.
func CreateDefaultSources() []Source {
	return []Source{
		NewFileSource(),
		NewEnvironmentSource(),
	}
}

// LoadFromSources loads configuration from multiple sources.
func LoadFromSources(config *Config, sources []Source, paths []string) error {
	multiSource := NewMultiSource(sources...)
	return multiSource.Load(config, paths)
}
