package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/XiaoConstantine/ropevo-go/pkg/emulator"
	"github.com/XiaoConstantine/ropevo-go/pkg/errors"
	"github.com/XiaoConstantine/ropevo-go/pkg/selection"
	"github.com/google/uuid"
	"gopkg.in/yaml.v3"
)

// Config is the complete configuration for one evolutionary job. Every
// island of the job shares the same Config apart from IslandID, which is
// assigned at launch rather than read from the file.
type Config struct {
	// Job names the kind of run; it becomes a component of the data
	// directory layout
	Job string `yaml:"job" validate:"required"`

	// Timeout bounds the wall-clock duration of the run; zero means the
	// run only stops when NumEpochs is reached
	Timeout Duration `yaml:"timeout"`

	// Selection picks the selection strategy for the run
	Selection selection.Method `yaml:"selection" validate:"selection_method"`

	// NumIslands is the number of concurrently evolving subpopulations
	NumIslands int `yaml:"num_islands" validate:"min=1"`

	// IslandID identifies this island; assigned internally, never read
	// from the configuration file
	IslandID int `yaml:"island_id" validate:"min=0"`

	// CrossoverPeriod governs how often crossover is preferred over
	// cloning when breeding offspring
	CrossoverPeriod float64 `yaml:"crossover_period" validate:"gte=0"`

	// CrossoverAlgorithm names the recombination operator
	CrossoverAlgorithm string `yaml:"crossover_algorithm" validate:"omitempty,oneof=alternating one_point uniform"`

	// CrossoverRate is the per-breeding chance of crossover
	CrossoverRate float64 `yaml:"crossover_rate" validate:"gte=0,lte=1"`

	// MaxInitLen and MinInitLen bound the length of freshly generated
	// genomes; MaxLength bounds genomes for the rest of the run
	MaxInitLen int `yaml:"max_init_len" validate:"min=1"`
	MaxLength  int `yaml:"max_length" validate:"min=1"`
	MinInitLen int `yaml:"min_init_len" validate:"min=1"`

	// MutationRate is the chance, per genome, that a levy flight
	// pointwise mutation pass is applied; MutationExponent is that
	// flight's lambda parameter
	MutationRate     float64 `yaml:"mutation_rate" validate:"gte=0,lte=1"`
	MutationExponent float64 `yaml:"mutation_exponent" validate:"gte=0"`

	// Observer configures reporting and data dumps
	Observer ObserverConfig `yaml:"observer"`

	// PopSize is the number of slots in each island's geography
	PopSize int `yaml:"pop_size" validate:"min=2"`

	// Roulette, Tournament, and Fitness tune their respective concerns
	Roulette   RouletteConfig   `yaml:"roulette"`
	Tournament TournamentConfig `yaml:"tournament"`
	Fitness    FitnessConfig    `yaml:"fitness"`

	// Roper carries the emulation job knobs
	Roper RoperConfig `yaml:"roper"`

	// NumEpochs bounds the run; zero means unbounded
	NumEpochs int `yaml:"num_epochs" validate:"min=0"`

	// RandomSeed seeds the deterministic parts of the run; zero asks the
	// loader to draw a fresh one
	RandomSeed uint64 `yaml:"random_seed"`
}

// Validate validates the configuration using the validation framework.
func (c *Config) Validate() error {
	return ValidateConfiguration(c)
}

// NumOffspring returns the number of offspring bred per selection round.
func (c *Config) NumOffspring() int {
	return c.Tournament.NumOffspring
}

// EpochLength is the number of selection rounds that make up one epoch:
// enough rounds for the offspring bred to replace the whole population.
func (c *Config) EpochLength() int {
	return c.PopSize / c.Tournament.NumOffspring
}

// DataDirectory returns the island's resolved data directory. Empty until
// SetDataDirectory has run.
func (c *Config) DataDirectory() string {
	return c.Observer.FullDataDirectory
}

// SetDataDirectory computes this island's data directory and creates it,
// along with the soup, population, and champions subdirectories. The
// layout is <root>/<job>/<selection>/<yyyy/mm/dd>/<population>/island_<n>.
func (c *Config) SetDataDirectory() error {
	root, err := expandTilde(c.Observer.DataDirectory)
	if err != nil {
		return err
	}

	date := time.Now().Format("2006/01/02")
	full := filepath.Join(
		root,
		c.Job,
		string(c.Selection),
		date,
		c.Observer.PopulationName,
		fmt.Sprintf("island_%d", c.IslandID),
	)

	for _, sub := range []string{"", "soup", "population", "champions"} {
		dir := filepath.Join(full, sub)
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return errors.WithFields(
				errors.Wrap(err, errors.Unknown, "failed to create data directory"),
				errors.Fields{"path": dir})
		}
	}

	c.Observer.FullDataDirectory = full
	return nil
}

// FitnessConfig selects and tunes the fitness function for the run.
type FitnessConfig struct {
	// Target is the scalar fitness at which the run declares success
	Target float64 `yaml:"target"`

	// EvalByCase switches evaluation from whole-genome to per-case
	EvalByCase bool `yaml:"eval_by_case"`

	// Dynamic re-evaluates cached fitness every generation
	Dynamic bool `yaml:"dynamic"`

	// Priority names the score used to rank champions; when unset the
	// weighting expression is used instead
	Priority string `yaml:"priority,omitempty"`

	// Function names the fitness function the job evaluates
	Function string `yaml:"function" validate:"required"`

	// Weighting is the expression that folds named scores into a scalar
	Weighting string `yaml:"weighting" validate:"required"`
}

// EffectivePriority returns the champion-ranking key, falling back to the
// weighting expression when no explicit priority is configured.
func (f *FitnessConfig) EffectivePriority() string {
	if f.Priority == "" {
		return f.Weighting
	}
	return f.Priority
}

// TournamentConfig tunes tournament selection.
type TournamentConfig struct {
	// TournamentSize is the number of combatants drawn per round; it
	// must exceed NumOffspring by at least two, so a round always has
	// losers to replace
	TournamentSize int `yaml:"tournament_size" validate:"min=2"`

	// GeographicRadius bounds how far apart combatants may live; zero
	// lets the geography fall back to its maximum radius
	GeographicRadius int `yaml:"geographic_radius" validate:"min=0"`

	// MigrationRate is the per-round chance of exchanging a migrant with
	// another island
	MigrationRate float64 `yaml:"migration_rate" validate:"gte=0,lte=1"`

	// NumOffspring is how many children each round breeds; NumParents is
	// how many winners breed them
	NumOffspring int `yaml:"num_offspring" validate:"min=1"`
	NumParents   int `yaml:"num_parents" validate:"min=1"`
}

// RouletteConfig tunes roulette selection.
type RouletteConfig struct {
	// WeightDecay relaxes selection pressure on successive draws from
	// the same sample
	WeightDecay float64 `yaml:"weight_decay" validate:"gte=0,lte=1"`
}

// ObserverConfig configures reporting and the run's data dumps.
type ObserverConfig struct {
	// WindowSize is the capacity of the sliding observation window
	WindowSize int `yaml:"window_size" validate:"min=1"`

	// ReportEvery is the number of observations between reports
	ReportEvery int `yaml:"report_every" validate:"min=1"`

	// DumpPopulation and DumpSoup toggle periodic dumps of the full
	// population and of the gadget soup
	DumpPopulation bool `yaml:"dump_population"`
	DumpSoup       bool `yaml:"dump_soup"`

	// DataDirectory is the root under which all run data lands; a
	// leading ~ expands to the user's home directory
	DataDirectory string `yaml:"data_directory" validate:"required"`

	// FullDataDirectory is the resolved island directory; assigned by
	// SetDataDirectory, never read from the file
	FullDataDirectory string `yaml:"full_data_directory,omitempty"`

	// PopulationName names the run; generated when unset. The hostname
	// is prepended at load time either way.
	PopulationName string `yaml:"population_name,omitempty"`
}

// SoupDirectory returns the directory for gadget soup dumps.
func (o *ObserverConfig) SoupDirectory() string {
	return filepath.Join(o.FullDataDirectory, "soup")
}

// PopulationDirectory returns the directory for population dumps.
func (o *ObserverConfig) PopulationDirectory() string {
	return filepath.Join(o.FullDataDirectory, "population")
}

// ChampionsDirectory returns the directory for champion dumps.
func (o *ObserverConfig) ChampionsDirectory() string {
	return filepath.Join(o.FullDataDirectory, "champions")
}

// RoperConfig carries the knobs for the ROP emulation job. The core
// packages stay agnostic about what executes the chains; these values are
// handed to the execution capability as given.
type RoperConfig struct {
	// GadgetFile points at a pre-extracted gadget list; when empty the
	// soup is seeded from BinaryPath instead
	GadgetFile string `yaml:"gadget_file,omitempty"`

	// OutputRegisters are read back after execution; InputRegisters are
	// loaded before it
	OutputRegisters []string `yaml:"output_registers"`
	InputRegisters  []string `yaml:"input_registers"`

	// RandomizeRegisters starts each execution from random register state
	RandomizeRegisters bool `yaml:"randomize_registers"`

	// RegisterPatternFile points at a YAML file of named register
	// patterns; parsed patterns are attached by the loader
	RegisterPatternFile string `yaml:"register_pattern_file,omitempty"`

	// Soup seeds the gadget soup directly; SoupSize bounds a randomly
	// initialized soup when no seed is given
	Soup     []uint64 `yaml:"soup,omitempty"`
	SoupSize int      `yaml:"soup_size"`

	// Arch and Mode select the emulated architecture when no gadget
	// file pins one down
	Arch string `yaml:"arch" validate:"omitempty,oneof=x86 arm arm64 mips"`
	Mode string `yaml:"mode" validate:"omitempty,oneof=32 64 thumb"`

	// NumWorkers is the number of evaluation workers; NumEmulators is
	// the size of the emulator pool they draw from
	NumWorkers   int `yaml:"num_workers" validate:"min=1"`
	NumEmulators int `yaml:"num_emulators" validate:"min=1"`

	// WaitLimit is how many milliseconds a worker waits for a free
	// emulator before giving up
	WaitLimit int `yaml:"wait_limit" validate:"min=0"`

	// MaxEmuSteps bounds instructions per execution; zero is unbounded
	MaxEmuSteps int `yaml:"max_emu_steps" validate:"min=0"`

	// MillisecondTimeout bounds wall-clock time per execution
	MillisecondTimeout int `yaml:"millisecond_timeout" validate:"min=0"`

	// RecordBasicBlocks and RecordMemoryWrites toggle the execution
	// hooks that feed the profiler
	RecordBasicBlocks  bool `yaml:"record_basic_blocks"`
	RecordMemoryWrites bool `yaml:"record_memory_writes"`

	// EmulatorStackSize is the size in bytes of the stack mapped for
	// each execution
	EmulatorStackSize int `yaml:"emulator_stack_size" validate:"min=1"`

	// BinaryPath is the executable whose address space hosts the chains
	BinaryPath string `yaml:"binary_path" validate:"required"`

	// LdPaths lists extra directories searched for the binary's
	// shared-object dependencies
	LdPaths []string `yaml:"ld_paths,omitempty"`

	// BadBytes maps a label to a byte value that must never appear in a
	// chain, e.g. newline: 0x0a
	BadBytes map[string]byte `yaml:"bad_bytes,omitempty"`

	// MemoryPattern is a byte sequence the fitness function may look
	// for in written memory
	MemoryPattern []byte `yaml:"memory_pattern,omitempty"`

	// BreakOnCalls stops execution at call instructions
	BreakOnCalls bool `yaml:"break_on_calls"`

	// MonitorStackWrites hooks writes to the emulated stack
	MonitorStackWrites bool `yaml:"monitor_stack_writes"`

	registerPatterns []*emulator.RegisterPattern
}

// SetRegisterPatterns attaches parsed register patterns to the config.
// The loader calls this after parsing RegisterPatternFile.
func (r *RoperConfig) SetRegisterPatterns(patterns []*emulator.RegisterPattern) {
	r.registerPatterns = patterns
}

// RegisterPatterns returns the patterns parsed from RegisterPatternFile.
func (r *RoperConfig) RegisterPatterns() []*emulator.RegisterPattern {
	return r.registerPatterns
}

// RegistersToCheck returns every register the profiler must capture after
// an execution: the output registers, the input registers, and every
// register named by the loaded patterns, in order of first mention.
func (r *RoperConfig) RegistersToCheck() []string {
	seen := make(map[string]bool)
	var regs []string
	add := func(name string) {
		if name == "" || seen[name] {
			return
		}
		seen[name] = true
		regs = append(regs, name)
	}

	for _, reg := range r.OutputRegisters {
		add(reg)
	}
	for _, reg := range r.InputRegisters {
		add(reg)
	}
	for _, pattern := range r.registerPatterns {
		for _, name := range pattern.Names() {
			add(name)
		}
	}
	return regs
}

// Duration is a time.Duration that YAML configs can spell as a duration
// string ("90m", "3h"), as integer seconds, or as float seconds.
type Duration time.Duration

// Std returns the wrapped time.Duration.
func (d Duration) Std() time.Duration {
	return time.Duration(d)
}

func (d Duration) String() string {
	return time.Duration(d).String()
}

// MarshalYAML writes the duration back out in string form.
func (d Duration) MarshalYAML() (interface{}, error) {
	return time.Duration(d).String(), nil
}

// UnmarshalYAML parses a duration string first, then falls back to plain
// seconds.
func (d *Duration) UnmarshalYAML(value *yaml.Node) error {
	if value.Kind != yaml.ScalarNode {
		return fmt.Errorf("invalid duration: expected a scalar, got kind %d", value.Kind)
	}
	raw := value.Value

	if parsed, err := time.ParseDuration(raw); err == nil {
		*d = Duration(parsed)
		return nil
	}
	if seconds, err := strconv.ParseInt(raw, 10, 64); err == nil {
		*d = Duration(time.Duration(seconds) * time.Second)
		return nil
	}
	if seconds, err := strconv.ParseFloat(raw, 64); err == nil {
		*d = Duration(time.Duration(seconds * float64(time.Second)))
		return nil
	}
	return fmt.Errorf("invalid duration format: %s", raw)
}

// GeneratePopulationName returns a fresh run name. It is left unseeded so
// that same-seeded runs still land in distinct output directories.
func GeneratePopulationName() string {
	return strings.SplitN(uuid.NewString(), "-", 2)[0]
}

// Load reads a YAML configuration from path, fills in defaults, names the
// population, validates the result, parses the register pattern file, and
// prepares the run's data directories. An empty populationName gets a
// generated one; either way the hostname is prepended so that runs from
// different machines never collide.
func Load(path string, populationName string) (*Config, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.WithFields(
			errors.Wrap(err, errors.InvalidInput, "failed to read config file"),
			errors.Fields{"path": path})
	}

	var partial Config
	if err := yaml.Unmarshal(raw, &partial); err != nil {
		return nil, errors.WithFields(
			errors.Wrap(err, errors.Parsing, "failed to parse config file"),
			errors.Fields{"path": path})
	}

	config := MergeWithDefaults(&partial)

	if populationName != "" {
		config.Observer.PopulationName = populationName
	}
	if config.Observer.PopulationName == "" {
		config.Observer.PopulationName = GeneratePopulationName()
	}
	if host, err := os.Hostname(); err == nil && host != "" {
		config.Observer.PopulationName = fmt.Sprintf("%s-%s", host, config.Observer.PopulationName)
	}

	if config.RandomSeed == 0 {
		config.RandomSeed = freshSeed()
	}

	if err := config.Validate(); err != nil {
		return nil, err
	}

	if config.Roper.RegisterPatternFile != "" {
		patterns, err := ParseRegisterPatternFile(config.Roper.RegisterPatternFile)
		if err != nil {
			return nil, err
		}
		config.Roper.SetRegisterPatterns(patterns)
	}

	if err := config.SetDataDirectory(); err != nil {
		return nil, err
	}

	// Keep a copy of the config alongside the data it produced. It lands
	// in the parent of the island directories so sibling islands share it.
	posterity := filepath.Join(filepath.Dir(config.Observer.FullDataDirectory), "config.yaml")
	if err := os.WriteFile(posterity, raw, 0o644); err != nil {
		return nil, errors.WithFields(
			errors.Wrap(err, errors.Unknown, "failed to copy config file for posterity"),
			errors.Fields{"path": posterity})
	}

	return config, nil
}

// freshSeed draws a nonzero seed from the same entropy source as run names.
func freshSeed() uint64 {
	for {
		u := uuid.New()
		var seed uint64
		for i := 0; i < 8; i++ {
			seed = seed<<8 | uint64(u[i])
		}
		if seed != 0 {
			return seed
		}
	}
}

// expandTilde resolves a leading ~ against the user's home directory.
func expandTilde(path string) (string, error) {
	if path != "~" && !strings.HasPrefix(path, "~/") {
		return path, nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", errors.Wrap(err, errors.InvalidInput,
			"cannot expand ~ in data directory without a home directory")
	}
	return filepath.Join(home, strings.TrimPrefix(path, "~")), nil
}
