package display

import (
	"fmt"
	"strings"

	"github.com/XiaoConstantine/ropevo-go/pkg/config"
	"github.com/XiaoConstantine/ropevo-go/pkg/fitness"
	"github.com/XiaoConstantine/ropevo-go/pkg/observer"
	"github.com/XiaoConstantine/ropevo-go/pkg/selection"
)

const (
	ColorReset  = "\033[0m"
	ColorBold   = "\033[1m"
	ColorRed    = "\033[31m"
	ColorGreen  = "\033[32m"
	ColorYellow = "\033[33m"
	ColorBlue   = "\033[34m"
	ColorPurple = "\033[35m"
	ColorCyan   = "\033[36m"
)

// FormatConfig renders the resolved settings of a validated run config.
func FormatConfig(cfg *config.Config) string {
	var output strings.Builder

	output.WriteString(fmt.Sprintf("%s%sRun Configuration%s\n", ColorBold, ColorBlue, ColorReset))
	output.WriteString(strings.Repeat("=", 50) + "\n\n")

	output.WriteString(fmt.Sprintf("%sJob:%s %s\n", ColorCyan, ColorReset, cfg.Job))
	output.WriteString(fmt.Sprintf("%sSelection:%s %s\n", ColorCyan, ColorReset, cfg.Selection))
	output.WriteString(fmt.Sprintf("%sIslands:%s %d × %d creatures\n", ColorCyan, ColorReset, cfg.NumIslands, cfg.PopSize))
	output.WriteString(fmt.Sprintf("%sEpoch length:%s %d rounds, %d offspring per round\n",
		ColorCyan, ColorReset, cfg.EpochLength(), cfg.NumOffspring()))
	if cfg.NumEpochs > 0 {
		output.WriteString(fmt.Sprintf("%sEpochs:%s %d\n", ColorCyan, ColorReset, cfg.NumEpochs))
	} else {
		output.WriteString(fmt.Sprintf("%sEpochs:%s unbounded\n", ColorCyan, ColorReset))
	}
	if cfg.Timeout != 0 {
		output.WriteString(fmt.Sprintf("%sTimeout:%s %s\n", ColorCyan, ColorReset, cfg.Timeout))
	}
	output.WriteString(fmt.Sprintf("%sSeed:%s 0x%x\n", ColorCyan, ColorReset, cfg.RandomSeed))

	output.WriteString(fmt.Sprintf("\n%sBreeding%s\n", ColorBold, ColorReset))
	output.WriteString(fmt.Sprintf("  mutation rate %.2f (exponent %.2f), crossover %s at rate %.2f\n",
		cfg.MutationRate, cfg.MutationExponent, cfg.CrossoverAlgorithm, cfg.CrossoverRate))
	output.WriteString(fmt.Sprintf("  genome length %d-%d at init, %d max\n",
		cfg.MinInitLen, cfg.MaxInitLen, cfg.MaxLength))

	switch cfg.Selection {
	case selection.Tournament, selection.Lexicase:
		output.WriteString(fmt.Sprintf("\n%sTournament%s\n", ColorBold, ColorReset))
		output.WriteString(fmt.Sprintf("  size %d, %d parents, %d offspring, radius %d, migration %.2f\n",
			cfg.Tournament.TournamentSize, cfg.Tournament.NumParents,
			cfg.Tournament.NumOffspring, cfg.Tournament.GeographicRadius,
			cfg.Tournament.MigrationRate))
	case selection.Roulette:
		output.WriteString(fmt.Sprintf("\n%sRoulette%s\n", ColorBold, ColorReset))
		output.WriteString(fmt.Sprintf("  weight decay %.2f\n", cfg.Roulette.WeightDecay))
	}

	output.WriteString(fmt.Sprintf("\n%sFitness%s\n", ColorBold, ColorReset))
	output.WriteString(fmt.Sprintf("  function %s\n", cfg.Fitness.Function))
	output.WriteString(fmt.Sprintf("  weighting %s\n", cfg.Fitness.Weighting))
	output.WriteString(fmt.Sprintf("  priority %s\n", cfg.Fitness.EffectivePriority()))

	output.WriteString(fmt.Sprintf("\n%sEmulation%s\n", ColorBold, ColorReset))
	output.WriteString(fmt.Sprintf("  binary %s (%s/%s)\n", cfg.Roper.BinaryPath, cfg.Roper.Arch, cfg.Roper.Mode))
	output.WriteString(fmt.Sprintf("  %d workers over %d emulators\n", cfg.Roper.NumWorkers, cfg.Roper.NumEmulators))
	if regs := cfg.Roper.RegistersToCheck(); len(regs) > 0 {
		output.WriteString(fmt.Sprintf("  registers checked: %s\n", strings.Join(regs, ", ")))
	}
	if patterns := cfg.Roper.RegisterPatterns(); len(patterns) > 0 {
		output.WriteString(fmt.Sprintf("  %d register patterns loaded\n", len(patterns)))
	}

	output.WriteString(fmt.Sprintf("\n%sOK:%s configuration is valid\n", ColorGreen, ColorReset))
	return output.String()
}

// FormatRuns renders the (run, island) series a summary database holds.
func FormatRuns(runs []observer.RunInfo) string {
	var output strings.Builder

	output.WriteString(fmt.Sprintf("%s%sRecorded Runs%s\n", ColorBold, ColorBlue, ColorReset))
	output.WriteString(strings.Repeat("=", 50) + "\n\n")

	if len(runs) == 0 {
		output.WriteString("No runs recorded.\n")
		return output.String()
	}

	for _, info := range runs {
		output.WriteString(fmt.Sprintf("%s%s%s island %d\n", ColorGreen, info.RunID, ColorReset, info.Island))
		output.WriteString(fmt.Sprintf("  %d summaries through generation %d\n", info.Summaries, info.LastGeneration))
	}

	output.WriteString(fmt.Sprintf("\n%sTip:%s use 'ropevo-cli summaries <db> --run <id>' for the per-generation digest\n",
		ColorPurple, ColorReset))
	return output.String()
}

// FormatSummaries renders one run's window summaries, generation by
// generation.
func FormatSummaries(runID string, island int, summaries []observer.Summary) string {
	var output strings.Builder

	output.WriteString(fmt.Sprintf("%s%s%s%s island %d\n", ColorBold, ColorBlue, runID, ColorReset, island))
	output.WriteString(strings.Repeat("=", 50) + "\n\n")

	if len(summaries) == 0 {
		output.WriteString("No summaries recorded for this run.\n")
		return output.String()
	}

	output.WriteString(fmt.Sprintf("%s%10s %6s %12s %12s %12s %7s %7s%s\n",
		ColorCyan, "gen", "count", "mean", "min", "max", "paths", "faults", ColorReset))
	for _, s := range summaries {
		faults := 0
		for _, n := range s.CPUErrors {
			faults += n
		}
		output.WriteString(fmt.Sprintf("%10d %6d %12.4f %12.4f %12.4f %7d %7d\n",
			s.Generation, s.Count, s.MeanScalar, s.MinScalar, s.MaxScalar, s.PathCount, faults))
	}

	best := summaries[0]
	for _, s := range summaries[1:] {
		if s.MinScalar < best.MinScalar {
			best = s
		}
	}
	output.WriteString(fmt.Sprintf("\n%sBest:%s scalar %.4f at generation %d\n",
		ColorGreen, ColorReset, best.MinScalar, best.Generation))
	return output.String()
}

// SoupEntry is one word of the gene pool with its frequency.
type SoupEntry struct {
	Word  uint64
	Count int
}

// FormatSoup renders the most frequent soup words. Entries arrive in dump
// order, most frequent first.
func FormatSoup(entries []SoupEntry, top int) string {
	var output strings.Builder

	output.WriteString(fmt.Sprintf("%s%sGadget Soup%s\n", ColorBold, ColorBlue, ColorReset))
	output.WriteString(strings.Repeat("=", 50) + "\n\n")

	total := 0
	for _, e := range entries {
		total += e.Count
	}
	output.WriteString(fmt.Sprintf("%d distinct words, %d occurrences\n\n", len(entries), total))

	if top > len(entries) {
		top = len(entries)
	}
	for _, e := range entries[:top] {
		output.WriteString(fmt.Sprintf("  %s0x%08x%s %d\n", ColorGreen, e.Word, ColorReset, e.Count))
	}
	if top < len(entries) {
		output.WriteString(fmt.Sprintf("  ... %d more\n", len(entries)-top))
	}
	return output.String()
}

// Champion is a champion dump as the CLI reads it back.
type Champion struct {
	Name       string            `json:"name"`
	Generation int               `json:"generation"`
	Chromosome []uint64          `json:"chromosome"`
	Fitness    *fitness.Weighted `json:"fitness"`
}

// FormatChampion renders a champion dump.
func FormatChampion(c Champion) string {
	var output strings.Builder

	name := c.Name
	if name == "" {
		name = "champion"
	}
	output.WriteString(fmt.Sprintf("%s%s%s%s (generation %d)\n", ColorBold, ColorBlue, name, ColorReset, c.Generation))
	output.WriteString(strings.Repeat("=", 50) + "\n\n")

	output.WriteString(fmt.Sprintf("%sChromosome%s (%d words)\n", ColorBold, ColorReset, len(c.Chromosome)))
	for _, word := range c.Chromosome {
		output.WriteString(fmt.Sprintf("  0x%08x\n", word))
	}

	if c.Fitness != nil {
		output.WriteString(fmt.Sprintf("\n%sFitness%s\n", ColorBold, ColorReset))
		output.WriteString(fmt.Sprintf("  weighting %s\n", c.Fitness.Weighting()))
		for _, score := range c.Fitness.Names() {
			if v, ok := c.Fitness.Get(score); ok {
				output.WriteString(fmt.Sprintf("  %s%s:%s %.4f\n", ColorCyan, score, ColorReset, v))
			}
		}
		if scalar, ok := c.Fitness.CachedScalar(); ok {
			output.WriteString(fmt.Sprintf("  %sscalar:%s %.4f\n", ColorGreen, ColorReset, scalar))
		} else {
			output.WriteString(fmt.Sprintf("  %sscalar:%s not evaluated\n", ColorYellow, ColorReset))
		}
	}
	return output.String()
}
