package commands

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/XiaoConstantine/ropevo-go/cmd/ropevo-cli/internal/display"
	"github.com/XiaoConstantine/ropevo-go/pkg/config"
)

func NewValidateCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "validate <config.yaml>",
		Short: "Validate a run configuration",
		Long: `Parse a run configuration, merge in the defaults, and validate the result,
printing the settings the run would actually use.

Unlike launching a run, this never creates data directories, generates a
population name, or draws a seed; it answers "would this config load"
without leaving a trace.`,
		Example: `  # Check a config before launching
  ropevo-cli validate configs/syscall.yaml

  # Also resolves a register pattern file, if the config names one
  ropevo-cli validate configs/pattern-match.yaml`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			raw, err := os.ReadFile(args[0])
			if err != nil {
				return fmt.Errorf("failed to read %s: %w", args[0], err)
			}

			var partial config.Config
			if err := yaml.Unmarshal(raw, &partial); err != nil {
				return fmt.Errorf("failed to parse %s: %w", args[0], err)
			}

			cfg := config.MergeWithDefaults(&partial)
			if err := cfg.Validate(); err != nil {
				return err
			}

			if cfg.Roper.RegisterPatternFile != "" {
				patterns, err := config.ParseRegisterPatternFile(cfg.Roper.RegisterPatternFile)
				if err != nil {
					return err
				}
				cfg.Roper.SetRegisterPatterns(patterns)
			}

			fmt.Print(display.FormatConfig(cfg))
			return nil
		},
	}
}
