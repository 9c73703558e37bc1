package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/XiaoConstantine/ropevo-go/cmd/ropevo-cli/internal/commands"
)

var rootCmd = &cobra.Command{
	Use:   "ropevo-cli",
	Short: "Offline tooling for ropevo-go runs",
	Long: `A command-line companion for ropevo-go that works on the artifacts a run
leaves behind, without touching the run itself.

The CLI provides:
- Configuration validation before a run is launched
- Read-back of window summaries from a run's observation database
- Digests of soup and champion dumps from a run's data directory`,
	Version: "0.1.0",
}

func main() {
	rootCmd.AddCommand(
		commands.NewValidateCommand(),
		commands.NewSummariesCommand(),
		commands.NewSoupCommand(),
		commands.NewChampionCommand(),
	)
	if err := rootCmd.Execute(); err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
}
