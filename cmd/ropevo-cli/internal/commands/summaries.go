package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/XiaoConstantine/ropevo-go/cmd/ropevo-cli/internal/display"
	"github.com/XiaoConstantine/ropevo-go/pkg/observer"
)

func NewSummariesCommand() *cobra.Command {
	var runID string
	var island int

	cmd := &cobra.Command{
		Use:   "summaries <observations.db>",
		Short: "Read window summaries back from a run's observation database",
		Long: `Open the SQLite database an observer wrote during a run and print its
window summaries.

Without --run, lists every (run, island) series the database holds. With
--run, prints that run's per-generation digest: count, scalar statistics,
distinct path count, and fault totals.`,
		Example: `  # See what a database holds
  ropevo-cli summaries ~/logs/ropevo/.../island_0/observations.db

  # Digest one run on island 0
  ropevo-cli summaries observations.db --run 5b2f... --island 0`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			sink, err := observer.NewSQLiteSink(args[0])
			if err != nil {
				return err
			}
			defer sink.Close()

			if runID == "" {
				runs, err := sink.Runs()
				if err != nil {
					return err
				}
				fmt.Print(display.FormatRuns(runs))
				return nil
			}

			summaries, err := sink.Summaries(runID, island)
			if err != nil {
				return err
			}
			fmt.Print(display.FormatSummaries(runID, island, summaries))
			return nil
		},
	}

	cmd.Flags().StringVar(&runID, "run", "", "Run ID to digest (omit to list runs)")
	cmd.Flags().IntVar(&island, "island", 0, "Island whose summaries to read")
	return cmd
}
