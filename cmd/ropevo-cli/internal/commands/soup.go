package commands

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/XiaoConstantine/ropevo-go/cmd/ropevo-cli/internal/display"
)

func NewSoupCommand() *cobra.Command {
	var top int

	cmd := &cobra.Command{
		Use:   "soup <soup.json>",
		Short: "Digest a gadget soup dump",
		Long: `Read a soup dump (a JSON array of [word, count] pairs, most frequent
first) and print the most common gadget words.`,
		Example: `  # Ten most common words
  ropevo-cli soup island_0/soup/soup_42.json

  # The whole distribution
  ropevo-cli soup soup_42.json --top 0`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			entries, err := readSoup(args[0])
			if err != nil {
				return err
			}
			if top <= 0 {
				top = len(entries)
			}
			fmt.Print(display.FormatSoup(entries, top))
			return nil
		},
	}

	cmd.Flags().IntVar(&top, "top", 10, "How many words to print (0 for all)")
	return cmd
}

func readSoup(path string) ([]display.SoupEntry, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", path, err)
	}

	var pairs [][2]uint64
	if err := json.Unmarshal(data, &pairs); err != nil {
		return nil, fmt.Errorf("failed to parse %s: %w", path, err)
	}

	entries := make([]display.SoupEntry, len(pairs))
	for i, pair := range pairs {
		entries[i] = display.SoupEntry{Word: pair[0], Count: int(pair[1])}
	}
	return entries, nil
}
