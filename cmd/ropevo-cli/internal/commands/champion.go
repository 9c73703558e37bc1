package commands

import (
	"compress/gzip"
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/XiaoConstantine/ropevo-go/cmd/ropevo-cli/internal/display"
)

func NewChampionCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "champion <champion.json.gz>",
		Short: "Pretty-print a champion dump",
		Long: `Read a gzipped champion dump and print its generation, chromosome, and
fitness breakdown.`,
		Example: `  ropevo-cli champion island_0/champions/champion_512.json.gz`,
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			champion, err := readChampion(args[0])
			if err != nil {
				return err
			}
			fmt.Print(display.FormatChampion(champion))
			return nil
		},
	}
}

func readChampion(path string) (display.Champion, error) {
	var champion display.Champion

	f, err := os.Open(path)
	if err != nil {
		return champion, fmt.Errorf("failed to open %s: %w", path, err)
	}
	defer f.Close()

	gz, err := gzip.NewReader(f)
	if err != nil {
		return champion, fmt.Errorf("%s is not a gzipped dump: %w", path, err)
	}
	defer gz.Close()

	if err := json.NewDecoder(gz).Decode(&champion); err != nil {
		return champion, fmt.Errorf("failed to parse %s: %w", path, err)
	}
	return champion, nil
}
