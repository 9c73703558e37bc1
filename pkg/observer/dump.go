package observer

import (
	"compress/gzip"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"github.com/XiaoConstantine/ropevo-go/pkg/errors"
)

// Population and champion dumps are gzipped JSON, soup dumps plain JSON
// of [word, count] pairs; the offline analysis tooling globs for exactly
// these shapes under each island's data directory.

// DumpPopulation writes the whole population as one gzipped JSON array
// under dir and returns the file's path. Candidates serialize through
// their ordinary JSON form, so a candidate carrying a weighted fitness
// exposes its scores and cached scalar to the analysis side.
func DumpPopulation[P any](dir string, generation int, population []P) (string, error) {
	path := filepath.Join(dir, fmt.Sprintf("population_%d.json.gz", generation))
	if err := writeGzippedJSON(path, population); err != nil {
		return "", err
	}
	return path, nil
}

// DumpChampion writes one candidate as a gzipped JSON file named so that
// champion globs pick it up.
func DumpChampion[P any](dir string, generation int, champion P) (string, error) {
	path := filepath.Join(dir, fmt.Sprintf("champion_%d.json.gz", generation))
	if err := writeGzippedJSON(path, champion); err != nil {
		return "", err
	}
	return path, nil
}

// DumpSoup writes the gene pool's word frequencies as a JSON array of
// [word, count] pairs, most frequent first, ties by word.
func DumpSoup(dir string, generation int, counts map[uint64]int) (string, error) {
	words := make([]uint64, 0, len(counts))
	for word := range counts {
		words = append(words, word)
	}
	sort.Slice(words, func(i, j int) bool {
		if counts[words[i]] != counts[words[j]] {
			return counts[words[i]] > counts[words[j]]
		}
		return words[i] < words[j]
	})

	pairs := make([][2]interface{}, len(words))
	for i, word := range words {
		pairs[i] = [2]interface{}{word, counts[word]}
	}

	path := filepath.Join(dir, fmt.Sprintf("soup_%d.json", generation))
	data, err := json.Marshal(pairs)
	if err != nil {
		return "", errors.Wrap(err, errors.InvalidInput, "failed to marshal soup")
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return "", errors.WithFields(
			errors.Wrap(err, errors.Unknown, "failed to write soup dump"),
			errors.Fields{"path": path},
		)
	}
	return path, nil
}

func writeGzippedJSON(path string, value interface{}) error {
	f, err := os.Create(path)
	if err != nil {
		return errors.WithFields(
			errors.Wrap(err, errors.Unknown, "failed to create dump file"),
			errors.Fields{"path": path},
		)
	}
	defer f.Close()

	gz := gzip.NewWriter(f)
	if err := json.NewEncoder(gz).Encode(value); err != nil {
		gz.Close()
		return errors.WithFields(
			errors.Wrap(err, errors.InvalidInput, "failed to encode dump"),
			errors.Fields{"path": path},
		)
	}
	if err := gz.Close(); err != nil {
		return errors.WithFields(
			errors.Wrap(err, errors.Unknown, "failed to finish dump"),
			errors.Fields{"path": path},
		)
	}
	return nil
}
