package fitness

import (
	"fmt"
	"sort"

	"github.com/XiaoConstantine/ropevo-go/pkg/utils"
)

// ShuffleFit compares on a single objective chosen by hashing the current
// epoch, rotating selection pressure across objectives so that no single one
// permanently dominates. The epoch is an explicit parameter; both sides of a
// comparison must be given the same epoch to agree on the key.
type ShuffleFit struct {
	scores map[string]float64
}

func NewShuffleFit() *ShuffleFit {
	return &ShuffleFit{scores: make(map[string]float64)}
}

func ShuffleFitFromMap(scores map[string]float64) *ShuffleFit {
	s := NewShuffleFit()
	for name, v := range scores {
		s.scores[name] = v
	}
	return s
}

func (s *ShuffleFit) Insert(name string, value float64) {
	s.scores[name] = value
}

func (s *ShuffleFit) Get(name string) (float64, bool) {
	v, ok := s.scores[name]
	return v, ok
}

func (s *ShuffleFit) Len() int {
	return len(s.scores)
}

// Names returns the objective names in sorted order.
func (s *ShuffleFit) Names() []string {
	names := make([]string, 0, len(s.scores))
	for name := range s.scores {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Values returns the objective values ordered by objective name.
func (s *ShuffleFit) Values() []float64 {
	names := s.Names()
	values := make([]float64, len(names))
	for i, name := range names {
		values[i] = s.scores[name]
	}
	return values
}

// Scalar sums all objective values.
func (s *ShuffleFit) Scalar() float64 {
	var sum float64
	for _, v := range s.scores {
		sum += v
	}
	return sum
}

func (s *ShuffleFit) Clone() *ShuffleFit {
	return ShuffleFitFromMap(s.scores)
}

// EpochKey returns the objective governing comparisons during epoch.
func (s *ShuffleFit) EpochKey(epoch uint64) string {
	names := s.Names()
	if len(names) == 0 {
		panic("ShuffleFit has no objectives to choose from")
	}
	h := utils.HashU64(0, epoch)
	return names[h%uint64(len(names))]
}

// Compare compares only the epoch-selected objective. Both sides must carry
// that objective.
func (s *ShuffleFit) Compare(other *ShuffleFit, epoch uint64) Ordering {
	key := s.EpochKey(epoch)
	b, ok := other.scores[key]
	if !ok {
		panic(fmt.Sprintf("shuffle comparison requires objective %q on both sides", key))
	}
	return compareFloats(s.scores[key], b)
}
