package fitness

import (
	"fmt"
	"sort"
	"strings"
)

// Objective names assigned to anonymous score vectors.
var unnamedObjectives = [...]string{
	"objective_0",
	"objective_1",
	"objective_2",
	"objective_3",
	"objective_4",
	"objective_5",
	"objective_6",
	"objective_7",
	"objective_8",
	"objective_9",
}

// Pareto is a set of named objectives compared under the dominance partial
// order. Two instances entering a comparison must carry the same number of
// objectives.
type Pareto struct {
	scores map[string]float64
}

func NewPareto() *Pareto {
	return &Pareto{scores: make(map[string]float64)}
}

// ParetoFromValues names each value objective_N in order. At most ten
// anonymous objectives are supported.
func ParetoFromValues(values []float64) *Pareto {
	if len(values) > len(unnamedObjectives) {
		panic(fmt.Sprintf("at most %d unnamed objectives are supported, got %d",
			len(unnamedObjectives), len(values)))
	}
	p := NewPareto()
	for i, v := range values {
		p.scores[unnamedObjectives[i]] = v
	}
	return p
}

func (p *Pareto) Insert(name string, value float64) {
	p.scores[name] = value
}

func (p *Pareto) Get(name string) (float64, bool) {
	v, ok := p.scores[name]
	return v, ok
}

func (p *Pareto) Len() int {
	return len(p.scores)
}

// Names returns the objective names in sorted order.
func (p *Pareto) Names() []string {
	names := make([]string, 0, len(p.scores))
	for name := range p.scores {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Values returns the objective values ordered by objective name.
func (p *Pareto) Values() []float64 {
	names := p.Names()
	values := make([]float64, len(names))
	for i, name := range names {
		values[i] = p.scores[name]
	}
	return values
}

// Scalar sums all objective values.
func (p *Pareto) Scalar() float64 {
	var sum float64
	for _, v := range p.scores {
		sum += v
	}
	return sum
}

func (p *Pareto) Clone() *Pareto {
	q := NewPareto()
	for name, v := range p.scores {
		q.scores[name] = v
	}
	return q
}

// Dominates reports whether p dominates other: no objective worse and at
// least one strictly better, values paired by objective name order.
func (p *Pareto) Dominates(other *Pareto) bool {
	if p.Len() != other.Len() {
		panic("vectors must have the same length in order to perform Pareto comparisons")
	}
	pv, ov := p.Values(), other.Values()
	strict := false
	for i := range pv {
		if pv[i] > ov[i] {
			return false
		}
		if pv[i] < ov[i] {
			strict = true
		}
	}
	return strict
}

// Compare implements the dominance partial order. Elementwise-equal vectors
// are Incomparable under dominance; Equal is the separate equality relation.
func (p *Pareto) Compare(other *Pareto) Ordering {
	if p.Dominates(other) {
		return Less
	}
	if other.Dominates(p) {
		return Greater
	}
	return Incomparable
}

// Equal is elementwise numeric equality over the named objectives.
func (p *Pareto) Equal(other *Pareto) bool {
	if len(p.scores) != len(other.scores) {
		return false
	}
	for name, v := range p.scores {
		ov, ok := other.scores[name]
		if !ok || ov != v {
			return false
		}
	}
	return true
}

// AveragePareto computes the key-wise mean of a frame of instances. A key
// missing from an instance contributes nothing to the sum, but the divisor
// is always the frame size.
func AveragePareto(frame []*Pareto) *Pareto {
	sums := make(map[string]float64)
	for _, p := range frame {
		for name, v := range p.scores {
			sums[name] += v
		}
	}
	n := float64(len(frame))
	avg := NewPareto()
	for name, v := range sums {
		avg.scores[name] = v / n
	}
	return avg
}

func (p *Pareto) String() string {
	var b strings.Builder
	b.WriteString("Pareto [\n")
	for _, name := range p.Names() {
		fmt.Fprintf(&b, "\t%s => %v,\n", name, p.scores[name])
	}
	b.WriteString("]")
	return b.String()
}
