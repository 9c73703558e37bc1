package fitness

import (
	"encoding/json"
	"fmt"
	"math"
	"sort"
	"strings"
	"sync"

	"github.com/PaesslerAG/gval"
	"gonum.org/v1/gonum/stat"
)

// weightingLang is the expression language weighting strings are written in:
// arithmetic over the named scores, plus a few math functions.
var weightingLang = gval.NewLanguage(
	gval.Arithmetic(),
	gval.Function("abs", math.Abs),
	gval.Function("min", math.Min),
	gval.Function("max", math.Max),
	gval.Function("sqrt", math.Sqrt),
	gval.Function("log", math.Log),
)

// Weighted scalarizes named scores through an arithmetic weighting
// expression, e.g. "0.5 * gadgets_executed + register_error".
//
// The scalar is memoized on first evaluation and NOT invalidated by later
// score mutations; callers that mutate after reading the scalar see the
// stale value until they Clone. DeclareFailure overwrites the cache with
// math.MaxFloat64.
type Weighted struct {
	weighting string
	scores    map[string]float64

	mu     sync.Mutex
	cached *float64
}

func NewWeighted(weighting string) *Weighted {
	return &Weighted{
		weighting: weighting,
		scores:    make(map[string]float64),
	}
}

func (w *Weighted) Weighting() string {
	return w.weighting
}

func (w *Weighted) Insert(key string, val float64) {
	w.scores[key] = val
}

// InsertOrAdd adds val to the existing score under key, treating a missing
// entry as zero.
func (w *Weighted) InsertOrAdd(key string, val float64) {
	w.scores[key] += val
}

func (w *Weighted) Get(key string) (float64, bool) {
	v, ok := w.scores[key]
	return v, ok
}

func (w *Weighted) Len() int {
	return len(w.scores)
}

// Names returns the score keys in sorted order.
func (w *Weighted) Names() []string {
	names := make([]string, 0, len(w.scores))
	for name := range w.scores {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Values returns the score values ordered by key.
func (w *Weighted) Values() []float64 {
	names := w.Names()
	values := make([]float64, len(names))
	for i, name := range names {
		values[i] = w.scores[name]
	}
	return values
}

// ScaleBy divides every score by factor.
func (w *Weighted) ScaleBy(factor float64) {
	for key := range w.scores {
		w.scores[key] /= factor
	}
}

// Clone copies the weighting and scores. The scalar cache is not carried
// over; the clone re-evaluates on first use.
func (w *Weighted) Clone() *Weighted {
	c := NewWeighted(w.weighting)
	for key, v := range w.scores {
		c.scores[key] = v
	}
	return c
}

// Add returns the key-union sum of both score maps under the receiver's
// weighting expression.
func (w *Weighted) Add(other *Weighted) *Weighted {
	res := w.Clone()
	for key, v := range other.scores {
		res.scores[key] += v
	}
	return res
}

// Scalar evaluates the weighting expression over the scores and memoizes
// the result.
func (w *Weighted) Scalar() float64 {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.cached != nil {
		return *w.cached
	}
	res := w.ScalarWithExpression(w.weighting)
	w.cached = &res
	return res
}

// CachedScalar returns the memoized scalar, if one has been evaluated.
func (w *Weighted) CachedScalar() (float64, bool) {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.cached == nil {
		return 0, false
	}
	return *w.cached, true
}

// ScalarWithExpression evaluates expr over the current scores without
// touching the cache. An empty score map is maximally unfit. A weighting
// that cannot be evaluated is a fatal configuration error.
func (w *Weighted) ScalarWithExpression(expr string) float64 {
	if len(w.scores) == 0 {
		return math.MaxFloat64
	}
	params := make(map[string]interface{}, len(w.scores))
	for key, v := range w.scores {
		params[key] = v
	}
	res, err := gval.Evaluate(expr, params, weightingLang)
	if err != nil {
		panic(fmt.Sprintf("failed to evaluate weighting %q with scores %v: %v",
			expr, w.scores, err))
	}
	f, ok := res.(float64)
	if !ok {
		panic(fmt.Sprintf("weighting %q did not evaluate to a number: %v", expr, res))
	}
	return f
}

// DeclareFailure pins the scalar at math.MaxFloat64, marking the candidate
// maximally unfit without evaluating the weighting.
func (w *Weighted) DeclareFailure() {
	w.mu.Lock()
	defer w.mu.Unlock()
	worst := math.MaxFloat64
	w.cached = &worst
}

// weightedJSON is the serialized form; cached_scalar is null until the
// scalar has been evaluated, matching what the analysis tooling reads.
type weightedJSON struct {
	Weighting    string             `json:"weighting"`
	Scores       map[string]float64 `json:"scores"`
	CachedScalar *float64           `json:"cached_scalar"`
}

// MarshalJSON serializes the weighting, scores, and cached scalar.
func (w *Weighted) MarshalJSON() ([]byte, error) {
	w.mu.Lock()
	var cached *float64
	if w.cached != nil {
		v := *w.cached
		cached = &v
	}
	w.mu.Unlock()
	return json.Marshal(weightedJSON{
		Weighting:    w.weighting,
		Scores:       w.scores,
		CachedScalar: cached,
	})
}

// UnmarshalJSON restores a serialized instance, cache included.
func (w *Weighted) UnmarshalJSON(data []byte) error {
	var aux weightedJSON
	if err := json.Unmarshal(data, &aux); err != nil {
		return err
	}
	w.weighting = aux.Weighting
	w.scores = aux.Scores
	if w.scores == nil {
		w.scores = make(map[string]float64)
	}
	w.mu.Lock()
	w.cached = aux.CachedScalar
	w.mu.Unlock()
	return nil
}

// Equal compares scores and weighting, ignoring the cache.
func (w *Weighted) Equal(other *Weighted) bool {
	if w.weighting != other.weighting || len(w.scores) != len(other.scores) {
		return false
	}
	for key, v := range w.scores {
		ov, ok := other.scores[key]
		if !ok || ov != v {
			return false
		}
	}
	return true
}

// Compare totally orders by scalar.
func (w *Weighted) Compare(other *Weighted) Ordering {
	return compareFloats(w.Scalar(), other.Scalar())
}

// AverageWeighted computes the key-wise mean of a non-empty slice of
// instances sharing a weighting. Keys missing from an instance count as
// zero samples.
func AverageWeighted(ws []*Weighted) *Weighted {
	if len(ws) == 0 {
		panic("weight vector must not be empty")
	}
	res := NewWeighted(ws[0].weighting)
	for key, samples := range keyedSamples(ws) {
		res.scores[key] = stat.Mean(samples, nil)
	}
	return res
}

// StdDevWeighted computes the key-wise sample standard deviation of a
// non-empty slice of instances sharing a weighting.
func StdDevWeighted(ws []*Weighted) *Weighted {
	if len(ws) == 0 {
		panic("weight vector must not be empty")
	}
	res := NewWeighted(ws[0].weighting)
	for key, samples := range keyedSamples(ws) {
		res.scores[key] = stat.StdDev(samples, nil)
	}
	return res
}

// keyedSamples regroups per-instance scores into per-key sample columns,
// zero-filling keys an instance lacks.
func keyedSamples(ws []*Weighted) map[string][]float64 {
	columns := make(map[string][]float64)
	for _, w := range ws {
		for key := range w.scores {
			if _, ok := columns[key]; !ok {
				columns[key] = make([]float64, len(ws))
			}
		}
	}
	for i, w := range ws {
		for key := range columns {
			columns[key][i] = w.scores[key]
		}
	}
	return columns
}

func (w *Weighted) String() string {
	var b strings.Builder
	b.WriteString("Scores:\n")
	for _, key := range w.Names() {
		fmt.Fprintf(&b, "    %s: %v\n", key, w.scores[key])
	}
	fmt.Fprintf(&b, "Weighting expression: %s\n", w.weighting)
	fmt.Fprintf(&b, "Scalar: %v", w.Scalar())
	return b.String()
}
