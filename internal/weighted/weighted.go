// Package weighted picks one outcome from a list of relatively weighted outcomes
// using a single uniform draw over the cumulative weight.
package weighted

import (
	"fmt"
	"math"
	"math/rand/v2"
	"sort"

	"github.com/samber/lo"

	"github.com/osse101/RaceBot_Go/internal/domain"
)

// Rand returns a uniform float64 in [0, 1).
type Rand func() float64

// Default is the process-wide source. It is safe for concurrent use.
var Default Rand = rand.Float64

// Seeded returns a deterministic source for tests and replays.
func Seeded(seed uint64) Rand {
	r := rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15))
	return r.Float64
}

// Outcome is a label with a non-negative relative weight.
type Outcome[T any] struct {
	Label  T
	Weight float64
}

// Table is a validated, immutable outcome list with precomputed cumulative boundaries.
// Outcomes keep the caller's order; a draw that lands exactly on a boundary belongs
// to the outcome that boundary closes. Zero-weight outcomes are never selected.
type Table[T any] struct {
	outcomes     []Outcome[T]
	cumulative   []float64
	total        float64
	lastPositive int
}

// NewTable validates outcomes. Empty input, negative or non-finite weights,
// and an all-zero total are rejected with *domain.InvalidWeightsError.
func NewTable[T any](outcomes []Outcome[T]) (*Table[T], error) {
	if len(outcomes) == 0 {
		return nil, &domain.InvalidWeightsError{Reason: "no outcomes"}
	}
	for i, o := range outcomes {
		if o.Weight < 0 || math.IsNaN(o.Weight) || math.IsInf(o.Weight, 0) {
			return nil, &domain.InvalidWeightsError{Reason: fmt.Sprintf("outcome %d has weight %v", i, o.Weight)}
		}
	}

	total := lo.SumBy(outcomes, func(o Outcome[T]) float64 { return o.Weight })
	if total <= 0 {
		return nil, &domain.InvalidWeightsError{Reason: "total weight is zero"}
	}

	t := &Table[T]{
		outcomes:   append([]Outcome[T](nil), outcomes...),
		cumulative: make([]float64, len(outcomes)),
		total:      total,
	}
	running := 0.0
	for i, o := range outcomes {
		running += o.Weight
		t.cumulative[i] = running
		if o.Weight > 0 {
			t.lastPositive = i
		}
	}
	return t, nil
}

// MustTable is NewTable for static tables declared at package level.
func MustTable[T any](outcomes []Outcome[T]) *Table[T] {
	t, err := NewTable(outcomes)
	if err != nil {
		panic(err)
	}
	return t
}

// Total returns the sum of all weights.
func (t *Table[T]) Total() float64 {
	return t.total
}

// Outcomes returns a copy of the outcome list.
func (t *Table[T]) Outcomes() []Outcome[T] {
	return append([]Outcome[T](nil), t.outcomes...)
}

// Select maps a uniform draw in [0, 1) onto the table.
func (t *Table[T]) Select(draw float64) T {
	target := draw * t.total
	idx := sort.Search(len(t.cumulative), func(i int) bool {
		return t.cumulative[i] >= target
	})
	// A zero-weight outcome shares its boundary with the outcome before it
	for idx < len(t.outcomes) && t.outcomes[idx].Weight == 0 {
		idx++
	}
	// Only reachable for draw >= 1 or float rounding at the top edge.
	if idx >= len(t.cumulative) {
		idx = t.lastPositive
	}
	return t.outcomes[idx].Label
}

// Pick draws once from rnd and selects an outcome.
func (t *Table[T]) Pick(rnd Rand) T {
	return t.Select(rnd())
}

// Pick validates outcomes and draws once.
func Pick[T any](rnd Rand, outcomes []Outcome[T]) (T, error) {
	t, err := NewTable(outcomes)
	if err != nil {
		var zero T
		return zero, err
	}
	return t.Pick(rnd), nil
}

// Chance is a binary gate: hit with weight percent, miss with weight 100-percent.
// Percent is clamped to [0, 100].
func Chance(rnd Rand, percent float64) bool {
	p := min(max(percent, 0), 100)
	gate := Table[bool]{
		outcomes:     []Outcome[bool]{{Label: true, Weight: p}, {Label: false, Weight: 100 - p}},
		cumulative:   []float64{p, 100},
		total:        100,
		lastPositive: 1,
	}
	if p == 100 {
		gate.lastPositive = 0
	}
	return gate.Pick(rnd)
}

// Uniform returns a value in [low, high).
func Uniform(rnd Rand, low, high float64) float64 {
	return low + rnd()*(high-low)
}

// Intn returns an int in [0, n). n must be positive.
func Intn(rnd Rand, n int) int {
	i := int(rnd() * float64(n))
	if i >= n {
		i = n - 1
	}
	return i
}

// IntRange returns an int in [low, high] inclusive.
func IntRange(rnd Rand, low, high int) int {
	if high <= low {
		return low
	}
	return low + Intn(rnd, high-low+1)
}
