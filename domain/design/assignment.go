package design

import (
	"encoding/binary"
	"math"
	"math/rand"

	"gocausal/domain/core"
)

// Assignment maps roster positions to binary treatment indicators.
// INVARIANT: exactly TreatedCount() of the indicators are 1.
type Assignment struct {
	indicators []int
}

// NewAssignment validates raw indicators into an Assignment
func NewAssignment(indicators []int) (*Assignment, error) {
	treated := 0
	for _, w := range indicators {
		if w != 0 && w != 1 {
			return nil, core.ErrNonBinaryTreatment
		}
		treated += w
	}
	if treated == 0 || treated == len(indicators) {
		return nil, core.ErrDegenerateArms
	}
	copied := make([]int, len(indicators))
	copy(copied, indicators)
	return &Assignment{indicators: copied}, nil
}

// DrawAssignment draws a uniformly random assignment with exactly m of n
// units treated. The draw works over an index sequence, so it is independent
// of any particular tabular representation: rng.Perm(n) gives a uniform
// permutation and the first m positions receive treatment.
func DrawAssignment(n, m int, rng *rand.Rand) (*Assignment, error) {
	if m <= 0 || m >= n {
		return nil, core.NewTreatedCountError(m, n)
	}
	indicators := make([]int, n)
	for _, idx := range rng.Perm(n)[:m] {
		indicators[idx] = 1
	}
	return &Assignment{indicators: indicators}, nil
}

// PermuteLabels returns a new Assignment with the same multiset of labels
// shuffled across positions (Fisher-Yates). This is a permutation of the
// existing labels, not a fresh draw: the treated count is preserved exactly.
func (a *Assignment) PermuteLabels(rng *rand.Rand) *Assignment {
	shuffled := make([]int, len(a.indicators))
	copy(shuffled, a.indicators)
	for i := len(shuffled) - 1; i > 0; i-- {
		j := rng.Intn(i + 1)
		shuffled[i], shuffled[j] = shuffled[j], shuffled[i]
	}
	return &Assignment{indicators: shuffled}
}

// Size returns the number of units covered by the assignment
func (a *Assignment) Size() int {
	return len(a.indicators)
}

// TreatedCount returns the number of treated units m
func (a *Assignment) TreatedCount() int {
	treated := 0
	for _, w := range a.indicators {
		treated += w
	}
	return treated
}

// Treated reports whether position i received treatment
func (a *Assignment) Treated(i int) bool {
	return a.indicators[i] == 1
}

// Indicators returns a copy of the indicator vector
func (a *Assignment) Indicators() []int {
	out := make([]int, len(a.indicators))
	copy(out, a.indicators)
	return out
}

// ObservedSample is the realized data under one assignment: for each unit,
// Y1 if treated, Y0 otherwise. This is the only view a non-oracle estimator
// may read; the counterfactual outcome is discarded at construction.
type ObservedSample struct {
	Outcomes  []float64
	Treatment []int
}

// Observe derives the observed sample from a roster and an assignment
func Observe(roster *Roster, assignment *Assignment) (*ObservedSample, error) {
	if assignment.Size() != roster.Size() {
		return nil, core.ErrLengthMismatch
	}
	outcomes := make([]float64, roster.Size())
	for i := 0; i < roster.Size(); i++ {
		u := roster.Unit(i)
		if assignment.Treated(i) {
			outcomes[i] = u.Y1
		} else {
			outcomes[i] = u.Y0
		}
	}
	return &ObservedSample{Outcomes: outcomes, Treatment: assignment.Indicators()}, nil
}

// MeanDifference computes mean(treated) - mean(control), the difference in
// means estimator of the ATE. Algebraically identical to the slope of a
// least-squares fit of outcomes on a single binary regressor.
func (s *ObservedSample) MeanDifference() float64 {
	return MeanDifference(s.Outcomes, s.Treatment)
}

// MeanDifference computes mean(outcomes | treatment==1) minus
// mean(outcomes | treatment==0) over parallel vectors. Callers must have
// validated that both arms are non-empty.
func MeanDifference(outcomes []float64, treatment []int) float64 {
	var sumT, sumC float64
	var nT, nC int
	for i, y := range outcomes {
		if treatment[i] == 1 {
			sumT += y
			nT++
		} else {
			sumC += y
			nC++
		}
	}
	return sumT/float64(nT) - sumC/float64(nC)
}

func appendFloat(buf []byte, v float64) []byte {
	var b [8]byte
	binary.LittleEndian.PutUint64(b[:], math.Float64bits(v))
	return append(buf, b[:]...)
}
