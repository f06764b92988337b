package testkit

import (
	"math/rand"

	"gocausal/domain/core"
	"gocausal/domain/design"
)

// TestKit provides deterministic fixtures and generators for tests
type TestKit struct{}

// NewTestKit creates a new test kit instance
func NewTestKit() *TestKit {
	return &TestKit{}
}

// VillageRoster returns the seven-village teaching dataset with both
// potential outcomes. Its true ATE is exactly 5.0.
func (t *TestKit) VillageRoster() *design.Roster {
	y0 := []float64{10, 15, 20, 20, 10, 15, 15}
	y1 := []float64{15, 15, 30, 15, 20, 15, 30}

	units := make([]design.Unit, len(y0))
	for i := range units {
		units[i] = design.Unit{ID: core.UnitID(i + 1), Y0: y0[i], Y1: y1[i]}
	}
	roster, err := design.NewRoster(units)
	if err != nil {
		panic(err) // fixture is statically valid
	}
	return roster
}

// VillageObservedSample returns the realized seven-village data: villages 1
// and 7 treated, observed difference in means 6.5.
func (t *TestKit) VillageObservedSample() *design.ObservedSample {
	return &design.ObservedSample{
		Outcomes:  []float64{15, 15, 20, 20, 10, 15, 30},
		Treatment: []int{1, 0, 0, 0, 0, 0, 1},
	}
}

// GenerateRoster builds a synthetic roster of n units with a constant
// treatment effect plus seeded noise, for convergence-style tests
func (t *TestKit) GenerateRoster(n int, effect float64, seed int64) *design.Roster {
	rng := rand.New(rand.NewSource(seed))

	units := make([]design.Unit, n)
	for i := range units {
		base := 20 + rng.NormFloat64()*5
		units[i] = design.Unit{
			ID: core.UnitID(i + 1),
			Y0: base,
			Y1: base + effect + rng.NormFloat64(),
		}
	}
	roster, err := design.NewRoster(units)
	if err != nil {
		panic(err)
	}
	return roster
}

// GenerateObservedSample builds a synthetic observed sample with m of n
// treated and a shift between arms
func (t *TestKit) GenerateObservedSample(n, m int, shift float64, seed int64) *design.ObservedSample {
	rng := rand.New(rand.NewSource(seed))

	outcomes := make([]float64, n)
	treatment := make([]int, n)
	for _, idx := range rng.Perm(n)[:m] {
		treatment[idx] = 1
	}
	for i := range outcomes {
		outcomes[i] = 20 + rng.NormFloat64()*5 + shift*float64(treatment[i])
	}
	return &design.ObservedSample{Outcomes: outcomes, Treatment: treatment}
}
