package ports

import (
	"context"

	"gocausal/domain/design"
	"gocausal/domain/inference"
)

// SimulationSpec configures one randomization-distribution run
type SimulationSpec struct {
	TreatedCount int
	Trials       int
	Seed         int64
}

// PermutationSpec configures one permutation hypothesis test.
// ObservedEffect comes from the real, unpermuted assignment; the engine
// never recomputes it.
type PermutationSpec struct {
	Outcomes       []float64
	Treatment      []int
	ObservedEffect float64
	Trials         int
	Seed           int64
}

// RandomizationEnginePort runs the two resampling procedures
type RandomizationEnginePort interface {
	// SimulateRandomization draws Trials independent uniform m-of-N
	// assignments over the roster and returns the ATE estimate of each draw
	SimulateRandomization(ctx context.Context, roster *design.Roster, spec SimulationSpec) (*inference.SimulationResult, error)

	// PermutationTest builds an empirical null distribution by permuting the
	// treatment labels and returns Monte Carlo p-values for the observed effect
	PermutationTest(ctx context.Context, spec PermutationSpec) (*inference.PermutationResult, error)
}

// DatasetReaderPort loads experiment data from external files
type DatasetReaderPort interface {
	// ReadRoster loads units with both potential outcomes (simulated data)
	ReadRoster(ctx context.Context, path string) (*design.Roster, error)

	// ReadObservedSample loads an outcome/treatment table (real data)
	ReadObservedSample(ctx context.Context, path string) (*design.ObservedSample, error)
}
