package engine

import (
	"context"
	"fmt"
	"math/rand"

	"gocausal/domain/design"
	"gocausal/domain/inference"
	"gocausal/internal/errors"
	"gocausal/ports"
)

// SimulateRandomization repeatedly re-randomizes treatment over the roster
// and accumulates the difference-in-means estimate of each draw.
//
// Each trial draws an independent uniform m-of-N assignment (sampling with
// replacement across trials over the C(N,m) assignment space), derives the
// observed outcomes, and records mean(treated) - mean(control). All
// validation happens before the first random draw, so a failed call never
// produces partial results.
func (e *RandomizationEngine) SimulateRandomization(ctx context.Context, roster *design.Roster, spec ports.SimulationSpec) (*inference.SimulationResult, error) {
	if roster == nil || roster.Size() == 0 {
		return nil, errors.InvalidInput("roster must contain at least one unit")
	}
	n := roster.Size()
	if spec.TreatedCount <= 0 || spec.TreatedCount >= n {
		return nil, errors.InvalidInput(fmt.Sprintf("treated count must be in (0, %d), got %d", n, spec.TreatedCount))
	}
	if spec.Trials <= 0 {
		return nil, errors.InvalidInput("trial count must be positive")
	}
	if spec.Trials > e.maxTrials {
		return nil, errors.InvalidInput(fmt.Sprintf("trial count %d exceeds engine limit %d", spec.Trials, e.maxTrials))
	}

	stream, err := e.rngPort.SeededStream(ctx, "simulate-randomization", spec.Seed)
	if err != nil {
		return nil, errors.Wrap(err, "failed to create RNG stream")
	}

	estimates, err := SimulateWithStream(roster, spec.TreatedCount, spec.Trials, stream)
	if err != nil {
		return nil, err
	}

	return &inference.SimulationResult{
		Distribution: inference.NewEmpiricalDistribution(estimates),
		Trials:       spec.Trials,
		TreatedCount: spec.TreatedCount,
		RosterSize:   n,
	}, nil
}

// SimulateWithStream runs the trial loop against an explicit RNG stream.
// Consuming trials one at a time from a persistent stream yields the same
// sequence as one large call, so callers can chunk work without changing
// the resulting distribution.
func SimulateWithStream(roster *design.Roster, m, trials int, stream *rand.Rand) ([]float64, error) {
	n := roster.Size()
	estimates := make([]float64, trials)
	for i := 0; i < trials; i++ {
		assignment, err := design.DrawAssignment(n, m, stream)
		if err != nil {
			return nil, errors.Wrap(err, "assignment draw failed")
		}
		observed, err := design.Observe(roster, assignment)
		if err != nil {
			return nil, errors.Wrap(err, "observation failed")
		}
		estimates[i] = observed.MeanDifference()
	}
	return estimates, nil
}
