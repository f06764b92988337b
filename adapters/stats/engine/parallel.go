package engine

import (
	"context"
	"fmt"
	"sync"

	"golang.org/x/sync/semaphore"

	"gocausal/domain/design"
	"gocausal/domain/inference"
	"gocausal/internal/errors"
	"gocausal/ports"
)

// Trials are embarrassingly parallel; this bounds how many blocks run at once.
const defaultParallelism = 4

// SimulateRandomizationParallel runs the same procedure as
// SimulateRandomization with trials split into fixed blocks, each on its own
// derived RNG stream. The block layout depends only on the trial count, so
// the output is deterministic for a fixed seed no matter how many blocks
// execute concurrently. This is a throughput option; the sequential variant
// remains the reference.
func (e *RandomizationEngine) SimulateRandomizationParallel(ctx context.Context, roster *design.Roster, spec ports.SimulationSpec) (*inference.SimulationResult, error) {
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

	blockSize := spec.Trials / defaultParallelism
	if blockSize == 0 {
		blockSize = spec.Trials
	}

	estimates := make([]float64, spec.Trials)
	sem := semaphore.NewWeighted(defaultParallelism)
	var wg sync.WaitGroup
	var mu sync.Mutex
	var firstErr error

	for start, block := 0, 0; start < spec.Trials; start, block = start+blockSize, block+1 {
		end := start + blockSize
		if end > spec.Trials {
			end = spec.Trials
		}

		if err := sem.Acquire(ctx, 1); err != nil {
			return nil, errors.Wrap(err, "parallel simulation cancelled")
		}

		wg.Add(1)
		go func(start, end, block int) {
			defer wg.Done()
			defer sem.Release(1)

			stream, err := e.rngPort.Stream(ctx, "", fmt.Sprintf("simulate-block-%d", block), spec.Seed)
			if err != nil {
				mu.Lock()
				if firstErr == nil {
					firstErr = err
				}
				mu.Unlock()
				return
			}

			for i := start; i < end; i++ {
				assignment, err := design.DrawAssignment(n, spec.TreatedCount, stream)
				if err != nil {
					mu.Lock()
					if firstErr == nil {
						firstErr = err
					}
					mu.Unlock()
					return
				}
				observed, err := design.Observe(roster, assignment)
				if err != nil {
					mu.Lock()
					if firstErr == nil {
						firstErr = err
					}
					mu.Unlock()
					return
				}
				estimates[i] = observed.MeanDifference()
			}
		}(start, end, block)
	}

	wg.Wait()
	if firstErr != nil {
		return nil, errors.Wrap(firstErr, "parallel simulation failed")
	}

	return &inference.SimulationResult{
		Distribution: inference.NewEmpiricalDistribution(estimates),
		Trials:       spec.Trials,
		TreatedCount: spec.TreatedCount,
		RosterSize:   n,
	}, nil
}
