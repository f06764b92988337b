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

// PermutationTest builds an empirical null distribution by shuffling the
// treatment labels across units while holding outcomes fixed.
//
// Each trial permutes the same multiset of 0/1 labels (Fisher-Yates over an
// index sequence), so every null draw preserves the treated count exactly.
// The effect per trial is the difference in means, which equals the slope
// coefficient of outcomes regressed on the permuted binary indicator.
//
// p-values are plug-in Monte Carlo estimates of the exact permutation test:
//
//	one-sided p = #(null >= observed) / trials
//	two-sided p = #(|null| >= |observed|) / trials
//
// The observed effect comes from the caller's real, unpermuted assignment
// and is never recomputed here.
func (e *RandomizationEngine) PermutationTest(ctx context.Context, spec ports.PermutationSpec) (*inference.PermutationResult, error) {
	if len(spec.Outcomes) != len(spec.Treatment) {
		return nil, errors.InvalidInput(fmt.Sprintf("outcomes length %d does not match treatment length %d", len(spec.Outcomes), len(spec.Treatment)))
	}
	if len(spec.Outcomes) == 0 {
		return nil, errors.InvalidInput("outcomes must not be empty")
	}
	if spec.Trials <= 0 {
		return nil, errors.InvalidInput("trial count must be positive")
	}
	if spec.Trials > e.maxTrials {
		return nil, errors.InvalidInput(fmt.Sprintf("trial count %d exceeds engine limit %d", spec.Trials, e.maxTrials))
	}

	// Validates labels are binary and both arms are populated.
	assignment, err := design.NewAssignment(spec.Treatment)
	if err != nil {
		return nil, errors.WithCode(errors.CodeInvalidInput, err)
	}

	stream, err := e.rngPort.SeededStream(ctx, "permutation-test", spec.Seed)
	if err != nil {
		return nil, errors.Wrap(err, "failed to create RNG stream")
	}

	dist := inference.NewEmpiricalDistribution(PermuteWithStream(spec.Outcomes, assignment, spec.Trials, stream))
	return &inference.PermutationResult{
		NullDistribution: dist,
		ObservedEffect:   spec.ObservedEffect,
		OneSidedP:        dist.TailProbability(spec.ObservedEffect),
		TwoSidedP:        dist.AbsTailProbability(spec.ObservedEffect),
		Trials:           spec.Trials,
	}, nil
}

// PermuteWithStream runs the permutation loop against an explicit RNG stream
func PermuteWithStream(outcomes []float64, assignment *design.Assignment, trials int, stream *rand.Rand) []float64 {
	null := make([]float64, trials)
	for i := 0; i < trials; i++ {
		permuted := assignment.PermuteLabels(stream)
		null[i] = design.MeanDifference(outcomes, permuted.Indicators())
	}
	return null
}
