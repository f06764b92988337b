package engine

import (
	"context"
	"math"
	"testing"

	"gocausal/internal/testkit"
	"gocausal/ports"
)

func villageSpec(trials int, seed int64) ports.PermutationSpec {
	sample := testkit.NewTestKit().VillageObservedSample()
	return ports.PermutationSpec{
		Outcomes:       sample.Outcomes,
		Treatment:      sample.Treatment,
		ObservedEffect: 6.5,
		Trials:         trials,
		Seed:           seed,
	}
}

func TestPermutationTest(t *testing.T) {
	ctx := context.Background()

	t.Run("village example", func(t *testing.T) {
		result, err := newTestEngine().PermutationTest(ctx, villageSpec(10000, 42))
		if err != nil {
			t.Fatalf("Unexpected error: %v", err)
		}

		if result.NullDistribution.Len() != 10000 {
			t.Errorf("Expected 10000 null values, got %d", result.NullDistribution.Len())
		}
		if result.OneSidedP < 0 || result.OneSidedP > 1 {
			t.Errorf("One-sided p out of [0,1]: %g", result.OneSidedP)
		}
		if result.TwoSidedP < 0 || result.TwoSidedP > 1 {
			t.Errorf("Two-sided p out of [0,1]: %g", result.TwoSidedP)
		}
		if result.OneSidedP > result.TwoSidedP {
			t.Errorf("One-sided p (%g) must not exceed two-sided p (%g) for a positive effect",
				result.OneSidedP, result.TwoSidedP)
		}
	})

	t.Run("deterministic for fixed seed", func(t *testing.T) {
		eng := newTestEngine()
		first, err := eng.PermutationTest(ctx, villageSpec(1000, 99))
		if err != nil {
			t.Fatalf("Unexpected error: %v", err)
		}
		second, err := eng.PermutationTest(ctx, villageSpec(1000, 99))
		if err != nil {
			t.Fatalf("Unexpected error: %v", err)
		}
		if first.NullDistribution.Fingerprint() != second.NullDistribution.Fingerprint() {
			t.Error("Fingerprints differ for identical seeds")
		}
		if first.OneSidedP != second.OneSidedP || first.TwoSidedP != second.TwoSidedP {
			t.Error("p-values differ for identical seeds")
		}
	})

	t.Run("p-values non-increasing in threshold magnitude", func(t *testing.T) {
		result, err := newTestEngine().PermutationTest(ctx, villageSpec(5000, 42))
		if err != nil {
			t.Fatalf("Unexpected error: %v", err)
		}

		dist := result.NullDistribution
		prevOne, prevTwo := 2.0, 2.0
		for _, e := range []float64{0, 1, 2.5, 5, 6.5, 10} {
			one := dist.TailProbability(e)
			two := dist.AbsTailProbability(e)
			if one > prevOne {
				t.Fatalf("One-sided p rose from %g to %g at threshold %g", prevOne, one, e)
			}
			if two > prevTwo {
				t.Fatalf("Two-sided p rose from %g to %g at threshold %g", prevTwo, two, e)
			}
			prevOne, prevTwo = one, two
		}
	})

	t.Run("null distribution centers near zero", func(t *testing.T) {
		result, err := newTestEngine().PermutationTest(ctx, villageSpec(20000, 42))
		if err != nil {
			t.Fatalf("Unexpected error: %v", err)
		}
		// Under the null the label shuffle carries no signal, so the mean
		// effect should be near zero.
		if got := result.NullDistribution.Mean(); math.Abs(got) > 0.2 {
			t.Errorf("Expected null mean near 0, got %g", got)
		}
	})

	t.Run("observed effect passes through untouched", func(t *testing.T) {
		spec := villageSpec(100, 42)
		spec.ObservedEffect = 123.25
		result, err := newTestEngine().PermutationTest(ctx, spec)
		if err != nil {
			t.Fatalf("Unexpected error: %v", err)
		}
		if result.ObservedEffect != 123.25 {
			t.Errorf("Engine modified the observed effect: %g", result.ObservedEffect)
		}
		// Nothing in the null should reach an effect that large.
		if result.OneSidedP != 0 || result.TwoSidedP != 0 {
			t.Errorf("Expected zero p-values for an unreachable effect, got %g / %g",
				result.OneSidedP, result.TwoSidedP)
		}
	})

	t.Run("input validation", func(t *testing.T) {
		eng := newTestEngine()
		cases := []ports.PermutationSpec{
			{Outcomes: []float64{1, 2}, Treatment: []int{1}, Trials: 10},
			{Outcomes: nil, Treatment: nil, Trials: 10},
			{Outcomes: []float64{1, 2}, Treatment: []int{1, 0}, Trials: 0},
			{Outcomes: []float64{1, 2}, Treatment: []int{1, 2}, Trials: 10},
			{Outcomes: []float64{1, 2}, Treatment: []int{1, 1}, Trials: 10},
			{Outcomes: []float64{1, 2}, Treatment: []int{0, 0}, Trials: 10},
		}
		for i, spec := range cases {
			if _, err := eng.PermutationTest(ctx, spec); err == nil {
				t.Errorf("Case %d: expected error for spec %+v", i, spec)
			}
		}
	})
}
