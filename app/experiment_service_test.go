package app

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"gocausal/adapters/rng"
	"gocausal/adapters/stats/engine"
	"gocausal/domain/core"
	"gocausal/internal/errors"
	"gocausal/internal/testkit"
)

func newTestService() *ExperimentService {
	return NewExperimentService(engine.NewRandomizationEngine(rng.NewAdapter()))
}

func TestRunSimulation(t *testing.T) {
	ctx := context.Background()
	kit := testkit.NewTestKit()
	service := newTestService()

	t.Run("village roster report", func(t *testing.T) {
		report, err := service.RunSimulation(ctx, SimulationRequest{
			Roster:       kit.VillageRoster(),
			TreatedCount: 2,
			Trials:       5000,
			Seed:         42,
		})
		require.NoError(t, err)

		assert.Equal(t, 5000, report.Trials)
		assert.Equal(t, 2, report.TreatedCount)
		assert.Equal(t, 7, report.RosterSize)
		assert.InDelta(t, 21, report.AssignmentSpace, 1e-9) // C(7,2)
		assert.Len(t, report.Estimates, 5000)

		// The difference-in-means estimator is unbiased for the true ATE.
		assert.Equal(t, 5.0, report.TrueATE)
		assert.InDelta(t, 5.0, report.Mean, 0.75)

		// Closed-form oracle SEs for the village potential outcomes.
		assert.InDelta(t, 4.9721, report.AnalyticSE, 0.001)
		assert.InDelta(t, 5.3229, report.ConservativeSE, 0.001)

		// Simulated spread converges to the analytic SE.
		assert.InDelta(t, report.AnalyticSE, report.StdDev, 0.5)

		assert.Greater(t, report.NormalCoverage, 0.8)
		assert.LessOrEqual(t, report.NormalCoverage, 1.0)

		total := 0
		for _, bin := range report.Histogram {
			total += bin.Count
		}
		assert.Equal(t, 5000, total)

		require.Len(t, report.Artifacts, 2)
		assert.Equal(t, core.ArtifactRandomizationDistribution, report.Artifacts[0].Kind)
		assert.Equal(t, core.ArtifactExperimentManifest, report.Artifacts[1].Kind)
		assert.NotEmpty(t, report.RunID)
	})

	t.Run("deterministic for fixed seed", func(t *testing.T) {
		req := SimulationRequest{
			Roster:       kit.VillageRoster(),
			TreatedCount: 2,
			Trials:       500,
			Seed:         99,
		}
		first, err := service.RunSimulation(ctx, req)
		require.NoError(t, err)
		second, err := service.RunSimulation(ctx, req)
		require.NoError(t, err)

		assert.Equal(t, first.Fingerprint, second.Fingerprint)
		assert.Equal(t, first.Estimates, second.Estimates)
	})

	t.Run("invalid treated count surfaces structured error", func(t *testing.T) {
		_, err := service.RunSimulation(ctx, SimulationRequest{
			Roster:       kit.VillageRoster(),
			TreatedCount: 7,
			Trials:       100,
			Seed:         1,
		})
		require.Error(t, err)
		assert.Equal(t, errors.CodeInvalidInput, errors.GetCode(err))
	})
}

func TestRunPermutationTest(t *testing.T) {
	ctx := context.Background()
	kit := testkit.NewTestKit()
	service := newTestService()

	t.Run("village sample report", func(t *testing.T) {
		report, err := service.RunPermutationTest(ctx, PermutationRequest{
			Sample: kit.VillageObservedSample(),
			Trials: 10000,
			Seed:   42,
		})
		require.NoError(t, err)

		// Effect comes from the real labels, not from the engine.
		assert.InDelta(t, 6.5, report.ObservedEffect, 1e-12)
		assert.Len(t, report.NullDistribution, 10000)
		assert.GreaterOrEqual(t, report.OneSidedP, 0.0)
		assert.LessOrEqual(t, report.OneSidedP, 1.0)
		assert.LessOrEqual(t, report.OneSidedP, report.TwoSidedP)
		assert.InDelta(t, 0.0, report.NullMean, 0.2)

		require.Len(t, report.Artifacts, 1)
		assert.Equal(t, core.ArtifactNullDistribution, report.Artifacts[0].Kind)
	})

	t.Run("deterministic for fixed seed", func(t *testing.T) {
		req := PermutationRequest{
			Sample: kit.VillageObservedSample(),
			Trials: 2000,
			Seed:   7,
		}
		first, err := service.RunPermutationTest(ctx, req)
		require.NoError(t, err)
		second, err := service.RunPermutationTest(ctx, req)
		require.NoError(t, err)

		assert.Equal(t, first.Fingerprint, second.Fingerprint)
		assert.Equal(t, first.OneSidedP, second.OneSidedP)
		assert.Equal(t, first.TwoSidedP, second.TwoSidedP)
	})

	t.Run("missing sample is invalid input", func(t *testing.T) {
		_, err := service.RunPermutationTest(ctx, PermutationRequest{Trials: 100, Seed: 1})
		require.Error(t, err)
		assert.Equal(t, errors.CodeInvalidInput, errors.GetCode(err))
	})
}

func TestEstimateStandardError(t *testing.T) {
	service := newTestService()

	// Village moments: VarY0=100/6, VarY1=50, Cov=50/6.
	varY0, varY1, cov := 100.0/6.0, 50.0, 50.0/6.0

	t.Run("analytic estimator", func(t *testing.T) {
		se, err := service.EstimateStandardError(StandardErrorRequest{
			VarY0: varY0, VarY1: varY1, Cov: cov,
			RosterSize: 7, TreatedCount: 2,
		})
		require.NoError(t, err)
		assert.InDelta(t, 4.9721, se, 0.001)
	})

	t.Run("conservative estimator ignores covariance", func(t *testing.T) {
		se, err := service.EstimateStandardError(StandardErrorRequest{
			VarY0: varY0, VarY1: varY1,
			RosterSize: 7, TreatedCount: 2,
			Conservative: true,
		})
		require.NoError(t, err)
		assert.InDelta(t, 5.3229, se, 0.001)
	})

	t.Run("treated count out of range is invalid input", func(t *testing.T) {
		_, err := service.EstimateStandardError(StandardErrorRequest{
			VarY0: varY0, VarY1: varY1, Cov: cov,
			RosterSize: 7, TreatedCount: 0,
		})
		require.Error(t, err)
		assert.Equal(t, errors.CodeInvalidInput, errors.GetCode(err))
	})

	t.Run("impossible covariance is a domain error", func(t *testing.T) {
		_, err := service.EstimateStandardError(StandardErrorRequest{
			VarY0: 1, VarY1: 1, Cov: 10,
			RosterSize: 7, TreatedCount: 2,
		})
		require.Error(t, err)
		assert.Equal(t, errors.CodeInvalidDomain, errors.GetCode(err))
	})
}
