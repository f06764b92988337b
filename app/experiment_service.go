package app

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/montanaflynn/stats"
	"gonum.org/v1/gonum/stat/combin"
	"gonum.org/v1/gonum/stat/distuv"

	"gocausal/domain/core"
	"gocausal/domain/design"
	"gocausal/domain/inference"
	"gocausal/internal/errors"
	"gocausal/ports"
)

// ExperimentService orchestrates the resampling procedures and packages
// their outputs into auditable artifacts
type ExperimentService struct {
	engine ports.RandomizationEnginePort
}

// NewExperimentService creates an experiment service
func NewExperimentService(engine ports.RandomizationEnginePort) *ExperimentService {
	return &ExperimentService{engine: engine}
}

// SimulationRequest defines the inputs for a deterministic simulation run
type SimulationRequest struct {
	Roster       *design.Roster
	TreatedCount int
	Trials       int
	Seed         int64
	RunID        core.RunID // optional, generated if empty
}

// SimulationReport contains the complete output of a simulation run
type SimulationReport struct {
	RunID           core.RunID              `json:"run_id"`
	Trials          int                     `json:"trials"`
	TreatedCount    int                     `json:"treated_count"`
	RosterSize      int                     `json:"roster_size"`
	AssignmentSpace float64                 `json:"assignment_space"` // C(N, m)
	Estimates       []float64               `json:"estimates"`
	Mean            float64                 `json:"mean"`
	StdDev          float64                 `json:"std_dev"`
	TrueATE         float64                 `json:"true_ate"`
	AnalyticSE      float64                 `json:"analytic_se"`
	ConservativeSE  float64                 `json:"conservative_se"`
	NormalCoverage  float64                 `json:"normal_coverage_95"`
	Histogram       []inference.HistogramBin `json:"histogram"`
	Fingerprint     core.ResultHash         `json:"fingerprint"`
	Artifacts       []core.Artifact         `json:"artifacts"`
	RuntimeMs       int64                   `json:"runtime_ms"`
}

// RunSimulation executes a randomization-distribution simulation with a
// complete audit trail: summary statistics, the oracle true ATE, both
// standard-error estimates, and a normal-approximation coverage check of
// the simulated spread.
func (s *ExperimentService) RunSimulation(ctx context.Context, req SimulationRequest) (*SimulationReport, error) {
	startTime := time.Now()

	runID := req.RunID
	if runID == "" {
		runID = core.RunID(core.NewID())
	}

	result, err := s.engine.SimulateRandomization(ctx, req.Roster, ports.SimulationSpec{
		TreatedCount: req.TreatedCount,
		Trials:       req.Trials,
		Seed:         req.Seed,
	})
	if err != nil {
		return nil, errors.Wrap(err, "simulation failed")
	}

	dist := result.Distribution
	report := &SimulationReport{
		RunID:           runID,
		Trials:          result.Trials,
		TreatedCount:    result.TreatedCount,
		RosterSize:      result.RosterSize,
		AssignmentSpace: combin.GeneralizedBinomial(float64(result.RosterSize), float64(result.TreatedCount)),
		Estimates:       dist.Values(),
		Mean:            dist.Mean(),
		StdDev:          dist.StdDev(),
		TrueATE:         req.Roster.TrueATE(),
		Histogram:       dist.Histogram(20),
		Fingerprint:     dist.Fingerprint(),
	}

	// Oracle cross-check: analytic SE from the known potential outcomes.
	varY0, varY1, cov := potentialOutcomeMoments(req.Roster)
	if se, err := inference.StandardError(varY0, varY1, cov, result.RosterSize, result.TreatedCount); err == nil {
		report.AnalyticSE = se
	} else {
		log.Printf("[ExperimentService] analytic SE unavailable: %v", err)
	}
	if se, err := inference.StandardErrorConservative(varY0, varY1, result.RosterSize, result.TreatedCount); err == nil {
		report.ConservativeSE = se
	}

	// Fraction of estimates inside the 95% normal band around the true ATE,
	// using the analytic SE as the scale.
	if report.AnalyticSE > 0 {
		normal := distuv.Normal{Mu: report.TrueATE, Sigma: report.AnalyticSE}
		lo := normal.Quantile(0.025)
		hi := normal.Quantile(0.975)
		inside := 0
		for _, v := range report.Estimates {
			if v >= lo && v <= hi {
				inside++
			}
		}
		report.NormalCoverage = float64(inside) / float64(len(report.Estimates))
	}

	report.Artifacts = []core.Artifact{
		{
			ID:   core.NewID(),
			Kind: core.ArtifactRandomizationDistribution,
			Payload: map[string]interface{}{
				"run_id":      runID.String(),
				"estimates":   report.Estimates,
				"mean":        report.Mean,
				"std_dev":     report.StdDev,
				"fingerprint": report.Fingerprint.String(),
			},
			CreatedAt: core.Now(),
		},
		s.manifestArtifact(runID, req.Roster, req.Seed, req.Trials, startTime),
	}

	report.RuntimeMs = time.Since(startTime).Milliseconds()
	log.Printf("[ExperimentService] simulation run %s: %d trials in %dms (mean=%.4f, sd=%.4f)",
		runID, report.Trials, report.RuntimeMs, report.Mean, report.StdDev)
	return report, nil
}

// PermutationRequest defines the inputs for a permutation hypothesis test
// against real (non-oracle) data
type PermutationRequest struct {
	Sample *design.ObservedSample
	Trials int
	Seed   int64
	RunID  core.RunID // optional, generated if empty
}

// PermutationReport contains the complete output of a permutation test
type PermutationReport struct {
	RunID            core.RunID               `json:"run_id"`
	Trials           int                      `json:"trials"`
	ObservedEffect   float64                  `json:"observed_effect"`
	OneSidedP        float64                  `json:"one_sided_p"`
	TwoSidedP        float64                  `json:"two_sided_p"`
	NullDistribution []float64                `json:"null_distribution"`
	NullMean         float64                  `json:"null_mean"`
	NullStdDev       float64                  `json:"null_std_dev"`
	Histogram        []inference.HistogramBin `json:"histogram"`
	Fingerprint      core.ResultHash          `json:"fingerprint"`
	Artifacts        []core.Artifact          `json:"artifacts"`
	RuntimeMs        int64                    `json:"runtime_ms"`
}

// RunPermutationTest computes the observed effect from the real assignment,
// then builds the permutation null distribution and its p-values. The
// observed effect is computed here, at the service layer, from the
// unpermuted labels; the engine only ever sees it as an input.
func (s *ExperimentService) RunPermutationTest(ctx context.Context, req PermutationRequest) (*PermutationReport, error) {
	startTime := time.Now()

	if req.Sample == nil {
		return nil, errors.InvalidInput("observed sample is required")
	}

	runID := req.RunID
	if runID == "" {
		runID = core.RunID(core.NewID())
	}

	observedEffect := req.Sample.MeanDifference()

	result, err := s.engine.PermutationTest(ctx, ports.PermutationSpec{
		Outcomes:       req.Sample.Outcomes,
		Treatment:      req.Sample.Treatment,
		ObservedEffect: observedEffect,
		Trials:         req.Trials,
		Seed:           req.Seed,
	})
	if err != nil {
		return nil, errors.Wrap(err, "permutation test failed")
	}

	dist := result.NullDistribution
	report := &PermutationReport{
		RunID:            runID,
		Trials:           result.Trials,
		ObservedEffect:   result.ObservedEffect,
		OneSidedP:        result.OneSidedP,
		TwoSidedP:        result.TwoSidedP,
		NullDistribution: dist.Values(),
		NullMean:         dist.Mean(),
		NullStdDev:       dist.StdDev(),
		Histogram:        dist.Histogram(20),
		Fingerprint:      dist.Fingerprint(),
	}

	report.Artifacts = []core.Artifact{
		{
			ID:   core.NewID(),
			Kind: core.ArtifactNullDistribution,
			Payload: map[string]interface{}{
				"run_id":          runID.String(),
				"observed_effect": report.ObservedEffect,
				"one_sided_p":     report.OneSidedP,
				"two_sided_p":     report.TwoSidedP,
				"fingerprint":     report.Fingerprint.String(),
			},
			CreatedAt: core.Now(),
		},
	}

	report.RuntimeMs = time.Since(startTime).Milliseconds()
	log.Printf("[ExperimentService] permutation run %s: %d trials in %dms (effect=%.4f, p1=%.4f, p2=%.4f)",
		runID, report.Trials, report.RuntimeMs, report.ObservedEffect, report.OneSidedP, report.TwoSidedP)
	return report, nil
}

// StandardErrorRequest defines inputs for the closed-form estimators
type StandardErrorRequest struct {
	VarY0        float64
	VarY1        float64
	Cov          float64
	RosterSize   int
	TreatedCount int
	Conservative bool
}

// EstimateStandardError surfaces the closed-form estimators, mapping domain
// failures to the structured error taxonomy
func (s *ExperimentService) EstimateStandardError(req StandardErrorRequest) (float64, error) {
	if req.Conservative {
		se, err := inference.StandardErrorConservative(req.VarY0, req.VarY1, req.RosterSize, req.TreatedCount)
		if err != nil {
			return 0, errors.WithCode(errors.CodeInvalidInput, err)
		}
		return se, nil
	}
	se, err := inference.StandardError(req.VarY0, req.VarY1, req.Cov, req.RosterSize, req.TreatedCount)
	if err != nil {
		if core.IsValidationError(err) {
			return 0, errors.WithCode(errors.CodeInvalidInput, err)
		}
		return 0, errors.WithCode(errors.CodeInvalidDomain, err)
	}
	return se, nil
}

// potentialOutcomeMoments computes sample variances and covariance of the
// potential outcomes. Oracle-only: reads both outcomes of every unit.
func potentialOutcomeMoments(roster *design.Roster) (varY0, varY1, cov float64) {
	units := roster.Units()
	y0 := make([]float64, len(units))
	y1 := make([]float64, len(units))
	for i, u := range units {
		y0[i] = u.Y0
		y1[i] = u.Y1
	}

	varY0, _ = stats.SampleVariance(y0)
	varY1, _ = stats.SampleVariance(y1)
	cov, _ = stats.Covariance(y0, y1)
	return varY0, varY1, cov
}

// manifestArtifact captures audit metadata for a run
func (s *ExperimentService) manifestArtifact(runID core.RunID, roster *design.Roster, seed int64, trials int, startTime time.Time) core.Artifact {
	return core.Artifact{
		ID:   core.NewID(),
		Kind: core.ArtifactExperimentManifest,
		Payload: map[string]interface{}{
			"run_id":             runID.String(),
			"seed":               seed,
			"trials":             trials,
			"roster_size":        roster.Size(),
			"roster_fingerprint": roster.Fingerprint().String(),
			"started_at":         startTime.Format(time.RFC3339Nano),
		},
		CreatedAt: core.Now(),
	}
}

// String renders a one-line summary for CLI output
func (r *PermutationReport) String() string {
	return fmt.Sprintf("effect=%.4f one_sided_p=%.4f two_sided_p=%.4f trials=%d",
		r.ObservedEffect, r.OneSidedP, r.TwoSidedP, r.Trials)
}
