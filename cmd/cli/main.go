package main

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"gocausal/adapters/excel"
	"gocausal/adapters/rng"
	"gocausal/adapters/stats/engine"
	"gocausal/app"
	"gocausal/internal/testkit"
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "gocausal-cli",
		Short: "Randomization inference for finite-population experiments",
	}

	rootCmd.AddCommand(
		newSimulateCmd(),
		newPermTestCmd(),
		newSECmd(),
	)

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newService() *app.ExperimentService {
	eng := engine.NewRandomizationEngine(rng.NewAdapter())
	return app.NewExperimentService(eng)
}

func newSimulateCmd() *cobra.Command {
	var seed int64
	var trials, treated int
	var dataFile string
	var full bool

	cmd := &cobra.Command{
		Use:   "simulate",
		Short: "Simulate the randomization distribution of the ATE estimator",
		Long: `Repeatedly re-randomize treatment over a roster with known potential
outcomes and accumulate the difference-in-means estimate of each draw.

Reads the roster from --data (columns: id, y0, y1), or uses the built-in
seven-village dataset when no file is given.

Example: gocausal-cli simulate --treated 2 --trials 10000 --seed 42`,
		RunE: func(cmd *cobra.Command, args []string) error {
			roster := testkit.NewTestKit().VillageRoster()
			if dataFile != "" {
				loaded, err := excel.NewDataReader().ReadRoster(cmd.Context(), dataFile)
				if err != nil {
					return err
				}
				roster = loaded
			}

			report, err := newService().RunSimulation(cmd.Context(), app.SimulationRequest{
				Roster:       roster,
				TreatedCount: treated,
				Trials:       trials,
				Seed:         seed,
			})
			if err != nil {
				return err
			}
			if !full {
				report.Estimates = nil // omit the raw sequence from summary output
			}
			return printJSON(report)
		},
	}

	cmd.Flags().Int64Var(&seed, "seed", 42, "Random seed for deterministic operations")
	cmd.Flags().IntVar(&trials, "trials", 10000, "Number of simulated assignments")
	cmd.Flags().IntVar(&treated, "treated", 2, "Number of treated units per assignment")
	cmd.Flags().StringVar(&dataFile, "data", "", "Roster file (.xlsx or .csv)")
	cmd.Flags().BoolVar(&full, "full", false, "Include the full estimate sequence in output")

	return cmd
}

func newPermTestCmd() *cobra.Command {
	var seed int64
	var trials int
	var dataFile string
	var full bool

	cmd := &cobra.Command{
		Use:   "permtest",
		Short: "Run a permutation hypothesis test on observed data",
		Long: `Build a null distribution by permuting treatment labels over fixed
outcomes and report Monte Carlo one- and two-sided p-values for the
observed difference in means.

Reads observed data from --data (columns: outcome, treatment), or uses the
built-in seven-village observation when no file is given.

Example: gocausal-cli permtest --trials 10000 --seed 42`,
		RunE: func(cmd *cobra.Command, args []string) error {
			sample := testkit.NewTestKit().VillageObservedSample()
			if dataFile != "" {
				loaded, err := excel.NewDataReader().ReadObservedSample(cmd.Context(), dataFile)
				if err != nil {
					return err
				}
				sample = loaded
			}

			report, err := newService().RunPermutationTest(cmd.Context(), app.PermutationRequest{
				Sample: sample,
				Trials: trials,
				Seed:   seed,
			})
			if err != nil {
				return err
			}
			if !full {
				report.NullDistribution = nil
			}
			return printJSON(report)
		},
	}

	cmd.Flags().Int64Var(&seed, "seed", 42, "Random seed for deterministic operations")
	cmd.Flags().IntVar(&trials, "trials", 10000, "Number of label permutations")
	cmd.Flags().StringVar(&dataFile, "data", "", "Observed sample file (.xlsx or .csv)")
	cmd.Flags().BoolVar(&full, "full", false, "Include the full null distribution in output")

	return cmd
}

func newSECmd() *cobra.Command {
	var varY0, varY1, cov float64
	var n, m int
	var conservative bool

	cmd := &cobra.Command{
		Use:   "se",
		Short: "Compute the closed-form standard error of the ATE estimator",
		Long: `Compute the analytic sampling standard error of the difference-in-means
estimator from potential-outcome variances and covariance, or the
conservative bound (correlation = 1) usable on real data.

Example: gocausal-cli se --var-y0 4 --var-y1 16 --n 7 --m 2`,
		RunE: func(cmd *cobra.Command, args []string) error {
			se, err := newService().EstimateStandardError(app.StandardErrorRequest{
				VarY0:        varY0,
				VarY1:        varY1,
				Cov:          cov,
				RosterSize:   n,
				TreatedCount: m,
				Conservative: conservative,
			})
			if err != nil {
				return err
			}
			return printJSON(map[string]float64{"standard_error": se})
		},
	}

	cmd.Flags().Float64Var(&varY0, "var-y0", 0, "Variance of the control potential outcome")
	cmd.Flags().Float64Var(&varY1, "var-y1", 0, "Variance of the treated potential outcome")
	cmd.Flags().Float64Var(&cov, "cov", 0, "Covariance of the potential outcomes (oracle only)")
	cmd.Flags().IntVar(&n, "n", 0, "Roster size N")
	cmd.Flags().IntVar(&m, "m", 0, "Treated count m")
	cmd.Flags().BoolVar(&conservative, "conservative", false, "Use the conservative bound (no covariance)")

	return cmd
}

func printJSON(v interface{}) error {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
