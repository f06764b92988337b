package inference

// PermutationResult is the complete output of one permutation test.
// The full null distribution is always exposed so the presentation layer
// can derive arbitrary statistics without re-running the test.
type PermutationResult struct {
	NullDistribution *EmpiricalDistribution
	ObservedEffect   float64
	OneSidedP        float64
	TwoSidedP        float64
	Trials           int
}

// SimulationResult is the complete output of one randomization-distribution
// simulation
type SimulationResult struct {
	Distribution *EmpiricalDistribution
	Trials       int
	TreatedCount int
	RosterSize   int
}
