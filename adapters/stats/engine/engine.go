package engine

import (
	"gocausal/ports"
)

// Trial count bounds. The lower bound keeps Monte Carlo p-values meaningful,
// the upper bound prevents runaway memory for the stored distributions.
const (
	MinTrials = 1
	MaxTrials = 1_000_000
)

// RandomizationEngine implements ports.RandomizationEnginePort.
// Both procedures are pure functions of their inputs and a seeded stream
// from the RNG port; no global random state is ever read.
type RandomizationEngine struct {
	rngPort   ports.RNGPort
	maxTrials int
}

// NewRandomizationEngine creates an engine with default trial limits
func NewRandomizationEngine(rngPort ports.RNGPort) *RandomizationEngine {
	return &RandomizationEngine{
		rngPort:   rngPort,
		maxTrials: MaxTrials,
	}
}

// SetMaxTrials configures the upper trial bound (clamped to MaxTrials)
func (e *RandomizationEngine) SetMaxTrials(n int) {
	if n < MinTrials {
		n = MinTrials
	}
	if n > MaxTrials {
		n = MaxTrials
	}
	e.maxTrials = n
}
