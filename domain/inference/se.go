package inference

import (
	"math"

	"gocausal/domain/core"
)

// StandardError implements the finite-population sampling variance of the
// difference-in-means ATE estimator under complete randomization of m
// treated among N units:
//
//	SE = sqrt( (1/(N-1)) * ( (m/(N-m))*Var(Y0) + ((N-m)/m)*Var(Y1) + 2*Cov(Y0,Y1) ) )
//
// The covariance of the potential outcomes is unobservable outside
// simulation, so this variant is only usable when both potential outcomes
// are known. Fails with a domain error instead of returning NaN when the
// bracketed expression is negative.
func StandardError(varY0, varY1, cov float64, n, m int) (float64, error) {
	if m <= 0 || m >= n {
		return 0, core.NewTreatedCountError(m, n)
	}
	if varY0 < 0 || varY1 < 0 {
		return 0, core.ErrNegativeVariance
	}
	if bound := math.Sqrt(varY0 * varY1); math.Abs(cov) > bound {
		// Implied correlation outside [-1, 1]: the inputs cannot describe
		// any real pair of potential-outcome distributions.
		return 0, core.NewCovarianceError(cov, bound)
	}

	nf, mf := float64(n), float64(m)
	bracket := (mf/(nf-mf))*varY0 + ((nf-mf)/mf)*varY1 + 2*cov
	if bracket < 0 {
		return 0, core.ErrNegativeVarianceBound
	}
	return math.Sqrt(bracket / (nf - 1)), nil
}

// StandardErrorConservative implements the conservative bound assuming the
// potential outcomes are perfectly correlated:
//
//	SE <= sqrt( Var(Y0)/(N-m) + Var(Y1)/m )
//
// This is the only variant usable on real data, where the cross-potential-
// outcome covariance is never observed.
func StandardErrorConservative(varY0, varY1 float64, n, m int) (float64, error) {
	if m <= 0 || m >= n {
		return 0, core.NewTreatedCountError(m, n)
	}
	if varY0 < 0 || varY1 < 0 {
		return 0, core.ErrNegativeVariance
	}
	return math.Sqrt(varY0/float64(n-m) + varY1/float64(m)), nil
}
