package inference

import (
	"errors"
	"math"
	"testing"

	"gocausal/domain/core"
)

func TestStandardError(t *testing.T) {
	t.Run("matches the closed form", func(t *testing.T) {
		got, err := StandardError(4, 16, 0, 7, 2)
		if err != nil {
			t.Fatalf("Unexpected error: %v", err)
		}
		want := math.Sqrt((1.0 / 6.0) * ((2.0/5.0)*4 + (5.0/2.0)*16))
		if got != want {
			t.Errorf("Expected %v, got %v", want, got)
		}
	})

	t.Run("positive covariance widens the interval", func(t *testing.T) {
		base, err := StandardError(4, 16, 0, 7, 2)
		if err != nil {
			t.Fatalf("Unexpected error: %v", err)
		}
		wide, err := StandardError(4, 16, 6, 7, 2)
		if err != nil {
			t.Fatalf("Unexpected error: %v", err)
		}
		if wide <= base {
			t.Errorf("Expected SE with cov=6 (%g) to exceed SE with cov=0 (%g)", wide, base)
		}
	})

	t.Run("m out of range", func(t *testing.T) {
		for _, m := range []int{0, -1, 7, 10} {
			if _, err := StandardError(4, 16, 0, 7, m); err == nil {
				t.Errorf("Expected error for m=%d", m)
			}
		}
	})

	t.Run("negative variance rejected", func(t *testing.T) {
		if _, err := StandardError(-1, 16, 0, 7, 2); !errors.Is(err, core.ErrNegativeVariance) {
			t.Errorf("Expected ErrNegativeVariance, got %v", err)
		}
	})

	t.Run("covariance outside correlation range rejected", func(t *testing.T) {
		// sqrt(4*16) = 8, so |cov| > 8 implies |corr| > 1.
		_, err := StandardError(4, 16, 9, 7, 2)
		if !errors.Is(err, core.ErrCovarianceOutOfRange) {
			t.Errorf("Expected ErrCovarianceOutOfRange, got %v", err)
		}
		_, err = StandardError(4, 16, -8.5, 7, 2)
		if !errors.Is(err, core.ErrCovarianceOutOfRange) {
			t.Errorf("Expected ErrCovarianceOutOfRange for negative cov, got %v", err)
		}
	})

	t.Run("never returns NaN", func(t *testing.T) {
		se, err := StandardError(0, 0, 0, 7, 2)
		if err != nil {
			t.Fatalf("Unexpected error: %v", err)
		}
		if math.IsNaN(se) || se != 0 {
			t.Errorf("Expected 0 for zero variances, got %v", se)
		}
	})
}

func TestStandardErrorConservative(t *testing.T) {
	t.Run("matches the bound", func(t *testing.T) {
		got, err := StandardErrorConservative(4, 16, 7, 2)
		if err != nil {
			t.Fatalf("Unexpected error: %v", err)
		}
		want := math.Sqrt(4.0/5.0 + 16.0/2.0)
		if got != want {
			t.Errorf("Expected %v, got %v", want, got)
		}
	})

	t.Run("m out of range", func(t *testing.T) {
		if _, err := StandardErrorConservative(4, 16, 7, 0); err == nil {
			t.Error("Expected error for m=0")
		}
		if _, err := StandardErrorConservative(4, 16, 7, 7); err == nil {
			t.Error("Expected error for m=N")
		}
	})

	t.Run("negative variance rejected", func(t *testing.T) {
		if _, err := StandardErrorConservative(4, -1, 7, 2); err == nil {
			t.Error("Expected error for negative variance")
		}
	})
}
