package config

import (
	"testing"
)

func TestLoad(t *testing.T) {
	t.Run("defaults", func(t *testing.T) {
		cfg, err := Load()
		if err != nil {
			t.Fatalf("Unexpected error: %v", err)
		}
		if cfg.Server.UIPort != "8080" || cfg.Server.APIPort != "8081" {
			t.Errorf("Unexpected default ports: %s/%s", cfg.Server.UIPort, cfg.Server.APIPort)
		}
		if cfg.Simulation.DefaultTrials != 10000 {
			t.Errorf("Expected default trials 10000, got %d", cfg.Simulation.DefaultTrials)
		}
		if cfg.Simulation.DefaultSeed != 42 {
			t.Errorf("Expected default seed 42, got %d", cfg.Simulation.DefaultSeed)
		}
	})

	t.Run("environment overrides", func(t *testing.T) {
		t.Setenv("PORT", "9090")
		t.Setenv("DEFAULT_TRIALS", "500")
		t.Setenv("DEFAULT_SEED", "-7")

		cfg, err := Load()
		if err != nil {
			t.Fatalf("Unexpected error: %v", err)
		}
		if cfg.Server.UIPort != "9090" {
			t.Errorf("Expected UI port 9090, got %s", cfg.Server.UIPort)
		}
		if cfg.Simulation.DefaultTrials != 500 {
			t.Errorf("Expected 500 trials, got %d", cfg.Simulation.DefaultTrials)
		}
		if cfg.Simulation.DefaultSeed != -7 {
			t.Errorf("Expected seed -7, got %d", cfg.Simulation.DefaultSeed)
		}
	})

	t.Run("invalid trial bounds rejected", func(t *testing.T) {
		t.Setenv("DEFAULT_TRIALS", "10000")
		t.Setenv("MAX_TRIALS", "100")

		if _, err := Load(); err == nil {
			t.Error("Expected error when MAX_TRIALS < DEFAULT_TRIALS")
		}
	})

	t.Run("malformed numbers fall back to defaults", func(t *testing.T) {
		t.Setenv("DEFAULT_TRIALS", "lots")

		cfg, err := Load()
		if err != nil {
			t.Fatalf("Unexpected error: %v", err)
		}
		if cfg.Simulation.DefaultTrials != 10000 {
			t.Errorf("Expected fallback to 10000 trials, got %d", cfg.Simulation.DefaultTrials)
		}
	})
}
