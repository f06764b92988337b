package main

import (
	"log"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"

	"gocausal/adapters/rng"
	"gocausal/adapters/stats/engine"
	"gocausal/api"
	"gocausal/app"
	"gocausal/internal/config"
	"gocausal/ui"
)

func main() {
	// Load .env file if present; environment variables win otherwise
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using environment variables")
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	gin.SetMode(cfg.Server.GinMode)

	eng := engine.NewRandomizationEngine(rng.NewAdapter())
	eng.SetMaxTrials(cfg.Simulation.MaxTrials)
	service := app.NewExperimentService(eng)

	// JSON API and HTML report UI run side by side on separate ports
	apiServer := api.NewServer(service)
	go func() {
		if err := apiServer.Start(api.Config{Port: cfg.Server.APIPort}); err != nil {
			log.Fatalf("API server failed: %v", err)
		}
	}()

	uiServer := ui.NewServer(service, ui.Config{
		Port:          cfg.Server.UIPort,
		DefaultTrials: cfg.Simulation.DefaultTrials,
		DefaultSeed:   cfg.Simulation.DefaultSeed,
	})
	if err := uiServer.Start(cfg.Server.UIPort); err != nil {
		log.Fatalf("UI server failed: %v", err)
	}
}
