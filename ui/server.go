package ui

import (
	"fmt"
	"log"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"gocausal/app"
	"gocausal/internal/report"
	"gocausal/internal/testkit"
)

// Server renders experiment reports as HTML pages
type Server struct {
	router  *gin.Engine
	service *app.ExperimentService
	builder *report.Builder
	kit     *testkit.TestKit
	trials  int
	seed    int64
}

// Config holds UI server configuration
type Config struct {
	Port          string
	DefaultTrials int
	DefaultSeed   int64
}

// NewServer creates a new UI server
func NewServer(service *app.ExperimentService, config Config) *Server {
	s := &Server{
		router:  gin.Default(),
		service: service,
		builder: report.NewBuilder(),
		kit:     testkit.NewTestKit(),
		trials:  config.DefaultTrials,
		seed:    config.DefaultSeed,
	}
	s.setupRoutes()
	return s
}

func (s *Server) setupRoutes() {
	s.router.GET("/", s.handleIndex)
	s.router.GET("/simulation", s.handleSimulation)
	s.router.GET("/permutation", s.handlePermutation)
}

// Start runs the UI server on the configured port
func (s *Server) Start(port string) error {
	log.Printf("[UI] Listening on :%s", port)
	return s.router.Run(":" + port)
}

func (s *Server) handleIndex(c *gin.Context) {
	md := "# gocausal\n\n" +
		"Randomization inference over the seven-village teaching dataset.\n\n" +
		"- [Randomization distribution](/simulation)\n" +
		"- [Permutation test](/permutation)\n\n" +
		"Add `?trials=` and `?seed=` to either page to change the run.\n"
	s.renderPage(c, md)
}

// handleSimulation runs the randomization-distribution simulation on the
// demo roster and renders the report
func (s *Server) handleSimulation(c *gin.Context) {
	trials, seed, err := s.runParams(c)
	if err != nil {
		c.String(http.StatusBadRequest, err.Error())
		return
	}

	rep, err := s.service.RunSimulation(c.Request.Context(), app.SimulationRequest{
		Roster:       s.kit.VillageRoster(),
		TreatedCount: 2,
		Trials:       trials,
		Seed:         seed,
	})
	if err != nil {
		c.String(http.StatusInternalServerError, err.Error())
		return
	}
	s.renderPage(c, s.builder.SimulationMarkdown(rep))
}

// handlePermutation runs the permutation test on the realized demo data and
// renders the report
func (s *Server) handlePermutation(c *gin.Context) {
	trials, seed, err := s.runParams(c)
	if err != nil {
		c.String(http.StatusBadRequest, err.Error())
		return
	}

	rep, err := s.service.RunPermutationTest(c.Request.Context(), app.PermutationRequest{
		Sample: s.kit.VillageObservedSample(),
		Trials: trials,
		Seed:   seed,
	})
	if err != nil {
		c.String(http.StatusInternalServerError, err.Error())
		return
	}
	s.renderPage(c, s.builder.PermutationMarkdown(rep))
}

// runParams reads trials/seed overrides from the query string
func (s *Server) runParams(c *gin.Context) (int, int64, error) {
	trials := s.trials
	seed := s.seed

	if raw := c.Query("trials"); raw != "" {
		v, err := strconv.Atoi(raw)
		if err != nil || v <= 0 {
			return 0, 0, fmt.Errorf("invalid trials parameter: %q", raw)
		}
		trials = v
	}
	if raw := c.Query("seed"); raw != "" {
		v, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			return 0, 0, fmt.Errorf("invalid seed parameter: %q", raw)
		}
		seed = v
	}
	return trials, seed, nil
}

// renderPage wraps a markdown report in a minimal HTML shell
func (s *Server) renderPage(c *gin.Context, md string) {
	body := s.builder.ToHTML(md)
	page := fmt.Sprintf(`<!DOCTYPE html>
<html>
<head>
<title>gocausal</title>
<style>
body { font-family: sans-serif; max-width: 60em; margin: 2em auto; }
table { border-collapse: collapse; }
td, th { border: 1px solid #ccc; padding: 0.3em 0.8em; }
pre { background: #f5f5f5; padding: 1em; overflow-x: auto; }
</style>
</head>
<body>
%s
</body>
</html>`, body)
	c.Data(http.StatusOK, "text/html; charset=utf-8", []byte(page))
}
