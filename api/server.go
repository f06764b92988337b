package api

import (
	"encoding/json"
	"log"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"gocausal/app"
	"gocausal/domain/design"
	"gocausal/internal/errors"
)

// Server exposes the resampling procedures as a JSON API
type Server struct {
	router  *chi.Mux
	service *app.ExperimentService
}

// Config holds API server configuration
type Config struct {
	Port string
}

// NewServer creates a new API server
func NewServer(service *app.ExperimentService) *Server {
	s := &Server{
		router:  chi.NewRouter(),
		service: service,
	}
	s.setupMiddleware()
	s.setupRoutes()
	return s
}

func (s *Server) setupMiddleware() {
	s.router.Use(middleware.Logger)
	s.router.Use(middleware.Recoverer)
	s.router.Use(middleware.Compress(5))
}

func (s *Server) setupRoutes() {
	s.router.Get("/healthz", s.handleHealth)
	s.router.Post("/simulate", s.handleSimulate)
	s.router.Post("/permutation-test", s.handlePermutationTest)
	s.router.Post("/standard-error", s.handleStandardError)
}

// Start runs the API server on the configured port
func (s *Server) Start(config Config) error {
	log.Printf("[API] Listening on :%s", config.Port)
	return http.ListenAndServe(":"+config.Port, s.router)
}

// Router returns the underlying router for tests
func (s *Server) Router() http.Handler {
	return s.router
}

// simulateRequest is the wire form of a simulation run
type simulateRequest struct {
	Units        []design.Unit `json:"units"`
	TreatedCount int           `json:"treated_count"`
	Trials       int           `json:"trials"`
	Seed         int64         `json:"seed"`
}

func (s *Server) handleSimulate(w http.ResponseWriter, r *http.Request) {
	var req simulateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.writeError(w, errors.InvalidInput("malformed request body"))
		return
	}

	roster, err := design.NewRoster(req.Units)
	if err != nil {
		s.writeError(w, errors.WithCode(errors.CodeInvalidInput, err))
		return
	}

	report, err := s.service.RunSimulation(r.Context(), app.SimulationRequest{
		Roster:       roster,
		TreatedCount: req.TreatedCount,
		Trials:       req.Trials,
		Seed:         req.Seed,
	})
	if err != nil {
		s.writeError(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, report)
}

// permutationRequest is the wire form of a permutation test
type permutationRequest struct {
	Outcomes  []float64 `json:"outcomes"`
	Treatment []int     `json:"treatment"`
	Trials    int       `json:"trials"`
	Seed      int64     `json:"seed"`
}

func (s *Server) handlePermutationTest(w http.ResponseWriter, r *http.Request) {
	var req permutationRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.writeError(w, errors.InvalidInput("malformed request body"))
		return
	}

	report, err := s.service.RunPermutationTest(r.Context(), app.PermutationRequest{
		Sample: &design.ObservedSample{Outcomes: req.Outcomes, Treatment: req.Treatment},
		Trials: req.Trials,
		Seed:   req.Seed,
	})
	if err != nil {
		s.writeError(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, report)
}

// standardErrorRequest is the wire form of a closed-form SE computation
type standardErrorRequest struct {
	VarY0        float64 `json:"var_y0"`
	VarY1        float64 `json:"var_y1"`
	Cov          float64 `json:"cov"`
	RosterSize   int     `json:"roster_size"`
	TreatedCount int     `json:"treated_count"`
	Conservative bool    `json:"conservative"`
}

func (s *Server) handleStandardError(w http.ResponseWriter, r *http.Request) {
	var req standardErrorRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.writeError(w, errors.InvalidInput("malformed request body"))
		return
	}

	se, err := s.service.EstimateStandardError(app.StandardErrorRequest{
		VarY0:        req.VarY0,
		VarY1:        req.VarY1,
		Cov:          req.Cov,
		RosterSize:   req.RosterSize,
		TreatedCount: req.TreatedCount,
		Conservative: req.Conservative,
	})
	if err != nil {
		s.writeError(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, map[string]float64{"standard_error": se})
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) writeJSON(w http.ResponseWriter, status int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		log.Printf("[API] Failed to encode response: %v", err)
	}
}

// writeError maps the structured error taxonomy to HTTP status codes
func (s *Server) writeError(w http.ResponseWriter, err error) {
	status := http.StatusInternalServerError
	switch errors.GetCode(err) {
	case errors.CodeInvalidInput, errors.CodeInvalidDomain:
		status = http.StatusBadRequest
	case errors.CodeNotFound:
		status = http.StatusNotFound
	}
	s.writeJSON(w, status, map[string]string{
		"code":  errors.GetCode(err),
		"error": err.Error(),
	})
}
