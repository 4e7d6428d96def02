// Package ui exposes completed audit runs over HTTP. The primary server
// (gin) fronts the live pipeline service; the read-only app (chi) serves
// persisted runs for headless consumers.
package ui

import (
	"fmt"
	"log"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"fairlens/app"
	"fairlens/domain/audit"
	"fairlens/domain/core"
	"fairlens/internal/errors"
	"fairlens/internal/explain"
)

// Server is the primary JSON surface over the audit service.
type Server struct {
	router  *gin.Engine
	service *app.AuditService
}

// NewServer wires the routes. mode is a gin mode name; empty keeps the
// current one.
func NewServer(service *app.AuditService, mode string) *Server {
	if mode != "" {
		gin.SetMode(mode)
	}
	s := &Server{
		router:  gin.Default(),
		service: service,
	}
	s.setupRoutes()
	return s
}

// setupRoutes configures the application routes
func (s *Server) setupRoutes() {
	s.router.GET("/healthz", s.handleHealthz)

	api := s.router.Group("/api/v1/audit")
	api.POST("/run", s.handleRunAudit)
	api.GET("/latest", s.handleLatest)
	api.GET("/runs", s.handleListRuns)
	api.GET("/runs/:id", s.handleGetRun)
	api.GET("/runs/:id/dataset", s.handleDataset)
	api.GET("/runs/:id/reports", s.handleReports)
	api.GET("/runs/:id/features", s.handleFeatures)
	api.GET("/runs/:id/explanation", s.handleExplanation)
	api.GET("/runs/:id/explanation.html", s.handleExplanationHTML)
}

// Start starts the web server
func (s *Server) Start(addr string) error {
	log.Printf("Starting fairlens UI on http://%s", addr)
	return s.router.Run(addr)
}

func (s *Server) handleHealthz(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

// handleRunAudit triggers a pipeline run. An empty body runs with the
// configured defaults; a JSON body carries per-run overrides.
func (s *Server) handleRunAudit(c *gin.Context) {
	var req app.RunRequest
	if c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{
				"error": fmt.Sprintf("invalid request body: %v", err),
				"code":  errors.CodeInvalidParameter,
			})
			return
		}
	}

	run, err := s.service.Run(c.Request.Context(), req)
	if err != nil {
		s.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, summarize(run))
}

func (s *Server) handleLatest(c *gin.Context) {
	run, err := s.service.Latest()
	if err != nil {
		s.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, summarize(run))
}

func (s *Server) handleListRuns(c *gin.Context) {
	runs := s.service.Runs()
	summaries := make([]runSummary, 0, len(runs))
	for _, run := range runs {
		summaries = append(summaries, summarize(run))
	}
	c.JSON(http.StatusOK, gin.H{"runs": summaries})
}

func (s *Server) handleGetRun(c *gin.Context) {
	id, ok := s.runID(c)
	if !ok {
		return
	}
	run, err := s.service.Get(id)
	if err != nil {
		s.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, run)
}

func (s *Server) handleDataset(c *gin.Context) {
	id, ok := s.runID(c)
	if !ok {
		return
	}
	offset, err := intQuery(c, "offset", 0)
	if err != nil {
		s.respondError(c, err)
		return
	}
	limit, err := intQuery(c, "limit", 0)
	if err != nil {
		s.respondError(c, err)
		return
	}

	page, err := s.service.Preview(id, offset, limit)
	if err != nil {
		s.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, page)
}

func (s *Server) handleReports(c *gin.Context) {
	id, ok := s.runID(c)
	if !ok {
		return
	}
	run, err := s.service.Get(id)
	if err != nil {
		s.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"run_id": run.ID, "reports": run.Reports})
}

func (s *Server) handleFeatures(c *gin.Context) {
	id, ok := s.runID(c)
	if !ok {
		return
	}
	view, err := s.service.Features(id)
	if err != nil {
		s.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, view)
}

func (s *Server) handleExplanation(c *gin.Context) {
	id, ok := s.runID(c)
	if !ok {
		return
	}
	expl, err := s.service.Explain(id)
	if err != nil {
		s.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, expl)
}

func (s *Server) handleExplanationHTML(c *gin.Context) {
	id, ok := s.runID(c)
	if !ok {
		return
	}
	expl, err := s.service.Explain(id)
	if err != nil {
		s.respondError(c, err)
		return
	}
	c.Data(http.StatusOK, "text/html; charset=utf-8", explain.HTML(expl.Summaries))
}

// runSummary is the headline view of one run: which families trained and
// each one's recall gap.
type runSummary struct {
	ID           core.RunID            `json:"id"`
	Fingerprint  core.Fingerprint      `json:"fingerprint"`
	Seed         int64                 `json:"seed"`
	TestFraction float64               `json:"test_fraction"`
	TrainSize    int                   `json:"train_size"`
	TestSize     int                   `json:"test_size"`
	Families     []string              `json:"families"`
	RecallGaps   map[string]audit.Rate `json:"recall_gaps"`
	Failures     []app.TrainingFailure `json:"failures,omitempty"`
	CreatedAt    core.Timestamp        `json:"created_at"`
	DurationMs   int64                 `json:"duration_ms"`
}

func summarize(run *app.AuditRun) runSummary {
	s := runSummary{
		ID:           run.ID,
		Fingerprint:  run.Fingerprint,
		Seed:         run.Seed,
		TestFraction: run.TestFraction,
		TrainSize:    run.TrainSize,
		TestSize:     run.TestSize,
		RecallGaps:   make(map[string]audit.Rate, len(run.Reports)),
		Failures:     run.Failures,
		CreatedAt:    run.CreatedAt,
		DurationMs:   run.DurationMs,
	}
	for _, rep := range run.Reports {
		s.Families = append(s.Families, rep.Family)
		s.RecallGaps[rep.Family] = rep.RecallGap
	}
	return s
}

func (s *Server) runID(c *gin.Context) (core.RunID, bool) {
	id, err := core.ParseRunID(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "run id is required", "code": errors.CodeInvalidParameter})
		return "", false
	}
	return id, true
}

func intQuery(c *gin.Context, name string, fallback int) (int, error) {
	raw := c.Query(name)
	if raw == "" {
		return fallback, nil
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return 0, core.NewInvalidParameterError(name, fmt.Sprintf("must be an integer, got %q", raw))
	}
	return v, nil
}

func (s *Server) respondError(c *gin.Context, err error) {
	appErr := errors.FromDomain(err)
	c.JSON(statusFor(appErr.Code), gin.H{"error": appErr.Message, "code": appErr.Code})
}

// statusFor maps service error codes onto HTTP statuses for both entrypoints.
func statusFor(code string) int {
	switch code {
	case errors.CodeInvalidParameter, errors.CodeConfigInvalid:
		return http.StatusBadRequest
	case errors.CodeNotFound:
		return http.StatusNotFound
	case errors.CodeDataUnavailable:
		return http.StatusBadGateway
	case errors.CodeInsufficientData, errors.CodeTrainingFailed:
		return http.StatusUnprocessableEntity
	default:
		return http.StatusInternalServerError
	}
}
