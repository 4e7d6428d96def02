package ui

import (
	"encoding/json"
	"log"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"fairlens/domain/core"
	"fairlens/internal/errors"
	"fairlens/ports"
)

// App is the read-only entrypoint over persisted runs. It reads straight
// from the repository, so headless consumers can query run history without
// the pipeline process.
type App struct {
	router *chi.Mux
	repo   ports.RunRepository
}

// NewApp creates the read-only application over a run repository.
func NewApp(repo ports.RunRepository) *App {
	app := &App{
		router: chi.NewRouter(),
		repo:   repo,
	}
	app.setupMiddleware()
	app.setupRoutes()
	return app
}

// setupMiddleware configures HTTP middleware
func (a *App) setupMiddleware() {
	a.router.Use(middleware.Logger)
	a.router.Use(middleware.Recoverer)
	a.router.Use(middleware.Compress(5))
}

// setupRoutes configures the application routes
func (a *App) setupRoutes() {
	a.router.Get("/healthz", a.handleHealthz)
	a.router.Get("/api/v1/audit/latest", a.handleLatest)
	a.router.Get("/api/v1/audit/runs", a.handleListRuns)
	a.router.Get("/api/v1/audit/runs/{id}", a.handleGetRun)
}

// Start starts the web server
func (a *App) Start(addr string) error {
	log.Printf("Starting fairlens read-only UI on http://%s", addr)
	return http.ListenAndServe(addr, a.router)
}

func (a *App) handleHealthz(w http.ResponseWriter, r *http.Request) {
	a.respondJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (a *App) handleLatest(w http.ResponseWriter, r *http.Request) {
	runs, err := a.repo.ListRecent(r.Context(), 1)
	if err != nil {
		a.respondError(w, err)
		return
	}
	if len(runs) == 0 {
		a.respondError(w, core.ErrRunNotFound)
		return
	}
	a.respondJSON(w, http.StatusOK, runs[0])
}

func (a *App) handleListRuns(w http.ResponseWriter, r *http.Request) {
	limit := 0
	if raw := r.URL.Query().Get("limit"); raw != "" {
		v, err := strconv.Atoi(raw)
		if err != nil {
			a.respondError(w, core.NewInvalidParameterError("limit", "must be an integer"))
			return
		}
		limit = v
	}

	runs, err := a.repo.ListRecent(r.Context(), limit)
	if err != nil {
		a.respondError(w, err)
		return
	}
	a.respondJSON(w, http.StatusOK, map[string]interface{}{"runs": runs})
}

func (a *App) handleGetRun(w http.ResponseWriter, r *http.Request) {
	id, err := core.ParseRunID(chi.URLParam(r, "id"))
	if err != nil {
		a.respondError(w, core.NewInvalidParameterError("id", "is required"))
		return
	}

	run, err := a.repo.Get(r.Context(), id)
	if err != nil {
		a.respondError(w, err)
		return
	}
	a.respondJSON(w, http.StatusOK, run)
}

func (a *App) respondJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Printf("[UI] Warning: could not encode response: %v", err)
	}
}

func (a *App) respondError(w http.ResponseWriter, err error) {
	appErr := errors.FromDomain(err)
	a.respondJSON(w, statusFor(appErr.Code), map[string]string{"error": appErr.Message, "code": appErr.Code})
}
