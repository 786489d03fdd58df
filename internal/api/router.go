package api

import (
	"encoding/json"
	"net/http"
	"sync"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/jmoiron/sqlx"

	"github.com/baasworks/migration-studio/internal/checkpoint"
	"github.com/baasworks/migration-studio/internal/models"
)

// Server holds shared state for all API handlers.
type Server struct {
	Projects *models.ProjectStore
	Jobs     *models.JobStore
	Plans    *PlanStore

	// CheckpointDB backs the pair-scoped checkpoint stores. Nil means
	// checkpoints live in memory only and runs are not resumable across
	// restarts.
	CheckpointDB *sqlx.DB

	mu        sync.Mutex
	memStores map[string]*checkpoint.MemoryStore
}

// checkpointStore returns the checkpoint store for a project pair. Without a
// database, memory stores are cached per pair so resume still works within
// the process lifetime.
func (s *Server) checkpointStore(src, dst *models.Project) checkpoint.Store {
	if s.CheckpointDB != nil {
		return checkpoint.NewSQLiteStore(s.CheckpointDB, src.ProjectID, dst.ProjectID)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.memStores == nil {
		s.memStores = make(map[string]*checkpoint.MemoryStore)
	}
	key := src.ProjectID + "|" + dst.ProjectID
	store, ok := s.memStores[key]
	if !ok {
		store = checkpoint.NewMemoryStore(src.ProjectID, dst.ProjectID)
		s.memStores[key] = store
	}
	return store
}

// NewRouter builds the chi router with all API routes.
func NewRouter(s *Server) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(corsMiddleware)

	r.Route("/api", func(r chi.Router) {
		// Projects
		r.Post("/projects", s.CreateProject)
		r.Get("/projects", s.ListProjects)
		r.Put("/projects/{id}", s.UpdateProject)
		r.Delete("/projects/{id}", s.DeleteProject)
		r.Post("/projects/{id}/test", s.TestProject)

		// Migration
		r.Post("/migrate/scan", s.MigrationScanHandler)
		r.Get("/migrate/plan/{jobId}", s.GetMigrationPlan)
		r.Patch("/migrate/plan/{jobId}", s.EditMigrationPlan)
		r.Post("/migrate/run", s.MigrationRunHandler)
		r.Get("/migrate/report/{jobId}", s.GetMigrationReport)

		// Jobs
		r.Get("/jobs", s.ListJobs)
		r.Get("/jobs/{id}", s.GetJob)
		r.Post("/jobs/{id}/cancel", s.CancelJob)
	})

	// WebSocket (outside /api to avoid JSON content-type assumptions)
	r.Get("/ws/jobs/{id}/logs", s.StreamJobLogs)

	return r
}

func corsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, PATCH, DELETE, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")
		if r.Method == "OPTIONS" {
			w.WriteHeader(http.StatusNoContent)
			return
		}
		next.ServeHTTP(w, r)
	})
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}
