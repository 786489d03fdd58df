package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"sync"

	"github.com/go-chi/chi/v5"

	"github.com/baasworks/migration-studio/internal/backend"
	"github.com/baasworks/migration-studio/internal/migration"
	"github.com/baasworks/migration-studio/internal/models"
)

// PlanStore holds scanned plans between the scan and run steps, keyed by the
// scan job ID, plus the reports of completed runs keyed by the run job ID.
type PlanStore struct {
	mu      sync.RWMutex
	plans   map[string]*models.MigrationPlan
	reports map[string]*models.Report
}

func NewPlanStore() *PlanStore {
	return &PlanStore{
		plans:   make(map[string]*models.MigrationPlan),
		reports: make(map[string]*models.Report),
	}
}

func (ps *PlanStore) StorePlan(jobID string, plan *models.MigrationPlan) {
	ps.mu.Lock()
	defer ps.mu.Unlock()
	ps.plans[jobID] = plan
}

func (ps *PlanStore) GetPlan(jobID string) *models.MigrationPlan {
	ps.mu.RLock()
	defer ps.mu.RUnlock()
	return ps.plans[jobID]
}

func (ps *PlanStore) DeletePlan(jobID string) {
	ps.mu.Lock()
	defer ps.mu.Unlock()
	delete(ps.plans, jobID)
}

func (ps *PlanStore) StoreReport(jobID string, report *models.Report) {
	ps.mu.Lock()
	defer ps.mu.Unlock()
	ps.reports[jobID] = report
}

func (ps *PlanStore) GetReport(jobID string) *models.Report {
	ps.mu.RLock()
	defer ps.mu.RUnlock()
	return ps.reports[jobID]
}

// MigrationScanHandler starts an async scan of the source project.
func (s *Server) MigrationScanHandler(w http.ResponseWriter, r *http.Request) {
	var req struct {
		SourceID      string                  `json:"source_id"`
		DestinationID string                  `json:"destination_id"`
		Options       models.MigrationOptions `json:"options"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON: "+err.Error())
		return
	}

	src := s.Projects.Get(req.SourceID)
	if src == nil {
		writeError(w, http.StatusNotFound, "source project not found")
		return
	}
	if s.Projects.Get(req.DestinationID) == nil {
		writeError(w, http.StatusNotFound, "destination project not found")
		return
	}

	job := s.Jobs.Create("migration-scan", req.SourceID)

	go func() {
		client := backend.NewClient(src)
		plan, err := migration.Scan(client, req.SourceID, req.DestinationID, req.Options, job.AppendLog)
		if err != nil {
			job.AppendLog("ERROR: " + err.Error())
			job.Fail(err.Error())
			return
		}
		s.Plans.StorePlan(job.ID, plan)
		job.Complete()
	}()

	writeJSON(w, http.StatusAccepted, map[string]string{"job_id": job.ID})
}

// GetMigrationPlan returns the scanned plan for a completed scan job.
func (s *Server) GetMigrationPlan(w http.ResponseWriter, r *http.Request) {
	jobID := chi.URLParam(r, "jobId")

	job := s.Jobs.Get(jobID)
	if job == nil {
		writeError(w, http.StatusNotFound, "job not found")
		return
	}
	switch job.CurrentStatus() {
	case "running":
		writeJSON(w, http.StatusConflict, map[string]string{
			"status":  "running",
			"message": "scan is still in progress",
		})
		return
	case "failed":
		writeJSON(w, http.StatusOK, map[string]interface{}{
			"status": "failed",
			"error":  job.Error,
		})
		return
	}

	plan := s.Plans.GetPlan(jobID)
	if plan == nil {
		writeError(w, http.StatusNotFound, "plan not found")
		return
	}
	writeJSON(w, http.StatusOK, plan)
}

// EditMigrationPlan applies UI edits (enable/disable, rename target) to a
// scanned plan before execution.
func (s *Server) EditMigrationPlan(w http.ResponseWriter, r *http.Request) {
	jobID := chi.URLParam(r, "jobId")
	plan := s.Plans.GetPlan(jobID)
	if plan == nil {
		writeError(w, http.StatusNotFound, "plan not found")
		return
	}

	var req struct {
		Edits []models.PlanEdit `json:"edits"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON: "+err.Error())
		return
	}
	for _, edit := range req.Edits {
		if err := plan.Apply(edit); err != nil {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}
	}
	writeJSON(w, http.StatusOK, plan)
}

// MigrationRunHandler starts executing a previously scanned plan.
func (s *Server) MigrationRunHandler(w http.ResponseWriter, r *http.Request) {
	var req struct {
		PlanJobID string `json:"plan_job_id"`
		Resume    bool   `json:"resume"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON: "+err.Error())
		return
	}

	plan := s.Plans.GetPlan(req.PlanJobID)
	if plan == nil {
		writeError(w, http.StatusNotFound, "plan not found; run a scan first")
		return
	}
	src := s.Projects.Get(plan.SourceID)
	if src == nil {
		writeError(w, http.StatusNotFound, "source project not found")
		return
	}
	dst := s.Projects.Get(plan.DestinationID)
	if dst == nil {
		writeError(w, http.StatusNotFound, "destination project not found")
		return
	}

	store := s.checkpointStore(src, dst)

	job := s.Jobs.Create("migration-run", plan.DestinationID)
	exec := migration.NewExecutor(src, dst, store, job.AppendLog)

	go func() {
		report, err := exec.Run(job.Context(), plan, req.Resume)
		if report != nil {
			s.Plans.StoreReport(job.ID, report)
		}
		switch {
		case errors.Is(err, migration.ErrStopped):
			job.Stop()
		case err != nil:
			job.AppendLog("ERROR: " + err.Error())
			job.Fail(err.Error())
		default:
			job.Complete()
			// A completed plan is single-use; scan again for another run.
			s.Plans.DeletePlan(req.PlanJobID)
		}
	}()

	writeJSON(w, http.StatusAccepted, map[string]string{"job_id": job.ID})
}

// GetMigrationReport returns the per-item results of a finished run.
func (s *Server) GetMigrationReport(w http.ResponseWriter, r *http.Request) {
	jobID := chi.URLParam(r, "jobId")
	report := s.Plans.GetReport(jobID)
	if report == nil {
		writeError(w, http.StatusNotFound, "report not found")
		return
	}
	writeJSON(w, http.StatusOK, report)
}
