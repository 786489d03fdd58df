package models

import (
	"encoding/json"
	"fmt"
	"sync"
)

// ResourceType identifies a kind of migratable resource.
type ResourceType string

const (
	ResourceDatabase   ResourceType = "database"
	ResourceCollection ResourceType = "collection"
	ResourceBucket     ResourceType = "bucket"
	ResourceFunction   ResourceType = "function"
	ResourceTeam       ResourceType = "team"
	ResourceUser       ResourceType = "user"
)

// MigrationResource is one node in the migration plan tree. Only databases
// carry children (their collections). TargetID and TargetName are editable
// between scan and run; OriginalData is the source resource's full metadata
// captured at scan time and is never mutated afterwards.
type MigrationResource struct {
	Type         ResourceType         `json:"type"`
	SourceID     string               `json:"source_id"`
	TargetID     string               `json:"target_id"`
	SourceName   string               `json:"source_name"`
	TargetName   string               `json:"target_name"`
	Enabled      bool                 `json:"enabled"`
	Children     []*MigrationResource `json:"children,omitempty"`
	OriginalData json.RawMessage      `json:"original_data,omitempty"`
}

// MigrationOptions gates the executor's phases.
type MigrationOptions struct {
	MigrateDatabases bool `json:"migrate_databases"`
	MigrateStorage   bool `json:"migrate_storage"`
	MigrateFunctions bool `json:"migrate_functions"`
	MigrateUsers     bool `json:"migrate_users"`
	MigrateTeams     bool `json:"migrate_teams"`
	MigrateDocuments bool `json:"migrate_documents"` // copy document rows, not just schema
	MigrateFiles     bool `json:"migrate_files"`     // copy file bytes, not just bucket metadata
	UseCloudProxy    bool `json:"use_cloud_proxy"`   // route file bytes through a destination-side worker
}

// AllOptions returns options with every phase enabled.
func AllOptions() MigrationOptions {
	return MigrationOptions{
		MigrateDatabases: true,
		MigrateStorage:   true,
		MigrateFunctions: true,
		MigrateUsers:     true,
		MigrateTeams:     true,
		MigrateDocuments: true,
		MigrateFiles:     true,
	}
}

// MigrationPlan is the user-reviewable set of resources selected for
// migration, produced once per run by the planner and consumed once by the
// executor.
type MigrationPlan struct {
	SourceID      string               `json:"source_id"`
	DestinationID string               `json:"destination_id"`
	Options       MigrationOptions     `json:"options"`
	Databases     []*MigrationResource `json:"databases"`
	Buckets       []*MigrationResource `json:"buckets"`
	Functions     []*MigrationResource `json:"functions"`
	Users         []*MigrationResource `json:"users"`
	Teams         []*MigrationResource `json:"teams"`
}

// PlanEdit is one UI edit to a plan node, addressed by resource type and
// source ID (plus the parent database for collections). Only the enabled
// flag, target ID and target name are mutable after scan.
type PlanEdit struct {
	Type       ResourceType `json:"type"`
	ParentID   string       `json:"parent_id,omitempty"`
	SourceID   string       `json:"source_id"`
	Enabled    *bool        `json:"enabled,omitempty"`
	TargetID   *string      `json:"target_id,omitempty"`
	TargetName *string      `json:"target_name,omitempty"`
}

// Apply mutates the plan according to the edit. Unknown resources are an
// error so the UI learns about stale plans instead of silently no-oping.
func (p *MigrationPlan) Apply(edit PlanEdit) error {
	res := p.find(edit)
	if res == nil {
		return fmt.Errorf("%s %q not found in plan", edit.Type, edit.SourceID)
	}
	if edit.Enabled != nil {
		res.Enabled = *edit.Enabled
	}
	if edit.TargetID != nil {
		res.TargetID = *edit.TargetID
	}
	if edit.TargetName != nil {
		res.TargetName = *edit.TargetName
	}
	return nil
}

func (p *MigrationPlan) find(edit PlanEdit) *MigrationResource {
	if edit.Type == ResourceCollection {
		for _, db := range p.Databases {
			if edit.ParentID != "" && db.SourceID != edit.ParentID {
				continue
			}
			for _, col := range db.Children {
				if col.SourceID == edit.SourceID {
					return col
				}
			}
		}
		return nil
	}

	var list []*MigrationResource
	switch edit.Type {
	case ResourceDatabase:
		list = p.Databases
	case ResourceBucket:
		list = p.Buckets
	case ResourceFunction:
		list = p.Functions
	case ResourceUser:
		list = p.Users
	case ResourceTeam:
		list = p.Teams
	}
	for _, r := range list {
		if r.SourceID == edit.SourceID {
			return r
		}
	}
	return nil
}

// TransferStatus is the per-item outcome of a migration attempt.
type TransferStatus string

const (
	TransferMigrated TransferStatus = "migrated"
	TransferSkipped  TransferStatus = "skipped"
	TransferFailed   TransferStatus = "failed"
)

// TransferResult records one attempted item for the run's summary report.
type TransferResult struct {
	ID      string         `json:"id"`
	Context string         `json:"context"` // e.g. "documents/<collectionId>", "files/<bucketId>"
	Status  TransferStatus `json:"status"`
	Error   string         `json:"error,omitempty"`
}

// Report accumulates per-item results for one run. It is kept in memory only
// and discarded with the job.
type Report struct {
	mu       sync.Mutex
	Results  []TransferResult `json:"results"`
	Migrated int              `json:"migrated"`
	Skipped  int              `json:"skipped"`
	Failed   int              `json:"failed"`
}

// Add records one result and bumps the matching counter.
func (r *Report) Add(res TransferResult) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.Results = append(r.Results, res)
	switch res.Status {
	case TransferMigrated:
		r.Migrated++
	case TransferSkipped:
		r.Skipped++
	case TransferFailed:
		r.Failed++
	}
}

// Summary returns the one-line counters for log output.
func (r *Report) Summary() string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return fmt.Sprintf("migrated: %d, skipped: %d, failed: %d", r.Migrated, r.Skipped, r.Failed)
}
