package migration

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/baasworks/migration-studio/internal/backend"
	"github.com/baasworks/migration-studio/internal/checkpoint"
	"github.com/baasworks/migration-studio/internal/models"
)

const (
	documentPageSize = 100
	filePageSize     = 50
)

// ErrStopped is returned when the run was cancelled by the user. It is a
// distinct terminal condition from failure: checkpoints written so far stay
// valid for a later resume.
var ErrStopped = errors.New("migration stopped by user")

// Executor walks a migration plan in strict dependency order, creating
// resources on the destination with the idempotent get-then-create pattern
// and recording per-item outcomes. Per-item failures log and continue; only
// cancellation and setup errors unwind the run.
type Executor struct {
	srcProject *models.Project
	src        *backend.Client
	dst        *backend.Client
	store      checkpoint.Store
	log        func(string)
	report     *models.Report
}

// NewExecutor builds an executor for one source/destination project pair.
func NewExecutor(src, dst *models.Project, store checkpoint.Store, logger func(string)) *Executor {
	return &Executor{
		srcProject: src,
		src:        backend.NewClient(src),
		dst:        backend.NewClient(dst),
		store:      store,
		log:        logger,
	}
}

// Run executes the plan. With resume=false all checkpoints for the pair are
// cleared first; with resume=true document and file streams continue after
// their saved cursors. Phases run in fixed order, each gated by its option
// flag. On full success the pair's checkpoints are cleared.
func (e *Executor) Run(ctx context.Context, plan *models.MigrationPlan, resume bool) (*models.Report, error) {
	e.report = &models.Report{}

	if !resume {
		if err := e.store.Clear(); err != nil {
			return e.report, fmt.Errorf("clearing checkpoints: %w", err)
		}
	} else if has, err := e.store.HasCheckpoint(); err == nil && has {
		e.log("Resuming from saved checkpoints")
	}

	err := e.runPhases(ctx, plan)
	if err != nil {
		if errors.Is(err, context.Canceled) || errors.Is(err, ErrStopped) {
			e.log("")
			e.log("=== Migration stopped (" + e.report.Summary() + ") ===")
			return e.report, ErrStopped
		}
		return e.report, err
	}

	// A completed run invalidates the pair's cursors.
	if err := e.store.Clear(); err != nil {
		e.log(fmt.Sprintf("WARNING: clearing checkpoints after completion: %v", err))
	}
	e.log("")
	e.log("=== Migration complete (" + e.report.Summary() + ") ===")
	return e.report, nil
}

func (e *Executor) runPhases(ctx context.Context, plan *models.MigrationPlan) error {
	if plan.Options.MigrateDatabases {
		if err := e.migrateDatabases(ctx, plan); err != nil {
			return err
		}
	}
	if plan.Options.MigrateStorage {
		if err := e.migrateStorage(ctx, plan); err != nil {
			return err
		}
	}
	if plan.Options.MigrateFunctions {
		if err := e.migrateFunctions(ctx, plan); err != nil {
			return err
		}
	}
	if plan.Options.MigrateUsers {
		if err := e.migrateUsers(ctx, plan); err != nil {
			return err
		}
	}
	if plan.Options.MigrateTeams {
		if err := e.migrateTeams(ctx, plan); err != nil {
			return err
		}
	}
	return nil
}

// checkStop observes the cancellation context. Called at the top of every
// per-item and per-batch loop so a cancel takes effect before the next
// destination write.
func (e *Executor) checkStop(ctx context.Context) error {
	if ctx.Err() != nil {
		return ErrStopped
	}
	return nil
}

// 1. Databases, then collections, attributes, indexes and finally documents.
func (e *Executor) migrateDatabases(ctx context.Context, plan *models.MigrationPlan) error {
	e.log("=== Migrating databases ===")
	for _, dbRes := range plan.Databases {
		if err := e.checkStop(ctx); err != nil {
			return err
		}
		if !dbRes.Enabled {
			e.log(fmt.Sprintf("  SKIP (disabled): %s", dbRes.SourceName))
			continue
		}
		if err := e.migrateDatabase(ctx, dbRes); err != nil {
			return err
		}
	}

	// Documents stream only after every enabled schema exists, so
	// relationship targets plausibly resolve.
	if plan.Options.MigrateDocuments {
		e.log("")
		e.log("=== Migrating documents ===")
		for _, dbRes := range plan.Databases {
			if !dbRes.Enabled {
				continue
			}
			for _, colRes := range dbRes.Children {
				if err := e.checkStop(ctx); err != nil {
					return err
				}
				if !colRes.Enabled {
					continue
				}
				if err := e.migrateDocuments(ctx, dbRes, colRes); err != nil {
					return err
				}
			}
		}
	}
	return nil
}

func (e *Executor) migrateDatabase(ctx context.Context, dbRes *models.MigrationResource) error {
	switch _, err := e.dst.GetDatabase(dbRes.TargetID); {
	case err == nil:
		e.log(fmt.Sprintf("  SKIP (exists): %s", dbRes.TargetName))
	case backend.IsNotFound(err):
		if _, err := e.dst.CreateDatabase(dbRes.TargetID, dbRes.TargetName); err != nil {
			if !backend.IsConflict(err) {
				e.log(fmt.Sprintf("  FAIL: %s: %v", dbRes.TargetName, err))
				return nil
			}
			e.log(fmt.Sprintf("  SKIP (exists): %s", dbRes.TargetName))
		} else {
			e.log(fmt.Sprintf("  CREATED: %s (%s)", dbRes.TargetName, dbRes.TargetID))
		}
	default:
		e.log(fmt.Sprintf("  FAIL: %s: %v", dbRes.TargetName, err))
		return nil
	}

	for _, colRes := range dbRes.Children {
		if err := e.checkStop(ctx); err != nil {
			return err
		}
		if !colRes.Enabled {
			e.log(fmt.Sprintf("    SKIP (disabled): %s", colRes.SourceName))
			continue
		}
		if err := e.migrateCollection(ctx, dbRes, colRes); err != nil {
			return err
		}
	}
	return nil
}

func (e *Executor) migrateCollection(ctx context.Context, dbRes, colRes *models.MigrationResource) error {
	var col backend.Collection
	if err := json.Unmarshal(colRes.OriginalData, &col); err != nil {
		e.log(fmt.Sprintf("    FAIL: %s: bad snapshot: %v", colRes.SourceName, err))
		return nil
	}

	switch _, err := e.dst.GetCollection(dbRes.TargetID, colRes.TargetID); {
	case err == nil:
		e.log(fmt.Sprintf("    SKIP (exists): %s", colRes.TargetName))
	case backend.IsNotFound(err):
		if _, err := e.dst.CreateCollection(dbRes.TargetID, colRes.TargetID, colRes.TargetName, col); err != nil {
			if !backend.IsConflict(err) {
				e.log(fmt.Sprintf("    FAIL: %s: %v", colRes.TargetName, err))
				return nil
			}
			e.log(fmt.Sprintf("    SKIP (exists): %s", colRes.TargetName))
		} else {
			e.log(fmt.Sprintf("    CREATED: %s (%s)", colRes.TargetName, colRes.TargetID))
		}
	default:
		e.log(fmt.Sprintf("    FAIL: %s: %v", colRes.TargetName, err))
		return nil
	}

	if err := e.migrateAttributes(ctx, dbRes, colRes); err != nil {
		return err
	}
	return e.migrateIndexes(ctx, dbRes, colRes)
}

// 2. Storage buckets, then files.
func (e *Executor) migrateStorage(ctx context.Context, plan *models.MigrationPlan) error {
	e.log("")
	e.log("=== Migrating storage ===")
	for _, bRes := range plan.Buckets {
		if err := e.checkStop(ctx); err != nil {
			return err
		}
		if !bRes.Enabled {
			e.log(fmt.Sprintf("  SKIP (disabled): %s", bRes.SourceName))
			continue
		}
		e.migrateBucket(bRes)
	}

	if !plan.Options.MigrateFiles {
		return nil
	}

	// File bytes optionally travel through a destination-deployed worker so
	// large payloads never pass through this process. Worker deployment
	// failure falls back to direct transfer; teardown runs regardless of how
	// the phase ends.
	var worker *workerDispatcher
	if plan.Options.UseCloudProxy {
		w, err := deployTransferWorker(ctx, e.dst, e.log)
		if err != nil {
			if errors.Is(err, context.Canceled) || errors.Is(err, ErrStopped) {
				return ErrStopped
			}
			e.log(fmt.Sprintf("  WARNING: worker deployment failed, falling back to direct transfer: %v", err))
		} else {
			worker = w
			defer worker.teardown()
		}
	}

	e.log("")
	e.log("=== Migrating files ===")
	for _, bRes := range plan.Buckets {
		if !bRes.Enabled {
			continue
		}
		if err := e.checkStop(ctx); err != nil {
			return err
		}
		if err := e.migrateFiles(ctx, bRes, worker); err != nil {
			return err
		}
	}
	return nil
}

func (e *Executor) migrateBucket(bRes *models.MigrationResource) {
	var bucket backend.Bucket
	if err := json.Unmarshal(bRes.OriginalData, &bucket); err != nil {
		e.log(fmt.Sprintf("  FAIL: %s: bad snapshot: %v", bRes.SourceName, err))
		return
	}

	switch _, err := e.dst.GetBucket(bRes.TargetID); {
	case err == nil:
		e.log(fmt.Sprintf("  SKIP (exists): %s", bRes.TargetName))
	case backend.IsNotFound(err):
		if _, err := e.dst.CreateBucket(bRes.TargetID, bRes.TargetName, bucket); err != nil {
			if !backend.IsConflict(err) {
				e.log(fmt.Sprintf("  FAIL: %s: %v", bRes.TargetName, err))
				return
			}
			e.log(fmt.Sprintf("  SKIP (exists): %s", bRes.TargetName))
		} else {
			e.log(fmt.Sprintf("  CREATED: %s (%s)", bRes.TargetName, bRes.TargetID))
		}
	default:
		e.log(fmt.Sprintf("  FAIL: %s: %v", bRes.TargetName, err))
	}
}

// 3. Functions, their variables, then the latest ready deployment.
func (e *Executor) migrateFunctions(ctx context.Context, plan *models.MigrationPlan) error {
	e.log("")
	e.log("=== Migrating functions ===")
	for _, fnRes := range plan.Functions {
		if err := e.checkStop(ctx); err != nil {
			return err
		}
		if !fnRes.Enabled {
			e.log(fmt.Sprintf("  SKIP (disabled): %s", fnRes.SourceName))
			continue
		}
		if err := e.migrateFunction(ctx, fnRes); err != nil {
			return err
		}
	}
	return nil
}

func (e *Executor) migrateFunction(ctx context.Context, fnRes *models.MigrationResource) error {
	var fn backend.Function
	if err := json.Unmarshal(fnRes.OriginalData, &fn); err != nil {
		e.log(fmt.Sprintf("  FAIL: %s: bad snapshot: %v", fnRes.SourceName, err))
		return nil
	}

	switch _, err := e.dst.GetFunction(fnRes.TargetID); {
	case err == nil:
		e.log(fmt.Sprintf("  SKIP (exists): %s", fnRes.TargetName))
	case backend.IsNotFound(err):
		if _, err := e.dst.CreateFunction(fnRes.TargetID, fnRes.TargetName, fn); err != nil {
			if !backend.IsConflict(err) {
				e.log(fmt.Sprintf("  FAIL: %s: %v", fnRes.TargetName, err))
				return nil
			}
			e.log(fmt.Sprintf("  SKIP (exists): %s", fnRes.TargetName))
		} else {
			e.log(fmt.Sprintf("  CREATED: %s (%s)", fnRes.TargetName, fnRes.TargetID))
		}
	default:
		e.log(fmt.Sprintf("  FAIL: %s: %v", fnRes.TargetName, err))
		return nil
	}

	// Variables: create the ones missing at the destination.
	srcVars, err := e.src.ListVariables(fnRes.SourceID)
	if err != nil {
		e.log(fmt.Sprintf("    FAIL: variables of %s: %v", fnRes.SourceName, err))
	} else {
		existing := map[string]bool{}
		if dstVars, err := e.dst.ListVariables(fnRes.TargetID); err == nil {
			for _, v := range dstVars {
				existing[v.Key] = true
			}
		}
		for _, v := range srcVars {
			if err := e.checkStop(ctx); err != nil {
				return err
			}
			if existing[v.Key] {
				e.log(fmt.Sprintf("    SKIP (exists): variable %s", v.Key))
				continue
			}
			if err := e.dst.CreateVariable(fnRes.TargetID, v.Key, v.Value); err != nil {
				if !backend.IsConflict(err) {
					e.log(fmt.Sprintf("    FAIL: variable %s: %v", v.Key, err))
					continue
				}
				e.log(fmt.Sprintf("    SKIP (exists): variable %s", v.Key))
				continue
			}
			e.log(fmt.Sprintf("    CREATED: variable %s", v.Key))
		}
	}

	// Deployment: carry over the most recent ready build, activated.
	deps, err := e.src.ListDeployments(fnRes.SourceID)
	if err != nil {
		e.log(fmt.Sprintf("    FAIL: deployments of %s: %v", fnRes.SourceName, err))
		return nil
	}
	var src *backend.Deployment
	for i := range deps {
		if deps[i].Status == backend.DeploymentReady {
			src = &deps[i]
			break
		}
	}
	if src == nil {
		e.log(fmt.Sprintf("    SKIP: %s has no ready deployment", fnRes.SourceName))
		return nil
	}
	if err := e.checkStop(ctx); err != nil {
		return err
	}
	archive, err := e.src.DownloadDeployment(fnRes.SourceID, src.ID)
	if err != nil {
		e.log(fmt.Sprintf("    FAIL: downloading deployment %s: %v", src.ID, err))
		return nil
	}
	entrypoint := src.Entrypoint
	if entrypoint == "" {
		entrypoint = fn.Entrypoint
	}
	if _, err := e.dst.CreateDeployment(fnRes.TargetID, archive, entrypoint, fn.Commands, true); err != nil {
		e.log(fmt.Sprintf("    FAIL: deployment of %s: %v", fnRes.TargetName, err))
		return nil
	}
	e.log(fmt.Sprintf("    DEPLOYED: %s (%d bytes)", fnRes.TargetName, len(archive)))
	return nil
}

// 4. Users.
func (e *Executor) migrateUsers(ctx context.Context, plan *models.MigrationPlan) error {
	e.log("")
	e.log("=== Migrating users ===")
	for _, uRes := range plan.Users {
		if err := e.checkStop(ctx); err != nil {
			return err
		}
		if !uRes.Enabled {
			e.log(fmt.Sprintf("  SKIP (disabled): %s", uRes.SourceName))
			continue
		}
		var user backend.User
		if err := json.Unmarshal(uRes.OriginalData, &user); err != nil {
			e.log(fmt.Sprintf("  FAIL: %s: bad snapshot: %v", uRes.SourceName, err))
			continue
		}
		switch _, err := e.dst.GetUser(uRes.TargetID); {
		case err == nil:
			e.log(fmt.Sprintf("  SKIP (exists): %s", uRes.SourceName))
		case backend.IsNotFound(err):
			if _, err := e.dst.CreateUser(uRes.TargetID, user); err != nil {
				if !backend.IsConflict(err) {
					e.log(fmt.Sprintf("  FAIL: %s: %v", uRes.SourceName, err))
					continue
				}
				e.log(fmt.Sprintf("  SKIP (exists): %s", uRes.SourceName))
			} else {
				e.log(fmt.Sprintf("  CREATED: %s (%s)", uRes.SourceName, uRes.TargetID))
			}
		default:
			e.log(fmt.Sprintf("  FAIL: %s: %v", uRes.SourceName, err))
		}
	}
	return nil
}

// 5. Teams, then memberships.
func (e *Executor) migrateTeams(ctx context.Context, plan *models.MigrationPlan) error {
	e.log("")
	e.log("=== Migrating teams ===")
	for _, tRes := range plan.Teams {
		if err := e.checkStop(ctx); err != nil {
			return err
		}
		if !tRes.Enabled {
			e.log(fmt.Sprintf("  SKIP (disabled): %s", tRes.SourceName))
			continue
		}

		switch _, err := e.dst.GetTeam(tRes.TargetID); {
		case err == nil:
			e.log(fmt.Sprintf("  SKIP (exists): %s", tRes.TargetName))
		case backend.IsNotFound(err):
			if _, err := e.dst.CreateTeam(tRes.TargetID, tRes.TargetName); err != nil {
				if !backend.IsConflict(err) {
					e.log(fmt.Sprintf("  FAIL: %s: %v", tRes.TargetName, err))
					continue
				}
				e.log(fmt.Sprintf("  SKIP (exists): %s", tRes.TargetName))
			} else {
				e.log(fmt.Sprintf("  CREATED: %s (%s)", tRes.TargetName, tRes.TargetID))
			}
		default:
			e.log(fmt.Sprintf("  FAIL: %s: %v", tRes.TargetName, err))
			continue
		}

		members, err := e.src.ListMemberships(tRes.SourceID)
		if err != nil {
			e.log(fmt.Sprintf("    FAIL: memberships of %s: %v", tRes.SourceName, err))
			continue
		}
		existing := map[string]bool{}
		if dstMembers, err := e.dst.ListMemberships(tRes.TargetID); err == nil {
			for _, m := range dstMembers {
				existing[m.UserID] = true
			}
		}
		for _, m := range members {
			if err := e.checkStop(ctx); err != nil {
				return err
			}
			if existing[m.UserID] {
				e.log(fmt.Sprintf("    SKIP (exists): member %s", m.UserID))
				continue
			}
			if err := e.dst.CreateMembership(tRes.TargetID, m); err != nil {
				if !backend.IsConflict(err) {
					e.log(fmt.Sprintf("    FAIL: member %s: %v", m.UserID, err))
					continue
				}
				e.log(fmt.Sprintf("    SKIP (exists): member %s", m.UserID))
				continue
			}
			e.log(fmt.Sprintf("    ADDED: member %s", m.UserID))
		}
	}
	return nil
}
