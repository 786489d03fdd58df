package migration

import (
	"encoding/json"
	"fmt"

	"github.com/baasworks/migration-studio/internal/backend"
	"github.com/baasworks/migration-studio/internal/models"
)

// Scan lists every enabled resource category from the source project and
// builds the editable migration plan. Defaults are a pure copy: target IDs
// and names equal the source's, every node enabled. The destination is never
// touched. Any listing error propagates: the scan fully succeeds or the
// caller surfaces the failure; no partial plan is returned.
func Scan(src *backend.Client, srcID, dstID string, opts models.MigrationOptions, logger func(string)) (*models.MigrationPlan, error) {
	plan := &models.MigrationPlan{
		SourceID:      srcID,
		DestinationID: dstID,
		Options:       opts,
	}

	if opts.MigrateDatabases {
		logger("Scanning databases...")
		dbs, err := src.ListDatabases()
		if err != nil {
			return nil, fmt.Errorf("databases: %w", err)
		}
		for _, db := range dbs {
			node, err := planNode(models.ResourceDatabase, db.ID, db.Name, db)
			if err != nil {
				return nil, err
			}
			cols, err := src.ListCollections(db.ID)
			if err != nil {
				return nil, fmt.Errorf("collections of %s: %w", db.ID, err)
			}
			for _, col := range cols {
				child, err := planNode(models.ResourceCollection, col.ID, col.Name, col)
				if err != nil {
					return nil, err
				}
				node.Children = append(node.Children, child)
			}
			logger(fmt.Sprintf("  %s: %d collections", db.Name, len(cols)))
			plan.Databases = append(plan.Databases, node)
		}
		logger(fmt.Sprintf("  %d databases", len(dbs)))
	}

	if opts.MigrateStorage {
		logger("Scanning buckets...")
		buckets, err := src.ListBuckets()
		if err != nil {
			return nil, fmt.Errorf("buckets: %w", err)
		}
		for _, b := range buckets {
			node, err := planNode(models.ResourceBucket, b.ID, b.Name, b)
			if err != nil {
				return nil, err
			}
			plan.Buckets = append(plan.Buckets, node)
		}
		logger(fmt.Sprintf("  %d buckets", len(buckets)))
	}

	if opts.MigrateFunctions {
		logger("Scanning functions...")
		fns, err := src.ListFunctions()
		if err != nil {
			return nil, fmt.Errorf("functions: %w", err)
		}
		for _, fn := range fns {
			node, err := planNode(models.ResourceFunction, fn.ID, fn.Name, fn)
			if err != nil {
				return nil, err
			}
			plan.Functions = append(plan.Functions, node)
		}
		logger(fmt.Sprintf("  %d functions", len(fns)))
	}

	if opts.MigrateUsers {
		logger("Scanning users...")
		users, err := src.ListAllUsers()
		if err != nil {
			return nil, fmt.Errorf("users: %w", err)
		}
		for _, u := range users {
			name := u.Name
			if name == "" {
				name = u.Email
			}
			node, err := planNode(models.ResourceUser, u.ID, name, u)
			if err != nil {
				return nil, err
			}
			plan.Users = append(plan.Users, node)
		}
		logger(fmt.Sprintf("  %d users", len(users)))
	}

	if opts.MigrateTeams {
		logger("Scanning teams...")
		teams, err := src.ListTeams()
		if err != nil {
			return nil, fmt.Errorf("teams: %w", err)
		}
		for _, t := range teams {
			node, err := planNode(models.ResourceTeam, t.ID, t.Name, t)
			if err != nil {
				return nil, err
			}
			plan.Teams = append(plan.Teams, node)
		}
		logger(fmt.Sprintf("  %d teams", len(teams)))
	}

	return plan, nil
}

// planNode builds one plan tree node with copy defaults and the source
// metadata snapshotted for faithful recreation at run time.
func planNode(t models.ResourceType, id, name string, original interface{}) (*models.MigrationResource, error) {
	raw, err := json.Marshal(original)
	if err != nil {
		return nil, fmt.Errorf("snapshotting %s %s: %w", t, id, err)
	}
	return &models.MigrationResource{
		Type:         t,
		SourceID:     id,
		TargetID:     id,
		SourceName:   name,
		TargetName:   name,
		Enabled:      true,
		OriginalData: raw,
	}, nil
}
