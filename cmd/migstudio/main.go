package main

import (
	"fmt"
	"log"
	"net/http"
	"os"

	"github.com/baasworks/migration-studio/internal/api"
	"github.com/baasworks/migration-studio/internal/backend"
	"github.com/baasworks/migration-studio/internal/checkpoint"
	"github.com/baasworks/migration-studio/internal/config"
	"github.com/baasworks/migration-studio/internal/models"
)

var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

func main() {
	for _, arg := range os.Args[1:] {
		if arg == "--version" || arg == "-v" {
			fmt.Printf("migstudio %s (commit: %s, built: %s)\n", version, commit, date)
			os.Exit(0)
		}
	}

	cfg := config.Parse()

	server := &api.Server{
		Projects: models.NewProjectStore(),
		Jobs:     models.NewJobStore(),
		Plans:    api.NewPlanStore(),
	}

	if cfg.DataPath != "" {
		db, err := checkpoint.OpenDB(cfg.DataPath)
		if err != nil {
			log.Fatal("Failed to open checkpoint database: ", err)
		}
		defer db.Close()
		server.CheckpointDB = db
		fmt.Printf("Checkpoints stored in %s\n", cfg.DataPath)
	} else {
		fmt.Println("No -data path set: checkpoints are in-memory only")
	}

	// Load pre-configured projects from the config file
	for _, pc := range cfg.Projects {
		p := &models.Project{
			Name:      pc.Name,
			Role:      pc.Role,
			Endpoint:  pc.Endpoint,
			ProjectID: pc.ProjectID,
			APIKey:    pc.APIKey,
			Insecure:  pc.Insecure,
		}
		if p.Role == "" {
			p.Role = "source"
		}
		server.Projects.Create(p)
		fmt.Printf("Loaded project: %s (%s)\n", p.Name, p.BaseURL())

		// Verify connectivity and auth early
		if err := backend.NewClient(p).Ping(); err != nil {
			fmt.Printf("  PING FAILED: %s: %v\n", p.Name, err)
		} else {
			fmt.Printf("  PING OK: %s: reachable\n", p.Name)
		}
	}

	handler := api.NewRouter(server)

	fmt.Printf("Migration Studio %s starting on %s\n", version, cfg.Listen)
	if err := http.ListenAndServe(cfg.Listen, handler); err != nil {
		log.Fatal(err)
	}
}
