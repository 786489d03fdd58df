package migration

import (
	"archive/tar"
	"bytes"
	"compress/gzip"
	"context"
	"embed"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/baasworks/migration-studio/internal/backend"
	"github.com/baasworks/migration-studio/internal/models"
)

//go:embed workerassets
var workerAssets embed.FS

const (
	workerRuntime    = "node-18.0"
	workerEntrypoint = "index.js"
	workerTimeout    = 900 // seconds; large files take a while

	buildPollInterval = 3 * time.Second
	buildPollAttempts = 100
)

// filePayload is the per-invocation request for the transfer worker. Source
// credentials travel only in the call payload; they are never stored at the
// destination.
type filePayload struct {
	SourceEndpoint string   `json:"sourceEndpoint"`
	SourceProject  string   `json:"sourceProject"`
	SourceKey      string   `json:"sourceKey"`
	SourceBucket   string   `json:"sourceBucket"`
	TargetBucket   string   `json:"targetBucket"`
	FileID         string   `json:"fileId"`
	FileName       string   `json:"fileName"`
	Permissions    []string `json:"permissions"`
}

// workerResult is the worker's response body.
type workerResult struct {
	Status string `json:"status"` // "migrated", "skipped", "failed"
	Error  string `json:"error,omitempty"`
}

// workerDispatcher owns one ephemeral transfer function deployed into the
// destination project for the duration of the file phase.
type workerDispatcher struct {
	dst        *backend.Client
	log        func(string)
	functionID string
}

// deployTransferWorker packages the embedded worker source, deploys it into
// the destination project and polls the build to readiness. On any failure
// the half-created function is deleted before the error is returned, so the
// caller can fall back to direct transfer without leaving orphans.
func deployTransferWorker(ctx context.Context, dst *backend.Client, logger func(string)) (*workerDispatcher, error) {
	id := "mig-worker-" + uuid.New().String()[:8]
	logger(fmt.Sprintf("  Deploying transfer worker %s...", id))

	_, err := dst.CreateFunction(id, "Migration transfer worker", backend.Function{
		Runtime:    workerRuntime,
		Entrypoint: workerEntrypoint,
		Timeout:    workerTimeout,
		Enabled:    true,
	})
	if err != nil {
		return nil, fmt.Errorf("creating worker function: %w", err)
	}

	w := &workerDispatcher{dst: dst, log: logger, functionID: id}

	archive, err := workerArchive()
	if err != nil {
		w.teardown()
		return nil, fmt.Errorf("packaging worker source: %w", err)
	}
	dep, err := dst.CreateDeployment(id, archive, workerEntrypoint, "npm install", true)
	if err != nil {
		w.teardown()
		return nil, fmt.Errorf("deploying worker: %w", err)
	}

	if err := w.awaitBuild(ctx, dep.ID); err != nil {
		w.teardown()
		return nil, err
	}
	logger("  Transfer worker ready")
	return w, nil
}

// awaitBuild polls the deployment status at a fixed interval with a bounded
// number of attempts.
func (w *workerDispatcher) awaitBuild(ctx context.Context, deploymentID string) error {
	for attempt := 0; attempt < buildPollAttempts; attempt++ {
		if ctx.Err() != nil {
			return ErrStopped
		}
		dep, err := w.dst.GetDeployment(w.functionID, deploymentID)
		if err != nil {
			return fmt.Errorf("polling worker build: %w", err)
		}
		switch dep.Status {
		case backend.DeploymentReady:
			return nil
		case backend.DeploymentFailed:
			return fmt.Errorf("worker build failed")
		}
		select {
		case <-ctx.Done():
			return ErrStopped
		case <-time.After(buildPollInterval):
		}
	}
	return fmt.Errorf("timeout waiting for worker build")
}

// transferFile invokes the worker synchronously for one file. A
// destination-side conflict reported by the worker is a successful skip.
func (w *workerDispatcher) transferFile(p filePayload) (models.TransferStatus, error) {
	body, err := json.Marshal(p)
	if err != nil {
		return models.TransferFailed, fmt.Errorf("marshaling payload: %w", err)
	}
	exec, err := w.dst.CreateExecution(w.functionID, string(body), false)
	if err != nil {
		return models.TransferFailed, err
	}

	var result workerResult
	if err := json.Unmarshal([]byte(exec.ResponseBody), &result); err != nil {
		return models.TransferFailed, fmt.Errorf("unreadable worker response: %q", truncateBody(exec.ResponseBody))
	}
	switch result.Status {
	case "migrated":
		return models.TransferMigrated, nil
	case "skipped":
		return models.TransferSkipped, nil
	default:
		return models.TransferFailed, fmt.Errorf("worker: %s", result.Error)
	}
}

// teardown deletes the worker function. Called unconditionally when the file
// phase ends, whatever the run's outcome, so no executable with
// credentials-in-transit exposure is left behind.
func (w *workerDispatcher) teardown() {
	if err := w.dst.DeleteFunction(w.functionID); err != nil {
		w.log(fmt.Sprintf("  WARNING: removing transfer worker %s: %v", w.functionID, err))
		return
	}
	w.log(fmt.Sprintf("  Removed transfer worker %s", w.functionID))
}

// workerArchive bundles the embedded worker source and manifest as a
// tar.gz code archive.
func workerArchive() ([]byte, error) {
	var buf bytes.Buffer
	gz := gzip.NewWriter(&buf)
	tw := tar.NewWriter(gz)

	for _, name := range []string{"index.js", "package.json"} {
		data, err := workerAssets.ReadFile("workerassets/" + name)
		if err != nil {
			return nil, fmt.Errorf("reading asset %s: %w", name, err)
		}
		hdr := &tar.Header{
			Name:    name,
			Mode:    0o644,
			Size:    int64(len(data)),
			ModTime: time.Now(),
		}
		if err := tw.WriteHeader(hdr); err != nil {
			return nil, fmt.Errorf("writing archive header %s: %w", name, err)
		}
		if _, err := tw.Write(data); err != nil {
			return nil, fmt.Errorf("writing archive entry %s: %w", name, err)
		}
	}

	if err := tw.Close(); err != nil {
		return nil, fmt.Errorf("closing archive: %w", err)
	}
	if err := gz.Close(); err != nil {
		return nil, fmt.Errorf("closing gzip stream: %w", err)
	}
	return buf.Bytes(), nil
}

func truncateBody(s string) string {
	if len(s) <= 200 {
		return s
	}
	return s[:200] + "..."
}
