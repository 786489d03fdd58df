package migration

import (
	"context"
	"fmt"

	"github.com/baasworks/migration-studio/internal/backend"
	"github.com/baasworks/migration-studio/internal/models"
)

// migrateFiles streams one bucket's files with the same cursor contract as
// documents, at the smaller file page size. With a deployed worker the bytes
// travel destination-side; otherwise each file is downloaded from the source
// and re-uploaded through this process.
func (e *Executor) migrateFiles(ctx context.Context, bRes *models.MigrationResource, worker *workerDispatcher) error {
	streamKey := "file_" + bRes.SourceID
	cursor, err := e.store.GetCursor(streamKey)
	if err != nil {
		return fmt.Errorf("reading cursor for %s: %w", streamKey, err)
	}
	if cursor != "" {
		e.log(fmt.Sprintf("  %s: resuming after %s", bRes.SourceName, cursor))
	} else {
		e.log(fmt.Sprintf("  %s: streaming files", bRes.SourceName))
	}

	total := 0
	for {
		if err := e.checkStop(ctx); err != nil {
			return err
		}
		page, err := e.src.ListFiles(bRes.SourceID, filePageSize, cursor)
		if err != nil {
			e.log(fmt.Sprintf("  FAIL: listing files of %s: %v", bRes.SourceName, err))
			return nil
		}
		if len(page.Files) == 0 {
			break
		}

		for _, f := range page.Files {
			if err := e.checkStop(ctx); err != nil {
				return err
			}
			e.transferFile(bRes, f, worker)
			if err := e.store.SaveCursor(streamKey, f.ID); err != nil {
				return fmt.Errorf("saving cursor for %s: %w", streamKey, err)
			}
			cursor = f.ID
			total++
		}

		if len(page.Files) < filePageSize {
			break
		}
	}

	e.log(fmt.Sprintf("  %s: %d files processed", bRes.SourceName, total))
	return nil
}

// transferFile moves one file's bytes, directly or through the worker. A
// destination conflict is a successful skip, which keeps resumed runs
// idempotent even without consulting the checkpoint for this file.
func (e *Executor) transferFile(bRes *models.MigrationResource, f backend.File, worker *workerDispatcher) {
	result := models.TransferResult{
		ID:      f.ID,
		Context: "files/" + bRes.SourceID,
	}

	if worker != nil {
		status, err := worker.transferFile(filePayload{
			SourceEndpoint: e.srcProject.BaseURL(),
			SourceProject:  e.srcProject.ProjectID,
			SourceKey:      e.srcProject.APIKey,
			SourceBucket:   bRes.SourceID,
			TargetBucket:   bRes.TargetID,
			FileID:         f.ID,
			FileName:       f.Name,
			Permissions:    f.Permissions,
		})
		if err != nil {
			result.Status = models.TransferFailed
			result.Error = err.Error()
			e.log(fmt.Sprintf("    FAIL: file %s: %v", f.ID, err))
		} else {
			result.Status = status
		}
		e.report.Add(result)
		return
	}

	if _, err := e.dst.GetFile(bRes.TargetID, f.ID); err == nil {
		result.Status = models.TransferSkipped
		e.report.Add(result)
		return
	} else if !backend.IsNotFound(err) {
		result.Status = models.TransferFailed
		result.Error = err.Error()
		e.report.Add(result)
		e.log(fmt.Sprintf("    FAIL: file %s: %v", f.ID, err))
		return
	}

	blob, err := e.src.DownloadFile(bRes.SourceID, f.ID)
	if err != nil {
		result.Status = models.TransferFailed
		result.Error = err.Error()
		e.report.Add(result)
		e.log(fmt.Sprintf("    FAIL: downloading file %s: %v", f.ID, err))
		return
	}

	_, err = e.dst.UploadFile(bRes.TargetID, f.ID, f.Name, f.Permissions, blob)
	switch {
	case err == nil:
		result.Status = models.TransferMigrated
	case backend.IsConflict(err):
		result.Status = models.TransferSkipped
	default:
		result.Status = models.TransferFailed
		result.Error = err.Error()
		e.log(fmt.Sprintf("    FAIL: uploading file %s: %v", f.ID, err))
	}
	e.report.Add(result)
}
