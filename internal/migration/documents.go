package migration

import (
	"context"
	"fmt"

	"github.com/baasworks/migration-studio/internal/backend"
	"github.com/baasworks/migration-studio/internal/models"
)

// systemFields are stripped from a source document before recreation. The ID
// and permissions are carried separately so the destination preserves them.
var systemFields = []string{
	"$id", "$createdAt", "$updatedAt", "$permissions", "$databaseId", "$collectionId",
}

// migrateDocuments streams one collection's documents in ascending creation
// order using a cursor-after anchored on the last processed document ID.
// Cursor pagination stays stable under concurrent source writes, unlike
// offsets. The cursor is persisted after every item (success, skip or
// failure) so a crash re-processes at most one document, and the existence
// check makes that re-processing a no-op.
func (e *Executor) migrateDocuments(ctx context.Context, dbRes, colRes *models.MigrationResource) error {
	streamKey := "doc_" + colRes.SourceID
	cursor, err := e.store.GetCursor(streamKey)
	if err != nil {
		return fmt.Errorf("reading cursor for %s: %w", streamKey, err)
	}
	if cursor != "" {
		e.log(fmt.Sprintf("  %s: resuming after %s", colRes.SourceName, cursor))
	} else {
		e.log(fmt.Sprintf("  %s: streaming documents", colRes.SourceName))
	}

	total := 0
	for {
		if err := e.checkStop(ctx); err != nil {
			return err
		}
		page, err := e.src.ListDocuments(dbRes.SourceID, colRes.SourceID, documentPageSize, cursor)
		if err != nil {
			e.log(fmt.Sprintf("  FAIL: listing documents of %s: %v", colRes.SourceName, err))
			return nil
		}
		if len(page.Documents) == 0 {
			break
		}

		for _, doc := range page.Documents {
			if err := e.checkStop(ctx); err != nil {
				return err
			}
			id := doc.ID()
			if id == "" {
				e.log(fmt.Sprintf("    FAIL: document without $id in %s", colRes.SourceName))
				continue
			}
			e.transferDocument(dbRes, colRes, id, doc)
			if err := e.store.SaveCursor(streamKey, id); err != nil {
				return fmt.Errorf("saving cursor for %s: %w", streamKey, err)
			}
			cursor = id
			total++
		}

		if len(page.Documents) < documentPageSize {
			break
		}
	}

	e.log(fmt.Sprintf("  %s: %d documents processed", colRes.SourceName, total))
	return nil
}

// transferDocument applies the idempotent-create pattern to one document.
// All outcomes are recorded; none abort the stream.
func (e *Executor) transferDocument(dbRes, colRes *models.MigrationResource, id string, doc backend.Document) {
	result := models.TransferResult{
		ID:      id,
		Context: "documents/" + colRes.SourceID,
	}

	if _, err := e.dst.GetDocument(dbRes.TargetID, colRes.TargetID, id); err == nil {
		result.Status = models.TransferSkipped
		e.report.Add(result)
		return
	} else if !backend.IsNotFound(err) {
		result.Status = models.TransferFailed
		result.Error = err.Error()
		e.report.Add(result)
		e.log(fmt.Sprintf("    FAIL: document %s: %v", id, err))
		return
	}

	perms := doc.Permissions()
	payload := stripSystemFields(doc)

	err := e.dst.CreateDocument(dbRes.TargetID, colRes.TargetID, id, payload, perms)
	switch {
	case err == nil:
		result.Status = models.TransferMigrated
	case backend.IsConflict(err):
		result.Status = models.TransferSkipped
	default:
		result.Status = models.TransferFailed
		result.Error = err.Error()
		e.log(fmt.Sprintf("    FAIL: document %s: %v", id, err))
	}
	e.report.Add(result)
}

// stripSystemFields returns a copy of the document without source-only
// system fields.
func stripSystemFields(doc backend.Document) backend.Document {
	out := make(backend.Document, len(doc))
	for k, v := range doc {
		out[k] = v
	}
	for _, f := range systemFields {
		delete(out, f)
	}
	return out
}
