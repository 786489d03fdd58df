// Package checkpoint persists per-stream transfer cursors so a multi-hour
// migration can resume after interruption. Keys are scoped to a
// (sourceProject, destinationProject) pair so unrelated migration pairs do
// not collide.
package checkpoint

import "fmt"

// Store is the durable key-value medium behind the executor. SaveCursor is
// called after every processed item; Clear removes the pair's marker and
// every per-stream cursor.
type Store interface {
	// HasCheckpoint reports whether any cursor was saved for this pair.
	HasCheckpoint() (bool, error)

	// SaveCursor records the last successfully processed item of a stream.
	SaveCursor(streamKey, cursor string) error

	// GetCursor returns the saved cursor for a stream, or "" when none.
	GetCursor(streamKey string) (string, error)

	// Clear removes the pair's marker and all of its stream cursors.
	Clear() error
}

// pairKey is the top-level marker key for a migration pair. The format is
// load-bearing: existing checkpoint sets use it.
func pairKey(sourceProject, destProject string) string {
	return fmt.Sprintf("mig_checkpoint_%s_%s", sourceProject, destProject)
}

// cursorKey is the per-stream cursor key, e.g. stream "doc_<collectionId>"
// or "file_<bucketId>".
func cursorKey(pair, streamKey string) string {
	return pair + "_cursor_" + streamKey
}
