package ingest

import (
	"context"

	"github.com/joseph-ayodele/extraction-bench/internal/entity"
)

// LoadResult is the per-file ingest outcome.
type LoadResult struct {
	SourcePath   string
	DocumentID   string
	Deduplicated bool // same content as an earlier file in the walk
	HashHex      string
	Err          string
}

// DirStats summarizes a directory ingest.
type DirStats struct {
	Scanned      uint32
	Matched      uint32
	Succeeded    uint32
	Deduplicated uint32
	Failed       uint32
}

// Loader is the behavior the pipeline depends on.
type Loader interface {
	// LoadPath reads a single document.
	LoadPath(ctx context.Context, root, path string) (entity.Document, error)
	// LoadDirectory reads all matching documents under root, in lexical path order.
	LoadDirectory(ctx context.Context, root string) ([]entity.Document, []LoadResult, DirStats, error)
}
