package ingest

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"unicode/utf8"

	"github.com/joseph-ayodele/extraction-bench/constants"
	"github.com/joseph-ayodele/extraction-bench/internal/entity"
)

// FSLoader reads plain-text documents from the local filesystem.
type FSLoader struct {
	AllowedExts map[string]struct{} // lowercased sans '.'; nil -> default set
	SkipHidden  bool
	Logger      *slog.Logger
}

func NewFSLoader(logger *slog.Logger) *FSLoader {
	if logger == nil {
		logger = slog.Default()
	}
	return &FSLoader{SkipHidden: true, Logger: logger}
}

func (l *FSLoader) allowed(ext string) bool {
	if l.AllowedExts == nil {
		return AllowedExt(ext)
	}
	_, ok := l.AllowedExts[constants.NormalizeExt(ext)]
	return ok
}

// LoadPath reads path and identifies it by its location relative to root (slash separated).
// With an empty root the base name is used.
func (l *FSLoader) LoadPath(ctx context.Context, root, path string) (entity.Document, error) {
	if err := ctx.Err(); err != nil {
		return entity.Document{}, err
	}
	ext := constants.NormalizeExt(filepath.Ext(path))
	if ext == "" || !l.allowed(ext) {
		return entity.Document{}, fmt.Errorf("unsupported or missing extension: %q", ext)
	}

	b, err := os.ReadFile(path)
	if err != nil {
		return entity.Document{}, err
	}
	if !utf8.Valid(b) {
		return entity.Document{}, fmt.Errorf("%s: not valid UTF-8 text", path)
	}
	sum := sha256.Sum256(b)

	id := filepath.Base(path)
	if root != "" {
		if rel, err := filepath.Rel(root, path); err == nil {
			id = filepath.ToSlash(rel)
		}
	}
	return entity.Document{
		ID:          id,
		Path:        path,
		Text:        string(b),
		TypeHint:    constants.GuessDocType(id),
		ContentHash: hex.EncodeToString(sum[:]),
	}, nil
}

// LoadDirectory walks root, skips hidden entries if requested, and loads every matching
// file. Files whose content repeats an earlier file are reported but not returned.
func (l *FSLoader) LoadDirectory(ctx context.Context, root string) ([]entity.Document, []LoadResult, DirStats, error) {
	if strings.TrimSpace(root) == "" {
		return nil, nil, DirStats{}, errors.New("root path is required")
	}

	var (
		docs    []entity.Document
		results []LoadResult
		stats   DirStats
		seen    = map[string]string{}
	)

	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, walkErr error) error {
		if err := ctx.Err(); err != nil {
			return err
		}
		stats.Scanned++
		if walkErr != nil {
			if path == root {
				return walkErr
			}
			results = append(results, LoadResult{SourcePath: path, Err: walkErr.Error()})
			stats.Failed++
			return nil
		}
		if l.SkipHidden && path != root && IsHidden(path) {
			if d.IsDir() {
				return filepath.SkipDir
			}
			return nil
		}
		if d.IsDir() {
			return nil
		}
		if !l.allowed(filepath.Ext(path)) {
			return nil
		}
		stats.Matched++

		doc, err := l.LoadPath(ctx, root, path)
		if err != nil {
			l.Logger.Warn("ingest.file.failed", "path", path, "error", err)
			results = append(results, LoadResult{SourcePath: path, Err: err.Error()})
			stats.Failed++
			return nil
		}
		res := LoadResult{SourcePath: path, DocumentID: doc.ID, HashHex: doc.ContentHash}
		if first, dup := seen[doc.ContentHash]; dup {
			l.Logger.Info("ingest.file.duplicate", "path", path, "same_as", first)
			res.Deduplicated = true
			stats.Deduplicated++
		} else {
			seen[doc.ContentHash] = doc.ID
			docs = append(docs, doc)
		}
		results = append(results, res)
		stats.Succeeded++
		return nil
	})
	if err != nil {
		return docs, results, stats, fmt.Errorf("walk: %w", err)
	}

	l.Logger.Info("ingest.directory.done",
		"root", root,
		"matched", stats.Matched,
		"loaded", len(docs),
		"deduplicated", stats.Deduplicated,
		"failed", stats.Failed,
	)
	return docs, results, stats, nil
}

var _ Loader = (*FSLoader)(nil)
