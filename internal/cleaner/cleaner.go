// Package cleaner implements Component I: pruning stale or unwanted
// cache state. ClearMissingChunks removes blob files that have fallen
// out of sync with the source tree; ClearAll is a four-way
// lang/path selector for bulk deletion, with an optional keyword
// substring filter. Both walk the cache's own
// <cache>/<Language>/<path_hash>/ blob directories directly with
// godirwalk rather than going through Backend's listing helpers, the
// same FileSystemWalker abstraction used elsewhere in the stack for
// directory traversal, just retargeted at the cache tree instead of a
// source tree.
package cleaner

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/karrick/godirwalk"

	"github.com/seanblong/doctran/internal/cachebackend"
	"github.com/seanblong/doctran/pkg/doctypes"
)

// FileSystemWalker abstracts cache-tree traversal so Cleaner's scans
// can be driven by a fake in tests, without a real directory on disk.
type FileSystemWalker interface {
	Walk(root string, options *godirwalk.Options) error
}

// DefaultFileSystemWalker walks the cache tree with godirwalk.
type DefaultFileSystemWalker struct{}

func (d *DefaultFileSystemWalker) Walk(root string, options *godirwalk.Options) error {
	return godirwalk.Walk(root, options)
}

// Cleaner operates directly on a cache backend's on-disk tree.
type Cleaner struct {
	Backend *cachebackend.Backend
	Walker  FileSystemWalker // nil uses DefaultFileSystemWalker
}

func (c *Cleaner) walker() FileSystemWalker {
	if c.Walker != nil {
		return c.Walker
	}
	return &DefaultFileSystemWalker{}
}

// listBlobFiles walks <cache>/<lang>/<pathHash>/ and returns the
// checksum (bare filename) of every blob found. A directory that
// doesn't exist yet (no chunks cached for this file/language) is not
// an error.
func (c *Cleaner) listBlobFiles(lang doctypes.Language, pathHash string) ([]string, error) {
	dir := blobDirPath(c.Backend, lang, pathHash)
	var sums []string
	err := c.walker().Walk(dir, &godirwalk.Options{
		Unsorted: true,
		Callback: func(path string, de *godirwalk.Dirent) error {
			if de != nil && de.IsDir() {
				return nil
			}
			sums = append(sums, filepath.Base(path))
			return nil
		},
	})
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, err
	}
	return sums, nil
}

func blobDirPath(b *cachebackend.Backend, lang doctypes.Language, pathHash string) string {
	return filepath.Join(b.RootPath, string(lang), pathHash)
}

func blobFilePath(b *cachebackend.Backend, lang doctypes.Language, pathHash, sum string) string {
	return filepath.Join(blobDirPath(b, lang, pathHash), sum)
}

// MissingChunksReport summarizes one ClearMissingChunks run.
type MissingChunksReport struct {
	RowsExamined       int
	CellsCleared       int
	OrphanBlobsRemoved int
	DryRun             bool
}

// ClearMissingChunks removes, under relativePath's path hash, every blob
// file whose own checksum is not in currentChunkChecksums. It scans the
// five built-in languages (English, French, German, Spanish, Ukrainian)
// and applies the same test to source and target blobs alike, so a
// target blob is kept only if its checksum is in currentChunkChecksums
// too. correspondence.csv is neither read nor modified: cells and rows
// that cite a removed blob stay in place. In the report, RowsExamined
// counts the blob files examined and CellsCleared counts those not in
// currentChunkChecksums. When dryRun is true, no blob is deleted; the
// report describes what would have been removed.
func (c *Cleaner) ClearMissingChunks(relativePath string, currentChunkChecksums map[string]bool, dryRun bool) (MissingChunksReport, error) {
	report := MissingChunksReport{DryRun: dryRun}

	pathHash, err := c.Backend.RegisterPathHash(relativePath)
	if err != nil {
		return report, err
	}

	langs := []doctypes.Language{doctypes.English, doctypes.French, doctypes.German, doctypes.Spanish, doctypes.Ukrainian}
	orphans := map[doctypes.Language][]string{}

	for _, lang := range langs {
		blobs, err := c.listBlobFiles(lang, pathHash)
		if err != nil {
			return report, err
		}
		for _, sum := range blobs {
			report.RowsExamined++
			if currentChunkChecksums[sum] {
				continue
			}
			orphans[lang] = append(orphans[lang], sum)
		}
	}

	for lang, sums := range orphans {
		for _, sum := range sums {
			report.CellsCleared++
			if dryRun {
				continue
			}
			if err := os.Remove(blobFilePath(c.Backend, lang, pathHash, sum)); err == nil {
				report.OrphanBlobsRemoved++
			}
		}
	}

	return report, nil
}

// Selector picks which (language, path) combinations ClearAll targets.
// Exactly the four original selection modes: everything, one language
// across all paths, one path across all languages, or both narrowed to
// a single (language, path) pair.
type Selector struct {
	Language     doctypes.Language // empty = all languages
	RelativePath string            // empty = all paths
	Keyword      string            // optional: only blobs whose text contains this substring
}

// ClearAllReport summarizes a ClearAll run.
type ClearAllReport struct {
	BlobsRemoved int
	DryRun       bool
}

// ClearAll deletes cached blobs matching sel. It never touches
// correspondence.csv rows — it only removes blob files, which is the
// expensive, regenerable part of the cache. Rows and cells that cite a
// removed blob stay in place; ClearMissingChunks does not remove them
// either.
func (c *Cleaner) ClearAll(sel Selector, dryRun bool) (ClearAllReport, error) {
	report := ClearAllReport{DryRun: dryRun}

	langs := []doctypes.Language{doctypes.English, doctypes.French, doctypes.German, doctypes.Spanish, doctypes.Ukrainian}
	if sel.Language != "" {
		langs = []doctypes.Language{sel.Language}
	}

	var pathHashes []string
	if sel.RelativePath != "" {
		h, err := c.Backend.RegisterPathHash(sel.RelativePath)
		if err != nil {
			return report, err
		}
		pathHashes = []string{h}
	} else {
		entries, err := c.Backend.ListPathHashes()
		if err != nil {
			return report, err
		}
		pathHashes = entries
	}

	for _, lang := range langs {
		for _, pathHash := range pathHashes {
			blobs, err := c.listBlobFiles(lang, pathHash)
			if err != nil {
				continue
			}
			for _, sum := range blobs {
				if sel.Keyword != "" {
					text, ok, err := c.Backend.ReadBlob(sum, lang, pathHash)
					if err != nil || !ok || !strings.Contains(text, sel.Keyword) {
						continue
					}
				}
				report.BlobsRemoved++
				if dryRun {
					continue
				}
				_ = os.Remove(blobFilePath(c.Backend, lang, pathHash, sum))
			}
		}
	}
	return report, nil
}
