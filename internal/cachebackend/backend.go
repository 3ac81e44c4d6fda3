// Package cachebackend implements Component B (on-disk cache layout) and
// Component C (correspondence table) of the translation cache: a
// per-language × per-path-hash tree of content-addressed chunk blobs, a
// path_map.csv registering the path-hash ↔ relative-path mapping, and a
// wide correspondence.csv keyed by path_checksum with one column per
// language.
package cachebackend

import (
	"context"
	"os"
	"path/filepath"

	"github.com/rs/zerolog/log"

	"github.com/seanblong/doctran/internal/checksum"
	"github.com/seanblong/doctran/internal/doctranerr"
	"github.com/seanblong/doctran/pkg/doctypes"
)

const (
	pathMapFilename        = "path_map.csv"
	correspondenceFilename = "correspondence.csv"
	pathChecksumColumn     = "path_checksum"
)

// VectorIndexer opportunistically receives one structural fingerprint
// per persisted source chunk, the write side of the optional vector
// pre-filter (§3.2). Left nil, PersistPair simply skips population.
type VectorIndexer interface {
	Upsert(ctx context.Context, lang doctypes.Language, pathHash, checksum string, vec []float32) error
}

// Backend owns the on-disk cache tree rooted at RootPath, normally
// "<project_root>/<config_dir>/cache". It is not safe for concurrent
// writers (see spec §5); concurrent readers are fine.
type Backend struct {
	RootPath string

	// VectorIndex, when set, is populated opportunistically as source
	// chunks are persisted. It never gates PersistPair's success.
	VectorIndex VectorIndexer
}

// New ensures the cache directory exists and returns a Backend rooted
// there.
func New(rootPath string) (*Backend, error) {
	if err := os.MkdirAll(rootPath, 0o755); err != nil {
		return nil, err
	}
	return &Backend{RootPath: rootPath}, nil
}

func (b *Backend) langDir(lang doctypes.Language) string {
	return filepath.Join(b.RootPath, string(lang))
}

func (b *Backend) langPathDir(lang doctypes.Language, pathHash string) string {
	return filepath.Join(b.langDir(lang), pathHash)
}

func (b *Backend) ensureLangPathDir(lang doctypes.Language, pathHash string) (string, error) {
	dir := b.langPathDir(lang, pathHash)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", err
	}
	return dir, nil
}

// AddBlob content-addresses text and writes it under <lang>/<pathHash>/.
// Writing is a no-op if the blob already exists (write-once semantics).
func (b *Backend) AddBlob(text string, lang doctypes.Language, pathHash string) (string, error) {
	dir, err := b.ensureLangPathDir(lang, pathHash)
	if err != nil {
		return "", err
	}
	sum := checksum.Of(text)
	file := filepath.Join(dir, sum)
	if _, err := os.Stat(file); err == nil {
		return sum, nil
	}
	if err := os.WriteFile(file, []byte(text), 0o644); err != nil {
		return "", err
	}
	log.Debug().Str("lang", string(lang)).Str("path_hash", pathHash).Str("checksum", sum).Msg("cache blob written")
	return sum, nil
}

// ReadBlob returns the chunk text for checksum scoped to lang and
// pathHash, or ok=false if no such blob exists.
func (b *Backend) ReadBlob(sum string, lang doctypes.Language, pathHash string) (string, bool, error) {
	dir := b.langPathDir(lang, pathHash)
	file := filepath.Join(dir, sum)
	data, err := os.ReadFile(file)
	if os.IsNotExist(err) {
		return "", false, nil
	}
	if err != nil {
		return "", false, err
	}
	return string(data), true, nil
}

// BlobExists reports whether a chunk blob is present on disk, without
// reading its contents.
func (b *Backend) BlobExists(sum string, lang doctypes.Language, pathHash string) bool {
	_, err := os.Stat(filepath.Join(b.langPathDir(lang, pathHash), sum))
	return err == nil
}

// ListBlobs returns the checksums of every chunk blob cached for lang
// under pathHash, in no particular order. A missing directory (no
// chunks cached yet for this file/language) is not an error.
func (b *Backend) ListBlobs(lang doctypes.Language, pathHash string) ([]string, error) {
	entries, err := os.ReadDir(b.langPathDir(lang, pathHash))
	if os.IsNotExist(err) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	sums := make([]string, 0, len(entries))
	for _, e := range entries {
		if !e.IsDir() {
			sums = append(sums, e.Name())
		}
	}
	return sums, nil
}

// ListPathHashes returns every path hash registered in path_map.csv, for
// callers (the Cleaner) that need to sweep the whole cache tree rather
// than a single file.
func (b *Backend) ListPathHashes() ([]string, error) {
	entries, err := b.readPathMap()
	if err != nil {
		return nil, err
	}
	hashes := make([]string, 0, len(entries))
	for _, e := range entries {
		hashes = append(hashes, e.PathHash)
	}
	return hashes, nil
}

// RegisterPathHash computes the path hash for relativePath, records the
// mapping in path_map.csv if not already present, and returns the hash.
// A hash collision against a different relative path is a hard error.
func (b *Backend) RegisterPathHash(relativePath string) (string, error) {
	normalized := checksum.NormalizePath(relativePath)
	hash := checksum.Of(normalized)

	entries, err := b.readPathMap()
	if err != nil {
		return "", err
	}
	for _, e := range entries {
		if e.PathHash == hash {
			if e.RelativePath != normalized {
				return "", &doctranerr.PathHashCollision{
					PathHash: hash,
					Existing: e.RelativePath,
					Incoming: normalized,
				}
			}
			return hash, nil
		}
	}

	entries = append(entries, pathMapEntry{PathHash: hash, RelativePath: normalized})
	if err := b.writePathMap(entries); err != nil {
		return "", err
	}
	return hash, nil
}

// PathHashFor looks up the path hash already registered for relativePath,
// without registering a new one. ok is false if the path has never been
// seen.
func (b *Backend) PathHashFor(relativePath string) (string, bool, error) {
	normalized := checksum.NormalizePath(relativePath)
	entries, err := b.readPathMap()
	if err != nil {
		return "", false, err
	}
	for _, e := range entries {
		if e.RelativePath == normalized {
			return e.PathHash, true, nil
		}
	}
	return "", false, nil
}

// RowForPathHash returns the correspondence.csv row(s) scoped to pathHash,
// one map per row keyed by column name, for the admin API's /cache/row
// endpoint. A path with no correspondence rows yet returns an empty slice.
func (b *Backend) RowForPathHash(pathHash string) ([]map[string]string, error) {
	t, ok, err := b.readCorrespondenceCache()
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, nil
	}
	var out []map[string]string
	for _, row := range t.rows {
		if row[pathChecksumColumn] == pathHash {
			out = append(out, row)
		}
	}
	return out, nil
}
