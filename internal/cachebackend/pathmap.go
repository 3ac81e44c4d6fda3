package cachebackend

import (
	"encoding/csv"
	"errors"
	"io"
	"os"
	"path/filepath"

	"github.com/seanblong/doctran/internal/doctranerr"
)

type pathMapEntry struct {
	PathHash     string
	RelativePath string
}

func (b *Backend) pathMapPath() string {
	return filepath.Join(b.RootPath, pathMapFilename)
}

// readPathMap returns the registered path-hash ↔ relative-path pairs, or
// an empty slice if the file does not yet exist.
func (b *Backend) readPathMap() ([]pathMapEntry, error) {
	f, err := os.Open(b.pathMapPath())
	if os.IsNotExist(err) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	defer f.Close()

	r := csv.NewReader(f)
	header, err := r.Read()
	if errors.Is(err, io.EOF) {
		return nil, nil
	}
	if err != nil {
		return nil, &doctranerr.CacheCorrupt{Reason: "malformed path_map.csv header", Cause: err}
	}
	hashCol, pathCol := indexOf(header, pathChecksumColumn), indexOf(header, "relative_path")
	if hashCol < 0 || pathCol < 0 {
		return nil, &doctranerr.CacheCorrupt{Reason: "path_map.csv missing expected columns"}
	}

	var out []pathMapEntry
	for {
		row, err := r.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, &doctranerr.CacheCorrupt{Reason: "malformed path_map.csv row", Cause: err}
		}
		if hashCol >= len(row) || pathCol >= len(row) {
			continue
		}
		out = append(out, pathMapEntry{PathHash: row[hashCol], RelativePath: row[pathCol]})
	}
	return out, nil
}

func (b *Backend) writePathMap(entries []pathMapEntry) error {
	f, err := os.Create(b.pathMapPath())
	if err != nil {
		return err
	}
	defer f.Close()

	w := csv.NewWriter(f)
	if err := w.Write([]string{pathChecksumColumn, "relative_path"}); err != nil {
		return err
	}
	for _, e := range entries {
		if err := w.Write([]string{e.PathHash, e.RelativePath}); err != nil {
			return err
		}
	}
	w.Flush()
	return w.Error()
}

func indexOf(haystack []string, needle string) int {
	for i, v := range haystack {
		if v == needle {
			return i
		}
	}
	return -1
}
