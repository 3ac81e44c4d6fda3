package cachebackend

import (
	"context"
	"os"
	"path/filepath"

	"github.com/rs/zerolog/log"

	"github.com/seanblong/doctran/internal/fingerprint"
	"github.com/seanblong/doctran/pkg/doctypes"
)

// Lookup returns the cached target text for srcChecksum under relativePath,
// or ok=false on a miss. It registers relativePath's path hash as a side
// effect, matching the Python TranslationCacheCsv.lookup contract.
func (b *Backend) Lookup(srcChecksum string, srcLang, tgtLang doctypes.Language, relativePath string) (string, bool, error) {
	pathHash, err := b.RegisterPathHash(relativePath)
	if err != nil {
		return "", false, err
	}
	tgtChecksum, ok, err := b.FindCorrespondent(srcChecksum, srcLang, tgtLang, pathHash)
	if err != nil || !ok {
		return "", false, err
	}
	return b.ReadBlob(tgtChecksum, tgtLang, pathHash)
}

// PersistPair writes both blobs and records their correspondence under
// relativePath.
func (b *Backend) PersistPair(srcLang, tgtLang doctypes.Language, srcText, tgtText, relativePath string) error {
	pathHash, err := b.RegisterPathHash(relativePath)
	if err != nil {
		return err
	}
	srcChecksum, err := b.AddBlob(srcText, srcLang, pathHash)
	if err != nil {
		return err
	}
	tgtChecksum, err := b.AddBlob(tgtText, tgtLang, pathHash)
	if err != nil {
		return err
	}
	if err := b.SetPair(srcChecksum, srcLang, tgtChecksum, tgtLang, pathHash); err != nil {
		return err
	}

	if b.VectorIndex != nil {
		vec := fingerprint.Vector(srcText)
		if err := b.VectorIndex.Upsert(context.Background(), srcLang, pathHash, srcChecksum, vec); err != nil {
			log.Debug().Err(err).Str("path_hash", pathHash).Msg("cachebackend: vector index upsert failed, continuing without it")
		}
	}
	return nil
}

// GetContentsByChecksum scopes a blob read to relativePath's path hash.
func (b *Backend) GetContentsByChecksum(sum string, lang doctypes.Language, relativePath string) (string, bool, error) {
	pathHash, err := b.RegisterPathHash(relativePath)
	if err != nil {
		return "", false, err
	}
	return b.ReadBlob(sum, lang, pathHash)
}

// Stats is a supplemental, read-only summary of the cache tree: the
// correspondence.csv row count, the blob count per language directory,
// and the number of relative paths registered in path_map.csv. It backs
// the admin API's /cache/stats endpoint.
type Stats struct {
	Rows            int
	BlobsPerLang    map[doctypes.Language]int
	RegisteredPaths int
}

func (b *Backend) ComputeStats() (Stats, error) {
	out := Stats{BlobsPerLang: map[doctypes.Language]int{}}

	t, ok, err := b.readCorrespondenceCache()
	if err != nil {
		return out, err
	}
	if ok {
		out.Rows = len(t.rows)
	}

	entries, err := b.readPathMap()
	if err != nil {
		return out, err
	}
	out.RegisteredPaths = len(entries)

	langDirs, err := os.ReadDir(b.RootPath)
	if err != nil {
		return out, err
	}
	for _, ld := range langDirs {
		if !ld.IsDir() {
			continue
		}
		lang := doctypes.Language(ld.Name())
		count := 0
		pathDirs, err := os.ReadDir(filepath.Join(b.RootPath, ld.Name()))
		if err != nil {
			continue
		}
		for _, pd := range pathDirs {
			if !pd.IsDir() {
				continue
			}
			blobs, err := os.ReadDir(filepath.Join(b.RootPath, ld.Name(), pd.Name()))
			if err != nil {
				continue
			}
			for _, blob := range blobs {
				if !blob.IsDir() {
					count++
				}
			}
		}
		out.BlobsPerLang[lang] = count
	}
	return out, nil
}
