// Package checksum implements Component A: content checksums and
// path-hash keying for the translation cache.
package checksum

import (
	"crypto/sha256"
	"encoding/hex"
	"strings"
)

// Of returns the lowercase hex SHA-256 digest of text's UTF-8 bytes. This
// is the identity used for ChunkBlob filenames and correspondence cells.
func Of(text string) string {
	h := sha256.Sum256([]byte(text))
	return hex.EncodeToString(h[:])
}

// NormalizePath converts rel to the canonical form path_hash is computed
// over: POSIX separators, no leading "./", no trailing separator. The
// comparison is case-sensitive.
func NormalizePath(rel string) string {
	p := strings.ReplaceAll(rel, "\\", "/")
	p = strings.TrimPrefix(p, "./")
	p = strings.TrimSuffix(p, "/")
	return p
}

// PathHash returns the SHA-256 hex digest of the normalized relative path.
// It scopes cache entries per source file so edits in one file never
// pollute another file's similarity pool.
func PathHash(rel string) string {
	return Of(NormalizePath(rel))
}
