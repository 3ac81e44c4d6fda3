// Package corrector implements the review-queue supplemented feature:
// scanning a translated file for chunks flagged needs_review (or a
// not-translated-due-to-exception fence), and, once a human has edited
// the target file directly, resyncing the cache entry for that single
// chunk so later cache hits return the corrected text.
package corrector

import (
	"strings"

	"github.com/seanblong/doctran/internal/cachebackend"
	"github.com/seanblong/doctran/internal/doctranerr"
	"github.com/seanblong/doctran/internal/rebuilder"
	"github.com/seanblong/doctran/pkg/doctypes"
)

// FlaggedChunk is one chunk of a translated file whose embedded
// metadata fence requests human attention.
type FlaggedChunk struct {
	Index     int
	Text      string
	Exception string // non-empty when the chunk failed translation outright
}

// FindChunksNeedingReview scans a translated file's chunks (already
// split by the appropriate structural chunker) for embedded metadata
// fences with needs_review set or an exception recorded.
func FindChunksNeedingReview(chunks []string) []FlaggedChunk {
	var flagged []FlaggedChunk
	for i, c := range chunks {
		meta, ok := rebuilder.ParseFence(c)
		if !ok {
			continue
		}
		if meta.NeedsReview || meta.Exception != "" {
			flagged = append(flagged, FlaggedChunk{Index: i, Text: c, Exception: meta.Exception})
		}
	}
	return flagged
}

// Corrector resyncs the cache after a human edits a translated file by
// hand, outside of the normal translate path.
type Corrector struct {
	Backend *cachebackend.Backend
}

// SyncEditedFile updates the cache entry for one edited chunk: it
// re-persists the pair using the caller-supplied, now-human-corrected
// target text, keyed by the original source chunk's checksum. Unlike
// the Rebuilder, this never validates an embedded src_checksum — the
// caller (an editor integration) is expected to already know which
// source chunk it is correcting.
func (c *Corrector) SyncEditedFile(srcLang, tgtLang doctypes.Language, srcChunkText, editedTgtText, relativePath string) error {
	if strings.TrimSpace(editedTgtText) == "" {
		return &doctranerr.CacheCorrupt{Reason: "corrector: refusing to persist an empty edited translation for " + relativePath}
	}
	return c.Backend.PersistPair(srcLang, tgtLang, srcChunkText, editedTgtText, relativePath)
}
