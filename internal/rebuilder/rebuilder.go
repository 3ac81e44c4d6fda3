// Package rebuilder implements Component H: reconstructing cache entries
// from a source file and its already-translated twin, without calling
// the model. Each translated chunk carries an embedded metadata fence
// recording the checksum of the source chunk it came from; the
// rebuilder parses that fence back out and calls PersistPair directly.
//
// The fence grammar is grounded on latex_chunker.py's
// read_chunks_with_metadata_from_latex / _parse_metadata_block: a
// comment block bracketed by "% --- CHUNK_METADATA_START ---" and
// "% --- CHUNK_METADATA_END ---", each interior line "% key: value".
// The MyST/notebook equivalent uses an HTML comment instead of a LaTeX
// "%" line-comment, keyed the same way.
package rebuilder

import (
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/karrick/godirwalk"

	"github.com/seanblong/doctran/internal/cachebackend"
	"github.com/seanblong/doctran/internal/checksum"
	"github.com/seanblong/doctran/internal/doctranerr"
	"github.com/seanblong/doctran/pkg/doctypes"
)

// FileSystemWalker abstracts cache-tree traversal so ScanAndRebuild's
// blob scan can be driven by a fake in tests.
type FileSystemWalker interface {
	Walk(root string, options *godirwalk.Options) error
}

// DefaultFileSystemWalker walks the cache tree with godirwalk.
type DefaultFileSystemWalker struct{}

func (d *DefaultFileSystemWalker) Walk(root string, options *godirwalk.Options) error {
	return godirwalk.Walk(root, options)
}

const (
	latexMetadataStart = "% --- CHUNK_METADATA_START ---"
	latexMetadataEnd   = "% --- CHUNK_METADATA_END ---"
	mystMetadataStart  = "<!-- CHUNK_METADATA_START"
	mystMetadataEnd    = "CHUNK_METADATA_END -->"
)

var kvLine = regexp.MustCompile(`^\s*(?:%\s*)?([a-zA-Z_]+):\s*(.*)$`)

// Metadata is one chunk's embedded review-queue record.
type Metadata struct {
	SrcChecksum string
	NeedsReview bool
	Exception   string // set when the chunk carries not-translated-due-to-exception
}

// ParseFence extracts a Metadata block from chunkText, grounded on the
// grammar above. ok is false when chunkText carries no recognizable
// fence (most chunks: only review-flagged or rebuilder-eligible chunks
// carry one).
func ParseFence(chunkText string) (Metadata, bool) {
	start, end, ok := findFence(chunkText, latexMetadataStart, latexMetadataEnd)
	if !ok {
		start, end, ok = findFence(chunkText, mystMetadataStart, mystMetadataEnd)
	}
	if !ok {
		return Metadata{}, false
	}

	body := chunkText[start:end]
	meta := Metadata{}
	for _, line := range strings.Split(body, "\n") {
		m := kvLine.FindStringSubmatch(line)
		if m == nil {
			continue
		}
		key, val := strings.ToLower(m[1]), strings.TrimSpace(m[2])
		switch key {
		case "src_checksum":
			meta.SrcChecksum = val
		case "needs_review":
			meta.NeedsReview = strings.EqualFold(val, "true") || val == "1"
		case "exception", "not_translated_due_to_exception":
			meta.Exception = val
		}
	}
	return meta, meta.SrcChecksum != ""
}

func findFence(text, startMarker, endMarker string) (int, int, bool) {
	s := strings.Index(text, startMarker)
	if s < 0 {
		return 0, 0, false
	}
	e := strings.Index(text[s:], endMarker)
	if e < 0 {
		return 0, 0, false
	}
	return s + len(startMarker), s + e, true
}

// Rebuilder reconstructs correspondence rows directly from a
// source/target file pair, bypassing the model entirely.
type Rebuilder struct {
	Backend *cachebackend.Backend
	Walker  FileSystemWalker // nil uses DefaultFileSystemWalker
}

func (r *Rebuilder) walker() FileSystemWalker {
	if r.Walker != nil {
		return r.Walker
	}
	return &DefaultFileSystemWalker{}
}

// RebuildChunk persists the (srcText, tgtText) pair for relativePath
// without consulting the model, using the target chunk's embedded
// src_checksum only to validate that it was produced from this exact
// source chunk (mismatch is reported, not silently overwritten).
func (r *Rebuilder) RebuildChunk(srcLang, tgtLang doctypes.Language, srcText, tgtChunkText, relativePath string) error {
	meta, ok := ParseFence(tgtChunkText)
	tgtText := stripFence(tgtChunkText)

	if ok {
		expected := checksum.Of(srcText)
		if meta.SrcChecksum != expected {
			return &doctranerr.CacheCorrupt{
				Reason: "rebuilder: target chunk's embedded src_checksum does not match the supplied source chunk for " + relativePath,
			}
		}
	}

	return r.Backend.PersistPair(srcLang, tgtLang, srcText, tgtText, relativePath)
}

// Fence wraps text with the embedded metadata fence ParseFence reads
// back, for the two chunk types that have a flat-text comment grammar
// to carry one in (LaTeX, MyST). Every chunk of those types carries
// src_checksum and needs_review once it passes through the file-level
// translation loop; exception, when non-empty, additionally tags the
// chunk not_translated_due_to_exception, marking text as the chunk's
// original source rather than a model translation. Chunk types with no
// flat-text fence grammar (code, plain prose) are returned unchanged —
// Jupyter code cells and MyST/notebook review flags live in JSON cell
// metadata one layer up, outside this package's text-fence concern.
func Fence(chunkType doctypes.ChunkType, text, srcChecksum, exception string) string {
	var start, end, prefix string
	switch chunkType {
	case doctypes.ChunkLatex:
		start, end, prefix = latexMetadataStart, latexMetadataEnd, "% "
	case doctypes.ChunkMyst:
		start, end, prefix = mystMetadataStart, mystMetadataEnd, ""
	default:
		return text
	}

	var b strings.Builder
	b.WriteString(start)
	b.WriteString("\n")
	b.WriteString(prefix + "src_checksum: " + srcChecksum + "\n")
	b.WriteString(prefix + "needs_review: True\n")
	if exception != "" {
		b.WriteString(prefix + "not_translated_due_to_exception: " + strings.ReplaceAll(exception, "\n", " ") + "\n")
	}
	b.WriteString(end)
	b.WriteString("\n")
	b.WriteString(text)
	return b.String()
}

// stripFence removes an embedded metadata fence from chunk text before
// it is persisted as the translation body.
func stripFence(text string) string {
	for _, pair := range [][2]string{{latexMetadataStart, latexMetadataEnd}, {mystMetadataStart, mystMetadataEnd}} {
		s := strings.Index(text, pair[0])
		if s < 0 {
			continue
		}
		eRel := strings.Index(text[s:], pair[1])
		if eRel < 0 {
			continue
		}
		e := s + eRel + len(pair[1])
		text = strings.TrimSpace(text[:s] + text[e:])
	}
	return text
}

// RebuildReport summarizes one ScanAndRebuild pass.
type RebuildReport struct {
	BlobsScanned    int
	RowsRebuilt     int
	FenceMismatches int
}

// ScanAndRebuild walks every blob cached for tgtLang under pathHash,
// looking for ones that carry an embedded metadata fence but whose
// correspondence row is missing — the state left behind when a prior
// run persisted the target blob but crashed before writing the
// correspondence.csv row linking it back to its source chunk. For each
// one found, it fetches the source chunk by the fence's src_checksum
// from srcLang's blobs and replays RebuildChunk to restore the row.
func (r *Rebuilder) ScanAndRebuild(relativePath string, srcLang, tgtLang doctypes.Language) (RebuildReport, error) {
	report := RebuildReport{}

	pathHash, err := r.Backend.RegisterPathHash(relativePath)
	if err != nil {
		return report, err
	}

	dir := filepath.Join(r.Backend.RootPath, string(tgtLang), pathHash)
	var sums []string
	err = r.walker().Walk(dir, &godirwalk.Options{
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
			return report, nil
		}
		return report, err
	}

	for _, sum := range sums {
		report.BlobsScanned++

		tgtText, ok, err := r.Backend.ReadBlob(sum, tgtLang, pathHash)
		if err != nil || !ok {
			continue
		}

		meta, ok := ParseFence(tgtText)
		if !ok {
			continue
		}

		if _, found, err := r.Backend.FindCorrespondent(meta.SrcChecksum, srcLang, tgtLang, pathHash); err == nil && found {
			continue
		}

		srcText, ok, err := r.Backend.ReadBlob(meta.SrcChecksum, srcLang, pathHash)
		if err != nil || !ok {
			report.FenceMismatches++
			continue
		}

		if err := r.RebuildChunk(srcLang, tgtLang, srcText, tgtText, relativePath); err != nil {
			report.FenceMismatches++
			continue
		}
		report.RowsRebuilt++
	}

	return report, nil
}
