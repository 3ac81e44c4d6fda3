// Package plain implements the fallback chunker (spec §4.D, "Plain/
// other"): documents with no recognized structural grammar are split
// into fixed line windows and translated as opaque text, with no
// placeholder protection.
package plain

import (
	"strings"

	"github.com/seanblong/doctran/pkg/doctypes"
)

// DefaultWindowLines is the number of source lines per chunk when the
// caller does not override it.
const DefaultWindowLines = 50

// Chunk splits source into fixed-size line windows. Each window becomes
// one Chunk with a single Text segment; there is no placeholder
// extraction for this document type.
func Chunk(source string, windowLines int, srcLang, tgtLang doctypes.Language, relativePath string) []doctypes.Chunk {
	if windowLines <= 0 {
		windowLines = DefaultWindowLines
	}
	lines := strings.Split(source, "\n")

	var chunks []doctypes.Chunk
	for start := 0; start < len(lines); start += windowLines {
		end := start + windowLines
		if end > len(lines) {
			end = len(lines)
		}
		text := strings.Join(lines[start:end], "\n")
		chunks = append(chunks, doctypes.Chunk{
			Text:         text,
			ChunkType:    doctypes.ChunkOther,
			DocType:      doctypes.Other,
			SrcLang:      srcLang,
			TgtLang:      tgtLang,
			RelativePath: relativePath,
			Segments:     []doctypes.Segment{{Kind: doctypes.SegmentText, S: text}},
		})
	}
	return chunks
}
