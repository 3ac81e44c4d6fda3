// Package notebook implements the Jupyter notebook structural chunker
// (spec §4.D): one chunk per cell, code cells passed through as opaque
// placeholders, markdown cells routed through the MyST chunker.
package notebook

import (
	"encoding/json"
	"strings"

	"github.com/seanblong/doctran/internal/checksum"
	"github.com/seanblong/doctran/internal/chunk/myst"
	"github.com/seanblong/doctran/internal/doctranerr"
	"github.com/seanblong/doctran/pkg/doctypes"
)

type rawNotebook struct {
	Cells []rawCell `json:"cells"`
}

type rawCell struct {
	CellType string          `json:"cell_type"`
	Source   json.RawMessage `json:"source"`
	Metadata map[string]any  `json:"metadata,omitempty"`
}

func cellSource(c rawCell) (string, error) {
	var asString string
	if err := json.Unmarshal(c.Source, &asString); err == nil {
		return asString, nil
	}
	var asLines []string
	if err := json.Unmarshal(c.Source, &asLines); err == nil {
		return strings.Join(asLines, ""), nil
	}
	return "", &doctranerr.DocumentParseError{Path: "", Cause: nil}
}

// CellResult carries one cell's chunk plus the review-queue metadata the
// caller should persist alongside it (spec §4.H rebuilder grammar).
type CellResult struct {
	Chunk       doctypes.Chunk
	SrcChecksum string
	CellIndex   int
}

// Chunk parses a .ipynb document and returns one chunk per cell, in
// document order. Raw (non-code, non-markdown) cell types are carried
// through as placeholder-only chunks so no cell is silently dropped.
func Chunk(source string, srcLang, tgtLang doctypes.Language, relativePath string) ([]CellResult, error) {
	var nb rawNotebook
	if err := json.Unmarshal([]byte(source), &nb); err != nil {
		return nil, &doctranerr.DocumentParseError{Path: relativePath, Cause: err}
	}

	results := make([]CellResult, 0, len(nb.Cells))
	for idx, cell := range nb.Cells {
		text, err := cellSource(cell)
		if err != nil {
			return nil, &doctranerr.DocumentParseError{Path: relativePath, Cause: err}
		}

		var chunk doctypes.Chunk
		switch cell.CellType {
		case "markdown":
			sub := myst.Chunk(text, srcLang, tgtLang, relativePath)
			chunk = mergeAsSingleChunk(sub, text, srcLang, tgtLang, relativePath)
		default: // "code" and any other cell type are treated as opaque.
			chunk = doctypes.Chunk{
				Text:         text,
				ChunkType:    doctypes.ChunkCode,
				DocType:      doctypes.Jupyter,
				SrcLang:      srcLang,
				TgtLang:      tgtLang,
				RelativePath: relativePath,
				Segments:     []doctypes.Segment{{Kind: doctypes.SegmentPlaceholder, S: text}},
			}
		}

		results = append(results, CellResult{
			Chunk:       chunk,
			SrcChecksum: checksum.Of(text),
			CellIndex:   idx,
		})
	}
	return results, nil
}

// mergeAsSingleChunk flattens the MyST chunker's per-block output back
// into one chunk per notebook cell: the orchestrator persists and
// reviews a cell as a unit, even though its markdown is internally
// multi-block.
func mergeAsSingleChunk(blocks []doctypes.Chunk, text string, srcLang, tgtLang doctypes.Language, relativePath string) doctypes.Chunk {
	var segs []doctypes.Segment
	for i, b := range blocks {
		segs = append(segs, b.Segments...)
		if i < len(blocks)-1 {
			segs = append(segs, doctypes.Segment{Kind: doctypes.SegmentPlaceholder, S: "\n\n"})
		}
	}
	return doctypes.Chunk{
		Text:         text,
		ChunkType:    doctypes.ChunkMyst,
		DocType:      doctypes.Jupyter,
		SrcLang:      srcLang,
		TgtLang:      tgtLang,
		RelativePath: relativePath,
		Segments:     doctypes.Coalesce(segs),
	}
}
