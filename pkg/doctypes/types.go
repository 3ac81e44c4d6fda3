// Package doctypes holds the enumerations and value types shared across the
// translation cache, chunkers, and orchestrator. Keeping them in a leaf
// package avoids import cycles between cachebackend, chunk, and translator.
package doctypes

// Language is a configured translation language. The zero value is invalid.
type Language string

const (
	French    Language = "French"
	English   Language = "English"
	German    Language = "German"
	Spanish   Language = "Spanish"
	Ukrainian Language = "Ukrainian"
)

// DocType classifies a source file for strategy dispatch.
type DocType string

const (
	Jupyter  DocType = "jupyter"
	Markdown DocType = "markdown"
	LaTeX    DocType = "latex"
	Other    DocType = "other"
)

// ChunkType classifies one chunk within a file for strategy dispatch.
type ChunkType string

const (
	ChunkMyst  ChunkType = "myst"
	ChunkCode  ChunkType = "code"
	ChunkLatex ChunkType = "latex"
	ChunkOther ChunkType = "other"
)

// SegmentKind tags a Segment as translatable prose or a verbatim fragment.
type SegmentKind int

const (
	SegmentText SegmentKind = iota
	SegmentPlaceholder
)

// Segment is one unit of a chunker's output stream. A Segment is either
// Text (natural language, sent to the model) or Placeholder (syntax that
// must survive the round trip byte-for-byte).
type Segment struct {
	Kind SegmentKind
	S    string
}

// Coalesce merges consecutive placeholder segments emitted by a chunker
// as fragments of the same syntactic token (an escape sequence split
// across bytes, for instance). Chunkers call this once, at emission
// time; downstream consumers must not call it again, or placeholders
// that were always meant to stay distinct (two separate macros that
// simply happen to be adjacent) would be merged into one.
func Coalesce(segs []Segment) []Segment {
	out := make([]Segment, 0, len(segs))
	for _, seg := range segs {
		if seg.Kind == SegmentPlaceholder && len(out) > 0 && out[len(out)-1].Kind == SegmentPlaceholder {
			out[len(out)-1].S += seg.S
			continue
		}
		out = append(out, seg)
	}
	return out
}

// HasText reports whether any segment in the stream is translatable text.
// A chunk whose segments are all Placeholder is "placeholder-only": it
// skips the model entirely.
func HasText(segs []Segment) bool {
	for _, s := range segs {
		if s.Kind == SegmentText && s.S != "" {
			return true
		}
	}
	return false
}

// Render concatenates a segment stream back into plain text, ignoring the
// Text/Placeholder distinction. Used for round-trip verification in the
// chunker and envelope tests.
func Render(segs []Segment) string {
	var out []byte
	for _, s := range segs {
		out = append(out, s.S...)
	}
	return string(out)
}

// Chunk is one ordered, contiguous fragment of a source document as
// produced by a chunker, carrying the context the orchestrator needs to
// look it up in cache and build a prompt for it.
type Chunk struct {
	Text         string
	ChunkType    ChunkType
	DocType      DocType
	SrcLang      Language
	TgtLang      Language
	RelativePath string
	ProgLang     string
	Segments     []Segment
}

// PlaceholderOnly reports whether this chunk has no translatable text.
func (c Chunk) PlaceholderOnly() bool {
	return !HasText(c.Segments)
}
