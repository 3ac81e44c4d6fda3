// Package translator implements Component F: the per-chunk translation
// orchestrator. It wires together the structural chunkers' Segment
// streams, the XML envelope, the cache backend, an example retriever,
// and a ModelCaller behind a single TranslateChunk/TranslateFile entry
// point, with in-file chunks always translated strictly in document
// order (never fanned out within one file).
package translator

import "github.com/seanblong/doctran/pkg/doctypes"

// Meta carries the context a prompt builder needs beyond the chunk
// text itself.
type Meta struct {
	DocType      doctypes.DocType
	ChunkType    doctypes.ChunkType
	SrcLang      doctypes.Language
	TgtLang      doctypes.Language
	RelativePath string
	Vocabulary   map[string]string // source term -> preferred target term
}

// ExamplePair is a retrieved near-duplicate source/target pair, used to
// few-shot the model via the [OLD_SRC]/[OLD_TGT] prompt macros.
type ExamplePair struct {
	OldSrc string
	OldTgt string
}

// WithExampleMeta bundles Meta with an optional retrieved example. A nil
// Example means the prompt is built with no few-shot pair, which is the
// common case when the retriever's similarity gate was not met.
type WithExampleMeta struct {
	Meta
	Example *ExamplePair
}

func metaFromChunk(c doctypes.Chunk) Meta {
	return Meta{
		DocType:      c.DocType,
		ChunkType:    c.ChunkType,
		SrcLang:      c.SrcLang,
		TgtLang:      c.TgtLang,
		RelativePath: c.RelativePath,
	}
}
