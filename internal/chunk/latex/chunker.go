package latex

import "github.com/seanblong/doctran/pkg/doctypes"

// Chunk splits a LaTeX document into ordered Chunks, each carrying its
// own Segment stream ready for the XML envelope.
func Chunk(source string, srcLang, tgtLang doctypes.Language, relativePath string) []doctypes.Chunk {
	raws := Split(source)
	chunks := make([]doctypes.Chunk, 0, len(raws))
	for _, raw := range raws {
		chunks = append(chunks, doctypes.Chunk{
			Text:         raw,
			ChunkType:    doctypes.ChunkLatex,
			DocType:      doctypes.LaTeX,
			SrcLang:      srcLang,
			TgtLang:      tgtLang,
			RelativePath: relativePath,
			Segments:     Segments(raw),
		})
	}
	return chunks
}
