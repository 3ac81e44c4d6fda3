package translator

import "github.com/seanblong/doctran/pkg/doctypes"

// strategyKey dispatches on the (doc_type, chunk_type) pair, exactly as
// spec §4.F's strategy table is keyed.
type strategyKey struct {
	DocType   doctypes.DocType
	ChunkType doctypes.ChunkType
}

// strategy describes how to present one chunk type to the model.
type strategy struct {
	PromptTemplate string
	UseXMLEnvelope bool
}

const basePromptTemplate = `You are translating a [CONTENT_TYPE] document from [SOURCE_LANGUAGE] to [TARGET_LANGUAGE].
Preserve every <PH> element exactly as given; translate only the text between them.
[CUSTOM_VOCABULARY]
[OLD_SRC]
[OLD_TGT]
<input>
[SRC]
</input>
Respond with the translated document wrapped in <output>...</output>, using the identical <PH> placeholders.`

const plainPromptTemplate = `Translate the following [CONTENT_TYPE] text from [SOURCE_LANGUAGE] to [TARGET_LANGUAGE]. Preserve all formatting exactly.
[CUSTOM_VOCABULARY]
[OLD_SRC]
[OLD_TGT]
<input>
[SRC]
</input>
Respond with the translation wrapped in <output>...</output>.`

var defaultStrategies = map[strategyKey]strategy{
	{doctypes.LaTeX, doctypes.ChunkLatex}:     {PromptTemplate: basePromptTemplate, UseXMLEnvelope: true},
	{doctypes.Markdown, doctypes.ChunkMyst}:   {PromptTemplate: basePromptTemplate, UseXMLEnvelope: true},
	{doctypes.Jupyter, doctypes.ChunkMyst}:    {PromptTemplate: basePromptTemplate, UseXMLEnvelope: true},
	{doctypes.Jupyter, doctypes.ChunkCode}:    {PromptTemplate: "", UseXMLEnvelope: false}, // never reached: code chunks are placeholder-only
	{doctypes.Other, doctypes.ChunkOther}:     {PromptTemplate: plainPromptTemplate, UseXMLEnvelope: false},
}

// StrategyFor looks up the strategy for a chunk's (doc_type, chunk_type)
// pair, falling back to the plain-text strategy for any combination the
// table does not name explicitly — an unrecognized pairing should never
// crash the pipeline, only skip placeholder protection.
func StrategyFor(docType doctypes.DocType, chunkType doctypes.ChunkType) strategy {
	if s, ok := defaultStrategies[strategyKey{docType, chunkType}]; ok {
		return s
	}
	return strategy{PromptTemplate: plainPromptTemplate, UseXMLEnvelope: false}
}
