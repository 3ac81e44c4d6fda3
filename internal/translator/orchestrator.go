package translator

import (
	"context"
	"strings"

	"github.com/rs/zerolog/log"

	"github.com/seanblong/doctran/internal/cachebackend"
	"github.com/seanblong/doctran/internal/checksum"
	"github.com/seanblong/doctran/internal/doctranerr"
	"github.com/seanblong/doctran/internal/modelcaller"
	"github.com/seanblong/doctran/internal/rebuilder"
	"github.com/seanblong/doctran/internal/xmlenvelope"
	"github.com/seanblong/doctran/pkg/doctypes"
)

// Retriever supplies a few-shot example for a chunk, or ok=false when no
// sufficiently similar prior translation exists (spec §4.G's similarity
// gate). Kept as an interface here so the orchestrator never imports
// internal/retrieval directly — retrieval is optional.
type Retriever interface {
	BestExample(srcText string, srcLang, tgtLang doctypes.Language, relativePath string) (ExamplePair, bool)
}

// Orchestrator is Component F: it looks a chunk up in the cache,
// builds a prompt on miss, calls the model with retry, recovers the
// translation from the XML envelope, and persists the pair.
type Orchestrator struct {
	Backend     *cachebackend.Backend
	Caller      modelcaller.ModelCaller
	Retriever   Retriever // may be nil
	Vocabulary  map[string]string
	RetryConfig RetryConfig
}

// TranslateChunk translates a single chunk, honoring the cache and the
// placeholder-only fast path. It never mutates chunk order guarantees:
// callers are responsible for invoking it strictly in document order
// within one file.
func (o *Orchestrator) TranslateChunk(ctx context.Context, chunk doctypes.Chunk) (string, error) {
	if strings.TrimSpace(chunk.Text) == "" {
		return chunk.Text, nil
	}

	if chunk.SrcLang == chunk.TgtLang {
		return chunk.Text, nil
	}

	if chunk.PlaceholderOnly() {
		if err := o.Backend.PersistPair(chunk.SrcLang, chunk.TgtLang, chunk.Text, chunk.Text, chunk.RelativePath); err != nil {
			return "", err
		}
		return chunk.Text, nil
	}

	srcChecksum := checksum.Of(chunk.Text)
	if cached, ok, err := o.Backend.Lookup(srcChecksum, chunk.SrcLang, chunk.TgtLang, chunk.RelativePath); err != nil {
		return "", err
	} else if ok {
		return cached, nil
	}

	meta := WithExampleMeta{Meta: metaFromChunk(chunk)}
	meta.Vocabulary = o.Vocabulary
	if o.Retriever != nil {
		if ex, ok := o.Retriever.BestExample(chunk.Text, chunk.SrcLang, chunk.TgtLang, chunk.RelativePath); ok {
			meta.Example = &ex
		}
	}

	strat := StrategyFor(chunk.DocType, chunk.ChunkType)

	var payload string
	if strat.UseXMLEnvelope {
		xmlStr, _, _ := xmlenvelope.ToXML(chunk.Segments)
		payload = xmlStr
	} else {
		payload = chunk.Text
	}

	prompt := buildPrompt(strat.PromptTemplate, meta, payload)

	response, err := callWithRetry(ctx, o.Caller, prompt, o.RetryConfig)
	if err != nil {
		log.Error().Err(err).Str("path", chunk.RelativePath).Msg("translator: chunk failed")
		return "", &doctranerr.ChunkTranslationFailed{Text: chunk.Text, Cause: err}
	}

	output := extractOutput(response)
	var translated string
	if strat.UseXMLEnvelope {
		translated = xmlenvelope.FromXML(output)
	} else {
		translated = output
	}

	if err := o.Backend.PersistPair(chunk.SrcLang, chunk.TgtLang, chunk.Text, translated, chunk.RelativePath); err != nil {
		return "", err
	}
	return translated, nil
}

// TranslateFile translates every chunk of one file strictly in order.
// A ChunkTranslationFailed is recovered locally, right here, so one bad
// paragraph never aborts the rest of the file: the chunk is written
// back with its original source text and flagged
// not-translated-due-to-exception, and the loop continues to the next
// chunk. Any other error (cache I/O, a canceled context) is not a
// per-chunk concern and propagates immediately, alongside whatever
// chunks were already translated. The context is checked before each
// chunk; a model call that fails because of a cancellation is recovered
// like any other chunk failure, and the loop then stops before the next
// chunk with the context's error.
//
// Every LaTeX or MyST chunk's text in the returned slice carries an
// embedded metadata fence (src_checksum, needs_review, and — on
// recovery — the exception tag); internal/rebuilder's ParseFence reads
// it back to reconstruct cache state from this exact output later.
func (o *Orchestrator) TranslateFile(ctx context.Context, chunks []doctypes.Chunk) ([]string, error) {
	out := make([]string, 0, len(chunks))
	for _, c := range chunks {
		if err := ctx.Err(); err != nil {
			return out, err
		}
		translated, err := o.TranslateChunk(ctx, c)

		exception := ""
		if err != nil {
			var failed *doctranerr.ChunkTranslationFailed
			if !asChunkTranslationFailed(err, &failed) {
				return out, err
			}
			log.Warn().Err(failed.Cause).Str("path", c.RelativePath).
				Msg("translator: chunk recovered with source text, flagged not-translated-due-to-exception")
			translated = failed.Text
			exception = failed.Cause.Error()
		}

		out = append(out, rebuilder.Fence(c.ChunkType, translated, checksum.Of(c.Text), exception))
	}
	return out, nil
}

func asChunkTranslationFailed(err error, target **doctranerr.ChunkTranslationFailed) bool {
	f, ok := err.(*doctranerr.ChunkTranslationFailed)
	if ok {
		*target = f
	}
	return ok
}
