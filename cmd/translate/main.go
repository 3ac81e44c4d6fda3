// Command translate is a thin demo harness wiring the cache backend,
// the structural chunkers, the example retriever, and the orchestrator
// against one file at a time. Locating files to translate and sniffing
// their document type is the calling shell's job per spec; this binary
// takes an already-identified file and document type and drives the
// pipeline end to end.
package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/rs/zerolog"
	"github.com/spf13/pflag"

	"github.com/seanblong/doctran/internal/cachebackend"
	"github.com/seanblong/doctran/internal/chunk/latex"
	"github.com/seanblong/doctran/internal/chunk/myst"
	"github.com/seanblong/doctran/internal/chunk/notebook"
	"github.com/seanblong/doctran/internal/chunk/plain"
	"github.com/seanblong/doctran/internal/config"
	"github.com/seanblong/doctran/internal/modelcaller"
	"github.com/seanblong/doctran/internal/retrieval"
	"github.com/seanblong/doctran/internal/retrieval/vectorindex"
	"github.com/seanblong/doctran/internal/translator"
	"github.com/seanblong/doctran/pkg/doctypes"
)

func main() {
	fs := pflag.NewFlagSet("doctran-translate", pflag.ExitOnError)
	srcPath := fs.String("src", "", "Path to the source file to translate")
	docType := fs.String("doctype", "other", "Document type: jupyter|markdown|latex|other")
	srcLang := fs.String("src-lang", string(doctypes.English), "Source language")
	tgtLang := fs.String("tgt-lang", string(doctypes.French), "Target language")
	relPath := fs.String("rel-path", "", "Cache-relative path identity (defaults to --src)")

	cfg, err := config.Load("", fs)
	if err != nil {
		fmt.Fprintln(os.Stderr, "load configuration:", err)
		os.Exit(1)
	}
	fs.Usage = cfg.Usage

	level, err := zerolog.ParseLevel(cfg.LogLevel)
	if err != nil {
		fmt.Fprintln(os.Stderr, "invalid log level:", err)
		os.Exit(1)
	}
	logger := zerolog.New(os.Stderr).Level(level).With().Timestamp().Logger()

	if *srcPath == "" {
		fmt.Fprintln(os.Stderr, "--src is required")
		os.Exit(2)
	}
	relativePath := *relPath
	if relativePath == "" {
		relativePath = *srcPath
	}

	source, err := os.ReadFile(*srcPath)
	if err != nil {
		logger.Fatal().Err(err).Str("path", *srcPath).Msg("read source file")
	}

	backend, err := cachebackend.New(cfg.CacheRoot)
	if err != nil {
		logger.Fatal().Err(err).Msg("open cache")
	}

	ctx := context.Background()
	var idx *vectorindex.Index
	if cfg.VectorIndexDatabaseURL != "" {
		idx, err = vectorindex.New(ctx, cfg.VectorIndexDatabaseURL)
		if err != nil {
			logger.Fatal().Err(err).Msg("connect vector index")
		}
		defer idx.Close()
		if err := idx.Migrate(ctx, 64); err != nil {
			logger.Fatal().Err(err).Msg("migrate vector index")
		}
		backend.VectorIndex = idx
	}

	caller, err := modelcaller.New(modelcaller.Config{
		Provider:    modelcaller.Provider(cfg.Provider),
		APIKey:      cfg.APIKey,
		Model:       cfg.Model,
		Endpoint:    cfg.Endpoint,
		ProjectID:   cfg.ProjectID,
		Location:    cfg.Location,
		Cooldown:    time.Duration(cfg.CooldownMs) * time.Millisecond,
		Temperature: float32(cfg.Temperature),
		MaxTokens:   int32(cfg.MaxTokens),
	})
	if err != nil {
		logger.Fatal().Err(err).Msg("construct model caller")
	}

	var retriever *retrieval.Retriever
	if idx != nil {
		retriever = &retrieval.Retriever{Backend: backend, Index: idx}
	} else {
		retriever = &retrieval.Retriever{Backend: backend}
	}

	orch := &translator.Orchestrator{
		Backend:     backend,
		Caller:      caller,
		Retriever:   retriever,
		RetryConfig: translator.DefaultRetryConfig(),
	}

	chunks, err := chunksFor(doctypes.DocType(*docType), string(source), doctypes.Language(*srcLang), doctypes.Language(*tgtLang), relativePath)
	if err != nil {
		logger.Fatal().Err(err).Msg("chunk source")
	}

	translated, err := orch.TranslateFile(ctx, chunks)
	if err != nil {
		logger.Error().Err(err).Int("chunks_completed", len(translated)).Msg("translation stopped early")
	}

	for _, t := range translated {
		fmt.Println(t)
	}
	if err != nil {
		os.Exit(1)
	}
}

// chunksFor dispatches to the structural chunker matching docType. The
// caller is expected to have already identified docType (spec treats
// the detector as an external collaborator); this is not a sniffing
// fallback ladder.
func chunksFor(docType doctypes.DocType, source string, srcLang, tgtLang doctypes.Language, relativePath string) ([]doctypes.Chunk, error) {
	switch docType {
	case doctypes.LaTeX:
		return latex.Chunk(source, srcLang, tgtLang, relativePath), nil
	case doctypes.Markdown:
		return myst.Chunk(source, srcLang, tgtLang, relativePath), nil
	case doctypes.Jupyter:
		results, err := notebook.Chunk(source, srcLang, tgtLang, relativePath)
		if err != nil {
			return nil, err
		}
		chunks := make([]doctypes.Chunk, 0, len(results))
		for _, r := range results {
			chunks = append(chunks, r.Chunk)
		}
		return chunks, nil
	default:
		return plain.Chunk(source, 40, srcLang, tgtLang, relativePath), nil
	}
}
