package retrieval

import (
	"context"

	"github.com/rs/zerolog/log"

	"github.com/seanblong/doctran/internal/cachebackend"
	"github.com/seanblong/doctran/internal/checksum"
	"github.com/seanblong/doctran/internal/fingerprint"
	"github.com/seanblong/doctran/internal/translator"
	"github.com/seanblong/doctran/pkg/doctypes"
)

// Threshold is the Ratio a cached source chunk must exceed against the
// chunk being translated for its translation to be offered to the model
// as a few-shot example (spec's τ = 0.7); a ratio of exactly 0.7 does
// not qualify.
const Threshold = 0.7

// prefilterShortlistSize bounds how many approximate-nearest-neighbor
// candidates the vector prefilter hands to the exact LCS-ratio pass.
const prefilterShortlistSize = 20

// ExamplePair is an alias for the orchestrator's example type: Retriever
// implements translator.Retriever directly, so both packages must agree
// on the exact return type.
type ExamplePair = translator.ExamplePair

// VectorPrefilter narrows a (language, path hash) scope's candidate
// chunks before the exact LCS-ratio pass, the subset of
// vectorindex.Index that retrieval needs. Optional: a nil Index on
// Retriever falls back to scanning every cached chunk.
type VectorPrefilter interface {
	NearestNeighbors(ctx context.Context, lang doctypes.Language, pathHash string, vec []float32, limit int) ([]string, error)
}

// Retriever scans one (language, path_hash) cache directory for the
// most similar previously cached source chunk and, if it clears
// Threshold, returns its cached translation. When Index is set, an
// approximate-nearest-neighbor shortlist (by the deterministic, no-network
// fingerprint in internal/fingerprint) is scanned instead of every blob
// in scope — correctness is unchanged, since the LCS ratio, not the
// fingerprint distance, still decides the winner and the threshold check.
type Retriever struct {
	Backend *cachebackend.Backend
	Index   VectorPrefilter
}

// BestExample implements translator.Retriever.
func (r *Retriever) BestExample(srcText string, srcLang, tgtLang doctypes.Language, relativePath string) (ExamplePair, bool) {
	pathHash := checksum.PathHash(relativePath)

	sums := r.candidateSums(srcText, srcLang, pathHash)
	if len(sums) == 0 {
		return ExamplePair{}, false
	}

	bestRatio := 0.0
	bestSum := ""
	bestText := ""
	for _, sum := range sums {
		candidate, ok, err := r.Backend.ReadBlob(sum, srcLang, pathHash)
		if err != nil || !ok {
			continue
		}
		ratio := Ratio(srcText, candidate)
		if ratio > bestRatio {
			bestRatio, bestSum, bestText = ratio, sum, candidate
		}
	}

	if bestRatio <= Threshold {
		return ExamplePair{}, false
	}

	target, ok, err := r.Backend.FindCorrespondent(bestSum, srcLang, tgtLang, pathHash)
	if err != nil || !ok {
		log.Debug().Str("path", relativePath).Msg("retrieval: similarity match found but no target-language correspondent cached")
		return ExamplePair{}, false
	}

	return ExamplePair{OldSrc: bestText, OldTgt: target}, true
}

// candidateSums returns the blob checksums the exact ratio pass should
// consider: the vector prefilter's shortlist when available, otherwise
// every blob cached under (srcLang, pathHash).
func (r *Retriever) candidateSums(srcText string, srcLang doctypes.Language, pathHash string) []string {
	all, err := r.Backend.ListBlobs(srcLang, pathHash)
	if err != nil || len(all) == 0 {
		return nil
	}
	if r.Index == nil {
		return all
	}

	vec := fingerprint.Vector(srcText)
	shortlist, err := r.Index.NearestNeighbors(context.Background(), srcLang, pathHash, vec, prefilterShortlistSize)
	if err != nil || len(shortlist) == 0 {
		return all
	}
	return shortlist
}
