package retrieval

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/seanblong/doctran/internal/cachebackend"
	"github.com/seanblong/doctran/internal/checksum"
	"github.com/seanblong/doctran/pkg/doctypes"
)

// fakePrefilter always shortlists exactly the checksums it is constructed
// with, so tests can assert BestExample never considers chunks outside
// the shortlist.
type fakePrefilter struct{ shortlist []string }

func (f fakePrefilter) NearestNeighbors(ctx context.Context, lang doctypes.Language, pathHash string, vec []float32, limit int) ([]string, error) {
	return f.shortlist, nil
}

func TestBestExample_ReturnsClosestAboveThreshold(t *testing.T) {
	root := filepath.Join(t.TempDir(), "cache")
	b, err := cachebackend.New(root)
	if err != nil {
		t.Fatalf("cachebackend.New() error = %v", err)
	}

	if err := b.PersistPair(doctypes.English, doctypes.French, "The quick brown fox jumps.", "Le renard brun rapide saute.", "a.md"); err != nil {
		t.Fatalf("PersistPair() error = %v", err)
	}

	r := &Retriever{Backend: b}
	ex, ok := r.BestExample("The quick brown fox leaps.", doctypes.English, doctypes.French, "a.md")
	if !ok {
		t.Fatal("expected a match above threshold")
	}
	if ex.OldTgt != "Le renard brun rapide saute." {
		t.Errorf("unexpected example target: %q", ex.OldTgt)
	}
}

func TestBestExample_NoMatchBelowThreshold(t *testing.T) {
	root := filepath.Join(t.TempDir(), "cache")
	b, err := cachebackend.New(root)
	if err != nil {
		t.Fatalf("cachebackend.New() error = %v", err)
	}
	if err := b.PersistPair(doctypes.English, doctypes.French, "Completely unrelated sentence about astronomy.", "Phrase sans rapport.", "a.md"); err != nil {
		t.Fatalf("PersistPair() error = %v", err)
	}

	r := &Retriever{Backend: b}
	_, ok := r.BestExample("A recipe for banana bread.", doctypes.English, doctypes.French, "a.md")
	if ok {
		t.Error("expected no match below the similarity threshold")
	}
}

func TestBestExample_EmptyCacheMisses(t *testing.T) {
	root := filepath.Join(t.TempDir(), "cache")
	b, err := cachebackend.New(root)
	if err != nil {
		t.Fatalf("cachebackend.New() error = %v", err)
	}
	r := &Retriever{Backend: b}
	_, ok := r.BestExample("anything", doctypes.English, doctypes.French, "never-seen.md")
	if ok {
		t.Error("expected no match against an empty cache")
	}
}

func TestBestExample_VectorPrefilterShortlistExcludesCloserMatch(t *testing.T) {
	root := filepath.Join(t.TempDir(), "cache")
	b, err := cachebackend.New(root)
	if err != nil {
		t.Fatalf("cachebackend.New() error = %v", err)
	}

	const closeMatch = "The quick brown fox jumps."
	const decoyMatch = "The quick brown fox leaps swiftly today."
	if err := b.PersistPair(doctypes.English, doctypes.French, closeMatch, "Le renard brun rapide saute.", "a.md"); err != nil {
		t.Fatalf("PersistPair() error = %v", err)
	}
	if err := b.PersistPair(doctypes.English, doctypes.French, decoyMatch, "Leurre.", "a.md"); err != nil {
		t.Fatalf("PersistPair() error = %v", err)
	}

	r := &Retriever{
		Backend: b,
		Index:   fakePrefilter{shortlist: []string{checksum.Of(decoyMatch)}},
	}
	ex, ok := r.BestExample("The quick brown fox leaps.", doctypes.English, doctypes.French, "a.md")
	if !ok {
		t.Fatal("expected a match from the shortlisted candidate")
	}
	if ex.OldTgt != "Leurre." {
		t.Errorf("expected the shortlisted decoy's translation, got %q", ex.OldTgt)
	}
}

func TestBestExample_VectorPrefilterFallsBackOnEmptyShortlist(t *testing.T) {
	root := filepath.Join(t.TempDir(), "cache")
	b, err := cachebackend.New(root)
	if err != nil {
		t.Fatalf("cachebackend.New() error = %v", err)
	}
	if err := b.PersistPair(doctypes.English, doctypes.French, "The quick brown fox jumps.", "Le renard brun rapide saute.", "a.md"); err != nil {
		t.Fatalf("PersistPair() error = %v", err)
	}

	r := &Retriever{
		Backend: b,
		Index:   fakePrefilter{shortlist: nil},
	}
	ex, ok := r.BestExample("The quick brown fox leaps.", doctypes.English, doctypes.French, "a.md")
	if !ok {
		t.Fatal("expected a full-scan fallback match when the prefilter returns no candidates")
	}
	if ex.OldTgt != "Le renard brun rapide saute." {
		t.Errorf("unexpected example target: %q", ex.OldTgt)
	}
}
