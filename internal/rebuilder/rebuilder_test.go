package rebuilder

import (
	"path/filepath"
	"testing"

	"github.com/seanblong/doctran/internal/cachebackend"
	"github.com/seanblong/doctran/internal/checksum"
	"github.com/seanblong/doctran/pkg/doctypes"
)

func TestParseFence_LatexStyle(t *testing.T) {
	src := "Bonjour le monde.\n% --- CHUNK_METADATA_START ---\n% src_checksum: abc123\n% needs_review: true\n% --- CHUNK_METADATA_END ---"
	meta, ok := ParseFence(src)
	if !ok {
		t.Fatal("expected a parsed fence")
	}
	if meta.SrcChecksum != "abc123" {
		t.Errorf("SrcChecksum = %q, want %q", meta.SrcChecksum, "abc123")
	}
	if !meta.NeedsReview {
		t.Error("expected NeedsReview = true")
	}
}

func TestParseFence_NoFenceReturnsFalse(t *testing.T) {
	_, ok := ParseFence("plain translated text")
	if ok {
		t.Error("expected ok = false for text with no metadata fence")
	}
}

func TestRebuildChunk_PersistsWithoutModel(t *testing.T) {
	root := filepath.Join(t.TempDir(), "cache")
	b, err := cachebackend.New(root)
	if err != nil {
		t.Fatalf("cachebackend.New() error = %v", err)
	}
	rb := &Rebuilder{Backend: b}

	srcText := "Hello world."
	sum := checksum.Of(srcText)
	tgtChunk := "Bonjour le monde.\n% --- CHUNK_METADATA_START ---\n% src_checksum: " + sum + "\n% --- CHUNK_METADATA_END ---"

	if err := rb.RebuildChunk(doctypes.English, doctypes.French, srcText, tgtChunk, "a.md"); err != nil {
		t.Fatalf("RebuildChunk() error = %v", err)
	}

	got, ok, err := b.Lookup(sum, doctypes.English, doctypes.French, "a.md")
	if err != nil {
		t.Fatalf("Lookup() error = %v", err)
	}
	if !ok || got != "Bonjour le monde." {
		t.Errorf("Lookup() = (%q, %v), want (\"Bonjour le monde.\", true)", got, ok)
	}
}

func TestRebuildChunk_ChecksumMismatchErrors(t *testing.T) {
	root := filepath.Join(t.TempDir(), "cache")
	b, err := cachebackend.New(root)
	if err != nil {
		t.Fatalf("cachebackend.New() error = %v", err)
	}
	rb := &Rebuilder{Backend: b}

	tgtChunk := "Bonjour.\n% --- CHUNK_METADATA_START ---\n% src_checksum: deadbeef\n% --- CHUNK_METADATA_END ---"
	if err := rb.RebuildChunk(doctypes.English, doctypes.French, "Hello.", tgtChunk, "a.md"); err == nil {
		t.Error("expected a checksum mismatch error")
	}
}

func TestScanAndRebuild_RestoresRowForOrphanBlob(t *testing.T) {
	root := filepath.Join(t.TempDir(), "cache")
	b, err := cachebackend.New(root)
	if err != nil {
		t.Fatalf("cachebackend.New() error = %v", err)
	}
	rb := &Rebuilder{Backend: b}

	pathHash, err := b.RegisterPathHash("a.md")
	if err != nil {
		t.Fatalf("RegisterPathHash() error = %v", err)
	}

	srcText := "Hello world."
	srcSum, err := b.AddBlob(srcText, doctypes.English, pathHash)
	if err != nil {
		t.Fatalf("AddBlob(src) error = %v", err)
	}

	tgtChunk := "Bonjour le monde.\n% --- CHUNK_METADATA_START ---\n% src_checksum: " + srcSum + "\n% --- CHUNK_METADATA_END ---"
	if _, err := b.AddBlob(tgtChunk, doctypes.French, pathHash); err != nil {
		t.Fatalf("AddBlob(tgt) error = %v", err)
	}

	if _, found, _ := b.FindCorrespondent(srcSum, doctypes.English, doctypes.French, pathHash); found {
		t.Fatal("expected no correspondence row before the scan")
	}

	report, err := rb.ScanAndRebuild("a.md", doctypes.English, doctypes.French)
	if err != nil {
		t.Fatalf("ScanAndRebuild() error = %v", err)
	}
	if report.RowsRebuilt != 1 {
		t.Errorf("RowsRebuilt = %d, want 1", report.RowsRebuilt)
	}

	got, ok, err := b.Lookup(srcSum, doctypes.English, doctypes.French, "a.md")
	if err != nil {
		t.Fatalf("Lookup() error = %v", err)
	}
	if !ok || got != "Bonjour le monde." {
		t.Errorf("Lookup() = (%q, %v), want (\"Bonjour le monde.\", true)", got, ok)
	}
}

func TestScanAndRebuild_MissingDirectoryIsNotAnError(t *testing.T) {
	root := filepath.Join(t.TempDir(), "cache")
	b, err := cachebackend.New(root)
	if err != nil {
		t.Fatalf("cachebackend.New() error = %v", err)
	}
	rb := &Rebuilder{Backend: b}

	report, err := rb.ScanAndRebuild("never-seen.md", doctypes.English, doctypes.French)
	if err != nil {
		t.Fatalf("ScanAndRebuild() error = %v", err)
	}
	if report.BlobsScanned != 0 || report.RowsRebuilt != 0 {
		t.Errorf("report = %+v, want zero-value", report)
	}
}
