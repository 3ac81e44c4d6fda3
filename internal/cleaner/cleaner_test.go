package cleaner

import (
	"path/filepath"
	"testing"

	"github.com/karrick/godirwalk"

	"github.com/seanblong/doctran/internal/cachebackend"
	"github.com/seanblong/doctran/internal/checksum"
	"github.com/seanblong/doctran/pkg/doctypes"
)

// MockFileSystemWalker lets a test drive ClearMissingChunks/ClearAll
// without a real cache directory on disk.
type MockFileSystemWalker struct {
	WalkFunc func(root string, options *godirwalk.Options) error
}

func (m *MockFileSystemWalker) Walk(root string, options *godirwalk.Options) error {
	return m.WalkFunc(root, options)
}

func TestClearMissingChunks_RemovesOrphanBlob(t *testing.T) {
	root := filepath.Join(t.TempDir(), "cache")
	b, err := cachebackend.New(root)
	if err != nil {
		t.Fatalf("cachebackend.New() error = %v", err)
	}
	if err := b.PersistPair(doctypes.English, doctypes.French, "stale chunk", "chunk obsolete", "a.md"); err != nil {
		t.Fatalf("PersistPair() error = %v", err)
	}

	c := &Cleaner{Backend: b}
	report, err := c.ClearMissingChunks("a.md", map[string]bool{}, false)
	if err != nil {
		t.Fatalf("ClearMissingChunks() error = %v", err)
	}
	if report.OrphanBlobsRemoved == 0 {
		t.Error("expected at least one orphan blob to be removed")
	}

	sum := checksum.Of("stale chunk")
	if b.BlobExists(sum, doctypes.English, checksum.PathHash("a.md")) {
		t.Error("expected the stale source blob to be removed")
	}
}

func TestClearMissingChunks_KeepsCurrentChunks(t *testing.T) {
	root := filepath.Join(t.TempDir(), "cache")
	b, err := cachebackend.New(root)
	if err != nil {
		t.Fatalf("cachebackend.New() error = %v", err)
	}
	if err := b.PersistPair(doctypes.English, doctypes.French, "still here", "toujours la", "a.md"); err != nil {
		t.Fatalf("PersistPair() error = %v", err)
	}

	c := &Cleaner{Backend: b}
	current := map[string]bool{checksum.Of("still here"): true, checksum.Of("toujours la"): true}
	report, err := c.ClearMissingChunks("a.md", current, false)
	if err != nil {
		t.Fatalf("ClearMissingChunks() error = %v", err)
	}
	if report.OrphanBlobsRemoved != 0 {
		t.Errorf("expected no blobs removed, got %d", report.OrphanBlobsRemoved)
	}
}

func TestClearAll_DryRunDoesNotDelete(t *testing.T) {
	root := filepath.Join(t.TempDir(), "cache")
	b, err := cachebackend.New(root)
	if err != nil {
		t.Fatalf("cachebackend.New() error = %v", err)
	}
	if err := b.PersistPair(doctypes.English, doctypes.French, "x", "y", "a.md"); err != nil {
		t.Fatalf("PersistPair() error = %v", err)
	}

	c := &Cleaner{Backend: b}
	report, err := c.ClearAll(Selector{}, true)
	if err != nil {
		t.Fatalf("ClearAll() error = %v", err)
	}
	if report.BlobsRemoved == 0 {
		t.Error("expected dry run to count matching blobs")
	}
	if !b.BlobExists(checksum.Of("x"), doctypes.English, checksum.PathHash("a.md")) {
		t.Error("dry run must not actually delete blobs")
	}
}

func TestClearAll_KeywordFilter(t *testing.T) {
	root := filepath.Join(t.TempDir(), "cache")
	b, err := cachebackend.New(root)
	if err != nil {
		t.Fatalf("cachebackend.New() error = %v", err)
	}
	if err := b.PersistPair(doctypes.English, doctypes.French, "keep me", "gardez moi", "a.md"); err != nil {
		t.Fatalf("PersistPair() error = %v", err)
	}
	if err := b.PersistPair(doctypes.English, doctypes.French, "drop target", "cible", "b.md"); err != nil {
		t.Fatalf("PersistPair() error = %v", err)
	}

	c := &Cleaner{Backend: b}
	report, err := c.ClearAll(Selector{Keyword: "target"}, false)
	if err != nil {
		t.Fatalf("ClearAll() error = %v", err)
	}
	if report.BlobsRemoved != 1 {
		t.Errorf("expected exactly 1 blob matching keyword, got %d", report.BlobsRemoved)
	}
	if !b.BlobExists(checksum.Of("keep me"), doctypes.English, checksum.PathHash("a.md")) {
		t.Error("expected non-matching blob to survive")
	}
}

func TestClearMissingChunks_UsesInjectedWalker(t *testing.T) {
	root := filepath.Join(t.TempDir(), "cache")
	b, err := cachebackend.New(root)
	if err != nil {
		t.Fatalf("cachebackend.New() error = %v", err)
	}
	if err := b.PersistPair(doctypes.English, doctypes.French, "stale chunk", "chunk obsolete", "a.md"); err != nil {
		t.Fatalf("PersistPair() error = %v", err)
	}

	var walked []string
	c := &Cleaner{
		Backend: b,
		Walker: &MockFileSystemWalker{
			WalkFunc: func(root string, options *godirwalk.Options) error {
				walked = append(walked, root)
				return godirwalk.Walk(root, options)
			},
		},
	}

	if _, err := c.ClearMissingChunks("a.md", map[string]bool{}, false); err != nil {
		t.Fatalf("ClearMissingChunks() error = %v", err)
	}
	if len(walked) == 0 {
		t.Error("expected the injected walker to be invoked")
	}
}
