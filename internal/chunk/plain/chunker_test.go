package plain

import (
	"strings"
	"testing"

	"github.com/seanblong/doctran/pkg/doctypes"
)

func TestChunk_WindowsAtDefaultSize(t *testing.T) {
	lines := make([]string, 120)
	for i := range lines {
		lines[i] = "line"
	}
	source := strings.Join(lines, "\n")

	chunks := Chunk(source, 0, doctypes.English, doctypes.French, "notes.txt")
	if len(chunks) != 3 {
		t.Fatalf("expected 3 windows of 50 lines for 120 lines, got %d", len(chunks))
	}
	for _, c := range chunks {
		if c.ChunkType != doctypes.ChunkOther || c.DocType != doctypes.Other {
			t.Errorf("unexpected classification: %+v", c)
		}
		if c.PlaceholderOnly() {
			t.Error("plain chunks must carry translatable text, not be placeholder-only")
		}
	}
}

func TestChunk_CustomWindowSize(t *testing.T) {
	source := "a\nb\nc\nd\ne"
	chunks := Chunk(source, 2, doctypes.English, doctypes.German, "f.txt")
	if len(chunks) != 3 {
		t.Fatalf("expected 3 chunks for window=2 over 5 lines, got %d", len(chunks))
	}
	if chunks[2].Text != "e" {
		t.Errorf("expected final partial window to be %q, got %q", "e", chunks[2].Text)
	}
}
