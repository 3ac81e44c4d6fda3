package myst

import (
	"testing"

	"github.com/seanblong/doctran/pkg/doctypes"
)

func renderChunks(t *testing.T, chunks []doctypes.Chunk) string {
	t.Helper()
	out := ""
	for i, c := range chunks {
		got := doctypes.Render(c.Segments)
		if got != c.Text {
			t.Errorf("chunk %d: Render(segments) = %q, want %q", i, got, c.Text)
		}
		if i > 0 {
			out += "\n"
		}
		out += c.Text
	}
	return out
}

func TestChunk_HeadingAndParagraph(t *testing.T) {
	source := "# Introduction\n\nThis is a paragraph with `code` and a link [docs](http://example.com)."
	chunks := Chunk(source, doctypes.English, doctypes.French, "intro.md")
	if len(chunks) != 2 {
		t.Fatalf("expected 2 chunks, got %d", len(chunks))
	}
	if chunks[0].Text != "# Introduction" {
		t.Errorf("unexpected heading chunk: %q", chunks[0].Text)
	}
	renderChunks(t, chunks)

	foundLinkLabel := false
	for _, s := range chunks[1].Segments {
		if s.Kind == doctypes.SegmentText && s.S == "docs" {
			foundLinkLabel = true
		}
	}
	if !foundLinkLabel {
		t.Error("expected link label text 'docs' to be a translatable segment")
	}
}

func TestChunk_FencedCodeIsOpaque(t *testing.T) {
	source := "```python\nprint(1)\n```"
	chunks := Chunk(source, doctypes.English, doctypes.German, "nb.md")
	if len(chunks) != 1 {
		t.Fatalf("expected 1 chunk, got %d", len(chunks))
	}
	if !chunks[0].PlaceholderOnly() {
		t.Error("fenced code block must be placeholder-only")
	}
	if doctypes.Render(chunks[0].Segments) != source {
		t.Errorf("round trip mismatch: got %q want %q", doctypes.Render(chunks[0].Segments), source)
	}
}

func TestChunk_ColonFenceDispatch(t *testing.T) {
	prose := ":::{note}\nPlease read this carefully.\n:::"
	chunks := Chunk(prose, doctypes.English, doctypes.French, "note.md")
	if chunks[0].PlaceholderOnly() {
		t.Error("a prose admonition directive must retain translatable text")
	}
	if doctypes.Render(chunks[0].Segments) != prose {
		t.Errorf("round trip mismatch: got %q want %q", doctypes.Render(chunks[0].Segments), prose)
	}

	code := ":::{code-block} python\nprint(1)\n:::"
	chunks2 := Chunk(code, doctypes.English, doctypes.French, "note.md")
	if !chunks2[0].PlaceholderOnly() {
		t.Error("a code-block directive must be placeholder-only")
	}
}

func TestChunk_NestedList(t *testing.T) {
	source := "- top item one\n  - nested item\n- top item two\n  continuation of item two"
	chunks := Chunk(source, doctypes.English, doctypes.French, "list.md")
	if len(chunks) != 1 {
		t.Fatalf("expected the whole list to be one chunk, got %d", len(chunks))
	}
	if doctypes.Render(chunks[0].Segments) != source {
		t.Errorf("round trip mismatch: got %q want %q", doctypes.Render(chunks[0].Segments), source)
	}
}

func TestChunk_Table(t *testing.T) {
	source := "| Name | Value |\n| --- | --- |\n| alpha | 1 |"
	chunks := Chunk(source, doctypes.English, doctypes.French, "table.md")
	if len(chunks) != 1 {
		t.Fatalf("expected 1 table chunk, got %d", len(chunks))
	}
	if doctypes.Render(chunks[0].Segments) != source {
		t.Errorf("round trip mismatch: got %q want %q", doctypes.Render(chunks[0].Segments), source)
	}
}

func TestInlineSegments_MathIsOpaque(t *testing.T) {
	segs := InlineSegments("The value $x^2$ grows.")
	for _, s := range segs {
		if s.Kind == doctypes.SegmentText && s.S == "x^2" {
			t.Error("math content must not be a translatable segment")
		}
	}
	if doctypes.Render(segs) != "The value $x^2$ grows." {
		t.Errorf("round trip mismatch: got %q", doctypes.Render(segs))
	}
}

func TestInlineSegments_FootnoteRefIsOpaque(t *testing.T) {
	segs := InlineSegments("See the details[^1] below.")
	if doctypes.Render(segs) != "See the details[^1] below." {
		t.Errorf("round trip mismatch: got %q", doctypes.Render(segs))
	}
	for _, s := range segs {
		if s.Kind == doctypes.SegmentPlaceholder && s.S == "[^1]" {
			return
		}
	}
	t.Error("expected [^1] to be its own placeholder segment")
}
