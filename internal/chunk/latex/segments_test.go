package latex

import (
	"testing"

	"github.com/seanblong/doctran/pkg/doctypes"
)

func TestSegments_S1_PlaceholdersPreserveRefAndSection(t *testing.T) {
	raw := `\section*{Introduction}
Please translate me. See \ref{eq:1}.`

	segs := Segments(raw)
	if !doctypes.HasText(segs) {
		t.Fatal("expected at least one text segment")
	}

	rendered := doctypes.Render(segs)
	if rendered != raw {
		t.Errorf("Render(Segments(raw)) = %q, want %q", rendered, raw)
	}

	foundRef := false
	for _, s := range segs {
		if s.Kind == doctypes.SegmentPlaceholder && containsRef(s.S) {
			foundRef = true
		}
		if s.Kind == doctypes.SegmentText && containsRef(s.S) {
			t.Errorf("\\ref{} leaked into a text segment: %q", s.S)
		}
	}
	if !foundRef {
		t.Error("expected \\ref{eq:1} to appear in a placeholder segment")
	}
}

func containsRef(s string) bool {
	for i := 0; i+4 <= len(s); i++ {
		if s[i:i+4] == `\ref` {
			return true
		}
	}
	return false
}

func TestSegments_MathEnvironmentTextMacroIsTranslatable(t *testing.T) {
	raw := `\begin{align}
a &= b \text{where b is constant} \\
\end{align}`

	segs := Segments(raw)
	foundText := false
	for _, s := range segs {
		if s.Kind == doctypes.SegmentText && contains(s.S, "constant") {
			foundText = true
		}
	}
	if !foundText {
		t.Error("expected \\text{} contents inside align to be a translatable text segment")
	}
	if doctypes.Render(segs) != raw {
		t.Errorf("round trip mismatch: got %q want %q", doctypes.Render(segs), raw)
	}
}

func TestSegments_VerbatimEnvironmentIsWhollyOpaque(t *testing.T) {
	raw := "\\begin{verbatim}\nprint(1)\n\\end{verbatim}"
	segs := Segments(raw)
	if doctypes.HasText(segs) {
		t.Error("verbatim environment must be placeholder-only")
	}
	if doctypes.Render(segs) != raw {
		t.Errorf("round trip mismatch: got %q want %q", doctypes.Render(segs), raw)
	}
}

func TestSegments_AlignmentAmpersandIsPlaceholder(t *testing.T) {
	raw := `\begin{tabular}{cc}
a & b \\
\end{tabular}`
	segs := Segments(raw)
	foundAmp := false
	for _, s := range segs {
		if s.Kind == doctypes.SegmentPlaceholder && s.S == "&" {
			foundAmp = true
		}
	}
	if !foundAmp {
		t.Error("expected '&' to be its own placeholder segment inside tabular")
	}
	if doctypes.Render(segs) != raw {
		t.Errorf("round trip mismatch: got %q want %q", doctypes.Render(segs), raw)
	}
}

func contains(s, sub string) bool {
	for i := 0; i+len(sub) <= len(s); i++ {
		if s[i:i+len(sub)] == sub {
			return true
		}
	}
	return false
}

func TestChunk_SplitsSectionsAndPreservesOrder(t *testing.T) {
	doc := `\section{One}
First paragraph.

\section{Two}
Second paragraph.`

	chunks := Chunk(doc, doctypes.English, doctypes.French, "doc.tex")
	if len(chunks) < 2 {
		t.Fatalf("expected at least 2 chunks, got %d", len(chunks))
	}
	for _, c := range chunks {
		if c.DocType != doctypes.LaTeX || c.ChunkType != doctypes.ChunkLatex {
			t.Errorf("unexpected chunk classification: %+v", c)
		}
		if doctypes.Render(c.Segments) != c.Text {
			t.Errorf("chunk segments do not reconstruct chunk text: got %q want %q", doctypes.Render(c.Segments), c.Text)
		}
	}
}
