package xmlenvelope

import (
	"strings"
	"testing"

	"github.com/seanblong/doctran/pkg/doctypes"
)

func text(s string) doctypes.Segment        { return doctypes.Segment{Kind: doctypes.SegmentText, S: s} }
func placeholder(s string) doctypes.Segment { return doctypes.Segment{Kind: doctypes.SegmentPlaceholder, S: s} }

func TestToXML_S1_LatexPlaceholderPreservation(t *testing.T) {
	segs := []doctypes.Segment{
		placeholder("\\section*{Introduction}\n"),
		text("Please translate me. See "),
		placeholder("\\ref{eq:1}"),
		placeholder("."),
	}

	xmlStr, phCount, phOnly := ToXML(segs)
	if phOnly {
		t.Error("expected phOnly = false, chunk has a text segment")
	}
	if phCount != 3 {
		t.Errorf("expected 3 placeholders, got %d", phCount)
	}
	if !strings.Contains(xmlStr, `original="\section*{Introduction}`) {
		t.Errorf("expected first placeholder original to be preserved verbatim, got %s", xmlStr)
	}
}

func TestFromXML_S1_ReconstructsModelOutput(t *testing.T) {
	modelOutput := `<document><TEXT><PH id="1" original="\section*{Introduction}` + "\n" +
		`"/>Veuillez me traduire. Voir <PH id="2" original="\ref{eq:1}"/><PH id="3" original="."/></TEXT></document>`

	got := FromXML(modelOutput)
	want := "\\section*{Introduction}\nVeuillez me traduire. Voir \\ref{eq:1}."
	if got != want {
		t.Errorf("FromXML() = %q, want %q", got, want)
	}
}

func TestFromXML_MissingOriginalAttributeIsSkippedNotFatal(t *testing.T) {
	xmlStr := `<document><TEXT>Hello <PH id="1"/>world</TEXT></document>`
	got := FromXML(xmlStr)
	if got != "Hello world" {
		t.Errorf("FromXML() = %q, want %q", got, "Hello world")
	}
}

func TestFromXML_UnknownChildTagIsSkipped(t *testing.T) {
	xmlStr := `<document><TEXT>Hello <WEIRD>ignored</WEIRD> world</TEXT></document>`
	got := FromXML(xmlStr)
	if got != "Hello  world" {
		t.Errorf("FromXML() = %q, want %q", got, "Hello  world")
	}
}

func TestFromXML_NoTextElementReturnsEmpty(t *testing.T) {
	if got := FromXML(`<document></document>`); got != "" {
		t.Errorf("FromXML() = %q, want empty string", got)
	}
}

func TestRoundTrip_Invariant4(t *testing.T) {
	segs := []doctypes.Segment{
		placeholder("\\begin{align}\n  a &= b "),
		placeholder("&"),
		text(" translate this part "),
		placeholder("\\\\\n\\end{align}"),
	}
	want := doctypes.Render(segs)

	xmlStr, _, _ := ToXML(segs)
	got := FromXML(xmlStr)
	if got != want {
		t.Errorf("round trip mismatch:\n got  = %q\n want = %q", got, want)
	}
}

func TestToXML_PlaceholderOnlyChunk(t *testing.T) {
	segs := []doctypes.Segment{placeholder("```python\nprint(1)\n```")}
	_, _, phOnly := ToXML(segs)
	if !phOnly {
		t.Error("expected phOnly = true for an all-placeholder chunk")
	}
}
