// Package xmlenvelope implements Component E: the placeholder-preserving
// XML envelope used to present a chunk to the model and recover its
// translation. Reconstruction is driven solely by each PH element's
// "original" attribute, which makes it robust to a model that renumbers,
// drops, or reorders placeholders.
package xmlenvelope

import (
	"bytes"
	"encoding/xml"
	"fmt"
	"strconv"
	"strings"

	"github.com/rs/zerolog/log"

	"github.com/seanblong/doctran/pkg/doctypes"
)

// ToXML renders a segment stream as <document><TEXT>…</TEXT></document>,
// returning the XML string, the number of placeholders emitted, and
// whether the chunk is placeholder-only (zero Text segments). Each
// Placeholder segment becomes its own PH element: a chunker that
// already coalesced the runs that belong together (an escaped macro
// split across bytes, for instance) has made that decision; ToXML must
// not re-merge adjacent placeholders that the chunker emitted as
// distinct syntactic tokens, or a model echo can no longer tell them
// apart to reorder or drop just one.
func ToXML(segments []doctypes.Segment) (string, int, bool) {
	var buf bytes.Buffer
	buf.WriteString("<document><TEXT>")

	phCount := 0
	for _, seg := range segments {
		switch seg.Kind {
		case doctypes.SegmentText:
			buf.WriteString(escapeText(seg.S))
		case doctypes.SegmentPlaceholder:
			phCount++
			buf.WriteString(fmt.Sprintf(`<PH id="%d" original="%s"/>`, phCount, escapeAttr(seg.S)))
		}
	}
	buf.WriteString("</TEXT></document>")

	return buf.String(), phCount, !doctypes.HasText(segments)
}

// FromXML parses an envelope produced by ToXML (or, more importantly, a
// model's possibly-damaged echo of one) and reconstructs the document
// text. It walks the <TEXT> element's children in document order,
// concatenating character data and, for each recognized PH child,
// substituting its "original" attribute. A PH with no "original"
// attribute, or any unrecognized child element, is skipped with a
// warning rather than raising — an uncooperative model must never crash
// the pipeline. If no TEXT element is found, FromXML returns "".
func FromXML(xmlStr string) string {
	dec := xml.NewDecoder(strings.NewReader(xmlStr))

	var out strings.Builder
	inText := false
	depth := 0 // nesting depth of unrecognized elements we are skipping

	for {
		tok, err := dec.Token()
		if err != nil {
			break
		}
		switch t := tok.(type) {
		case xml.StartElement:
			if !inText {
				if t.Name.Local == "TEXT" {
					inText = true
				}
				continue
			}
			if depth > 0 {
				depth++
				continue
			}
			switch t.Name.Local {
			case "PH":
				original, ok := attr(t, "original")
				if !ok {
					log.Warn().Msg("xmlenvelope: PH element missing original attribute, skipping")
					depth++
					continue
				}
				out.WriteString(original)
				// PH is self-closing in practice, but tolerate a
				// non-self-closing echo by tracking depth.
				depth++
			default:
				log.Warn().Str("tag", t.Name.Local).Msg("xmlenvelope: unrecognized child tag, skipping")
				depth++
			}
		case xml.EndElement:
			if !inText {
				continue
			}
			if depth > 0 {
				depth--
				continue
			}
			if t.Name.Local == "TEXT" {
				return out.String()
			}
		case xml.CharData:
			if inText && depth == 0 {
				out.Write(t)
			}
		}
	}
	return out.String()
}

func attr(t xml.StartElement, name string) (string, bool) {
	for _, a := range t.Attr {
		if a.Name.Local == name {
			return a.Value, true
		}
	}
	return "", false
}

func escapeText(s string) string {
	var buf bytes.Buffer
	_ = xml.EscapeText(&buf, []byte(s))
	return buf.String()
}

func escapeAttr(s string) string {
	// xml.EscapeText already escapes the characters that matter inside a
	// double-quoted attribute value (&, <, >, ", \t, \n, \r).
	return escapeText(s)
}

// PlaceholderCountString formats a placeholder count as a decimal
// string for use in free text.
func PlaceholderCountString(n int) string {
	return strconv.Itoa(n)
}
