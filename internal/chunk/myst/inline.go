// Package myst implements the MyST/Markdown structural chunker
// (spec §4.D). No commonmark/MyST parsing library appears anywhere in
// the example corpus, so this is a hand-rolled line-and-token-aware
// segmenter rather than a full parser, justified in DESIGN.md.
package myst

import (
	"strings"

	"github.com/seanblong/doctran/pkg/doctypes"
)

// InlineSegments turns one line (or short run of inline markdown text)
// into a Text/Placeholder stream: code spans, math, images, autolinks,
// footnote references, and a link's brackets and URL are opaque; a
// link's label and surrounding prose are translatable.
func InlineSegments(line string) []doctypes.Segment {
	var segs []doctypes.Segment
	var textBuf strings.Builder

	flush := func() {
		if textBuf.Len() == 0 {
			return
		}
		s := textBuf.String()
		if strings.TrimSpace(s) == "" {
			segs = append(segs, doctypes.Segment{Kind: doctypes.SegmentPlaceholder, S: s})
		} else {
			segs = append(segs, doctypes.Segment{Kind: doctypes.SegmentText, S: s})
		}
		textBuf.Reset()
	}
	placeholder := func(s string) {
		segs = append(segs, doctypes.Segment{Kind: doctypes.SegmentPlaceholder, S: s})
	}

	i := 0
	for i < len(line) {
		c := line[i]

		switch {
		case c == '`':
			flush()
			end := strings.IndexByte(line[i+1:], '`')
			if end < 0 {
				placeholder(line[i:])
				i = len(line)
				continue
			}
			placeholder(line[i : i+1+end+1])
			i += 1 + end + 1

		case c == '$':
			flush()
			delim := "$"
			if strings.HasPrefix(line[i:], "$$") {
				delim = "$$"
			}
			rest := line[i+len(delim):]
			end := strings.Index(rest, delim)
			if end < 0 {
				placeholder(line[i:])
				i = len(line)
				continue
			}
			full := line[i : i+len(delim)+end+len(delim)]
			placeholder(full)
			i += len(full)

		case c == '!' && i+1 < len(line) && line[i+1] == '[':
			flush()
			full, consumed := scanLink(line[i:])
			if consumed == 0 {
				textBuf.WriteByte(c)
				i++
				continue
			}
			placeholder(full)
			i += consumed

		case c == '[' && strings.HasPrefix(line[i:], "[^"):
			flush()
			end := strings.IndexByte(line[i:], ']')
			if end < 0 {
				textBuf.WriteByte(c)
				i++
				continue
			}
			placeholder(line[i : i+end+1])
			i += end + 1

		case c == '[':
			flush()
			full, consumed := scanLink(line[i:])
			if consumed == 0 {
				textBuf.WriteByte(c)
				i++
				continue
			}
			// Preserve the link TEXT as translatable, only the markup
			// (brackets, URL, title) is opaque.
			emitLinkSegments(full, &segs)
			i += consumed

		case c == '<' && strings.Contains(line[i:], ">"):
			end := strings.IndexByte(line[i:], '>')
			candidate := line[i : i+end+1]
			if looksLikeAutolinkOrTag(candidate) {
				flush()
				placeholder(candidate)
				i += end + 1
				continue
			}
			textBuf.WriteByte(c)
			i++

		default:
			textBuf.WriteByte(c)
			i++
		}
	}
	flush()
	return segs
}

func looksLikeAutolinkOrTag(s string) bool {
	inner := strings.TrimSuffix(strings.TrimPrefix(s, "<"), ">")
	return strings.Contains(inner, "://") || strings.HasPrefix(inner, "/") || strings.HasPrefix(inner, "!")
}

// scanLink scans a [text](url "title") or ![alt](url) construct starting
// at s[0] == '[' or '!'. Returns the full matched substring and its
// length, or ("", 0) if s does not open a well-formed link/image.
func scanLink(s string) (string, int) {
	start := 0
	if s[0] == '!' {
		start = 1
	}
	if start >= len(s) || s[start] != '[' {
		return "", 0
	}
	closeBracket := matchBracket(s, start)
	if closeBracket < 0 || closeBracket+1 >= len(s) || s[closeBracket+1] != '(' {
		return "", 0
	}
	closeParen := strings.IndexByte(s[closeBracket+1:], ')')
	if closeParen < 0 {
		return "", 0
	}
	end := closeBracket + 1 + closeParen + 1
	return s[:end], end
}

func matchBracket(s string, openIdx int) int {
	depth := 0
	for i := openIdx; i < len(s); i++ {
		switch s[i] {
		case '[':
			depth++
		case ']':
			depth--
			if depth == 0 {
				return i
			}
		}
	}
	return -1
}

// emitLinkSegments splits a matched [text](url) into a placeholder for
// "[", translatable text for the link label, and a placeholder for
// "](url)". An image (leading '!') is emitted as one whole placeholder.
func emitLinkSegments(full string, segs *[]doctypes.Segment) {
	bang := ""
	rest := full
	if strings.HasPrefix(full, "!") {
		bang = "!"
		rest = full[1:]
	}
	closeBracket := matchBracket(rest, 0)
	if closeBracket < 0 {
		*segs = append(*segs, doctypes.Segment{Kind: doctypes.SegmentPlaceholder, S: full})
		return
	}
	label := rest[1:closeBracket]
	tail := rest[closeBracket:] // "](url)"

	if bang != "" {
		// Image alt text is typically not worth translating separately
		// from the asset; keep the whole construct opaque.
		*segs = append(*segs, doctypes.Segment{Kind: doctypes.SegmentPlaceholder, S: full})
		return
	}

	*segs = append(*segs, doctypes.Segment{Kind: doctypes.SegmentPlaceholder, S: bang + "["})
	if strings.TrimSpace(label) == "" {
		*segs = append(*segs, doctypes.Segment{Kind: doctypes.SegmentPlaceholder, S: label})
	} else {
		*segs = append(*segs, doctypes.Segment{Kind: doctypes.SegmentText, S: label})
	}
	*segs = append(*segs, doctypes.Segment{Kind: doctypes.SegmentPlaceholder, S: tail})
}
