package myst

import (
	"regexp"
	"strings"

	"github.com/seanblong/doctran/pkg/doctypes"
)

// codeLikeDirectives never get their interior translated: the directive
// body is source code or raw markup, not prose.
var codeLikeDirectives = map[string]bool{
	"code": true, "code-block": true, "math": true, "mermaid": true,
	"raw": true, "literalinclude": true,
}

var (
	headingRe    = regexp.MustCompile(`^(#{1,6})\s+(.*)$`)
	fenceOpenRe  = regexp.MustCompile("^(```+|~~~+)(.*)$")
	colonFenceRe = regexp.MustCompile(`^:::+\s*\{?([a-zA-Z0-9_-]*)\}?`)
	listItemRe   = regexp.MustCompile(`^(\s*)([-*+]|\d+[.)])\s+`)
	tableRowRe   = regexp.MustCompile(`^\s*\|.*\|\s*$`)
)

type block struct {
	text  string
	kind  string // "code", "directive-code", "directive-prose", "heading", "table", "list", "paragraph"
	param string // directive name, for "directive-*"
}

// splitBlocks partitions a MyST document into ordered top-level
// structural units.
func splitBlocks(source string) []block {
	lines := strings.Split(source, "\n")
	var blocks []block
	i := 0

	for i < len(lines) {
		line := lines[i]
		trimmed := strings.TrimSpace(line)

		switch {
		case trimmed == "":
			i++

		case fenceOpenRe.MatchString(trimmed):
			fence := fenceOpenRe.FindStringSubmatch(trimmed)[1]
			j := i + 1
			for j < len(lines) && !strings.HasPrefix(strings.TrimSpace(lines[j]), fence[:3]) {
				j++
			}
			if j < len(lines) {
				j++
			}
			blocks = append(blocks, block{text: strings.Join(lines[i:j], "\n"), kind: "code"})
			i = j

		case colonFenceRe.MatchString(trimmed):
			m := colonFenceRe.FindStringSubmatch(trimmed)
			name := strings.ToLower(m[1])
			j := i + 1
			for j < len(lines) && strings.TrimSpace(lines[j]) != ":::" && !strings.HasPrefix(strings.TrimSpace(lines[j]), ":::") {
				j++
			}
			if j < len(lines) {
				j++
			}
			kind := "directive-prose"
			if codeLikeDirectives[name] {
				kind = "directive-code"
			}
			blocks = append(blocks, block{text: strings.Join(lines[i:j], "\n"), kind: kind, param: name})
			i = j

		case headingRe.MatchString(line):
			blocks = append(blocks, block{text: line, kind: "heading"})
			i++

		case tableRowRe.MatchString(line):
			j := i
			for j < len(lines) && tableRowRe.MatchString(lines[j]) {
				j++
			}
			blocks = append(blocks, block{text: strings.Join(lines[i:j], "\n"), kind: "table"})
			i = j

		case listItemRe.MatchString(line):
			j := i + 1
			for j < len(lines) {
				l := lines[j]
				if strings.TrimSpace(l) == "" {
					// A blank line continues the list only if the next
					// non-blank line is indented (a continuation) or
					// another list item.
					if j+1 < len(lines) && (listItemRe.MatchString(lines[j+1]) || strings.HasPrefix(lines[j+1], " ") || strings.HasPrefix(lines[j+1], "\t")) {
						j++
						continue
					}
					break
				}
				if listItemRe.MatchString(l) || strings.HasPrefix(l, " ") || strings.HasPrefix(l, "\t") {
					j++
					continue
				}
				break
			}
			blocks = append(blocks, block{text: strings.Join(lines[i:j], "\n"), kind: "list"})
			i = j

		default:
			j := i + 1
			for j < len(lines) && strings.TrimSpace(lines[j]) != "" &&
				!headingRe.MatchString(lines[j]) && !fenceOpenRe.MatchString(strings.TrimSpace(lines[j])) &&
				!colonFenceRe.MatchString(strings.TrimSpace(lines[j])) && !listItemRe.MatchString(lines[j]) &&
				!tableRowRe.MatchString(lines[j]) {
				j++
			}
			blocks = append(blocks, block{text: strings.Join(lines[i:j], "\n"), kind: "paragraph"})
			i = j
		}
	}
	return blocks
}

// Chunk splits a MyST/Markdown document into ordered Chunks.
func Chunk(source string, srcLang, tgtLang doctypes.Language, relativePath string) []doctypes.Chunk {
	blocks := splitBlocks(source)
	chunks := make([]doctypes.Chunk, 0, len(blocks))

	for _, b := range blocks {
		var segs []doctypes.Segment
		switch b.kind {
		case "code", "directive-code":
			segs = []doctypes.Segment{{Kind: doctypes.SegmentPlaceholder, S: b.text}}
		case "heading":
			segs = headingSegments(b.text)
		case "table":
			segs = tableSegments(b.text)
		case "list":
			segs = listSegments(b.text)
		case "directive-prose":
			segs = fencedProseSegments(b.text)
		default:
			segs = paragraphSegments(b.text)
		}

		chunks = append(chunks, doctypes.Chunk{
			Text:         b.text,
			ChunkType:    doctypes.ChunkMyst,
			DocType:      doctypes.Markdown,
			SrcLang:      srcLang,
			TgtLang:      tgtLang,
			RelativePath: relativePath,
			Segments:     doctypes.Coalesce(segs),
		})
	}
	return chunks
}

func headingSegments(line string) []doctypes.Segment {
	m := headingRe.FindStringSubmatch(line)
	var segs []doctypes.Segment
	segs = append(segs, doctypes.Segment{Kind: doctypes.SegmentPlaceholder, S: m[1] + " "})
	segs = append(segs, InlineSegments(m[2])...)
	return segs
}

func paragraphSegments(text string) []doctypes.Segment {
	lines := strings.Split(text, "\n")
	var segs []doctypes.Segment
	for i, l := range lines {
		segs = append(segs, InlineSegments(l)...)
		if i < len(lines)-1 {
			segs = append(segs, doctypes.Segment{Kind: doctypes.SegmentPlaceholder, S: "\n"})
		}
	}
	return segs
}

func fencedProseSegments(text string) []doctypes.Segment {
	lines := strings.Split(text, "\n")
	var segs []doctypes.Segment
	for i, l := range lines {
		if i == 0 || i == len(lines)-1 {
			segs = append(segs, doctypes.Segment{Kind: doctypes.SegmentPlaceholder, S: l})
		} else {
			segs = append(segs, InlineSegments(l)...)
		}
		if i < len(lines)-1 {
			segs = append(segs, doctypes.Segment{Kind: doctypes.SegmentPlaceholder, S: "\n"})
		}
	}
	return segs
}

func tableSegments(text string) []doctypes.Segment {
	lines := strings.Split(text, "\n")
	var segs []doctypes.Segment
	for li, l := range lines {
		cells := strings.Split(l, "|")
		for i, cell := range cells {
			if strings.TrimSpace(strings.ReplaceAll(cell, "-", "")) == "" && strings.Contains(cell, "-") {
				segs = append(segs, doctypes.Segment{Kind: doctypes.SegmentPlaceholder, S: cell})
			} else if i == 0 || i == len(cells)-1 {
				segs = append(segs, doctypes.Segment{Kind: doctypes.SegmentPlaceholder, S: cell})
			} else {
				segs = append(segs, InlineSegments(cell)...)
			}
			if i < len(cells)-1 {
				segs = append(segs, doctypes.Segment{Kind: doctypes.SegmentPlaceholder, S: "|"})
			}
		}
		if li < len(lines)-1 {
			segs = append(segs, doctypes.Segment{Kind: doctypes.SegmentPlaceholder, S: "\n"})
		}
	}
	return segs
}

// listSegments walks a (possibly nested, tab/space-indented) list block
// line by line: each item's marker and leading indentation is opaque,
// the remainder of the line is inline-segmented.
func listSegments(text string) []doctypes.Segment {
	lines := strings.Split(text, "\n")
	var segs []doctypes.Segment
	for i, l := range lines {
		if m := listItemRe.FindStringSubmatch(l); m != nil {
			marker := m[0]
			segs = append(segs, doctypes.Segment{Kind: doctypes.SegmentPlaceholder, S: marker})
			segs = append(segs, InlineSegments(l[len(marker):])...)
		} else {
			// Continuation line: preserve leading indentation verbatim,
			// translate the rest.
			indent := l[:len(l)-len(strings.TrimLeft(l, " \t"))]
			if indent != "" {
				segs = append(segs, doctypes.Segment{Kind: doctypes.SegmentPlaceholder, S: indent})
			}
			segs = append(segs, InlineSegments(strings.TrimPrefix(l, indent))...)
		}
		if i < len(lines)-1 {
			segs = append(segs, doctypes.Segment{Kind: doctypes.SegmentPlaceholder, S: "\n"})
		}
	}
	return segs
}
