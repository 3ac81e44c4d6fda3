// Package latex implements the LaTeX structural chunker (spec §4.D).
// Splitting a document into chunk boundaries (Split) and turning one
// chunk's raw text into a translatable Segment stream (Segments) are
// kept as two separate passes, mirroring the two original Python
// modules this is grounded on: doc_translator_mod/latex_chunker.py
// (boundaries) and xml_manipulator_mod/latex.py (segment emission).
//
// There is no LaTeX-AST library in the example corpus (pylatexenc is
// Python-only); this is a hand-rolled recursive-descent scanner over the
// raw character stream instead of a full token/AST walk, justified in
// DESIGN.md.
package latex

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/google/uuid"

	"github.com/seanblong/doctran/pkg/doctypes"
)

var placeholderCommands = map[string]bool{
	"ref": true, "cite": true, "label": true, "includegraphics": true,
	"input": true, "include": true, "frac": true, "sqrt": true,
	"path": true, "url": true, "href": true, "verb": true,
}

var placeholderEnvs = map[string]bool{
	"verbatim": true, "Verbatim": true, "lstlisting": true, "minted": true,
}

var mathEnvs = map[string]bool{
	"equation": true, "equation*": true, "align": true, "align*": true,
	"aligned": true, "gather": true, "gather*": true, "gathered": true,
	"flalign": true, "flalign*": true, "alignat": true, "alignat*": true,
	"multline": true, "multline*": true, "displaymath": true, "math": true,
}

var mathTextMacros = map[string]bool{
	"text": true, "mathrm": true, "mathbf": true, "operatorname": true,
	"mathit": true, "textrm": true, "textit": true, "mathsf": true,
	"mathtt": true, "boldsymbol": true,
}

var definitionMacros = map[string]bool{
	"newcommand": true, "renewcommand": true, "newenvironment": true,
	"renewenvironment": true, "def": true,
}

var alignmentEnvs = map[string]bool{
	"tabular": true, "tabular*": true, "array": true, "align": true,
	"align*": true, "aligned": true, "flalign": true, "flalign*": true,
	"alignat": true, "alignat*": true, "gather": true, "gather*": true,
}

var (
	verbPattern = regexp.MustCompile(`(?s)\\verb\*?(.)(.*?)\x01`)
	pipePattern = regexp.MustCompile(`(?s)\\([a-zA-Z]+)(\*?)\|([^|]*)\|`)
)

// sentinel maps a random UUID-tagged placeholder token back to the
// verbatim LaTeX text it replaced, so verb/pipe commands never have to be
// understood by the recursive-descent walker below.
type sentinel struct {
	tag  string
	text string
}

func makePlaceholder(tag string) string {
	return fmt.Sprintf("<<%s_%s>>", tag, strings.ReplaceAll(uuid.NewString(), "-", ""))
}

// extractVerbAndPipe replaces \verb|...| / \verb*|...| and unrecognized
// \command|...| pipe-delimited constructs with UUID sentinels so the
// walker never has to special-case their delimiter characters.
func extractVerbAndPipe(src string) (string, []sentinel) {
	var sentinels []sentinel

	// \verb's delimiter is whatever single character follows it; find
	// each occurrence manually since the delimiter is not fixed.
	out := verbVariableDelim(src, &sentinels)

	out = pipePattern.ReplaceAllStringFunc(out, func(m string) string {
		groups := pipePattern.FindStringSubmatch(m)
		if strings.EqualFold(groups[1], "verb") {
			return m
		}
		ph := makePlaceholder("PIPE")
		sentinels = append(sentinels, sentinel{tag: ph, text: m})
		return ph
	})

	return out, sentinels
}

// verbVariableDelim scans for \verb or \verb* followed by any delimiter
// character repeated twice around the content (pylatexenc's own rule for
// \verb|...| or \verb#...#, not necessarily '|').
func verbVariableDelim(src string, out *[]sentinel) string {
	var b strings.Builder
	i := 0
	for i < len(src) {
		if strings.HasPrefix(src[i:], `\verb`) {
			j := i + len(`\verb`)
			star := false
			if j < len(src) && src[j] == '*' {
				star = true
				j++
			}
			if j < len(src) {
				delim := src[j]
				end := strings.IndexByte(src[j+1:], delim)
				if end >= 0 {
					full := src[i : j+1+end+1]
					ph := makePlaceholder("VERB")
					*out = append(*out, sentinel{tag: ph, text: full})
					b.WriteString(ph)
					i = j + 1 + end + 1
					_ = star
					continue
				}
			}
		}
		b.WriteByte(src[i])
		i++
	}
	return b.String()
}

func restoreSentinels(segs []doctypes.Segment, sentinels []sentinel) []doctypes.Segment {
	if len(sentinels) == 0 {
		return segs
	}
	for _, s := range sentinels {
		var next []doctypes.Segment
		for _, seg := range segs {
			if !strings.Contains(seg.S, s.tag) {
				next = append(next, seg)
				continue
			}
			parts := strings.Split(seg.S, s.tag)
			for k, part := range parts {
				if part != "" {
					kind := doctypes.SegmentPlaceholder
					if strings.TrimSpace(part) != "" {
						kind = seg.Kind
					}
					next = append(next, doctypes.Segment{Kind: kind, S: part})
				}
				if k < len(parts)-1 {
					next = append(next, doctypes.Segment{Kind: doctypes.SegmentPlaceholder, S: s.text})
				}
			}
		}
		segs = next
	}
	return segs
}

// Segments turns one chunk's raw LaTeX text into an ordered Text/
// Placeholder stream, ready for the XML envelope.
func Segments(raw string) []doctypes.Segment {
	processed, sentinels := extractVerbAndPipe(raw)

	p := &parser{src: processed}
	p.walkText(false)
	return doctypes.Coalesce(restoreSentinels(p.segs, sentinels))
}

type parser struct {
	src  string
	pos  int
	segs []doctypes.Segment
}

func (p *parser) addText(s string) {
	if s == "" {
		return
	}
	if strings.TrimSpace(s) == "" {
		p.addPlaceholder(s)
		return
	}
	p.segs = append(p.segs, doctypes.Segment{Kind: doctypes.SegmentText, S: s})
}

func (p *parser) addPlaceholder(s string) {
	if s == "" {
		return
	}
	p.segs = append(p.segs, doctypes.Segment{Kind: doctypes.SegmentPlaceholder, S: s})
}

func (p *parser) eof() bool { return p.pos >= len(p.src) }

func (p *parser) peek() byte {
	if p.eof() {
		return 0
	}
	return p.src[p.pos]
}

// walkText consumes characters until EOF, emitting Text/Placeholder
// segments; an unmatched '}' at this level is kept as ordinary text.
// inAlignment additionally splits raw text on
// '&' as a placeholder, per the alignment-environment rule.
func (p *parser) walkText(inAlignment bool) {
	p.walkUntil("", inAlignment, false)
}

// walkUntil is the shared implementation behind walkText, brace groups,
// and non-math environment bodies: it stops when it sees stopEnv (an
// \end{stopEnv} marker, if
// non-empty) or a lone '}' when stopOnBrace is set.
func (p *parser) walkUntil(stopEnv string, inAlignment, stopOnBrace bool) {
	var textBuf strings.Builder
	flush := func() {
		if textBuf.Len() == 0 {
			return
		}
		s := textBuf.String()
		if inAlignment {
			p.emitAlignmentSplit(s)
		} else {
			p.addText(s)
		}
		textBuf.Reset()
	}

	for !p.eof() {
		c := p.peek()

		if stopOnBrace && c == '}' {
			flush()
			return
		}
		if stopEnv != "" && strings.HasPrefix(p.src[p.pos:], `\end{`+stopEnv+`}`) {
			flush()
			return
		}

		switch c {
		case '%':
			flush()
			p.consumeComment()
		case '$':
			flush()
			p.consumeInlineMath()
		case '{':
			flush()
			p.pos++
			p.addPlaceholder("{")
			p.walkUntil("", false, true)
			if !p.eof() && p.peek() == '}' {
				p.pos++
			}
			p.addPlaceholder("}")
		case '\\':
			flush()
			p.consumeBackslash()
		default:
			textBuf.WriteByte(c)
			p.pos++
		}
	}
	flush()
}

func (p *parser) emitAlignmentSplit(s string) {
	parts := strings.Split(s, "&")
	for i, part := range parts {
		if part != "" {
			p.addText(part)
		}
		if i < len(parts)-1 {
			p.addPlaceholder("&")
		}
	}
}

func (p *parser) consumeComment() {
	start := p.pos
	end := strings.IndexByte(p.src[start:], '\n')
	var line, trailing string
	if end < 0 {
		line = p.src[start:]
	} else {
		line = p.src[start : start+end+1]
	}
	// "%" + optional space is placeholder; remaining comment body is text.
	body := strings.TrimPrefix(line, "%")
	spacer := ""
	if strings.HasPrefix(body, " ") {
		spacer = " "
		body = strings.TrimPrefix(body, " ")
	}
	body = strings.TrimSuffix(body, "\n")
	trailing = "\n"
	if end < 0 {
		trailing = ""
	}
	p.addPlaceholder("%" + spacer)
	p.addText(body)
	p.addPlaceholder(trailing)
	p.pos = start + len(line)
}

func (p *parser) consumeInlineMath() {
	// Distinguish $$...$$ (display) from $...$ (inline); both are treated
	// the same way, only the delimiter placeholder differs.
	delim := "$"
	start := p.pos
	if strings.HasPrefix(p.src[start:], "$$") {
		delim = "$$"
	}
	p.pos += len(delim)
	p.addPlaceholder(delim)

	inner := p.findMathClose(delim)
	p.walkMath(inner)

	p.addPlaceholder(delim)
	if strings.HasPrefix(p.src[p.pos:], delim) {
		p.pos += len(delim)
	}
}

// findMathClose consumes up to (not including) the next occurrence of
// delim and returns the inner text, leaving p.pos positioned at delim.
func (p *parser) findMathClose(delim string) string {
	rest := p.src[p.pos:]
	idx := strings.Index(rest, delim)
	if idx < 0 {
		idx = len(rest)
	}
	inner := rest[:idx]
	p.pos += idx
	return inner
}

func (p *parser) consumeBackslash() {
	rest := p.src[p.pos:]
	if strings.HasPrefix(rest, `\[`) {
		p.pos += 2
		p.addPlaceholder(`\[`)
		inner := p.findMathCloseSeq(`\]`)
		p.walkMath(inner)
		p.addPlaceholder(`\]`)
		if strings.HasPrefix(p.src[p.pos:], `\]`) {
			p.pos += 2
		}
		return
	}
	if strings.HasPrefix(rest, `\(`) {
		p.pos += 2
		p.addPlaceholder(`\(`)
		inner := p.findMathCloseSeq(`\)`)
		p.walkMath(inner)
		p.addPlaceholder(`\)`)
		if strings.HasPrefix(p.src[p.pos:], `\)`) {
			p.pos += 2
		}
		return
	}
	if strings.HasPrefix(rest, `\begin{`) {
		p.consumeEnvironment()
		return
	}
	if strings.HasPrefix(rest, `\end{`) {
		// Unbalanced \end with no matching \begin in this chunk; treat
		// verbatim, the chunker boundary should normally prevent this.
		end := strings.IndexByte(rest, '}')
		if end < 0 {
			p.addPlaceholder(rest)
			p.pos = len(p.src)
			return
		}
		p.addPlaceholder(rest[:end+1])
		p.pos += end + 1
		return
	}
	p.consumeMacro()
}

func (p *parser) findMathCloseSeq(closer string) string {
	rest := p.src[p.pos:]
	idx := strings.Index(rest, closer)
	if idx < 0 {
		idx = len(rest)
	}
	inner := rest[:idx]
	p.pos += idx
	return inner
}

// consumeEnvironment handles \begin{name}...\end{name}.
func (p *parser) consumeEnvironment() {
	start := p.pos
	close := strings.IndexByte(p.src[start:], '}')
	if close < 0 {
		p.addPlaceholder(p.src[start:])
		p.pos = len(p.src)
		return
	}
	name := p.src[start+len(`\begin{`) : start+close]
	beginTag := p.src[start : start+close+1]
	p.pos = start + close + 1

	if placeholderEnvs[name] {
		bodyStart := p.pos
		endIdx := strings.Index(p.src[bodyStart:], `\end{`+name+`}`)
		if endIdx < 0 {
			p.addPlaceholder(beginTag + p.src[bodyStart:])
			p.pos = len(p.src)
			return
		}
		fullEnd := bodyStart + endIdx + len(`\end{`+name+`}`)
		p.addPlaceholder(p.src[start:fullEnd])
		p.pos = fullEnd
		return
	}

	p.addPlaceholder(beginTag)
	if mathEnvs[name] {
		inner := p.consumeRawUntilEnv(name)
		p.walkMath(inner)
	} else {
		sub := &parser{src: p.src, pos: p.pos}
		sub.walkUntil(name, alignmentEnvs[name], false)
		p.segs = append(p.segs, sub.segs...)
		p.pos = sub.pos
	}

	if strings.HasPrefix(p.src[p.pos:], `\end{`+name+`}`) {
		endTag := `\end{` + name + `}`
		p.addPlaceholder(endTag)
		p.pos += len(endTag)
	}
}

func (p *parser) consumeRawUntilEnv(name string) string {
	marker := `\end{` + name + `}`
	idx := strings.Index(p.src[p.pos:], marker)
	if idx < 0 {
		idx = len(p.src) - p.pos
	}
	inner := p.src[p.pos : p.pos+idx]
	p.pos += idx
	return inner
}

// consumeMacro handles \name, \name*, optional [..]/{..} arguments, with
// special cases for definition macros and the placeholder-command set.
func (p *parser) consumeMacro() {
	start := p.pos
	p.pos++ // consume backslash
	nameStart := p.pos
	for !p.eof() && isLetter(p.peek()) {
		p.pos++
	}
	if p.pos == nameStart {
		// A non-letter control symbol like \\ or \# — single character macro.
		if !p.eof() {
			p.pos++
		}
		p.addPlaceholder(p.src[start:p.pos])
		return
	}
	name := p.src[nameStart:p.pos]
	star := false
	if !p.eof() && p.peek() == '*' {
		star = true
		p.pos++
	}
	_ = star
	command := p.src[start:p.pos]

	if definitionMacros[name] {
		p.consumeDefinitionMacro(command)
		return
	}
	if placeholderCommands[name] {
		full := p.consumeMacroArgsVerbatim(command)
		p.addPlaceholder(full)
		return
	}

	p.addPlaceholder(command)
	p.consumeMacroArgsAsText()
}

func isLetter(c byte) bool {
	return (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z')
}

// consumeMacroArgsVerbatim scans optional [..]/{..} arguments and returns
// command plus their raw, unsegmented text (used for opaque commands).
func (p *parser) consumeMacroArgsVerbatim(command string) string {
	start := p.pos
	for !p.eof() {
		if p.peek() == '[' {
			p.skipBalanced('[', ']')
			continue
		}
		if p.peek() == '{' {
			p.skipBalanced('{', '}')
			continue
		}
		break
	}
	return command + p.src[start:p.pos]
}

func (p *parser) skipBalanced(open, closeC byte) {
	depth := 0
	for !p.eof() {
		c := p.peek()
		if c == open {
			depth++
		} else if c == closeC {
			depth--
			p.pos++
			if depth == 0 {
				return
			}
			continue
		}
		p.pos++
	}
}

// consumeMacroArgsAsText walks each {..} / [..] argument as normal text
// content (braces become placeholders, inner content is segmented).
func (p *parser) consumeMacroArgsAsText() {
	for !p.eof() {
		switch p.peek() {
		case '{':
			p.pos++
			p.addPlaceholder("{")
			p.walkUntil("", false, true)
			if !p.eof() && p.peek() == '}' {
				p.pos++
			}
			p.addPlaceholder("}")
		case '[':
			start := p.pos
			p.skipBalanced('[', ']')
			p.addPlaceholder(p.src[start:p.pos])
		default:
			return
		}
	}
}

// consumeDefinitionMacro handles \newcommand{\foo}[n]{body using #1 as a
// placeholder inside body}.
func (p *parser) consumeDefinitionMacro(command string) {
	p.addPlaceholder(command)

	// Syntax arguments (macro name, optional arg-count) are opaque.
	for !p.eof() {
		c := p.peek()
		if c == '{' {
			start := p.pos
			p.skipBalanced('{', '}')
			// Peek ahead: if another '{' or '[' follows, this was a
			// syntax arg, not the definition body; otherwise it's the
			// body itself (the common \def case has exactly one group).
			if p.eof() || (p.peek() != '{' && p.peek() != '[') {
				p.consumeDefinitionBody(p.src[start+1 : p.pos-1])
				return
			}
			p.addPlaceholder(p.src[start:p.pos])
			continue
		}
		if c == '[' {
			start := p.pos
			p.skipBalanced('[', ']')
			p.addPlaceholder(p.src[start:p.pos])
			continue
		}
		break
	}
}

func (p *parser) consumeDefinitionBody(body string) {
	p.addPlaceholder("{")
	sub := &parser{src: body}
	sub.walkDefinitionBody()
	p.segs = append(p.segs, sub.segs...)
	p.addPlaceholder("}")
}

// walkDefinitionBody treats #<digit> tokens as placeholders and
// otherwise behaves like normal text-mode walking.
func (p *parser) walkDefinitionBody() {
	var textBuf strings.Builder
	flush := func() {
		if textBuf.Len() > 0 {
			p.addText(textBuf.String())
			textBuf.Reset()
		}
	}
	for !p.eof() {
		c := p.peek()
		if c == '#' && p.pos+1 < len(p.src) && p.src[p.pos+1] >= '0' && p.src[p.pos+1] <= '9' {
			flush()
			p.addPlaceholder(p.src[p.pos : p.pos+2])
			p.pos += 2
			continue
		}
		if c == '\\' {
			flush()
			p.consumeBackslash()
			continue
		}
		if c == '{' {
			flush()
			p.pos++
			p.addPlaceholder("{")
			p.walkUntil("", false, true)
			if !p.eof() && p.peek() == '}' {
				p.pos++
			}
			p.addPlaceholder("}")
			continue
		}
		textBuf.WriteByte(c)
		p.pos++
	}
	flush()
}

// walkMath segments the interior of a math environment/delimiter: only
// text-in-math macros (\text, \mathrm, ...) open a translatable subwalk,
// everything else is placeholder.
func (p *parser) walkMath(inner string) {
	sub := &parser{src: inner}
	sub.walkMathBody()
	p.segs = append(p.segs, sub.segs...)
}

func (p *parser) walkMathBody() {
	for !p.eof() {
		c := p.peek()
		if c == '\\' {
			start := p.pos
			rest := p.src[p.pos:]
			if strings.HasPrefix(rest, `\begin{`) || strings.HasPrefix(rest, `\end{`) {
				p.consumeBackslash()
				continue
			}
			p.pos++
			nameStart := p.pos
			for !p.eof() && isLetter(p.peek()) {
				p.pos++
			}
			name := p.src[nameStart:p.pos]
			if !p.eof() && p.peek() == '*' {
				p.pos++
			}
			command := p.src[start:p.pos]
			if mathTextMacros[name] {
				p.addPlaceholder(command)
				p.consumeMacroArgsAsText()
			} else {
				full := p.consumeMacroArgsVerbatim(command)
				p.addPlaceholder(full)
			}
			continue
		}
		if c == '&' {
			p.addPlaceholder("&")
			p.pos++
			continue
		}
		start := p.pos
		for !p.eof() && p.peek() != '\\' && p.peek() != '&' {
			p.pos++
		}
		p.addPlaceholder(p.src[start:p.pos])
	}
}
