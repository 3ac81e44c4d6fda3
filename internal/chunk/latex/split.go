package latex

import (
	"regexp"
	"strings"
)

// maxInlineChunkLength bounds how many consecutive short paragraphs get
// merged into a single chunk before a new one starts, mirroring
// MAX_INLINE_CHUNK_LENGTH from the original chunker.
const maxInlineChunkLength = 600

var blockLevelMacro = regexp.MustCompile(`^\\(part|chapter|section|subsection|subsubsection|paragraph|subparagraph)\*?\{`)

var beginEnv = regexp.MustCompile(`^\\begin\{([A-Za-z*]+)\}`)

// Split divides a raw LaTeX document into ordered top-level chunks of raw
// text: each environment (\begin{..}...\end{..}) is its own chunk, each
// sectioning macro starts a new chunk, and runs of plain paragraphs are
// merged up to maxInlineChunkLength before a new chunk starts. Blank
// lines separate paragraphs within a run.
func Split(source string) []string {
	lines := strings.Split(source, "\n")

	var chunks []string
	var current strings.Builder

	flush := func() {
		if current.Len() == 0 {
			return
		}
		chunks = append(chunks, current.String())
		current.Reset()
	}

	i := 0
	for i < len(lines) {
		line := lines[i]
		trimmed := strings.TrimSpace(line)

		if m := beginEnv.FindStringSubmatch(trimmed); m != nil {
			flush()
			name := m[1]
			end, envLines := collectEnvironment(lines, i, name)
			chunks = append(chunks, strings.Join(envLines, "\n"))
			i = end + 1
			continue
		}

		if blockLevelMacro.MatchString(trimmed) {
			flush()
			current.WriteString(line)
			current.WriteString("\n")
			i++
			continue
		}

		if trimmed == "" {
			current.WriteString("\n")
			if current.Len() >= maxInlineChunkLength {
				flush()
			}
			i++
			continue
		}

		current.WriteString(line)
		current.WriteString("\n")
		if current.Len() >= maxInlineChunkLength {
			flush()
		}
		i++
	}
	flush()

	return chunks
}

// collectEnvironment scans from the \begin line at index start, tracking
// nested environments of the same name, and returns the index of the
// matching \end line plus the full slice of lines (inclusive).
func collectEnvironment(lines []string, start int, name string) (int, []string) {
	depth := 0
	endMarker := `\end{` + name + `}`
	beginMarker := `\begin{` + name + `}`

	for i := start; i < len(lines); i++ {
		t := strings.TrimSpace(lines[i])
		if strings.Contains(t, beginMarker) {
			depth++
		}
		if strings.Contains(t, endMarker) {
			depth--
			if depth == 0 {
				return i, lines[start : i+1]
			}
		}
	}
	return len(lines) - 1, lines[start:]
}
