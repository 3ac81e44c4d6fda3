// Package retrieval implements Component G: scanning a single
// (language, path_hash) cache directory for the most similar previously
// translated source chunk, gated by a similarity threshold, to few-shot
// the model.
//
// Python's difflib.SequenceMatcher.ratio() — the function this is
// grounded on — is 2*M/T where M is the total length of matching
// blocks found by its Ratcliff/Obershelp algorithm and T is the sum of
// both sequence lengths. No Go library in the example corpus offers an
// equivalent (or any fuzzy-string-match primitive at all); Ratio below
// is a direct reimplementation of the same recursive matching-block
// algorithm, justified in DESIGN.md.
package retrieval

// Ratio returns a similarity score in [0, 1] for a and b, computed over
// their bytes like difflib.SequenceMatcher(None, a, b, autojunk=False)
// .ratio(). difflib's default autojunk heuristic, which ignores frequent
// elements of b once b has 200 or more, is not applied, so for longer
// inputs the score can differ from difflib's default.
func Ratio(a, b string) float64 {
	if len(a) == 0 && len(b) == 0 {
		return 1.0
	}
	matches := matchingBlockLength(a, b)
	return 2.0 * float64(matches) / float64(len(a)+len(b))
}

// matchingBlockLength sums the lengths of the longest common contiguous
// substrings found by recursively splitting around each longest match,
// mirroring SequenceMatcher.get_matching_blocks().
func matchingBlockLength(a, b string) int {
	if len(a) == 0 || len(b) == 0 {
		return 0
	}
	ai, bi, size := longestMatch(a, b)
	if size == 0 {
		return 0
	}
	total := size
	total += matchingBlockLength(a[:ai], b[:bi])
	total += matchingBlockLength(a[ai+size:], b[bi+size:])
	return total
}

// longestMatch finds the longest contiguous substring common to a and
// b, returning its start index in each and its length. Ties are broken
// by the earliest starting position in a, then in b, matching
// SequenceMatcher's behavior.
func longestMatch(a, b string) (int, int, int) {
	// b2j maps each byte in b to the sorted list of indices where it
	// appears, the standard SequenceMatcher indexing trick adapted to
	// byte-level granularity (sufficient for prose/LaTeX/Markdown text).
	b2j := make(map[byte][]int, len(b))
	for j := 0; j < len(b); j++ {
		b2j[b[j]] = append(b2j[b[j]], j)
	}

	bestI, bestJ, bestSize := 0, 0, 0
	j2len := make(map[int]int)

	for i := 0; i < len(a); i++ {
		newJ2len := make(map[int]int)
		for _, j := range b2j[a[i]] {
			k := j2len[j-1] + 1
			newJ2len[j] = k
			if k > bestSize {
				bestI, bestJ, bestSize = i-k+1, j-k+1, k
			}
		}
		j2len = newJ2len
	}
	return bestI, bestJ, bestSize
}
