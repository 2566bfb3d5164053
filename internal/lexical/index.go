// Package lexical classifies byte offsets of guest source text as live
// code, string content or comment content. It is the correctness lever
// that keeps pattern matching from firing inside literals, so it is built
// as a first-class component rather than an ad-hoc check.
package lexical

import "sort"

type region struct {
	// Half-open byte range [start, end).
	start uint32
	end   uint32
}

// Index holds the excluded regions of one file, computed by a single
// left-to-right scan. Build once per file, then query per candidate match.
type Index struct {
	strings  []region
	comments []region
}

// NewIndex scans content and records every string and line-comment region.
//
// Recognized forms:
//   - line comments: // to end of line;
//   - plain strings: "..." with backslash escapes; the region covers
//     offsets strictly after the opening quote up to and including the
//     closing quote;
//   - raw strings: r"...", r#"..."#, r##"..."## and so on; the closing
//     quote must be followed by exactly as many hashes as the opener had;
//     the region covers offsets strictly between the introducer and the
//     end of the closing delimiter.
//
// Unterminated literals run to end of file and are not recorded as string
// regions, matching the historical scanner.
func NewIndex(content []byte) *Index {
	ix := &Index{}

	i := 0
	for i < len(content) {
		// Line comment: consume to end of line.
		if content[i] == '/' && i+1 < len(content) && content[i+1] == '/' {
			start := i
			for i < len(content) && content[i] != '\n' {
				i++
			}
			ix.comments = append(ix.comments, region{uint32(start), uint32(i)})
			continue
		}

		// Raw string: 'r', N hashes, then a quote.
		if content[i] == 'r' && i+1 < len(content) {
			hashes := 0
			j := i + 1
			for j < len(content) && content[j] == '#' {
				hashes++
				j++
			}
			if j < len(content) && content[j] == '"' {
				j++
				closed := false
				for j < len(content) {
					if content[j] == '"' {
						closing := 0
						k := j + 1
						for k < len(content) && content[k] == '#' && closing < hashes {
							closing++
							k++
						}
						if closing == hashes {
							// Strictly between introducer and closing delimiter end.
							ix.strings = append(ix.strings, region{uint32(i + 1), uint32(k)})
							i = k
							closed = true
							break
						}
					}
					j++
				}
				if !closed {
					i = len(content)
				}
				continue
			}
		}

		// Plain string with escapes.
		if content[i] == '"' {
			start := i
			i++
			closed := false
			for i < len(content) {
				if content[i] == '\\' && i+1 < len(content) {
					i += 2
					continue
				}
				if content[i] == '"' {
					// Strictly after opening quote, including closing quote.
					ix.strings = append(ix.strings, region{uint32(start + 1), uint32(i + 1)})
					i++
					closed = true
					break
				}
				i++
			}
			if !closed {
				i = len(content)
			}
			continue
		}

		i++
	}

	return ix
}

// InString reports whether the offset falls inside a string literal.
// Comment regions do not count as string regions: callers skip comment
// lines separately before matching.
func (ix *Index) InString(off uint32) bool {
	return contains(ix.strings, off)
}

// InComment reports whether the offset falls inside a line comment.
func (ix *Index) InComment(off uint32) bool {
	return contains(ix.comments, off)
}

func contains(regions []region, off uint32) bool {
	// Regions are sorted by construction; find the first region ending
	// after off and test membership.
	n := sort.Search(len(regions), func(i int) bool {
		return regions[i].end > off
	})
	return n < len(regions) && regions[n].start <= off
}
