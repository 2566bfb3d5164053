// Package source prepares guest file content for analysis: it strips a
// UTF-8 BOM, rewrites CRLF line endings and indexes line starts so every
// pass agrees on byte offsets.
package source

import (
	"fmt"
	"slices"

	"fortio.org/safecast"
)

// Normalize strips a leading UTF-8 BOM and replaces every \r\n with \n,
// leaving lone \r untouched. Columns stay stable across platforms only
// when callers feed normalized content to the analysis passes.
func Normalize(content []byte) []byte {
	content = removeBOM(content)
	return normalizeCRLF(content)
}

func removeBOM(content []byte) []byte {
	if len(content) >= 3 && content[0] == 0xEF && content[1] == 0xBB && content[2] == 0xBF {
		return content[3:]
	}
	return content
}

func normalizeCRLF(content []byte) []byte {
	if !slices.Contains(content, '\r') {
		return content
	}

	out := make([]byte, 0, len(content))
	i := 0
	for i < len(content) {
		if content[i] == '\r' && i+1 < len(content) && content[i+1] == '\n' {
			out = append(out, '\n')
			i += 2
		} else {
			out = append(out, content[i])
			i++
		}
	}
	return out
}

// LineIndex maps 1-based line numbers to byte offsets within one file.
type LineIndex struct {
	// newlines holds the byte offset of every '\n' in the content.
	newlines []uint32
	size     uint32
}

// NewLineIndex scans content once and records every line break.
func NewLineIndex(content []byte) *LineIndex {
	size, err := safecast.Conv[uint32](len(content))
	if err != nil {
		panic(fmt.Errorf("content length overflow: %w", err))
	}
	newlines := make([]uint32, 0, len(content)/16)
	for i, b := range content {
		if b == '\n' {
			newlines = append(newlines, uint32(i))
		}
	}
	return &LineIndex{newlines: newlines, size: size}
}

// LineStart returns the byte offset where the 1-based line begins. Lines
// past the end of the file map to the content length.
func (x *LineIndex) LineStart(line int) uint32 {
	if line <= 1 {
		return 0
	}
	if line-2 >= len(x.newlines) {
		return x.size
	}
	return x.newlines[line-2] + 1
}

// NumLines counts the lines in the indexed content. A trailing newline
// does not open an extra line.
func (x *LineIndex) NumLines() int {
	n := len(x.newlines)
	if x.size > 0 && (n == 0 || x.newlines[n-1] != x.size-1) {
		n++
	}
	return n
}
