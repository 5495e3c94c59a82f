package extract

import "sort"

// lineIndex supports O(log n) byte-offset -> (line, column) lookups
// after an O(n) build pass over a script's newline offsets.
type lineIndex struct {
	content        []byte
	newlineOffsets []int
}

func buildLineIndex(content []byte) *lineIndex {
	idx := &lineIndex{content: content}
	for i, b := range content {
		if b == '\n' {
			idx.newlineOffsets = append(idx.newlineOffsets, i)
		}
	}
	return idx
}

// position returns the 1-based line and column for byte offset.
func (idx *lineIndex) position(offset int) (line, column int) {
	line = sort.SearchInts(idx.newlineOffsets, offset) + 1

	lineStart := 0
	if line > 1 {
		lineStart = idx.newlineOffsets[line-2] + 1
	}
	column = offset - lineStart + 1
	return line, column
}

// lineText returns the full source line containing offset.
func (idx *lineIndex) lineText(offset int) string {
	line := sort.SearchInts(idx.newlineOffsets, offset) + 1

	start := 0
	if line > 1 {
		start = idx.newlineOffsets[line-2] + 1
	}
	end := len(idx.content)
	if line-1 < len(idx.newlineOffsets) {
		end = idx.newlineOffsets[line-1]
	}
	if start > end || start > len(idx.content) {
		return ""
	}
	if end > len(idx.content) {
		end = len(idx.content)
	}
	return string(idx.content[start:end])
}
