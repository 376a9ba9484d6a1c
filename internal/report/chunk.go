package report

import (
	"fmt"
	"strings"
)

// MaxMessageLength is the default chunk limit. Telegram caps a single message
// at 4096 characters; 4000 leaves room for the part prefix added later.
const MaxMessageLength = 4000

// Chunk splits full into transmit-sized pieces on line boundaries.
//
// A message that already fits is returned unchanged as a single element.
// Otherwise lines are accumulated greedily: a line joins the current chunk
// only when the chunk, the line and the rejoining newline all fit within
// maxLen. Lines are never split; a single line longer than maxLen becomes its
// own oversized chunk. This is a known limitation, not something to enforce
// here.
func Chunk(full string, maxLen int) []string {
	if maxLen <= 0 {
		maxLen = MaxMessageLength
	}
	if len(full) <= maxLen {
		return []string{full}
	}

	lines := strings.Split(full, "\n")
	chunks := make([]string, 0, len(full)/maxLen+1)
	var cur strings.Builder
	for _, line := range lines {
		if cur.Len()+len(line)+1 > maxLen {
			if cur.Len() > 0 {
				chunks = append(chunks, cur.String())
				cur.Reset()
			}
		}
		cur.WriteString(line)
		cur.WriteByte('\n')
	}
	if cur.Len() > 0 {
		chunks = append(chunks, cur.String())
	}
	return chunks
}

// NumberParts prefixes each chunk with a "Part i/N" marker when the message
// was split. A single chunk passes through untouched. The prefix is added
// after chunking and is not counted against the chunk limit, so a numbered
// part can slightly exceed it; kept for compatibility with the limit's
// built-in headroom.
func NumberParts(chunks []string) []string {
	if len(chunks) <= 1 {
		return chunks
	}
	out := make([]string, len(chunks))
	for i, c := range chunks {
		out[i] = fmt.Sprintf("📄 Part %d/%d\n\n", i+1, len(chunks)) + c
	}
	return out
}
