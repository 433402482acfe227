package chunker

import (
	"strings"
	"unicode/utf8"
)

// SplitWords is the simpler word-based policy: it has no paragraph or sentence
// awareness and packs whitespace-separated words, joined by single spaces,
// until the next word would exceed maxChunkSize runes. Text that already fits
// is returned unchanged. A word longer than the limit becomes its own chunk.
func SplitWords(text string, maxChunkSize int) []string {
	if maxChunkSize <= 0 || utf8.RuneCountInString(text) <= maxChunkSize {
		return []string{text}
	}

	words := strings.Fields(text)
	if len(words) == 0 {
		return []string{text}
	}

	return pack(words, " ", maxChunkSize)
}

// JoinWords reassembles chunks produced by SplitWords.
func JoinWords(chunks []string) string {
	return strings.Join(chunks, " ")
}
