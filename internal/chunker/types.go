package chunker

import (
	"fmt"
	"strings"
)

// Chunk is one piece of a split document.
type Chunk struct {
	Index     int    // Position in the output sequence (starts at 0)
	Text      string // Chunk content
	Separator string // Text linking this chunk to the previous one; empty for the first chunk
}

// Strategy selects a splitting policy.
type Strategy string

const (
	// StrategyParagraph packs paragraphs, falling back to sentences.
	StrategyParagraph Strategy = "paragraph"
	// StrategyWords packs whitespace-separated words.
	StrategyWords Strategy = "words"
)

// ParseStrategy validates a strategy name. An empty name selects StrategyParagraph.
func ParseStrategy(s string) (Strategy, error) {
	switch Strategy(strings.ToLower(strings.TrimSpace(s))) {
	case "", StrategyParagraph:
		return StrategyParagraph, nil
	case StrategyWords:
		return StrategyWords, nil
	default:
		return "", fmt.Errorf("unknown chunking strategy %q", s)
	}
}

// SplitWith splits text using the given strategy and returns chunks that can be
// reassembled with Join.
func SplitWith(strategy Strategy, text string, maxChunkSize int) []Chunk {
	if strategy != StrategyWords {
		return SplitChunks(text, maxChunkSize)
	}

	words := SplitWords(text, maxChunkSize)
	chunks := make([]Chunk, len(words))
	for i, w := range words {
		chunks[i] = Chunk{Index: i, Text: w}
		if i > 0 {
			chunks[i].Separator = " "
		}
	}
	return chunks
}
