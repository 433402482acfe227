// Package chunker splits documents into ordered pieces that fit a downstream
// translation request limit.
package chunker

import (
	"regexp"
	"strings"
	"unicode/utf8"
)

const (
	// ParagraphSeparator joins paragraphs inside a chunk and between chunks split on a paragraph boundary.
	ParagraphSeparator = "\n\n"
	// SentenceSeparator joins sentences that came out of an oversized paragraph.
	SentenceSeparator = " "
)

var (
	// One or more blank lines. Lines holding only spaces or tabs count as blank.
	paragraphBoundary = regexp.MustCompile(`\n[ \t\r]*\n\s*`)
	sentenceBoundary  = regexp.MustCompile(`[.!?]\s+`)
)

// Split breaks text into ordered chunks of at most maxChunkSize runes.
// It prefers paragraph boundaries, then sentence boundaries. A single sentence
// longer than the limit is returned as an oversized chunk rather than cut.
// Split always returns at least one chunk.
func Split(text string, maxChunkSize int) []string {
	chunks := SplitChunks(text, maxChunkSize)
	out := make([]string, len(chunks))
	for i, c := range chunks {
		out[i] = c.Text
	}
	return out
}

// SplitChunks is Split with boundary information kept, so that the pieces can
// be reassembled with Join after each one has been transformed.
func SplitChunks(text string, maxChunkSize int) []Chunk {
	if maxChunkSize <= 0 || utf8.RuneCountInString(text) <= maxChunkSize {
		return []Chunk{{Index: 0, Text: text}}
	}

	paragraphs := splitParagraphs(text)
	if len(paragraphs) == 0 {
		// Whitespace only
		return []Chunk{{Index: 0, Text: text}}
	}

	acc := &accumulator{max: maxChunkSize}
	for _, p := range paragraphs {
		acc.addParagraph(p)
	}
	acc.flush()

	return acc.chunks
}

// Join reassembles chunks produced by SplitChunks.
func Join(chunks []Chunk) string {
	var b strings.Builder
	for i, c := range chunks {
		if i > 0 {
			b.WriteString(c.Separator)
		}
		b.WriteString(c.Text)
	}
	return b.String()
}

// accumulator implements the greedy paragraph packing.
// buf holds the chunk being built; bufSep is the separator that will link it
// to the previously flushed chunk.
type accumulator struct {
	max    int
	chunks []Chunk
	buf    strings.Builder
	bufLen int
	bufSep string
}

func (a *accumulator) addParagraph(p string) {
	pLen := utf8.RuneCountInString(p)

	if a.bufLen > 0 && a.bufLen+len(ParagraphSeparator)+pLen > a.max {
		a.flush()
		a.bufSep = ParagraphSeparator
	}

	if a.bufLen > 0 {
		a.buf.WriteString(ParagraphSeparator)
		a.bufLen += len(ParagraphSeparator)
	} else if len(a.chunks) > 0 {
		a.bufSep = ParagraphSeparator
	}
	a.buf.WriteString(p)
	a.bufLen += pLen

	if a.bufLen <= a.max {
		return
	}

	// A single paragraph larger than the limit: pack its sentences instead.
	// Everything but the last group is emitted, the last group stays open so
	// that following paragraphs can still be packed behind it.
	groups := pack(splitSentences(a.buf.String()), SentenceSeparator, a.max)
	for i, g := range groups[:len(groups)-1] {
		a.emit(g)
		if i == 0 {
			a.bufSep = SentenceSeparator
		}
	}
	last := groups[len(groups)-1]
	a.buf.Reset()
	a.buf.WriteString(last)
	a.bufLen = utf8.RuneCountInString(last)
	if len(groups) > 1 {
		a.bufSep = SentenceSeparator
	}
}

// emit appends text as a finished chunk linked by the current bufSep.
func (a *accumulator) emit(text string) {
	sep := a.bufSep
	if len(a.chunks) == 0 {
		sep = ""
	}
	a.chunks = append(a.chunks, Chunk{
		Index:     len(a.chunks),
		Text:      text,
		Separator: sep,
	})
}

func (a *accumulator) flush() {
	if a.bufLen == 0 {
		return
	}
	a.emit(a.buf.String())
	a.buf.Reset()
	a.bufLen = 0
}

// pack greedily joins units with sep into groups of at most max runes.
// A unit that alone exceeds max becomes its own group.
func pack(units []string, sep string, max int) []string {
	var (
		groups []string
		cur    strings.Builder
		curLen int
	)
	sepLen := utf8.RuneCountInString(sep)

	for _, u := range units {
		uLen := utf8.RuneCountInString(u)
		if curLen > 0 && curLen+sepLen+uLen > max {
			groups = append(groups, cur.String())
			cur.Reset()
			curLen = 0
		}
		if curLen > 0 {
			cur.WriteString(sep)
			curLen += sepLen
		}
		cur.WriteString(u)
		curLen += uLen
	}
	if curLen > 0 {
		groups = append(groups, cur.String())
	}
	return groups
}

// splitParagraphs splits on blank lines and drops empty pieces.
func splitParagraphs(text string) []string {
	parts := paragraphBoundary.Split(text, -1)
	paragraphs := parts[:0]
	for _, p := range parts {
		if strings.TrimSpace(p) == "" {
			continue
		}
		paragraphs = append(paragraphs, p)
	}
	return paragraphs
}

// splitSentences splits after '.', '!' or '?' followed by whitespace.
// The terminator stays with its sentence; the whitespace is dropped.
func splitSentences(text string) []string {
	var sentences []string
	start := 0
	for _, loc := range sentenceBoundary.FindAllStringIndex(text, -1) {
		s := text[start : loc[0]+1]
		if strings.TrimSpace(s) != "" {
			sentences = append(sentences, s)
		}
		start = loc[1]
	}
	if rest := text[start:]; strings.TrimSpace(rest) != "" {
		sentences = append(sentences, rest)
	}
	if len(sentences) == 0 {
		return []string{text}
	}
	return sentences
}
