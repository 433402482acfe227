package dictionary

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"unicode"
	"unicode/utf8"

	"linguaflow/internal/translator"
)

// ErrUnsupportedPair is returned when the table has no entries for a language pair.
var ErrUnsupportedPair = errors.New("language pair not supported by dictionary")

// Translator substitutes known phrases, longest match first, and leaves
// unknown words untouched.
type Translator struct {
	pairs map[string]*compiledPair
	names []string
}

type compiledPair struct {
	entries  map[string]string
	maxWords int
}

// NewTranslator compiles table into a Translator. The table is copied.
func NewTranslator(table Table) *Translator {
	tr := &Translator{
		pairs: make(map[string]*compiledPair, len(table)),
		names: table.Pairs(),
	}
	for pair, entries := range table {
		cp := &compiledPair{entries: make(map[string]string, len(entries))}
		for phrase, repl := range entries {
			key := strings.Join(strings.Fields(strings.ToLower(phrase)), " ")
			cp.entries[key] = repl
			if n := len(strings.Fields(key)); n > cp.maxWords {
				cp.maxWords = n
			}
		}
		tr.pairs[pair] = cp
	}
	return tr
}

// Name identifies the backend.
func (t *Translator) Name() string {
	return "dictionary"
}

// Pairs lists the supported language pairs.
func (t *Translator) Pairs() []string {
	return append([]string(nil), t.names...)
}

// Supports reports whether the table can translate from source to target.
// An auto-detected source is supported when any pair ends in target.
func (t *Translator) Supports(source, target string) bool {
	if strings.EqualFold(strings.TrimSpace(source), translator.AutoDetect) {
		return len(t.pairsInto(target)) > 0
	}
	_, ok := t.pairs[PairKey(source, target)]
	return ok
}

// pairsInto lists the pair keys translating into target, sorted.
func (t *Translator) pairsInto(target string) []string {
	suffix := PairKey("", target)
	var out []string
	for _, name := range t.names {
		if strings.HasSuffix(name, suffix) {
			out = append(out, name)
		}
	}
	return out
}

// detectPair picks the source language whose table knows the most words of
// the text. Ties go to English, then to the first pair in sorted order.
// It returns "" when no pair translates into target.
func (t *Translator) detectPair(toks []token, target string) string {
	candidates := t.pairsInto(target)
	if len(candidates) == 0 {
		return ""
	}

	best, bestHits := candidates[0], -1
	for _, pair := range candidates {
		entries := t.pairs[pair].entries
		hits := 0
		for _, tok := range toks {
			if _, ok := entries[strings.ToLower(tok.text)]; tok.word && ok {
				hits++
			}
		}
		if hits > bestHits || (hits == bestHits && pair == PairKey("en", target)) {
			best, bestHits = pair, hits
		}
	}
	return best
}

// Translate implements translator.Translator. An auto-detected source is
// resolved with detectPair.
func (t *Translator) Translate(ctx context.Context, req translator.Request) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}

	toks := tokenize(req.Text)

	pair := PairKey(req.Source, req.Target)
	if strings.EqualFold(strings.TrimSpace(req.Source), translator.AutoDetect) {
		pair = t.detectPair(toks, req.Target)
	}
	cp, ok := t.pairs[pair]
	if !ok {
		return "", fmt.Errorf("%w: %s", ErrUnsupportedPair, PairKey(req.Source, req.Target))
	}

	var out strings.Builder
	out.Grow(len(req.Text))

	for j := 0; j < len(toks); {
		if !toks[j].word {
			out.WriteString(toks[j].text)
			j++
			continue
		}

		matched := false
		for n := cp.maxWords; n >= 1; n-- {
			key, end, ok := phraseAt(toks, j, n)
			if !ok {
				continue
			}
			if repl, found := cp.entries[key]; found {
				out.WriteString(matchCase(toks[j].text, repl))
				j = end
				matched = true
				break
			}
		}
		if !matched {
			out.WriteString(toks[j].text)
			j++
		}
	}

	return out.String(), nil
}

type token struct {
	text string
	word bool
}

func isWordRune(r rune) bool {
	return unicode.IsLetter(r) || unicode.IsDigit(r) || r == '\'' || r == '’'
}

// tokenize splits s into alternating word and non-word runs.
func tokenize(s string) []token {
	var toks []token
	start := 0
	inWord := false
	for i, r := range s {
		w := isWordRune(r)
		if i > start && w != inWord {
			toks = append(toks, token{text: s[start:i], word: inWord})
			start = i
		}
		inWord = w
	}
	if start < len(s) {
		toks = append(toks, token{text: s[start:], word: inWord})
	}
	return toks
}

// phraseAt builds the lookup key for n words starting at toks[j]. The words
// must be separated by whitespace only.
func phraseAt(toks []token, j, n int) (key string, end int, ok bool) {
	words := make([]string, 0, n)
	i := j
	for len(words) < n {
		if i >= len(toks) || !toks[i].word {
			return "", 0, false
		}
		words = append(words, strings.ToLower(toks[i].text))
		i++
		if len(words) < n {
			if i >= len(toks) || strings.TrimSpace(toks[i].text) != "" {
				return "", 0, false
			}
			i++
		}
	}
	return strings.Join(words, " "), i, true
}

// matchCase carries the capitalization of original over to repl.
func matchCase(original, repl string) string {
	first, _ := utf8.DecodeRuneInString(original)
	if !unicode.IsUpper(first) || repl == "" {
		return repl
	}
	if utf8.RuneCountInString(original) > 1 && strings.ToUpper(original) == original {
		return strings.ToUpper(repl)
	}
	r, size := utf8.DecodeRuneInString(repl)
	return string(unicode.ToUpper(r)) + repl[size:]
}
