// Package dictionary implements an offline translator backed by a static
// phrase table. It is used when no model backend is configured and as a
// fallback when the model backend is unavailable.
package dictionary

import (
	"sort"
	"strings"
)

// Table maps a language pair key ("en-es") to source phrase -> translation.
// Source phrases are lowercase with single spaces between words.
type Table map[string]map[string]string

// PairKey builds the Table key for a language pair.
func PairKey(source, target string) string {
	return strings.ToLower(strings.TrimSpace(source)) + "-" + strings.ToLower(strings.TrimSpace(target))
}

// Pairs returns the supported pair keys in sorted order.
func (t Table) Pairs() []string {
	pairs := make([]string, 0, len(t))
	for k := range t {
		pairs = append(pairs, k)
	}
	sort.Strings(pairs)
	return pairs
}

// Default returns a new table with the built-in language pairs. Each call
// returns an independent copy.
func Default() Table {
	t := Table{
		"en-es": {
			"hello": "hola", "goodbye": "adiós", "good morning": "buenos días",
			"good night": "buenas noches", "thank you": "gracias", "please": "por favor",
			"yes": "sí", "no": "no", "how are you": "cómo estás", "my name is": "me llamo",
			"the": "el", "house": "casa", "book": "libro", "water": "agua", "friend": "amigo",
			"world": "mundo", "language": "idioma", "document": "documento", "and": "y",
			"is": "es", "today": "hoy", "where is": "dónde está", "translation": "traducción",
		},
		"en-fr": {
			"hello": "bonjour", "goodbye": "au revoir", "good night": "bonne nuit",
			"thank you": "merci", "please": "s'il vous plaît", "yes": "oui", "no": "non",
			"how are you": "comment allez-vous", "my name is": "je m'appelle", "the": "le",
			"house": "maison", "book": "livre", "water": "eau", "friend": "ami", "world": "monde",
			"language": "langue", "document": "document", "and": "et", "is": "est",
			"today": "aujourd'hui", "translation": "traduction",
		},
		"en-de": {
			"hello": "hallo", "goodbye": "auf wiedersehen", "good morning": "guten morgen",
			"good night": "gute nacht", "thank you": "danke", "please": "bitte", "yes": "ja",
			"no": "nein", "how are you": "wie geht es dir", "my name is": "ich heiße",
			"the": "der", "house": "haus", "book": "buch", "water": "wasser", "friend": "freund",
			"world": "welt", "language": "sprache", "document": "dokument", "and": "und",
			"is": "ist", "today": "heute", "translation": "übersetzung",
		},
	}

	for _, pair := range []string{"en-es", "en-fr", "en-de"} {
		src, tgt, _ := strings.Cut(pair, "-")
		t[PairKey(tgt, src)] = invert(t[pair])
	}
	return t
}

// invert swaps phrases and translations. When two phrases share a
// translation the lexically smallest phrase wins.
func invert(m map[string]string) map[string]string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Sort(sort.Reverse(sort.StringSlice(keys)))

	out := make(map[string]string, len(m))
	for _, k := range keys {
		out[strings.ToLower(m[k])] = k
	}
	return out
}
