// Package translator defines translation backends and the decorators that
// wrap them: retries with rate limiting, fallback, caching and translation
// memory.
package translator

//go:generate go run go.uber.org/mock/mockgen@latest -destination=mocks/mock_translator.go -package=mocks linguaflow/internal/translator Translator,Cache,Embedder,ChatClient

import (
	"context"
	"sort"
	"strings"
)

// AutoDetect as the source language lets the backend detect it.
const AutoDetect = "auto"

// Request is a single chunk translation request.
type Request struct {
	Text   string
	Source string // ISO 639-1 code or AutoDetect
	Target string // ISO 639-1 code
}

// Translator translates one chunk of text.
type Translator interface {
	// Translate returns the translation of req.Text.
	Translate(ctx context.Context, req Request) (string, error)
	// Name identifies the backend in logs and history records.
	Name() string
}

// PairSupporter is implemented by backends that only serve some language
// pairs. Source may be AutoDetect.
type PairSupporter interface {
	Supports(source, target string) bool
}

// Supports reports whether t can translate from source to target. Backends
// that do not implement PairSupporter serve every pair.
func Supports(t Translator, source, target string) bool {
	if ps, ok := t.(PairSupporter); ok {
		return ps.Supports(source, target)
	}
	return true
}

var languageNames = map[string]string{
	"ar": "Arabic",
	"de": "German",
	"en": "English",
	"es": "Spanish",
	"fr": "French",
	"hi": "Hindi",
	"it": "Italian",
	"ja": "Japanese",
	"ko": "Korean",
	"nl": "Dutch",
	"pl": "Polish",
	"pt": "Portuguese",
	"ru": "Russian",
	"tr": "Turkish",
	"uk": "Ukrainian",
	"zh": "Chinese",
}

// Language is a supported language code and its English name.
type Language struct {
	Code string `json:"code"`
	Name string `json:"name"`
}

// Languages returns the known languages sorted by code.
func Languages() []Language {
	out := make([]Language, 0, len(languageNames))
	for code, name := range languageNames {
		out = append(out, Language{Code: code, Name: name})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Code < out[j].Code })
	return out
}

// LanguageName returns the English name for code, or code itself when unknown.
func LanguageName(code string) string {
	if name, ok := languageNames[strings.ToLower(code)]; ok {
		return name
	}
	return code
}

// IsKnownLanguage reports whether code is in the language list.
func IsKnownLanguage(code string) bool {
	_, ok := languageNames[strings.ToLower(code)]
	return ok
}
