package storage

import "time"

// FileStatus is the processing state of an uploaded file.
type FileStatus string

const (
	FileStatusPending   FileStatus = "pending"
	FileStatusCompleted FileStatus = "completed"
	FileStatusFailed    FileStatus = "failed"
)

// TranslationStatus is the outcome of a translation.
type TranslationStatus string

const (
	TranslationCompleted TranslationStatus = "completed"
	TranslationFailed    TranslationStatus = "failed"
)

// FileRecord represents an uploaded file in the database.
type FileRecord struct {
	ID         string // UUID
	Filename   string
	Format     string // "markdown" or "text"
	SizeBytes  int64
	SourceLang string
	TargetLang string
	Status     FileStatus
	Error      string // Set when Status is failed
	CreatedAt  time.Time
	UpdatedAt  time.Time
}

// TranslationRecord is one history entry.
type TranslationRecord struct {
	ID             string // UUID
	FileID         string // Empty for text translations
	SourceLang     string
	TargetLang     string
	Strategy       string
	Backend        string
	SourceText     string
	TranslatedText string
	Preview        string // Truncated source text for list views
	ChunkCount     int
	CharCount      int // Runes in SourceText
	DurationMS     int64
	Status         TranslationStatus
	Error          string
	CreatedAt      time.Time
}

// TranslationSummary is the list view of a TranslationRecord, without the full texts.
type TranslationSummary struct {
	ID         string
	FileID     string
	SourceLang string
	TargetLang string
	Backend    string
	Preview    string
	ChunkCount int
	CharCount  int
	Status     TranslationStatus
	CreatedAt  time.Time
}

// Stats aggregates the translation history.
type Stats struct {
	Translations   int            `json:"translations"`
	Failed         int            `json:"failed"`
	Files          int            `json:"files"`
	Characters     int64          `json:"characters"`
	ByLanguagePair map[string]int `json:"by_language_pair"`
	ByBackend      map[string]int `json:"by_backend"`
	ChunkCounts    ChunkStats     `json:"chunk_counts"`
}

// ChunkStats contains statistics about chunks per completed translation.
type ChunkStats struct {
	Min  int     `json:"min"`
	Max  int     `json:"max"`
	Mean float64 `json:"mean"`
	P95  int     `json:"p95"`
}
