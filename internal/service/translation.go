package service

//go:generate go run go.uber.org/mock/mockgen@latest -destination=mocks/mock_translation_service.go -package=mocks linguaflow/internal/service TranslationService

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"
	"unicode/utf8"

	"linguaflow/internal/chunker"
	"linguaflow/internal/contextutil"
	"linguaflow/internal/document"
	"linguaflow/internal/storage"
	"linguaflow/internal/translator"
)

const (
	DefaultChunkMaxSize  = 4500
	DefaultWordChunkSize = 2000
	DefaultPreviewLength = 200
	DefaultHistoryLimit  = 20
	MaxHistoryLimit      = 100
	previewEllipsis      = "…"
)

// TranslateRequest represents a text translation request in the domain layer.
type TranslateRequest struct {
	Text     string
	Source   string // Language code or "auto"; empty means "auto"
	Target   string
	Strategy string // "paragraph" (default) or "words"
}

// TranslateResponse is the result of a translation.
type TranslateResponse struct {
	ID             string
	TranslatedText string
	Chunks         int
	Backend        string
	DurationMS     int64
}

// ChunkResult is delivered to stream callbacks after each translated chunk.
type ChunkResult struct {
	Index int
	Total int
	Text  string
	// Separator precedes Text when the chunks are concatenated.
	Separator string
}

// FileRequest is an uploaded file to translate.
type FileRequest struct {
	Filename string
	Content  []byte
	Source   string
	Target   string
	Strategy string
}

// FileResponse is the result of a file translation.
type FileResponse struct {
	FileID string
	Title  string
	Format string
	TranslateResponse
}

// Options configures chunk sizes and the history preview length.
// Zero values select the defaults.
type Options struct {
	ChunkMaxSize  int
	WordChunkSize int
	PreviewLength int
}

// TranslationService splits texts into chunks, translates them in order and
// keeps the translation history.
type TranslationService interface {
	// Translate translates a text and records it in the history.
	Translate(ctx context.Context, req TranslateRequest) (TranslateResponse, error)
	// TranslateStream is Translate, reporting every chunk to callback as soon
	// as it is translated. A callback error aborts the translation.
	TranslateStream(ctx context.Context, req TranslateRequest, callback func(ChunkResult) error) (TranslateResponse, error)
	// TranslateFile extracts the text of an uploaded file and translates it.
	TranslateFile(ctx context.Context, req FileRequest) (FileResponse, error)
	// Preview returns the chunks a translation of text would use.
	// maxChunkSize <= 0 selects the configured size for the strategy.
	Preview(text, strategy string, maxChunkSize int) ([]chunker.Chunk, error)
	// History lists past translations, newest first.
	History(ctx context.Context, limit, offset int) ([]*storage.TranslationSummary, error)
	// Get returns one translation with its full texts.
	Get(ctx context.Context, id string) (*storage.TranslationRecord, error)
	// Delete removes a translation from the history.
	Delete(ctx context.Context, id string) error
	// Stats aggregates the history.
	Stats(ctx context.Context) (*storage.Stats, error)
	// Languages lists the language codes accepted by the service.
	Languages() []translator.Language
}

// translationService implements TranslationService.
type translationService struct {
	translator   translator.Translator
	translations storage.TranslationStore
	files        storage.FileStore
	extractor    *document.Extractor
	opts         Options
}

// NewTranslationService creates a new TranslationService.
func NewTranslationService(tr translator.Translator, translations storage.TranslationStore, files storage.FileStore, opts Options) TranslationService {
	if opts.ChunkMaxSize <= 0 {
		opts.ChunkMaxSize = DefaultChunkMaxSize
	}
	if opts.WordChunkSize <= 0 {
		opts.WordChunkSize = DefaultWordChunkSize
	}
	if opts.PreviewLength <= 0 {
		opts.PreviewLength = DefaultPreviewLength
	}
	return &translationService{
		translator:   tr,
		translations: translations,
		files:        files,
		extractor:    document.NewExtractor(),
		opts:         opts,
	}
}

// Translate implements TranslationService.
func (s *translationService) Translate(ctx context.Context, req TranslateRequest) (TranslateResponse, error) {
	return s.TranslateStream(ctx, req, nil)
}

// TranslateStream implements TranslationService.
func (s *translationService) TranslateStream(ctx context.Context, req TranslateRequest, callback func(ChunkResult) error) (TranslateResponse, error) {
	req, strategy, err := s.validate(req)
	if err != nil {
		contextutil.LoggerFromContext(ctx).WarnContext(ctx, "invalid translation request", "error", err)
		return TranslateResponse{}, err
	}
	return s.run(ctx, req, strategy, "", callback)
}

// TranslateFile implements TranslationService. Every accepted upload gets a
// file record that ends up completed or failed.
func (s *translationService) TranslateFile(ctx context.Context, req FileRequest) (FileResponse, error) {
	logger := contextutil.LoggerFromContext(ctx)

	if strings.TrimSpace(req.Filename) == "" {
		return FileResponse{}, &ValidationError{Field: "file", Message: "filename is required"}
	}
	format, err := document.FormatOf(req.Filename)
	if err != nil {
		return FileResponse{}, &ValidationError{Field: "file", Message: err.Error()}
	}
	treq, strategy, err := s.validateOptions(TranslateRequest{
		Source:   req.Source,
		Target:   req.Target,
		Strategy: req.Strategy,
	})
	if err != nil {
		return FileResponse{}, err
	}

	file := &storage.FileRecord{
		Filename:   req.Filename,
		Format:     format,
		SizeBytes:  int64(len(req.Content)),
		SourceLang: treq.Source,
		TargetLang: treq.Target,
		Status:     storage.FileStatusPending,
	}
	if err := s.files.Create(ctx, file); err != nil {
		logger.ErrorContext(ctx, "failed to create file record", "error", err)
		return FileResponse{}, WrapError(err, "failed to create file record")
	}
	logger = logger.With("file_id", file.ID, "filename", req.Filename)

	doc, err := s.extractor.Extract(req.Content, req.Filename)
	if err == nil && strings.TrimSpace(doc.Text) == "" {
		err = errors.New("file contains no text")
	}
	if err != nil {
		s.markFile(ctx, logger, file.ID, storage.FileStatusFailed, err.Error())
		return FileResponse{}, &ValidationError{Field: "file", Message: err.Error()}
	}

	treq.Text = doc.Text
	resp, err := s.run(ctx, treq, strategy, file.ID, nil)
	if err != nil {
		s.markFile(ctx, logger, file.ID, storage.FileStatusFailed, err.Error())
		return FileResponse{}, err
	}
	s.markFile(ctx, logger, file.ID, storage.FileStatusCompleted, "")

	logger.InfoContext(ctx, "file translated", "format", doc.Format, "chunks", resp.Chunks)
	return FileResponse{
		FileID:            file.ID,
		Title:             doc.Title,
		Format:            doc.Format,
		TranslateResponse: resp,
	}, nil
}

func (s *translationService) markFile(ctx context.Context, logger *slog.Logger, id string, status storage.FileStatus, msg string) {
	if err := s.files.UpdateStatus(context.WithoutCancel(ctx), id, status, msg); err != nil {
		logger.ErrorContext(ctx, "failed to update file status", "status", status, "error", err)
	}
}

// Preview implements TranslationService.
func (s *translationService) Preview(text, strategy string, maxChunkSize int) ([]chunker.Chunk, error) {
	st, err := chunker.ParseStrategy(strategy)
	if err != nil {
		return nil, &ValidationError{Field: "strategy", Message: err.Error()}
	}
	if text == "" {
		return nil, &ValidationError{Field: "text", Message: "cannot be empty"}
	}
	if maxChunkSize <= 0 {
		maxChunkSize = s.maxChunkSize(st)
	}
	return chunker.SplitWith(st, text, maxChunkSize), nil
}

// History implements TranslationService.
func (s *translationService) History(ctx context.Context, limit, offset int) ([]*storage.TranslationSummary, error) {
	if limit <= 0 {
		limit = DefaultHistoryLimit
	}
	if limit > MaxHistoryLimit {
		limit = MaxHistoryLimit
	}
	if offset < 0 {
		offset = 0
	}
	list, err := s.translations.List(ctx, limit, offset)
	if err != nil {
		return nil, WrapError(err, "failed to list translations")
	}
	return list, nil
}

// Get implements TranslationService.
func (s *translationService) Get(ctx context.Context, id string) (*storage.TranslationRecord, error) {
	rec, err := s.translations.GetByID(ctx, id)
	if errors.Is(err, storage.ErrNotFound) {
		return nil, fmt.Errorf("translation %s: %w", id, ErrNotFound)
	}
	if err != nil {
		return nil, WrapError(err, "failed to get translation")
	}
	return rec, nil
}

// Delete implements TranslationService.
func (s *translationService) Delete(ctx context.Context, id string) error {
	err := s.translations.Delete(ctx, id)
	if errors.Is(err, storage.ErrNotFound) {
		return fmt.Errorf("translation %s: %w", id, ErrNotFound)
	}
	if err != nil {
		return WrapError(err, "failed to delete translation")
	}
	contextutil.LoggerFromContext(ctx).InfoContext(ctx, "translation deleted", "translation_id", id)
	return nil
}

// Stats implements TranslationService.
func (s *translationService) Stats(ctx context.Context) (*storage.Stats, error) {
	stats, err := s.translations.Stats(ctx)
	if err != nil {
		return nil, WrapError(err, "failed to compute stats")
	}
	return stats, nil
}

// Languages implements TranslationService.
func (s *translationService) Languages() []translator.Language {
	return translator.Languages()
}

func (s *translationService) maxChunkSize(st chunker.Strategy) int {
	if st == chunker.StrategyWords {
		return s.opts.WordChunkSize
	}
	return s.opts.ChunkMaxSize
}

// validate checks req and returns it with normalized language codes.
func (s *translationService) validate(req TranslateRequest) (TranslateRequest, chunker.Strategy, error) {
	if strings.TrimSpace(req.Text) == "" {
		return req, "", &ValidationError{Field: "text", Message: "cannot be empty"}
	}
	return s.validateOptions(req)
}

// validateOptions checks the languages and strategy of req.
func (s *translationService) validateOptions(req TranslateRequest) (TranslateRequest, chunker.Strategy, error) {
	req.Source = strings.ToLower(strings.TrimSpace(req.Source))
	req.Target = strings.ToLower(strings.TrimSpace(req.Target))
	if req.Source == "" {
		req.Source = translator.AutoDetect
	}

	if req.Target == "" {
		return req, "", &ValidationError{Field: "target", Message: "is required"}
	}
	if req.Target == translator.AutoDetect || !translator.IsKnownLanguage(req.Target) {
		return req, "", &ValidationError{Field: "target", Message: fmt.Sprintf("unsupported language %q", req.Target)}
	}
	if req.Source != translator.AutoDetect && !translator.IsKnownLanguage(req.Source) {
		return req, "", &ValidationError{Field: "source", Message: fmt.Sprintf("unsupported language %q", req.Source)}
	}
	if req.Source == req.Target {
		return req, "", &ValidationError{Field: "target", Message: "must differ from source"}
	}
	if !translator.Supports(s.translator, req.Source, req.Target) {
		return req, "", &ValidationError{
			Field:   "target",
			Message: fmt.Sprintf("language pair %s-%s is not supported by the %s backend", req.Source, req.Target, s.translator.Name()),
		}
	}

	st, err := chunker.ParseStrategy(req.Strategy)
	if err != nil {
		return req, "", &ValidationError{Field: "strategy", Message: err.Error()}
	}
	return req, st, nil
}

// run splits req.Text, translates the chunks in order and records the outcome.
func (s *translationService) run(ctx context.Context, req TranslateRequest, strategy chunker.Strategy, fileID string, callback func(ChunkResult) error) (TranslateResponse, error) {
	logger := contextutil.LoggerFromContext(ctx)
	start := time.Now()

	chunks := chunker.SplitWith(strategy, req.Text, s.maxChunkSize(strategy))
	logger.DebugContext(ctx, "text split into chunks",
		"chunks", len(chunks), "strategy", strategy, "chars", utf8.RuneCountInString(req.Text))

	rec := &storage.TranslationRecord{
		FileID:     fileID,
		SourceLang: req.Source,
		TargetLang: req.Target,
		Strategy:   string(strategy),
		Backend:    s.translator.Name(),
		SourceText: req.Text,
		Preview:    Preview(req.Text, s.opts.PreviewLength),
		ChunkCount: len(chunks),
		CharCount:  utf8.RuneCountInString(req.Text),
	}

	backends := newBackendSet(s.translator.Name())
	translated := make([]chunker.Chunk, len(chunks))
	for i, ch := range chunks {
		chunkCtx, served := translator.WithServed(ctx)
		out, err := s.translator.Translate(chunkCtx, translator.Request{
			Text:   ch.Text,
			Source: req.Source,
			Target: req.Target,
		})
		if err == nil && callback != nil {
			err = callback(ChunkResult{Index: i, Total: len(chunks), Text: out, Separator: ch.Separator})
		}
		if err != nil {
			logger.ErrorContext(ctx, "chunk translation failed", "chunk", i, "total", len(chunks), "error", err)
			rec.Status = storage.TranslationFailed
			rec.Error = err.Error()
			rec.DurationMS = time.Since(start).Milliseconds()
			s.record(ctx, rec)
			if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
				return TranslateResponse{}, err
			}
			return TranslateResponse{}, fmt.Errorf("%w: chunk %d of %d: %w", ErrExternalService, i+1, len(chunks), err)
		}
		backends.add(served)
		translated[i] = chunker.Chunk{Index: i, Text: out, Separator: ch.Separator}
	}

	rec.Backend = backends.String()
	rec.TranslatedText = chunker.Join(translated)
	rec.Status = storage.TranslationCompleted
	rec.DurationMS = time.Since(start).Milliseconds()
	if err := s.translations.Insert(ctx, rec); err != nil {
		logger.ErrorContext(ctx, "failed to save translation", "error", err)
		return TranslateResponse{}, WrapError(err, "failed to save translation")
	}

	logger.InfoContext(ctx, "translation completed",
		"translation_id", rec.ID, "backend", rec.Backend, "chunks", rec.ChunkCount, "duration_ms", rec.DurationMS)
	return TranslateResponse{
		ID:             rec.ID,
		TranslatedText: rec.TranslatedText,
		Chunks:         rec.ChunkCount,
		Backend:        rec.Backend,
		DurationMS:     rec.DurationMS,
	}, nil
}

// backendSet collects the backends that served the chunks of one text, in
// order of first use.
type backendSet struct {
	primary string
	names   []string
}

func newBackendSet(primary string) *backendSet {
	return &backendSet{primary: primary}
}

func (b *backendSet) add(served *translator.Served) {
	name := b.primary
	if fb, ok := served.Fallback(); ok {
		name = fb
	}
	for _, n := range b.names {
		if n == name {
			return
		}
	}
	b.names = append(b.names, name)
}

// String joins the backends with "+", e.g. "llm+dictionary" when only some
// chunks fell back.
func (b *backendSet) String() string {
	if len(b.names) == 0 {
		return b.primary
	}
	return strings.Join(b.names, "+")
}

// record stores a failed translation. It outlives a cancelled request.
func (s *translationService) record(ctx context.Context, rec *storage.TranslationRecord) {
	if err := s.translations.Insert(context.WithoutCancel(ctx), rec); err != nil {
		contextutil.LoggerFromContext(ctx).ErrorContext(ctx, "failed to record failed translation", "error", err)
	}
}

// Preview returns the first n runes of text, with an ellipsis appended when
// text is longer.
func Preview(text string, n int) string {
	if n <= 0 || utf8.RuneCountInString(text) <= n {
		return text
	}
	runes := []rune(text)
	return string(runes[:n]) + previewEllipsis
}
