package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"math"
	"sort"
	"time"

	"github.com/google/uuid"
)

// TranslationStore defines the interface for translation history operations.
type TranslationStore interface {
	// Insert stores a translation record. An ID is generated when rec.ID is empty.
	Insert(ctx context.Context, rec *TranslationRecord) error
	// GetByID gets a translation with its full texts. Returns ErrNotFound if not found.
	GetByID(ctx context.Context, id string) (*TranslationRecord, error)
	// List returns summaries, newest first.
	List(ctx context.Context, limit, offset int) ([]*TranslationSummary, error)
	// Delete removes a translation. Returns ErrNotFound if not found.
	Delete(ctx context.Context, id string) error
	// Stats aggregates the whole history.
	Stats(ctx context.Context) (*Stats, error)
}

// TranslationRepo provides methods for translation history operations.
// It implements the TranslationStore interface.
type TranslationRepo struct {
	db  *sql.DB
	now func() time.Time
}

// NewTranslationRepo creates a new TranslationRepo.
func NewTranslationRepo(db *sql.DB) *TranslationRepo {
	return &TranslationRepo{db: db, now: func() time.Time { return time.Now().UTC() }}
}


func nullable(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}

// Insert stores a translation record. CreatedAt is set to now when zero.
func (r *TranslationRepo) Insert(ctx context.Context, rec *TranslationRecord) error {
	if rec.ID == "" {
		rec.ID = uuid.New().String()
	}
	if rec.CreatedAt.IsZero() {
		rec.CreatedAt = r.now()
	}

	_, err := r.db.ExecContext(ctx,
		`INSERT INTO translations (id, file_id, source_lang, target_lang, strategy, backend, source_text,
		 translated_text, preview, chunk_count, char_count, duration_ms, status, error, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		rec.ID, nullable(rec.FileID), rec.SourceLang, rec.TargetLang, rec.Strategy, rec.Backend, rec.SourceText,
		rec.TranslatedText, rec.Preview, rec.ChunkCount, rec.CharCount, rec.DurationMS, string(rec.Status),
		rec.Error, rec.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to insert translation: %w", err)
	}
	return nil
}

// GetByID gets a translation with its full texts. Returns ErrNotFound if not found.
func (r *TranslationRepo) GetByID(ctx context.Context, id string) (*TranslationRecord, error) {
	var rec TranslationRecord
	var fileID sql.NullString
	var status string

	err := r.db.QueryRowContext(ctx,
		`SELECT id, file_id, source_lang, target_lang, strategy, backend, source_text, translated_text,
		 preview, chunk_count, char_count, duration_ms, status, error, created_at
		 FROM translations WHERE id = ?`, id,
	).Scan(&rec.ID, &fileID, &rec.SourceLang, &rec.TargetLang, &rec.Strategy, &rec.Backend, &rec.SourceText,
		&rec.TranslatedText, &rec.Preview, &rec.ChunkCount, &rec.CharCount, &rec.DurationMS, &status,
		&rec.Error, &rec.CreatedAt)

	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query translation: %w", err)
	}

	rec.FileID = fileID.String
	rec.Status = TranslationStatus(status)
	return &rec, nil
}

// List returns summaries, newest first.
func (r *TranslationRepo) List(ctx context.Context, limit, offset int) ([]*TranslationSummary, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, file_id, source_lang, target_lang, backend, preview, chunk_count, char_count, status, created_at
		 FROM translations ORDER BY created_at DESC, rowid DESC LIMIT ? OFFSET ?`,
		limit, offset,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to query translations: %w", err)
	}
	defer func() {
		_ = rows.Close()
	}()

	out := []*TranslationSummary{}
	for rows.Next() {
		var s TranslationSummary
		var fileID sql.NullString
		var status string
		if err := rows.Scan(&s.ID, &fileID, &s.SourceLang, &s.TargetLang, &s.Backend, &s.Preview,
			&s.ChunkCount, &s.CharCount, &status, &s.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan translation: %w", err)
		}
		s.FileID = fileID.String
		s.Status = TranslationStatus(status)
		out = append(out, &s)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("row iteration error: %w", err)
	}
	return out, nil
}

// Delete removes a translation. Returns ErrNotFound if not found.
func (r *TranslationRepo) Delete(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx, "DELETE FROM translations WHERE id = ?", id)
	if err != nil {
		return fmt.Errorf("failed to delete translation: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to read affected rows: %w", err)
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

// Stats aggregates the whole history. Chunk statistics cover completed
// translations only.
func (r *TranslationRepo) Stats(ctx context.Context) (*Stats, error) {
	stats := &Stats{
		ByLanguagePair: make(map[string]int),
		ByBackend:      make(map[string]int),
	}

	err := r.db.QueryRowContext(ctx,
		`SELECT COUNT(*),
		 COALESCE(SUM(CASE WHEN status = ? THEN 1 ELSE 0 END), 0),
		 COALESCE(SUM(char_count), 0)
		 FROM translations`, string(TranslationFailed),
	).Scan(&stats.Translations, &stats.Failed, &stats.Characters)
	if err != nil {
		return nil, fmt.Errorf("failed to query translation totals: %w", err)
	}

	if err := r.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM files").Scan(&stats.Files); err != nil {
		return nil, fmt.Errorf("failed to query file count: %w", err)
	}

	if err := r.countBy(ctx, "source_lang || '->' || target_lang", stats.ByLanguagePair); err != nil {
		return nil, err
	}
	if err := r.countBy(ctx, "backend", stats.ByBackend); err != nil {
		return nil, err
	}

	counts, err := r.completedChunkCounts(ctx)
	if err != nil {
		return nil, err
	}
	stats.ChunkCounts = computeChunkStats(counts)

	return stats, nil
}

// countBy fills dst with row counts grouped by expr. expr is never user input.
func (r *TranslationRepo) countBy(ctx context.Context, expr string, dst map[string]int) error {
	rows, err := r.db.QueryContext(ctx, "SELECT "+expr+", COUNT(*) FROM translations GROUP BY 1")
	if err != nil {
		return fmt.Errorf("failed to group translations: %w", err)
	}
	defer func() {
		_ = rows.Close()
	}()

	for rows.Next() {
		var key string
		var n int
		if err := rows.Scan(&key, &n); err != nil {
			return fmt.Errorf("failed to scan group: %w", err)
		}
		dst[key] = n
	}
	return rows.Err()
}

func (r *TranslationRepo) completedChunkCounts(ctx context.Context) ([]int, error) {
	rows, err := r.db.QueryContext(ctx,
		"SELECT chunk_count FROM translations WHERE status = ?", string(TranslationCompleted))
	if err != nil {
		return nil, fmt.Errorf("failed to query chunk counts: %w", err)
	}
	defer func() {
		_ = rows.Close()
	}()

	var counts []int
	for rows.Next() {
		var n int
		if err := rows.Scan(&n); err != nil {
			return nil, fmt.Errorf("failed to scan chunk count: %w", err)
		}
		counts = append(counts, n)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("row iteration error: %w", err)
	}
	return counts, nil
}

// computeChunkStats computes min, max, mean, and nearest-rank p95.
func computeChunkStats(counts []int) ChunkStats {
	if len(counts) == 0 {
		return ChunkStats{}
	}

	sorted := make([]int, len(counts))
	copy(sorted, counts)
	sort.Ints(sorted)

	sum := 0
	for _, c := range sorted {
		sum += c
	}
	mean := float64(sum) / float64(len(sorted))

	p95Index := int(math.Ceil(float64(len(sorted))*0.95)) - 1
	if p95Index < 0 {
		p95Index = 0
	}

	return ChunkStats{
		Min:  sorted[0],
		Max:  sorted[len(sorted)-1],
		Mean: math.Round(mean*100) / 100, // Round to 2 decimal places
		P95:  sorted[p95Index],
	}
}
