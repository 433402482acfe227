package storage

//go:generate go run go.uber.org/mock/mockgen@latest -destination=mocks/mock_stores.go -package=mocks linguaflow/internal/storage FileStore,TranslationStore

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
)

var (
	// ErrNotFound is returned when a record is not found.
	ErrNotFound = errors.New("record not found")
)

// FileStore defines the interface for file record operations.
type FileStore interface {
	// Create inserts a file record. An ID is generated when file.ID is empty.
	Create(ctx context.Context, file *FileRecord) error
	// UpdateStatus sets the status and error message of a file.
	// Returns ErrNotFound if the file does not exist.
	UpdateStatus(ctx context.Context, id string, status FileStatus, errMsg string) error
	// GetByID gets a file by its ID. Returns ErrNotFound if not found.
	GetByID(ctx context.Context, id string) (*FileRecord, error)
	// List returns files, newest first.
	List(ctx context.Context, limit, offset int) ([]*FileRecord, error)
}

// FileRepo provides methods for file operations.
// It implements the FileStore interface.
type FileRepo struct {
	db  *sql.DB
	now func() time.Time
}

// NewFileRepo creates a new FileRepo.
func NewFileRepo(db *sql.DB) *FileRepo {
	return &FileRepo{db: db, now: func() time.Time { return time.Now().UTC() }}
}

// Create inserts a file record. CreatedAt and UpdatedAt are set to now.
func (r *FileRepo) Create(ctx context.Context, file *FileRecord) error {
	if file.ID == "" {
		file.ID = uuid.New().String()
	}
	if file.Status == "" {
		file.Status = FileStatusPending
	}
	now := r.now()
	file.CreatedAt = now
	file.UpdatedAt = now

	_, err := r.db.ExecContext(ctx,
		`INSERT INTO files (id, filename, format, size_bytes, source_lang, target_lang, status, error, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		file.ID, file.Filename, file.Format, file.SizeBytes, file.SourceLang, file.TargetLang,
		string(file.Status), file.Error, file.CreatedAt, file.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to insert file: %w", err)
	}
	return nil
}

// UpdateStatus sets the status and error message of a file.
func (r *FileRepo) UpdateStatus(ctx context.Context, id string, status FileStatus, errMsg string) error {
	res, err := r.db.ExecContext(ctx,
		"UPDATE files SET status = ?, error = ?, updated_at = ? WHERE id = ?",
		string(status), errMsg, r.now(), id,
	)
	if err != nil {
		return fmt.Errorf("failed to update file status: %w", err)
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

const fileColumns = "id, filename, format, size_bytes, source_lang, target_lang, status, error, created_at, updated_at"

type rowScanner interface {
	Scan(dest ...any) error
}

func scanFile(row rowScanner) (*FileRecord, error) {
	var f FileRecord
	var status string
	if err := row.Scan(&f.ID, &f.Filename, &f.Format, &f.SizeBytes, &f.SourceLang, &f.TargetLang,
		&status, &f.Error, &f.CreatedAt, &f.UpdatedAt); err != nil {
		return nil, err
	}
	f.Status = FileStatus(status)
	return &f, nil
}

// GetByID gets a file by its ID. Returns ErrNotFound if not found.
func (r *FileRepo) GetByID(ctx context.Context, id string) (*FileRecord, error) {
	f, err := scanFile(r.db.QueryRowContext(ctx, "SELECT "+fileColumns+" FROM files WHERE id = ?", id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query file: %w", err)
	}
	return f, nil
}

// List returns files, newest first.
func (r *FileRepo) List(ctx context.Context, limit, offset int) ([]*FileRecord, error) {
	rows, err := r.db.QueryContext(ctx,
		"SELECT "+fileColumns+" FROM files ORDER BY created_at DESC, rowid DESC LIMIT ? OFFSET ?",
		limit, offset,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to query files: %w", err)
	}
	defer func() {
		_ = rows.Close()
	}()

	files := []*FileRecord{}
	for rows.Next() {
		f, err := scanFile(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan file: %w", err)
		}
		files = append(files, f)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("row iteration error: %w", err)
	}
	return files, nil
}
