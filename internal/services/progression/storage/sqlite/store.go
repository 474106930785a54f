package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/hawthornlabs/journey/internal/platform/storage/sqlitemigrate"
	"github.com/hawthornlabs/journey/internal/services/progression/domain"
	"github.com/hawthornlabs/journey/internal/services/progression/storage"
	"github.com/hawthornlabs/journey/internal/services/progression/storage/sqlite/migrations"
	_ "modernc.org/sqlite"
)

// Store provides SQLite-backed persistence for the progression service.
type Store struct {
	sqlDB *sql.DB
}

func toMillis(value time.Time) int64 {
	return value.UTC().UnixMilli()
}

func fromMillis(value int64) time.Time {
	return time.UnixMilli(value).UTC()
}

// Open opens a progression SQLite store at the provided path.
func Open(path string) (*Store, error) {
	if strings.TrimSpace(path) == "" {
		return nil, fmt.Errorf("storage path is required")
	}

	cleanPath := filepath.Clean(path)
	dsn := cleanPath + "?_journal_mode=WAL&_busy_timeout=5000&_synchronous=NORMAL&_pragma=foreign_keys(ON)"
	sqlDB, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open sqlite db: %w", err)
	}
	if err := sqlDB.Ping(); err != nil {
		_ = sqlDB.Close()
		return nil, fmt.Errorf("ping sqlite db: %w", err)
	}

	store := &Store{sqlDB: sqlDB}
	if err := store.runMigrations(); err != nil {
		_ = sqlDB.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}
	return store, nil
}

// Close closes the underlying SQLite database.
//
// Close is nil-safe so callers can defer it in all startup paths.
func (s *Store) Close() error {
	if s == nil || s.sqlDB == nil {
		return nil
	}
	return s.sqlDB.Close()
}

func (s *Store) runMigrations() error {
	return sqlitemigrate.ApplyMigrations(s.sqlDB, migrations.FS, "")
}

// AppendCompletion appends one completion event to the ledger.
// The (user_id, chapter_number) primary key rejects duplicates atomically;
// a constraint violation surfaces as storage.ErrDuplicateCompletion.
func (s *Store) AppendCompletion(ctx context.Context, event domain.CompletionEvent) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if s == nil || s.sqlDB == nil {
		return fmt.Errorf("storage is not configured")
	}
	if strings.TrimSpace(event.ID) == "" {
		return fmt.Errorf("completion event id is required")
	}
	if strings.TrimSpace(event.UserID) == "" {
		return fmt.Errorf("completion user id is required")
	}
	if event.ChapterNumber < 1 {
		return fmt.Errorf("completion chapter number must be positive")
	}
	timestamp := event.Timestamp
	if timestamp.IsZero() {
		timestamp = time.Now()
	}

	_, err := s.sqlDB.ExecContext(ctx, `
INSERT INTO completions (event_id, user_id, chapter_number, created_at_ms)
VALUES (?, ?, ?, ?)
`, event.ID, event.UserID, event.ChapterNumber, toMillis(timestamp))
	if err != nil {
		if isUniqueConstraintError(err) {
			return storage.ErrDuplicateCompletion
		}
		return fmt.Errorf("append completion: %w", err)
	}
	return nil
}

// ListCompletions returns all completion events for a user ordered by
// append time. Ordering is a courtesy for callers; derivation is set-based.
func (s *Store) ListCompletions(ctx context.Context, userID string) ([]domain.CompletionEvent, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if s == nil || s.sqlDB == nil {
		return nil, fmt.Errorf("storage is not configured")
	}
	if strings.TrimSpace(userID) == "" {
		return nil, fmt.Errorf("user id is required")
	}

	rows, err := s.sqlDB.QueryContext(ctx, `
SELECT event_id, user_id, chapter_number, created_at_ms
FROM completions
WHERE user_id = ?
ORDER BY created_at_ms, chapter_number
`, userID)
	if err != nil {
		return nil, fmt.Errorf("list completions: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var events []domain.CompletionEvent
	for rows.Next() {
		var event domain.CompletionEvent
		var createdAtMillis int64
		if err := rows.Scan(&event.ID, &event.UserID, &event.ChapterNumber, &createdAtMillis); err != nil {
			return nil, fmt.Errorf("scan completion: %w", err)
		}
		event.Timestamp = fromMillis(createdAtMillis)
		events = append(events, event)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate completions: %w", err)
	}
	return events, nil
}

// PutProgress upserts the denormalized progress row for a user.
func (s *Store) PutProgress(ctx context.Context, record domain.ProgressRecord) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if s == nil || s.sqlDB == nil {
		return fmt.Errorf("storage is not configured")
	}
	if strings.TrimSpace(record.UserID) == "" {
		return fmt.Errorf("progress user id is required")
	}
	updatedAt := record.UpdatedAt
	if updatedAt.IsZero() {
		updatedAt = time.Now()
	}

	_, err := s.sqlDB.ExecContext(ctx, `
INSERT INTO progress_cache (user_id, total_xp, level, completed_count, current_chapter, updated_at_ms)
VALUES (?, ?, ?, ?, ?, ?)
ON CONFLICT(user_id) DO UPDATE SET
    total_xp = excluded.total_xp,
    level = excluded.level,
    completed_count = excluded.completed_count,
    current_chapter = excluded.current_chapter,
    updated_at_ms = excluded.updated_at_ms
`, record.UserID, record.TotalXP, record.Level, record.CompletedCount, record.CurrentChapter, toMillis(updatedAt))
	if err != nil {
		return fmt.Errorf("put progress: %w", err)
	}
	return nil
}

// GetProgress returns the denormalized progress row for a user.
func (s *Store) GetProgress(ctx context.Context, userID string) (domain.ProgressRecord, error) {
	if err := ctx.Err(); err != nil {
		return domain.ProgressRecord{}, err
	}
	if s == nil || s.sqlDB == nil {
		return domain.ProgressRecord{}, fmt.Errorf("storage is not configured")
	}
	if strings.TrimSpace(userID) == "" {
		return domain.ProgressRecord{}, fmt.Errorf("user id is required")
	}

	var record domain.ProgressRecord
	var updatedAtMillis int64
	err := s.sqlDB.QueryRowContext(ctx, `
SELECT user_id, total_xp, level, completed_count, current_chapter, updated_at_ms
FROM progress_cache
WHERE user_id = ?
`, userID).Scan(&record.UserID, &record.TotalXP, &record.Level, &record.CompletedCount, &record.CurrentChapter, &updatedAtMillis)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return domain.ProgressRecord{}, storage.ErrNotFound
		}
		return domain.ProgressRecord{}, fmt.Errorf("get progress: %w", err)
	}
	record.UpdatedAt = fromMillis(updatedAtMillis)
	return record, nil
}

// isUniqueConstraintError reports whether err is a SQLite uniqueness violation.
func isUniqueConstraintError(err error) bool {
	if err == nil {
		return false
	}
	message := strings.ToLower(err.Error())
	return strings.Contains(message, "unique constraint failed") || strings.Contains(message, "constraint failed")
}
