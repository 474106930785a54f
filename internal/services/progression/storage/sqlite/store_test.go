package sqlite

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/hawthornlabs/journey/internal/services/progression/domain"
	"github.com/hawthornlabs/journey/internal/services/progression/storage"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	store, err := Open(filepath.Join(t.TempDir(), "progression.db"))
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	t.Cleanup(func() { _ = store.Close() })
	return store
}

func testEvent(userID string, chapterNumber int) domain.CompletionEvent {
	return domain.CompletionEvent{
		ID:            userID + "-evt-" + time.Now().Format("150405.000000000"),
		UserID:        userID,
		ChapterNumber: chapterNumber,
		Timestamp:     time.Date(2026, 2, 1, 10, 0, 0, 0, time.UTC),
	}
}

func TestOpenRequiresPath(t *testing.T) {
	if _, err := Open("  "); err == nil {
		t.Fatal("expected error for empty path")
	}
}

func TestAppendAndListCompletions(t *testing.T) {
	store := openTestStore(t)
	ctx := context.Background()

	for _, chapter := range []int{1, 2, 3} {
		if err := store.AppendCompletion(ctx, testEvent("user-1", chapter)); err != nil {
			t.Fatalf("append chapter %d: %v", chapter, err)
		}
	}
	if err := store.AppendCompletion(ctx, testEvent("user-2", 1)); err != nil {
		t.Fatalf("append for second user: %v", err)
	}

	events, err := store.ListCompletions(ctx, "user-1")
	if err != nil {
		t.Fatalf("list completions: %v", err)
	}
	if len(events) != 3 {
		t.Fatalf("expected 3 events for user-1, got %d", len(events))
	}
	for _, event := range events {
		if event.UserID != "user-1" {
			t.Fatalf("expected only user-1 events, got %+v", event)
		}
		if event.Timestamp.IsZero() {
			t.Fatal("expected persisted timestamp")
		}
	}
}

func TestAppendCompletionRejectsDuplicate(t *testing.T) {
	store := openTestStore(t)
	ctx := context.Background()

	if err := store.AppendCompletion(ctx, testEvent("user-1", 4)); err != nil {
		t.Fatalf("first append: %v", err)
	}
	err := store.AppendCompletion(ctx, testEvent("user-1", 4))
	if !errors.Is(err, storage.ErrDuplicateCompletion) {
		t.Fatalf("expected ErrDuplicateCompletion, got %v", err)
	}

	events, err := store.ListCompletions(ctx, "user-1")
	if err != nil {
		t.Fatalf("list completions: %v", err)
	}
	if len(events) != 1 {
		t.Fatalf("expected exactly one event after duplicate, got %d", len(events))
	}
}

func TestAppendCompletionValidation(t *testing.T) {
	store := openTestStore(t)
	ctx := context.Background()

	if err := store.AppendCompletion(ctx, domain.CompletionEvent{UserID: "user-1", ChapterNumber: 1}); err == nil {
		t.Fatal("expected error for missing event id")
	}
	if err := store.AppendCompletion(ctx, domain.CompletionEvent{ID: "evt", ChapterNumber: 1}); err == nil {
		t.Fatal("expected error for missing user id")
	}
	if err := store.AppendCompletion(ctx, domain.CompletionEvent{ID: "evt", UserID: "user-1"}); err == nil {
		t.Fatal("expected error for missing chapter number")
	}
}

func TestListCompletionsEmpty(t *testing.T) {
	store := openTestStore(t)

	events, err := store.ListCompletions(context.Background(), "nobody")
	if err != nil {
		t.Fatalf("list completions: %v", err)
	}
	if len(events) != 0 {
		t.Fatalf("expected empty ledger, got %d events", len(events))
	}
}

func TestProgressCacheRoundTrip(t *testing.T) {
	store := openTestStore(t)
	ctx := context.Background()

	if _, err := store.GetProgress(ctx, "user-1"); !errors.Is(err, storage.ErrNotFound) {
		t.Fatalf("expected ErrNotFound before put, got %v", err)
	}

	record := domain.ProgressRecord{
		UserID:         "user-1",
		TotalXP:        300,
		Level:          4,
		CompletedCount: 5,
		CurrentChapter: 6,
		UpdatedAt:      time.Date(2026, 2, 1, 10, 0, 0, 0, time.UTC),
	}
	if err := store.PutProgress(ctx, record); err != nil {
		t.Fatalf("put progress: %v", err)
	}

	got, err := store.GetProgress(ctx, "user-1")
	if err != nil {
		t.Fatalf("get progress: %v", err)
	}
	if got.TotalXP != 300 || got.Level != 4 || got.CompletedCount != 5 || got.CurrentChapter != 6 {
		t.Fatalf("unexpected progress record: %+v", got)
	}

	// Upsert replaces the existing row.
	record.TotalXP = 400
	record.Level = 5
	record.CurrentChapter = 7
	if err := store.PutProgress(ctx, record); err != nil {
		t.Fatalf("update progress: %v", err)
	}
	got, err = store.GetProgress(ctx, "user-1")
	if err != nil {
		t.Fatalf("get updated progress: %v", err)
	}
	if got.TotalXP != 400 || got.Level != 5 || got.CurrentChapter != 7 {
		t.Fatalf("expected updated record, got %+v", got)
	}
}

func TestStoreSurvivesReopen(t *testing.T) {
	path := filepath.Join(t.TempDir(), "progression.db")
	ctx := context.Background()

	store, err := Open(path)
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	if err := store.AppendCompletion(ctx, testEvent("user-1", 1)); err != nil {
		t.Fatalf("append: %v", err)
	}
	if err := store.Close(); err != nil {
		t.Fatalf("close: %v", err)
	}

	reopened, err := Open(path)
	if err != nil {
		t.Fatalf("reopen store: %v", err)
	}
	defer func() { _ = reopened.Close() }()

	events, err := reopened.ListCompletions(ctx, "user-1")
	if err != nil {
		t.Fatalf("list after reopen: %v", err)
	}
	if len(events) != 1 {
		t.Fatalf("expected durable event, got %d", len(events))
	}
}
