package service

import (
	"context"
	"fmt"
	"sync"

	"github.com/hawthornlabs/journey/internal/services/progression/domain"
	"github.com/hawthornlabs/journey/internal/services/progression/storage"
)

// fakeStore is an in-memory storage.Store used by service tests.
type fakeStore struct {
	mu       sync.Mutex
	events   []domain.CompletionEvent
	pairs    map[string]bool
	progress map[string]domain.ProgressRecord

	appendErr     error
	listErr       error
	putProgresses int
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		pairs:    make(map[string]bool),
		progress: make(map[string]domain.ProgressRecord),
	}
}

func pairKey(userID string, chapterNumber int) string {
	return fmt.Sprintf("%s/%d", userID, chapterNumber)
}

func (f *fakeStore) AppendCompletion(_ context.Context, event domain.CompletionEvent) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.appendErr != nil {
		return f.appendErr
	}
	key := pairKey(event.UserID, event.ChapterNumber)
	if f.pairs[key] {
		return storage.ErrDuplicateCompletion
	}
	f.pairs[key] = true
	f.events = append(f.events, event)
	return nil
}

func (f *fakeStore) ListCompletions(_ context.Context, userID string) ([]domain.CompletionEvent, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.listErr != nil {
		return nil, f.listErr
	}
	var out []domain.CompletionEvent
	for _, event := range f.events {
		if event.UserID == userID {
			out = append(out, event)
		}
	}
	return out, nil
}

func (f *fakeStore) PutProgress(_ context.Context, record domain.ProgressRecord) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.putProgresses++
	f.progress[record.UserID] = record
	return nil
}

func (f *fakeStore) GetProgress(_ context.Context, userID string) (domain.ProgressRecord, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	record, ok := f.progress[userID]
	if !ok {
		return domain.ProgressRecord{}, storage.ErrNotFound
	}
	return record, nil
}

// seed marks chapters as completed directly in the ledger.
func (f *fakeStore) seed(userID string, chapters ...int) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, number := range chapters {
		key := pairKey(userID, number)
		if f.pairs[key] {
			continue
		}
		f.pairs[key] = true
		f.events = append(f.events, domain.CompletionEvent{
			ID:            fmt.Sprintf("seed-%s-%d", userID, number),
			UserID:        userID,
			ChapterNumber: number,
		})
	}
}

func (f *fakeStore) eventCount(userID string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	count := 0
	for _, event := range f.events {
		if event.UserID == userID {
			count++
		}
	}
	return count
}
