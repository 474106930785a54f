// Package storage defines persistence contracts for the progression service.
package storage

import (
	"context"
	"errors"

	"github.com/hawthornlabs/journey/internal/services/progression/domain"
)

// ErrNotFound indicates a requested record is missing.
var ErrNotFound = errors.New("record not found")

// ErrDuplicateCompletion indicates a completion already exists for the
// (user, chapter) pair. The ledger's uniqueness constraint guarantees at
// most one event per pair; callers normalize this into an idempotent no-op.
var ErrDuplicateCompletion = errors.New("completion already recorded")

// CompletionLedger persists the append-only completion event history.
type CompletionLedger interface {
	// AppendCompletion appends one completion event. It returns
	// ErrDuplicateCompletion when the (user, chapter) pair already exists.
	AppendCompletion(ctx context.Context, event domain.CompletionEvent) error
	// ListCompletions returns all completion events for a user.
	ListCompletions(ctx context.Context, userID string) ([]domain.CompletionEvent, error)
}

// ProgressCache persists the denormalized per-user progress row.
// The cache is advisory: it is rewritten after every append and always
// re-derivable from the ledger.
type ProgressCache interface {
	PutProgress(ctx context.Context, record domain.ProgressRecord) error
	GetProgress(ctx context.Context, userID string) (domain.ProgressRecord, error)
}

// Store combines the persistence contracts the service depends on.
type Store interface {
	CompletionLedger
	ProgressCache
}
