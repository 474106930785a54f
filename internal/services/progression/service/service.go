// Package service implements the progression engine's two operations:
// reading a user's progress and completing a chapter.
package service

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"
	"time"

	apperrors "github.com/hawthornlabs/journey/internal/platform/errors"
	"github.com/hawthornlabs/journey/internal/services/progression/domain"
	"github.com/hawthornlabs/journey/internal/services/progression/projection"
	"github.com/hawthornlabs/journey/internal/services/progression/storage"
)

// Service is the sole mutating entry point for user progression.
type Service struct {
	catalog     domain.Catalog
	store       storage.Store
	clock       func() time.Time
	idGenerator func() (string, error)
	locks       *userLocks
}

// Progress bundles a snapshot with the gate-progress summary.
type Progress struct {
	Snapshot domain.Snapshot
	Gates    []domain.GateStatus
}

// New creates a progression service with default dependencies.
func New(catalog domain.Catalog, store storage.Store) *Service {
	return &Service{
		catalog:     catalog,
		store:       store,
		clock:       time.Now,
		idGenerator: domain.NewCompletionEventID,
		locks:       newUserLocks(),
	}
}

// GetProgress derives the current progress snapshot for a user.
//
// The snapshot is always recomputed from the ledger; the denormalized cache
// row is warmed on read-miss as a best-effort side effect.
func (s *Service) GetProgress(ctx context.Context, userID string) (Progress, error) {
	userID = strings.TrimSpace(userID)
	if userID == "" {
		return Progress{}, fmt.Errorf("user id is required")
	}
	if s == nil || s.store == nil {
		return Progress{}, fmt.Errorf("progression store is not configured")
	}

	snapshot, err := s.deriveSnapshot(ctx, userID)
	if err != nil {
		return Progress{}, err
	}

	if _, cacheErr := s.store.GetProgress(ctx, userID); errors.Is(cacheErr, storage.ErrNotFound) {
		s.writeProgressCache(ctx, snapshot)
	}

	return Progress{
		Snapshot: snapshot,
		Gates:    projection.GateProgress(s.catalog, snapshot),
	}, nil
}

// CompleteChapter records a chapter completion and returns the delta.
//
// The unlock precondition is the only hard gating rule. Re-submitting an
// already-completed chapter is not an error: it returns a zero-delta result
// and appends nothing. The per-user lock keeps read-validate-append from
// interleaving for one user; the ledger's uniqueness constraint backs it up.
func (s *Service) CompleteChapter(ctx context.Context, userID string, chapterNumber int) (domain.CompletionResult, error) {
	userID = strings.TrimSpace(userID)
	if userID == "" {
		return domain.CompletionResult{}, fmt.Errorf("user id is required")
	}
	if s == nil || s.store == nil {
		return domain.CompletionResult{}, fmt.Errorf("progression store is not configured")
	}

	chapter, ok := s.catalog.Chapter(chapterNumber)
	if !ok {
		return domain.CompletionResult{}, apperrors.WithMetadata(
			apperrors.CodeChapterUnknown,
			fmt.Sprintf("chapter %d does not exist", chapterNumber),
			map[string]string{"chapter": fmt.Sprintf("%d", chapterNumber)},
		)
	}

	unlock := s.locks.lock(userID)
	defer unlock()

	prior, err := s.deriveSnapshot(ctx, userID)
	if err != nil {
		return domain.CompletionResult{}, err
	}

	if !prior.Unlocked(chapterNumber) {
		logCompletionRejected(userID, chapterNumber)
		return domain.CompletionResult{}, apperrors.WithMetadata(
			apperrors.CodeChapterNotUnlocked,
			fmt.Sprintf("chapter %d is not unlocked", chapterNumber),
			map[string]string{"chapter": fmt.Sprintf("%d", chapterNumber)},
		)
	}

	if prior.Completed(chapterNumber) {
		return idempotentResult(prior), nil
	}

	event, err := domain.NewCompletionEvent(userID, chapterNumber, s.clock, s.idGenerator)
	if err != nil {
		return domain.CompletionResult{}, fmt.Errorf("build completion event: %w", err)
	}
	if err := s.store.AppendCompletion(ctx, event); err != nil {
		if errors.Is(err, storage.ErrDuplicateCompletion) {
			// A concurrent writer recorded the pair first; normalize to
			// the same zero-delta result a re-submission gets.
			current, deriveErr := s.deriveSnapshot(ctx, userID)
			if deriveErr != nil {
				return domain.CompletionResult{}, deriveErr
			}
			return idempotentResult(current), nil
		}
		return domain.CompletionResult{}, fmt.Errorf("append completion: %w", err)
	}

	next, err := s.deriveSnapshot(ctx, userID)
	if err != nil {
		return domain.CompletionResult{}, err
	}

	s.writeProgressCache(ctx, next)

	result := domain.CompletionResult{
		XPGained:      chapter.Reward(),
		LevelUp:       next.Level > prior.Level,
		NewLevel:      next.Level,
		NewlyUnlocked: unlockedDiff(prior, next),
		Snapshot:      next,
	}
	log.Printf(
		"chapter completed user_id=%s chapter=%d xp_gained=%d level=%d level_up=%t",
		userID, chapterNumber, result.XPGained, result.NewLevel, result.LevelUp,
	)
	return result, nil
}

func (s *Service) deriveSnapshot(ctx context.Context, userID string) (domain.Snapshot, error) {
	events, err := s.store.ListCompletions(ctx, userID)
	if err != nil {
		return domain.Snapshot{}, fmt.Errorf("list completions: %w", err)
	}
	snapshot, err := projection.Derive(s.catalog, userID, events)
	if err != nil {
		if apperrors.IsCode(err, apperrors.CodeLedgerIntegrity) {
			log.Printf("ledger integrity failure user_id=%s err=%v", userID, err)
		}
		return domain.Snapshot{}, err
	}
	return snapshot, nil
}

// writeProgressCache refreshes the denormalized row. Failures are logged and
// swallowed: the ledger is authoritative and the cache is re-derivable.
func (s *Service) writeProgressCache(ctx context.Context, snapshot domain.Snapshot) {
	currentChapter := 0
	if snapshot.NextChapter != nil {
		currentChapter = snapshot.NextChapter.Number
	}
	record := domain.ProgressRecord{
		UserID:         snapshot.UserID,
		TotalXP:        snapshot.TotalXP,
		Level:          snapshot.Level,
		CompletedCount: len(snapshot.CompletedChapters),
		CurrentChapter: currentChapter,
		UpdatedAt:      s.clock(),
	}
	if err := s.store.PutProgress(ctx, record); err != nil {
		log.Printf("progress cache write failed user_id=%s err=%v", snapshot.UserID, err)
	}
}

func idempotentResult(snapshot domain.Snapshot) domain.CompletionResult {
	return domain.CompletionResult{
		XPGained:      0,
		LevelUp:       false,
		NewLevel:      snapshot.Level,
		NewlyUnlocked: nil,
		Snapshot:      snapshot,
	}
}

func unlockedDiff(prior, next domain.Snapshot) []int {
	var diff []int
	for _, number := range next.UnlockedChapters {
		if !prior.Unlocked(number) {
			diff = append(diff, number)
		}
	}
	return diff
}

// logCompletionRejected emits a structured log for gated completion attempts.
func logCompletionRejected(userID string, chapterNumber int) {
	log.Printf("chapter completion rejected user_id=%s chapter=%d reason=not_unlocked", userID, chapterNumber)
}
