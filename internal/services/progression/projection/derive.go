package projection

import (
	"fmt"
	"sort"

	apperrors "github.com/hawthornlabs/journey/internal/platform/errors"
	"github.com/hawthornlabs/journey/internal/services/progression/domain"
)

// CompletedSet returns the distinct chapter numbers present in the events.
func CompletedSet(events []domain.CompletionEvent) map[int]bool {
	completed := make(map[int]bool, len(events))
	for _, event := range events {
		completed[event.ChapterNumber] = true
	}
	return completed
}

// UnlockedSet derives the unlocked chapters from the completed set.
//
// Chapter 1 is unlocked unconditionally; chapter n (n>1) unlocks once
// chapter n-1 is completed. The ledger is append-only, so unlocking is
// monotonic by construction.
func UnlockedSet(catalog domain.Catalog, completed map[int]bool) map[int]bool {
	unlocked := make(map[int]bool, len(completed)+1)
	unlocked[1] = true
	for number := 2; number <= catalog.Len(); number++ {
		if completed[number-1] {
			unlocked[number] = true
		}
	}
	return unlocked
}

// TotalXP sums chapter rewards over the completed set.
// A chapter contributes XP exactly once regardless of raw event count.
func TotalXP(catalog domain.Catalog, completed map[int]bool) (int, error) {
	total := 0
	for number := range completed {
		chapter, ok := catalog.Chapter(number)
		if !ok {
			return 0, apperrors.WithMetadata(
				apperrors.CodeLedgerIntegrity,
				fmt.Sprintf("ledger references unknown chapter %d", number),
				map[string]string{"chapter": fmt.Sprintf("%d", number)},
			)
		}
		total += chapter.Reward()
	}
	return total, nil
}

// NextChapter returns the lowest unlocked-but-incomplete chapter, or nil
// when every catalog chapter is completed.
func NextChapter(catalog domain.Catalog, completed, unlocked map[int]bool) *domain.NextChapter {
	for number := 1; number <= catalog.Len(); number++ {
		if unlocked[number] && !completed[number] {
			chapter, _ := catalog.Chapter(number)
			return &domain.NextChapter{
				Number:    chapter.Number,
				Gate:      chapter.Gate,
				Milestone: chapter.Milestone,
			}
		}
	}
	return nil
}

// GroupProgress summarizes per-group completion counts in catalog order.
func GroupProgress(catalog domain.Catalog, completed map[int]bool) []domain.GroupProgress {
	byGroup := make(map[domain.Group]*domain.GroupProgress)
	var ordered []*domain.GroupProgress
	for _, chapter := range catalog.Chapters() {
		progress, ok := byGroup[chapter.Group]
		if !ok {
			progress = &domain.GroupProgress{Group: chapter.Group}
			byGroup[chapter.Group] = progress
			ordered = append(ordered, progress)
		}
		progress.Total++
		if completed[chapter.Number] {
			progress.Completed++
		}
	}
	out := make([]domain.GroupProgress, 0, len(ordered))
	for _, progress := range ordered {
		out = append(out, *progress)
	}
	return out
}

// GateProgress reports unlock/completion state for every gate chapter.
func GateProgress(catalog domain.Catalog, snapshot domain.Snapshot) []domain.GateStatus {
	var statuses []domain.GateStatus
	for _, gate := range catalog.Gates() {
		statuses = append(statuses, domain.GateStatus{
			ChapterNumber: gate.Number,
			Title:         gate.Title,
			Unlocked:      snapshot.Unlocked(gate.Number),
			Completed:     snapshot.Completed(gate.Number),
		})
	}
	return statuses
}

// Derive computes the full progress snapshot for a user from ledger events.
//
// Events referencing chapters outside the catalog make the ledger invalid;
// Derive fails with a LEDGER_INTEGRITY error rather than guessing.
func Derive(catalog domain.Catalog, userID string, events []domain.CompletionEvent) (domain.Snapshot, error) {
	completed := CompletedSet(events)

	totalXP, err := TotalXP(catalog, completed)
	if err != nil {
		return domain.Snapshot{}, err
	}

	unlocked := UnlockedSet(catalog, completed)
	level := domain.LevelForXP(totalXP)

	snapshot := domain.Snapshot{
		UserID:            userID,
		CompletedChapters: sortedChapters(completed),
		UnlockedChapters:  sortedChapters(unlocked),
		TotalXP:           totalXP,
		Level:             level,
		XPToNext:          domain.XPToNextLevel(level, totalXP),
		NextChapter:       NextChapter(catalog, completed, unlocked),
		Groups:            GroupProgress(catalog, completed),
	}
	return snapshot, nil
}

func sortedChapters(set map[int]bool) []int {
	out := make([]int, 0, len(set))
	for number := range set {
		out = append(out, number)
	}
	sort.Ints(out)
	return out
}
