package domain

import "time"

// NextChapter points at the lowest unlocked-but-incomplete chapter.
type NextChapter struct {
	// Number is the chapter number.
	Number int
	// Gate reports whether the chapter is a gate.
	Gate bool
	// Milestone reports whether the chapter is a milestone.
	Milestone bool
}

// GroupProgress summarizes completion within one directional group.
type GroupProgress struct {
	// Group is the directional group.
	Group Group
	// Completed is the number of completed chapters in the group.
	Completed int
	// Total is the number of chapters in the group.
	Total int
}

// GateStatus reports unlock/completion state for one gate chapter.
type GateStatus struct {
	// ChapterNumber is the gate chapter.
	ChapterNumber int
	// Title is the gate chapter title.
	Title string
	// Unlocked reports whether the gate is reachable.
	Unlocked bool
	// Completed reports whether the gate has been completed.
	Completed bool
}

// Snapshot is the fully-derived progress state for one user.
//
// Snapshots are recomputed from the completion ledger on every read; they are
// never the source of truth. Chapter sets are sorted ascending.
type Snapshot struct {
	// UserID is the user the snapshot belongs to.
	UserID string
	// CompletedChapters is the sorted set of completed chapter numbers.
	CompletedChapters []int
	// UnlockedChapters is the sorted set of unlocked chapter numbers.
	// Chapter 1 is always present.
	UnlockedChapters []int
	// TotalXP is the accumulated experience across distinct completions.
	TotalXP int
	// Level is derived from TotalXP via LevelForXP.
	Level int
	// XPToNext is the XP missing to reach the next level.
	XPToNext int
	// NextChapter is the current-chapter pointer, nil once all chapters
	// are completed.
	NextChapter *NextChapter
	// Groups summarizes per-group completion in catalog order.
	Groups []GroupProgress
}

// Completed reports whether the snapshot contains a completed chapter.
func (s Snapshot) Completed(chapterNumber int) bool {
	return containsChapter(s.CompletedChapters, chapterNumber)
}

// Unlocked reports whether the snapshot contains an unlocked chapter.
func (s Snapshot) Unlocked(chapterNumber int) bool {
	return containsChapter(s.UnlockedChapters, chapterNumber)
}

func containsChapter(sorted []int, chapterNumber int) bool {
	for _, number := range sorted {
		if number == chapterNumber {
			return true
		}
		if number > chapterNumber {
			return false
		}
	}
	return false
}

// CompletionResult is the user-visible delta of a completion action.
type CompletionResult struct {
	// XPGained is the reward for this call: the full chapter reward on
	// first completion, zero on idempotent re-submission.
	XPGained int
	// LevelUp reports whether the completion crossed a level boundary.
	LevelUp bool
	// NewLevel is the level after the completion.
	NewLevel int
	// NewlyUnlocked lists chapters unlocked by this completion.
	NewlyUnlocked []int
	// Snapshot is the progress state after the completion.
	Snapshot Snapshot
}

// ProgressRecord is the denormalized per-user progress row kept for cheap
// reads. It is always re-derivable from the completion ledger; the ledger is
// authoritative.
type ProgressRecord struct {
	UserID         string
	TotalXP        int
	Level          int
	CompletedCount int
	CurrentChapter int
	UpdatedAt      time.Time
}
