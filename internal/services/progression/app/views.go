package app

import (
	"github.com/hawthornlabs/journey/internal/services/progression/domain"
	"github.com/hawthornlabs/journey/internal/services/progression/service"
)

// nextChapterView is the JSON shape of the current-chapter pointer.
type nextChapterView struct {
	Number    int  `json:"number"`
	Gate      bool `json:"gate"`
	Milestone bool `json:"milestone"`
}

// groupProgressView is the JSON shape of one directional group summary.
type groupProgressView struct {
	Group     string `json:"group"`
	Completed int    `json:"completed"`
	Total     int    `json:"total"`
}

// gateStatusView is the JSON shape of one gate summary entry.
type gateStatusView struct {
	ChapterNumber int    `json:"chapter_number"`
	Title         string `json:"title"`
	Unlocked      bool   `json:"unlocked"`
	Completed     bool   `json:"completed"`
}

// snapshotView is the JSON shape of a progress snapshot.
type snapshotView struct {
	UserID            string              `json:"user_id"`
	CompletedChapters []int               `json:"completed_chapters"`
	UnlockedChapters  []int               `json:"unlocked_chapters"`
	TotalXP           int                 `json:"total_xp"`
	Level             int                 `json:"level"`
	XPToNext          int                 `json:"xp_to_next"`
	NextChapter       *nextChapterView    `json:"next_chapter,omitempty"`
	Groups            []groupProgressView `json:"groups"`
}

// progressView is the JSON response for progress reads.
type progressView struct {
	Snapshot snapshotView     `json:"snapshot"`
	Gates    []gateStatusView `json:"gates"`
}

// completionView is the JSON response for completion requests.
type completionView struct {
	XPGained      int          `json:"xp_gained"`
	LevelUp       bool         `json:"level_up"`
	NewLevel      int          `json:"new_level"`
	NewlyUnlocked []int        `json:"newly_unlocked"`
	Snapshot      snapshotView `json:"snapshot"`
}

// errorView is the JSON error envelope.
type errorView struct {
	Error errorBody `json:"error"`
}

type errorBody struct {
	Code     string            `json:"code"`
	Message  string            `json:"message"`
	Metadata map[string]string `json:"metadata,omitempty"`
}

func snapshotToView(snapshot domain.Snapshot) snapshotView {
	view := snapshotView{
		UserID:            snapshot.UserID,
		CompletedChapters: emptyIfNil(snapshot.CompletedChapters),
		UnlockedChapters:  emptyIfNil(snapshot.UnlockedChapters),
		TotalXP:           snapshot.TotalXP,
		Level:             snapshot.Level,
		XPToNext:          snapshot.XPToNext,
	}
	if snapshot.NextChapter != nil {
		view.NextChapter = &nextChapterView{
			Number:    snapshot.NextChapter.Number,
			Gate:      snapshot.NextChapter.Gate,
			Milestone: snapshot.NextChapter.Milestone,
		}
	}
	for _, group := range snapshot.Groups {
		view.Groups = append(view.Groups, groupProgressView{
			Group:     string(group.Group),
			Completed: group.Completed,
			Total:     group.Total,
		})
	}
	return view
}

func progressToView(progress service.Progress) progressView {
	view := progressView{Snapshot: snapshotToView(progress.Snapshot)}
	for _, gate := range progress.Gates {
		view.Gates = append(view.Gates, gateStatusView{
			ChapterNumber: gate.ChapterNumber,
			Title:         gate.Title,
			Unlocked:      gate.Unlocked,
			Completed:     gate.Completed,
		})
	}
	return view
}

func completionToView(result domain.CompletionResult) completionView {
	return completionView{
		XPGained:      result.XPGained,
		LevelUp:       result.LevelUp,
		NewLevel:      result.NewLevel,
		NewlyUnlocked: emptyIfNil(result.NewlyUnlocked),
		Snapshot:      snapshotToView(result.Snapshot),
	}
}

func emptyIfNil(values []int) []int {
	if values == nil {
		return []int{}
	}
	return values
}
