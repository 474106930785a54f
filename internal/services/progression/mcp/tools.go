package mcp

import (
	"context"
	"fmt"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/hawthornlabs/journey/internal/services/progression/domain"
	"github.com/hawthornlabs/journey/internal/services/progression/service"
)

// ProgressGetInput represents the MCP tool input for reading progress.
type ProgressGetInput struct {
	UserID string `json:"user_id" jsonschema:"user identifier"`
}

// ChapterView represents a chapter pointer in MCP tool output.
type ChapterView struct {
	Number    int  `json:"number" jsonschema:"chapter number"`
	Gate      bool `json:"gate" jsonschema:"whether the chapter is a gate"`
	Milestone bool `json:"milestone" jsonschema:"whether the chapter is a milestone"`
}

// GroupView represents a group summary entry in MCP tool output.
type GroupView struct {
	Group     string `json:"group" jsonschema:"directional group name"`
	Completed int    `json:"completed" jsonschema:"completed chapters in the group"`
	Total     int    `json:"total" jsonschema:"total chapters in the group"`
}

// GateView represents a gate summary entry in MCP tool output.
type GateView struct {
	ChapterNumber int    `json:"chapter_number" jsonschema:"gate chapter number"`
	Title         string `json:"title" jsonschema:"gate chapter title"`
	Unlocked      bool   `json:"unlocked" jsonschema:"whether the gate chapter is unlocked"`
	Completed     bool   `json:"completed" jsonschema:"whether the gate chapter is completed"`
}

// ProgressGetResult represents the MCP tool output for reading progress.
type ProgressGetResult struct {
	UserID            string       `json:"user_id" jsonschema:"user identifier"`
	TotalXP           int          `json:"total_xp" jsonschema:"total experience points"`
	Level             int          `json:"level" jsonschema:"current level"`
	XPToNext          int          `json:"xp_to_next" jsonschema:"experience points remaining to the next level"`
	CompletedChapters []int        `json:"completed_chapters" jsonschema:"completed chapter numbers in ascending order"`
	UnlockedChapters  []int        `json:"unlocked_chapters" jsonschema:"unlocked chapter numbers in ascending order"`
	NextChapter       *ChapterView `json:"next_chapter,omitempty" jsonschema:"lowest unlocked incomplete chapter"`
	Groups            []GroupView  `json:"groups" jsonschema:"per-group completion summary"`
	Gates             []GateView   `json:"gates" jsonschema:"gate chapter summary"`
}

// ChapterCompleteInput represents the MCP tool input for completing a chapter.
type ChapterCompleteInput struct {
	UserID  string `json:"user_id" jsonschema:"user identifier"`
	Chapter int    `json:"chapter" jsonschema:"chapter number to complete"`
}

// ChapterCompleteResult represents the MCP tool output for completing a chapter.
type ChapterCompleteResult struct {
	XPGained      int   `json:"xp_gained" jsonschema:"experience points awarded (0 when already completed)"`
	LevelUp       bool  `json:"level_up" jsonschema:"whether the completion crossed a level boundary"`
	NewLevel      int   `json:"new_level" jsonschema:"level after the completion"`
	NewlyUnlocked []int `json:"newly_unlocked" jsonschema:"chapter numbers unlocked by this completion"`
	TotalXP       int   `json:"total_xp" jsonschema:"total experience points after the completion"`
}

// ProgressGetTool defines the MCP tool schema for reading progress.
func ProgressGetTool() *mcp.Tool {
	return &mcp.Tool{
		Name:        "progress_get",
		Description: "Reads a user's chapter progress, XP, level and gate summary",
	}
}

// ChapterCompleteTool defines the MCP tool schema for completing a chapter.
func ChapterCompleteTool() *mcp.Tool {
	return &mcp.Tool{
		Name:        "chapter_complete",
		Description: "Records a chapter completion and returns the XP and unlock delta",
	}
}

// ProgressGetHandler reads a user's progress through the progression service.
func ProgressGetHandler(svc *service.Service) mcp.ToolHandlerFor[ProgressGetInput, ProgressGetResult] {
	return func(ctx context.Context, _ *mcp.CallToolRequest, input ProgressGetInput) (*mcp.CallToolResult, ProgressGetResult, error) {
		progress, err := svc.GetProgress(ctx, input.UserID)
		if err != nil {
			return nil, ProgressGetResult{}, fmt.Errorf("get progress failed: %w", err)
		}

		result := ProgressGetResult{
			UserID:            progress.Snapshot.UserID,
			TotalXP:           progress.Snapshot.TotalXP,
			Level:             progress.Snapshot.Level,
			XPToNext:          progress.Snapshot.XPToNext,
			CompletedChapters: progress.Snapshot.CompletedChapters,
			UnlockedChapters:  progress.Snapshot.UnlockedChapters,
		}
		if progress.Snapshot.NextChapter != nil {
			next := chapterToView(*progress.Snapshot.NextChapter)
			result.NextChapter = &next
		}
		for _, group := range progress.Snapshot.Groups {
			result.Groups = append(result.Groups, GroupView{
				Group:     string(group.Group),
				Completed: group.Completed,
				Total:     group.Total,
			})
		}
		for _, gate := range progress.Gates {
			result.Gates = append(result.Gates, GateView{
				ChapterNumber: gate.ChapterNumber,
				Title:         gate.Title,
				Unlocked:      gate.Unlocked,
				Completed:     gate.Completed,
			})
		}
		return nil, result, nil
	}
}

// ChapterCompleteHandler records a chapter completion through the
// progression service.
func ChapterCompleteHandler(svc *service.Service) mcp.ToolHandlerFor[ChapterCompleteInput, ChapterCompleteResult] {
	return func(ctx context.Context, _ *mcp.CallToolRequest, input ChapterCompleteInput) (*mcp.CallToolResult, ChapterCompleteResult, error) {
		completion, err := svc.CompleteChapter(ctx, input.UserID, input.Chapter)
		if err != nil {
			return nil, ChapterCompleteResult{}, fmt.Errorf("chapter complete failed: %w", err)
		}
		return nil, ChapterCompleteResult{
			XPGained:      completion.XPGained,
			LevelUp:       completion.LevelUp,
			NewLevel:      completion.NewLevel,
			NewlyUnlocked: completion.NewlyUnlocked,
			TotalXP:       completion.Snapshot.TotalXP,
		}, nil
	}
}

func chapterToView(next domain.NextChapter) ChapterView {
	return ChapterView{
		Number:    next.Number,
		Gate:      next.Gate,
		Milestone: next.Milestone,
	}
}
