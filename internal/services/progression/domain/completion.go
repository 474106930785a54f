package domain

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

// CompletionEvent records that a user completed a chapter.
// Events are immutable once appended to the ledger.
type CompletionEvent struct {
	// ID uniquely identifies the event.
	ID string
	// UserID is the user the completion belongs to.
	UserID string
	// ChapterNumber is the completed chapter.
	ChapterNumber int
	// Timestamp is when the completion was recorded. It never influences
	// derived state; all derivation is set-based.
	Timestamp time.Time
}

// NewCompletionEventID generates a completion event identifier.
func NewCompletionEventID() (string, error) {
	id, err := uuid.NewRandom()
	if err != nil {
		return "", fmt.Errorf("generate completion event id: %w", err)
	}
	return id.String(), nil
}

// NewCompletionEvent builds a completion event for a user and chapter.
func NewCompletionEvent(userID string, chapterNumber int, clock func() time.Time, idGenerator func() (string, error)) (CompletionEvent, error) {
	userID = strings.TrimSpace(userID)
	if userID == "" {
		return CompletionEvent{}, fmt.Errorf("user id is required")
	}
	if chapterNumber < 1 {
		return CompletionEvent{}, fmt.Errorf("chapter number must be positive")
	}
	if clock == nil {
		clock = time.Now
	}
	if idGenerator == nil {
		idGenerator = NewCompletionEventID
	}
	id, err := idGenerator()
	if err != nil {
		return CompletionEvent{}, err
	}
	return CompletionEvent{
		ID:            id,
		UserID:        userID,
		ChapterNumber: chapterNumber,
		Timestamp:     clock().UTC(),
	}, nil
}
