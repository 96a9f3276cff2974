package model

import (
	"fmt"
	"time"
)

// FeedbackRecord is a user judgment about one past answer.
// Records are append-only and never mutated.
type FeedbackRecord struct {
	ID            int       `json:"id"`
	Query         string    `json:"query"`
	ExpandedQuery string    `json:"expanded_query"`
	AnswerText    string    `json:"answer_text"`
	Rating        int       `json:"rating"` // +1 or -1
	Comments      string    `json:"comments,omitempty"`
	CreatedAt     time.Time `json:"created_at"`
}

// Validate checks that the record is acceptable for storage.
func (f *FeedbackRecord) Validate() error {
	if f.Rating != 1 && f.Rating != -1 {
		return fmt.Errorf("rating must be +1 or -1, got %d", f.Rating)
	}
	if f.Query == "" {
		return fmt.Errorf("query must not be empty")
	}
	if f.AnswerText == "" {
		return fmt.Errorf("answer text must not be empty")
	}
	return nil
}
