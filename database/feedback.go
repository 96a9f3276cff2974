package database

import (
	"errors"
	"fmt"

	"github.com/isaacchin12/c8-techJam/helper"
	"github.com/isaacchin12/c8-techJam/model"
	loadSql "github.com/isaacchin12/c8-techJam/sql"
)

// ErrStoreUnavailable is returned when the feedback store cannot be reached.
// It is non-fatal: callers discard the feedback and continue.
var ErrStoreUnavailable = errors.New("feedback store unavailable")

// FeedbackDBHandlerFunctions defines the interface for feedback store operations.
type FeedbackDBHandlerFunctions interface {
	InsertFeedback(record *model.FeedbackRecord) error
	SelectFeedbackMatching(passageText string) ([]*model.FeedbackRecord, error)
	CountFeedback() (int64, error)
}

// FeedbackDBHandler handles the append-only feedback log
type FeedbackDBHandler struct {
	db *helper.Database
}

// NewFeedbackDBHandler creates a new feedback database handler.
// If force is true, it will reload the SQL functions even if they already exist.
func NewFeedbackDBHandler(db *helper.Database, force bool) (*FeedbackDBHandler, error) {
	if db == nil {
		return nil, helper.NewError("database connection validation", fmt.Errorf("database connection is nil"))
	}

	feedbackDbHandler := &FeedbackDBHandler{
		db: db,
	}

	err := loadSql.LoadFeedbackSql(feedbackDbHandler.db.Instance, force)
	if err != nil {
		return nil, helper.NewError("load feedback sql", err)
	}

	err = feedbackDbHandler.CreateTable()
	if err != nil {
		return nil, helper.NewError("create table", err)
	}

	db.Logger.Info("Initialized FeedbackDBHandler")

	return feedbackDbHandler, nil
}

// CreateTable creates the 'feedback' table in the database.
func (h *FeedbackDBHandler) CreateTable() error {
	_, err := h.db.Instance.Exec(`SELECT init_feedback();`)
	if err != nil {
		return helper.NewError("initialize feedback table", err)
	}

	h.db.Logger.Info("Checked/created table feedback")

	return nil
}

// InsertFeedback appends a new feedback record. Records are never updated
// or deleted. A failure to reach the store surfaces as ErrStoreUnavailable.
func (h *FeedbackDBHandler) InsertFeedback(record *model.FeedbackRecord) error {
	if err := record.Validate(); err != nil {
		return helper.NewError("validate feedback", err)
	}

	row := h.db.Instance.QueryRow(
		`SELECT * FROM insert_feedback($1, $2, $3, $4, $5)`,
		record.Query,
		record.ExpandedQuery,
		record.AnswerText,
		record.Rating,
		record.Comments,
	)

	err := row.Scan(
		&record.ID,
		&record.Query,
		&record.ExpandedQuery,
		&record.AnswerText,
		&record.Rating,
		&record.Comments,
		&record.CreatedAt,
	)
	if err != nil {
		return helper.NewError("insert feedback", fmt.Errorf("%w: %v", ErrStoreUnavailable, err))
	}

	return nil
}

// SelectFeedbackMatching returns all records whose answer text contains the
// given passage text, oldest first.
func (h *FeedbackDBHandler) SelectFeedbackMatching(passageText string) ([]*model.FeedbackRecord, error) {
	rows, err := h.db.Instance.Query(
		`SELECT * FROM select_feedback_matching($1)`,
		passageText,
	)
	if err != nil {
		return nil, helper.NewError("query", fmt.Errorf("%w: %v", ErrStoreUnavailable, err))
	}
	defer rows.Close()

	var records []*model.FeedbackRecord
	for rows.Next() {
		record := &model.FeedbackRecord{}
		err := rows.Scan(
			&record.ID,
			&record.Query,
			&record.ExpandedQuery,
			&record.AnswerText,
			&record.Rating,
			&record.Comments,
			&record.CreatedAt,
		)
		if err != nil {
			return nil, helper.NewError("scan", err)
		}

		records = append(records, record)
	}

	err = rows.Err()
	if err != nil {
		return nil, helper.NewError("rows error", err)
	}

	return records, nil
}

// CountFeedback returns the number of stored feedback records
func (h *FeedbackDBHandler) CountFeedback() (int64, error) {
	var count int64
	err := h.db.Instance.QueryRow(`SELECT count_feedback()`).Scan(&count)
	if err != nil {
		return 0, helper.NewError("count feedback", err)
	}
	return count, nil
}

// Feedback weight bounds for RatingWeight. The baseline for passages with
// no recorded feedback is 1.0; each matching record shifts the weight by
// ratingStep, clamped to [minWeight, maxWeight].
const (
	ratingStep = 0.25
	minWeight  = 0.0
	maxWeight  = 2.0
)

// RatingWeight aggregates prior ratings for answers that cited the given
// passage text into a finite non-negative weight. Unknown passages get the
// 1.0 baseline; positively rated ones rise above it, negatively rated ones
// fall below. Store errors fall back to the baseline so ranking never
// depends on feedback availability.
func (h *FeedbackDBHandler) RatingWeight(passageText string) float64 {
	records, err := h.SelectFeedbackMatching(passageText)
	if err != nil {
		h.db.Logger.Warn("Feedback lookup failed, using baseline weight", "error", err)
		return 1.0
	}

	weight := 1.0
	for _, record := range records {
		weight += ratingStep * float64(record.Rating)
	}

	if weight < minWeight {
		return minWeight
	}
	if weight > maxWeight {
		return maxWeight
	}
	return weight
}
