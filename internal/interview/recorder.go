package interview

import (
	"context"
	"fmt"
	"log/slog"
	"regexp"
	"strconv"
	"time"

	"github.com/google/uuid"
)

// DefaultScore is recorded when no rating can be found in the feedback.
const DefaultScore = 50

var scorePattern = regexp.MustCompile(`(?i)(\d+)\s*(?:/|out of)\s*10`)

// ExtractScore finds the first "N/10" or "N out of 10" rating in text and
// returns min(N*10, 100). Without a match it returns DefaultScore and false.
func ExtractScore(text string) (int, bool) {
	m := scorePattern.FindStringSubmatch(text)
	if m == nil {
		return DefaultScore, false
	}
	n, err := strconv.Atoi(m[1])
	if err != nil || n >= 10 {
		// Atoi only fails here on overflow.
		return 100, true
	}
	return n * 10, true
}

// InterviewStore persists completed interviews.
type InterviewStore interface {
	CreateInterview(ctx context.Context, interview *CompletedInterview) error
}

// Recorder turns final feedback into a stored CompletedInterview.
type Recorder struct {
	scripts  *Scripts
	store    InterviewStore
	observer Observer
	now      func() time.Time
	newID    func() uuid.UUID
}

// NewRecorder creates a Recorder. A nil observer is allowed.
func NewRecorder(scripts *Scripts, store InterviewStore, observer Observer) *Recorder {
	if observer == nil {
		observer = nopObserver{}
	}
	return &Recorder{
		scripts:  scripts,
		store:    store,
		observer: observer,
		now:      time.Now,
		newID:    uuid.New,
	}
}

// RecordCompletion scores the feedback and stores one record. It is not
// idempotent: every call creates a new record.
func (r *Recorder) RecordCompletion(ctx context.Context, userID uuid.UUID, profile *Profile, feedback string) (*CompletedInterview, error) {
	if profile == nil {
		return nil, ErrNoProfile
	}

	mode := ParseMode(string(profile.Mode))
	score, found := ExtractScore(feedback)

	record := &CompletedInterview{
		ID:            r.newID(),
		UserID:        userID,
		Title:         profile.Title(),
		Category:      CategoryForMode(mode),
		Score:         score,
		QuestionCount: r.scripts.Total(mode),
		CreatedAt:     r.now().UTC(),
	}

	if err := r.store.CreateInterview(ctx, record); err != nil {
		return nil, fmt.Errorf("failed to save interview: %w", err)
	}

	r.observer.InterviewRecorded(record.Category, record.Score, found)
	slog.Info("interview recorded",
		"user_id", userID,
		"interview_id", record.ID,
		"category", record.Category,
		"score", record.Score,
		"score_found", found,
	)
	return record, nil
}
