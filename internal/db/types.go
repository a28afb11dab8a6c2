package db

import (
	"time"

	"github.com/google/uuid"
)

// User represents an account
type User struct {
	ID           uuid.UUID `json:"id"`
	Name         string    `json:"name"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"-" db:"password_hash"` // Never serialize to JSON
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// Profile is the resume-derived interview profile of a user. It is written by
// the resume analyser and read by the interview controller.
type Profile struct {
	UserID        uuid.UUID `json:"user_id"`
	TargetRole    string    `json:"target_role"`
	TargetCompany string    `json:"target_company"`
	Experience    string    `json:"experience"`
	InterviewType string    `json:"interview_type"` // technical, non-technical
	Skills        []string  `json:"skills"`
	Status        string    `json:"status"` // uploaded, analysing, analysed
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
}

// Interview is a completed interview record
type Interview struct {
	ID            uuid.UUID `json:"id"`
	UserID        uuid.UUID `json:"user_id"`
	Title         string    `json:"title"`
	Category      string    `json:"category"`
	Score         int       `json:"score"`
	QuestionCount int       `json:"question_count"`
	CreatedAt     time.Time `json:"created_at"`
}

// nullTime maps the zero time to SQL NULL.
func nullTime(t time.Time) *time.Time {
	if t.IsZero() {
		return nil
	}
	return &t
}
