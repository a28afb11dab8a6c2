package types

import (
	"time"

	"github.com/google/uuid"

	"github.com/ratuser/inter-prep-GenAi/internal/interview"
)

// ChatRequest is one candidate turn plus the transcript so far. The client
// echoes the full transcript on every call. Turn text has no length limit of
// its own; the handler bounds the body size instead.
type ChatRequest struct {
	Message             string           `json:"message"`
	ConversationHistory []interview.Turn `json:"conversationHistory" validate:"max=200"`
}

// ChatResponse carries the interviewer's reply.
type ChatResponse struct {
	Message           string `json:"message"`
	Role              string `json:"role"`
	StageIndex        int    `json:"stageIndex"`
	InterviewComplete bool   `json:"interviewComplete"`
}

// CompleteRequest submits the final feedback message for scoring.
type CompleteRequest struct {
	FeedbackMessage string `json:"feedbackMessage" validate:"max=20000"`
}

// InterviewSummary is the public view of a recorded interview.
type InterviewSummary struct {
	ID       uuid.UUID `json:"id"`
	Title    string    `json:"title"`
	Score    int       `json:"score"`
	Category string    `json:"category"`
}

// CompleteResponse acknowledges a recorded interview.
type CompleteResponse struct {
	Message   string           `json:"message"`
	Interview InterviewSummary `json:"interview"`
}

// ProfileRequest is written by the resume analyser.
type ProfileRequest struct {
	TargetRole    string   `json:"targetRole" validate:"max=200"`
	TargetCompany string   `json:"targetCompany" validate:"max=200"`
	Experience    string   `json:"experience" validate:"max=200"`
	InterviewType string   `json:"interviewType" validate:"required,oneof=technical non-technical"`
	Skills        []string `json:"skills" validate:"max=100,dive,max=100"`
	Status        string   `json:"status" validate:"required,oneof=uploaded analysing analysed"`
}

// ProfileResponse is the stored profile.
type ProfileResponse struct {
	TargetRole    string    `json:"targetRole"`
	TargetCompany string    `json:"targetCompany"`
	Experience    string    `json:"experience"`
	InterviewType string    `json:"interviewType"`
	Skills        []string  `json:"skills"`
	Status        string    `json:"status"`
	UpdatedAt     time.Time `json:"updatedAt"`
}

// HealthResponse reports liveness.
type HealthResponse struct {
	Status    string    `json:"status"`
	Timestamp time.Time `json:"timestamp"`
}

// ErrorResponse is the body of every non-2xx response.
type ErrorResponse struct {
	Message string `json:"message"`
}
