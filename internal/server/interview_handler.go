package server

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-playground/validator/v10"

	"github.com/ratuser/inter-prep-GenAi/internal/interview"
	"github.com/ratuser/inter-prep-GenAi/internal/server/middleware"
	"github.com/ratuser/inter-prep-GenAi/internal/types"
)

// Client-facing messages of the interview endpoints
const (
	MsgNotReady     = "Please upload and analyse your resume first."
	MsgRateLimited  = "AI service is rate limited. Please wait a few seconds and try again."
	MsgGatewayError = "AI service error. Please try again."
	MsgNoProfile    = "No resume found."
	MsgSaved        = "Interview saved successfully."
	MsgSaveFailed   = "Failed to save interview results."
)

// maxChatBody bounds a chat request, transcript included.
const maxChatBody = 1 << 20

// InterviewHandler serves chat turns and interview completion.
type InterviewHandler struct {
	controller *interview.Controller
	recorder   *interview.Recorder
	profiles   ProfileSource
	validator  *validator.Validate
}

// NewInterviewHandler creates an InterviewHandler.
func NewInterviewHandler(controller *interview.Controller, recorder *interview.Recorder, profiles ProfileSource) *InterviewHandler {
	return &InterviewHandler{
		controller: controller,
		recorder:   recorder,
		profiles:   profiles,
		validator:  validator.New(),
	}
}

// Chat runs one interview turn. The transcript in the request is never
// modified, so a failed turn can be resent unchanged.
func (h *InterviewHandler) Chat(w http.ResponseWriter, r *http.Request) {
	userID, err := middleware.GetUserID(r)
	if err != nil {
		errorResponse(w, http.StatusUnauthorized, middleware.MsgInvalidToken)
		return
	}

	var req types.ChatRequest
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxChatBody)).Decode(&req); err != nil {
		errorResponse(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if err := h.validator.Struct(req); err != nil {
		errorResponse(w, http.StatusBadRequest, extractValidationErrors(err))
		return
	}

	profile, err := h.profiles.GetProfile(r.Context(), userID)
	if err != nil {
		slog.Error("failed to load profile", "user_id", userID, "error", err)
		errorResponse(w, http.StatusInternalServerError, MsgGatewayError)
		return
	}

	result, err := h.controller.HandleTurn(r.Context(), profile, req.ConversationHistory, req.Message)
	if err != nil {
		switch {
		case errors.Is(err, interview.ErrNotReady):
			errorResponse(w, http.StatusBadRequest, MsgNotReady)
		case errors.Is(err, interview.ErrRateLimited):
			errorResponse(w, http.StatusTooManyRequests, MsgRateLimited)
		default:
			errorResponse(w, http.StatusInternalServerError, MsgGatewayError)
		}
		return
	}

	jsonResponse(w, http.StatusOK, types.ChatResponse{
		Message:           result.Text,
		Role:              string(interview.RoleInterviewer),
		StageIndex:        result.Stage,
		InterviewComplete: result.Complete,
	})
}

// Complete scores the final feedback and records the interview.
func (h *InterviewHandler) Complete(w http.ResponseWriter, r *http.Request) {
	userID, err := middleware.GetUserID(r)
	if err != nil {
		errorResponse(w, http.StatusUnauthorized, middleware.MsgInvalidToken)
		return
	}

	var req types.CompleteRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		errorResponse(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if err := h.validator.Struct(req); err != nil {
		errorResponse(w, http.StatusBadRequest, extractValidationErrors(err))
		return
	}

	profile, err := h.profiles.GetProfile(r.Context(), userID)
	if err != nil {
		slog.Error("failed to load profile", "user_id", userID, "error", err)
		errorResponse(w, http.StatusInternalServerError, MsgSaveFailed)
		return
	}

	record, err := h.recorder.RecordCompletion(r.Context(), userID, profile, req.FeedbackMessage)
	if err != nil {
		if errors.Is(err, interview.ErrNoProfile) {
			errorResponse(w, http.StatusBadRequest, MsgNoProfile)
			return
		}
		slog.Error("failed to record interview", "user_id", userID, "error", err)
		errorResponse(w, http.StatusInternalServerError, MsgSaveFailed)
		return
	}

	jsonResponse(w, http.StatusOK, types.CompleteResponse{
		Message: MsgSaved,
		Interview: types.InterviewSummary{
			ID:       record.ID,
			Title:    record.Title,
			Score:    record.Score,
			Category: string(record.Category),
		},
	})
}
