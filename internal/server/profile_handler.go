package server

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/ratuser/inter-prep-GenAi/internal/db"
	"github.com/ratuser/inter-prep-GenAi/internal/server/middleware"
	"github.com/ratuser/inter-prep-GenAi/internal/types"
)

// ProfileHandler exposes the profile written by the resume analyser.
type ProfileHandler struct {
	store       ProfileStore
	invalidator ProfileInvalidator
	validator   *validator.Validate
}

// NewProfileHandler creates a ProfileHandler. invalidator may be nil when no
// cache is configured.
func NewProfileHandler(store ProfileStore, invalidator ProfileInvalidator) *ProfileHandler {
	return &ProfileHandler{
		store:       store,
		invalidator: invalidator,
		validator:   validator.New(),
	}
}

// Get returns the caller's profile.
func (h *ProfileHandler) Get(w http.ResponseWriter, r *http.Request) {
	userID, err := middleware.GetUserID(r)
	if err != nil {
		errorResponse(w, http.StatusUnauthorized, middleware.MsgInvalidToken)
		return
	}

	p, err := h.store.GetProfile(r.Context(), userID)
	if err != nil {
		slog.Error("failed to get profile", "user_id", userID, "error", err)
		errorResponse(w, http.StatusInternalServerError, "Server error")
		return
	}
	if p == nil {
		errorResponse(w, http.StatusNotFound, MsgNoProfile)
		return
	}

	jsonResponse(w, http.StatusOK, convertDBProfileToResponse(p))
}

// Put replaces the caller's profile (last write wins).
func (h *ProfileHandler) Put(w http.ResponseWriter, r *http.Request) {
	userID, err := middleware.GetUserID(r)
	if err != nil {
		errorResponse(w, http.StatusUnauthorized, middleware.MsgInvalidToken)
		return
	}

	var req types.ProfileRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		errorResponse(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if err := h.validator.Struct(req); err != nil {
		errorResponse(w, http.StatusBadRequest, extractValidationErrors(err))
		return
	}

	p := &db.Profile{
		UserID:        userID,
		TargetRole:    strings.TrimSpace(req.TargetRole),
		TargetCompany: strings.TrimSpace(req.TargetCompany),
		Experience:    strings.TrimSpace(req.Experience),
		InterviewType: req.InterviewType,
		Skills:        req.Skills,
		Status:        req.Status,
	}
	if err := h.store.UpsertProfile(r.Context(), p); err != nil {
		slog.Error("failed to save profile", "user_id", userID, "error", err)
		errorResponse(w, http.StatusInternalServerError, "Server error")
		return
	}

	if h.invalidator != nil {
		if err := h.invalidator.Invalidate(r.Context(), userID); err != nil {
			slog.Warn("failed to invalidate cached profile", "user_id", userID, "error", err)
		}
	}

	jsonResponse(w, http.StatusOK, convertDBProfileToResponse(p))
}
