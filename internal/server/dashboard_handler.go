package server

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/ratuser/inter-prep-GenAi/internal/dashboard"
	"github.com/ratuser/inter-prep-GenAi/internal/server/middleware"
)

// DashboardHandler serves the aggregated interview history.
type DashboardHandler struct {
	repo InterviewRepository
	now  func() time.Time
}

// NewDashboardHandler creates a DashboardHandler.
func NewDashboardHandler(repo InterviewRepository) *DashboardHandler {
	return &DashboardHandler{repo: repo, now: time.Now}
}

// Stats returns headline stats, per-category progress and recent activity.
func (h *DashboardHandler) Stats(w http.ResponseWriter, r *http.Request) {
	userID, err := middleware.GetUserID(r)
	if err != nil {
		errorResponse(w, http.StatusUnauthorized, middleware.MsgInvalidToken)
		return
	}

	rows, err := h.repo.ListInterviewsByUser(r.Context(), userID)
	if err != nil {
		slog.Error("failed to list interviews", "user_id", userID, "error", err)
		errorResponse(w, http.StatusInternalServerError, "Server error fetching dashboard stats")
		return
	}

	jsonResponse(w, http.StatusOK, dashboard.Build(convertDBInterviews(rows), h.now()))
}
