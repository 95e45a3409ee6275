package api

import (
	"net/http"

	"github.com/phrazzld/chemlab-api/internal/api/middleware"
	"github.com/phrazzld/chemlab-api/internal/api/shared"
	"github.com/phrazzld/chemlab-api/internal/domain"
	"github.com/phrazzld/chemlab-api/internal/service"
	"github.com/phrazzld/chemlab-api/internal/session"
)

// WorkspaceHandler drives the authenticated learner's workspace: the view
// router, the tutor, the molecule viewer, the lab and the quiz.
type WorkspaceHandler struct {
	learners service.LearnerService
}

// NewWorkspaceHandler creates a WorkspaceHandler.
func NewWorkspaceHandler(learners service.LearnerService) *WorkspaceHandler {
	return &WorkspaceHandler{learners: learners}
}

// workspace resolves the caller's workspace, writing the error response
// and reporting false when it cannot.
func (h *WorkspaceHandler) workspace(w http.ResponseWriter, r *http.Request) (*session.Workspace, bool) {
	learnerID, ok := middleware.GetLearnerID(r)
	if !ok {
		shared.RespondWithError(w, r, http.StatusUnauthorized, "Learner ID not found or invalid")
		return nil, false
	}
	ws, err := h.learners.Workspace(r.Context(), learnerID)
	if err != nil {
		HandleAPIError(w, r, err, "")
		return nil, false
	}
	return ws, true
}

// Dashboard handles GET /api/dashboard.
func (h *WorkspaceHandler) Dashboard(w http.ResponseWriter, r *http.Request) {
	ws, ok := h.workspace(w, r)
	if !ok {
		return
	}
	shared.RespondWithJSON(w, r, http.StatusOK, ws.Dashboard())
}

// GetView handles GET /api/view.
func (h *WorkspaceHandler) GetView(w http.ResponseWriter, r *http.Request) {
	ws, ok := h.workspace(w, r)
	if !ok {
		return
	}
	shared.RespondWithJSON(w, r, http.StatusOK, ViewResponse{View: ws.View()})
}

// SetView handles PUT /api/view.
func (h *WorkspaceHandler) SetView(w http.ResponseWriter, r *http.Request) {
	var req SetViewRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}
	view, err := domain.ParseView(req.View)
	if err != nil {
		HandleAPIError(w, r, err, "")
		return
	}

	ws, ok := h.workspace(w, r)
	if !ok {
		return
	}
	changed := ws.Navigate(r.Context(), view)
	shared.RespondWithJSON(w, r, http.StatusOK, ViewResponse{View: ws.View(), Changed: changed})
}
