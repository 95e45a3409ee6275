package api

import (
	"net/http"

	"github.com/phrazzld/chemlab-api/internal/api/shared"
)

// GetTutor handles GET /api/tutor.
func (h *WorkspaceHandler) GetTutor(w http.ResponseWriter, r *http.Request) {
	ws, ok := h.workspace(w, r)
	if !ok {
		return
	}
	shared.RespondWithJSON(w, r, http.StatusOK, TutorResponse{Accepted: true, Tutor: ws.Tutor().State()})
}

// AskTutor handles POST /api/tutor/ask.
func (h *WorkspaceHandler) AskTutor(w http.ResponseWriter, r *http.Request) {
	var req AskTutorRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}
	ws, ok := h.workspace(w, r)
	if !ok {
		return
	}

	tutor := ws.Tutor()
	if err := tutor.Ask(r.Context(), req.Topic, req.Context); err != nil {
		HandleAPIError(w, r, err, "")
		return
	}
	shared.RespondWithJSON(w, r, http.StatusOK, TutorResponse{Accepted: true, Tutor: tutor.State()})
}

// CloseTutor handles POST /api/tutor/close.
func (h *WorkspaceHandler) CloseTutor(w http.ResponseWriter, r *http.Request) {
	ws, ok := h.workspace(w, r)
	if !ok {
		return
	}
	tutor := ws.Tutor()
	tutor.Close()
	shared.RespondWithJSON(w, r, http.StatusOK, TutorResponse{Accepted: true, Tutor: tutor.State()})
}
