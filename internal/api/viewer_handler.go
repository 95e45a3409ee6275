package api

import (
	"net/http"

	"github.com/phrazzld/chemlab-api/internal/api/shared"
	"github.com/phrazzld/chemlab-api/internal/session"
)

func (h *WorkspaceHandler) viewer(w http.ResponseWriter, r *http.Request) (*session.Viewer, bool) {
	ws, ok := h.workspace(w, r)
	if !ok {
		return nil, false
	}
	v, err := ws.Viewer()
	if err != nil {
		HandleAPIError(w, r, err, "")
		return nil, false
	}
	return v, true
}

func (h *WorkspaceHandler) respondViewer(w http.ResponseWriter, r *http.Request, v *session.Viewer, accepted bool) {
	state, err := v.State()
	if err != nil {
		HandleAPIError(w, r, err, "")
		return
	}
	shared.RespondWithJSON(w, r, http.StatusOK, ViewerResponse{Accepted: accepted, Viewer: state})
}

// GetViewer handles GET /api/viewer.
func (h *WorkspaceHandler) GetViewer(w http.ResponseWriter, r *http.Request) {
	v, ok := h.viewer(w, r)
	if !ok {
		return
	}
	h.respondViewer(w, r, v, true)
}

// SelectMolecule handles PUT /api/viewer/molecule.
func (h *WorkspaceHandler) SelectMolecule(w http.ResponseWriter, r *http.Request) {
	var req SelectMoleculeRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}
	v, ok := h.viewer(w, r)
	if !ok {
		return
	}
	if _, err := v.SelectMolecule(req.MoleculeID); err != nil {
		HandleAPIError(w, r, err, "")
		return
	}
	h.respondViewer(w, r, v, true)
}

// SetAR handles POST /api/viewer/ar.
func (h *WorkspaceHandler) SetAR(w http.ResponseWriter, r *http.Request) {
	var req SetARRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}
	v, ok := h.viewer(w, r)
	if !ok {
		return
	}
	accepted, err := v.SetAR(r.Context(), *req.Enabled)
	if err != nil {
		HandleAPIError(w, r, err, "")
		return
	}
	h.respondViewer(w, r, v, accepted)
}

// RetryCamera handles POST /api/viewer/camera/retry.
func (h *WorkspaceHandler) RetryCamera(w http.ResponseWriter, r *http.Request) {
	v, ok := h.viewer(w, r)
	if !ok {
		return
	}
	accepted, err := v.RetryCamera(r.Context())
	if err != nil {
		HandleAPIError(w, r, err, "")
		return
	}
	h.respondViewer(w, r, v, accepted)
}

// AskInsight handles POST /api/viewer/insight. The answer appears in the tutor.
func (h *WorkspaceHandler) AskInsight(w http.ResponseWriter, r *http.Request) {
	ws, ok := h.workspace(w, r)
	if !ok {
		return
	}
	v, err := ws.Viewer()
	if err != nil {
		HandleAPIError(w, r, err, "")
		return
	}
	if err := v.AskInsight(r.Context()); err != nil {
		HandleAPIError(w, r, err, "")
		return
	}
	shared.RespondWithJSON(w, r, http.StatusOK, TutorResponse{Accepted: true, Tutor: ws.Tutor().State()})
}
