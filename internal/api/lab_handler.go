package api

import (
	"net/http"

	"github.com/phrazzld/chemlab-api/internal/api/shared"
	"github.com/phrazzld/chemlab-api/internal/domain"
	"github.com/phrazzld/chemlab-api/internal/session"
)

func (h *WorkspaceHandler) lab(w http.ResponseWriter, r *http.Request) (*session.Lab, bool) {
	ws, ok := h.workspace(w, r)
	if !ok {
		return nil, false
	}
	l, err := ws.Lab()
	if err != nil {
		HandleAPIError(w, r, err, "")
		return nil, false
	}
	return l, true
}

func (h *WorkspaceHandler) respondLab(w http.ResponseWriter, r *http.Request, l *session.Lab, accepted bool) {
	state, err := l.State()
	if err != nil {
		HandleAPIError(w, r, err, "")
		return
	}
	shared.RespondWithJSON(w, r, http.StatusOK, LabResponse{Accepted: accepted, Lab: state})
}

// GetLab handles GET /api/lab.
func (h *WorkspaceHandler) GetLab(w http.ResponseWriter, r *http.Request) {
	l, ok := h.lab(w, r)
	if !ok {
		return
	}
	h.respondLab(w, r, l, true)
}

// AddLabItem handles POST /api/lab/items.
func (h *WorkspaceHandler) AddLabItem(w http.ResponseWriter, r *http.Request) {
	var req AddItemRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}
	l, ok := h.lab(w, r)
	if !ok {
		return
	}
	item, err := l.AddItem(domain.ItemKind(req.Kind), req.CatalogID)
	if err != nil {
		HandleAPIError(w, r, err, "")
		return
	}
	state, err := l.State()
	if err != nil {
		HandleAPIError(w, r, err, "")
		return
	}
	shared.RespondWithJSON(w, r, http.StatusCreated, AddItemResponse{Item: item, Lab: state})
}

// RemoveLabItem handles DELETE /api/lab/items/{instanceID}.
func (h *WorkspaceHandler) RemoveLabItem(w http.ResponseWriter, r *http.Request) {
	instanceID, err := getPathUUID(r, "instanceID")
	if err != nil {
		HandleAPIError(w, r, err, "")
		return
	}
	l, ok := h.lab(w, r)
	if !ok {
		return
	}
	if err := l.RemoveItem(instanceID); err != nil {
		HandleAPIError(w, r, err, "")
		return
	}
	h.respondLab(w, r, l, true)
}

// ClearLab handles POST /api/lab/clear.
func (h *WorkspaceHandler) ClearLab(w http.ResponseWriter, r *http.Request) {
	l, ok := h.lab(w, r)
	if !ok {
		return
	}
	if err := l.Clear(); err != nil {
		HandleAPIError(w, r, err, "")
		return
	}
	h.respondLab(w, r, l, true)
}

// SimulateReaction handles POST /api/lab/react. A rejected request (fewer
// than two items, or a reaction already running) reports accepted=false.
// The reaction bonus is not awarded when the result mentions "no reaction"
// in any letter case, so "No reaction occurs" earns no XP.
func (h *WorkspaceHandler) SimulateReaction(w http.ResponseWriter, r *http.Request) {
	l, ok := h.lab(w, r)
	if !ok {
		return
	}
	accepted, err := l.SimulateReaction(r.Context())
	if err != nil {
		HandleAPIError(w, r, err, "")
		return
	}
	h.respondLab(w, r, l, accepted)
}

// DismissLabResult handles POST /api/lab/result/dismiss. The bench is kept.
// With no result to dismiss it reports accepted=false.
func (h *WorkspaceHandler) DismissLabResult(w http.ResponseWriter, r *http.Request) {
	l, ok := h.lab(w, r)
	if !ok {
		return
	}
	accepted, err := l.DismissResult()
	if err != nil {
		HandleAPIError(w, r, err, "")
		return
	}
	h.respondLab(w, r, l, accepted)
}

// AskLabWhy handles POST /api/lab/result/ask. The explanation appears in the
// tutor; with no result to ask about it reports accepted=false.
func (h *WorkspaceHandler) AskLabWhy(w http.ResponseWriter, r *http.Request) {
	ws, ok := h.workspace(w, r)
	if !ok {
		return
	}
	l, err := ws.Lab()
	if err != nil {
		HandleAPIError(w, r, err, "")
		return
	}
	accepted, err := l.AskWhy(r.Context())
	if err != nil {
		HandleAPIError(w, r, err, "")
		return
	}
	shared.RespondWithJSON(w, r, http.StatusOK, TutorResponse{Accepted: accepted, Tutor: ws.Tutor().State()})
}
