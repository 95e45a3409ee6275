package api

import (
	"net/http"

	"github.com/phrazzld/chemlab-api/internal/api/shared"
	"github.com/phrazzld/chemlab-api/internal/session"
)

func (h *WorkspaceHandler) quiz(w http.ResponseWriter, r *http.Request) (*session.Quiz, bool) {
	ws, ok := h.workspace(w, r)
	if !ok {
		return nil, false
	}
	q, err := ws.Quiz()
	if err != nil {
		HandleAPIError(w, r, err, "")
		return nil, false
	}
	return q, true
}

func (h *WorkspaceHandler) respondQuiz(w http.ResponseWriter, r *http.Request, q *session.Quiz, accepted bool) {
	state, err := q.State()
	if err != nil {
		HandleAPIError(w, r, err, "")
		return
	}
	shared.RespondWithJSON(w, r, http.StatusOK, toQuizResponse(accepted, state))
}

// GetQuiz handles GET /api/quiz.
func (h *WorkspaceHandler) GetQuiz(w http.ResponseWriter, r *http.Request) {
	q, ok := h.quiz(w, r)
	if !ok {
		return
	}
	h.respondQuiz(w, r, q, true)
}

// SelectQuizTopic handles PUT /api/quiz/topic. The topic is used by later
// starts that do not name one.
func (h *WorkspaceHandler) SelectQuizTopic(w http.ResponseWriter, r *http.Request) {
	var req SelectQuizTopicRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}
	q, ok := h.quiz(w, r)
	if !ok {
		return
	}
	if err := q.SelectTopic(req.Topic); err != nil {
		HandleAPIError(w, r, err, "")
		return
	}
	h.respondQuiz(w, r, q, true)
}

// StartQuiz handles POST /api/quiz/start.
func (h *WorkspaceHandler) StartQuiz(w http.ResponseWriter, r *http.Request) {
	var req StartQuizRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}
	q, ok := h.quiz(w, r)
	if !ok {
		return
	}
	if err := q.StartQuiz(r.Context(), req.Topic); err != nil {
		HandleAPIError(w, r, err, "")
		return
	}
	h.respondQuiz(w, r, q, true)
}

// AnswerQuiz handles POST /api/quiz/answer. Answering outside the presented
// phase reports accepted=false.
func (h *WorkspaceHandler) AnswerQuiz(w http.ResponseWriter, r *http.Request) {
	var req AnswerQuizRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}
	q, ok := h.quiz(w, r)
	if !ok {
		return
	}
	accepted, err := q.Answer(r.Context(), *req.Index)
	if err != nil {
		HandleAPIError(w, r, err, "")
		return
	}
	h.respondQuiz(w, r, q, accepted)
}
