package api

import (
	"time"

	"github.com/google/uuid"
	"github.com/phrazzld/chemlab-api/internal/domain"
	"github.com/phrazzld/chemlab-api/internal/session"
	"github.com/phrazzld/chemlab-api/internal/store"
)

// RegisterResponse is returned when a learner is created.
type RegisterResponse struct {
	LearnerID uuid.UUID `json:"learner_id"`
	Token     string    `json:"token"`
	ExpiresAt string    `json:"expires_at"`
}

// ProgressResponse reports a learner's progress and its saved history.
type ProgressResponse struct {
	XP          int                `json:"xp"`
	Level       int                `json:"level"`
	NextLevelAt int                `json:"next_level_at"`
	History     []SnapshotResponse `json:"history"`
}

// SnapshotResponse is one saved progress value.
type SnapshotResponse struct {
	XP      int       `json:"xp"`
	Level   int       `json:"level"`
	SavedAt time.Time `json:"saved_at"`
}

// ViewResponse names the current view.
type ViewResponse struct {
	View    domain.View `json:"view"`
	Changed bool        `json:"changed"`
}

// SetViewRequest selects a view.
type SetViewRequest struct {
	View string `json:"view" validate:"required"`
}

// AskTutorRequest asks the tutor about a topic.
type AskTutorRequest struct {
	Topic   string `json:"topic"   validate:"required,max=200"`
	Context string `json:"context" validate:"max=2000"`
}

// SelectMoleculeRequest selects a molecule in the viewer.
type SelectMoleculeRequest struct {
	MoleculeID string `json:"molecule_id" validate:"required"`
}

// SetARRequest turns AR mode on or off.
type SetARRequest struct {
	Enabled *bool `json:"enabled" validate:"required"`
}

// AddItemRequest places a catalog item on the bench.
type AddItemRequest struct {
	Kind      string `json:"kind"       validate:"required,oneof=tool chemical"`
	CatalogID string `json:"catalog_id" validate:"required"`
}

// SelectQuizTopicRequest chooses the topic for later questions.
type SelectQuizTopicRequest struct {
	Topic string `json:"topic" validate:"required,max=200"`
}

// StartQuizRequest requests a question. An empty topic uses the selected topic.
type StartQuizRequest struct {
	Topic string `json:"topic" validate:"max=200"`
}

// AnswerQuizRequest submits the chosen option.
type AnswerQuizRequest struct {
	Index *int `json:"index" validate:"required"`
}

// TutorResponse wraps the tutor panel state.
type TutorResponse struct {
	Accepted bool               `json:"accepted"`
	Tutor    session.TutorState `json:"tutor"`
}

// ViewerResponse wraps the viewer state.
type ViewerResponse struct {
	Accepted bool                `json:"accepted"`
	Viewer   session.ViewerState `json:"viewer"`
}

// LabResponse wraps the bench state.
type LabResponse struct {
	Accepted bool             `json:"accepted"`
	Lab      session.LabState `json:"lab"`
}

// AddItemResponse returns the placed item with the bench state.
type AddItemResponse struct {
	Item domain.BenchItem `json:"item"`
	Lab  session.LabState `json:"lab"`
}

// QuizResponse wraps the quiz state. The correct option and explanation are
// withheld until the question is answered.
type QuizResponse struct {
	Accepted bool              `json:"accepted"`
	Phase    session.QuizPhase `json:"phase"`
	Topic    string            `json:"topic"`
	Question *QuestionResponse `json:"question,omitempty"`
	Chosen   *int              `json:"chosen,omitempty"`
	Correct  *bool             `json:"correct,omitempty"`
}

// QuestionResponse is a quiz question as shown to the learner.
type QuestionResponse struct {
	Question     string   `json:"question"`
	Options      []string `json:"options"`
	CorrectIndex *int     `json:"correct_index,omitempty"`
	Explanation  string   `json:"explanation,omitempty"`
}

func toQuizResponse(accepted bool, s session.QuizState) QuizResponse {
	resp := QuizResponse{
		Accepted: accepted,
		Phase:    s.Phase,
		Topic:    s.Topic,
		Chosen:   s.Chosen,
	}
	if s.Question == nil {
		return resp
	}

	q := &QuestionResponse{
		Question: s.Question.Question,
		Options:  append([]string(nil), s.Question.Options...),
	}
	if s.Phase == session.QuizAnswered {
		correct := s.Question.Correct
		q.CorrectIndex = &correct
		q.Explanation = s.Question.Explanation
		isCorrect := s.IsCorrect()
		resp.Correct = &isCorrect
	}
	resp.Question = q
	return resp
}

func toProgressResponse(p domain.UserProgress, history []store.ProgressSnapshot) ProgressResponse {
	resp := ProgressResponse{
		XP:          p.XP,
		Level:       p.Level,
		NextLevelAt: p.Threshold(),
		History:     make([]SnapshotResponse, 0, len(history)),
	}
	for _, snap := range history {
		resp.History = append(resp.History, SnapshotResponse{
			XP:      snap.Progress.XP,
			Level:   snap.Progress.Level,
			SavedAt: snap.SavedAt,
		})
	}
	return resp
}
