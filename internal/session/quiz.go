package session

import (
	"context"
	"log/slog"
	"strings"
	"sync"

	"github.com/phrazzld/chemlab-api/internal/domain"
	"github.com/phrazzld/chemlab-api/internal/generation"
	"github.com/phrazzld/chemlab-api/internal/task"
)

// QuizPhase is the stage of the current quiz.
type QuizPhase string

// Quiz phases.
const (
	QuizNone      QuizPhase = "none"
	QuizLoading   QuizPhase = "loading"
	QuizPresented QuizPhase = "presented"
	QuizAnswered  QuizPhase = "answered"
)

// QuizState is a snapshot of the quiz. Question is nil unless presented or
// answered; Chosen is set once answered.
type QuizState struct {
	Phase    QuizPhase            `json:"phase"`
	Topic    string               `json:"topic"`
	Question *domain.QuizQuestion `json:"question,omitempty"`
	Chosen   *int                 `json:"chosen,omitempty"`
}

func (s QuizState) clone() QuizState {
	if s.Question != nil {
		q := s.Question.Clone()
		s.Question = &q
	}
	if s.Chosen != nil {
		c := *s.Chosen
		s.Chosen = &c
	}
	return s
}

func (s QuizState) selectTopic(topic string) QuizState {
	s.Topic = topic
	return s
}

func (s QuizState) start(topic string) QuizState {
	return QuizState{Phase: QuizLoading, Topic: topic}
}

func (s QuizState) present(q domain.QuizQuestion) QuizState {
	s.Phase = QuizPresented
	s.Question = &q
	s.Chosen = nil
	return s
}

func (s QuizState) answer(index int) QuizState {
	s.Phase = QuizAnswered
	s.Chosen = &index
	return s
}

// IsCorrect reports whether the chosen option is the right one.
func (s QuizState) IsCorrect() bool {
	return s.Phase == QuizAnswered && s.Question != nil && s.Chosen != nil && *s.Chosen == s.Question.Correct
}

// Quiz is the theory quiz session.
type Quiz struct {
	mu      sync.Mutex
	state   QuizState
	seq     uint64
	mounted bool

	assistant  generation.Assistant
	dispatcher task.Dispatcher
	progress   *Progression
	logger     *slog.Logger
}

func newQuiz(deps Deps, progress *Progression) *Quiz {
	topic := ""
	if topics := deps.Catalog.Topics(); len(topics) > 0 {
		topic = topics[0]
	}
	return &Quiz{
		state:      QuizState{Phase: QuizNone, Topic: topic},
		mounted:    true,
		assistant:  deps.Assistant,
		dispatcher: deps.Dispatcher,
		progress:   progress,
		logger:     deps.Logger.With("component", "quiz"),
	}
}

// State returns the current quiz state.
func (q *Quiz) State() (QuizState, error) {
	q.mu.Lock()
	defer q.mu.Unlock()
	if !q.mounted {
		return QuizState{}, ErrViewNotActive
	}
	return q.state.clone(), nil
}

// SelectTopic sets the topic used when StartQuiz is called without one.
func (q *Quiz) SelectTopic(topic string) error {
	topic = strings.TrimSpace(topic)
	if topic == "" {
		return domain.NewValidationError("topic", "cannot be empty")
	}
	q.mu.Lock()
	defer q.mu.Unlock()
	if !q.mounted {
		return ErrViewNotActive
	}
	q.state = q.state.selectTopic(topic)
	return nil
}

// StartQuiz discards any current question and requests a new one about
// topic, or the selected topic when topic is empty.
func (q *Quiz) StartQuiz(ctx context.Context, topic string) error {
	topic = strings.TrimSpace(topic)

	q.mu.Lock()
	if !q.mounted {
		q.mu.Unlock()
		return ErrViewNotActive
	}
	if topic == "" {
		topic = q.state.Topic
	}
	if topic == "" {
		q.mu.Unlock()
		return domain.NewValidationError("topic", "cannot be empty")
	}
	q.seq++
	seq := q.seq
	q.state = q.state.start(topic)
	q.mu.Unlock()

	q.logger.DebugContext(ctx, "quiz requested", "topic", topic, "seq", seq)

	submit(ctx, q.dispatcher, q.logger, task.TypeQuiz,
		func(ctx context.Context) {
			q.complete(seq, q.assistant.Quiz(ctx, topic))
		},
		func() { q.complete(seq, generation.DefaultQuiz()) },
	)
	return nil
}

// Answer records the learner's choice. Outside the presented phase it is a
// no-op reporting false; an index that names no option is a validation error.
func (q *Quiz) Answer(ctx context.Context, index int) (bool, error) {
	q.mu.Lock()
	defer q.mu.Unlock()

	if !q.mounted {
		return false, ErrViewNotActive
	}
	if q.state.Phase != QuizPresented {
		return false, nil
	}
	if index < 0 || index >= len(q.state.Question.Options) {
		return false, domain.NewValidationError("index", "must name one of the options")
	}

	q.state = q.state.answer(index)
	if q.state.IsCorrect() {
		if _, _, err := q.progress.AddXP(ctx, domain.XPSourceQuiz, domain.QuizXPBonus); err != nil {
			q.logger.ErrorContext(ctx, "failed to award quiz xp", "error", err)
		}
	}
	return true, nil
}

func (q *Quiz) complete(seq uint64, question domain.QuizQuestion) {
	q.mu.Lock()
	defer q.mu.Unlock()

	if seq != q.seq || !q.mounted {
		q.logger.Debug("discarding stale quiz question", "seq", seq, "latest", q.seq)
		return
	}
	q.state = q.state.present(question.Clone())
}

func (q *Quiz) unmount() {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.mounted = false
	q.seq++
}
