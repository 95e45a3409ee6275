package session

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"sync"

	"github.com/phrazzld/chemlab-api/internal/domain"
	"github.com/phrazzld/chemlab-api/internal/generation"
	"github.com/phrazzld/chemlab-api/internal/task"
)

// TutorStatus is the phase of the tutor's current query.
type TutorStatus string

// Tutor statuses.
const (
	TutorIdle     TutorStatus = "idle"
	TutorLoading  TutorStatus = "loading"
	TutorAnswered TutorStatus = "answered"
)

// TutorState is a snapshot of the tutor panel.
type TutorState struct {
	Open   bool        `json:"open"`
	Status TutorStatus `json:"status"`
	Topic  string      `json:"topic"`
	Answer string      `json:"answer"`
}

func (s TutorState) ask(topic string) TutorState {
	return TutorState{Open: true, Status: TutorLoading, Topic: topic}
}

func (s TutorState) close() TutorState {
	s.Open = false
	return s
}

// resolve stores the answer without touching panel visibility.
func (s TutorState) resolve(answer string) TutorState {
	s.Status = TutorAnswered
	s.Answer = answer
	return s
}

// Tutor is the AI tutor panel shared by every view of a learner.
type Tutor struct {
	mu    sync.Mutex
	state TutorState
	seq   uint64

	assistant  generation.Assistant
	dispatcher task.Dispatcher
	logger     *slog.Logger
}

// NewTutor creates a closed tutor.
func NewTutor(assistant generation.Assistant, dispatcher task.Dispatcher, logger *slog.Logger) (*Tutor, error) {
	if assistant == nil {
		return nil, errors.New("assistant cannot be nil")
	}
	if dispatcher == nil {
		return nil, errors.New("dispatcher cannot be nil")
	}
	return &Tutor{
		state:      TutorState{Status: TutorIdle},
		assistant:  assistant,
		dispatcher: dispatcher,
		logger:     logger.With("component", "tutor"),
	}, nil
}

// State returns the current panel state.
func (t *Tutor) State() TutorState {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.state
}

// Ask opens the panel and requests an explanation of topic in the setting
// described by about.
// A newer Ask supersedes any request still pending.
func (t *Tutor) Ask(ctx context.Context, topic, about string) error {
	topic = strings.TrimSpace(topic)
	if topic == "" {
		return domain.NewValidationError("topic", "cannot be empty")
	}

	t.mu.Lock()
	t.seq++
	seq := t.seq
	t.state = t.state.ask(topic)
	t.mu.Unlock()

	t.logger.DebugContext(ctx, "tutor query issued", "topic", topic, "seq", seq)

	submit(ctx, t.dispatcher, t.logger, task.TypeExplain,
		func(ctx context.Context) {
			t.complete(seq, t.assistant.Explain(ctx, topic, about))
		},
		func() { t.complete(seq, generation.ExplainFailed) },
	)
	return nil
}

// Close hides the panel. A pending request keeps running and its answer is
// stored when it arrives, but the panel stays closed.
func (t *Tutor) Close() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.state = t.state.close()
}

func (t *Tutor) complete(seq uint64, answer string) {
	t.mu.Lock()
	defer t.mu.Unlock()

	if seq != t.seq {
		t.logger.Debug("discarding stale tutor answer", "seq", seq, "latest", t.seq)
		return
	}
	t.state = t.state.resolve(answer)
}
