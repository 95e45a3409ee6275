package generation

import (
	"context"
	"errors"
	"log/slog"

	"github.com/phrazzld/chemlab-api/internal/domain"
	"github.com/phrazzld/chemlab-api/internal/redact"
)

// Texts shown when an explanation cannot be produced.
const (
	ExplainMissingKey = "API Key missing. Please configure your environment."
	ExplainEmpty      = "I couldn't generate an explanation at this moment."
	ExplainFailed     = "Error connecting to AI tutor. Please check your connection."
)

// Texts shown when a reaction cannot be analysed.
const (
	ReactionTooFew     = "Add more chemicals to see a reaction."
	ReactionMissingKey = "API Key missing. Cannot analyze."
	ReactionEmpty      = "Analysis failed."
	ReactionFailed     = "Could not analyze reaction."
)

// MinReactants is the number of chemicals needed before analysis is attempted.
const MinReactants = 2

// Outcomes recorded per call.
const (
	OutcomeSuccess       = "success"
	OutcomeNotConfigured = "not_configured"
	OutcomeEmpty         = "empty"
	OutcomeError         = "error"
	OutcomeSkipped       = "skipped"
)

// MissingKeyQuiz is presented when no API key is configured.
func MissingKeyQuiz() domain.QuizQuestion {
	return domain.QuizQuestion{
		Question:    "API Key Missing",
		Options:     []string{"Configure API Key", "Retry", "Contact Admin", "Ignore"},
		Correct:     0,
		Explanation: "The API key must be set in the environment variables.",
	}
}

// DefaultQuiz is presented when quiz generation fails.
func DefaultQuiz() domain.QuizQuestion {
	return domain.QuizQuestion{
		Question:    "Which element has atomic number 1?",
		Options:     []string{"Hydrogen", "Helium", "Lithium", "Carbon"},
		Correct:     0,
		Explanation: "Hydrogen is the first element in the periodic table.",
	}
}

// Recorder observes the outcome of each call.
type Recorder interface {
	GenerationCompleted(operation, outcome string)
}

type nopRecorder struct{}

func (nopRecorder) GenerationCompleted(string, string) {}

// Fallback adapts a Generator into an Assistant.
type Fallback struct {
	gen      Generator
	logger   *slog.Logger
	recorder Recorder
}

var _ Assistant = (*Fallback)(nil)

// NewFallback wraps gen. A nil recorder disables outcome recording.
func NewFallback(gen Generator, logger *slog.Logger, recorder Recorder) (*Fallback, error) {
	if gen == nil {
		return nil, errors.New("generator cannot be nil")
	}
	if logger == nil {
		return nil, errors.New("logger cannot be nil")
	}
	if recorder == nil {
		recorder = nopRecorder{}
	}
	return &Fallback{
		gen:      gen,
		logger:   logger.With("component", "generation_fallback"),
		recorder: recorder,
	}, nil
}

// Explain returns the explanation or its fallback text.
func (f *Fallback) Explain(ctx context.Context, topic, context string) string {
	text, err := f.gen.Explain(ctx, topic, context)
	if err == nil && text == "" {
		err = ErrEmptyResponse
	}
	f.observe(ctx, OpExplain, err)

	switch {
	case err == nil:
		return text
	case errors.Is(err, ErrNotConfigured):
		return ExplainMissingKey
	case errors.Is(err, ErrEmptyResponse):
		return ExplainEmpty
	default:
		return ExplainFailed
	}
}

// Quiz returns a generated question or one of the canned questions.
func (f *Fallback) Quiz(ctx context.Context, topic string) domain.QuizQuestion {
	q, err := f.gen.GenerateQuiz(ctx, topic)
	if err == nil {
		if verr := q.Validate(); verr != nil {
			err = errors.Join(ErrInvalidResponse, verr)
		}
	}
	f.observe(ctx, OpQuiz, err)

	switch {
	case err == nil:
		return q
	case errors.Is(err, ErrNotConfigured):
		return MissingKeyQuiz()
	default:
		return DefaultQuiz()
	}
}

// AnalyzeReaction returns the predicted result or its fallback text. Fewer
// than MinReactants names short-circuit without calling the generator.
func (f *Fallback) AnalyzeReaction(ctx context.Context, names []string) string {
	if len(names) < MinReactants {
		f.recorder.GenerationCompleted(OpReaction, OutcomeSkipped)
		return ReactionTooFew
	}

	text, err := f.gen.AnalyzeReaction(ctx, names)
	if err == nil && text == "" {
		err = ErrEmptyResponse
	}
	f.observe(ctx, OpReaction, err)

	switch {
	case err == nil:
		return text
	case errors.Is(err, ErrNotConfigured):
		return ReactionMissingKey
	case errors.Is(err, ErrEmptyResponse):
		return ReactionEmpty
	default:
		return ReactionFailed
	}
}

func (f *Fallback) observe(ctx context.Context, op string, err error) {
	outcome := OutcomeSuccess
	switch {
	case err == nil:
	case errors.Is(err, ErrNotConfigured):
		outcome = OutcomeNotConfigured
	case errors.Is(err, ErrEmptyResponse):
		outcome = OutcomeEmpty
	default:
		outcome = OutcomeError
	}
	f.recorder.GenerationCompleted(op, outcome)

	if outcome == OutcomeError {
		f.logger.WarnContext(ctx, "generation call failed, using fallback",
			"operation", op,
			"error", redact.Error(err))
	}
}
