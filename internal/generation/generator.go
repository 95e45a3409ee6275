package generation

import (
	"context"

	"github.com/phrazzld/chemlab-api/internal/domain"
)

// Operation names used in logs and metrics.
const (
	OpExplain  = "explain"
	OpQuiz     = "quiz"
	OpReaction = "reaction"
)

// Generator performs the three generative calls. Implementations return an
// error on any failure; an empty text result is reported as ErrEmptyResponse.
type Generator interface {
	// Explain produces a short explanation of topic in the given context.
	Explain(ctx context.Context, topic, context string) (string, error)

	// GenerateQuiz produces one multiple-choice question about topic.
	GenerateQuiz(ctx context.Context, topic string) (domain.QuizQuestion, error)

	// AnalyzeReaction predicts the result of mixing the named chemicals.
	AnalyzeReaction(ctx context.Context, names []string) (string, error)
}

// Assistant is what the sessions call. It never fails: every error has
// already been replaced by a displayable fallback.
type Assistant interface {
	Explain(ctx context.Context, topic, context string) string
	Quiz(ctx context.Context, topic string) domain.QuizQuestion
	AnalyzeReaction(ctx context.Context, names []string) string
}

// Unconfigured is the Generator used when no API key is set.
type Unconfigured struct{}

var _ Generator = Unconfigured{}

// Explain always returns ErrNotConfigured.
func (Unconfigured) Explain(context.Context, string, string) (string, error) {
	return "", ErrNotConfigured
}

// GenerateQuiz always returns ErrNotConfigured.
func (Unconfigured) GenerateQuiz(context.Context, string) (domain.QuizQuestion, error) {
	return domain.QuizQuestion{}, ErrNotConfigured
}

// AnalyzeReaction always returns ErrNotConfigured.
func (Unconfigured) AnalyzeReaction(context.Context, []string) (string, error) {
	return "", ErrNotConfigured
}
