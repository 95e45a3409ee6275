package mocks

import (
	"context"
	"sync"

	"github.com/phrazzld/chemlab-api/internal/domain"
	"github.com/phrazzld/chemlab-api/internal/generation"
)

// MockAssistant implements generation.Assistant for testing.
type MockAssistant struct {
	ExplainFn         func(ctx context.Context, topic, about string) string
	QuizFn            func(ctx context.Context, topic string) domain.QuizQuestion
	AnalyzeReactionFn func(ctx context.Context, names []string) string

	// Default response values
	Explanation string
	Question    domain.QuizQuestion
	Reaction    string

	mu            sync.Mutex
	explainCalls  []ExplainCall
	quizTopics    []string
	reactionCalls [][]string
}

// ExplainCall records the arguments of one Explain call.
type ExplainCall struct {
	Topic string
	About string
}

var _ generation.Assistant = (*MockAssistant)(nil)

// Explain implements generation.Assistant.
func (m *MockAssistant) Explain(ctx context.Context, topic, about string) string {
	m.mu.Lock()
	m.explainCalls = append(m.explainCalls, ExplainCall{Topic: topic, About: about})
	m.mu.Unlock()

	if m.ExplainFn != nil {
		return m.ExplainFn(ctx, topic, about)
	}
	return m.Explanation
}

// Quiz implements generation.Assistant.
func (m *MockAssistant) Quiz(ctx context.Context, topic string) domain.QuizQuestion {
	m.mu.Lock()
	m.quizTopics = append(m.quizTopics, topic)
	m.mu.Unlock()

	if m.QuizFn != nil {
		return m.QuizFn(ctx, topic)
	}
	if m.Question.Question == "" {
		return generation.DefaultQuiz()
	}
	return m.Question.Clone()
}

// AnalyzeReaction implements generation.Assistant.
func (m *MockAssistant) AnalyzeReaction(ctx context.Context, names []string) string {
	m.mu.Lock()
	m.reactionCalls = append(m.reactionCalls, append([]string(nil), names...))
	m.mu.Unlock()

	if m.AnalyzeReactionFn != nil {
		return m.AnalyzeReactionFn(ctx, names)
	}
	return m.Reaction
}

// ExplainCalls returns the recorded Explain calls.
func (m *MockAssistant) ExplainCalls() []ExplainCall {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]ExplainCall(nil), m.explainCalls...)
}

// QuizTopics returns the topics passed to Quiz.
func (m *MockAssistant) QuizTopics() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]string(nil), m.quizTopics...)
}

// ReactionCalls returns the chemical name lists passed to AnalyzeReaction.
func (m *MockAssistant) ReactionCalls() [][]string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([][]string(nil), m.reactionCalls...)
}
